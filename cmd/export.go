package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/narrative"
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write a session's narrative or recommendation as a text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sess, err := st.GetSession(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "export")
		}

		recommendation, _ := cmd.Flags().GetBool("recommendation")
		output, _ := cmd.Flags().GetString("output")
		path, err := exportSession(sess, recommendation, output, time.Now())
		if err != nil {
			return err
		}
		if path != "" {
			zap.L().Info("exported", zap.String("session_id", sess.ID), zap.String("path", path))
		}
		return nil
	},
}

// exportSession writes the session to output, to stdout when output is "-",
// or to the standard export file name in the working directory when output
// is empty. It returns the path written, or "" for stdout.
func exportSession(sess *model.Session, recommendation bool, output string, at time.Time) (string, error) {
	kind, render := "Narrative", narrative.Export
	if recommendation {
		kind, render = "Recommendation", narrative.ExportRecommendation
	}

	if output == "-" {
		return "", render(os.Stdout, sess.Snapshot, at)
	}
	if output == "" {
		output = narrative.FileName(kind, sess.CaseNumber, at)
	}

	f, err := os.Create(output)
	if err != nil {
		return "", eris.Wrapf(err, "export: create %s", output)
	}
	if err := render(f, sess.Snapshot, at); err != nil {
		f.Close() //nolint:errcheck
		return "", eris.Wrap(err, "export: write")
	}
	return output, eris.Wrap(f.Close(), "export: close")
}

func init() {
	exportCmd.Flags().Bool("recommendation", false, "export the recommendation instead of the narrative")
	exportCmd.Flags().StringP("output", "o", "", `output path ("-" for stdout; default is the standard export file name)`)
	rootCmd.AddCommand(exportCmd)
}
