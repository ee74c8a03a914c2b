package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/narrative"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one case through the pipeline",
	Long: "Loads a case (from a document or the case repository) and an optional transaction spreadsheet, " +
		"validates and reconciles them, and assembles the narrative. With --save the session is persisted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("process"); err != nil {
			return err
		}

		casePath, _ := cmd.Flags().GetString("case")
		caseNumber, _ := cmd.Flags().GetString("case-number")
		sheet, _ := cmd.Flags().GetString("sheet")
		save, _ := cmd.Flags().GetBool("save")
		format, _ := cmd.Flags().GetString("format")

		env, err := initPipeline(ctx, cfg, save)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Run(ctx, pipeline.Input{
			CasePath:        casePath,
			CaseNumber:      caseNumber,
			SpreadsheetPath: sheet,
		})
		if err != nil {
			return eris.Wrap(err, "process")
		}
		if res.Session != nil {
			zap.L().Info("session saved", zap.String("session_id", res.Session.ID))
		}
		return writeProcessResult(os.Stdout, res, format, time.Now())
	},
}

// writeProcessResult prints a pipeline result as JSON, or as the exported
// narrative and recommendation text.
func writeProcessResult(w io.Writer, res *pipeline.Result, format string, at time.Time) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "text":
		if err := narrative.Export(w, res.Snapshot, at); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n\n"); err != nil {
			return err
		}
		return narrative.ExportRecommendation(w, res.Snapshot, at)
	}
	return eris.Errorf("process: unknown format %q", format)
}

func init() {
	processCmd.Flags().String("case", "", "path to a case document (.json or .txt)")
	processCmd.Flags().String("case-number", "", "case number to load from the case repository")
	processCmd.Flags().String("sheet", "", "path to a transaction spreadsheet (.xlsx or .csv)")
	processCmd.Flags().Bool("save", false, "persist the result as a session")
	processCmd.Flags().String("format", "json", "output format: json or text")
	processCmd.MarkFlagsMutuallyExclusive("case", "case-number")
	processCmd.MarkFlagsOneRequired("case", "case-number")
	rootCmd.AddCommand(processCmd)
}
