package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect saved generation sessions",
}

// -- sessions list --

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		caseNumber, _ := cmd.Flags().GetString("case-number")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		list, err := st.ListSessions(ctx, model.SessionFilter{CaseNumber: caseNumber, Limit: limit, Offset: offset})
		if err != nil {
			return eris.Wrap(err, "sessions list")
		}
		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No sessions found.")
			return nil
		}
		formatSessionsList(os.Stdout, list)
		return nil
	},
}

// -- sessions show --

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the full snapshot of a session",
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
			return eris.Wrap(err, "sessions show")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	},
}

// -- sessions delete --

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteSession(ctx, args[0]); err != nil {
			return eris.Wrap(err, "sessions delete")
		}
		fmt.Fprintf(os.Stderr, "Deleted session %s.\n", args[0])
		return nil
	},
}

// formatSessionsList writes a tabular list of sessions to w.
func formatSessionsList(out io.Writer, list []model.SessionSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCASE\tACCOUNT\tCREATED\tUPDATED")
	for _, s := range list {
		account := s.AccountNumber
		if account == "" {
			account = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.CaseNumber, account,
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func init() {
	sessionsListCmd.Flags().String("case-number", "", "only sessions for this case")
	sessionsListCmd.Flags().Int("limit", 50, "max number of sessions to display")
	sessionsListCmd.Flags().Int("offset", 0, "number of sessions to skip")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}
