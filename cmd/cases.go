package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/casefile"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the cases in the case repository",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, err := casefile.Open(cmd.Context(), cfg.Cases.Path)
		if err != nil {
			return err
		}
		list := repo.Cases()
		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No cases found.")
			return nil
		}
		formatCasesList(os.Stdout, list)
		return nil
	},
}

// -- cases show --

var casesShowCmd = &cobra.Command{
	Use:   "show <case-number>",
	Short: "Show one case as a normalized record, or one raw section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := casefile.Open(cmd.Context(), cfg.Cases.Path)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if name, _ := cmd.Flags().GetString("section"); name != "" {
			sec, err := repo.Section(args[0], name)
			if err != nil {
				return eris.Wrap(err, "cases show")
			}
			if sec == nil {
				return eris.Errorf("cases show: %s has no section %q", args[0], name)
			}
			return enc.Encode(sec)
		}

		rec, err := repo.Case(args[0])
		if err != nil {
			return eris.Wrap(err, "cases show")
		}
		accounts, err := repo.AccountNumbers(args[0])
		if err != nil {
			return eris.Wrap(err, "cases show")
		}
		fmt.Fprintf(os.Stderr, "accounts: %s\n", strings.Join(accounts, ", "))
		return enc.Encode(rec)
	},
}

// formatCasesList writes a tabular list of cases to out.
func formatCasesList(out io.Writer, list []casefile.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CASE\tACCOUNT\tALERTS\tSUBJECTS")
	for _, c := range list {
		account := c.AccountNumber
		if account == "" {
			account = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.CaseNumber, account, c.AlertCount, strings.Join(c.Subjects, "; "))
	}
	_ = w.Flush()
}

func init() {
	casesShowCmd.Flags().String("section", "", "print this raw section instead of the normalized record")
	casesCmd.AddCommand(casesShowCmd)
	rootCmd.AddCommand(casesCmd)
}
