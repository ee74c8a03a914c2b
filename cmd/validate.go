package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/aggregate"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/casefile"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/normalize"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/validate"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/workbook"
)

// errInvalidCase makes the command exit non-zero after the report is printed.
var errInvalidCase = eris.New("validate: case has errors")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report missing and malformed case data",
	Long:  "Runs the strict check over a case and optional spreadsheet and prints the report. Exits non-zero when the case has errors.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		casePath, _ := cmd.Flags().GetString("case")
		caseNumber, _ := cmd.Flags().GetString("case-number")
		sheet, _ := cmd.Flags().GetString("sheet")

		rec, err := loadCaseRecord(ctx, casePath, caseNumber)
		if err != nil {
			return err
		}
		aggregate.Aggregate(&rec)

		var summary *model.TransactionSummaryRecord
		if sheet != "" {
			s, err := workbook.Extract(sheet)
			if err != nil {
				return eris.Wrap(err, "validate: read spreadsheet")
			}
			summary = &s
		}

		report := validate.Check(&rec, summary)
		return writeReport(os.Stdout, report)
	},
}

// loadCaseRecord reads a case from a document or, by number, from the
// configured case repository.
func loadCaseRecord(ctx context.Context, casePath, caseNumber string) (model.CaseRecord, error) {
	if casePath != "" {
		doc, err := fetcher.LoadDocument(casePath)
		if err != nil {
			return model.CaseRecord{}, err
		}
		return normalize.Normalize(doc), nil
	}
	repo, err := casefile.Open(ctx, cfg.Cases.Path)
	if err != nil {
		return model.CaseRecord{}, err
	}
	return repo.Case(caseNumber)
}

func writeReport(w io.Writer, report validate.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !report.Valid {
		return errInvalidCase
	}
	return nil
}

func init() {
	validateCmd.Flags().String("case", "", "path to a case document (.json or .txt)")
	validateCmd.Flags().String("case-number", "", "case number to load from the case repository")
	validateCmd.Flags().String("sheet", "", "path to a transaction spreadsheet (.xlsx or .csv)")
	validateCmd.MarkFlagsMutuallyExclusive("case", "case-number")
	validateCmd.MarkFlagsOneRequired("case", "case-number")
	rootCmd.AddCommand(validateCmd)
}
