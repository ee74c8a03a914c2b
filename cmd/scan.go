package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/workbook"
)

var scanCmd = &cobra.Command{
	Use:   "scan <spreadsheet>",
	Short: "Describe the sheets of a transaction spreadsheet",
	Long:  "Reports each sheet's size, located header row and detected role, to diagnose spreadsheets that extract poorly.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if name, _ := cmd.Flags().GetString("sheet"); name != "" {
			rows, _ := cmd.Flags().GetInt("rows")
			return previewSheet(os.Stdout, args[0], name, rows)
		}
		a, err := workbook.Scan(args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		}
		formatAnalysis(os.Stdout, a)
		return nil
	},
}

// formatAnalysis writes one row per sheet to out.
func formatAnalysis(out io.Writer, a workbook.Analysis) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SHEET\tROLE\tROWS\tCOLS\tHEADER_ROW\tDATA_ROWS\tHEADER")
	for _, s := range a.Sheets {
		role := string(s.Role)
		if role == "" {
			role = "-"
		}
		header := strings.Join(s.Header, ", ")
		if len(header) > 60 {
			header = header[:57] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			s.Name, role, s.Rows, s.Columns, s.HeaderRow, s.DataRows, header)
	}
	_ = w.Flush()
}

// previewSheet prints the first n rows of one named sheet of an XLSX workbook.
func previewSheet(out io.Writer, path, name string, n int) error {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return eris.Errorf("scan: --sheet needs an .xlsx workbook, got %q", filepath.Base(path))
	}
	sheet, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: name})
	if err != nil {
		return err
	}
	rows := sheet.Rows
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "(%d of %d rows, %d columns)\n", len(rows), len(sheet.Rows), sheet.MaxCol)
	return nil
}

func init() {
	scanCmd.Flags().Bool("json", false, "print the analysis as JSON")
	scanCmd.Flags().String("sheet", "", "print the rows of this sheet instead of the analysis (.xlsx only)")
	scanCmd.Flags().Int("rows", 10, "rows to print with --sheet (0 for all)")
	rootCmd.AddCommand(scanCmd)
}
