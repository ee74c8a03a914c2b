package fetcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Sheet is one worksheet read as trimmed cell strings. Rows keep their
// original width; MaxCol is the widest row.
type Sheet struct {
	Name   string
	Rows   [][]string
	MaxCol int
}

// XLSXOptions selects the sheet ReadXLSX returns.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // number of leading rows to skip
}

// ReadWorkbook reads every sheet of an XLSX workbook in workbook order.
func ReadWorkbook(path string) ([]Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}
	sheets := make([]Sheet, 0, len(f.Sheets))
	for _, s := range f.Sheets {
		sheets = append(sheets, toSheet(s, 0))
	}
	return sheets, nil
}

// ReadXLSX reads one sheet of an XLSX workbook.
func ReadXLSX(path string, opts XLSXOptions) (Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return Sheet{}, eris.Wrapf(err, "xlsx: open %s", path)
	}
	sheet, err := getSheet(f, opts)
	if err != nil {
		return Sheet{}, err
	}
	return toSheet(sheet, opts.SkipRows), nil
}

// ReadSheets reads a transaction spreadsheet: every sheet of an XLSX
// workbook, or a CSV file as a single sheet named after the file.
func ReadSheets(path string) ([]Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		rows, err := ReadCSV(f, CSVOptions{})
		if err != nil {
			return nil, eris.Wrapf(err, "csv: %s", path)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return []Sheet{newSheet(name, rows)}, nil
	default:
		return nil, eris.Wrapf(ErrUnsupportedExtension, "spreadsheet: %s", path)
	}
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func toSheet(s *xlsx.Sheet, skip int) Sheet {
	var rows [][]string
	for i, row := range s.Rows {
		if i < skip || row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		rows = append(rows, cells)
	}
	return newSheet(s.Name, rows)
}

func newSheet(name string, rows [][]string) Sheet {
	out := Sheet{Name: name, Rows: rows}
	for _, r := range rows {
		out.MaxCol = max(out.MaxCol, len(r))
	}
	return out
}
