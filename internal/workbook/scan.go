package workbook

import (
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
)

// SheetInfo describes one sheet's layout.
type SheetInfo struct {
	Name      string   `json:"name"`
	Role      Role     `json:"role"`
	Rows      int      `json:"rows"`
	Columns   int      `json:"columns"`
	HeaderRow int      `json:"header_row"`
	Header    []string `json:"header,omitempty"`
	DataRows  int      `json:"data_rows"`
}

// Analysis is a diagnostic report on a workbook's structure.
type Analysis struct {
	Path   string      `json:"path"`
	Sheets []SheetInfo `json:"sheets"`
}

// Scan reports the structure of the spreadsheet at path: each sheet's size,
// located header and detected role. It is diagnostic only; Extract does not
// depend on it.
func Scan(path string) (Analysis, error) {
	sheets, err := fetcher.ReadSheets(path)
	if err != nil {
		return Analysis{}, err
	}
	return Analyze(path, sheets), nil
}

// Analyze builds an Analysis from loaded sheets.
func Analyze(path string, sheets []fetcher.Sheet) Analysis {
	out := Analysis{Path: path, Sheets: make([]SheetInfo, 0, len(sheets))}
	for _, s := range sheets {
		t := NewTable(s)
		out.Sheets = append(out.Sheets, SheetInfo{
			Name:      s.Name,
			Role:      t.Role,
			Rows:      len(s.Rows),
			Columns:   s.MaxCol,
			HeaderRow: t.HeaderRow,
			Header:    t.Header,
			DataRows:  len(t.Rows),
		})
	}
	return out
}
