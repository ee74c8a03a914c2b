package workbook

import (
	"strings"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// Role is what a sheet holds, detected from its name.
type Role string

const (
	RoleActivitySummary Role = "activity_summary"
	RoleUnusualActivity Role = "unusual_activity"
	RoleCTASample       Role = "cta_sample"
	RoleBIPSample       Role = "bip_sample"
	RoleTransactions    Role = "transactions"
)

// DetectRole classifies a sheet by name. A bare "sample" sheet is a CTA
// sample unless it names BIP or a business. Unrecognized sheets are
// transaction registers.
func DetectRole(name string) Role {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "activity summ"):
		return RoleActivitySummary
	case strings.Contains(n, "unusual") && strings.Contains(n, "activity"):
		return RoleUnusualActivity
	case strings.Contains(n, "cta"):
		return RoleCTASample
	case strings.Contains(n, "bip") || strings.Contains(n, "business"):
		return RoleBIPSample
	case strings.Contains(n, "sample"):
		return RoleCTASample
	}
	return RoleTransactions
}

// headerScanRows bounds how far down a sheet the header row is looked for.
const headerScanRows = 10

// Table is a sheet with its header row located.
type Table struct {
	Name      string
	Role      Role
	HeaderRow int // -1 when the sheet has no header
	Header    []string
	Rows      [][]string
}

// NewTable locates the header of s: the first row, within the first few,
// with at least two non-empty cells. A sheet with a single populated column
// uses its first non-empty row.
func NewTable(s fetcher.Sheet) Table {
	t := Table{Name: s.Name, Role: DetectRole(s.Name), HeaderRow: -1}
	fallback := -1
	for i, row := range s.Rows[:min(headerScanRows, len(s.Rows))] {
		n := filled(row)
		if n >= 2 {
			t.HeaderRow = i
			break
		}
		if n == 1 && fallback < 0 {
			fallback = i
		}
	}
	if t.HeaderRow < 0 {
		t.HeaderRow = fallback
	}
	if t.HeaderRow < 0 {
		return t
	}
	t.Header = s.Rows[t.HeaderRow]
	for _, row := range s.Rows[t.HeaderRow+1:] {
		if filled(row) > 0 {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func filled(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

// Column finds the first header matching one of names: exact matches (case
// and space insensitive) are preferred over substring matches. Names shorter
// than three characters only match exactly, so "dr" does not match
// "Address". Returns -1 when nothing matches.
func (t Table) Column(names ...string) int {
	header := make([]string, len(t.Header))
	for i, h := range t.Header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for i, h := range header {
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	for i, h := range header {
		if h == "" {
			continue
		}
		for _, n := range names {
			if len(n) >= 3 && strings.Contains(h, n) {
				return i
			}
		}
	}
	return -1
}

// Columns returns every header containing any of names, in header order.
func (t Table) Columns(names ...string) []int {
	var out []int
	for i, h := range t.Header {
		h = strings.ToLower(h)
		for _, n := range names {
			if strings.Contains(h, n) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// Cell returns row[col], or "" when col is out of range.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Records returns the data rows keyed by header. Blank headers are skipped.
func (t Table) Records() []model.Row {
	out := make([]model.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := model.Row{}
		for i, h := range t.Header {
			if h = strings.TrimSpace(h); h != "" && i < len(row) && row[i] != "" {
				r[h] = row[i]
			}
		}
		out = append(out, r)
	}
	return out
}
