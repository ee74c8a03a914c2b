package normalize

import (
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

var (
	accountKeys = []string{"Account", "account", "accountKey", "account_number", "Account Key"}
	creditKeys  = []string{"Credits", "credits", "creditsByType"}
	debitKeys   = []string{"Debits", "debits", "debitsByType"}
	labelKeys   = []string{"Custom Language", "type", "Type", "Counterparty", "Party", "Name"}
)

// activityGroup reads one account's breakdown. The group is either an
// {Account, Credits, Debits} object whose rows get tagged with their
// direction, an {Account, rows} object, or a single bare row.
func activityGroup(m map[string]any) []model.AccountRows {
	if m == nil {
		return nil
	}
	acct := str(m, accountKeys...)

	var out []model.Row
	out = append(out, sideRows(get(m, creditKeys...), "CR")...)
	out = append(out, sideRows(get(m, debitKeys...), "DR")...)
	out = append(out, rows(get(m, "rows", "Rows"))...)
	if len(out) == 0 {
		if _, ok := model.Row(m).Get(labelKeys...); ok {
			out = append(out, model.Row(m))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return []model.AccountRows{{Account: acct, Rows: out}}
}

// accountRowGroups reads a list of account breakdown groups, merging groups
// that name the same account.
func accountRowGroups(v any) []model.AccountRows {
	var out []model.AccountRows
	for _, e := range asList(v) {
		for _, g := range activityGroup(asMap(e)) {
			out = mergeGroup(out, g)
		}
	}
	return out
}

func mergeGroup(groups []model.AccountRows, g model.AccountRows) []model.AccountRows {
	for i := range groups {
		if groups[i].Account == g.Account {
			groups[i].Rows = append(groups[i].Rows, g.Rows...)
			return groups
		}
	}
	return append(groups, g)
}
