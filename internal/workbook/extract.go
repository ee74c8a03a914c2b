// Package workbook extracts a TransactionSummaryRecord from a transaction
// spreadsheet and reports the structure of a workbook for diagnostics.
package workbook

import (
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/aggregate"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// maxUnusualSamples caps the rows read from the unusual activity sheet.
const maxUnusualSamples = 5

// unknownAccount groups transactions from a register without an account
// column.
const unknownAccount = "unknown"

var (
	amountCols       = []string{"amount", "transaction amount"}
	typeCols         = []string{"type", "transaction type"}
	directionCols    = []string{"debit/credit", "dr/cr"}
	debitCols        = []string{"debit", "dr"}
	creditCols       = []string{"credit", "cr"}
	accountCols      = []string{"account", "account number", "acct"}
	dateCols         = []string{"date", "transaction date"}
	counterpartyCols = []string{"counterparty", "recipient", "sender", "beneficiary"}

	transferKeywords = []string{"transfer", "wire", "payment to", "payment from"}
	nonTypeWords     = []string{"total", "credit", "debit", "sum", "amount"}

	rangeDateRe = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`)
)

// Extract reads the spreadsheet at path. Only unreadable files and
// unsupported extensions are errors; missing sheets leave their containers
// nil for the validator to default.
func Extract(path string) (model.TransactionSummaryRecord, error) {
	sheets, err := fetcher.ReadSheets(path)
	if err != nil {
		return model.TransactionSummaryRecord{}, err
	}
	rec := FromSheets(sheets)
	zap.L().Info("workbook: extracted",
		zap.String("path", path),
		zap.Int("sheets", len(sheets)),
		zap.Int("accounts", len(rec.AccountSummaries)),
	)
	return rec, nil
}

// FromSheets extracts a TransactionSummaryRecord from already loaded sheets.
func FromSheets(sheets []fetcher.Sheet) model.TransactionSummaryRecord {
	var (
		registers []Table
		byRole    = map[Role]Table{}
	)
	for _, s := range sheets {
		t := NewTable(s)
		if t.Role == RoleTransactions {
			registers = append(registers, t)
			continue
		}
		if _, seen := byRole[t.Role]; !seen {
			byRole[t.Role] = t
		}
	}
	if len(registers) == 0 && len(sheets) > 0 {
		registers = []Table{NewTable(sheets[0])}
	}

	out := model.TransactionSummaryRecord{
		AccountSummaries:      []model.AccountSummary{},
		InterAccountTransfers: []model.Transfer{},
	}
	if t, ok := byRole[RoleActivitySummary]; ok {
		out.ActivitySummary = activitySummary(t)
	}
	if t, ok := byRole[RoleUnusualActivity]; ok {
		out.UnusualActivity = unusualActivity(t)
	}
	if t, ok := byRole[RoleCTASample]; ok {
		out.CTASample = ctaSample(t)
	}
	if t, ok := byRole[RoleBIPSample]; ok {
		out.BIPSample = bipSample(t)
	}
	summarizeRegisters(registers, &out)
	return out
}

func activitySummary(t Table) *model.ActivityTotals {
	act := &model.ActivityTotals{TransactionTypes: []string{}}

	var totals []int
	if c := t.Column("total amount"); c >= 0 && strings.EqualFold(strings.TrimSpace(t.Header[c]), "total amount") {
		totals = []int{c}
	} else {
		totals = t.Columns("total")
	}
	var total float64
	for _, row := range t.Rows {
		for _, c := range totals {
			total += coerce.ToAmount(Cell(row, c))
		}
	}
	if len(totals) > 0 {
		act.SetTotal(total)
	}

	if cols := t.Columns("date range"); len(cols) > 0 && len(t.Rows) > 0 {
		if dates := rangeDateRe.FindAllString(Cell(t.Rows[0], cols[0]), -1); len(dates) >= 2 {
			act.StartDate = coerce.ToCanonicalDate(dates[0])
			act.EndDate = coerce.ToCanonicalDate(dates[1])
		}
	}
	if act.StartDate == "" {
		var first, last string
		for _, c := range t.Columns("date") {
			h := strings.ToLower(t.Header[c])
			for _, row := range t.Rows {
				d := coerce.ToCanonicalDate(Cell(row, c))
				switch {
				case strings.Contains(h, "start"):
					act.StartDate = coerce.Earliest(act.StartDate, d)
				case strings.Contains(h, "end"):
					act.EndDate = coerce.Latest(act.EndDate, d)
				default:
					first = coerce.Earliest(first, d)
					last = coerce.Latest(last, d)
				}
			}
		}
		if act.StartDate == "" && first != "" {
			act.StartDate, act.EndDate = first, last
		}
	}

	for _, c := range t.Columns("type") {
		for _, row := range t.Rows {
			v := Cell(row, c)
			if v == "" || slices.Contains(act.TransactionTypes, v) || containsAny(strings.ToLower(v), nonTypeWords) {
				continue
			}
			act.TransactionTypes = append(act.TransactionTypes, v)
		}
	}
	return act
}

func unusualActivity(t Table) *model.UnusualActivity {
	u := &model.UnusualActivity{Transactions: []model.SampleTransaction{}}
	if cols := t.Columns("desc"); len(cols) > 0 {
		var descs []string
		for _, row := range t.Rows {
			if d := Cell(row, cols[0]); d != "" && len(descs) < 3 {
				descs = append(descs, d)
			}
		}
		u.Description = strings.Join(descs, " ")
	}

	date, amount := t.Column(dateCols...), t.Column(amountCols...)
	if date < 0 || amount < 0 {
		return u
	}
	typ := t.Column(typeCols...)
	location := t.Column("location", "branch", "place")
	desc := t.Column("description", "desc", "memo")
	account := t.Column(accountCols...)

	for _, row := range t.Rows[:min(maxUnusualSamples, len(t.Rows))] {
		s := model.SampleTransaction{
			Date:        coerce.ToCanonicalDate(Cell(row, date)),
			Amount:      coerce.ToAmount(Cell(row, amount)),
			Type:        Cell(row, typ),
			Description: Cell(row, desc),
			Account:     Cell(row, account),
		}
		if s.Type == "" {
			s.Type = "transaction"
		}
		if s.Description == "" {
			s.Description = Cell(row, location)
		}
		u.Transactions = append(u.Transactions, s)
		u.Summary.TotalAmount += s.Amount
		u.Summary.DateRange.Start = coerce.Earliest(u.Summary.DateRange.Start, s.Date)
		u.Summary.DateRange.End = coerce.Latest(u.Summary.DateRange.End, s.Date)
	}
	return u
}

func firstValue(t Table, names ...string) string {
	if len(t.Rows) == 0 {
		return ""
	}
	return Cell(t.Rows[0], t.Column(names...))
}

func ctaSample(t Table) *model.Interview {
	return &model.Interview{
		Kind:          "CTA",
		Name:          firstValue(t, "customer name", "name", "customer"),
		InterviewDate: coerce.ToCanonicalDate(firstValue(t, "interview date", "date", "conducted")),
		Summary:       firstValue(t, "summary", "notes", "details", "findings"),
	}
}

func bipSample(t Table) *model.Interview {
	return &model.Interview{
		Kind:         "BIP",
		Name:         firstValue(t, "business name", "name", "business"),
		BusinessType: firstValue(t, "business type", "type", "industry"),
		Summary:      firstValue(t, "summary", "notes", "details", "findings"),
	}
}

// register is one transaction sheet with its columns resolved.
type register struct {
	Table
	amount, typ, direction, debit, credit, account, date, counterparty int
}

func newRegister(t Table) register {
	r := register{
		Table:        t,
		amount:       t.Column(amountCols...),
		typ:          t.Column(typeCols...),
		direction:    t.Column(directionCols...),
		account:      t.Column(accountCols...),
		date:         t.Column(dateCols...),
		counterparty: t.Column(counterpartyCols...),
		debit:        -1,
		credit:       -1,
	}
	if r.direction < 0 {
		r.debit = t.Column(debitCols...)
		r.credit = t.Column(creditCols...)
	}
	return r
}

// isCredit decides a row's direction from, in order, a debit/credit column,
// separate debit and credit columns, the type label, and the amount sign.
func (r register) isCredit(row []string, typ string, amount float64) bool {
	switch {
	case r.direction >= 0:
		return aggregate.IsCredit(Cell(row, r.direction))
	case r.debit >= 0 && r.credit >= 0:
		return Cell(row, r.credit) != ""
	case r.typ >= 0:
		return strings.Contains(typ, "+") || strings.Contains(strings.ToLower(typ), "credit")
	default:
		return amount > 0
	}
}

// summarizeRegisters folds every register row into per-account and
// consolidated credit/debit breakdowns and lists transfers.
func summarizeRegisters(tables []Table, out *model.TransactionSummaryRecord) {
	var (
		groups    []model.AccountRows
		index     = map[string]int{}
		accounts  []string
		transfers []model.Transfer
		rowsSeen  int
	)
	for _, t := range tables {
		r := newRegister(t)
		if r.amount < 0 {
			zap.L().Debug("workbook: no amount column", zap.String("sheet", t.Name))
			continue
		}
		for _, row := range r.Rows {
			raw := Cell(row, r.amount)
			if raw == "" {
				continue
			}
			amount := coerce.ToAmount(raw)
			typ := Cell(row, r.typ)
			if typ == "" {
				typ = "Unknown"
			}
			account := Cell(row, r.account)
			if account == "" {
				account = unknownAccount
			}
			dir := "DR"
			if r.isCredit(row, typ, amount) {
				dir = "CR"
			}
			i, ok := index[account]
			if !ok {
				i = len(groups)
				index[account] = i
				accounts = append(accounts, account)
				groups = append(groups, model.AccountRows{Account: account})
			}
			groups[i].Rows = append(groups[i].Rows, model.Row{
				"amount":          amount,
				"transactionType": typ,
				"Debit/Credit":    dir,
				"date":            Cell(row, r.date),
				"account":         account,
			})
			rowsSeen++

			if r.typ >= 0 && containsAny(strings.ToLower(typ), transferKeywords) {
				transfers = append(transfers, model.Transfer{
					Date:        coerce.ToCanonicalDate(Cell(row, r.date)),
					FromAccount: account,
					ToAccount:   Cell(row, r.counterparty),
					Amount:      amount,
					Type:        typ,
				})
			}
		}
	}
	if rowsSeen == 0 {
		return
	}

	summary := aggregate.Fold(groups, aggregate.TransactionRow)
	out.TransactionSummary = &model.TransactionTotals{
		TotalCredits:    summary.Totals.Credits.TotalAmount,
		TotalDebits:     summary.Totals.Debits.TotalAmount,
		CreditBreakdown: aggregate.Breakdowns(summary.Totals.Credits),
		DebitBreakdown:  aggregate.Breakdowns(summary.Totals.Debits),
	}
	for _, a := range summary.Accounts {
		out.AccountSummaries = append(out.AccountSummaries, model.AccountSummary{
			AccountNumber:   a.Account,
			TotalCredits:    a.Credits.TotalAmount,
			TotalDebits:     a.Debits.TotalAmount,
			CreditCount:     a.Credits.TransactionCount,
			DebitCount:      a.Debits.TransactionCount,
			CreditBreakdown: aggregate.Breakdowns(a.Credits),
			DebitBreakdown:  aggregate.Breakdowns(a.Debits),
			StartDate:       a.EarliestDate,
			EndDate:         a.LatestDate,
		})
	}
	out.InterAccountTransfers = resolveTransfers(transfers, accounts)
}

// resolveTransfers points each transfer at another known account named in
// its counterparty, or "external", and orders them by date.
func resolveTransfers(transfers []model.Transfer, accounts []string) []model.Transfer {
	out := make([]model.Transfer, 0, len(transfers))
	for _, tr := range transfers {
		counterparty := tr.ToAccount
		tr.ToAccount = "external"
		if counterparty != "" {
			for _, acct := range accounts {
				if acct != tr.FromAccount && acct != unknownAccount &&
					(strings.Contains(counterparty, acct) || strings.Contains(acct, counterparty)) {
					tr.ToAccount = acct
					break
				}
			}
		}
		out = append(out, tr)
	}
	slices.SortStableFunc(out, func(a, b model.Transfer) int {
		if o := coerce.CompareDates(a.Date, b.Date); o != coerce.Incomparable {
			return int(o)
		}
		return 0
	})
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
