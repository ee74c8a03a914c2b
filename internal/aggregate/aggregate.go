// Package aggregate computes grouped credit/debit statistics from a case's
// raw transaction tables.
package aggregate

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// Aggregate computes every rollup for rec, stores them on rec.Aggregates and
// copies each account's credit and debit statistics onto the matching
// account. A lone account with no matching rollup receives the case totals.
func Aggregate(rec *model.CaseRecord) *model.Aggregates {
	t := rec.Tables
	agg := &model.Aggregates{
		ActivitySummary: Fold(t.Activity, ActivityRow),
		Counterparties:  Fold(t.Counterparties, CounterpartyRow),
		Transactions:    FoldRows(t.Transactions, TransactionRow),
		UnusualActivity: FoldRows(t.Unusual, TransactionRow),
		CTASample:       FoldRows(t.CTA, SampleRow),
		BIPSample:       FoldRows(t.BIP, SampleRow),
	}

	matched := false
	for i := range rec.Accounts {
		if r := agg.ActivitySummary.Account(rec.Accounts[i].AccountNumber); r != nil {
			rec.Accounts[i].Credits = r.Credits
			rec.Accounts[i].Debits = r.Debits
			matched = true
		}
	}
	if !matched && len(rec.Accounts) == 1 && len(agg.ActivitySummary.Accounts) > 0 {
		rec.Accounts[0].Credits = agg.ActivitySummary.Totals.Credits
		rec.Accounts[0].Debits = agg.ActivitySummary.Totals.Debits
	}

	agg.AlertingActivity = Alerting(rec, agg)
	rec.Aggregates = agg

	zap.L().Debug("aggregate: case aggregated",
		zap.String("case_number", rec.CaseNumber),
		zap.Int("activity_accounts", len(agg.ActivitySummary.Accounts)),
		zap.Int("transactions", agg.Transactions.TransactionCount),
		zap.Int("unusual", agg.UnusualActivity.TransactionCount),
	)
	return agg
}

// Alerting summarizes the alerted account's activity for the alerting
// activity recommendation. The first activity account stands for the
// alerted account.
func Alerting(rec *model.CaseRecord, agg *model.Aggregates) model.AlertingSummary {
	out := model.AlertingSummary{CaseNumber: rec.CaseNumber}
	if acct := rec.AccountInfo(); acct != nil {
		out.Account = acct.AccountNumber
		out.AccountType = acct.AccountType
	}
	for _, a := range rec.AlertInfo {
		if a.AlertMonth != "" && !slices.Contains(out.AlertMonths, a.AlertMonth) {
			out.AlertMonths = append(out.AlertMonths, a.AlertMonth)
		}
		if a.Description != "" && !slices.Contains(out.Descriptions, a.Description) {
			out.Descriptions = append(out.Descriptions, a.Description)
		}
	}
	if agg == nil || len(agg.ActivitySummary.Accounts) == 0 {
		return out
	}
	r := agg.ActivitySummary.Accounts[0]
	if out.Account == "" {
		out.Account = r.Account
	}
	out.Credits = r.Credits
	out.Debits = r.Debits
	out.TotalCredits = r.Credits.TotalAmount
	out.TotalDebits = r.Debits.TotalAmount
	out.CreditCount = r.Credits.TransactionCount
	out.DebitCount = r.Debits.TransactionCount
	out.CreditTypes = r.Credits.TypeOrder
	out.DebitTypes = r.Debits.TypeOrder
	return out
}

// Breakdowns lists a side's types by amount, largest first, with each
// type's share of the side total.
func Breakdowns(s model.AmountStat) []model.Breakdown {
	out := make([]model.Breakdown, 0, len(s.TypeOrder))
	for _, label := range s.TypeOrder {
		ts := s.ByType[label]
		pct := ts.Percent
		if pct == 0 && s.TotalAmount > 0 {
			pct = ts.Amount / s.TotalAmount * 100
		}
		out = append(out, model.Breakdown{Type: label, Amount: ts.Amount, Percent: pct, Count: ts.Count})
	}
	slices.SortStableFunc(out, func(a, b model.Breakdown) int { return cmp.Compare(b.Amount, a.Amount) })
	return out
}

// SummaryRecord builds the spreadsheet-shaped summary from a case's own
// tables, for cases processed without a spreadsheet. rec is aggregated first
// if it has not been. Fields the tables cannot supply are left for the
// validator.
func SummaryRecord(rec *model.CaseRecord) model.TransactionSummaryRecord {
	agg := rec.Aggregates
	if agg == nil {
		agg = Aggregate(rec)
	}
	totals := agg.ActivitySummary.Totals
	if len(agg.ActivitySummary.Accounts) == 0 {
		totals = agg.Transactions
	}
	out := model.TransactionSummaryRecord{
		ActivitySummary: &model.ActivityTotals{
			StartDate:        totals.EarliestDate,
			EndDate:          totals.LatestDate,
			TransactionTypes: []string{},
		},
		TransactionSummary: &model.TransactionTotals{
			TotalCredits:    totals.Credits.TotalAmount,
			TotalDebits:     totals.Debits.TotalAmount,
			CreditBreakdown: Breakdowns(totals.Credits),
			DebitBreakdown:  Breakdowns(totals.Debits),
		},
		UnusualActivity:       unusualActivity(rec.Tables.Unusual, agg.UnusualActivity),
		AccountSummaries:      make([]model.AccountSummary, 0, len(agg.ActivitySummary.Accounts)),
		InterAccountTransfers: []model.Transfer{},
	}
	if total := totals.GrandTotal; total > 0 {
		out.ActivitySummary.SetTotal(total)
	}
	for _, a := range agg.ActivitySummary.Accounts {
		out.AccountSummaries = append(out.AccountSummaries, model.AccountSummary{
			AccountNumber:   a.Account,
			TotalCredits:    a.Credits.TotalAmount,
			TotalDebits:     a.Debits.TotalAmount,
			CreditCount:     a.Credits.TransactionCount,
			DebitCount:      a.Debits.TransactionCount,
			CreditBreakdown: Breakdowns(a.Credits),
			DebitBreakdown:  Breakdowns(a.Debits),
			StartDate:       a.EarliestDate,
			EndDate:         a.LatestDate,
		})
	}
	out.CTASample = interview("CTA", rec.Tables.CTA)
	out.BIPSample = interview("BIP", rec.Tables.BIP)
	return out
}

func unusualActivity(rows []model.Row, r model.Rollup) *model.UnusualActivity {
	return &model.UnusualActivity{
		Transactions: Samples(rows),
		Summary: model.UnusualSummary{
			TotalAmount: r.GrandTotal,
			DateRange:   model.Period{Start: r.EarliestDate, End: r.LatestDate},
		},
	}
}

// Samples maps raw transaction rows to sample transactions.
func Samples(rows []model.Row) []model.SampleTransaction {
	out := make([]model.SampleTransaction, 0, len(rows))
	for _, row := range rows {
		e, _ := TransactionRow("", row)
		out = append(out, model.SampleTransaction{
			Date:        e.MinDate,
			Amount:      e.Amount,
			Type:        e.Label,
			Description: e.Example.Memo,
			Account:     e.Account,
		})
	}
	return out
}

// interview builds a CTA or BIP sample from its rows, reading the customer
// or business name from the first row when present.
func interview(kind string, rows []model.Row) *model.Interview {
	if len(rows) == 0 {
		return nil
	}
	first := rows[0]
	return &model.Interview{
		Kind:          kind,
		Name:          strings.TrimSpace(text(first, []string{"Customer Name", "Business Name", "Name", "customerName", "businessName"})),
		InterviewDate: coerce.ToCanonicalDate(field(first, []string{"Interview Date", "interviewDate"})),
		Summary:       text(first, []string{"Summary", "Interview Summary", "summary"}),
		Transactions:  Samples(rows),
	}
}
