package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

func group(account string, rows ...model.Row) []model.AccountRows {
	return []model.AccountRows{{Account: account, Rows: rows}}
}

// --- IsCredit ---

func TestIsCredit(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{"CR", true},
		{"credit", true},
		{"Credit", true},
		{"c", true},
		{"+", true},
		{" cr ", true},
		{"DR", false},
		{"debit", false},
		{"", false},
		{nil, false},
		{"Zelle", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsCredit(tt.in), "IsCredit(%v)", tt.in)
	}
}

// --- Fold ---

func TestFold_ATMWithdrawal(t *testing.T) {
	s := Fold(group("123", model.Row{
		"Custom Language": "ATM Withdrawal",
		"Debit/Credit":    "DR",
		"Total ":          "$1,200.50",
		"# Transactions ": "4",
	}), ActivityRow)

	ts := s.Totals.ByType["ATM Withdrawal"]
	require.NotNil(t, ts)
	assert.InDelta(t, 1200.50, ts.Debits.Amount, 0.001)
	assert.Equal(t, 4, ts.Debits.Count)
	assert.Equal(t, model.Flow{}, ts.Credits)

	assert.InDelta(t, 1200.50, s.Totals.Debits.TotalAmount, 0.001)
	assert.Equal(t, 4, s.Totals.Debits.TransactionCount)
	require.Len(t, s.Accounts, 1)
	assert.Equal(t, "123", s.Accounts[0].Account)
	assert.InDelta(t, 1200.50, s.Accounts[0].Debits.ByType["ATM Withdrawal"].Amount, 0.001)
}

func TestFold_MinAmountNormalized(t *testing.T) {
	s := Fold(group("A",
		model.Row{"Custom Language": "Wire", "Debit/Credit": "DR", "Total ": 500, "# Transactions ": 2,
			"Min Debit Amt.": "$100.00", "Max Debit Amt.": "$400.00"},
		model.Row{"Custom Language": "Check", "Debit/Credit": "DR", "Total ": 90, "# Transactions ": 3},
	), ActivityRow)

	acct := s.Accounts[0]
	assert.Equal(t, 0.0, acct.Credits.MinAmount, "no credit rows")
	assert.Equal(t, 0.0, s.Totals.Credits.MinAmount)
	assert.Equal(t, 100.0, acct.Debits.MinAmount)
	assert.Equal(t, 400.0, acct.Debits.MaxAmount)
	assert.Equal(t, 0.0, acct.Debits.ByType["Check"].MinAmount, "row without bounds")
	assert.Equal(t, 100.0, acct.Debits.ByType["Wire"].MinAmount)
}

func TestFold_Conservation(t *testing.T) {
	rows := []model.Row{
		{"Custom Language": "Cash Deposit", "Debit/Credit": "CR", "Total ": "1,000.25", "# Transactions ": 3},
		{"Custom Language": "Zelle", "Debit/Credit": "C", "Total ": 250, "# Transactions ": "2"},
		{"Custom Language": "Cash Deposit", "Debit/Credit": "+", "Total ": 49.75, "# Transactions ": 1},
		{"Custom Language": "Wire", "Debit/Credit": "DR", "Total ": "$300", "# Transactions ": 1},
		{"Custom Language": "ATM", "Debit/Credit": "debit", "Total ": 80, "# Transactions ": "4 txns"},
	}
	s := Fold([]model.AccountRows{
		{Account: "A", Rows: rows[:3]},
		{Account: "B", Rows: rows[3:]},
	}, ActivityRow)

	for _, side := range []model.AmountStat{s.Totals.Credits, s.Totals.Debits} {
		var amount float64
		var count int
		for _, ts := range side.ByType {
			amount += ts.Amount
			count += ts.Count
		}
		assert.InDelta(t, side.TotalAmount, amount, 0.0001)
		assert.Equal(t, side.TransactionCount, count)
	}
	assert.InDelta(t, 1300.0, s.Totals.Credits.TotalAmount, 0.0001)
	assert.InDelta(t, 380.0, s.Totals.Debits.TotalAmount, 0.0001)
	assert.Equal(t, 11, s.Totals.TransactionCount)
	assert.InDelta(t, 1680.0, s.Totals.GrandTotal, 0.0001)

	var perAccount float64
	for _, a := range s.Accounts {
		perAccount += a.Credits.TotalAmount + a.Debits.TotalAmount
	}
	assert.InDelta(t, s.Totals.GrandTotal, perAccount, 0.0001)
	assert.Equal(t, []string{"Cash Deposit", "Zelle", "Wire", "ATM"}, s.Totals.TypeOrder)
}

func TestFold_HighestPercentKeepsFirstOnTie(t *testing.T) {
	s := Fold(group("A",
		model.Row{"Custom Language": "Zelle", "Debit/Credit": "CR", "% of Credits": 40, "Total ": 400},
		model.Row{"Custom Language": "Cash", "Debit/Credit": "CR", "% of Credits": 40, "Total ": 400},
		model.Row{"Custom Language": "Check", "Debit/Credit": "CR", "% of Credits": 20, "Total ": 200},
	), ActivityRow)

	credits := s.Accounts[0].Credits
	assert.Equal(t, "Zelle", credits.HighestPercentType)
	assert.Equal(t, 40.0, credits.HighestPercentValue)
	assert.Equal(t, 100.0, credits.TotalPercent)
	assert.Empty(t, s.Accounts[0].Debits.HighestPercentType)
}

func TestFold_HighestPercentIsCumulative(t *testing.T) {
	s := Fold(group("A",
		model.Row{"Custom Language": "Zelle", "Debit/Credit": "CR", "% of Credits": 30},
		model.Row{"Custom Language": "Cash", "Debit/Credit": "CR", "% of Credits": 40},
		model.Row{"Custom Language": "Zelle", "Debit/Credit": "CR", "% of Credits": 20},
	), ActivityRow)

	assert.Equal(t, "Zelle", s.Accounts[0].Credits.HighestPercentType)
	assert.Equal(t, 50.0, s.Accounts[0].Credits.HighestPercentValue)
}

func TestFold_DateRange(t *testing.T) {
	s := Fold(group("A",
		model.Row{"Custom Language": "Wire", "Debit/Credit": "DR", "Min Txn Date ": "2023-03-05", "Max Txn Date ": "4/1/2023"},
		model.Row{"Custom Language": "Wire", "Debit/Credit": "DR", "Min Txn Date ": "02/10/2023", "Max Txn Date ": "03/01/2023"},
	), ActivityRow)

	wire := s.Accounts[0].Debits.ByType["Wire"]
	assert.Equal(t, "02/10/2023", wire.MinDate)
	assert.Equal(t, "04/01/2023", wire.MaxDate)
	assert.Equal(t, "02/10/2023", s.Totals.EarliestDate)
	assert.Equal(t, "04/01/2023", s.Totals.LatestDate)
}

func TestFold_SkipsUnlabelledRows(t *testing.T) {
	s := Fold(group("A", model.Row{"Total ": 100}), ActivityRow)
	assert.Empty(t, s.Accounts)
	assert.Equal(t, 0.0, s.Totals.GrandTotal)
	assert.NotNil(t, s.Accounts)
}

// --- FoldRows ---

func TestFoldRows_Transactions(t *testing.T) {
	rows := []model.Row{
		{"accountKey": "ICS100", "date": "01/05/2023", "type": "credit", "amount": 100, "transactionType": "Zelle", "senderName": "A"},
		{"accountKey": "ICS100", "date": "01/02/2023", "type": "credit", "amount": 50, "transactionType": "Zelle"},
		{"accountKey": "ICS100", "date": "01/09/2023", "type": "debit", "amount": "$75.00", "description": "ATM cash"},
		{"accountKey": "ICS100", "date": "01/03/2023", "type": "credit", "amount": 10, "transactionType": "Zelle"},
		{"accountKey": "ICS100", "date": "01/04/2023", "type": "credit", "amount": 5, "transactionType": "Zelle"},
	}
	r := FoldRows(rows, TransactionRow)

	assert.Equal(t, 5, r.TransactionCount)
	assert.InDelta(t, 240.0, r.GrandTotal, 0.001)
	assert.InDelta(t, 165.0, r.Credits.TotalAmount, 0.001)
	assert.Equal(t, 4, r.Credits.TransactionCount)
	assert.Equal(t, 5.0, r.Credits.MinAmount)
	assert.Equal(t, 100.0, r.Credits.MaxAmount)
	assert.Equal(t, "01/02/2023", r.EarliestDate)
	assert.Equal(t, "01/09/2023", r.LatestDate)

	zelle := r.ByType["Zelle"]
	require.NotNil(t, zelle)
	assert.Len(t, zelle.Examples, maxExamples)
	assert.Equal(t, "A", zelle.Examples[0].Sender)
	assert.True(t, zelle.Examples[0].IsCredit)
	assert.Equal(t, model.Flow{Amount: 75, Count: 1}, r.ByType["ATM cash"].Debits)
}

func TestFoldRows_SampleRowsDropParties(t *testing.T) {
	r := FoldRows([]model.Row{{"amount": 9000, "Custom Language": "Cash Deposit", "Sender": "X", "Debit/Credit": "CR"}}, SampleRow)
	ex := r.ByType["Cash Deposit"].Examples
	require.Len(t, ex, 1)
	assert.Empty(t, ex[0].Sender)
	assert.InDelta(t, 9000.0, r.Credits.TotalAmount, 0.001)
}

func TestFoldRows_Empty(t *testing.T) {
	r := FoldRows(nil, TransactionRow)
	assert.Equal(t, 0, r.TransactionCount)
	assert.Equal(t, 0.0, r.Credits.MinAmount)
	assert.NotNil(t, r.ByType)
}

// --- Aggregate ---

func fixtureCase() *model.CaseRecord {
	return &model.CaseRecord{
		CaseNumber: "CC0015823420",
		AlertInfo: []model.Alert{
			{AlertID: "AMLR1", AlertMonth: "201902", Description: "High Risk Country"},
			{AlertID: "AMLR2", AlertMonth: "201902", Description: "Cash activity"},
		},
		Accounts: []model.Account{{AccountNumber: "ICS9999988", AccountType: "ICSNPSLV"}},
		Tables: model.Tables{
			Activity: group("204784659052",
				model.Row{"Custom Language": "Cash Deposit", "Debit/Credit": "CR", "% of Credits": 100, "Total ": 27600, "# Transactions ": 3},
				model.Row{"Custom Language": "Wire Transfer", "Debit/Credit": "DR", "% of Debits": 100, "Total ": 25000, "# Transactions ": 1},
			),
			Unusual: []model.Row{
				{"Transaction Date": "02/15/2023", "Transaction Amount": 9500, "Custom Language": "Cash Deposit", "Memo": "branch", "Account": "204784659052"},
				{"Transaction Date": "02/17/2023", "Transaction Amount": 9200, "Custom Language": "Cash Deposit", "Memo": "branch", "Account": "204784659052"},
			},
		},
	}
}

func TestAggregate_EnrichesLoneAccount(t *testing.T) {
	rec := fixtureCase()
	agg := Aggregate(rec)

	assert.Same(t, agg, rec.Aggregates)
	assert.InDelta(t, 27600.0, rec.Accounts[0].Credits.TotalAmount, 0.001)
	assert.InDelta(t, 25000.0, rec.Accounts[0].Debits.TotalAmount, 0.001)

	assert.InDelta(t, 18700.0, agg.UnusualActivity.GrandTotal, 0.001)
	assert.Equal(t, "02/15/2023", agg.UnusualActivity.EarliestDate)
	assert.Equal(t, "02/17/2023", agg.UnusualActivity.LatestDate)
	assert.Empty(t, agg.Counterparties.Accounts)
	assert.Equal(t, 0.0, agg.Counterparties.Totals.Credits.MinAmount)
}

func TestAggregate_MatchesAccountsByNumber(t *testing.T) {
	rec := fixtureCase()
	rec.Accounts = append(rec.Accounts, model.Account{AccountNumber: "204784659052"})
	Aggregate(rec)

	assert.Equal(t, 0.0, rec.Accounts[0].Credits.TotalAmount)
	assert.InDelta(t, 27600.0, rec.Accounts[1].Credits.TotalAmount, 0.001)
}

func TestAggregate_AlertingSummary(t *testing.T) {
	rec := fixtureCase()
	a := Aggregate(rec).AlertingActivity

	assert.Equal(t, "CC0015823420", a.CaseNumber)
	assert.Equal(t, "ICS9999988", a.Account)
	assert.Equal(t, "ICSNPSLV ICS9999988", a.AlertingAccounts())
	assert.Equal(t, []string{"201902"}, a.AlertMonths)
	assert.Equal(t, []string{"High Risk Country", "Cash activity"}, a.Descriptions)
	assert.InDelta(t, 27600.0, a.TotalCredits, 0.001)
	assert.Equal(t, 1, a.DebitCount)
	assert.Equal(t, "Cash Deposit", a.Credits.HighestPercentType)
	assert.Equal(t, []string{"Wire Transfer"}, a.DebitTypes)
}

// --- SummaryRecord ---

func TestSummaryRecord(t *testing.T) {
	rec := fixtureCase()
	s := SummaryRecord(rec)

	require.NotNil(t, rec.Aggregates)
	require.NotNil(t, s.ActivitySummary)
	assert.InDelta(t, 52600.0, s.ActivitySummary.Total(), 0.001)
	assert.Empty(t, s.ActivitySummary.TransactionTypes)

	require.NotNil(t, s.TransactionSummary)
	assert.InDelta(t, 27600.0, s.TransactionSummary.TotalCredits, 0.001)
	require.Len(t, s.TransactionSummary.CreditBreakdown, 1)
	assert.Equal(t, "Cash Deposit", s.TransactionSummary.CreditBreakdown[0].Type)
	assert.Equal(t, 3, s.TransactionSummary.CreditBreakdown[0].Count)

	require.Len(t, s.AccountSummaries, 1)
	assert.Equal(t, "204784659052", s.AccountSummaries[0].AccountNumber)

	require.NotNil(t, s.UnusualActivity)
	require.Len(t, s.UnusualActivity.Transactions, 2)
	assert.Equal(t, model.SampleTransaction{
		Date: "02/15/2023", Amount: 9500, Type: "Cash Deposit", Description: "branch", Account: "204784659052",
	}, s.UnusualActivity.Transactions[0])
	assert.Equal(t, model.Period{Start: "02/15/2023", End: "02/17/2023"}, s.UnusualActivity.Summary.DateRange)

	assert.Nil(t, s.CTASample)
	assert.NotNil(t, s.InterAccountTransfers)
}

func TestBreakdowns_SortedByAmount(t *testing.T) {
	side := model.AmountStat{
		TotalAmount: 400,
		ByType: map[string]*model.TypeStat{
			"Small": {Amount: 100, Count: 1},
			"Large": {Amount: 300, Count: 2},
		},
		TypeOrder: []string{"Small", "Large"},
	}
	b := Breakdowns(side)
	require.Len(t, b, 2)
	assert.Equal(t, "Large", b[0].Type)
	assert.InDelta(t, 75.0, b[0].Percent, 0.001)
	assert.InDelta(t, 25.0, b[1].Percent, 0.001)
}
