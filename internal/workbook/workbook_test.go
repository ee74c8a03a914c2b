package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

func sheet(name string, rows ...[]string) fetcher.Sheet {
	s := fetcher.Sheet{Name: name, Rows: rows}
	for _, r := range rows {
		s.MaxCol = max(s.MaxCol, len(r))
	}
	return s
}

// --- roles and tables ---

func TestDetectRole(t *testing.T) {
	tests := []struct {
		name string
		want Role
	}{
		{"Activity Summary", RoleActivitySummary},
		{"ACTIVITY SUMM", RoleActivitySummary},
		{"Unusual Activity", RoleUnusualActivity},
		{"CTA Sample", RoleCTASample},
		{"Sample", RoleCTASample},
		{"BIP Sample", RoleBIPSample},
		{"Business Interview", RoleBIPSample},
		{"Transactions", RoleTransactions},
		{"Sheet1", RoleTransactions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectRole(tt.name))
		})
	}
}

func TestNewTable_SkipsTitleRows(t *testing.T) {
	tbl := NewTable(sheet("Transactions",
		[]string{"Account Activity Report"},
		[]string{},
		[]string{"Date", "Amount", "Type"},
		[]string{"01/03/2023", "100", "Wire"},
		[]string{"", "", ""},
		[]string{"01/04/2023", "50", "ATM"},
	))
	assert.Equal(t, 2, tbl.HeaderRow)
	assert.Equal(t, []string{"Date", "Amount", "Type"}, tbl.Header)
	assert.Len(t, tbl.Rows, 2)
}

func TestNewTable_Empty(t *testing.T) {
	tbl := NewTable(sheet("Transactions"))
	assert.Equal(t, -1, tbl.HeaderRow)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, -1, tbl.Column("amount"))
}

func TestTable_Column(t *testing.T) {
	tbl := Table{Header: []string{"Address", "Amount Due", "Amount", " Debit/Credit "}}
	assert.Equal(t, 2, tbl.Column(amountCols...), "exact match wins over substring")
	assert.Equal(t, 3, tbl.Column(directionCols...))
	assert.Equal(t, -1, tbl.Column("dr"), "short names match exactly only")
	assert.Equal(t, 1, Table{Header: []string{"Date", "Txn Amount USD"}}.Column(amountCols...))
}

func TestTable_Records(t *testing.T) {
	tbl := NewTable(sheet("x", []string{"Date", "", "Amount"}, []string{"01/03/2023", "junk", "100"}, []string{"01/04/2023"}))
	assert.Equal(t, []model.Row{
		{"Date": "01/03/2023", "Amount": "100"},
		{"Date": "01/04/2023"},
	}, tbl.Records())
}

// --- extraction ---

func registerSheet() fetcher.Sheet {
	return sheet("Transactions",
		[]string{"Date", "Account", "Transaction Type", "Amount", "Debit/Credit", "Counterparty"},
		[]string{"01/03/2023", "111", "Cash Deposit", "$9,500.00", "CR", ""},
		[]string{"01/05/2023", "111", "Cash Deposit", "9,200.00", "CR", ""},
		[]string{"01/07/2023", "111", "Wire Transfer", "5,000", "DR", "to acct 222"},
		[]string{"01/02/2023", "222", "Wire Transfer", "5,000", "CR", "from 111"},
		[]string{"01/09/2023", "222", "ATM", "300", "DR", ""},
		[]string{"01/10/2023", "222", "ATM", "", "DR", ""},
	)
}

func TestFromSheets_Register(t *testing.T) {
	rec := FromSheets([]fetcher.Sheet{registerSheet()})

	require.NotNil(t, rec.TransactionSummary)
	ts := rec.TransactionSummary
	assert.InDelta(t, 23700.0, ts.TotalCredits, 0.001)
	assert.InDelta(t, 5300.0, ts.TotalDebits, 0.001)
	require.Len(t, ts.CreditBreakdown, 2)
	assert.Equal(t, "Cash Deposit", ts.CreditBreakdown[0].Type)
	assert.Equal(t, 2, ts.CreditBreakdown[0].Count)
	assert.InDelta(t, 18700.0/23700.0*100, ts.CreditBreakdown[0].Percent, 0.001)

	require.Len(t, rec.AccountSummaries, 2)
	a := rec.AccountSummaries[0]
	assert.Equal(t, "111", a.AccountNumber)
	assert.InDelta(t, 18700.0, a.TotalCredits, 0.001)
	assert.Equal(t, 2, a.CreditCount)
	assert.Equal(t, 1, a.DebitCount)
	assert.Equal(t, "01/03/2023", a.StartDate)
	assert.Equal(t, "01/07/2023", a.EndDate)

	require.Len(t, rec.InterAccountTransfers, 2)
	assert.Equal(t, model.Transfer{Date: "01/02/2023", FromAccount: "222", ToAccount: "111", Amount: 5000, Type: "Wire Transfer"}, rec.InterAccountTransfers[0])
	assert.Equal(t, "222", rec.InterAccountTransfers[1].ToAccount)

	assert.Nil(t, rec.ActivitySummary)
	assert.Nil(t, rec.UnusualActivity)
}

func TestFromSheets_SeparateDebitCreditColumns(t *testing.T) {
	rec := FromSheets([]fetcher.Sheet{sheet("Register",
		[]string{"Date", "Type", "Amount", "Debit", "Credit"},
		[]string{"01/03/2023", "Zelle", "200", "", "200"},
		[]string{"01/04/2023", "ATM", "60", "60", ""},
	)})
	require.NotNil(t, rec.TransactionSummary)
	assert.Equal(t, 200.0, rec.TransactionSummary.TotalCredits)
	assert.Equal(t, 60.0, rec.TransactionSummary.TotalDebits)
	require.Len(t, rec.AccountSummaries, 1)
	assert.Equal(t, "unknown", rec.AccountSummaries[0].AccountNumber)
}

func TestFromSheets_DirectionFromTypeOrSign(t *testing.T) {
	rec := FromSheets([]fetcher.Sheet{sheet("Register",
		[]string{"Type", "Amount"},
		[]string{"Credit Memo", "10"},
		[]string{"+Deposit", "5"},
		[]string{"Fee", "3"},
	)})
	assert.Equal(t, 15.0, rec.TransactionSummary.TotalCredits)
	assert.Equal(t, 3.0, rec.TransactionSummary.TotalDebits)

	rec = FromSheets([]fetcher.Sheet{sheet("Register",
		[]string{"Date", "Amount"},
		[]string{"01/01/2023", "10"},
		[]string{"01/02/2023", "-4"},
	)})
	assert.Equal(t, 10.0, rec.TransactionSummary.TotalCredits)
	assert.Equal(t, -4.0, rec.TransactionSummary.TotalDebits)
	assert.Equal(t, "Unknown", rec.TransactionSummary.CreditBreakdown[0].Type)
}

func TestFromSheets_NoAmountColumn(t *testing.T) {
	rec := FromSheets([]fetcher.Sheet{sheet("Register", []string{"Date", "Memo"}, []string{"01/01/2023", "x"})})
	assert.Nil(t, rec.TransactionSummary)
	assert.NotNil(t, rec.AccountSummaries)
	assert.NotNil(t, rec.InterAccountTransfers)
}

func TestFromSheets_ActivitySummary(t *testing.T) {
	rec := FromSheets([]fetcher.Sheet{
		sheet("Activity Summary",
			[]string{"Transaction Type", "Total Amount", "Date Range"},
			[]string{"Cash Deposit", "$27,600.00", "1/1/23 - 6/30/23"},
			[]string{"Total Credits", "27,600", ""},
			[]string{"Wire", "25,000", ""},
		),
		registerSheet(),
	})

	act := rec.ActivitySummary
	require.NotNil(t, act)
	assert.InDelta(t, 80200.0, act.Total(), 0.001)
	assert.Equal(t, "01/01/2023", act.StartDate)
	assert.Equal(t, "06/30/2023", act.EndDate)
	assert.Equal(t, []string{"Cash Deposit", "Wire"}, act.TransactionTypes)
}

func TestFromSheets_ActivitySummaryDateColumns(t *testing.T) {
	rec := FromSheets([]fetcher.Sheet{sheet("Activity Summ",
		[]string{"Type", "Credit Total", "Debit Total", "Min Date", "Max Date"},
		[]string{"Zelle", "100", "20", "2023-02-01", "2023-02-20"},
		[]string{"ATM", "50", "0", "2023-01-15", "2023-03-01"},
	)})
	act := rec.ActivitySummary
	require.NotNil(t, act)
	assert.Equal(t, 170.0, act.Total())
	assert.Equal(t, "01/15/2023", act.StartDate)
	assert.Equal(t, "03/01/2023", act.EndDate)
}

func TestFromSheets_UnusualActivity(t *testing.T) {
	rows := [][]string{{"Date", "Amount", "Type", "Branch", "Description"}}
	for i := 1; i <= 7; i++ {
		rows = append(rows, []string{fmt.Sprintf("01/%02d/2023", i), "9,000", "Cash Deposit", "Main St", ""})
	}
	rows[1][4] = "structured deposit"
	rec := FromSheets([]fetcher.Sheet{sheet("Unusual Activity", rows...)})

	u := rec.UnusualActivity
	require.NotNil(t, u)
	require.Len(t, u.Transactions, 5)
	assert.Equal(t, "structured deposit", u.Description)
	assert.Equal(t, model.SampleTransaction{Date: "01/01/2023", Amount: 9000, Type: "Cash Deposit", Description: "structured deposit"}, u.Transactions[0])
	assert.Equal(t, "Main St", u.Transactions[1].Description)
	assert.Equal(t, 45000.0, u.Summary.TotalAmount)
	assert.Equal(t, model.Period{Start: "01/01/2023", End: "01/05/2023"}, u.Summary.DateRange)
}

func TestFromSheets_Interviews(t *testing.T) {
	rec := FromSheets([]fetcher.Sheet{
		sheet("CTA Sample",
			[]string{"Customer Name", "Interview Date", "Summary"},
			[]string{"GLENN A BROWDER", "3/1/23", "Customer stated the cash came from sales."},
		),
		sheet("BIP Sample",
			[]string{"Business Name", "Business Type", "Notes"},
			[]string{"BROWDER LLC", "Landscaping", "Cash intensive"},
		),
	})
	require.NotNil(t, rec.CTASample)
	assert.Equal(t, model.Interview{Kind: "CTA", Name: "GLENN A BROWDER", InterviewDate: "03/01/2023", Summary: "Customer stated the cash came from sales."}, *rec.CTASample)
	require.NotNil(t, rec.BIPSample)
	assert.Equal(t, model.Interview{Kind: "BIP", Name: "BROWDER LLC", BusinessType: "Landscaping", Summary: "Cash intensive"}, *rec.BIPSample)
}

func TestFromSheets_FallsBackToFirstSheetAsRegister(t *testing.T) {
	rec := FromSheets([]fetcher.Sheet{sheet("Unusual Activity",
		[]string{"Date", "Amount", "Debit/Credit"},
		[]string{"01/01/2023", "100", "CR"},
	)})
	require.NotNil(t, rec.TransactionSummary)
	assert.Equal(t, 100.0, rec.TransactionSummary.TotalCredits)
	require.NotNil(t, rec.UnusualActivity)
}

// --- files ---

func writeWorkbook(t *testing.T, sheets ...fetcher.Sheet) string {
	t.Helper()
	f := xlsx.NewFile()
	for _, s := range sheets {
		sh, err := f.AddSheet(s.Name)
		require.NoError(t, err)
		for _, r := range s.Rows {
			row := sh.AddRow()
			for _, v := range r {
				row.AddCell().SetString(v)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "transactions.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestExtract_XLSX(t *testing.T) {
	path := writeWorkbook(t, registerSheet())
	rec, err := Extract(path)
	require.NoError(t, err)
	require.NotNil(t, rec.TransactionSummary)
	assert.InDelta(t, 23700.0, rec.TransactionSummary.TotalCredits, 0.001)
}

func TestExtract_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Account,Type,Amount,Debit/Credit\n01/02/2023,111,Zelle,\"1,250.00\",C\n"), 0o644))
	rec, err := Extract(path)
	require.NoError(t, err)
	require.NotNil(t, rec.TransactionSummary)
	assert.Equal(t, 1250.0, rec.TransactionSummary.TotalCredits)
	require.Len(t, rec.AccountSummaries, 1)
	assert.Equal(t, "111", rec.AccountSummaries[0].AccountNumber)
}

func TestExtract_Errors(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)

	_, err = Extract("transactions.pdf")
	require.ErrorIs(t, err, fetcher.ErrUnsupportedExtension)
}

func TestScan(t *testing.T) {
	path := writeWorkbook(t,
		sheet("Transactions", []string{"Report"}, []string{"Date", "Amount"}, []string{"01/01/2023", "5"}),
		sheet("CTA Sample", []string{"Customer Name", "Summary"}, []string{"A", "B"}),
	)
	a, err := Scan(path)
	require.NoError(t, err)
	require.Len(t, a.Sheets, 2)
	assert.Equal(t, SheetInfo{
		Name: "Transactions", Role: RoleTransactions, Rows: 3, Columns: 2,
		HeaderRow: 1, Header: []string{"Date", "Amount"}, DataRows: 1,
	}, a.Sheets[0])
	assert.Equal(t, RoleCTASample, a.Sheets[1].Role)
}
