package aggregate

import (
	"slices"
	"strings"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// Field vocabularies of the known exports. Row.Get ignores case and
// surrounding spaces, so "Total " and "Total" are the same key.
var (
	directionKeys = []string{"Debit/Credit", "debitCredit", "debit_credit", "direction", "Credit/Debit"}
	accountKeys   = []string{"accountKey", "Account", "account", "Account Number", "account_number"}

	typeKeys    = []string{"Custom Language", "type", "Type", "Transaction Type", "transactionType"}
	partyKeys   = slices.Concat([]string{"Counterparty", "Counterparty Name", "Party", "Party Name", "Name"}, typeKeys)
	percentKeys = []string{"% of Credits", "% of Debits", "% of Total", "percentOfTotal", "Percent", "percent"}
	totalKeys   = []string{"Total", "totalAmount", "Total Amount", "Amount", "amount"}
	countKeys   = []string{"# Transactions", "transactionCount", "Transaction Count", "Count", "count"}
	minAmtKeys  = []string{"Min Credit Amt.", "Min Debit Amt.", "Min Amount", "minTransactionAmount"}
	maxAmtKeys  = []string{"Max Credit Amt.", "Max Debit Amt.", "Max Amount", "maxTransactionAmount"}
	minDateKeys = []string{"Min Txn Date", "minTransactionDate", "Min Date"}
	maxDateKeys = []string{"Max Txn Date", "maxTransactionDate", "Max Date"}

	txnLabelKeys  = []string{"transactionType", "Custom Language", "Transaction Type", "description", "Description"}
	txnAmountKeys = []string{"amount", "Transaction Amount", "Amount", "Total"}
	txnDateKeys   = []string{"date", "Transaction Date", "Date", "Posting Date"}
	senderKeys    = []string{"senderName", "Sender", "Originator", "sender"}
	receiverKeys  = []string{"receiverName", "Receiver", "Beneficiary", "receiver"}
	memoKeys      = []string{"description", "Memo", "memo", "Description"}
)

var creditMarkers = map[string]bool{"credit": true, "cr": true, "c": true, "+": true}

// IsCredit reports whether a debit/credit indicator names the credit side.
func IsCredit(v any) bool {
	return creditMarkers[strings.ToLower(coerce.ToString(v))]
}

func field(r model.Row, keys []string) any {
	v, _ := r.Get(keys...)
	return v
}

func text(r model.Row, keys []string) string {
	return coerce.ToString(field(r, keys))
}

func optAmount(r model.Row, keys []string) *float64 {
	v, ok := r.Get(keys...)
	if !ok {
		return nil
	}
	f := coerce.ToAmount(v)
	return &f
}

// direction reads the row's debit/credit indicator, falling back to a
// standardized "type" of credit or debit.
func direction(r model.Row) bool {
	if v, ok := r.Get(directionKeys...); ok {
		return IsCredit(v)
	}
	return IsCredit(field(r, []string{"type"}))
}

func breakdownEntry(account string, r model.Row, labels []string) (Entry, bool) {
	label := text(r, labels)
	if label == "" {
		return Entry{}, false
	}
	if acct := text(r, accountKeys); acct != "" && account == "" {
		account = acct
	}
	e := Entry{
		Account:   account,
		Label:     label,
		IsCredit:  direction(r),
		Amount:    coerce.ToAmount(field(r, totalKeys)),
		Count:     coerce.ToCount(field(r, countKeys)),
		Percent:   coerce.ToAmount(field(r, percentKeys)),
		MinAmount: optAmount(r, minAmtKeys),
		MaxAmount: coerce.ToAmount(field(r, maxAmtKeys)),
		MinDate:   coerce.ToCanonicalDate(field(r, minDateKeys)),
		MaxDate:   coerce.ToCanonicalDate(field(r, maxDateKeys)),
	}
	return e, true
}

// ActivityRow reads a per-type activity summary row: a "Custom Language"
// label with total, count, percentage and min/max bounds.
func ActivityRow(account string, r model.Row) (Entry, bool) {
	return breakdownEntry(account, r, typeKeys)
}

// CounterpartyRow reads a counterparty breakdown row, labelled by party.
func CounterpartyRow(account string, r model.Row) (Entry, bool) {
	return breakdownEntry(account, r, partyKeys)
}

// TransactionRow reads a single transaction. Each row counts once and its
// amount bounds both the minimum and the maximum.
func TransactionRow(account string, r model.Row) (Entry, bool) {
	amount := coerce.ToAmount(field(r, txnAmountKeys))
	label := text(r, txnLabelKeys)
	if label == "" {
		label = "N/A"
	}
	if acct := text(r, accountKeys); acct != "" {
		account = acct
	}
	date := coerce.ToCanonicalDate(field(r, txnDateKeys))
	credit := direction(r)
	return Entry{
		Account:   account,
		Label:     label,
		IsCredit:  credit,
		Amount:    amount,
		Count:     1,
		MinAmount: &amount,
		MaxAmount: amount,
		MinDate:   date,
		MaxDate:   date,
		Example: &model.Example{
			Account:  account,
			Date:     date,
			Amount:   amount,
			IsCredit: credit,
			Sender:   text(r, senderKeys),
			Receiver: text(r, receiverKeys),
			Memo:     text(r, memoKeys),
		},
	}, true
}

// SampleRow reads a CTA or BIP sample transaction. Samples quote no parties.
func SampleRow(account string, r model.Row) (Entry, bool) {
	e, ok := TransactionRow(account, r)
	if ok {
		e.Example.Sender, e.Example.Receiver = "", ""
	}
	return e, ok
}
