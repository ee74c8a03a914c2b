package model

// Breakdown is one transaction type's share of credits or debits.
type Breakdown struct {
	Type    string  `json:"type"`
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
	Count   int     `json:"count"`
}

// ActivityTotals is the top-level activity summary of a transaction summary
// record. TotalAmount is nil until a source provides or derives it.
type ActivityTotals struct {
	TotalAmount      *float64 `json:"total_amount,omitempty"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	TransactionTypes []string `json:"transaction_types"`
	Description      string   `json:"description,omitempty"`
}

// Total returns the total amount, or 0 when unset.
func (a *ActivityTotals) Total() float64 {
	if a == nil || a.TotalAmount == nil {
		return 0
	}
	return *a.TotalAmount
}

// SetTotal sets the total amount.
func (a *ActivityTotals) SetTotal(v float64) { a.TotalAmount = &v }

// TransactionTotals is the credit/debit breakdown of a transaction summary.
type TransactionTotals struct {
	TotalCredits    float64     `json:"total_credits"`
	TotalDebits     float64     `json:"total_debits"`
	CreditBreakdown []Breakdown `json:"credit_breakdown"`
	DebitBreakdown  []Breakdown `json:"debit_breakdown"`
}

// SampleTransaction is one transaction quoted in the narrative.
type SampleTransaction struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Account     string  `json:"account,omitempty"`
}

// UnusualSummary totals the unusual activity sample.
type UnusualSummary struct {
	TotalAmount float64 `json:"total_amount"`
	DateRange   Period  `json:"date_range"`
}

// UnusualActivity is the sample of transactions flagged as unusual.
type UnusualActivity struct {
	Description  string              `json:"description,omitempty"`
	Transactions []SampleTransaction `json:"transactions"`
	Summary      UnusualSummary      `json:"summary"`
}

// AccountSummary is the spreadsheet-level summary of one account.
type AccountSummary struct {
	AccountNumber   string      `json:"account_number"`
	TotalCredits    float64     `json:"total_credits"`
	TotalDebits     float64     `json:"total_debits"`
	CreditCount     int         `json:"credit_count"`
	DebitCount      int         `json:"debit_count"`
	CreditBreakdown []Breakdown `json:"credit_breakdown,omitempty"`
	DebitBreakdown  []Breakdown `json:"debit_breakdown,omitempty"`
	StartDate       string      `json:"start_date,omitempty"`
	EndDate         string      `json:"end_date,omitempty"`
}

// Interview is a customer or business interview sample (CTA or BIP).
type Interview struct {
	Name          string              `json:"name,omitempty"`
	Kind          string              `json:"kind,omitempty"`
	InterviewDate string              `json:"interview_date,omitempty"`
	Summary       string              `json:"summary,omitempty"`
	BusinessType  string              `json:"business_type,omitempty"`
	Transactions  []SampleTransaction `json:"transactions,omitempty"`
}

// Transfer is a movement of funds between two accounts of the same case.
type Transfer struct {
	Date        string  `json:"date"`
	FromAccount string  `json:"from_account"`
	ToAccount   string  `json:"to_account"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type,omitempty"`
}

// TransactionSummaryRecord is the spreadsheet-sourced summary of a case,
// independent of the CaseRecord. A nil container means the source did not
// provide it. AccountSummaries keeps source order; its first entry is the
// fallback account.
type TransactionSummaryRecord struct {
	ActivitySummary       *ActivityTotals    `json:"activity_summary,omitempty"`
	TransactionSummary    *TransactionTotals `json:"transaction_summary,omitempty"`
	UnusualActivity       *UnusualActivity   `json:"unusual_activity,omitempty"`
	AccountSummaries      []AccountSummary   `json:"account_summaries"`
	CTASample             *Interview         `json:"cta_sample,omitempty"`
	BIPSample             *Interview         `json:"bip_sample,omitempty"`
	InterAccountTransfers []Transfer         `json:"inter_account_transfers"`
}
