package model

import "strings"

// Flow is an amount and count moving in one direction.
type Flow struct {
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// Example is a single sample transaction kept alongside a type rollup.
type Example struct {
	Account  string  `json:"account,omitempty"`
	Date     string  `json:"date,omitempty"`
	Amount   float64 `json:"amount"`
	IsCredit bool    `json:"is_credit"`
	Sender   string  `json:"sender,omitempty"`
	Receiver string  `json:"receiver,omitempty"`
	Memo     string  `json:"memo,omitempty"`
}

// TypeStat summarizes every row sharing one transaction type label.
type TypeStat struct {
	Percent   float64   `json:"percent"`
	Amount    float64   `json:"amount"`
	Count     int       `json:"count"`
	MinAmount float64   `json:"min_amount"`
	MaxAmount float64   `json:"max_amount"`
	MinDate   string    `json:"min_date,omitempty"`
	MaxDate   string    `json:"max_date,omitempty"`
	Credits   Flow      `json:"credits"`
	Debits    Flow      `json:"debits"`
	Examples  []Example `json:"examples,omitempty"`
}

// AmountStat summarizes one direction (credits or debits) of activity.
type AmountStat struct {
	TotalAmount         float64              `json:"total_amount"`
	TransactionCount    int                  `json:"total_transactions"`
	TotalPercent        float64              `json:"total_percent"`
	MinAmount           float64              `json:"min_amount"`
	MaxAmount           float64              `json:"max_amount"`
	EarliestDate        string               `json:"earliest_date,omitempty"`
	LatestDate          string               `json:"latest_date,omitempty"`
	ByType              map[string]*TypeStat `json:"by_type,omitempty"`
	TypeOrder           []string             `json:"type_order,omitempty"`
	HighestPercentType  string               `json:"highest_percent_type,omitempty"`
	HighestPercentValue float64              `json:"highest_percent_value"`
}

// Rollup is the credit/debit summary of one account, or of all accounts.
// ByType merges both directions per label so a type's credit and debit
// flows can be read side by side.
type Rollup struct {
	Credits          AmountStat           `json:"credits"`
	Debits           AmountStat           `json:"debits"`
	ByType           map[string]*TypeStat `json:"by_type,omitempty"`
	TypeOrder        []string             `json:"type_order,omitempty"`
	GrandTotal       float64              `json:"grand_total"`
	TransactionCount int                  `json:"transaction_count"`
	EarliestDate     string               `json:"earliest_date,omitempty"`
	LatestDate       string               `json:"latest_date,omitempty"`
}

// AccountRollup is a Rollup keyed by account.
type AccountRollup struct {
	Account string `json:"account"`
	Rollup
}

// Summary is a set of per-account rollups plus their totals. Accounts keep
// first-seen order.
type Summary struct {
	Accounts []*AccountRollup `json:"accounts"`
	Totals   Rollup           `json:"totals"`
}

// Account returns the rollup for acct, or nil.
func (s *Summary) Account(acct string) *AccountRollup {
	for _, a := range s.Accounts {
		if a.Account == acct {
			return a
		}
	}
	return nil
}

// AlertingSummary is the alerted account's activity for the alerting
// activity recommendation. Credits and Debits carry the min/max bounds and
// the highest-percent type of each side.
type AlertingSummary struct {
	CaseNumber   string     `json:"case_number"`
	AccountType  string     `json:"account_type,omitempty"`
	Account      string     `json:"account,omitempty"`
	AlertMonths  []string   `json:"alert_months,omitempty"`
	Descriptions []string   `json:"descriptions,omitempty"`
	TotalCredits float64    `json:"total_credits"`
	TotalDebits  float64    `json:"total_debits"`
	CreditCount  int        `json:"credit_count"`
	DebitCount   int        `json:"debit_count"`
	CreditTypes  []string   `json:"credit_types,omitempty"`
	DebitTypes   []string   `json:"debit_types,omitempty"`
	Credits      AmountStat `json:"credit_summary"`
	Debits       AmountStat `json:"debit_summary"`
}

// AlertingAccounts renders "<type> <number>" for the alerted account.
func (a AlertingSummary) AlertingAccounts() string {
	return strings.TrimSpace(a.AccountType + " " + a.Account)
}

// Aggregates is every rollup the aggregator produces for one case.
type Aggregates struct {
	ActivitySummary  Summary         `json:"activity_summary"`
	Counterparties   Summary         `json:"counterparties"`
	Transactions     Rollup          `json:"transactions"`
	UnusualActivity  Rollup          `json:"unusual_activity"`
	CTASample        Rollup          `json:"cta_sample"`
	BIPSample        Rollup          `json:"bip_sample"`
	AlertingActivity AlertingSummary `json:"alerting_activity"`
}
