package model

import "strings"

// Period is an inclusive date range in MM/DD/YYYY form.
type Period struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// IsZero reports whether neither bound is set.
func (p Period) IsZero() bool { return p.Start == "" && p.End == "" }

// Alert is one monitoring alert that triggered the case.
type Alert struct {
	AlertID      string `json:"alert_id" yaml:"alert_id"`
	AlertMonth   string `json:"alert_month" yaml:"alert_month"`
	Description  string `json:"description" yaml:"description"`
	ReviewPeriod Period `json:"review_period" yaml:"review_period"`
}

// Subject is a party named in the case.
type Subject struct {
	Name                string `json:"name" yaml:"name"`
	IsPrimary           bool   `json:"is_primary" yaml:"is_primary"`
	PartyKey            string `json:"party_key,omitempty" yaml:"party_key,omitempty"`
	Occupation          string `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Employer            string `json:"employer,omitempty" yaml:"employer,omitempty"`
	Nationality         string `json:"nationality,omitempty" yaml:"nationality,omitempty"`
	Address             string `json:"address,omitempty" yaml:"address,omitempty"`
	AccountRelationship string `json:"account_relationship,omitempty" yaml:"account_relationship,omitempty"`
}

// RelatedParty links a person to an account with a role such as
// "Primary Owner" or "Signer".
type RelatedParty struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
}

// Account is one bank account under review.
type Account struct {
	AccountNumber  string         `json:"account_number" yaml:"account_number"`
	AccountType    string         `json:"account_type,omitempty" yaml:"account_type,omitempty"`
	AccountTitle   string         `json:"account_title,omitempty" yaml:"account_title,omitempty"`
	OpenDate       string         `json:"open_date,omitempty" yaml:"open_date,omitempty"`
	CloseDate      string         `json:"close_date,omitempty" yaml:"close_date,omitempty"`
	Status         string         `json:"status,omitempty" yaml:"status,omitempty"`
	ClosureReason  string         `json:"closure_reason,omitempty" yaml:"closure_reason,omitempty"`
	Branch         string         `json:"branch,omitempty" yaml:"branch,omitempty"`
	RelatedParties []RelatedParty `json:"related_parties,omitempty" yaml:"related_parties,omitempty"`
	Credits        AmountStat     `json:"credits" yaml:"-"`
	Debits         AmountStat     `json:"debits" yaml:"-"`
}

// IsClosed reports whether the account status is CLOSED.
func (a Account) IsClosed() bool {
	return strings.EqualFold(strings.TrimSpace(a.Status), "closed")
}

// PriorCase is an earlier investigation or SAR filing for the same parties.
type PriorCase struct {
	CaseNumber    string   `json:"case_number" yaml:"case_number"`
	AlertIDs      []string `json:"alert_id,omitempty" yaml:"alert_id,omitempty"`
	AlertMonths   []string `json:"alert_month,omitempty" yaml:"alert_month,omitempty"`
	ReviewPeriod  Period   `json:"review_period" yaml:"review_period"`
	SARFormNumber string   `json:"sar_form_number,omitempty" yaml:"sar_form_number,omitempty"`
	FilingDate    string   `json:"filing_date,omitempty" yaml:"filing_date,omitempty"`
	Summary       string   `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// SearchResult is the free-text outcome of one database search.
type SearchResult struct {
	Results string `json:"results" yaml:"results"`
}

// RiskRating is a party's risk rating from one system of record.
type RiskRating struct {
	Name     string `json:"name" yaml:"name"`
	PartyKey string `json:"party_key,omitempty" yaml:"party_key,omitempty"`
	SOR      string `json:"sor,omitempty" yaml:"sor,omitempty"`
	Rating   string `json:"rating" yaml:"rating"`
}

// DatabaseSearches collects the KYC, adverse media and risk rating checks.
type DatabaseSearches struct {
	KYC          SearchResult `json:"kyc" yaml:"kyc"`
	AdverseMedia SearchResult `json:"adverse_media" yaml:"adverse_media"`
	RiskRatings  []RiskRating `json:"risk_ratings,omitempty" yaml:"risk_ratings,omitempty"`
}

// Row is one loosely typed table row keyed by its column header.
type Row map[string]any

// Get returns the value of the first key present. Exports disagree on
// trailing spaces and case ("Total " vs "Total"), so a key that matches only
// after trimming and case folding is accepted when no exact key matches.
func (r Row) Get(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	for _, k := range keys {
		want := strings.TrimSpace(k)
		for rk, v := range r {
			if v != nil && strings.EqualFold(strings.TrimSpace(rk), want) {
				return v, true
			}
		}
	}
	return nil, false
}

// AccountRows groups rows under the account they were reported for.
type AccountRows struct {
	Account string `json:"account"`
	Rows    []Row  `json:"rows"`
}

// Tables holds the raw tabular data carried by a case document. Rows keep
// their source column names; the aggregator interprets them.
type Tables struct {
	Activity       []AccountRows `json:"activity,omitempty"`
	Counterparties []AccountRows `json:"counterparties,omitempty"`
	Transactions   []Row         `json:"transactions,omitempty"`
	Unusual        []Row         `json:"unusual,omitempty"`
	CTA            []Row         `json:"cta,omitempty"`
	BIP            []Row         `json:"bip,omitempty"`
}

// IsEmpty reports whether no table has any rows.
func (t Tables) IsEmpty() bool {
	return len(t.Activity) == 0 && len(t.Counterparties) == 0 && len(t.Transactions) == 0 &&
		len(t.Unusual) == 0 && len(t.CTA) == 0 && len(t.BIP) == 0
}

// RawSection is one titled section of a sectioned case document, kept
// verbatim for re-derivation.
type RawSection map[string]any

// Name returns the section title.
func (s RawSection) Name() string {
	name, _ := s["section"].(string)
	return strings.TrimSpace(name)
}

// FindSection returns the first section with the given title, or nil.
func FindSection(sections []RawSection, name string) RawSection {
	for _, s := range sections {
		if strings.EqualFold(s.Name(), name) {
			return s
		}
	}
	return nil
}

// CaseRecord is the canonical case produced by the normalizer. Every field
// has a defined empty value.
type CaseRecord struct {
	CaseNumber       string           `json:"case_number"`
	AlertInfo        []Alert          `json:"alert_info"`
	Subjects         []Subject        `json:"subjects"`
	Accounts         []Account        `json:"accounts"`
	PriorCases       []PriorCase      `json:"prior_cases"`
	DatabaseSearches DatabaseSearches `json:"database_searches"`
	ReviewPeriod     Period           `json:"review_period"`
	Tables           Tables           `json:"tables"`
	Sections         []RawSection     `json:"full_data,omitempty"`
	Source           string           `json:"source,omitempty"`

	// Aggregates is set by the aggregator.
	Aggregates *Aggregates `json:"transaction_data,omitempty"`
}

// AccountInfo returns the first account, or nil when there is none.
func (c *CaseRecord) AccountInfo() *Account {
	if len(c.Accounts) == 0 {
		return nil
	}
	return &c.Accounts[0]
}
