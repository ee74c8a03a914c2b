package model

import "time"

// CombinedFactRecord is the reconciled merge of a CaseRecord and a
// TransactionSummaryRecord. Case-level and activity-level dates are aligned.
type CombinedFactRecord struct {
	CaseNumber       string           `json:"case_number"`
	AlertInfo        []Alert          `json:"alert_info"`
	Subjects         []Subject        `json:"subjects"`
	AccountInfo      Account          `json:"account_info"`
	Accounts         []Account        `json:"accounts"`
	PriorCases       []PriorCase      `json:"prior_cases"`
	DatabaseSearches DatabaseSearches `json:"database_searches"`
	ReviewPeriod     Period           `json:"review_period"`

	ActivitySummary       ActivityTotals    `json:"activity_summary"`
	UnusualActivity       UnusualActivity   `json:"unusual_activity"`
	CTASample             Interview         `json:"cta_sample"`
	BIPSample             Interview         `json:"bip_sample"`
	TransactionSummary    TransactionTotals `json:"transaction_summary"`
	AccountSummaries      []AccountSummary  `json:"account_summaries"`
	InterAccountTransfers []Transfer        `json:"inter_account_transfers"`

	Aggregates *Aggregates `json:"transaction_data,omitempty"`
}

// PrimarySubject returns the primary subject, falling back to the first.
func (c *CombinedFactRecord) PrimarySubject() *Subject {
	for i := range c.Subjects {
		if c.Subjects[i].IsPrimary {
			return &c.Subjects[i]
		}
	}
	if len(c.Subjects) > 0 {
		return &c.Subjects[0]
	}
	return nil
}

// Finding is one structured validation outcome: a field that was derived,
// defaulted or flagged, with the value it ended up holding.
type Finding struct {
	Field   string `json:"field"`
	Action  string `json:"action"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Validation is the persisted outcome of a validation pass.
type Validation struct {
	Valid           bool      `json:"valid"`
	MissingRequired []string  `json:"missing_required"`
	Warnings        []string  `json:"warnings"`
	Findings        []Finding `json:"findings,omitempty"`
}

// NarrativeSection is one titled paragraph of generated narrative or
// recommendation text.
type NarrativeSection struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Snapshot is everything persisted for a session.
type Snapshot struct {
	Case           CaseRecord               `json:"case_data"`
	Summary        TransactionSummaryRecord `json:"excel_data"`
	Combined       CombinedFactRecord       `json:"combined_data"`
	Validation     Validation               `json:"validation"`
	Narrative      string                   `json:"narrative"`
	Sections       []NarrativeSection       `json:"sections"`
	Recommendation []NarrativeSection       `json:"recommendation"`
}

// Session is one generation run and its persisted snapshot.
type Session struct {
	ID            string    `json:"id"`
	CaseNumber    string    `json:"case_number"`
	AccountNumber string    `json:"account_number"`
	Snapshot      Snapshot  `json:"snapshot"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID            string    `json:"id"`
	CaseNumber    string    `json:"case_number"`
	AccountNumber string    `json:"account_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SessionFilter narrows a session listing.
type SessionFilter struct {
	CaseNumber string
	Limit      int
	Offset     int
}
