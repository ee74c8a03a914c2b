package validate

import (
	"fmt"
	"math"
	"time"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// Report is the outcome of a strict check. Unlike Validate it changes
// nothing and can fail.
type Report struct {
	Valid    bool          `json:"is_valid"`
	Errors   []string      `json:"errors"`
	Warnings []string      `json:"warnings"`
	Summary  ReportSummary `json:"summary"`
}

// SectionCounts counts the entries of each case section.
type SectionCounts struct {
	Subjects     int `json:"subjects"`
	Accounts     int `json:"accounts"`
	PriorCases   int `json:"prior_cases"`
	Transactions int `json:"transactions"`
}

// ReportSummary describes the checked data at a glance.
type ReportSummary struct {
	CaseNumber  string        `json:"case_number"`
	Sections    SectionCounts `json:"sections"`
	TotalAmount string        `json:"total_amount"`
	DateRange   string        `json:"date_range"`
}

type checker struct {
	c      *model.CaseRecord
	s      *model.TransactionSummaryRecord
	errors []string
	warns  []string
}

func (k *checker) errorf(format string, args ...any) {
	k.errors = append(k.errors, fmt.Sprintf(format, args...))
}

// Check reports missing required fields, malformed dates and amounts, and
// inconsistencies between the case and the transaction summary. Malformed
// dates are reported but do not make the report invalid.
func Check(c *model.CaseRecord, s *model.TransactionSummaryRecord) Report {
	if c == nil {
		c = &model.CaseRecord{}
	}
	if s == nil {
		s = &model.TransactionSummaryRecord{}
	}
	k := &checker{c: c, s: s}

	required := k.required()
	k.dates()
	numeric := k.numeric()
	consistent := k.consistency()

	errs, warns := k.errors, k.warns
	if errs == nil {
		errs = []string{}
	}
	if warns == nil {
		warns = []string{}
	}
	return Report{
		Valid:    required && numeric && consistent,
		Errors:   errs,
		Warnings: warns,
		Summary:  summarize(c, s),
	}
}

func (k *checker) required() bool {
	n := len(k.errors)
	if k.c.CaseNumber == "" {
		k.errorf("Missing required field in case data: case_number")
	}
	if len(k.c.Subjects) == 0 {
		k.errorf("Missing required field in case data: subjects")
	}
	if k.s.ActivitySummary == nil {
		k.errorf("Missing required field in Excel data: activity_summary")
	}
	for _, subj := range k.c.Subjects {
		if subj.Name == "" {
			k.errorf("Missing required field in subject data: name")
		}
	}
	if acct := k.c.AccountInfo(); acct == nil || acct.AccountNumber == "" {
		k.errorf("Missing required field in account info: account_number")
	}
	return len(k.errors) == n
}

// validDate accepts an empty value or any recognized date layout.
func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, ok := coerce.ParseDate(coerce.ToCanonicalDate(s))
	return ok
}

func (k *checker) dates() {
	if act := k.s.ActivitySummary; act != nil {
		k.date("activity summary", "start_date", act.StartDate)
		k.date("activity summary", "end_date", act.EndDate)
	}
	if acct := k.c.AccountInfo(); acct != nil {
		k.date("account info", "open_date", acct.OpenDate)
		k.date("account info", "close_date", acct.CloseDate)
	}
	if len(k.c.AlertInfo) > 0 {
		rp := k.c.AlertInfo[0].ReviewPeriod
		k.date("alert info", "review_period.start", rp.Start)
		k.date("alert info", "review_period.end", rp.End)
	}
}

func (k *checker) date(where, field, value string) {
	if !validDate(value) {
		k.errorf("Invalid date format in %s: %s = %s", where, field, value)
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (k *checker) numeric() bool {
	n := len(k.errors)
	if act := k.s.ActivitySummary; act != nil && act.TotalAmount != nil && !finite(*act.TotalAmount) {
		k.errorf("Invalid numeric value in activity summary: total_amount = %v", *act.TotalAmount)
	}
	if ts := k.s.TransactionSummary; ts != nil {
		if !finite(ts.TotalCredits) {
			k.errorf("Invalid numeric value in transaction summary: total_credits = %v", ts.TotalCredits)
		}
		if !finite(ts.TotalDebits) {
			k.errorf("Invalid numeric value in transaction summary: total_debits = %v", ts.TotalDebits)
		}
	}
	return len(k.errors) == n
}

func (k *checker) consistency() bool {
	known := map[string]bool{}
	for _, a := range k.c.Accounts {
		if a.AccountNumber != "" {
			known[a.AccountNumber] = true
		}
	}
	for _, as := range k.s.AccountSummaries {
		if !known[as.AccountNumber] {
			k.warns = append(k.warns, fmt.Sprintf("Transaction data includes account %s not found in case data", as.AccountNumber))
		}
	}

	act := k.s.ActivitySummary
	if act == nil || act.StartDate == "" || act.EndDate == "" {
		return true
	}
	start, errS := time.Parse(coerce.CanonicalLayout, act.StartDate)
	end, errE := time.Parse(coerce.CanonicalLayout, act.EndDate)
	if errS != nil || errE != nil {
		return true
	}
	if start.After(end) {
		k.errorf("Start date %s is after end date %s", act.StartDate, act.EndDate)
		return false
	}
	return true
}

func summarize(c *model.CaseRecord, s *model.TransactionSummaryRecord) ReportSummary {
	out := ReportSummary{
		CaseNumber: c.CaseNumber,
		Sections: SectionCounts{
			Subjects:   len(c.Subjects),
			Accounts:   len(c.Accounts),
			PriorCases: len(c.PriorCases),
		},
		DateRange: "N/A",
	}
	if s.UnusualActivity != nil {
		out.Sections.Transactions = len(s.UnusualActivity.Transactions)
	}
	act := s.ActivitySummary
	out.TotalAmount = coerce.FormatCurrency(act.Total())
	if act != nil && act.StartDate != "" && act.EndDate != "" {
		out.DateRange = act.StartDate + " to " + act.EndDate
	}
	return out
}
