// Package validate fills in the fields a case needs for narrative generation
// and reports every substitution it made.
package validate

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/aggregate"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/normalize"
)

// Validator derives or defaults missing fields in place. It is safe to run
// more than once: a second pass over its own output records no warnings.
type Validator struct {
	Defaults model.Defaults
	// Now supplies the processing date used as the default end date.
	Now func() time.Time
}

// New returns a Validator with the given defaults. Zero fields of d take the
// standard values.
func New(d model.Defaults) *Validator {
	return &Validator{Defaults: d.WithFallbacks(), Now: time.Now}
}

// Validate runs a Validator with the standard defaults.
func Validate(c *model.CaseRecord, s *model.TransactionSummaryRecord) model.Validation {
	return New(model.StandardDefaults()).Validate(c, s)
}

// Validate examines c and s, filling every missing required field. It always
// succeeds; a missing case number is reported in MissingRequired.
func (v *Validator) Validate(c *model.CaseRecord, s *model.TransactionSummaryRecord) model.Validation {
	if c == nil {
		c = &model.CaseRecord{}
	}
	if s == nil {
		s = &model.TransactionSummaryRecord{}
	}
	ctx := &Context{}

	v.caseNumber(ctx, c)
	v.alerts(ctx, c)
	v.subjects(ctx, c)
	v.account(ctx, c, s)
	v.containers(ctx, s)
	v.activity(ctx, c, s)
	v.unusual(ctx, c, s)

	res := ctx.Result()
	zap.L().Debug("validate: case validated",
		zap.String("case_number", c.CaseNumber),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int("missing_required", len(res.MissingRequired)),
	)
	return res
}

func (v *Validator) today() string {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return now().Format(coerce.CanonicalLayout)
}

func (v *Validator) caseNumber(ctx *Context, c *model.CaseRecord) {
	if c.CaseNumber != "" {
		return
	}
	if n := normalize.SectionCaseNumber(c.Sections); n != "" {
		c.CaseNumber = n
		ctx.derived("case_number", n)
		return
	}
	ctx.missingRequired("case_number", "Case number is missing")
}

func (v *Validator) alerts(ctx *Context, c *model.CaseRecord) {
	if len(c.AlertInfo) > 0 {
		return
	}
	if alerts := normalize.SectionAlerts(c.Sections); len(alerts) > 0 {
		c.AlertInfo = alerts
		ctx.derived("alert_info", strconv.Itoa(len(alerts)))
		return
	}
	c.AlertInfo = []model.Alert{{
		AlertID:     v.Defaults.AlertID,
		Description: v.Defaults.AlertDescription,
	}}
	ctx.defaulted("alert_info", v.Defaults.AlertID, "Adding default alert information")
}

func (v *Validator) subjects(ctx *Context, c *model.CaseRecord) {
	if len(c.Subjects) == 0 {
		if subjects := normalize.HoganSubjects(c.Sections); len(subjects) > 0 {
			c.Subjects = subjects
			ctx.derived("subjects", strconv.Itoa(len(subjects)))
		} else if subjects := normalize.CustomerSubjects(c.Sections); len(subjects) > 0 {
			c.Subjects = subjects
			ctx.derived("subjects", strconv.Itoa(len(subjects)))
		} else {
			c.Subjects = []model.Subject{{Name: v.Defaults.SubjectName, IsPrimary: true}}
			ctx.defaulted("subjects", v.Defaults.SubjectName, "Subject information is missing - adding default subject")
			return
		}
	}

	primary := -1
	demoted := 0
	for i := range c.Subjects {
		if !c.Subjects[i].IsPrimary {
			continue
		}
		if primary < 0 {
			primary = i
			continue
		}
		c.Subjects[i].IsPrimary = false
		demoted++
	}
	switch {
	case primary < 0:
		c.Subjects[0].IsPrimary = true
		ctx.corrected("subjects.is_primary", c.Subjects[0].Name,
			"No primary subject identified - setting first subject as primary")
	case demoted > 0:
		ctx.corrected("subjects.is_primary", c.Subjects[primary].Name,
			"Multiple primary subjects identified - keeping the first as primary")
	}
}

func (v *Validator) account(ctx *Context, c *model.CaseRecord, s *model.TransactionSummaryRecord) {
	if len(c.Accounts) == 0 || c.Accounts[0].AccountNumber == "" {
		if accts := normalize.SectionAccounts(c.Sections); len(accts) > 0 && accts[0].AccountNumber != "" {
			if len(c.Accounts) == 0 {
				c.Accounts = accts
			} else {
				fillAccount(&c.Accounts[0], accts[0])
			}
			ctx.derived("account_info", accts[0].AccountNumber)
		}
	}
	if len(c.Accounts) == 0 {
		c.Accounts = []model.Account{{
			AccountType: v.Defaults.UnknownAccount,
			Status:      v.Defaults.UnknownStatus,
		}}
		ctx.defaulted("account_info", v.Defaults.UnknownAccount, "Account information is missing - using default values")
	}

	acct := &c.Accounts[0]
	if acct.AccountType == "" {
		acct.AccountType = v.Defaults.AccountType
		ctx.defaulted("account_info.account_type", acct.AccountType, "Account type is missing")
	}
	if acct.AccountNumber == "" {
		if len(s.AccountSummaries) > 0 && s.AccountSummaries[0].AccountNumber != "" {
			acct.AccountNumber = s.AccountSummaries[0].AccountNumber
			ctx.derivedWarn("account_info.account_number", acct.AccountNumber, "Account number is missing")
		} else {
			acct.AccountNumber = v.Defaults.AccountNumber
			ctx.defaulted("account_info.account_number", acct.AccountNumber, "Account number is missing")
		}
	}
}

// fillAccount copies into dst the descriptive fields it lacks from src.
func fillAccount(dst *model.Account, src model.Account) {
	fill := func(to *string, from string) {
		if *to == "" {
			*to = from
		}
	}
	fill(&dst.AccountNumber, src.AccountNumber)
	fill(&dst.AccountType, src.AccountType)
	fill(&dst.AccountTitle, src.AccountTitle)
	fill(&dst.OpenDate, src.OpenDate)
	fill(&dst.CloseDate, src.CloseDate)
	fill(&dst.Status, src.Status)
	fill(&dst.ClosureReason, src.ClosureReason)
	fill(&dst.Branch, src.Branch)
	if len(dst.RelatedParties) == 0 {
		dst.RelatedParties = src.RelatedParties
	}
}

// containers gives every summary container its empty shape.
func (v *Validator) containers(ctx *Context, s *model.TransactionSummaryRecord) {
	if s.TransactionSummary == nil {
		s.TransactionSummary = &model.TransactionTotals{
			CreditBreakdown: []model.Breakdown{},
			DebitBreakdown:  []model.Breakdown{},
		}
		ctx.defaulted("transaction_summary", "", "Transaction summary is missing")
	}
	if s.ActivitySummary == nil {
		s.ActivitySummary = &model.ActivityTotals{TransactionTypes: []string{}}
		ctx.defaulted("activity_summary", "", "Activity summary is missing")
	}
	if s.UnusualActivity == nil {
		s.UnusualActivity = &model.UnusualActivity{Transactions: []model.SampleTransaction{}}
		ctx.defaulted("unusual_activity", "", "Unusual activity is missing")
	}
	if s.AccountSummaries == nil {
		s.AccountSummaries = []model.AccountSummary{}
	}
	if s.InterAccountTransfers == nil {
		s.InterAccountTransfers = []model.Transfer{}
	}
}

func (v *Validator) activity(ctx *Context, c *model.CaseRecord, s *model.TransactionSummaryRecord) {
	act := s.ActivitySummary
	ts := s.TransactionSummary

	if act.TotalAmount == nil || *act.TotalAmount <= 0 {
		total := ts.TotalCredits + ts.TotalDebits
		if total <= 0 {
			total = 0
		}
		if act.TotalAmount == nil || *act.TotalAmount != total {
			act.SetTotal(total)
			ctx.defaulted("activity_summary.total_amount", formatFloat(total), "Activity total amount is zero or negative")
		}
	}

	periods := []model.Period{c.ReviewPeriod}
	if len(c.AlertInfo) > 0 {
		periods = append(periods, c.AlertInfo[0].ReviewPeriod)
	}
	periods = append(periods, normalize.SectionScope(c.Sections), normalize.SectionReviewPeriod(c.Sections))

	if act.StartDate == "" {
		act.StartDate = firstDate(periods, func(p model.Period) string { return p.Start }, v.Defaults.ActivityStartDate)
		ctx.defaulted("activity_summary.start_date", act.StartDate, "Activity start date is missing - using default or derived value")
	}
	if act.EndDate == "" {
		act.EndDate = firstDate(periods, func(p model.Period) string { return p.End }, v.today())
		ctx.defaulted("activity_summary.end_date", act.EndDate, "Activity end date is missing - using default or derived value")
	}

	if len(act.TransactionTypes) == 0 {
		if len(ts.CreditBreakdown) > 0 {
			types := make([]string, 0, 3)
			for _, b := range ts.CreditBreakdown[:min(3, len(ts.CreditBreakdown))] {
				t := b.Type
				if t == "" {
					t = "Unknown"
				}
				types = append(types, t)
			}
			act.TransactionTypes = types
			ctx.derived("activity_summary.transaction_types", fmt.Sprint(types))
		} else {
			act.TransactionTypes = []string{v.Defaults.TransactionType}
			ctx.defaulted("activity_summary.transaction_types", v.Defaults.TransactionType, "Transaction types are missing - using default")
		}
	}
}

// firstDate returns the first non-empty date picked from periods, in
// canonical form, or def.
func firstDate(periods []model.Period, pick func(model.Period) string, def string) string {
	for _, p := range periods {
		if d := coerce.ToCanonicalDate(pick(p)); d != "" {
			return d
		}
	}
	return def
}

func (v *Validator) unusual(ctx *Context, c *model.CaseRecord, s *model.TransactionSummaryRecord) {
	u := s.UnusualActivity
	act := s.ActivitySummary

	if len(u.Transactions) == 0 {
		rows := normalize.SectionRows(c.Sections, normalize.SectionUnusualActivity)
		if len(rows) == 0 {
			rows = c.Tables.Unusual
		}
		if len(rows) > 0 {
			u.Transactions = aggregate.Samples(rows)
		} else {
			u.Transactions = v.synthesize(s.TransactionSummary, act.StartDate)
		}
		if len(u.Transactions) > 0 {
			ctx.derivedWarn("unusual_activity.transactions", strconv.Itoa(len(u.Transactions)), "No unusual activity samples found")
		} else {
			ctx.add(model.Finding{Field: "unusual_activity.transactions", Action: ActionMissing})
		}
	}

	if u.Summary.TotalAmount <= 0 && act.Total() > 0 {
		u.Summary.TotalAmount = act.Total()
		ctx.derived("unusual_activity.summary.total_amount", formatFloat(act.Total()))
	}
	if u.Summary.DateRange.IsZero() {
		u.Summary.DateRange = model.Period{Start: act.StartDate, End: act.EndDate}
		ctx.derived("unusual_activity.summary.date_range", act.StartDate+" - "+act.EndDate)
	}
}

// synthesize builds up to two samples from each side's breakdown, priced at
// the type's average amount and dated at the activity start.
func (v *Validator) synthesize(ts *model.TransactionTotals, date string) []model.SampleTransaction {
	if date == "" {
		date = v.Defaults.ActivityStartDate
	}
	out := []model.SampleTransaction{}
	for _, side := range [][]model.Breakdown{ts.CreditBreakdown, ts.DebitBreakdown} {
		for _, b := range side[:min(2, len(side))] {
			typ := b.Type
			if typ == "" {
				typ = "Unknown"
			}
			amount := b.Amount
			if b.Count > 0 {
				amount /= float64(b.Count)
			}
			out = append(out, model.SampleTransaction{
				Date:        date,
				Amount:      amount,
				Type:        typ,
				Description: "Sample " + typ + " transaction",
			})
		}
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
