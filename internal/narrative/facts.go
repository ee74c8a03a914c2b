package narrative

import (
	"fmt"
	"strings"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// facts is the per-record view every section renders from. It is built once
// per generation and read concurrently.
type facts struct {
	rec      *model.CombinedFactRecord
	activity ActivityType
	period   model.Period
}

func newFacts(c *model.CombinedFactRecord) *facts {
	f := &facts{rec: c, activity: Classify(c)}
	f.period = model.Period{
		Start: firstNonEmpty(c.ActivitySummary.StartDate, c.ReviewPeriod.Start, alertPeriod(c).Start),
		End:   firstNonEmpty(c.ActivitySummary.EndDate, c.ReviewPeriod.End, alertPeriod(c).End),
	}
	f.period.Start = coerce.ToCanonicalDate(f.period.Start)
	f.period.End = coerce.ToCanonicalDate(f.period.End)
	return f
}

func alertPeriod(c *model.CombinedFactRecord) model.Period {
	if len(c.AlertInfo) == 0 {
		return model.Period{}
	}
	return c.AlertInfo[0].ReviewPeriod
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (f *facts) accountNumber() string { return f.rec.AccountInfo.AccountNumber }

func (f *facts) accountType() string {
	return firstNonEmpty(f.rec.AccountInfo.AccountType, "checking/savings")
}

// total is the reported activity total, falling back to total credits.
func (f *facts) total() float64 {
	if t := f.rec.ActivitySummary.Total(); t != 0 {
		return t
	}
	return f.rec.TransactionSummary.TotalCredits
}

// subjects renders "A", "A and B" or "A, B, and C", optionally with each
// subject's account relationship in parentheses. The primary subject leads.
func (f *facts) subjects(withRelationship bool) string {
	primary := f.rec.PrimarySubject()
	if primary == nil {
		return "unknown subjects"
	}
	ordered := make([]model.Subject, 0, len(f.rec.Subjects))
	ordered = append(ordered, *primary)
	for i := range f.rec.Subjects {
		if &f.rec.Subjects[i] != primary {
			ordered = append(ordered, f.rec.Subjects[i])
		}
	}
	names := make([]string, 0, len(ordered))
	for _, s := range ordered {
		name := firstNonEmpty(s.Name, "unknown subject")
		if withRelationship && s.AccountRelationship != "" {
			name += " (" + s.AccountRelationship + ")"
		}
		names = append(names, name)
	}
	return joinList(names)
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

// breakdownText lists up to three breakdowns as "type ($amount, n transactions)".
func breakdownText(bs []model.Breakdown) string {
	if len(bs) > 3 {
		bs = bs[:3]
	}
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		parts = append(parts, fmt.Sprintf("%s (%s, %d transactions)", b.Type, coerce.FormatCurrency(b.Amount), b.Count))
	}
	return strings.Join(parts, ", ")
}

// activityDescription summarizes the leading credit and debit types.
func (f *facts) activityDescription() string {
	var b strings.Builder
	ts := f.rec.TransactionSummary
	if len(ts.CreditBreakdown) > 0 {
		fmt.Fprintf(&b, "The primary credit transaction types were %s. ", breakdownText(ts.CreditBreakdown))
	}
	if len(ts.DebitBreakdown) > 0 {
		fmt.Fprintf(&b, "The primary debit transaction types were %s. ", breakdownText(ts.DebitBreakdown))
	}
	return b.String()
}

func (f *facts) amlRisks() string {
	if len(f.activity.Indicators) == 0 {
		return "suspicious transactions"
	}
	return strings.Join(f.activity.Indicators, ", ")
}

// unusualPeriod is the unusual activity date range, falling back to the
// activity period.
func (f *facts) unusualPeriod() model.Period {
	r := f.rec.UnusualActivity.Summary.DateRange
	return model.Period{
		Start: coerce.ToCanonicalDate(firstNonEmpty(r.Start, f.period.Start)),
		End:   coerce.ToCanonicalDate(firstNonEmpty(r.End, f.period.End)),
	}
}

func (f *facts) unusualTotal() float64 {
	if t := f.rec.UnusualActivity.Summary.TotalAmount; t != 0 {
		return t
	}
	return f.total()
}
