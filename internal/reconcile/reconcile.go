// Package reconcile merges a validated case and its transaction summary into
// the single record the narrative is generated from.
package reconcile

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// Reconciler builds CombinedFactRecords. Its defaults are the last resort
// for fields still empty after validation.
type Reconciler struct {
	Defaults model.Defaults
	Now      func() time.Time
}

// New returns a Reconciler with the given defaults. Zero fields of d take the
// standard values.
func New(d model.Defaults) *Reconciler {
	return &Reconciler{Defaults: d.WithFallbacks(), Now: time.Now}
}

// Reconcile runs a Reconciler with the standard defaults.
func Reconcile(c model.CaseRecord, s model.TransactionSummaryRecord) model.CombinedFactRecord {
	return New(model.StandardDefaults()).Reconcile(c, s)
}

// Reconcile copies the case-shaped and summary-shaped fields into one record
// and aligns the case review period and the first alert with the activity
// dates. Neither input is modified.
func (r *Reconciler) Reconcile(c model.CaseRecord, s model.TransactionSummaryRecord) model.CombinedFactRecord {
	out := model.CombinedFactRecord{
		CaseNumber:            c.CaseNumber,
		AlertInfo:             cloneOrEmpty(c.AlertInfo),
		Subjects:              cloneOrEmpty(c.Subjects),
		Accounts:              cloneOrEmpty(c.Accounts),
		PriorCases:            cloneOrEmpty(c.PriorCases),
		DatabaseSearches:      c.DatabaseSearches,
		ReviewPeriod:          c.ReviewPeriod,
		AccountSummaries:      cloneOrEmpty(s.AccountSummaries),
		InterAccountTransfers: cloneOrEmpty(s.InterAccountTransfers),
		Aggregates:            c.Aggregates,
	}
	if acct := c.AccountInfo(); acct != nil {
		out.AccountInfo = *acct
	}
	if s.ActivitySummary != nil {
		out.ActivitySummary = *s.ActivitySummary
		out.ActivitySummary.TransactionTypes = slices.Clone(s.ActivitySummary.TransactionTypes)
	}
	if s.TransactionSummary != nil {
		out.TransactionSummary = *s.TransactionSummary
	}
	if s.UnusualActivity != nil {
		out.UnusualActivity = *s.UnusualActivity
		out.UnusualActivity.Transactions = slices.Clone(s.UnusualActivity.Transactions)
	}
	if out.UnusualActivity.Transactions == nil {
		out.UnusualActivity.Transactions = []model.SampleTransaction{}
	}
	if s.CTASample != nil {
		out.CTASample = *s.CTASample
	}
	if s.BIPSample != nil {
		out.BIPSample = *s.BIPSample
	}

	r.align(&out)
	return out
}

func (r *Reconciler) align(out *model.CombinedFactRecord) {
	act := &out.ActivitySummary
	log := zap.L().With(zap.String("case_number", out.CaseNumber))

	if act.Total() <= 0 {
		total := max(out.TransactionSummary.TotalCredits, out.TransactionSummary.TotalDebits)
		if total <= 0 {
			total = r.Defaults.ReconcileTotal
		}
		act.SetTotal(total)
		log.Debug("reconcile: activity total defaulted", zap.Float64("total", total))
	}
	if act.StartDate == "" {
		act.StartDate = r.Defaults.ActivityStartDate
		log.Debug("reconcile: start date defaulted", zap.String("start_date", act.StartDate))
	}
	if act.EndDate == "" {
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		act.EndDate = now().Format(coerce.CanonicalLayout)
		log.Debug("reconcile: end date defaulted", zap.String("end_date", act.EndDate))
	}

	fillPeriod(&out.ReviewPeriod, act)
	if len(out.AlertInfo) > 0 {
		fillPeriod(&out.AlertInfo[0].ReviewPeriod, act)
	}
}

func fillPeriod(p *model.Period, act *model.ActivityTotals) {
	if p.Start == "" {
		p.Start = act.StartDate
	}
	if p.End == "" {
		p.End = act.EndDate
	}
}

func cloneOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
