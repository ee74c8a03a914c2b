package aggregate

import (
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// maxExamples caps the sample transactions kept per type.
const maxExamples = 3

// Entry is one row reduced to the values the fold accumulates.
type Entry struct {
	Account  string
	Label    string
	IsCredit bool
	Amount   float64
	Count    int
	Percent  float64
	// MinAmount is nil when the row carries no minimum. Single transactions
	// set both bounds to their amount.
	MinAmount *float64
	MaxAmount float64
	MinDate   string
	MaxDate   string
	Example   *model.Example
}

// Extractor reduces a row to an Entry. account is the group the row was
// listed under, empty for ungrouped tables. ok is false for rows to skip.
type Extractor func(account string, row model.Row) (e Entry, ok bool)

// runningMin is a minimum that may not have been observed yet.
type runningMin struct {
	v  float64
	ok bool
}

func (m *runningMin) observe(v *float64) {
	if v == nil {
		return
	}
	if !m.ok || *v < m.v {
		m.v, m.ok = *v, true
	}
}

// value returns the minimum, or 0 when nothing was observed.
func (m runningMin) value() float64 {
	if !m.ok {
		return 0
	}
	return m.v
}

type typeAcc struct {
	stat *model.TypeStat
	min  runningMin
}

// sideAcc accumulates one direction of a rollup.
type sideAcc struct {
	stat     model.AmountStat
	min      runningMin
	types    map[string]*typeAcc
	percents bool
}

func newSide(percents bool) *sideAcc {
	return &sideAcc{
		stat:     model.AmountStat{ByType: map[string]*model.TypeStat{}},
		types:    map[string]*typeAcc{},
		percents: percents,
	}
}

func (s *sideAcc) add(e Entry) {
	st := &s.stat
	st.TotalAmount += e.Amount
	st.TransactionCount += e.Count
	if e.MaxAmount > st.MaxAmount {
		st.MaxAmount = e.MaxAmount
	}
	s.min.observe(e.MinAmount)
	st.EarliestDate = coerce.Earliest(st.EarliestDate, e.MinDate)
	st.LatestDate = coerce.Latest(st.LatestDate, e.MaxDate)

	t := s.types[e.Label]
	if t == nil {
		t = &typeAcc{stat: &model.TypeStat{}}
		s.types[e.Label] = t
		st.ByType[e.Label] = t.stat
		st.TypeOrder = append(st.TypeOrder, e.Label)
	}
	accumulateType(t, e)

	if !s.percents {
		return
	}
	st.TotalPercent += e.Percent
	if t.stat.Percent > st.HighestPercentValue {
		st.HighestPercentType = e.Label
		st.HighestPercentValue = t.stat.Percent
	}
}

func (s *sideAcc) finish() model.AmountStat {
	s.stat.MinAmount = s.min.value()
	for _, t := range s.types {
		t.stat.MinAmount = t.min.value()
	}
	return s.stat
}

func accumulateType(t *typeAcc, e Entry) {
	ts := t.stat
	ts.Percent += e.Percent
	ts.Amount += e.Amount
	ts.Count += e.Count
	if e.MaxAmount > ts.MaxAmount {
		ts.MaxAmount = e.MaxAmount
	}
	t.min.observe(e.MinAmount)
	ts.MinDate = coerce.Earliest(ts.MinDate, e.MinDate)
	ts.MaxDate = coerce.Latest(ts.MaxDate, e.MaxDate)
	if e.IsCredit {
		ts.Credits.Amount += e.Amount
		ts.Credits.Count += e.Count
	} else {
		ts.Debits.Amount += e.Amount
		ts.Debits.Count += e.Count
	}
	if e.Example != nil && len(ts.Examples) < maxExamples {
		ts.Examples = append(ts.Examples, *e.Example)
	}
}

// rollupAcc accumulates both directions plus a combined by-type view.
type rollupAcc struct {
	credits, debits *sideAcc
	types           map[string]*typeAcc
	order           []string
	grand           float64
	count           int
	earliest        string
	latest          string
}

func newRollup(percents bool) *rollupAcc {
	return &rollupAcc{
		credits: newSide(percents),
		debits:  newSide(percents),
		types:   map[string]*typeAcc{},
	}
}

func (r *rollupAcc) add(e Entry) {
	if e.IsCredit {
		r.credits.add(e)
	} else {
		r.debits.add(e)
	}
	t := r.types[e.Label]
	if t == nil {
		t = &typeAcc{stat: &model.TypeStat{}}
		r.types[e.Label] = t
		r.order = append(r.order, e.Label)
	}
	accumulateType(t, e)
	r.grand += e.Amount
	r.count += e.Count
	r.earliest = coerce.Earliest(r.earliest, e.MinDate)
	r.latest = coerce.Latest(r.latest, e.MaxDate)
}

func (r *rollupAcc) finish() model.Rollup {
	out := model.Rollup{
		Credits:          r.credits.finish(),
		Debits:           r.debits.finish(),
		ByType:           make(map[string]*model.TypeStat, len(r.types)),
		TypeOrder:        r.order,
		GrandTotal:       r.grand,
		TransactionCount: r.count,
		EarliestDate:     r.earliest,
		LatestDate:       r.latest,
	}
	for label, t := range r.types {
		t.stat.MinAmount = t.min.value()
		out.ByType[label] = t.stat
	}
	return out
}

// Fold reduces account-grouped rows into per-account rollups and their
// totals in a single pass. Percentages accumulate per account only: they are
// shares of that account's activity and do not add up across accounts.
func Fold(groups []model.AccountRows, extract Extractor) model.Summary {
	accounts := map[string]*rollupAcc{}
	var order []string
	totals := newRollup(false)

	for _, g := range groups {
		for _, row := range g.Rows {
			e, ok := extract(g.Account, row)
			if !ok {
				continue
			}
			acct := accounts[e.Account]
			if acct == nil {
				acct = newRollup(true)
				accounts[e.Account] = acct
				order = append(order, e.Account)
			}
			acct.add(e)
			totals.add(e)
		}
	}

	out := model.Summary{
		Accounts: make([]*model.AccountRollup, 0, len(order)),
		Totals:   totals.finish(),
	}
	for _, a := range order {
		out.Accounts = append(out.Accounts, &model.AccountRollup{Account: a, Rollup: accounts[a].finish()})
	}
	return out
}

// FoldRows reduces an ungrouped table into one rollup.
func FoldRows(rows []model.Row, extract Extractor) model.Rollup {
	acc := newRollup(false)
	for _, row := range rows {
		if e, ok := extract("", row); ok {
			acc.add(e)
		}
	}
	return acc.finish()
}
