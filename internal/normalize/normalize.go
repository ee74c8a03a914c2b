// Package normalize turns a case document of any known historical shape into
// a canonical model.CaseRecord.
//
// Each shape is handled by an Adapter. For every field the normalizer asks the
// adapters in priority order (flat JSON, standardized JSON, sectioned JSON,
// free text) and keeps the first non-empty answer. Missing data never fails:
// unresolved fields keep their empty value.
package normalize

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// Adapter extracts canonical fields from one document shape. Every method
// returns the field's empty value when the shape does not carry it.
type Adapter interface {
	Name() string
	CaseNumber() string
	Alerts() []model.Alert
	Subjects() []model.Subject
	Accounts() []model.Account
	PriorCases() []model.PriorCase
	DatabaseSearches() model.DatabaseSearches
	ReviewPeriod() model.Period
	Tables() model.Tables
}

// Factory binds an adapter to a document. It returns nil when the document
// cannot be of its shape.
type Factory func(doc *fetcher.Document) Adapter

// Normalizer runs a fixed, ordered list of adapters.
type Normalizer struct {
	factories []Factory
}

// New returns a Normalizer trying factories in the given order.
func New(factories ...Factory) *Normalizer {
	return &Normalizer{factories: factories}
}

// Default returns the standard priority order: flat, standardized,
// sectioned, text.
func Default() *Normalizer {
	return New(NewFlat, NewStandardized, NewSectioned, NewText)
}

// Normalize runs the default normalizer over doc.
func Normalize(doc *fetcher.Document) model.CaseRecord {
	return Default().Normalize(doc)
}

// Normalize builds a CaseRecord from doc.
func (n *Normalizer) Normalize(doc *fetcher.Document) model.CaseRecord {
	rec := model.CaseRecord{
		AlertInfo:  []model.Alert{},
		Subjects:   []model.Subject{},
		Accounts:   []model.Account{},
		PriorCases: []model.PriorCase{},
	}
	if doc == nil {
		return rec
	}

	var adapters []Adapter
	for _, f := range n.factories {
		if a := f(doc); a != nil {
			adapters = append(adapters, a)
		}
	}

	used := map[string]bool{}
	note := func(field, src string) {
		if src == "" {
			zap.L().Debug("normalize: field unresolved", zap.String("field", field))
			return
		}
		used[src] = true
	}

	var src string
	rec.CaseNumber, src = pick(adapters, Adapter.CaseNumber, func(s string) bool { return s == "" })
	note("case_number", src)
	if alerts, s := pick(adapters, Adapter.Alerts, isEmptySlice[model.Alert]); s != "" {
		rec.AlertInfo = alerts
		note("alert_info", s)
	} else {
		note("alert_info", "")
	}
	if subjects, s := pick(adapters, Adapter.Subjects, isEmptySlice[model.Subject]); s != "" {
		rec.Subjects = subjects
		note("subjects", s)
	} else {
		note("subjects", "")
	}
	if accounts, s := pick(adapters, Adapter.Accounts, isEmptySlice[model.Account]); s != "" {
		rec.Accounts = accounts
		note("accounts", s)
	} else {
		note("accounts", "")
	}
	if priors, s := pick(adapters, Adapter.PriorCases, isEmptySlice[model.PriorCase]); s != "" {
		rec.PriorCases = priors
		note("prior_cases", s)
	}
	rec.DatabaseSearches, src = pick(adapters, Adapter.DatabaseSearches, func(d model.DatabaseSearches) bool {
		return d.KYC.Results == "" && d.AdverseMedia.Results == "" && len(d.RiskRatings) == 0
	})
	note("database_searches", src)
	rec.ReviewPeriod, src = pick(adapters, Adapter.ReviewPeriod, model.Period.IsZero)
	note("review_period", src)

	rec.Tables = mergeTables(adapters, used)
	rec.Sections = sectionsOf(doc)

	canonicalizePeriods(&rec)
	linkRelationships(&rec)

	for _, a := range adapters {
		if used[a.Name()] {
			rec.Source = joinSource(rec.Source, a.Name())
		}
	}
	zap.L().Debug("normalize: case normalized",
		zap.String("case_number", rec.CaseNumber),
		zap.String("source", rec.Source),
		zap.Int("alerts", len(rec.AlertInfo)),
		zap.Int("subjects", len(rec.Subjects)),
		zap.Int("accounts", len(rec.Accounts)),
	)
	return rec
}

// pick asks each adapter in turn and returns the first non-empty value with
// the name of the adapter that produced it.
func pick[T any](adapters []Adapter, extract func(Adapter) T, empty func(T) bool) (T, string) {
	var zero T
	for _, a := range adapters {
		if v := extract(a); !empty(v) {
			return v, a.Name()
		}
	}
	return zero, ""
}

func isEmptySlice[T any](s []T) bool { return len(s) == 0 }

// mergeTables takes each table from the first adapter that has rows for it.
func mergeTables(adapters []Adapter, used map[string]bool) model.Tables {
	var out model.Tables
	all := make([]model.Tables, len(adapters))
	for i, a := range adapters {
		all[i] = a.Tables()
	}
	for i, t := range all {
		name := adapters[i].Name()
		if len(out.Activity) == 0 && len(t.Activity) > 0 {
			out.Activity, used[name] = t.Activity, true
		}
		if len(out.Counterparties) == 0 && len(t.Counterparties) > 0 {
			out.Counterparties, used[name] = t.Counterparties, true
		}
		if len(out.Transactions) == 0 && len(t.Transactions) > 0 {
			out.Transactions, used[name] = t.Transactions, true
		}
		if len(out.Unusual) == 0 && len(t.Unusual) > 0 {
			out.Unusual, used[name] = t.Unusual, true
		}
		if len(out.CTA) == 0 && len(t.CTA) > 0 {
			out.CTA, used[name] = t.CTA, true
		}
		if len(out.BIP) == 0 && len(t.BIP) > 0 {
			out.BIP, used[name] = t.BIP, true
		}
	}
	return out
}

func canonicalizePeriods(rec *model.CaseRecord) {
	canon := func(p *model.Period) {
		p.Start = coerce.ToCanonicalDate(p.Start)
		p.End = coerce.ToCanonicalDate(p.End)
	}
	canon(&rec.ReviewPeriod)
	for i := range rec.AlertInfo {
		canon(&rec.AlertInfo[i].ReviewPeriod)
	}
	for i := range rec.PriorCases {
		canon(&rec.PriorCases[i].ReviewPeriod)
	}
}

// linkRelationships fills a subject's account relationship from the role it
// holds on any account's related-party list.
func linkRelationships(rec *model.CaseRecord) {
	for i := range rec.Subjects {
		s := &rec.Subjects[i]
		if s.AccountRelationship != "" || s.Name == "" {
			continue
		}
		for _, acct := range rec.Accounts {
			idx := slices.IndexFunc(acct.RelatedParties, func(p model.RelatedParty) bool {
				return strings.EqualFold(p.Name, s.Name)
			})
			if idx >= 0 && acct.RelatedParties[idx].Role != "" {
				s.AccountRelationship = acct.RelatedParties[idx].Role
				break
			}
		}
	}
}

func joinSource(cur, name string) string {
	if cur == "" {
		return name
	}
	return cur + "," + name
}
