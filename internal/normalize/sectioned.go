package normalize

import (
	"strings"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// Section titles of the sectioned export.
const (
	SectionCaseInformation     = "Case Information"
	SectionAlertingDetails     = "Alerting Details"
	SectionCustomerInformation = "Customer Information"
	SectionAccountInformation  = "Account Information"
	SectionPriorCases          = "Prior Cases/SARs"
	SectionDatabaseSearches    = "Database Searches"
	SectionScopeOfReview       = "Scope of Review"
	SectionActivitySummary     = "Activity Summary"
	SectionUnusualActivity     = "Unusual Activity"
	SectionCounterparties      = "Counterparties"
	SectionCTASample           = "CTA Sample"
	SectionBIPSample           = "BIP Sample"
)

// sectioned reads a case stored as a list of {section: <title>, ...} objects.
type sectioned struct {
	sections []model.RawSection
}

// NewSectioned returns the sectioned-schema adapter for documents that are a
// list of titled sections, or an object wrapping one under full_data.
func NewSectioned(doc *fetcher.Document) Adapter {
	sections := sectionsOf(doc)
	if len(sections) == 0 {
		return nil
	}
	return &sectioned{sections: sections}
}

// sectionsOf extracts the titled sections of a document, if it has any.
func sectionsOf(doc *fetcher.Document) []model.RawSection {
	if !doc.IsJSON() {
		return nil
	}
	list := asList(doc.Value)
	if m, ok := doc.Value.(map[string]any); ok {
		list = asList(get(m, "full_data", "sections", "fullData"))
	}
	var out []model.RawSection
	for _, e := range list {
		if m := asMap(e); m != nil {
			if _, ok := m["section"].(string); ok {
				out = append(out, model.RawSection(m))
			}
		}
	}
	return out
}

func (s *sectioned) Name() string { return "sectioned" }

func (s *sectioned) find(name string) map[string]any {
	return model.FindSection(s.sections, name)
}

func (s *sectioned) CaseNumber() string {
	return SectionCaseNumber(s.sections)
}

// SectionCaseNumber reads "Case Information" -> "Case Number".
func SectionCaseNumber(sections []model.RawSection) string {
	return str(model.FindSection(sections, SectionCaseInformation), "Case Number")
}

func (s *sectioned) Alerts() []model.Alert {
	return SectionAlerts(s.sections)
}

// SectionAlerts reads the alerts of an "Alerting Details" section. A single
// alert object is accepted as well as a list.
func SectionAlerts(sections []model.RawSection) []model.Alert {
	sec := model.FindSection(sections, SectionAlertingDetails)
	if sec == nil {
		return nil
	}
	var out []model.Alert
	for _, e := range asList(get(sec, "alerts", "Alerts", "alert")) {
		m := asMap(e)
		if m == nil {
			continue
		}
		alert := model.Alert{
			AlertID:     str(m, "Alert ID", "alertId"),
			AlertMonth:  str(m, "Alert Month", "alertMonth"),
			Description: str(m, "Description", "description"),
		}
		if rp := get(m, "Review Period", "reviewPeriod"); rp != nil {
			alert.ReviewPeriod = period(rp)
		} else {
			alert.ReviewPeriod = model.Period{
				Start: str(m, "Review Period Start", "Start Date"),
				End:   str(m, "Review Period End", "End Date"),
			}
		}
		if alert != (model.Alert{}) {
			out = append(out, alert)
		}
	}
	return out
}

func (s *sectioned) Subjects() []model.Subject {
	if subjects := CustomerSubjects(s.sections); len(subjects) > 0 {
		return subjects
	}
	return HoganSubjects(s.sections)
}

// CustomerSubjects reads subjects from the "Customer Information" section,
// in either the "US Bank Customer Information" list form or the older
// customerInformation."US Bank Customers" form. The first named subject is
// primary.
func CustomerSubjects(sections []model.RawSection) []model.Subject {
	sec := model.FindSection(sections, SectionCustomerInformation)
	if sec == nil {
		return nil
	}
	var out []model.Subject
	if list := asList(get(sec, "US Bank Customer Information")); len(list) > 0 {
		for _, e := range list {
			m := asMap(e)
			if m == nil {
				continue
			}
			out = append(out, model.Subject{
				Name:        str(m, "Primary Party", "Name"),
				PartyKey:    str(m, "Party Key"),
				Occupation:  str(m, "Occupation Description", "Occupation"),
				Employer:    str(m, "Employer"),
				Nationality: str(m, "Country of Nationality", "Nationality"),
				Address:     firstString(get(m, "Addresses", "Address")),
			})
		}
	} else if ci := asMap(get(sec, "customerInformation")); ci != nil {
		for _, e := range asList(get(ci, "US Bank Customers")) {
			m := asMap(e)
			if m == nil {
				continue
			}
			out = append(out, model.Subject{
				Name:        str(m, "Name", "Primary Party"),
				PartyKey:    str(m, "Party Key"),
				Occupation:  str(m, "Occupation Description", "Occupation"),
				Employer:    str(m, "Employer"),
				Nationality: str(m, "Nationality", "Country of Nationality"),
				Address:     firstString(get(m, "Addresses", "Address")),
			})
		}
	}
	return promoteFirst(out)
}

// HoganSubjects reads subjects from a "Hogan Search" list carried on any
// section. The first entry is primary.
func HoganSubjects(sections []model.RawSection) []model.Subject {
	for _, sec := range sections {
		list := asList(get(sec, "Hogan Search"))
		if len(list) == 0 {
			continue
		}
		var out []model.Subject
		for _, e := range list {
			m := asMap(e)
			if m == nil {
				continue
			}
			out = append(out, model.Subject{
				Name:     str(m, "Case Subject", "Name"),
				PartyKey: str(m, "Primary Party Key", "Party Key"),
			})
		}
		return promoteFirst(out)
	}
	return nil
}

// promoteFirst drops unnamed entries and marks the first subject primary when
// none is.
func promoteFirst(subjects []model.Subject) []model.Subject {
	var out []model.Subject
	for _, s := range subjects {
		if s.Name != "" {
			out = append(out, s)
		}
	}
	for _, s := range out {
		if s.IsPrimary {
			return out
		}
	}
	if len(out) > 0 {
		out[0].IsPrimary = true
	}
	return out
}

func firstString(v any) string {
	if l := strList(v); len(l) > 0 {
		return l[0]
	}
	return ""
}

func (s *sectioned) Accounts() []model.Account {
	return SectionAccounts(s.sections)
}

// SectionAccounts reads the "Account Information" section, either its
// "Accounts" list or the older accountInformation."Account" object.
func SectionAccounts(sections []model.RawSection) []model.Account {
	sec := model.FindSection(sections, SectionAccountInformation)
	if sec == nil {
		return nil
	}
	var out []model.Account
	for _, e := range asList(get(sec, "Accounts")) {
		m := asMap(e)
		if m == nil {
			continue
		}
		out = append(out, model.Account{
			AccountNumber:  str(m, "Account Key", "Account Number"),
			AccountType:    str(m, "Account Type"),
			AccountTitle:   str(m, "Account Title"),
			OpenDate:       str(m, "Account Opening Date & Branch", "Open Date"),
			CloseDate:      str(m, "Account Closing Date", "Close Date"),
			Status:         str(m, "Status Description", "Status"),
			ClosureReason:  str(m, "Closure Reason"),
			Branch:         str(m, "Account Holding Branch", "Branch"),
			RelatedParties: relatedParties(get(m, "Related Parties")),
		})
	}
	if len(out) > 0 {
		return out
	}

	info := asMap(get(sec, "accountInformation"))
	acct := asMap(get(info, "Account"))
	if acct == nil {
		return nil
	}
	a := model.Account{
		AccountNumber: str(acct, "Account Key"),
		AccountType:   str(acct, "Types", "Account Type"),
		AccountTitle:  str(acct, "Title"),
		CloseDate:     str(acct, "Closing Date"),
		Status:        str(asMap(get(acct, "Status")), "Description"),
	}
	if opening := asMap(get(acct, "Opening")); opening != nil {
		a.OpenDate = str(opening, "Date")
		a.Branch = str(opening, "Branch")
	}
	for _, p := range strList(get(acct, "Related Parties")) {
		a.RelatedParties = append(a.RelatedParties, model.RelatedParty{Name: p})
	}
	return []model.Account{a}
}

func (s *sectioned) PriorCases() []model.PriorCase {
	sec := s.find(SectionPriorCases)
	if sec == nil {
		return nil
	}
	var out []model.PriorCase
	for _, e := range asList(get(sec, "priorCases", "Prior Cases")) {
		m := asMap(e)
		if m == nil {
			continue
		}
		pc := model.PriorCase{CaseNumber: str(m, "Case Number")}
		if ai := asMap(get(m, "Alerting Information")); ai != nil {
			pc.AlertIDs = strList(get(ai, "Alert IDs"))
			pc.AlertMonths = strList(get(ai, "Alert Months"))
		}
		pc.ReviewPeriod = period(get(m, "Scope of Review", "Review Period"))
		if sar := asMap(get(m, "SAR Details")); sar != nil {
			pc.SARFormNumber = str(sar, "Form Number")
			pc.FilingDate = str(sar, "Filing Date")
			pc.Summary = str(sar, "SAR Summary")
		}
		if pc.Summary == "" {
			pc.Summary = str(m, "Investigation Summary")
		}
		if pc.CaseNumber != "" {
			out = append(out, pc)
		}
	}
	return out
}

func (s *sectioned) DatabaseSearches() model.DatabaseSearches {
	sec := s.find(SectionDatabaseSearches)
	if sec == nil {
		return model.DatabaseSearches{}
	}
	var out model.DatabaseSearches
	if entries := asList(get(sec, "KYC Database")); entries != nil {
		var lines []string
		for _, e := range entries {
			m := asMap(e)
			if m == nil {
				continue
			}
			link := str(m, "WebKYC Form Link")
			if link == "" {
				link = "No WebKYC form links found"
			}
			lines = append(lines, str(m, "Subject Name")+": "+link)
		}
		out.KYC.Results = strings.Join(lines, "\n")
		if out.KYC.Results == "" {
			out.KYC.Results = "No WebKYC form links found"
		}
	}
	out.AdverseMedia.Results = str(sec, "Adverse Media Review")
	for _, e := range asList(get(sec, "Risk Ratings")) {
		m := asMap(e)
		if m == nil {
			continue
		}
		out.RiskRatings = append(out.RiskRatings, model.RiskRating{
			Name:     str(m, "Subject Name"),
			PartyKey: str(m, "Party Key"),
			SOR:      str(m, "SOR"),
			Rating:   str(m, "Party Risk Rating Code Description", "Rating"),
		})
	}
	return out
}

func (s *sectioned) ReviewPeriod() model.Period {
	if p := SectionScope(s.sections); !p.IsZero() {
		return p
	}
	return SectionReviewPeriod(s.sections)
}

// SectionScope reads the "Scope of Review" start and end dates.
func SectionScope(sections []model.RawSection) model.Period {
	scope := model.FindSection(sections, SectionScopeOfReview)
	return model.Period{Start: str(scope, "Start Date"), End: str(scope, "End Date")}
}

// SectionReviewPeriod reads the combined review period carried on the
// "Account Information" section, in its current or older form, falling back
// to the first alert's review period.
func SectionReviewPeriod(sections []model.RawSection) model.Period {
	if acct := model.FindSection(sections, SectionAccountInformation); acct != nil {
		if p := SplitPeriod(str(acct, "Case Review Period")); !p.IsZero() {
			return p
		}
		if p := SplitPeriod(str(asMap(get(acct, "accountInformation")), "Review Period")); !p.IsZero() {
			return p
		}
	}
	if alerts := SectionAlerts(sections); len(alerts) > 0 {
		return alerts[0].ReviewPeriod
	}
	return model.Period{}
}

func (s *sectioned) Tables() model.Tables {
	var t model.Tables
	if sec := s.find(SectionActivitySummary); sec != nil {
		t.Activity = accountRowGroups(get(sec, SectionActivitySummary, "accounts"))
	}
	if sec := s.find(SectionCounterparties); sec != nil {
		t.Counterparties = accountRowGroups(get(sec, SectionCounterparties, "accounts"))
	}
	t.Unusual = SectionRows(s.sections, SectionUnusualActivity)
	t.CTA = SectionRows(s.sections, SectionCTASample)
	t.BIP = SectionRows(s.sections, SectionBIPSample)
	if sec := s.find("Transactions"); sec != nil {
		t.Transactions = rows(get(sec, "Transactions", "transactions"))
	}
	return t
}

// SectionRows returns the rows listed under key on any section that carries
// it, whatever that section's title.
func SectionRows(sections []model.RawSection, key string) []model.Row {
	for _, sec := range sections {
		if list := asList(get(sec, key)); len(list) > 0 {
			if _, isMap := get(sec, key).(map[string]any); isMap {
				continue
			}
			return rows(list)
		}
	}
	return nil
}
