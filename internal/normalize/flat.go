package normalize

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// flat reads the modern flat schema: top-level camelCase or snake_case keys
// such as caseNumber, alertInfo, subjects and accountInfo.
type flat struct {
	root gjson.Result
}

// NewFlat returns the flat-schema adapter for JSON object documents.
func NewFlat(doc *fetcher.Document) Adapter {
	if !doc.IsJSON() {
		return nil
	}
	root := gjson.ParseBytes(doc.Raw)
	if !root.IsObject() {
		return nil
	}
	return &flat{root: root}
}

func (f *flat) Name() string { return "flat" }

// first returns the first path that exists.
func first(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// text returns the first non-empty string value among paths.
func text(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := r.Get(p)
		if !v.Exists() || v.IsObject() {
			continue
		}
		if v.IsArray() {
			var parts []string
			for _, e := range v.Array() {
				if s := strings.TrimSpace(e.String()); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

// items returns r's elements, wrapping a single object in a list.
func items(r gjson.Result) []gjson.Result {
	switch {
	case r.IsArray():
		return r.Array()
	case r.IsObject():
		return []gjson.Result{r}
	}
	return nil
}

// arrayValue decodes r only when it is a JSON array.
func arrayValue(r gjson.Result) any {
	if !r.IsArray() {
		return nil
	}
	return r.Value()
}

func texts(r gjson.Result) []string {
	var out []string
	for _, e := range items(r) {
		if s := strings.TrimSpace(e.String()); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 && r.Type == gjson.String && r.String() != "" {
		out = append(out, strings.TrimSpace(r.String()))
	}
	return out
}

// resultPeriod reads a period from a combined string, a nested object, or a
// pair of sibling start/end keys on parent.
func resultPeriod(parent gjson.Result, paths ...string) model.Period {
	for _, p := range paths {
		v := parent.Get(p)
		switch {
		case v.Type == gjson.String:
			if per := SplitPeriod(v.String()); !per.IsZero() {
				return per
			}
		case v.IsObject():
			if per := period(v.Value()); !per.IsZero() {
				return per
			}
		}
	}
	return model.Period{
		Start: text(parent, "reviewPeriodStart", "review_period_start", "startDate", "start_date"),
		End:   text(parent, "reviewPeriodEnd", "review_period_end", "endDate", "end_date"),
	}
}

func (f *flat) CaseNumber() string {
	return text(f.root, "caseNumber", "case_number", "case.number", "case.caseNumber")
}

func (f *flat) Alerts() []model.Alert {
	var out []model.Alert
	for _, a := range items(first(f.root, "alertInfo", "alert_info", "alerting_details", "alertingDetails")) {
		alert := model.Alert{
			AlertID:      text(a, "alertId", "alert_id", "id"),
			AlertMonth:   text(a, "alertMonth", "alert_month", "month"),
			Description:  text(a, "description"),
			ReviewPeriod: resultPeriod(a, "reviewPeriod", "review_period"),
		}
		if alert != (model.Alert{}) {
			out = append(out, alert)
		}
	}
	return out
}

func subjectFrom(s gjson.Result) model.Subject {
	return model.Subject{
		Name:                text(s, "name", "fullName"),
		IsPrimary:           s.Get("isPrimary").Bool() || s.Get("is_primary").Bool(),
		PartyKey:            text(s, "partyKey", "party_key"),
		Occupation:          text(s, "occupation"),
		Employer:            text(s, "employer"),
		Nationality:         text(s, "nationality"),
		Address:             addressText(first(s, "address", "addresses")),
		AccountRelationship: text(s, "accountRelationship", "account_relationship", "relationship"),
	}
}

// addressText renders an address that may be a string, a list of lines or a
// structured object.
func addressText(r gjson.Result) string {
	switch {
	case r.IsArray():
		if arr := r.Array(); len(arr) > 0 {
			return addressText(arr[0])
		}
	case r.IsObject():
		var parts []string
		for _, k := range []string{"street", "line1", "line2", "city", "state", "zip", "postalCode", "country"} {
			if s := strings.TrimSpace(r.Get(k).String()); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return strings.TrimSpace(r.String())
}

func (f *flat) Subjects() []model.Subject {
	var out []model.Subject
	for _, s := range items(first(f.root, "subjects", "customer_information", "customerInformation")) {
		if subj := subjectFrom(s); subj.Name != "" {
			out = append(out, subj)
		}
	}
	return out
}

func (f *flat) Accounts() []model.Account {
	var out []model.Account
	for _, a := range items(first(f.root, "accountInfo", "account_info", "account_information", "accountInformation")) {
		acct := model.Account{
			AccountNumber:  text(a, "accountNumber", "account_number", "accountKey"),
			AccountType:    text(a, "accountType", "account_type"),
			AccountTitle:   text(a, "accountTitle", "account_title"),
			OpenDate:       text(a, "openDate", "open_date"),
			CloseDate:      text(a, "closeDate", "close_date"),
			Status:         text(a, "status"),
			ClosureReason:  text(a, "closureReason", "closure_reason"),
			Branch:         text(a, "branch"),
			RelatedParties: relatedParties(first(a, "relatedParties", "related_parties").Value()),
		}
		if acct.AccountNumber != "" || acct.AccountType != "" {
			out = append(out, acct)
		}
	}
	return out
}

func (f *flat) PriorCases() []model.PriorCase {
	var out []model.PriorCase
	for _, p := range items(first(f.root, "priorCases", "prior_cases")) {
		pc := model.PriorCase{
			CaseNumber:    text(p, "caseNumber", "case_number"),
			AlertIDs:      texts(first(p, "alertId", "alert_id", "alertIds")),
			AlertMonths:   texts(first(p, "alertMonth", "alert_month", "alertMonths")),
			ReviewPeriod:  resultPeriod(p, "reviewPeriod", "review_period"),
			SARFormNumber: text(p, "sarFormNumber", "sar_form_number"),
			FilingDate:    text(p, "filingDate", "filing_date"),
			Summary:       text(p, "summary", "sarSummary"),
		}
		if pc.CaseNumber != "" {
			out = append(out, pc)
		}
	}
	return out
}

func (f *flat) DatabaseSearches() model.DatabaseSearches {
	db := first(f.root, "databaseSearches", "database_searches")
	if !db.IsObject() {
		return model.DatabaseSearches{}
	}
	out := model.DatabaseSearches{
		KYC:          model.SearchResult{Results: text(db, "kyc.results", "kyc")},
		AdverseMedia: model.SearchResult{Results: text(db, "adverseMedia.results", "adverse_media.results", "adverseMedia", "adverse_media")},
	}
	for _, r := range items(first(db, "riskRatings", "risk_ratings")) {
		out.RiskRatings = append(out.RiskRatings, model.RiskRating{
			Name:     text(r, "name"),
			PartyKey: text(r, "partyKey", "party_key"),
			SOR:      text(r, "sor"),
			Rating:   text(r, "rating"),
		})
	}
	return out
}

func (f *flat) ReviewPeriod() model.Period {
	return resultPeriod(f.root, "reviewPeriod", "review_period", "scopeOfReview")
}

// Tables reads raw rows carried at the top level of a flat export.
func (f *flat) Tables() model.Tables {
	var t model.Tables
	t.Activity = accountRowGroups(first(f.root, "activitySummary", "activity_summary").Value())
	t.Counterparties = accountRowGroups(first(f.root, "counterparties").Value())
	t.Transactions = rows(arrayValue(first(f.root, "transactions")))
	t.Unusual = rows(arrayValue(first(f.root, "unusualActivity", "unusual_activity")))
	t.CTA = rows(arrayValue(first(f.root, "ctaSample", "cta_sample")))
	t.BIP = rows(arrayValue(first(f.root, "bipSample", "bip_sample")))
	return t
}
