package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// standardized reads the standardized export: a caseInfo header, an accounts
// list keyed by accountKey with per-account activitySummary breakdowns, and
// a transactions object holding the full register and its samples.
type standardized struct {
	root gjson.Result
}

// NewStandardized returns the standardized-schema adapter. It applies only to
// JSON objects that carry a caseInfo header or an accounts list.
func NewStandardized(doc *fetcher.Document) Adapter {
	if !doc.IsJSON() {
		return nil
	}
	root := gjson.ParseBytes(doc.Raw)
	if !root.IsObject() {
		return nil
	}
	if !root.Get("caseInfo").Exists() && !root.Get("accounts.0.accountKey").Exists() {
		return nil
	}
	return &standardized{root: root}
}

func (s *standardized) Name() string { return "standardized" }

func (s *standardized) CaseNumber() string {
	return text(s.root, "caseInfo.caseNumber", "caseInfo.case_number")
}

func (s *standardized) Alerts() []model.Alert {
	var out []model.Alert
	for _, a := range items(s.root.Get("alerts")) {
		alert := model.Alert{
			AlertID:      text(a, "alertId", "alert_id"),
			AlertMonth:   text(a, "alertMonth", "alert_month"),
			Description:  text(a, "description"),
			ReviewPeriod: resultPeriod(a, "reviewPeriod", "review_period"),
		}
		if alert != (model.Alert{}) {
			out = append(out, alert)
		}
	}
	return out
}

func (s *standardized) Subjects() []model.Subject {
	var out []model.Subject
	for _, r := range items(s.root.Get("subjects")) {
		if subj := subjectFrom(r); subj.Name != "" {
			out = append(out, subj)
		}
	}
	return out
}

func (s *standardized) Accounts() []model.Account {
	var out []model.Account
	for _, a := range items(s.root.Get("accounts")) {
		acct := model.Account{
			AccountNumber:  text(a, "accountKey", "accountNumber"),
			AccountType:    text(a, "accountTypes", "accountType"),
			AccountTitle:   text(a, "accountTitle"),
			OpenDate:       text(a, "openingDate", "openDate"),
			CloseDate:      text(a, "closingDate", "closeDate"),
			Status:         text(a, "statusDescription", "status"),
			ClosureReason:  text(a, "closureReason"),
			Branch:         text(a, "branch", "holdingBranch"),
			RelatedParties: relatedParties(a.Get("relatedParties").Value()),
		}
		if acct.AccountNumber != "" {
			out = append(out, acct)
		}
	}
	return out
}

func (s *standardized) PriorCases() []model.PriorCase {
	var out []model.PriorCase
	for _, p := range items(first(s.root, "priorSars", "priorCases")) {
		pc := model.PriorCase{
			CaseNumber:    text(p, "caseNumber"),
			AlertIDs:      texts(first(p, "alertIds", "alertId")),
			AlertMonths:   texts(first(p, "alertMonths", "alertMonth")),
			ReviewPeriod:  resultPeriod(p, "reviewPeriod", "scopeOfReview"),
			SARFormNumber: text(p, "formNumber", "sarFormNumber"),
			FilingDate:    text(p, "filingDate"),
			Summary:       text(p, "summary", "sarSummary"),
		}
		if pc.CaseNumber != "" {
			out = append(out, pc)
		}
	}
	return out
}

func (s *standardized) DatabaseSearches() model.DatabaseSearches {
	return model.DatabaseSearches{}
}

func (s *standardized) ReviewPeriod() model.Period {
	return resultPeriod(s.root.Get("caseInfo"), "reviewPeriod")
}

func (s *standardized) Tables() model.Tables {
	var t model.Tables
	for _, a := range items(s.root.Get("accounts")) {
		acct := text(a, "accountKey", "accountNumber")
		summary := a.Get("activitySummary")
		var rs []model.Row
		rs = append(rs, sideRows(arrayValue(summary.Get("creditsByType")), "CR")...)
		rs = append(rs, sideRows(arrayValue(summary.Get("debitsByType")), "DR")...)
		if len(rs) > 0 {
			t.Activity = mergeGroup(t.Activity, model.AccountRows{Account: acct, Rows: rs})
		}

		var cp []model.Row
		cp = append(cp, sideRows(arrayValue(first(a, "counterparties.credits", "counterparties.creditCounterparties")), "CR")...)
		cp = append(cp, sideRows(arrayValue(first(a, "counterparties.debits", "counterparties.debitCounterparties")), "DR")...)
		if len(cp) > 0 {
			t.Counterparties = mergeGroup(t.Counterparties, model.AccountRows{Account: acct, Rows: cp})
		}
	}
	txns := s.root.Get("transactions")
	t.Transactions = rows(arrayValue(txns.Get("all")))
	t.Unusual = rows(arrayValue(txns.Get("unusualActivitySample")))
	t.CTA = rows(arrayValue(txns.Get("ctaSample")))
	t.BIP = rows(arrayValue(txns.Get("bipSample")))
	return t
}
