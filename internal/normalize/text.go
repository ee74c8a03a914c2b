package normalize

import (
	"regexp"
	"strings"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

const datePattern = `\d{1,2}/\d{1,2}/\d{2,4}`

var (
	// Recognized section headers, optionally numbered ("3. Account Information").
	headerRe = regexp.MustCompile(`(?mi)^[ \t]*(?:\d+\.[ \t]*)?(Case Information|Alerting Details|Alert Information|` +
		`U\.?S\.? Bank Customer Information|Non-U\.?S\.? Bank Customer Information|Customer Information|` +
		`Account Information|Prior Cases/SARs|Prior Cases|Database Searches|Scope of Review|` +
		`Activity Summary|Unusual Activity|Recommendation)\b[^\n]*$`)
	// A numbered paragraph after a blank line also ends a section.
	numberedRe = regexp.MustCompile(`\n[ \t]*\n[ \t]*\d+\.[ \t]`)

	labeledCaseRe = []*regexp.Regexp{
		regexp.MustCompile(`Case Number:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`Case ID:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`Case #:?\s*([A-Z0-9-]+)`),
	}
	bareCaseRe = []*regexp.Regexp{
		regexp.MustCompile(`\bCC\d{10}\b`),
		regexp.MustCompile(`\bAML\d{7}\b`),
		regexp.MustCompile(`\bC\d{8}\b`),
	}

	alertIDRe      = regexp.MustCompile(`Alert ID:?[ \t]*([A-Z0-9_-]+)`)
	alertMonthRe   = regexp.MustCompile(`Alert Month:?\s*(\d{6})`)
	descriptionRe  = regexp.MustCompile(`(?m)Description:?[ \t]*([^\n]+(?:\n[ \t]*[^\n:]+$)*)`)
	reviewPeriodRe = regexp.MustCompile(`(?:Scope of Review|Review Period):?\s*(` + datePattern + `)\s*[-–]\s*(` + datePattern + `)`)

	nameLineRe     = regexp.MustCompile(`(?m)^[ \t]*([A-Z][A-Z'.-]+(?:[ \t]+[A-Z][A-Z'.-]*){1,5})[ \t]*(?:\(([^)\n]*)\))?[ \t]*$`)
	partyKeyRe     = regexp.MustCompile(`Party Key:?\s*(\d+)`)
	occupationRe   = regexp.MustCompile(`Occupation(?: Description)?:?[ \t]*([^\n:]+)`)
	employerRe     = regexp.MustCompile(`Employer:?[ \t]*([^\n:]+)`)
	nationalityRe  = regexp.MustCompile(`(?:Country of )?Nationality:?[ \t]*([^\n:]+)`)
	addressRe      = regexp.MustCompile(`Address(?:es)?:?[ \t]*([^\n]+(?:\n[^A-Z\n][^\n]*)*)`)
	relationshipRe = regexp.MustCompile(`\(([^)\n]*(?:Owner|Signer|Primary|Co-Owner|Authorized)[^)\n]*)\)`)

	accountNumberRe = regexp.MustCompile(`Account (?:Number|Key|#):?\s*([A-Z0-9-]*\d[A-Z0-9-]*)`)
	bareAccountRe   = regexp.MustCompile(`\b((?:ICS|DDA)\d{4,})\b`)
	accountTypeRe   = regexp.MustCompile(`Account Type:?[ \t]*([^\n]+)`)
	accountTitleRe  = regexp.MustCompile(`Account Title:?[ \t]*([^\n]+)`)
	openDateRe      = regexp.MustCompile(`(?:Open|Opening) Date:?\s*(` + datePattern + `)`)
	closeDateRe     = regexp.MustCompile(`(?:Close|Closing) Date:?\s*(` + datePattern + `)`)
	closureReasonRe = regexp.MustCompile(`Closure Reason:?[ \t]*([^\n]+)`)
	statusRe        = regexp.MustCompile(`Status(?: Description)?:?[ \t]*([^\n]+)`)
	relatedRe       = regexp.MustCompile(`Related [Pp]arties[^\n:]*:[ \t]*([^\n]+)`)
	branchRe        = regexp.MustCompile(`Branch:?[ \t]*([^\n]+)`)

	noPriorRe      = regexp.MustCompile(`(?i)no prior (?:cases?|sars?)`)
	priorCaseRe    = regexp.MustCompile(`Case Number:?\s*([A-Z0-9-]+)`)
	sarFormRe      = regexp.MustCompile(`SAR Form Number:?\s*(\d+)`)
	filingDateRe   = regexp.MustCompile(`(?i)Filing date:?\s*(` + datePattern + `)`)
	priorSummaryRe = regexp.MustCompile(`Summary(?: of [^\n:]+)?:[ \t]*([^\n]+)`)

	kycRe          = regexp.MustCompile(`No (?:WebKYC form links|matching [Hh]ogan profiles) found`)
	adverseRe      = regexp.MustCompile(`No adverse media found`)
	riskRatingRe   = regexp.MustCompile(`(?m)^[ \t]*([A-Z][A-Z .'-]+?)[ \t]+(\d{6,})[ \t]+([A-Z]{2,})[ \t]+([^\n]+)$`)
	dateRangeRe    = regexp.MustCompile(`(` + datePattern + `)\s*[-–]\s*(` + datePattern + `)`)
	caseReviewRe   = regexp.MustCompile(`Case Review Period:?\s*(` + datePattern + `)\s*[-–]\s*(` + datePattern + `)`)
	scopeStartRe   = regexp.MustCompile(`Start Date:?\s*(` + datePattern + `)`)
	scopeEndRe     = regexp.MustCompile(`End Date:?\s*(` + datePattern + `)`)
	nameLabelRe    = regexp.MustCompile(`(?:Customer|Subject) Name:?[ \t]*([^\n]+)`)
	primaryMarkers = []string{"Primary Party", "Primary"}
)

// freeText extracts fields from an unstructured case document with labeled
// patterns, each scoped to its section of the text.
type freeText struct {
	text    string
	headers [][]int
}

// NewText returns the free-text adapter for text documents.
func NewText(doc *fetcher.Document) Adapter {
	if doc.Kind != fetcher.KindText || strings.TrimSpace(doc.Text) == "" {
		return nil
	}
	return &freeText{
		text:    doc.Text,
		headers: headerRe.FindAllStringSubmatchIndex(doc.Text, -1),
	}
}

func (t *freeText) Name() string { return "text" }

// section returns the text following the first header matching one of names,
// up to the next recognized header or numbered paragraph. The second return
// is false when no such header exists.
func (t *freeText) section(names ...string) (string, bool) {
	for _, name := range names {
		for i, h := range t.headers {
			title := t.text[h[2]:h[3]]
			if !strings.EqualFold(title, name) {
				continue
			}
			start := h[3]
			end := len(t.text)
			if i+1 < len(t.headers) {
				end = t.headers[i+1][0]
			}
			body := t.text[start:end]
			if loc := numberedRe.FindStringIndex(body); loc != nil {
				body = body[:loc[0]]
			}
			return body, true
		}
	}
	return "", false
}

// scoped returns the named section, or the whole document when it has no
// such header.
func (t *freeText) scoped(names ...string) string {
	if s, ok := t.section(names...); ok {
		return s
	}
	return t.text
}

func submatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func allSubmatches(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// blocks splits s at every match of re. Each block runs from one match to the
// next, or to the end of s.
func blocks(re *regexp.Regexp, s string) []string {
	locs := re.FindAllStringIndex(s, -1)
	out := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, s[loc[0]:end])
	}
	return out
}

func (t *freeText) CaseNumber() string {
	scope := t.scoped("Case Information")
	for _, re := range labeledCaseRe {
		if v := submatch(re, scope); v != "" {
			return v
		}
	}
	for _, re := range labeledCaseRe {
		if v := submatch(re, t.text); v != "" {
			return v
		}
	}
	for _, re := range bareCaseRe {
		if v := re.FindString(t.text); v != "" {
			return v
		}
	}
	return ""
}

func (t *freeText) Alerts() []model.Alert {
	scope := t.scoped("Alerting Details", "Alert Information")
	var out []model.Alert
	for _, block := range blocks(alertIDRe, scope) {
		alert := model.Alert{
			AlertID:     submatch(alertIDRe, block),
			AlertMonth:  submatch(alertMonthRe, block),
			Description: collapse(submatch(descriptionRe, block)),
		}
		if m := reviewPeriodRe.FindStringSubmatch(block); m != nil {
			alert.ReviewPeriod = model.Period{Start: m[1], End: m[2]}
		}
		out = append(out, alert)
	}
	return out
}

func (t *freeText) Subjects() []model.Subject {
	scope, ok := t.section("U.S. Bank Customer Information", "US Bank Customer Information", "Customer Information")
	if !ok {
		return nil
	}
	var out []model.Subject
	for _, block := range blocks(nameLineRe, scope) {
		m := nameLineRe.FindStringSubmatch(block)
		subj := model.Subject{
			Name:        strings.Join(strings.Fields(m[1]), " "),
			PartyKey:    submatch(partyKeyRe, block),
			Occupation:  submatch(occupationRe, block),
			Employer:    submatch(employerRe, block),
			Nationality: submatch(nationalityRe, block),
			Address:     collapse(submatch(addressRe, block)),
		}
		if rel := relationshipRe.FindStringSubmatch(block); rel != nil {
			subj.AccountRelationship = strings.TrimSpace(rel[1])
		}
		for _, marker := range primaryMarkers {
			if strings.Contains(block, marker) {
				subj.IsPrimary = true
				break
			}
		}
		out = append(out, subj)
	}
	if len(out) == 0 {
		for _, name := range allSubmatches(nameLabelRe, scope) {
			out = append(out, model.Subject{Name: name})
		}
	}
	return out
}

func (t *freeText) Accounts() []model.Account {
	scope, ok := t.section("Account Information")
	if !ok {
		return nil
	}
	acct := model.Account{
		AccountNumber: submatch(accountNumberRe, scope),
		AccountType:   submatch(accountTypeRe, scope),
		AccountTitle:  submatch(accountTitleRe, scope),
		OpenDate:      submatch(openDateRe, scope),
		CloseDate:     submatch(closeDateRe, scope),
		ClosureReason: submatch(closureReasonRe, scope),
		Status:        submatch(statusRe, scope),
		Branch:        submatch(branchRe, scope),
	}
	if acct.AccountNumber == "" {
		acct.AccountNumber = submatch(bareAccountRe, scope)
	}
	if acct.Status == "" {
		acct.Status = "OPEN"
		if acct.CloseDate != "" {
			acct.Status = "CLOSED"
		}
	}
	if rel := submatch(relatedRe, scope); rel != "" {
		for _, p := range strings.Split(rel, ",") {
			if p = strings.TrimSpace(p); p != "" {
				acct.RelatedParties = append(acct.RelatedParties, relatedParty(p))
			}
		}
	}
	if acct.AccountNumber == "" && acct.AccountType == "" {
		return nil
	}
	return []model.Account{acct}
}

func (t *freeText) PriorCases() []model.PriorCase {
	scope, ok := t.section("Prior Cases/SARs", "Prior Cases")
	if !ok || noPriorRe.MatchString(scope) {
		return nil
	}
	var out []model.PriorCase
	for _, block := range blocks(priorCaseRe, scope) {
		pc := model.PriorCase{
			CaseNumber:    submatch(priorCaseRe, block),
			AlertIDs:      allSubmatches(alertIDRe, block),
			AlertMonths:   allSubmatches(alertMonthRe, block),
			SARFormNumber: submatch(sarFormRe, block),
			FilingDate:    submatch(filingDateRe, block),
			Summary:       submatch(priorSummaryRe, block),
		}
		if m := reviewPeriodRe.FindStringSubmatch(block); m != nil {
			pc.ReviewPeriod = model.Period{Start: m[1], End: m[2]}
		}
		out = append(out, pc)
	}
	return out
}

func (t *freeText) DatabaseSearches() model.DatabaseSearches {
	scope, ok := t.section("Database Searches")
	if !ok {
		return model.DatabaseSearches{}
	}
	var out model.DatabaseSearches
	if i := strings.Index(scope, "KYC Database"); i >= 0 {
		kyc := scope[i:]
		if j := strings.Index(kyc, "Adverse Media"); j >= 0 {
			kyc = kyc[:j]
		}
		out.KYC.Results = kycRe.FindString(kyc)
	}
	if i := strings.Index(scope, "Adverse Media"); i >= 0 {
		adverse := scope[i:]
		if j := strings.Index(adverse, "Risk Ratings"); j >= 0 {
			adverse = adverse[:j]
		}
		out.AdverseMedia.Results = adverseRe.FindString(adverse)
	}
	if i := strings.Index(scope, "Risk Ratings"); i >= 0 {
		for _, m := range riskRatingRe.FindAllStringSubmatch(scope[i:], -1) {
			out.RiskRatings = append(out.RiskRatings, model.RiskRating{
				Name:     strings.TrimSpace(m[1]),
				PartyKey: m[2],
				SOR:      m[3],
				Rating:   strings.TrimSpace(m[4]),
			})
		}
	}
	return out
}

func (t *freeText) ReviewPeriod() model.Period {
	if scope, ok := t.section("Scope of Review"); ok {
		p := model.Period{Start: submatch(scopeStartRe, scope), End: submatch(scopeEndRe, scope)}
		if !p.IsZero() {
			return p
		}
		if m := dateRangeRe.FindStringSubmatch(scope); m != nil {
			return model.Period{Start: m[1], End: m[2]}
		}
	}
	if m := caseReviewRe.FindStringSubmatch(t.text); m != nil {
		return model.Period{Start: m[1], End: m[2]}
	}
	return model.Period{}
}

// Tables is empty: free text carries no tabular data.
func (t *freeText) Tables() model.Tables { return model.Tables{} }

// collapse joins wrapped lines into one.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
