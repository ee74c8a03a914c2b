package narrative

import (
	"fmt"
	"strings"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

const noInvention = "Do not alter, estimate, or invent any information not provided above."

// request is the content of one generation prompt.
type request struct {
	task    string
	format  string
	details []detail
	body    string
	notes   []string
}

type detail struct{ label, value string }

func (r request) String() string {
	var b strings.Builder
	b.WriteString(r.task)
	if r.format != "" {
		fmt.Fprintf(&b, " Follow exactly this format:\n\n%q\n", r.format)
	}
	if len(r.details) > 0 {
		b.WriteString("\nUse only these details:\n")
		for _, d := range r.details {
			fmt.Fprintf(&b, "- %s: %s\n", d.label, d.value)
		}
	}
	if r.body != "" {
		b.WriteString("\n" + r.body + "\n")
	}
	for _, n := range r.notes {
		b.WriteString("\n" + n)
	}
	b.WriteString("\n\n" + noInvention)
	return b.String()
}

func promptIntroduction(f *facts) string {
	return request{
		task:   "Write the first paragraph of a SAR (Suspicious Activity Report) narrative.",
		format: "U.S. Bank National Association (USB), is filing this Suspicious Activity Report (SAR) to report [type of activity] totaling [total amount] [derived from] by [customer name] in [account type] account number [account number]. The suspicious activity was conducted from [start date] through [end date].",
		details: []detail{
			{"Activity type", f.activity.Name},
			{"Total amount", coerce.FormatCurrency(f.total())},
			{"Derived from", f.activity.DerivedFrom},
			{"Customer name", f.subjects(true)},
			{"Account type", f.accountType()},
			{"Account number", f.accountNumber()},
			{"Start date", f.period.Start},
			{"End date", f.period.End},
			{"AML indicators", f.amlRisks()},
		},
		notes: []string{"Spell out acronyms such as ACH on first use, e.g. \"Automated Clearing House (ACH)\"."},
	}.String()
}

func promptPriorCases(f *facts) string {
	var b strings.Builder
	for _, pc := range f.rec.PriorCases {
		fmt.Fprintf(&b, "Case number: %s\nFiling date: %s\nSummary: %s\n\n", pc.CaseNumber, coerce.ToCanonicalDate(pc.FilingDate), pc.Summary)
	}
	body := strings.TrimSpace(b.String())
	if body == "" {
		body = "No prior cases found."
	}
	return request{
		task: "Write a paragraph about prior SARs based only on the following information.",
		body: body,
		notes: []string{
			fmt.Sprintf("If there are no prior cases, write exactly: %q", noPriorSARs),
			"Otherwise format each case as: \"Prior SAR (Case Number: [case number]) was filed on [filing date] reporting [summary].\"",
		},
	}.String()
}

func promptAccountInfo(f *facts) string {
	a := f.rec.AccountInfo
	status := "remains open"
	if a.IsClosed() {
		status = "closed"
	}
	return request{
		task:   "Write one paragraph describing the account under review.",
		format: "Personal [account type] account [account number] was opened on [open date] and [remains open | closed on [close date]. The account was closed due to [closure reason].]",
		details: []detail{
			{"Account type", f.accountType()},
			{"Account number", a.AccountNumber},
			{"Open date", coerce.ToCanonicalDate(a.OpenDate)},
			{"Status", status},
			{"Close date", coerce.ToCanonicalDate(a.CloseDate)},
			{"Closure reason", a.ClosureReason},
		},
	}.String()
}

func promptSubjectInfo(f *facts) string {
	var b strings.Builder
	for _, s := range f.rec.Subjects {
		fmt.Fprintf(&b, "Name: %s\nOccupation: %s\nEmployer: %s\nRelationship: %s\n\n", s.Name, s.Occupation, s.Employer, s.AccountRelationship)
	}
	body := strings.TrimSpace(b.String())
	if body == "" {
		return ""
	}
	return request{
		task:   "Write one paragraph describing each subject of the report.",
		format: "[name] is employed as a [occupation] at [employer]. [name] is listed as [relationship] on the account.",
		body:   body,
		notes:  []string{"When occupation and employer are both blank, write only: \"[name] is listed as [relationship] on the account.\""},
	}.String()
}

func promptActivitySummary(f *facts) string {
	ts := f.rec.TransactionSummary
	return request{
		task:   "Write the activity summary paragraph of a SAR narrative.",
		format: "The account activity for [account number] from [start date] to [end date] included total credits of [total credits] and total debits of [total debits]. [activity description] The AML risks associated with these transactions are as follows: [AML risks].",
		details: []detail{
			{"Account number", f.accountNumber()},
			{"Start date", f.period.Start},
			{"End date", f.period.End},
			{"Total credits", coerce.FormatCurrency(ts.TotalCredits)},
			{"Total debits", coerce.FormatCurrency(ts.TotalDebits)},
			{"Activity description", strings.TrimSpace(f.activityDescription())},
			{"AML risks", f.amlRisks()},
		},
	}.String()
}

func promptTransactionSamples(f *facts) string {
	txns := f.rec.UnusualActivity.Transactions
	if len(txns) == 0 {
		return ""
	}
	if len(txns) > maxSamples {
		txns = txns[:maxSamples]
	}
	return request{
		task:   "Write a one-sentence list of sample suspicious transactions.",
		format: "A sample of the suspicious transactions includes: [date]: [amount] ([type]) - [description]; ...",
		body:   sampleLines(txns),
	}.String()
}

func sampleLines(txns []model.SampleTransaction) string {
	var b strings.Builder
	for _, t := range txns {
		fmt.Fprintf(&b, "- %s: %s (%s) %s\n", coerce.ToCanonicalDate(t.Date), coerce.FormatCurrency(t.Amount), t.Type, t.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func promptConclusion(f *facts) string {
	return request{
		task:   "Write the concluding paragraph of a SAR narrative.",
		format: "In conclusion, USB is reporting [total amount] in [activity type] which gave the appearance of suspicious activity and were conducted by [subjects] in [account type] account number [account number] from [start date] through [end date]. USB will conduct a follow-up review to monitor for continuing activity. All requests for supporting documentation can be sent to " + supportEmail + " referencing AML case number [case number].",
		details: []detail{
			{"Total amount", coerce.FormatCurrency(f.total())},
			{"Activity type", f.activity.Name},
			{"Subjects", f.subjects(false)},
			{"Account type", f.accountType()},
			{"Account number", f.accountNumber()},
			{"Start date", f.period.Start},
			{"End date", f.period.End},
			{"Case number", f.rec.CaseNumber},
		},
	}.String()
}

func promptAlertingActivity(f *facts) string {
	c := f.rec
	if c.Aggregates != nil && (c.Aggregates.AlertingActivity.CreditCount > 0 || c.Aggregates.AlertingActivity.DebitCount > 0) {
		return alertingSummaryPrompt(c.Aggregates.AlertingActivity, c.CaseNumber)
	}
	var b strings.Builder
	for _, a := range c.AlertInfo {
		fmt.Fprintf(&b, "Alert %s (month %s): %s\n", a.AlertID, a.AlertMonth, a.Description)
	}
	return request{
		task:   "Summarize why the account alerted, in one sentence.",
		format: "[case number]: [account type] [account number] alerted in [alert months] for [alert descriptions].",
		details: []detail{
			{"Case number", c.CaseNumber},
			{"Account type", firstNonEmpty(c.AccountInfo.AccountType, "account")},
			{"Account number", c.AccountInfo.AccountNumber},
			{"Subjects", f.subjects(false)},
		},
		body: strings.TrimSpace(b.String()),
	}.String()
}

func alertingSummaryPrompt(s model.AlertingSummary, caseNumber string) string {
	side := func(label string, total float64, count int, st model.AmountStat) string {
		return fmt.Sprintf("%s:\n- Total amount: %s\n- Number of transactions: %d\n- Date range: %s to %s\n- Transaction amounts: %s to %s\n- Most common activity: %s (%.2f%%)",
			label, coerce.FormatCurrency(total), count, st.EarliestDate, st.LatestDate,
			coerce.FormatCurrency(st.MinAmount), coerce.FormatCurrency(st.MaxAmount),
			st.HighestPercentType, st.HighestPercentValue)
	}
	body := strings.Join([]string{
		fmt.Sprintf("Alert information:\n- Case number: %s\n- Alerting account(s): %s\n- Alerting month(s): %s\n- Alert description: %s",
			firstNonEmpty(s.CaseNumber, caseNumber), s.AlertingAccounts(), strings.Join(s.AlertMonths, ", "), strings.Join(s.Descriptions, "; ")),
		side("Credits", s.TotalCredits, s.CreditCount, s.Credits),
		side("Debits", s.TotalDebits, s.DebitCount, s.Debits),
	}, "\n\n")
	return request{
		task: "Summarize this bank account alert information directly, without introductory phrases.",
		body: body,
		notes: []string{
			"Write three paragraphs. First: the case number, alerting accounts and months, and a brief description of the alert activity. Second: credit activity with total, count, most common type with its percentage, and range of amounts. Third: the same for debit activity.",
			"Keep sentences short and factual.",
		},
	}.String()
}

func promptPriorSARs(f *facts) string {
	if len(f.rec.PriorCases) == 0 {
		return ""
	}
	var b strings.Builder
	for _, pc := range f.rec.PriorCases {
		fmt.Fprintf(&b, "Case %s, SAR form %s, filed %s: %s\n", pc.CaseNumber, pc.SARFormNumber, coerce.ToCanonicalDate(pc.FilingDate), pc.Summary)
	}
	return request{
		task:   "Summarize the prior cases and SAR filings for a SAR recommendation in one short paragraph.",
		format: "Prior SARs: Case [case number] filed on [filing date] (SAR Form [form number]): [summary]; ...",
		body:   strings.TrimSpace(b.String()),
	}.String()
}

func promptInvestigationSummary(f *facts) string {
	var b strings.Builder
	for _, s := range f.rec.AccountSummaries {
		fmt.Fprintf(&b, "Account %s:\nTotal credits: %s\nTotal debits: %s\n", s.AccountNumber, coerce.FormatCurrency(s.TotalCredits), coerce.FormatCurrency(s.TotalDebits))
		if txt := breakdownText(s.CreditBreakdown); txt != "" {
			fmt.Fprintf(&b, "Credit types: %s\n", txt)
		}
		if txt := breakdownText(s.DebitBreakdown); txt != "" {
			fmt.Fprintf(&b, "Debit types: %s\n", txt)
		}
		b.WriteByte('\n')
	}
	if len(f.rec.UnusualActivity.Transactions) > 0 {
		p := f.unusualPeriod()
		fmt.Fprintf(&b, "Alerting transactions: %s from %s to %s totaling %s\n",
			joinList(unusualTypes(f.rec.UnusualActivity.Transactions)), p.Start, p.End, coerce.FormatCurrency(f.unusualTotal()))
	}
	body := strings.TrimSpace(b.String())
	if body == "" {
		return ""
	}
	return request{
		task:   "Write the summary of investigation section of a SAR recommendation.",
		format: "Account [account number] consisted of the following top credit activity: [credit types with amounts]. Account [account number] consisted of the following top debit activity: [debit types with amounts].",
		body:   body,
		notes:  []string{"If alerting transactions are listed, add: \"The alerting or significant identified transactions consisted of [types] conducted from [start] to [end] totaling [amount].\""},
	}.String()
}

func promptRecommendationConclusion(f *facts) string {
	p := f.unusualPeriod()
	return request{
		task:   "Write the conclusion of a SAR recommendation in two sentences.",
		format: "In conclusion a SAR is recommended to report unusual [activity type] activity involving USB accounts [account number] and subjects [subjects]. The unusual activity totaled [amount] [derived from] between [start date] and [end date].",
		details: []detail{
			{"Activity type", f.activity.Name},
			{"Account number", f.accountNumber()},
			{"Subjects", f.subjects(false)},
			{"Amount", coerce.FormatCurrency(f.unusualTotal())},
			{"Derived from", f.activity.DerivedFrom},
			{"Start date", p.Start},
			{"End date", p.End},
		},
	}.String()
}
