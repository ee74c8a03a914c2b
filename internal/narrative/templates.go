package narrative

import (
	"fmt"
	"strings"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// Deterministic renderings of every section. These are the output whenever
// no generator is configured or the generator returns nothing.

const (
	noPriorSARs         = "No prior SARs were identified for the subjects or account."
	noSubjects          = "No subject information is available."
	noPriorCases        = "No prior cases or SARs were identified."
	noReviewPeriod      = "Review period not specified."
	investigatorSummary = "[Investigator to provide summary of investigation findings, including identified suspicious activity patterns and supporting evidence.]"
	supportEmail        = "lawenforcementrequestsml@usbank.com"
	unknownDate         = "an unknown date"
)

const ctaQuestionnaire = `CTA Request Type:

What is our customer's current or most recent occupation(s) and employer? If the customer is a student, what is their field of study and what school is being attended?

What is the nature of the customer's business? If available, please provide the customer's website as well as any physical addresses for their business locations.

What is the source of the customer's account credit activity (cash, wires, other transactions) as described in the summary?

What is the purpose of the customer's account debit activity as described in the summary?

Does the customer expect to have similar transactions (cash, wires or other activity described in the summary) in the future? If yes, what is the anticipated frequency, amount(s) and purpose of the activity?

What is the purpose of the wire transactions occurring in the customer's accounts? What is our customer's relationship to the wire originators and/or wire beneficiaries referenced in the summary?`

func renderIntroduction(f *facts) string {
	return fmt.Sprintf("U.S. Bank National Association (USB), is filing this Suspicious Activity Report (SAR) to report %s totaling %s %s by %s in %s account number %s. The suspicious activity was conducted from %s through %s.",
		f.activity.Name, coerce.FormatCurrency(f.total()), f.activity.DerivedFrom, f.subjects(true),
		f.accountType(), f.accountNumber(), f.period.Start, f.period.End)
}

func renderPriorCases(f *facts) string {
	if len(f.rec.PriorCases) == 0 {
		return noPriorSARs
	}
	parts := make([]string, 0, len(f.rec.PriorCases))
	for _, pc := range f.rec.PriorCases {
		parts = append(parts, fmt.Sprintf("Prior SAR (Case Number: %s) was filed on %s reporting %s.",
			pc.CaseNumber,
			firstNonEmpty(coerce.ToCanonicalDate(pc.FilingDate), unknownDate),
			firstNonEmpty(strings.TrimSuffix(strings.TrimSpace(pc.Summary), "."), "suspicious activity")))
	}
	return strings.Join(parts, " ")
}

func renderAccountInfo(f *facts) string {
	a := f.rec.AccountInfo
	opened := firstNonEmpty(coerce.ToCanonicalDate(a.OpenDate), unknownDate)
	closed := coerce.ToCanonicalDate(a.CloseDate)
	if !a.IsClosed() || closed == "" {
		return fmt.Sprintf("Personal %s account %s was opened on %s and remains open.", f.accountType(), a.AccountNumber, opened)
	}
	return fmt.Sprintf("Personal %s account %s was opened on %s and closed on %s. The account was closed due to %s.",
		f.accountType(), a.AccountNumber, opened, closed, firstNonEmpty(a.ClosureReason, "an unspecified reason"))
}

func renderSubjectInfo(f *facts) string {
	if len(f.rec.Subjects) == 0 {
		return noSubjects
	}
	parts := make([]string, 0, len(f.rec.Subjects))
	for _, s := range f.rec.Subjects {
		if s.Occupation != "" || s.Employer != "" {
			parts = append(parts, fmt.Sprintf("%s is employed as a %s at %s. %s is listed as %s on the account.",
				s.Name, firstNonEmpty(s.Occupation, "unknown occupation"), firstNonEmpty(s.Employer, "unknown employer"),
				s.Name, firstNonEmpty(s.AccountRelationship, "account holder")))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s is listed as %s on the account.", s.Name, firstNonEmpty(s.AccountRelationship, "an account holder")))
	}
	return strings.Join(parts, " ")
}

func renderActivitySummary(f *facts) string {
	ts := f.rec.TransactionSummary
	return fmt.Sprintf("The account activity for %s from %s to %s included total credits of %s and total debits of %s. %sThe AML risks associated with these transactions are as follows: %s.",
		f.accountNumber(), f.period.Start, f.period.End,
		coerce.FormatCurrency(ts.TotalCredits), coerce.FormatCurrency(ts.TotalDebits),
		f.activityDescription(), f.amlRisks())
}

const maxSamples = 5

func renderTransactionSamples(f *facts) string {
	txns := f.rec.UnusualActivity.Transactions
	if len(txns) == 0 {
		return ""
	}
	if len(txns) > maxSamples {
		txns = txns[:maxSamples]
	}
	var b strings.Builder
	b.WriteString("A sample of the suspicious transactions includes:")
	for i, t := range txns {
		fmt.Fprintf(&b, " %s: %s", coerce.ToCanonicalDate(t.Date), coerce.FormatCurrency(t.Amount))
		if t.Type != "" {
			fmt.Fprintf(&b, " (%s)", t.Type)
		}
		if t.Description != "" {
			fmt.Fprintf(&b, " - %s", t.Description)
		}
		if i < len(txns)-1 {
			b.WriteByte(';')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func renderConclusion(f *facts) string {
	return fmt.Sprintf("In conclusion, USB is reporting %s in %s which gave the appearance of suspicious activity and were conducted by %s in %s account number %s from %s through %s. USB will conduct a follow-up review to monitor for continuing activity. All requests for supporting documentation can be sent to %s referencing AML case number %s.",
		coerce.FormatCurrency(f.total()), f.activity.Name, f.subjects(false), f.accountType(), f.accountNumber(),
		f.period.Start, f.period.End, supportEmail, f.rec.CaseNumber)
}

func renderAlertingActivity(f *facts) string {
	c := f.rec
	if len(c.AlertInfo) == 0 {
		return c.CaseNumber + ": Unknown alerting account alerted for unknown reason."
	}
	var months, descs []string
	for _, a := range c.AlertInfo {
		if a.AlertMonth != "" {
			months = append(months, a.AlertMonth)
		}
		if a.Description != "" {
			descs = append(descs, a.Description)
		}
	}
	monthText, descText := "unknown month", "unknown reason"
	if len(months) > 0 {
		monthText = strings.Join(months, ", ")
	}
	if len(descs) > 0 {
		descText = strings.Join(descs, "; ")
	}
	return fmt.Sprintf("%s: %s %s alerted in %s for %s.", c.CaseNumber,
		firstNonEmpty(c.AccountInfo.AccountType, "account"), c.AccountInfo.AccountNumber, monthText, descText)
}

func renderPriorSARs(f *facts) string {
	if len(f.rec.PriorCases) == 0 {
		return noPriorCases
	}
	parts := make([]string, 0, len(f.rec.PriorCases))
	for _, pc := range f.rec.PriorCases {
		s := "Case " + pc.CaseNumber
		if d := coerce.ToCanonicalDate(pc.FilingDate); d != "" {
			s += " filed on " + d
		}
		if pc.SARFormNumber != "" {
			s += " (SAR Form " + pc.SARFormNumber + ")"
		}
		if sum := strings.TrimSuffix(strings.TrimSpace(pc.Summary), "."); sum != "" {
			s += ": " + sum
		}
		parts = append(parts, s)
	}
	return "Prior SARs: " + strings.Join(parts, "; ") + "."
}

func renderScopeOfReview(f *facts) string {
	start := coerce.ToCanonicalDate(f.rec.ReviewPeriod.Start)
	end := coerce.ToCanonicalDate(f.rec.ReviewPeriod.End)
	if start == "" || end == "" {
		return noReviewPeriod
	}
	return start + " - " + end
}

func renderInvestigationSummary(f *facts) string {
	var parts []string
	for _, s := range f.rec.AccountSummaries {
		if txt := breakdownText(s.CreditBreakdown); txt != "" {
			parts = append(parts, fmt.Sprintf("Account %s consisted of the following top credit activity: %s.", s.AccountNumber, txt))
		}
		if txt := breakdownText(s.DebitBreakdown); txt != "" {
			parts = append(parts, fmt.Sprintf("Account %s consisted of the following top debit activity: %s.", s.AccountNumber, txt))
		}
	}
	if types := unusualTypes(f.rec.UnusualActivity.Transactions); len(types) > 0 {
		p := f.unusualPeriod()
		parts = append(parts, fmt.Sprintf("The alerting or significant identified transactions consisted of %s conducted from %s to %s totaling %s.",
			joinList(types), p.Start, p.End, coerce.FormatCurrency(f.unusualTotal())))
	}
	if len(parts) == 0 {
		return investigatorSummary
	}
	return strings.Join(parts, " ")
}

// unusualTypes lists the distinct transaction types in first-seen order.
func unusualTypes(txns []model.SampleTransaction) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range txns {
		if t.Type == "" || seen[t.Type] {
			continue
		}
		seen[t.Type] = true
		out = append(out, t.Type)
	}
	return out
}

func renderRecommendationConclusion(f *facts) string {
	p := f.unusualPeriod()
	return fmt.Sprintf("In conclusion a SAR is recommended to report unusual %s activity involving USB accounts %s and subjects %s. The unusual activity totaled %s %s between %s and %s.",
		f.activity.Name, f.accountNumber(), f.subjects(false), coerce.FormatCurrency(f.unusualTotal()),
		f.activity.DerivedFrom, p.Start, p.End)
}

func renderRetainClose(f *facts) string {
	if f.rec.AccountInfo.IsClosed() {
		return fmt.Sprintf("Closure: Requesting closure for USB customer(s) %s due to suspicious activity.\n\nThe risk factors are as follows: [Investigator to list risk factors]\n\n[Investigator to provide closure summary]", f.subjects(false))
	}
	return "Retain: No further action is necessary at this time. The customer relationship(s) can remain open."
}

func renderCTA(*facts) string { return ctaQuestionnaire }
