package narrative

// Narrative section ids, in narrative order.
const (
	Introduction       = "introduction"
	PriorCases         = "prior_cases"
	AccountInfo        = "account_info"
	SubjectInfo        = "subject_info"
	ActivitySummary    = "activity_summary"
	TransactionSamples = "transaction_samples"
	Conclusion         = "conclusion"
)

// Recommendation section ids, in export order. RecommendationConclusion
// shares its id with the narrative Conclusion; the two live in separate
// section lists.
const (
	AlertingActivity         = "alerting_activity"
	PriorSARs                = "prior_sars"
	ScopeOfReview            = "scope_of_review"
	InvestigationSummary     = "investigation_summary"
	RecommendationConclusion = "conclusion"
	CTA                      = "cta"
	RetainClose              = "retain_close"
)

// section pairs a prompt with its deterministic rendering. A nil prompt, or
// one that returns "", means the section is always rendered from template.
type section struct {
	id     string
	title  string
	prompt func(*facts) string
	render func(*facts) string
}

var narrativeSections = []section{
	{Introduction, "Introduction", promptIntroduction, renderIntroduction},
	{PriorCases, "Prior Cases", promptPriorCases, renderPriorCases},
	{AccountInfo, "Account Information", promptAccountInfo, renderAccountInfo},
	{SubjectInfo, "Subject Information", promptSubjectInfo, renderSubjectInfo},
	{ActivitySummary, "Activity Summary", promptActivitySummary, renderActivitySummary},
	{TransactionSamples, "Sample Transactions", promptTransactionSamples, renderTransactionSamples},
	{Conclusion, "Conclusion", promptConclusion, renderConclusion},
}

var recommendationSections = []section{
	{AlertingActivity, "Alerting Activity / Reason for Review", promptAlertingActivity, renderAlertingActivity},
	{PriorSARs, "Prior SARs", promptPriorSARs, renderPriorSARs},
	{ScopeOfReview, "Scope of Review", nil, renderScopeOfReview},
	{InvestigationSummary, "Summary of the Investigation (Red Flags, Supporting Evidence, etc.)", promptInvestigationSummary, renderInvestigationSummary},
	{RecommendationConclusion, "Conclusion", promptRecommendationConclusion, renderRecommendationConclusion},
	{CTA, "CTA", nil, renderCTA},
	{RetainClose, "Retain or Close Customer Relationship(s)", nil, renderRetainClose},
}

func lookup(list []section, id string) (section, bool) {
	for _, s := range list {
		if s.id == id {
			return s, true
		}
	}
	return section{}, false
}

// IsNarrativeSection reports whether id names a narrative section.
func IsNarrativeSection(id string) bool {
	_, ok := lookup(narrativeSections, id)
	return ok
}

// IsRecommendationSection reports whether id names a recommendation section.
func IsRecommendationSection(id string) bool {
	_, ok := lookup(recommendationSections, id)
	return ok
}

// SectionIDs returns the narrative section ids in order.
func SectionIDs() []string {
	ids := make([]string, len(narrativeSections))
	for i, s := range narrativeSections {
		ids[i] = s.id
	}
	return ids
}
