package narrative

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

const (
	generatedLayout = "2006-01-02 15:04:05"
	fileStampLayout = "20060102_150405"
	footer          = "\n\n===================================================================\nGenerated by SAR Narrative Generator"
	narrativeBanner = "====================== SECTION 7: SAR NARRATIVE ======================\n\n"
)

// recommendationHeadings precede each recommendation section in an export.
var recommendationHeadings = map[string]string{
	AlertingActivity:         "Alerting Activity / Reason for Review\n",
	PriorSARs:                "Prior SARs\n",
	ScopeOfReview:            "Scope of Review\n",
	InvestigationSummary:     "Summary of the Investigation (Red Flags, Supporting Evidence, etc.)\n",
	RecommendationConclusion: "Conclusion\n",
	CTA:                      "\nC. Escalations/Referrals\n\nCTA\n",
	RetainClose:              "\nD. Retain or Close Customer Relationship(s)\n",
}

// FileName returns the download name of an export, e.g.
// "SAR_Narrative_CC1_20240102_150405.txt".
func FileName(kind, caseNumber string, at time.Time) string {
	if caseNumber == "" {
		caseNumber = "unknown"
	}
	return fmt.Sprintf("SAR_%s_%s_%s.txt", kind, caseNumber, at.Format(fileStampLayout))
}

// Export writes the plain-text narrative export of a session snapshot. The
// narrative is rebuilt from the sections when they are present.
func Export(w io.Writer, snap model.Snapshot, at time.Time) error {
	text := snap.Narrative
	if len(snap.Sections) > 0 {
		text = Join(snap.Sections)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "SAR Narrative - Case %s\n", caseNumberOf(snap))
	fmt.Fprintf(bw, "Generated on: %s\n\n", at.Format(generatedLayout))
	bw.WriteString(narrativeBanner)
	bw.WriteString(text)
	bw.WriteString(footer)
	if err := bw.Flush(); err != nil {
		return eris.Wrap(err, "narrative: write export")
	}
	return nil
}

// ExportRecommendation writes the plain-text recommendation export. Sections
// are written in export order; empty ones are skipped.
func ExportRecommendation(w io.Writer, snap model.Snapshot, at time.Time) error {
	var b strings.Builder
	b.WriteString("7. Recommendations\n\nB. SAR/No SAR Recommendation\n\n")
	for _, s := range recommendationSections {
		content := contentOf(snap.Recommendation, s.id)
		if content == "" {
			continue
		}
		b.WriteString(recommendationHeadings[s.id])
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "SAR Recommendation - Case %s\n", caseNumberOf(snap))
	fmt.Fprintf(bw, "Generated on: %s\n\n", at.Format(generatedLayout))
	bw.WriteString(b.String())
	bw.WriteString(footer)
	if err := bw.Flush(); err != nil {
		return eris.Wrap(err, "narrative: write recommendation export")
	}
	return nil
}

func caseNumberOf(snap model.Snapshot) string {
	return firstNonEmpty(snap.Combined.CaseNumber, snap.Case.CaseNumber, "unknown")
}

func contentOf(list []model.NarrativeSection, id string) string {
	for _, s := range list {
		if s.ID == id {
			return strings.TrimSpace(s.Content)
		}
	}
	return ""
}
