package narrative

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

var exportedAt = time.Date(2024, 3, 15, 10, 11, 12, 0, time.UTC)

func TestExport(t *testing.T) {
	snap := model.Snapshot{
		Combined: model.CombinedFactRecord{CaseNumber: "CC1"},
		Sections: []model.NarrativeSection{
			{ID: Introduction, Content: "A"},
			{ID: TransactionSamples, Content: ""},
			{ID: Conclusion, Content: "B"},
		},
		Narrative: "stale",
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, snap, exportedAt))
	assert.Equal(t, "SAR Narrative - Case CC1\n"+
		"Generated on: 2024-03-15 10:11:12\n\n"+
		"====================== SECTION 7: SAR NARRATIVE ======================\n\n"+
		"A\n\nB"+
		"\n\n===================================================================\n"+
		"Generated by SAR Narrative Generator", buf.String())
}

func TestExport_UsesNarrativeWithoutSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, model.Snapshot{Narrative: "only text"}, exportedAt))
	assert.Contains(t, buf.String(), "SAR Narrative - Case unknown\n")
	assert.Contains(t, buf.String(), "======================\n\nonly text\n\n")
}

func TestExportRecommendation(t *testing.T) {
	snap := model.Snapshot{
		Case: model.CaseRecord{CaseNumber: "CC2"},
		Recommendation: []model.NarrativeSection{
			{ID: RetainClose, Content: "R"},
			{ID: AlertingActivity, Content: "X"},
			{ID: PriorSARs, Content: " "},
			{ID: CTA, Content: "Q"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportRecommendation(&buf, snap, exportedAt))
	assert.Equal(t, "SAR Recommendation - Case CC2\n"+
		"Generated on: 2024-03-15 10:11:12\n\n"+
		"7. Recommendations\n\nB. SAR/No SAR Recommendation\n\n"+
		"Alerting Activity / Reason for Review\nX\n\n"+
		"\nC. Escalations/Referrals\n\nCTA\nQ\n\n"+
		"\nD. Retain or Close Customer Relationship(s)\nR\n\n"+
		"\n\n===================================================================\n"+
		"Generated by SAR Narrative Generator", buf.String())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "SAR_Narrative_CC1_20240315_101112.txt", FileName("Narrative", "CC1", exportedAt))
	assert.Equal(t, "SAR_Recommendation_unknown_20240315_101112.txt", FileName("Recommendation", "", exportedAt))
}
