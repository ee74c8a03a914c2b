package casefile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const casesJSON = `[
  [
    {"section": "Case Information", "Case Number": "CC1", "Relevant Accounts": [111, "222"]},
    {"section": "Alerting Details", "alerts": [{"Alert ID": "A1"}, {"Alert ID": "A2"}]},
    {"section": "Customer Information", "US Bank Customer Information": [{"Primary Party": "JANE DOE"}, {"Party Key": "no name"}]},
    {"section": "Account Information", "Accounts": [{"Account Key": "222"}, {"Account Key": "333"}]},
    {"section": "Activity Summary", "Activity Summary": [{"Account": 444}]}
  ],
  [
    {"section": "Alerting Details", "alerts": []}
  ],
  [
    {"section": "Case Information", "Case Number": "CC2"},
    {"section": "Customer Information", "customerInformation": {"US Bank Customers": [{"Name": "ACME LLC"}]}},
    {"section": "Activity Summary", "Activity Summary": [{"Account": "555"}]}
  ]
]`

func readCases(t *testing.T) *Repository {
	t.Helper()
	r, err := Read(context.Background(), strings.NewReader(casesJSON))
	require.NoError(t, err)
	return r
}

// --- loading ---

func TestRead_SkipsCasesWithoutNumber(t *testing.T) {
	r := readCases(t)
	assert.Equal(t, 2, r.Len())
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	require.NoError(t, os.WriteFile(path, []byte(casesJSON), 0o644))

	r, err := Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, r.Source())
	assert.Equal(t, 2, r.Len())
}

func TestOpen_MissingFileUsesFixture(t *testing.T) {
	r, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "built-in", r.Source())
	require.Len(t, r.Cases(), 1)
	assert.Equal(t, Summary{
		CaseNumber:    "CC0015823420",
		Subjects:      []string{"GLENN A BROWDER"},
		AccountNumber: "204784659052",
		AlertCount:    1,
	}, r.Cases()[0])
}

func TestOpen_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "a list"}`), 0o644))

	_, err := Open(context.Background(), path)
	require.Error(t, err)
}

func TestFixture_Normalizes(t *testing.T) {
	r, err := Fixture()
	require.NoError(t, err)

	rec, err := r.Case("CC0015823420")
	require.NoError(t, err)
	assert.Equal(t, "CC0015823420", rec.CaseNumber)
	require.Len(t, rec.AlertInfo, 1)
	assert.Equal(t, "AMLR5881633", rec.AlertInfo[0].AlertID)
	require.NotEmpty(t, rec.Subjects)
	assert.Equal(t, "GLENN A BROWDER", rec.Subjects[0].Name)
	require.NotEmpty(t, rec.Accounts)
	assert.Equal(t, "ICS9999988", rec.Accounts[0].AccountNumber)
	assert.NotEmpty(t, rec.Sections)
	assert.Equal(t, "01/01/2023", rec.ReviewPeriod.Start)
}

// --- lookups ---

func TestCases(t *testing.T) {
	got := readCases(t).Cases()
	assert.Equal(t, []Summary{
		{CaseNumber: "CC1", Subjects: []string{"JANE DOE"}, AccountNumber: "111", AlertCount: 2},
		{CaseNumber: "CC2", Subjects: []string{"ACME LLC"}, AccountNumber: "555"},
	}, got)
}

func TestCase_NotFound(t *testing.T) {
	r := readCases(t)

	_, err := r.Case("CC404")
	require.ErrorIs(t, err, ErrCaseNotFound)
	_, err = r.Section("CC404", "Case Information")
	require.ErrorIs(t, err, ErrCaseNotFound)
	_, err = r.AccountNumbers("CC404")
	require.ErrorIs(t, err, ErrCaseNotFound)
}

func TestSection(t *testing.T) {
	r := readCases(t)

	s, err := r.Section("CC1", "Alerting Details")
	require.NoError(t, err)
	assert.Len(t, s["alerts"], 2)

	s, err = r.Section("CC1", "Scope of Review")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestAccountNumbers(t *testing.T) {
	r := readCases(t)

	got, err := r.AccountNumbers("CC1")
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "333", "444"}, got)

	got, err = r.AccountNumbers("CC2")
	require.NoError(t, err)
	assert.Equal(t, []string{"555"}, got)
}

func TestReplace(t *testing.T) {
	r := readCases(t)
	fixture, err := Fixture()
	require.NoError(t, err)

	r.Replace(fixture)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "built-in", r.Source())
}
