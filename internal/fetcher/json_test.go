package fetcher

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSection struct {
	Section    string `json:"section"`
	CaseNumber string `json:"Case Number"`
}

func TestDecodeJSONArray(t *testing.T) {
	input := `[[{"section":"Case Information","Case Number":"CC1"}],[{"section":"Case Information","Case Number":"CC2"}]]`

	ch, errCh := DecodeJSONArray[[]testSection](context.Background(), strings.NewReader(input))

	var cases [][]testSection
	for c := range ch {
		cases = append(cases, c)
	}
	for err := range errCh {
		require.NoError(t, err)
	}

	require.Len(t, cases, 2)
	assert.Equal(t, "CC2", cases[1][0].CaseNumber)
}

func TestDecodeJSONArray_KeepsLongNumbers(t *testing.T) {
	got, err := CollectJSONArray[map[string]any](context.Background(), strings.NewReader(`[{"Account":204784659052123456}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, json.Number("204784659052123456"), got[0]["Account"])
}

func TestDecodeJSONArray_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CollectJSONArray[testSection](ctx, strings.NewReader(`[{"section":"a"},{"section":"b"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}

func TestDecodeJSONArray_InvalidFormat(t *testing.T) {
	_, err := CollectJSONArray[testSection](context.Background(), strings.NewReader(`{"section":"not an array"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected '['")
}

func TestDecodeJSONArray_BadElement(t *testing.T) {
	got, err := CollectJSONArray[testSection](context.Background(), strings.NewReader(`[{"section":"a"},{"section":5}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 1")
	assert.Len(t, got, 1)
}

func TestDecodeJSONArray_EmptyInput(t *testing.T) {
	got, err := CollectJSONArray[testSection](context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeJSONObject(t *testing.T) {
	rec, err := DecodeJSONObject[testSection](strings.NewReader(`{"section":"Case Information","Case Number":"CC42"}`))
	require.NoError(t, err)
	assert.Equal(t, "Case Information", rec.Section)
	assert.Equal(t, "CC42", rec.CaseNumber)
}

func TestDecodeJSONObject_Invalid(t *testing.T) {
	_, err := DecodeJSONObject[testSection](strings.NewReader(`not json`))
	require.Error(t, err)
}
