package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageServer(t *testing.T, check func(body map[string]any)) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(raw, &body))
		if check != nil {
			check(body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_test_001",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Personal checking account "},
				{"type": "text", "text": "[PII_ACCOUNT_NUMBER_1] remains open."},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 120, "output_tokens": 14},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSDKClient_CreateMessage(t *testing.T) {
	ts := messageServer(t, nil)

	client := NewClient(Config{APIKey: "test-key", BaseURL: ts.URL})
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 1000,
		Messages:  []Message{{Role: "user", Content: "Write the account paragraph."}},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_test_001", resp.ID)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, "Personal checking account [PII_ACCOUNT_NUMBER_1] remains open.", resp.Text())
	assert.Equal(t, TokenUsage{InputTokens: 120, OutputTokens: 14}, resp.Usage)
}

func TestSDKClient_CreateMessage_SendsSystemAndTemperature(t *testing.T) {
	ts := messageServer(t, func(body map[string]any) {
		assert.Equal(t, 0.2, body["temperature"])
		assert.EqualValues(t, 600, body["max_tokens"])
		system, _ := body["system"].([]any)
		if assert.Len(t, system, 1) {
			assert.Equal(t, "Keep placeholders.", system[0].(map[string]any)["text"])
		}
	})

	temp := 0.2
	client := NewClient(Config{APIKey: "test-key", BaseURL: ts.URL})
	_, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:       "claude-haiku-4-5-20251001",
		MaxTokens:   600,
		System:      "Keep placeholders.",
		Messages:    []Message{{Role: "user", Content: "Hi"}},
		Temperature: &temp,
	})
	require.NoError(t, err)
}

func TestSDKClient_CreateMessage_Error(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"type":  "error",
			"error": map[string]any{"type": "invalid_request_error", "message": "bad request"},
		})
	}))
	defer ts.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: ts.URL})
	_, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 10,
		Messages:  []Message{{Role: "user", Content: "Hello"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
