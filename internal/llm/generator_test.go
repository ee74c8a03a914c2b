package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/resilience"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/pkg/anthropic"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*anthropic.MessageResponse)
	return resp, args.Error(1)
}

func textResponse(s string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: "text", Text: s}},
		StopReason: "end_turn",
		Usage:      anthropic.TokenUsage{InputTokens: 50, OutputTokens: 10},
	}
}

func testConfig() Config {
	return Config{
		Model:   "claude-haiku-4-5-20251001",
		Timeout: time.Second,
		Retry:   resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond},
		Breaker: resilience.BreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour},
	}
}

func TestGenerate(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 800 &&
			req.System == SystemPrompt &&
			req.Temperature != nil && *req.Temperature == 0.3 &&
			len(req.Messages) == 1 && req.Messages[0].Role == "user" && req.Messages[0].Content == "Write it."
	})).Return(textResponse("  The account was opened.\n"), nil).Once()

	got, err := New(client, testConfig()).Generate(context.Background(), "Write it.", 800, 0.3)
	require.NoError(t, err)
	assert.Equal(t, "The account was opened.", got)
	client.AssertExpectations(t)
}

func TestGenerate_RetriesOverloaded(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, &anthropic.APIError{StatusCode: 529, Err: errors.New("overloaded")}).Once()
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("ok"), nil).Once()

	got, err := New(client, testConfig()).Generate(context.Background(), "p", 100, 0.2)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	client.AssertNumberOfCalls(t, "CreateMessage", 2)
}

func TestGenerate_PermanentErrorNotRetried(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, &anthropic.APIError{StatusCode: 400, Err: errors.New("invalid request")})

	_, err := New(client, testConfig()).Generate(context.Background(), "p", 100, 0.2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm: generate")
	client.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestGenerate_CircuitOpens(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, &anthropic.APIError{StatusCode: 401, Err: errors.New("unauthorized")})

	cfg := testConfig()
	cfg.Retry.MaxAttempts = 1
	g := New(client, cfg)
	for i := 0; i < 2; i++ {
		_, err := g.Generate(context.Background(), "p", 100, 0.2)
		require.Error(t, err)
	}
	assert.Equal(t, resilience.Open, g.Breaker().State())

	_, err := g.Generate(context.Background(), "p", 100, 0.2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
	client.AssertNumberOfCalls(t, "CreateMessage", 2)
}

func TestGenerate_AttemptTimeout(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	cfg := testConfig()
	cfg.Timeout = 5 * time.Millisecond
	cfg.Breaker.FailureThreshold = 10
	_, err := New(client, cfg).Generate(context.Background(), "p", 100, 0.2)
	require.Error(t, err)
	client.AssertNumberOfCalls(t, "CreateMessage", 3)
}

func TestGenerate_CancelledWhileRateLimited(t *testing.T) {
	client := &mockClient{}
	cfg := testConfig()
	cfg.RatePerSec = 0.001
	g := New(client, cfg)
	// the first token is free; the second waits far beyond the deadline
	g.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx, "p", 100, 0.2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm: rate limit")
	client.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestClassify(t *testing.T) {
	assert.True(t, resilience.IsTransient(classify(&anthropic.APIError{StatusCode: 429, Err: errors.New("slow down")})))
	assert.True(t, resilience.IsTransient(classify(context.DeadlineExceeded)))
	assert.False(t, resilience.IsTransient(classify(&anthropic.APIError{StatusCode: 403, Err: errors.New("forbidden")})))
}
