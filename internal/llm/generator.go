// Package llm adapts the Anthropic client to narrative generation: one
// rate-limited, retried, circuit-broken call per section.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/resilience"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/pkg/anthropic"
)

// SystemPrompt is sent with every request.
const SystemPrompt = "You are an expert financial crimes investigator writing Suspicious Activity Report narratives. " +
	"Write in a clear, factual, professional tone. " +
	"Text may contain bracketed placeholder codes such as [PII_NAME_1] or [PRESERVE_MONEY_AMOUNT_2]. " +
	"Copy every placeholder code exactly as written and never expand, alter, or invent one."

// Config controls a Generator.
type Config struct {
	Model string
	// RatePerSec limits requests per second. Zero disables the limit.
	RatePerSec float64
	// Timeout bounds each attempt.
	Timeout time.Duration
	Retry   resilience.RetryConfig
	Breaker resilience.BreakerConfig
}

// Generator implements narrative.Generator on top of an anthropic.Client.
type Generator struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
}

// New returns a Generator for client.
func New(client anthropic.Client, cfg Config) *Generator {
	g := &Generator{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		retry:   cfg.Retry,
		breaker: resilience.NewBreaker("anthropic", cfg.Breaker),
	}
	if cfg.RatePerSec > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), max(int(cfg.RatePerSec), 1))
	}
	if g.retry.OnRetry == nil {
		g.retry.OnRetry = resilience.RetryLogger("llm: generate")
	}
	return g
}

// Breaker exposes the circuit state for health reporting.
func (g *Generator) Breaker() *resilience.Breaker { return g.breaker }

// Generate sends prompt as a single user message and returns the trimmed
// response text.
func (g *Generator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "llm: rate limit")
		}
	}

	req := anthropic.MessageRequest{
		Model:       g.model,
		MaxTokens:   int64(maxTokens),
		System:      SystemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temperature,
	}

	resp, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return g.call(ctx, req)
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: generate")
	}

	resp.Usage.LogCost(g.model, "narrative")
	if resp.StopReason == "max_tokens" {
		zap.L().Warn("llm: response truncated", zap.Int("max_tokens", maxTokens))
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (g *Generator) call(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := g.client.CreateMessage(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	return resp, nil
}

// classify marks retryable API failures as transient.
func classify(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
		return resilience.NewTransientError(err, apiErr.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.NewTransientError(err, 0)
	}
	return err
}
