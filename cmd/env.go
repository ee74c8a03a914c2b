package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/casefile"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/config"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/llm"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/narrative"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/pipeline"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/resilience"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/store"
	anthropicpkg "github.com/spartan-coder90/sar-narrative-generator-sub000/pkg/anthropic"
)

// pipelineEnv holds what the process and serve commands share.
type pipelineEnv struct {
	Store     store.Store // nil unless requested
	Cases     *casefile.Repository
	Assembler *narrative.Assembler
	Generator *llm.Generator // nil unless narrative.use_llm is set
	Pipeline  *pipeline.Pipeline
}

// Breaker returns the generator's circuit breaker, or nil.
func (pe *pipelineEnv) Breaker() *resilience.Breaker {
	if pe.Generator == nil {
		return nil
	}
	return pe.Generator.Breaker()
}

// Close releases the store.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline loads the case repository, builds the narrative assembler and,
// when withStore is set, opens and migrates the session store. Callers should
// defer env.Close().
func initPipeline(ctx context.Context, c *config.Config, withStore bool) (*pipelineEnv, error) {
	cases, err := casefile.Open(ctx, c.Cases.Path)
	if err != nil {
		return nil, err
	}

	asm, gen := initAssembler(c)
	env := &pipelineEnv{
		Cases:     cases,
		Assembler: asm,
		Generator: gen,
	}
	if withStore {
		st, err := initStore(ctx, c)
		if err != nil {
			return nil, err
		}
		env.Store = st
	}

	env.Pipeline = pipeline.New(pipeline.Options{
		Cases:     env.Cases,
		Defaults:  c.Defaults,
		Assembler: env.Assembler,
		Store:     env.Store,
	})
	zap.L().Info("pipeline ready",
		zap.Int("cases", cases.Len()),
		zap.String("cases_source", cases.Source()),
		zap.Bool("llm", c.Narrative.UseLLM),
		zap.Bool("store", withStore),
	)
	return env, nil
}

// initStore opens the configured store and applies its migrations.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	st, err := store.Open(ctx, store.Config{
		Driver:      c.Store.Driver,
		DatabaseURL: c.Store.DatabaseURL,
		PoolConfig:  store.PoolConfig{MaxConns: c.Store.MaxConns, MinConns: c.Store.MinConns},
	})
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initAssembler returns an Assembler backed by the Anthropic generator when
// narrative.use_llm is set, or a template-only one and a nil generator
// otherwise.
func initAssembler(c *config.Config) (*narrative.Assembler, *llm.Generator) {
	opts := narrative.Options{
		MaxTokens:   c.Anthropic.MaxTokens,
		Temperature: c.Anthropic.Temperature,
		ProtectPII:  c.Narrative.ProtectPII,
		Concurrency: c.Narrative.Concurrency,
	}
	if !c.Narrative.UseLLM {
		return narrative.New(nil, opts), nil
	}

	client := anthropicpkg.NewClient(anthropicpkg.Config{
		APIKey:  c.Anthropic.Key,
		BaseURL: c.Anthropic.BaseURL,
	})
	// retry_attempts counts retries, not the first call.
	gen := llm.New(client, llm.Config{
		Model:      c.Anthropic.Model,
		RatePerSec: c.Anthropic.RateLimit,
		Timeout:    c.Anthropic.Timeout(),
		Retry:      resilience.FromRetryConfig(c.Anthropic.RetryAttempts+1, 0, 0),
		Breaker:    resilience.FromCircuitConfig(c.Anthropic.CircuitThreshold, 0),
	})
	return narrative.New(gen, opts), gen
}
