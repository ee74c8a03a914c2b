// Package pipeline runs one case end to end: load, normalize, aggregate,
// validate, reconcile, assemble the narrative, and persist the session.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/aggregate"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/casefile"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/narrative"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/normalize"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/reconcile"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/store"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/validate"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/workbook"
)

// ErrNoCase is returned when an Input names no case source.
var ErrNoCase = eris.New("pipeline: no case document or case number")

// Input names the case source and an optional spreadsheet. Exactly one of
// CasePath, Document and CaseNumber is used, in that order. Summary, when
// set, is an already extracted spreadsheet and wins over SpreadsheetPath.
type Input struct {
	CasePath        string
	Document        *fetcher.Document
	CaseNumber      string
	SpreadsheetPath string
	Summary         *model.TransactionSummaryRecord
}

// Phase is the timing of one pipeline step.
type Phase struct {
	Name     string `json:"name"`
	Duration int64  `json:"duration_ms"`
}

// Result is the outcome of Run. Session is nil when no store is configured.
type Result struct {
	Snapshot model.Snapshot `json:"snapshot"`
	Session  *model.Session `json:"session,omitempty"`
	Phases   []Phase        `json:"phases"`
}

// Options wires a Pipeline. Cases, Assembler and Store are optional; without
// an Assembler no narrative is produced, without a Store nothing is saved.
type Options struct {
	Cases     *casefile.Repository
	Defaults  model.Defaults
	Assembler *narrative.Assembler
	Store     store.Store
}

// Pipeline is safe for concurrent use when its collaborators are.
type Pipeline struct {
	cases      *casefile.Repository
	validator  *validate.Validator
	reconciler *reconcile.Reconciler
	assembler  *narrative.Assembler
	store      store.Store
}

// New returns a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		cases:      opts.Cases,
		validator:  validate.New(opts.Defaults),
		reconciler: reconcile.New(opts.Defaults),
		assembler:  opts.Assembler,
		store:      opts.Store,
	}
}

// Run processes one case. Only I/O failures (unreadable document or
// spreadsheet, unknown case number, store errors) are returned; data-shape
// problems surface as validation warnings in the snapshot.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	res := &Result{}
	track := func(name string, start time.Time) {
		ms := time.Since(start).Milliseconds()
		res.Phases = append(res.Phases, Phase{Name: name, Duration: ms})
		zap.L().Debug("pipeline: phase complete", zap.String("phase", name), zap.Int64("duration_ms", ms))
	}

	start := time.Now()
	rec, summary, haveSheet, err := p.load(ctx, in)
	if err != nil {
		return nil, err
	}
	track("load", start)

	start = time.Now()
	aggregate.Aggregate(&rec)
	if !haveSheet {
		summary = aggregate.SummaryRecord(&rec)
	}
	track("aggregate", start)

	start = time.Now()
	validation := p.validator.Validate(&rec, &summary)
	combined := p.reconciler.Reconcile(rec, summary)
	track("reconcile", start)

	snap := model.Snapshot{
		Case:       rec,
		Summary:    summary,
		Combined:   combined,
		Validation: validation,
	}

	if p.assembler != nil {
		start = time.Now()
		out := p.assembler.Narrative(ctx, &snap.Combined)
		snap.Narrative, snap.Sections = out.Narrative, out.Sections
		snap.Recommendation = p.assembler.Recommendation(ctx, &snap.Combined)
		track("narrative", start)
	}
	res.Snapshot = snap

	if p.store != nil {
		start = time.Now()
		sess, err := p.store.CreateSession(ctx, snap)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: save session")
		}
		res.Session = sess
		track("store", start)
	}

	zap.L().Info("pipeline: case processed",
		zap.String("case_number", combined.CaseNumber),
		zap.Bool("valid", validation.Valid),
		zap.Int("warnings", len(validation.Warnings)),
	)
	return res, nil
}

// load reads the case and the spreadsheet concurrently.
func (p *Pipeline) load(ctx context.Context, in Input) (model.CaseRecord, model.TransactionSummaryRecord, bool, error) {
	var (
		rec     model.CaseRecord
		summary model.TransactionSummaryRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rec, err = p.loadCase(gctx, in)
		return err
	})
	if in.Summary != nil {
		summary = *in.Summary
	} else if in.SpreadsheetPath != "" {
		g.Go(func() error {
			var err error
			summary, err = workbook.Extract(in.SpreadsheetPath)
			return eris.Wrap(err, "pipeline: read spreadsheet")
		})
	}
	if err := g.Wait(); err != nil {
		return model.CaseRecord{}, model.TransactionSummaryRecord{}, false, err
	}
	return rec, summary, in.Summary != nil || in.SpreadsheetPath != "", nil
}

func (p *Pipeline) loadCase(ctx context.Context, in Input) (model.CaseRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.CaseRecord{}, err
	}
	switch {
	case in.CasePath != "":
		doc, err := fetcher.LoadDocument(in.CasePath)
		if err != nil {
			return model.CaseRecord{}, eris.Wrap(err, "pipeline: read case document")
		}
		return normalize.Normalize(doc), nil
	case in.Document != nil:
		return normalize.Normalize(in.Document), nil
	case in.CaseNumber != "":
		if p.cases == nil {
			return model.CaseRecord{}, eris.Wrapf(casefile.ErrCaseNotFound, "pipeline: no case repository for %s", in.CaseNumber)
		}
		rec, err := p.cases.Case(in.CaseNumber)
		if err != nil {
			return model.CaseRecord{}, eris.Wrap(err, "pipeline: load case")
		}
		return rec, nil
	}
	return model.CaseRecord{}, ErrNoCase
}
