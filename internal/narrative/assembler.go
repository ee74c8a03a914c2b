// Package narrative assembles SAR narrative and recommendation sections from
// a combined fact record. Each section is written by an optional text
// generator and falls back to a fixed template when the generator is absent,
// fails or returns nothing.
package narrative

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// ErrUnknownSection is returned for a section id no section list holds.
var ErrUnknownSection = eris.New("narrative: unknown section")

// Generator turns a prompt into text. An empty result counts as no content.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Options tune generation.
type Options struct {
	MaxTokens   int
	Temperature float64
	// ProtectPII swaps sensitive values for placeholders before a prompt
	// reaches the generator.
	ProtectPII bool
	// Concurrency bounds parallel generator calls.
	Concurrency int
}

// DefaultOptions returns the standard generation settings.
func DefaultOptions() Options {
	return Options{MaxTokens: 1000, Temperature: 0.2, ProtectPII: true, Concurrency: 4}
}

// Assembler builds narratives and recommendations.
type Assembler struct {
	gen  Generator
	opts Options
}

// New returns an Assembler. A nil gen renders every section from template.
func New(gen Generator, opts Options) *Assembler {
	d := DefaultOptions()
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = d.MaxTokens
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = d.Concurrency
	}
	return &Assembler{gen: gen, opts: opts}
}

// Result is a generated narrative: the joined text plus its sections.
type Result struct {
	Narrative string                   `json:"narrative"`
	Sections  []model.NarrativeSection `json:"sections"`
}

// Narrative writes every narrative section in order. Sections that render
// empty are kept in Sections but dropped from the joined text.
func (a *Assembler) Narrative(ctx context.Context, c *model.CombinedFactRecord) Result {
	sections := a.build(ctx, newFacts(c), narrativeSections)
	return Result{Narrative: Join(sections), Sections: sections}
}

// Recommendation writes every recommendation section in export order.
func (a *Assembler) Recommendation(ctx context.Context, c *model.CombinedFactRecord) []model.NarrativeSection {
	return a.build(ctx, newFacts(c), recommendationSections)
}

// Section writes one narrative section.
func (a *Assembler) Section(ctx context.Context, c *model.CombinedFactRecord, id string) (model.NarrativeSection, error) {
	s, ok := lookup(narrativeSections, id)
	if !ok {
		return model.NarrativeSection{}, eris.Wrapf(ErrUnknownSection, "narrative: %q", id)
	}
	return a.write(ctx, newFacts(c), s), nil
}

// RecommendationSection writes one recommendation section.
func (a *Assembler) RecommendationSection(ctx context.Context, c *model.CombinedFactRecord, id string) (model.NarrativeSection, error) {
	s, ok := lookup(recommendationSections, id)
	if !ok {
		return model.NarrativeSection{}, eris.Wrapf(ErrUnknownSection, "narrative: recommendation %q", id)
	}
	return a.write(ctx, newFacts(c), s), nil
}

func (a *Assembler) build(ctx context.Context, f *facts, list []section) []model.NarrativeSection {
	out := make([]model.NarrativeSection, len(list))
	if a.gen == nil {
		for i, s := range list {
			out[i] = a.write(ctx, f, s)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for i, s := range list {
		g.Go(func() error {
			out[i] = a.write(ctx, f, s)
			return nil
		})
	}
	// Workers never fail: a section whose generation fails falls back to
	// its template, so Wait only joins.
	g.Wait() //nolint:errcheck
	return out
}

func (a *Assembler) write(ctx context.Context, f *facts, s section) model.NarrativeSection {
	ns := model.NarrativeSection{ID: s.id, Title: s.title}
	if text := a.generate(ctx, f, s); text != "" {
		ns.Content = text
		return ns
	}
	ns.Content = s.render(f)
	return ns
}

// generate returns the generator's text for s, or "" when the template
// should be used instead.
func (a *Assembler) generate(ctx context.Context, f *facts, s section) string {
	if a.gen == nil || s.prompt == nil {
		return ""
	}
	prompt := s.prompt(f)
	if prompt == "" {
		return ""
	}

	protected := Protected{Text: prompt}
	if a.opts.ProtectPII {
		protected = Protect(prompt)
	}
	text, err := a.gen.Generate(ctx, protected.Text, a.opts.MaxTokens, a.opts.Temperature)
	if err != nil {
		zap.L().Warn("narrative: generation failed, using template",
			zap.String("case", f.rec.CaseNumber),
			zap.String("section", s.id),
			zap.Error(err))
		return ""
	}
	text = strings.TrimSpace(protected.Restore(text))
	if text == "" {
		zap.L().Debug("narrative: empty generation, using template", zap.String("section", s.id))
	}
	return text
}

// Join concatenates non-empty section contents with blank lines.
func Join(sections []model.NarrativeSection) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if c := strings.TrimSpace(s.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Split breaks a joined narrative back into titled sections, assigning
// paragraphs to narrative sections in order. Paragraphs beyond the last
// section are appended to it.
func Split(narrative string) []model.NarrativeSection {
	var paras []string
	for _, p := range strings.Split(narrative, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	out := make([]model.NarrativeSection, 0, len(narrativeSections))
	for i, s := range narrativeSections {
		if i >= len(paras) {
			break
		}
		content := paras[i]
		if i == len(narrativeSections)-1 && len(paras) > len(narrativeSections) {
			content = strings.Join(paras[i:], "\n\n")
		}
		out = append(out, model.NarrativeSection{ID: s.id, Title: s.title, Content: content})
	}
	return out
}

// Replace returns a copy of list with the content of section id set,
// appending the section when list lacks it.
func Replace(list []model.NarrativeSection, id, content string) []model.NarrativeSection {
	out := make([]model.NarrativeSection, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == id {
			out[i].Content = content
			return out
		}
	}
	title := id
	if s, ok := lookup(narrativeSections, id); ok {
		title = s.title
	} else if s, ok := lookup(recommendationSections, id); ok {
		title = s.title
	}
	return append(out, model.NarrativeSection{ID: id, Title: title, Content: content})
}
