// Package casefile serves sectioned cases from a cases.json repository file,
// falling back to a built-in case when the file is absent.
package casefile

import (
	"context"
	_ "embed"
	"errors"
	"io"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/normalize"
)

// ErrCaseNotFound is returned for a case number the repository does not hold.
var ErrCaseNotFound = eris.New("casefile: case not found")

//go:embed fixture.yaml
var fixtureYAML []byte

// Summary is the listing entry of one case.
type Summary struct {
	CaseNumber    string   `json:"case_number"`
	Subjects      []string `json:"subjects"`
	AccountNumber string   `json:"account_number"`
	AlertCount    int      `json:"alert_count"`
}

// Repository holds cases keyed by case number, in file order.
type Repository struct {
	mu     sync.RWMutex
	order  []string
	cases  map[string][]model.RawSection
	source string
}

// Open loads the cases file at path. A missing file yields the built-in
// fixture; an unreadable or malformed one is an error.
func Open(ctx context.Context, path string) (*Repository, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("casefile: cases file not found, using built-in case", zap.String("path", path))
		return Fixture()
	}
	if err != nil {
		return nil, eris.Wrapf(err, "casefile: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r, err := Read(ctx, f)
	if err != nil {
		return nil, eris.Wrapf(err, "casefile: read %s", path)
	}
	r.source = path
	zap.L().Info("casefile: loaded cases", zap.String("path", path), zap.Int("cases", len(r.order)))
	return r, nil
}

// Read decodes a JSON list of cases, each a list of sections. Cases without
// a "Case Information" case number are skipped.
func Read(ctx context.Context, rd io.Reader) (*Repository, error) {
	raw, err := fetcher.CollectJSONArray[[]map[string]any](ctx, rd)
	if err != nil {
		return nil, err
	}
	return build(raw), nil
}

// Fixture returns a repository holding only the built-in case.
func Fixture() (*Repository, error) {
	var raw [][]map[string]any
	if err := yaml.Unmarshal(fixtureYAML, &raw); err != nil {
		return nil, eris.Wrap(err, "casefile: parse built-in case")
	}
	r := build(raw)
	r.source = "built-in"
	return r, nil
}

func build(raw [][]map[string]any) *Repository {
	r := &Repository{cases: make(map[string][]model.RawSection, len(raw))}
	for _, c := range raw {
		sections := make([]model.RawSection, 0, len(c))
		for _, s := range c {
			sections = append(sections, model.RawSection(s))
		}
		number := normalize.SectionCaseNumber(sections)
		if number == "" {
			zap.L().Debug("casefile: skipping case without a case number")
			continue
		}
		if _, dup := r.cases[number]; !dup {
			r.order = append(r.order, number)
		}
		r.cases[number] = sections
	}
	return r
}

// Source names where the cases were loaded from.
func (r *Repository) Source() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// Len returns the number of cases.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Replace swaps the repository contents for those of other.
func (r *Repository) Replace(other *Repository) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order, r.cases, r.source = other.order, other.cases, other.source
}

// Sections returns the raw sections of a case.
func (r *Repository) Sections(number string) ([]model.RawSection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.cases[number]
	if !ok {
		return nil, eris.Wrapf(ErrCaseNotFound, "casefile: %s", number)
	}
	return s, nil
}

// Case returns a case normalized into a CaseRecord. The raw sections are
// kept on the record.
func (r *Repository) Case(number string) (model.CaseRecord, error) {
	sections, err := r.Sections(number)
	if err != nil {
		return model.CaseRecord{}, err
	}
	doc, err := fetcher.FromValue(sections)
	if err != nil {
		return model.CaseRecord{}, eris.Wrapf(err, "casefile: encode %s", number)
	}
	return normalize.Normalize(doc), nil
}

// Section returns the named section of a case, or nil when the case has no
// such section.
func (r *Repository) Section(number, name string) (model.RawSection, error) {
	sections, err := r.Sections(number)
	if err != nil {
		return nil, err
	}
	return model.FindSection(sections, name), nil
}

// Cases lists every case in file order.
func (r *Repository) Cases() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.order))
	for _, number := range r.order {
		out = append(out, summarize(number, r.cases[number]))
	}
	return out
}

func summarize(number string, sections []model.RawSection) Summary {
	s := Summary{CaseNumber: number, Subjects: []string{}}
	if alerts, ok := model.FindSection(sections, normalize.SectionAlertingDetails)["alerts"].([]any); ok {
		s.AlertCount = len(alerts)
	}
	cust := model.FindSection(sections, normalize.SectionCustomerInformation)
	parties, key := objects(cust["US Bank Customer Information"]), "Primary Party"
	if parties == nil {
		if nested, ok := cust["customerInformation"].(map[string]any); ok {
			parties, key = objects(nested["US Bank Customers"]), "Name"
		}
	}
	for _, p := range parties {
		if name, ok := p[key]; ok {
			s.Subjects = append(s.Subjects, coerce.ToString(name))
		}
	}
	s.AccountNumber = mainAccount(sections)
	if s.AccountNumber == "" {
		zap.L().Warn("casefile: no account number", zap.String("case", number))
	}
	return s
}

// mainAccount picks the listing account: the first relevant account, else
// the first account key, else the first activity summary account.
func mainAccount(sections []model.RawSection) string {
	if accts, ok := model.FindSection(sections, normalize.SectionCaseInformation)["Relevant Accounts"].([]any); ok && len(accts) > 0 {
		return coerce.ToString(accts[0])
	}
	info := model.FindSection(sections, normalize.SectionAccountInformation)
	if accts := objects(info["Accounts"]); len(accts) > 0 {
		return coerce.ToString(accts[0]["Account Key"])
	}
	if nested, ok := info["accountInformation"].(map[string]any); ok {
		if acct, ok := nested["Account"].(map[string]any); ok {
			return coerce.ToString(acct["Account Key"])
		}
	}
	if rows := objects(model.FindSection(sections, normalize.SectionActivitySummary)["Activity Summary"]); len(rows) > 0 {
		return coerce.ToString(rows[0]["Account"])
	}
	return ""
}

// AccountNumbers lists every account number a case mentions: relevant
// accounts, account keys and activity summary accounts, deduplicated in
// first-seen order.
func (r *Repository) AccountNumbers(number string) ([]string, error) {
	sections, err := r.Sections(number)
	if err != nil {
		return nil, err
	}
	var out []string
	add := func(v any) {
		if s := coerce.ToString(v); s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if accts, ok := model.FindSection(sections, normalize.SectionCaseInformation)["Relevant Accounts"].([]any); ok {
		for _, a := range accts {
			add(a)
		}
	}
	for _, a := range objects(model.FindSection(sections, normalize.SectionAccountInformation)["Accounts"]) {
		add(a["Account Key"])
	}
	for _, a := range objects(model.FindSection(sections, normalize.SectionActivitySummary)["Activity Summary"]) {
		add(a["Account"])
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// objects returns the object elements of a list value.
func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
