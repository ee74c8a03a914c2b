package validate

import "github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"

// Finding actions.
const (
	// ActionDerived marks a field filled from another part of the records.
	ActionDerived = "derived"
	// ActionDefaulted marks a field filled from the literal defaults table.
	ActionDefaulted = "defaulted"
	// ActionCorrected marks a value that was present but repaired.
	ActionCorrected = "corrected"
	// ActionMissing marks a field that could be neither derived nor defaulted.
	ActionMissing = "missing"
)

// Context accumulates the findings of one validation pass. Findings that
// carry a message are the warnings surfaced to the investigator.
type Context struct {
	findings []model.Finding
	missing  []string
}

func (c *Context) add(f model.Finding) {
	c.findings = append(c.findings, f)
}

// derived records a silent derivation.
func (c *Context) derived(field, value string) {
	c.add(model.Finding{Field: field, Action: ActionDerived, Value: value})
}

// derivedWarn records a derivation the investigator should see.
func (c *Context) derivedWarn(field, value, msg string) {
	c.add(model.Finding{Field: field, Action: ActionDerived, Value: value, Message: msg})
}

func (c *Context) defaulted(field, value, msg string) {
	c.add(model.Finding{Field: field, Action: ActionDefaulted, Value: value, Message: msg})
}

func (c *Context) corrected(field, value, msg string) {
	c.add(model.Finding{Field: field, Action: ActionCorrected, Value: value, Message: msg})
}

// missingRequired records a field with no fallback.
func (c *Context) missingRequired(field, msg string) {
	c.add(model.Finding{Field: field, Action: ActionMissing})
	c.missing = append(c.missing, msg)
}

// Findings returns every finding in the order recorded.
func (c *Context) Findings() []model.Finding { return c.findings }

// Warnings returns the messages of the findings that carry one.
func (c *Context) Warnings() []string {
	out := []string{}
	for _, f := range c.findings {
		if f.Message != "" {
			out = append(out, f.Message)
		}
	}
	return out
}

// Result returns the validation outcome. Validation never blocks processing,
// so Valid is always true.
func (c *Context) Result() model.Validation {
	missing := c.missing
	if missing == nil {
		missing = []string{}
	}
	return model.Validation{
		Valid:           true,
		MissingRequired: missing,
		Warnings:        c.Warnings(),
		Findings:        c.findings,
	}
}
