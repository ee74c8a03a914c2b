package narrative

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

type rule struct {
	kind   string
	re     *regexp.Regexp
	accept func(string) bool
}

// preserveRules shield facts the model must echo verbatim. They run before
// the PII rules so a date or amount is never mistaken for an identifier.
var preserveRules = []rule{
	{kind: "PRESERVE_MONEY_AMOUNT", re: regexp.MustCompile(`\$[\d,]+\.\d{2}|\$[\d,]+|\d+\s+dollars|\d+\s+USD`)},
	{kind: "PRESERVE_PERCENTAGE", re: regexp.MustCompile(`\d+(?:\.\d+)?%`)},
	{kind: "PRESERVE_TRANSACTION_COUNT", re: regexp.MustCompile(`\b\d+\s+transactions?\b`)},
	{kind: "PRESERVE_ALERT_ID", re: regexp.MustCompile(`\b(?:AMLR\d+|AMLC\d+|SAM\d+-\d+|IRF_\d+)\b`)},
	{kind: "PRESERVE_DATE", re: regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b|\b\d{4}-\d{2}-\d{2}\b|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}\b`)},
}

// piiRules run most specific first so the placeholder kind names the value.
var piiRules = []rule{
	{kind: "PII_EMAIL", re: regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)},
	{kind: "PII_CASE_NUMBER", re: regexp.MustCompile(`\b(?:CC\d{10,}|C\d{7,}|AML\d{7,})\b`)},
	{kind: "PII_PARTY_KEY", re: regexp.MustCompile(`\b\d{18,}\b`)},
	{kind: "PII_TIN", re: regexp.MustCompile(`\b\d{2}-\d{7}\b`)},
	{kind: "PII_SSN", re: regexp.MustCompile(`\b\d{3}[-. ]\d{2}[-. ]\d{4}\b`)},
	{kind: "PII_PHONE", re: regexp.MustCompile(`\b\d{3}[-. ]?\d{3}[-. ]?\d{4}\b`)},
	{kind: "PII_ACCOUNT_NUMBER", re: regexp.MustCompile(`\b[A-Z0-9]{10,}\b`), accept: hasDigit},
	{kind: "PII_DRIVERS_LICENSE", re: regexp.MustCompile(`\b(?:[A-Z]\d{8,}|\d{8,}[A-Z]?)\b`)},
	{kind: "PII_ROUTING_NUMBER", re: regexp.MustCompile(`\b\d{9}\b`)},
	{kind: "PII_ADDRESS", re: regexp.MustCompile(`\b\d+\s+[A-Z][A-Za-z\s,.]+(?:ST|AVE|RD|LN|DR|BLVD|STREET|AVENUE|ROAD|CIRCLE|COURT|PLACE|WAY)\b[^\n\[\]]*?\d{5}(?:-\d{4})?\b`)},
	{kind: "PII_NAME", re: regexp.MustCompile(`\b[A-Z][A-Z\s]+(?:[A-Z]\.?\s)?[A-Z][A-Z]+\b`)},
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// Protected is text with sensitive values swapped for placeholders such as
// [PII_NAME_3]. It is immutable and safe to share.
type Protected struct {
	Text   string
	values map[string]string
}

// Protect replaces preserved facts (amounts, percentages, counts, alert ids,
// dates) and PII (emails, case numbers, party keys, SSNs, TINs, phone and
// account numbers, addresses, ALL-CAPS names) with numbered placeholders.
func Protect(text string) Protected {
	p := Protected{Text: text, values: make(map[string]string)}
	n := 0
	for _, rules := range [][]rule{preserveRules, piiRules} {
		for _, r := range rules {
			locs := r.re.FindAllStringIndex(p.Text, -1)
			for i := len(locs) - 1; i >= 0; i-- {
				start, end := locs[i][0], locs[i][1]
				orig := p.Text[start:end]
				if strings.TrimSpace(orig) == "" || strings.ContainsAny(orig, "[]") {
					continue
				}
				if r.accept != nil && !r.accept(orig) {
					continue
				}
				n++
				ph := fmt.Sprintf("[%s_%d]", r.kind, n)
				p.values[ph] = orig
				p.Text = p.Text[:start] + ph + p.Text[end:]
			}
		}
	}
	return p
}

// Len returns the number of placeholders.
func (p Protected) Len() int { return len(p.values) }

// Restore puts the original values back into s, a response written against
// the protected text. Longer placeholders are replaced first.
func (p Protected) Restore(s string) string {
	if len(p.values) == 0 {
		return s
	}
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, p.values[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
