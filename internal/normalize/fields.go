package normalize

import (
	"strings"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/coerce"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// asMap returns v as a string-keyed map, or nil.
func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case model.Row:
		return m
	case model.RawSection:
		return m
	}
	return nil
}

// asList returns v as a list. A single object is wrapped in a one-element
// list; anything else that is not a list yields nil.
func asList(v any) []any {
	switch l := v.(type) {
	case nil:
		return nil
	case []any:
		return l
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	case map[string]any:
		return []any{l}
	}
	return nil
}

// get reads the first present key from m, tolerating whitespace and case
// differences in the key.
func get(m map[string]any, keys ...string) any {
	if m == nil {
		return nil
	}
	v, _ := model.Row(m).Get(keys...)
	return v
}

// str reads a scalar as a string. A list of scalars is joined with ", ".
func str(m map[string]any, keys ...string) string {
	v := get(m, keys...)
	if l, ok := v.([]any); ok {
		return strings.Join(strList(l), ", ")
	}
	if _, ok := v.(map[string]any); ok {
		return ""
	}
	return coerce.ToString(v)
}

// strList returns the non-empty string elements of v. A lone scalar becomes a
// one-element list.
func strList(v any) []string {
	var out []string
	switch l := v.(type) {
	case []any:
		for _, e := range l {
			if s := coerce.ToString(e); s != "" {
				if _, isMap := e.(map[string]any); !isMap {
					out = append(out, s)
				}
			}
		}
	case []string:
		for _, s := range l {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case nil:
	default:
		if s := coerce.ToString(l); s != "" {
			out = append(out, s)
		}
	}
	return out
}


// SplitPeriod parses a combined "<start> - <end>" range. Both a hyphen and an
// en dash are accepted as the separator, including an en dash that was
// mis-decoded as Windows-1252 by an older export.
func SplitPeriod(s string) model.Period {
	s = strings.TrimSpace(s)
	for _, sep := range []string{" - ", " – ", " â€“ ", "–"} {
		if parts := strings.SplitN(s, sep, 2); len(parts) == 2 {
			return model.Period{
				Start: strings.TrimSpace(parts[0]),
				End:   strings.TrimSpace(parts[1]),
			}
		}
	}
	return model.Period{}
}

// period reads a review period that may be a combined string, a
// {start,end} object or a {startDate,endDate} object.
func period(v any) model.Period {
	switch p := v.(type) {
	case string:
		return SplitPeriod(p)
	case map[string]any:
		return model.Period{
			Start: str(p, "start", "startDate", "start_date", "Start Date"),
			End:   str(p, "end", "endDate", "end_date", "End Date"),
		}
	}
	return model.Period{}
}

// relatedParty parses "Name (Role)". Entries without a parenthetical keep the
// whole string as the name.
func relatedParty(v any) model.RelatedParty {
	if m := asMap(v); m != nil {
		return model.RelatedParty{Name: str(m, "name", "Name"), Role: str(m, "role", "Role")}
	}
	s := coerce.ToString(v)
	parts := strings.Split(s, " (")
	if len(parts) == 2 {
		return model.RelatedParty{
			Name: strings.TrimSpace(parts[0]),
			Role: strings.TrimSuffix(strings.TrimSpace(parts[1]), ")"),
		}
	}
	return model.RelatedParty{Name: s}
}

func relatedParties(v any) []model.RelatedParty {
	var out []model.RelatedParty
	for _, e := range asList(v) {
		if p := relatedParty(e); p.Name != "" {
			out = append(out, p)
		}
	}
	if s, ok := v.(string); ok && s != "" {
		for _, part := range strings.Split(s, ";") {
			if p := relatedParty(strings.TrimSpace(part)); p.Name != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// rows converts a list of objects into table rows.
func rows(v any) []model.Row {
	var out []model.Row
	for _, e := range asList(v) {
		if m := asMap(e); m != nil {
			out = append(out, model.Row(m))
		}
	}
	return out
}

// sideRows converts a credits or debits list into rows tagged with the
// direction, unless the row already carries one.
func sideRows(v any, indicator string) []model.Row {
	out := rows(v)
	for i, r := range out {
		if _, ok := r.Get("Debit/Credit", "debitCredit", "debit_credit", "direction"); ok {
			continue
		}
		tagged := make(model.Row, len(r)+1)
		for k, val := range r {
			tagged[k] = val
		}
		tagged["Debit/Credit"] = indicator
		out[i] = tagged
	}
	return out
}
