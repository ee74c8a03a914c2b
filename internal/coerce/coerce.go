// Package coerce converts the loosely formatted scalars found in case exports
// and spreadsheets (currency strings, counts, multi-format dates) into
// canonical values. Every function is total: malformed input yields a defined
// default, never an error.
package coerce

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var (
	amountStrip = regexp.MustCompile(`[$\s,]`)
	countStrip  = regexp.MustCompile(`[^0-9.\-]`)
)

// ToAmount converts v to a float. Strings have currency symbols, thousands
// separators and whitespace removed before parsing. Anything unparsable,
// including nil, yields 0.
func ToAmount(v any) float64 {
	if n, ok := v.(json.Number); ok {
		v = n.String()
	}
	if s, ok := v.(string); ok {
		s = amountStrip.ReplaceAllString(s, "")
		if s == "" {
			return 0
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToCount converts v to an integer. Floats are truncated. Strings are
// stripped of everything but digits, a decimal point and a sign, then
// truncated. Anything unparsable yields 0.
func ToCount(v any) int {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return truncate(x)
	case float32:
		return truncate(float64(x))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return truncate(f)
	case string:
		s := countStrip.ReplaceAllString(x, "")
		if s == "" {
			return 0
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return truncate(f)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return truncate(ToAmount(v))
	}
	return n
}

func truncate(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// ToString renders a scalar from decoded JSON as a trimmed string. Whole
// floats print without a fractional part so account keys decoded as numbers
// keep their original form.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
