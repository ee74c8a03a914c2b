package coerce

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalLayout is the MM/DD/YYYY form every date is normalized to.
const CanonicalLayout = "01/02/2006"

// Order is the result of CompareDates.
type Order int

const (
	Before       Order = -1
	Same         Order = 0
	After        Order = 1
	Incomparable Order = 2
)

var slashDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})`)

// Layouts tried, in order, when a date is not already slash-separated.
var isoLayouts = []string{
	"2006-1-2",
	"1-2-2006",
	"2-1-2006",
	"2006/1/2",
}

// Layouts tried, in order, when comparing two dates. Only the portion before
// the first space is parsed, so a trailing time of day is ignored.
var compareLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"20060102",
	"1-2-2006",
	"2-1-2006",
	"2006/1/2",
}

// ToCanonicalDate normalizes v to MM/DD/YYYY. A slash date is zero padded and
// a two-digit year pivots at 50 ("49" is 2049, "50" is 1950); no range check
// is applied to the month or day. Hyphenated and ISO forms are reformatted.
// Anything else is returned unchanged, and nil yields "".
func ToCanonicalDate(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(CanonicalLayout)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format(CanonicalLayout)
	case string:
		s = strings.TrimSpace(x)
	default:
		s = strings.TrimSpace(fmt.Sprint(x))
	}
	if s == "" {
		return ""
	}

	if m := slashDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year := m[3]
		if len(year) == 2 {
			yy, _ := strconv.Atoi(year)
			if yy < 50 {
				year = "20" + year
			} else {
				year = "19" + year
			}
		}
		return fmt.Sprintf("%02d/%02d/%s", month, day, year)
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(CanonicalLayout)
		}
	}
	return s
}

// ParseDate parses s with the comparison layouts. The second return is false
// when no layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range compareLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompareDates orders two date strings. When both parse they compare
// chronologically; when either fails to parse they compare as strings. An
// empty operand is Incomparable.
func CompareDates(a, b string) Order {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return Incomparable
	}
	ta, okA := ParseDate(a)
	tb, okB := ParseDate(b)
	if okA && okB {
		return Order(ta.Compare(tb))
	}
	return Order(strings.Compare(a, b))
}

// Earliest returns the earlier of a and b. An empty operand yields the other;
// two empty operands yield "".
func Earliest(a, b string) string {
	if strings.TrimSpace(a) == "" {
		return b
	}
	if strings.TrimSpace(b) == "" {
		return a
	}
	if CompareDates(a, b) == After {
		return b
	}
	return a
}

// Latest returns the later of a and b with the same empty handling as
// Earliest.
func Latest(a, b string) string {
	if strings.TrimSpace(a) == "" {
		return b
	}
	if strings.TrimSpace(b) == "" {
		return a
	}
	if CompareDates(a, b) == Before {
		return b
	}
	return a
}
