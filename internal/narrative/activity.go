package narrative

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// ActivityType is one category of suspicious activity a SAR reports.
type ActivityType struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	DerivedFrom string   `json:"derived_from"`
	Indicators  []string `json:"indicators"`
}

// Activity type keys.
const (
	Structuring     = "STRUCTURING"
	UnusualACH      = "UNUSUAL_ACH"
	UnusualCash     = "UNUSUAL_CASH"
	MoneyLaundering = "MONEY_LAUNDERING"
	WireFraud       = "WIRE_FRAUD"
	IdentityTheft   = "IDENTITY_THEFT"
	CheckFraud      = "CHECK_FRAUD"
)

const (
	creditsAndDebits = "derived from credits and debits"
	creditsOnly      = "derived from credits"
)

var activityTypes = map[string]ActivityType{
	Structuring: {
		Key: Structuring, Name: "structuring", DerivedFrom: creditsAndDebits,
		Indicators: []string{"structured deposits below CTR threshold", "layering", "multi-location activity", "rapid movement of funds"},
	},
	UnusualACH: {
		Key: UnusualACH, Name: "Automated Clearing House (ACH) activity", DerivedFrom: creditsOnly,
		Indicators: []string{"unknown sources/beneficiaries", "high-frequency transactions", "inconsistent with customer profile"},
	},
	UnusualCash: {
		Key: UnusualCash, Name: "cash activity", DerivedFrom: creditsAndDebits,
		Indicators: []string{"large cash deposits", "large cash withdrawals", "structured cash transactions"},
	},
	MoneyLaundering: {
		Key: MoneyLaundering, Name: "money laundering", DerivedFrom: creditsAndDebits,
		Indicators: []string{"layering", "structuring", "shell company involvement", "rapid movement of funds"},
	},
	WireFraud: {
		Key: WireFraud, Name: "wire fraud", DerivedFrom: creditsAndDebits,
		Indicators: []string{"unauthorized wire transfers", "account takeover", "business email compromise"},
	},
	IdentityTheft: {
		Key: IdentityTheft, Name: "identity theft", DerivedFrom: creditsAndDebits,
		Indicators: []string{"account opened with stolen identity", "unauthorized access", "inconsistent customer information"},
	},
	CheckFraud: {
		Key: CheckFraud, Name: "check fraud", DerivedFrom: creditsAndDebits,
		Indicators: []string{"counterfeit checks", "altered checks", "check kiting"},
	},
}

// Activity returns the activity type registered under key.
func Activity(key string) (ActivityType, bool) {
	a, ok := activityTypes[key]
	return a, ok
}

// scored lists the classifiable types in tie-break order with their keywords.
var scored = []struct {
	key      string
	keywords []string
}{
	{Structuring, []string{"structure", "ctr", "cash deposit", "multiple deposit", "9000", "below 10000"}},
	{UnusualACH, []string{"ach", "wire", "transfer", "electronic", "payment", "zelle", "venmo"}},
	{UnusualCash, []string{"cash", "atm", "withdraw", "deposit", "currency", "dollar bill"}},
	{MoneyLaundering, []string{"launder", "shell", "funnel", "layering", "money laundering", "suspicious"}},
}

// Structuring pattern bounds: amounts just under the CTR threshold.
const (
	structuringFloor = 8000.0
	ctrThreshold     = 10000.0
)

// Classify scores the record against the keyword table and returns the
// best-scoring activity type. Alert descriptions weigh 2, the activity
// description 1, each cash or transfer breakdown type 2, and two or more
// unusual transactions just below the CTR threshold 3. Ties go to the type
// listed first; a record with no signal is ACH activity.
func Classify(c *model.CombinedFactRecord) ActivityType {
	fold := cases.Fold()
	scores := make(map[string]int, len(scored))

	var alerts strings.Builder
	for _, a := range c.AlertInfo {
		alerts.WriteString(a.Description)
		alerts.WriteByte(' ')
	}
	alertText := fold.String(alerts.String())
	activityText := fold.String(c.ActivitySummary.Description)
	for _, s := range scored {
		for _, kw := range s.keywords {
			if strings.Contains(alertText, kw) {
				scores[s.key] += 2
			}
			if strings.Contains(activityText, kw) {
				scores[s.key]++
			}
		}
	}

	breakdowns := append(append([]model.Breakdown{}, c.TransactionSummary.CreditBreakdown...), c.TransactionSummary.DebitBreakdown...)
	for _, b := range breakdowns {
		t := fold.String(b.Type)
		if containsAny(t, "cash", "atm", "currency") {
			scores[UnusualCash] += 2
		}
		if containsAny(t, "ach", "wire", "transfer") {
			scores[UnusualACH] += 2
		}
	}

	near := 0
	for _, t := range c.UnusualActivity.Transactions {
		if t.Amount > structuringFloor && t.Amount < ctrThreshold {
			near++
		}
	}
	if near >= 2 {
		scores[Structuring] += 3
	}

	best, bestScore := UnusualACH, 0
	for _, s := range scored {
		if scores[s.key] > bestScore {
			best, bestScore = s.key, scores[s.key]
		}
	}
	return activityTypes[best]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
