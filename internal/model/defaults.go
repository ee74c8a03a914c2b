package model

// Defaults is the literal fallback table used when a required field cannot
// be found or derived.
type Defaults struct {
	AlertID           string  `json:"alert_id" yaml:"alert_id" mapstructure:"alert_id"`
	AlertDescription  string  `json:"alert_description" yaml:"alert_description" mapstructure:"alert_description"`
	SubjectName       string  `json:"subject_name" yaml:"subject_name" mapstructure:"subject_name"`
	AccountNumber     string  `json:"account_number" yaml:"account_number" mapstructure:"account_number"`
	AccountType       string  `json:"account_type" yaml:"account_type" mapstructure:"account_type"`
	UnknownAccount    string  `json:"unknown_account" yaml:"unknown_account" mapstructure:"unknown_account"`
	UnknownStatus     string  `json:"unknown_status" yaml:"unknown_status" mapstructure:"unknown_status"`
	TransactionType   string  `json:"transaction_type" yaml:"transaction_type" mapstructure:"transaction_type"`
	ActivityStartDate string  `json:"activity_start_date" yaml:"activity_start_date" mapstructure:"activity_start_date"`
	ReconcileTotal    float64 `json:"reconcile_total" yaml:"reconcile_total" mapstructure:"reconcile_total"`
}

// StandardDefaults returns the shipped fallback table.
func StandardDefaults() Defaults {
	return Defaults{
		AlertID:           "DEFAULT001",
		AlertDescription:  "Default alert",
		SubjectName:       "UNKNOWN SUBJECT",
		AccountNumber:     "UNKNOWN",
		AccountType:       "checking/savings account",
		UnknownAccount:    "Unknown Account",
		UnknownStatus:     "Unknown Status",
		TransactionType:   "Unknown Transaction Type",
		ActivityStartDate: "01/01/2023",
		ReconcileTotal:    1000.0,
	}
}

// WithFallbacks fills any zero field of d from StandardDefaults.
func (d Defaults) WithFallbacks() Defaults {
	std := StandardDefaults()
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&d.AlertID, std.AlertID)
	fill(&d.AlertDescription, std.AlertDescription)
	fill(&d.SubjectName, std.SubjectName)
	fill(&d.AccountNumber, std.AccountNumber)
	fill(&d.AccountType, std.AccountType)
	fill(&d.UnknownAccount, std.UnknownAccount)
	fill(&d.UnknownStatus, std.UnknownStatus)
	fill(&d.TransactionType, std.TransactionType)
	fill(&d.ActivityStartDate, std.ActivityStartDate)
	if d.ReconcileTotal <= 0 {
		d.ReconcileTotal = std.ReconcileTotal
	}
	return d
}
