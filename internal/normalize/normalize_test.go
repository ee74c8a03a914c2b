package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

func jsonDoc(t *testing.T, raw string) *fetcher.Document {
	t.Helper()
	doc, err := fetcher.ParseJSON([]byte(raw))
	require.NoError(t, err)
	return doc
}

const sectionedCase = `[
  {"section": "Case Information", "Case Number": "CC0015823420", "Relevant Accounts": ["204784659052"]},
  {"section": "Alerting Details", "alerts": [
    {"Alert ID": "AMLR5881633", "Alert Month": "201902", "Description": "High Risk Country", "Review Period": "02/01/2023 - 01/31/2024"}
  ]},
  {"section": "Customer Information", "US Bank Customer Information": [
    {"Primary Party": "GLENN A BROWDER", "Party Key": "001996028488849833", "Occupation Description": "Doctor/Dentist",
     "Employer": "SUMMIT ORTHOPEDICS", "Country of Nationality": "US", "Addresses": ["857 FAIRMOUNT AVE SAINT PAUL MN"]}
  ]},
  {"section": "Account Information", "Case Review Period": "01/01/2023 - 03/18/2024", "Accounts": [
    {"Account Key": "ICS9999988", "Account Type": ["ICSNPSLV", "NPSL Visa"], "Account Title": "BROWDER, GLENN ANDREW",
     "Account Opening Date & Branch": "09/04/2018", "Status Description": "I50 (GOOD ACCOUNT)",
     "Related Parties": ["GLENN A BROWDER (First Co-Owner)", "MALFORMED ENTRY"]}
  ]},
  {"section": "Prior Cases/SARs", "priorCases": [
    {"Case Number": "CC0011111111", "Alerting Information": {"Alert IDs": ["AMLR1"], "Alert Months": ["202201"]},
     "Scope of Review": {"start": "01/01/2022", "end": "06/30/2022"},
     "SAR Details": {"Form Number": "123", "Filing Date": "07/15/2022", "SAR Summary": "Structured deposits"}}
  ]},
  {"section": "Database Searches",
   "KYC Database": [{"Subject Name": "GLENN A BROWDER"}],
   "Adverse Media Review": "No adverse media found",
   "Risk Ratings": [{"Subject Name": "GLENN A BROWDER", "Party Key": "001996028488849833", "SOR": "HOGAN", "Party Risk Rating Code Description": "Low"}]},
  {"section": "Scope of Review", "Start Date": "01/01/2023", "End Date": "03/18/2024"},
  {"section": "Activity Summary", "Activity Summary": [
    {"Account": "204784659052",
     "Credits": [{"Custom Language": "Cash Deposit", "% of Credits": 55.2, "Total ": 27600.00, "# Transactions ": 3}],
     "Debits": [{"Custom Language": "Wire Transfer", "% of Debits": 52.08, "Total ": 25000.00, "# Transactions ": 1}]}
  ]},
  {"section": "Unusual Activity", "Unusual Activity": [
    {"Transaction Date": "02/15/2023", "Transaction Amount": 9500, "Custom Language": "Cash Deposit", "Memo": "branch", "Account": "204784659052"}
  ]}
]`

// --- Flat ---

func TestNormalize_SingleAlertObjectIsWrapped(t *testing.T) {
	doc := jsonDoc(t, `{"alertInfo": {"alertId": "A1", "alertMonth": "202001", "description": "test"}}`)

	rec := Normalize(doc)

	require.Len(t, rec.AlertInfo, 1)
	assert.Equal(t, model.Alert{AlertID: "A1", AlertMonth: "202001", Description: "test"}, rec.AlertInfo[0])
	assert.Equal(t, "flat", rec.Source)
}

func TestNormalize_FlatSnakeCase(t *testing.T) {
	doc := jsonDoc(t, `{
		"case_number": "CC9999999999",
		"alerting_details": [{"alert_id": "AMLR9", "alert_month": "202305", "review_period": "5/1/2023 - 5/31/2023"}],
		"customer_information": [{"name": "ANA LOPEZ", "is_primary": true, "occupation": "Teacher"}],
		"account_information": {"account_number": "12345678", "account_type": "Checking", "related_parties": ["ANA LOPEZ (Signer)"]},
		"prior_cases": [{"case_number": "CC1", "alert_id": "AMLR1", "review_period_start": "1/1/2022", "review_period_end": "2/1/2022"}],
		"database_searches": {"kyc": {"results": "clean"}, "adverse_media": {"results": "none"}}
	}`)

	rec := Normalize(doc)

	assert.Equal(t, "CC9999999999", rec.CaseNumber)
	require.Len(t, rec.AlertInfo, 1)
	assert.Equal(t, model.Period{Start: "05/01/2023", End: "05/31/2023"}, rec.AlertInfo[0].ReviewPeriod)
	require.Len(t, rec.Subjects, 1)
	assert.True(t, rec.Subjects[0].IsPrimary)
	assert.Equal(t, "Signer", rec.Subjects[0].AccountRelationship)
	require.Len(t, rec.Accounts, 1)
	assert.Equal(t, "12345678", rec.Accounts[0].AccountNumber)
	require.Len(t, rec.PriorCases, 1)
	assert.Equal(t, []string{"AMLR1"}, rec.PriorCases[0].AlertIDs)
	assert.Equal(t, model.Period{Start: "01/01/2022", End: "02/01/2022"}, rec.PriorCases[0].ReviewPeriod)
	assert.Equal(t, "clean", rec.DatabaseSearches.KYC.Results)
	assert.Equal(t, "none", rec.DatabaseSearches.AdverseMedia.Results)
}

func TestNormalize_EmptyObject(t *testing.T) {
	rec := Normalize(jsonDoc(t, `{}`))

	assert.Empty(t, rec.CaseNumber)
	assert.NotNil(t, rec.AlertInfo)
	assert.Empty(t, rec.AlertInfo)
	assert.Empty(t, rec.Subjects)
	assert.Empty(t, rec.Accounts)
	assert.Empty(t, rec.PriorCases)
	assert.True(t, rec.ReviewPeriod.IsZero())
	assert.True(t, rec.Tables.IsEmpty())
	assert.Empty(t, rec.Source)
}

func TestNormalize_NilDocument(t *testing.T) {
	rec := Normalize(nil)
	assert.Empty(t, rec.CaseNumber)
	assert.NotNil(t, rec.Subjects)
}

// --- Sectioned ---

func TestNormalize_Sectioned(t *testing.T) {
	rec := Normalize(jsonDoc(t, sectionedCase))

	assert.Equal(t, "CC0015823420", rec.CaseNumber)
	assert.Equal(t, "sectioned", rec.Source)

	require.Len(t, rec.AlertInfo, 1)
	assert.Equal(t, "AMLR5881633", rec.AlertInfo[0].AlertID)
	assert.Equal(t, model.Period{Start: "02/01/2023", End: "01/31/2024"}, rec.AlertInfo[0].ReviewPeriod)

	require.Len(t, rec.Subjects, 1)
	s := rec.Subjects[0]
	assert.Equal(t, "GLENN A BROWDER", s.Name)
	assert.True(t, s.IsPrimary)
	assert.Equal(t, "001996028488849833", s.PartyKey)
	assert.Equal(t, "Doctor/Dentist", s.Occupation)
	assert.Equal(t, "857 FAIRMOUNT AVE SAINT PAUL MN", s.Address)
	assert.Equal(t, "First Co-Owner", s.AccountRelationship)

	require.Len(t, rec.Accounts, 1)
	a := rec.Accounts[0]
	assert.Equal(t, "ICS9999988", a.AccountNumber)
	assert.Equal(t, "ICSNPSLV, NPSL Visa", a.AccountType)
	assert.Equal(t, "09/04/2018", a.OpenDate)
	assert.Equal(t, []model.RelatedParty{
		{Name: "GLENN A BROWDER", Role: "First Co-Owner"},
		{Name: "MALFORMED ENTRY"},
	}, a.RelatedParties)

	require.Len(t, rec.PriorCases, 1)
	pc := rec.PriorCases[0]
	assert.Equal(t, "CC0011111111", pc.CaseNumber)
	assert.Equal(t, []string{"AMLR1"}, pc.AlertIDs)
	assert.Equal(t, "123", pc.SARFormNumber)
	assert.Equal(t, "Structured deposits", pc.Summary)

	assert.Equal(t, "GLENN A BROWDER: No WebKYC form links found", rec.DatabaseSearches.KYC.Results)
	assert.Equal(t, "No adverse media found", rec.DatabaseSearches.AdverseMedia.Results)
	require.Len(t, rec.DatabaseSearches.RiskRatings, 1)
	assert.Equal(t, "Low", rec.DatabaseSearches.RiskRatings[0].Rating)

	assert.Equal(t, model.Period{Start: "01/01/2023", End: "03/18/2024"}, rec.ReviewPeriod)

	require.Len(t, rec.Tables.Activity, 1)
	group := rec.Tables.Activity[0]
	assert.Equal(t, "204784659052", group.Account)
	require.Len(t, group.Rows, 2)
	assert.Equal(t, "CR", group.Rows[0]["Debit/Credit"])
	assert.Equal(t, "DR", group.Rows[1]["Debit/Credit"])
	require.Len(t, rec.Tables.Unusual, 1)

	assert.Len(t, rec.Sections, 9)
}

func TestNormalize_OlderAccountShape(t *testing.T) {
	doc := jsonDoc(t, `[
		{"section": "Account Information", "accountInformation": {
			"Review Period": "01/01/2021 – 12/31/2021",
			"Account": {"Account Key": "DDA123456", "Types": ["Checking"], "Title": "SMITH",
			            "Status": {"Description": "CLOSED"}, "Opening": {"Date": "03/03/2015", "Branch": "MAIN"},
			            "Closing Date": "11/30/2021", "Related Parties": ["JOHN SMITH"]}}}
	]`)

	rec := Normalize(doc)

	require.Len(t, rec.Accounts, 1)
	a := rec.Accounts[0]
	assert.Equal(t, "DDA123456", a.AccountNumber)
	assert.Equal(t, "Checking", a.AccountType)
	assert.Equal(t, "03/03/2015", a.OpenDate)
	assert.Equal(t, "MAIN", a.Branch)
	assert.True(t, a.IsClosed())
	assert.Equal(t, []model.RelatedParty{{Name: "JOHN SMITH"}}, a.RelatedParties)
	assert.Equal(t, model.Period{Start: "01/01/2021", End: "12/31/2021"}, rec.ReviewPeriod)
}

func TestNormalize_HoganSubjects(t *testing.T) {
	doc := jsonDoc(t, `[
		{"section": "Hogan", "Hogan Search": [
			{"Case Subject": "FIRST PERSON", "Primary Party Key": 123456789012},
			{"Case Subject": "SECOND PERSON", "Primary Party Key": "2"}
		]}
	]`)

	rec := Normalize(doc)

	require.Len(t, rec.Subjects, 2)
	assert.True(t, rec.Subjects[0].IsPrimary)
	assert.False(t, rec.Subjects[1].IsPrimary)
	assert.Equal(t, "123456789012", rec.Subjects[0].PartyKey)
}

func TestNormalize_CustomerSubjectsPromoteFirst(t *testing.T) {
	doc := jsonDoc(t, `[
		{"section": "Customer Information", "US Bank Customer Information": [
			{"Primary Party": "FIRST PERSON", "Original Case Subject": "No"},
			{"Primary Party": "SECOND PERSON", "Original Case Subject": "Yes"}
		]}
	]`)

	rec := Normalize(doc)

	require.Len(t, rec.Subjects, 2)
	assert.True(t, rec.Subjects[0].IsPrimary)
	assert.False(t, rec.Subjects[1].IsPrimary)
}

func TestNormalize_FlatWinsThenFallsThrough(t *testing.T) {
	doc := jsonDoc(t, `{
		"caseNumber": "FLAT-1",
		"full_data": [
			{"section": "Case Information", "Case Number": "SECTIONED-2"},
			{"section": "Alerting Details", "alerts": [{"Alert ID": "AMLR2", "Review Period": "1/1/2020 - 2/1/2020"}]}
		]
	}`)

	rec := Normalize(doc)

	assert.Equal(t, "FLAT-1", rec.CaseNumber)
	require.Len(t, rec.AlertInfo, 1)
	assert.Equal(t, "AMLR2", rec.AlertInfo[0].AlertID)
	assert.Equal(t, "flat,sectioned", rec.Source)
}

// --- Standardized ---

func TestNormalize_Standardized(t *testing.T) {
	doc := jsonDoc(t, `{
		"caseInfo": {"caseNumber": "C12345678", "reviewPeriod": {"startDate": "2023-01-01", "endDate": "2023-06-30"}},
		"alerts": [{"alertId": "AMLR1", "alertMonth": "202302", "description": "High velocity",
		            "reviewPeriod": {"startDate": "01/01/2023", "endDate": "06/30/2023"}}],
		"subjects": [{"name": "JANE DOE", "isPrimary": true, "partyKey": "555"}],
		"accounts": [{"accountKey": "ICS100", "accountTypes": ["Checking", "Savings"], "statusDescription": "OPEN",
		  "activitySummary": {
		    "creditsByType": [{"type": "Zelle", "percentOfTotal": 60, "totalAmount": 600, "transactionCount": 3}],
		    "debitsByType": [{"type": "ATM", "percentOfTotal": 100, "totalAmount": 200, "transactionCount": 2}]}}],
		"transactions": {"all": [{"accountKey": "ICS100", "date": "01/02/2023", "type": "credit", "amount": 100, "transactionType": "Zelle"}]}
	}`)

	rec := Normalize(doc)

	assert.Equal(t, "C12345678", rec.CaseNumber)
	assert.Equal(t, model.Period{Start: "01/01/2023", End: "06/30/2023"}, rec.ReviewPeriod)
	require.Len(t, rec.AlertInfo, 1)
	assert.Equal(t, "AMLR1", rec.AlertInfo[0].AlertID)
	require.Len(t, rec.Accounts, 1)
	assert.Equal(t, "Checking, Savings", rec.Accounts[0].AccountType)
	require.Len(t, rec.Tables.Activity, 1)
	assert.Len(t, rec.Tables.Activity[0].Rows, 2)
	assert.Len(t, rec.Tables.Transactions, 1)
	assert.Equal(t, "flat,standardized", rec.Source)
}

// --- Free text ---

const textCase = `1. Case Information
Case Number: CC1234567890

2. Alerting Details
Alert ID: AMLR123
Alert Month: 202301
Description: Rapid movement of funds
Review Period: 1/1/2023 - 3/31/2023

3. Customer Information
JOHN Q PUBLIC (Primary Owner)
Party Key: 12345
Occupation: Engineer
Employer: ACME CORP
Address: 1 Main St
springfield, IL

4. Account Information
Account Number: 987654321
Account Type: Checking
Open Date: 01/05/2020
Close Date: 02/01/2024

5. Prior Cases/SARs
No prior cases found.
`

func TestNormalize_Text(t *testing.T) {
	rec := Normalize(fetcher.FromText(textCase))

	assert.Equal(t, "CC1234567890", rec.CaseNumber)
	assert.Equal(t, "text", rec.Source)

	require.Len(t, rec.AlertInfo, 1)
	alert := rec.AlertInfo[0]
	assert.Equal(t, "AMLR123", alert.AlertID)
	assert.Equal(t, "202301", alert.AlertMonth)
	assert.Equal(t, "Rapid movement of funds", alert.Description)
	assert.Equal(t, model.Period{Start: "01/01/2023", End: "03/31/2023"}, alert.ReviewPeriod)

	require.Len(t, rec.Subjects, 1)
	s := rec.Subjects[0]
	assert.Equal(t, "JOHN Q PUBLIC", s.Name)
	assert.True(t, s.IsPrimary)
	assert.Equal(t, "12345", s.PartyKey)
	assert.Equal(t, "Engineer", s.Occupation)
	assert.Equal(t, "ACME CORP", s.Employer)
	assert.Equal(t, "1 Main St springfield, IL", s.Address)
	assert.Equal(t, "Primary Owner", s.AccountRelationship)

	require.Len(t, rec.Accounts, 1)
	a := rec.Accounts[0]
	assert.Equal(t, "987654321", a.AccountNumber)
	assert.Equal(t, "Checking", a.AccountType)
	assert.Equal(t, "01/05/2020", a.OpenDate)
	assert.Equal(t, "02/01/2024", a.CloseDate)
	assert.Equal(t, "CLOSED", a.Status)

	assert.Empty(t, rec.PriorCases)
}

func TestNormalize_TextAddressContinuation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"indented capitalized city", "Address: 123 Main St\n Springfield IL 62701\nOccupation: Engineer", "123 Main St Springfield IL 62701"},
		{"tab indented", "Address: 9 Elm Rd\n\tApt 4\nEmployer: ACME", "9 Elm Rd Apt 4"},
		{"lowercase line", "Address: 1 Main St\nspringfield, IL\nEmployer: ACME", "1 Main St springfield, IL"},
		{"capital marker stops", "Address: 1 Main St\nSpringfield IL\nEmployer: ACME", "1 Main St"},
		{"blank line stops", "Address: 1 Main St\n\n 2 Other St", "1 Main St"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(fetcher.FromText("Customer Information\nJOHN SMITH (Primary Owner)\n" + tt.text + "\n"))
			require.Len(t, rec.Subjects, 1)
			assert.Equal(t, tt.want, rec.Subjects[0].Address)
		})
	}
}

func TestNormalize_TextBareCaseNumber(t *testing.T) {
	rec := Normalize(fetcher.FromText("Referral regarding AML1234567 activity"))
	assert.Equal(t, "AML1234567", rec.CaseNumber)
}

// --- helpers ---

func TestRelatedParty(t *testing.T) {
	assert.Equal(t, model.RelatedParty{Name: "JANE DOE", Role: "Signer"}, relatedParty("JANE DOE (Signer)"))
	assert.Equal(t, model.RelatedParty{Name: "NO ROLE"}, relatedParty("NO ROLE"))
	assert.Equal(t, model.RelatedParty{Name: "A", Role: "B"}, relatedParty(map[string]any{"name": "A", "role": "B"}))
}

func TestSplitPeriod(t *testing.T) {
	assert.Equal(t, model.Period{Start: "01/01/2023", End: "03/31/2023"}, SplitPeriod("01/01/2023 - 03/31/2023"))
	assert.Equal(t, model.Period{Start: "01/01/2023", End: "03/31/2023"}, SplitPeriod("01/01/2023 – 03/31/2023"))
	assert.True(t, SplitPeriod("01/01/2023").IsZero())
}
