package domain

// Format is the declared file format of an uploaded document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// EmploymentType of the uploading account, passed through to the AI prompt so
// classification can lean towards the right deduction buckets.
type EmploymentType string

const (
	EmploymentSalaried      EmploymentType = "salaried"
	EmploymentSelfEmployed  EmploymentType = "self-employed"
	EmploymentBusinessOwner EmploymentType = "business-owner"
)

// AccountType distinguishes personal from business statements.
type AccountType string

const (
	AccountPersonal AccountType = "personal"
	AccountBusiness AccountType = "business"
	AccountMixed    AccountType = "mixed"
)

// ImportRule is one user-supplied keyword to category override. Rules are
// checked before the built-in keyword lists, in the order the user gave them.
type ImportRule struct {
	Keyword  string   `json:"keyword"`
	Category Category `json:"category"`
}

// AccountContext is the caller-provided context for one extraction call.
type AccountContext struct {
	AccountID      string         `json:"account_id"`
	EmploymentType EmploymentType `json:"employment_type"`
	AccountType    AccountType    `json:"account_type"`
	ImportRules    []ImportRule   `json:"import_rules,omitempty"`
}

// DocumentContext is built once per document and thrown away afterwards.
// Year is the statement year inferred from the document header; zero means
// no year was found and the current year applies to yearless dates.
type DocumentContext struct {
	Format  Format
	Year    int
	Account AccountContext
}
