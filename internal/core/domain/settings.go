package domain

// FieldSeparator selects the column separator of a generated export file.
type FieldSeparator string

const (
	SeparatorTab       FieldSeparator = "tab"
	SeparatorSemicolon FieldSeparator = "semicolon"
)

// Rune returns the actual separator character.
func (s FieldSeparator) Rune() rune {
	if s == SeparatorSemicolon {
		return ';'
	}
	return '\t'
}

// AccountSettings carries the per-tenant accounting configuration consumed by
// every engine component. It is passed explicitly into each call so components
// stay testable with arbitrary settings.
type AccountSettings struct {
	AccountID            string         `json:"accountID"`
	BaseCurrencyCode     string         `json:"baseCurrencyCode"`     // e.g., "EUR"
	FiscalYearStartMonth int            `json:"fiscalYearStartMonth"` // 1-12
	SalesJournalCode     string         `json:"salesJournalCode"`     // e.g., "VE"
	SalesJournalLabel    string         `json:"salesJournalLabel"`
	PurchasesJournalCode string         `json:"purchasesJournalCode"` // e.g., "AC"
	PurchasesJournalLbl  string         `json:"purchasesJournalLabel"`
	BankJournalCode      string         `json:"bankJournalCode"` // e.g., "BQ"
	BankJournalLabel     string         `json:"bankJournalLabel"`
	SalesAccountCode     string         `json:"salesAccountCode"`     // e.g., "706000"
	BankAccountCode      string         `json:"bankAccountCode"`      // e.g., "512000"
	ClientAccountCode    string         `json:"clientAccountCode"`    // e.g., "411000"
	SupplierAccountCode  string         `json:"supplierAccountCode"`  // e.g., "401000"
	ExpenseAccountCode   string         `json:"expenseAccountCode"`   // e.g., "606000"
	VATCollectedAccount  string         `json:"vatCollectedAccount"`  // e.g., "445710"
	VATDeductibleAccount string         `json:"vatDeductibleAccount"` // e.g., "445660"
	AuxAccountPrefix     string         `json:"auxAccountPrefix"`     // Prepended to client/supplier IDs
	ExportSeparator      FieldSeparator `json:"exportSeparator"`
	DecimalComma         bool           `json:"decimalComma"` // Render monetary fields with ',' instead of '.'
}

// AuxiliaryAccount builds the auxiliary account code for a client or supplier
// identifier. With no configured prefix the identifier is used as-is.
func (s AccountSettings) AuxiliaryAccount(identifier string) string {
	if s.AuxAccountPrefix == "" {
		return identifier
	}
	return s.AuxAccountPrefix + identifier
}
