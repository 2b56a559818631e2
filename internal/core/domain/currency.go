package domain

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	Precision    int    `json:"precision"`    // Fractional digits for display (2 for most fiat)
	IsActive     bool   `json:"isActive"`     // Inactive currencies are skipped by the rate fetch job
	AuditFields
}
