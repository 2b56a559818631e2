package models

// Currency is the database row for a supported currency.
type Currency struct {
	CurrencyCode string `json:"currencyCode"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int    `json:"precision"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}
