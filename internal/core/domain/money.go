package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MonetaryAmount couples a decimal value with its ISO 4217 currency code.
// Arithmetic across different currencies is forbidden without explicit conversion.
type MonetaryAmount struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMonetaryAmount builds a MonetaryAmount from a decimal and a currency code.
func NewMonetaryAmount(amount decimal.Decimal, currencyCode string) MonetaryAmount {
	return MonetaryAmount{Amount: amount, CurrencyCode: currencyCode}
}

// Add sums two amounts of the same currency. Mixing currencies is an error.
func (m MonetaryAmount) Add(other MonetaryAmount) (MonetaryAmount, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return MonetaryAmount{}, fmt.Errorf("cannot add %s amount to %s amount without conversion", other.CurrencyCode, m.CurrencyCode)
	}
	return MonetaryAmount{Amount: m.Amount.Add(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// Rounded returns the amount rounded half-up to 2 fractional digits.
// Only output boundaries should round; intermediate sums keep full precision.
func (m MonetaryAmount) Rounded() decimal.Decimal {
	return m.Amount.Round(2)
}

// IsZero reports whether the amount is exactly zero.
func (m MonetaryAmount) IsZero() bool {
	return m.Amount.IsZero()
}
