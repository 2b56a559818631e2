package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one row of the accounting ledger, derived on demand from a
// domain record. Entries are never persisted; they are a read-only projection.
// For a given (JournalCode, EntryNumber) group the debit and credit sums are
// equal to the cent.
type LedgerEntry struct {
	JournalCode      string          `json:"journalCode"`
	JournalLabel     string          `json:"journalLabel"`
	EntryNumber      int             `json:"entryNumber"` // Sequential per journal per export run
	Sequence         int             `json:"sequence"`    // Position within the balanced group
	EntryDate        time.Time       `json:"entryDate"`
	AccountCode      string          `json:"accountCode"`
	AccountLabel     string          `json:"accountLabel"`
	AuxiliaryAccount string          `json:"auxiliaryAccount"` // Empty unless a client/supplier sub-account applies
	AuxiliaryLabel   string          `json:"auxiliaryLabel"`
	PieceReference   string          `json:"pieceReference"`
	PieceDate        time.Time       `json:"pieceDate"`
	Label            string          `json:"label"`
	Debit            decimal.Decimal `json:"debit"`
	Credit           decimal.Decimal `json:"credit"`
	CurrencyCode     string          `json:"currencyCode"`   // Original document currency
	CurrencyAmount   decimal.Decimal `json:"currencyAmount"` // Amount in the original currency, zero when already base
}
