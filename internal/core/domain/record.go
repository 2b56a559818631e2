package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind tags the closed set of domain records the engine knows how to map
// into ledger entries.
type RecordKind string

const (
	KindInvoice    RecordKind = "INVOICE"
	KindCreditNote RecordKind = "CREDIT_NOTE"
	KindPayment    RecordKind = "PAYMENT"
	KindExpense    RecordKind = "EXPENSE"
)

// InvoiceStatus indicates the payment state of an invoice.
type InvoiceStatus string

const (
	StatusDraft         InvoiceStatus = "DRAFT"
	StatusSent          InvoiceStatus = "SENT"
	StatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	StatusPaid          InvoiceStatus = "PAID"
	StatusCancelled     InvoiceStatus = "CANCELLED"
)

var ErrCreditNoteAlreadyApplied = errors.New("credit note already applied to this invoice")

// DocumentLine is a single line item on an invoice or credit note.
type DocumentLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"` // Tax-exclusive, in the document currency
	VATRate     decimal.Decimal `json:"vatRate"`   // Percentage, e.g. 20 or 5.5
}

// NetAmount returns the tax-exclusive amount of the line at full precision.
func (l DocumentLine) NetAmount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// TaxAmount returns the VAT amount of the line at full precision.
func (l DocumentLine) TaxAmount() decimal.Decimal {
	return l.NetAmount().Mul(l.VATRate).Div(decimal.NewFromInt(100))
}

// Invoice is a validated sales document handed to the engine by the calling layer.
type Invoice struct {
	InvoiceID          string          `json:"invoiceID"`
	AccountID          string          `json:"accountID"` // Owning tenant
	Number             string          `json:"number"`    // Piece reference, e.g. "INV-2026-0042"
	ClientID           string          `json:"clientID"`
	ClientName         string          `json:"clientName"`
	ProjectID          string          `json:"projectID"` // Optional
	IssueDate          time.Time       `json:"issueDate"`
	DueDate            time.Time       `json:"dueDate"`
	CurrencyCode       string          `json:"currencyCode"`
	Status             InvoiceStatus   `json:"status"`
	AmountPaid         decimal.Decimal `json:"amountPaid"` // Tax-inclusive, in the invoice currency
	Lines              []DocumentLine  `json:"lines"`
	AppliedCreditNotes []string        `json:"appliedCreditNotes"` // CreditNote IDs already netted in
	AuditFields
}

// TotalExclTax sums the tax-exclusive line amounts at full precision.
func (inv Invoice) TotalExclTax() decimal.Decimal {
	total := decimal.Zero
	for _, l := range inv.Lines {
		total = total.Add(l.NetAmount())
	}
	return total
}

// TotalTax sums the VAT amounts of all lines at full precision.
func (inv Invoice) TotalTax() decimal.Decimal {
	total := decimal.Zero
	for _, l := range inv.Lines {
		total = total.Add(l.TaxAmount())
	}
	return total
}

// TotalInclTax is the tax-inclusive invoice total.
func (inv Invoice) TotalInclTax() decimal.Decimal {
	return inv.TotalExclTax().Add(inv.TotalTax())
}

// RemainingDue is the tax-inclusive amount still unpaid.
func (inv Invoice) RemainingDue() decimal.Decimal {
	return inv.TotalInclTax().Sub(inv.AmountPaid)
}

// VATBreakdown groups line amounts by normalized VAT rate key.
// The map value holds (tax-exclusive base, tax amount) per bucket.
func (inv Invoice) VATBreakdown() map[string]TaxBucketAmounts {
	buckets := make(map[string]TaxBucketAmounts)
	for _, l := range inv.Lines {
		key := NormalizeRateKey(l.VATRate)
		b := buckets[key]
		b.Rate = l.VATRate
		b.Base = b.Base.Add(l.NetAmount())
		b.Tax = b.Tax.Add(l.TaxAmount())
		buckets[key] = b
	}
	return buckets
}

// ApplyCreditNote nets a credit note against the invoice balance. The credited
// amount counts as paid; status moves to PARTIALLY_PAID or PAID accordingly.
// Re-applying the same credit note fails.
func (inv *Invoice) ApplyCreditNote(cn CreditNote) error {
	for _, id := range inv.AppliedCreditNotes {
		if id == cn.CreditNoteID {
			return fmt.Errorf("%w: credit note %s on invoice %s", ErrCreditNoteAlreadyApplied, cn.CreditNoteID, inv.InvoiceID)
		}
	}
	if cn.CurrencyCode != inv.CurrencyCode {
		return fmt.Errorf("credit note currency %s does not match invoice currency %s", cn.CurrencyCode, inv.CurrencyCode)
	}
	inv.AmountPaid = inv.AmountPaid.Add(cn.TotalInclTax())
	inv.AppliedCreditNotes = append(inv.AppliedCreditNotes, cn.CreditNoteID)
	if inv.RemainingDue().LessThanOrEqual(decimal.Zero) {
		inv.Status = StatusPaid
	} else {
		inv.Status = StatusPartiallyPaid
	}
	return nil
}

// CreditNote mirrors an invoice with reversed accounting effect.
type CreditNote struct {
	CreditNoteID string         `json:"creditNoteID"`
	AccountID    string         `json:"accountID"`
	Number       string         `json:"number"`
	ClientID     string         `json:"clientID"`
	ClientName   string         `json:"clientName"`
	InvoiceID    string         `json:"invoiceID"` // Invoice being credited, optional
	IssueDate    time.Time      `json:"issueDate"`
	CurrencyCode string         `json:"currencyCode"`
	Lines        []DocumentLine `json:"lines"`
	AuditFields
}

// TotalExclTax sums the tax-exclusive line amounts at full precision.
func (cn CreditNote) TotalExclTax() decimal.Decimal {
	total := decimal.Zero
	for _, l := range cn.Lines {
		total = total.Add(l.NetAmount())
	}
	return total
}

// TotalTax sums the VAT amounts of all lines at full precision.
func (cn CreditNote) TotalTax() decimal.Decimal {
	total := decimal.Zero
	for _, l := range cn.Lines {
		total = total.Add(l.TaxAmount())
	}
	return total
}

// TotalInclTax is the tax-inclusive credit note total.
func (cn CreditNote) TotalInclTax() decimal.Decimal {
	return cn.TotalExclTax().Add(cn.TotalTax())
}

// VATBreakdown groups line amounts by normalized VAT rate key.
func (cn CreditNote) VATBreakdown() map[string]TaxBucketAmounts {
	buckets := make(map[string]TaxBucketAmounts)
	for _, l := range cn.Lines {
		key := NormalizeRateKey(l.VATRate)
		b := buckets[key]
		b.Rate = l.VATRate
		b.Base = b.Base.Add(l.NetAmount())
		b.Tax = b.Tax.Add(l.TaxAmount())
		buckets[key] = b
	}
	return buckets
}

// Payment records money received against an invoice, in the invoice currency.
type Payment struct {
	PaymentID    string          `json:"paymentID"`
	AccountID    string          `json:"accountID"`
	InvoiceID    string          `json:"invoiceID"`
	Reference    string          `json:"reference"` // Piece reference, e.g. invoice number
	ClientID     string          `json:"clientID"`
	ClientName   string          `json:"clientName"`
	PaymentDate  time.Time       `json:"paymentDate"`
	Amount       decimal.Decimal `json:"amount"` // Tax-inclusive, never converted
	CurrencyCode string          `json:"currencyCode"`
	AuditFields
}

// Expense is a purchase handed to the engine by the calling layer.
type Expense struct {
	ExpenseID     string          `json:"expenseID"`
	AccountID     string          `json:"accountID"`
	Reference     string          `json:"reference"`
	SupplierID    string          `json:"supplierID"`
	SupplierName  string          `json:"supplierName"`
	ProjectID     string          `json:"projectID"` // Optional, for profitability allocation
	Date          time.Time       `json:"date"`
	CurrencyCode  string          `json:"currencyCode"`
	AmountExclTax decimal.Decimal `json:"amountExclTax"`
	VATRate       decimal.Decimal `json:"vatRate"`
	VATDeductible bool            `json:"vatDeductible"` // Whether the VAT can be reclaimed
	PaidFromBank  bool            `json:"paidFromBank"`  // Credit bank instead of supplier account
	AuditFields
}

// VATAmount returns the expense VAT at full precision.
func (e Expense) VATAmount() decimal.Decimal {
	return e.AmountExclTax.Mul(e.VATRate).Div(decimal.NewFromInt(100))
}

// TotalInclTax is the tax-inclusive expense total.
func (e Expense) TotalInclTax() decimal.Decimal {
	return e.AmountExclTax.Add(e.VATAmount())
}

// AccountingRecord is the closed tagged variant over the record kinds the
// ledger mapper accepts. Exactly one of the pointers matching Kind is set.
type AccountingRecord struct {
	Kind       RecordKind
	Invoice    *Invoice
	CreditNote *CreditNote
	Payment    *Payment
	Expense    *Expense
}

// Date returns the accounting date of the underlying record.
func (r AccountingRecord) Date() time.Time {
	switch r.Kind {
	case KindInvoice:
		return r.Invoice.IssueDate
	case KindCreditNote:
		return r.CreditNote.IssueDate
	case KindPayment:
		return r.Payment.PaymentDate
	case KindExpense:
		return r.Expense.Date
	}
	return time.Time{}
}

// RecordedAt returns the creation timestamp, used as the ordering tiebreaker.
func (r AccountingRecord) RecordedAt() time.Time {
	switch r.Kind {
	case KindInvoice:
		return r.Invoice.CreatedAt
	case KindCreditNote:
		return r.CreditNote.CreatedAt
	case KindPayment:
		return r.Payment.CreatedAt
	case KindExpense:
		return r.Expense.CreatedAt
	}
	return time.Time{}
}
