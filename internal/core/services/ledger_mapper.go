package services

import (
	"fmt"
	"sort"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryNumberer hands out sequential entry numbers per journal code for one
// export run. All rows of a balanced group share the number.
type EntryNumberer struct {
	counters map[string]int
}

// NewEntryNumberer creates a fresh numberer for an export run.
func NewEntryNumberer() *EntryNumberer {
	return &EntryNumberer{counters: make(map[string]int)}
}

// Next returns the next entry number for the journal.
func (n *EntryNumberer) Next(journalCode string) int {
	n.counters[journalCode]++
	return n.counters[journalCode]
}

// LedgerMapper maps a single domain record into one balanced group of ledger
// entries. It is pure: only the record and the account settings feed it.
type LedgerMapper struct{}

// NewLedgerMapper creates a new LedgerMapper.
func NewLedgerMapper() *LedgerMapper {
	return &LedgerMapper{}
}

// ValidateSettings checks the journal/account configuration an export needs.
// Exports fail fast on the first missing field, before any byte is streamed.
func (m *LedgerMapper) ValidateSettings(settings domain.AccountSettings) error {
	required := []struct {
		value string
		name  string
	}{
		{settings.SalesJournalCode, "sales journal code"},
		{settings.PurchasesJournalCode, "purchases journal code"},
		{settings.BankJournalCode, "bank journal code"},
		{settings.SalesAccountCode, "sales account code"},
		{settings.BankAccountCode, "bank account code"},
		{settings.ClientAccountCode, "client account code"},
		{settings.SupplierAccountCode, "supplier account code"},
		{settings.ExpenseAccountCode, "expense account code"},
		{settings.VATCollectedAccount, "VAT collected account"},
		{settings.VATDeductibleAccount, "VAT deductible account"},
		{settings.BaseCurrencyCode, "base currency"},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: missing %s", apperrors.ErrConfiguration, r.name)
		}
	}
	return nil
}

// MapRecord dispatches on the record kind. The returned group always balances:
// the tax-inclusive counterpart line is computed as the sum of the rounded
// net and tax lines, never rounded independently.
func (m *LedgerMapper) MapRecord(settings domain.AccountSettings, rec domain.AccountingRecord, numberer *EntryNumberer) ([]domain.LedgerEntry, error) {
	switch rec.Kind {
	case domain.KindInvoice:
		return m.mapInvoice(settings, *rec.Invoice, numberer)
	case domain.KindCreditNote:
		return m.mapCreditNote(settings, *rec.CreditNote, numberer)
	case domain.KindPayment:
		return m.mapPayment(settings, *rec.Payment, numberer)
	case domain.KindExpense:
		return m.mapExpense(settings, *rec.Expense, numberer)
	default:
		return nil, fmt.Errorf("%w: unknown record kind %q", apperrors.ErrValidation, rec.Kind)
	}
}

// sortedBuckets returns VAT buckets ordered by ascending rate, so groups are
// emitted in a stable, reproducible order.
func sortedBuckets(buckets map[string]domain.TaxBucketAmounts) []domain.TaxBucketAmounts {
	out := make([]domain.TaxBucketAmounts, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rate.LessThan(out[j].Rate) })
	return out
}

func (m *LedgerMapper) mapInvoice(settings domain.AccountSettings, inv domain.Invoice, numberer *EntryNumberer) ([]domain.LedgerEntry, error) {
	if inv.ClientID == "" {
		return nil, fmt.Errorf("%w: invoice %s has no client identifier", apperrors.ErrConfiguration, inv.InvoiceID)
	}

	entryNumber := numberer.Next(settings.SalesJournalCode)
	label := fmt.Sprintf("Invoice %s - %s", inv.Number, inv.ClientName)

	base := domain.LedgerEntry{
		JournalCode:    settings.SalesJournalCode,
		JournalLabel:   settings.SalesJournalLabel,
		EntryNumber:    entryNumber,
		EntryDate:      inv.IssueDate,
		PieceReference: inv.Number,
		PieceDate:      inv.IssueDate,
		Label:          label,
		CurrencyCode:   inv.CurrencyCode,
	}

	net := inv.TotalExclTax().Round(2)
	taxLines := make([]domain.LedgerEntry, 0, 4)
	gross := net
	for _, bucket := range sortedBuckets(inv.VATBreakdown()) {
		tax := bucket.Tax.Round(2)
		if tax.IsZero() {
			continue
		}
		gross = gross.Add(tax)
		line := base
		line.AccountCode = settings.VATCollectedAccount
		line.AccountLabel = fmt.Sprintf("VAT collected %s%%", domain.NormalizeRateKey(bucket.Rate))
		line.Credit = tax
		line.Debit = decimal.Zero
		taxLines = append(taxLines, line)
	}

	receivable := base
	receivable.Sequence = 1
	receivable.AccountCode = settings.ClientAccountCode
	receivable.AccountLabel = "Clients"
	receivable.AuxiliaryAccount = settings.AuxiliaryAccount(inv.ClientID)
	receivable.AuxiliaryLabel = inv.ClientName
	receivable.Debit = gross
	receivable.Credit = decimal.Zero

	sales := base
	sales.Sequence = 2
	sales.AccountCode = settings.SalesAccountCode
	sales.AccountLabel = "Sales"
	sales.Credit = net
	sales.Debit = decimal.Zero

	entries := []domain.LedgerEntry{receivable, sales}
	for _, line := range taxLines {
		line.Sequence = len(entries) + 1
		entries = append(entries, line)
	}
	return entries, nil
}

func (m *LedgerMapper) mapCreditNote(settings domain.AccountSettings, cn domain.CreditNote, numberer *EntryNumberer) ([]domain.LedgerEntry, error) {
	if cn.ClientID == "" {
		return nil, fmt.Errorf("%w: credit note %s has no client identifier", apperrors.ErrConfiguration, cn.CreditNoteID)
	}

	entryNumber := numberer.Next(settings.SalesJournalCode)
	label := fmt.Sprintf("Credit note %s - %s", cn.Number, cn.ClientName)

	base := domain.LedgerEntry{
		JournalCode:    settings.SalesJournalCode,
		JournalLabel:   settings.SalesJournalLabel,
		EntryNumber:    entryNumber,
		EntryDate:      cn.IssueDate,
		PieceReference: cn.Number,
		PieceDate:      cn.IssueDate,
		Label:          label,
		CurrencyCode:   cn.CurrencyCode,
	}

	net := cn.TotalExclTax().Round(2)
	taxLines := make([]domain.LedgerEntry, 0, 4)
	gross := net
	for _, bucket := range sortedBuckets(cn.VATBreakdown()) {
		tax := bucket.Tax.Round(2)
		if tax.IsZero() {
			continue
		}
		gross = gross.Add(tax)
		line := base
		line.AccountCode = settings.VATCollectedAccount
		line.AccountLabel = fmt.Sprintf("VAT collected %s%%", domain.NormalizeRateKey(bucket.Rate))
		line.Debit = tax
		line.Credit = decimal.Zero
		taxLines = append(taxLines, line)
	}

	receivable := base
	receivable.Sequence = 1
	receivable.AccountCode = settings.ClientAccountCode
	receivable.AccountLabel = "Clients"
	receivable.AuxiliaryAccount = settings.AuxiliaryAccount(cn.ClientID)
	receivable.AuxiliaryLabel = cn.ClientName
	receivable.Credit = gross
	receivable.Debit = decimal.Zero

	sales := base
	sales.Sequence = 2
	sales.AccountCode = settings.SalesAccountCode
	sales.AccountLabel = "Sales"
	sales.Debit = net
	sales.Credit = decimal.Zero

	entries := []domain.LedgerEntry{receivable, sales}
	for _, line := range taxLines {
		line.Sequence = len(entries) + 1
		entries = append(entries, line)
	}
	return entries, nil
}

func (m *LedgerMapper) mapPayment(settings domain.AccountSettings, p domain.Payment, numberer *EntryNumberer) ([]domain.LedgerEntry, error) {
	if p.ClientID == "" {
		return nil, fmt.Errorf("%w: payment %s has no client identifier", apperrors.ErrConfiguration, p.PaymentID)
	}

	entryNumber := numberer.Next(settings.BankJournalCode)
	amount := p.Amount.Round(2)
	label := fmt.Sprintf("Payment %s - %s", p.Reference, p.ClientName)

	base := domain.LedgerEntry{
		JournalCode:    settings.BankJournalCode,
		JournalLabel:   settings.BankJournalLabel,
		EntryNumber:    entryNumber,
		EntryDate:      p.PaymentDate,
		PieceReference: p.Reference,
		PieceDate:      p.PaymentDate,
		Label:          label,
		CurrencyCode:   p.CurrencyCode,
	}

	bank := base
	bank.Sequence = 1
	bank.AccountCode = settings.BankAccountCode
	bank.AccountLabel = "Bank"
	bank.Debit = amount
	bank.Credit = decimal.Zero

	client := base
	client.Sequence = 2
	client.AccountCode = settings.ClientAccountCode
	client.AccountLabel = "Clients"
	client.AuxiliaryAccount = settings.AuxiliaryAccount(p.ClientID)
	client.AuxiliaryLabel = p.ClientName
	client.Credit = amount
	client.Debit = decimal.Zero

	return []domain.LedgerEntry{bank, client}, nil
}

func (m *LedgerMapper) mapExpense(settings domain.AccountSettings, e domain.Expense, numberer *EntryNumberer) ([]domain.LedgerEntry, error) {
	if e.SupplierID == "" && !e.PaidFromBank {
		return nil, fmt.Errorf("%w: expense %s has neither supplier nor bank settlement", apperrors.ErrConfiguration, e.ExpenseID)
	}

	entryNumber := numberer.Next(settings.PurchasesJournalCode)
	label := fmt.Sprintf("Expense %s - %s", e.Reference, e.SupplierName)

	base := domain.LedgerEntry{
		JournalCode:    settings.PurchasesJournalCode,
		JournalLabel:   settings.PurchasesJournalLbl,
		EntryNumber:    entryNumber,
		EntryDate:      e.Date,
		PieceReference: e.Reference,
		PieceDate:      e.Date,
		Label:          label,
		CurrencyCode:   e.CurrencyCode,
	}

	net := e.AmountExclTax.Round(2)
	gross := net

	charge := base
	charge.Sequence = 1
	charge.AccountCode = settings.ExpenseAccountCode
	charge.AccountLabel = "Purchases"
	charge.Debit = net
	charge.Credit = decimal.Zero
	entries := []domain.LedgerEntry{charge}

	if e.VATDeductible {
		tax := e.VATAmount().Round(2)
		if !tax.IsZero() {
			gross = gross.Add(tax)
			vat := base
			vat.Sequence = 2
			vat.AccountCode = settings.VATDeductibleAccount
			vat.AccountLabel = fmt.Sprintf("VAT deductible %s%%", domain.NormalizeRateKey(e.VATRate))
			vat.Debit = tax
			vat.Credit = decimal.Zero
			entries = append(entries, vat)
		}
	} else {
		// Non-deductible VAT stays in the charge
		tax := e.VATAmount().Round(2)
		gross = gross.Add(tax)
		entries[0].Debit = entries[0].Debit.Add(tax)
	}

	settlement := base
	settlement.Sequence = len(entries) + 1
	if e.PaidFromBank {
		settlement.AccountCode = settings.BankAccountCode
		settlement.AccountLabel = "Bank"
	} else {
		settlement.AccountCode = settings.SupplierAccountCode
		settlement.AccountLabel = "Suppliers"
		settlement.AuxiliaryAccount = settings.AuxiliaryAccount(e.SupplierID)
		settlement.AuxiliaryLabel = e.SupplierName
	}
	settlement.Credit = gross
	settlement.Debit = decimal.Zero
	entries = append(entries, settlement)

	return entries, nil
}
