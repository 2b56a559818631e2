package domain_test

import (
	"testing"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testLine(net string, rate string) domain.DocumentLine {
	return domain.DocumentLine{
		Description: "Line",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.RequireFromString(net),
		VATRate:     decimal.RequireFromString(rate),
	}
}

func TestInvoice_Totals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []domain.DocumentLine
		wantNet      string
		wantTax      string
		wantGross    string
	}{
		{
			name:      "single standard-rated line",
			lines:     []domain.DocumentLine{testLine("1000.00", "20")},
			wantNet:   "1000",
			wantTax:   "200",
			wantGross: "1200",
		},
		{
			name: "mixed rates accumulate per line",
			lines: []domain.DocumentLine{
				testLine("100.00", "20"),
				testLine("200.00", "5.5"),
				testLine("50.00", "0"),
			},
			wantNet:   "350",
			wantTax:   "31",
			wantGross: "381",
		},
		{
			name: "fractional quantity kept at full precision",
			lines: []domain.DocumentLine{
				{Description: "Hours", Quantity: decimal.RequireFromString("2.5"), UnitPrice: decimal.RequireFromString("33.33"), VATRate: decimal.NewFromInt(20)},
			},
			wantNet:   "83.325",
			wantTax:   "16.665",
			wantGross: "99.99",
		},
		{
			name:      "no lines",
			lines:     nil,
			wantNet:   "0",
			wantTax:   "0",
			wantGross: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := domain.Invoice{Lines: tt.lines}
			assert.True(t, inv.TotalExclTax().Equal(decimal.RequireFromString(tt.wantNet)), "net: got %s", inv.TotalExclTax())
			assert.True(t, inv.TotalTax().Equal(decimal.RequireFromString(tt.wantTax)), "tax: got %s", inv.TotalTax())
			assert.True(t, inv.TotalInclTax().Equal(decimal.RequireFromString(tt.wantGross)), "gross: got %s", inv.TotalInclTax())
		})
	}
}

func TestInvoice_VATBreakdown(t *testing.T) {
	inv := domain.Invoice{
		Lines: []domain.DocumentLine{
			testLine("100.00", "20"),
			testLine("300.00", "20.0"), // Same bucket as "20"
			testLine("200.00", "5.5"),
		},
	}

	buckets := inv.VATBreakdown()

	assert.Len(t, buckets, 2)
	assert.True(t, buckets["20"].Base.Equal(decimal.RequireFromString("400")), "got %s", buckets["20"].Base)
	assert.True(t, buckets["20"].Tax.Equal(decimal.RequireFromString("80")))
	assert.True(t, buckets["5.5"].Base.Equal(decimal.RequireFromString("200")))
	assert.True(t, buckets["5.5"].Tax.Equal(decimal.RequireFromString("11")))
}

func TestInvoice_RemainingDue(t *testing.T) {
	inv := domain.Invoice{
		Lines:      []domain.DocumentLine{testLine("1000.00", "20")},
		AmountPaid: decimal.RequireFromString("450.00"),
	}
	assert.True(t, inv.RemainingDue().Equal(decimal.RequireFromString("750")))
}

func TestInvoice_ApplyCreditNote(t *testing.T) {
	newInvoice := func() domain.Invoice {
		return domain.Invoice{
			InvoiceID:    "inv-1",
			CurrencyCode: "EUR",
			Status:       domain.StatusSent,
			AmountPaid:   decimal.Zero,
			Lines:        []domain.DocumentLine{testLine("1000.00", "20")}, // Gross 1200
		}
	}
	creditNote := func(id, gross string) domain.CreditNote {
		return domain.CreditNote{
			CreditNoteID: id,
			CurrencyCode: "EUR",
			Lines:        []domain.DocumentLine{testLine(gross, "0")},
		}
	}

	t.Run("partial credit moves to partially paid", func(t *testing.T) {
		inv := newInvoice()
		err := inv.ApplyCreditNote(creditNote("cn-1", "300.00"))

		assert.NoError(t, err)
		assert.Equal(t, domain.StatusPartiallyPaid, inv.Status)
		assert.True(t, inv.AmountPaid.Equal(decimal.RequireFromString("300")))
		assert.True(t, inv.RemainingDue().Equal(decimal.RequireFromString("900")))
	})

	t.Run("full credit moves to paid", func(t *testing.T) {
		inv := newInvoice()
		err := inv.ApplyCreditNote(creditNote("cn-1", "1200.00"))

		assert.NoError(t, err)
		assert.Equal(t, domain.StatusPaid, inv.Status)
		assert.True(t, inv.RemainingDue().IsZero())
	})

	t.Run("reapplying the same credit note fails", func(t *testing.T) {
		inv := newInvoice()
		cn := creditNote("cn-1", "300.00")

		assert.NoError(t, inv.ApplyCreditNote(cn))
		err := inv.ApplyCreditNote(cn)

		assert.ErrorIs(t, err, domain.ErrCreditNoteAlreadyApplied)
		assert.True(t, inv.AmountPaid.Equal(decimal.RequireFromString("300")), "amount must not change on failure")
	})

	t.Run("currency mismatch fails", func(t *testing.T) {
		inv := newInvoice()
		cn := creditNote("cn-1", "300.00")
		cn.CurrencyCode = "USD"

		err := inv.ApplyCreditNote(cn)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not match invoice currency")
		assert.Equal(t, domain.StatusSent, inv.Status)
	})
}

func TestExpense_Amounts(t *testing.T) {
	e := domain.Expense{
		AmountExclTax: decimal.RequireFromString("80.00"),
		VATRate:       decimal.NewFromInt(20),
	}
	assert.True(t, e.VATAmount().Equal(decimal.RequireFromString("16")))
	assert.True(t, e.TotalInclTax().Equal(decimal.RequireFromString("96")))
}

func TestAccountingRecord_Date(t *testing.T) {
	issued := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	paid := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record domain.AccountingRecord
		want   time.Time
	}{
		{
			name:   "invoice uses issue date",
			record: domain.AccountingRecord{Kind: domain.KindInvoice, Invoice: &domain.Invoice{IssueDate: issued}},
			want:   issued,
		},
		{
			name:   "payment uses payment date",
			record: domain.AccountingRecord{Kind: domain.KindPayment, Payment: &domain.Payment{PaymentDate: paid}},
			want:   paid,
		},
		{
			name:   "expense uses expense date",
			record: domain.AccountingRecord{Kind: domain.KindExpense, Expense: &domain.Expense{Date: paid}},
			want:   paid,
		},
		{
			name:   "credit note uses issue date",
			record: domain.AccountingRecord{Kind: domain.KindCreditNote, CreditNote: &domain.CreditNote{IssueDate: issued}},
			want:   issued,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Date())
		})
	}
}
