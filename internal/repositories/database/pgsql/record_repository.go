package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	"github.com/facturio/fiscal_engine_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxRecordRepository implements RecordRepository using pgxpool. Domain
// records are owned by the invoicing layer; this repository only reads them.
type PgxRecordRepository struct {
	BaseRepository
}

// NewPgxRecordRepository creates a new PgxRecordRepository.
func NewPgxRecordRepository(db *pgxpool.Pool) *PgxRecordRepository {
	return &PgxRecordRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.RecordRepository = (*PgxRecordRepository)(nil)

// exportKey drives the keyset iteration across the four record tables.
type exportKey struct {
	Kind      domain.RecordKind
	ID        string
	Date      time.Time
	CreatedAt time.Time
}

// ListRecordsForExport returns one deterministic batch of records: date asc,
// then creation order. A UNION across the record tables selects the batch
// keys; each kind is then hydrated with one query.
func (r *PgxRecordRepository) ListRecordsForExport(ctx context.Context, accountID string, from, to time.Time, nextToken *string, limit int) ([]domain.AccountingRecord, *string, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT kind, id, rec_date, created_at FROM (
			SELECT 'INVOICE' AS kind, invoice_id AS id, issue_date AS rec_date, created_at
			FROM invoices
			WHERE account_id = $1 AND issue_date BETWEEN $2 AND $3 AND status NOT IN ('DRAFT', 'CANCELLED')
			UNION ALL
			SELECT 'CREDIT_NOTE', credit_note_id, issue_date, created_at
			FROM credit_notes
			WHERE account_id = $1 AND issue_date BETWEEN $2 AND $3
			UNION ALL
			SELECT 'PAYMENT', payment_id, payment_date, created_at
			FROM payments
			WHERE account_id = $1 AND payment_date BETWEEN $2 AND $3
			UNION ALL
			SELECT 'EXPENSE', expense_id, expense_date, created_at
			FROM expenses
			WHERE account_id = $1 AND expense_date BETWEEN $2 AND $3
		) records
	`
	args := []interface{}{accountID, from, to}
	if nextToken != nil {
		lastDate, lastCreated, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		query += ` WHERE (rec_date, created_at) > ($4, $5)`
		args = append(args, lastDate, lastCreated)
	}
	query += fmt.Sprintf(` ORDER BY rec_date, created_at, id LIMIT %d`, limit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list records for export", err)
	}
	defer rows.Close()

	var keys []exportKey
	idsByKind := map[domain.RecordKind][]string{}
	for rows.Next() {
		var key exportKey
		if err := rows.Scan(&key.Kind, &key.ID, &key.Date, &key.CreatedAt); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan export key", err)
		}
		keys = append(keys, key)
		idsByKind[key.Kind] = append(idsByKind[key.Kind], key.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating export keys", err)
	}
	if len(keys) == 0 {
		return nil, nil, nil
	}

	invoices, err := r.loadInvoices(ctx, idsByKind[domain.KindInvoice])
	if err != nil {
		return nil, nil, err
	}
	creditNotes, err := r.loadCreditNotes(ctx, idsByKind[domain.KindCreditNote])
	if err != nil {
		return nil, nil, err
	}
	payments, err := r.loadPayments(ctx, idsByKind[domain.KindPayment])
	if err != nil {
		return nil, nil, err
	}
	expenses, err := r.loadExpenses(ctx, idsByKind[domain.KindExpense])
	if err != nil {
		return nil, nil, err
	}

	records := make([]domain.AccountingRecord, 0, len(keys))
	for _, key := range keys {
		switch key.Kind {
		case domain.KindInvoice:
			if inv, ok := invoices[key.ID]; ok {
				records = append(records, domain.AccountingRecord{Kind: key.Kind, Invoice: inv})
			}
		case domain.KindCreditNote:
			if cn, ok := creditNotes[key.ID]; ok {
				records = append(records, domain.AccountingRecord{Kind: key.Kind, CreditNote: cn})
			}
		case domain.KindPayment:
			if p, ok := payments[key.ID]; ok {
				records = append(records, domain.AccountingRecord{Kind: key.Kind, Payment: p})
			}
		case domain.KindExpense:
			if e, ok := expenses[key.ID]; ok {
				records = append(records, domain.AccountingRecord{Kind: key.Kind, Expense: e})
			}
		}
	}

	var token *string
	if len(keys) == limit {
		last := keys[len(keys)-1]
		encoded := pagination.EncodeToken(last.Date, last.CreatedAt)
		token = &encoded
	}
	return records, token, nil
}

const invoiceColumns = `
	invoice_id, account_id, number, client_id, client_name, COALESCE(project_id, ''),
	issue_date, due_date, currency_code, status, amount_paid, created_at`

func (r *PgxRecordRepository) scanInvoices(ctx context.Context, query string, args ...interface{}) ([]domain.Invoice, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invoices", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	ids := make([]string, 0)
	for rows.Next() {
		var inv domain.Invoice
		err := rows.Scan(
			&inv.InvoiceID, &inv.AccountID, &inv.Number, &inv.ClientID, &inv.ClientName, &inv.ProjectID,
			&inv.IssueDate, &inv.DueDate, &inv.CurrencyCode, &inv.Status, &inv.AmountPaid, &inv.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invoice", err)
		}
		invoices = append(invoices, inv)
		ids = append(ids, inv.InvoiceID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating invoices", err)
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	lines, err := r.loadDocumentLines(ctx, "invoice_lines", "invoice_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Lines = lines[invoices[i].InvoiceID]
	}
	return invoices, nil
}

func (r *PgxRecordRepository) loadInvoices(ctx context.Context, ids []string) (map[string]*domain.Invoice, error) {
	out := make(map[string]*domain.Invoice, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	invoices, err := r.scanInvoices(ctx, `SELECT`+invoiceColumns+` FROM invoices WHERE invoice_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		out[invoices[i].InvoiceID] = &invoices[i]
	}
	return out, nil
}

// ListInvoices returns invoices matching the filter, issue date ascending.
func (r *PgxRecordRepository) ListInvoices(ctx context.Context, accountID string, filter portsrepo.RecordFilter) ([]domain.Invoice, error) {
	query := `SELECT` + invoiceColumns + ` FROM invoices WHERE account_id = $1 AND issue_date BETWEEN $2 AND $3`
	args := []interface{}{accountID, filter.DateFrom, filter.DateTo}
	argNum := 4
	if filter.ClientID != "" {
		query += fmt.Sprintf(" AND client_id = $%d", argNum)
		args = append(args, filter.ClientID)
		argNum++
	}
	if filter.ProjectID != "" {
		query += fmt.Sprintf(" AND project_id = $%d", argNum)
		args = append(args, filter.ProjectID)
		argNum++
	}
	query += " ORDER BY issue_date, created_at, invoice_id"
	return r.scanInvoices(ctx, query, args...)
}

// ListOpenInvoices returns invoices that are neither fully paid nor cancelled.
func (r *PgxRecordRepository) ListOpenInvoices(ctx context.Context, accountID string, asOf time.Time) ([]domain.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
		FROM invoices
		WHERE account_id = $1 AND status NOT IN ('PAID', 'CANCELLED', 'DRAFT') AND issue_date <= $2
		ORDER BY due_date, invoice_id`
	return r.scanInvoices(ctx, query, accountID, asOf)
}

const creditNoteColumns = `
	credit_note_id, account_id, number, client_id, client_name, COALESCE(invoice_id, ''),
	issue_date, currency_code, created_at`

func (r *PgxRecordRepository) scanCreditNotes(ctx context.Context, query string, args ...interface{}) ([]domain.CreditNote, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query credit notes", err)
	}
	defer rows.Close()

	var notes []domain.CreditNote
	ids := make([]string, 0)
	for rows.Next() {
		var cn domain.CreditNote
		err := rows.Scan(
			&cn.CreditNoteID, &cn.AccountID, &cn.Number, &cn.ClientID, &cn.ClientName, &cn.InvoiceID,
			&cn.IssueDate, &cn.CurrencyCode, &cn.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan credit note", err)
		}
		notes = append(notes, cn)
		ids = append(ids, cn.CreditNoteID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating credit notes", err)
	}
	if len(notes) == 0 {
		return notes, nil
	}

	lines, err := r.loadDocumentLines(ctx, "credit_note_lines", "credit_note_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		notes[i].Lines = lines[notes[i].CreditNoteID]
	}
	return notes, nil
}

func (r *PgxRecordRepository) loadCreditNotes(ctx context.Context, ids []string) (map[string]*domain.CreditNote, error) {
	out := make(map[string]*domain.CreditNote, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	notes, err := r.scanCreditNotes(ctx, `SELECT`+creditNoteColumns+` FROM credit_notes WHERE credit_note_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		out[notes[i].CreditNoteID] = &notes[i]
	}
	return out, nil
}

// ListCreditNotes returns credit notes matching the filter, issue date ascending.
func (r *PgxRecordRepository) ListCreditNotes(ctx context.Context, accountID string, filter portsrepo.RecordFilter) ([]domain.CreditNote, error) {
	query := `SELECT` + creditNoteColumns + ` FROM credit_notes WHERE account_id = $1 AND issue_date BETWEEN $2 AND $3`
	args := []interface{}{accountID, filter.DateFrom, filter.DateTo}
	if filter.ClientID != "" {
		query += " AND client_id = $4"
		args = append(args, filter.ClientID)
	}
	query += " ORDER BY issue_date, created_at, credit_note_id"
	return r.scanCreditNotes(ctx, query, args...)
}

// loadDocumentLines fetches the line items of invoices or credit notes,
// keyed by parent document ID, preserving line position.
func (r *PgxRecordRepository) loadDocumentLines(ctx context.Context, table, parentColumn string, ids []string) (map[string][]domain.DocumentLine, error) {
	query := fmt.Sprintf(`
		SELECT %s, description, quantity, unit_price, vat_rate
		FROM %s
		WHERE %s = ANY($1)
		ORDER BY %s, position`, parentColumn, table, parentColumn, parentColumn)

	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query document lines", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.DocumentLine)
	for rows.Next() {
		var parentID string
		var line domain.DocumentLine
		if err := rows.Scan(&parentID, &line.Description, &line.Quantity, &line.UnitPrice, &line.VATRate); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan document line", err)
		}
		out[parentID] = append(out[parentID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating document lines", err)
	}
	return out, nil
}

const paymentColumns = `
	payment_id, account_id, invoice_id, reference, client_id, client_name,
	payment_date, amount, currency_code, created_at`

func (r *PgxRecordRepository) loadPayments(ctx context.Context, ids []string) (map[string]*domain.Payment, error) {
	out := make(map[string]*domain.Payment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.Pool.Query(ctx, `SELECT`+paymentColumns+` FROM payments WHERE payment_id = ANY($1)`, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(
			&p.PaymentID, &p.AccountID, &p.InvoiceID, &p.Reference, &p.ClientID, &p.ClientName,
			&p.PaymentDate, &p.Amount, &p.CurrencyCode, &p.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment", err)
		}
		out[p.PaymentID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payments", err)
	}
	return out, nil
}

const expenseColumns = `
	expense_id, account_id, reference, supplier_id, supplier_name, COALESCE(project_id, ''),
	expense_date, currency_code, amount_excl_tax, vat_rate, vat_deductible, paid_from_bank, created_at`

func (r *PgxRecordRepository) scanExpenses(ctx context.Context, query string, args ...interface{}) ([]domain.Expense, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expenses", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		err := rows.Scan(
			&e.ExpenseID, &e.AccountID, &e.Reference, &e.SupplierID, &e.SupplierName, &e.ProjectID,
			&e.Date, &e.CurrencyCode, &e.AmountExclTax, &e.VATRate, &e.VATDeductible, &e.PaidFromBank, &e.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan expense", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating expenses", err)
	}
	return expenses, nil
}

func (r *PgxRecordRepository) loadExpenses(ctx context.Context, ids []string) (map[string]*domain.Expense, error) {
	out := make(map[string]*domain.Expense, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	expenses, err := r.scanExpenses(ctx, `SELECT`+expenseColumns+` FROM expenses WHERE expense_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		out[expenses[i].ExpenseID] = &expenses[i]
	}
	return out, nil
}

// ListExpenses returns expenses matching the filter, date ascending.
func (r *PgxRecordRepository) ListExpenses(ctx context.Context, accountID string, filter portsrepo.RecordFilter) ([]domain.Expense, error) {
	query := `SELECT` + expenseColumns + ` FROM expenses WHERE account_id = $1 AND expense_date BETWEEN $2 AND $3`
	args := []interface{}{accountID, filter.DateFrom, filter.DateTo}
	if filter.ProjectID != "" {
		query += " AND project_id = $4"
		args = append(args, filter.ProjectID)
	}
	query += " ORDER BY expense_date, created_at, expense_id"
	return r.scanExpenses(ctx, query, args...)
}

// ListTimeEntries returns tracked time within the range.
func (r *PgxRecordRepository) ListTimeEntries(ctx context.Context, accountID string, from, to time.Time) ([]domain.TimeEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT time_entry_id, account_id, project_id, entry_date, duration_minutes
		FROM time_entries
		WHERE account_id = $1 AND entry_date BETWEEN $2 AND $3
		ORDER BY entry_date, time_entry_id`, accountID, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query time entries", err)
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		var entry domain.TimeEntry
		if err := rows.Scan(&entry.TimeEntryID, &entry.AccountID, &entry.ProjectID, &entry.Date, &entry.DurationMinutes); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan time entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating time entries", err)
	}
	return entries, nil
}

// ListProjects returns the account's projects with billing configuration.
func (r *PgxRecordRepository) ListProjects(ctx context.Context, accountID string) ([]domain.Project, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT project_id, account_id, name, COALESCE(client_id, ''), billing_mode, hourly_rate
		FROM projects
		WHERE account_id = $1
		ORDER BY name, project_id`, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query projects", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ProjectID, &p.AccountID, &p.Name, &p.ClientID, &p.BillingMode, &p.HourlyRate); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating projects", err)
	}
	return projects, nil
}
