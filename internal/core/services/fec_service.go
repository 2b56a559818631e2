package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/utils"
	"github.com/shopspring/decimal"
)

// fecColumns is the mandated FEC column order.
var fecColumns = []string{
	"JournalCode", "JournalLib", "EcritureNum", "EcritureDate",
	"CompteNum", "CompteLib", "CompAuxNum", "CompAuxLib",
	"PieceRef", "PieceDate", "EcritureLib", "Debit", "Credit",
	"EcritureLet", "DateLet", "ValidDate", "Montantdevise", "Idevise",
}

// exportBatchSize bounds how many records one storage read pulls.
const exportBatchSize = 200

const fecDateLayout = "20060102"

// fecService streams the FEC regulatory export, pulling records lazily and
// flattening each record's balanced group before advancing.
type fecService struct {
	BaseService
	recordRepo   portsrepo.RecordRepository
	settingsRepo portsrepo.SettingsRepository
	rateSvc      portssvc.RateSvcFacade
	mapper       *LedgerMapper
}

// NewFECService creates a new FEC export service.
func NewFECService(recordRepo portsrepo.RecordRepository, settingsRepo portsrepo.SettingsRepository, rateSvc portssvc.RateSvcFacade) portssvc.FECSvcFacade {
	return &fecService{
		recordRepo:   recordRepo,
		settingsRepo: settingsRepo,
		rateSvc:      rateSvc,
		mapper:       NewLedgerMapper(),
	}
}

var _ portssvc.FECSvcFacade = (*fecService)(nil)

// Stream writes the header then one line per ledger entry. Configuration is
// validated before the first byte so the export either fully starts or fails
// with nothing written.
func (s *fecService) Stream(ctx context.Context, accountID string, from, to time.Time, w io.Writer) error {
	settings, err := s.loadSettings(ctx, accountID)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	sep := string(settings.ExportSeparator.Rune())
	if _, err := bw.WriteString(strings.Join(fecColumns, sep) + "\r\n"); err != nil {
		return fmt.Errorf("failed to write FEC header: %w", err)
	}

	lines := 0
	err = s.walkEntries(ctx, *settings, from, to, func(entry domain.LedgerEntry) error {
		if _, werr := bw.WriteString(s.formatLine(*settings, entry, sep) + "\r\n"); werr != nil {
			return fmt.Errorf("failed to write FEC line: %w", werr)
		}
		lines++
		return nil
	})
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush FEC output: %w", err)
	}

	s.LogInfo(ctx, "FEC export generated",
		slog.String("account_id", accountID),
		slog.String("from", from.Format("2006-01-02")),
		slog.String("to", to.Format("2006-01-02")),
		slog.Int("lines", lines))
	return nil
}

// Count returns the number of data lines Stream would produce, without
// formatting anything. Used as a cheap pre-flight before a download.
func (s *fecService) Count(ctx context.Context, accountID string, from, to time.Time) (int, error) {
	settings, err := s.loadSettings(ctx, accountID)
	if err != nil {
		return 0, err
	}

	count := 0
	err = s.walkEntries(ctx, *settings, from, to, func(domain.LedgerEntry) error {
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *fecService) loadSettings(ctx context.Context, accountID string) (*domain.AccountSettings, error) {
	settings, err := s.settingsRepo.GetAccountSettings(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account settings: %w", err)
	}
	if err := s.mapper.ValidateSettings(*settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// walkEntries pulls records in batches through the keyset cursor, maps each
// record to its balanced group, converts foreign-currency groups to the base
// currency and yields entries one by one. The sequence is consumed once; a
// mapping or conversion failure aborts the whole walk.
func (s *fecService) walkEntries(ctx context.Context, settings domain.AccountSettings, from, to time.Time, yield func(domain.LedgerEntry) error) error {
	return walkLedgerEntries(ctx, s.recordRepo, s.rateSvc, s.mapper, settings, from, to, yield)
}

// walkLedgerEntries is the shared lazy traversal behind the FEC generator and
// the accounting format adapter.
func walkLedgerEntries(ctx context.Context, recordRepo portsrepo.RecordRepository, rateSvc portssvc.RateSvcFacade, mapper *LedgerMapper, settings domain.AccountSettings, from, to time.Time, yield func(domain.LedgerEntry) error) error {
	numberer := NewEntryNumberer()
	var nextToken *string
	for {
		records, token, err := recordRepo.ListRecordsForExport(ctx, settings.AccountID, from, to, nextToken, exportBatchSize)
		if err != nil {
			return fmt.Errorf("failed to read records for export: %w", err)
		}
		for _, rec := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			group, err := mapper.MapRecord(settings, rec, numberer)
			if err != nil {
				return err
			}
			group, err = convertGroup(ctx, rateSvc, settings, group)
			if err != nil {
				return err
			}
			for _, entry := range group {
				if err := yield(entry); err != nil {
					return err
				}
			}
		}
		if token == nil {
			return nil
		}
		nextToken = token
	}
}

// convertGroup rewrites a balanced group into the account base currency. The
// original amounts are kept in CurrencyAmount for the Montantdevise column.
// Per-line rounding can leave a one-cent residual between the debit and credit
// sides; it is folded into the largest line so the group still balances.
func convertGroup(ctx context.Context, rateSvc portssvc.RateSvcFacade, settings domain.AccountSettings, group []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	if len(group) == 0 || group[0].CurrencyCode == settings.BaseCurrencyCode {
		return group, nil
	}

	rate, err := rateSvc.Resolve(ctx, group[0].CurrencyCode, settings.BaseCurrencyCode, group[0].EntryDate)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot convert %s entries dated %s", err, group[0].CurrencyCode, group[0].EntryDate.Format("2006-01-02"))
	}

	debits := decimal.Zero
	credits := decimal.Zero
	largest := 0
	for i := range group {
		entry := &group[i]
		if entry.Debit.IsPositive() {
			entry.CurrencyAmount = entry.Debit
			entry.Debit = entry.Debit.Mul(rate).Round(2)
			debits = debits.Add(entry.Debit)
		} else {
			entry.CurrencyAmount = entry.Credit
			entry.Credit = entry.Credit.Mul(rate).Round(2)
			credits = credits.Add(entry.Credit)
		}
		if entry.CurrencyAmount.GreaterThan(group[largest].CurrencyAmount) {
			largest = i
		}
	}

	residual := debits.Sub(credits)
	if !residual.IsZero() {
		entry := &group[largest]
		if entry.Debit.IsPositive() {
			entry.Debit = entry.Debit.Sub(residual)
		} else {
			entry.Credit = entry.Credit.Add(residual)
		}
	}
	return group, nil
}

func (s *fecService) formatLine(settings domain.AccountSettings, entry domain.LedgerEntry, sep string) string {
	currencyAmount := ""
	currencyCode := ""
	if !entry.CurrencyAmount.IsZero() {
		currencyAmount = utils.FormatMonetary(entry.CurrencyAmount, settings.DecimalComma)
		currencyCode = entry.CurrencyCode
	}

	fields := []string{
		entry.JournalCode,
		entry.JournalLabel,
		fmt.Sprintf("%d", entry.EntryNumber),
		entry.EntryDate.Format(fecDateLayout),
		entry.AccountCode,
		entry.AccountLabel,
		entry.AuxiliaryAccount,
		entry.AuxiliaryLabel,
		entry.PieceReference,
		entry.PieceDate.Format(fecDateLayout),
		entry.Label,
		utils.FormatMonetary(entry.Debit, settings.DecimalComma),
		utils.FormatMonetary(entry.Credit, settings.DecimalComma),
		"", // EcritureLet: lettering is not tracked by this engine
		"", // DateLet
		entry.EntryDate.Format(fecDateLayout),
		currencyAmount,
		currencyCode,
	}
	return strings.Join(fields, sep)
}

// FECFilename builds the mandated export filename for a date range.
func FECFilename(accountID string, from, to time.Time) string {
	return fmt.Sprintf("FEC%s_%s_%s.txt", accountID, from.Format(fecDateLayout), to.Format(fecDateLayout))
}

// ValidateDateRange rejects inverted or unbounded ranges before computation.
func ValidateDateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: date_from and date_to are required", apperrors.ErrValidation)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: date_to must not precede date_from", apperrors.ErrValidation)
	}
	return nil
}
