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
)

// targetLayout declares one accounting software's column list and row mapping.
// Targets are registered in targetLayouts; adding one is a new entry there.
type targetLayout struct {
	columns []portssvc.ColumnDescriptor
	row     func(settings domain.AccountSettings, entry domain.LedgerEntry) []string
}

var targetLayouts = map[portssvc.ExportTarget]targetLayout{
	portssvc.TargetGeneric: {
		columns: columnNames("Date", "Journal", "Account", "Auxiliary", "Reference", "Label", "Debit", "Credit", "Currency"),
		row: func(settings domain.AccountSettings, e domain.LedgerEntry) []string {
			return []string{
				e.EntryDate.Format("2006-01-02"),
				e.JournalCode,
				e.AccountCode,
				e.AuxiliaryAccount,
				e.PieceReference,
				e.Label,
				utils.FormatMonetary(e.Debit, settings.DecimalComma),
				utils.FormatMonetary(e.Credit, settings.DecimalComma),
				e.CurrencyCode,
			}
		},
	},
	portssvc.TargetPennylane: {
		columns: columnNames("date", "journal_code", "account_number", "auxiliary_number", "auxiliary_label", "label", "debit", "credit", "piece_reference"),
		row: func(settings domain.AccountSettings, e domain.LedgerEntry) []string {
			return []string{
				e.EntryDate.Format("2006-01-02"),
				e.JournalCode,
				e.AccountCode,
				e.AuxiliaryAccount,
				e.AuxiliaryLabel,
				e.Label,
				utils.FormatMonetary(e.Debit, settings.DecimalComma),
				utils.FormatMonetary(e.Credit, settings.DecimalComma),
				e.PieceReference,
			}
		},
	},
	portssvc.TargetSage: {
		columns: columnNames("JournalCode", "Date", "AccountNumber", "Tiers", "Reference", "Description", "DebitAmount", "CreditAmount"),
		row: func(settings domain.AccountSettings, e domain.LedgerEntry) []string {
			return []string{
				e.JournalCode,
				e.EntryDate.Format("02/01/2006"),
				e.AccountCode,
				e.AuxiliaryAccount,
				e.PieceReference,
				e.Label,
				utils.FormatMonetary(e.Debit, settings.DecimalComma),
				utils.FormatMonetary(e.Credit, settings.DecimalComma),
			}
		},
	},
}

func columnNames(names ...string) []portssvc.ColumnDescriptor {
	cols := make([]portssvc.ColumnDescriptor, len(names))
	for i, name := range names {
		cols[i] = portssvc.ColumnDescriptor{Name: name}
	}
	return cols
}

// formatAdapterService composes ledger entries into target-software CSV rows.
type formatAdapterService struct {
	BaseService
	recordRepo   portsrepo.RecordRepository
	settingsRepo portsrepo.SettingsRepository
	rateSvc      portssvc.RateSvcFacade
	mapper       *LedgerMapper
}

// NewFormatAdapterService creates a new accounting format adapter.
func NewFormatAdapterService(recordRepo portsrepo.RecordRepository, settingsRepo portsrepo.SettingsRepository, rateSvc portssvc.RateSvcFacade) portssvc.FormatAdapterSvcFacade {
	return &formatAdapterService{
		recordRepo:   recordRepo,
		settingsRepo: settingsRepo,
		rateSvc:      rateSvc,
		mapper:       NewLedgerMapper(),
	}
}

var _ portssvc.FormatAdapterSvcFacade = (*formatAdapterService)(nil)

// Columns returns the ordered column list of the target.
func (s *formatAdapterService) Columns(target portssvc.ExportTarget) ([]portssvc.ColumnDescriptor, error) {
	layout, ok := targetLayouts[target]
	if !ok {
		return nil, fmt.Errorf("%w: unknown export target %q", apperrors.ErrValidation, target)
	}
	return layout.columns, nil
}

// Stream writes the target-specific CSV, composing ledger entries lazily.
func (s *formatAdapterService) Stream(ctx context.Context, accountID string, target portssvc.ExportTarget, from, to time.Time, w io.Writer) error {
	layout, ok := targetLayouts[target]
	if !ok {
		return fmt.Errorf("%w: unknown export target %q", apperrors.ErrValidation, target)
	}

	settings, err := s.settingsRepo.GetAccountSettings(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account settings: %w", err)
	}
	if err := s.mapper.ValidateSettings(*settings); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	header := make([]string, len(layout.columns))
	for i, col := range layout.columns {
		header[i] = col.Name
	}
	if _, err := bw.WriteString(strings.Join(header, ";") + "\n"); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	lines := 0
	err = walkLedgerEntries(ctx, s.recordRepo, s.rateSvc, s.mapper, *settings, from, to, func(entry domain.LedgerEntry) error {
		if _, werr := bw.WriteString(strings.Join(layout.row(*settings, entry), ";") + "\n"); werr != nil {
			return fmt.Errorf("failed to write export line: %w", werr)
		}
		lines++
		return nil
	})
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush export output: %w", err)
	}

	s.LogInfo(ctx, "Accounting export generated",
		slog.String("account_id", accountID),
		slog.String("target", string(target)),
		slog.Int("lines", lines))
	return nil
}

// ExportFilename builds the accounting CSV download filename.
func ExportFilename(target portssvc.ExportTarget, from, to time.Time) string {
	return fmt.Sprintf("accounting_export_%s_%s_%s.csv", target, from.Format("20060102"), to.Format("20060102"))
}
