package services

import (
	"context"
	"io"
	"time"
)

// FECSvcFacade generates the standardized FEC accounting ledger file.
type FECSvcFacade interface {
	// Stream writes the header line and one line per ledger entry to w,
	// pulling records lazily. Configuration is validated before the first
	// byte; a mapping failure aborts the stream with an error.
	Stream(ctx context.Context, accountID string, from, to time.Time, w io.Writer) error

	// Count returns the number of data lines Stream would produce, without
	// formatting any line.
	Count(ctx context.Context, accountID string, from, to time.Time) (int, error)
}

// ExportTarget names a third-party accounting software column layout.
type ExportTarget string

const (
	TargetGeneric   ExportTarget = "generic"
	TargetPennylane ExportTarget = "pennylane"
	TargetSage      ExportTarget = "sage"
)

// ColumnDescriptor describes one column of a target layout.
type ColumnDescriptor struct {
	Name string
}

// FormatAdapterSvcFacade maps ledger data to target-software CSV layouts.
type FormatAdapterSvcFacade interface {
	// Columns returns the ordered column list of the target, or
	// apperrors.ErrValidation for an unknown target.
	Columns(target ExportTarget) ([]ColumnDescriptor, error)

	// Stream writes the target-specific CSV to w, composing ledger entries
	// lazily. Missing fields render as empty strings, never an error.
	Stream(ctx context.Context, accountID string, target ExportTarget, from, to time.Time, w io.Writer) error
}
