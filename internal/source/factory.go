package source

import (
	"context"
	"log/slog"

	"estadistica/internal/config"
	apperrors "estadistica/internal/errors"
)

// Factory opens a fresh RecordSource. Every generation reads through its own
// source and closes it afterwards.
type Factory func(ctx context.Context) (RecordSource, error)

// FromConfig returns the factory selected by the source configuration. The
// SQL driver must be registered by the binary.
func FromConfig(cfg config.SourceConfig, logger *slog.Logger) (Factory, error) {
	switch Kind(cfg.Kind) {
	case KindSQL, "":
		return func(ctx context.Context) (RecordSource, error) {
			return OpenSQL(ctx, cfg.Driver, cfg.DSN, SQLOptions{
				Table:          cfg.Table,
				UnitAreaColumn: cfg.UnitAreaColumn,
				Logger:         logger,
			})
		}, nil
	case KindWorkbook:
		return func(context.Context) (RecordSource, error) {
			return OpenWorkbook(cfg.Workbook, WorkbookOptions{
				Sheet:          cfg.Sheet,
				UnitAreaColumn: cfg.UnitAreaColumn,
				Logger:         logger,
			})
		}, nil
	}
	return nil, apperrors.NewConfigError("unknown source kind "+cfg.Kind, nil)
}
