package source

import (
	"context"

	"estadistica/pkg/contracts/domain"
)

// RecordSource is a readable statistics table.
type RecordSource interface {
	// Columns lists the table's column names in table order.
	Columns(ctx context.Context) ([]string, error)

	// Records reads and decodes every row of the table.
	Records(ctx context.Context) ([]domain.TransactionRecord, DecodeReport, error)

	// DistinctValues returns the sorted non-null values of column.
	DistinctValues(ctx context.Context, column string) ([]string, error)

	// Close releases the underlying handle.
	Close() error
}

// Kind names a source implementation.
type Kind string

const (
	KindSQL      Kind = "sql"
	KindWorkbook Kind = "workbook"
)

// RequiredColumns are the columns every statistics table must carry.
func RequiredColumns() []string {
	cols := []string{domain.ColumnProduct, domain.ColumnWarehouse, domain.ColumnYear}
	return append(cols, domain.MonthColumns[:]...)
}
