package dataprocessing

import (
	"time"

	"estadistica/pkg/contracts/domain"
)

// Processor turns filtered records and a stock snapshot into aggregated rows
type Processor interface {
	Process(records []domain.TransactionRecord, stock []domain.StockRecord) ([]domain.AggregatedRow, ProcessingStats)
}

// ProcessingOptions configures processing behavior
type ProcessingOptions struct {
	// Now is the reference clock for the trailing window
	Now func() time.Time

	// IncludeCurrentMonth counts the running month as elapsed
	IncludeCurrentMonth bool

	// AverageOverWindow divides the trailing figure by 12 instead of the
	// elapsed months
	AverageOverWindow bool

	// KeepUnitArea keeps unit area in the group key
	KeepUnitArea bool
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		Now: time.Now,
	}
}

// ProcessingStats summarizes one processing run
type ProcessingStats struct {
	Records       int
	CurrentYear   int
	ElapsedMonths int
	StockMatched  int
	Aggregate     AggregateStats
}
