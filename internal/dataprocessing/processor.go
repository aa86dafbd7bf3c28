package dataprocessing

import (
	"estadistica/pkg/contracts/domain"
)

// StatisticsProcessor chains the trailing window, the stock join and the
// aggregation.
type StatisticsProcessor struct {
	window     *TrailingWindow
	aggregator *Aggregator
	opts       ProcessingOptions
}

// NewStatisticsProcessor creates a processor grouping by dims
func NewStatisticsProcessor(dims []Dimension, opts ProcessingOptions) *StatisticsProcessor {
	return &StatisticsProcessor{
		window: NewTrailingWindow(WindowOptions{
			Now:                 opts.Now,
			IncludeCurrentMonth: opts.IncludeCurrentMonth,
		}),
		aggregator: NewAggregator(dims, opts.KeepUnitArea),
		opts:       opts,
	}
}

// Process runs the three stages in order
func (p *StatisticsProcessor) Process(records []domain.TransactionRecord, stock []domain.StockRecord) ([]domain.AggregatedRow, ProcessingStats) {
	stats := ProcessingStats{
		Records:       len(records),
		CurrentYear:   p.window.CurrentYear(),
		ElapsedMonths: p.window.ElapsedMonths(),
	}

	trailing := p.window.Compute(records)

	joiner := NewStockJoiner(StockJoinOptions{
		CurrentYear:       stats.CurrentYear,
		ElapsedMonths:     stats.ElapsedMonths,
		AverageOverWindow: p.opts.AverageOverWindow,
	})
	derived := joiner.Derive(records, trailing, stock)
	for _, d := range derived {
		if d.Metrics.Stock != 0 {
			stats.StockMatched++
		}
	}

	rows, aggStats := p.aggregator.Aggregate(derived)
	stats.Aggregate = aggStats
	return rows, stats
}

// Window exposes the trailing-window calculator
func (p *StatisticsProcessor) Window() *TrailingWindow {
	return p.window
}
