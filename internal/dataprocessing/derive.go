package dataprocessing

import (
	"estadistica/pkg/contracts/domain"
)

// StockJoinOptions configures stock attribution and averages.
type StockJoinOptions struct {
	// CurrentYear is the year the stock snapshot belongs to. Only records
	// of that year are joined.
	CurrentYear int

	// ElapsedMonths divides the trailing figure into a monthly average.
	ElapsedMonths int

	// AverageOverWindow divides by the full 12-month window instead.
	AverageOverWindow bool
}

// StockJoiner merges a stock snapshot into trailing-window rows and derives
// the monthly average and stock duration.
type StockJoiner struct {
	opts StockJoinOptions
}

// NewStockJoiner creates a stock joiner.
func NewStockJoiner(opts StockJoinOptions) *StockJoiner {
	return &StockJoiner{opts: opts}
}

type stockRowKey struct {
	stock domain.StockKey
	year  int
}

// IndexStock builds the join index of a snapshot, keeping the first record
// of every product/warehouse pair.
func IndexStock(stock []domain.StockRecord) map[domain.StockKey]float64 {
	index := make(map[domain.StockKey]float64, len(stock))
	for _, s := range stock {
		if _, seen := index[s.Key()]; !seen {
			index[s.Key()] = s.Quantity
		}
	}
	return index
}

// Derive combines records with their trailing figures (index-aligned) and
// the stock snapshot.
func (j *StockJoiner) Derive(records []domain.TransactionRecord, trailing []float64, stock []domain.StockRecord) []domain.DerivedRow {
	index := IndexStock(stock)
	attributed := make(map[stockRowKey]bool)

	divisor := j.opts.ElapsedMonths
	if j.opts.AverageOverWindow {
		divisor = domain.MonthsPerYear
	}

	rows := make([]domain.DerivedRow, len(records))
	for i, r := range records {
		var m domain.Metrics
		for k := range m.Months {
			m.Months[k] = float64(r.Month(k))
		}
		m.Total = float64(r.Total())
		if i < len(trailing) {
			m.Trailing12 = trailing[i]
		}

		key := stockRowKey{stock: domain.StockKey{ProductCode: r.ProductCode, WarehouseID: r.WarehouseID}, year: r.Year}
		if r.Year == j.opts.CurrentYear && !attributed[key] {
			if qty, ok := index[key.stock]; ok {
				m.Stock = qty
			}
			attributed[key] = true
		}

		if divisor > 0 {
			m.Average = Round(m.Trailing12/float64(divisor), 0)
		}
		m.Duration = Duration(m.Stock, m.Average)

		rows[i] = domain.DerivedRow{Record: r, Metrics: m}
	}
	return rows
}
