package dataprocessing

import (
	"time"

	"estadistica/pkg/contracts/domain"
)

// WindowOptions configures the trailing-window calculation.
type WindowOptions struct {
	// Now returns the reference time. Defaults to time.Now.
	Now func() time.Time

	// IncludeCurrentMonth counts the running month as elapsed. With it set,
	// December draws nothing from the previous year.
	IncludeCurrentMonth bool
}

// TrailingWindow approximates a rolling 12-month quantity from the current
// and the previous yearly record of a product.
type TrailingWindow struct {
	now          func() time.Time
	includeMonth bool
}

// NewTrailingWindow creates a trailing-window calculator.
func NewTrailingWindow(opts WindowOptions) *TrailingWindow {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TrailingWindow{
		now:          opts.Now,
		includeMonth: opts.IncludeCurrentMonth,
	}
}

// CurrentYear returns the year whose records receive a trailing figure.
func (w *TrailingWindow) CurrentYear() int {
	return w.now().Year()
}

// ElapsedMonths returns how many months of the current year are inside the
// window.
func (w *TrailingWindow) ElapsedMonths() int {
	m := int(w.now().Month())
	if w.includeMonth {
		return m
	}
	return m - 1
}

type priorKey struct {
	product   string
	warehouse int64
	year      int
}

// Compute returns the trailing figure of every record, index-aligned with
// records. The previous-year record is looked up by product, warehouse and
// year, independent of row order.
func (w *TrailingWindow) Compute(records []domain.TransactionRecord) []float64 {
	index := make(map[priorKey]int, len(records))
	for i, r := range records {
		k := priorKey{product: r.ProductCode, warehouse: r.WarehouseID, year: r.Year}
		if _, seen := index[k]; !seen {
			index[k] = i
		}
	}

	year := w.CurrentYear()
	elapsed := w.ElapsedMonths()

	out := make([]float64, len(records))
	for i, r := range records {
		if r.Year != year {
			continue
		}
		var prior *domain.TransactionRecord
		if j, ok := index[priorKey{product: r.ProductCode, warehouse: r.WarehouseID, year: year - 1}]; ok {
			prior = &records[j]
		}
		out[i] = float64(trailingSum(r, prior, elapsed))
	}
	return out
}

// trailingSum adds the first elapsed months of current and the remaining
// months of prior.
func trailingSum(current domain.TransactionRecord, prior *domain.TransactionRecord, elapsed int) int64 {
	var sum int64
	for m := elapsed - 1; m >= 0; m-- {
		sum += current.Month(m)
	}
	if prior == nil {
		return sum
	}
	for m := elapsed; m < domain.MonthsPerYear; m++ {
		sum += prior.Month(m)
	}
	return sum
}
