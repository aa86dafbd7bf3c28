package domain

import (
	"database/sql"
	"strconv"
)

// Column names used by the statistics table and the stock workbook.
const (
	ColumnProduct   = "Código"
	ColumnWarehouse = "numero_bodega"
	ColumnYear      = "Ano"
	ColumnUnitArea  = "Area"
	ColumnGroupKey  = "Grupo"

	ColumnTotal      = "Total"
	ColumnTrailing12 = "12 Meses"
	ColumnStock      = "Stock"
	ColumnAverage    = "Prom"
	ColumnDuration   = "Dur"

	StockColumnProduct   = "CódigoProducto"
	StockColumnWarehouse = "Bodega"
	StockColumnQuantity  = "Cantidad"
)

// MonthsPerYear is the width of a yearly record.
const MonthsPerYear = 12

// MonthColumns holds the monthly quantity columns in calendar order.
var MonthColumns = [MonthsPerYear]string{
	"Ene", "Feb", "Mar", "Abr", "May", "Jun",
	"Jul", "Ago", "Sept", "Oct", "Nov", "Dic",
}

// MonthIndex returns the zero-based calendar index of a month column.
func MonthIndex(column string) (int, bool) {
	for i, name := range MonthColumns {
		if name == column {
			return i, true
		}
	}
	return -1, false
}

// IsCoreColumn reports whether the column is decoded into a dedicated
// TransactionRecord field rather than kept as a categorical attribute.
func IsCoreColumn(column string) bool {
	switch column {
	case ColumnProduct, ColumnWarehouse, ColumnYear:
		return true
	}
	_, ok := MonthIndex(column)
	return ok
}

// TransactionRecord is one yearly row of the statistics table: monthly
// purchase/sales quantities of a product in a warehouse.
type TransactionRecord struct {
	ProductCode string
	WarehouseID int64
	Year        int
	Months      [MonthsPerYear]sql.NullInt64

	// Attributes holds the string form of every categorical column.
	Attributes map[string]string

	UnitArea sql.NullFloat64
}

// Month returns the quantity of a month with null treated as 0.
func (r TransactionRecord) Month(i int) int64 {
	if i < 0 || i >= MonthsPerYear || !r.Months[i].Valid {
		return 0
	}
	return r.Months[i].Int64
}

// Total sums the twelve months, nulls counting as 0.
func (r TransactionRecord) Total() int64 {
	var total int64
	for i := range r.Months {
		total += r.Month(i)
	}
	return total
}

// Value returns the string form of any column of the record. The boolean is
// false when the column is unknown or null.
func (r TransactionRecord) Value(column string) (string, bool) {
	switch column {
	case ColumnProduct:
		return r.ProductCode, true
	case ColumnWarehouse:
		return strconv.FormatInt(r.WarehouseID, 10), true
	case ColumnYear:
		return strconv.Itoa(r.Year), true
	}
	if i, ok := MonthIndex(column); ok {
		if !r.Months[i].Valid {
			return "", false
		}
		return strconv.FormatInt(r.Months[i].Int64, 10), true
	}
	v, ok := r.Attributes[column]
	return v, ok
}

// StockRecord is a single stock snapshot line.
type StockRecord struct {
	ProductCode string
	WarehouseID int64
	Quantity    float64
}

// StockKey identifies a product in a warehouse.
type StockKey struct {
	ProductCode string
	WarehouseID int64
}

// Key returns the join key of the stock record.
func (s StockRecord) Key() StockKey {
	return StockKey{ProductCode: s.ProductCode, WarehouseID: s.WarehouseID}
}

// Metrics are the numeric report columns of a row.
type Metrics struct {
	Months     [MonthsPerYear]float64
	Total      float64
	Trailing12 float64
	Stock      float64
	Average    float64
	Duration   float64
}

// Add sums every additive column of other into m. Duration is not additive
// and is left untouched.
func (m *Metrics) Add(other Metrics) {
	for i := range m.Months {
		m.Months[i] += other.Months[i]
	}
	m.Total += other.Total
	m.Trailing12 += other.Trailing12
	m.Stock += other.Stock
	m.Average += other.Average
}

// DerivedRow is a record after trailing-window and stock derivation.
type DerivedRow struct {
	Record  TransactionRecord
	Metrics Metrics
}

// AggregatedRow is one group of derived rows keyed by the selected
// dimensions, unit area (when kept) and year.
type AggregatedRow struct {
	Key      []string
	UnitArea sql.NullFloat64
	Year     int
	Metrics  Metrics
}
