package dataprocessing

import (
	"strconv"

	apperrors "estadistica/internal/errors"
	"estadistica/pkg/contracts/domain"
)

// Dimension is a grouping attribute of the statistics table.
type Dimension interface {
	// Name is the column name shown in the report.
	Name() string
	// Value returns the grouping value of a record and whether it is present.
	Value(r domain.TransactionRecord) (string, bool)
}

type productDimension struct{}

func (productDimension) Name() string { return domain.ColumnProduct }

func (productDimension) Value(r domain.TransactionRecord) (string, bool) {
	return r.ProductCode, r.ProductCode != ""
}

type warehouseDimension struct{}

func (warehouseDimension) Name() string { return domain.ColumnWarehouse }

func (warehouseDimension) Value(r domain.TransactionRecord) (string, bool) {
	return strconv.FormatInt(r.WarehouseID, 10), true
}

// attributeDimension groups by a categorical column.
type attributeDimension string

func (d attributeDimension) Name() string { return string(d) }

func (d attributeDimension) Value(r domain.TransactionRecord) (string, bool) {
	v, ok := r.Attributes[string(d)]
	return v, ok
}

var builtinDimensions = map[string]Dimension{
	domain.ColumnProduct:   productDimension{},
	domain.ColumnWarehouse: warehouseDimension{},
}

// ResolveDimension maps a column name to its accessor.
func ResolveDimension(name string) Dimension {
	if d, ok := builtinDimensions[name]; ok {
		return d
	}
	return attributeDimension(name)
}

// ResolveDimensions maps the caller's grouping columns, in order, to
// dimensions. The year column is always grouped and is skipped; month
// columns cannot be grouped.
func ResolveDimensions(names []string) ([]Dimension, error) {
	seen := make(map[string]bool, len(names))
	dims := make([]Dimension, 0, len(names))
	for _, name := range names {
		if name == "" || name == domain.ColumnYear || seen[name] {
			continue
		}
		if _, isMonth := domain.MonthIndex(name); isMonth {
			return nil, apperrors.NewAppValidationError("cannot group by month column " + strconv.Quote(name))
		}
		seen[name] = true
		dims = append(dims, ResolveDimension(name))
	}
	if len(dims) == 0 {
		return nil, apperrors.NewAppValidationError("at least one grouping column is required")
	}
	return dims, nil
}

// DimensionNames returns the column names of dims.
func DimensionNames(dims []Dimension) []string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name()
	}
	return names
}

// CompareValues orders two grouping values numerically when both parse as
// numbers and lexically otherwise.
func CompareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
