package source

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "estadistica/internal/errors"
	"estadistica/pkg/contracts/domain"
)

// maxWarnings caps the coercion warnings kept in a DecodeReport.
const maxWarnings = 100

var errNegativeQuantity = errors.New("negative quantity")

// CoercionWarning describes a cell that could not be coerced and was read
// as null.
type CoercionWarning struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// DecodeReport summarizes a decoding pass.
type DecodeReport struct {
	Rows int `json:"rows"`
	// WarningCount counts every coercion failure, including those beyond
	// the kept Warnings.
	WarningCount int               `json:"warning_count"`
	Warnings     []CoercionWarning `json:"warnings,omitempty"`
}

// DecodeOptions configures a Decoder.
type DecodeOptions struct {
	// UnitAreaColumn is parsed into TransactionRecord.UnitArea. Defaults to
	// "Area".
	UnitAreaColumn string

	// Source names the table in error messages.
	Source string

	Logger *slog.Logger
}

// Decoder converts raw rows into TransactionRecords.
type Decoder struct {
	columns []string
	index   map[string]int
	areaIdx int
	months  [domain.MonthsPerYear]int
	source  string
	logger  *slog.Logger
	report  DecodeReport
}

// NewDecoder validates the column set and prepares a decoder.
func NewDecoder(columns []string, opts DecodeOptions) (*Decoder, error) {
	if opts.UnitAreaColumn == "" {
		opts.UnitAreaColumn = domain.ColumnUnitArea
	}
	if opts.Source == "" {
		opts.Source = "statistics table"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Decoder{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
		areaIdx: -1,
		source:  opts.Source,
		logger:  opts.Logger,
	}
	for i, c := range columns {
		c = strings.TrimSpace(c)
		d.columns[i] = c
		if _, dup := d.index[c]; !dup {
			d.index[c] = i
		}
	}
	for _, req := range RequiredColumns() {
		if _, ok := d.index[req]; !ok {
			return nil, apperrors.NewMissingColumnError(opts.Source, req)
		}
	}
	for m, name := range domain.MonthColumns {
		d.months[m] = d.index[name]
	}
	if i, ok := d.index[opts.UnitAreaColumn]; ok {
		d.areaIdx = i
	}
	return d, nil
}

// Columns returns the normalized column names.
func (d *Decoder) Columns() []string {
	return d.columns
}

// Decode converts one row. values must be aligned with the decoder's
// columns; missing trailing values are read as null.
func (d *Decoder) Decode(values []any) domain.TransactionRecord {
	d.report.Rows++
	row := d.report.Rows

	at := func(i int) any {
		if i < 0 || i >= len(values) {
			return nil
		}
		return values[i]
	}

	r := domain.TransactionRecord{Attributes: make(map[string]string)}

	if s, ok := toString(at(d.index[domain.ColumnProduct])); ok {
		r.ProductCode = s
	}
	if n, ok, err := toInt(at(d.index[domain.ColumnWarehouse])); err != nil {
		d.warn(row, domain.ColumnWarehouse, at(d.index[domain.ColumnWarehouse]), err)
	} else if ok {
		r.WarehouseID = n
	}
	if n, ok, err := toInt(at(d.index[domain.ColumnYear])); err != nil {
		d.warn(row, domain.ColumnYear, at(d.index[domain.ColumnYear]), err)
	} else if ok {
		r.Year = int(n)
	}

	for m, i := range d.months {
		n, ok, err := toInt(at(i))
		switch {
		case err != nil:
			d.warn(row, domain.MonthColumns[m], at(i), err)
		case ok && n < 0:
			d.warn(row, domain.MonthColumns[m], at(i), errNegativeQuantity)
		case ok:
			r.Months[m].Int64, r.Months[m].Valid = n, true
		}
	}

	if d.areaIdx >= 0 {
		f, ok, err := toFloat(at(d.areaIdx))
		if err != nil {
			d.warn(row, d.columns[d.areaIdx], at(d.areaIdx), err)
		} else if ok {
			r.UnitArea.Float64, r.UnitArea.Valid = f, true
		}
	}

	for i, c := range d.columns {
		if domain.IsCoreColumn(c) || d.index[c] != i {
			continue
		}
		if s, ok := toString(at(i)); ok {
			r.Attributes[c] = s
		}
	}
	return r
}

// Report returns the decoding summary so far.
func (d *Decoder) Report() DecodeReport {
	out := d.report
	out.Warnings = append([]CoercionWarning(nil), d.report.Warnings...)
	return out
}

func (d *Decoder) warn(row int, column string, value any, cause error) {
	d.report.WarningCount++
	text, _ := toString(value)
	if len(d.report.Warnings) < maxWarnings {
		d.report.Warnings = append(d.report.Warnings, CoercionWarning{Row: row, Column: column, Value: text})
	}
	appErr := apperrors.NewComputeError(column, text, cause).WithContext("row", row)
	d.logger.Warn("value coerced to null",
		slog.String("source", d.source),
		slog.Int("row", row),
		slog.String("column", column),
		slog.String("value", text),
		slog.String("error", appErr.Error()))
}

// toString returns the text form of a cell. Null and blank cells report
// false.
func toString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case []byte:
		s := strings.TrimSpace(string(x))
		return s, s != ""
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return toString(float64(x))
	case time.Time:
		return x.Format("2006-01-02"), true
	default:
		return fmt.Sprint(x), true
	}
}

// toInt reads an integral cell. Whole floats such as 3.0 are accepted.
func toInt(v any) (int64, bool, error) {
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return x, true, nil
	case int:
		return int64(x), true, nil
	case int32:
		return int64(x), true, nil
	case int16:
		return int64(x), true, nil
	case bool:
		if x {
			return 1, true, nil
		}
		return 0, true, nil
	}
	f, ok, err := toFloat(v)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, false, fmt.Errorf("%v is not an integer", f)
	}
	return int64(f), true, nil
}

// toFloat reads a numeric cell. Decimal commas are accepted.
func toFloat(v any) (float64, bool, error) {
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		if math.IsNaN(x) {
			return 0, false, nil
		}
		return x, true, nil
	case float32:
		return float64(x), true, nil
	case int64:
		return float64(x), true, nil
	case int:
		return float64(x), true, nil
	case int32:
		return float64(x), true, nil
	}
	s, ok := toString(v)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("%q is not a finite number", s)
	}
	return f, true, nil
}
