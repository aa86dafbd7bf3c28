package exporter

import (
	"estadistica/pkg/contracts/domain"
)

// Options selects optional report columns.
type Options struct {
	// RetainGroupKey adds the primary group value as a "Grupo" column.
	RetainGroupKey bool
	// RetainUnitArea adds the unit area column.
	RetainUnitArea bool
	// UnitAreaColumn names the unit area column. Defaults to "Area".
	UnitAreaColumn string
}

// Header returns the column names of a report in export order.
func Header(rep *domain.Report, opts Options) []string {
	cols := append([]string(nil), rep.Attributes...)
	if opts.RetainGroupKey {
		cols = append(cols, domain.ColumnGroupKey)
	}
	if opts.RetainUnitArea {
		name := opts.UnitAreaColumn
		if name == "" {
			name = domain.ColumnUnitArea
		}
		cols = append(cols, name)
	}
	cols = append(cols, domain.ColumnYear)
	cols = append(cols, domain.MonthColumns[:]...)
	return append(cols,
		domain.ColumnTotal,
		domain.ColumnTrailing12,
		domain.ColumnStock,
		domain.ColumnAverage,
		domain.ColumnDuration,
	)
}

// Cells returns the values of a row aligned with Header. Null cells are nil;
// numbers are float64 or int64, text is string.
func Cells(row domain.ReportRow, opts Options) []any {
	out := make([]any, 0, len(row.Cells)+22)
	for _, c := range row.Cells {
		if c.Valid {
			out = append(out, c.String)
		} else {
			out = append(out, nil)
		}
	}
	if opts.RetainGroupKey {
		if row.Kind == domain.BlankSeparatorRow {
			out = append(out, nil)
		} else {
			out = append(out, row.Group)
		}
	}
	if opts.RetainUnitArea {
		if row.UnitArea.Valid {
			out = append(out, row.UnitArea.Float64)
		} else {
			out = append(out, nil)
		}
	}
	if row.Year.Valid {
		out = append(out, row.Year.Int64)
	} else {
		out = append(out, nil)
	}

	if row.Metrics == nil {
		for i := 0; i < domain.MonthsPerYear+5; i++ {
			out = append(out, nil)
		}
		return out
	}
	m := row.Metrics
	for _, v := range m.Months {
		out = append(out, v)
	}
	return append(out, m.Total, m.Trailing12, m.Stock, m.Average, m.Duration)
}
