package domain

import (
	"database/sql"
	"fmt"
	"strings"
)

// ReportMode selects how aggregated rows are annotated.
type ReportMode int

const (
	ModePlain ReportMode = iota
	ModeSubtotal
	ModeExtra
	ModeCombined
)

// ModeFromFlags maps the legacy "subtotals" and "extra" checkboxes to a mode.
func ModeFromFlags(subtotal, extra bool) ReportMode {
	switch {
	case subtotal && extra:
		return ModeCombined
	case subtotal:
		return ModeSubtotal
	case extra:
		return ModeExtra
	default:
		return ModePlain
	}
}

// ParseReportMode parses the textual form of a mode.
func ParseReportMode(s string) (ReportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return ModePlain, nil
	case "subtotal", "subtotals":
		return ModeSubtotal, nil
	case "extra":
		return ModeExtra, nil
	case "combined":
		return ModeCombined, nil
	}
	return ModePlain, fmt.Errorf("unknown report mode %q", s)
}

// String returns the textual form of the mode.
func (m ReportMode) String() string {
	switch m {
	case ModeSubtotal:
		return "subtotal"
	case ModeExtra:
		return "extra"
	case ModeCombined:
		return "combined"
	default:
		return "plain"
	}
}

// HasSubtotals reports whether subtotal rows are emitted.
func (m ReportMode) HasSubtotals() bool {
	return m == ModeSubtotal || m == ModeCombined
}

// HasExtra reports whether extra-metric rows are emitted.
func (m ReportMode) HasExtra() bool {
	return m == ModeExtra || m == ModeCombined
}

// ReportFormat is the file format of an exported report.
type ReportFormat string

const (
	ReportFormatExcel ReportFormat = "xlsx"
	ReportFormatCSV   ReportFormat = "csv"
)

// FileName returns the fixed artifact name of a mode in the given format.
func (m ReportMode) FileName(format ReportFormat) string {
	if format == "" {
		format = ReportFormatExcel
	}
	base := "reporte_calculado"
	switch m {
	case ModeSubtotal:
		base += "_con_subtotales"
	case ModeExtra:
		base += "_con_extra"
	case ModeCombined:
		base += "_con_subtotales_y_extra"
	}
	return base + "." + string(format)
}

// RowKind tags a ReportRow.
type RowKind int

const (
	DataRow RowKind = iota
	GroupHeaderRow
	SubtotalRow
	ExtraMetricRow
	BlankSeparatorRow
)

func (k RowKind) String() string {
	switch k {
	case GroupHeaderRow:
		return "header"
	case SubtotalRow:
		return "subtotal"
	case ExtraMetricRow:
		return "extra"
	case BlankSeparatorRow:
		return "blank"
	default:
		return "data"
	}
}

// Report labels.
const (
	SubtotalLabelPrefix  = "SUBTOTAL: "
	SubtotalGeneralLabel = "TOTALES SUB GENERAL"
	ExtraLabelPrefix     = "TOTALES EXTRA: "
	ExtraGeneralLabel    = "TOTALES EXTRA GENERAL"
)

// ReportRow is one line of the final report. Cells follows Report.Attributes;
// Metrics is nil for header and blank rows.
type ReportRow struct {
	Kind     RowKind
	Cells    []sql.NullString
	Group    string
	UnitArea sql.NullFloat64
	Year     sql.NullInt64
	Metrics  *Metrics
}

// Label returns the cell of the given attribute index, empty when null.
func (r ReportRow) Label(i int) string {
	if i < 0 || i >= len(r.Cells) || !r.Cells[i].Valid {
		return ""
	}
	return r.Cells[i].String
}

// Report is the ordered, annotated output of a generation.
type Report struct {
	Mode        ReportMode
	Attributes  []string
	LabelColumn string
	Rows        []ReportRow
}

// Count returns the number of rows of the given kind.
func (r *Report) Count(kind RowKind) int {
	n := 0
	for _, row := range r.Rows {
		if row.Kind == kind {
			n++
		}
	}
	return n
}
