package report

import (
	"database/sql"
	"fmt"
	"sort"

	"estadistica/internal/dataprocessing"
	apperrors "estadistica/internal/errors"
	"estadistica/pkg/contracts/domain"
)

// DefaultLabelColumn is the product description column of the statistics
// table.
const DefaultLabelColumn = "MEDID"

// Layout describes which columns drive grouping and labels.
type Layout struct {
	// Attributes are the grouping columns, in the aggregator's key order.
	Attributes []string

	// GroupBy is the primary grouping column. Defaults to the first attribute.
	GroupBy string

	// LabelColumn holds the descriptive text used for common names, headers
	// and subtotal labels. Defaults to MEDID when grouped, else the last
	// attribute.
	LabelColumn string
}

// Annotator expands aggregated rows into a report.
type Annotator struct {
	layout   Layout
	groupIdx int
	labelIdx int
}

// NewAnnotator validates the layout and creates an annotator.
func NewAnnotator(layout Layout) (*Annotator, error) {
	if len(layout.Attributes) == 0 {
		return nil, apperrors.NewAppValidationError("report layout needs at least one attribute")
	}
	if layout.GroupBy == "" {
		layout.GroupBy = layout.Attributes[0]
	}
	if layout.LabelColumn == "" {
		layout.LabelColumn = layout.Attributes[len(layout.Attributes)-1]
		if indexOf(layout.Attributes, DefaultLabelColumn) >= 0 {
			layout.LabelColumn = DefaultLabelColumn
		}
	}

	a := &Annotator{
		layout:   layout,
		groupIdx: indexOf(layout.Attributes, layout.GroupBy),
		labelIdx: indexOf(layout.Attributes, layout.LabelColumn),
	}
	if a.groupIdx < 0 {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("group column %q is not a grouping attribute", layout.GroupBy))
	}
	if a.labelIdx < 0 {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("label column %q is not a grouping attribute", layout.LabelColumn))
	}
	return a, nil
}

// Layout returns the resolved layout.
func (a *Annotator) Layout() Layout {
	return a.layout
}

// Annotate builds the report for mode. Rows must be in aggregator order.
func (a *Annotator) Annotate(rows []domain.AggregatedRow, mode domain.ReportMode) *domain.Report {
	rep := &domain.Report{
		Mode:        mode,
		Attributes:  append([]string(nil), a.layout.Attributes...),
		LabelColumn: a.layout.LabelColumn,
	}

	order, members := a.partition(rows)
	for _, group := range order {
		a.annotateGroup(rep, group, members[group], mode)
	}
	return rep
}

// partition splits rows by the primary attribute, keeping first-appearance
// order of groups and rows.
func (a *Annotator) partition(rows []domain.AggregatedRow) ([]string, map[string][]domain.AggregatedRow) {
	var order []string
	members := make(map[string][]domain.AggregatedRow)
	for _, row := range rows {
		g := keyAt(row.Key, a.groupIdx)
		if _, ok := members[g]; !ok {
			order = append(order, g)
		}
		members[g] = append(members[g], row)
	}
	return order, members
}

func (a *Annotator) annotateGroup(rep *domain.Report, group string, rows []domain.AggregatedRow, mode domain.ReportMode) {
	rep.Rows = append(rep.Rows, a.labelRow(domain.GroupHeaderRow, group, "["+group+"]", sql.NullInt64{}, nil))

	subtotals := newAccumulator()
	extras := newAccumulator()
	generalSub := newYearTotals()
	generalExtra := newYearTotals()

	current, started := "", false
	for _, row := range rows {
		name := CommonName(keyAt(row.Key, a.labelIdx))
		if started && name != current {
			a.flush(rep, group, current, subtotals, extras)
		}
		current, started = name, true

		rep.Rows = append(rep.Rows, a.dataRow(group, row))

		if mode.HasSubtotals() {
			subtotals.add(row.Year, name, row.Metrics)
			generalSub.add(row.Year, row.Metrics)
		}
		if mode.HasExtra() {
			extra := ExtraMetrics(row.UnitArea, row.Metrics)
			extras.add(row.Year, name, extra)
			generalExtra.add(row.Year, extra)
		}
	}
	if started {
		a.flush(rep, group, current, subtotals, extras)
	}

	for _, year := range generalSub.years() {
		rep.Rows = append(rep.Rows, a.labelRow(domain.SubtotalRow, group, domain.SubtotalGeneralLabel, validYear(year), generalSub.totals[year]))
	}
	for _, year := range generalExtra.years() {
		rep.Rows = append(rep.Rows, a.labelRow(domain.ExtraMetricRow, group, domain.ExtraGeneralLabel, validYear(year), generalExtra.totals[year]))
	}

	rep.Rows = append(rep.Rows, domain.ReportRow{
		Kind:  domain.BlankSeparatorRow,
		Cells: make([]sql.NullString, len(a.layout.Attributes)),
	})
}

// flush emits and clears the accumulated rows of one common name.
func (a *Annotator) flush(rep *domain.Report, group, name string, subtotals, extras *accumulator) {
	for _, year := range subtotals.take(name) {
		rep.Rows = append(rep.Rows, a.labelRow(domain.SubtotalRow, group, domain.SubtotalLabelPrefix+name, validYear(year.year), year.metrics))
	}
	for _, year := range extras.take(name) {
		rep.Rows = append(rep.Rows, a.labelRow(domain.ExtraMetricRow, group, domain.ExtraLabelPrefix+name, validYear(year.year), year.metrics))
	}
}

func (a *Annotator) dataRow(group string, row domain.AggregatedRow) domain.ReportRow {
	cells := make([]sql.NullString, len(a.layout.Attributes))
	for i := range cells {
		if i < len(row.Key) {
			cells[i] = sql.NullString{String: row.Key[i], Valid: true}
		}
	}
	m := row.Metrics
	return domain.ReportRow{
		Kind:     domain.DataRow,
		Cells:    cells,
		Group:    group,
		UnitArea: row.UnitArea,
		Year:     validYear(row.Year),
		Metrics:  &m,
	}
}

func (a *Annotator) labelRow(kind domain.RowKind, group, label string, year sql.NullInt64, m *domain.Metrics) domain.ReportRow {
	cells := make([]sql.NullString, len(a.layout.Attributes))
	cells[a.labelIdx] = sql.NullString{String: label, Valid: true}
	row := domain.ReportRow{
		Kind:  kind,
		Cells: cells,
		Group: group,
		Year:  year,
	}
	if m != nil {
		out := *m
		out.Duration = dataprocessing.Duration(out.Stock, out.Average)
		row.Metrics = &out
	}
	return row
}

// ExtraMetrics rescales every positive metric by the unit area, rounding
// each product. A missing or non-positive area yields zero metrics.
func ExtraMetrics(area sql.NullFloat64, m domain.Metrics) domain.Metrics {
	var out domain.Metrics
	if !area.Valid || area.Float64 <= 0 {
		return out
	}
	scale := func(v float64) float64 {
		if v <= 0 {
			return 0
		}
		return dataprocessing.Round(area.Float64*v, 0)
	}
	for i, v := range m.Months {
		out.Months[i] = scale(v)
	}
	out.Total = scale(m.Total)
	out.Trailing12 = scale(m.Trailing12)
	out.Stock = scale(m.Stock)
	out.Average = scale(m.Average)
	out.Duration = dataprocessing.Duration(out.Stock, out.Average)
	return out
}

func keyAt(key []string, i int) string {
	if i < 0 || i >= len(key) {
		return ""
	}
	return key[i]
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func validYear(y int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(y), Valid: true}
}

// accumulator sums metrics per year and common name.
type accumulator struct {
	byYear map[int]map[string]*domain.Metrics
}

func newAccumulator() *accumulator {
	return &accumulator{byYear: make(map[int]map[string]*domain.Metrics)}
}

func (acc *accumulator) add(year int, name string, m domain.Metrics) {
	names, ok := acc.byYear[year]
	if !ok {
		names = make(map[string]*domain.Metrics)
		acc.byYear[year] = names
	}
	total, ok := names[name]
	if !ok {
		total = &domain.Metrics{}
		names[name] = total
	}
	total.Add(m)
}

type yearMetrics struct {
	year    int
	metrics *domain.Metrics
}

// take removes and returns the totals of name in ascending year order.
func (acc *accumulator) take(name string) []yearMetrics {
	var out []yearMetrics
	for year, names := range acc.byYear {
		if m, ok := names[name]; ok {
			out = append(out, yearMetrics{year: year, metrics: m})
			delete(names, name)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].year < out[j].year })
	return out
}

// yearTotals sums metrics per year across a whole group.
type yearTotals struct {
	totals map[int]*domain.Metrics
}

func newYearTotals() *yearTotals {
	return &yearTotals{totals: make(map[int]*domain.Metrics)}
}

func (t *yearTotals) add(year int, m domain.Metrics) {
	total, ok := t.totals[year]
	if !ok {
		total = &domain.Metrics{}
		t.totals[year] = total
	}
	total.Add(m)
}

func (t *yearTotals) years() []int {
	years := make([]int, 0, len(t.totals))
	for y := range t.totals {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
