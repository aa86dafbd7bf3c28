package dataprocessing

import (
	"database/sql"
	"sort"
	"strconv"
	"strings"

	"estadistica/pkg/contracts/domain"
)

// Aggregator groups derived rows by the selected dimensions plus year.
type Aggregator struct {
	dims         []Dimension
	keepUnitArea bool
}

// AggregateStats describes an aggregation pass.
type AggregateStats struct {
	InputRows int
	Groups    int
	// DroppedRows counts rows missing a grouping value.
	DroppedRows int
}

// NewAggregator creates an aggregator. keepUnitArea adds the unit area to
// the group key, which extra-metric reports need.
func NewAggregator(dims []Dimension, keepUnitArea bool) *Aggregator {
	return &Aggregator{dims: dims, keepUnitArea: keepUnitArea}
}

// Dimensions returns the grouping dimensions in declared order.
func (a *Aggregator) Dimensions() []Dimension {
	return a.dims
}

// Aggregate sums the derived rows per group. Durations are recomputed from
// the summed stock and average.
func (a *Aggregator) Aggregate(rows []domain.DerivedRow) ([]domain.AggregatedRow, AggregateStats) {
	stats := AggregateStats{InputRows: len(rows)}
	groups := make(map[string]*domain.AggregatedRow)

	for _, row := range rows {
		key := make([]string, len(a.dims))
		complete := true
		for i, d := range a.dims {
			v, ok := d.Value(row.Record)
			if !ok {
				complete = false
				break
			}
			key[i] = v
		}
		if !complete {
			stats.DroppedRows++
			continue
		}

		var area sql.NullFloat64
		if a.keepUnitArea {
			area = row.Record.UnitArea
		}
		a.accumulate(groups, key, area, row.Record.Year, row.Metrics)
	}

	out := a.collect(groups)
	stats.Groups = len(out)
	return out, stats
}

// Reaggregate merges aggregated rows that share a key. Applied to the output
// of Aggregate it returns an equal set.
func (a *Aggregator) Reaggregate(rows []domain.AggregatedRow) []domain.AggregatedRow {
	groups := make(map[string]*domain.AggregatedRow)
	for _, row := range rows {
		area := row.UnitArea
		if !a.keepUnitArea {
			area = sql.NullFloat64{}
		}
		a.accumulate(groups, row.Key, area, row.Year, row.Metrics)
	}
	return a.collect(groups)
}

func (a *Aggregator) accumulate(groups map[string]*domain.AggregatedRow, key []string, area sql.NullFloat64, year int, m domain.Metrics) {
	id := groupID(key, area, year)
	g, ok := groups[id]
	if !ok {
		g = &domain.AggregatedRow{
			Key:      append([]string(nil), key...),
			UnitArea: area,
			Year:     year,
		}
		groups[id] = g
	}
	g.Metrics.Add(m)
}

func (a *Aggregator) collect(groups map[string]*domain.AggregatedRow) []domain.AggregatedRow {
	out := make([]domain.AggregatedRow, 0, len(groups))
	for _, g := range groups {
		g.Metrics.Duration = Duration(g.Metrics.Stock, g.Metrics.Average)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessAggregated(out[i], out[j])
	})
	return out
}

func groupID(key []string, area sql.NullFloat64, year int) string {
	var b strings.Builder
	for _, k := range key {
		b.WriteString(k)
		b.WriteByte(0x1f)
	}
	if area.Valid {
		b.WriteString(strconv.FormatFloat(area.Float64, 'g', -1, 64))
	}
	b.WriteByte(0x1f)
	b.WriteString(strconv.Itoa(year))
	return b.String()
}

func lessAggregated(x, y domain.AggregatedRow) bool {
	for i := range x.Key {
		if i >= len(y.Key) {
			return false
		}
		if c := CompareValues(x.Key[i], y.Key[i]); c != 0 {
			return c < 0
		}
	}
	if x.UnitArea.Valid != y.UnitArea.Valid {
		return !x.UnitArea.Valid
	}
	if x.UnitArea.Float64 != y.UnitArea.Float64 {
		return x.UnitArea.Float64 < y.UnitArea.Float64
	}
	return x.Year < y.Year
}
