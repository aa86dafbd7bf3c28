package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"estadistica/pkg/contracts/domain"
)

// Record builds a statistics record. months maps calendar month (1-12) to
// quantity; attrs become categorical attributes.
func Record(product string, warehouse int64, year int, attrs map[string]string, months map[int]int64) domain.TransactionRecord {
	r := domain.TransactionRecord{
		ProductCode: product,
		WarehouseID: warehouse,
		Year:        year,
		Attributes:  make(map[string]string, len(attrs)),
	}
	for k, v := range attrs {
		r.Attributes[k] = v
	}
	for m, q := range months {
		r.Months[m-1] = sql.NullInt64{Int64: q, Valid: true}
	}
	return r
}

// WithArea returns r with a unit area.
func WithArea(r domain.TransactionRecord, area float64) domain.TransactionRecord {
	r.UnitArea = sql.NullFloat64{Float64: area, Valid: true}
	return r
}

// WriteWorkbook saves rows into sheet of a new workbook under t.TempDir()
// and returns its path. The first row is usually the header.
func WriteWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), sheet+".xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// TableHeader is the header row of a statistics sheet followed by extra
// attribute columns.
func TableHeader(extra ...string) []any {
	row := []any{domain.ColumnProduct, domain.ColumnWarehouse, domain.ColumnYear}
	for _, m := range domain.MonthColumns {
		row = append(row, m)
	}
	for _, e := range extra {
		row = append(row, e)
	}
	return row
}

// TableRow is one statistics sheet row. Missing months are left empty.
func TableRow(product any, warehouse any, year any, months []any, extra ...any) []any {
	row := []any{product, warehouse, year}
	for i := 0; i < domain.MonthsPerYear; i++ {
		var v any
		if i < len(months) {
			v = months[i]
		}
		row = append(row, v)
	}
	return append(row, extra...)
}

// StatisticsWorkbook writes a small statistics sheet with LINEA and MEDID
// attributes: A001 in 2023 and 2024 and B002 in 2024.
func StatisticsWorkbook(t *testing.T) string {
	t.Helper()
	return WriteWorkbook(t, "Estadistica", [][]any{
		TableHeader("LINEA", "MEDID"),
		TableRow("A001", 1, 2023, []any{0, 0, 0, 10, 10, 10, 0, 0, 0, 0, 0, 2}, "PISOS", "30x30"),
		TableRow("A001", 1, 2024, []any{5, 5}, "PISOS", "30x30"),
		TableRow("B002", 1, 2024, []any{3}, "PAREDES", "20x20"),
	})
}
