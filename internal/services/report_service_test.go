package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estadistica/internal/config"
	apperrors "estadistica/internal/errors"
	"estadistica/internal/exporter"
	"estadistica/internal/filter"
	"estadistica/internal/source"
	"estadistica/internal/stock"
	"estadistica/pkg/contracts/domain"
)

type fakeSource struct {
	columns []string
	records []domain.TransactionRecord
	decoded source.DecodeReport
	err     error
	closed  int
}

func (f *fakeSource) Columns(context.Context) ([]string, error) {
	return f.columns, f.err
}

func (f *fakeSource) Records(context.Context) ([]domain.TransactionRecord, source.DecodeReport, error) {
	return f.records, f.decoded, f.err
}

func (f *fakeSource) DistinctValues(_ context.Context, column string) ([]string, error) {
	return filter.DistinctValues(f.records, column), f.err
}

func (f *fakeSource) Close() error {
	f.closed++
	return nil
}

func (f *fakeSource) factory() source.Factory {
	return func(context.Context) (source.RecordSource, error) { return f, nil }
}

type fakeStock struct {
	result *stock.LoadResult
	err    error
	calls  int
}

func (f *fakeStock) Load(context.Context, string, string) (*stock.LoadResult, error) {
	f.calls++
	return f.result, f.err
}

func statRecord(product string, warehouse int64, year int, linea, medid string, months map[int]int64) domain.TransactionRecord {
	r := domain.TransactionRecord{
		ProductCode: product,
		WarehouseID: warehouse,
		Year:        year,
		Attributes:  map[string]string{"LINEA": linea, "MEDID": medid},
		UnitArea:    sql.NullFloat64{Float64: 0.5, Valid: true},
	}
	for m, q := range months {
		r.Months[m-1] = sql.NullInt64{Int64: q, Valid: true}
	}
	return r
}

func sampleSource() *fakeSource {
	return &fakeSource{
		columns: append(source.RequiredColumns(), "LINEA", "MEDID", "Area"),
		records: []domain.TransactionRecord{
			statRecord("A001", 1, 2023, "PISOS", "CLASICA 045X045", map[int]int64{3: 2, 11: 10}),
			statRecord("A001", 1, 2024, "PISOS", "CLASICA 045X045", map[int]int64{1: 5, 2: 5, 3: 9}),
			statRecord("B002", 1, 2024, "PAREDES", "RUSTICA 030X060", map[int]int64{1: 4}),
		},
		decoded: source.DecodeReport{Rows: 3, WarningCount: 1, Warnings: []source.CoercionWarning{{Row: 2, Column: "Feb", Value: "x"}}},
	}
}

func newTestService(t *testing.T, src *fakeSource, stk *fakeStock) (*ReportService, *config.Paths) {
	t.Helper()
	paths := config.NewPaths(t.TempDir(), config.PathsConfig{})
	require.NoError(t, paths.EnsureDirectories())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := ReportServiceOptions{
		StockPath: "stock.xlsm",
		Now:       func() time.Time { return time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC) },
		Logger:    logger,
	}
	var loader StockLoader
	if stk != nil {
		loader = stk
	}
	return NewReportService(src.factory(), loader, exporter.New(paths, logger), opts), paths
}

func TestReportService_Generate(t *testing.T) {
	stk := &fakeStock{result: &stock.LoadResult{
		Records:    []domain.StockRecord{{ProductCode: "A001", WarehouseID: 1, Quantity: 50}},
		Duplicates: 1,
	}}
	src := sampleSource()
	svc, paths := newTestService(t, src, stk)

	res, err := svc.Generate(context.Background(), GenerateRequest{
		GroupBy: []string{"LINEA", "MEDID"},
		Mode:    domain.ModeSubtotal,
		Filters: filter.New().Add("LINEA", "PISOS"),
	})
	require.NoError(t, err)

	assert.Equal(t, RunStatusCompleted, res.Status)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "subtotal", res.Mode)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 2, res.FilteredRecords)
	assert.Equal(t, 2, res.Groups)
	assert.Equal(t, 1, res.StockRecords)
	assert.Equal(t, 1, res.StockDuplicates)
	assert.Equal(t, 1, res.StockMatched)
	assert.Equal(t, 2024, res.CurrentYear)
	assert.Equal(t, 2, res.ElapsedMonths)
	assert.Equal(t, 1, res.CoercionWarnings)
	require.Len(t, res.Warnings, 1)

	// header, 2 data rows, 2 subtotals, 2 general subtotals, blank
	assert.Equal(t, 8, res.ReportRows)

	require.NotNil(t, res.Artifact)
	assert.Equal(t, "reporte_calculado_con_subtotales.xlsx", res.Artifact.Name)
	assert.Equal(t, filepath.Join(paths.ReportsDir, res.Artifact.Name), res.Artifact.Path)
	assert.FileExists(t, res.Artifact.Path)
	assert.Equal(t, 1, stk.calls)
	assert.Equal(t, 1, src.closed)
}

func TestReportService_GenerateCSVWithoutStock(t *testing.T) {
	src := sampleSource()
	svc, _ := newTestService(t, src, nil)

	res, err := svc.Generate(context.Background(), GenerateRequest{
		GroupBy:        []string{"MEDID"},
		Mode:           domain.ModeCombined,
		Format:         domain.ReportFormatCSV,
		RetainUnitArea: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "reporte_calculado_con_subtotales_y_extra.csv", res.Artifact.Name)
	assert.Zero(t, res.StockMatched)
	assert.Zero(t, res.StockRecords)
}

func TestReportService_EmptyResult(t *testing.T) {
	svc, paths := newTestService(t, sampleSource(), nil)

	res, err := svc.Generate(context.Background(), GenerateRequest{
		GroupBy: []string{"MEDID"},
		Filters: filter.New().Add("LINEA", "TECHOS"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyResult))
	require.NotNil(t, res)
	assert.Equal(t, RunStatusEmpty, res.Status)
	assert.Equal(t, "no records match the selected filters", res.Message)
	assert.Nil(t, res.Artifact)

	entries, err := os.ReadDir(paths.ReportsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     *fakeSource
		stock   *fakeStock
		req     GenerateRequest
		errType apperrors.ErrorType
	}{
		{
			name:    "no grouping column",
			src:     sampleSource(),
			req:     GenerateRequest{},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "month grouping",
			src:     sampleSource(),
			req:     GenerateRequest{GroupBy: []string{"Ene"}},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "unknown grouping column",
			src:     sampleSource(),
			req:     GenerateRequest{GroupBy: []string{"COLOR"}},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "unknown filter column",
			src:     sampleSource(),
			req:     GenerateRequest{GroupBy: []string{"MEDID"}, Filters: filter.New().Add("COLOR", "gris")},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "bad format",
			src:     sampleSource(),
			req:     GenerateRequest{GroupBy: []string{"MEDID"}, Format: "pdf"},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "source unreachable",
			src:     &fakeSource{err: apperrors.NewConnectionError("database is unreachable", errors.New("refused"))},
			req:     GenerateRequest{GroupBy: []string{"MEDID"}},
			errType: apperrors.ErrTypeConnection,
		},
		{
			name:    "stock format error",
			src:     sampleSource(),
			stock:   &fakeStock{err: apperrors.NewMissingColumnError("stock sheet Reformateado", "Bodega")},
			req:     GenerateRequest{GroupBy: []string{"MEDID"}},
			errType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.src, tt.stock)
			res, err := svc.Generate(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestReportService_Conflict(t *testing.T) {
	svc, _ := newTestService(t, sampleSource(), nil)

	require.True(t, svc.running.TryAcquire(1))
	_, err := svc.Generate(context.Background(), GenerateRequest{GroupBy: []string{"MEDID"}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConflict))

	svc.running.Release(1)
	_, err = svc.Generate(context.Background(), GenerateRequest{GroupBy: []string{"MEDID"}})
	assert.NoError(t, err)
}

func TestReportService_Columns(t *testing.T) {
	src := sampleSource()
	svc, _ := newTestService(t, src, nil)
	ctx := context.Background()

	cols, err := svc.ListColumns(ctx)
	require.NoError(t, err)
	assert.Contains(t, cols, "LINEA")

	values, err := svc.DistinctValues(ctx, "LINEA")
	require.NoError(t, err)
	assert.Equal(t, []string{"PAREDES", "PISOS"}, values)
	assert.Equal(t, 2, src.closed)
}

func TestCheckColumns(t *testing.T) {
	cols := []string{"Código", "LINEA"}
	assert.NoError(t, checkColumns(cols, []string{"LINEA"}, []string{"Código"}))
	assert.Error(t, checkColumns(cols, []string{"MEDID"}, nil))
	assert.Error(t, checkColumns(cols, nil, []string{"MEDID"}))
}
