// Package shared holds code used by several packages that belongs to no
// single layer.
//
// The testutil subpackage provides test helpers: a capturing slog handler
// and builders for statistics records and workbook fixtures.
//
//	logger, logs := testutil.NewTestLogger(t)
//	path := testutil.WriteWorkbook(t, "Estadistica", rows)
//
// It must not import domain packages other than pkg/contracts/domain.
package shared
