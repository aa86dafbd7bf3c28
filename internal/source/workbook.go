package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "estadistica/internal/errors"
	"estadistica/pkg/contracts/domain"
)

// WorkbookOptions configures a WorkbookSource.
type WorkbookOptions struct {
	// Sheet defaults to the first sheet of the workbook.
	Sheet          string
	UnitAreaColumn string
	Logger         *slog.Logger
}

// WorkbookSource reads the statistics table from a workbook sheet whose
// first row holds the column names.
type WorkbookSource struct {
	path   string
	file   *excelize.File
	sheet  string
	opts   WorkbookOptions
	logger *slog.Logger
}

// OpenWorkbook opens a workbook table. An unreadable file is a connection
// error, a missing sheet a validation error.
func OpenWorkbook(path string, opts WorkbookOptions) (*WorkbookSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewConnectionError("failed to open workbook", err).WithContext("path", path)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		f.Close()
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("workbook has no sheet %q", sheet)).WithContext("path", path)
	}
	return &WorkbookSource{path: path, file: f, sheet: sheet, opts: opts, logger: opts.Logger}, nil
}

// Sheet returns the sheet read as table.
func (w *WorkbookSource) Sheet() string {
	return w.sheet
}

// Columns returns the header row.
func (w *WorkbookSource) Columns(ctx context.Context) ([]string, error) {
	header, _, err := w.read(ctx, true)
	return header, err
}

// Records decodes every data row of the sheet.
func (w *WorkbookSource) Records(ctx context.Context) ([]domain.TransactionRecord, DecodeReport, error) {
	header, rows, err := w.read(ctx, false)
	if err != nil {
		return nil, DecodeReport{}, err
	}
	dec, err := NewDecoder(header, DecodeOptions{
		UnitAreaColumn: w.opts.UnitAreaColumn,
		Source:         "sheet " + w.sheet,
		Logger:         w.logger,
	})
	if err != nil {
		return nil, DecodeReport{}, err
	}

	records := make([]domain.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, dec.Decode(cellValues(row)))
	}
	report := dec.Report()
	w.logger.InfoContext(ctx, "statistics sheet read",
		slog.String("path", w.path),
		slog.String("sheet", w.sheet),
		slog.Int("rows", report.Rows),
		slog.Int("coercion_warnings", report.WarningCount))
	return records, report, nil
}

// DistinctValues lists the values of column.
func (w *WorkbookSource) DistinctValues(ctx context.Context, column string) ([]string, error) {
	header, rows, err := w.read(ctx, false)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, c := range header {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("column %q", column))
	}
	var out []string
	for _, row := range rows {
		if idx < len(row) {
			if v, ok := toString(row[idx]); ok {
				out = append(out, v)
			}
		}
	}
	return sortValues(out), nil
}

// Close closes the workbook.
func (w *WorkbookSource) Close() error {
	return w.file.Close()
}

// read streams the sheet, returning the trimmed header and the non-empty
// data rows.
func (w *WorkbookSource) read(ctx context.Context, headerOnly bool) ([]string, [][]string, error) {
	it, err := w.file.Rows(w.sheet)
	if err != nil {
		return nil, nil, apperrors.NewConnectionError("failed to read sheet", err).WithContext("sheet", w.sheet)
	}
	defer it.Close()

	var header []string
	var rows [][]string
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		cols, err := it.Columns()
		if err != nil {
			return nil, nil, apperrors.NewConnectionError("failed to read row", err).WithContext("sheet", w.sheet)
		}
		if header == nil {
			header = make([]string, len(cols))
			for i, c := range cols {
				header[i], _ = toString(c)
			}
			if headerOnly {
				break
			}
			continue
		}
		if blank(cols) {
			continue
		}
		rows = append(rows, cols)
	}
	if header == nil {
		return nil, nil, apperrors.NewAppValidationError(fmt.Sprintf("sheet %q has no header row", w.sheet))
	}
	return header, rows, nil
}

func cellValues(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		if c != "" {
			out[i] = c
		}
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
