package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"estadistica/pkg/contracts/domain"
)

// SheetName is the worksheet holding the report.
const SheetName = "Reporte"

// ExcelWriter writes reports as xlsx workbooks.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates an xlsx writer.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

type rowStyles struct {
	header   int
	group    int
	subtotal int
	extra    int
	decimal  int
}

// WriteReport atomically writes rep to filePath.
func (w *ExcelWriter) WriteReport(filePath string, rep *domain.Report, opts Options) (int64, error) {
	w.logger.Info("Writing xlsx file",
		slog.String("file_path", filePath),
		slog.Int("row_count", len(rep.Rows)))

	return writeAtomic(filePath, func(out io.Writer) error {
		return w.Encode(out, rep, opts)
	})
}

// Encode writes the workbook to out.
func (w *ExcelWriter) Encode(out io.Writer, rep *domain.Report, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	styles, err := newRowStyles(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	header := Header(rep, opts)
	if len(rep.Attributes) > 0 {
		if err := sw.SetColWidth(1, len(rep.Attributes), 28); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = excelize.Cell{StyleID: styles.header, Value: h}
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	durIdx := len(header) - 1
	for i, row := range rep.Rows {
		cells := Cells(row, opts)
		style := styles.forKind(row.Kind)
		values := make([]any, len(cells))
		for j, c := range cells {
			id := style
			if j == durIdx && c != nil && id == 0 {
				id = styles.decimal
			}
			values[j] = excelize.Cell{StyleID: id, Value: c}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type styleDef struct {
	dst   *int
	style *excelize.Style
}

func newRowStyles(f *excelize.File) (rowStyles, error) {
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}
	var s rowStyles
	defs := []styleDef{
		{&s.header, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: fill("#D9E1F2")}},
		{&s.group, &excelize.Style{Font: &excelize.Font{Bold: true, Color: "#1F4E78"}}},
		{&s.subtotal, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: fill("#FFF2CC")}},
		{&s.extra, &excelize.Style{Font: &excelize.Font{Italic: true}, Fill: fill("#E2EFDA")}},
		{&s.decimal, &excelize.Style{NumFmt: 2}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return rowStyles{}, fmt.Errorf("failed to create style: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

func (s rowStyles) forKind(kind domain.RowKind) int {
	switch kind {
	case domain.GroupHeaderRow:
		return s.group
	case domain.SubtotalRow:
		return s.subtotal
	case domain.ExtraMetricRow:
		return s.extra
	}
	return 0
}
