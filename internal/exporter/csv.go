package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"estadistica/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV atomically writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (int64, error) {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	return writeAtomic(filePath, func(out io.Writer) error {
		return w.Encode(out, options)
	})
}

// Encode writes the CSV document to out.
func (w *CSVWriter) Encode(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteReport writes a report as CSV.
func (w *CSVWriter) WriteReport(filePath string, rep *domain.Report, opts Options) (int64, error) {
	records := make([][]string, len(rep.Rows))
	for i, row := range rep.Rows {
		cells := Cells(row, opts)
		rec := make([]string, len(cells))
		for j, c := range cells {
			rec[j] = formatCell(c)
		}
		records[i] = rec
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   Header(rep, opts),
		Records:   records,
		BOMPrefix: true,
	})
}
