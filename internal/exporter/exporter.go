package exporter

import (
	"context"
	"log/slog"

	"estadistica/internal/config"
	apperrors "estadistica/internal/errors"
	"estadistica/pkg/contracts/domain"
)

// Artifact describes a written report file.
type Artifact struct {
	Path   string              `json:"path"`
	Name   string              `json:"name"`
	Format domain.ReportFormat `json:"format"`
	Rows   int                 `json:"rows"`
	Bytes  int64               `json:"bytes"`
}

// Exporter writes reports into the reports directory under the fixed file
// name of their mode.
type Exporter struct {
	paths  *config.Paths
	logger *slog.Logger
	xlsx   *ExcelWriter
	csv    *CSVWriter
}

// New creates an exporter.
func New(paths *config.Paths, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		paths:  paths,
		logger: logger,
		xlsx:   NewExcelWriter(logger),
		csv:    NewCSVWriter(logger),
	}
}

// Export writes rep in format. Any failure is a storage error and leaves no
// file behind.
func (e *Exporter) Export(ctx context.Context, rep *domain.Report, format domain.ReportFormat, opts Options) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if format == "" {
		format = domain.ReportFormatExcel
	}

	name := rep.Mode.FileName(format)
	path := e.paths.GetReportPath(name)

	var (
		n   int64
		err error
	)
	switch format {
	case domain.ReportFormatExcel:
		n, err = e.xlsx.WriteReport(path, rep, opts)
	case domain.ReportFormatCSV:
		n, err = e.csv.WriteReport(path, rep, opts)
	default:
		return nil, apperrors.NewAppValidationError("unsupported report format " + string(format))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to write report", err).WithContext("path", path)
	}

	e.logger.InfoContext(ctx, "report exported",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", len(rep.Rows)),
		slog.Int64("bytes", n))

	return &Artifact{Path: path, Name: name, Format: format, Rows: len(rep.Rows), Bytes: n}, nil
}
