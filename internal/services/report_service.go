package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/semaphore"

	"estadistica/internal/dataprocessing"
	apperrors "estadistica/internal/errors"
	"estadistica/internal/exporter"
	"estadistica/internal/filter"
	"estadistica/internal/infrastructure"
	"estadistica/internal/report"
	"estadistica/internal/source"
	"estadistica/internal/stock"
	"estadistica/pkg/contracts/domain"
)

// RunStatus is the outcome of a generation.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusEmpty     RunStatus = "empty"
	RunStatusFailed    RunStatus = "failed"
)

// Pipeline stage names used for spans and metrics.
const (
	StageFetch    = "fetch"
	StageFilter   = "filter"
	StageStock    = "stock"
	StageProcess  = "process"
	StageAnnotate = "annotate"
	StageExport   = "export"
)

// maxRunWarnings caps the coercion warnings copied into a result.
const maxRunWarnings = 20

// StockLoader reads a stock snapshot.
type StockLoader interface {
	Load(ctx context.Context, path, sheet string) (*stock.LoadResult, error)
}

// ReportExporter writes an annotated report.
type ReportExporter interface {
	Export(ctx context.Context, rep *domain.Report, format domain.ReportFormat, opts exporter.Options) (*exporter.Artifact, error)
}

// GenerateRequest is the read-once configuration of one generation.
type GenerateRequest struct {
	GroupBy     []string            `validate:"required,min=1,dive,required"`
	Mode        domain.ReportMode   `validate:"gte=0,lte=3"`
	Filters     filter.Set          `validate:"-"`
	Format      domain.ReportFormat `validate:"omitempty,oneof=xlsx csv"`
	LabelColumn string

	RetainGroupKey      bool
	RetainUnitArea      bool
	IncludeCurrentMonth bool
	AverageOverWindow   bool
}

// GenerateResult summarizes a generation.
type GenerateResult struct {
	RunID    string             `json:"run_id"`
	Status   RunStatus          `json:"status"`
	Mode     string             `json:"mode"`
	Message  string             `json:"message,omitempty"`
	Artifact *exporter.Artifact `json:"artifact,omitempty"`

	Records         int `json:"records"`
	FilteredRecords int `json:"filtered_records"`
	Groups          int `json:"groups"`
	DroppedRows     int `json:"dropped_rows"`
	ReportRows      int `json:"report_rows"`

	StockRecords    int `json:"stock_records"`
	StockDuplicates int `json:"stock_duplicates"`
	StockMatched    int `json:"stock_matched"`

	CurrentYear   int `json:"current_year"`
	ElapsedMonths int `json:"elapsed_months"`

	CoercionWarnings int                      `json:"coercion_warnings"`
	Warnings         []source.CoercionWarning `json:"warnings,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// ReportServiceOptions configures a ReportService.
type ReportServiceOptions struct {
	// StockPath locates the stock workbook. Empty runs without stock.
	StockPath  string
	StockSheet string

	UnitAreaColumn string

	// Now is the reference clock of the trailing window.
	Now     func() time.Time
	Tracer  trace.Tracer
	Metrics *infrastructure.BusinessMetrics
	Logger  *slog.Logger
}

// ReportService runs the report pipeline: fetch, filter, stock, process,
// annotate and export. Only one generation runs at a time.
type ReportService struct {
	sources  source.Factory
	stock    StockLoader
	exporter ReportExporter
	opts     ReportServiceOptions
	running  *semaphore.Weighted
	validate *validator.Validate
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
}

// NewReportService creates a report service.
func NewReportService(sources source.Factory, stockLoader StockLoader, exp ReportExporter, opts ReportServiceOptions) *ReportService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if opts.StockSheet == "" {
		opts.StockSheet = stock.DefaultSheet
	}
	return &ReportService{
		sources:  sources,
		stock:    stockLoader,
		exporter: exp,
		opts:     opts,
		running:  semaphore.NewWeighted(1),
		validate: validator.New(),
		tracer:   opts.Tracer,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With(slog.String("service", "report")),
	}
}

// ListColumns returns the columns of the statistics table.
func (s *ReportService) ListColumns(ctx context.Context) ([]string, error) {
	src, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Columns(ctx)
}

// DistinctValues returns the values a filter on column can select.
func (s *ReportService) DistinctValues(ctx context.Context, column string) ([]string, error) {
	src, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.DistinctValues(ctx, column)
}

// Generate runs one generation. A second call while one is running fails
// with a conflict error. When the filters leave no records the result has
// StatusEmpty and the error is an EMPTY_RESULT error; no file is written.
func (s *ReportService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("invalid report request: %v", err))
	}
	if !s.running.TryAcquire(1) {
		s.metrics.RecordConflict(ctx)
		return nil, apperrors.NewConflictError("a report generation is already running")
	}
	defer s.running.Release(1)

	ctx, runID := infrastructure.NewRunContext(ctx)
	ctx, span := s.tracer.Start(ctx, "report.generate", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("report.mode", req.Mode.String()),
		attribute.StringSlice("report.group_by", req.GroupBy),
	))
	defer span.End()

	s.metrics.RunStarted(ctx)
	defer s.metrics.RunFinished(ctx)

	start := time.Now()
	res := &GenerateResult{RunID: runID, Mode: req.Mode.String()}
	s.logger.InfoContext(ctx, "report generation started",
		slog.String("mode", res.Mode),
		slog.String("group_by", strings.Join(req.GroupBy, ",")),
		slog.String("filters", req.Filters.String()))

	err := s.run(ctx, req, res)
	res.Duration = time.Since(start)

	switch {
	case err == nil:
		res.Status = RunStatusCompleted
	case apperrors.IsType(err, apperrors.ErrTypeEmptyResult):
		res.Status = RunStatusEmpty
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			res.Message = appErr.Message
		}
	default:
		res.Status = RunStatusFailed
		infrastructure.RecordError(ctx, err)
	}
	span.SetAttributes(attribute.String("report.status", string(res.Status)))
	s.metrics.RecordRun(ctx, res.Mode, string(res.Status), res.Duration)
	s.metrics.RecordRows(ctx, res.Records, res.ReportRows, res.CoercionWarnings)

	if res.Status == RunStatusFailed {
		s.logger.ErrorContext(ctx, "report generation failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", res.Duration))
		return nil, err
	}
	s.logger.InfoContext(ctx, "report generation finished",
		slog.String("status", string(res.Status)),
		slog.Int("records", res.Records),
		slog.Int("report_rows", res.ReportRows),
		slog.Int("coercion_warnings", res.CoercionWarnings),
		slog.Duration("duration", res.Duration))
	return res, err
}

func (s *ReportService) run(ctx context.Context, req GenerateRequest, res *GenerateResult) error {
	dims, err := dataprocessing.ResolveDimensions(req.GroupBy)
	if err != nil {
		return err
	}

	var records []domain.TransactionRecord
	err = s.stage(ctx, StageFetch, func(ctx context.Context) error {
		src, err := s.sources(ctx)
		if err != nil {
			return err
		}
		defer src.Close()

		cols, err := src.Columns(ctx)
		if err != nil {
			return err
		}
		if err := checkColumns(cols, dataprocessing.DimensionNames(dims), req.Filters.Attributes()); err != nil {
			return err
		}

		var decoded source.DecodeReport
		records, decoded, err = src.Records(ctx)
		if err != nil {
			return err
		}
		res.Records = len(records)
		res.CoercionWarnings = decoded.WarningCount
		res.Warnings = decoded.Warnings
		if len(res.Warnings) > maxRunWarnings {
			res.Warnings = res.Warnings[:maxRunWarnings]
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.stage(ctx, StageFilter, func(context.Context) error {
		records = req.Filters.Apply(records)
		res.FilteredRecords = len(records)
		return nil
	})
	if len(records) == 0 {
		return apperrors.NewEmptyResultError("no records match the selected filters").
			WithContext("filters", req.Filters.String())
	}

	var snapshot []domain.StockRecord
	err = s.stage(ctx, StageStock, func(ctx context.Context) error {
		if s.opts.StockPath == "" || s.stock == nil {
			s.logger.WarnContext(ctx, "no stock workbook configured, stock is zero")
			return nil
		}
		loaded, err := s.stock.Load(ctx, s.opts.StockPath, s.opts.StockSheet)
		if err != nil {
			return err
		}
		snapshot = loaded.Records
		res.StockRecords = len(loaded.Records)
		res.StockDuplicates = loaded.Duplicates
		return nil
	})
	if err != nil {
		return err
	}

	var rows []domain.AggregatedRow
	_ = s.stage(ctx, StageProcess, func(context.Context) error {
		processor := dataprocessing.NewStatisticsProcessor(dims, dataprocessing.ProcessingOptions{
			Now:                 s.opts.Now,
			IncludeCurrentMonth: req.IncludeCurrentMonth,
			AverageOverWindow:   req.AverageOverWindow,
			KeepUnitArea:        req.Mode.HasExtra() || req.RetainUnitArea,
		})
		var stats dataprocessing.ProcessingStats
		rows, stats = processor.Process(records, snapshot)
		res.Groups = stats.Aggregate.Groups
		res.DroppedRows = stats.Aggregate.DroppedRows
		res.StockMatched = stats.StockMatched
		res.CurrentYear = stats.CurrentYear
		res.ElapsedMonths = stats.ElapsedMonths
		return nil
	})
	if len(rows) == 0 {
		return apperrors.NewEmptyResultError("no record carries every grouping value").
			WithContext("group_by", strings.Join(req.GroupBy, ","))
	}

	var rep *domain.Report
	err = s.stage(ctx, StageAnnotate, func(context.Context) error {
		annotator, err := report.NewAnnotator(report.Layout{
			Attributes:  dataprocessing.DimensionNames(dims),
			LabelColumn: req.LabelColumn,
		})
		if err != nil {
			return err
		}
		rep = annotator.Annotate(rows, req.Mode)
		res.ReportRows = len(rep.Rows)
		return nil
	})
	if err != nil {
		return err
	}

	return s.stage(ctx, StageExport, func(ctx context.Context) error {
		artifact, err := s.exporter.Export(ctx, rep, req.Format, exporter.Options{
			RetainGroupKey: req.RetainGroupKey,
			RetainUnitArea: req.RetainUnitArea,
			UnitAreaColumn: s.opts.UnitAreaColumn,
		})
		if err != nil {
			return err
		}
		res.Artifact = artifact
		return nil
	})
}

// stage runs fn inside a span and records its duration.
func (s *ReportService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "report."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordStage(ctx, name, time.Since(start))
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	s.logger.DebugContext(ctx, "report stage finished",
		slog.String("stage", name),
		slog.Duration("duration", time.Since(start)))
	return err
}

// checkColumns rejects grouping or filter columns the table does not have.
func checkColumns(columns []string, groupBy, filterAttrs []string) error {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, c := range groupBy {
		if !known[c] {
			return apperrors.NewAppValidationError(fmt.Sprintf("unknown grouping column %q", c)).WithContext("column", c)
		}
	}
	for _, c := range filterAttrs {
		if !known[c] {
			return apperrors.NewAppValidationError(fmt.Sprintf("unknown filter column %q", c)).WithContext("column", c)
		}
	}
	return nil
}
