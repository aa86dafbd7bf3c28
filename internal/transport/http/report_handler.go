package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "estadistica/internal/errors"
	"estadistica/internal/files"
	"estadistica/internal/filter"
	appmw "estadistica/internal/middleware"
	"estadistica/internal/services"
	api "estadistica/pkg/contracts/api/v1"
	"estadistica/pkg/contracts/domain"
)

// ReportServiceInterface is the part of services.ReportService the handler
// drives.
type ReportServiceInterface interface {
	ListColumns(ctx context.Context) ([]string, error)
	DistinctValues(ctx context.Context, column string) ([]string, error)
	Generate(ctx context.Context, req services.GenerateRequest) (*services.GenerateResult, error)
}

// ReportHandler handles column discovery, report generation and artifact
// download.
type ReportHandler struct {
	service      ReportServiceInterface
	defaults     services.GenerateRequest
	catalog      *files.Catalog
	validation   *appmw.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewReportHandler creates a report handler. defaults supplies the options a
// request omits; catalog serves the generated files.
func NewReportHandler(service ReportServiceInterface, defaults services.GenerateRequest, catalog *files.Catalog, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ReportHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:      service,
		defaults:     defaults,
		catalog:      catalog,
		validation:   appmw.NewValidationMiddleware(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "report")),
	}
}

// ColumnRoutes returns the router mounted at /api/columns.
func (h *ReportHandler) ColumnRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListColumns)
	r.Get("/{column}/values", h.DistinctValues)
	return r
}

// ReportRoutes returns the router mounted at /api/reports.
func (h *ReportHandler) ReportRoutes() chi.Router {
	r := chi.NewRouter()
	r.With(appmw.ContentTypeValidator("application/json"), h.validation.ValidateRequest).Post("/", h.Generate)
	r.Get("/files", h.ListFiles)
	r.Get("/files/{name}", h.Download)
	return r
}

// ListColumns handles GET /api/columns
func (h *ReportHandler) ListColumns(w http.ResponseWriter, r *http.Request) {
	columns, err := h.service.ListColumns(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.ColumnsResponse{Columns: columns})
}

// DistinctValues handles GET /api/columns/{column}/values
func (h *ReportHandler) DistinctValues(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	values, err := h.service.DistinctValues(r.Context(), column)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if values == nil {
		values = []string{}
	}
	render.JSON(w, r, api.ValuesResponse{Column: column, Values: values})
}

// Generate handles POST /api/reports. A run whose filters leave no records
// answers 200 with status "empty".
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body api.ReportRequest
	if err := h.validation.DecodeJSON(r, &body); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req, err := h.toGenerateRequest(body)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "report requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("mode", req.Mode.String()),
		slog.Any("group_by", req.GroupBy))

	res, err := h.service.Generate(r.Context(), req)
	if err != nil && !(res != nil && res.Status == services.RunStatusEmpty) {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, res)
}

// ListFiles handles GET /api/reports/files
func (h *ReportHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	reports, err := h.catalog.List()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if reports == nil {
		reports = []files.ReportFile{}
	}
	render.JSON(w, r, reports)
}

// Download handles GET /api/reports/files/{name}. Only the fixed artifact
// names are served.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	report, err := h.catalog.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "downloading report",
		slog.String("name", report.Name),
		slog.Int64("size", report.Size))
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Name+`"`)
	http.ServeFile(w, r, report.Path)
}

func (h *ReportHandler) toGenerateRequest(body api.ReportRequest) (services.GenerateRequest, error) {
	req := h.defaults
	req.GroupBy = body.GroupBy

	if body.Mode != "" {
		mode, err := domain.ParseReportMode(body.Mode)
		if err != nil {
			return req, apierrors.InvalidRequestWithError(err)
		}
		req.Mode = mode
	}
	if body.Format != "" {
		req.Format = domain.ReportFormat(body.Format)
	}
	if body.LabelColumn != "" {
		req.LabelColumn = body.LabelColumn
	}

	var set filter.Set
	for _, c := range body.Filters {
		set = set.Add(c.Attribute, c.Values...)
	}
	req.Filters = set

	overrideBool(&req.RetainGroupKey, body.RetainGroupKey)
	overrideBool(&req.RetainUnitArea, body.RetainUnitArea)
	overrideBool(&req.IncludeCurrentMonth, body.IncludeCurrentMonth)
	overrideBool(&req.AverageOverWindow, body.AverageOverWindow)
	return req, nil
}

func overrideBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
