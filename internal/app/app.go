package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"estadistica/internal/config"
	apierrors "estadistica/internal/errors"
	"estadistica/internal/exporter"
	"estadistica/internal/files"
	"estadistica/internal/filter"
	"estadistica/internal/infrastructure"
	customMiddleware "estadistica/internal/middleware"
	"estadistica/internal/services"
	"estadistica/internal/source"
	"estadistica/internal/stock"
	handlers "estadistica/internal/transport/http"
	"estadistica/internal/validation"
	"estadistica/pkg/contracts/domain"
)

// Options overrides parts of the wiring, mostly for tests.
type Options struct {
	// Logger replaces the logger built from the logging configuration.
	Logger *slog.Logger
	// Paths replaces the paths resolved next to the executable.
	Paths *config.Paths
	// Sources replaces the record source selected by the configuration.
	Sources source.Factory
	// Now is the reference clock of the trailing window.
	Now func() time.Time
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Reports       *services.ReportService
	Health        *services.HealthService
	Defaults      services.GenerateRequest
	Router        *chi.Mux
	Server        *http.Server

	startTime time.Time
}

// New wires an application from cfg. The HTTP router is built but no
// listener is opened until Start.
func New(cfg *config.Config, opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	paths := opts.Paths
	if paths == nil {
		var err error
		paths, err = cfg.ResolvePaths()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve paths: %w", err)
		}
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	defaults, err := DefaultRequest(cfg.Report)
	if err != nil {
		return nil, apierrors.NewConfigError("invalid report defaults", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	sources := opts.Sources
	if sources == nil {
		srcCfg := cfg.Source
		srcCfg.Workbook = paths.Resolve(srcCfg.Workbook)
		sources, err = source.FromConfig(srcCfg, logger.With(slog.String("component", "source")))
		if err != nil {
			return nil, err
		}
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Defaults:      defaults,
		startTime:     time.Now(),
	}
	a.Reports = services.NewReportService(
		sources,
		stock.NewLoader(logger.With(slog.String("component", "stock"))),
		exporter.New(paths, logger.With(slog.String("component", "exporter"))),
		services.ReportServiceOptions{
			StockPath:      paths.Resolve(cfg.Stock.Path),
			StockSheet:     cfg.Stock.Sheet,
			UnitAreaColumn: cfg.Source.UnitAreaColumn,
			Now:            opts.Now,
			Tracer:         otelProviders.Tracer,
			Metrics:        metrics,
			Logger:         logger,
		},
	)
	a.Health = services.NewHealthService(config.AppVersion, paths, sources, logger)

	a.setupRouter()
	a.createServer()
	return a, nil
}

// DefaultRequest maps the report section of the configuration to the
// defaults of every generation. GroupBy may stay empty; callers supply it.
func DefaultRequest(cfg config.ReportConfig) (services.GenerateRequest, error) {
	mode, err := domain.ParseReportMode(cfg.Mode)
	if err != nil {
		return services.GenerateRequest{}, err
	}
	return services.GenerateRequest{
		GroupBy:             append([]string(nil), cfg.GroupBy...),
		Mode:                mode,
		Filters:             filter.Set{},
		Format:              domain.ReportFormat(cfg.Format),
		LabelColumn:         cfg.LabelColumn,
		RetainGroupKey:      cfg.RetainGroupKey,
		RetainUnitArea:      cfg.RetainUnitArea,
		IncludeCurrentMonth: cfg.IncludeCurrentMonth,
		AverageOverWindow:   cfg.AverageOverWindow,
	}, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
		}))
	}
	if rl := a.Config.Security.RateLimit; rl.Enabled && rl.RPS > 0 {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	reportHandler := handlers.NewReportHandler(a.Reports, a.Defaults, files.NewCatalog(a.Paths.ReportsDir), errorHandler, a.Logger)
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, func() infrastructure.RuntimeStats {
		return infrastructure.CollectRuntimeStats(a.startTime)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Get("/metrics/runtime", metricsHandler.Runtime)
		r.Mount("/columns", reportHandler.ColumnRoutes())

		r.Group(func(r chi.Router) {
			if a.Config.Server.RequestTimeout > 0 {
				r.Use(middleware.Timeout(a.Config.Server.RequestTimeout))
			}
			r.Mount("/reports", reportHandler.ReportRoutes())
		})
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Get("/metrics", metricsHandler.Prometheus)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start opens the listener in the background. A listener failure cancels
// the application through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the server and flushes telemetry.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	a.Close(shutdownCtx)

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Close flushes telemetry. The CLI calls it after a one-shot command.
func (a *Application) Close(ctx context.Context) {
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")
	return a.Stop(ctx)
}

// performStartupHealthCheck reports problems that would only surface during
// the first generation.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string
	v := validation.NewFileValidator(a.Logger)

	if err := v.ValidateOutputDirectory(a.Paths.ReportsDir); err != nil {
		warnings = append(warnings, err.Error())
	}

	if stockPath := a.Paths.Resolve(a.Config.Stock.Path); stockPath == "" {
		a.Logger.InfoContext(ctx, "No stock workbook configured, reports will carry zero stock")
	} else if err := v.ValidateWorkbook(stockPath); err != nil {
		warnings = append(warnings, err.Error())
	}

	if a.Config.Source.Kind == string(source.KindWorkbook) {
		if err := v.ValidateWorkbook(a.Paths.Resolve(a.Config.Source.Workbook)); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}
	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
