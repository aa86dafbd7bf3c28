package config

import "time"

// Application constants
const (
	AppName    = "Estadistica"
	AppVersion = "1.0.0"

	DefaultPort           = 8080
	DefaultRequestTimeout = 5 * time.Minute
	DefaultRateLimit      = 10 // requests per second
	DefaultBurstSize      = 20

	DefaultDriver         = "pgx"
	DefaultTable          = "Estadistica"
	DefaultUnitAreaColumn = "Area"

	// Stock snapshot, relative to the executable directory.
	DefaultStockFile  = "estadistica compra/Tabla dinámica Analysis (x_bi_sql_view.stock_bodega_sc).xlsm"
	DefaultStockSheet = "Reformateado"

	DefaultReportsDir = "reportes"
	DefaultLogsDir    = "logs"
	DefaultLogLevel   = "info"

	// API endpoints
	APIBasePath     = "/api"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)
