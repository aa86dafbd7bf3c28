package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g.
// ESTADISTICA_SOURCE_DSN.
const EnvPrefix = "ESTADISTICA"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Stock     StockConfig     `yaml:"stock" envconfig:"STOCK"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// RequestTimeout bounds a single generation started over HTTP.
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against BaseDir, which defaults to the executable directory.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// SourceConfig selects where the statistics table is read from.
type SourceConfig struct {
	Kind           string `yaml:"kind" envconfig:"KIND" validate:"oneof=sql workbook"`
	Driver         string `yaml:"driver" envconfig:"DRIVER"`
	DSN            string `yaml:"dsn" envconfig:"DSN"`
	Table          string `yaml:"table" envconfig:"TABLE" validate:"required"`
	Workbook       string `yaml:"workbook" envconfig:"WORKBOOK"`
	Sheet          string `yaml:"sheet" envconfig:"SHEET"`
	UnitAreaColumn string `yaml:"unit_area_column" envconfig:"UNIT_AREA_COLUMN"`
}

// StockConfig locates the stock snapshot workbook.
type StockConfig struct {
	Path  string `yaml:"path" envconfig:"FILE"`
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// ReportConfig holds generation defaults.
type ReportConfig struct {
	GroupBy     []string `yaml:"group_by" envconfig:"GROUP_BY"`
	Mode        string   `yaml:"mode" envconfig:"MODE" validate:"oneof=plain subtotal subtotals extra combined"`
	Format      string   `yaml:"format" envconfig:"FORMAT" validate:"oneof=xlsx csv"`
	LabelColumn string   `yaml:"label_column" envconfig:"LABEL_COLUMN"`

	RetainGroupKey bool `yaml:"retain_group_key" envconfig:"RETAIN_GROUP_KEY"`
	RetainUnitArea bool `yaml:"retain_unit_area" envconfig:"RETAIN_UNIT_AREA"`

	// IncludeCurrentMonth counts the running month into the trailing window.
	IncludeCurrentMonth bool `yaml:"include_current_month" envconfig:"INCLUDE_CURRENT_MONTH"`
	// AverageOverWindow divides the trailing figure by 12 for Prom.
	AverageOverWindow bool `yaml:"average_over_window" envconfig:"AVERAGE_OVER_WINDOW"`
}

// TelemetryConfig controls tracing and metrics export.
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	// TraceStdout writes finished spans to stdout.
	TraceStdout bool `yaml:"trace_stdout" envconfig:"TRACE_STDOUT"`
}

// Load loads configuration from defaults, the first config file found and
// environment variables, in increasing precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the
// file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable keep their current value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays a YAML file on cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Report.Mode = strings.ToLower(c.Report.Mode)
	if err := validate.Struct(c); err != nil {
		return err
	}

	switch c.Source.Kind {
	case "sql":
		if c.Source.Driver == "" || c.Source.DSN == "" {
			return fmt.Errorf("sql source needs a driver and a dsn")
		}
	case "workbook":
		if c.Source.Workbook == "" {
			return fmt.Errorf("workbook source needs a workbook path")
		}
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("file logging needs a file path")
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	if paths, err := GetPaths(); err == nil {
		locations = append(locations, paths.GetRelativePath("config.yaml"))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    DefaultRequestTimeout + 15*time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "both",
			FilePath: "logs/estadistica.log",
		},
		Paths: PathsConfig{
			ReportsDir: DefaultReportsDir,
			LogsDir:    DefaultLogsDir,
		},
		Source: SourceConfig{
			Kind:           "sql",
			Driver:         DefaultDriver,
			DSN:            "postgres://localhost:5432/estadistica",
			Table:          DefaultTable,
			UnitAreaColumn: DefaultUnitAreaColumn,
		},
		Stock: StockConfig{
			Path:  DefaultStockFile,
			Sheet: DefaultStockSheet,
		},
		Report: ReportConfig{
			Mode:   "plain",
			Format: "xlsx",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "estadistica",
			Environment:   "production",
			EnableMetrics: true,
		},
	}
}
