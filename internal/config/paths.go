package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations used by a run.
type Paths struct {
	ExecutableDir string
	BaseDir       string
	ReportsDir    string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable
// location, never the working directory.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}
	return NewPaths(filepath.Dir(exe), PathsConfig{}), nil
}

// NewPaths resolves cfg against baseDir. A configured BaseDir overrides
// baseDir.
func NewPaths(baseDir string, cfg PathsConfig) *Paths {
	p := &Paths{ExecutableDir: baseDir, BaseDir: baseDir}
	if cfg.BaseDir != "" {
		p.BaseDir = cfg.BaseDir
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = DefaultReportsDir
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = DefaultLogsDir
	}
	p.ReportsDir = p.Resolve(cfg.ReportsDir)
	p.LogsDir = p.Resolve(cfg.LogsDir)
	return p
}

// ResolvePaths builds the paths of a loaded configuration.
func (c *Config) ResolvePaths() (*Paths, error) {
	exe, err := GetPaths()
	if err != nil {
		return nil, err
	}
	return NewPaths(exe.ExecutableDir, c.Paths), nil
}

// Resolve joins a relative path to the base directory. Absolute paths are
// returned as-is.
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// GetReportPath returns the path of a report artifact
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path of a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("base", p.BaseDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		))
}
