package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultRequestTimeout, cfg.Server.RequestTimeout)
	assert.Equal(t, "sql", cfg.Source.Kind)
	assert.Equal(t, "pgx", cfg.Source.Driver)
	assert.Equal(t, "Estadistica", cfg.Source.Table)
	assert.Equal(t, "Area", cfg.Source.UnitAreaColumn)
	assert.Equal(t, "Reformateado", cfg.Stock.Sheet)
	assert.Equal(t, "plain", cfg.Report.Mode)
	assert.Equal(t, "xlsx", cfg.Report.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
  request_timeout: 2m
source:
  kind: workbook
  workbook: data/estadistica.xlsx
  sheet: Hoja1
report:
  group_by: [LINEA, MEDID]
  mode: combined
  retain_unit_area: true
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
				assert.Equal(t, "workbook", cfg.Source.Kind)
				assert.Equal(t, "Hoja1", cfg.Source.Sheet)
				assert.Equal(t, "Estadistica", cfg.Source.Table)
				assert.Equal(t, []string{"LINEA", "MEDID"}, cfg.Report.GroupBy)
				assert.Equal(t, "combined", cfg.Report.Mode)
				assert.True(t, cfg.Report.RetainUnitArea)
			},
		},
		{
			name: "environment wins over file",
			file: "server:\n  port: 9090\nreport:\n  mode: extra\n",
			env: map[string]string{
				"ESTADISTICA_SERVER_PORT":                "7070",
				"ESTADISTICA_REPORT_GROUP_BY":            "LINEA,MEDID",
				"ESTADISTICA_STOCK_FILE":                 "/tmp/stock.xlsm",
				"ESTADISTICA_REPORT_AVERAGE_OVER_WINDOW": "true",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "extra", cfg.Report.Mode)
				assert.Equal(t, []string{"LINEA", "MEDID"}, cfg.Report.GroupBy)
				assert.Equal(t, "/tmp/stock.xlsm", cfg.Stock.Path)
				assert.True(t, cfg.Report.AverageOverWindow)
			},
		},
		{
			name:    "invalid mode",
			file:    "report:\n  mode: weekly\n",
			wantErr: true,
		},
		{
			name:    "workbook source without workbook",
			file:    "source:\n  kind: workbook\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid default", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "zero read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "uppercase level normalized", mutate: func(c *Config) { c.Logging.Level = "DEBUG" }},
		{name: "bad format", mutate: func(c *Config) { c.Report.Format = "pdf" }, wantErr: true},
		{name: "sql without dsn", mutate: func(c *Config) { c.Source.DSN = "" }, wantErr: true},
		{name: "missing table", mutate: func(c *Config) { c.Source.Table = "" }, wantErr: true},
		{name: "file logging without path", mutate: func(c *Config) { c.Logging.FilePath = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
