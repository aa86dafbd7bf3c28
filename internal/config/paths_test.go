package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(paths.ExecutableDir))
	assert.Equal(t, filepath.Join(paths.ExecutableDir, DefaultReportsDir), paths.ReportsDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, DefaultLogsDir), paths.LogsDir)
}

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "out")

	t.Run("relative paths join the base", func(t *testing.T) {
		p := NewPaths(base, PathsConfig{ReportsDir: "salida"})
		assert.Equal(t, filepath.Join(base, "salida"), p.ReportsDir)
		assert.Equal(t, filepath.Join(base, "salida", "r.xlsx"), p.GetReportPath("r.xlsx"))
		assert.Equal(t, filepath.Join(base, "logs", "app.log"), p.GetLogPath("app.log"))
	})

	t.Run("absolute paths are kept", func(t *testing.T) {
		p := NewPaths(base, PathsConfig{ReportsDir: abs})
		assert.Equal(t, abs, p.ReportsDir)
		assert.Equal(t, abs, p.Resolve(abs))
	})

	t.Run("configured base dir wins", func(t *testing.T) {
		other := t.TempDir()
		p := NewPaths(base, PathsConfig{BaseDir: other})
		assert.Equal(t, base, p.ExecutableDir)
		assert.Equal(t, filepath.Join(other, "stock.xlsm"), p.Resolve("stock.xlsm"))
		assert.Equal(t, filepath.Join(base, "config.yaml"), p.GetRelativePath("config.yaml"))
	})
}

func TestEnsureDirectories(t *testing.T) {
	p := NewPaths(t.TempDir(), PathsConfig{})
	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.True(t, FileExists(p.ReportsDir))
	assert.False(t, FileExists(filepath.Join(p.ReportsDir, "missing")))
}
