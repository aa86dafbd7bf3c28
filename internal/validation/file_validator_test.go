package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "estadistica/internal/errors"
	"estadistica/internal/shared/testutil"
)

func TestFileValidator_ValidateWorkbook(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		wantType apperrors.ErrorType
	}{
		{
			name: "valid workbook",
			setup: func(t *testing.T) string {
				return testutil.WriteWorkbook(t, "Reformateado", [][]any{{"CódigoProducto", "Bodega", "Cantidad"}})
			},
		},
		{
			name: "macro workbook",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "stock.xlsm")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.xlsx")
			},
			wantType: apperrors.ErrTypeConnection,
		},
		{
			name: "wrong extension",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "stock.csv")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "excel lock file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$stock.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "directory",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "dir.xlsx")
				require.NoError(t, os.Mkdir(path, 0755))
				return path
			},
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			err := NewFileValidator(logger).ValidateWorkbook(tt.setup(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	dir := filepath.Join(t.TempDir(), "reportes", "nested")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	err = v.ValidateOutputDirectory(file)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
