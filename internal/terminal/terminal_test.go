package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estadistica/internal/app"
	"estadistica/internal/config"
	apperrors "estadistica/internal/errors"
	"estadistica/internal/services"
	"estadistica/internal/shared/testutil"
	"estadistica/internal/source"
	"estadistica/pkg/contracts/domain"
)

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer, *bytes.Buffer, *config.Paths) {
	t.Helper()
	t.Setenv("ESTADISTICA_CONFIG", "")
	t.Setenv("ESTADISTICA_STOCK_FILE", "")

	logger, _ := testutil.NewTestLogger(t)
	sources, err := source.FromConfig(config.SourceConfig{Kind: "workbook", Workbook: testutil.StatisticsWorkbook(t)}, logger)
	require.NoError(t, err)
	paths := config.NewPaths(t.TempDir(), config.PathsConfig{})

	var out, errOut bytes.Buffer
	cli := NewCLI(Options{
		Output:    &out,
		ErrOutput: &errOut,
		App: app.Options{
			Logger:  logger,
			Paths:   paths,
			Sources: sources,
			Now:     func() time.Time { return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC) },
		},
	})
	return cli, &out, &errOut, paths
}

func TestCLI_Generate(t *testing.T) {
	cli, out, errOut, paths := newTestCLI(t)

	code := cli.Execute(context.Background(), []string{
		"generate", "--group-by", "MEDID", "--subtotals", "--format", "csv", "--filter", "LINEA=PISOS|PAREDES",
	})
	require.Equal(t, ExitOK, code, errOut.String())

	name := domain.ModeSubtotal.FileName(domain.ReportFormatCSV)
	assert.FileExists(t, filepath.Join(paths.ReportsDir, name))
	assert.Contains(t, out.String(), "Report subtotal (completed)")
	assert.Contains(t, out.String(), name)

	out.Reset()
	require.Equal(t, ExitOK, cli.Execute(context.Background(), []string{"reports"}), errOut.String())
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), name)
	assert.Contains(t, out.String(), "subtotal")
}

func TestCLI_GenerateJSON(t *testing.T) {
	cli, out, errOut, _ := newTestCLI(t)

	code := cli.Execute(context.Background(), []string{
		"generate", "--json", "-g", "LINEA", "--mode", "combined", "--format", "xlsx",
	})
	require.Equal(t, ExitOK, code, errOut.String())

	var res services.GenerateResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, services.RunStatusCompleted, res.Status)
	assert.Equal(t, "combined", res.Mode)
	assert.Equal(t, 3, res.Records)
}

func TestCLI_GenerateEmpty(t *testing.T) {
	cli, out, errOut, paths := newTestCLI(t)

	code := cli.Execute(context.Background(), []string{"generate", "-g", "MEDID", "-f", "LINEA=TECHOS"})
	assert.Equal(t, ExitOK, code)
	assert.Empty(t, errOut.String())
	assert.Contains(t, out.String(), "(empty)")
	assert.NoFileExists(t, filepath.Join(paths.ReportsDir, domain.ModePlain.FileName(domain.ReportFormatExcel)))
}

func TestCLI_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no group by", args: []string{"generate"}, want: ExitUsage},
		{name: "bad filter", args: []string{"generate", "-g", "MEDID", "-f", "LINEA"}, want: ExitUsage},
		{name: "bad mode", args: []string{"generate", "-g", "MEDID", "--mode", "fancy"}, want: ExitUsage},
		{name: "unknown flag", args: []string{"generate", "--colour"}, want: ExitUsage},
		{name: "unknown column", args: []string{"values", "NADA"}, want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _, errOut, _ := newTestCLI(t)
			code := cli.Execute(context.Background(), tt.args)
			assert.Equal(t, tt.want, code)
			assert.Contains(t, errOut.String(), "Error:")
		})
	}
}

func TestCLI_ColumnsAndValues(t *testing.T) {
	cli, out, errOut, _ := newTestCLI(t)
	require.Equal(t, ExitOK, cli.Execute(context.Background(), []string{"columns"}), errOut.String())
	assert.Contains(t, out.String(), "Columns:")
	assert.Contains(t, out.String(), "MEDID")

	cli, out, errOut, _ = newTestCLI(t)
	require.Equal(t, ExitOK, cli.Execute(context.Background(), []string{"values", "LINEA"}), errOut.String())
	assert.Equal(t, "LINEA:\nPAREDES\nPISOS\n", out.String())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", want: ExitOK},
		{name: "empty result", err: apperrors.NewEmptyResultError("no records"), want: ExitOK},
		{name: "validation", err: apperrors.NewAppValidationError("bad"), want: ExitUsage},
		{name: "config", err: apperrors.NewConfigError("bad", nil), want: ExitUsage},
		{name: "connection", err: apperrors.NewConnectionError("down", nil), want: ExitFailure},
		{name: "plain", err: errors.New("boom"), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
