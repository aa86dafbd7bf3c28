package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "estadistica/internal/errors"
	"estadistica/internal/files"
	"estadistica/internal/services"
	"estadistica/internal/shared/testutil"
	"estadistica/pkg/contracts/domain"
)

type fakeReportService struct {
	columns []string
	values  map[string][]string
	result  *services.GenerateResult
	err     error
	got     services.GenerateRequest
}

func (f *fakeReportService) ListColumns(context.Context) ([]string, error) {
	return f.columns, f.err
}

func (f *fakeReportService) DistinctValues(_ context.Context, column string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values[column], nil
}

func (f *fakeReportService) Generate(_ context.Context, req services.GenerateRequest) (*services.GenerateResult, error) {
	f.got = req
	return f.result, f.err
}

func newTestRouter(t *testing.T, svc *fakeReportService, reportsDir string) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	defaults := services.GenerateRequest{
		Format:              domain.ReportFormatExcel,
		LabelColumn:         "MEDIDA",
		IncludeCurrentMonth: true,
	}
	h := NewReportHandler(svc, defaults, files.NewCatalog(reportsDir), apierrors.NewErrorHandler(logger, false), logger)

	r := chi.NewRouter()
	r.Mount("/api/columns", h.ColumnRoutes())
	r.Mount("/api/reports", h.ReportRoutes())
	return r
}

func postJSON(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestReportHandler_Columns(t *testing.T) {
	svc := &fakeReportService{
		columns: []string{"LINEA", "MEDID"},
		values:  map[string][]string{"LINEA": {"PISOS", "PAREDES"}},
	}
	router := newTestRouter(t, svc, t.TempDir())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/columns", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"columns":["LINEA","MEDID"]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/columns/LINEA/values", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"column":"LINEA","values":["PISOS","PAREDES"]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/columns/OTHER/values", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"column":"OTHER","values":[]}`, rec.Body.String())
}

func TestReportHandler_Generate(t *testing.T) {
	svc := &fakeReportService{result: &services.GenerateResult{
		RunID:      "run-1",
		Status:     services.RunStatusCompleted,
		Mode:       "combined",
		ReportRows: 8,
	}}
	router := newTestRouter(t, svc, t.TempDir())

	rec := postJSON(router, `{
		"group_by": ["MEDID"],
		"mode": "combined",
		"filters": [{"attribute": "LINEA", "values": ["PISOS"]}],
		"format": "csv",
		"average_over_window": true
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res services.GenerateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, services.RunStatusCompleted, res.Status)
	assert.Equal(t, 8, res.ReportRows)

	assert.Equal(t, []string{"MEDID"}, svc.got.GroupBy)
	assert.Equal(t, domain.ModeCombined, svc.got.Mode)
	assert.Equal(t, domain.ReportFormatCSV, svc.got.Format)
	assert.Equal(t, "MEDIDA", svc.got.LabelColumn)
	assert.True(t, svc.got.IncludeCurrentMonth)
	assert.True(t, svc.got.AverageOverWindow)
	assert.Equal(t, "LINEA = PISOS", svc.got.Filters.String())
}

func TestReportHandler_GenerateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		result     *services.GenerateResult
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing group by",
			body:       `{"mode":"plain"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown mode",
			body:       `{"group_by":["MEDID"],"mode":"fancy"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"group_by":["MEDID"],"colour":"red"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty filter values",
			body:       `{"group_by":["MEDID"],"filters":[{"attribute":"LINEA","values":[]}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "conflict",
			body:       `{"group_by":["MEDID"]}`,
			err:        apierrors.NewConflictError("a report generation is already running"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "source unreachable",
			body:       `{"group_by":["MEDID"]}`,
			err:        apierrors.NewConnectionError("cannot reach the statistics table", nil),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "empty result",
			body:       `{"group_by":["MEDID"]}`,
			result:     &services.GenerateResult{Status: services.RunStatusEmpty, Message: "no records match the filters"},
			err:        apierrors.NewEmptyResultError("no records match the filters"),
			wantStatus: http.StatusOK,
			wantBody:   `"status":"empty"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeReportService{result: tt.result, err: tt.err}
			rec := postJSON(newTestRouter(t, svc, t.TempDir()), tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestReportHandler_GenerateContentType(t *testing.T) {
	router := newTestRouter(t, &fakeReportService{}, t.TempDir())

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{name: "form body", contentType: "text/plain", body: "group_by=MEDID", wantStatus: http.StatusUnsupportedMediaType, wantCode: "UNSUPPORTED_MEDIA_TYPE"},
		{name: "json body sent as text", contentType: "text/plain", body: `{"group_by":["MEDID"]}`, wantStatus: http.StatusUnsupportedMediaType, wantCode: "UNSUPPORTED_MEDIA_TYPE"},
		{name: "malformed json", contentType: "application/json", body: `{"group_by":`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestReportHandler_Download(t *testing.T) {
	dir := t.TempDir()
	name := domain.ModePlain.FileName(domain.ReportFormatCSV)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("MEDID,Total\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("x"), 0o644))

	router := newTestRouter(t, &fakeReportService{}, dir)

	tests := []struct {
		name       string
		file       string
		wantStatus int
	}{
		{name: "generated report", file: name, wantStatus: http.StatusOK},
		{name: "not generated yet", file: domain.ModeCombined.FileName(domain.ReportFormatExcel), wantStatus: http.StatusNotFound},
		{name: "arbitrary file", file: "secret.txt", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/files/"+tt.file, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, rec.Header().Get("Content-Disposition"), tt.file)
				assert.Equal(t, "MEDID,Total\n", rec.Body.String())
			}
		})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/files", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []files.ReportFile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, name, listed[0].Name)
}
