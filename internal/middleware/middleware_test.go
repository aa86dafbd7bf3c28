package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	apierrors "estadistica/internal/errors"
	"estadistica/internal/shared/testutil"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generated", incoming: ""},
		{name: "propagated", incoming: "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, seen)
			}
		})
	}
}

func TestStructuredLogger(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	h := RequestID(StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "request completed")
	assert.True(t, logs.ContainsAttr("status", int64(http.StatusNotFound)))
	assert.True(t, logs.ContainsAttr("path", "/api/missing"))
}

func TestRecoverer(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := Recoverer(apierrors.NewErrorHandler(logger, false))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	rl := NewRateLimiter(0.001, 2, logger)
	h := rl.Handler(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "rate limit exceeded")
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		preflight  bool
		wantOrigin string
		wantStatus int
	}{
		{name: "any origin", origin: "http://a.test", method: http.MethodGet, wantOrigin: "http://a.test", wantStatus: http.StatusOK},
		{name: "listed origin", allowed: []string{"http://a.test"}, origin: "http://a.test", method: http.MethodGet, wantOrigin: "http://a.test", wantStatus: http.StatusOK},
		{name: "unlisted origin", allowed: []string{"http://a.test"}, origin: "http://b.test", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "preflight", origin: "http://a.test", method: http.MethodOptions, preflight: true, wantOrigin: "http://a.test", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(CORSConfig{AllowedOrigins: tt.allowed})(http.HandlerFunc(okHandler))
			req := httptest.NewRequest(tt.method, "/api/columns", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestOTelMiddleware_RoutePattern(t *testing.T) {
	m := NewOTelMiddleware(noop.NewTracerProvider().Tracer("test"), nil)

	var route string
	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/columns/{column}/values", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		route = routePattern(req)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/columns/LINEA/values", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/columns/{column}/values", route)

	assert.Equal(t, "/raw/path", routePattern(httptest.NewRequest(http.MethodGet, "/raw/path", nil)))
}

type sampleRequest struct {
	GroupBy []string `json:"group_by" validate:"required,min=1,dive,column"`
	Mode    string   `json:"mode" validate:"omitempty,reportmode"`
	Format  string   `json:"format" validate:"omitempty,oneof=xlsx csv"`
}

func TestValidationMiddleware_ValidateStruct(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	m := NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))

	tests := []struct {
		name   string
		req    sampleRequest
		fields []string
	}{
		{name: "valid", req: sampleRequest{GroupBy: []string{"LINEA"}, Mode: "combined", Format: "csv"}},
		{name: "missing group", req: sampleRequest{}, fields: []string{"sampleRequest.group_by"}},
		{name: "blank column", req: sampleRequest{GroupBy: []string{" "}}, fields: []string{"sampleRequest.group_by[0]"}},
		{name: "bad mode and format", req: sampleRequest{GroupBy: []string{"LINEA"}, Mode: "fancy", Format: "pdf"}, fields: []string{"sampleRequest.mode", "sampleRequest.format"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(tt.req)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			details, ok := apiErr.Details.([]apierrors.ValidationError)
			require.True(t, ok)
			got := make([]string, 0, len(details))
			for _, d := range details {
				got = append(got, d.Field)
				assert.NotEmpty(t, d.Message)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestValidationMiddleware_ValidateRequest(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	m := NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
	m.maxBodySize = 64

	var body string
	h := m.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var v map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&v))
		body = v["group_by"].(string)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid", body: `{"group_by":"LINEA"}`, wantStatus: http.StatusOK},
		{name: "invalid json", body: `{"group_by":`, wantStatus: http.StatusBadRequest},
		{name: "too large", body: `{"group_by":"` + strings.Repeat("x", 100) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
	assert.Equal(t, "LINEA", body)
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator("application/json")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
