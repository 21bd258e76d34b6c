package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Achyut2001/Data-provider-Service/internal/config"
	"github.com/Achyut2001/Data-provider-Service/internal/core"
	"github.com/Achyut2001/Data-provider-Service/internal/repository/memory"
	"github.com/Achyut2001/Data-provider-Service/internal/xlsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// Helpers
// =============================================================================

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Upload: config.UploadConfig{
			MaxFileSize:      1 << 20,
			MaxConcurrent:    2,
			MaxWaitTime:      time.Second,
			DefaultSubmitter: "system",
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

type testEnv struct {
	srv   *Server
	store *memory.Store
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	store := memory.NewStore()
	recorder := core.NewPrometheusRecorder()
	service := core.NewService(store.Audits(), store.Properties(), xlsx.NewReader(),
		core.WithUploadLimiter(core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)),
		core.WithMetrics(recorder),
	)
	srv := NewServer(service, cfg, recorder.Registry())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

// listingRow returns one data row in column order.
func listingRow(title string, lat any) []any {
	return []any{
		"", title, "Three bedroom villa", "villa", "12 Beach Road", "Panaji", "Goa", "India",
		403001, lat, 74.124, 42, "Asha Rao", 9876543210, "asha@example.com",
		2500, "INR", `["WiFi","AC"]`, "https://example.com/listings/1", "ACTIVE",
		"2024-01-15 10:30:00", "",
	}
}

func listingWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"property_id", "property_title"}))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// uploadRequest builds a multipart upload. An empty field name omits the file.
func uploadRequest(t *testing.T, field, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mp := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mp.WriteField(k, v))
	}
	if field != "" {
		fw, err := mp.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mp.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/excel/upload", &body)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =============================================================================
// Upload
// =============================================================================

func TestUpload_ProcessesWorkbook(t *testing.T) {
	env := newTestEnv(t, testConfig())
	data := listingWorkbook(t, listingRow("Sea View Villa", 15.2993), listingRow("Bad Latitude", 95))

	rec := env.do(uploadRequest(t, "file", "listings.xlsx", data, map[string]string{"uploadedBy": "ops"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sum := decode[core.UploadSummary](t, rec)
	assert.Equal(t, "listings.xlsx", sum.FileName)
	assert.Equal(t, core.StateCompleted, sum.Status)
	assert.Equal(t, 2, sum.TotalRows)
	assert.Equal(t, 1, sum.SuccessRows)
	assert.Equal(t, 1, sum.FailedRows)
	assert.Equal(t, "Processed 2 rows: 1 success, 1 failed, 0 warnings", sum.Message)
	assert.Equal(t, 1, env.store.PropertyCount())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/excel/status/"+sum.UploadID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	audit := decode[core.BatchAudit](t, rec)
	assert.Equal(t, "ops", audit.SubmittedBy)
	require.Contains(t, audit.Outcomes, 3)
	assert.Equal(t, core.MsgLatitudeRange, *audit.Outcomes[3].ErrorMessage)
	assert.True(t, audit.Outcomes[2].Success)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/excel/uploads?status=completed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.BatchAudit](t, rec), 1)
}

func TestUpload_DefaultSubmitter(t *testing.T) {
	env := newTestEnv(t, testConfig())
	data := listingWorkbook(t, listingRow("Sea View Villa", 15.2993))

	rec := env.do(uploadRequest(t, "file", "a.xlsx", data, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	sum := decode[core.UploadSummary](t, rec)
	audit, err := env.store.FindAuditByID(context.Background(), sum.UploadID)
	require.NoError(t, err)
	assert.Equal(t, "system", audit.SubmittedBy)
}

func TestUpload_Rejections(t *testing.T) {
	small := testConfig()
	small.Upload.MaxFileSize = 8

	tests := []struct {
		name     string
		cfg      *config.Config
		field    string
		filename string
		data     []byte
		wantCode int
		wantErr  string
	}{
		{"missing file", testConfig(), "", "", nil, http.StatusBadRequest, "FILE004"},
		{"wrong field name", testConfig(), "upload", "a.xlsx", []byte("x"), http.StatusBadRequest, "FILE004"},
		{"empty file", testConfig(), "file", "a.xlsx", []byte{}, http.StatusBadRequest, "FILE005"},
		{"not xlsx", testConfig(), "file", "a.csv", []byte("a,b"), http.StatusBadRequest, "FILE006"},
		{"legacy xls", testConfig(), "file", "a.xls", []byte("xx"), http.StatusBadRequest, "FILE006"},
		{"too large", small, "file", "a.xlsx", bytes.Repeat([]byte("x"), 64), http.StatusRequestEntityTooLarge, "FILE001"},
		{"unreadable workbook", testConfig(), "file", "a.xlsx", []byte("not a zip"), http.StatusInternalServerError, "FILE002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.cfg)
			rec := env.do(uploadRequest(t, tt.field, tt.filename, tt.data, nil))

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			body := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantErr, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestUpload_ServerErrorHidesDetail(t *testing.T) {
	env := newTestEnv(t, testConfig())
	rec := env.do(uploadRequest(t, "file", "a.xlsx", []byte("not a zip"), nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, body.Message, body.Error)
	assert.NotContains(t, body.Error, "zip")

	failed, err := env.store.FindAuditsByStatus(context.Background(), core.StateFailed)
	require.NoError(t, err)
	assert.Len(t, failed, 1)
}

// =============================================================================
// Upload queries
// =============================================================================

func TestUploadStatus_NotFound(t *testing.T) {
	env := newTestEnv(t, testConfig())

	for _, id := range []string{"not-a-uuid", "3f2b1c4d-0000-4000-8000-000000000000"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/api/excel/status/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "UPL003", decode[ErrorResponse](t, rec).Code)
	}
}

func TestListUploads(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/excel/uploads?status=FAILED", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	for _, q := range []string{"", "?status=archived"} {
		rec = env.do(httptest.NewRequest(http.MethodGet, "/api/excel/uploads"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "UPL006", decode[ErrorResponse](t, rec).Code)
	}
}

// =============================================================================
// Property administration
// =============================================================================

func TestUpdatePropertyStatus(t *testing.T) {
	env := newTestEnv(t, testConfig())
	seed := &core.Property{Title: "Seed", Status: core.StatusPending, Amenities: []string{}}
	require.NoError(t, env.store.Save(context.Background(), seed))

	tests := []struct {
		name       string
		path       string
		body       string
		wantCode   int
		wantErr    string
		wantStatus string
	}{
		{"approve", "/api/admin/properties/1/status", `{"status":"approved"}`, http.StatusOK, "", core.StatusApproved},
		{"reject", "/api/admin/properties/1/status", `{"status":"REJECTED"}`, http.StatusOK, "", core.StatusRejected},
		{"bad id", "/api/admin/properties/abc/status", `{"status":"ACTIVE"}`, http.StatusBadRequest, "PRP003", ""},
		{"bad body", "/api/admin/properties/1/status", `{status`, http.StatusBadRequest, "REQ001", ""},
		{"unknown status", "/api/admin/properties/1/status", `{"status":"ARCHIVED"}`, http.StatusBadRequest, "PRP002", ""},
		{"unknown property", "/api/admin/properties/99/status", `{"status":"ACTIVE"}`, http.StatusNotFound, "PRP001", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := env.do(req)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, rec).Code)
				return
			}
			assert.Equal(t, tt.wantStatus, decode[core.Property](t, rec).Status)
		})
	}
}

func TestRejectedProperties(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/properties/rejected", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	require.NoError(t, env.store.Save(context.Background(), &core.Property{Title: "No", Status: core.StatusRejected}))
	require.NoError(t, env.store.Save(context.Background(), &core.Property{Title: "Yes", Status: core.StatusApproved}))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/admin/properties/rejected", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	props := decode[[]core.Property](t, rec)
	require.Len(t, props, 1)
	assert.Equal(t, "No", props[0].Title)
}

// =============================================================================
// Operational endpoints and middleware
// =============================================================================

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])

	rec = env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	env := newTestEnv(t, cfg)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, testConfig())
	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	env := newTestEnv(t, cfg)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/properties/rejected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/properties/rejected", nil)
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, env.do(req).Code)

	assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, UploadLimit: 1}
	env := newTestEnv(t, cfg)

	first := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/properties/rejected", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/properties/rejected", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, second).Code)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	steps := []struct {
		name    string
		advance time.Duration
		ip      string
		want    bool
	}{
		{"first request", 0, "1.1.1.1", true},
		{"second request", 0, "1.1.1.1", true},
		{"over limit", 0, "1.1.1.1", false},
		{"other client unaffected", 0, "2.2.2.2", true},
		{"new window", 61 * time.Second, "1.1.1.1", true},
	}
	for _, step := range steps {
		now = now.Add(step.advance)
		if got := rl.allow(step.ip); got != step.want {
			t.Errorf("%s: allow(%s) = %v, want %v", step.name, step.ip, got, step.want)
		}
	}

	now = now.Add(3 * time.Minute)
	rl.evict()
	assert.Empty(t, rl.visitors)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrUploadNotFound, http.StatusNotFound},
		{core.ErrPropertyNotFound, http.StatusNotFound},
		{core.ErrInvalidStatus, http.StatusBadRequest},
		{core.ErrTooManyUploads, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{core.ErrProcessingFile, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
