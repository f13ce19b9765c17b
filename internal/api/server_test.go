package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/md2docx/internal/config"
	"github.com/dgallion1/md2docx/internal/metrics"
	"github.com/dgallion1/md2docx/internal/pipeline"
	"github.com/dgallion1/md2docx/internal/style"
)

func testConfig() config.Config {
	return config.Config{
		Port:            "8090",
		DefaultStyle:    style.DefaultName,
		WorkerCount:     1,
		MaxQueueSize:    4,
		MaxUploadBytes:  1024,
		JobTTL:          time.Hour,
		CleanupInterval: time.Minute,
		LogLevel:        "info",
	}
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prom.NewRegistry()
	m := metrics.New(reg)

	conv := pipeline.NewConverter(style.NewRegistry(), log)
	conv.Metrics = m
	orch, err := pipeline.NewOrchestrator(cfg, conv, log, m)
	require.NoError(t, err)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return NewServer(orch, reg, log, cfg)
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func multipartBody(t *testing.T, filename, content, styleName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	if styleName != "" {
		require.NoError(t, mw.WriteField("style", styleName))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestListStyles(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := do(s, httptest.NewRequest(http.MethodGet, "/api/styles", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{"default"}, body["styles"])
	assert.Equal(t, "default", body["default"])
}

func TestConvert_RawBody(t *testing.T) {
	s := newTestServer(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/convert?filename=notes.md", strings.NewReader("# Notes\n\nbody\n"))
	req.Header.Set("Content-Type", "text/markdown")
	w := do(s, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, docxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=notes.docx`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", w.Header().Get("X-Document-Blocks"))
	assert.Equal(t, `"`+pipeline.ContentHashHex(w.Body.Bytes())+`"`, w.Header().Get("ETag"))
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestConvert_Multipart(t *testing.T) {
	s := newTestServer(t, testConfig())
	body, contentType := multipartBody(t, "../secret/report.md", "text\n", "default")
	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", contentType)
	w := do(s, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename=report.docx`, w.Header().Get("Content-Disposition"))
}

func TestConvert_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
		code int
	}{
		{"unknown style", "/api/convert?style=fancy", "text\n", http.StatusNotFound},
		{"unsupported markup", "/api/convert", "```\ncode\n```\n", http.StatusUnprocessableEntity},
		{"structural violation", "/api/convert", "***\n\ntext\n", http.StatusUnprocessableEntity},
		{"invalid front matter", "/api/convert", "---\ntitle: [unclosed\n---\ntext\n", http.StatusUnprocessableEntity},
		{"too large", "/api/convert", strings.Repeat("a", 2048), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig())
			w := do(s, httptest.NewRequest(http.MethodPost, tt.url, strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestConvert_MultipartMissingFile(t *testing.T) {
	s := newTestServer(t, testConfig())
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("style", "default"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := do(s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobs_Lifecycle(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := do(s, httptest.NewRequest(http.MethodPost, "/api/jobs?filename=a.md", strings.NewReader("# A\n")))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	accepted := decode(t, w)
	id, _ := accepted["job_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "/api/jobs/"+id+"/result", accepted["result_url"])

	require.Eventually(t, func() bool {
		w := do(s, httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, nil))
		return w.Code == http.StatusOK && decode(t, w)["status"] == string(pipeline.StatusCompleted)
	}, 5*time.Second, 10*time.Millisecond)

	w = do(s, httptest.NewRequest(http.MethodGet, "/api/jobs/"+id+"/result", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, docxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=a.docx`, w.Header().Get("Content-Disposition"))
}

func TestJobs_FailedResult(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := do(s, httptest.NewRequest(http.MethodPost, "/api/jobs?style=fancy", strings.NewReader("text\n")))
	require.Equal(t, http.StatusAccepted, w.Code)
	id, _ := decode(t, w)["job_id"].(string)

	require.Eventually(t, func() bool {
		w := do(s, httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, nil))
		return decode(t, w)["status"] == string(pipeline.StatusFailed)
	}, 5*time.Second, 10*time.Millisecond)

	w = do(s, httptest.NewRequest(http.MethodGet, "/api/jobs/"+id+"/result", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "style fancy is not found", decode(t, w)["error"])
}

func TestJobs_NotFound(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := do(s, httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(s, httptest.NewRequest(http.MethodGet, "/api/jobs/missing/result", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRoutes(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := do(s, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", decode(t, w)["error"])

	w = do(s, httptest.NewRequest(http.MethodGet, "/api/convert", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "method not allowed", decode(t, w)["error"])
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "secret"
	s := newTestServer(t, cfg)

	w := do(s, httptest.NewRequest(http.MethodGet, "/api/styles", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
	assert.Equal(t, "missing authorization", decode(t, w)["error"])

	req := httptest.NewRequest(http.MethodGet, "/api/styles", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, do(s, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/styles", nil)
	req.Header.Set("Authorization", "bearer secret")
	assert.Equal(t, http.StatusOK, do(s, req).Code)

	// Health and metrics stay public.
	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(s, httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("text\n")))

	w := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `md2docx_conversions_total{outcome="success",style="default"} 1`)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"notes.md":          "notes.md",
		"../../etc/passwd":  "passwd",
		`C:\docs\report.md`: "report.md",
		"..":                "_",
		"":                  "unnamed",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(metrics.OutcomeStyleNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(metrics.OutcomeUnsupportedMarkup))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(metrics.OutcomeStructuralViolation))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(metrics.OutcomeInvalidFrontMatter))
	assert.Equal(t, http.StatusInternalServerError, statusFor(metrics.OutcomeError))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		token, ok := bearerToken(req)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("hello"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/styles", nil))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, http.StatusAccepted, entry["status"])
	assert.EqualValues(t, 5, entry["bytes"])

	buf.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String(), "probe requests log at debug")
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, requestLevel("/api/convert", http.StatusOK))
	assert.Equal(t, slog.LevelInfo, requestLevel("/api/convert", http.StatusUnprocessableEntity))
	assert.Equal(t, slog.LevelError, requestLevel("/api/convert", http.StatusInternalServerError))
	assert.Equal(t, slog.LevelDebug, requestLevel("/health", http.StatusOK))
	assert.Equal(t, slog.LevelError, requestLevel("/health", http.StatusServiceUnavailable))
}
