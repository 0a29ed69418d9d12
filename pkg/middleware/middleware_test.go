package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/agexparts/freight-service/pkg/errors"
	"github.com/agexparts/freight-service/pkg/logging"
)

func newTestRouter() *gin.Engine {
	return newLoggedRouter(logging.Nop())
}

func newLoggedRouter(logger *logging.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	Setup(router, DefaultConfig("freight-test", logger))
	return router
}

func bufferLogger(buf *bytes.Buffer) *logging.Logger {
	cfg := logging.DefaultConfig("freight-test")
	cfg.Output = buf
	cfg.Level = logging.LevelDebug
	return logging.New(cfg)
}

// logLines decodes the JSON log lines whose msg equals message
func logLines(t *testing.T, buf *bytes.Buffer, message string) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(raw) == 0 {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal(raw, &line))
		if line["msg"] == message {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestRequestIDPropagates(t *testing.T) {
	router := newTestRouter()
	var seen any
	router.GET("/ping", func(c *gin.Context) {
		seen = c.Request.Context().Value(logging.RequestIDKey)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-123", seen)
	assert.NotEmpty(t, rec.Header().Get(HeaderCorrelationID))
}

func TestRequestIDGenerated(t *testing.T) {
	router := newTestRouter()
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestContentTypeRejectsNonJSON(t *testing.T) {
	router := newTestRouter()
	called := false
	router.POST("/quote", func(c *gin.Context) { called = true })

	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader("zip=75201"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.False(t, called)
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	router := newTestRouter()
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.ErrConfiguration("Estes API key is not configured"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeConfigurationError, body.Code)
	assert.Equal(t, "/fail", body.Path)
	assert.NotEmpty(t, body.RequestID)
}

func TestRecoveryLogsPanicWithStack(t *testing.T) {
	var buf bytes.Buffer
	router := newLoggedRouter(bufferLogger(&buf))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(HeaderRequestID, "req-panic")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	lines := logLines(t, &buf, "Panic recovered")
	require.Len(t, lines, 1)
	assert.Equal(t, "boom", lines[0]["panic"])
	assert.Equal(t, "/panic", lines[0]["path"])
	assert.Equal(t, "req-panic", lines[0]["requestId"])
	assert.NotEmpty(t, lines[0]["stack"])
}

func TestAccessLogCarriesTraceID(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	var buf bytes.Buffer
	router := newLoggedRouter(bufferLogger(&buf))
	router.Use(TracingMiddleware("freight-test"))
	router.GET("/quote", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/quote", nil)
	// the global no-op provider keeps the remote parent's trace ID
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	req.Header.Set(HeaderRequestID, "req-trace")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	lines := logLines(t, &buf, "HTTP request")
	require.Len(t, lines, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", lines[0]["traceId"])
	assert.Equal(t, "req-trace", lines[0]["requestId"])
	assert.EqualValues(t, http.StatusNoContent, lines[0]["status"])
}
