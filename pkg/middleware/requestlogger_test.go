package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/logger"
)

func newTestLogger(w *bytes.Buffer) *slog.Logger {
	return logger.NewWithWriter("test-svc", "info", w)
}

func cookieViewID(r *http.Request) string {
	c, err := r.Cookie("tiendas_vista")
	if err != nil {
		return ""
	}
	return c.Value
}

func serveLogged(t *testing.T, req *http.Request, viewID ViewIDFunc) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := RequestLogger(newTestLogger(&buf), viewID)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handler log")
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRequestLogger_StoresLoggerInContext(t *testing.T) {
	out := serveLogged(t, httptest.NewRequest(http.MethodGet, "/tienda/b1", nil), nil)
	assert.Equal(t, "handler log", out["msg"])
	assert.Equal(t, "test-svc", out["service"])
}

func TestRequestLogger_IncludesCorrelationID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-test-123")
	req := httptest.NewRequest(http.MethodGet, "/tienda/b1", nil).WithContext(ctx)

	out := serveLogged(t, req, nil)
	assert.Equal(t, "corr-test-123", out["correlation_id"])
}

func TestRequestLogger_IncludesViewID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/tienda/b1", nil)
	req.AddCookie(&http.Cookie{Name: "tiendas_vista", Value: "view-42"})

	out := serveLogged(t, req, cookieViewID)
	assert.Equal(t, "view-42", out["view_id"])
}

func TestRequestLogger_NoViewID_OmitsField(t *testing.T) {
	out := serveLogged(t, httptest.NewRequest(http.MethodGet, "/", nil), cookieViewID)
	_, ok := out["view_id"]
	assert.False(t, ok)
}

func TestRequestLogger_IncludesTraceFields(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(trace.ContextWithSpanContext(context.Background(), sc))

	out := serveLogged(t, req, nil)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}
