package middleware

import (
	"log/slog"
	"net/http"

	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/logger"
)

// ViewIDFunc extracts the browser view session id from a request, or "".
type ViewIDFunc func(r *http.Request) string

// RequestLogger returns middleware that builds a request-scoped logger enriched
// with correlation_id, view_id, trace_id, and span_id, then stores it in
// context via logger.NewContext.
//
// Mount it AFTER RequestLogging (which sets correlation_id) and Tracing
// (which sets the OpenTelemetry span context).
func RequestLogger(base *slog.Logger, viewID ViewIDFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if viewID != nil {
				if id := viewID(r); id != "" {
					ctx = logger.WithViewID(ctx, id)
				}
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
