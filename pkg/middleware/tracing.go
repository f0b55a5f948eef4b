package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes naming what the request was about.
const (
	AttrBusinessID = attribute.Key("tiendas.business_id")
	AttrCategory   = attribute.Key("tiendas.category")
	AttrViewID     = attribute.Key("tiendas.view_id")
)

// routeAttrs maps chi URL parameters to span attributes.
var routeAttrs = map[string]attribute.Key{
	"id":        AttrBusinessID,
	"categoria": AttrCategory,
}

// Tracing returns middleware that starts a server span per request. W3C
// trace context is extracted from the inbound headers and injected into the
// response, so the directory calls made while rendering a page join the
// browser's trace. Once the router has matched, the span is named after the
// route and tagged with the business id or category it addresses, plus the
// detail view session when viewID is set.
func Tracing(serviceName string, viewID ViewIDFunc) func(http.Handler) http.Handler {
	tracer := otel.Tracer("github.com/alfredfullstack2024/tiendasappfrontend/" + serviceName)
	propagator := otel.GetTextMapPropagator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPMethod(r.Method),
					semconv.HTTPTarget(r.URL.RequestURI()),
					semconv.HTTPScheme(scheme(r)),
					semconv.UserAgentOriginal(r.UserAgent()),
				),
			)
			defer span.End()

			if viewID != nil {
				if id := viewID(r); id != "" {
					span.SetAttributes(AttrViewID.String(id))
				}
			}

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			next.ServeHTTP(rw, r.WithContext(ctx))

			annotateRoute(span, r)
			span.SetAttributes(semconv.HTTPStatusCode(rw.statusCode))
			if rw.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
			}
		})
	}
}

// annotateRoute copies what chi resolved during routing onto the span.
func annotateRoute(span trace.Span, r *http.Request) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		span.SetName(r.Method + " " + pattern)
		span.SetAttributes(attribute.String("http.route", pattern))
	}
	for i, key := range rctx.URLParams.Keys {
		attr, ok := routeAttrs[key]
		if !ok || i >= len(rctx.URLParams.Values) {
			continue
		}
		if v := rctx.URLParams.Values[i]; v != "" {
			span.SetAttributes(attr.String(v))
		}
	}
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}
