package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/health"
	pkgmiddleware "github.com/alfredfullstack2024/tiendasappfrontend/pkg/middleware"
)

// ServiceName labels metrics and spans.
const ServiceName = "tiendas-web"

const catalogMaxAge = time.Minute

// RouterConfig holds the router-level settings.
type RouterConfig struct {
	Environment         string
	CORSAllowedOrigins  []string
	RateRPS             float64
	RateBurst           int
	PprofAllowedCIDRs   []string
	MetricsAllowedCIDRs []string
	RequestTimeout      time.Duration
}

// NewRouter creates a chi router with global middleware, health and
// operational endpoints, the HTML pages and the JSON API. The rate limiter's
// cleanup goroutine stops when ctx is done.
func NewRouter(
	ctx context.Context,
	cfg RouterConfig,
	pages *PageHandler,
	api *APIHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(pkgmiddleware.RequestLogging(logger, "/health", "/metrics"))
	r.Use(pkgmiddleware.PrometheusMetrics(ServiceName))
	r.Use(pkgmiddleware.Tracing(ServiceName, SessionID))
	r.Use(pkgmiddleware.RequestLogger(logger, SessionID))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	pkgmiddleware.RegisterMetrics(r, promhttp.Handler(), cfg.MetricsAllowedCIDRs, logger)
	pkgmiddleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	limited := pkgmiddleware.RateLimit(ctx, cfg.RateRPS, cfg.RateBurst, logger)

	r.Get("/", pages.Menu)
	r.Get("/categoria/{categoria}", pages.Category)
	r.Route("/tienda/{id}", func(r chi.Router) {
		r.Use(pkgmiddleware.CacheControl(pkgmiddleware.NoStore))
		r.Get("/", pages.Detail)
		r.Post("/reintentar", pages.Retry)
		r.Get("/resenas", pages.Reviews)
		r.With(limited).Post("/resenas", pages.SubmitReview)
		r.Post("/aviso", pages.DismissFlash)
	})
	r.With(pkgmiddleware.CacheControl(pkgmiddleware.NoStore)).Get("/registro", pages.RegisterForm)
	r.With(limited).Post("/registro", pages.Register)

	r.Route("/api", func(r chi.Router) {
		r.Use(pkgmiddleware.CORS(pkgmiddleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			ExposedHeaders: []string{"X-Correlation-ID"},
			Environment:    cfg.Environment,
		}))

		r.Group(func(r chi.Router) {
			r.Use(pkgmiddleware.CacheControl(pkgmiddleware.Public(catalogMaxAge)))
			r.Get("/categorias", api.Categories)
			r.Get("/tiendas/categoria/{categoria}", api.ByCategory)
		})
		r.Get("/tiendas/{id}", api.Business)
		r.Get("/tiendas/{id}/resenas", api.Reviews)
		r.With(limited).Post("/tiendas/{id}/resenas", api.SubmitReview)
		r.With(pkgmiddleware.CacheControl(pkgmiddleware.NoStore)).Get("/tiendas/{id}/vista", api.View)
	})

	return r
}
