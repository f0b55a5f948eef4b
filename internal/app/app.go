package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/config"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/detail"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/directory"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/event"
	handler "github.com/alfredfullstack2024/tiendasappfrontend/internal/handler/http"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/service"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/view"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/health"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/httpclient"
	pkgkafka "github.com/alfredfullstack2024/tiendasappfrontend/pkg/kafka"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/tracing"
)

const sweepInterval = time.Minute

// App wires together all dependencies and runs the web front-end.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	views          *detail.Registry
	kafka          *pkgkafka.Producer
	tracerShutdown func(context.Context) error
	stop           context.CancelFunc
	bg             context.Context
}

// NewDirectoryClient builds the Remote Directory API client from cfg.
func NewDirectoryClient(cfg *config.Config, logger *slog.Logger) (*directory.Client, error) {
	contract := directory.Contract{
		Bases:           cfg.APIBases,
		ReviewPaths:     cfg.ReviewPaths,
		IDFields:        cfg.IDFields,
		CommentRequired: cfg.CommentRequired,
		AttemptTimeout:  cfg.AttemptTimeout,
		UploadTimeout:   cfg.UploadTimeout,
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.UploadTimeout
	httpCfg.MaxConnsPerHost = cfg.MaxConnsPerHost
	httpCfg.UserAgent = cfg.DirectoryUserAgent

	breaker := func(name string) httpclient.CircuitBreakerConfig {
		return httpclient.CircuitBreakerConfig{
			Name:         name,
			MaxRequests:  cfg.CBMaxRequests,
			Interval:     cfg.CBInterval,
			Timeout:      cfg.CBTimeout,
			FailureRatio: cfg.CBFailureRatio,
			MinRequests:  cfg.CBMinRequests,
		}
	}

	return directory.New(contract, httpCfg, breaker, logger)
}

// NewApp creates a new application instance: tracer, directory client, event
// producer, view registry and HTTP router.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	dir, err := NewDirectoryClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init directory client: %w", err)
	}

	healthHandler := health.NewHandler()
	healthHandler.RegisterNonCritical("directory", func(ctx context.Context) error {
		return dialBase(ctx, cfg.APIBases[0])
	})

	events := event.Disabled(logger)
	var producer *pkgkafka.Producer
	if cfg.EventsEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(producer, cfg.EventsTopicPrefix, logger)
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	}

	views := detail.NewRegistry(dir, detail.RegistryConfig{
		TTL:      cfg.ViewTTL,
		MaxViews: cfg.ViewMax,
		Options: detail.Options{
			CommentRequired: cfg.CommentRequired,
			FlashTTL:        cfg.FlashTTL,
			Events:          events,
		},
	}, logger)

	render, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	catalog := service.NewCatalogService(dir, logger)
	registration := service.NewRegistrationService(dir, events, cfg.MaxPhotos, logger)

	pages := handler.NewPageHandler(catalog, registration, views, render, handler.PageConfig{
		PageWait:        cfg.PageWait,
		SessionTTL:      cfg.ViewTTL,
		FlashTTL:        cfg.FlashTTL,
		CommentRequired: cfg.CommentRequired,
		MaxPhotos:       cfg.MaxPhotos,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	}, logger)
	api := handler.NewAPIHandler(dir, catalog, views, cfg.CommentRequired, logger)

	bg, stop := context.WithCancel(context.Background())
	router := handler.NewRouter(bg, handler.RouterConfig{
		Environment:         cfg.Environment,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateRPS:             cfg.ReviewRateRPS,
		RateBurst:           cfg.ReviewRateBurst,
		PprofAllowedCIDRs:   cfg.PprofAllowedCIDRs,
		MetricsAllowedCIDRs: cfg.MetricsAllowedCIDRs,
		RequestTimeout:      cfg.PageWait + cfg.UploadTimeout,
	}, pages, api, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.UploadTimeout,
		WriteTimeout:      cfg.PageWait + cfg.UploadTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		httpServer:     httpServer,
		views:          views,
		kafka:          producer,
		tracerShutdown: tracerShutdown,
		stop:           stop,
		bg:             bg,
	}, nil
}

func dialBase(ctx context.Context, base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("parse directory base: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return fmt.Errorf("directory unreachable: %w", err)
	}
	_ = conn.Close()
	return nil
}

// Run starts the HTTP server and the view sweeper, and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.views.Run(a.bg, sweepInterval)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.Any("directory_bases", a.cfg.APIBases),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown stops the application in order:
// 1. HTTP server (drain in-flight requests)
// 2. background sweepers and rate limiter cleanup
// 3. Kafka producer (flush activity events)
// 4. Tracer (flush pending spans)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.stop()

	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
