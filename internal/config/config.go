package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgconfig "github.com/alfredfullstack2024/tiendasappfrontend/pkg/config"
)

// Config holds all configuration for the directory web front-end.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"WEB_HTTP_PORT" envDefault:"3000"`

	// Remote Directory API contract
	APIBases           []string      `env:"DIRECTORY_API_BASES" envDefault:"https://tiendasappbackend.onrender.com/api,https://tiendasappbackend.onrender.com" envSeparator:","`
	ReviewPaths        []string      `env:"DIRECTORY_REVIEW_PATHS" envDefault:"reviews,resenas,reseñas" envSeparator:","`
	IDFields           []string      `env:"DIRECTORY_ID_FIELDS" envDefault:"_id,id" envSeparator:","`
	CommentRequired    bool          `env:"REVIEW_COMMENT_REQUIRED" envDefault:"false"`
	AttemptTimeout     time.Duration `env:"DIRECTORY_ATTEMPT_TIMEOUT" envDefault:"10s"`
	MaxConnsPerHost    int           `env:"DIRECTORY_MAX_CONNS_PER_HOST" envDefault:"32"`
	MaxPhotos          int           `env:"REGISTRATION_MAX_PHOTOS" envDefault:"3"`
	MaxUploadBytes     int64         `env:"REGISTRATION_MAX_UPLOAD_BYTES" envDefault:"15728640"`
	DirectoryUserAgent string        `env:"DIRECTORY_USER_AGENT" envDefault:"tiendas-web/1.0"`
	UploadTimeout      time.Duration `env:"DIRECTORY_UPLOAD_TIMEOUT" envDefault:"30s"`

	// Per-candidate circuit breaker
	CBMaxRequests  uint32        `env:"DIRECTORY_CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     time.Duration `env:"DIRECTORY_CB_INTERVAL" envDefault:"60s"`
	CBTimeout      time.Duration `env:"DIRECTORY_CB_TIMEOUT" envDefault:"30s"`
	CBFailureRatio float64       `env:"DIRECTORY_CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32        `env:"DIRECTORY_CB_MIN_REQUESTS" envDefault:"5"`

	// Detail views
	ViewTTL  time.Duration `env:"VIEW_TTL" envDefault:"30m"`
	ViewMax  int           `env:"VIEW_MAX" envDefault:"10000"`
	FlashTTL time.Duration `env:"FLASH_TTL" envDefault:"5s"`
	PageWait time.Duration `env:"PAGE_WAIT" envDefault:"15s"`

	// Rate limiting on review and registration POSTs
	ReviewRateRPS   float64 `env:"REVIEW_RATE_RPS" envDefault:"0.5"`
	ReviewRateBurst int     `env:"REVIEW_RATE_BURST" envDefault:"5"`

	// Activity events
	EventsEnabled     bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers      []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	EventsTopicPrefix string   `env:"EVENTS_TOPIC_PREFIX" envDefault:"tiendas"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS for the JSON API
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof and metrics endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
	MetricsAllowedCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads configuration from the given environment map instead of the
// process environment. A nil map means the process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environment); err != nil {
		return nil, fmt.Errorf("load web config: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize trims whitespace and trailing slashes from list entries and drops
// empty ones, so "a/api/, b" and "a/api,b" resolve to the same candidates.
func (c *Config) normalize() {
	c.APIBases = cleanList(c.APIBases, "/")
	c.ReviewPaths = cleanList(c.ReviewPaths, "/")
	c.IDFields = cleanList(c.IDFields, "")
	c.KafkaBrokers = cleanList(c.KafkaBrokers, "")
}

func cleanList(in []string, trim string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if trim != "" {
			s = strings.Trim(s, trim)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if len(c.APIBases) == 0 {
		return fmt.Errorf("DIRECTORY_API_BASES is required")
	}
	for _, base := range c.APIBases {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("DIRECTORY_API_BASES: invalid URL %q: %w", base, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("DIRECTORY_API_BASES: %q must be an absolute http(s) URL", base)
		}
	}
	if len(c.ReviewPaths) == 0 {
		return fmt.Errorf("DIRECTORY_REVIEW_PATHS is required")
	}
	if len(c.IDFields) == 0 {
		return fmt.Errorf("DIRECTORY_ID_FIELDS is required")
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("DIRECTORY_ATTEMPT_TIMEOUT must be positive, got %s", c.AttemptTimeout)
	}
	if c.UploadTimeout < c.AttemptTimeout {
		return fmt.Errorf("DIRECTORY_UPLOAD_TIMEOUT (%s) must not be shorter than DIRECTORY_ATTEMPT_TIMEOUT (%s)", c.UploadTimeout, c.AttemptTimeout)
	}
	if c.MaxPhotos < 0 {
		return fmt.Errorf("REGISTRATION_MAX_PHOTOS must not be negative, got %d", c.MaxPhotos)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0 {
		return fmt.Errorf("DIRECTORY_CB_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.CBFailureRatio)
	}
	if c.FlashTTL <= 0 {
		return fmt.Errorf("FLASH_TTL must be positive, got %s", c.FlashTTL)
	}
	if c.PageWait <= 0 {
		return fmt.Errorf("PAGE_WAIT must be positive, got %s", c.PageWait)
	}
	if c.ViewMax < 1 {
		return fmt.Errorf("VIEW_MAX must be at least 1, got %d", c.ViewMax)
	}
	if c.ReviewRateRPS <= 0 || c.ReviewRateBurst < 1 {
		return fmt.Errorf("REVIEW_RATE_RPS and REVIEW_RATE_BURST must be positive")
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
