package detail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RegistryConfig bounds the number and lifetime of held views.
type RegistryConfig struct {
	TTL      time.Duration
	MaxViews int
	Options  Options
}

type entry struct {
	view     *View
	lastUsed time.Time
}

// Registry holds Views by key; the HTTP layer uses one key per browser
// session and business. Views idle for longer than
// TTL are evicted, and the least recently used view is evicted when
// MaxViews is reached.
type Registry struct {
	dir    Directory
	cfg    RegistryConfig
	logger *slog.Logger

	mu    sync.Mutex
	views map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry(dir Directory, cfg RegistryConfig, logger *slog.Logger) *Registry {
	cfg.Options = cfg.Options.withDefaults()
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.MaxViews <= 0 {
		cfg.MaxViews = 10000
	}
	return &Registry{
		dir:    dir,
		cfg:    cfg,
		logger: logger,
		views:  make(map[string]*entry),
	}
}

// Get returns the view for key, creating it if needed.
func (r *Registry) Get(key string) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.cfg.Options.Now()
	if e, ok := r.views[key]; ok {
		if now.Sub(e.lastUsed) <= r.cfg.TTL {
			e.lastUsed = now
			return e.view
		}
		delete(r.views, key)
	}

	if len(r.views) >= r.cfg.MaxViews {
		r.evictOldestLocked()
	}
	v := NewView(r.dir, r.cfg.Options, r.logger)
	r.views[key] = &entry{view: v, lastUsed: now}
	openViews.Set(float64(len(r.views)))
	return v
}

// Lookup returns the view for key without creating one.
func (r *Registry) Lookup(key string) (*View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.views[key]
	if !ok || r.cfg.Options.Now().Sub(e.lastUsed) > r.cfg.TTL {
		return nil, false
	}
	e.lastUsed = r.cfg.Options.Now()
	return e.view, true
}

// Len returns the number of held views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *Registry) evictOldestLocked() {
	var (
		oldest string
		at     time.Time
	)
	for k, e := range r.views {
		if oldest == "" || e.lastUsed.Before(at) {
			oldest, at = k, e.lastUsed
		}
	}
	if oldest != "" {
		delete(r.views, oldest)
	}
}

// Sweep drops expired views and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.cfg.Options.Now()
	removed := 0
	for k, e := range r.views {
		if now.Sub(e.lastUsed) > r.cfg.TTL {
			delete(r.views, k)
			removed++
		}
	}
	openViews.Set(float64(len(r.views)))
	return removed
}

// Run sweeps expired views every interval until ctx is canceled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("expired detail views removed", slog.Int("count", n))
			}
		}
	}
}
