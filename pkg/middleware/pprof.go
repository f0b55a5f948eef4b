package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RegisterPprof mounts chi's profiler (/debug/pprof/* and /debug/vars)
// behind the CIDR allowlist.
func RegisterPprof(r chi.Router, allowedCIDRs []string, logger *slog.Logger) {
	r.Mount("/debug", IPAllowlist(allowedCIDRs, logger)(chimw.Profiler()))
}

// RegisterMetrics mounts h at /metrics behind the CIDR allowlist.
func RegisterMetrics(r chi.Router, h http.Handler, allowedCIDRs []string, logger *slog.Logger) {
	r.With(IPAllowlist(allowedCIDRs, logger)).Handle("/metrics", h)
}

type allowlist []netip.Prefix

func parseAllowlist(cidrs []string, logger *slog.Logger) allowlist {
	var a allowlist
	for _, cidr := range cidrs {
		p, err := netip.ParsePrefix(cidr)
		if err != nil {
			logger.Warn("invalid allowlist CIDR, skipping",
				slog.String("cidr", cidr),
				slog.String("error", err.Error()),
			)
			continue
		}
		a = append(a, p.Masked())
	}
	return a
}

// remoteAddr parses r.RemoteAddr with or without a port. IPv4-mapped IPv6
// addresses are unmapped so they match IPv4 ranges.
func remoteAddr(r *http.Request) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr().Unmap(), true
	}
	if addr, err := netip.ParseAddr(r.RemoteAddr); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}

func (a allowlist) allows(addr netip.Addr) bool {
	for _, p := range a {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IPAllowlist returns middleware that admits only requests whose remote
// address falls in one of cidrs. Invalid CIDRs are logged and skipped; an
// empty list denies everything.
func IPAllowlist(cidrs []string, logger *slog.Logger) func(http.Handler) http.Handler {
	list := parseAllowlist(cidrs, logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := remoteAddr(r)
			if !ok || !list.allows(addr) {
				logger.Warn("access denied by IP allowlist",
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("path", r.URL.Path),
				)
				writeError(w, r, http.StatusForbidden, "FORBIDDEN", "acceso restringido por lista de IPs")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
