package middleware

import (
	"fmt"
	"net/http"
	"time"
)

// NoStore is the directive for pages that carry per-session state.
const NoStore = "no-store"

// Public returns a shared-cache directive valid for maxAge.
func Public(maxAge time.Duration) string {
	return fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
}

// CacheControl sets the Cache-Control header on GET and HEAD responses.
// A handler that sets its own header wins.
func CacheControl(directive string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				if w.Header().Get("Cache-Control") == "" {
					w.Header().Set("Cache-Control", directive)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
