package middleware

import (
	"encoding/json"
	"html"
	"net/http"
	"strings"
)

// wantsHTML reports whether the client prefers an HTML page over JSON.
func wantsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// writeError answers a request that never reached a handler. Browsers get a
// minimal page, everything else the JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("<!doctype html><html lang=\"es\"><body><p>" + html.EscapeString(message) + "</p></body></html>"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
