package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookie carries the browser's detail view id.
const SessionCookie = "tiendas_vista"

// SessionID returns the view id carried by the request, or "".
func SessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// ensureSession returns the request's view id, issuing a new cookie when the
// request has none.
func ensureSession(w http.ResponseWriter, r *http.Request, ttl time.Duration) string {
	if id := SessionID(r); id != "" {
		return id
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return id
}

// viewKey names the detail view of business id within a session, so each
// business opened in the same browser keeps its own draft and flash.
func viewKey(session, id string) string {
	return session + "/" + id
}
