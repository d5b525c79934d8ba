package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName identifies the browser to the session store
const CookieName = "clearance_sid"

const cookieMaxAge = 365 * 24 * time.Hour

// IDFromRequest returns the browser id carried by the request, if any
func IDFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// EnsureID returns the request's browser id, issuing a new cookie when the
// request has none.
func EnsureID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if id := IDFromRequest(r); id != "" {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
