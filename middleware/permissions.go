package middleware

import (
	"net/http"

	"clearance/portal/models"
	"clearance/portal/routing"
)

// RoleGate redirects requests the signed-in role may not see. It must run
// after LoadSession.
func RoleGate(names models.RoleNames, defaultRole models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := routing.Decide(r.URL.Path, GetSessionFromContext(r), names, defaultRole)
			if !d.Allow {
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole answers 403 unless the signed-in user holds role. Used on
// subrouters that RoleGate already covers, as a second check close to the
// handlers.
func RequireRole(role models.Role, names models.RoleNames) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSessionFromContext(r)
			if !sess.IsAuthenticated() {
				http.Error(w, "Unauthorized: No session", http.StatusUnauthorized)
				return
			}

			userRole, ok := sess.Role(names)
			if !ok || userRole != role {
				http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
