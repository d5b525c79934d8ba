package routing

import (
	"path"
	"strings"

	"clearance/portal/models"
	"clearance/portal/session"
)

// Decision is the outcome of gating one request
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(to string) Decision {
	return Decision{Redirect: to}
}

// Decide gates a request path against the session.
//
// "/" goes to the dashboard of the signed-in role, or to the default role's
// auth entry. A role subtree is open only to a user of that role; anyone
// else is sent to that subtree's own auth entry. Every other path is public.
func Decide(p string, sess session.Session, names models.RoleNames, defaultRole models.Role) Decision {
	p = path.Clean("/" + p)

	if p == "/" {
		if role, ok := signedInRole(sess, names); ok {
			return redirect(Table[role].Dashboard)
		}
		return redirect(Table[defaultRole].AuthEntry)
	}

	subtree, ok := Subtree(p)
	if !ok {
		return allow()
	}

	if role, ok := signedInRole(sess, names); ok && role == subtree {
		return allow()
	}
	return redirect(Table[subtree].AuthEntry)
}

// Subtree reports the role subtree a path belongs to
func Subtree(p string) (models.Role, bool) {
	segment := strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}
	return models.RoleFromSegment(segment)
}

func signedInRole(sess session.Session, names models.RoleNames) (models.Role, bool) {
	if !sess.IsAuthenticated() {
		return 0, false
	}
	return sess.Role(names)
}

// LandingPath is where a user with the given API role lands after login.
// Unmapped roles land on the generic auth entry.
func LandingPath(apiRole string, names models.RoleNames) string {
	role, ok := names.Parse(apiRole)
	if !ok {
		return GenericAuthEntry
	}
	return Table[role].Dashboard
}

// LogoutPath is the auth entry matching the role held before logout
func LogoutPath(sess session.Session, names models.RoleNames) string {
	role, ok := sess.Role(names)
	if !ok {
		return GenericAuthEntry
	}
	return Table[role].AuthEntry
}
