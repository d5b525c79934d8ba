package handlers

import (
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"clearance/portal/clearanceapi"
	"clearance/portal/middleware"
	"clearance/portal/models"
	"clearance/portal/routing"
	"clearance/portal/services"
	"clearance/portal/session"
)

// Portal carries what the page handlers share
type Portal struct {
	API           *clearanceapi.Client
	Auth          *services.AuthService
	Reviews       *services.ReviewService
	Names         models.RoleNames
	DefaultRole   models.Role
	SecureCookies bool
	Location      *time.Location
	Now           func() time.Time
}

// NewPortal wires the handlers to the API client and the auth service
func NewPortal(api *clearanceapi.Client, auth *services.AuthService, defaultRole models.Role, secureCookies bool) *Portal {
	return &Portal{
		API:           api,
		Auth:          auth,
		Reviews:       services.NewReviewService(api),
		Names:         auth.RoleNames(),
		DefaultRole:   defaultRole,
		SecureCookies: secureCookies,
		Location:      time.Local,
		Now:           time.Now,
	}
}

// Layout is the part of every page the layout template reads
type Layout struct {
	Title string
	Entry *routing.Entry
	Role  models.Role
	Path  string
	User  *models.UserProfile
	Flash *Flash
	Error *services.UserError
}

// Tab is a link in a row of view tabs
type Tab struct {
	Title  string
	Path   string
	Active bool
}

// layout builds the common page state and consumes the pending flash
func (p *Portal) layout(w http.ResponseWriter, r *http.Request, title string) Layout {
	l := Layout{
		Title: title,
		Path:  r.URL.Path,
		Flash: popFlash(w, r),
	}

	sess := middleware.GetSessionFromContext(r)
	if !sess.IsAuthenticated() {
		return l
	}
	l.User = sess.User
	if role, ok := sess.Role(p.Names); ok {
		l.Role = role
		l.Entry = routing.For(role)
	}
	return l
}

func (p *Portal) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// token returns the access token of the signed-in user
func token(r *http.Request) string {
	return middleware.GetSessionFromContext(r).AccessToken
}

// currentUser returns the signed-in user, never nil
func currentUser(r *http.Request) *models.UserProfile {
	if u := middleware.GetSessionFromContext(r).User; u != nil {
		return u
	}
	return &models.UserProfile{}
}

// userKey identifies the signed-in user in local tables
func userKey(sess session.Session) string {
	if sess.User == nil {
		return ""
	}
	if id := sess.User.ID.String(); id != "" {
		return id
	}
	return sess.User.IDNumber
}

// entryFor resolves the role subtree the request path belongs to
func entryFor(r *http.Request) *routing.Entry {
	role, ok := routing.Subtree(path.Clean(r.URL.Path))
	if !ok {
		return nil
	}
	return routing.For(role)
}

// safeReturn accepts raw only when it is a local path inside the role's own
// subtree, and otherwise returns fallback.
func safeReturn(raw string, role models.Role, fallback string) string {
	if raw == "" {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	clean := path.Clean(u.Path)
	if sub, ok := routing.Subtree(clean); !ok || sub != role {
		return fallback
	}
	if u.RawQuery != "" {
		return clean + "?" + u.RawQuery
	}
	return clean
}

// refererPath returns the Referer when it points back into role's subtree
func refererPath(r *http.Request, role models.Role, fallback string) string {
	ref := r.Referer()
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return fallback
	}
	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return safeReturn(target, role, fallback)
}

func seeOther(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
