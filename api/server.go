package api

import (
	"log"
	"net/http"

	"clearance/portal/handlers"
	"clearance/portal/middleware"
	"clearance/portal/models"
	"clearance/portal/session"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the HTTP surface of the portal
type Options struct {
	SecureCookies bool
	// CSRFKey is the 32-byte form token key; nil disables the check
	CSRFKey     []byte
	CORSOrigins []string
	Development bool
}

// Server represents the portal's HTTP server
type Server struct {
	router *mux.Router
	portal *handlers.Portal
	store  session.Store
	opts   Options
}

// NewServer creates the router with every portal route registered
func NewServer(portal *handlers.Portal, store session.Store, opts Options) *Server {
	s := &Server{
		router: mux.NewRouter(),
		portal: portal,
		store:  store,
		opts:   opts,
	}
	s.RegisterRoutes()
	return s
}

// sessionChain loads the session and applies the role gate
func (s *Server) sessionChain(next http.Handler) http.Handler {
	gate := middleware.RoleGate(s.portal.Names, s.portal.DefaultRole)
	return middleware.LoadSession(s.store, s.opts.SecureCookies)(gate(next))
}

// RegisterRoutes registers all portal routes
func (s *Server) RegisterRoutes() {
	r := s.router
	p := s.portal

	// Apply global middleware
	r.Use(middleware.RequestLogger)
	r.Use(middleware.EnableCORS(s.opts.CORSOrigins, s.opts.Development))

	// Public routes (no session)
	r.HandleFunc("/health", p.HealthCheck).Methods("GET", "OPTIONS")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Unknown paths still pass the role gate, so /staff/anything redirects
	// a signed-out visitor instead of answering 404
	r.NotFoundHandler = middleware.RequestLogger(s.sessionChain(http.NotFoundHandler()))

	app := r.PathPrefix("/").Subrouter()
	app.Use(middleware.LoadSession(s.store, s.opts.SecureCookies))
	app.Use(middleware.RoleGate(p.Names, p.DefaultRole))
	if len(s.opts.CSRFKey) > 0 {
		app.Use(csrf.Protect(s.opts.CSRFKey,
			csrf.Secure(s.opts.SecureCookies),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
		))
	} else {
		log.Println("Warning: CSRF protection is disabled")
	}

	app.HandleFunc("/", p.Home).Methods("GET")
	app.HandleFunc("/auth", p.AuthSelect).Methods("GET")
	app.HandleFunc("/auth/{role}", p.AuthPage).Methods("GET")
	app.HandleFunc("/auth/{role}/activate", p.Activate).Methods("POST")
	app.HandleFunc("/auth/{role}/login", p.Login).Methods("POST")
	app.HandleFunc("/logout", p.Logout).Methods("POST")

	student := s.roleRouter(app, models.RoleStudent)
	student.HandleFunc("/dashboard", p.StudentDashboard).Methods("GET")
	student.HandleFunc("/status", p.StudentStatus).Methods("GET")
	student.HandleFunc("/history", p.StudentHistory).Methods("GET")
	for _, kind := range models.ClearanceKinds {
		student.HandleFunc("/"+string(kind)+"-clearance", p.ClearanceForm(kind)).Methods("GET", "POST")
	}

	staff := s.roleRouter(app, models.RoleStaff)
	staff.HandleFunc("/dashboard", p.StaffDashboard).Methods("GET")
	staff.HandleFunc("/requests", p.StaffRequests).Methods("GET")
	staff.HandleFunc("/requests/{id}/approve", p.ApproveRequest).Methods("POST")
	staff.HandleFunc("/requests/{id}/reject", p.RejectRequest).Methods("POST")
	staff.HandleFunc("/my-students", p.MyStudents).Methods("GET")
	staff.HandleFunc("/history", p.StaffHistory).Methods("GET")
	staff.HandleFunc("/history/export", p.ExportStaffHistory).Methods("GET")

	admin := s.roleRouter(app, models.RoleAdmin)
	admin.HandleFunc("/dashboard", p.AdminDashboard).Methods("GET")
	admin.HandleFunc("/users/{tab:students|staff}", p.AdminUsers).Methods("GET")
	admin.HandleFunc("/users/{id}/edit", p.EditUser).Methods("GET", "POST")
	admin.HandleFunc("/users/{id}/deactivate", p.DeactivateUser).Methods("POST")
	admin.HandleFunc("/history/{tab:students|staff|admin}", p.AdminHistory).Methods("GET")
}

// roleRouter returns the subrouter for one role's subtree with the routes
// every role shares
func (s *Server) roleRouter(app *mux.Router, role models.Role) *mux.Router {
	p := s.portal

	sub := app.PathPrefix("/" + role.Segment()).Subrouter()
	sub.Use(middleware.RequireRole(role, p.Names))

	sub.HandleFunc("/edit-profile", p.EditProfile).Methods("GET", "POST")
	sub.HandleFunc("/change-password", p.ChangePassword).Methods("POST")
	sub.HandleFunc("/filters", p.GetSavedFilters).Methods("GET")
	sub.HandleFunc("/filters", p.CreateSavedFilter).Methods("POST")
	sub.HandleFunc("/filters/{id}/delete", p.DeleteSavedFilter).Methods("POST")
	return sub
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.router
}
