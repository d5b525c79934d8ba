package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clearance/portal/models"
	"clearance/portal/session"

	"github.com/google/uuid"
)

type memoryStore struct {
	sessions map[string]session.Session
	gets     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]session.Session)}
}

func (m *memoryStore) Get(ctx context.Context, id string) session.Session {
	m.gets++
	return m.sessions[id]
}

func (m *memoryStore) Set(ctx context.Context, id string, s session.Session) error {
	m.sessions[id] = s
	return nil
}

func (m *memoryStore) Clear(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func staffSession() session.Session {
	return session.Session{
		User:        &models.UserProfile{ID: "4", Role: "staff"},
		AccessToken: "acc",
	}
}

func TestLoadSessionIssuesCookie(t *testing.T) {
	store := newMemoryStore()
	var seen string
	handler := LoadSession(store, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionIDFromContext(r)
		if GetSessionFromContext(r).IsAuthenticated() {
			t.Error("Expected an anonymous session")
		}
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	cookie := rr.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, session.CookieName+"="+seen) {
		t.Errorf("Expected cookie for %q, got %q", seen, cookie)
	}
	if !strings.Contains(cookie, "HttpOnly") || !strings.Contains(cookie, "Secure") {
		t.Errorf("Expected HttpOnly and Secure cookie, got %q", cookie)
	}
}

func TestLoadSessionReadsStoreEachRequest(t *testing.T) {
	store := newMemoryStore()
	sid := uuid.NewString()
	store.sessions[sid] = staffSession()

	var authenticated []bool
	handler := LoadSession(store, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticated = append(authenticated, GetSessionFromContext(r).IsAuthenticated())
	}))

	serve := func() {
		req := httptest.NewRequest("GET", "/staff/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	serve()
	store.Clear(context.Background(), sid)
	serve()

	if len(authenticated) != 2 || !authenticated[0] || authenticated[1] {
		t.Errorf("Expected signed in then signed out, got %v", authenticated)
	}
	if store.gets != 2 {
		t.Errorf("Expected one store read per request, got %d", store.gets)
	}
}

func TestGetSessionFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if GetSessionIDFromContext(req) != "" {
		t.Error("Expected empty session id")
	}
	if !GetSessionFromContext(req).IsEmpty() {
		t.Error("Expected empty session")
	}
}

func TestRoleGate(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gate := RoleGate(models.DefaultRoleNames, models.RoleStudent)(ok)

	testCases := []struct {
		name     string
		path     string
		sess     session.Session
		status   int
		location string
	}{
		{"Staff in staff subtree", "/staff/requests", staffSession(), http.StatusOK, ""},
		{"Staff in admin subtree", "/admin/dashboard", staffSession(), http.StatusSeeOther, "/auth/admin"},
		{"Anonymous root", "/", session.Session{}, http.StatusSeeOther, "/auth/student"},
		{"Staff root", "/", staffSession(), http.StatusSeeOther, "/staff/dashboard"},
		{"Public auth page", "/auth/staff", session.Session{}, http.StatusOK, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := WithSession(httptest.NewRequest("GET", tc.path, nil), "sid", tc.sess)
			rr := httptest.NewRecorder()

			gate.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, rr.Code)
			}
			if loc := rr.Header().Get("Location"); loc != tc.location {
				t.Errorf("Expected Location %q, got %q", tc.location, loc)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireRole(models.RoleStaff, models.DefaultRoleNames)(ok)

	testCases := []struct {
		name   string
		sess   session.Session
		status int
	}{
		{"Staff", staffSession(), http.StatusOK},
		{"Anonymous", session.Session{}, http.StatusUnauthorized},
		{"Student", session.Session{User: &models.UserProfile{Role: "student"}, AccessToken: "a"}, http.StatusForbidden},
	}

	for _, tc := range testCases {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, WithSession(httptest.NewRequest("GET", "/staff/requests", nil), "sid", tc.sess))
		if rr.Code != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.name, tc.status, rr.Code)
		}
	}
}

func TestRequestLoggerSetsID(t *testing.T) {
	var seen string
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	if seen == "" || rr.Header().Get("X-Request-ID") != seen {
		t.Errorf("Expected request id %q echoed in header, got %q", seen, rr.Header().Get("X-Request-ID"))
	}
	if rr.Code != http.StatusTeapot {
		t.Errorf("Expected status to pass through, got %d", rr.Code)
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if seen != "given-id" {
		t.Errorf("Expected incoming request id to be kept, got %q", seen)
	}
}
