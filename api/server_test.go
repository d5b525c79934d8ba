package api

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"clearance/portal/clearanceapi"
	"clearance/portal/handlers"
	"clearance/portal/models"
	"clearance/portal/services"
	"clearance/portal/session"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func (m *memoryStore) Get(ctx context.Context, id string) session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func (m *memoryStore) Set(ctx context.Context, id string, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return nil
}

func (m *memoryStore) Clear(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func fakeClearanceAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts/login/":
			writeJSON(w, http.StatusOK, `{"user": {"id": 4, "first_name": "Grace", "last_name": "Eze", "role": "staff"}, "access": "acc", "refresh": "ref"}`)
		case "/accounts/logout/":
			writeJSON(w, http.StatusOK, `{}`)
		case "/clearance/stats/":
			writeJSON(w, http.StatusOK, `{"totalStudents": 4, "clearedStudents": 1, "pendingStudents": 3, "percentage": 25}`)
		case "/clearance/assigned-requests/":
			writeJSON(w, http.StatusOK, `[]`)
		default:
			t.Errorf("Unexpected API call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	apiSrv := fakeClearanceAPI(t)

	store := &memoryStore{sessions: make(map[string]session.Session)}
	client := clearanceapi.NewClient(apiSrv.URL, 5*time.Second)
	auth := services.NewAuthService(client, store, models.DefaultRoleNames)
	portal := handlers.NewPortal(client, auth, models.RoleStudent, false)

	server := NewServer(portal, store, Options{Development: true})
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Error creating cookie jar: %v", err)
	}
	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, browser
}

func expectRedirect(t *testing.T, resp *http.Response, err error, location string) {
	t.Helper()
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

func TestSessionFlow(t *testing.T) {
	srv, browser := newTestServer(t)

	resp, err := browser.Get(srv.URL + "/")
	expectRedirect(t, resp, err, "/auth/student")

	resp, err = browser.Get(srv.URL + "/staff/dashboard")
	expectRedirect(t, resp, err, "/auth/staff")

	resp, err = browser.PostForm(srv.URL+"/auth/staff/login", url.Values{"id_number": {"STF/01"}, "password": {"secret"}})
	expectRedirect(t, resp, err, "/staff/dashboard")

	resp, err = browser.Get(srv.URL + "/staff/dashboard")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 on the dashboard, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = browser.Get(srv.URL + "/")
	expectRedirect(t, resp, err, "/staff/dashboard")

	resp, err = browser.Get(srv.URL + "/admin/dashboard")
	expectRedirect(t, resp, err, "/auth/admin")

	resp, err = browser.Get(srv.URL + "/student/../admin/users/staff")
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			t.Error("Expected dot segments not to reach another role's pages")
		}
	}

	resp, err = browser.PostForm(srv.URL+"/logout", url.Values{})
	expectRedirect(t, resp, err, "/auth/staff")

	resp, err = browser.Get(srv.URL + "/staff/dashboard")
	expectRedirect(t, resp, err, "/auth/staff")
}

func TestUnknownPathInsideSubtree(t *testing.T) {
	srv, browser := newTestServer(t)

	resp, err := browser.Get(srv.URL + "/staff/nowhere")
	expectRedirect(t, resp, err, "/auth/staff")

	resp, err = browser.Get(srv.URL + "/nowhere")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, browser := newTestServer(t)

	resp, err := browser.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("Expected Prometheus text format, got %q", resp.Header.Get("Content-Type"))
	}
}
