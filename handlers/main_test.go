package handlers

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"clearance/portal/clearanceapi"
	"clearance/portal/database"
	"clearance/portal/middleware"
	"clearance/portal/models"
	"clearance/portal/services"
	"clearance/portal/session"

	"github.com/gorilla/mux"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	if err := database.InitDB("file:handlers_test?mode=memory&cache=shared"); err != nil {
		log.Fatalf("Error initializing test database: %v", err)
	}

	code := m.Run()
	database.DB.Close()
	os.Exit(code)
}

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]session.Session)}
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

// newTestPortal returns a portal talking to a fake API served by handler
func newTestPortal(t *testing.T, handler http.HandlerFunc) (*Portal, *memoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := newMemoryStore()
	api := clearanceapi.NewClient(srv.URL, 5*time.Second)
	p := NewPortal(api, services.NewAuthService(api, store, models.DefaultRoleNames), models.RoleStudent, false)
	p.Location = time.UTC
	p.Now = func() time.Time { return fixedNow }
	return p, store
}

func staffSession(id string) session.Session {
	return session.Session{
		User:        &models.UserProfile{ID: models.Flex(id), FirstName: "Grace", LastName: "Eze", Role: "staff"},
		AccessToken: "acc",
	}
}

// newRequest builds a request already carrying a session and route vars
func newRequest(method, target string, form url.Values, sess session.Session, vars map[string]string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = middleware.WithSession(req, "sid-test", sess)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func flashFrom(t *testing.T, rr *httptest.ResponseRecorder) *Flash {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rr.Result().Cookies() {
		if c.Name == flashCookie {
			req.AddCookie(c)
		}
	}
	return popFlash(httptest.NewRecorder(), req)
}
