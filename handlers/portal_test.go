package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"clearance/portal/forms"
	"clearance/portal/listview"
	"clearance/portal/models"
	"clearance/portal/services"
	"clearance/portal/session"
)

func TestSafeReturn(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"Own subtree", "/staff/history?status=approved", "/staff/history?status=approved"},
		{"Empty", "", "/staff/dashboard"},
		{"Other role", "/admin/users/staff", "/staff/dashboard"},
		{"Absolute URL", "https://evil.example/staff/history", "/staff/dashboard"},
		{"Protocol relative", "//evil.example/staff/history", "/staff/dashboard"},
		{"Dot segments", "/staff/../admin/dashboard", "/staff/dashboard"},
		{"Relative path", "staff/history", "/staff/dashboard"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := safeReturn(tc.raw, models.RoleStaff, "/staff/dashboard")
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestSortURL(t *testing.T) {
	q := listview.DefaultQuery()

	testCases := []struct {
		name     string
		key      string
		expected url.Values
	}{
		{"Flip current sort", listview.SortDate, url.Values{"sort_by": {"date"}, "sort_order": {"asc"}}},
		{"New text column", listview.SortStudent, url.Values{"sort_by": {"student"}, "sort_order": {"asc"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := url.ParseQuery(strings.TrimPrefix(sortURL(q, tc.key), "?"))
			if err != nil {
				t.Fatalf("Error parsing URL: %v", err)
			}
			if got.Encode() != tc.expected.Encode() {
				t.Errorf("Expected %q, got %q", tc.expected.Encode(), got.Encode())
			}
		})
	}

	q.SortBy = listview.SortStudent
	q.SortDir = listview.Asc
	if !strings.Contains(sortURL(q, listview.SortStudent), "sort_order=desc") {
		t.Error("Expected an ascending column to flip to descending")
	}
}

func TestFormViewHidesPasswords(t *testing.T) {
	d := forms.New(forms.LoginFields(""), nil, map[string]any{"id_number": "ENG/001", "password": "secret"})
	v := formView(d, map[string]string{"password": "Password is required"})

	if len(v.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(v.Fields))
	}
	if v.Fields[0].Value != "ENG/001" {
		t.Errorf("Expected ID number to be kept, got %q", v.Fields[0].Value)
	}
	if v.Fields[1].Value != "" {
		t.Errorf("Expected password to be blank, got %q", v.Fields[1].Value)
	}
	if v.Fields[1].Error != "Password is required" {
		t.Errorf("Expected the field error to be attached, got %q", v.Fields[1].Error)
	}
}

func TestClearanceFormRendersAndValidates(t *testing.T) {
	var calls int32
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	student := session.Session{
		User:        &models.UserProfile{ID: "9", FirstName: "Ada", LastName: "Obi", IDNumber: "ENG/001", Email: "ada@uni.edu", Role: "student"},
		AccessToken: "acc",
	}
	handler := p.ClearanceForm(models.ClearanceLab)

	rr := httptest.NewRecorder()
	handler(rr, newRequest("GET", "/student/lab-clearance", nil, student, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"Lab Clearance", `value="Ada Obi"`, `name="transcripts"`, "multiple"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected form to contain %q", want)
		}
	}

	rr = httptest.NewRecorder()
	handler(rr, newRequest("POST", "/student/lab-clearance", url.Values{"reason": {"Graduating"}}, student, nil))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rr.Code)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("Expected no API call for an incomplete form")
	}
}

func TestSavedFilterHandlers(t *testing.T) {
	p, _ := newTestPortal(t, nil)
	sess := staffSession("77")

	form := url.Values{
		"view":   {models.ViewHistory},
		"name":   {"Approved this month"},
		"query":  {"status=approved&date=this-month"},
		"return": {"https://evil.example/staff/history"},
	}
	rr := httptest.NewRecorder()
	p.CreateSavedFilter(rr, newRequest("POST", "/staff/filters", form, sess, nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/staff/dashboard" {
		t.Errorf("Expected 303 to /staff/dashboard, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = httptest.NewRecorder()
	p.GetSavedFilters(rr, newRequest("GET", "/staff/filters?view=history", nil, sess, nil))
	var filters []models.SavedFilter
	if err := json.NewDecoder(rr.Body).Decode(&filters); err != nil {
		t.Fatalf("Error decoding filters: %v", err)
	}
	if len(filters) != 1 || filters[0].Name != "Approved this month" {
		t.Fatalf("Expected the saved filter, got %+v", filters)
	}

	// Saving the same name again is reported, not fatal
	form.Set("return", "/staff/history")
	rr = httptest.NewRecorder()
	p.CreateSavedFilter(rr, newRequest("POST", "/staff/filters", form, sess, nil))
	if rr.Header().Get("Location") != "/staff/history" {
		t.Errorf("Expected redirect back to /staff/history, got %q", rr.Header().Get("Location"))
	}
	if f := flashFrom(t, rr); f == nil || f.Kind != FlashError {
		t.Errorf("Expected duplicate name error flash, got %+v", f)
	}

	rr = httptest.NewRecorder()
	p.DeleteSavedFilter(rr, newRequest("POST", "/staff/filters/"+filters[0].ID+"/delete", url.Values{"return": {"/staff/history"}}, sess, map[string]string{"id": filters[0].ID}))
	if rr.Code != http.StatusSeeOther {
		t.Errorf("Expected status 303, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	p.DeleteSavedFilter(rr, newRequest("POST", "/staff/filters/"+filters[0].ID+"/delete", url.Values{}, sess, map[string]string{"id": filters[0].ID}))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for a deleted filter, got %d", rr.Code)
	}
}

func TestDashboards(t *testing.T) {
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/clearance/stats/":
			writeJSON(w, http.StatusOK, `{"totalStudents": 40, "clearedStudents": 30, "pendingStudents": 10, "percentage": 75}`)
		case "/clearance/assigned-requests/":
			writeJSON(w, http.StatusOK, historyJSON)
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	})

	rr := httptest.NewRecorder()
	p.StaffDashboard(rr, newRequest("GET", "/staff/dashboard", nil, staffSession("4"), nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"75%", "Chidi Okoro", "Signed in as <strong>Grace Eze</strong>", `href="/staff/requests"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected dashboard to contain %q", want)
		}
	}
	if strings.Contains(body, "Ada Obi") {
		t.Error("Expected only pending requests under recent requests")
	}
}

func TestHealthCheck(t *testing.T) {
	p, _ := newTestPortal(t, nil)

	rr := httptest.NewRecorder()
	p.HealthCheck(rr, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Error decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestStatusFor(t *testing.T) {
	testCases := map[services.ErrorKind]int{
		services.KindValidation:  http.StatusUnprocessableEntity,
		services.KindApplication: http.StatusBadRequest,
		services.KindTransport:   http.StatusBadGateway,
	}
	for kind, expected := range testCases {
		if got := statusFor(&services.UserError{Kind: kind}); got != expected {
			t.Errorf("Expected %d for %s, got %d", expected, kind, got)
		}
	}
}
