package handlers

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"clearance/portal/listview"
	"clearance/portal/models"
	"clearance/portal/services"
	"clearance/portal/session"
)

const historyJSON = `[
	{"id": 1, "student": {"name": "Ada Obi", "id_number": "ENG/001"}, "type": "Lab", "status": "approved", "date": "2025-06-10"},
	{"id": 2, "student": {"name": "Bola Ade", "id_number": "ENG/002"}, "type": "Library", "status": "rejected", "date": "2025-06-12"},
	{"id": 3, "student": {"name": "Chidi Okoro", "id_number": "ENG/003"}, "type": "Lab", "status": "pending", "date": "2025-06-14"}
]`

func TestExportStaffHistory(t *testing.T) {
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clearance/staff-history/" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, historyJSON)
	})

	testCases := []struct {
		name  string
		query string
		rows  int
	}{
		{"Completed only", "", 2},
		{"Approved filter", "?status=approved", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			p.ExportStaffHistory(rr, newRequest("GET", "/staff/history/export"+tc.query, nil, staffSession("4"), nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rr.Code)
			}
			if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "clearance-history-2025-06-15.csv") {
				t.Errorf("Expected dated filename, got %q", cd)
			}

			records, err := csv.NewReader(rr.Body).ReadAll()
			if err != nil {
				t.Fatalf("Error reading CSV: %v", err)
			}
			if len(records) != tc.rows+1 {
				t.Fatalf("Expected %d rows plus header, got %d", tc.rows, len(records))
			}
			if strings.Join(records[0], ",") != strings.Join(listview.CSVHeader, ",") {
				t.Errorf("Unexpected header %v", records[0])
			}
		})
	}
}

func TestExportStaffHistoryUnreachableAPI(t *testing.T) {
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})

	rr := httptest.NewRecorder()
	p.ExportStaffHistory(rr, newRequest("GET", "/staff/history/export", nil, staffSession("4"), nil))

	if rr.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), services.MsgServerError) {
		t.Errorf("Expected generic server error, got %q", rr.Body.String())
	}
}

func TestStaffRequestsAppliesDefaultFilter(t *testing.T) {
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, historyJSON)
	})

	if _, err := services.CreateSavedFilter("41", models.ViewRequests, "Approved", "status=approved", true); err != nil {
		t.Fatalf("Error creating filter: %v", err)
	}

	rr := httptest.NewRecorder()
	p.StaffRequests(rr, newRequest("GET", "/staff/requests", nil, staffSession("41"), nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Ada Obi") {
		t.Error("Expected the approved request to be listed")
	}
	if strings.Contains(body, "Chidi Okoro") {
		t.Error("Expected the default filter to hide pending requests")
	}

	// An explicit query wins over the default filter
	rr = httptest.NewRecorder()
	p.StaffRequests(rr, newRequest("GET", "/staff/requests?status=all", nil, staffSession("41"), nil))
	if !strings.Contains(rr.Body.String(), "Chidi Okoro") {
		t.Error("Expected all requests with an explicit query")
	}
}

func TestStaffRequestsShowsLoadError(t *testing.T) {
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"detail": "Not assigned"}`)
	})

	rr := httptest.NewRecorder()
	p.StaffRequests(rr, newRequest("GET", "/staff/requests", nil, staffSession("42"), nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Not assigned") {
		t.Error("Expected the server's message in the banner")
	}
	if !strings.Contains(rr.Body.String(), "No requests found.") {
		t.Error("Expected an empty table")
	}
}

func TestMyStudentsWithoutClearanceType(t *testing.T) {
	var calls int32
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	rr := httptest.NewRecorder()
	p.MyStudents(rr, newRequest("GET", "/staff/my-students", nil, staffSession("4"), nil))

	if !strings.Contains(rr.Body.String(), "No clearance type assigned.") {
		t.Error("Expected the unassigned notice")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("Expected no API call without a clearance type")
	}
}

func TestMyStudentsFilters(t *testing.T) {
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("clearance_type") != "lab" {
			t.Errorf("Expected clearance_type=lab, got %q", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, `{"results": [
			{"id": 1, "first_name": "Ada", "last_name": "Obi", "id_number": "ENG/001", "status": "approved"},
			{"id": 2, "first_name": "Bola", "last_name": "Ade", "id_number": "ENG/002", "status": "pending"}
		]}`)
	})

	sess := staffSession("4")
	sess.User.ClearanceType = "lab"

	rr := httptest.NewRecorder()
	p.MyStudents(rr, newRequest("GET", "/staff/my-students?status=pending", nil, sess, nil))

	body := rr.Body.String()
	if !strings.Contains(body, "Bola Ade") || strings.Contains(body, "Ada Obi") {
		t.Errorf("Expected only the pending student, got %s", body)
	}
}

func TestAdminUsersTabs(t *testing.T) {
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("role") != "staff" {
			t.Errorf("Expected role=staff, got %q", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, `[{"id": 8, "first_name": "Grace", "last_name": "Eze", "email": "grace@uni.edu", "is_active": true}]`)
	})
	admin := session.Session{User: &models.UserProfile{ID: "1", Role: "admin"}, AccessToken: "acc"}

	rr := httptest.NewRecorder()
	p.AdminUsers(rr, newRequest("GET", "/admin/users/staff", nil, admin, map[string]string{"tab": "staff"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "/admin/users/8/edit") {
		t.Error("Expected an edit link for the listed user")
	}

	rr = httptest.NewRecorder()
	p.AdminUsers(rr, newRequest("GET", "/admin/users/deans", nil, admin, map[string]string{"tab": "deans"}))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown tab, got %d", rr.Code)
	}
}

func TestRejectWithoutRemarks(t *testing.T) {
	var calls int32
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	rr := httptest.NewRecorder()
	req := newRequest("POST", "/staff/requests/12/reject", url.Values{"remarks": {" "}}, staffSession("4"), map[string]string{"id": "12"})
	p.RejectRequest(rr, req)

	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != staffRequestsPath {
		t.Errorf("Expected 303 to %s, got %d %q", staffRequestsPath, rr.Code, rr.Header().Get("Location"))
	}
	if f := flashFrom(t, rr); f == nil || f.Kind != FlashError || f.Message != services.MsgRemarksRequired {
		t.Errorf("Expected remarks error flash, got %+v", f)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("Expected no API call without remarks")
	}
}

func TestApproveReturnsToReferer(t *testing.T) {
	p, _ := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message": "ok"}`)
	})

	rr := httptest.NewRecorder()
	req := newRequest("POST", "/staff/requests/12/approve", url.Values{}, staffSession("4"), map[string]string{"id": "12"})
	req.Header.Set("Referer", "http://"+req.Host+"/staff/requests?status=pending&page=2")
	p.ApproveRequest(rr, req)

	if loc := rr.Header().Get("Location"); loc != "/staff/requests?status=pending&page=2" {
		t.Errorf("Expected to return to the list, got %q", loc)
	}
	if f := flashFrom(t, rr); f == nil || f.Message != services.MsgApproved {
		t.Errorf("Expected approval flash, got %+v", f)
	}
}
