package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"clearance/portal/listview"
	"clearance/portal/middleware"
	"clearance/portal/models"
	"clearance/portal/services"

	"github.com/gorilla/mux"
)

type fetchFunc func(ctx context.Context, token string, user *models.UserProfile) ([]models.ClearanceRequest, error)

// listOptions configures one request list page
type listOptions struct {
	title      string
	view       string
	fetch      fetchFunc
	defaults   listview.Query
	reviewable bool
	summary    bool
	export     string
	tabs       []Tab
}

type listPage struct {
	Layout
	Query        listview.Query
	Page         listview.Page[models.ClearanceRequest]
	Reviewable   bool
	Types        []string
	View         string
	Segment      string
	SavedFilters []models.SavedFilter
	Summary      *listview.Summary
	ExportURL    string
	Tabs         []Tab
}

type studentsPage struct {
	Layout
	Query      listview.Query
	Page       listview.Page[models.AssignedStudent]
	Unassigned bool
}

type usersPage struct {
	Layout
	Query listview.Query
	Page  listview.Page[models.UserProfile]
	Tabs  []Tab
}

// listValues returns the request's query, or the user's default saved
// filter for view when the request carries none
func listValues(r *http.Request, view string) url.Values {
	if r.URL.RawQuery != "" || view == "" {
		return r.URL.Query()
	}

	sess := middleware.GetSessionFromContext(r)
	f, err := services.GetDefaultFilter(userKey(sess), view)
	if err != nil {
		log.Printf("Error loading default %s filter: %v", view, err)
		return r.URL.Query()
	}
	if f == nil {
		return r.URL.Query()
	}

	v, err := url.ParseQuery(f.Query)
	if err != nil {
		return r.URL.Query()
	}
	return v
}

func (p *Portal) requestList(w http.ResponseWriter, r *http.Request, opts listOptions) {
	page := listPage{
		Layout:     p.layout(w, r, opts.title),
		View:       opts.view,
		Reviewable: opts.reviewable,
		Tabs:       opts.tabs,
	}
	if e := entryFor(r); e != nil {
		page.Segment = e.Segment
	}

	page.Query = listview.ParseQuery(listValues(r, opts.view), opts.defaults)

	items, err := opts.fetch(r.Context(), token(r), currentUser(r))
	if err != nil {
		page.Error = asUserError(err)
	}

	page.Types = listview.Types(items)
	filtered := listview.Apply(items, page.Query, p.now())
	page.Page = listview.Paginate(filtered, page.Query.Page, page.Query.PerPage)

	if opts.summary {
		s := listview.Summarize(filtered)
		page.Summary = &s
	}
	if opts.export != "" {
		page.ExportURL = opts.export + "?" + page.Query.Values().Encode()
	}

	if opts.view != "" {
		saved, err := services.GetSavedFilters(userKey(middleware.GetSessionFromContext(r)), opts.view)
		if err != nil {
			log.Printf("Error loading saved filters: %v", err)
		}
		page.SavedFilters = saved
	}

	p.render(w, r, http.StatusOK, "list.html", page)
}

// loadErr converts a client error into a displayable failure
func loadErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return services.LoadError(op, err)
}

// StudentStatus lists the student's current requests
func (p *Portal) StudentStatus(w http.ResponseWriter, r *http.Request) {
	p.requestList(w, r, listOptions{
		title:    "Clearance Status",
		view:     models.ViewRequests,
		defaults: listview.DefaultQuery(),
		fetch: func(ctx context.Context, token string, _ *models.UserProfile) ([]models.ClearanceRequest, error) {
			reqs, err := p.API.MyRequests(ctx, token)
			return reqs, loadErr("requests", err)
		},
	})
}

// StudentHistory lists the student's past requests
func (p *Portal) StudentHistory(w http.ResponseWriter, r *http.Request) {
	p.requestList(w, r, listOptions{
		title:    "Clearance History",
		view:     models.ViewHistory,
		defaults: listview.DefaultQuery(),
		summary:  true,
		fetch: func(ctx context.Context, token string, _ *models.UserProfile) ([]models.ClearanceRequest, error) {
			reqs, err := p.API.StudentHistory(ctx, token)
			return reqs, loadErr("history", err)
		},
	})
}

// StaffRequests lists the requests awaiting the staff member's review
func (p *Portal) StaffRequests(w http.ResponseWriter, r *http.Request) {
	p.requestList(w, r, listOptions{
		title:      "Clearance Requests",
		view:       models.ViewRequests,
		defaults:   listview.DefaultQuery(),
		reviewable: true,
		fetch:      p.Reviews.AssignedRequests,
	})
}

func staffHistoryDefaults() listview.Query {
	q := listview.DefaultQuery()
	q.CompletedOnly = true
	return q
}

func (p *Portal) staffHistory(ctx context.Context, token string, _ *models.UserProfile) ([]models.ClearanceRequest, error) {
	reqs, err := p.API.StaffHistory(ctx, token)
	return reqs, loadErr("history", err)
}

// StaffHistory lists the requests the staff member has decided
func (p *Portal) StaffHistory(w http.ResponseWriter, r *http.Request) {
	p.requestList(w, r, listOptions{
		title:    "Clearance History",
		view:     models.ViewHistory,
		defaults: staffHistoryDefaults(),
		summary:  true,
		export:   "/staff/history/export",
		fetch:    p.staffHistory,
	})
}

// ExportStaffHistory downloads the filtered staff history as CSV
func (p *Portal) ExportStaffHistory(w http.ResponseWriter, r *http.Request) {
	items, err := p.staffHistory(r.Context(), token(r), currentUser(r))
	if err != nil {
		ue := asUserError(err)
		http.Error(w, ue.Message, statusFor(ue))
		return
	}

	q := listview.ParseQuery(r.URL.Query(), staffHistoryDefaults())
	filtered := listview.Apply(items, q, p.now())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+listview.ExportFilename("clearance-history", p.now())+`"`)
	if err := listview.WriteCSV(w, filtered, p.Location); err != nil {
		log.Printf("Error writing history export: %v", err)
	}
}

// MyStudents lists the students under the staff member's clearance type
func (p *Portal) MyStudents(w http.ResponseWriter, r *http.Request) {
	page := studentsPage{Layout: p.layout(w, r, "My Students")}
	page.Query = listview.ParseQuery(r.URL.Query(), listview.DefaultQuery())

	clearanceType := currentUser(r).ClearanceType
	if clearanceType == "" {
		page.Unassigned = true
		p.render(w, r, http.StatusOK, "students.html", page)
		return
	}

	students, err := p.API.AssignedStudents(r.Context(), token(r), clearanceType)
	if err != nil {
		page.Error = services.LoadError("students", err)
	}

	filtered := listview.FilterStudents(students, page.Query.Search, page.Query.Status)
	page.Page = listview.Paginate(filtered, page.Query.Page, page.Query.PerPage)
	p.render(w, r, http.StatusOK, "students.html", page)
}

func adminTabs(prefix string, tabs []string, active string) []Tab {
	out := make([]Tab, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, Tab{
			Title:  titleCase(t),
			Path:   prefix + t,
			Active: t == active,
		})
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// AdminUsers lists student or staff accounts
func (p *Portal) AdminUsers(w http.ResponseWriter, r *http.Request) {
	tab := mux.Vars(r)["tab"]
	if !models.IsUserTab(tab) {
		http.NotFound(w, r)
		return
	}

	role := models.RoleStudent
	if tab == models.UsersStaff {
		role = models.RoleStaff
	}

	page := usersPage{
		Layout: p.layout(w, r, titleCase(tab)),
		Tabs:   adminTabs("/admin/users/", models.UserTabs, tab),
	}
	page.Query = listview.ParseQuery(r.URL.Query(), listview.DefaultQuery())

	users, err := p.API.AdminUsers(r.Context(), token(r), p.Names.APIName(role))
	if err != nil {
		page.Error = services.LoadError("users", err)
	}

	filtered := listview.FilterUsers(users, page.Query.Search)
	page.Page = listview.Paginate(filtered, page.Query.Page, page.Query.PerPage)
	p.render(w, r, http.StatusOK, "users.html", page)
}

// AdminHistory lists clearance history for one tab
func (p *Portal) AdminHistory(w http.ResponseWriter, r *http.Request) {
	tab := mux.Vars(r)["tab"]
	if !models.IsHistoryTab(tab) {
		http.NotFound(w, r)
		return
	}

	p.requestList(w, r, listOptions{
		title:    titleCase(tab) + " Clearance History",
		view:     models.ViewHistory,
		defaults: listview.DefaultQuery(),
		summary:  true,
		tabs:     adminTabs("/admin/history/", models.HistoryTabs, tab),
		fetch: func(ctx context.Context, token string, _ *models.UserProfile) ([]models.ClearanceRequest, error) {
			reqs, err := p.API.AdminHistory(ctx, token, tab)
			return reqs, loadErr("history", err)
		},
	})
}
