package handlers

import (
	"net/http"

	"clearance/portal/listview"
	"clearance/portal/models"
	"clearance/portal/services"
)

const recentLimit = 5

type dashboardPage struct {
	Layout
	Stats   *models.ClearanceStats
	Summary *listview.Summary
	Recent  []models.ClearanceRequest
}

// latest sorts a copy of items newest first and keeps the first n
func (p *Portal) latest(items []models.ClearanceRequest, n int) []models.ClearanceRequest {
	out := append([]models.ClearanceRequest(nil), items...)
	listview.Sort(out, listview.SortDate, listview.Desc, p.Location)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// StudentDashboard summarises the student's own requests
func (p *Portal) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{Layout: p.layout(w, r, "Student Dashboard")}

	reqs, err := p.API.MyRequests(r.Context(), token(r))
	if err != nil {
		page.Error = services.LoadError("requests", err)
	} else {
		summary := listview.Summarize(reqs)
		page.Summary = &summary
		page.Recent = p.latest(reqs, recentLimit)
	}

	p.render(w, r, http.StatusOK, "dashboard.html", page)
}

// StaffDashboard shows clearance stats and the newest pending requests
func (p *Portal) StaffDashboard(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{Layout: p.layout(w, r, "Staff Dashboard")}

	stats, err := p.API.Stats(r.Context(), token(r))
	if err != nil {
		page.Error = services.LoadError("stats", err)
	} else {
		page.Stats = stats
	}

	reqs, err := p.Reviews.AssignedRequests(r.Context(), token(r), currentUser(r))
	if err != nil {
		if page.Error == nil {
			page.Error = asUserError(err)
		}
	} else {
		q := listview.DefaultQuery()
		q.Status = models.StatusPending
		page.Recent = p.latest(listview.Apply(reqs, q, p.now()), recentLimit)
	}

	p.render(w, r, http.StatusOK, "dashboard.html", page)
}

// AdminDashboard shows clearance stats across the institution
func (p *Portal) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{Layout: p.layout(w, r, "Admin Dashboard")}

	stats, err := p.API.Stats(r.Context(), token(r))
	if err != nil {
		page.Error = services.LoadError("stats", err)
	} else {
		page.Stats = stats
	}

	p.render(w, r, http.StatusOK, "dashboard.html", page)
}
