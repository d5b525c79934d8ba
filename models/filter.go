package models

import "time"

// List views that support saved filters
const (
	ViewRequests = "requests"
	ViewStudents = "students"
	ViewHistory  = "history"
	ViewUsers    = "users"
)

// ListViews is the set of views a filter may target
var ListViews = []string{ViewRequests, ViewStudents, ViewHistory, ViewUsers}

// SavedFilter is a named list-view query kept for one user
type SavedFilter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	View      string    `json:"view"`
	Query     string    `json:"query"` // URL-encoded list query, e.g. "status=approved&sort_by=date"
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsListView reports whether view names a filterable list
func IsListView(view string) bool {
	return contains(ListViews, view)
}
