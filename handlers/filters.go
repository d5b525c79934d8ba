package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"clearance/portal/middleware"
	"clearance/portal/services"

	"github.com/gorilla/mux"
)

// GetSavedFilters returns the current user's saved filters for ?view= as JSON
func (p *Portal) GetSavedFilters(w http.ResponseWriter, r *http.Request) {
	userID := userKey(middleware.GetSessionFromContext(r))
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		http.Error(w, "view query parameter is required", http.StatusBadRequest)
		return
	}

	filters, err := services.GetSavedFilters(userID, view)
	if err != nil {
		http.Error(w, "Failed to get saved filters: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filters)
}

// CreateSavedFilter saves the posted list query under a name and returns
// to the list it was saved from
func (p *Portal) CreateSavedFilter(w http.ResponseWriter, r *http.Request) {
	e := entryFor(r)
	userID := userKey(middleware.GetSessionFromContext(r))
	if e == nil || userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	back := safeReturn(r.PostForm.Get("return"), e.Role, e.Dashboard)

	_, err := services.CreateSavedFilter(
		userID,
		r.PostForm.Get("view"),
		r.PostForm.Get("name"),
		r.PostForm.Get("query"),
		r.PostForm.Get("is_default") == "true",
	)
	if err != nil {
		if ue, ok := services.AsUserError(err); ok {
			p.setFlash(w, FlashError, ue.Message)
			seeOther(w, r, back)
			return
		}
		http.Error(w, "Failed to create saved filter: "+err.Error(), http.StatusInternalServerError)
		return
	}

	p.setFlash(w, FlashSuccess, "Filter saved")
	seeOther(w, r, back)
}

// DeleteSavedFilter removes one of the current user's saved filters
func (p *Portal) DeleteSavedFilter(w http.ResponseWriter, r *http.Request) {
	e := entryFor(r)
	userID := userKey(middleware.GetSessionFromContext(r))
	if e == nil || userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	filterID := mux.Vars(r)["id"]
	if filterID == "" {
		http.Error(w, "Filter ID is required", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	back := safeReturn(r.PostForm.Get("return"), e.Role, e.Dashboard)

	if err := services.DeleteSavedFilter(userID, filterID); err != nil {
		if errors.Is(err, services.ErrFilterNotFound) {
			http.Error(w, "Saved filter not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete saved filter: "+err.Error(), http.StatusInternalServerError)
		return
	}

	p.setFlash(w, FlashSuccess, "Filter deleted")
	seeOther(w, r, back)
}
