package handlers

import (
	"net/http"

	"clearance/portal/models"

	"github.com/gorilla/mux"
)

const staffRequestsPath = "/staff/requests"

// ApproveRequest approves a clearance request with optional remarks
func (p *Portal) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	p.review(w, r, true)
}

// RejectRequest rejects a clearance request; remarks are required
func (p *Portal) RejectRequest(w http.ResponseWriter, r *http.Request) {
	p.review(w, r, false)
}

func (p *Portal) review(w http.ResponseWriter, r *http.Request, approve bool) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "Request ID is required", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	remarks := r.PostForm.Get("remarks")

	var msg string
	var err error
	if approve {
		msg, err = p.Reviews.Approve(r.Context(), token(r), id, remarks)
	} else {
		msg, err = p.Reviews.Reject(r.Context(), token(r), id, remarks)
	}

	if err != nil {
		p.setFlash(w, FlashError, asUserError(err).Message)
	} else {
		p.setFlash(w, FlashSuccess, msg)
	}
	seeOther(w, r, refererPath(r, models.RoleStaff, staffRequestsPath))
}
