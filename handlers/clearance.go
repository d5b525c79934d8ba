package handlers

import (
	"net/http"

	"clearance/portal/forms"
	"clearance/portal/models"
	"clearance/portal/services"
)

type formPage struct {
	Layout
	Action         string
	Submit         string
	Form           FormView
	Password       *FormView
	PasswordAction string
}

func clearanceDraft(u *models.UserProfile) *forms.Draft {
	return forms.New(forms.ClearanceFields(), forms.ClearanceFileFields(), forms.ClearanceInitial(u))
}

func clearancePath(kind models.ClearanceKind) string {
	return "/student/" + string(kind) + "-clearance"
}

func (p *Portal) renderClearance(w http.ResponseWriter, r *http.Request, status int, kind models.ClearanceKind, d *forms.Draft, ue *services.UserError) {
	page := formPage{
		Layout: p.layout(w, r, kind.Title()),
		Action: clearancePath(kind),
		Submit: "Submit Request",
	}
	var fieldErrs map[string]string
	if ue != nil {
		page.Error = ue
		fieldErrs = ue.Fields
	}
	page.Form = formView(d, fieldErrs)
	p.render(w, r, status, "form.html", page)
}

// ClearanceForm returns the handler serving one clearance request form
func (p *Portal) ClearanceForm(kind models.ClearanceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := clearanceDraft(currentUser(r))

		if r.Method != http.MethodPost {
			p.renderClearance(w, r, http.StatusOK, kind, d, nil)
			return
		}

		if _, err := forms.FromRequest(r, d); err != nil {
			http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
			return
		}

		msg, err := services.SubmitClearance(r.Context(), p.API, token(r), kind, d)
		if err != nil {
			ue := asUserError(err)
			p.renderClearance(w, r, statusFor(ue), kind, d, ue)
			return
		}

		p.setFlash(w, FlashSuccess, msg)
		seeOther(w, r, "/student/status")
	}
}
