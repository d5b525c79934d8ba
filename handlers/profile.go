package handlers

import (
	"net/http"

	"clearance/portal/forms"
	"clearance/portal/middleware"
	"clearance/portal/models"
	"clearance/portal/routing"
	"clearance/portal/services"
)

const MsgProfileUpdated = "Profile updated successfully"

func profileDraft(e *routing.Entry, u *models.UserProfile) *forms.Draft {
	return forms.New(e.ProfileFields, []models.FileField{forms.AvatarField()}, u.Values())
}

func passwordDraft() *forms.Draft {
	return forms.New(forms.PasswordFields(), nil, nil)
}

func profilePath(e *routing.Entry) string {
	return "/" + e.Segment + "/edit-profile"
}

// renderProfile draws the profile form and the change-password form. ue is
// shown against whichever form failed.
func (p *Portal) renderProfile(w http.ResponseWriter, r *http.Request, status int, e *routing.Entry, profile, password *forms.Draft, ue *services.UserError, passwordFailed bool) {
	page := formPage{
		Layout:         p.layout(w, r, "Edit Profile"),
		Action:         profilePath(e),
		Submit:         "Save Profile",
		PasswordAction: "/" + e.Segment + "/change-password",
	}
	page.Error = ue

	var profileErrs, passwordErrs map[string]string
	if ue != nil {
		if passwordFailed {
			passwordErrs = ue.Fields
		} else {
			profileErrs = ue.Fields
		}
	}
	page.Form = formView(profile, profileErrs)
	pw := formView(password, passwordErrs)
	page.Password = &pw

	p.render(w, r, status, "form.html", page)
}

// EditProfile shows and saves the signed-in user's profile
func (p *Portal) EditProfile(w http.ResponseWriter, r *http.Request) {
	e := entryFor(r)
	if e == nil {
		http.NotFound(w, r)
		return
	}

	d := profileDraft(e, currentUser(r))
	if r.Method != http.MethodPost {
		p.renderProfile(w, r, http.StatusOK, e, d, passwordDraft(), nil, false)
		return
	}

	if _, err := forms.FromRequest(r, d); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	sid := middleware.GetSessionIDFromContext(r)
	if err := p.Auth.UpdateProfile(r.Context(), sid, d); err != nil {
		ue := asUserError(err)
		p.renderProfile(w, r, statusFor(ue), e, d, passwordDraft(), ue, false)
		return
	}

	p.setFlash(w, FlashSuccess, MsgProfileUpdated)
	seeOther(w, r, profilePath(e))
}

// ChangePassword changes the signed-in user's password
func (p *Portal) ChangePassword(w http.ResponseWriter, r *http.Request) {
	e := entryFor(r)
	if e == nil {
		http.NotFound(w, r)
		return
	}

	d := passwordDraft()
	if _, err := forms.FromRequest(r, d); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := p.Auth.ChangePassword(r.Context(), middleware.GetSessionFromContext(r), d)
	if err != nil {
		ue := asUserError(err)
		p.renderProfile(w, r, statusFor(ue), e, profileDraft(e, currentUser(r)), d, ue, true)
		return
	}

	p.setFlash(w, FlashSuccess, msg)
	seeOther(w, r, profilePath(e))
}
