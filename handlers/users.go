package handlers

import (
	"net/http"
	"strconv"

	"clearance/portal/forms"
	"clearance/portal/models"
	"clearance/portal/routing"
	"clearance/portal/services"

	"github.com/gorilla/mux"
)

const adminUsersPath = "/admin/users/students"

func adminUserDraft(u *models.UserProfile) *forms.Draft {
	initial := u.Values()
	initial["id_number"] = u.IDNumber
	initial["is_active"] = strconv.FormatBool(u.Active())
	return forms.New(routing.AdminUserFields(), nil, initial)
}

// usersTabFor is the users tab listing accounts of u's role
func (p *Portal) usersTabFor(u *models.UserProfile) string {
	if role, ok := p.Names.Parse(u.Role); ok && role == models.RoleStaff {
		return "/admin/users/" + models.UsersStaff
	}
	return adminUsersPath
}

func (p *Portal) renderUserEdit(w http.ResponseWriter, r *http.Request, status int, u *models.UserProfile, d *forms.Draft, ue *services.UserError) {
	page := formPage{
		Layout: p.layout(w, r, "Edit "+u.FullName()),
		Action: "/admin/users/" + u.ID.String() + "/edit",
		Submit: "Save Changes",
	}
	var fieldErrs map[string]string
	if ue != nil {
		page.Error = ue
		fieldErrs = ue.Fields
	}
	page.Form = formView(d, fieldErrs)
	p.render(w, r, status, "form.html", page)
}

// EditUser shows and saves an administrator's edit of an account
func (p *Portal) EditUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := p.API.AdminUser(r.Context(), token(r), id)
	if err != nil {
		p.setFlash(w, FlashError, services.LoadError("user", err).Message)
		seeOther(w, r, adminUsersPath)
		return
	}

	d := adminUserDraft(user)
	if r.Method != http.MethodPost {
		p.renderUserEdit(w, r, http.StatusOK, user, d, nil)
		return
	}

	if _, err := forms.FromRequest(r, d); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := services.AdminUpdateUser(r.Context(), p.API, token(r), id, d)
	if err != nil {
		ue := asUserError(err)
		p.renderUserEdit(w, r, statusFor(ue), user, d, ue)
		return
	}

	p.setFlash(w, FlashSuccess, msg)
	seeOther(w, r, p.usersTabFor(user))
}

// DeactivateUser disables an account and returns to the list it came from
func (p *Portal) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	msg, err := services.DeactivateUser(r.Context(), p.API, token(r), id)
	if err != nil {
		p.setFlash(w, FlashError, asUserError(err).Message)
	} else {
		p.setFlash(w, FlashSuccess, msg)
	}
	seeOther(w, r, refererPath(r, models.RoleAdmin, adminUsersPath))
}
