package handlers

import (
	"log"
	"net/http"

	"clearance/portal/forms"
	"clearance/portal/middleware"
	"clearance/portal/models"
	"clearance/portal/routing"
	"clearance/portal/services"

	"github.com/gorilla/mux"
)

type authSelectPage struct {
	Layout
	Choices []routing.Entry
}

type authPage struct {
	Layout
	Target    *routing.Entry
	LoginMode bool
	Form      FormView
	Others    []routing.Entry
}

// statusFor maps a failure to the status of the re-rendered page
func statusFor(ue *services.UserError) int {
	switch ue.Kind {
	case services.KindValidation:
		return http.StatusUnprocessableEntity
	case services.KindApplication:
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// asUserError converts any service error for display
func asUserError(err error) *services.UserError {
	if ue, ok := services.AsUserError(err); ok {
		return ue
	}
	log.Printf("Unexpected error: %v", err)
	return &services.UserError{Kind: services.KindTransport, Message: services.MsgServerError}
}

// AuthSelect shows the role picker
func (p *Portal) AuthSelect(w http.ResponseWriter, r *http.Request) {
	if to, ok := p.signedInLanding(r); ok {
		seeOther(w, r, to)
		return
	}

	page := authSelectPage{Layout: p.layout(w, r, "Sign in")}
	page.Entry = nil
	page.Choices = routing.Table[:]
	p.render(w, r, http.StatusOK, "auth_select.html", page)
}

// signedInLanding returns the dashboard of a signed-in user
func (p *Portal) signedInLanding(r *http.Request) (string, bool) {
	sess := middleware.GetSessionFromContext(r)
	if !sess.IsAuthenticated() {
		return "", false
	}
	role, ok := sess.Role(p.Names)
	if !ok {
		return "", false
	}
	return routing.For(role).Dashboard, true
}

func targetRole(r *http.Request) (models.Role, bool) {
	return models.RoleFromSegment(mux.Vars(r)["role"])
}

func activationDraft(e *routing.Entry) *forms.Draft {
	ph := e.Placeholders
	return forms.New(forms.ActivationFields(ph.Email, ph.IDNumber, ph.Department), nil, nil)
}

func loginDraft(e *routing.Entry) *forms.Draft {
	return forms.New(forms.LoginFields(e.Placeholders.IDNumber), nil, nil)
}

func (p *Portal) renderAuth(w http.ResponseWriter, r *http.Request, status int, target *routing.Entry, login bool, d *forms.Draft, ue *services.UserError) {
	title := target.Role.String() + " Account Activation"
	if login {
		title = target.Role.String() + " Login"
	}

	page := authPage{
		Layout:    p.layout(w, r, title),
		Target:    target,
		LoginMode: login,
	}
	page.Entry = nil
	page.Role = target.Role
	page.Error = ue

	var fieldErrs map[string]string
	if ue != nil {
		fieldErrs = ue.Fields
	}
	page.Form = formView(d, fieldErrs)

	for _, e := range routing.Table {
		if e.Role != target.Role {
			page.Others = append(page.Others, e)
		}
	}
	p.render(w, r, status, "auth.html", page)
}

// AuthPage shows the activation form, or the login form with ?mode=login
func (p *Portal) AuthPage(w http.ResponseWriter, r *http.Request) {
	role, ok := targetRole(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if to, ok := p.signedInLanding(r); ok {
		seeOther(w, r, to)
		return
	}

	target := routing.For(role)
	if r.URL.Query().Get("mode") == "login" {
		p.renderAuth(w, r, http.StatusOK, target, true, loginDraft(target), nil)
		return
	}
	p.renderAuth(w, r, http.StatusOK, target, false, activationDraft(target), nil)
}

// Activate registers an account and sends the user to the login form
func (p *Portal) Activate(w http.ResponseWriter, r *http.Request) {
	role, ok := targetRole(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	target := routing.For(role)

	d := activationDraft(target)
	if _, err := forms.FromRequest(r, d); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := p.Auth.Activate(r.Context(), role, d)
	if err != nil {
		ue := asUserError(err)
		p.renderAuth(w, r, statusFor(ue), target, false, d, ue)
		return
	}

	p.setFlash(w, FlashSuccess, msg)
	seeOther(w, r, target.AuthEntry+"?mode=login")
}

// Login signs the browser in and redirects to the landing page of its role
func (p *Portal) Login(w http.ResponseWriter, r *http.Request) {
	role, ok := targetRole(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	target := routing.For(role)

	d := loginDraft(target)
	if _, err := forms.FromRequest(r, d); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	sid := middleware.GetSessionIDFromContext(r)
	redirect, err := p.Auth.Login(r.Context(), sid, d)
	if err != nil {
		ue := asUserError(err)
		p.renderAuth(w, r, statusFor(ue), target, true, d, ue)
		return
	}

	seeOther(w, r, redirect)
}

// Logout clears the session and returns to the auth entry of the role held
func (p *Portal) Logout(w http.ResponseWriter, r *http.Request) {
	sid := middleware.GetSessionIDFromContext(r)
	redirect := p.Auth.Logout(r.Context(), sid)

	p.setFlash(w, FlashInfo, "You have been logged out.")
	seeOther(w, r, redirect)
}

// Home sends "/" to the signed-in dashboard or the default auth entry
func (p *Portal) Home(w http.ResponseWriter, r *http.Request) {
	d := routing.Decide(r.URL.Path, middleware.GetSessionFromContext(r), p.Names, p.DefaultRole)
	if d.Redirect == "" {
		d.Redirect = routing.For(p.DefaultRole).AuthEntry
	}
	seeOther(w, r, d.Redirect)
}
