package services

import (
	"context"
	"log"

	"clearance/portal/clearanceapi"
	"clearance/portal/forms"
	"clearance/portal/models"
	"clearance/portal/routing"
	"clearance/portal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Messages shown when the API gives no reason
const (
	MsgActivationFailed = "Activation failed"
	MsgLoginFailed      = "Login failed"
	MsgPasswordMismatch = "Passwords do not match"
	MsgProfileFailed    = "Failed to update profile"
	MsgPasswordFailed   = "Failed to change password"
)

var authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "clearance_auth_attempts_total",
	Help: "Activation, login and logout attempts, by action and outcome.",
}, []string{"action", "outcome"})

func countAttempt(action string, err error) {
	outcome := "success"
	if ue, ok := AsUserError(err); ok {
		outcome = string(ue.Kind)
	} else if err != nil {
		outcome = "error"
	}
	authAttempts.WithLabelValues(action, outcome).Inc()
}

// AuthService owns every write to the session store. Writes for the same
// browser are serialised.
type AuthService struct {
	api   *clearanceapi.Client
	store session.Store
	names models.RoleNames
	locks *keyedMutex

	// AvatarMaxSide bounds uploaded profile pictures; 0 keeps them as sent
	AvatarMaxSide int
}

// NewAuthService wires the auth flows to the API and the session store
func NewAuthService(api *clearanceapi.Client, store session.Store, names models.RoleNames) *AuthService {
	return &AuthService{
		api:   api,
		store: store,
		names: names,
		locks: newKeyedMutex(),
	}
}

// RoleNames returns the API role spellings in use
func (s *AuthService) RoleNames() models.RoleNames {
	return s.names
}

// Activate registers an account for role from a filled activation draft and
// returns the server's confirmation. The session is not touched.
func (s *AuthService) Activate(ctx context.Context, role models.Role, d *forms.Draft) (msg string, err error) {
	defer func() { countAttempt("activate", err) }()

	if errs := d.Validate(); len(errs) > 0 {
		return "", validationError("Please fix the highlighted fields", errs)
	}
	if d.Value("password") != d.Value("confirm_password") {
		return "", validationError(MsgPasswordMismatch, map[string]string{"confirm_password": MsgPasswordMismatch})
	}

	msg, err = s.api.Activate(ctx, clearanceapi.ActivationRequest{
		Name:            d.Value("name"),
		Email:           d.Value("email"),
		IDNumber:        d.Value("id_number"),
		Department:      d.Value("department"),
		Password:        d.Value("password"),
		ConfirmPassword: d.Value("confirm_password"),
		Role:            s.names.APIName(role),
	})
	if err != nil {
		return "", fromAPIError("activation", err, MsgActivationFailed)
	}
	if msg == "" {
		msg = "Account activated. You can now log in."
	}
	return msg, nil
}

// Login signs the browser in and returns where to send it. The session is
// stored in one write before the destination is computed; on failure it is
// left as it was.
func (s *AuthService) Login(ctx context.Context, sid string, d *forms.Draft) (redirect string, err error) {
	defer func() { countAttempt("login", err) }()

	if errs := d.Validate(); len(errs) > 0 {
		return "", validationError("Please fix the highlighted fields", errs)
	}

	unlock := s.locks.Lock(sid)
	defer unlock()

	resp, err := s.api.Login(ctx, d.Value("id_number"), d.Value("password"))
	if err != nil {
		return "", fromAPIError("login", err, MsgLoginFailed)
	}

	user := resp.Profile()
	if user == nil {
		log.Printf("Login reply for %s carried no user", d.Value("id_number"))
		return "", &UserError{Kind: KindTransport, Message: MsgServerError}
	}

	sess := session.Session{User: user, AccessToken: resp.Access, RefreshToken: resp.Refresh}
	if err := s.store.Set(ctx, sid, sess); err != nil {
		log.Printf("Error storing session after login: %v", err)
		return "", &UserError{Kind: KindTransport, Message: MsgServerError}
	}

	return routing.LandingPath(user.Role, s.names), nil
}

// Logout signs the browser out and returns the auth entry of the role it
// held. Telling the API is best effort; the local session is always cleared.
func (s *AuthService) Logout(ctx context.Context, sid string) string {
	unlock := s.locks.Lock(sid)
	defer unlock()

	sess := s.store.Get(ctx, sid)
	redirect := routing.LogoutPath(sess, s.names)

	outcome := "success"
	if sess.AccessToken != "" {
		if err := s.api.Logout(ctx, sess.AccessToken, sess.RefreshToken); err != nil {
			log.Printf("Logout notification failed, clearing session anyway: %v", err)
			outcome = "notify_failed"
		}
	}

	if err := s.store.Clear(ctx, sid); err != nil {
		log.Printf("Error clearing session, retrying: %v", err)
		if err := s.store.Clear(ctx, sid); err != nil {
			log.Printf("Error clearing session on retry: %v", err)
			outcome = "clear_failed"
		}
	}

	authAttempts.WithLabelValues("logout", outcome).Inc()
	return redirect
}

// UpdateProfile sends the edited profile and refreshes the stored copy from
// the API. It runs under the same lock as login and logout.
func (s *AuthService) UpdateProfile(ctx context.Context, sid string, d *forms.Draft) error {
	if errs := d.Validate(); len(errs) > 0 {
		return validationError("Please fix the highlighted fields", errs)
	}

	if s.AvatarMaxSide > 0 {
		for _, ff := range d.FileFields() {
			if err := normalizeFiles(d, ff.Name, s.AvatarMaxSide); err != nil {
				return validationError(err.Error(), map[string]string{ff.Name: err.Error()})
			}
		}
	}

	unlock := s.locks.Lock(sid)
	defer unlock()

	sess := s.store.Get(ctx, sid)
	if !sess.IsAuthenticated() {
		return &UserError{Kind: KindApplication, Message: "Your session has ended. Please log in again."}
	}

	payload, err := d.Payload()
	if err != nil {
		log.Printf("Error encoding profile form: %v", err)
		return &UserError{Kind: KindTransport, Message: MsgServerError}
	}

	if err := s.api.UpdateProfile(ctx, sess.AccessToken, payload); err != nil {
		return fromAPIError("profile update", err, MsgProfileFailed)
	}

	return s.refreshLocked(ctx, sid, sess)
}

// RefreshProfile re-reads the signed-in user from the API
func (s *AuthService) RefreshProfile(ctx context.Context, sid string) error {
	unlock := s.locks.Lock(sid)
	defer unlock()

	sess := s.store.Get(ctx, sid)
	if !sess.IsAuthenticated() {
		return nil
	}
	return s.refreshLocked(ctx, sid, sess)
}

func (s *AuthService) refreshLocked(ctx context.Context, sid string, sess session.Session) error {
	user, err := s.api.Me(ctx, sess.AccessToken)
	if err != nil {
		return fromAPIError("profile refresh", err, MsgProfileFailed)
	}

	sess.User = user
	if err := s.store.Set(ctx, sid, sess); err != nil {
		log.Printf("Error storing refreshed profile: %v", err)
		return &UserError{Kind: KindTransport, Message: MsgServerError}
	}
	return nil
}

// ChangePassword changes the signed-in user's password
func (s *AuthService) ChangePassword(ctx context.Context, sess session.Session, d *forms.Draft) (string, error) {
	if errs := d.Validate(); len(errs) > 0 {
		return "", validationError("Please fix the highlighted fields", errs)
	}
	if d.Value("new_password") != d.Value("confirm_password") {
		return "", validationError(MsgPasswordMismatch, map[string]string{"confirm_password": MsgPasswordMismatch})
	}

	msg, err := s.api.ChangePassword(ctx, sess.AccessToken, d.Value("old_password"), d.Value("new_password"), d.Value("confirm_password"))
	if err != nil {
		return "", fromAPIError("password change", err, MsgPasswordFailed)
	}
	if msg == "" {
		msg = "Password changed successfully"
	}
	return msg, nil
}
