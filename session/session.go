package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"clearance/portal/models"
	"clearance/portal/security"
)

// ErrTornSession is returned by Set for a value whose user and access
// token disagree: one present and the other absent.
var ErrTornSession = errors.New("session must carry both a user and an access token, or neither")

// Session is everything the portal remembers about one browser
type Session struct {
	User         *models.UserProfile
	AccessToken  string
	RefreshToken string
}

// IsAuthenticated reports whether the session holds a signed-in user
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// IsEmpty reports whether nothing is stored
func (s Session) IsEmpty() bool {
	return s.User == nil && s.AccessToken == "" && s.RefreshToken == ""
}

// Consistent reports whether user and access token are present together
func (s Session) Consistent() bool {
	return (s.User != nil) == (s.AccessToken != "")
}

// Role resolves the user's role through the configured API spellings
func (s Session) Role(names models.RoleNames) (models.Role, bool) {
	if s.User == nil {
		return 0, false
	}
	return names.Parse(s.User.Role)
}

// Store persists one Session per browser id.
//
// Get never fails: a missing, unreadable or corrupt entry is logged and
// read as the empty session. Set replaces the whole value in one write and
// Clear removes it in one write.
type Store interface {
	Get(ctx context.Context, id string) Session
	Set(ctx context.Context, id string, s Session) error
	Clear(ctx context.Context, id string) error
}

// record is the stored form of a Session. Tokens are sealed.
type record struct {
	User         string `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func encode(c *security.Cipher, s Session) (record, error) {
	var rec record

	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return rec, fmt.Errorf("failed to encode user: %w", err)
		}
		rec.User = string(data)
	}

	var err error
	if rec.AccessToken, err = c.Encrypt(s.AccessToken); err != nil {
		return rec, fmt.Errorf("failed to seal access token: %w", err)
	}
	if rec.RefreshToken, err = c.Encrypt(s.RefreshToken); err != nil {
		return rec, fmt.Errorf("failed to seal refresh token: %w", err)
	}

	return rec, nil
}

func decode(c *security.Cipher, rec record) (Session, error) {
	var s Session

	user := strings.TrimSpace(rec.User)
	if user != "" && user != "null" && user != "undefined" {
		var profile models.UserProfile
		if err := json.Unmarshal([]byte(user), &profile); err != nil {
			return Session{}, fmt.Errorf("malformed user profile: %w", err)
		}
		s.User = &profile
	}

	var err error
	if s.AccessToken, err = c.Decrypt(rec.AccessToken); err != nil {
		return Session{}, fmt.Errorf("unreadable access token: %w", err)
	}
	if s.RefreshToken, err = c.Decrypt(rec.RefreshToken); err != nil {
		return Session{}, fmt.Errorf("unreadable refresh token: %w", err)
	}

	if !s.Consistent() {
		return Session{}, ErrTornSession
	}

	return s, nil
}

// shortID keeps session ids out of logs
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
