package clearanceapi

import (
	"context"
	"fmt"
	"net/url"

	"clearance/portal/models"
)

// ActivationRequest is the body of POST /accounts/activate/
type ActivationRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	IDNumber        string `json:"id_number"`
	Department      string `json:"department"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

// LoginResponse is the reply of POST /accounts/login/. Older API builds
// return only role and username instead of the user object.
type LoginResponse struct {
	User     *models.UserProfile `json:"user"`
	Access   string              `json:"access"`
	Refresh  string              `json:"refresh"`
	Role     string              `json:"role"`
	Username string              `json:"username"`
}

// Profile returns the user object, synthesising a minimal one from role and
// username when the reply carried none.
func (r *LoginResponse) Profile() *models.UserProfile {
	if r.User != nil {
		return r.User
	}
	if r.Role == "" && r.Username == "" {
		return nil
	}
	return &models.UserProfile{Role: r.Role, Username: r.Username}
}

type messageResponse struct {
	Message string `json:"message"`
}

// Activate registers an account and returns the server's confirmation
func (c *Client) Activate(ctx context.Context, req ActivationRequest) (string, error) {
	cl, err := jsonCall("activate", "POST", "/accounts/activate/", "", req)
	if err != nil {
		return "", err
	}

	var resp messageResponse
	if err := c.doJSON(ctx, cl, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login exchanges credentials for tokens and the user's profile
func (c *Client) Login(ctx context.Context, idNumber, password string) (*LoginResponse, error) {
	cl, err := jsonCall("login", "POST", "/accounts/login/", "", map[string]string{
		"id_number": idNumber,
		"password":  password,
	})
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := c.doJSON(ctx, cl, &resp); err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return nil, fmt.Errorf("%w: login reply carried no access token", ErrTransport)
	}
	return &resp, nil
}

// Logout tells the API to revoke the refresh token
func (c *Client) Logout(ctx context.Context, access, refresh string) error {
	cl, err := jsonCall("logout", "POST", "/accounts/logout/", access, map[string]string{"refresh": refresh})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, cl)
	return err
}

// Me fetches the signed-in user's profile
func (c *Client) Me(ctx context.Context, token string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.doJSON(ctx, call{op: "me", method: "GET", path: "/accounts/user/me/", token: token}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile sends the signed-in user's edited profile
func (c *Client) UpdateProfile(ctx context.Context, token string, body Multipart) error {
	_, err := c.do(ctx, call{
		op:          "update_profile",
		method:      "PATCH",
		path:        "/accounts/profile/update/",
		token:       token,
		body:        body.Reader(),
		contentType: body.ContentType(),
	})
	return err
}

// AdminUpdateUser edits another account as an administrator
func (c *Client) AdminUpdateUser(ctx context.Context, token, userID string, body Multipart) error {
	_, err := c.do(ctx, call{
		op:          "admin_update_user",
		method:      "PATCH",
		path:        fmt.Sprintf("/accounts/admin/user/%s/update/", url.PathEscape(userID)),
		token:       token,
		body:        body.Reader(),
		contentType: body.ContentType(),
	})
	return err
}

// AdminUsers lists accounts; role filters by API role spelling when set
func (c *Client) AdminUsers(ctx context.Context, token, role string) ([]models.UserProfile, error) {
	path := "/accounts/admin/users/"
	if role != "" {
		path += "?role=" + url.QueryEscape(role)
	}

	var users []models.UserProfile
	if err := c.doList(ctx, call{op: "admin_users", method: "GET", path: path, token: token}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminUser fetches one account by id from the admin listing
func (c *Client) AdminUser(ctx context.Context, token, userID string) (*models.UserProfile, error) {
	users, err := c.AdminUsers(ctx, token, "")
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID.String() == userID {
			return &users[i], nil
		}
	}
	return nil, &APIError{StatusCode: 404, Message: "User not found"}
}

// DeactivateUser disables an account
func (c *Client) DeactivateUser(ctx context.Context, token, userID string) error {
	cl, err := jsonCall("deactivate_user", "POST", "/accounts/admin/deactivate/", token, map[string]string{"user_id": userID})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, cl)
	return err
}

// ChangePassword changes the signed-in user's password
func (c *Client) ChangePassword(ctx context.Context, token, oldPassword, newPassword, confirm string) (string, error) {
	cl, err := jsonCall("change_password", "POST", "/accounts/change_password/", token, map[string]string{
		"old_password":     oldPassword,
		"new_password":     newPassword,
		"confirm_password": confirm,
	})
	if err != nil {
		return "", err
	}

	var resp messageResponse
	if err := c.doJSON(ctx, cl, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
