package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmfoods/storefront/internal/apperror"
)

// currentUserPayload matches GET /users/current-user: the user arrives
// nested one level deeper than other endpoints.
type currentUserPayload struct {
	User *User `json:"user"`
}

// CurrentUser asks the upstream who the credential jar belongs to.
// Returns AuthError for missing/expired credentials.
func (c *Client) CurrentUser(ctx context.Context, creds Credentials) (*User, error) {
	var payload currentUserPayload
	if err := c.getJSON(ctx, "/users/current-user", creds, &payload); err != nil {
		return nil, err
	}
	if payload.User == nil {
		return nil, apperror.NewAuthError("no active session")
	}
	return payload.User, nil
}

// Login exchanges username/password for an identity plus the upstream auth
// cookies. The cookies become the session's credential jar.
func (c *Client) Login(ctx context.Context, username, password string) (*User, Credentials, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, nil, apperror.NewInternal(fmt.Errorf("encoding login body: %w", err))
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/users/login", bytes.NewReader(body), "application/json", nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, nil, err
	}

	// Capture the Set-Cookie credentials before the body is consumed.
	creds := credentialsFrom(resp)

	var payload currentUserPayload
	if err := c.decode(resp, &payload); err != nil {
		return nil, nil, err
	}
	if payload.User == nil {
		return nil, nil, apperror.NewAuthError("login response carried no user")
	}
	return payload.User, creds, nil
}

// Logout invalidates the upstream session. Best effort -- callers clear
// local state regardless of the result.
func (c *Client) Logout(ctx context.Context, creds Credentials) error {
	return c.sendJSON(ctx, http.MethodPost, "/users/logout", creds, nil, nil)
}

// Register creates a new account (multipart, optional avatar). It does not
// authenticate -- the caller logs in separately afterwards.
func (c *Client) Register(ctx context.Context, input RegisterInput) error {
	fields := map[string]string{
		"username":    input.Username,
		"email":       input.Email,
		"fullname":    input.FullName,
		"password":    input.Password,
		"phoneNumber": input.PhoneNumber,
		"address":     input.Address,
		"city":        input.City,
		"postalCode":  input.PostalCode,
	}
	body, contentType, err := encodeMultipart(fields, "avatar", input.AvatarName, input.AvatarData)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/users/register", body, contentType, nil)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	return c.decode(resp, nil)
}

// UpdateProfile patches the authenticated user's profile fields and
// returns the updated record.
func (c *Client) UpdateProfile(ctx context.Context, creds Credentials, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.sendJSON(ctx, http.MethodPatch, "/users/update", creds, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Admin user management ---

// ListUsers returns all registered users (admin only upstream).
func (c *Client) ListUsers(ctx context.Context, creds Credentials) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, "/users/users", creds, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole changes a user's role (admin only upstream).
func (c *Client) UpdateUserRole(ctx context.Context, creds Credentials, userID, role string) error {
	body := map[string]string{"role": role}
	return c.sendJSON(ctx, http.MethodPut, "/users/users/"+userID, creds, body, nil)
}

// DeleteUser removes a user account (admin only upstream).
func (c *Client) DeleteUser(ctx context.Context, creds Credentials, userID string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/users/users/"+userID, creds, nil, nil)
}

// InviteManager asks the upstream to mint a manager invitation token,
// which is displayed to the admin for sharing out of band.
func (c *Client) InviteManager(ctx context.Context, creds Credentials, email string) (string, error) {
	body := map[string]string{"email": email}
	var payload struct {
		Token string `json:"token"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/users/invite-manager", creds, body, &payload); err != nil {
		return "", err
	}
	return payload.Token, nil
}
