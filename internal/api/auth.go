package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/okatev/readspace/internal/session"
)

// Validation errors surfaced before any network call.
var (
	ErrEmptyEmail    = errors.New("email is required")
	ErrEmptyPassword = errors.New("password is required")
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login authenticates and stores the returned token. remember selects the
// persistent scope, otherwise the token lives only for this process.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if password == "" {
		return ErrEmptyPassword
	}

	var resp tokenResponse
	if err := c.post(ctx, "/api/Auth/login", loginRequest{Email: email, Password: password}, false, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.New("login response carried no token")
	}

	scope := session.ScopeSession
	if remember {
		scope = session.ScopePersistent
	}
	if err := c.tokens.Save(resp.Token, scope); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

// Register creates an account. The server sends a confirmation email;
// no token is issued until the address is confirmed.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	if strings.TrimSpace(reg.Email) == "" {
		return ErrEmptyEmail
	}
	if reg.Password == "" {
		return ErrEmptyPassword
	}
	return c.post(ctx, "/api/Auth/register", reg, false, nil)
}

// ConfirmEmail redeems the emailed confirmation token.
func (c *Client) ConfirmEmail(ctx context.Context, userID, token string) error {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("token", token)
	return c.get(ctx, "/api/Auth/confirm-email", q, false, nil)
}

// ForgotPassword asks the server to send a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	return c.post(ctx, "/api/Auth/forgot-password", map[string]string{"email": email}, false, nil)
}

// ResetPassword redeems an emailed reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyPassword
	}
	body := map[string]string{
		"email":       email,
		"token":       token,
		"newPassword": newPassword,
	}
	return c.post(ctx, "/api/Auth/reset-password", body, false, nil)
}

// ChangePassword rotates the password of the logged-in user.
func (c *Client) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if next == "" {
		return ErrEmptyPassword
	}
	if next != confirm {
		return errors.New("password confirmation does not match")
	}
	body := map[string]string{
		"currentPassword":    current,
		"newPassword":        next,
		"confirmNewPassword": confirm,
	}
	return c.post(ctx, "/api/Auth/change-password", body, true, nil)
}

// Logout clears the stored token from every scope. Purely local; the
// server keeps no session state beyond the token itself.
func (c *Client) Logout() error {
	if c.tokens == nil {
		return nil
	}
	return c.tokens.Clear()
}
