package session

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"clipforge/internal/api"
	"clipforge/internal/logging"
)

// Authenticator drives the email OTP login flow and records the resulting
// identity in the Store.
type Authenticator struct {
	client *api.Client
	store  *Store
	logger *slog.Logger
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(client *api.Client, store *Store, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		client: client,
		store:  store,
		logger: logging.WithComponent(logger, "session"),
	}
}

// RequestOTP asks the backend to mail a one-time password and returns the
// otp id required by Verify. Re-requesting with the same email resends.
func (a *Authenticator) RequestOTP(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", api.Wrap(api.ErrValidation, "login", "invalid email address", err)
	}
	var payload struct {
		OTPID string `json:"otp_id"`
	}
	if err := a.client.PostJSON(ctx, "/user_login", map[string]string{"email": email}, &payload); err != nil {
		return "", err
	}
	return payload.OTPID, nil
}

// Verify exchanges the OTP for a session: the backend returns the identity
// and access token, both of which are persisted before returning.
func (a *Authenticator) Verify(ctx context.Context, email, otp, otpID string) (*User, error) {
	if strings.TrimSpace(otp) == "" {
		return nil, api.Wrap(api.ErrValidation, "login", "otp is empty", nil)
	}
	if otpID == "" {
		return nil, api.Wrap(api.ErrValidation, "login", "request an otp first", nil)
	}
	body := map[string]string{
		"email":  email,
		"otp":    otp,
		"otp_id": otpID,
	}
	var payload struct {
		UserID      string `json:"user_id"`
		Email       string `json:"email"`
		IsAdmin     bool   `json:"is_admin"`
		AccessToken string `json:"access_token"`
	}
	if err := a.client.PostJSON(ctx, "/verify_user", body, &payload); err != nil {
		return nil, err
	}

	user := User{ID: payload.UserID, Email: payload.Email, Admin: payload.IsAdmin}
	if err := a.store.SetUser(user); err != nil {
		return nil, err
	}
	if err := a.store.SetToken(payload.AccessToken); err != nil {
		return nil, err
	}
	a.logger.Info("signed in", "user", user.ID)
	return &user, nil
}
