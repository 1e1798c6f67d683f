// ABOUTME: Authentication endpoints of the news aggregation backend
// ABOUTME: Credential login, MFA challenge, registration, and password reset

package client

import (
	"context"
	"net/http"
)

// MFA method identifiers accepted by the backend
const (
	MethodEmail  = "email"
	MethodTOTP   = "totp"
	MethodBackup = "backup"
)

// User identifies the logged-in account as returned by the backend
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Tokens is the access/refresh credential pair issued on authentication
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginData is the payload of a successful credential login.
// Either Tokens is populated (no second factor) or RequiresMFA is set and
// LoginToken identifies the in-progress attempt.
type LoginData struct {
	User        User   `json:"user"`
	Tokens      Tokens `json:"tokens"`
	RequiresMFA bool   `json:"requiresMfa"`
	LoginToken  string `json:"loginToken"`
}

// VerifyData is the payload of a successful MFA verification
type VerifyData struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

// MFAMethods describes the second factors configured for the account
type MFAMethods struct {
	Available      []string `json:"available"`
	Enabled        []string `json:"enabled"`
	Primary        string   `json:"primary"`
	HasBackupCodes bool     `json:"hasBackupCodes"`
}

// SetupData is returned when MFA enrollment begins
type SetupData struct {
	SetupToken string `json:"setupToken"`
	ExpiresIn  int    `json:"expiresIn"`
}

// SetupVerifyData is returned when MFA enrollment completes
type SetupVerifyData struct {
	BackupCodes []string `json:"backupCodes"`
}

// Login calls the credential login endpoint.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginData, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var data LoginData
	if err := c.doEnvelope(ctx, req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SendOTP asks the backend to dispatch a one-time code for the pending login.
// Only methods that need out-of-band delivery (email) use this; TOTP codes
// come from the user's authenticator app.
func (c *Client) SendOTP(ctx context.Context, loginToken, method string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/mfa/send-otp/", map[string]string{
		"loginToken": loginToken,
		"method":     method,
	})
	if err != nil {
		return err
	}
	return c.doEnvelope(ctx, req, nil)
}

// VerifyMFA submits a verification code or backup code for the pending login.
// Exactly one of code/backupCode must be set; the backend enforces this too.
func (c *Client) VerifyMFA(ctx context.Context, loginToken, method, code, backupCode string) (*VerifyData, error) {
	payload := map[string]string{
		"loginToken": loginToken,
		"method":     method,
	}
	if code != "" {
		payload["verificationCode"] = code
	}
	if backupCode != "" {
		payload["backupCode"] = backupCode
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/mfa/verify/", payload)
	if err != nil {
		return nil, err
	}

	var data VerifyData
	if err := c.doEnvelope(ctx, req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetMFAMethods fetches the configured second factors. Requires auth.
func (c *Client) GetMFAMethods(ctx context.Context) (*MFAMethods, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/mfa/methods/", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	var data MFAMethods
	if err := c.doEnvelope(ctx, req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetupEmailMFA begins email MFA enrollment. Requires auth.
func (c *Client) SetupEmailMFA(ctx context.Context, emailAddress string) (*SetupData, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/mfa/email/setup/", map[string]string{
		"emailAddress": emailAddress,
	})
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	var data SetupData
	if err := c.doEnvelope(ctx, req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// VerifyEmailMFA completes email MFA enrollment with the emailed code. Requires auth.
func (c *Client) VerifyEmailMFA(ctx context.Context, setupToken, code string) (*SetupVerifyData, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/mfa/email/verify/", map[string]string{
		"setupToken":       setupToken,
		"verificationCode": code,
	})
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	var data SetupVerifyData
	if err := c.doEnvelope(ctx, req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DisableMFA turns off the second factor after code confirmation. Requires auth.
func (c *Client) DisableMFA(ctx context.Context, method, code string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/auth/mfa/disable/", map[string]string{
		"method":           method,
		"verificationCode": code,
	})
	if err != nil {
		return err
	}
	c.authorize(req)
	return c.doEnvelope(ctx, req, nil)
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/register/", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	return c.doEnvelope(ctx, req, nil)
}

// RequestPasswordReset asks for a reset token to be mailed out
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/password-reset-request/", map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}
	return c.doEnvelope(ctx, req, nil)
}

// VerifyPasswordReset consumes a reset token and sets the new password
func (c *Client) VerifyPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/password-reset-verify/", map[string]string{
		"resetToken":  resetToken,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}
	return c.doEnvelope(ctx, req, nil)
}
