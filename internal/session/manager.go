// ABOUTME: Session manager owning authentication state and its persistence
// ABOUTME: All login, MFA completion, and logout transitions go through here

package session

import (
	"context"

	"newsterm/internal/client"
	"newsterm/internal/tokenstore"
)

// Snapshot is the immutable view of session state handed to readers.
// IsAuthenticated is true iff a non-expired access token is held, and User
// is populated exactly when IsAuthenticated is true. Loading is true only
// before the startup restore has run; consumers must treat it as "unknown",
// never as "unauthenticated".
type Snapshot struct {
	User            *client.User
	IsAuthenticated bool
	Loading         bool
}

// Result is the structured outcome of a login or MFA operation.
// Failures never propagate as raw errors past the manager.
type Result struct {
	Success     bool
	RequiresMFA bool
	Message     string
	Fields      []client.FieldError
}

// Manager owns the in-memory session mirrored from the token store.
// It is the only writer of the store. Not safe for concurrent use; all
// access happens on the UI event loop.
type Manager struct {
	store    tokenstore.Store
	gateway  *client.Client
	user     *client.User
	authed   bool
	loading  bool
	restored bool
}

// NewManager creates a manager over the given store and gateway.
// The gateway's token source is bound to this manager so authenticated
// calls always carry the current access token.
func NewManager(store tokenstore.Store, gateway *client.Client) *Manager {
	m := &Manager{
		store:   store,
		gateway: gateway,
		loading: true,
	}
	if gateway != nil {
		gateway.SetTokenSource(m.AccessToken)
	}
	return m
}

// Snapshot returns the current session view. The returned user is a copy.
func (m *Manager) Snapshot() Snapshot {
	var u *client.User
	if m.user != nil {
		copied := *m.user
		u = &copied
	}
	return Snapshot{User: u, IsAuthenticated: m.authed, Loading: m.loading}
}

// Store exposes the backing token store, e.g. for change watching
func (m *Manager) Store() tokenstore.Store {
	return m.store
}

// AccessToken returns the held access token, empty when logged out
func (m *Manager) AccessToken() string {
	if !m.authed {
		return ""
	}
	token, _ := m.store.Get(tokenstore.KeyAccessToken)
	return token
}

// Restore derives session state from the token store. Runs exactly once per
// process; later calls are no-ops. An absent token leaves the session
// unauthenticated; a malformed or expired token is treated as a logout,
// clearing storage.
func (m *Manager) Restore() {
	if m.restored {
		return
	}
	m.restored = true
	m.deriveFromStore()
	m.loading = false
}

// Refresh re-derives session state from the store. Called when the store
// changed outside this process, e.g. a logout in another terminal.
func (m *Manager) Refresh() {
	if fs, ok := m.store.(*tokenstore.FileStore); ok {
		fs.Reload()
	}
	m.deriveFromStore()
}

func (m *Manager) deriveFromStore() {
	token, ok := m.store.Get(tokenstore.KeyAccessToken)
	if !ok || token == "" {
		m.user = nil
		m.authed = false
		return
	}

	claims, err := ParseToken(token)
	if err != nil {
		// Expired or undecodable token: equivalent to logout
		m.Logout()
		return
	}

	m.user = &client.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}
	m.authed = true
}

// Login performs a credential login against the gateway. Three outcomes:
// direct tokens (session becomes authenticated), MFA required (pending login
// token saved, session stays unauthenticated), or failure (session and store
// untouched). The session is never observable in a half-updated state.
func (m *Manager) Login(ctx context.Context, username, password string) Result {
	data, err := m.gateway.Login(ctx, username, password)
	if err != nil {
		f := client.AsFailure(err)
		msg := f.Message
		if msg == "" {
			msg = "Login failed."
		}
		return Result{Success: false, Message: msg, Fields: f.Fields}
	}

	if data.RequiresMFA {
		if err := m.store.Set(tokenstore.KeyLoginToken, data.LoginToken); err != nil {
			return Result{Success: false, Message: "Failed to save login state: " + err.Error()}
		}
		return Result{Success: true, RequiresMFA: true}
	}

	if err := m.persistTokens(data.Tokens); err != nil {
		return Result{Success: false, Message: "Failed to save tokens: " + err.Error()}
	}
	// A pending token from an earlier abandoned MFA attempt must not
	// outlive the authenticated session
	_ = m.store.Remove(tokenstore.KeyLoginToken)
	user := data.User
	m.user = &user
	m.authed = true
	return Result{Success: true}
}

// CompleteMFALogin installs tokens obtained from a successful verification
// call. No network call happens here; the separation lets verification errors
// be retried without re-running login. The pending login token is cleared as
// the session becomes authenticated.
func (m *Manager) CompleteMFALogin(tokens client.Tokens, user client.User) Result {
	if err := m.persistTokens(tokens); err != nil {
		return Result{Success: false, Message: "Failed to save tokens: " + err.Error()}
	}
	_ = m.store.Remove(tokenstore.KeyLoginToken)

	m.user = &user
	m.authed = true
	return Result{Success: true}
}

func (m *Manager) persistTokens(tokens client.Tokens) error {
	if err := m.store.Set(tokenstore.KeyAccessToken, tokens.Access); err != nil {
		return err
	}
	if tokens.Refresh != "" {
		if err := m.store.Set(tokenstore.KeyRefreshToken, tokens.Refresh); err != nil {
			return err
		}
	}
	return nil
}

// Logout clears all session and pending-login state. Idempotent.
func (m *Manager) Logout() {
	_ = m.store.Remove(tokenstore.KeyAccessToken)
	_ = m.store.Remove(tokenstore.KeyRefreshToken)
	_ = m.store.Remove(tokenstore.KeyLoginToken)
	m.user = nil
	m.authed = false
}

// HandleUnauthorized reacts to a 401 on any authenticated call: the current
// path is saved so login can return there, then the session is torn down.
func (m *Manager) HandleUnauthorized(currentPath string) {
	if currentPath != "" {
		m.SaveRedirectTarget(currentPath)
	}
	m.Logout()
}

// PendingLoginToken returns the in-progress login token, if any
func (m *Manager) PendingLoginToken() (string, bool) {
	token, ok := m.store.Get(tokenstore.KeyLoginToken)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// AbandonPendingLogin discards an in-progress MFA attempt, e.g. when the
// user restarts login.
func (m *Manager) AbandonPendingLogin() {
	_ = m.store.Remove(tokenstore.KeyLoginToken)
}

// SaveRedirectTarget records the path to return to after authentication
func (m *Manager) SaveRedirectTarget(path string) {
	_ = m.store.Set(tokenstore.KeyRedirectPath, path)
}

// TakeRedirectTarget consumes the saved redirect target: read once, then cleared
func (m *Manager) TakeRedirectTarget() (string, bool) {
	path, ok := m.store.Get(tokenstore.KeyRedirectPath)
	if !ok || path == "" {
		return "", false
	}
	_ = m.store.Remove(tokenstore.KeyRedirectPath)
	return path, true
}
