// ABOUTME: Tests for the session manager lifecycle
// ABOUTME: Covers restore, login outcomes, MFA completion, and forced logout

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsterm/internal/client"
	"newsterm/internal/tokenstore"
)

func newTestManager(t *testing.T, handler http.Handler) (*Manager, *tokenstore.FileStore, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := tokenstore.NewFileStore(t.TempDir())
	gateway := client.New(server.URL)
	return NewManager(store, gateway), store, server
}

func validToken(t *testing.T) string {
	t.Helper()
	return makeToken(t, map[string]any{
		"user_id":  "42",
		"username": "alice",
		"email":    "alice@example.com",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
}

func TestSnapshot_LoadingBeforeRestore(t *testing.T) {
	mgr, _, _ := newTestManager(t, http.NotFoundHandler())

	snap := mgr.Snapshot()
	if !snap.Loading {
		t.Error("expected loading before restore")
	}
	if snap.IsAuthenticated {
		t.Error("loading state must not claim authentication")
	}
}

func TestRestore_NoToken(t *testing.T) {
	mgr, _, _ := newTestManager(t, http.NotFoundHandler())

	mgr.Restore()
	snap := mgr.Snapshot()
	if snap.Loading {
		t.Error("expected loading to end after restore")
	}
	if snap.IsAuthenticated {
		t.Error("expected unauthenticated with empty store")
	}
	if snap.User != nil {
		t.Error("expected nil user when unauthenticated")
	}
}

func TestRestore_ValidToken(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.NotFoundHandler())
	store.Set(tokenstore.KeyAccessToken, validToken(t))

	mgr.Restore()
	snap := mgr.Snapshot()
	if !snap.IsAuthenticated {
		t.Fatal("expected authenticated session")
	}
	if snap.User == nil || snap.User.Username != "alice" {
		t.Errorf("expected user alice, got %+v", snap.User)
	}
}

func TestRestore_ExpiredTokenClearsStore(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.NotFoundHandler())
	expired := makeToken(t, map[string]any{
		"user_id": "42",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	store.Set(tokenstore.KeyAccessToken, expired)
	store.Set(tokenstore.KeyRefreshToken, "ref")

	mgr.Restore()
	snap := mgr.Snapshot()
	if snap.IsAuthenticated {
		t.Error("expected unauthenticated after expired token")
	}
	if _, ok := store.Get(tokenstore.KeyAccessToken); ok {
		t.Error("expected expired token to be removed")
	}
	if _, ok := store.Get(tokenstore.KeyRefreshToken); ok {
		t.Error("expected refresh token to be removed")
	}
}

func TestRestore_MalformedToken(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.NotFoundHandler())
	store.Set(tokenstore.KeyAccessToken, "not-a-jwt")

	mgr.Restore()
	if mgr.Snapshot().IsAuthenticated {
		t.Error("expected unauthenticated after malformed token")
	}
	if _, ok := store.Get(tokenstore.KeyAccessToken); ok {
		t.Error("expected malformed token to be removed")
	}
}

func TestRestore_RunsOnce(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.NotFoundHandler())
	mgr.Restore()

	// A token appearing later must not flip state without Refresh
	store.Set(tokenstore.KeyAccessToken, validToken(t))
	mgr.Restore()
	if mgr.Snapshot().IsAuthenticated {
		t.Error("second restore must be a no-op")
	}

	mgr.Refresh()
	if !mgr.Snapshot().IsAuthenticated {
		t.Error("refresh should pick up the new token")
	}
}

func TestLogin_DirectSuccess(t *testing.T) {
	token := ""
	mgr, store, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": client.LoginData{
				User:   client.User{ID: "42", Username: "alice"},
				Tokens: client.Tokens{Access: token, Refresh: "ref"},
			},
		})
	}))
	token = validToken(t)
	mgr.Restore()

	res := mgr.Login(context.Background(), "alice", "secret")
	if !res.Success || res.RequiresMFA {
		t.Fatalf("unexpected result: %+v", res)
	}

	snap := mgr.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil || snap.User.Username != "alice" {
		t.Errorf("unexpected session state: %+v", snap)
	}
	if got, _ := store.Get(tokenstore.KeyAccessToken); got != token {
		t.Error("expected access token persisted")
	}
	if got, _ := store.Get(tokenstore.KeyRefreshToken); got != "ref" {
		t.Error("expected refresh token persisted")
	}
}

func TestLogin_DirectSuccessClearsAbandonedPendingToken(t *testing.T) {
	token := ""
	mgr, store, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": client.LoginData{
				User:   client.User{ID: "42", Username: "alice"},
				Tokens: client.Tokens{Access: token},
			},
		})
	}))
	token = validToken(t)
	mgr.Restore()

	// Leftover from an earlier MFA attempt the user never finished
	store.Set(tokenstore.KeyLoginToken, "abandoned-attempt")

	res := mgr.Login(context.Background(), "alice", "secret")
	if !res.Success || res.RequiresMFA {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !mgr.Snapshot().IsAuthenticated {
		t.Fatal("expected authenticated session")
	}
	if pending, ok := mgr.PendingLoginToken(); ok {
		t.Errorf("pending login token %q must not survive a completed login", pending)
	}
}

func TestLogin_RequiresMFA(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"requiresMfa": true, "loginToken": "pending-1"},
		})
	}))
	mgr.Restore()

	res := mgr.Login(context.Background(), "alice", "secret")
	if !res.Success || !res.RequiresMFA {
		t.Fatalf("unexpected result: %+v", res)
	}

	// MFA pending is not authenticated
	if mgr.Snapshot().IsAuthenticated {
		t.Error("expected unauthenticated while MFA is pending")
	}
	if token, ok := mgr.PendingLoginToken(); !ok || token != "pending-1" {
		t.Errorf("expected pending login token, got %q", token)
	}
	if _, ok := store.Get(tokenstore.KeyAccessToken); ok {
		t.Error("no access token may exist before verification")
	}
}

func TestLogin_Failure(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Invalid username or password",
		})
	}))
	mgr.Restore()

	res := mgr.Login(context.Background(), "alice", "wrong")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Message != "Invalid username or password" {
		t.Errorf("unexpected message: %s", res.Message)
	}

	// Failure leaves session and store untouched
	if mgr.Snapshot().IsAuthenticated {
		t.Error("expected unauthenticated after failed login")
	}
	if _, ok := store.Get(tokenstore.KeyAccessToken); ok {
		t.Error("store must stay empty after failed login")
	}
}

func TestLogin_NetworkFailureMessage(t *testing.T) {
	store := tokenstore.NewFileStore(t.TempDir())
	mgr := NewManager(store, client.New("http://127.0.0.1:1"))
	mgr.Restore()

	res := mgr.Login(context.Background(), "alice", "secret")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Message == "" {
		t.Error("expected a human-readable message for network failure")
	}
	if mgr.Snapshot().IsAuthenticated {
		t.Error("expected unauthenticated after network failure")
	}
}

func TestCompleteMFALogin(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.NotFoundHandler())
	mgr.Restore()
	store.Set(tokenstore.KeyLoginToken, "pending-1")

	token := validToken(t)
	res := mgr.CompleteMFALogin(
		client.Tokens{Access: token, Refresh: "ref"},
		client.User{ID: "42", Username: "alice"},
	)
	if !res.Success {
		t.Fatalf("unexpected result: %+v", res)
	}

	snap := mgr.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil || snap.User.Username != "alice" {
		t.Errorf("unexpected session state: %+v", snap)
	}
	if _, ok := mgr.PendingLoginToken(); ok {
		t.Error("pending login token must be cleared on completion")
	}
	if got, _ := store.Get(tokenstore.KeyAccessToken); got != token {
		t.Error("expected access token persisted")
	}
}

func TestLogout_Idempotent(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.NotFoundHandler())
	store.Set(tokenstore.KeyAccessToken, validToken(t))
	mgr.Restore()

	mgr.Logout()
	if mgr.Snapshot().IsAuthenticated {
		t.Error("expected unauthenticated after logout")
	}
	if _, ok := store.Get(tokenstore.KeyAccessToken); ok {
		t.Error("expected tokens removed")
	}

	// Logging out again is fine
	mgr.Logout()
	if mgr.Snapshot().IsAuthenticated {
		t.Error("expected logout to stay idempotent")
	}
}

func TestHandleUnauthorized_SavesRedirect(t *testing.T) {
	mgr, _, _ := newTestManager(t, http.NotFoundHandler())
	mgr.Restore()
	mgr.CompleteMFALogin(client.Tokens{Access: validToken(t)}, client.User{Username: "alice"})

	mgr.HandleUnauthorized("/news/example.com%2Fstory")
	if mgr.Snapshot().IsAuthenticated {
		t.Error("expected session torn down")
	}

	path, ok := mgr.TakeRedirectTarget()
	if !ok || path != "/news/example.com%2Fstory" {
		t.Errorf("expected saved redirect, got %q", path)
	}
}

func TestTakeRedirectTarget_ReadOnce(t *testing.T) {
	mgr, _, _ := newTestManager(t, http.NotFoundHandler())
	mgr.SaveRedirectTarget("/news")

	if path, ok := mgr.TakeRedirectTarget(); !ok || path != "/news" {
		t.Fatalf("expected /news, got %q", path)
	}
	if _, ok := mgr.TakeRedirectTarget(); ok {
		t.Error("redirect target must be consumed on first read")
	}
}

func TestAccessToken_OnlyWhenAuthenticated(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.NotFoundHandler())
	store.Set(tokenstore.KeyAccessToken, validToken(t))

	// Before restore the manager holds no usable session
	if mgr.AccessToken() != "" {
		t.Error("expected empty token before restore")
	}

	mgr.Restore()
	if mgr.AccessToken() == "" {
		t.Error("expected token after restore")
	}

	mgr.Logout()
	if mgr.AccessToken() != "" {
		t.Error("expected empty token after logout")
	}
}

func TestAbandonPendingLogin(t *testing.T) {
	mgr, store, _ := newTestManager(t, http.NotFoundHandler())
	store.Set(tokenstore.KeyLoginToken, "pending-1")

	mgr.AbandonPendingLogin()
	if _, ok := mgr.PendingLoginToken(); ok {
		t.Error("expected pending login discarded")
	}
}
