package testsupport

import (
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/session"
)

// MustOpenStore opens a session.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SignIn persists a test identity and token on the store.
func SignIn(t testing.TB, store *session.Store, userID, email, token string) {
	t.Helper()

	if err := store.SetUser(session.User{ID: userID, Email: email}); err != nil {
		t.Fatalf("store.SetUser: %v", err)
	}
	if err := store.SetToken(token); err != nil {
		t.Fatalf("store.SetToken: %v", err)
	}
}
