package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/internal/api"
	"clipforge/internal/logging"
	"clipforge/internal/session"
	"clipforge/internal/testsupport"
)

func TestRequestOTPRejectsBadEmail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	client := api.New(cfg.API.URL, store, api.WithLogger(logging.Nop()))
	auth := session.NewAuthenticator(client, store, logging.Nop())

	for _, email := range []string{"", "not-an-email", "user@"} {
		if _, err := auth.RequestOTP(context.Background(), email); !errors.Is(err, api.ErrValidation) {
			t.Errorf("RequestOTP(%q) err = %v, want validation marker", email, err)
		}
	}
}

func TestVerifyRequiresOTPAndID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	client := api.New(cfg.API.URL, store, api.WithLogger(logging.Nop()))
	auth := session.NewAuthenticator(client, store, logging.Nop())

	if _, err := auth.Verify(context.Background(), "user@example.com", "", "otp-1"); !errors.Is(err, api.ErrValidation) {
		t.Errorf("empty otp err = %v, want validation marker", err)
	}
	if _, err := auth.Verify(context.Background(), "user@example.com", "123456", ""); !errors.Is(err, api.ErrValidation) {
		t.Errorf("missing otp id err = %v, want validation marker", err)
	}
}

func TestLoginFlowPersistsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user_login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode login body: %v", err)
		}
		if body["email"] != "user@example.com" {
			t.Errorf("login email = %q", body["email"])
		}
		json.NewEncoder(w).Encode(map[string]string{"otp_id": "otp-77"})
	})
	mux.HandleFunc("/verify_user", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode verify body: %v", err)
		}
		if body["otp"] != "123456" || body["otp_id"] != "otp-77" {
			t.Errorf("verify body = %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user_id":      "u1",
			"email":        "user@example.com",
			"is_admin":     true,
			"access_token": "tok-xyz",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAPIURL(server.URL))
	store := testsupport.MustOpenStore(t, cfg)
	client := api.New(cfg.API.URL, store, api.WithLogger(logging.Nop()))
	auth := session.NewAuthenticator(client, store, logging.Nop())

	otpID, err := auth.RequestOTP(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	if otpID != "otp-77" {
		t.Fatalf("otpID = %q", otpID)
	}

	user, err := auth.Verify(context.Background(), "user@example.com", "123456", otpID)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != "u1" || !user.Admin {
		t.Fatalf("user = %+v", user)
	}

	persisted, err := store.User()
	if err != nil {
		t.Fatalf("store.User: %v", err)
	}
	if persisted == nil || persisted.Email != "user@example.com" {
		t.Fatalf("persisted user = %+v", persisted)
	}
	if got := store.Token(); got != "tok-xyz" {
		t.Errorf("persisted token = %q", got)
	}
}

func TestVerifyWrongOTPLeavesStoreUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid otp"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAPIURL(server.URL))
	store := testsupport.MustOpenStore(t, cfg)
	client := api.New(cfg.API.URL, store, api.WithLogger(logging.Nop()))
	auth := session.NewAuthenticator(client, store, logging.Nop())

	if _, err := auth.Verify(context.Background(), "user@example.com", "000000", "otp-1"); !errors.Is(err, api.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden marker", err)
	}
	user, _ := store.User()
	if user != nil {
		t.Errorf("failed verify persisted user %+v", user)
	}
	if got := store.Token(); got != "" {
		t.Errorf("failed verify persisted token %q", got)
	}
}
