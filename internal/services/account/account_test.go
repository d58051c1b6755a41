package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"clipo/internal/api"
	"clipo/internal/config"
	"clipo/internal/session"
)

func newFixture(t *testing.T, handler http.Handler) (*Service, *session.Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := session.NewStore(session.NewFileStateStore(filepath.Join(t.TempDir(), "auth_state.json")))
	if err != nil {
		t.Fatalf("create session store: %v", err)
	}

	cfg := &config.Config{}
	cfg.API.AuthURL = srv.URL + "/api"
	cfg.API.VideoURL = srv.URL + "/api"
	client := api.NewClient(cfg, store)
	return NewService(client, nil), store, srv
}

func TestLoginStoresTokensAndProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email != "user@example.com" || body.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"Incorrect email or password"}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"a1","refresh_token":"r1","token_type":"bearer"}`)
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a1" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"Not authenticated"}`)
			return
		}
		fmt.Fprint(w, `{"id":42,"email":"user@example.com","credits":10,"plan":"starter"}`)
	})

	svc, store, _ := newFixture(t, mux)
	user, err := svc.Login(context.Background(), "user@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != 42 || user.Plan != session.PlanStarter {
		t.Errorf("user = %+v, want id 42 on starter plan", user)
	}

	snap := store.Snapshot()
	if !snap.IsAuthenticated() {
		t.Fatal("session not authenticated after login")
	}
	if snap.AccessToken != "a1" || snap.RefreshToken != "r1" {
		t.Errorf("tokens = %q/%q, want a1/r1", snap.AccessToken, snap.RefreshToken)
	}
}

func TestLoginRejectionLeavesSessionAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"Incorrect email or password"}`)
	})

	svc, store, _ := newFixture(t, mux)
	_, err := svc.Login(context.Background(), "user@example.com", "wrong")

	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if errors.Is(err, api.ErrSessionExpired) {
		t.Error("bad credentials must not be reported as an expired session")
	}
	if store.Snapshot().IsAuthenticated() || store.AccessToken() != "" {
		t.Error("session mutated by a rejected login")
	}
}

func TestMeRefreshesStoredProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":42,"email":"user@example.com","credits":3,"plan":"pro"}`)
	})

	svc, store, _ := newFixture(t, mux)
	if err := store.SetTokens("a1", "r1"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}

	user, err := svc.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if user.Credits != 3 || user.Plan != session.PlanPro {
		t.Errorf("user = %+v, want 3 credits on pro plan", user)
	}
	if got := store.Snapshot().User; got == nil || got.Credits != 3 {
		t.Errorf("stored profile = %+v, want credits 3", got)
	}
}

func TestLogoutIsLocalAndIdempotent(t *testing.T) {
	svc, store, _ := newFixture(t, http.NewServeMux())
	if err := store.SetTokens("a1", "r1"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}

	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := svc.Logout(); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
	if store.AccessToken() != "" || store.Snapshot().IsAuthenticated() {
		t.Error("session not cleared by logout")
	}
}

func TestRegisterSurfacesConflict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"detail":"Email already registered"}`)
	})

	svc, _, _ := newFixture(t, mux)
	err := svc.Register(context.Background(), "user@example.com", "hunter2")

	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.Detail != "Email already registered" {
		t.Fatalf("expected conflict detail, got %v", err)
	}
}
