package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStateStoreLoadMissingFile(t *testing.T) {
	store := NewFileStateStore(filepath.Join(t.TempDir(), "auth_state.json"))

	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if state.AccessToken != "" || state.RefreshToken != "" || state.Profile != nil {
		t.Fatalf("expected empty state, got %+v", state)
	}
}

func TestFileStateStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "auth_state.json")
	store := NewFileStateStore(path)

	saved := State{
		ClientID:     "client-1",
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Profile: &Snapshot{
			User:          &User{ID: 7, Email: "user@example.com", Credits: 3, Plan: PlanPro},
			Authenticated: true,
		},
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat state file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("state file permissions = %o, want 600", perm)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ClientID != saved.ClientID {
		t.Errorf("ClientID = %q, want %q", loaded.ClientID, saved.ClientID)
	}
	if loaded.AccessToken != saved.AccessToken || loaded.RefreshToken != saved.RefreshToken {
		t.Errorf("tokens = %q/%q, want %q/%q",
			loaded.AccessToken, loaded.RefreshToken, saved.AccessToken, saved.RefreshToken)
	}
	if loaded.Profile == nil || loaded.Profile.User == nil {
		t.Fatalf("profile missing after round trip: %+v", loaded)
	}
	if loaded.Profile.User.Email != "user@example.com" || loaded.Profile.User.Plan != PlanPro {
		t.Errorf("user = %+v, want email user@example.com plan pro", loaded.Profile.User)
	}
}

func TestFileStateStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	state, err := NewFileStateStore(path).Load()
	if err != nil {
		t.Fatalf("Load returned error for corrupt file: %v", err)
	}
	if state.AccessToken != "" || state.Profile != nil {
		t.Fatalf("corrupt file should load as empty state, got %+v", state)
	}
}
