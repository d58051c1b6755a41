package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be reported missing")
	}
	if cfg.API.AuthURL != defaultAuthURL {
		t.Fatalf("auth url: got %q want %q", cfg.API.AuthURL, defaultAuthURL)
	}
	if cfg.Workflow.StatusPollInterval != defaultStatusPollInterval {
		t.Fatalf("poll interval: got %d want %d", cfg.Workflow.StatusPollInterval, defaultStatusPollInterval)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
auth_url = "https://auth.example.com/api/"
video_url = "https://video.example.com/api"
timeout_seconds = 5

[paths]
data_dir = "~/clipo-data"
download_dir = "~/clipo-clips"

[workflow]
status_poll_interval = 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %s to be used, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.API.AuthURL != "https://auth.example.com/api" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.API.AuthURL)
	}
	if strings.HasPrefix(cfg.Paths.DataDir, "~") {
		t.Fatalf("data dir not expanded: %q", cfg.Paths.DataDir)
	}
	if got := cfg.PollInterval().Seconds(); got != 7 {
		t.Fatalf("poll interval: got %vs want 7s", got)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{
			name:    "bad endpoint scheme",
			content: "[api]\nauth_url = \"ftp://example.com\"\n",
			wantSub: "auth_url",
		},
		{
			name:    "bad log format",
			content: "[logging]\nformat = \"xml\"\n",
			wantSub: "logging.format",
		},
		{
			name:    "negative poll interval",
			content: "[workflow]\nstatus_poll_interval = -1\n",
			wantSub: "status_poll_interval",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestStatePathsDeriveFromDataDir(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = "/tmp/clipo-test"
	if got := cfg.StatePath(); got != "/tmp/clipo-test/auth_state.json" {
		t.Fatalf("state path: %q", got)
	}
	if got := cfg.HistoryPath(); got != "/tmp/clipo-test/history.db" {
		t.Fatalf("history path: %q", got)
	}
}
