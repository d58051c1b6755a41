package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"clipo/internal/api"
	"clipo/internal/config"
	"clipo/internal/session"
)

func newFixture(t *testing.T, handler http.Handler) (*Service, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	store, err := session.NewStore(session.NewFileStateStore(filepath.Join(dir, "auth_state.json")))
	if err != nil {
		t.Fatalf("create session store: %v", err)
	}
	if err := store.SetTokens("a1", "r1"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.API.AuthURL = srv.URL + "/api"
	cfg.API.VideoURL = srv.URL + "/api"
	client := api.NewClient(cfg, store)

	downloadDir := filepath.Join(dir, "clips")
	return NewService(client, downloadDir, nil), downloadDir
}

func TestSubmitDefaultsClipCount(t *testing.T) {
	var got SubmitRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/videos/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode submit body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":7,"filename":"YT1756500000","status":"uploaded","created_at":"2026-08-30T12:00:00","clips_count":0}`)
	})

	svc, _ := newFixture(t, mux)
	video, err := svc.Submit(context.Background(), SubmitRequest{URL: "https://youtu.be/abc"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if video.ID != 7 || video.Status != "uploaded" {
		t.Errorf("video = %+v, want id 7 uploaded", video)
	}
	if got.ClipCount != 12 {
		t.Errorf("clip_count sent = %d, want default 12", got.ClipCount)
	}
}

func TestSubmitRequiresURL(t *testing.T) {
	svc, _ := newFixture(t, http.NewServeMux())
	if _, err := svc.Submit(context.Background(), SubmitRequest{}); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestRenameTruncatesLongNames(t *testing.T) {
	var sent string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/videos/7/rename", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filename string `json:"filename"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		sent = body.Filename
		fmt.Fprintf(w, `{"id":7,"filename":%q,"status":"finished","created_at":"2026-08-30T12:00:00","clips_count":3}`, body.Filename)
	})

	svc, _ := newFixture(t, mux)

	cases := map[string]string{
		"a far too long video name": "a far too long ",
		"短い名前":                      "短い名前",
		"とても長い日本語の動画タイトルです":         "とても長い日本語の動画タイトル",
	}
	for name, want := range cases {
		video, err := svc.Rename(context.Background(), 7, name)
		if err != nil {
			t.Fatalf("Rename(%q) failed: %v", name, err)
		}
		if sent != want {
			t.Errorf("Rename(%q) sent %q, want %q", name, sent, want)
		}
		if video.Filename != sent {
			t.Errorf("returned name %q differs from sent %q", video.Filename, sent)
		}
	}
}

func TestClipsDecodesList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/videos/7/clips", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":1,"start_time":12.5,"end_time":42.0,"viral_score":8.7,"style":"simple","transcript_segment":"so here is the thing","created_at":"2026-08-30T12:01:00","download_url":"/api/clips/1/download"},
			{"id":2,"start_time":90.0,"end_time":127.5,"style":"zoom","created_at":"2026-08-30T12:02:00"}
		]`)
	})

	svc, _ := newFixture(t, mux)
	clips, err := svc.Clips(context.Background(), 7)
	if err != nil {
		t.Fatalf("Clips failed: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2", len(clips))
	}
	if clips[0].ViralScore == nil || *clips[0].ViralScore != 8.7 {
		t.Errorf("clip 1 viral score = %v, want 8.7", clips[0].ViralScore)
	}
	if clips[1].ViralScore != nil {
		t.Errorf("clip 2 viral score = %v, want absent", clips[1].ViralScore)
	}
}

func TestDownloadWritesClipFile(t *testing.T) {
	payload := []byte("fake mp4 bytes")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/clips/3/download", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(payload)
	})

	svc, downloadDir := newFixture(t, mux)
	path, err := svc.Download(context.Background(), 3)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if path != filepath.Join(downloadDir, "clip_3.mp4") {
		t.Errorf("unexpected download path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read downloaded clip: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("downloaded bytes mismatch: %q", data)
	}

	entries, err := os.ReadDir(downloadDir)
	if err != nil {
		t.Fatalf("read download dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("download dir holds %d entries, want only the clip", len(entries))
	}
}

func TestDownloadSurfacesNotReady(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/clips/3/download", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"detail":"Clip not ready yet or file not found"}`)
	})

	svc, downloadDir := newFixture(t, mux)
	if _, err := svc.Download(context.Background(), 3); err == nil {
		t.Fatal("expected error for unready clip")
	}
	if _, err := os.Stat(filepath.Join(downloadDir, "clip_3.mp4")); !os.IsNotExist(err) {
		t.Error("failed download left a clip file behind")
	}
}

func TestExportSendsStyle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/clips/3/export", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Style string `json:"style"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Style != "jumpcuts" {
			t.Errorf("style sent = %q, want jumpcuts", body.Style)
		}
		fmt.Fprint(w, `{"download_url":"/api/clips/3/download","credits_remaining":9}`)
	})

	svc, _ := newFixture(t, mux)
	result, err := svc.Export(context.Background(), 3, StyleJumpcuts)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if result.CreditsRemaining != 9 {
		t.Errorf("credits remaining = %d, want 9", result.CreditsRemaining)
	}
}

func TestParseStyle(t *testing.T) {
	cases := []struct {
		raw     string
		want    ExportStyle
		wantErr bool
	}{
		{raw: "simple", want: StyleSimple},
		{raw: " Zoom ", want: StyleZoom},
		{raw: "JUMPCUTS", want: StyleJumpcuts},
		{raw: "vertical", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseStyle(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseStyle(%q) accepted invalid style", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStyle(%q) failed: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestDeleteMissingVideoIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/videos/99", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"Video not found"}`)
	})

	svc, _ := newFixture(t, mux)
	err := svc.Delete(context.Background(), 99)
	if !api.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
