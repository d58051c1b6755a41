// Package studio wraps the video and clip endpoints: submitting a source URL,
// listing and renaming videos, and exporting, downloading, or deleting the
// clips cut from them.
package studio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"clipo/internal/api"
	"clipo/internal/logging"
)

// MaxVideoNameLength matches the service-side cap on video names. Longer
// names are truncated before the request is sent so the rendered result and
// the stored record agree.
const MaxVideoNameLength = 15

// ExportStyle selects the rendering treatment applied when a clip is
// exported.
type ExportStyle string

const (
	StyleSimple   ExportStyle = "simple"
	StyleZoom     ExportStyle = "zoom"
	StyleJumpcuts ExportStyle = "jumpcuts"
)

// KnownStyles lists the export styles the service accepts.
var KnownStyles = []ExportStyle{StyleSimple, StyleZoom, StyleJumpcuts}

// ParseStyle validates a user-supplied style name.
func ParseStyle(raw string) (ExportStyle, error) {
	style := ExportStyle(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range KnownStyles {
		if style == known {
			return style, nil
		}
	}
	return "", fmt.Errorf("unknown export style %q (valid: simple, zoom, jumpcuts)", raw)
}

// Video is a submitted source video and its processing state.
type Video struct {
	ID        int64    `json:"id"`
	Filename  string   `json:"filename"`
	Duration  *float64 `json:"duration"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"created_at"`
	ClipCount int      `json:"clips_count"`
}

// Clip is one segment cut from a processed video.
type Clip struct {
	ID          int64    `json:"id"`
	StartTime   float64  `json:"start_time"`
	EndTime     float64  `json:"end_time"`
	ViralScore  *float64 `json:"viral_score"`
	Style       string   `json:"style"`
	Transcript  string   `json:"transcript_segment"`
	CreatedAt   string   `json:"created_at"`
	DownloadURL string   `json:"download_url"`
}

// SubmitRequest describes a source URL to turn into clips. Quality and FPS
// are optional; the service clamps both to what the account's plan allows.
type SubmitRequest struct {
	URL       string `json:"url"`
	ClipCount int    `json:"clip_count"`
	Quality   string `json:"quality,omitempty"`
	FPS       int    `json:"fps,omitempty"`
}

// ExportResult is the service answer to an export request.
type ExportResult struct {
	DownloadURL      string `json:"download_url"`
	CreditsRemaining int    `json:"credits_remaining"`
}

// Service calls the video and clip endpoints through the shared API client.
type Service struct {
	client      *api.Client
	downloadDir string
	logger      *slog.Logger
}

// NewService constructs a studio service writing downloads into downloadDir.
func NewService(client *api.Client, downloadDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		client:      client,
		downloadDir: downloadDir,
		logger:      logging.NewComponentLogger(logger, "studio"),
	}
}

// Submit registers a source URL for clipping. A zero ClipCount falls back to
// the service default.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Video, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("submit video: url is required")
	}
	if req.ClipCount < 0 {
		return nil, fmt.Errorf("submit video: clip count must not be negative")
	}
	if req.ClipCount == 0 {
		req.ClipCount = 12
	}

	var video Video
	if err := s.client.PostJSON(ctx, s.client.VideoURL("/videos/upload"), req, &video); err != nil {
		return nil, fmt.Errorf("submit video: %w", err)
	}
	s.logger.Info("video submitted",
		logging.Int64("video_id", video.ID), logging.String("url", req.URL))
	return &video, nil
}

// List returns all videos owned by the current user, newest first.
func (s *Service) List(ctx context.Context) ([]Video, error) {
	var videos []Video
	if err := s.client.GetJSON(ctx, s.client.VideoURL("/videos"), &videos); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

// Get fetches one video by ID.
func (s *Service) Get(ctx context.Context, videoID int64) (*Video, error) {
	var video Video
	url := s.client.VideoURL(fmt.Sprintf("/videos/%d", videoID))
	if err := s.client.GetJSON(ctx, url, &video); err != nil {
		return nil, fmt.Errorf("fetch video %d: %w", videoID, err)
	}
	return &video, nil
}

// Rename changes a video's display name, truncated to MaxVideoNameLength.
func (s *Service) Rename(ctx context.Context, videoID int64, name string) (*Video, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("rename video: name is required")
	}
	if runes := []rune(name); len(runes) > MaxVideoNameLength {
		name = string(runes[:MaxVideoNameLength])
	}

	var video Video
	url := s.client.VideoURL(fmt.Sprintf("/videos/%d/rename", videoID))
	if err := s.client.PutJSON(ctx, url, map[string]string{"filename": name}, &video); err != nil {
		return nil, fmt.Errorf("rename video %d: %w", videoID, err)
	}
	return &video, nil
}

// Delete removes a video and its clips.
func (s *Service) Delete(ctx context.Context, videoID int64) error {
	url := s.client.VideoURL(fmt.Sprintf("/videos/%d", videoID))
	if err := s.client.Delete(ctx, url); err != nil {
		return fmt.Errorf("delete video %d: %w", videoID, err)
	}
	s.logger.Info("video deleted", logging.Int64("video_id", videoID))
	return nil
}

// Clips lists the clips cut from a video.
func (s *Service) Clips(ctx context.Context, videoID int64) ([]Clip, error) {
	var clips []Clip
	url := s.client.VideoURL(fmt.Sprintf("/videos/%d/clips", videoID))
	if err := s.client.GetJSON(ctx, url, &clips); err != nil {
		return nil, fmt.Errorf("list clips for video %d: %w", videoID, err)
	}
	return clips, nil
}

// Export renders a clip in the given style and returns its download URL.
func (s *Service) Export(ctx context.Context, clipID int64, style ExportStyle) (*ExportResult, error) {
	var result ExportResult
	url := s.client.VideoURL(fmt.Sprintf("/clips/%d/export", clipID))
	if err := s.client.PostJSON(ctx, url, map[string]string{"style": string(style)}, &result); err != nil {
		return nil, fmt.Errorf("export clip %d: %w", clipID, err)
	}
	return &result, nil
}

// DeleteClip removes a single clip.
func (s *Service) DeleteClip(ctx context.Context, clipID int64) error {
	url := s.client.VideoURL(fmt.Sprintf("/clips/%d", clipID))
	if err := s.client.Delete(ctx, url); err != nil {
		return fmt.Errorf("delete clip %d: %w", clipID, err)
	}
	return nil
}

// Download streams a clip into the download directory and returns the final
// path. The write goes through a temp file so an interrupted download never
// leaves a partial clip behind.
func (s *Service) Download(ctx context.Context, clipID int64) (string, error) {
	if err := s.ensureDownloadDir(); err != nil {
		return "", err
	}

	url := s.client.VideoURL(fmt.Sprintf("/clips/%d/download", clipID))
	body, err := s.client.Stream(ctx, url)
	if err != nil {
		return "", fmt.Errorf("download clip %d: %w", clipID, err)
	}
	defer body.Close()

	target := filepath.Join(s.downloadDir, fmt.Sprintf("clip_%d.mp4", clipID))
	tmp, err := os.CreateTemp(s.downloadDir, fmt.Sprintf("clip_%d.*.partial", clipID))
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write clip %d: %w", clipID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("finish clip %d: %w", clipID, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("move clip %d into place: %w", clipID, err)
	}

	s.logger.Info("clip downloaded",
		logging.Int64("clip_id", clipID), logging.String("path", target))
	return target, nil
}

func (s *Service) ensureDownloadDir() error {
	if err := os.MkdirAll(s.downloadDir, 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	if err := unix.Access(s.downloadDir, unix.W_OK); err != nil {
		return fmt.Errorf("download directory %s is not writable: %w", s.downloadDir, err)
	}
	return nil
}
