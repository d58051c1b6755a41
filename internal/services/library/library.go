// Package library wraps the stock-footage endpoints: browsing the hosted
// video libraries and fonts, and generating a text-overlay video from them.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"clipo/internal/api"
	"clipo/internal/logging"
)

// Font is one selectable caption font.
type Font struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	Name     string `json:"name"`
}

// LibraryVideos is the preview listing of one library's footage.
type LibraryVideos struct {
	Library    string   `json:"library"`
	VideoCount int      `json:"video_count"`
	Videos     []string `json:"videos"`
}

// GenerateRequest describes a library generation job. Text and SongURL are
// required; the rest fall back to service defaults when zero.
type GenerateRequest struct {
	Text       string `json:"text"`
	Library    string `json:"library"`
	Font       int    `json:"font"`
	FPS        int    `json:"fps,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	BWLevel    int    `json:"black_white_intensity,omitempty"`
	Speed      int    `json:"speed,omitempty"`
	FontSize   int    `json:"font_size,omitempty"`
	SongURL    string `json:"url_song"`
}

// GenerateResult is the service answer to a generation job.
type GenerateResult struct {
	Message          string `json:"message"`
	OutputURL        string `json:"output_url"`
	CreditsRemaining int    `json:"credits_remaining"`
}

// Service calls the library endpoints through the shared API client.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService constructs a library service.
func NewService(client *api.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		client: client,
		logger: logging.NewComponentLogger(logger, "library"),
	}
}

// Libraries lists the available footage libraries.
func (s *Service) Libraries(ctx context.Context) ([]string, error) {
	var out struct {
		Libraries []string `json:"libraries"`
	}
	if err := s.client.GetJSON(ctx, s.client.VideoURL("/library/libraries"), &out); err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	return out.Libraries, nil
}

// Videos previews the footage inside one library.
func (s *Service) Videos(ctx context.Context, library string) (*LibraryVideos, error) {
	library = strings.TrimSpace(library)
	if library == "" {
		return nil, fmt.Errorf("list library videos: library name is required")
	}
	var out LibraryVideos
	target := s.client.VideoURL("/library/libraries/" + url.PathEscape(library) + "/videos")
	if err := s.client.GetJSON(ctx, target, &out); err != nil {
		return nil, fmt.Errorf("list videos in library %s: %w", library, err)
	}
	return &out, nil
}

// Fonts lists the selectable caption fonts.
func (s *Service) Fonts(ctx context.Context) ([]Font, error) {
	var out struct {
		Fonts []Font `json:"fonts"`
	}
	if err := s.client.GetJSON(ctx, s.client.VideoURL("/library/fonts"), &out); err != nil {
		return nil, fmt.Errorf("list fonts: %w", err)
	}
	return out.Fonts, nil
}

// Generate runs a library generation job. It costs one credit; the remaining
// balance comes back in the result.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("generate: text is required")
	}
	if strings.TrimSpace(req.Library) == "" {
		return nil, fmt.Errorf("generate: library is required")
	}
	if req.Font <= 0 {
		return nil, fmt.Errorf("generate: font id is required")
	}
	if strings.TrimSpace(req.SongURL) == "" {
		return nil, fmt.Errorf("generate: song url is required")
	}

	var result GenerateResult
	if err := s.client.PostJSON(ctx, s.client.VideoURL("/library/generate"), req, &result); err != nil {
		return nil, fmt.Errorf("generate library video: %w", err)
	}
	s.logger.Info("library video generated",
		logging.String("library", req.Library), logging.Int("credits_remaining", result.CreditsRemaining))
	return &result, nil
}
