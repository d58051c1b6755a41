package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"clipo/internal/config"
	"clipo/internal/logging"
	"clipo/internal/session"
)

// Client issues authenticated requests against the clipo services. One client
// is shared by every service wrapper so all requests flow through the same
// bearer and retry stages and the same refresh single-flight group.
type Client struct {
	authBase  string
	videoBase string
	sessions  *session.Store
	logger    *slog.Logger

	base Doer // untreated transport, also used for the refresh call itself
	doer Doer // bearer + retry composition

	refreshGroup     singleflight.Group
	onSessionExpired func()
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP transport.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.base = doer
		}
	}
}

// WithLogger overrides the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnSessionExpired registers a hook invoked after the session has been
// cleared because refresh was impossible or failed.
func WithOnSessionExpired(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// NewClient builds the shared API client from configuration.
func NewClient(cfg *config.Config, sessions *session.Store, opts ...Option) *Client {
	c := &Client{
		authBase:  strings.TrimRight(cfg.API.AuthURL, "/"),
		videoBase: strings.TrimRight(cfg.API.VideoURL, "/"),
		sessions:  sessions,
		logger:    logging.NewNop(),
		base:      &http.Client{Timeout: cfg.RequestTimeout()},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "api")

	bearer := &bearerDoer{next: c.base, sessions: sessions}
	c.doer = &retryDoer{
		next:    bearer,
		refresh: c.refreshTokens,
		expire:  c.expireSession,
		logger:  c.logger,
	}
	return c
}

// AuthURL joins a path onto the auth service base URL.
func (c *Client) AuthURL(path string) string {
	return c.authBase + path
}

// VideoURL joins a path onto the video service base URL.
func (c *Client) VideoURL(path string) string {
	return c.videoBase + path
}

// Sessions exposes the session store backing this client.
func (c *Client) Sessions() *session.Store {
	return c.sessions
}

// GetJSON performs a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.doJSON(ctx, http.MethodGet, url, nil, out)
}

// PostJSON performs a POST with a JSON body and decodes the response into
// out. Both body and out may be nil.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, url, body, out)
}

// PutJSON performs a PUT with a JSON body and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, url string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, url, body, out)
}

// Delete performs a DELETE and discards any response body.
func (c *Client) Delete(ctx context.Context, url string) error {
	return c.doJSON(ctx, http.MethodDelete, url, nil, nil)
}

// Stream performs a GET and hands the response body to the caller, who owns
// closing it. Used for clip downloads.
func (c *Client) Stream(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

// Refresh exchanges the stored refresh token for a new token pair, storing
// the result. Concurrent callers share a single exchange.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refreshTokens(ctx)
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// refreshTokens performs the refresh exchange through the raw transport so a
// rejected refresh can never trigger another refresh. The single-flight group
// collapses concurrent 401s into one exchange.
func (c *Client) refreshTokens(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		refresh := c.sessions.RefreshToken()
		if refresh == "" {
			return nil, fmt.Errorf("no refresh token available")
		}

		payload, err := json.Marshal(map[string]string{"refresh_token": refresh})
		if err != nil {
			return nil, fmt.Errorf("marshal refresh request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthURL("/auth/refresh"), bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build refresh request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.base.Do(req)
		if err != nil {
			return nil, fmt.Errorf("refresh request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return nil, decodeError(resp)
		}
		var pair tokenPair
		if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
			return nil, fmt.Errorf("decode refresh response: %w", err)
		}
		if pair.AccessToken == "" {
			return nil, fmt.Errorf("refresh response missing access token")
		}
		if err := c.sessions.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
			return nil, fmt.Errorf("store refreshed tokens: %w", err)
		}
		c.logger.Debug("access token refreshed")
		return nil, nil
	})
	return err
}

func (c *Client) expireSession() error {
	if err := c.sessions.Logout(); err != nil {
		return err
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	return nil
}
