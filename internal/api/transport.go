package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"clipo/internal/logging"
	"clipo/internal/session"
)

// Doer abstracts http.Client.Do for testing and for stage composition.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

type retryMarker struct{}

// WithoutRefresh marks requests that must never trigger the refresh-and-retry
// stage, such as login itself: a 401 there means bad credentials, not an
// expired session.
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryMarker{}, true)
}

func alreadyRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retryMarker{}).(bool)
	return retried
}

// bearerDoer attaches the current access token and the persistent client
// identifier to every outgoing request. It never decides whether the token is
// valid, that is the retry stage's job.
type bearerDoer struct {
	next     Doer
	sessions *session.Store
}

func (d *bearerDoer) Do(req *http.Request) (*http.Response, error) {
	if token := d.sessions.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := d.sessions.ClientID(); id != "" {
		req.Header.Set("X-Client-Id", id)
	}
	return d.next.Do(req)
}

// retryDoer answers a 401 with exactly one refresh-and-replay cycle. The
// replay goes back through the bearer stage so it picks up the new token.
// A second 401, a failed refresh, or a missing refresh token all end the
// session.
type retryDoer struct {
	next    Doer
	refresh func(context.Context) error
	expire  func() error
	logger  *slog.Logger
}

func (d *retryDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || alreadyRetried(req.Context()) {
		return resp, nil
	}

	// The original response is replaced by the replay, release it now.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	if err := d.refresh(req.Context()); err != nil {
		d.logger.Warn("token refresh failed, ending session", logging.Error(err))
		if expireErr := d.expire(); expireErr != nil {
			d.logger.Warn("failed to clear session state", logging.Error(expireErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	replay, err := rebuildRequest(req)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("replaying request with refreshed token",
		logging.String("method", req.Method), logging.String("url", req.URL.String()))
	return d.next.Do(replay)
}

// rebuildRequest clones the request for replay, restoring the body from
// GetBody and marking the clone so a second 401 passes through untouched.
func rebuildRequest(req *http.Request) (*http.Request, error) {
	replay := req.Clone(WithoutRefresh(req.Context()))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body for replay: %w", err)
		}
		replay.Body = body
	}
	return replay, nil
}
