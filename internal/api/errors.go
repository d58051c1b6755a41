package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrSessionExpired indicates the stored credentials can no longer be used
// and the session has been cleared. Callers should prompt for a fresh login.
var ErrSessionExpired = errors.New("session expired, log in again")

// StatusError is a non-2xx response from the service, carrying the detail
// message the backend places in its error body.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Detail)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// decodeError turns a non-2xx response into a StatusError, pulling the
// message from the {"detail": ...} body when one is present.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var message string
		if err := json.Unmarshal(payload.Detail, &message); err == nil {
			detail = message
		} else {
			detail = string(payload.Detail)
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	return &StatusError{StatusCode: resp.StatusCode, Detail: detail}
}
