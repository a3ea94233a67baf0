package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized means the access token is missing, expired beyond refresh, or rejected.
// Callers should send the user back to login.
var ErrUnauthorized = errors.New("not authenticated - please log in")

// APIError is a non-2xx response from the GymFlex API
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	// Message is the most specific human-readable text the API returned
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// IsUnauthorized reports whether err is an authentication failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode returns the HTTP status of an APIError in err's chain, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// errorMessage extracts the API's explanation from a DRF-style error body.
// The book endpoint reports {"status": "full"}; everything else uses "detail" or "error".
func errorMessage(body []byte) string {
	var payload struct {
		Status string `json:"status"`
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Status != "":
			return payload.Status
		case payload.Error != "":
			return payload.Error
		case payload.Detail != "":
			return payload.Detail
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
