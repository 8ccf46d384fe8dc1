package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrSessionExpired     = errors.New("session expired, log in again")
	ErrNoSession          = errors.New("not logged in")
)

// APIError carries a non-2xx status with whatever message the server supplied.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %s", http.StatusText(e.Status))
	}
	return e.Message
}

// FromResponse maps a status code and response body to a client error.
// 401/403/404 collapse onto the sentinels above so callers can errors.Is them.
func FromResponse(status int, body []byte) error {
	if status < http.StatusMultipleChoices {
		return nil
	}
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	apiErr := &APIError{Status: status}
	if len(body) > 0 {
		_ = json.Unmarshal(body, apiErr) //nolint:errcheck
	}
	return apiErr
}
