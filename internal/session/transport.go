package session

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	authorizationHeader = "Authorization"
	requestIDHeader     = "X-Request-Id"
	bearer              = "Bearer "
)

// Client returns an *http.Client that attaches the stored access token, tags
// every request with a request id, rate-limits outbound calls, and applies
// the manager's single refresh-and-retry policy on 401 responses.
func (m *Manager) Client(timeout time.Duration, rps float64) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &authTransport{
			manager: m,
			base:    http.DefaultTransport,
			limiter: rate.NewLimiter(rate.Limit(rps), 1),
		},
	}
}

type authTransport struct {
	manager *Manager
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	out.Header.Set(requestIDHeader, uuid.NewString())

	access, err := t.manager.store.Access()
	if err != nil {
		return nil, err
	}
	if access != "" {
		out.Header.Set(authorizationHeader, bearer+access)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || access == "" {
		return resp, nil
	}
	// A request with a body can only be replayed when GetBody is available.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	newAccess, refreshErr := t.manager.RefreshAccess(req.Context())
	if refreshErr != nil {
		_ = t.manager.Logout() //nolint:errcheck
		return resp, nil
	}
	drain(resp)

	retry := req.Clone(req.Context())
	retry.Header.Set(requestIDHeader, uuid.NewString())
	retry.Header.Set(authorizationHeader, bearer+newAccess)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	return t.base.RoundTrip(retry)
}

// drain consumes and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10)) //nolint:errcheck
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(nil))
}
