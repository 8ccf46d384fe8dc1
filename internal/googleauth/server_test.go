package googleauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/config"
)

func newTestServer(t *testing.T) *CallbackServer {
	t.Helper()
	return NewCallbackServer(zap.NewNop(), config.Google{CallbackHost: "localhost", CallbackPort: "8089"})
}

func postCredential(s *CallbackServer, token string) *httptest.ResponseRecorder {
	form := url.Values{"credential": {token}}
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestCallbackDeliversCredential(t *testing.T) {
	s := newTestServer(t)

	rec := postCredential(s, "id-token-1")
	require.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	token, err := s.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "id-token-1", token)
}

func TestCallbackAcceptsQueryParam(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/callback?id_token=id-token-2", http.NoBody)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	token, err := s.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "id-token-2", token)
}

func TestCallbackRejectsMissingCredential(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/callback", http.NoBody)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackDropsDuplicates(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, postCredential(s, "first").Code)
	require.Equal(t, http.StatusOK, postCredential(s, "second").Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	token, err := s.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "first", token)
}

func TestWaitHonorsContext(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAddr(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, "localhost:8089", s.Addr())
}
