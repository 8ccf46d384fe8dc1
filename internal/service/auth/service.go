package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/config"
	"github.com/openshelf/openshelf/internal/model"
)

// Service talks to the unauthenticated credential endpoints. It deliberately
// does not share the session's authorizing client: these calls must never
// trigger a refresh themselves.
type Service struct {
	log    *zap.Logger
	client *http.Client
	cfg    config.API
}

func NewService(log *zap.Logger, cfg config.API) *Service {
	return &Service{
		log:    log.Named("auth"),
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

func (s *Service) Login(ctx context.Context, request model.LoginRequest, asLibrarian bool) (model.LoginResponse, int, error) {
	role := "user"
	if asLibrarian {
		role = "admin"
	}
	var resp model.LoginResponse
	code, err := s.postJSON(ctx, fmt.Sprintf("%s/api/login/%s/", s.cfg.BaseURL, role), request, &resp)
	return resp, code, err
}

func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (model.GoogleLoginResponse, int, error) {
	var resp model.GoogleLoginResponse
	code, err := s.postJSON(ctx, s.cfg.BaseURL+"/api/auth/google/", map[string]string{"token": idToken}, &resp)
	return resp, code, err
}

func (s *Service) Register(ctx context.Context, request model.RegisterRequest) (int, error) {
	return s.postJSON(ctx, s.cfg.BaseURL+"/api/register/user/", request, nil)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (model.RefreshResponse, int, error) {
	var resp model.RefreshResponse
	code, err := s.postJSON(ctx, s.cfg.BaseURL+"/api/token/refresh/", map[string]string{"refresh": refreshToken}, &resp)
	return resp, code, err
}

// CurrentUser requests the canonical user record with an explicit access
// token. The session manager owns the retry-on-401 policy around this call.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (model.User, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/api/user/", http.NoBody)
	if err != nil {
		return model.User{}, http.StatusBadRequest, err
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+accessToken)
	resp, err := s.client.Do(req)
	if err != nil {
		return model.User{}, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return model.User{}, resp.StatusCode, nil
	}
	var user model.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return model.User{}, http.StatusBadRequest, err
	}
	return user, resp.StatusCode, nil
}

func (s *Service) postJSON(ctx context.Context, url string, body, out interface{}) (int, error) {
	b := bytes.NewBuffer(nil)
	if err := json.NewEncoder(b).Encode(body); err != nil {
		return http.StatusBadRequest, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, b)
	if err != nil {
		return http.StatusBadRequest, err
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	resp, err := s.client.Do(req)
	if err != nil {
		return http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}
