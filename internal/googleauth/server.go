package googleauth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/config"
)

// CallbackServer is the short-lived local endpoint that Google Identity
// Services posts the sign-in credential to. It hands the first id token over
// a channel and is then torn down by the caller.
type CallbackServer struct {
	log    *zap.Logger
	cfg    config.Google
	e      *echo.Echo
	tokens chan string
}

func NewCallbackServer(log *zap.Logger, cfg config.Google) *CallbackServer {
	s := &CallbackServer{
		log:    log.Named("googleauth"),
		cfg:    cfg,
		tokens: make(chan string, 1),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.POST("/callback", s.callback)
	e.GET("/callback", s.callback)
	s.e = e
	return s
}

// Addr is the redirect target to register with the Google client.
func (s *CallbackServer) Addr() string {
	return net.JoinHostPort(s.cfg.CallbackHost, s.cfg.CallbackPort)
}

func (s *CallbackServer) Start() {
	go func() {
		if err := s.e.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("callback server", zap.Error(err))
		}
	}()
}

// Wait blocks until a credential arrives or ctx expires.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case token := <-s.tokens:
		return token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *CallbackServer) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	return s.e.Shutdown(shutdownCtx)
}

// callback accepts the GIS post (form field "credential") as well as a plain
// id_token query parameter for manual flows.
func (s *CallbackServer) callback(c echo.Context) error {
	token := c.FormValue("credential")
	if token == "" {
		token = c.QueryParam("id_token")
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing credential")
	}
	select {
	case s.tokens <- token:
	default: // a credential is already pending; drop duplicates
	}
	return c.String(http.StatusOK, "Signed in. You can close this tab.")
}
