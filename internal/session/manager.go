package session

import (
	"context"
	"net/http"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/openshelf/openshelf/internal/errs"
	"github.com/openshelf/openshelf/internal/model"
)

// AuthService is the credential API surface the Manager drives.
type AuthService interface {
	Login(ctx context.Context, request model.LoginRequest, asLibrarian bool) (model.LoginResponse, int, error)
	LoginWithGoogle(ctx context.Context, idToken string) (model.GoogleLoginResponse, int, error)
	Register(ctx context.Context, request model.RegisterRequest) (int, error)
	Refresh(ctx context.Context, refreshToken string) (model.RefreshResponse, int, error)
	CurrentUser(ctx context.Context, accessToken string) (model.User, int, error)
}

// Subscriber receives the new identity on every change; nil means logged out.
// Callbacks run synchronously on the mutating goroutine.
type Subscriber func(user *model.User)

// Manager owns the credential lifecycle: exactly one authenticated identity
// (or none) per client, all durable token writes funneled through it.
type Manager struct {
	log   *zap.Logger
	auth  AuthService
	store TokenStore

	// collapses concurrent 401-triggered refreshes into one upstream call
	refreshGroup singleflight.Group

	mu   sync.RWMutex
	user *model.User
	subs []Subscriber
}

func NewManager(log *zap.Logger, auth AuthService, store TokenStore) *Manager {
	return &Manager{
		log:   log.Named("session"),
		auth:  auth,
		store: store,
	}
}

// Login exchanges credentials for a token pair, persists it, then performs
// one authoritative user fetch. A failed login leaves the session anonymous;
// the caller only ever sees the generic invalid-credentials error.
func (m *Manager) Login(ctx context.Context, email, password string, asLibrarian bool) (*model.User, error) {
	resp, code, err := m.auth.Login(ctx, model.LoginRequest{Email: email, Password: password}, asLibrarian)
	if err != nil || code != http.StatusOK {
		m.log.Debug("login rejected", zap.Int("status", code), zap.Error(err))
		return nil, errs.ErrInvalidCredentials
	}
	return m.establish(ctx, resp.Access, resp.Refresh)
}

// LoginWithGoogle exchanges a Google id token for the same pair.
func (m *Manager) LoginWithGoogle(ctx context.Context, idToken string) (*model.User, error) {
	resp, code, err := m.auth.LoginWithGoogle(ctx, idToken)
	if err != nil || code != http.StatusOK {
		m.log.Debug("google login rejected", zap.Int("status", code), zap.Error(err))
		return nil, errs.ErrInvalidCredentials
	}
	return m.establish(ctx, resp.AccessToken, resp.RefreshToken)
}

// Register creates the account, then logs in with the same credentials.
func (m *Manager) Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
	req := model.RegisterRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  password,
	}
	code, err := m.auth.Register(ctx, req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "register")
	}
	if e := errs.FromResponse(code, nil); e != nil {
		return nil, e
	}
	return m.Login(ctx, email, password, false)
}

// establish persists the pair and resolves the identity with one canonical
// fetch. The login response's embedded user is ignored on purpose: consumers
// must never observe a pre-fetch value.
func (m *Manager) establish(ctx context.Context, access, refresh string) (*model.User, error) {
	if err := m.store.SetPair(access, refresh); err != nil {
		return nil, pkgerrors.Wrap(err, "persist tokens")
	}
	return m.FetchCurrentUser(ctx)
}

// FetchCurrentUser resolves the canonical user record for the stored access
// token. Without a token it is a no-op. On a 401 it attempts exactly one
// refresh and one retry; if that fails the session is cleared.
func (m *Manager) FetchCurrentUser(ctx context.Context) (*model.User, error) {
	access, err := m.store.Access()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "read access token")
	}
	if access == "" {
		return nil, nil
	}

	user, code, err := m.auth.CurrentUser(ctx, access)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "fetch user")
	}
	if code == http.StatusUnauthorized {
		access, err = m.RefreshAccess(ctx)
		if err != nil {
			m.log.Debug("refresh failed, clearing session", zap.Error(err))
			_ = m.Logout() //nolint:errcheck
			return nil, errs.ErrSessionExpired
		}
		user, code, err = m.auth.CurrentUser(ctx, access)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "fetch user")
		}
		if code == http.StatusUnauthorized {
			_ = m.Logout() //nolint:errcheck
			return nil, errs.ErrSessionExpired
		}
	}
	if e := errs.FromResponse(code, nil); e != nil {
		return nil, e
	}

	m.setUser(&user)
	return &user, nil
}

// RefreshAccess trades the refresh token for a new access token and persists
// it. Concurrent callers share a single in-flight refresh.
func (m *Manager) RefreshAccess(ctx context.Context) (string, error) {
	v, err, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		refresh, err := m.store.Refresh()
		if err != nil {
			return "", pkgerrors.Wrap(err, "read refresh token")
		}
		if refresh == "" {
			return "", errs.ErrNoSession
		}
		resp, code, err := m.auth.Refresh(ctx, refresh)
		if err != nil {
			return "", pkgerrors.Wrap(err, "refresh token")
		}
		if code != http.StatusOK {
			return "", errs.ErrUnauthorized
		}
		if err := m.store.SetAccess(resp.Access); err != nil {
			return "", pkgerrors.Wrap(err, "persist access token")
		}
		return resp.Access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Logout clears both tokens and the in-memory identity regardless of prior
// state. Subscribers are told the session is gone.
func (m *Manager) Logout() error {
	err := m.store.Clear()
	m.setUser(nil)
	return err
}

// CurrentUser returns the identity snapshot, nil while anonymous.
func (m *Manager) CurrentUser() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Authenticated reports whether an access token is persisted.
func (m *Manager) Authenticated() bool {
	access, err := m.store.Access()
	return err == nil && access != ""
}

// AccessToken exposes the raw stored token for display purposes only.
func (m *Manager) AccessToken() (string, error) {
	return m.store.Access()
}

func (m *Manager) Subscribe(fn Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) setUser(user *model.User) {
	m.mu.Lock()
	m.user = user
	subs := make([]Subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}
