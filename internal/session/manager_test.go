package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/config"
	"github.com/openshelf/openshelf/internal/errs"
	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/auth"
	"github.com/openshelf/openshelf/internal/session"
)

const (
	testEmail    = "user@example.com"
	testPassword = "correct horse"
)

// fakeAPI is a minimal credential backend. Tokens it issues are the only ones
// it accepts; retiring the access token forces the refresh path.
type fakeAPI struct {
	mu           sync.Mutex
	access       string
	refresh      string
	registered   map[string]string
	refreshCalls int32
	refreshDelay time.Duration
	refreshFails bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		access:     "access-1",
		refresh:    "refresh-1",
		registered: map[string]string{testEmail: testPassword},
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login/user/", f.login)
	mux.HandleFunc("/api/login/admin/", f.login)
	mux.HandleFunc("/api/register/user/", func(w http.ResponseWriter, r *http.Request) {
		var req model.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.registered[req.Email] = req.Password
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.refreshCalls, 1)
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		var req struct {
			Refresh string `json:"refresh"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.refreshFails || req.Refresh != f.refresh {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.access = "access-refreshed"
		json.NewEncoder(w).Encode(model.RefreshResponse{Access: f.access}) //nolint:errcheck
	})
	mux.HandleFunc("/api/user/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := r.Header.Get("Authorization") == "Bearer "+f.access
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(model.User{ //nolint:errcheck
			ID: 1, Email: testEmail, FirstName: "Paul", LastName: "Atreides",
		})
	})
	return mux
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.registered[req.Email]; !ok || pw != req.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	json.NewEncoder(w).Encode(model.LoginResponse{ //nolint:errcheck
		Access:  f.access,
		Refresh: f.refresh,
		User:    model.User{ID: 1, Email: req.Email},
	})
}

// retireAccess invalidates the current access token without touching the
// refresh token, so the next authorized call gets a 401.
func (f *fakeAPI) retireAccess() {
	f.mu.Lock()
	f.access = "access-retired-" + time.Now().Format(time.RFC3339Nano)
	f.mu.Unlock()
}

func newTestManager(t *testing.T, api *fakeAPI) (*session.Manager, *session.SQLiteStore) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	log := zap.NewNop()
	store, err := session.NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := auth.NewService(log, config.API{BaseURL: srv.URL, Timeout: 5 * time.Second})
	return session.NewManager(log, svc, store), store
}

func TestLoginPersistsTokensAndFetchesUser(t *testing.T) {
	api := newFakeAPI()
	mgr, store := newTestManager(t, api)

	user, err := mgr.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, testEmail, user.Email)
	require.Equal(t, "Paul Atreides", user.FullName())

	access, err := store.Access()
	require.NoError(t, err)
	require.Equal(t, "access-1", access)
	refresh, err := store.Refresh()
	require.NoError(t, err)
	require.Equal(t, "refresh-1", refresh)

	require.True(t, mgr.Authenticated())
	require.Equal(t, user, mgr.CurrentUser())
}

func TestLoginRejectedLeavesSessionAnonymous(t *testing.T) {
	api := newFakeAPI()
	mgr, store := newTestManager(t, api)

	user, err := mgr.Login(context.Background(), testEmail, "wrong", false)
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	require.Nil(t, user)

	access, err := store.Access()
	require.NoError(t, err)
	require.Empty(t, access)
	require.False(t, mgr.Authenticated())
	require.Nil(t, mgr.CurrentUser())
}

func TestFetchCurrentUserWithoutTokenIsNoop(t *testing.T) {
	api := newFakeAPI()
	mgr, _ := newTestManager(t, api)

	user, err := mgr.FetchCurrentUser(context.Background())
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestFetchCurrentUserRefreshesOnceOn401(t *testing.T) {
	api := newFakeAPI()
	mgr, store := newTestManager(t, api)

	_, err := mgr.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)

	api.retireAccess()

	user, err := mgr.FetchCurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	require.EqualValues(t, 1, atomic.LoadInt32(&api.refreshCalls))

	access, err := store.Access()
	require.NoError(t, err)
	require.Equal(t, "access-refreshed", access)
}

func TestFailedRefreshClearsSession(t *testing.T) {
	api := newFakeAPI()
	mgr, store := newTestManager(t, api)

	_, err := mgr.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)

	api.retireAccess()
	api.refreshFails = true

	user, err := mgr.FetchCurrentUser(context.Background())
	require.ErrorIs(t, err, errs.ErrSessionExpired)
	require.Nil(t, user)

	access, err := store.Access()
	require.NoError(t, err)
	require.Empty(t, access)
	require.False(t, mgr.Authenticated())
	require.Nil(t, mgr.CurrentUser())
	require.EqualValues(t, 1, atomic.LoadInt32(&api.refreshCalls))
}

func TestConcurrentRefreshesCollapse(t *testing.T) {
	api := newFakeAPI()
	api.refreshDelay = 50 * time.Millisecond
	mgr, _ := newTestManager(t, api)

	_, err := mgr.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)

	const workers = 5
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			access, err := mgr.RefreshAccess(context.Background())
			if err == nil && access != "access-refreshed" {
				err = errors.New("unexpected access token " + access)
			}
			results <- err
		}()
	}
	wg.Wait()
	close(results)
	for err := range results {
		require.NoError(t, err)
	}

	require.EqualValues(t, 1, atomic.LoadInt32(&api.refreshCalls))
}

func TestRegisterThenLogin(t *testing.T) {
	api := newFakeAPI()
	mgr, _ := newTestManager(t, api)

	user, err := mgr.Register(context.Background(), "Jessica", "Atreides", "new@example.com", "long enough")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.True(t, mgr.Authenticated())
}

func TestLogoutClearsEverythingAndNotifies(t *testing.T) {
	api := newFakeAPI()
	mgr, store := newTestManager(t, api)

	var (
		mu     sync.Mutex
		events []*model.User
	)
	mgr.Subscribe(func(user *model.User) {
		mu.Lock()
		events = append(events, user)
		mu.Unlock()
	})

	_, err := mgr.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)
	require.NoError(t, mgr.Logout())

	require.False(t, mgr.Authenticated())
	require.Nil(t, mgr.CurrentUser())
	access, err := store.Access()
	require.NoError(t, err)
	require.Empty(t, access)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	require.NotNil(t, events[0])
	require.Nil(t, events[1])
}

func TestRefreshWithoutSession(t *testing.T) {
	api := newFakeAPI()
	mgr, _ := newTestManager(t, api)

	_, err := mgr.RefreshAccess(context.Background())
	require.ErrorIs(t, err, errs.ErrNoSession)
}
