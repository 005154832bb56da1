package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.LoginResult), args.Error(1)
}

func TestSessionContext(t *testing.T) {
	t.Parallel()

	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)

	s := auth.NewSession(models.LoginResult{Token: "tok"})
	got, ok := auth.FromContext(auth.WithSession(context.Background(), s))

	require.True(t, ok)
	assert.Equal(t, "tok", got.UserID, "user id falls back to the token")
	assert.Equal(t, "tok", got.Identity())
	assert.False(t, got.Invalidated())

	got.Invalidate()
	assert.True(t, s.Invalidated())
}

func TestPersistAndFromRequest(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	auth.Persist(rec, models.LoginResult{Token: "tok", UserID: "u-1", UserName: "Grace Hopper"})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, c := range cookies {
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, 7*24*60*60, c.MaxAge)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, c.Name == auth.CookieToken, c.HttpOnly, c.Name)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	s := auth.FromRequest(req)

	require.NotNil(t, s)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "u-1", s.UserID)
	assert.Equal(t, "Grace Hopper", s.UserName)
}

func TestClear(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	auth.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
}

func TestFromRequestWithoutToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieUserID, Value: "u-1"})

	assert.Nil(t, auth.FromRequest(req))
}

func TestGate(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := auth.FromContext(r.Context()); ok {
			w.Header().Set("X-Session", s.Token)
		}
		w.WriteHeader(http.StatusOK)
	})
	gate := auth.Gate(next)

	tests := []struct {
		name         string
		path         string
		token        string
		wantStatus   int
		wantLocation string
		wantSession  string
	}{
		{name: "anonymous page", path: "/tasks", wantStatus: http.StatusSeeOther, wantLocation: "/login"},
		{name: "anonymous login", path: "/login", wantStatus: http.StatusOK},
		{name: "anonymous asset", path: "/static/app.css", wantStatus: http.StatusOK},
		{name: "anonymous favicon", path: "/favicon.ico", wantStatus: http.StatusOK},
		{name: "signed in login", path: "/login", token: "tok", wantStatus: http.StatusSeeOther, wantLocation: "/dashboard"},
		{name: "signed in page", path: "/tasks", token: "tok", wantStatus: http.StatusOK, wantSession: "tok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: auth.CookieToken, Value: tt.token})
			}
			rec := httptest.NewRecorder()

			gate.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			assert.Equal(t, tt.wantSession, rec.Header().Get("X-Session"))
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("missing credentials never reach the network", func(t *testing.T) {
		t.Parallel()

		a := &mockAuthenticator{}
		_, err := auth.Login(context.Background(), a, "  ", "secret")

		require.ErrorIs(t, err, auth.ErrMissingCredentials)
		a.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("upstream failure", func(t *testing.T) {
		t.Parallel()

		a := &mockAuthenticator{}
		a.On("Login", mock.Anything, "ceo@example.com", "secret").Return(models.LoginResult{}, assert.AnError)

		_, err := auth.Login(context.Background(), a, "ceo@example.com", "secret")

		require.ErrorIs(t, err, auth.ErrLogin)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		a := &mockAuthenticator{}
		a.On("Login", mock.Anything, "ceo@example.com", "secret").Return(models.LoginResult{UserID: "u-1"}, nil)

		_, err := auth.Login(context.Background(), a, "ceo@example.com", "secret")

		require.ErrorIs(t, err, auth.ErrLogin)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		a := &mockAuthenticator{}
		a.On("Login", mock.Anything, "ceo@example.com", "secret").Return(models.LoginResult{Token: "tok"}, nil)

		res, err := auth.Login(context.Background(), a, " ceo@example.com ", "secret")

		require.NoError(t, err)
		assert.Equal(t, "tok", res.Token)
	})
}

func TestRetryLogin(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after a failure", func(t *testing.T) {
		t.Parallel()

		a := &mockAuthenticator{}
		a.On("Login", mock.Anything, "svc@example.com", "pw").Return(models.LoginResult{}, assert.AnError).Once()
		a.On("Login", mock.Anything, "svc@example.com", "pw").Return(models.LoginResult{Token: "tok", UserID: "svc"}, nil).Once()

		s, err := auth.RetryLogin(context.Background(), sl.Discard(), a, "svc@example.com", "pw", 3, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "svc", s.UserID)
		a.AssertNumberOfCalls(t, "Login", 2)
	})

	t.Run("gives up", func(t *testing.T) {
		t.Parallel()

		a := &mockAuthenticator{}
		a.On("Login", mock.Anything, "svc@example.com", "pw").Return(models.LoginResult{}, assert.AnError)

		_, err := auth.RetryLogin(context.Background(), sl.Discard(), a, "svc@example.com", "pw", 3, time.Millisecond)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		a.AssertNumberOfCalls(t, "Login", 3)
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		a := &mockAuthenticator{}
		a.On("Login", mock.Anything, "svc@example.com", "pw").Return(models.LoginResult{}, assert.AnError)

		_, err := auth.RetryLogin(ctx, sl.Discard(), a, "svc@example.com", "pw", 3, time.Hour)

		require.ErrorIs(t, err, context.Canceled)
		a.AssertNumberOfCalls(t, "Login", 1)
	})

	t.Run("missing credentials are not retried", func(t *testing.T) {
		t.Parallel()

		_, err := auth.RetryLogin(context.Background(), sl.Discard(), &mockAuthenticator{}, "", "", 3, time.Hour)

		require.True(t, errors.Is(err, auth.ErrMissingCredentials))
	})
}
