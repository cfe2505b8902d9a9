package session

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	clientapi "github.com/iudanet/winelog/internal/client/api"
	"github.com/iudanet/winelog/internal/client/storage"
	"github.com/iudanet/winelog/pkg/api"
)

// mockAuthStorage implements storage.AuthStorage in memory
type mockAuthStorage struct {
	data      *storage.AuthData
	saveErr   error
	deleteErr error
}

func (m *mockAuthStorage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	a := *auth
	m.data = &a
	return nil
}

func (m *mockAuthStorage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	a := *m.data
	return &a, nil
}

func (m *mockAuthStorage) DeleteAuth(ctx context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.data = nil
	return nil
}

func (m *mockAuthStorage) IsAuthenticated(ctx context.Context) (bool, error) {
	return m.data != nil, nil
}

// mockAPI records calls and resolves the bearer token through the installed source
type mockAPI struct {
	mu sync.Mutex

	user       *api.User
	meErr      error
	redirect   *url.URL
	refreshed  *api.TokenResponse
	refreshErr error
	logoutErr  error

	source       oauth2.TokenSource
	refreshCalls int
	logoutCalls  int
	lastToken    string
}

func (m *mockAPI) LoginURL(ctx context.Context, platform string) (string, error) {
	return "https://kauth.example/authorize?state=" + platform, nil
}

func (m *mockAPI) ExchangeCode(ctx context.Context, code, state string) (*url.URL, error) {
	return m.redirect, nil
}

func (m *mockAPI) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCalls++
	return m.refreshed, m.refreshErr
}

func (m *mockAPI) Logout(ctx context.Context) error {
	m.logoutCalls++
	return m.logoutErr
}

func (m *mockAPI) Me(ctx context.Context) (*api.User, error) {
	if m.source != nil {
		tok, err := m.source.Token()
		if err != nil {
			return nil, err
		}
		m.lastToken = tok.AccessToken
	}
	return m.user, m.meErr
}

func (m *mockAPI) SetTokenSource(ts oauth2.TokenSource) {
	m.source = ts
}

type mockCookies struct{ cleared int }

func (m *mockCookies) ClearCookies() error {
	m.cleared++
	return nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func newNative(t *testing.T, a *mockAPI, st *mockAuthStorage, deviceKey string) *Session {
	t.Helper()
	s, err := New(Config{API: a, Store: NewTokenStore(st, deviceKey), Platform: PlatformIOS})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	a := &mockAPI{}
	_, err := New(Config{API: a, Platform: "desktop"})
	require.Error(t, err)

	_, err = New(Config{API: a, Platform: PlatformAndroid})
	require.Error(t, err, "native platforms need a token store")

	s, err := New(Config{API: a, Platform: PlatformWeb})
	require.NoError(t, err)
	assert.False(t, s.Native())
}

func TestSession_InitWithoutStoredTokens(t *testing.T) {
	a := &mockAPI{}
	s := newNative(t, a, &mockAuthStorage{}, "")

	require.NoError(t, s.Init(context.Background()))
	assert.False(t, s.LoggedIn())
	assert.Nil(t, a.source)
}

func TestSession_InitRestoresSession(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	st := &mockAuthStorage{data: &storage.AuthData{AccessToken: access, RefreshToken: "rt"}}
	a := &mockAPI{user: &api.User{ID: 7, Nickname: "somm"}}
	s := newNative(t, a, st, "")

	require.NoError(t, s.Init(context.Background()))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "somm", s.User().Nickname)
	assert.Equal(t, access, a.lastToken)
	assert.Zero(t, a.refreshCalls)
}

func TestSession_InitRejected(t *testing.T) {
	st := &mockAuthStorage{data: &storage.AuthData{AccessToken: "at", RefreshToken: "rt"}}
	a := &mockAPI{meErr: &clientapi.Error{Status: 401, Detail: "expired"}}
	s := newNative(t, a, st, "")

	require.NoError(t, s.Init(context.Background()))
	assert.False(t, s.LoggedIn())
}

func TestSession_RefreshesExpiredToken(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Minute))
	fresh := signedToken(t, time.Now().Add(time.Hour))

	st := &mockAuthStorage{data: &storage.AuthData{AccessToken: expired, RefreshToken: "rt"}}
	a := &mockAPI{
		user:      &api.User{ID: 7, Nickname: "somm"},
		refreshed: &api.TokenResponse{Success: true, AccessToken: fresh, RefreshToken: "rt"},
	}
	s := newNative(t, a, st, "")

	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, 1, a.refreshCalls)
	assert.Equal(t, fresh, a.lastToken)
	assert.Equal(t, fresh, st.data.AccessToken, "refreshed token persisted")
	assert.NotZero(t, s.ExpiresAt())

	// the fresh token is reused
	_, err := a.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, a.refreshCalls)
}

func TestSession_RefreshFailure(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Minute))
	st := &mockAuthStorage{data: &storage.AuthData{AccessToken: expired, RefreshToken: "rt"}}
	a := &mockAPI{refreshErr: &clientapi.Error{Status: 401, Detail: "invalid refresh token"}}
	s := newNative(t, a, st, "")

	require.NoError(t, s.Init(context.Background()), "rejected refresh leaves the user logged out")
	assert.False(t, s.LoggedIn())
}

func TestSession_CompleteDeepLink(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	st := &mockAuthStorage{}
	a := &mockAPI{user: &api.User{ID: 7, Nickname: "somm"}}
	s := newNative(t, a, st, "device-secret")

	link := "winelog://auth/callback?success=1&access_token=" + access + "&refresh_token=rt&user_id=7&nickname=somm"
	user, err := s.CompleteDeepLink(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	require.NotNil(t, st.data)
	assert.True(t, st.data.Encrypted)
	assert.NotEqual(t, access, st.data.AccessToken)
	assert.NotEqual(t, "rt", st.data.RefreshToken)

	// a second session with the same device key restores it
	again := newNative(t, &mockAPI{user: a.user}, st, "device-secret")
	require.NoError(t, again.Init(context.Background()))
	assert.True(t, again.LoggedIn())

	// a session without the key cannot read it
	locked := newNative(t, &mockAPI{}, st, "")
	require.ErrorIs(t, locked.Init(context.Background()), ErrLocked)
}

func TestSession_CompleteDeepLinkErrors(t *testing.T) {
	s := newNative(t, &mockAPI{}, &mockAuthStorage{}, "")
	ctx := context.Background()

	tests := []struct {
		name string
		link string
	}{
		{name: "failure", link: "winelog://auth/callback?success=0&message=denied"},
		{name: "missing refresh token", link: "winelog://auth/callback?success=1&access_token=at"},
		{name: "wrong scheme", link: "ftp://auth/callback?success=1"},
		{name: "unparsable", link: "winelog://%zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CompleteDeepLink(ctx, tt.link)
			require.Error(t, err)
		})
	}

	_, err := s.CompleteDeepLink(ctx, "winelog://auth/callback?success=0&message=denied")
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestSession_CompleteCodeNative(t *testing.T) {
	redirect, err := url.Parse("winelog://auth/callback?success=1&access_token=at&refresh_token=rt&user_id=3&nickname=n")
	require.NoError(t, err)

	st := &mockAuthStorage{}
	a := &mockAPI{redirect: redirect, meErr: errors.New("offline")}
	s := newNative(t, a, st, "")

	user, err := s.CompleteCode(context.Background(), "code", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID, "falls back to the redirect identity")
	assert.Equal(t, "at", st.data.AccessToken)
}

func TestSession_CompleteCodeWeb(t *testing.T) {
	redirect, _ := url.Parse("http://localhost:3000/")
	a := &mockAPI{redirect: redirect, user: &api.User{KakaoID: "k1", Nickname: "web"}}
	s, err := New(Config{API: a, Platform: PlatformWeb})
	require.NoError(t, err)

	user, err := s.CompleteCode(context.Background(), "code", "")
	require.NoError(t, err)
	assert.Equal(t, "web", user.Nickname)
	assert.Nil(t, a.source, "web sessions rely on cookies")

	_, err = s.CompleteTokens(context.Background(), url.Values{"success": {"1"}})
	require.Error(t, err)
}

func TestSession_Teardown(t *testing.T) {
	st := &mockAuthStorage{data: &storage.AuthData{AccessToken: "at", RefreshToken: "rt"}}
	a := &mockAPI{user: &api.User{ID: 1, Nickname: "x"}, logoutErr: errors.New("server down")}
	s := newNative(t, a, st, "")
	require.NoError(t, s.Init(context.Background()))

	require.NoError(t, s.Teardown(context.Background()), "server errors do not block logout")
	assert.Equal(t, 1, a.logoutCalls)
	assert.Nil(t, st.data)
	assert.Nil(t, a.source)
	assert.False(t, s.LoggedIn())
}

func TestSession_TeardownWeb(t *testing.T) {
	cookies := &mockCookies{}
	a := &mockAPI{user: &api.User{KakaoID: "k1"}}
	s, err := New(Config{API: a, Cookies: cookies, Platform: PlatformWeb})
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))

	require.NoError(t, s.Teardown(context.Background()))
	assert.Equal(t, 1, cookies.cleared)
	assert.Equal(t, 1, a.logoutCalls)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	assert.True(t, tokenExpiry(signedToken(t, exp)).Equal(exp))
	assert.True(t, tokenExpiry("not-a-jwt").IsZero())
}
