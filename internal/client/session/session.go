// Package session owns the login state of the client.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	clientapi "github.com/iudanet/winelog/internal/client/api"
	"github.com/iudanet/winelog/internal/client/storage"
	"github.com/iudanet/winelog/pkg/api"
)

var (
	// ErrNotLoggedIn is returned when no session exists
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrLoginFailed is returned when the provider redirect reports a failure
	ErrLoginFailed = errors.New("login failed")
)

// Login platforms understood by the backend
const (
	PlatformWeb     = "web"
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// DeepLinkScheme is the URL scheme of the native login redirect
const DeepLinkScheme = "winelog"

// API is the subset of the backend client used by the session
type API interface {
	LoginURL(ctx context.Context, platform string) (string, error)
	ExchangeCode(ctx context.Context, code, state string) (*url.URL, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*api.User, error)
	SetTokenSource(ts oauth2.TokenSource)
}

// CookieClearer drops the cookie session of the web variant
type CookieClearer interface {
	ClearCookies() error
}

// Config configures a Session
type Config struct {
	API     API
	Store   *TokenStore
	Cookies CookieClearer // nil on native builds
	Logger  *zap.Logger
	// Platform is web, ios or android. Only native platforms persist tokens.
	Platform string
}

// Session is the authentication context created at the composition root
type Session struct {
	api      API
	store    *TokenStore
	cookies  CookieClearer
	logger   *zap.Logger
	user     *api.User
	auth     *storage.AuthData
	platform string
	mu       sync.RWMutex
}

// New creates a session. Call Init before use and Teardown on logout.
func New(cfg Config) (*Session, error) {
	switch cfg.Platform {
	case PlatformWeb, PlatformIOS, PlatformAndroid:
	default:
		return nil, fmt.Errorf("unknown login platform %q", cfg.Platform)
	}
	if cfg.API == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if cfg.Store == nil && cfg.Platform != PlatformWeb {
		return nil, fmt.Errorf("token store is required on %s", cfg.Platform)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		api:      cfg.API,
		store:    cfg.Store,
		cookies:  cfg.Cookies,
		logger:   logger,
		platform: cfg.Platform,
	}, nil
}

// Native reports whether the session persists tokens
func (s *Session) Native() bool {
	return s.platform != PlatformWeb
}

// Platform returns the login platform
func (s *Session) Platform() string {
	return s.platform
}

// Init loads the stored token pair and fetches the current user.
// A missing or rejected session leaves the user logged out without error.
func (s *Session) Init(ctx context.Context) error {
	if s.Native() {
		auth, err := s.store.Load(ctx)
		switch {
		case errors.Is(err, storage.ErrAuthNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("failed to load session: %w", err)
		}
		s.setAuth(auth)
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		if clientapi.IsUnauthorized(err) || errors.Is(err, ErrNotLoggedIn) {
			s.logger.Debug("stored session rejected", zap.Error(err))
			return nil
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	if !user.LoggedIn() {
		return nil
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// User returns the current user, nil when logged out
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// LoggedIn reports whether a user is known
func (s *Session) LoggedIn() bool {
	return s.User() != nil
}

// ExpiresAt returns the expiry of the stored access token, zero when unknown
func (s *Session) ExpiresAt() time.Time {
	auth := s.authData()
	if auth == nil || auth.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(auth.ExpiresAt, 0)
}

// LoginURL returns the provider authorization URL for this platform
func (s *Session) LoginURL(ctx context.Context) (string, error) {
	return s.api.LoginURL(ctx, s.platform)
}

// CompleteCode exchanges an authorization code. Web sessions land in the cookie jar;
// native sessions read the token pair from the redirect deep link.
func (s *Session) CompleteCode(ctx context.Context, code, state string) (*api.User, error) {
	if state == "" {
		state = s.platform
	}
	loc, err := s.api.ExchangeCode(ctx, code, state)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	if s.Native() {
		return s.CompleteTokens(ctx, loc.Query())
	}
	return s.fetchUser(ctx)
}

// CompleteDeepLink finishes a native login from the redirect URL
// winelog://auth/callback?success=1&access_token=..&refresh_token=..
func (s *Session) CompleteDeepLink(ctx context.Context, link string) (*api.User, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("invalid deep link: %w", err)
	}
	if u.Scheme != DeepLinkScheme && u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid deep link scheme %q", u.Scheme)
	}
	return s.CompleteTokens(ctx, u.Query())
}

// CompleteTokens persists the token pair of a native login redirect
func (s *Session) CompleteTokens(ctx context.Context, q url.Values) (*api.User, error) {
	if !s.Native() {
		return nil, fmt.Errorf("token login is not available on %s", s.platform)
	}
	if q.Get("success") != "1" {
		msg := q.Get("message")
		if msg == "" {
			msg = q.Get("error")
		}
		return nil, fmt.Errorf("%w: %s", ErrLoginFailed, msg)
	}

	auth := &storage.AuthData{
		UserID:       q.Get("user_id"),
		Nickname:     q.Get("nickname"),
		AccessToken:  q.Get("access_token"),
		RefreshToken: q.Get("refresh_token"),
	}
	if auth.AccessToken == "" || auth.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token pair missing", ErrLoginFailed)
	}
	auth.ExpiresAt = unixOrZero(tokenExpiry(auth.AccessToken))

	if err := s.store.Save(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.setAuth(auth)

	user, err := s.fetchUser(ctx)
	if err != nil {
		// the redirect already identifies the user
		s.logger.Warn("failed to fetch user after login", zap.Error(err))
		id, _ := strconv.ParseInt(auth.UserID, 10, 64)
		user = &api.User{ID: id, Nickname: auth.Nickname}
		s.mu.Lock()
		s.user = user
		s.mu.Unlock()
	}
	return user, nil
}

func (s *Session) fetchUser(ctx context.Context) (*api.User, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if !user.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// Teardown ends the session: best-effort server logout, then local tokens and
// cookies are dropped even when the server is unreachable.
func (s *Session) Teardown(ctx context.Context) error {
	if s.LoggedIn() || s.authData() != nil {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn("failed to logout on server", zap.Error(err))
		}
	}

	var errs []error
	if s.Native() {
		if err := s.store.Delete(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete local session: %w", err))
		}
	}
	if s.cookies != nil {
		if err := s.cookies.ClearCookies(); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear cookies: %w", err))
		}
	}

	s.mu.Lock()
	s.user = nil
	s.auth = nil
	s.mu.Unlock()
	s.api.SetTokenSource(nil)

	return errors.Join(errs...)
}

func (s *Session) setAuth(auth *storage.AuthData) {
	s.mu.Lock()
	s.auth = auth
	s.mu.Unlock()
	s.api.SetTokenSource(&tokenSource{session: s, now: time.Now})
}

func (s *Session) authData() *storage.AuthData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		return nil
	}
	a := *s.auth
	return &a
}
