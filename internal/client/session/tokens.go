package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/iudanet/winelog/internal/client/storage"
)

// expirySkew refreshes tokens slightly before they expire
const expirySkew = 30 * time.Second

// refreshTimeout bounds a refresh triggered from the transport
const refreshTimeout = 15 * time.Second

// tokenExpiry reads the exp claim without verifying the signature.
// It returns the zero time when the token is not a JWT or carries no exp.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// tokenSource hands out the stored access token and refreshes it once expired
type tokenSource struct {
	mu      sync.Mutex
	session *Session
	now     func() time.Time
}

var _ oauth2.TokenSource = (*tokenSource)(nil)

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	auth := ts.session.authData()
	if auth == nil {
		return nil, ErrNotLoggedIn
	}

	expiry := tokenExpiry(auth.AccessToken)
	if auth.AccessToken != "" && (expiry.IsZero() || ts.now().Add(expirySkew).Before(expiry)) {
		return &oauth2.Token{AccessToken: auth.AccessToken, TokenType: "Bearer", Expiry: expiry}, nil
	}

	if auth.RefreshToken == "" {
		return nil, fmt.Errorf("access token expired: %w", ErrNotLoggedIn)
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	fresh, err := ts.session.refresh(ctx, auth)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       tokenExpiry(fresh.AccessToken),
	}, nil
}

// refresh exchanges the refresh token and persists the new pair
func (s *Session) refresh(ctx context.Context, auth *storage.AuthData) (*storage.AuthData, error) {
	resp, err := s.api.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	fresh := *auth
	fresh.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		fresh.RefreshToken = resp.RefreshToken
	}
	fresh.ExpiresAt = unixOrZero(tokenExpiry(fresh.AccessToken))

	if err := s.store.Save(ctx, &fresh); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}

	s.mu.Lock()
	s.auth = &fresh
	s.mu.Unlock()

	s.logger.Debug("access token refreshed", zap.Int64("expires_at", fresh.ExpiresAt))
	return &fresh, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
