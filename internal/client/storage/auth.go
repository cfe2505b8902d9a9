package storage

import (
	"context"
)

// AuthStorage stores the token pair of the native session.
// Tokens are stored as given; encryption happens in the session layer.
type AuthStorage interface {
	// SaveAuth stores authentication data, replacing any previous pair
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if a refresh token is stored
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData is the persisted token pair
type AuthData struct {
	UserID       string `json:"user_id"`
	Nickname     string `json:"nickname"`
	AccessToken  string `json:"access_token"`  // plaintext or base64 AES-GCM ciphertext
	RefreshToken string `json:"refresh_token"` // plaintext or base64 AES-GCM ciphertext
	Salt         string `json:"salt,omitempty"` // base64 salt of the device key, set when encrypted
	ExpiresAt    int64  `json:"expires_at"`     // access token expiry, unix seconds
	Encrypted    bool   `json:"encrypted"`
}
