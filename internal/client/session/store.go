package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/winelog/internal/client/storage"
	"github.com/iudanet/winelog/internal/crypto"
)

// ErrLocked is returned when stored tokens are encrypted and no device key is set
var ErrLocked = errors.New("stored tokens are encrypted, device key required")

const (
	aadAccess  = "winelog/access_token"
	aadRefresh = "winelog/refresh_token"
)

// TokenStore encrypts the token pair before it reaches storage.
// Without a device key tokens are stored in plaintext.
type TokenStore struct {
	storage    storage.AuthStorage
	passphrase string
}

// NewTokenStore wraps st. An empty deviceKey disables encryption.
func NewTokenStore(st storage.AuthStorage, deviceKey string) *TokenStore {
	return &TokenStore{storage: st, passphrase: deviceKey}
}

// Save stores auth, encrypting both tokens under a fresh salt when a device key is set
func (s *TokenStore) Save(ctx context.Context, auth *storage.AuthData) error {
	if auth == nil {
		return fmt.Errorf("auth data is nil")
	}

	stored := *auth
	stored.Encrypted = false
	stored.Salt = ""

	if s.passphrase != "" {
		salt, err := crypto.GenerateSaltBase64()
		if err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		key, err := crypto.DeriveDeviceKeyBase64(s.passphrase, salt)
		if err != nil {
			return fmt.Errorf("failed to derive device key: %w", err)
		}

		if stored.AccessToken, err = crypto.EncryptString(auth.AccessToken, key, aadAccess); err != nil {
			return fmt.Errorf("failed to encrypt access token: %w", err)
		}
		if stored.RefreshToken, err = crypto.EncryptString(auth.RefreshToken, key, aadRefresh); err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		stored.Salt = salt
		stored.Encrypted = true
	}

	return s.storage.SaveAuth(ctx, &stored)
}

// Load returns the stored pair with tokens decrypted
func (s *TokenStore) Load(ctx context.Context) (*storage.AuthData, error) {
	stored, err := s.storage.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	auth := *stored
	if !stored.Encrypted {
		return &auth, nil
	}
	if s.passphrase == "" {
		return nil, ErrLocked
	}

	key, err := crypto.DeriveDeviceKeyBase64(s.passphrase, stored.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive device key: %w", err)
	}
	if auth.AccessToken, err = crypto.DecryptString(stored.AccessToken, key, aadAccess); err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	if auth.RefreshToken, err = crypto.DecryptString(stored.RefreshToken, key, aadRefresh); err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	auth.Encrypted = false
	auth.Salt = ""
	return &auth, nil
}

// Delete removes the stored pair
func (s *TokenStore) Delete(ctx context.Context) error {
	return s.storage.DeleteAuth(ctx)
}
