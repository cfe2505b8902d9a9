package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/winelog/internal/client/storage"
)

func TestStorage_SaveGetDeleteAuth(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	auth := &storage.AuthData{
		UserID:       "17",
		Nickname:     "sommelier",
		AccessToken:  "encrypted-access-token",
		RefreshToken: "encrypted-refresh-token",
		Salt:         "c2FsdA==",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		Encrypted:    true,
	}

	_, err := store.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)

	require.NoError(t, store.SaveAuth(ctx, auth))

	got, err := store.GetAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth, got)

	authOk, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, authOk)

	// the pair is stored under the native key
	err = store.db.View(func(tx *bbolt.Tx) error {
		assert.NotNil(t, tx.Bucket(bucketAuth).Get([]byte("native")))
		return nil
	})
	require.NoError(t, err)

	// an expired access token still counts, it gets refreshed
	auth.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	require.NoError(t, store.SaveAuth(ctx, auth))
	authOk, err = store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, authOk)

	require.NoError(t, store.DeleteAuth(ctx))

	_, err = store.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)

	err = store.DeleteAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}

func TestStorage_IsAuthenticated_Empty(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	authOk, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, authOk)

	require.NoError(t, store.SaveAuth(ctx, &storage.AuthData{UserID: "1"}))
	authOk, err = store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, authOk, "no tokens stored")
}

func TestStorage_Auth_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketAuth)
	})
	require.NoError(t, err)

	err = store.SaveAuth(ctx, &storage.AuthData{UserID: "1"})
	assert.ErrorContains(t, err, "auth bucket not found")

	_, err = store.GetAuth(ctx)
	assert.ErrorContains(t, err, "auth bucket not found")

	err = store.DeleteAuth(ctx)
	assert.ErrorContains(t, err, "auth bucket not found")
}
