package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/winelog/internal/client/storage"
)

func TestTokenStore_Plaintext(t *testing.T) {
	st := &mockAuthStorage{}
	store := NewTokenStore(st, "")
	ctx := context.Background()

	in := &storage.AuthData{UserID: "7", AccessToken: "at", RefreshToken: "rt", ExpiresAt: 100}
	require.NoError(t, store.Save(ctx, in))
	assert.False(t, st.data.Encrypted)
	assert.Equal(t, "at", st.data.AccessToken)

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTokenStore_Encrypted(t *testing.T) {
	st := &mockAuthStorage{}
	ctx := context.Background()

	in := &storage.AuthData{UserID: "7", Nickname: "somm", AccessToken: "at", RefreshToken: "rt"}
	require.NoError(t, NewTokenStore(st, "secret").Save(ctx, in))
	assert.True(t, st.data.Encrypted)
	assert.NotEmpty(t, st.data.Salt)
	assert.NotEqual(t, "at", st.data.AccessToken)
	assert.Equal(t, "somm", st.data.Nickname, "identity stays readable")
	assert.False(t, in.Encrypted, "input is not modified")

	out, err := NewTokenStore(st, "secret").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at", out.AccessToken)
	assert.Equal(t, "rt", out.RefreshToken)
	assert.False(t, out.Encrypted)

	_, err = NewTokenStore(st, "wrong").Load(ctx)
	require.Error(t, err)

	_, err = NewTokenStore(st, "").Load(ctx)
	require.ErrorIs(t, err, ErrLocked)
}

func TestTokenStore_Errors(t *testing.T) {
	ctx := context.Background()

	require.Error(t, NewTokenStore(&mockAuthStorage{}, "").Save(ctx, nil))

	saveErr := errors.New("disk full")
	require.ErrorIs(t, NewTokenStore(&mockAuthStorage{saveErr: saveErr}, "").Save(ctx, &storage.AuthData{}), saveErr)

	_, err := NewTokenStore(&mockAuthStorage{}, "").Load(ctx)
	require.ErrorIs(t, err, storage.ErrAuthNotFound)
}
