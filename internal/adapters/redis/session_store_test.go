package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/modhub/modhub-api/internal/domain/auth"
	"github.com/modhub/modhub-api/internal/testutil"
)

func testSession(id string, ttl time.Duration) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		UserID:    "user-1",
		Email:     "user@example.com",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestSessionStore_SaveGetDelete(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	sess := testSession("sess-1", time.Hour)
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, sess.Email, got.Email)
	assert.Equal(t, sess.Role, got.Role)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_SaveRejectsEmptyIDAndExpired(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	err := store.Save(ctx, testSession("", time.Hour))
	assert.Error(t, err)

	err = store.Save(ctx, testSession("sess-expired", -time.Minute))
	assert.Error(t, err)
}

func TestSessionStore_GetMissing(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)

	_, err := store.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_CustomPrefixIsolation(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	a := NewSessionStoreWithPrefix(client, "a:")
	b := NewSessionStoreWithPrefix(client, "b:")

	require.NoError(t, a.Save(ctx, testSession("shared-id", time.Hour)))

	_, err := b.Get(ctx, "shared-id")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = a.Get(ctx, "shared-id")
	assert.NoError(t, err)
}

func TestSessionStore_DeleteMissingIsNoop(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	assert.NoError(t, store.Delete(context.Background(), "never-existed"))
	assert.NoError(t, store.Delete(context.Background(), ""))
}
