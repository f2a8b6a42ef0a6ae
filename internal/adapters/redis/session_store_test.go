package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/testutil"
)

// newTestStore creates a store on an isolated prefix.
// Tests will be skipped if Redis is not available.
func newTestStore(t *testing.T) (*SessionStore, *redis.Client) {
	t.Helper()
	client := testutil.SetupTestRedis(t)
	return NewSessionStore(SessionStoreOptions{Client: client, KeyPrefix: "test:" + t.Name() + ":"}), client
}

func testSession(id string, ttl time.Duration) domainauth.Session {
	now := time.Now()
	return domainauth.Session{
		ID:        id,
		UserID:    "user-123",
		Email:     "user@example.com",
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store, client := newTestStore(t)
	ctx := context.Background()

	sess := testSession("s1", 30*time.Minute)
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, sess.Email, got.Email)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)

	ttl := client.TTL(ctx, store.key("s1")).Val()
	assert.InDelta(t, (30 * time.Minute).Seconds(), ttl.Seconds(), 5)
}

func TestSessionStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStore_DeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("s2", time.Hour)))
	require.NoError(t, store.Delete(ctx, "s2"))
	require.NoError(t, store.Delete(ctx, "s2"))
	require.NoError(t, store.Delete(ctx, ""))

	_, err := store.Get(ctx, "s2")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStore_TTLExpiration(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("s3", 100*time.Millisecond)))
	time.Sleep(200 * time.Millisecond)

	_, err := store.Get(ctx, "s3")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStore_ExpiredRecordIsCleanedUp(t *testing.T) {
	store, client := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("s4", time.Hour)))
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := store.Get(ctx, "s4")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	assert.Equal(t, int64(0), client.Exists(ctx, store.key("s4")).Val())
}

func TestSessionStore_SaveValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, testSession("", time.Hour))
	require.ErrorContains(t, err, "session ID cannot be empty")

	err = store.Save(ctx, testSession("s5", -time.Hour))
	require.ErrorContains(t, err, "session is expired")
}

func TestNewSessionStore_DefaultPrefix(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{})
	assert.Equal(t, "session:abc", store.key("abc"))
}
