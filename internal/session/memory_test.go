package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildpulse/dashboard/internal/domain"
)

func testIdentity(userID string) *domain.Identity {
	return &domain.Identity{
		UserID:   userID,
		Username: "tester",
		Guilds: []domain.GuildMembership{
			{ID: "A", Name: "Alpha", Permissions: "32"},
		},
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	sid := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sid, testIdentity("42")))

	got, err := store.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "42", got.UserID)
	assert.Len(t, got.Guilds, 1)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(clockwork.NewFakeClock())

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	sid := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sid, testIdentity("42")))

	clock.Advance(TTL + time.Minute)

	_, err := store.Get(ctx, sid)
	assert.ErrorIs(t, err, ErrNotFound, "expired session must look like it never existed")
}

func TestMemoryStore_RollingTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	sid := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sid, testIdentity("42")))

	// Keep touching the session just inside the window; it must survive far
	// past the original deadline.
	for i := 0; i < 3; i++ {
		clock.Advance(TTL - time.Hour)
		_, err := store.Get(ctx, sid)
		require.NoError(t, err)
	}

	clock.Advance(TTL + time.Minute)
	_, err := store.Get(ctx, sid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	sid := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sid, testIdentity("42")))
	require.NoError(t, store.Delete(ctx, sid))

	_, err := store.Get(ctx, sid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteMissing(t *testing.T) {
	store := NewMemoryStore(clockwork.NewFakeClock())
	assert.NoError(t, store.Delete(context.Background(), uuid.New()))
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	sid := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sid, testIdentity("42")))
	require.NoError(t, store.Put(ctx, sid, testIdentity("43")))

	got, err := store.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "43", got.UserID)
}

func TestMemoryStore_PutSweepsExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	ctx := context.Background()

	stale := uuid.New()
	require.NoError(t, store.Put(ctx, stale, testIdentity("old")))

	clock.Advance(TTL + time.Minute)
	require.NoError(t, store.Put(ctx, uuid.New(), testIdentity("new")))

	store.mu.Lock()
	_, ok := store.entries[stale]
	store.mu.Unlock()
	assert.False(t, ok, "expired entries are swept on Put")
}
