package oauth2

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClockedStore() (*TokenStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewTokenStore(NewMemoryRepository(), WithClock(clock.Now)), clock
}

func TestTokenStore_SetTokens(t *testing.T) {
	store, _ := newClockedStore()
	ctx := context.Background()

	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 3600))

	token, ok, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A1", token)

	refresh, ok, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "R1", refresh)
}

func TestTokenStore_ExpiryBuffer(t *testing.T) {
	store, clock := newClockedStore()
	ctx := context.Background()

	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 3600))

	clock.Advance(3600*time.Second - ExpiryBuffer - time.Second)
	_, ok, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "token is valid just before the buffered expiry")

	clock.Advance(time.Second)
	token, ok, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "token expires 300s before the reported lifetime")
	assert.Empty(t, token)

	refresh, ok, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "expiry does not touch the refresh token")
	assert.Equal(t, "R1", refresh)
}

func TestTokenStore_ShortLifetimeIsAlreadyExpired(t *testing.T) {
	store, _ := newClockedStore()
	ctx := context.Background()

	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 300))

	_, ok, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenStore_IsAuthenticated(t *testing.T) {
	store, clock := newClockedStore()
	ctx := context.Background()

	authenticated, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, authenticated)

	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 3600))
	clock.Advance(24 * time.Hour)

	authenticated, err = store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, authenticated, "a refresh token alone keeps the session")

	require.NoError(t, store.Clear(ctx))

	authenticated, err = store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, authenticated)

	_, ok, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenStore_Overwrite(t *testing.T) {
	store, _ := newClockedStore()
	ctx := context.Background()

	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 3600))
	require.NoError(t, store.SetTokens(ctx, "A2", "R2", 3600))

	token, _, _ := store.AccessToken(ctx)
	refresh, _, _ := store.RefreshToken(ctx)
	assert.Equal(t, "A2", token)
	assert.Equal(t, "R2", refresh)
}
