package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewIdempotencyStore(client, time.Hour)
	key := fmt.Sprintf("test-%d", time.Now().UnixNano())
	t.Cleanup(func() { _ = store.Release(ctx, key) })

	ok, err := store.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "second claim must fail")

	id, err := store.Result(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, id, "in-flight key has no result")

	ttl, err := client.TTL(ctx, store.key(key)).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, inFlightTTL, "an abandoned claim must expire quickly")

	require.NoError(t, store.Complete(ctx, key, "tx-42"))
	ttl, err = client.TTL(ctx, store.key(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, inFlightTTL, "a completed key keeps the full ttl")
	id, err = store.Result(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "tx-42", id)

	require.NoError(t, store.Release(ctx, key))
	ok, err = store.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok, "released key can be claimed again")
}

func TestIdempotencyStore_DefaultTTL(t *testing.T) {
	s := NewIdempotencyStore(nil, 0)
	assert.Equal(t, defaultIdempotencyTTL, s.ttl)
	assert.Equal(t, inFlightTTL, s.claimTTL())
	assert.Equal(t, "idempotency:transactions:abc", s.key("abc"))

	short := NewIdempotencyStore(nil, 10*time.Second)
	assert.Equal(t, 10*time.Second, short.claimTTL(), "a claim never outlives the completed ttl")
}
