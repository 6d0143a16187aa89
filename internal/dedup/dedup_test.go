package dedup

import (
	"context"
	"testing"
	"time"

	"tgdocs/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "tgdocs:update:1001", key(1001))
	assert.Equal(t, "tgdocs:update:-5", key(-5))
}

func TestNewRedis(t *testing.T) {
	r := NewRedis(config.RedisConfig{Addr: "localhost:6379", DedupTTLSec: 60})
	defer r.Close()

	assert.Equal(t, time.Minute, r.ttl)
}

func TestRedis_UnreachableServer(t *testing.T) {
	// Port 1 is reserved; nothing listens there.
	r := NewRedis(config.RedisConfig{Addr: "127.0.0.1:1", DedupTTLSec: 60})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ok, err := r.Claim(ctx, 7)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "claim update 7")

	assert.ErrorContains(t, r.Release(ctx, 7), "release update 7")
}

func TestRedis_ClaimRelease(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(config.RedisConfig{Addr: mr.Addr(), DedupTTLSec: 60})
	defer r.Close()
	ctx := context.Background()

	require.NoError(t, r.Ping(ctx))

	ok, err := r.Claim(ctx, 1001)
	require.NoError(t, err)
	assert.True(t, ok, "first claim wins")
	assert.Equal(t, time.Minute, mr.TTL("tgdocs:update:1001"))

	ok, err = r.Claim(ctx, 1001)
	require.NoError(t, err)
	assert.False(t, ok, "redelivery is a duplicate")

	ok, err = r.Claim(ctx, 1002)
	require.NoError(t, err)
	assert.True(t, ok, "other updates are independent")

	require.NoError(t, r.Release(ctx, 1001))
	assert.False(t, mr.Exists("tgdocs:update:1001"))

	ok, err = r.Claim(ctx, 1001)
	require.NoError(t, err)
	assert.True(t, ok, "released update is claimable again")

	require.NoError(t, r.Release(ctx, 9999), "releasing an unknown update is not an error")
}

func TestRedis_ClaimExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(config.RedisConfig{Addr: mr.Addr(), DedupTTLSec: 30})
	defer r.Close()
	ctx := context.Background()

	ok, err := r.Claim(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	ok, err = r.Claim(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok, "claim is forgotten after the TTL")
}
