package tokenstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfinder/internal/logger"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := Connect(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0, logger.Nop())
	if err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStore(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	jti := uuid.NewString()
	require.NoError(t, s.Revoke(ctx, jti, time.Minute))
	revoked, err := s.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, revoked)

	token := uuid.NewString()
	require.NoError(t, s.PutResetToken(ctx, token, "user-1", time.Minute))
	userID, err := s.ConsumeResetToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = s.ConsumeResetToken(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "bookfinder:revoked:abc", RevokedKey("abc"))
	assert.Equal(t, "bookfinder:reset:xyz", ResetKey("xyz"))
}
