package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateSecret(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	secret, err := LoadOrCreateSecret(ctx, client, "configured")
	require.NoError(t, err)
	assert.Equal(t, "configured", secret)
	assert.False(t, mr.Exists(secretKey))

	first, err := LoadOrCreateSecret(ctx, client, "")
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := LoadOrCreateSecret(ctx, client, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
