package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	InitRedis(mr.Addr())
	client := GetClient()
	require.NotNil(t, client)

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := client.Get(context.Background(), "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestInitRedisURLForm(t *testing.T) {
	mr := miniredis.RunT(t)

	InitRedis("redis://" + mr.Addr())
	require.NotNil(t, GetClient())
}

func TestInitRedisUnreachable(t *testing.T) {
	InitRedis("localhost:1")
	assert.Nil(t, GetClient())
}
