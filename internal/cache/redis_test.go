package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZohoTokenMirrorWithoutRedis(t *testing.T) {
	require.Nil(t, Rdb)
	ctx := context.Background()

	// all mirror operations are no-ops when the cache is down
	SetZohoToken(ctx, "tok", time.Minute)
	token, ttl, ok := GetZohoToken(ctx)
	assert.False(t, ok)
	assert.Empty(t, token)
	assert.Zero(t, ttl)
	DeleteZohoToken(ctx)
}

func TestUnreadWithoutRedis(t *testing.T) {
	require.Nil(t, Rdb)
	ctx := context.Background()

	IncrUnread(ctx, "919876543210")
	assert.EqualValues(t, 0, GetUnread(ctx, "919876543210"))
	ResetUnread(ctx, "919876543210")
}
