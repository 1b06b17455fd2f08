package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshAllowList(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	c := New(s.Addr(), "", 0)
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	t.Run("UnknownToken", func(t *testing.T) {
		ok, err := c.RefreshAllowed(ctx, 1, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("AllowAndRevoke", func(t *testing.T) {
		require.NoError(t, c.AllowRefresh(ctx, 1, "jti-1", time.Hour))
		ok, err := c.RefreshAllowed(ctx, 1, "jti-1")
		require.NoError(t, err)
		assert.True(t, ok)

		// 其他用户不能复用同一 jti
		ok, err = c.RefreshAllowed(ctx, 2, "jti-1")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, c.RevokeRefresh(ctx, 1, "jti-1"))
		ok, err = c.RefreshAllowed(ctx, 1, "jti-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, c.AllowRefresh(ctx, 3, "jti-3", time.Minute))
		s.FastForward(2 * time.Minute)
		ok, err := c.RefreshAllowed(ctx, 3, "jti-3")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
