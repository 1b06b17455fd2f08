package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 目前只承载 refresh token 白名单
type Cache struct {
	RDB *redis.Client
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

func refreshKey(uid uint, jti string) string { return fmt.Sprintf("refresh_token:%d:%s", uid, jti) }

// AllowRefresh 登记一个 refresh token，过期时间与 token 一致
func (c *Cache) AllowRefresh(ctx context.Context, uid uint, jti string, ttl time.Duration) error {
	return c.RDB.Set(ctx, refreshKey(uid, jti), "valid", ttl).Err()
}

func (c *Cache) RefreshAllowed(ctx context.Context, uid uint, jti string) (bool, error) {
	err := c.RDB.Get(ctx, refreshKey(uid, jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) RevokeRefresh(ctx context.Context, uid uint, jti string) error {
	return c.RDB.Del(ctx, refreshKey(uid, jti)).Err()
}
