package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adultcare-api/internal/core/config"
	"adultcare-api/internal/repo"
	"adultcare-api/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadE("")
	require.NoError(t, err)
	cfg.DB.DSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg.DB.MaxOpenConns = 1
	cfg.DB.MaxIdleConns = 1
	cfg.DB.LogLevel = "silent"
	return cfg
}

func TestOpenDB_MigratesAndSeedsSuperuser(t *testing.T) {
	cfg := testConfig(t)
	db, err := OpenDB(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	svc := service.NewUserService(repo.NewUserRepo(db), nil)
	require.NoError(t, EnsureSuperuser(context.Background(), cfg, svc))
	// 第二次启动不重复创建
	require.NoError(t, EnsureSuperuser(context.Background(), cfg, svc))

	us, total, err := svc.List(context.Background(), "admin@", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "admin", us[0].Role)
	assert.True(t, us[0].IsSuperuser)
}

func TestTokenStore(t *testing.T) {
	cfg := testConfig(t)

	ts, closeFn, err := TokenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, ts)
	closeFn()

	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()
	ts, closeFn, err = TokenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, ts)
	defer closeFn()

	mr.Close()
	_, _, err = TokenStore(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestJWTerFromConfig(t *testing.T) {
	cfg := testConfig(t)
	j := JWTer(cfg)
	assert.Equal(t, cfg.JWT.Issuer, j.Issuer)
	assert.Equal(t, 24*60, int(j.RefreshTTL.Minutes()))
}
