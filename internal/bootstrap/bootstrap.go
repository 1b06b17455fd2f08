// Package bootstrap 两个入口共用的依赖装配
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"adultcare-api/internal/core/auth"
	"adultcare-api/internal/core/cache"
	"adultcare-api/internal/core/config"
	"adultcare-api/internal/core/database"
	"adultcare-api/internal/core/logger"
	"adultcare-api/internal/feature"
	"adultcare-api/internal/payment"
	"adultcare-api/internal/service"
	"adultcare-api/internal/transport/http/handler"
)

// Logger 按配置决定是否写文件切割
func Logger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File.Enable {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		})
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

// OpenDB 连接 + 迁移（db.autoMigrate=true 时）
func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	sqlLog, err := logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, err
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             sqlLog,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db, feature.Models()...); err != nil {
			return nil, err
		}
		l.Info("automigrate done")
	}
	return db, nil
}

// EnsureSuperuser 迁移之后建初始管理员（已存在则跳过）
func EnsureSuperuser(ctx context.Context, cfg *config.Config, svc *service.UserService) error {
	b := cfg.Bootstrap
	if b.Email == "" || b.Password == "" {
		return nil
	}
	_, err := svc.EnsureSuperuser(ctx, b.Email, b.Username, b.Password)
	return err
}

func JWTer(cfg *config.Config) *auth.JWTer {
	return &auth.JWTer{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		TTL:        time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshTokenTTLMin) * time.Minute,
	}
}

// TokenStore redis.addr 为空时返回 nil（refresh token 无状态）
func TokenStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (handler.TokenStore, func(), error) {
	if cfg.Redis.Addr == "" {
		l.Info("redis disabled, refresh tokens are stateless")
		return nil, func() {}, nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}
	l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return c, func() { _ = c.Close() }, nil
}

func PaymentClient(cfg *config.Config, l *zap.Logger) *payment.Client {
	p := cfg.Payment
	return payment.NewClient(payment.Options{
		BaseURL:      p.BaseURL,
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		APIVersion:   p.APIVersion,
		Timeout:      time.Duration(p.TimeoutSec) * time.Second,
		Amount:       decimal.NewFromFloat(p.OrderAmount),
		Currency:     p.Currency,
		Customer: payment.Customer{
			ID:    p.CustomerID,
			Email: p.CustomerEmail,
			Phone: p.CustomerPhone,
		},
	}, l.Named("cashfree"))
}
