// Package testkit 测试用的内存库等工具
package testkit

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"adultcare-api/internal/core/database"
	"adultcare-api/internal/feature"
)

// NewDB 每个测试独立的内存 sqlite，已迁移全部表、开启外键
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		// 内存库随最后一个连接关闭而消失，固定一个连接
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db, feature.Models()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
