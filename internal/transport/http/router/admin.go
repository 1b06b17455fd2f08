package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"adultcare-api/internal/core/auth"
	"adultcare-api/internal/core/config"
	mdw "adultcare-api/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, cfg *config.Config, jwter *auth.JWTer, reg *Registry) *gin.Engine {
	r := common(l, cfg)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, auth.RoleAdmin))
	reg.MountAllAdmin(admin)
	return r
}
