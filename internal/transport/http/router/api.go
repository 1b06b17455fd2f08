package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"adultcare-api/internal/core/auth"
	"adultcare-api/internal/core/config"
	"adultcare-api/internal/core/server"
	mdw "adultcare-api/internal/transport/http/middleware"
)

// common 两个 engine 共用的中间件链 + /health /metrics
func common(l *zap.Logger, cfg *config.Config) *gin.Engine {
	r := server.NewRouter(l, cfg.CORS.AllowOrigins)

	lim := cfg.Limits
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.MaxInFlight),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.RequestTimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	if lim.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

// NewAPIEngine 用户端：/api 下按接口各自的 Policy 鉴权
func NewAPIEngine(l *zap.Logger, cfg *config.Config, jwter *auth.JWTer, reg *Registry) *gin.Engine {
	r := common(l, cfg)

	api := r.Group("/api")
	// 可选登录：带 token 才解析，是否必须登录交给 Policy
	api.Use(mdw.Identify(jwter))
	reg.MountAllAPI(api)
	return r
}
