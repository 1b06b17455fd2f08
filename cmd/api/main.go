package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"adultcare-api/internal/bootstrap"
	"adultcare-api/internal/core/config"
	"adultcare-api/internal/core/logger"
	"adultcare-api/internal/core/server"
	"adultcare-api/internal/repo"
	"adultcare-api/internal/service"
	"adultcare-api/internal/transport/http/handler"
	"adultcare-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := bootstrap.Logger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log.Named("gin"), zapcore.ErrorLevel)

	// 数据库 + 迁移（失败直接 Fatal）
	db, err := bootstrap.OpenDB(cfg, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	ctx := context.Background()
	userSvc := service.NewUserService(repo.NewUserRepo(db), log.Named("user"))
	if err := bootstrap.EnsureSuperuser(ctx, cfg, userSvc); err != nil {
		log.Fatal("bootstrap superuser failed", zap.Error(err))
	}

	tokens, closeTokens, err := bootstrap.TokenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("redis init failed", zap.Error(err))
	}
	defer closeTokens()

	jwter := bootstrap.JWTer(cfg)
	reg := router.NewRegistry(
		handler.NewUserHandler(db, userSvc, jwter, tokens, log.Named("user")),
		handler.NewCaregiverHandler(db, cfg.Bookings.OwnerScoped),
		handler.NewPaymentHandler(bootstrap.PaymentClient(cfg, log)),
	)
	r := router.NewAPIEngine(log, cfg, jwter, reg)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	if el, err := logger.ToStdLogger(log.Named("http"), zapcore.ErrorLevel); err == nil {
		srv.ErrorLog = el
	}

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()
	log.Info("user api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(sctx)
	log.Info("user api stopped gracefully")
}
