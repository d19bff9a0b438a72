package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"devconnector/docs"
	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/db"
	"devconnector/internal/handler"
	"devconnector/internal/logging"
	"devconnector/internal/repository"
	"devconnector/internal/router"
	"devconnector/internal/service"
)

// @title DevConnector Profile API
// @version 1.0
// @description Developer profiles: read, list and create-or-update.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey AuthToken
// @in header
// @name x-auth-token
// @description Signed token as issued by the auth service.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	if cfg.Auth.JWTSecret == "change-me" {
		logger.Warn("auth jwt secret is the built-in default; set DEVCONNECTOR_AUTH_JWTSECRET")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(cfg.MySQL.DSN, logger)
	if err != nil {
		logger.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalf("%v", err)
	}

	var cacheClient *cache.Client
	if cfg.CacheEnabled() {
		cacheClient = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		defer cacheClient.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			logger.WithError(err).Warn("redis unreachable, serving without cache")
		}
		cancel()
	}

	profileRepo := repository.NewProfileRepository(gormDB)
	profileService := service.NewProfileService(profileRepo, cacheClient, logger)
	profileHandler := handler.NewProfileHandler(profileService)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Register(e, cfg, logger, profileHandler)

	if cfg.Swagger.Host != "" {
		docs.SwaggerInfo.Host = cfg.Swagger.Host
	}

	addr := ":" + cfg.Server.Port
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    addr,
			"swagger": "http://" + docs.SwaggerInfo.Host + "/swagger/index.html",
		}).Info("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
