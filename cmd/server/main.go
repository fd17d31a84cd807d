package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/perchhq/perch/config"
	"github.com/perchhq/perch/internal/email"
	"github.com/perchhq/perch/internal/health"
	"github.com/perchhq/perch/internal/infrastructure/postgres"
	rediscache "github.com/perchhq/perch/internal/infrastructure/redis"
	"github.com/perchhq/perch/internal/janitor"
	ctxlog "github.com/perchhq/perch/internal/log"
	"github.com/perchhq/perch/internal/metrics"
	httptransport "github.com/perchhq/perch/internal/transport/http"
	"github.com/perchhq/perch/internal/transport/http/handler"
	"github.com/perchhq/perch/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	// The feed cache is optional: without REDIS_ADDR every feed read
	// goes straight to postgres.
	var feedCache usecase.FeedCache
	var cachePinger health.Pinger
	if cfg.RedisAddr != "" {
		fc, err := rediscache.Connect(ctx, cfg.RedisAddr, cfg.FeedCacheTTL())
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		feedCache = fc
		cachePinger = fc
	}

	userRepo := postgres.NewUserRepository(pool)
	followRepo := postgres.NewFollowRepository(pool)
	likeRepo := postgres.NewLikeRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	reauthRepo := postgres.NewReauthTokenRepository(pool)

	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	identityUC := usecase.NewIdentityUsecase(userRepo, followRepo, reauthRepo, emailSender, feedCache, logger, cfg.BcryptCost)
	socialUC := usecase.NewSocialUsecase(followRepo, feedCache, logger)
	engagementUC := usecase.NewEngagementUsecase(likeRepo, logger)
	reauthUC := usecase.NewReauthUsecase(userRepo, reauthRepo, cfg.ReauthTTL(), logger)
	messageUC := usecase.NewMessageUsecase(messageRepo, followRepo, feedCache, logger)
	feedUC := usecase.NewFeedUsecase(messageRepo, feedCache, logger, cfg.FeedPageSize)

	jwtKey := []byte(cfg.JWTSecret)
	authHandler := handler.NewAuthHandler(identityUC, reauthUC, jwtKey, logger)
	userHandler := handler.NewUserHandler(identityUC, socialUC, engagementUC, reauthUC, logger)
	socialHandler := handler.NewSocialHandler(socialUC, logger)
	messageHandler := handler.NewMessageHandler(messageUC, engagementUC, logger)
	feedHandler := handler.NewFeedHandler(feedUC, messageUC, logger)

	metrics.Register()
	checker := health.NewChecker(pool, cachePinger, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, userHandler, socialHandler, messageHandler, feedHandler, jwtKey),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	reaper := janitor.New(reauthRepo, logger, cfg.JanitorSchedule)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	go func() {
		if err := reaper.Start(ctx); err != nil {
			logger.Error("janitor", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
