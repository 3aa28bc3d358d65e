package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"codepair/internal/api"
	"codepair/internal/config"
	"codepair/internal/gateway"
	"codepair/internal/logger"
	"codepair/internal/middleware"
	"codepair/internal/presence"
	"codepair/internal/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	store := registry.NewStore(cfg.SessionTTL, zl)
	store.StartSweeper(ctx, cfg.SweepInterval)

	tracker := presence.NewTracker()
	gw := gateway.New(gateway.Config{
		Store:          store,
		Presence:       tracker,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         zl,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartPruning(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		ginzap.Ginzap(zl, time.RFC3339, true),
		ginzap.RecoveryWithZap(zl, true),
		middleware.SecurityHeaders(),
		cors.New(corsConfig(cfg.AllowedOrigins)),
	)
	api.NewHandler(store, gw, zl).RegisterRoutes(router, limiter.Middleware())

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	zl.Info("server listening", zap.String("addr", cfg.ServerAddress))
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		zl.Info("server shut down")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
