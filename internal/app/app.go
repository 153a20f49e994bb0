package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AndrewYakovlev/aso-uni/internal/config"
	"github.com/AndrewYakovlev/aso-uni/internal/infrastructure/database"
	"github.com/AndrewYakovlev/aso-uni/pkg/logger"
)

// Run boots the service: config, stores, dependency graph, HTTP server, and
// a graceful shutdown on SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.GinMode != "release"})
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg.DSN)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migration: %w", err)
	}

	redisClient := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = database.Ping(pingCtx, redisClient)
	cancel()
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	container, err := BuildContainer(cfg, db, redisClient, log)
	if err != nil {
		return fmt.Errorf("wiring: %w", err)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: container.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return redisClient.Close()
}
