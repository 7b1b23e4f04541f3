package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "feedback-insights-api/configs"
	"feedback-insights-api/pkg/handlers"
	"feedback-insights-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	envErr := godotenv.Load()

	// 設定の読み込み
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogLevel)
	if envErr != nil {
		slog.Debug("[Server] .env file not loaded", slog.String("error", envErr.Error()))
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("[Server] ❌ invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	deps, err := handlers.BuildDependencies(cfg)
	if err != nil {
		slog.Error("[Server] ❌ failed to initialize services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("[Server] 🚀 starting Feedback Insights API", slog.String("addr", srv.Addr), slog.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Server] ❌ failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("[Server] shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Server] graceful shutdown failed", slog.String("error", err.Error()))
	}
}
