package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	config "feedback-insights-api/configs"
	"feedback-insights-api/pkg/llm"
	"feedback-insights-api/pkg/logging"

	"github.com/joho/godotenv"
)

// 設定済みのテキスト生成サービスに疎通確認のリクエストを送る
func main() {
	prompt := flag.String("prompt", "Reply with the single word: ready", "prompt to send")
	flag.Parse()

	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		slog.Warn("[LLMCheck] .env file not found or could not be loaded", slog.String("error", err.Error()))
	}

	cfg := config.LoadConfig()
	logger := logging.InitLogger(cfg.LogLevel)

	client, err := llm.NewClient(llm.ProviderConfig{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.LLMAPIKey(),
		Model:       cfg.LLMModel(),
		Endpoint:    cfg.LLMEndpoint(),
		HTTPTimeout: cfg.NarrativeTimeout,
	})
	if err != nil {
		logger.Error("FATAL: failed to create client", slog.String("provider", cfg.LLMProvider), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("INFO: sending request...",
		slog.String("provider", cfg.LLMProvider),
		slog.String("model", cfg.LLMModel()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.NarrativeTimeout)
	defer cancel()

	started := time.Now()
	text, err := client.Generate(ctx, *prompt, llm.DefaultGenerationOptions())
	if err != nil {
		logger.Error("ERROR: generation failed", slog.String("error", err.Error()), slog.Duration("elapsed", time.Since(started)))
		os.Exit(1)
	}

	logger.Info("SUCCESS: received response", slog.Duration("elapsed", time.Since(started)))
	os.Stdout.WriteString(text + "\n")
}
