package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	config "feedback-insights-api/configs"
	"feedback-insights-api/pkg/logging"
	"feedback-insights-api/pkg/services"

	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("file", "", "feedback file to analyze (.json, .csv, .xlsx); defaults to the configured source")
	start := flag.String("start", "", "start date (YYYY-MM-DD, inclusive)")
	end := flag.String("end", "", "end date (YYYY-MM-DD, inclusive)")
	noLLM := flag.Bool("no-llm", false, "skip the text generation service and use the template summary")
	format := flag.String("format", "json", "output format: json or html")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogLevel)

	if err := run(context.Background(), cfg, *file, *start, *end, *noLLM, *format); err != nil {
		slog.Error("[Analyze] ❌ analysis failed", slog.String("error", err.Error()))
		if errors.Is(err, services.ErrEmptyResultSet) || errors.Is(err, services.ErrMalformedInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, file, start, end string, noLLM bool, format string) error {
	if format != "json" && format != "html" {
		return fmt.Errorf("unsupported format %q (use json or html)", format)
	}

	rng, err := services.ParseDateRange(&start, &end)
	if err != nil {
		return err
	}

	lexicon, err := services.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		return err
	}

	var source services.FeedbackSource
	if file != "" {
		source = services.NewFileFeedbackSource(file)
	} else {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if source, err = services.NewFeedbackSourceFromConfig(cfg); err != nil {
			return err
		}
	}

	var generator services.TextGenerator
	if !noLLM {
		if generator, err = services.NewTextGeneratorFromConfig(cfg); err != nil {
			return err
		}
	}

	analysis := services.NewFeedbackAnalysisService(
		services.NewFeedbackAnalyzer(lexicon),
		services.NewNarrativeService(generator, cfg.NarrativeTimeout),
		nil,
	)
	result, err := analysis.AnalyzeSource(ctx, source, rng)
	if err != nil {
		return err
	}

	if format == "html" {
		_, err = os.Stdout.Write(services.RenderSummaryHTML(result))
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
