package handlers

import (
	"fmt"
	"log/slog"

	config "feedback-insights-api/configs"
	"feedback-insights-api/pkg/metrics"
	"feedback-insights-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies ルーターが利用するサービス群
type Dependencies struct {
	Analysis   *services.FeedbackAnalysisService
	Source     services.FeedbackSource
	Monitoring *services.MonitoringService
	Metrics    *metrics.Metrics

	FeedbackSourceKind  string
	GeneratorConfigured bool
	AllowedOrigins      []string
	MaxUploadBytes      int64
}

// BuildDependencies 設定からサービスを組み立てる
func BuildDependencies(cfg *config.Config) (Dependencies, error) {
	lexicon, err := services.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		return Dependencies{}, fmt.Errorf("failed to load lexicon: %w", err)
	}

	source, err := services.NewFeedbackSourceFromConfig(cfg)
	if err != nil {
		return Dependencies{}, fmt.Errorf("failed to initialize feedback source: %w", err)
	}

	generator, err := services.NewTextGeneratorFromConfig(cfg)
	if err != nil {
		return Dependencies{}, fmt.Errorf("failed to initialize text generator: %w", err)
	}

	m := metrics.New()
	narrative := services.NewNarrativeService(generator, cfg.NarrativeTimeout)
	analysis := services.NewFeedbackAnalysisService(services.NewFeedbackAnalyzer(lexicon), narrative, m)

	slog.Info("[Router] services initialized",
		slog.String("feedbackSource", cfg.FeedbackSource),
		slog.String("llmProvider", cfg.LLMProvider),
		slog.Bool("llmConfigured", narrative.HasGenerator()))

	return Dependencies{
		Analysis:            analysis,
		Source:              source,
		Monitoring:          services.NewMonitoringService(m),
		Metrics:             m,
		FeedbackSourceKind:  cfg.FeedbackSource,
		GeneratorConfigured: narrative.HasGenerator(),
		AllowedOrigins:      cfg.AllowedOrigins,
		MaxUploadBytes:      cfg.MaxUploadBytes,
	}, nil
}

// NewRouter ミドルウェアとルートを登録したGinエンジンを作成
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = deps.MaxUploadBytes

	// ミドルウェアの登録
	r.Use(gin.Recovery())
	r.Use(deps.Monitoring.LoggingMiddleware())
	r.Use(corsMiddleware(deps.AllowedOrigins))

	feedbackHandler := NewFeedbackHandler(deps.Analysis, deps.Source, deps.MaxUploadBytes)
	monitoringHandler := NewMonitoringHandler(deps.Monitoring)
	healthHandler := NewHealthHandler(deps.FeedbackSourceKind, deps.GeneratorConfigured)

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/feedback", feedbackHandler.GetFeedback)
		api.POST("/analyze-feedback", feedbackHandler.AnalyzeFeedback)
		api.POST("/analyze-feedback/document", feedbackHandler.AnalyzeFeedbackDocument)
		api.POST("/analyze-file", feedbackHandler.AnalyzeFile)
		api.GET("/schema/analysis", feedbackHandler.GetAnalysisSchema)

		// モニタリングAPI
		monitoring := api.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}

	return r
}

// corsMiddleware 許可オリジン未指定なら全オリジンを許可
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		return cors.Default()
	}
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AddAllowHeaders(services.RequestIDHeader)
	corsConfig.AddExposeHeaders(services.RequestIDHeader)
	return cors.New(corsConfig)
}
