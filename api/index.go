package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	config "feedback-insights-api/configs"
	"feedback-insights-api/pkg/handlers"
	"feedback-insights-api/pkg/logging"
	"feedback-insights-api/pkg/models"

	"github.com/gin-gonic/gin"
)

var (
	app     http.Handler
	initErr error
	once    sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() (http.Handler, error) {
	once.Do(func() {
		// 環境変数はホスティング側の設定から読み込まれるため、godotenvは呼び出しません。
		cfg := config.LoadConfig()
		logging.InitLogger(cfg.LogLevel)

		if initErr = cfg.Validate(); initErr != nil {
			return
		}
		gin.SetMode(gin.ReleaseMode)

		var deps handlers.Dependencies
		deps, initErr = handlers.BuildDependencies(cfg)
		if initErr != nil {
			return
		}
		app = handlers.NewRouter(deps)
		slog.Info("🟢 [setupApp] Gin application initialized")
	})
	return app, initErr
}

// Handler はサーバーレス環境からのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	h, err := setupApp()
	if err != nil {
		slog.Error("❌ [Handler] initialization failed", slog.String("error", err.Error()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: err.Error()})
		return
	}
	h.ServeHTTP(w, r)
}
