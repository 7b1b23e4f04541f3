package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com"
	defaultGeminiModel    = "gemini-1.5-flash"

	maxRetries        = 3
	retryDelay        = 1 * time.Second
	backoffMultiplier = 2
)

// GeminiClient は Gemini generateContent REST API へのリクエストを管理します。
// endpoint にはプロキシのURLを指定することもできます。
type GeminiClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	retryDelay time.Duration
}

// NewGeminiClient は新しい Gemini クライアントを作成します。
func NewGeminiClient(endpoint, apiKey, model string, timeout time.Duration) *GeminiClient {
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryDelay: retryDelay,
	}
}

// --- データ構造定義 ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// GenerateContentRequest generateContent リクエスト
type GenerateContentRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// GenerateContentResponse generateContent レスポンス
type GenerateContentResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// geminiErrorResponse エラーレスポンス
type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// statusError リトライ可否の判定に使うHTTPエラー
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("Gemini API error (status: %d): %s", e.status, e.message)
}

func (e *statusError) retryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= http.StatusInternalServerError
}

// --- メソッド定義 ---

// Generate プロンプトからテキストを生成
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	request := GenerateContentRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     opts.Temperature,
			TopP:            opts.TopP,
			TopK:            opts.TopK,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
	}

	var lastErr error
	delay := c.retryDelay
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
				delay *= backoffMultiplier
			}
		}

		text, err := c.generateOnce(ctx, request)
		if err == nil {
			return text, nil
		}
		lastErr = err

		se, ok := err.(*statusError)
		if !ok || !se.retryable() {
			return "", err
		}
		slog.Warn("[GeminiClient] request failed, retrying",
			slog.Int("attempt", attempt+1), slog.String("error", err.Error()))
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *GeminiClient) generateOnce(ctx context.Context, request GenerateContentRequest) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, url.PathEscape(c.model))

	var response GenerateContentResponse
	if err := c.doRequest(ctx, endpoint, request, &response); err != nil {
		return "", err
	}

	if response.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt was blocked: %s", response.PromptFeedback.BlockReason)
	}
	if len(response.Candidates) == 0 {
		return "", fmt.Errorf("Gemini API returned no candidates")
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("Gemini API returned an empty candidate (finishReason: %s)", response.Candidates[0].FinishReason)
	}
	return sb.String(), nil
}

// doRequest はHTTPリクエストの実行と基本的なレスポンス処理を行う共通メソッドです。
func (c *GeminiClient) doRequest(ctx context.Context, endpoint string, requestData interface{}, responseData interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	requestBody, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp geminiErrorResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			return &statusError{status: resp.StatusCode, message: errorResp.Error.Message}
		}
		return &statusError{status: resp.StatusCode, message: string(body)}
	}

	if err := json.Unmarshal(body, responseData); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
