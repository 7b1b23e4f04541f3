package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient は OpenAI 互換の Responses API を呼び出します。
// top_k は Responses API に存在しないため送信しません。
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient 新しい OpenAI クライアントを作成
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(2),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client: &client,
		model:  model,
	}
}

// Generate プロンプトからテキストを生成
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	params := responses.ResponseNewParams{
		Model:           c.model,
		Temperature:     openai.Float(opts.Temperature),
		TopP:            openai.Float(opts.TopP),
		MaxOutputTokens: openai.Int(int64(opts.MaxOutputTokens)),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	text := resp.OutputText()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("OpenAI API returned an empty response (status: %s)", resp.Status)
	}
	return text, nil
}
