package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/PietOff/social-recipe-app/internal/model"
)

const (
	// defaultEndpoint はGroqのチャット補完APIのエンドポイント。
	defaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	// defaultModel はレシピ構造化に使用するモデル。
	defaultModel = "llama-3.3-70b-versatile"
)

// systemPrompt はLLMにJSONのみを返させるためのシステムプロンプト。
const systemPrompt = "You are a JSON-only API. You must return a valid JSON object and nothing else."

// promptTemplate はレシピ構造化の指示。
// 単位はメートル法に統一し、オランダ語のテキストはオランダ語のまま残す。
const promptTemplate = `You are an expert chef and data parser. I will give you text extracted from a social media cooking video (TikTok/Instagram).
Your goal is to extract a structured recipe from it.

CRITICAL RULES:
1. Convert ALL units to METRIC (ml, l, g, kg). Do NOT use cups, oz, lbs, or spoons if possible (use grams/ml).
2. Categorize the recipe into one of: "Breakfast", "Lunch", "Dinner", "Snack", "Dessert".

Return ONLY valid JSON matching this schema:
{
    "title": "string",
    "description": "string",
    "ingredients": [{"item": "string", "amount": "string", "unit": "string (metric)"}],
    "instructions": ["string (step 1)", "string (step 2)"],
    "prep_time": "string (e.g. 15 mins)",
    "cook_time": "string (e.g. 1 hour)",
    "servings": "string (e.g. 4 people)",
    "category": "string (enum)",
    "image_url": null
}

If the text contains no recipe, return empty strings but explain in description.
If language is Dutch, keep it Dutch.

Raw Text:
%s`

// LLMClient はOpenAI互換のチャット補完APIでレシピを構造化するクライアント。
type LLMClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string // テスト用にエンドポイントを差し替え可能
	model      string
}

// NewLLMClient はLLMClientの新しいインスタンスを生成する。
// endpointとmodelが空の場合はGroqのデフォルト値を使用する。
func NewLLMClient(httpClient *http.Client, logger *slog.Logger, endpoint, modelName string) *LLMClient {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if modelName == "" {
		modelName = defaultModel
	}
	return &LLMClient{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		model:      modelName,
	}
}

// chatRequest はチャット補完APIのリクエストボディ。
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

// chatResponse はチャット補完APIのレスポンスボディ。
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseRecipe は抽出済みテキストをLLMに渡し、構造化されたレシピを返す。
// APIキーはリクエストごとに指定する。
func (c *LLMClient) ParseRecipe(ctx context.Context, rawText, apiKey string) (*model.Recipe, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(promptTemplate, rawText)},
		},
		Temperature:    0,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("LLM APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewExtractionFailedError(fmt.Sprintf("AI parsing failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("LLM APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewExtractionFailedError(fmt.Sprintf("AI parsing failed: status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewExtractionFailedError(fmt.Sprintf("AI parsing failed: %v", err))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		c.logger.Error("LLM APIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewExtractionFailedError(fmt.Sprintf("AI parsing failed: %v", err))
	}
	if len(chat.Choices) == 0 {
		return nil, model.NewExtractionFailedError("AI parsing failed: empty response")
	}

	var recipe model.Recipe
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &recipe); err != nil {
		c.logger.Error("LLMが返したレシピJSONのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewExtractionFailedError(fmt.Sprintf("AI parsing failed: %v", err))
	}

	return &recipe, nil
}
