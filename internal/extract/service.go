package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// Scraper は投稿ページのメタデータ取得インターフェース。
type Scraper interface {
	Scrape(ctx context.Context, inputURL string) (*PageData, error)
}

// RecipeParser はテキストからレシピへの構造化インターフェース。
type RecipeParser interface {
	ParseRecipe(ctx context.Context, rawText, apiKey string) (*model.Recipe, error)
}

// FieldSanitizer はレシピフィールドのサニタイズインターフェース。
type FieldSanitizer interface {
	SanitizeText(raw string) string
}

// MetricsRecorder は抽出結果のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordExtractSuccess()
	RecordExtractFailure(reason string)
	RecordExtractLatency(duration time.Duration)
}

// Service はレシピ抽出パイプラインを統括する。
// ページ取得、LLM構造化、フィールドのサニタイズ、サムネイル注入を行う。
type Service struct {
	scraper       Scraper
	parser        RecipeParser
	sanitizer     FieldSanitizer
	metrics       MetricsRecorder
	logger        *slog.Logger
	defaultAPIKey string
}

// NewService はServiceの新しいインスタンスを生成する。
// defaultAPIKeyは環境変数由来のフォールバックキー。空でもよい。
func NewService(scraper Scraper, parser RecipeParser, sanitizer FieldSanitizer, metrics MetricsRecorder, logger *slog.Logger, defaultAPIKey string) *Service {
	return &Service{
		scraper:       scraper,
		parser:        parser,
		sanitizer:     sanitizer,
		metrics:       metrics,
		logger:        logger,
		defaultAPIKey: defaultAPIKey,
	}
}

// Extract は投稿URLからレシピを抽出する。
// APIキーはリクエスト指定を優先し、未指定の場合は環境変数のキーを使用する。
// どちらも空の場合はAPI_KEY_REQUIREDエラーを返す。
// 抽出されたレシピのimage_urlにはページのサムネイルURLが必ず上書きされる。
func (s *Service) Extract(ctx context.Context, inputURL, requestAPIKey string) (*model.Recipe, error) {
	apiKey := requestAPIKey
	if apiKey == "" {
		apiKey = s.defaultAPIKey
	}
	if apiKey == "" {
		return nil, model.NewAPIKeyRequiredError()
	}

	start := time.Now()

	page, err := s.scraper.Scrape(ctx, inputURL)
	if err != nil {
		s.metrics.RecordExtractFailure("fetch")
		s.logger.Warn("ページメタデータの取得に失敗しました",
			slog.String("url", inputURL),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	recipe, err := s.parser.ParseRecipe(ctx, page.CombinedText(), apiKey)
	if err != nil {
		s.metrics.RecordExtractFailure("llm")
		s.logger.Warn("レシピの構造化に失敗しました",
			slog.String("url", inputURL),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.sanitizeRecipe(recipe)

	// LLMの出力内容に関わらず、ページから取得した実際のサムネイルを使用する
	recipe.ImageURL = page.ThumbnailURL

	s.metrics.RecordExtractSuccess()
	s.metrics.RecordExtractLatency(time.Since(start))
	s.logger.Info("レシピを抽出しました",
		slog.String("url", inputURL),
		slog.String("title", recipe.Title),
	)

	return recipe, nil
}

// sanitizeRecipe はLLM出力の全テキストフィールドをプレーンテキストに正規化する。
func (s *Service) sanitizeRecipe(r *model.Recipe) {
	r.Title = s.sanitizer.SanitizeText(r.Title)
	r.Description = s.sanitizer.SanitizeText(r.Description)
	r.PrepTime = s.sanitizer.SanitizeText(r.PrepTime)
	r.CookTime = s.sanitizer.SanitizeText(r.CookTime)
	r.Servings = s.sanitizer.SanitizeText(r.Servings)
	r.Category = s.sanitizer.SanitizeText(r.Category)

	for i := range r.Ingredients {
		r.Ingredients[i].Item = s.sanitizer.SanitizeText(r.Ingredients[i].Item)
		r.Ingredients[i].Amount = s.sanitizer.SanitizeText(r.Ingredients[i].Amount)
		r.Ingredients[i].Unit = s.sanitizer.SanitizeText(r.Ingredients[i].Unit)
	}
	for i := range r.Instructions {
		r.Instructions[i] = s.sanitizer.SanitizeText(r.Instructions[i])
	}
	for i := range r.Tags {
		r.Tags[i] = s.sanitizer.SanitizeText(r.Tags[i])
	}
	for i := range r.Keywords {
		r.Keywords[i] = s.sanitizer.SanitizeText(r.Keywords[i])
	}
}
