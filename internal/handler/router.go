package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/PietOff/social-recipe-app/internal/middleware"
	"github.com/PietOff/social-recipe-app/internal/repository"
)

// ServeRouterDeps はNewServeRouterに必要な依存関係をまとめた構造体。
type ServeRouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// セッション
	Sessions SessionManagerInterface

	// コレクション
	Library     LibraryServiceInterface
	Search      SearchEngineInterface
	Categorizer CategorizerInterface

	// 抽出
	Extractor ExtractServiceInterface

	// MetricsHandler は/metricsに公開するハンドラー。nilの場合は公開しない。
	MetricsHandler http.Handler
}

// NewServeRouter はデバイス側APIのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware → SecurityHeadersMiddleware →
//	CORSMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/*）とヘルスチェックはレート制限の外に配置する。
func NewServeRouter(deps *ServeRouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア。Recoveryを最外周に置く。
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.Sessions)
	recipeHandler := NewRecipeHandler(deps.Library, deps.Search, deps.Categorizer)
	extractHandler := NewExtractHandler(deps.Extractor)

	// --- レート制限の外のルート ---

	r.Get("/health", handleHealth)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// 認証ルート
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- レート制限が掛かるルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// コレクション管理
		r.Route("/api/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.ListRecipes)
			r.Post("/toggle", recipeHandler.ToggleSave)
			r.Get("/search", recipeHandler.SearchRecipes)
			r.Get("/meals", recipeHandler.MealBuckets)
			r.Get("/dishes", recipeHandler.DishBuckets)
			r.Delete("/{title}", recipeHandler.DeleteRecipe)
		})

		// POST /api/extract - レシピ抽出（抽出専用レート制限を追加）
		r.With(deps.RateLimiter.ExtractMiddleware()).Post("/api/extract", extractHandler.Extract)
	})

	return r
}

// CloudRouterDeps はNewCloudRouterに必要な依存関係をまとめた構造体。
type CloudRouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	TokenVerifier     middleware.TokenVerifier

	// 認証
	Auth GoogleSignInServiceInterface

	// コレクション
	Recipes repository.RecipeRepository

	// Metrics はレシピ作成時に記録するメトリクスレコーダー。
	Metrics SaveMetricsRecorder

	// MetricsHandler は/metricsに公開するハンドラー。nilの場合は公開しない。
	MetricsHandler http.Handler
}

// NewCloudRouter はクラウド側APIのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware → SecurityHeadersMiddleware →
//	CORSMiddleware → BearerAuthMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/google）はミドルウェアチェーンの外に配置する。
func NewCloudRouter(deps *CloudRouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア。Recoveryを最外周に置く。
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewCloudAuthHandler(deps.Auth)
	recipeHandler := NewCloudRecipeHandler(deps.Recipes, deps.Metrics)

	// --- 認証不要のルート ---

	r.Get("/health", handleHealth)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Post("/auth/google", authHandler.GoogleSignIn)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: BearerAuth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.ListRecipes)
			r.Post("/", recipeHandler.CreateRecipe)
		})
	})

	return r
}

// handleHealth はヘルスチェックを処理する。
// GET /health
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
