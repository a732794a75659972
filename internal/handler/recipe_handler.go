// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/PietOff/social-recipe-app/internal/model"
	"github.com/PietOff/social-recipe-app/internal/taxonomy"
)

// LibraryServiceInterface はレシピハンドラーが必要とするコレクション操作の
// サービスインターフェース。
type LibraryServiceInterface interface {
	// List はアクティブなコレクションを新しい順で返す。
	List(ctx context.Context) model.Collection
	// ToggleSave は保存のトグル操作を行う。
	ToggleSave(ctx context.Context, r model.Recipe) (model.Collection, bool, error)
	// DeleteByTitle はタイトル完全一致でレシピを削除する。
	DeleteByTitle(ctx context.Context, title string) (model.Collection, error)
}

// SearchEngineInterface はコレクション内検索のインターフェース。
type SearchEngineInterface interface {
	// Search はクエリに一致するレシピを元の順序のまま返す。
	Search(query string, col model.Collection) model.Collection
}

// CategorizerInterface はコレクションの分類インターフェース。
// taxonomy.Configを直接変更せず、最小限のインターフェースとして定義する。
type CategorizerInterface interface {
	MealBuckets(col model.Collection) []taxonomy.Bucket
	DishBuckets(col model.Collection) []taxonomy.Bucket
}

// RecipeHandler は保存済みレシピコレクションのHTTPハンドラー。
type RecipeHandler struct {
	library     LibraryServiceInterface
	search      SearchEngineInterface
	categorizer CategorizerInterface
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(library LibraryServiceInterface, search SearchEngineInterface, categorizer CategorizerInterface) *RecipeHandler {
	return &RecipeHandler{
		library:     library,
		search:      search,
		categorizer: categorizer,
	}
}

// collectionResponse はコレクションのAPIレスポンス。
type collectionResponse struct {
	Recipes model.Collection `json:"recipes"`
}

// toggleSaveResponse はトグル操作のAPIレスポンス。
// Savedは保存されたか（true）/保存解除されたか（false）を示す。
type toggleSaveResponse struct {
	Saved   bool             `json:"saved"`
	Recipes model.Collection `json:"recipes"`
}

// bucketsResponse は分類結果のAPIレスポンス。
type bucketsResponse struct {
	Buckets []taxonomy.Bucket `json:"buckets"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListRecipes はアクティブなコレクションを返す。
// GET /api/recipes
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	col := h.library.List(r.Context())
	writeJSONResponse(w, http.StatusOK, collectionResponse{Recipes: nonNilCollection(col)})
}

// ToggleSave はレシピ保存のトグルを処理する。
// POST /api/recipes/toggle
func (h *RecipeHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	var recipe model.Recipe
	if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if recipe.Title == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	col, saved, err := h.library.ToggleSave(r.Context(), recipe)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toggleSaveResponse{
		Saved:   saved,
		Recipes: nonNilCollection(col),
	})
}

// DeleteRecipe はタイトル指定の明示削除を処理する。
// DELETE /api/recipes/:title
func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}

	col, err := h.library.DeleteByTitle(r.Context(), title)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, collectionResponse{Recipes: nonNilCollection(col)})
}

// SearchRecipes はコレクション内検索を処理する。
// GET /api/recipes/search?q=xxx
func (h *RecipeHandler) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	col := h.library.List(r.Context())
	result := h.search.Search(query, col)

	writeJSONResponse(w, http.StatusOK, collectionResponse{Recipes: nonNilCollection(result)})
}

// MealBuckets はコレクションの食事タイプ別の分類を返す。
// GET /api/recipes/meals
func (h *RecipeHandler) MealBuckets(w http.ResponseWriter, r *http.Request) {
	col := h.library.List(r.Context())
	buckets := h.categorizer.MealBuckets(col)

	writeJSONResponse(w, http.StatusOK, bucketsResponse{Buckets: nonNilBuckets(buckets)})
}

// DishBuckets はコレクションの料理タイプ別の分類を返す。
// GET /api/recipes/dishes
func (h *RecipeHandler) DishBuckets(w http.ResponseWriter, r *http.Request) {
	col := h.library.List(r.Context())
	buckets := h.categorizer.DishBuckets(col)

	writeJSONResponse(w, http.StatusOK, bucketsResponse{Buckets: nonNilBuckets(buckets)})
}

// --- ヘルパー関数 ---

// nonNilCollection はnilコレクションをJSONで[]として出力できる空スライスに変換する。
func nonNilCollection(col model.Collection) model.Collection {
	if col == nil {
		return model.Collection{}
	}
	return col
}

// nonNilBuckets はnilバケット列をJSONで[]として出力できる空スライスに変換する。
func nonNilBuckets(buckets []taxonomy.Bucket) []taxonomy.Bucket {
	if buckets == nil {
		return []taxonomy.Bucket{}
	}
	return buckets
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSONResponse(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidURL, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeExtractionFailed:
		return http.StatusUnprocessableEntity
	case model.ErrCodeRecipeNotFound:
		return http.StatusNotFound
	case model.ErrCodeRemoteCallFailed:
		return http.StatusBadGateway
	case model.ErrCodeAuthFailed, model.ErrCodeAPIKeyRequired, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
