package handler

import (
	"encoding/json"
	"net/http"

	"github.com/PietOff/social-recipe-app/internal/middleware"
	"github.com/PietOff/social-recipe-app/internal/model"
	"github.com/PietOff/social-recipe-app/internal/repository"
)

// SaveMetricsRecorder はレシピ作成のメトリクス記録インターフェース。
type SaveMetricsRecorder interface {
	RecordSave()
}

// CloudRecipeHandler はクラウドコレクションのHTTPハンドラー。
// 認証ミドルウェアが注入したユーザーIDのコレクションのみを操作する。
type CloudRecipeHandler struct {
	repo    repository.RecipeRepository
	metrics SaveMetricsRecorder
}

// NewCloudRecipeHandler はCloudRecipeHandlerを生成する。
func NewCloudRecipeHandler(repo repository.RecipeRepository, metrics SaveMetricsRecorder) *CloudRecipeHandler {
	return &CloudRecipeHandler{repo: repo, metrics: metrics}
}

// ListRecipes は認証ユーザーのコレクションを新しい順で返す。
// GET /recipes
func (h *CloudRecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	col, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, collectionResponse{Recipes: nonNilCollection(col)})
}

// CreateRecipe は認証ユーザーのコレクションにレシピを作成する。
// POST /recipes
func (h *CloudRecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var recipe model.Recipe
	if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if recipe.Title == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.repo.Create(r.Context(), userID, &recipe); err != nil {
		handleServiceError(w, err)
		return
	}
	h.metrics.RecordSave()

	writeJSONResponse(w, http.StatusCreated, recipe)
}
