package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// ExtractServiceInterface は抽出ハンドラーが必要とするサービスインターフェース。
type ExtractServiceInterface interface {
	// Extract は投稿URLからレシピを抽出する。
	Extract(ctx context.Context, inputURL, requestAPIKey string) (*model.Recipe, error)
}

// ExtractHandler はレシピ抽出のHTTPハンドラー。
type ExtractHandler struct {
	service ExtractServiceInterface
}

// NewExtractHandler はExtractHandlerを生成する。
func NewExtractHandler(service ExtractServiceInterface) *ExtractHandler {
	return &ExtractHandler{service: service}
}

// extractRequest はレシピ抽出リクエストのボディ。
// APIKeyは任意で、指定時は環境変数のキーより優先される。
type extractRequest struct {
	URL    string `json:"url"`
	APIKey string `json:"api_key,omitempty"`
}

// Extract は投稿URLからのレシピ抽出を処理する。
// POST /api/extract
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.URL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidURLError("URLが空です"))
		return
	}

	recipe, err := h.service.Extract(r.Context(), req.URL, req.APIKey)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, recipe)
}
