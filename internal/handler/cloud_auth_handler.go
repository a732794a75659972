package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// GoogleSignInServiceInterface はクラウド側の認証ハンドラーが必要とする
// サービスインターフェース。
type GoogleSignInServiceInterface interface {
	// HandleGoogleSignIn はGoogleのIDトークンを検証し、セッションを発行する。
	HandleGoogleSignIn(ctx context.Context, credential string) (*model.Session, error)
}

// CloudAuthHandler はクラウド側の認証HTTPハンドラー。
type CloudAuthHandler struct {
	service GoogleSignInServiceInterface
}

// NewCloudAuthHandler はCloudAuthHandlerを生成する。
func NewCloudAuthHandler(service GoogleSignInServiceInterface) *CloudAuthHandler {
	return &CloudAuthHandler{service: service}
}

// googleSignInRequest はGoogleサインインリクエストのボディ。
type googleSignInRequest struct {
	Credential string `json:"credential"`
}

// cloudSessionResponse はサインイン成功時のAPIレスポンス。
// Tokenは以降のAPI呼び出しで使うBearerトークン。
type cloudSessionResponse struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Token     string `json:"token"`
}

// GoogleSignIn はGoogleのIDトークンによるサインインを処理する。
// POST /auth/google
func (h *CloudAuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.Credential == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	sess, err := h.service.HandleGoogleSignIn(r.Context(), req.Credential)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, cloudSessionResponse{
		UserID:    sess.UserID,
		Name:      sess.Name,
		AvatarURL: sess.AvatarURL,
		Token:     sess.Token,
	})
}
