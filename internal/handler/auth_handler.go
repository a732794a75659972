package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// SessionManagerInterface は認証ハンドラーが必要とするセッション管理の
// インターフェース。
type SessionManagerInterface interface {
	// Login はクレデンシャルで認証し、成功時にセッションを確立する。
	Login(ctx context.Context, credential string) (*model.Session, error)
	// Logout はセッションを破棄する。
	Logout(ctx context.Context) error
	// Current は現在のセッションを返す。未認証の場合はnil。
	Current() *model.Session
}

// AuthHandler はデバイス側の認証状態を操作するHTTPハンドラー。
type AuthHandler struct {
	sessions SessionManagerInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(sessions SessionManagerInterface) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Credential string `json:"credential"`
}

// sessionResponse はセッション情報のAPIレスポンス。
// Bearerトークンはデバイス内部でのみ使われるため公開しない。
type sessionResponse struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Login はGoogleクレデンシャルによるログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.Credential == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	sess, err := h.sessions.Login(r.Context(), req.Credential)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toSessionResponse(sess))
}

// Logout はログアウトを処理する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のセッション情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current()
	if sess == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSONResponse(w, http.StatusOK, toSessionResponse(sess))
}

// toSessionResponse はmodel.SessionからAPIレスポンスに変換する。
func toSessionResponse(sess *model.Session) sessionResponse {
	return sessionResponse{
		UserID:    sess.UserID,
		Name:      sess.Name,
		AvatarURL: sess.AvatarURL,
	}
}
