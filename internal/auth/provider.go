// Package auth は認証まわりの機能を提供する。
// デバイス側（serve）ではクラウドの認証エンドポイントを呼ぶクライアントを、
// クラウド側（cloud）ではGoogleクレデンシャルの検証とBearerトークンの
// 発行・検証を提供する。
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// CloudAuthClient はクラウドの認証エンドポイントを呼び出すクライアント。
// session.AuthProviderの実装。トークンの発行方法には関知しない。
type CloudAuthClient struct {
	httpClient *http.Client
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewCloudAuthClient はCloudAuthClientを生成する。
func NewCloudAuthClient(httpClient *http.Client, baseURL string) *CloudAuthClient {
	return &CloudAuthClient{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// authRequest は認証リクエストのボディ。
type authRequest struct {
	Credential string `json:"credential"`
}

// authResponse は認証エンドポイントの成功レスポンス。
type authResponse struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Token     string `json:"token"`
}

// authErrorResponse は認証エンドポイントのエラーレスポンス。
type authErrorResponse struct {
	Message string `json:"message"`
}

// Authenticate はサードパーティのクレデンシャルをクラウドに送り、
// セッションを取得する。失敗時はコラボレータのdetailまたは
// HTTPステータスを含むエラーを返す。
func (c *CloudAuthClient) Authenticate(ctx context.Context, credential string) (*model.Session, error) {
	body, err := json.Marshal(authRequest{Credential: credential})
	if err != nil {
		return nil, fmt.Errorf("リクエストのシリアライズに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/google", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("認証エンドポイントの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp authErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%s", errResp.Message)
		}
		return nil, fmt.Errorf("認証エンドポイントがステータス %d を返しました", resp.StatusCode)
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("認証レスポンスのパースに失敗しました: %w", err)
	}

	return &model.Session{
		UserID:    ar.UserID,
		Name:      ar.Name,
		AvatarURL: ar.AvatarURL,
		Token:     ar.Token,
		CreatedAt: time.Now(),
	}, nil
}
