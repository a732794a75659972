package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// defaultTokenInfoURL はGoogleのIDトークン検証エンドポイント。
const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleClaims はGoogle IDトークンから取得したユーザー情報を表す。
type GoogleClaims struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	// Aud はトークンの発行先クライアントID。
	Aud string `json:"aud"`
}

// CredentialVerifier はサードパーティクレデンシャルの検証インターフェース。
// 将来的に複数IdP（Google, Apple等）に対応するための抽象化。
type CredentialVerifier interface {
	// Verify はクレデンシャルを検証し、ユーザー情報を返す。
	Verify(ctx context.Context, credential string) (*GoogleClaims, error)
}

// GoogleVerifierConfig はGoogleVerifierの設定。
type GoogleVerifierConfig struct {
	ClientID string

	// テスト用にオーバーライド可能なURL
	TokenInfoURL string
}

// GoogleVerifier はGoogleのtokeninfoエンドポイントでIDトークンを検証する。
type GoogleVerifier struct {
	config     GoogleVerifierConfig
	httpClient *http.Client
}

// NewGoogleVerifier はGoogleVerifierを生成する。
func NewGoogleVerifier(config GoogleVerifierConfig, httpClient *http.Client) *GoogleVerifier {
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultTokenInfoURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GoogleVerifier{config: config, httpClient: httpClient}
}

// Verify はIDトークンをtokeninfoエンドポイントで検証する。
// audが設定済みクライアントIDと一致しないトークンは拒否する。
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*GoogleClaims, error) {
	if credential == "" {
		return nil, fmt.Errorf("クレデンシャルが空です")
	}

	reqURL := v.config.TokenInfoURL + "?" + url.Values{"id_token": {credential}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("トークン検証エンドポイントの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("無効なクレデンシャルです (status %d)", resp.StatusCode)
	}

	var claims GoogleClaims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("トークン情報のパースに失敗しました: %w", err)
	}

	if claims.Sub == "" {
		return nil, fmt.Errorf("トークンにsubが含まれていません")
	}
	if v.config.ClientID != "" && claims.Aud != v.config.ClientID {
		return nil, fmt.Errorf("トークンの発行先が一致しません")
	}

	return &claims, nil
}
