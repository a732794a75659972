package store

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

// RemoteStore はクラウドコレクションAPIのクライアント。
// 論理操作1回につきHTTP呼び出しを1回行い、ローカルキャッシュ層は持たない。
type RemoteStore struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewRemoteStore はRemoteStoreの新しいインスタンスを生成する。
func NewRemoteStore(httpClient *http.Client, logger *slog.Logger, baseURL string) *RemoteStore {
	return &RemoteStore{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// List はクラウドコレクションを取得する。
// GET /recipes をBearerトークン付きで呼び出す。
func (s *RemoteStore) List(ctx context.Context, token string) (model.Collection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/recipes", nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("クラウドコレクションの取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewRemoteCallFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("クラウドコレクションAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewRemoteCallFailedError(fmt.Sprintf("status %d", resp.StatusCode))
	}

	var c model.Collection
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		s.logger.Error("クラウドコレクションのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewRemoteCallFailedError(err.Error())
	}
	return c, nil
}

// Add はレシピをクラウドコレクションに作成する。
// POST /recipes をBearerトークン付きで呼び出し、サーバー採番IDが付与された
// レシピを返す。
func (s *RemoteStore) Add(ctx context.Context, token string, r model.Recipe) (model.Recipe, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return model.Recipe{}, fmt.Errorf("レシピのシリアライズに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/recipes", bytes.NewReader(body))
	if err != nil {
		return model.Recipe{}, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("クラウドコレクションへの作成に失敗しました",
			slog.String("title", r.Title),
			slog.String("error", err.Error()),
		)
		return model.Recipe{}, model.NewRemoteCallFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		// エラーボディは読み捨てる（ステータスのみで判定する）
		io.Copy(io.Discard, resp.Body)
		s.logger.Error("クラウドコレクションAPIがエラーステータスを返しました",
			slog.String("title", r.Title),
			slog.Int("http_status", resp.StatusCode),
		)
		return model.Recipe{}, model.NewRemoteCallFailedError(fmt.Sprintf("status %d", resp.StatusCode))
	}

	var created model.Recipe
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		s.logger.Error("作成レスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return model.Recipe{}, model.NewRemoteCallFailedError(err.Error())
	}
	return created, nil
}
