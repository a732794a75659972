// Package library は保存済みレシピコレクションの管理機能を提供する。
// 保存と削除はタイトル一致によるトグル1操作に集約され、重複登録を防ぐ。
package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// LocalCollectionStore はローカルコレクションの永続化インターフェース。
// store.LocalStoreの部分集合として定義する。
type LocalCollectionStore interface {
	// Load はローカルコレクションを読み込む。破損時は空として復旧する。
	Load() model.Collection
	// ReplaceAll はコレクション全体を1ブロブとして書き換える。
	ReplaceAll(c model.Collection) error
	// Add は保存対象レシピにIDを採番して返す。永続化はしない。
	Add(r model.Recipe) model.Recipe
}

// RemoteCollectionStore はクラウドコレクションAPIのインターフェース。
type RemoteCollectionStore interface {
	// List はクラウドコレクションを取得する。
	List(ctx context.Context, token string) (model.Collection, error)
	// Add はレシピをクラウドに作成し、サーバー採番ID付きのコピーを返す。
	Add(ctx context.Context, token string, r model.Recipe) (model.Recipe, error)
}

// SessionSource は現在のセッションの参照インターフェース。
// nilは未認証（ローカルコレクションがアクティブ）を意味する。
type SessionSource interface {
	Current() *model.Session
}

// MetricsRecorder は保存・削除操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordSave()
	RecordRemove()
	RecordRemoteCallFailure()
}

// Service はアクティブなコレクション（ローカルまたはクラウド）への
// 読み書きを仲介するサービス層。
// ロックは持たない。単一ライター前提で、同時書き込みは最後の書き込みが勝つ。
type Service struct {
	local    LocalCollectionStore
	remote   RemoteCollectionStore
	sessions SessionSource
	metrics  MetricsRecorder

	// remoteCache は認証時の「最後に成功した読み取り」を保持する。
	// リモート呼び出しの失敗時は1操作分古い状態のまま残る（自動再取得はしない）。
	remoteCache model.Collection
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	local LocalCollectionStore,
	remote RemoteCollectionStore,
	sessions SessionSource,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		local:    local,
		remote:   remote,
		sessions: sessions,
		metrics:  metrics,
	}
}

// List はアクティブなコレクションを新しい順で返す。
// 認証時はクラウドから再取得してキャッシュを更新する。取得に失敗した場合は
// エラーをログに残し、最後に成功した読み取り結果をそのまま返す。
func (s *Service) List(ctx context.Context) model.Collection {
	sess := s.sessions.Current()
	if sess == nil {
		return s.local.Load()
	}

	c, err := s.remote.List(ctx, sess.Token)
	if err != nil {
		slog.Error("クラウドコレクションの取得に失敗、前回の読み取り結果を返す",
			slog.String("error", err.Error()),
		)
		s.metrics.RecordRemoteCallFailure()
		return s.remoteCache
	}
	s.remoteCache = c
	return c
}

// ToggleSave は保存のトグル操作を行う。
// コレクションに同一タイトルのレシピが存在する場合は削除（保存解除）、
// 存在しない場合は先頭に追加（保存）する。
// 認証時の保存はまずクラウドに作成し、サーバー採番IDを持つコピーを先頭に
// 追加する。認証時の保存解除はビュー側の状態のみ更新する（クラウドには
// 削除APIが存在しないため、再度保存すると新規作成になる）。
// 戻り値は更新後のコレクションと、保存されたか（true）/解除されたか（false）。
func (s *Service) ToggleSave(ctx context.Context, r model.Recipe) (model.Collection, bool, error) {
	sess := s.sessions.Current()

	if sess == nil {
		return s.toggleLocal(r)
	}
	return s.toggleRemote(ctx, sess.Token, r)
}

// toggleLocal はローカルコレクションに対するトグル操作。
// 同じレシピで2回連続トグルすると元の内容に戻る（タイトル単位の冪等性）。
func (s *Service) toggleLocal(r model.Recipe) (model.Collection, bool, error) {
	c := s.local.Load()

	if i := c.IndexOfTitle(r.Title); i >= 0 {
		c = append(c[:i:i], c[i+1:]...)
		if err := s.local.ReplaceAll(c); err != nil {
			return nil, false, fmt.Errorf("ローカルコレクションの書き込みに失敗しました: %w", err)
		}
		s.metrics.RecordRemove()
		return c, false, nil
	}

	saved := s.local.Add(r)
	c = append(model.Collection{saved}, c...)
	if err := s.local.ReplaceAll(c); err != nil {
		return nil, false, fmt.Errorf("ローカルコレクションの書き込みに失敗しました: %w", err)
	}
	s.metrics.RecordSave()
	return c, true, nil
}

// toggleRemote はクラウドコレクションに対するトグル操作。
func (s *Service) toggleRemote(ctx context.Context, token string, r model.Recipe) (model.Collection, bool, error) {
	c := s.remoteCache

	if i := c.IndexOfTitle(r.Title); i >= 0 {
		c = append(c[:i:i], c[i+1:]...)
		s.remoteCache = c
		s.metrics.RecordRemove()
		return c, false, nil
	}

	created, err := s.remote.Add(ctx, token, r)
	if err != nil {
		s.metrics.RecordRemoteCallFailure()
		return nil, false, err
	}

	c = append(model.Collection{created}, c...)
	s.remoteCache = c
	s.metrics.RecordSave()
	return c, true, nil
}

// DeleteByTitle はレシピ詳細ビュー専用の明示削除を行う。
// 判定キーはトグル操作と同じくタイトルの完全一致。
// 該当タイトルが存在しない場合はRECIPE_NOT_FOUNDを返す。
func (s *Service) DeleteByTitle(ctx context.Context, title string) (model.Collection, error) {
	sess := s.sessions.Current()

	if sess == nil {
		c := s.local.Load()
		i := c.IndexOfTitle(title)
		if i < 0 {
			return nil, model.NewRecipeNotFoundError(title)
		}
		c = append(c[:i:i], c[i+1:]...)
		if err := s.local.ReplaceAll(c); err != nil {
			return nil, fmt.Errorf("ローカルコレクションの書き込みに失敗しました: %w", err)
		}
		s.metrics.RecordRemove()
		return c, nil
	}

	c := s.remoteCache
	i := c.IndexOfTitle(title)
	if i < 0 {
		return nil, model.NewRecipeNotFoundError(title)
	}
	c = append(c[:i:i], c[i+1:]...)
	s.remoteCache = c
	s.metrics.RecordRemove()
	return c, nil
}

// Invalidate は認証状態の遷移（ログイン/ログアウト）時にリモートキャッシュを
// 破棄する。次のListでクラウドから再取得される。
func (s *Service) Invalidate() {
	s.remoteCache = nil
}
