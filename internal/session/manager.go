// Package session は認証状態の管理を提供する。
// 状態機械は Unauthenticated → Authenticating → Authenticated → (logout) →
// Unauthenticated の1本のみ。Authenticatedへの遷移がログインイベントごとに
// 1回だけ移行フックを発火する。
package session

import (
	"context"
	"log/slog"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// State は認証状態を表す。
type State string

const (
	// StateUnauthenticated は未認証状態。ローカルコレクションがアクティブ。
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticating は認証処理中の状態。
	StateAuthenticating State = "authenticating"
	// StateAuthenticated は認証済み状態。クラウドコレクションがアクティブ。
	StateAuthenticated State = "authenticated"
)

// AuthProvider は認証コラボレータのインターフェース。
// サードパーティのアイデンティティクレデンシャルを受け取り、Sessionを返す。
// トークンの発行方法はこの層からは不透明に扱う。
type AuthProvider interface {
	Authenticate(ctx context.Context, credential string) (*model.Session, error)
}

// Store はセッションの永続化インターフェース。
// store.LocalStoreの部分集合として定義する。
type Store interface {
	LoadSession() *model.Session
	SaveSession(sess *model.Session) error
	DeleteSession() error
}

// Manager はセッションのライフサイクルと状態遷移を管理する。
type Manager struct {
	provider AuthProvider
	store    Store

	state   State
	session *model.Session

	// onAuthenticated はAuthenticatedへの遷移時に1回だけ呼ばれるフック。
	// MigrationCoordinatorの起動に使われる。
	onAuthenticated func(ctx context.Context, sess *model.Session)
	// onLoggedOut はログアウト時に呼ばれるフック。
	onLoggedOut func()
}

// NewManager はManagerを生成する。
// 起動時に永続化済みセッションがあれば復元しAuthenticated状態から始まるが、
// 復元ではログインイベントのフックは発火しない（移行は済んでいるため）。
func NewManager(provider AuthProvider, store Store) *Manager {
	m := &Manager{
		provider: provider,
		store:    store,
		state:    StateUnauthenticated,
	}

	if sess := store.LoadSession(); sess != nil {
		m.session = sess
		m.state = StateAuthenticated
		slog.Info("保存済みセッションを復元",
			slog.String("user_id", sess.UserID),
		)
	}

	return m
}

// OnAuthenticated はログイン成功時のフックを登録する。
func (m *Manager) OnAuthenticated(fn func(ctx context.Context, sess *model.Session)) {
	m.onAuthenticated = fn
}

// OnLoggedOut はログアウト時のフックを登録する。
func (m *Manager) OnLoggedOut(fn func()) {
	m.onLoggedOut = fn
}

// Login はクレデンシャルで認証し、成功時にセッションを確立する。
// 認証失敗時はUnauthenticatedに戻り、部分的なセッションは一切残さない。
func (m *Manager) Login(ctx context.Context, credential string) (*model.Session, error) {
	m.state = StateAuthenticating

	sess, err := m.provider.Authenticate(ctx, credential)
	if err != nil {
		m.state = StateUnauthenticated
		m.session = nil
		return nil, model.NewAuthFailedError(err.Error())
	}

	if err := m.store.SaveSession(sess); err != nil {
		// 永続化に失敗してもログイン自体は成立させる（再起動で要再ログイン）
		slog.Warn("セッションの永続化に失敗",
			slog.String("error", err.Error()),
		)
	}

	m.session = sess
	m.state = StateAuthenticated

	slog.Info("ログイン成功",
		slog.String("user_id", sess.UserID),
		slog.String("name", sess.Name),
	)

	if m.onAuthenticated != nil {
		m.onAuthenticated(ctx, sess)
	}

	return sess, nil
}

// Logout はセッションを破棄しUnauthenticatedに戻す。
// アクティブなコレクションはローカルに戻る（移行済みのため通常は空）。
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.DeleteSession(); err != nil {
		return err
	}

	userID := ""
	if m.session != nil {
		userID = m.session.UserID
	}
	m.session = nil
	m.state = StateUnauthenticated

	slog.Info("ログアウト", slog.String("user_id", userID))

	if m.onLoggedOut != nil {
		m.onLoggedOut()
	}
	return nil
}

// Current は現在のセッションを返す。未認証の場合はnil。
func (m *Manager) Current() *model.Session {
	return m.session
}

// State は現在の認証状態を返す。
func (m *Manager) State() State {
	return m.state
}
