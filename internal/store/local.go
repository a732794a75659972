// Package store はレシピコレクションの永続化を提供する。
// 未認証時はデバイスローカルのキーバリューストア、認証後はクラウドの
// コレクションAPIが保存先となる。
package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"github.com/PietOff/social-recipe-app/internal/model"
)

const (
	// recipesKey はローカルコレクション全体を保持する固定キー。
	// 全件を1つのシリアライズ済みブロブとして保存し、変更のたびに全体を書き換える。
	recipesKey = "recipes"
	// sessionKey はセッションを保持する固定キー。
	sessionKey = "session"
)

// LocalStore はデバイスローカルのレシピコレクションとセッションを永続化する。
// 単一プロセス・単一ライターを前提とし、ロックは行わない。
// 2つの実行コンテキストからの同時書き込みは最後のReplaceAllが勝つ。
type LocalStore struct {
	d *diskv.Diskv
}

// NewLocalStore は指定ディレクトリを基点とするLocalStoreを生成する。
func NewLocalStore(basePath string) *LocalStore {
	d := diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(s string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024,
	})
	return &LocalStore{d: d}
}

// Load はローカルコレクションを読み込む。
// キーが存在しない場合は空のコレクションを返す。
// ブロブが壊れている場合も空のコレクションとして復旧し、ログのみ出力する
// （ユーザーにはエラーを見せない）。
func (s *LocalStore) Load() model.Collection {
	data, err := s.d.Read(recipesKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Collection{}
		}
		slog.Warn("ローカルコレクションの読み込みに失敗、空として扱う",
			slog.String("error", err.Error()),
		)
		return model.Collection{}
	}

	var c model.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		slog.Warn("ローカルコレクションのブロブが破損、空として扱う",
			slog.String("error", err.Error()),
		)
		return model.Collection{}
	}
	return c
}

// ReplaceAll はローカルコレクション全体を1つのブロブとして書き換える。
// 部分書き込みや追記は行わない。
func (s *LocalStore) ReplaceAll(c model.Collection) error {
	if c == nil {
		c = model.Collection{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.d.Write(recipesKey, data)
}

// Add は保存対象のレシピを返す。IDが未設定の場合はUUIDを採番する。
// 永続化はしない（コレクションへの反映はReplaceAllで行う）。
// タイトル重複の判定には引き続きIDではなくタイトルが使われる。
func (s *LocalStore) Add(r model.Recipe) model.Recipe {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return r
}

// LoadSession は保存済みセッションを読み込む。
// セッションが存在しない、またはブロブが壊れている場合はnilを返す。
func (s *LocalStore) LoadSession() *model.Session {
	data, err := s.d.Read(sessionKey)
	if err != nil {
		return nil
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		slog.Warn("セッションのブロブが破損、未認証として扱う",
			slog.String("error", err.Error()),
		)
		return nil
	}
	if sess.Token == "" {
		return nil
	}
	return &sess
}

// SaveSession はセッションを永続化する。
func (s *LocalStore) SaveSession(sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.d.Write(sessionKey, data)
}

// DeleteSession は保存済みセッションを破棄する。
// キーが存在しない場合もエラーにしない。
func (s *LocalStore) DeleteSession() error {
	if !s.d.Has(sessionKey) {
		return nil
	}
	return s.d.Erase(sessionKey)
}
