// Package model はドメインモデルを定義する。
package model

import "time"

// Session は認証済みユーザーのセッションを表す。
// Sessionの有無がアクティブなコレクション（ローカル/クラウド）を切り替える
// 唯一のスイッチとなる。
type Session struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	// Token はクラウドコレクションAPIへのBearerトークン。
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// User はクラウド側に登録されたサービス利用ユーザーを表す。
type User struct {
	ID        string
	GoogleSub string
	Email     string
	Name      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
