// Package repository はクラウド側データ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByGoogleSub はGoogleのsubでユーザーを検索する。見つからない場合はnilを返す。
	FindByGoogleSub(ctx context.Context, sub string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーのプロフィール（名前・アバター）を更新する。
	Update(ctx context.Context, user *model.User) error
}

// RecipeRepository はクラウドコレクションの永続化インターフェース。
type RecipeRepository interface {
	// ListByUser は指定ユーザーのコレクションを新しい順（created_at降順）で返す。
	ListByUser(ctx context.Context, userID string) (model.Collection, error)

	// Create はレシピをユーザーのコレクションに作成する。
	// IDはサーバー側で採番され、引数のレシピに書き戻される。
	Create(ctx context.Context, userID string, r *model.Recipe) error
}
