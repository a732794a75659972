package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PietOff/social-recipe-app/internal/model"
	"github.com/PietOff/social-recipe-app/internal/repository"
)

// Service はクラウド側のサインイン処理を提供する。
// クレデンシャル検証 → ユーザー登録/特定 → Bearerトークン発行のフローを統括する。
type Service struct {
	verifier CredentialVerifier
	userRepo repository.UserRepository
	tokens   *TokenService
}

// NewService はServiceを生成する。
func NewService(verifier CredentialVerifier, userRepo repository.UserRepository, tokens *TokenService) *Service {
	return &Service{
		verifier: verifier,
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// HandleGoogleSignIn はGoogleクレデンシャルを検証しセッションを発行する。
// 未登録ユーザーの場合はusersレコードを自動作成する。
// 登録済みユーザーの場合はGoogleのsubで既存ユーザーを特定し、
// 名前とアバターを最新の値に更新する。
func (s *Service) HandleGoogleSignIn(ctx context.Context, credential string) (*model.Session, error) {
	claims, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("クレデンシャルの検証に失敗しました: %w", err)
	}

	user, err := s.userRepo.FindByGoogleSub(ctx, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	now := time.Now()

	if user == nil {
		user = &model.User{
			ID:        uuid.New().String(),
			GoogleSub: claims.Sub,
			Email:     claims.Email,
			Name:      claims.Name,
			AvatarURL: claims.Picture,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
		}
		slog.Info("新規ユーザーを作成",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
		)
	} else {
		user.Name = claims.Name
		user.AvatarURL = claims.Picture
		user.UpdatedAt = now
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
		}
		slog.Info("既存ユーザーがログイン",
			slog.String("user_id", user.ID),
		)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	return &model.Session{
		UserID:    user.ID,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Token:     token,
		CreatedAt: now,
	}, nil
}
