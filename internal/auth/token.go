package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService はクラウドコレクションAPIのBearerトークンを発行・検証する。
// HS256署名のJWTで、subにユーザーIDを載せる。
type TokenService struct {
	secret []byte
	maxAge time.Duration
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(secret string, maxAge time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		maxAge: maxAge,
	}
}

// Issue は指定ユーザーのBearerトークンを発行する。
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗しました: %w", err)
	}
	return signed, nil
}

// VerifyToken はBearerトークンを検証し、ユーザーIDを返す。
// 署名不正・期限切れ・sub欠落のトークンは拒否する。
func (s *TokenService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("予期しない署名方式です: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("トークンの検証に失敗しました: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("トークンにsubが含まれていません")
	}
	return claims.Subject, nil
}
