// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, extraction, remote, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeExtractionFailed = "EXTRACTION_FAILED"
	ErrCodeAuthFailed       = "AUTH_FAILED"
	ErrCodeRemoteCallFailed = "REMOTE_CALL_FAILED"
	ErrCodeInvalidURL       = "INVALID_URL"
	ErrCodeSSRFBlocked      = "SSRF_BLOCKED"
	ErrCodeRecipeNotFound   = "RECIPE_NOT_FOUND"
	ErrCodeAPIKeyRequired   = "API_KEY_REQUIRED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
)

// NewExtractionFailedError は抽出失敗エラーを生成する。
// detailは抽出コラボレータからのメッセージをそのままユーザーに提示する。
func NewExtractionFailedError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeExtractionFailed,
		Message:  detail,
		Category: "extraction",
		Action:   "URLが正しいか確認し、再度お試しください。",
	}
}

// NewAuthFailedError は認証失敗エラーを生成する。
func NewAuthFailedError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  fmt.Sprintf("ログインに失敗しました: %s", detail),
		Category: "auth",
		Action:   "再度ログインをお試しください。",
	}
}

// NewRemoteCallFailedError はクラウドコレクションAPIの呼び出し失敗エラーを生成する。
func NewRemoteCallFailedError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeRemoteCallFailed,
		Message:  fmt.Sprintf("クラウドとの通信に失敗しました: %s", detail),
		Category: "remote",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。",
	}
}

// NewRecipeNotFoundError はレシピ未検出エラーを生成する。
func NewRecipeNotFoundError(title string) *APIError {
	return &APIError{
		Code:     ErrCodeRecipeNotFound,
		Message:  fmt.Sprintf("指定されたレシピが見つかりません: %s", title),
		Category: "validation",
		Action:   "レシピのタイトルを確認してください。",
	}
}

// NewAPIKeyRequiredError はAPIキー未設定エラーを生成する。
func NewAPIKeyRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAPIKeyRequired,
		Message:  "APIキーが必要です。",
		Category: "auth",
		Action:   "リクエストにAPIキーを含めるか、サーバーにAPIキーを設定してください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidRequestError はリクエスト形式エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}
