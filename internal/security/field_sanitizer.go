// Package security はアプリケーションのセキュリティ機能を提供する。
//
// FieldSanitizerService は抽出パイプラインが生成したレシピフィールドを
// プレーンテキストに正規化し、LLM応答やページメタデータ経由で
// マークアップが混入することを防ぐ。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// FieldSanitizerService はレシピフィールドのサニタイズ機能のインターフェースを定義する。
// 抽出結果の保存前に使用される。
type FieldSanitizerService interface {
	// SanitizeText はタグを全て除去したプレーンテキストを返す。
	// HTMLエンティティはデコードし、前後の空白を取り除く。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// fieldSanitizer はFieldSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type fieldSanitizer struct {
	policy *bluemonday.Policy
}

// NewFieldSanitizer はFieldSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのタグと属性を除去するため、
// scriptやイベント属性の混入はここで遮断される。
func NewFieldSanitizer() *fieldSanitizer {
	return &fieldSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText はタグを全て除去したプレーンテキストを返す。
func (s *fieldSanitizer) SanitizeText(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
