// Package search は保存済みレシピに対する二言語対応の部分一致検索を提供する。
// トークン化・ステミング・ランキングは行わず、意図的に寛容な部分文字列照合に
// とどめる（入力途中やタイプミスでもヒットさせるため）。
package search

import (
	"strings"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// fieldSeparator は検索対象フィールドの連結に使う区切り文字。
// 単語境界を要求しないための区切りで、照合自体は単純な部分一致。
const fieldSeparator = " | "

// SynonymTable は小文字の検索語から関連語への固定マッピング。
// 手作業で整備した非対称な表で、逆方向の対応がない語も許容される。
// 展開は1ホップのみ（推移閉包は取らない）。
type SynonymTable map[string][]string

// Engine はコレクションに対する検索エンジン。状態を持たない純粋なビュー。
type Engine struct {
	synonyms SynonymTable
}

// NewEngine は指定のシノニム表を使うEngineを生成する。
func NewEngine(synonyms SynonymTable) *Engine {
	return &Engine{synonyms: synonyms}
}

// Search はクエリに一致するレシピを入力順を保って返す。
// クエリが空の場合は入力をそのまま返す。
// クエリを小文字化し、シノニム表に完全一致のエントリがあれば
// {クエリ} ∪ シノニム を検索語集合とする。いずれかの語が
// タイトル・説明・タグ・旧カテゴリの連結文字列に（大文字小文字を無視して）
// 部分一致すればヒットとする。
func (e *Engine) Search(query string, col model.Collection) model.Collection {
	if query == "" {
		return col
	}

	q := strings.ToLower(query)
	terms := []string{q}
	if syns, ok := e.synonyms[q]; ok {
		terms = append(terms, syns...)
	}

	var matched model.Collection
	for _, r := range col {
		if matchesAny(r, terms) {
			matched = append(matched, r)
		}
	}
	return matched
}

// matchesAny はいずれかの検索語がレシピの検索対象テキストに部分一致するかを返す。
func matchesAny(r model.Recipe, terms []string) bool {
	haystack := searchText(r)
	for _, term := range terms {
		if strings.Contains(haystack, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// searchText はレシピの検索対象フィールドを区切り文字で連結し小文字化した
// 文字列を返す。対象: タイトル、説明、タグ、旧カテゴリ。
func searchText(r model.Recipe) string {
	fields := []string{r.Title, r.Description}
	fields = append(fields, r.Tags...)
	if r.Category != "" {
		fields = append(fields, r.Category)
	}
	return strings.ToLower(strings.Join(fields, fieldSeparator))
}
