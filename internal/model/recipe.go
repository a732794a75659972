// Package model はドメインモデルを定義する。
package model

import "strings"

// DefaultIngredientGroup はグループ未指定の材料が属する暗黙のグループ名。
const DefaultIngredientGroup = "Main"

// Ingredient はレシピの材料1件を表す。
// AmountとUnitは抽出元の表記ゆれを許容するため文字列のまま保持する。
type Ingredient struct {
	Item   string `json:"item"`
	Amount string `json:"amount,omitempty"`
	Unit   string `json:"unit,omitempty"`
	Group  string `json:"group,omitempty"`
}

// ResolveGroup は材料の所属グループ名を返す。
// Groupが未設定の場合は暗黙の"Main"グループに解決する。
func (i Ingredient) ResolveGroup() string {
	if strings.TrimSpace(i.Group) == "" {
		return DefaultIngredientGroup
	}
	return i.Group
}

// Recipe は保存対象のレシピを表す。
// コレクション内の同一性はTitleの完全一致で判定される（IDではない）。
// 同名の別レシピは区別できないという既知の弱点をそのまま引き継いでいる。
type Recipe struct {
	// ID は保存時に付与される識別子。ローカル保存時はUUID、
	// クラウド保存時はサーバー採番のIDが入る。重複判定には使用しない。
	ID           string       `json:"id,omitempty"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	PrepTime     string       `json:"prep_time,omitempty"`
	CookTime     string       `json:"cook_time,omitempty"`
	Servings     string       `json:"servings,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Keywords     []string     `json:"keywords,omitempty"`
	// Category は旧データ形式の単一カテゴリ。Tagsが空の場合のみ参照される。
	Category string `json:"category,omitempty"`
}

// ResolveTags は分類・検索で参照するタグ集合を返す。
// Tagsが空の場合は旧Categoryフィールドを単独タグとして扱い、
// 両方空の場合はnilを返す（タグなしレシピ）。
func (r Recipe) ResolveTags() []string {
	if len(r.Tags) > 0 {
		return r.Tags
	}
	if strings.TrimSpace(r.Category) != "" {
		return []string{r.Category}
	}
	return nil
}

// Collection は保存済みレシピの順序付き列。先頭が最新。
type Collection []Recipe

// ContainsTitle はタイトル完全一致のレシピが含まれるかを返す。
func (c Collection) ContainsTitle(title string) bool {
	return c.IndexOfTitle(title) >= 0
}

// IndexOfTitle はタイトル完全一致のレシピの位置を返す。存在しない場合は-1。
func (c Collection) IndexOfTitle(title string) int {
	for i, r := range c {
		if r.Title == title {
			return i
		}
	}
	return -1
}
