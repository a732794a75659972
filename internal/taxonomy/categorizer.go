// Package taxonomy はレシピの多軸分類機能を提供する。
// 同一のタグ集合に対して、食事タイプ（いつ食べるか）と料理タイプ（何か）の
// 2つの独立した分類を適用する。前者は非排他、後者は排他（優先順位つき）。
package taxonomy

import (
	"strings"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// Config は分類の設定を保持する。
// モジュールグローバルではなく読み取り専用の設定として注入し、
// テストでは小さな分類表に差し替えられるようにする。
type Config struct {
	// MealTypes は食事タイプの順序付きリスト。バケットはこの順で出力される。
	MealTypes []string
	// DishTypes は料理タイプの順序付きリスト。先頭一致が優先される。
	DishTypes []string
	// CatchAll はどの料理タイプにも一致しないレシピのバケット名。
	CatchAll string
}

// DefaultConfig は既定の分類設定を返す。
func DefaultConfig() Config {
	return Config{
		MealTypes: []string{
			"Breakfast", "Brunch", "Lunch", "Dinner",
			"Snack", "Dessert", "Appetizer", "Drink",
		},
		DishTypes: []string{
			"Burger", "Pizza", "Pasta", "Sandwich", "Salad",
			"Soup", "Wrap", "Bowl", "Curry", "Stew",
		},
		CatchAll: "Other",
	}
}

// Bucket は1つの分類バケットを表す。
type Bucket struct {
	Name    string           `json:"name"`
	Recipes model.Collection `json:"recipes"`
}

// MealBuckets はコレクションを食事タイプ別に分類する。
// レシピのタグ（または旧カテゴリ）のいずれかが食事タイプ名と大文字小文字を
// 無視して一致すれば、そのバケットに属する。1つのレシピが複数のバケットに
// 現れることがあり、どのバケットにも現れないこともある。
// バケットはMealTypesの順で出力され、空のバケットは省略される。
func (c Config) MealBuckets(col model.Collection) []Bucket {
	var buckets []Bucket
	for _, meal := range c.MealTypes {
		var matched model.Collection
		for _, r := range col {
			if hasTagFold(r, meal) {
				matched = append(matched, r)
			}
		}
		if len(matched) > 0 {
			buckets = append(buckets, Bucket{Name: meal, Recipes: matched})
		}
	}
	return buckets
}

// DishBuckets はコレクションを料理タイプ別に分類する。
// 各レシピはDishTypesを先頭から走査し、最初に一致したタイプのバケットに
// のみ割り当てられる（後続の一致は無視する）。どのタイプにも一致しない
// レシピはキャッチオールバケットに入り、最後に出力される。
// バケットはDishTypesの順を保ち、空のバケットは省略される。
func (c Config) DishBuckets(col model.Collection) []Bucket {
	assigned := make(map[string]model.Collection, len(c.DishTypes))
	var other model.Collection

	for _, r := range col {
		dish := c.firstMatchingDish(r)
		if dish == "" {
			other = append(other, r)
			continue
		}
		assigned[dish] = append(assigned[dish], r)
	}

	var buckets []Bucket
	for _, dish := range c.DishTypes {
		if matched := assigned[dish]; len(matched) > 0 {
			buckets = append(buckets, Bucket{Name: dish, Recipes: matched})
		}
	}
	if len(other) > 0 {
		buckets = append(buckets, Bucket{Name: c.CatchAll, Recipes: other})
	}
	return buckets
}

// firstMatchingDish はDishTypesの中でレシピのタグに最初に一致するタイプ名を
// 返す。一致がない場合は空文字列。
func (c Config) firstMatchingDish(r model.Recipe) string {
	for _, dish := range c.DishTypes {
		if hasTagFold(r, dish) {
			return dish
		}
	}
	return ""
}

// hasTagFold はレシピの解決済みタグ集合に、大文字小文字を無視して
// nameと一致するタグが含まれるかを返す。
func hasTagFold(r model.Recipe, name string) bool {
	for _, tag := range r.ResolveTags() {
		if strings.EqualFold(tag, name) {
			return true
		}
	}
	return false
}
