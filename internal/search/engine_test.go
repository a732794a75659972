package search

import (
	"reflect"
	"testing"

	"github.com/PietOff/social-recipe-app/internal/model"
)

func titles(c model.Collection) []string {
	if len(c) == 0 {
		return nil
	}
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.Title
	}
	return out
}

func TestSearchEmptyQueryReturnsInputUnchanged(t *testing.T) {
	col := model.Collection{
		{Title: "B"},
		{Title: "A"},
		{Title: "C"},
	}
	e := NewEngine(DefaultSynonyms())

	got := e.Search("", col)
	if !reflect.DeepEqual(titles(got), []string{"B", "A", "C"}) {
		t.Errorf("空クエリは入力を順序ごとそのまま返すはず: %v", titles(got))
	}
}

func TestSearchSynonymExpansion(t *testing.T) {
	// "kip" → {"chicken","poultry"} の展開で英語タイトルのレシピがヒットする
	col := model.Collection{
		{Title: "Grilled Chicken Thighs"},
		{Title: "Tomatensoep"},
	}
	e := NewEngine(SynonymTable{"kip": {"chicken", "poultry"}})

	got := e.Search("kip", col)
	if !reflect.DeepEqual(titles(got), []string{"Grilled Chicken Thighs"}) {
		t.Errorf("Search(kip) = %v, want [Grilled Chicken Thighs]", titles(got))
	}
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	col := model.Collection{
		{Title: "Pizza Margherita"},
		{Title: "Broodje Gezond"},
	}
	e := NewEngine(SynonymTable{})

	tests := []struct {
		query string
		want  []string
	}{
		{"PIZZA", []string{"Pizza Margherita"}},
		{"marg", []string{"Pizza Margherita"}},           // 部分一致（単語境界不要）
		{"zz", []string{"Pizza Margherita"}},             // タイプミス耐性のための寛容な照合
		{"niets", nil},
	}

	for _, tt := range tests {
		got := e.Search(tt.query, col)
		if !reflect.DeepEqual(titles(got), tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.query, titles(got), tt.want)
		}
	}
}

func TestSearchMatchesTagsAndLegacyCategory(t *testing.T) {
	col := model.Collection{
		{Title: "Recept 1", Tags: []string{"Dinner", "Soup"}},
		{Title: "Recept 2", Category: "Dessert"},
		{Title: "Recept 3", Description: "met verse pasta"},
	}
	e := NewEngine(SynonymTable{})

	if got := e.Search("soup", col); !reflect.DeepEqual(titles(got), []string{"Recept 1"}) {
		t.Errorf("タグに対する検索 = %v", titles(got))
	}
	if got := e.Search("dessert", col); !reflect.DeepEqual(titles(got), []string{"Recept 2"}) {
		t.Errorf("旧カテゴリに対する検索 = %v", titles(got))
	}
	if got := e.Search("pasta", col); !reflect.DeepEqual(titles(got), []string{"Recept 3"}) {
		t.Errorf("説明に対する検索 = %v", titles(got))
	}
}

func TestSearchSingleHopOnly(t *testing.T) {
	// a→b、b→c のとき、aの検索でcは展開されない（推移閉包は取らない）
	col := model.Collection{
		{Title: "bbb"},
		{Title: "ccc"},
	}
	e := NewEngine(SynonymTable{
		"aaa": {"bbb"},
		"bbb": {"ccc"},
	})

	got := e.Search("aaa", col)
	if !reflect.DeepEqual(titles(got), []string{"bbb"}) {
		t.Errorf("シノニム展開は1ホップのみのはず: %v", titles(got))
	}
}

func TestSearchAsymmetricTableAllowed(t *testing.T) {
	// 逆方向のエントリがなくてもエラーにならず、素の部分一致で動く
	col := model.Collection{{Title: "Kipfilet"}}
	e := NewEngine(SynonymTable{"chicken": {"kip"}})

	if got := e.Search("chicken", col); !reflect.DeepEqual(titles(got), []string{"Kipfilet"}) {
		t.Errorf("Search(chicken) = %v, want [Kipfilet]", titles(got))
	}
	if got := e.Search("kipfilet", col); !reflect.DeepEqual(titles(got), []string{"Kipfilet"}) {
		t.Errorf("表に無い語も素の部分一致で照合するはず: %v", titles(got))
	}
}

func TestSearchPreservesOrder(t *testing.T) {
	col := model.Collection{
		{Title: "Soep B"},
		{Title: "Soep A"},
		{Title: "Pizza"},
		{Title: "Soep C"},
	}
	e := NewEngine(SynonymTable{})

	got := e.Search("soep", col)
	if !reflect.DeepEqual(titles(got), []string{"Soep B", "Soep A", "Soep C"}) {
		t.Errorf("検索は入力順を保つフィルタのはず: %v", titles(got))
	}
}
