package extract

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestParseRecipe_Success はLLMレスポンスからレシピが構造化されることを検証する。
func TestParseRecipe_Success(t *testing.T) {
	recipeJSON := `{
		"title": "Stamppot",
		"description": "Hollandse klassieker",
		"ingredients": [{"item": "aardappel", "amount": "1", "unit": "kg"}],
		"instructions": ["Kook de aardappelen", "Stamp alles fijn"],
		"prep_time": "15 mins",
		"cook_time": "30 mins",
		"servings": "4 people",
		"category": "Dinner",
		"image_url": null
	}`

	var gotAuth string
	var gotBody chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": recipeJSON}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	c := NewLLMClient(ts.Client(), testLogger(), ts.URL, "test-model")
	recipe, err := c.ParseRecipe(context.Background(), "Title: Stamppot\nDescription: recept", "key-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer key-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer key-123")
	}
	if gotBody.Model != "test-model" {
		t.Errorf("model = %q, want %q", gotBody.Model, "test-model")
	}
	if gotBody.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", gotBody.Temperature)
	}
	if gotBody.ResponseFormat == nil || gotBody.ResponseFormat.Type != "json_object" {
		t.Error("expected response_format json_object")
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" {
		t.Fatalf("expected system + user messages, got %v", gotBody.Messages)
	}
	if !strings.Contains(gotBody.Messages[1].Content, "Title: Stamppot") {
		t.Error("user message does not contain raw text")
	}

	if recipe.Title != "Stamppot" {
		t.Errorf("Title = %q, want %q", recipe.Title, "Stamppot")
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0].Unit != "kg" {
		t.Errorf("unexpected ingredients: %v", recipe.Ingredients)
	}
	if len(recipe.Instructions) != 2 {
		t.Errorf("unexpected instructions: %v", recipe.Instructions)
	}
	if recipe.Category != "Dinner" {
		t.Errorf("Category = %q, want %q", recipe.Category, "Dinner")
	}
}

// TestParseRecipe_ErrorStatus_ReturnsError はAPIのエラーステータスでエラーを返すことを検証する。
func TestParseRecipe_ErrorStatus_ReturnsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewLLMClient(ts.Client(), testLogger(), ts.URL, "")
	_, err := c.ParseRecipe(context.Background(), "text", "bad-key")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}

// TestParseRecipe_InvalidRecipeJSON_ReturnsError はLLMが不正なJSONを返した場合に
// エラーになることを検証する。
func TestParseRecipe_InvalidRecipeJSON_ReturnsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "this is not json"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	c := NewLLMClient(ts.Client(), testLogger(), ts.URL, "")
	_, err := c.ParseRecipe(context.Background(), "text", "key")
	if err == nil {
		t.Fatal("expected error for invalid recipe JSON")
	}
}

// TestParseRecipe_EmptyChoices_ReturnsError は空のchoicesでエラーを返すことを検証する。
func TestParseRecipe_EmptyChoices_ReturnsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer ts.Close()

	c := NewLLMClient(ts.Client(), testLogger(), ts.URL, "")
	_, err := c.ParseRecipe(context.Background(), "text", "key")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

// TestNewLLMClient_Defaults はデフォルトのエンドポイントとモデルが設定されることを検証する。
func TestNewLLMClient_Defaults(t *testing.T) {
	c := NewLLMClient(http.DefaultClient, testLogger(), "", "")
	if c.endpoint != defaultEndpoint {
		t.Errorf("endpoint = %q, want %q", c.endpoint, defaultEndpoint)
	}
	if c.model != defaultModel {
		t.Errorf("model = %q, want %q", c.model, defaultModel)
	}
}
