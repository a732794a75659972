package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// TestRouterIntegration_ProtectedRoute_WithMiddlewareChain は
// CORS -> Bearer のミドルウェアチェーンがchi.Routerで正しく動作することを検証する。
func TestRouterIntegration_ProtectedRoute_WithMiddlewareChain(t *testing.T) {
	verifier := &mockTokenVerifier{
		verifyFn: func(tokenString string) (string, error) {
			if tokenString == "router-test-token" {
				return "user-router-test", nil
			}
			return "", errors.New("invalid token")
		},
	}

	r := chi.NewRouter()
	r.Use(NewCORSMiddleware("http://localhost:3000"))

	// ヘルスチェック（認証不要）
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// 認証が必要なルートグループ
	r.Group(func(r chi.Router) {
		r.Use(NewBearerAuthMiddleware(verifier))

		r.Get("/recipes", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := UserIDFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"user_id": userID})
		})

		r.Post("/recipes", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := UserIDFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"user_id": userID, "action": "created"})
		})
	})

	// テスト1: GET /recipes は有効なトークンで通る
	t.Run("GET_recipes_with_token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
		req.Header.Set("Authorization", "Bearer router-test-token")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}

		var body map[string]string
		json.NewDecoder(w.Result().Body).Decode(&body)
		if body["user_id"] != "user-router-test" {
			t.Errorf("user_id = %q, want %q", body["user_id"], "user-router-test")
		}
	})

	// テスト2: GET /recipes はトークンなしで401
	t.Run("GET_recipes_no_token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
		}
	})

	// テスト3: POST /recipes は無効なトークンで401
	t.Run("POST_recipes_invalid_token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recipes", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
		}
	})

	// テスト4: ヘルスチェックは認証不要
	t.Run("health_no_auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}
	})

	// テスト5: OPTIONSプリフライトは204
	t.Run("OPTIONS_preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/recipes", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusNoContent {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
		}
		if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
		}
	})
}
