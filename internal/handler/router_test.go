package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/PietOff/social-recipe-app/internal/metrics"
	"github.com/PietOff/social-recipe-app/internal/middleware"
	"github.com/PietOff/social-recipe-app/internal/model"
	"github.com/PietOff/social-recipe-app/internal/taxonomy"
)

// mockTokenVerifier はmiddleware.TokenVerifierのモック実装。
type mockTokenVerifier struct {
	verifyFn func(tokenString string) (string, error)
}

func (m *mockTokenVerifier) VerifyToken(tokenString string) (string, error) {
	return m.verifyFn(tokenString)
}

func newTestServeRouter(t *testing.T) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	return NewServeRouter(&ServeRouterDeps{
		CORSAllowedOrigin: "http://localhost:5173",
		RateLimiter:       rl,
		Sessions:          &mockSessionManager{},
		Library: &mockLibraryService{
			listFn: func(ctx context.Context) model.Collection {
				return model.Collection{{Title: "Stamppot"}}
			},
		},
		Search:      &passthroughSearch{},
		Categorizer: taxonomy.DefaultConfig(),
		Extractor: &mockExtractService{
			extractFn: func(ctx context.Context, inputURL, requestAPIKey string) (*model.Recipe, error) {
				return &model.Recipe{Title: "Extracted"}, nil
			},
		},
	})
}

func TestServeRouter_HealthIsOpen(t *testing.T) {
	router := newTestServeRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s, want status ok", rec.Body.String())
	}
}

func TestServeRouter_RecipeRoutesAreWired(t *testing.T) {
	router := newTestServeRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/recipes"},
		{http.MethodGet, "/api/recipes/search?q=kip"},
		{http.MethodGet, "/api/recipes/meals"},
		{http.MethodGet, "/api/recipes/dishes"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s %s status = %d, want %d", p.method, p.path, rec.Code, http.StatusOK)
		}
	}
}

func TestServeRouter_ExtractRouteIsWired(t *testing.T) {
	router := newTestServeRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"url":"https://example.com/p/1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestServeRouter_MeWithoutSession_ReturnsUnauthorized(t *testing.T) {
	router := newTestServeRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestServeRouter_PreflightRequest(t *testing.T) {
	router := newTestServeRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/recipes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q, want allowed origin", got)
	}
}

func newTestCloudRouter(t *testing.T) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	return NewCloudRouter(&CloudRouterDeps{
		CORSAllowedOrigin: "http://localhost:5173",
		RateLimiter:       rl,
		TokenVerifier: &mockTokenVerifier{
			verifyFn: func(tokenString string) (string, error) {
				if tokenString == "valid-token" {
					return "user-1", nil
				}
				return "", errors.New("invalid token")
			},
		},
		Auth: &mockGoogleSignInService{
			signInFn: func(ctx context.Context, credential string) (*model.Session, error) {
				return &model.Session{UserID: "user-1", Token: "valid-token"}, nil
			},
		},
		Recipes: &mockRecipeRepo{
			listFn: func(ctx context.Context, userID string) (model.Collection, error) {
				return model.Collection{{Title: "Lasagne"}}, nil
			},
		},
		Metrics: &mockSaveMetrics{},
	})
}

func TestCloudRouter_SignInIsOpen(t *testing.T) {
	router := newTestCloudRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"credential":"google-id-token"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestCloudRouter_RecipesRequireBearerToken(t *testing.T) {
	router := newTestCloudRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCloudRouter_RecipesWithValidToken(t *testing.T) {
	router := newTestCloudRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Lasagne") {
		t.Errorf("body = %s, want recipe list", rec.Body.String())
	}
}

func TestCloudRouter_RecipesWithInvalidToken_ReturnsUnauthorized(t *testing.T) {
	router := newTestCloudRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCloudRouter_CreateRecordsSaveMetric(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	router := NewCloudRouter(&CloudRouterDeps{
		CORSAllowedOrigin: "http://localhost:5173",
		RateLimiter:       rl,
		TokenVerifier: &mockTokenVerifier{
			verifyFn: func(tokenString string) (string, error) {
				return "user-1", nil
			},
		},
		Auth: &mockGoogleSignInService{},
		Recipes: &mockRecipeRepo{
			createFn: func(ctx context.Context, userID string, r *model.Recipe) error {
				r.ID = "server-id-1"
				return nil
			},
		},
		Metrics:        collector,
		MetricsHandler: metrics.Handler(registry),
	})

	req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(`{"title":"Lasagne"}`))
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	// 作成が/metricsの保存カウンターに反映される
	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRec := httptest.NewRecorder()
	router.ServeHTTP(metricsRec, metricsReq)

	if metricsRec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want %d", metricsRec.Code, http.StatusOK)
	}
	if !strings.Contains(metricsRec.Body.String(), "recipeapp_saves_total 1") {
		t.Errorf("metrics body に recipeapp_saves_total 1 が見つからない:\n%s", metricsRec.Body.String())
	}
}

func TestCloudRouter_HealthIsOpen(t *testing.T) {
	router := newTestCloudRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
