package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// mockExtractService はExtractServiceInterfaceのモック実装。
type mockExtractService struct {
	extractFn func(ctx context.Context, inputURL, requestAPIKey string) (*model.Recipe, error)
}

func (m *mockExtractService) Extract(ctx context.Context, inputURL, requestAPIKey string) (*model.Recipe, error) {
	return m.extractFn(ctx, inputURL, requestAPIKey)
}

func TestExtract_Success(t *testing.T) {
	var gotURL, gotKey string
	service := &mockExtractService{
		extractFn: func(ctx context.Context, inputURL, requestAPIKey string) (*model.Recipe, error) {
			gotURL = inputURL
			gotKey = requestAPIKey
			return &model.Recipe{
				Title:    "Kip Curry",
				ImageURL: "https://example.com/thumb.jpg",
				Tags:     []string{"Dinner", "Curry"},
			}, nil
		},
	}
	h := NewExtractHandler(service)

	body := `{"url":"https://video.example.com/p/123","api_key":"user-key"}`
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Extract(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if gotURL != "https://video.example.com/p/123" {
		t.Errorf("url = %q, want request url", gotURL)
	}
	if gotKey != "user-key" {
		t.Errorf("api key = %q, want %q", gotKey, "user-key")
	}

	var recipe model.Recipe
	if err := json.NewDecoder(rec.Body).Decode(&recipe); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if recipe.Title != "Kip Curry" {
		t.Errorf("title = %q, want %q", recipe.Title, "Kip Curry")
	}
}

func TestExtract_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := NewExtractHandler(&mockExtractService{})

	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader("{invalid"))
	rec := httptest.NewRecorder()
	h.Extract(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestExtract_EmptyURL_ReturnsBadRequest(t *testing.T) {
	h := NewExtractHandler(&mockExtractService{})

	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"url":""}`))
	rec := httptest.NewRecorder()
	h.Extract(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_URL") {
		t.Errorf("body = %s, want INVALID_URL", rec.Body.String())
	}
}

func TestExtract_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "APIキー未指定は401",
			err:        model.NewAPIKeyRequiredError(),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "API_KEY_REQUIRED",
		},
		{
			name:       "SSRFブロックは403",
			err:        model.NewSSRFBlockedError(),
			wantStatus: http.StatusForbidden,
			wantCode:   "SSRF_BLOCKED",
		},
		{
			name:       "抽出失敗は422",
			err:        model.NewExtractionFailedError("AI parsing failed"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "EXTRACTION_FAILED",
		},
		{
			name:       "不正URLは400",
			err:        model.NewInvalidURLError("スキームが不正です"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockExtractService{
				extractFn: func(ctx context.Context, inputURL, requestAPIKey string) (*model.Recipe, error) {
					return nil, tt.err
				},
			}
			h := NewExtractHandler(service)

			req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"url":"https://example.com/p/1"}`))
			rec := httptest.NewRecorder()
			h.Extract(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantCode)
			}
		})
	}
}
