package app

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestRunHealthcheck_HealthyServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("failed to parse server URL: %v", err)
	}

	if err := runHealthcheck(u.Port()); err != nil {
		t.Errorf("runHealthcheck() error = %v, want nil", err)
	}
}

func TestRunHealthcheck_UnhealthyServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("failed to parse server URL: %v", err)
	}

	if err := runHealthcheck(u.Port()); err == nil {
		t.Error("runHealthcheck() error = nil, want error for unhealthy server")
	}
}

func TestRunHealthcheck_NoServer(t *testing.T) {
	// 到達不能ポート
	if err := runHealthcheck("1"); err == nil {
		t.Error("runHealthcheck() error = nil, want connection error")
	}
}
