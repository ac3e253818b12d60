package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"rabbit-admin/api"
	"rabbit-admin/internal/config"
)

func TestHealthEndpoint(t *testing.T) {
	cfg := config.Config{AppHost: "127.0.0.1", AppPort: "0"}
	s := New(cfg, api.Deps{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got == "" {
		t.Fatalf("expected request id header to be set")
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected security headers, got %q", got)
	}
}
