package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_AllHealthy(t *testing.T) {
	h := NewHandler("test")
	h.RegisterChecker("storage", NewSimpleChecker("storage", func() error { return nil }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
	if resp.Version != "test" {
		t.Errorf("expected version test, got %s", resp.Version)
	}
	if check, ok := resp.Checks["storage"]; !ok || check.Status != StatusHealthy {
		t.Errorf("expected healthy storage check, got %+v", resp.Checks)
	}
}

func TestHandler_Unhealthy(t *testing.T) {
	h := NewHandler("test")
	h.RegisterChecker("storage", NewSimpleChecker("storage", func() error {
		return errors.New("backend unreachable")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", resp.Status)
	}
	if resp.Checks["storage"].Message != "backend unreachable" {
		t.Errorf("expected check message, got %+v", resp.Checks["storage"])
	}
}

func TestReadinessHandler(t *testing.T) {
	h := NewHandler("test")

	rec := httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with no checkers, got %d", rec.Code)
	}

	h.RegisterChecker("storage", NewSimpleChecker("storage", func() error {
		return errors.New("down")
	}))
	rec = httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 with failing checker, got %d", rec.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
