package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Errorf("liveness status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != healthStatusOK {
		t.Errorf("status = %q, want %q", resp.Status, healthStatusOK)
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testInstances("http://localhost:3456"), false)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	h := NewHealthChecker(sc)

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Errorf("readiness status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checks["instances"] != healthStatusOK {
		t.Errorf("instances check = %q, want %q", resp.Checks["instances"], healthStatusOK)
	}
}

func TestHealthChecker_Readiness_NotReady(t *testing.T) {
	h := NewHealthChecker(nil)
	h.SetReady(false)

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, req)

	if rec.Code != 503 {
		t.Errorf("readiness status = %d, want 503", rec.Code)
	}

	if h.IsReady() {
		t.Error("expected IsReady to be false")
	}
}

func TestHealthChecker_Readiness_AfterShutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testInstances("http://localhost:3456"), false)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	_ = sc.Shutdown()

	h := NewHealthChecker(sc)

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, req)

	if rec.Code != 503 {
		t.Errorf("readiness status = %d, want 503", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checks["shutdown"] != healthStatusShuttingDown {
		t.Errorf("shutdown check = %q, want %q", resp.Checks["shutdown"], healthStatusShuttingDown)
	}
}

func TestHealthChecker_DetailedHealth(t *testing.T) {
	h := NewHealthChecker(nil)

	req := httptest.NewRequest("GET", "/healthz/detailed", nil)
	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Errorf("detailed health status = %d, want 200", rec.Code)
	}

	var resp DetailedHealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Uptime == "" {
		t.Error("expected uptime to be set")
	}
}
