package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(testRegistry(t))

	req := httptest.NewRequest("GET", "/health", nil)
	recorder := httptest.NewRecorder()
	handler.Status(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}

	contentType := recorder.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got '%s'", contentType)
	}

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%v'", result["status"])
	}
}

func TestHealth_ReportsRegisteredCount(t *testing.T) {
	reg := testRegistry(t)
	if err := reg.Upsert("Alice", []float32{1, 0}); err != nil {
		t.Fatalf("seeding registry: %v", err)
	}
	if err := reg.Upsert("Bob", []float32{0, 1}); err != nil {
		t.Fatalf("seeding registry: %v", err)
	}

	handler := NewHealthHandler(reg)

	recorder := httptest.NewRecorder()
	handler.Status(recorder, httptest.NewRequest("GET", "/health", nil))

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["registered"] != float64(2) {
		t.Errorf("expected registered 2, got %v", result["registered"])
	}
}

func TestHealth_EmptyRegistry(t *testing.T) {
	handler := NewHealthHandler(testRegistry(t))

	recorder := httptest.NewRecorder()
	handler.Status(recorder, httptest.NewRequest("GET", "/health", nil))

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["registered"] != float64(0) {
		t.Errorf("expected registered 0, got %v", result["registered"])
	}
}
