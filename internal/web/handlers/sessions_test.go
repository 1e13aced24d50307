package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionCurrent_NoneActive(t *testing.T) {
	handler := NewSessionHandler(testLedger(t))

	recorder := httptest.NewRecorder()
	handler.Current(recorder, httptest.NewRequest("GET", "/sessions/current", nil))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status 404 with no session, got %d", recorder.Code)
	}
}

func TestSessionStart_ReturnsID(t *testing.T) {
	handler := NewSessionHandler(testLedger(t))

	recorder := httptest.NewRecorder()
	handler.Start(recorder, httptest.NewRequest("POST", "/sessions", nil))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", recorder.Code)
	}

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["session_id"] == "" || result["session_id"] == nil {
		t.Error("expected non-empty session_id")
	}
}

func TestSessionStart_ReplacesPrevious(t *testing.T) {
	handler := NewSessionHandler(testLedger(t))

	first := httptest.NewRecorder()
	handler.Start(first, httptest.NewRequest("POST", "/sessions", nil))
	second := httptest.NewRecorder()
	handler.Start(second, httptest.NewRequest("POST", "/sessions", nil))

	var a, b map[string]any
	json.Unmarshal(first.Body.Bytes(), &a)
	json.Unmarshal(second.Body.Bytes(), &b)

	if a["session_id"] == b["session_id"] {
		t.Error("expected a fresh session_id for each start")
	}
}

func TestSessionCurrent_AfterStart(t *testing.T) {
	handler := NewSessionHandler(testLedger(t))

	started := httptest.NewRecorder()
	handler.Start(started, httptest.NewRequest("POST", "/sessions", nil))

	current := httptest.NewRecorder()
	handler.Current(current, httptest.NewRequest("GET", "/sessions/current", nil))

	if current.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", current.Code)
	}

	var a, b map[string]any
	json.Unmarshal(started.Body.Bytes(), &a)
	json.Unmarshal(current.Body.Bytes(), &b)

	if a["session_id"] != b["session_id"] {
		t.Errorf("current session '%v' does not match started '%v'", b["session_id"], a["session_id"])
	}
}
