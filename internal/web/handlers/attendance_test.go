package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mkovarik/faceattend/internal/ledger"
)

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	led, err := ledger.New(filepath.Join(t.TempDir(), "attendance.csv"))
	if err != nil {
		t.Fatalf("creating ledger: %v", err)
	}
	return led
}

func markAt(t *testing.T, led *ledger.Ledger, name, date, clock string) {
	t.Helper()

	ts, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
	if err != nil {
		t.Fatalf("parsing test time: %v", err)
	}
	led.SetClock(func() time.Time { return ts })
	if _, err := led.Mark(name); err != nil {
		t.Fatalf("marking %s: %v", name, err)
	}
}

func TestAttendanceList_Empty(t *testing.T) {
	handler := NewAttendanceHandler(testLedger(t))

	req := httptest.NewRequest("GET", "/attendance", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var result struct {
		Records []ledger.Record `json:"records"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("expected count 0, got %d", result.Count)
	}
}

func TestAttendanceList_ReturnsRecords(t *testing.T) {
	led := testLedger(t)
	markAt(t, led, "Alice", "2024-03-05", "08:15:30")
	markAt(t, led, "Bob", "2024-03-05", "08:20:00")

	handler := NewAttendanceHandler(led)

	req := httptest.NewRequest("GET", "/attendance", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	var result struct {
		Records []ledger.Record `json:"records"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if result.Count != 2 {
		t.Fatalf("expected count 2, got %d", result.Count)
	}
	// Newest first.
	if result.Records[0].Name != "Bob" {
		t.Errorf("expected Bob first, got '%s'", result.Records[0].Name)
	}
}

func TestAttendanceList_DateFilter(t *testing.T) {
	led := testLedger(t)
	markAt(t, led, "Alice", "2024-03-05", "08:15:30")
	markAt(t, led, "Alice", "2024-03-06", "08:05:00")

	handler := NewAttendanceHandler(led)

	req := httptest.NewRequest("GET", "/attendance?date=2024-03-06", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	var result struct {
		Records []ledger.Record `json:"records"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if result.Records[0].Date != "2024-03-06" {
		t.Errorf("expected date 2024-03-06, got '%s'", result.Records[0].Date)
	}
}

func TestAttendanceList_NameFilter(t *testing.T) {
	led := testLedger(t)
	markAt(t, led, "Alice", "2024-03-05", "08:15:30")
	markAt(t, led, "Bob", "2024-03-05", "08:20:00")

	handler := NewAttendanceHandler(led)

	req := httptest.NewRequest("GET", "/attendance?name=ali", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	var result struct {
		Records []ledger.Record `json:"records"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if len(result.Records) != 1 || result.Records[0].Name != "Alice" {
		t.Errorf("expected only Alice, got %+v", result.Records)
	}
}

func TestAttendanceExport_ServesCSV(t *testing.T) {
	led := testLedger(t)
	markAt(t, led, "Alice", "2024-03-05", "08:15:30")

	handler := NewAttendanceHandler(led)

	req := httptest.NewRequest("GET", "/attendance/export", nil)
	recorder := httptest.NewRecorder()
	handler.Export(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected Content-Type 'text/csv', got '%s'", ct)
	}

	body := recorder.Body.String()
	if !strings.HasPrefix(body, "Name,Date,Time") {
		t.Errorf("expected CSV header, got '%s'", body)
	}
	if !strings.Contains(body, "Alice,2024-03-05,08:15:30") {
		t.Errorf("expected Alice's record in export, got '%s'", body)
	}
}
