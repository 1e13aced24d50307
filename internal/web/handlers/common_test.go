package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondJSON_SetsContentType(t *testing.T) {
	recorder := httptest.NewRecorder()
	data := map[string]string{"status": "ok"}

	respondJSON(recorder, http.StatusOK, data)

	contentType := recorder.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got '%s'", contentType)
	}
}

func TestRespondJSON_SetsStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Created", http.StatusCreated},
		{"BadRequest", http.StatusBadRequest},
		{"NotFound", http.StatusNotFound},
		{"InternalServerError", http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondJSON(recorder, tc.statusCode, nil)

			if recorder.Code != tc.statusCode {
				t.Errorf("expected status %d, got %d", tc.statusCode, recorder.Code)
			}
		})
	}
}

func TestRespondJSON_NilData(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusOK, nil)

	if recorder.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got '%s'", recorder.Body.String())
	}
}

func TestRespondError_ContainsErrorKey(t *testing.T) {
	recorder := httptest.NewRecorder()
	errorMessage := "something went wrong"

	respondError(recorder, http.StatusBadRequest, errorMessage)

	var result map[string]string
	err := json.Unmarshal(recorder.Body.Bytes(), &result)
	if err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if result["error"] != errorMessage {
		t.Errorf("expected error '%s', got '%s'", errorMessage, result["error"])
	}
}

func TestSanitizeForLog_StripsNewlines(t *testing.T) {
	got := sanitizeForLog("Alice\nBob\rCarol")

	if got != "AliceBobCarol" {
		t.Errorf("sanitizeForLog = '%s'; want 'AliceBobCarol'", got)
	}
}

func TestReadFrame_RawBody(t *testing.T) {
	body := []byte("jpeg-bytes")
	req := httptest.NewRequest("POST", "/recognize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "image/jpeg")

	frame, err := readFrame(req)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if !bytes.Equal(frame, body) {
		t.Errorf("frame = %q; want %q", frame, body)
	}
}

func TestReadFrame_Multipart(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("frame", "frame.jpg")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write([]byte("jpeg-bytes"))
	writer.Close()

	req := httptest.NewRequest("POST", "/recognize", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	frame, err := readFrame(req)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if string(frame) != "jpeg-bytes" {
		t.Errorf("frame = %q; want 'jpeg-bytes'", frame)
	}
}
