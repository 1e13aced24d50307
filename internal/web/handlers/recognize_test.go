package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkovarik/faceattend/internal/detect"
	"github.com/mkovarik/faceattend/internal/pipeline"
)

// fakePipeline records calls and returns canned results.
type fakePipeline struct {
	recognition  *pipeline.Recognition
	recognizeErr error
	enrollErr    error

	lastMark bool
	lastName string
}

func (f *fakePipeline) Recognize(ctx context.Context, frame []byte, mark bool) (*pipeline.Recognition, error) {
	f.lastMark = mark
	if f.recognizeErr != nil {
		return nil, f.recognizeErr
	}
	return f.recognition, nil
}

func (f *fakePipeline) Enroll(ctx context.Context, name string, frame []byte) error {
	f.lastName = name
	return f.enrollErr
}

// frameRequest builds a multipart POST with a "frame" file.
func frameRequest(t *testing.T, url string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("frame", "frame.jpg")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write([]byte("fake-jpeg"))
	writer.Close()

	req := httptest.NewRequest("POST", url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestRecognize_Match(t *testing.T) {
	fake := &fakePipeline{recognition: &pipeline.Recognition{
		Name:     "Alice",
		Distance: 0.23,
		Bounds:   image.Rect(10, 20, 110, 120),
		Crop:     []byte("crop"),
		Marked:   true,
	}}
	handler := NewRecognizeHandler(fake)

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, frameRequest(t, "/recognize"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["name"] != "Alice" {
		t.Errorf("expected name 'Alice', got '%v'", result["name"])
	}
	if result["marked"] != true {
		t.Errorf("expected marked true, got %v", result["marked"])
	}
	if result["no_face"] != false {
		t.Errorf("expected no_face false, got %v", result["no_face"])
	}
	// []byte marshals as base64; the kiosk decodes it into an <img> preview.
	if result["crop"] != "Y3JvcA==" {
		t.Errorf("expected base64 crop 'Y3JvcA==', got %v", result["crop"])
	}
}

func TestRecognize_DefaultsToMarking(t *testing.T) {
	fake := &fakePipeline{recognition: &pipeline.Recognition{Name: "Alice"}}
	handler := NewRecognizeHandler(fake)

	handler.Recognize(httptest.NewRecorder(), frameRequest(t, "/recognize"))

	if !fake.lastMark {
		t.Error("expected mark=true by default")
	}
}

func TestRecognize_PreviewMode(t *testing.T) {
	fake := &fakePipeline{recognition: &pipeline.Recognition{Name: "Alice"}}
	handler := NewRecognizeHandler(fake)

	handler.Recognize(httptest.NewRecorder(), frameRequest(t, "/recognize?mark=false"))

	if fake.lastMark {
		t.Error("expected mark=false for preview requests")
	}
}

func TestRecognize_NoFace(t *testing.T) {
	fake := &fakePipeline{recognizeErr: detect.ErrNoFace}
	handler := NewRecognizeHandler(fake)

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, frameRequest(t, "/recognize"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200 for no-face frame, got %d", recorder.Code)
	}

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["no_face"] != true {
		t.Errorf("expected no_face true, got %v", result["no_face"])
	}
}

func TestRecognize_InvalidFrame(t *testing.T) {
	fake := &fakePipeline{recognizeErr: detect.ErrInvalidFrame}
	handler := NewRecognizeHandler(fake)

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, frameRequest(t, "/recognize"))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid frame, got %d", recorder.Code)
	}
}

func TestRecognize_MissingFrame(t *testing.T) {
	handler := NewRecognizeHandler(&fakePipeline{})

	req := httptest.NewRequest("POST", "/recognize", nil)
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for missing frame, got %d", recorder.Code)
	}
}

func TestRecognize_PipelineFailure(t *testing.T) {
	fake := &fakePipeline{recognizeErr: errors.New("inference crashed")}
	handler := NewRecognizeHandler(fake)

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, frameRequest(t, "/recognize"))

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", recorder.Code)
	}
}

func TestRecognize_NoMatch(t *testing.T) {
	fake := &fakePipeline{recognition: &pipeline.Recognition{NoMatch: true, Bounds: image.Rect(0, 0, 10, 10)}}
	handler := NewRecognizeHandler(fake)

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, frameRequest(t, "/recognize"))

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["no_match"] != true {
		t.Errorf("expected no_match true, got %v", result["no_match"])
	}
	if result["marked"] != false {
		t.Errorf("expected marked false, got %v", result["marked"])
	}
}
