package detect

import (
	"image"
	"testing"
)

func TestLargestRect_PicksMaxArea(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 20, 20),   // area 400
		image.Rect(50, 50, 80, 80), // area 900
		image.Rect(10, 10, 25, 25), // area 225
	}

	got := largestRect(rects)

	if got != image.Rect(50, 50, 80, 80) {
		t.Errorf("largestRect = %v; want the 900-area rectangle", got)
	}
}

func TestLargestRect_OverlappingCandidates(t *testing.T) {
	// Two overlapping detections of areas 900 and 400; the larger wins.
	rects := []image.Rectangle{
		image.Rect(0, 0, 20, 20),   // area 400
		image.Rect(10, 10, 40, 40), // area 900, overlaps the first
	}

	got := largestRect(rects)

	if got.Dx()*got.Dy() != 900 {
		t.Errorf("largestRect area = %d; want 900", got.Dx()*got.Dy())
	}
}

func TestLargestRect_SingleCandidate(t *testing.T) {
	rects := []image.Rectangle{image.Rect(5, 5, 30, 30)}

	if got := largestRect(rects); got != rects[0] {
		t.Errorf("largestRect = %v; want %v", got, rects[0])
	}
}

func TestLargestRect_TieKeepsFirst(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 10, 10),
		image.Rect(90, 90, 100, 100),
	}

	if got := largestRect(rects); got != rects[0] {
		t.Errorf("largestRect tie = %v; want first candidate %v", got, rects[0])
	}
}

func TestLocate_EmptyFrame(t *testing.T) {
	l := &Locator{params: Params{ScaleFactor: 1.1, MinNeighbors: 5, MinSize: 30, CropSize: 160}}

	if _, err := l.Locate(nil); err != ErrInvalidFrame {
		t.Errorf("Locate(nil) = %v; want ErrInvalidFrame", err)
	}
}
