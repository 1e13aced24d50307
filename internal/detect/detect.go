// Package detect finds the most prominent face in a camera frame using a
// Haar cascade classifier.
package detect

import (
	"errors"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

var (
	// ErrNoFace is returned when no face candidate is found in the frame.
	// Expected outcome of normal operation; callers re-prompt.
	ErrNoFace = errors.New("no face detected")

	// ErrInvalidFrame is returned when the frame cannot be decoded.
	ErrInvalidFrame = errors.New("invalid frame image")
)

// Params are the fixed cascade parameters, exposed as configuration.
type Params struct {
	ScaleFactor  float64 // pyramid scale step, e.g. 1.1
	MinNeighbors int     // candidate merge threshold, e.g. 5
	MinSize      int     // minimum face side in pixels, e.g. 30
	CropSize     int     // output crop side in pixels, e.g. 160
}

// FaceRegion is the detection result: a fixed-size JPEG crop of the winning
// face and its unscaled bounding box in the source frame's coordinates.
type FaceRegion struct {
	Image  []byte          // JPEG-encoded crop, CropSize x CropSize
	Bounds image.Rectangle // bounding box in source frame coordinates
}

// Locator detects faces with an OpenCV Haar cascade. Construct once; the
// classifier load is the expensive part.
type Locator struct {
	classifier gocv.CascadeClassifier
	params     Params
}

// NewLocator loads the Haar cascade from cascadePath. A missing or
// unloadable cascade is a construction failure, not a per-call one.
func NewLocator(cascadePath string, params Params) (*Locator, error) {
	if _, err := os.Stat(cascadePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("cascade file not found: %s", cascadePath)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load cascade from %s", cascadePath)
	}
	return &Locator{classifier: classifier, params: params}, nil
}

// Close releases the classifier.
func (l *Locator) Close() error {
	return l.classifier.Close()
}

// Locate finds the largest face in an encoded color frame. Returns ErrNoFace
// when the cascade yields zero candidates. Pure with respect to the frame:
// no state is kept between calls.
func (l *Locator) Locate(frameData []byte) (*FaceRegion, error) {
	if len(frameData) == 0 {
		return nil, ErrInvalidFrame
	}

	frame, err := gocv.IMDecode(frameData, gocv.IMReadColor)
	if err != nil || frame.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	defer frame.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	minSize := image.Pt(l.params.MinSize, l.params.MinSize)
	candidates := l.classifier.DetectMultiScaleWithParams(
		gray, l.params.ScaleFactor, l.params.MinNeighbors, 0, minSize, image.Point{},
	)
	if len(candidates) == 0 {
		return nil, ErrNoFace
	}

	// The primary subject is assumed to be the largest face in frame.
	winner := largestRect(candidates)

	roi := frame.Region(winner)
	defer roi.Close()

	crop := gocv.NewMat()
	defer crop.Close()
	gocv.Resize(roi, &crop, image.Pt(l.params.CropSize, l.params.CropSize), 0, 0, gocv.InterpolationLinear)

	encoded, err := gocv.IMEncode(gocv.JPEGFileExt, crop)
	if err != nil {
		return nil, fmt.Errorf("encoding face crop: %w", err)
	}
	defer encoded.Close()

	return &FaceRegion{
		Image:  append([]byte(nil), encoded.GetBytes()...),
		Bounds: winner,
	}, nil
}

// largestRect returns the rectangle with maximum area. Ties keep the earlier
// candidate.
func largestRect(rects []image.Rectangle) image.Rectangle {
	best := rects[0]
	bestArea := best.Dx() * best.Dy()
	for _, r := range rects[1:] {
		if area := r.Dx() * r.Dy(); area > bestArea {
			best = r
			bestArea = area
		}
	}
	return best
}
