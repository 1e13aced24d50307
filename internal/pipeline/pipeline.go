// Package pipeline wires face detection, embedding, matching and the
// attendance ledger into the two end-to-end operations: enrollment and
// recognition.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/mkovarik/faceattend/internal/detect"
	"github.com/mkovarik/faceattend/internal/ledger"
	"github.com/mkovarik/faceattend/internal/match"
	"github.com/mkovarik/faceattend/internal/registry"
)

// Detector locates the primary face in an encoded frame.
type Detector interface {
	Locate(frame []byte) (*detect.FaceRegion, error)
}

// Embedder turns an aligned face crop into a unit-length embedding vector.
type Embedder interface {
	Embed(faceImage []byte) ([]float32, error)
}

// Rebuilder is implemented by match engines that maintain a derived index
// over the registry and need a refresh after enrollment changes.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// Pipeline owns the recognition flow. Safe for concurrent use as long as its
// components are.
type Pipeline struct {
	detector  Detector
	embedder  Embedder
	registry  *registry.Registry
	engine    match.Engine
	ledger    *ledger.Ledger
	threshold float64
}

func New(d Detector, e Embedder, reg *registry.Registry, eng match.Engine, led *ledger.Ledger, threshold float64) *Pipeline {
	return &Pipeline{
		detector:  d,
		embedder:  e,
		registry:  reg,
		engine:    eng,
		ledger:    led,
		threshold: threshold,
	}
}

// Recognition is the outcome of one recognition attempt on a frame. Crop is
// the aligned face image (JPEG, base64 in JSON) so front ends can show the
// detected face next to the verdict.
type Recognition struct {
	Name     string          `json:"name"`
	Distance float64         `json:"distance"`
	Bounds   image.Rectangle `json:"bounds"`
	Crop     []byte          `json:"crop,omitempty"`
	Marked   bool            `json:"marked"`   // attendance row appended by this call
	Repeat   bool            `json:"repeat"`   // identity already marked today
	NoMatch  bool            `json:"no_match"` // face found but nobody within threshold
}

// Enroll detects the face in frame, embeds it and stores the embedding under
// name. Re-enrolling an existing name replaces the stored embedding. When the
// engine keeps a derived index it is rebuilt before returning.
func (p *Pipeline) Enroll(ctx context.Context, name string, frame []byte) error {
	region, err := p.detector.Locate(frame)
	if err != nil {
		return fmt.Errorf("enrolling %q: %w", name, err)
	}

	emb, err := p.embedder.Embed(region.Image)
	if err != nil {
		return fmt.Errorf("embedding face for %q: %w", name, err)
	}

	if err := p.registry.Upsert(name, emb); err != nil {
		return err
	}

	if r, ok := p.engine.(Rebuilder); ok {
		if err := r.Rebuild(ctx); err != nil {
			return fmt.Errorf("rebuilding match index: %w", err)
		}
	}
	return nil
}

// Recognize runs the full chain on one frame: locate, embed, match and, when
// mark is set and an identity was found, record attendance. A frame with no
// face returns detect.ErrNoFace; a face that matches nobody returns a
// Recognition with NoMatch set rather than an error.
func (p *Pipeline) Recognize(ctx context.Context, frame []byte, mark bool) (*Recognition, error) {
	region, err := p.detector.Locate(frame)
	if err != nil {
		return nil, err
	}

	emb, err := p.embedder.Embed(region.Image)
	if err != nil {
		return nil, fmt.Errorf("embedding face: %w", err)
	}

	m, err := p.engine.FindMatch(ctx, emb, p.threshold)
	if err != nil {
		return nil, fmt.Errorf("matching face: %w", err)
	}
	if m == nil {
		return &Recognition{Bounds: region.Bounds, Crop: region.Image, NoMatch: true}, nil
	}

	rec := &Recognition{
		Name:     m.Name,
		Distance: m.Distance,
		Bounds:   region.Bounds,
		Crop:     region.Image,
	}
	if !mark {
		return rec, nil
	}

	marked, err := p.ledger.Mark(m.Name)
	if err != nil {
		return nil, fmt.Errorf("marking attendance for %q: %w", m.Name, err)
	}
	rec.Marked = marked
	rec.Repeat = !marked
	return rec, nil
}

// IsNoFace reports whether err means the frame contained no detectable face.
func IsNoFace(err error) bool {
	return errors.Is(err, detect.ErrNoFace)
}
