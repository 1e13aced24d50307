// Package embedding generates unit-norm face embeddings from cropped face
// images using an ONNX model executed through the OpenCV DNN backend.
package embedding

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrModelNotFound is returned when the ONNX model file is absent.
	ErrModelNotFound = errors.New("embedding model file not found")

	// ErrInvalidInput is returned when the face image is absent or undecodable.
	ErrInvalidInput = errors.New("invalid face image")
)

// Embedder runs a face embedding model. The model is loaded once at
// construction (expensive) and reused for every call (cheap); the
// preprocessing configuration is negotiated from the model's declared input
// shape at the same time and never re-derived.
type Embedder struct {
	mu  sync.Mutex
	net gocv.Net
	pre Preprocess
}

// NewEmbedder loads the ONNX model at modelPath and negotiates the
// preprocessing configuration from its declared input tensor shape.
func NewEmbedder(modelPath string) (*Embedder, error) {
	data, err := os.ReadFile(modelPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	}
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	dims, err := inputDims(data)
	if err != nil {
		return nil, fmt.Errorf("inspecting model input shape: %w", err)
	}
	pre := negotiate(dims)

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("loading ONNX model from %s", modelPath)
	}

	return &Embedder{net: net, pre: pre}, nil
}

// Preprocess returns the negotiated preprocessing configuration.
func (e *Embedder) Preprocess() Preprocess {
	return e.pre
}

// Close releases the model.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net.Close()
}

// Embed runs inference on an encoded face image and returns its L2-normalized
// embedding vector.
func (e *Embedder) Embed(imageData []byte) ([]float32, error) {
	if len(imageData) == 0 {
		return nil, ErrInvalidInput
	}
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tensor := tensorize(img, e.pre)

	var sizes []int
	if e.pre.Layout == LayoutNCHW {
		sizes = []int{1, 3, e.pre.Height, e.pre.Width}
	} else {
		sizes = []int{1, e.pre.Height, e.pre.Width, 3}
	}

	blob, err := gocv.NewMatWithSizesFromBytes(sizes, gocv.MatTypeCV32F, floatBytes(tensor))
	if err != nil {
		return nil, fmt.Errorf("building input blob: %w", err)
	}
	defer blob.Close()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	defer out.Close()
	if out.Empty() {
		return nil, errors.New("inference produced no output")
	}

	// The output is a batch of one; strip the batch axis by reading row 0.
	dim := out.Total()
	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		vec[i] = out.GetFloatAt(0, i)
	}

	embedding := l2Normalize(vec)
	if norm(embedding) == 0 {
		return nil, errors.New("inference produced a zero embedding")
	}
	return embedding, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// floatBytes lays out a float32 slice as the little-endian byte buffer
// expected by the DNN input Mat.
func floatBytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}
