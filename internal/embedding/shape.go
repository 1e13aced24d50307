package embedding

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Layout is the tensor axis order the model expects.
type Layout string

const (
	// LayoutNCHW is channel-first: (batch, channels, height, width).
	LayoutNCHW Layout = "NCHW"
	// LayoutNHWC is channel-last: (batch, height, width, channels).
	LayoutNHWC Layout = "NHWC"
)

// Preprocess is the immutable preprocessing configuration negotiated once at
// model load time and applied to every inference call.
type Preprocess struct {
	Layout Layout
	Height int
	Width  int
}

// ONNX wire format field numbers, from onnx.proto.
const (
	fieldModelGraph    = 7  // ModelProto.graph
	fieldGraphInput    = 11 // GraphProto.input
	fieldValueInfoType = 2  // ValueInfoProto.type
	fieldTypeTensor    = 1  // TypeProto.tensor_type
	fieldTensorShape   = 2  // TypeProto.Tensor.shape
	fieldShapeDim      = 1  // TensorShapeProto.dim
	fieldDimValue      = 1  // TensorShapeProto.Dimension.dim_value
)

var errNoInputShape = errors.New("model declares no input tensor shape")

// messageField returns the payload of the first length-delimited occurrence
// of field num in the encoded message.
func messageField(b []byte, num protowire.Number) ([]byte, error) {
	for len(b) > 0 {
		fieldNum, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		if typ == protowire.BytesType {
			payload, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			if fieldNum == num {
				return payload, nil
			}
			b = b[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(fieldNum, typ, b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil, errNoInputShape
}

// inputDims extracts the declared shape of the model's first graph input by
// walking the raw protobuf: ModelProto.graph.input[0].type.tensor_type.shape.
// Dynamic or symbolic dimensions come back as 0.
func inputDims(model []byte) ([]int64, error) {
	graph, err := messageField(model, fieldModelGraph)
	if err != nil {
		return nil, fmt.Errorf("reading model graph: %w", err)
	}
	input, err := messageField(graph, fieldGraphInput)
	if err != nil {
		return nil, fmt.Errorf("reading graph input: %w", err)
	}
	typeInfo, err := messageField(input, fieldValueInfoType)
	if err != nil {
		return nil, fmt.Errorf("reading input type: %w", err)
	}
	tensor, err := messageField(typeInfo, fieldTypeTensor)
	if err != nil {
		return nil, fmt.Errorf("reading tensor type: %w", err)
	}
	shape, err := messageField(tensor, fieldTensorShape)
	if err != nil {
		return nil, fmt.Errorf("reading tensor shape: %w", err)
	}

	var dims []int64
	b := shape
	for len(b) > 0 {
		fieldNum, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		if fieldNum == fieldShapeDim && typ == protowire.BytesType {
			dim, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			dims = append(dims, dimValue(dim))
			continue
		}

		n = protowire.ConsumeFieldValue(fieldNum, typ, b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
	}
	if len(dims) == 0 {
		return nil, errNoInputShape
	}
	return dims, nil
}

// dimValue returns the concrete dim_value of a Dimension message, or 0 when
// the dimension is symbolic (dim_param) or absent.
func dimValue(b []byte) int64 {
	for len(b) > 0 {
		fieldNum, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0
		}
		b = b[n:]

		if fieldNum == fieldDimValue && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0
			}
			return int64(v)
		}

		n = protowire.ConsumeFieldValue(fieldNum, typ, b)
		if n < 0 {
			return 0
		}
		b = b[n:]
	}
	return 0
}

// Fallback spatial dims for models that declare dynamic sizes. Channel-first
// models default larger than channel-last ones.
const (
	defaultSizeNCHW = 368
	defaultSizeNHWC = 160
)

// negotiate derives the preprocessing configuration from the declared input
// dims. Channel-first is assumed when axis 1 carries the channel count (1 or
// 3); otherwise channel-last. Dynamic spatial dims fall back to the layout's
// default size.
func negotiate(dims []int64) Preprocess {
	p := Preprocess{Layout: LayoutNCHW, Height: defaultSizeNCHW, Width: defaultSizeNCHW}
	if len(dims) != 4 {
		return p
	}

	if dims[1] == 1 || dims[1] == 3 {
		// (batch, channels, height, width)
		if dims[2] > 0 {
			p.Height = int(dims[2])
		}
		if dims[3] > 0 {
			p.Width = int(dims[3])
		}
		return p
	}

	// (batch, height, width, channels)
	p.Layout = LayoutNHWC
	p.Height, p.Width = defaultSizeNHWC, defaultSizeNHWC
	if dims[1] > 0 {
		p.Height = int(dims[1])
	}
	if dims[2] > 0 {
		p.Width = int(dims[2])
	}
	return p
}
