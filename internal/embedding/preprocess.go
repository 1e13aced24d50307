package embedding

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// tensorize converts an image to the float32 input tensor for one inference
// call: resize to the expected spatial dims if they differ, scale pixel
// intensities to [0,1], and order the axes per the negotiated layout. The
// returned slice is the content of a batch of one.
func tensorize(img image.Image, p Preprocess) []float32 {
	bounds := img.Bounds()
	if bounds.Dx() != p.Width || bounds.Dy() != p.Height {
		img = resizeImage(img, p.Width, p.Height)
		bounds = img.Bounds()
	}

	tensor := make([]float32, 3*p.Height*p.Width)
	plane := p.Height * p.Width
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rgb := [3]float32{
				float32(r>>8) / 255.0,
				float32(g>>8) / 255.0,
				float32(b>>8) / 255.0,
			}
			for c := 0; c < 3; c++ {
				if p.Layout == LayoutNCHW {
					tensor[c*plane+y*p.Width+x] = rgb[c]
				} else {
					tensor[(y*p.Width+x)*3+c] = rgb[c]
				}
			}
		}
	}
	return tensor
}

// resizeImage scales an image to the specified dimensions.
func resizeImage(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// l2Normalize scales v to unit Euclidean norm in place and returns it.
// A zero vector is returned unchanged.
func l2Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
