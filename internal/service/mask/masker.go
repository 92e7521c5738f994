// Package mask blanks out image regions that should never reach the detector.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

var ErrMaskSize = errors.New("mask and frame dimensions differ")

// Masker applies a static mask to every frame with a per-channel bitwise AND.
// A nil *Masker passes frames through untouched.
type Masker struct {
	mask *image.NRGBA
}

// New wraps an in-memory mask image.
func New(mask image.Image) *Masker {
	return &Masker{mask: imaging.Clone(mask)}
}

// Load reads the mask from an image file.
func Load(path string) (*Masker, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask %s: %w", path, err)
	}
	return New(img), nil
}

// Size returns the mask dimensions.
func (m *Masker) Size() image.Point {
	return m.mask.Bounds().Size()
}

// Apply returns a new frame where every channel is frame AND mask. Alpha is
// kept opaque so masked pixels become black.
func (m *Masker) Apply(frame image.Image) (*image.RGBA, error) {
	fb := frame.Bounds()
	if m == nil {
		out := image.NewRGBA(fb)
		draw.Draw(out, fb, frame, fb.Min, draw.Src)
		return out, nil
	}
	if fb.Size() != m.Size() {
		return nil, fmt.Errorf("%w: frame %v, mask %v", ErrMaskSize, fb.Size(), m.Size())
	}

	out := image.NewRGBA(fb)
	draw.Draw(out, fb, frame, fb.Min, draw.Src)

	for y := 0; y < fb.Dy(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+fb.Dx()*4]
		mrow := m.mask.Pix[y*m.mask.Stride : y*m.mask.Stride+fb.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			row[i] &= mrow[i]
			row[i+1] &= mrow[i+1]
			row[i+2] &= mrow[i+2]
			row[i+3] = 0xff
		}
	}
	return out, nil
}
