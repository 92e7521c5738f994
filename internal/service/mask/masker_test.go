package mask

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// halfMask keeps the left half of the image.
func halfMask(w, h int) *image.RGBA {
	img := solid(w, h, color.Black)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestApply_ZeroesMaskedRegion(t *testing.T) {
	frame := solid(8, 4, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	m := New(halfMask(8, 4))

	out, err := m.Apply(frame)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, out.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(6, 1))
	// The input frame is not modified.
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, frame.RGBAAt(6, 1))
}

func TestApply_IsBitwise(t *testing.T) {
	frame := solid(2, 2, color.RGBA{R: 0xF0, G: 0x0F, B: 0xAA, A: 255})
	m := New(solid(2, 2, color.RGBA{R: 0x3C, G: 0xFF, B: 0x0F, A: 255}))

	out, err := m.Apply(frame)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x30, G: 0x0F, B: 0x0A, A: 255}, out.RGBAAt(0, 0))
}

func TestApply_SizeMismatch(t *testing.T) {
	m := New(halfMask(8, 4))

	_, err := m.Apply(solid(4, 8, color.White))
	assert.ErrorIs(t, err, ErrMaskSize)
}

func TestApply_NilMaskerCopiesFrame(t *testing.T) {
	var m *Masker
	frame := solid(3, 3, color.RGBA{R: 9, G: 8, B: 7, A: 255})

	out, err := m.Apply(frame)
	require.NoError(t, err)
	assert.Equal(t, frame.Pix, out.Pix)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask_a.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, halfMask(6, 2)))
	require.NoError(t, f.Close())

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(6, 2), m.Size())

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
