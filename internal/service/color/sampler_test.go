package color

import (
	"image"
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rockparser/internal/model"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCirclePoints(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	assert.Equal(t, []image.Point{{X: 50, Y: 50}}, CirclePoints(bounds, model.Point{X: 50, Y: 50}, 0))
	assert.Len(t, CirclePoints(bounds, model.Point{X: 50, Y: 50}, 1), 5)
	assert.Len(t, CirclePoints(bounds, model.Point{X: 50, Y: 50}, 2), 13)
	assert.Empty(t, CirclePoints(bounds, model.Point{X: 50, Y: 50}, -1))
}

func TestCirclePoints_ClippedToBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	corner := CirclePoints(bounds, model.Point{X: 0, Y: 0}, 2)
	assert.Len(t, corner, 6)
	for _, p := range corner {
		assert.True(t, p.In(bounds), "point %v outside bounds", p)
	}

	assert.Empty(t, CirclePoints(bounds, model.Point{X: -50, Y: -50}, 10))
}

func TestSample_NeverExceedsRequestedCount(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	s := NewSampler(RockPalette(), 1)
	center := model.Point{X: 32, Y: 32}

	pixels := s.Sample(img, center, 10, 50)
	require.Len(t, pixels, 50)

	// Every pixel has a distinct (x, y) encoding, so duplicates mean replacement.
	seen := make(map[colorful.Color]bool)
	for _, p := range pixels {
		assert.False(t, seen[p], "pixel %v sampled twice", p)
		seen[p] = true
	}

	small := s.Sample(img, center, 1, 50)
	assert.Len(t, small, 5)
}

func TestClassify_UniformRegionIsSeedIndependent(t *testing.T) {
	img := createInMemoryImage(80, 80, color.RGBA{R: 230, G: 30, B: 20, A: 255})

	for seed := uint64(0); seed < 10; seed++ {
		s := NewSampler(RockPalette(), seed)
		name, err := s.Classify(img, model.Point{X: 40, Y: 40}, 15, 50)
		require.NoError(t, err)
		assert.Equal(t, "red", name)
	}
}

func TestClassify_MedianIgnoresOutliers(t *testing.T) {
	img := createInMemoryImage(40, 40, color.RGBA{R: 250, G: 240, B: 10, A: 255})
	// A specular highlight and a shadow inside the circle.
	img.Set(20, 20, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(21, 20, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	s := NewSampler(RockPalette(), 7)
	name, err := s.Classify(img, model.Point{X: 20, Y: 20}, 3, 100)
	require.NoError(t, err)
	assert.Equal(t, "yellow", name)
}

func TestClassify_EmptySample(t *testing.T) {
	img := createInMemoryImage(10, 10, color.Black)
	s := NewSampler(RockPalette(), 1)

	_, err := s.Classify(img, model.Point{X: 100, Y: 100}, 3, 50)
	assert.ErrorIs(t, err, ErrEmptySample)
}

func TestClassify_Palettes(t *testing.T) {
	tests := []struct {
		name    string
		palette string
		color   color.RGBA
		want    string
	}{
		{"rock red", "rock", color.RGBA{R: 200, G: 40, B: 40, A: 255}, "red"},
		{"rock yellow", "rock", color.RGBA{R: 220, G: 200, B: 60, A: 255}, "yellow"},
		{"html4 navy", "html4", color.RGBA{R: 0, G: 0, B: 120, A: 255}, "navy"},
		{"html4 silver", "html4", color.RGBA{R: 190, G: 190, B: 190, A: 255}, "silver"},
		{"svg exact match", "svg", color.RGBA{R: 0xff, G: 0x63, B: 0x47, A: 255}, "tomato"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			palette, err := PaletteByName(tt.palette)
			require.NoError(t, err)

			img := createInMemoryImage(30, 30, tt.color)
			name, err := NewSampler(palette, 3).Classify(img, model.Point{X: 15, Y: 15}, 5, 50)
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestPalette_NearestTieGoesToFirst(t *testing.T) {
	// Orange sits exactly between red and yellow.
	between := colorful.Color{R: 1, G: 0.5, B: 0}
	assert.Equal(t, "red", RockPalette().Nearest(between).Name)

	reversed := Palette{RockPalette()[1], RockPalette()[0]}
	assert.Equal(t, "yellow", reversed.Nearest(between).Name)
}

func TestPaletteByName(t *testing.T) {
	p, err := PaletteByName("")
	require.NoError(t, err)
	assert.Len(t, p, 2)

	p, err = PaletteByName("html4")
	require.NoError(t, err)
	assert.Len(t, p, 16)

	p, err = PaletteByName("svg")
	require.NoError(t, err)
	assert.Greater(t, len(p), 140)

	_, err = PaletteByName("sepia")
	assert.ErrorIs(t, err, ErrUnknownPalette)
}

func TestMedian(t *testing.T) {
	m, err := Median([]colorful.Color{
		{R: 0.1, G: 0.9, B: 0.5},
		{R: 0.3, G: 0.1, B: 0.5},
		{R: 0.2, G: 0.5, B: 0.0},
		{R: 0.4, G: 0.7, B: 1.0},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, m.R, 1e-9)
	assert.InDelta(t, 0.6, m.G, 1e-9)
	assert.InDelta(t, 0.5, m.B, 1e-9)

	_, err = Median(nil)
	assert.ErrorIs(t, err, ErrEmptySample)
}
