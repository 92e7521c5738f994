// Package color classifies the color of a detected object by sampling the
// pixels inside its sampling circle.
package color

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/sampleuv"

	"rockparser/internal/model"
)

var ErrEmptySample = errors.New("sampling circle has no pixels inside the image")

// Sampler picks pixels inside a circle and names their median color.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	palette Palette
	src     rand.Source
}

// NewSampler creates a Sampler over palette. The seed makes the drawn pixels
// reproducible; it has no effect on uniformly colored regions.
func NewSampler(palette Palette, seed uint64) *Sampler {
	return &Sampler{
		palette: palette,
		src:     rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
}

// Classify returns the palette name nearest to the median color of up to n
// pixels drawn without replacement from the circle of radius around center.
func (s *Sampler) Classify(img image.Image, center model.Point, radius, n int) (string, error) {
	pixels := s.Sample(img, center, radius, n)
	if len(pixels) == 0 {
		return "", fmt.Errorf("%w: center (%d,%d) radius %d", ErrEmptySample, center.X, center.Y, radius)
	}

	median, err := Median(pixels)
	if err != nil {
		return "", err
	}
	return s.palette.Nearest(median).Name, nil
}

// Sample returns at most n distinct pixel colors from inside the circle.
func (s *Sampler) Sample(img image.Image, center model.Point, radius, n int) []colorful.Color {
	points := CirclePoints(img.Bounds(), center, radius)
	if len(points) == 0 || n <= 0 {
		return nil
	}

	if len(points) > n {
		idxs := make([]int, n)
		sampleuv.WithoutReplacement(idxs, len(points), s.src)
		chosen := make([]image.Point, n)
		for i, idx := range idxs {
			chosen[i] = points[idx]
		}
		points = chosen
	}

	pixels := make([]colorful.Color, len(points))
	for i, p := range points {
		r, g, b, _ := img.At(p.X, p.Y).RGBA()
		pixels[i] = colorful.Color{
			R: float64(r>>8) / 255,
			G: float64(g>>8) / 255,
			B: float64(b>>8) / 255,
		}
	}
	return pixels
}

// CirclePoints lists the pixels with (x-cx)²+(y-cy)² <= r², clipped to
// bounds, in row-major order.
func CirclePoints(bounds image.Rectangle, center model.Point, radius int) []image.Point {
	if radius < 0 {
		return nil
	}
	area := image.Rect(center.X-radius, center.Y-radius, center.X+radius+1, center.Y+radius+1).Intersect(bounds)

	points := make([]image.Point, 0, area.Dx()*area.Dy())
	r2 := radius * radius
	for y := area.Min.Y; y < area.Max.Y; y++ {
		dy := y - center.Y
		for x := area.Min.X; x < area.Max.X; x++ {
			dx := x - center.X
			if dx*dx+dy*dy <= r2 {
				points = append(points, image.Pt(x, y))
			}
		}
	}
	return points
}

// Median reduces pixels to their per-channel median.
func Median(pixels []colorful.Color) (colorful.Color, error) {
	rs := make(stats.Float64Data, len(pixels))
	gs := make(stats.Float64Data, len(pixels))
	bs := make(stats.Float64Data, len(pixels))
	for i, p := range pixels {
		rs[i], gs[i], bs[i] = p.R, p.G, p.B
	}

	var out colorful.Color
	var err error
	if out.R, err = stats.Median(rs); err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %v", ErrEmptySample, err)
	}
	if out.G, err = stats.Median(gs); err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %v", ErrEmptySample, err)
	}
	if out.B, err = stats.Median(bs); err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %v", ErrEmptySample, err)
	}
	return out, nil
}
