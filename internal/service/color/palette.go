package color

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var ErrUnknownPalette = errors.New("unknown palette")

// Swatch is a named palette entry.
type Swatch struct {
	Name  string
	Color colorful.Color
}

// Palette is an ordered list of swatches. Order decides ties.
type Palette []Swatch

// html4Names are the sixteen HTML 4.01 color keywords.
var html4Names = []string{
	"aqua", "black", "blue", "fuchsia", "gray", "green", "lime", "maroon",
	"navy", "olive", "purple", "red", "silver", "teal", "white", "yellow",
}

// RockPalette holds the two curling stone handle colors.
func RockPalette() Palette {
	return Palette{
		{Name: "red", Color: fromRGBA(color.RGBA{R: 255, A: 255})},
		{Name: "yellow", Color: fromRGBA(color.RGBA{R: 255, G: 255, A: 255})},
	}
}

// HTML4Palette holds the basic HTML 4 named colors.
func HTML4Palette() Palette {
	return namedPalette(html4Names)
}

// SVGPalette holds every SVG 1.1 named color, in alphabetical order.
func SVGPalette() Palette {
	return namedPalette(colornames.Names)
}

// PaletteByName resolves a configured palette name.
func PaletteByName(name string) (Palette, error) {
	switch name {
	case "", "rock":
		return RockPalette(), nil
	case "html4":
		return HTML4Palette(), nil
	case "svg", "css":
		return SVGPalette(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
}

// Nearest returns the swatch closest to c by Euclidean distance over 0-255
// channel values. The first of several equally close swatches wins.
func (p Palette) Nearest(c colorful.Color) Swatch {
	best := p[0]
	bestDistance := c.DistanceRgb(best.Color)
	for _, s := range p[1:] {
		if d := c.DistanceRgb(s.Color); d < bestDistance {
			best, bestDistance = s, d
		}
	}
	return best
}

func namedPalette(names []string) Palette {
	p := make(Palette, 0, len(names))
	for _, name := range names {
		p = append(p, Swatch{Name: name, Color: fromRGBA(colornames.Map[name])})
	}
	return p
}

func fromRGBA(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
