// Package overlay draws detection geometry onto frames for inspection.
package overlay

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"rockparser/internal/model"
)

// LineWidth of the box and circle outlines.
const LineWidth = 2

// Draw outlines the detection box in red and, when showCircle is set, the
// color sampling circle in green. dst is modified in place.
func Draw(dst *image.RGBA, det model.Detection, showCircle bool) {
	dc := gg.NewContextForRGBA(dst)
	dc.SetLineWidth(LineWidth)

	b := det.Box
	dc.SetRGB(1, 0, 0)
	dc.DrawRectangle(float64(b.X1), float64(b.Y1), float64(b.X2-b.X1), float64(b.Y2-b.Y1))
	dc.Stroke()

	if showCircle {
		dc.SetRGB(0, 1, 0)
		dc.DrawCircle(float64(det.Center.X), float64(det.Center.Y), math.Floor(det.Radius))
		dc.Stroke()
	}
}

// Fit scales img to the largest size that fits inside width x height while
// keeping its aspect ratio. Unlike imaging.Fit it also scales up.
func Fit(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Empty() || width <= 0 || height <= 0 {
		return imaging.Clone(img)
	}
	scale := math.Min(float64(width)/float64(b.Dx()), float64(height)/float64(b.Dy()))
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	return imaging.Resize(img, w, h, imaging.Linear)
}
