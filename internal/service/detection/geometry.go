// Package detection turns detector boxes into typed detections and records.
package detection

import (
	"math"

	"rockparser/internal/dto"
	"rockparser/internal/model"
)

// FromRaw converts a detector box into a Detection. This is the only place
// that interprets detector output; everything downstream uses model types.
//
// Confidence is rounded up to two decimals (in float32, so 0.8 stays 0.8)
// and coordinates are truncated to whole pixels.
func FromRaw(raw dto.RawBox) model.Detection {
	return model.Detection{
		ObjectClass: raw.ClassID,
		Confidence:  math.Ceil(float64(raw.Confidence*100)) / 100,
		TrackID:     raw.TrackID,
		Box: model.Box{
			X1: int(raw.X1),
			Y1: int(raw.Y1),
			X2: int(raw.X2),
			Y2: int(raw.Y2),
		},
	}
}

// Extract fills in the center and sampling radius of det. Malformed boxes
// are accepted as they are.
func Extract(det model.Detection) model.Detection {
	b := det.Box
	det.Center = model.Point{
		X: floorDiv(b.X1+b.X2, 2),
		Y: floorDiv(b.Y1+b.Y2, 2),
	}
	det.Radius = float64(b.Y2-b.Y1) / 2
	return det
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
