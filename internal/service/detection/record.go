package detection

import (
	"errors"
	"fmt"

	"rockparser/internal/model"
)

var ErrUnknownClass = errors.New("class index not in class list")

// Filter selects the detections that become records.
type Filter struct {
	ClassNames      []string
	ClassOfInterest int
	Threshold       float64
}

// Accept reports whether det is of the class of interest with enough
// confidence.
func (f Filter) Accept(det model.Detection) bool {
	return det.ObjectClass == f.ClassOfInterest && det.Confidence >= f.Threshold
}

// Build returns the record for det, or ok=false when det is filtered out.
// det must already carry its geometry.
func (f Filter) Build(det model.Detection, color string, frame int) (rec model.Record, ok bool, err error) {
	if !f.Accept(det) {
		return model.Record{}, false, nil
	}
	if det.ObjectClass < 0 || det.ObjectClass >= len(f.ClassNames) {
		return model.Record{}, false, fmt.Errorf("%w: %d", ErrUnknownClass, det.ObjectClass)
	}

	return model.Record{
		Frame:       frame,
		ObjectClass: f.ClassNames[det.ObjectClass],
		ID:          det.TrackID,
		Box:         det.Box,
		Center:      det.Center,
		Color:       color,
		Radius:      det.Radius,
	}, true, nil
}
