package dto

// RawBox is a detector box as produced by a detector adapter, before it is
// converted into a model.Detection. Coordinates are floating point pixels and
// confidence is unrounded.
type RawBox struct {
	ClassID    int
	Confidence float32
	TrackID    int
	X1         float32
	Y1         float32
	X2         float32
	Y2         float32
}
