package model

// Point is an integer pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Box is an axis-aligned bounding box in pixel coordinates.
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right one.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Detection is one detector box for one frame, enriched with the geometry
// derived from it.
type Detection struct {
	ObjectClass int     `json:"object_class"`
	Confidence  float64 `json:"confidence"`
	TrackID     int     `json:"id"`
	Box         Box     `json:"box"`

	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}
