package model

// FieldNames is the header of the structured log, in column order.
var FieldNames = []string{"frame", "object_class", "id", "box_coords", "center", "color", "radius"}

// Record is a single persisted row of the structured log.
type Record struct {
	Frame       int     `json:"frame"`
	ObjectClass string  `json:"object_class"`
	ID          int     `json:"id"`
	Box         Box     `json:"box_coords"`
	Center      Point   `json:"center"`
	Color       string  `json:"color"`
	Radius      float64 `json:"radius"`
}
