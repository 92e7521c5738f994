package dto

// RecordFilter narrows the records returned from the store.
type RecordFilter struct {
	RunID     string
	Color     string
	TrackID   int // 0 matches any id
	FrameFrom int
	FrameTo   int // 0 means no upper bound
	Limit     int
	Offset    int
}
