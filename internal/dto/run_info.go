package dto

import (
	"encoding/json"
	"time"
)

// RunInfo summarizes one parser run stored in the database.
type RunInfo struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	StartedAt time.Time `json:"startedAt"`
	Records   int       `json:"records"`
	Colors    []string  `json:"colors"`
}

// MarshalJSON formats StartedAt as a short local timestamp.
func (r RunInfo) MarshalJSON() ([]byte, error) {
	type Alias RunInfo
	return json.Marshal(&struct {
		StartedAt string `json:"startedAt"`
		Alias
	}{
		StartedAt: r.StartedAt.Format("02-01-2006 15:04"),
		Alias:     (Alias)(r),
	})
}
