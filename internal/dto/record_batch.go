package dto

import "rockparser/internal/model"

// RecordBatch is the live-feed message sent to viewers after every flush.
type RecordBatch struct {
	RunID   string         `json:"run_id"`
	Source  string         `json:"source"`
	Records []model.Record `json:"records"`
}
