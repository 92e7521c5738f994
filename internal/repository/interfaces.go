package repository

import (
	"time"

	"rockparser/internal/dto"
	"rockparser/internal/model"
)

// RunRepository defines the interface for parser run bookkeeping.
type RunRepository interface {
	// Create operations
	CreateRun(source string, startedAt time.Time) (string, error)

	// Read operations
	GetRun(id string) (*dto.RunInfo, error)
	ListRuns() ([]dto.RunInfo, error)

	// Delete operations
	DeleteRun(id string) error
}

// RecordRepository defines the interface for record data operations.
type RecordRepository interface {
	// Create operations
	InsertBatch(runID string, records []model.Record) error

	// Read operations
	GetRecords(filter *dto.RecordFilter) ([]model.Record, error)
	GetTotalCount(filter *dto.RecordFilter) (int, error)
	GetColors(runID string) ([]string, error)
}
