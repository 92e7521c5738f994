package repository

import "rockparser/internal/model"

// Mirror copies every flushed batch of one run into a RecordRepository.
type Mirror struct {
	records RecordRepository
	runID   string
}

func NewMirror(records RecordRepository, runID string) *Mirror {
	return &Mirror{records: records, runID: runID}
}

// WriteRecords stores records under the mirror's run.
func (m *Mirror) WriteRecords(records []model.Record) error {
	return m.records.InsertBatch(m.runID, records)
}
