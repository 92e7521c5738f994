package sqlite

import (
	"fmt"
	"sort"
	"strings"

	"rockparser/internal/dto"
	"rockparser/internal/model"
)

// RecordRepository implements repository.RecordRepository for SQLite.
type RecordRepository struct {
	db *DB
}

// NewRecordRepository creates a new SQLite record repository.
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// InsertBatch adds multiple records in a single transaction.
func (r *RecordRepository) InsertBatch(runID string, records []model.Record) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (run_id, frame, object_class, track_id, x1, y1, x2, y2, cx, cy, color, radius)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(runID, rec.Frame, rec.ObjectClass, rec.ID,
			rec.Box.X1, rec.Box.Y1, rec.Box.X2, rec.Box.Y2,
			rec.Center.X, rec.Center.Y, rec.Color, rec.Radius); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return tx.Commit()
}

// GetRecords retrieves records matching the filter in frame order.
func (r *RecordRepository) GetRecords(filter *dto.RecordFilter) ([]model.Record, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)
	query := `
		SELECT frame, object_class, track_id, x1, y1, x2, y2, cx, cy, color, radius
		FROM records
	` + where + " ORDER BY frame, id"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.Frame, &rec.ObjectClass, &rec.ID,
			&rec.Box.X1, &rec.Box.Y1, &rec.Box.X2, &rec.Box.Y2,
			&rec.Center.X, &rec.Center.Y, &rec.Color, &rec.Radius); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetTotalCount returns the number of records matching the filter.
func (r *RecordRepository) GetTotalCount(filter *dto.RecordFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)
	var count int
	if err := r.db.Conn().QueryRow("SELECT COUNT(*) FROM records "+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// GetColors lists the distinct colors seen in a run, or in every run when
// runID is empty.
func (r *RecordRepository) GetColors(runID string) ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := "SELECT DISTINCT color FROM records"
	var args []interface{}
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query += " ORDER BY color"

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query colors: %w", err)
	}
	defer rows.Close()

	var colors []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan color: %w", err)
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

func buildWhere(filter *dto.RecordFilter) (string, []interface{}) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if filter == nil {
		return where, args
	}

	if filter.RunID != "" {
		where += " AND run_id = ?"
		args = append(args, filter.RunID)
	}
	if filter.Color != "" {
		where += " AND color = ?"
		args = append(args, filter.Color)
	}
	if filter.TrackID != 0 {
		where += " AND track_id = ?"
		args = append(args, filter.TrackID)
	}
	if filter.FrameFrom > 0 {
		where += " AND frame >= ?"
		args = append(args, filter.FrameFrom)
	}
	if filter.FrameTo > 0 {
		where += " AND frame <= ?"
		args = append(args, filter.FrameTo)
	}
	return where, args
}

func splitColors(joined string) []string {
	if joined == "" {
		return []string{}
	}
	colors := strings.Split(joined, ",")
	sort.Strings(colors)
	return colors
}
