package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rockparser/internal/dto"
)

// RunRepository implements repository.RunRepository for SQLite.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new SQLite run repository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun registers a new run and returns its generated id.
func (r *RunRepository) CreateRun(source string, startedAt time.Time) (string, error) {
	r.db.Lock()
	defer r.db.Unlock()

	id := uuid.NewString()
	_, err := r.db.Conn().Exec(`
		INSERT INTO runs (id, source, started_at)
		VALUES (?, ?, ?)
	`, id, source, startedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// GetRun retrieves a run by its id, or nil when it does not exist.
func (r *RunRepository) GetRun(id string) (*dto.RunInfo, error) {
	runs, err := r.query(`WHERE r.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// ListRuns returns every run, newest first.
func (r *RunRepository) ListRuns() ([]dto.RunInfo, error) {
	return r.query("")
}

func (r *RunRepository) query(where string, args ...interface{}) ([]dto.RunInfo, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT r.id, r.source, r.started_at, COUNT(rec.id), COALESCE(GROUP_CONCAT(DISTINCT rec.color), '')
		FROM runs r
		LEFT JOIN records rec ON rec.run_id = r.id
		`+where+`
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.created_at DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []dto.RunInfo
	for rows.Next() {
		var run dto.RunInfo
		var colors string
		if err := rows.Scan(&run.ID, &run.Source, &run.StartedAt, &run.Records, &colors); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Colors = splitColors(colors)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its records.
func (r *RunRepository) DeleteRun(id string) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}
