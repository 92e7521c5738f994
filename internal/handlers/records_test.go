package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rockparser/internal/config"
	"rockparser/internal/dto"
	"rockparser/internal/logger"
	"rockparser/internal/model"
	"rockparser/internal/repository/sqlite"
)

// ========================================
// Test Setup Helpers
// ========================================

func setupTestStore(t *testing.T) (*sqlite.RunRepository, *sqlite.RecordRepository, string) {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	runs := sqlite.NewRunRepository(db)
	records := sqlite.NewRecordRepository(db)

	runID, err := runs.CreateRun("curling1.mp4", time.Now())
	if err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	var batch []model.Record
	for frame := 1; frame <= 25; frame++ {
		color := "red"
		if frame%5 == 0 {
			color = "yellow"
		}
		batch = append(batch, model.Record{Frame: frame, ObjectClass: "Rock", ID: frame % 3, Color: color, Radius: 10})
	}
	if err := records.InsertBatch(runID, batch); err != nil {
		t.Fatalf("Failed to insert records: %v", err)
	}
	return runs, records, runID
}

// ========================================
// Records API Tests
// ========================================

func TestGetRecordsHandler_Pagination(t *testing.T) {
	_, records, runID := setupTestStore(t)
	handler := GetRecordsHandler(records, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/records?run="+runID+"&page=3&limit=10", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var data RecordsData
	if err := json.NewDecoder(rec.Body).Decode(&data); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if data.Length != 25 || data.TotalPages != 3 || data.CurrentPage != 3 {
		t.Errorf("Unexpected paging: %+v", data)
	}
	if len(data.Records) != 5 || data.Records[0].Frame != 21 {
		t.Errorf("Expected frames 21..25 on page 3, got %+v", data.Records)
	}
}

func TestGetRecordsHandler_Filters(t *testing.T) {
	_, records, runID := setupTestStore(t)
	handler := GetRecordsHandler(records, logger.NewNop())

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"color", "&color=yellow", 5},
		{"frame range", "&frameFrom=10&frameTo=14", 5},
		{"track id", "&id=1", 9},
		{"invalid values fall back", "&frameFrom=abc&limit=-3", 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/records?run="+runID+tt.query, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			var data RecordsData
			if err := json.NewDecoder(rec.Body).Decode(&data); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if data.Length != tt.want {
				t.Errorf("Expected %d records, got %d", tt.want, data.Length)
			}
		})
	}
}

func TestGetRecordsHandler_UnknownRunIsEmpty(t *testing.T) {
	_, records, _ := setupTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/records?run=missing", nil)
	rec := httptest.NewRecorder()
	GetRecordsHandler(records, logger.NewNop())(rec, req)

	var data RecordsData
	if err := json.NewDecoder(rec.Body).Decode(&data); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if data.Records == nil || len(data.Records) != 0 {
		t.Errorf("Expected empty record list, got %v", data.Records)
	}
}

func TestGetColorsHandler(t *testing.T) {
	_, records, runID := setupTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/records/colors?run="+runID, nil)
	rec := httptest.NewRecorder()
	GetColorsHandler(records, logger.NewNop())(rec, req)

	var data map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&data); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(data["colors"]) != 2 {
		t.Errorf("Expected 2 colors, got %v", data["colors"])
	}
}

// ========================================
// Runs API Tests
// ========================================

func TestGetRunsHandler(t *testing.T) {
	runs, _, runID := setupTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	GetRunsHandler(runs, logger.NewNop())(rec, req)

	var list []struct {
		ID        string   `json:"id"`
		StartedAt string   `json:"startedAt"`
		Records   int      `json:"records"`
		Colors    []string `json:"colors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(list) != 1 || list[0].ID != runID || list[0].Records != 25 {
		t.Fatalf("Unexpected runs: %+v", list)
	}
	if _, err := time.Parse("02-01-2006 15:04", list[0].StartedAt); err != nil {
		t.Errorf("Unexpected startedAt format %q: %v", list[0].StartedAt, err)
	}
}

func TestDeleteRunHandler(t *testing.T) {
	runs, records, runID := setupTestStore(t)
	handler := DeleteRunHandler(runs, logger.NewNop())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/runs/delete?run="+runID, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/runs/delete", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without run, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/runs/delete?run="+runID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	count, err := records.GetTotalCount(&dto.RecordFilter{RunID: runID})
	if err != nil || count != 0 {
		t.Errorf("Expected records to be removed, got %d (%v)", count, err)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodDelete, "/api/runs/delete?run="+runID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a deleted run, got %d", rec.Code)
	}
}

// ========================================
// Log Endpoint Tests
// ========================================

func TestShowLogsHandler(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{LogDirectory: dir}

	rec := httptest.NewRecorder()
	ShowLogsHandler(cfg)(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without a log file, got %d", rec.Code)
	}

	if err := os.WriteFile(filepath.Join(dir, logger.FileName), []byte("flushed 3 records\n"), 0644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}
	rec = httptest.NewRecorder()
	ShowLogsHandler(cfg)(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "flushed 3 records\n" {
		t.Errorf("Unexpected log response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAtoiDefault(t *testing.T) {
	tests := []struct {
		input    string
		def      int
		expected int
	}{
		{"10", 5, 10},
		{"", 5, 5},
		{"abc", 10, 10},
		{"-1", 5, 5},
		{"0", 5, 5},
		{"12.5", 5, 5},
	}

	for _, tt := range tests {
		if result := atoiDefault(tt.input, tt.def); result != tt.expected {
			t.Errorf("atoiDefault(%q, %d) = %d, expected %d", tt.input, tt.def, result, tt.expected)
		}
	}
}
