package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"rockparser/internal/dto"
	"rockparser/internal/logger"
	"rockparser/internal/model"
	"rockparser/internal/repository"
)

// RecordsData is a paginated response payload for stored records.
type RecordsData struct {
	Records     []model.Record `json:"records"`
	Length      int            `json:"length"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Limit       int            `json:"pageSize"`
}

// GetRecordsHandler lists records of a run with optional color, track and
// frame filters. Response is JSON of type RecordsData.
func GetRecordsHandler(records repository.RecordRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 100)

		filter := &dto.RecordFilter{
			RunID:     q.Get("run"),
			Color:     q.Get("color"),
			TrackID:   atoiDefault(q.Get("id"), 0),
			FrameFrom: atoiDefault(q.Get("frameFrom"), 0),
			FrameTo:   atoiDefault(q.Get("frameTo"), 0),
		}

		total, err := records.GetTotalCount(filter)
		if err != nil {
			logger.Error("Error counting records: %v", err)
			http.Error(w, "Unable to count records", http.StatusInternalServerError)
			return
		}

		filter.Limit = limit
		filter.Offset = (page - 1) * limit
		list, err := records.GetRecords(filter)
		if err != nil {
			logger.Error("Error reading records: %v", err)
			http.Error(w, "Unable to read records", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []model.Record{}
		}

		writeJSON(w, logger, RecordsData{
			Records:     list,
			Length:      total,
			TotalPages:  (total + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		})
	}
}

// GetColorsHandler lists the distinct colors of a run (or of every run).
func GetColorsHandler(records repository.RecordRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		colors, err := records.GetColors(r.URL.Query().Get("run"))
		if err != nil {
			logger.Error("Error reading colors: %v", err)
			http.Error(w, "Unable to read colors", http.StatusInternalServerError)
			return
		}
		if colors == nil {
			colors = []string{}
		}
		writeJSON(w, logger, map[string][]string{"colors": colors})
	}
}

// GetRunsHandler lists every stored run, newest first.
func GetRunsHandler(runs repository.RunRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := runs.ListRuns()
		if err != nil {
			logger.Error("Error listing runs: %v", err)
			http.Error(w, "Unable to list runs", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []dto.RunInfo{}
		}
		writeJSON(w, logger, list)
	}
}

// DeleteRunHandler removes a run and its records.
func DeleteRunHandler(runs repository.RunRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Query().Get("run")
		if id == "" {
			http.Error(w, "Missing run parameter", http.StatusBadRequest)
			return
		}
		if err := runs.DeleteRun(id); err != nil {
			logger.Warning("Error deleting run %s: %v", id, err)
			http.Error(w, "Unable to delete run", http.StatusNotFound)
			return
		}
		logger.Info("Deleted run %s", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, logger *logger.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
