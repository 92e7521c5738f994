package routes

import (
	"net/http"

	"rockparser/internal/config"
	"rockparser/internal/handlers"
	"rockparser/internal/logger"
	"rockparser/internal/middleware"
	"rockparser/internal/repository"
	"rockparser/internal/service/websocket"
)

// SetupRoutes registers the live feed, the log endpoint and, when a store is
// configured, the run and record API.
func SetupRoutes(hub *websocket.HubService, runs repository.RunRepository, records repository.RecordRepository, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/live", websocket.ViewerHandler(hub))
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/logs", handlers.ShowLogsHandler(cfg))

	if runs != nil && records != nil {
		mux.HandleFunc("/api/runs", handlers.GetRunsHandler(runs, logger))
		mux.HandleFunc("/api/runs/delete", handlers.DeleteRunHandler(runs, logger))
		mux.HandleFunc("/api/records", handlers.GetRecordsHandler(records, logger))
		mux.HandleFunc("/api/records/colors", handlers.GetColorsHandler(records, logger))
	}

	return middleware.Logging(logger, middleware.LocalOnly(mux))
}
