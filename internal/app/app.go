package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"rockparser/internal/config"
	"rockparser/internal/logger"
	"rockparser/internal/model"
	"rockparser/internal/repository"
	"rockparser/internal/repository/sqlite"
	"rockparser/internal/routes"
	"rockparser/internal/service/ai"
	"rockparser/internal/service/color"
	"rockparser/internal/service/detection"
	"rockparser/internal/service/mask"
	"rockparser/internal/service/overlay"
	"rockparser/internal/service/pipeline"
	"rockparser/internal/service/storage"
	"rockparser/internal/service/video"
	"rockparser/internal/service/websocket"
)

const (
	DisplayWidth  = 1920
	DisplayHeight = 1080
)

// App wires the configuration to the pipeline collaborators for one run.
type App struct {
	config  *config.Config
	logger  *logger.Logger
	confirm storage.Confirmer
	stdout  io.Writer

	runID   string
	db      *sqlite.DB
	runs    repository.RunRepository
	records repository.RecordRepository
	hub     *websocket.HubService
	server  *http.Server
}

func NewApp(cfg *config.Config, log *logger.Logger, confirm storage.Confirmer, stdout io.Writer) *App {
	return &App{
		config:  cfg,
		logger:  log,
		confirm: confirm,
		stdout:  stdout,
	}
}

// Run validates the configuration, opens every collaborator and processes
// the whole video. storage.ErrConfirmationDeclined is returned untouched when
// the user keeps an existing log.
func (a *App) Run(ctx context.Context) (summary pipeline.Summary, err error) {
	cfg := a.config
	if err := cfg.Validate(); err != nil {
		return summary, err
	}

	palette, err := color.PaletteByName(cfg.Palette)
	if err != nil {
		return summary, err
	}

	var masker *mask.Masker
	if cfg.MaskPath != "" {
		if masker, err = mask.Load(cfg.MaskPath); err != nil {
			return summary, err
		}
		a.logger.Info("Loaded mask %s (%v)", cfg.MaskPath, masker.Size())
	}

	writer := storage.NewWriter(a.logger.Named("storage"))
	if err := writer.Initialize(cfg.OutputPath(), model.FieldNames, a.confirm); err != nil {
		return summary, err
	}
	if err := a.openStore(writer); err != nil {
		return summary, multierr.Combine(err, writer.Close(), a.closeStore())
	}
	defer func() {
		// Sinks write into the store, so the writer goes first.
		err = multierr.Combine(err, writer.Close(), a.closeStore())
	}()

	liveCtx, stopLive := context.WithCancel(ctx)
	defer stopLive()
	if err := a.startLive(liveCtx, writer); err != nil {
		return summary, err
	}
	defer a.stopLive()

	source, err := video.Open(ctx, cfg.Video, cfg.IsYouTube, a.logger.Named("video"))
	if err != nil {
		return summary, err
	}

	aiLogger := a.logger.Named("ai")
	aiLogger.SetDebug(cfg.YoloLog)
	detector, err := ai.NewDetectorService(cfg, aiLogger)
	if err != nil {
		source.Close()
		return summary, err
	}
	defer detector.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	a.logger.Debug("Color sampling seed %d", seed)

	opts := pipeline.Options{
		Source:   source,
		Masker:   masker,
		Detector: detector,
		Sampler:  color.NewSampler(palette, seed),
		Writer:   writer,
		Filter: detection.Filter{
			ClassNames:      cfg.ClassList,
			ClassOfInterest: cfg.ClassOfInterest,
			Threshold:       cfg.ConfThreshold,
		},
		Samples:       cfg.Samples,
		FlushInterval: cfg.SaveInterval,
	}

	if !cfg.YoloLog {
		progress, err := pipeline.NewProgressBar(source.FrameCount(), a.stdout)
		if err != nil {
			a.logger.Warning("Progress bar unavailable: %v", err)
		} else {
			opts.Progress = progress
		}
	}

	if cfg.Visualize {
		window := video.NewWindow("Img")
		defer window.Close()
		opts.Visualizer = func(frame *image.RGBA, det model.Detection) error {
			overlay.Draw(frame, det, true)
			return window.Show(overlay.Fit(frame, DisplayWidth, DisplayHeight))
		}
	}

	a.logger.Info("Run %s started\n%s", a.runID, cfg)
	return pipeline.NewDriver(opts, a.logger.Named("pipeline")).Run(ctx)
}

// openStore mirrors flushed batches into SQLite when a database is
// configured. Without one the run still gets an id for the live feed.
func (a *App) openStore(writer *storage.Writer) error {
	if a.config.DatabasePath == "" {
		a.runID = uuid.NewString()
		return nil
	}

	db, err := sqlite.New(a.config.DatabasePath)
	if err != nil {
		return err
	}
	a.db = db
	runs := sqlite.NewRunRepository(db)
	a.runs = runs
	a.records = sqlite.NewRecordRepository(db)

	runID, err := runs.CreateRun(a.config.Video, time.Now())
	if err != nil {
		return err
	}
	a.runID = runID
	writer.AddSink(repository.NewMirror(a.records, runID))
	a.logger.Info("Mirroring records to %s as run %s", a.config.DatabasePath, runID)
	return nil
}

func (a *App) closeStore() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// startLive serves the live record feed when an address is configured.
func (a *App) startLive(ctx context.Context, writer *storage.Writer) error {
	if a.config.LiveAddr == "" {
		return nil
	}

	a.hub = websocket.NewHubService(a.runID, a.config.Video, a.logger.Named("live"))
	go a.hub.Run(ctx)
	writer.AddSink(a.hub)

	var runs repository.RunRepository
	var records repository.RecordRepository
	if a.db != nil {
		runs, records = a.runs, a.records
	}
	a.server = &http.Server{
		Addr:              a.config.LiveAddr,
		Handler:           routes.SetupRoutes(a.hub, runs, records, a.config, a.logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Live feed server stopped: %v", err)
		}
	}()
	a.logger.Info("🚀 Live feed on http://%s/api/live", a.config.LiveAddr)
	return nil
}

func (a *App) stopLive() {
	if a.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warning("Live feed shutdown: %v", err)
	}
}

// Describe renders a one-line outcome for the CLI.
func Describe(s pipeline.Summary, output string) string {
	state := "finished"
	if s.Interrupted {
		state = "interrupted"
	}
	return fmt.Sprintf("Parsing %s: %d frames, %d records written to %s", state, s.Frames, s.Records, output)
}
