package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"rockparser/internal/app"
	"rockparser/internal/config"
	"rockparser/internal/confirm"
	"rockparser/internal/logger"
	"rockparser/internal/service/storage"
)

func main() {
	cfg := config.Load()

	parser := &cli.App{
		Name:      "rockparser",
		Usage:     "record curling rock detections from a video into a CSV log",
		ArgsUsage: "[video]",
		Flags:     flags(cfg),
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				cfg.Video = c.Args().First()
			}
			cfg.ClassList = c.StringSlice("class-list")
			return run(c.Context, cfg, c.Bool("yes"))
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := parser.RunContext(ctx, os.Args); err != nil {
		if errors.Is(err, storage.ErrConfirmationDeclined) {
			fmt.Println("Please use a different Data File name")
			return
		}
		fmt.Fprintf(os.Stderr, "rockparser: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, overwrite bool) error {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	var confirmer storage.Confirmer = confirm.NewPrompt(os.Stdin, os.Stdout)
	if overwrite {
		confirmer = confirm.Always(true)
	}

	application := app.NewApp(cfg, log, confirmer, os.Stdout)
	summary, err := application.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(app.Describe(summary, cfg.OutputPath()))
	return nil
}

func flags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "video",
			Aliases:     []string{"v"},
			Usage:       "path or URL of the video",
			EnvVars:     []string{"VIDEO"},
			Value:       cfg.Video,
			Destination: &cfg.Video,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "path to the detector weights (ONNX)",
			EnvVars:     []string{"MODEL"},
			Value:       cfg.Model,
			Destination: &cfg.Model,
		},
		&cli.BoolFlag{
			Name:        "youtube",
			Aliases:     []string{"yt"},
			Usage:       "treat the video as a YouTube link",
			EnvVars:     []string{"IS_YT"},
			Value:       cfg.IsYouTube,
			Destination: &cfg.IsYouTube,
		},
		&cli.StringSliceFlag{
			Name:    "class-list",
			Usage:   "detector class names in index order",
			EnvVars: []string{"CLASS_LIST"},
			Value:   cli.NewStringSlice(cfg.ClassList...),
		},
		&cli.IntFlag{
			Name:        "class",
			Usage:       "index of the recorded class",
			EnvVars:     []string{"CLASS_OF_INTEREST"},
			Value:       cfg.ClassOfInterest,
			Destination: &cfg.ClassOfInterest,
		},
		&cli.Float64Flag{
			Name:        "threshold",
			Aliases:     []string{"t"},
			Usage:       "minimum confidence (0-1) for a record",
			EnvVars:     []string{"CONF_THRESHOLD"},
			Value:       cfg.ConfThreshold,
			Destination: &cfg.ConfThreshold,
		},
		&cli.IntFlag{
			Name:        "interval",
			Aliases:     []string{"i"},
			Usage:       "frames between saves, 0 saves only at the end",
			EnvVars:     []string{"SAVE_INTERVAL"},
			Value:       cfg.SaveInterval,
			Destination: &cfg.SaveInterval,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "directory of the CSV log",
			EnvVars:     []string{"DATA_DIR"},
			Value:       cfg.DataDir,
			Destination: &cfg.DataDir,
		},
		&cli.StringFlag{
			Name:        "data-file",
			Aliases:     []string{"o"},
			Usage:       "name of the CSV log, .csv is enforced",
			EnvVars:     []string{"DATA_FILE_NAME"},
			Value:       cfg.DataFileName,
			Destination: &cfg.DataFileName,
		},
		&cli.StringFlag{
			Name:        "mask",
			Usage:       "image masking everything outside the sheet",
			EnvVars:     []string{"MASK_PATH"},
			Value:       cfg.MaskPath,
			Destination: &cfg.MaskPath,
		},
		&cli.StringFlag{
			Name:        "palette",
			Usage:       "color names to classify with: rock, html4 or svg",
			EnvVars:     []string{"PALETTE"},
			Value:       cfg.Palette,
			Destination: &cfg.Palette,
		},
		&cli.IntFlag{
			Name:        "samples",
			Usage:       "pixels sampled per rock",
			EnvVars:     []string{"SAMPLES"},
			Value:       cfg.Samples,
			Destination: &cfg.Samples,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "sampling seed, 0 picks one",
			EnvVars:     []string{"SEED"},
			Value:       cfg.Seed,
			Destination: &cfg.Seed,
		},
		&cli.BoolFlag{
			Name:        "visualize",
			Usage:       "show every recorded detection and wait for a key",
			EnvVars:     []string{"VISUALIZE"},
			Value:       cfg.Visualize,
			Destination: &cfg.Visualize,
		},
		&cli.BoolFlag{
			Name:        "yolo-log",
			Usage:       "log detector output instead of showing a progress bar",
			EnvVars:     []string{"YOLO_LOG"},
			Value:       cfg.YoloLog,
			Destination: &cfg.YoloLog,
		},
		&cli.StringFlag{
			Name:        "db",
			Usage:       "SQLite database mirroring the log",
			EnvVars:     []string{"DB_PATH"},
			Value:       cfg.DatabasePath,
			Destination: &cfg.DatabasePath,
		},
		&cli.StringFlag{
			Name:        "live",
			Usage:       "address of the live record feed, e.g. localhost:8080",
			EnvVars:     []string{"LIVE_ADDR"},
			Value:       cfg.LiveAddr,
			Destination: &cfg.LiveAddr,
		},
		&cli.StringFlag{
			Name:        "log-dir",
			EnvVars:     []string{"LOG_DIR"},
			Value:       cfg.LogDirectory,
			Destination: &cfg.LogDirectory,
		},
		&cli.StringFlag{
			Name:        "log-level",
			EnvVars:     []string{"LOG_LEVEL"},
			Value:       cfg.LogLevel,
			Destination: &cfg.LogLevel,
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "overwrite an existing log without asking",
		},
	}
}
