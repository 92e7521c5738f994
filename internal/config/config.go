package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	ErrInvalidThreshold = errors.New("confidence threshold must be between 0 and 1")
	ErrInvalidInterval  = errors.New("save interval must be zero or greater")
	ErrInvalidClass     = errors.New("class of interest is not in the class list")
	ErrInvalidSamples   = errors.New("sample count must be greater than zero")
	ErrMissingFile      = errors.New("file not found")
)

// DefaultClassList is the label order of the curling detection model.
var DefaultClassList = []string{"BroomHead", "Hack", "Hogline", "House", "Player", "Rock"}

type Config struct {
	Video           string   // path or URL of the video
	Model           string   // path to the detector weights
	IsYouTube       bool     // treat Video as a YouTube link
	ClassList       []string // detector class index -> name
	ClassOfInterest int      // index into ClassList that gets recorded
	ConfThreshold   float64  // minimum confidence for a record
	SaveInterval    int      // frames counted since the last flush; flushes once reached and records are pending, 0 = only at the end
	DataDir         string
	DataFileName    string
	MaskPath        string // optional binary mask applied before detection
	Palette         string // rock, html4 or svg
	Samples         int    // pixels sampled per detection for color
	Seed            uint64 // 0 picks a random seed
	Visualize       bool   // show every recorded detection and wait for a key
	YoloLog         bool   // detector logs instead of the progress bar
	DatabasePath    string // optional SQLite mirror of the log
	LiveAddr        string // optional address of the live record feed
	LogDirectory    string
	LogLevel        string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Video:           getEnv("VIDEO", ""),
		Model:           getEnv("MODEL", filepath.Join("model", "best.onnx")),
		IsYouTube:       getEnvAsBool("IS_YT", false),
		ClassList:       getEnvAsList("CLASS_LIST", DefaultClassList),
		ClassOfInterest: getEnvAsInt("CLASS_OF_INTEREST", 5),
		ConfThreshold:   getEnvAsFloat("CONF_THRESHOLD", 0.7),
		SaveInterval:    getEnvAsInt("SAVE_INTERVAL", 0),
		DataDir:         getEnv("DATA_DIR", "parser_data"),
		DataFileName:    getEnv("DATA_FILE_NAME", "data"),
		MaskPath:        getEnv("MASK_PATH", ""),
		Palette:         getEnv("PALETTE", "rock"),
		Samples:         getEnvAsInt("SAMPLES", 50),
		Seed:            uint64(getEnvAsInt64("SEED", 0)),
		Visualize:       getEnvAsBool("VISUALIZE", false),
		YoloLog:         getEnvAsBool("YOLO_LOG", false),
		DatabasePath:    getEnv("DB_PATH", ""),
		LiveAddr:        getEnv("LIVE_ADDR", ""),
		LogDirectory:    getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks ranges and that local input files exist. It does not touch
// the output location; overwrite handling belongs to the writer.
func (c *Config) Validate() error {
	if c.ConfThreshold < 0 || c.ConfThreshold > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, c.ConfThreshold)
	}
	if c.SaveInterval < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, c.SaveInterval)
	}
	if c.ClassOfInterest < 0 || c.ClassOfInterest >= len(c.ClassList) {
		return fmt.Errorf("%w: %d (have %d classes)", ErrInvalidClass, c.ClassOfInterest, len(c.ClassList))
	}
	if c.Samples <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSamples, c.Samples)
	}

	if !c.IsYouTube {
		if _, err := os.Stat(c.Video); err != nil {
			return fmt.Errorf("video path %q: %w", c.Video, ErrMissingFile)
		}
	}
	if _, err := os.Stat(c.Model); err != nil {
		return fmt.Errorf("model path %q: %w", c.Model, ErrMissingFile)
	}
	if c.MaskPath != "" {
		if _, err := os.Stat(c.MaskPath); err != nil {
			return fmt.Errorf("mask path %q: %w", c.MaskPath, ErrMissingFile)
		}
	}
	return nil
}

// OutputPath returns the log file location, adding a .csv extension when the
// configured name has a different one.
func (c *Config) OutputPath() string {
	return filepath.Join(c.DataDir, CSVName(c.DataFileName))
}

// ClassName returns the name of the class of interest.
func (c *Config) ClassName() string {
	return c.ClassList[c.ClassOfInterest]
}

// String renders the configuration for the startup banner.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Video Path: %s\n", c.Video)
	fmt.Fprintf(&b, "Model: %s\n", c.Model)
	fmt.Fprintf(&b, "Confidence Threshold: %.2f\n", c.ConfThreshold)
	fmt.Fprintf(&b, "Save Interval: %d\n", c.SaveInterval)
	fmt.Fprintf(&b, "Data File: %s\n", c.OutputPath())
	fmt.Fprintf(&b, "Palette: %s (%d samples)\n", c.Palette, c.Samples)
	fmt.Fprintf(&b, "Is Youtube: %t\n", c.IsYouTube)
	fmt.Fprintf(&b, "Visualize: %t\n", c.Visualize)
	fmt.Fprintf(&b, "Yolo Log: %t", c.YoloLog)
	return b.String()
}

// CSVName forces a .csv extension onto name.
func CSVName(name string) string {
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, ".csv") {
		return name
	}
	return strings.TrimSuffix(name, ext) + ".csv"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
