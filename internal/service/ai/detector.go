// Package ai runs the object detection model on frames and keeps per-object
// track ids across calls.
package ai

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"gocv.io/x/gocv"

	"rockparser/internal/config"
	"rockparser/internal/dto"
	"rockparser/internal/logger"
	"rockparser/internal/service/tracker"
	"rockparser/internal/service/yolo"
)

const (
	// InputSize is the square input of the exported YOLOv8 network.
	InputSize = 640
	// CandidateThreshold drops weak boxes before suppression. The configured
	// confidence threshold is applied later.
	CandidateThreshold = 0.25
	NMSThreshold       = 0.7
	TrackIoUThreshold  = 0.3
	TrackMaxMissed     = 30
)

// DetectorService runs a YOLOv8 ONNX export through the OpenCV DNN module.
// It is not safe for concurrent use.
type DetectorService struct {
	net        gocv.Net
	modelPath  string
	numClasses int
	tracker    *tracker.Tracker
	logger     *logger.Logger
	frames     int
}

// NewDetectorService loads the network named by the configuration.
func NewDetectorService(cfg *config.Config, log *logger.Logger) (*DetectorService, error) {
	s := &DetectorService{
		modelPath:  cfg.Model,
		numClasses: len(cfg.ClassList),
		tracker:    tracker.NewTracker(TrackIoUThreshold, TrackMaxMissed),
		logger:     log,
	}
	if err := s.initializeNet(); err != nil {
		return nil, err
	}
	return s, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: model file not found: %s", config.ErrMissingFile, s.modelPath)
	}

	net := gocv.ReadNetFromONNX(s.modelPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", s.modelPath)
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.logger.Info("Detection network initialized from %s (%d classes)", s.modelPath, s.numClasses)
	return nil
}

// Detect runs the network on frame and returns tracked boxes in frame pixels.
func (s *DetectorService) Detect(ctx context.Context, frame image.Image) ([]dto.RawBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	s.frames++

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("converted frame is empty")
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(InputSize, InputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}

	scaleX := float32(mat.Cols()) / InputSize
	scaleY := float32(mat.Rows()) / InputSize
	candidates, err := yolo.DecodeYOLOv8(data, s.numClasses, CandidateThreshold, scaleX, scaleY)
	if err != nil {
		return nil, fmt.Errorf("failed to decode network output %v: %w", output.Size(), err)
	}

	boxes := s.suppress(candidates)
	tracked := s.tracker.Update(boxes)

	s.logger.Debug("frame %d: %d candidates, %d boxes, %d tracks, %.1fms",
		s.frames, len(candidates), len(tracked), s.tracker.Active(), float64(time.Since(start).Microseconds())/1000)
	return tracked, nil
}

// suppress applies per-class non-maximum suppression.
func (s *DetectorService) suppress(candidates []yolo.Candidate) []dto.RawBox {
	var boxes []dto.RawBox
	for _, group := range yolo.ByClass(candidates) {
		rects := make([]image.Rectangle, len(group))
		scores := make([]float32, len(group))
		for i, c := range group {
			rects[i] = c.Rect()
			scores[i] = c.Score
		}
		for _, idx := range gocv.NMSBoxes(rects, scores, CandidateThreshold, NMSThreshold) {
			c := group[idx]
			boxes = append(boxes, dto.RawBox{
				ClassID:    c.ClassID,
				Confidence: c.Score,
				X1:         c.X1,
				Y1:         c.Y1,
				X2:         c.X2,
				Y2:         c.Y2,
			})
		}
	}
	yolo.SortBoxes(boxes)
	return boxes
}

// Close releases the network.
func (s *DetectorService) Close() error {
	return s.net.Close()
}
