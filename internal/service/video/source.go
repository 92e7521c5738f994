// Package video decodes frames with OpenCV and shows debug frames in a
// window.
package video

import (
	"context"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"rockparser/internal/logger"
)

// Source reads frames from a file or stream URL.
type Source struct {
	capture    *gocv.VideoCapture
	mat        gocv.Mat
	location   string
	frameCount int
	logger     *logger.Logger
}

// Open opens location for reading. YouTube pages are resolved to a direct
// stream URL first.
func Open(ctx context.Context, location string, youtube bool, log *logger.Logger) (*Source, error) {
	uri := location
	if youtube {
		resolved, err := ResolveYouTube(ctx, location)
		if err != nil {
			return nil, err
		}
		log.Info("Resolved %s to a direct stream", location)
		uri = resolved
	} else if _, err := os.Stat(location); err != nil {
		return nil, fmt.Errorf("video file not accessible: %w", err)
	}

	capture, err := gocv.VideoCaptureFile(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", location, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("failed to open video %s", location)
	}

	s := &Source{
		capture:    capture,
		mat:        gocv.NewMat(),
		location:   location,
		frameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
		logger:     log,
	}
	if s.frameCount < 0 {
		s.frameCount = 0
	}
	log.Info("Opened %s (%dx%d, ~%d frames)", location,
		int(capture.Get(gocv.VideoCaptureFrameWidth)), int(capture.Get(gocv.VideoCaptureFrameHeight)), s.frameCount)
	return s, nil
}

// Read returns the next frame, or ok=false at the end of the stream.
func (s *Source) Read() (image.Image, bool, error) {
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, false, nil
	}
	img, err := s.mat.ToImage()
	if err != nil {
		return nil, false, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, true, nil
}

// FrameCount is the container's frame count, 0 for live streams.
func (s *Source) FrameCount() int {
	return s.frameCount
}

func (s *Source) Close() error {
	s.mat.Close()
	return s.capture.Close()
}
