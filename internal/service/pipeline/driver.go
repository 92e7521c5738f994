// Package pipeline runs the per-frame detection-to-record loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/multierr"

	"rockparser/internal/dto"
	"rockparser/internal/logger"
	"rockparser/internal/model"
	"rockparser/internal/service/detection"
	"rockparser/internal/service/mask"
	"rockparser/internal/service/storage"
)

// FrameSource yields decoded frames in order.
type FrameSource interface {
	// Read returns ok=false once the stream is exhausted.
	Read() (frame image.Image, ok bool, err error)
	// FrameCount is a best-effort total, 0 when unknown.
	FrameCount() int
	Close() error
}

// Detector returns the boxes found in one frame. Track ids persist across
// calls.
type Detector interface {
	Detect(ctx context.Context, frame image.Image) ([]dto.RawBox, error)
}

type FrameMasker interface {
	Apply(frame image.Image) (*image.RGBA, error)
}

type ColorClassifier interface {
	Classify(img image.Image, center model.Point, radius, n int) (string, error)
}

// RecordWriter buffers records until Flush.
type RecordWriter interface {
	Append(record model.Record) error
	Flush() error
}

// Visualizer is called for every accepted detection with the masked frame.
// It may draw on the frame and block until the viewer continues.
type Visualizer func(frame *image.RGBA, det model.Detection) error

// Progress tracks processed frames.
type Progress interface {
	Increment()
	Stop()
}

// Options holds the collaborators and settings of a Driver. Masker,
// Visualizer and Progress are optional.
type Options struct {
	Source        FrameSource
	Masker        FrameMasker
	Detector      Detector
	Sampler       ColorClassifier
	Writer        RecordWriter
	Filter        detection.Filter
	Samples       int
	FlushInterval int
	Visualizer    Visualizer
	Progress      Progress
}

// Summary describes a finished run.
type Summary struct {
	Frames      int
	Detections  int
	Records     int
	Flushes     int
	Interrupted bool
	Duration    time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("frames=%d detections=%d records=%d flushes=%d interrupted=%t duration=%s",
		s.Frames, s.Detections, s.Records, s.Flushes, s.Interrupted, s.Duration.Round(time.Millisecond))
}

// Driver owns the frame counter and flush schedule of a single run.
type Driver struct {
	opts   Options
	logger *logger.Logger

	frameNumber     int
	framesSinceSave int
	pending         int
	summary         Summary
}

func NewDriver(opts Options, log *logger.Logger) *Driver {
	if opts.Masker == nil {
		opts.Masker = (*mask.Masker)(nil)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Driver{opts: opts, logger: log}
}

// Run processes the source until it is exhausted, an error occurs or ctx is
// cancelled. Buffered records are flushed unless a log write already failed,
// and the source is closed in every case.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	d.logger.Info("🎬 Pipeline started - flush interval %d frame(s), ~%d frame(s)", d.opts.FlushInterval, d.opts.Source.FrameCount())

	err := d.loop(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		d.summary.Interrupted = true
		d.logger.Warning("Pipeline interrupted at frame %d", d.frameNumber)
		err = nil
	}

	// A failed write may have reached the log partially; writing the
	// buffer again would duplicate rows.
	if !errors.Is(err, storage.ErrIO) {
		err = multierr.Append(err, d.flush())
	}
	if cerr := d.opts.Source.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to close frame source: %w", cerr))
	}
	if d.opts.Progress != nil {
		d.opts.Progress.Stop()
	}

	d.summary.Duration = time.Since(start)
	d.logger.Info("🛑 Pipeline finished: %s", d.summary)
	return d.summary, err
}

func (d *Driver) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, ok, err := d.opts.Source.Read()
		if err != nil {
			return fmt.Errorf("failed to read frame %d: %w", d.frameNumber+1, err)
		}
		if !ok {
			return nil
		}

		d.frameNumber++
		d.summary.Frames++
		if d.opts.Progress != nil {
			d.opts.Progress.Increment()
		}

		if err := d.processFrame(ctx, frame); err != nil {
			return err
		}

		if d.opts.FlushInterval > 0 {
			d.framesSinceSave++
			if d.framesSinceSave >= d.opts.FlushInterval && d.pending > 0 {
				if err := d.flush(); err != nil {
					return err
				}
				d.framesSinceSave = 0
			}
		}
	}
}

func (d *Driver) processFrame(ctx context.Context, frame image.Image) error {
	masked, err := d.opts.Masker.Apply(frame)
	if err != nil {
		return fmt.Errorf("frame %d: %w", d.frameNumber, err)
	}

	boxes, err := d.opts.Detector.Detect(ctx, masked)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("detection failed on frame %d: %w", d.frameNumber, err)
	}
	d.summary.Detections += len(boxes)

	for _, raw := range boxes {
		det := detection.FromRaw(raw)
		if !d.opts.Filter.Accept(det) {
			continue
		}
		det = detection.Extract(det)

		// Colors come from the unmasked frame.
		colorName, err := d.opts.Sampler.Classify(frame, det.Center, int(det.Radius), d.opts.Samples)
		if err != nil {
			return fmt.Errorf("frame %d, id %d: %w", d.frameNumber, det.TrackID, err)
		}

		record, ok, err := d.opts.Filter.Build(det, colorName, d.frameNumber)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := d.opts.Writer.Append(record); err != nil {
			return fmt.Errorf("failed to buffer record: %w", err)
		}
		d.pending++

		if d.opts.Visualizer != nil {
			if err := d.opts.Visualizer(masked, det); err != nil {
				return fmt.Errorf("visualization failed on frame %d: %w", d.frameNumber, err)
			}
		}
	}
	return nil
}

func (d *Driver) flush() error {
	if d.pending == 0 {
		return nil
	}
	if err := d.opts.Writer.Flush(); err != nil {
		return fmt.Errorf("flush at frame %d: %w", d.frameNumber, err)
	}
	d.logger.Info("💾 Flushed %d record(s) at frame %d", d.pending, d.frameNumber)
	d.summary.Flushes++
	d.summary.Records += d.pending
	d.pending = 0
	return nil
}
