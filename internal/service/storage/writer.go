// Package storage buffers output records and flushes them to an append-only
// CSV log, fanning every flushed batch out to optional mirrors.
package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"

	"rockparser/internal/logger"
	"rockparser/internal/model"
)

var (
	ErrIO                   = errors.New("storage i/o failure")
	ErrConfirmationDeclined = errors.New("overwrite of existing output declined")
	ErrNotOpen              = errors.New("writer is not open")
)

// Confirmer decides whether an existing output file may be replaced.
type Confirmer interface {
	Confirm(path string) (bool, error)
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(path string) (bool, error)

func (f ConfirmFunc) Confirm(path string) (bool, error) { return f(path) }

// Sink receives a copy of every batch after it reached the CSV log.
type Sink interface {
	WriteRecords(records []model.Record) error
}

type state int

const (
	stateUninitialized state = iota
	stateOpen
	stateFailed // a write to the log failed; nothing more is written
	stateClosed
)

// Writer owns the record buffer between flushes.
type Writer struct {
	mu      sync.Mutex
	state   state
	path    string
	out     io.Writer
	closer  io.Closer
	records []model.Record
	sinks   []Sink
	log     *logger.Logger

	flushes int
	written int
}

func NewWriter(log *logger.Logger, sinks ...Sink) *Writer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Writer{
		log:     log,
		sinks:   sinks,
		records: make([]model.Record, 0),
	}
}

// AddSink registers another mirror for subsequent flushes.
func (w *Writer) AddSink(sink Sink) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sinks = append(w.sinks, sink)
}

// Initialize creates the output file at path and writes the header row. An
// existing file is only replaced when confirm agrees; a nil confirm always
// replaces it.
func (w *Writer) Initialize(path string, fields []string, confirm Confirmer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != stateUninitialized {
		return fmt.Errorf("writer already initialized for %s", w.path)
	}

	if _, err := os.Stat(path); err == nil && confirm != nil {
		ok, err := confirm.Confirm(path)
		if err != nil {
			return fmt.Errorf("failed to confirm overwrite of %s: %w", path, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrConfirmationDeclined, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: creating directory: %v", ErrIO, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIO, path, err)
	}

	if err := w.open(path, file, file, fields); err != nil {
		_ = file.Close()
		return err
	}
	return nil
}

// Attach opens the writer on an existing stream, such as stdout.
func (w *Writer) Attach(out io.Writer, fields []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != stateUninitialized {
		return fmt.Errorf("writer already initialized for %s", w.path)
	}
	var closer io.Closer
	if c, ok := out.(io.Closer); ok {
		closer = c
	}
	return w.open("", out, closer, fields)
}

func (w *Writer) open(path string, out io.Writer, closer io.Closer, fields []string) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("%w: encoding header: %v", ErrIO, err)
	}
	cw.Flush()
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: writing header: %v", ErrIO, err)
	}

	w.path = path
	w.out = out
	w.closer = closer
	w.state = stateOpen
	return nil
}

// Append adds a record to the buffer. It performs no I/O.
func (w *Writer) Append(record model.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != stateOpen {
		return ErrNotOpen
	}
	w.records = append(w.records, record)
	return nil
}

// Pending returns the number of buffered records.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}

// Flush writes all buffered records in arrival order with a single write.
// A failed write may have reached the log partially, so the writer refuses
// any further writes afterwards.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case stateOpen:
		return w.flushLocked()
	case stateFailed:
		return fmt.Errorf("%w: log is unusable after a failed write", ErrIO)
	default:
		return ErrNotOpen
	}
}

func (w *Writer) flushLocked() error {
	if len(w.records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	for _, r := range w.records {
		if err := cw.Write(FormatRow(r)); err != nil {
			return fmt.Errorf("%w: encoding record: %v", ErrIO, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: encoding records: %v", ErrIO, err)
	}

	if _, err := w.out.Write(buf.Bytes()); err != nil {
		w.state = stateFailed
		return fmt.Errorf("%w: writing %d records: %v", ErrIO, len(w.records), err)
	}

	batch := make([]model.Record, len(w.records))
	copy(batch, w.records)
	for _, sink := range w.sinks {
		if err := sink.WriteRecords(batch); err != nil {
			w.log.Warning("Mirror write failed for %d records: %v", len(batch), err)
		}
	}

	w.flushes++
	w.written += len(batch)
	w.log.Debug("Flushed %d records to %s", len(batch), w.target())
	w.records = w.records[:0]
	return nil
}

// Close performs a final flush and releases the output. After a failed write
// the buffer is dropped and only the output is released. Calling Close more
// than once is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == stateClosed {
		return nil
	}
	if w.state == stateUninitialized {
		w.state = stateClosed
		return nil
	}

	var err error
	if w.state == stateOpen {
		err = w.flushLocked()
	} else if len(w.records) > 0 {
		w.log.Warning("Dropping %d unwritten records after a failed write", len(w.records))
	}
	if w.closer != nil {
		err = multierr.Append(err, w.closer.Close())
	}
	w.state = stateClosed
	return err
}

// Stats reports the number of completed flushes and records written.
func (w *Writer) Stats() (flushes, written int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushes, w.written
}

func (w *Writer) target() string {
	if w.path == "" {
		return "stream"
	}
	return w.path
}
