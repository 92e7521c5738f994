package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"rockparser/internal/model"
)

var ErrBadHeader = errors.New("unexpected log header")

// Reader parses a record log produced by Writer.
type Reader struct {
	csv  *csv.Reader
	line int
}

// NewReader consumes and checks the header row.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(model.FieldNames)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !slices.Equal(header, model.FieldNames) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}
	return &Reader{csv: cr, line: 1}, nil
}

// Read returns the next record, or io.EOF.
func (r *Reader) Read() (model.Record, error) {
	row, err := r.csv.Read()
	if err != nil {
		return model.Record{}, err
	}
	r.line++

	rec, err := parseRow(row)
	if err != nil {
		return model.Record{}, fmt.Errorf("line %d: %w", r.line, err)
	}
	return rec, nil
}

// ReadAll returns every remaining record.
func (r *Reader) ReadAll() ([]model.Record, error) {
	var records []model.Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// ReadFile loads a whole log from disk.
func ReadFile(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return nil, err
	}
	return r.ReadAll()
}

func parseRow(row []string) (model.Record, error) {
	var rec model.Record
	var err error

	if rec.Frame, err = strconv.Atoi(row[0]); err != nil {
		return rec, fmt.Errorf("invalid frame: %w", err)
	}
	rec.ObjectClass = row[1]
	if rec.ID, err = strconv.Atoi(row[2]); err != nil {
		return rec, fmt.Errorf("invalid id: %w", err)
	}
	if rec.Box, err = ParseBox(row[3]); err != nil {
		return rec, fmt.Errorf("invalid box_coords: %w", err)
	}
	if rec.Center, err = ParsePoint(row[4]); err != nil {
		return rec, fmt.Errorf("invalid center: %w", err)
	}
	rec.Color = row[5]
	if rec.Radius, err = strconv.ParseFloat(row[6], 64); err != nil {
		return rec, fmt.Errorf("invalid radius: %w", err)
	}
	return rec, nil
}
