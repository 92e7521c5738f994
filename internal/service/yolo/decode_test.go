package yolo

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rockparser/internal/dto"
)

// head builds a channel-major output from per-anchor rows of
// cx, cy, w, h, score...
func head(rows ...[]float32) []float32 {
	channels := len(rows[0])
	out := make([]float32, channels*len(rows))
	for i, row := range rows {
		for c, v := range row {
			out[c*len(rows)+i] = v
		}
	}
	return out
}

func TestDecodeYOLOv8(t *testing.T) {
	data := head(
		[]float32{100, 100, 20, 40, 0.1, 0.9},
		[]float32{300, 200, 10, 10, 0.8, 0.2},
		[]float32{50, 50, 10, 10, 0.1, 0.1},
	)

	got, err := DecodeYOLOv8(data, 2, 0.25, 2, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Candidate{ClassID: 1, Score: 0.9, X1: 180, Y1: 80, X2: 220, Y2: 120}, got[0])
	assert.Equal(t, Candidate{ClassID: 0, Score: 0.8, X1: 590, Y1: 195, X2: 610, Y2: 205}, got[1])
	assert.Equal(t, image.Rect(180, 80, 220, 120), got[0].Rect())
}

func TestDecodeYOLOv8_ShapeMismatch(t *testing.T) {
	_, err := DecodeYOLOv8(make([]float32, 11), 2, 0.25, 1, 1)
	assert.Error(t, err)

	_, err = DecodeYOLOv8(nil, 2, 0.25, 1, 1)
	assert.Error(t, err)

	_, err = DecodeYOLOv8(make([]float32, 12), 0, 0.25, 1, 1)
	assert.Error(t, err)
}

func TestByClass(t *testing.T) {
	groups := ByClass([]Candidate{{ClassID: 5, Score: 0.9}, {ClassID: 2}, {ClassID: 5, Score: 0.4}})
	assert.Len(t, groups, 2)
	assert.Len(t, groups[5], 2)
	assert.Equal(t, float32(0.9), groups[5][0].Score)
}

func TestSortBoxes(t *testing.T) {
	boxes := []dto.RawBox{
		{ClassID: 5, Confidence: 0.4},
		{ClassID: 3, Confidence: 0.9},
		{ClassID: 1, Confidence: 0.9},
	}
	SortBoxes(boxes)
	assert.Equal(t, []dto.RawBox{
		{ClassID: 1, Confidence: 0.9},
		{ClassID: 3, Confidence: 0.9},
		{ClassID: 5, Confidence: 0.4},
	}, boxes)
}
