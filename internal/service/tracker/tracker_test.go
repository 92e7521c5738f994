package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rockparser/internal/dto"
)

func box(class int, x1, y1, x2, y2 float32) dto.RawBox {
	return dto.RawBox{ClassID: class, Confidence: 0.9, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func ids(boxes []dto.RawBox) []int {
	out := make([]int, len(boxes))
	for i, b := range boxes {
		out[i] = b.TrackID
	}
	return out
}

func TestIoU(t *testing.T) {
	a := box(0, 0, 0, 10, 10)
	assert.InDelta(t, 1.0, IoU(a, a), 1e-9)
	assert.InDelta(t, 25.0/175.0, IoU(a, box(0, 5, 5, 15, 15)), 1e-9)
	assert.Zero(t, IoU(a, box(0, 10, 0, 20, 10)))
	assert.Zero(t, IoU(box(0, 5, 5, 5, 5), box(0, 5, 5, 5, 5)))
}

func TestTracker_KeepsIDsForMovingObjects(t *testing.T) {
	tr := NewTracker(0.3, 2)

	first := tr.Update([]dto.RawBox{box(5, 0, 0, 20, 20), box(5, 100, 100, 120, 120)})
	assert.Equal(t, []int{1, 2}, ids(first))

	// Both rocks slide a little and are reported in the opposite order.
	second := tr.Update([]dto.RawBox{box(5, 103, 101, 123, 121), box(5, 2, 1, 22, 21)})
	assert.Equal(t, []int{2, 1}, ids(second))
	assert.Equal(t, float32(103), second[0].X1)
}

func TestTracker_NewObjectGetsFreshID(t *testing.T) {
	tr := NewTracker(0.3, 2)
	tr.Update([]dto.RawBox{box(5, 0, 0, 20, 20)})

	got := tr.Update([]dto.RawBox{box(5, 0, 0, 20, 20), box(5, 200, 200, 220, 220)})
	assert.Equal(t, []int{1, 2}, ids(got))
}

func TestTracker_ClassesNeverMatch(t *testing.T) {
	tr := NewTracker(0.3, 2)
	tr.Update([]dto.RawBox{box(5, 0, 0, 20, 20)})

	got := tr.Update([]dto.RawBox{box(4, 0, 0, 20, 20)})
	assert.Equal(t, []int{2}, ids(got))
}

func TestTracker_ExpiresAfterMaxMissed(t *testing.T) {
	tr := NewTracker(0.3, 2)
	tr.Update([]dto.RawBox{box(5, 0, 0, 20, 20)})

	tr.Update(nil)
	tr.Update(nil)
	require.Equal(t, 1, tr.Active())
	got := tr.Update([]dto.RawBox{box(5, 0, 0, 20, 20)})
	assert.Equal(t, []int{1}, ids(got))

	tr.Update(nil)
	tr.Update(nil)
	tr.Update(nil)
	assert.Zero(t, tr.Active())
	got = tr.Update([]dto.RawBox{box(5, 0, 0, 20, 20)})
	assert.Equal(t, []int{2}, ids(got))
}

func TestTracker_BestOverlapWins(t *testing.T) {
	tr := NewTracker(0.1, 2)
	tr.Update([]dto.RawBox{box(5, 0, 0, 20, 20)})

	// Both overlap the track; the closer one keeps the id.
	got := tr.Update([]dto.RawBox{box(5, 8, 0, 28, 20), box(5, 1, 0, 21, 20)})
	assert.Equal(t, []int{2, 1}, ids(got))
}

func TestTracker_DoesNotModifyInput(t *testing.T) {
	tr := NewTracker(0.3, 2)
	in := []dto.RawBox{box(5, 0, 0, 20, 20)}
	tr.Update(in)
	assert.Zero(t, in[0].TrackID)
}
