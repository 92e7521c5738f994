// Package tracker keeps object ids stable across frames.
package tracker

import (
	"sort"

	"rockparser/internal/dto"
)

type track struct {
	id     int
	class  int
	box    dto.RawBox
	missed int
}

// Tracker assigns persistent ids to boxes by greedy IoU matching against the
// boxes of the previous frames. Ids start at 1 and are never reused.
type Tracker struct {
	iouThreshold float64
	maxMissed    int
	nextID       int
	tracks       []*track
}

func NewTracker(iouThreshold float64, maxMissed int) *Tracker {
	return &Tracker{
		iouThreshold: iouThreshold,
		maxMissed:    maxMissed,
		nextID:       1,
	}
}

// Update matches boxes to live tracks and returns them with TrackID set.
func (t *Tracker) Update(boxes []dto.RawBox) []dto.RawBox {
	type pair struct {
		track, box int
		iou        float64
	}

	var pairs []pair
	for ti, tr := range t.tracks {
		for bi, b := range boxes {
			if b.ClassID != tr.class {
				continue
			}
			if v := IoU(tr.box, b); v >= t.iouThreshold {
				pairs = append(pairs, pair{ti, bi, v})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].iou > pairs[j].iou })

	out := make([]dto.RawBox, len(boxes))
	copy(out, boxes)
	trackUsed := make([]bool, len(t.tracks))
	boxUsed := make([]bool, len(boxes))

	for _, p := range pairs {
		if trackUsed[p.track] || boxUsed[p.box] {
			continue
		}
		trackUsed[p.track], boxUsed[p.box] = true, true
		tr := t.tracks[p.track]
		tr.box, tr.missed = boxes[p.box], 0
		out[p.box].TrackID = tr.id
	}

	live := t.tracks[:0]
	for i, tr := range t.tracks {
		if !trackUsed[i] {
			tr.missed++
			if tr.missed > t.maxMissed {
				continue
			}
		}
		live = append(live, tr)
	}
	t.tracks = live

	for i, b := range boxes {
		if boxUsed[i] {
			continue
		}
		tr := &track{id: t.nextID, class: b.ClassID, box: b}
		t.nextID++
		t.tracks = append(t.tracks, tr)
		out[i].TrackID = tr.id
	}
	return out
}

// Active returns the number of live tracks.
func (t *Tracker) Active() int {
	return len(t.tracks)
}

// IoU is the intersection over union of two boxes.
func IoU(a, b dto.RawBox) float64 {
	ix := float64(min(a.X2, b.X2) - max(a.X1, b.X1))
	iy := float64(min(a.Y2, b.Y2) - max(a.Y1, b.Y1))
	if ix <= 0 || iy <= 0 {
		return 0
	}
	inter := ix * iy
	areaA := float64((a.X2 - a.X1) * (a.Y2 - a.Y1))
	areaB := float64((b.X2 - b.X1) * (b.Y2 - b.Y1))
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
