// Package yolo decodes raw YOLOv8 detection heads into candidate boxes.
package yolo

import (
	"fmt"
	"image"
	"sort"

	"rockparser/internal/dto"
)

// Candidate is one decoded box before non-maximum suppression, in source
// image pixels.
type Candidate struct {
	ClassID int
	Score   float32
	X1, Y1  float32
	X2, Y2  float32
}

// Rect returns the candidate as an integer rectangle for NMS.
func (c Candidate) Rect() image.Rectangle {
	return image.Rect(int(c.X1), int(c.Y1), int(c.X2), int(c.Y2))
}

// DecodeYOLOv8 reads a YOLOv8 detection head laid out as [4+numClasses][N]
// (cx, cy, w, h, then one score per class for each of the N anchors).
// Boxes are scaled from network input to source pixels by scaleX/scaleY and
// candidates scoring below minScore are dropped.
func DecodeYOLOv8(data []float32, numClasses int, minScore, scaleX, scaleY float32) ([]Candidate, error) {
	channels := 4 + numClasses
	if numClasses <= 0 || len(data) == 0 || len(data)%channels != 0 {
		return nil, fmt.Errorf("output of %d values does not fit %d channels", len(data), channels)
	}
	n := len(data) / channels
	at := func(c, i int) float32 { return data[c*n+i] }

	var candidates []Candidate
	for i := 0; i < n; i++ {
		classID, score := 0, at(4, i)
		for c := 1; c < numClasses; c++ {
			if s := at(4+c, i); s > score {
				classID, score = c, s
			}
		}
		if score < minScore {
			continue
		}

		cx, cy := at(0, i)*scaleX, at(1, i)*scaleY
		w, h := at(2, i)*scaleX, at(3, i)*scaleY
		candidates = append(candidates, Candidate{
			ClassID: classID,
			Score:   score,
			X1:      cx - w/2,
			Y1:      cy - h/2,
			X2:      cx + w/2,
			Y2:      cy + h/2,
		})
	}
	return candidates, nil
}

// ByClass splits candidates so suppression never merges different classes.
func ByClass(candidates []Candidate) map[int][]Candidate {
	groups := make(map[int][]Candidate)
	for _, c := range candidates {
		groups[c.ClassID] = append(groups[c.ClassID], c)
	}
	return groups
}

// SortBoxes orders boxes by descending confidence so output does not depend
// on map iteration order.
func SortBoxes(boxes []dto.RawBox) {
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Confidence != boxes[j].Confidence {
			return boxes[i].Confidence > boxes[j].Confidence
		}
		return boxes[i].ClassID < boxes[j].ClassID
	})
}
