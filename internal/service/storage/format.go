package storage

import (
	"fmt"
	"strconv"
	"strings"

	"rockparser/internal/model"
)

// FormatRow renders a record in model.FieldNames order.
func FormatRow(r model.Record) []string {
	return []string{
		strconv.Itoa(r.Frame),
		r.ObjectClass,
		strconv.Itoa(r.ID),
		FormatBox(r.Box),
		FormatPoint(r.Center),
		r.Color,
		FormatRadius(r.Radius),
	}
}

func FormatBox(b model.Box) string {
	return fmt.Sprintf("(%d, %d, %d, %d)", b.X1, b.Y1, b.X2, b.Y2)
}

func FormatPoint(p model.Point) string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// FormatRadius prints the shortest representation, keeping one decimal for
// whole numbers (20 -> "20.0").
func FormatRadius(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func parseInts(s string, want int) ([]int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("expected parenthesized tuple, got %q", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d values, got %d in %q", want, len(parts), s)
	}
	out := make([]int, want)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid tuple value %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

// ParseBox reads "(x1, y1, x2, y2)".
func ParseBox(s string) (model.Box, error) {
	v, err := parseInts(s, 4)
	if err != nil {
		return model.Box{}, err
	}
	return model.Box{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

// ParsePoint reads "(x, y)".
func ParsePoint(s string) (model.Point, error) {
	v, err := parseInts(s, 2)
	if err != nil {
		return model.Point{}, err
	}
	return model.Point{X: v[0], Y: v[1]}, nil
}
