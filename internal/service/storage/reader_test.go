package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rockparser/internal/model"
)

func TestFormatRadius(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{20, "20.0"},
		{20.5, "20.5"},
		{0, "0.0"},
		{-1.5, "-1.5"},
		{0.25, "0.25"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRadius(tt.in))
	}
}

func TestReader(t *testing.T) {
	log := `frame,object_class,id,box_coords,center,color,radius
2,Rock,3,"(10, 20, 30, 60)","(20, 40)",red,20.0
5,Rock,4,"(-5, -3, 2, 0)","(-2, -2)",yellow,1.5
`
	r, err := NewReader(strings.NewReader(log))
	require.NoError(t, err)

	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []model.Record{
		{Frame: 2, ObjectClass: "Rock", ID: 3, Box: model.Box{X1: 10, Y1: 20, X2: 30, Y2: 60}, Center: model.Point{X: 20, Y: 40}, Color: "red", Radius: 20},
		{Frame: 5, ObjectClass: "Rock", ID: 4, Box: model.Box{X1: -5, Y1: -3, X2: 2, Y2: 0}, Center: model.Point{X: -2, Y: -2}, Color: "yellow", Radius: 1.5},
	}, got)
}

func TestReader_Errors(t *testing.T) {
	_, err := NewReader(strings.NewReader("a,b,c,d,e,f,g\n"))
	assert.ErrorIs(t, err, ErrBadHeader)

	_, err = NewReader(strings.NewReader(""))
	assert.Error(t, err)

	tests := []struct {
		name string
		row  string
	}{
		{"frame", `x,Rock,3,"(1, 2, 3, 4)","(2, 3)",red,1.0`},
		{"box arity", `1,Rock,3,"(1, 2, 3)","(2, 3)",red,1.0`},
		{"center brackets", `1,Rock,3,"(1, 2, 3, 4)","2, 3",red,1.0`},
		{"radius", `1,Rock,3,"(1, 2, 3, 4)","(2, 3)",red,wide`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(strings.Join(model.FieldNames, ",") + "\n" + tt.row + "\n"))
			require.NoError(t, err)
			_, err = r.Read()
			assert.ErrorContains(t, err, "line 2")
		})
	}
}
