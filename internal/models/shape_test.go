package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_Equivalent(t *testing.T) {
	base := &Shape{ID: 1, Points: []Point{{0, 0}, {10, 10}}, R: 255, A: 1}

	tests := []struct {
		other    *Shape
		name     string
		expected bool
	}{
		{
			name:     "same points, different color and thickness",
			other:    &Shape{ID: 7, Points: []Point{{0, 0}, {10, 10}}, G: 12, Thickness: 9, A: 0.1},
			expected: true,
		},
		{
			name:     "different length",
			other:    &Shape{Points: []Point{{0, 0}}},
			expected: false,
		},
		{
			name:     "same length, one coordinate differs",
			other:    &Shape{Points: []Point{{0, 0}, {10, 10.5}}},
			expected: false,
		},
		{
			name:     "same points reversed",
			other:    &Shape{Points: []Point{{10, 10}, {0, 0}}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, base.Equivalent(tt.other))
			assert.Equal(t, tt.expected, tt.other.Equivalent(base))
		})
	}
}

func TestFindEquivalent(t *testing.T) {
	shapes := []Shape{
		{ID: 0, Points: []Point{{1, 1}}},
		{ID: 1, Points: []Point{{2, 2}, {3, 3}}},
		{ID: 2, Points: []Point{{2, 2}, {3, 3}}},
	}

	assert.Equal(t, 1, FindEquivalent(shapes, &Shape{Points: []Point{{2, 2}, {3, 3}}}))
	assert.Equal(t, 0, FindEquivalent(shapes, &Shape{Points: []Point{{1, 1}}}))
	assert.Equal(t, -1, FindEquivalent(shapes, &Shape{Points: []Point{{4, 4}}}))
	assert.Equal(t, -1, FindEquivalent(nil, &Shape{Points: []Point{{4, 4}}}))
}

func TestShape_Clone(t *testing.T) {
	original := Shape{ID: 3, Points: []Point{{1, 2}}, A: 0.5}
	cloned := original.Clone()

	assert.Equal(t, original, cloned)

	// Изменение копии не должно затрагивать оригинал
	cloned.Points[0] = Point{9, 9}
	assert.Equal(t, Point{1, 2}, original.Points[0])
}

func TestShape_UnmarshalJSON(t *testing.T) {
	t.Run("with id", func(t *testing.T) {
		var s Shape
		err := json.Unmarshal([]byte(`{"id":4,"t":3,"p":[[0,0],[10,10]],"r":1,"g":2,"b":3,"a":0.5}`), &s)
		require.NoError(t, err)

		assert.Equal(t, int64(4), s.ID)
		assert.True(t, s.HasID())
		assert.Equal(t, []Point{{0, 0}, {10, 10}}, s.Points)
		assert.Equal(t, 3.0, s.Thickness)
		assert.Equal(t, 1, s.R)
		assert.Equal(t, 2, s.G)
		assert.Equal(t, 3, s.B)
		assert.Equal(t, 0.5, s.A)
	})

	t.Run("legacy shape without id", func(t *testing.T) {
		var s Shape
		err := json.Unmarshal([]byte(`{"t":3,"p":[[1,1]],"a":1}`), &s)
		require.NoError(t, err)

		assert.Equal(t, NoID, s.ID)
		assert.False(t, s.HasID())
	})

	t.Run("zero id is a real id", func(t *testing.T) {
		var s Shape
		err := json.Unmarshal([]byte(`{"id":0,"p":[[1,1]]}`), &s)
		require.NoError(t, err)

		assert.True(t, s.HasID())
		assert.Equal(t, int64(0), s.ID)
	})
}
