package fader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent_Endpoints(t *testing.T) {
	assert.Equal(t, 0, Percent(0))
	assert.Equal(t, 100, Percent(127))
	assert.Equal(t, 50, Percent(64))
}

func TestPercent_MonotonicAndBounded(t *testing.T) {
	prev := Percent(0)
	for raw := 0; raw <= 127; raw++ {
		got := Percent(raw)
		assert.GreaterOrEqual(t, got, prev, "raw=%d", raw)
		assert.GreaterOrEqual(t, got, 0, "raw=%d", raw)
		assert.LessOrEqual(t, got, 100, "raw=%d", raw)
		prev = got
	}
}

func TestRangeScale(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		raw  int
		want int
	}{
		{"default low", DefaultRange, 1, 1},
		{"default mid", DefaultRange, 100, 79},
		{"inverted output", Range{InMin: 0, InMax: 127, OutMin: 100, OutMax: 0}, 127, 0},
		{"offset input", Range{InMin: 10, InMax: 20, OutMin: 0, OutMax: 10}, 15, 5},
		{"half rounds to even", Range{InMin: 0, InMax: 4, OutMin: 0, OutMax: 2}, 1, 0},
		{"half rounds to even up", Range{InMin: 0, InMax: 4, OutMin: 0, OutMax: 2}, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.Scale(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeScale_DegenerateRange(t *testing.T) {
	_, err := Range{InMin: 5, InMax: 5, OutMin: 0, OutMax: 100}.Scale(5)
	assert.ErrorIs(t, err, ErrDegenerateRange)
}

func TestValue(t *testing.T) {
	var v Value
	assert.Equal(t, 0, v.Load())
	v.Store(42)
	assert.Equal(t, 42, v.Load())
}
