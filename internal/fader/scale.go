// Package fader holds the public percentage domain: the linear scaler that
// maps raw 7-bit controller readings onto 0-100 and the process-wide holder
// for the live value.
package fader

import (
	"errors"
	"math"
)

// ErrDegenerateRange is returned when a Range has an empty input span.
var ErrDegenerateRange = errors.New("fader: input range is empty (in_min == in_max)")

// Range describes a linear mapping from [InMin, InMax] to [OutMin, OutMax].
type Range struct {
	InMin  int
	InMax  int
	OutMin int
	OutMax int
}

// DefaultRange maps a MIDI control value (0-127) to a percentage.
var DefaultRange = Range{InMin: 0, InMax: 127, OutMin: 0, OutMax: 100}

// Scale maps raw into the output range, rounding half to even.
func (r Range) Scale(raw int) (int, error) {
	if r.InMax == r.InMin {
		return 0, ErrDegenerateRange
	}
	return r.scale(raw), nil
}

func (r Range) scale(raw int) int {
	v := float64(raw-r.InMin)*float64(r.OutMax-r.OutMin)/float64(r.InMax-r.InMin) + float64(r.OutMin)
	return int(math.RoundToEven(v))
}

// Percent scales a raw controller value with DefaultRange.
func Percent(raw int) int {
	return DefaultRange.scale(raw)
}
