package fader

import "sync/atomic"

// Value is the live percentage shared between the tracker (sole writer) and
// the broadcast hub (reader). The zero value holds 0.
type Value struct {
	v atomic.Int64
}

// Load returns the current value.
func (v *Value) Load() int {
	return int(v.v.Load())
}

// Store replaces the current value.
func (v *Value) Store(n int) {
	v.v.Store(int64(n))
}
