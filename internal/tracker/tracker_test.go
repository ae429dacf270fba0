package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crossfader-relay/crossfader/internal/fader"
	"github.com/crossfader-relay/crossfader/internal/midi"
	"github.com/crossfader-relay/crossfader/internal/mock"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures broadcasts along with the shared value at call time.
type recorder struct {
	mu      sync.Mutex
	value   *fader.Value
	sent    []int
	atStore []int
}

func (r *recorder) Broadcast(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, v)
	r.atStore = append(r.atStore, r.value.Load())
}

func (r *recorder) values() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.sent...)
}

func newTracker(src midi.Source, control int) (*Tracker, *recorder, *fader.Value) {
	v := &fader.Value{}
	rec := &recorder{value: v}
	return New(src, control, v, rec, clockwork.NewRealClock(), time.Millisecond), rec, v
}

func TestProcess_SuppressesRepeats(t *testing.T) {
	tr, rec, v := newTracker(nil, 7)

	tr.Process([]midi.Event{midi.CC(7, 127), midi.CC(7, 127), midi.CC(7, 127)})
	assert.Equal(t, []int{100}, rec.values())
	assert.Equal(t, 100, v.Load())

	tr.Process([]midi.Event{midi.CC(7, 127)})
	assert.Equal(t, []int{100}, rec.values())
}

func TestProcess_SameScaledValueFromDifferentRaw(t *testing.T) {
	tr, rec, _ := newTracker(nil, 7)

	// 63 and 64 both land on 50%.
	require.Equal(t, fader.Percent(63), fader.Percent(64))
	tr.Process([]midi.Event{midi.CC(7, 63), midi.CC(7, 64)})
	assert.Equal(t, []int{50}, rec.values())
}

func TestProcess_InitialZeroIsNotBroadcast(t *testing.T) {
	tr, rec, _ := newTracker(nil, 7)
	tr.Process([]midi.Event{midi.CC(7, 0)})
	assert.Empty(t, rec.values())
}

func TestProcess_IgnoresOtherControlsAndKinds(t *testing.T) {
	tr, rec, v := newTracker(nil, 7)
	tr.Process([]midi.Event{
		midi.CC(8, 127),
		{Kind: midi.Other, Control: 7, Value: 127},
		midi.CC(7, 32),
	})
	assert.Equal(t, []int{fader.Percent(32)}, rec.values())
	assert.Equal(t, fader.Percent(32), v.Load())
}

func TestProcess_StoresBeforeBroadcast(t *testing.T) {
	tr, rec, _ := newTracker(nil, 7)
	tr.Process([]midi.Event{midi.CC(7, 10), midi.CC(7, 90), midi.CC(7, 40)})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, rec.sent, rec.atStore)
	assert.Equal(t, []int{8, 71, 31}, rec.sent)
}

func TestProcess_OnChange(t *testing.T) {
	tr, _, _ := newTracker(nil, 7)
	var seen []int
	tr.OnChange = func(v int) { seen = append(seen, v) }
	tr.Process([]midi.Event{midi.CC(7, 127), midi.CC(7, 127), midi.CC(7, 0)})
	assert.Equal(t, []int{100, 0}, seen)
}

func TestRun_DeviceFailureStopsTracking(t *testing.T) {
	gone := &midi.DeviceError{Device: "dj", Err: errors.New("unplugged")}
	src := mock.NewScript([]midi.Event{midi.CC(7, 127)}, []midi.Event{midi.CC(7, 0)}).FailWith(gone)
	tr, rec, _ := newTracker(src, 7)

	err := tr.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, midi.ErrDevice)
	assert.Equal(t, []int{100, 0}, rec.values())
}

func TestRun_StopsOnCancel(t *testing.T) {
	tr, _, _ := newTracker(mock.NewScript(), 7)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not stop")
	}
}

func TestRun_FollowsGenerator(t *testing.T) {
	clock := clockwork.NewFakeClock()
	gen := mock.NewGenerator(clock, 7, time.Second)
	v := &fader.Value{}
	rec := &recorder{value: v}
	tr := New(gen, 7, v, rec, clock, 10*time.Millisecond)

	clock.Advance(500 * time.Millisecond)
	events, err := gen.Drain()
	require.NoError(t, err)
	tr.Process(events)

	got := rec.values()
	require.NotEmpty(t, got)
	assert.Equal(t, 100, got[len(got)-1])
	for i := 1; i < len(got); i++ {
		assert.NotEqual(t, got[i-1], got[i], "consecutive broadcasts must differ")
	}
}
