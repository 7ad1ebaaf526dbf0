package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestReportAveragesOverInterval(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.Now), WithInterval(time.Second))

	for i := range 3 {
		clock.Advance(250 * time.Millisecond)
		assert.False(t, p.Tick(Sample{Encoders: 5, Commands: 8, InFlight: 2, Waited: time.Duration(i+1) * 50 * time.Millisecond}))
	}
	clock.Advance(250 * time.Millisecond)
	require.True(t, p.Tick(Sample{Encoders: 5, Commands: 12, Skipped: 1, InFlight: 3, Waited: 200 * time.Millisecond}))

	r := p.Last()
	assert.InDelta(t, 4, r.FPS, 1e-9)
	assert.InDelta(t, 5, r.Encoders, 1e-9)
	assert.InDelta(t, 9, r.Commands, 1e-9)
	assert.InDelta(t, 2.25, r.InFlight, 1e-9)
	assert.Equal(t, 1, r.Skipped)
	assert.InDelta(t, 0.2, r.Blocked, 1e-9)
}

func TestIntervalResets(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.Now), WithInterval(time.Second))

	clock.Advance(time.Second)
	require.True(t, p.Tick(Sample{Commands: 10, Waited: time.Second}))

	clock.Advance(2 * time.Second)
	require.True(t, p.Tick(Sample{Commands: 2, Waited: time.Second}))
	r := p.Last()
	assert.InDelta(t, 0.5, r.FPS, 1e-9)
	assert.InDelta(t, 2, r.Commands, 1e-9)
	assert.Zero(t, r.Blocked)
}

func TestInvalidIntervalKeepsDefault(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.Now), WithInterval(0))
	clock.Advance(500 * time.Millisecond)
	assert.False(t, p.Tick(Sample{}))
}
