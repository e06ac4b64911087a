package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second), WithLogging(false))

	frame := time.Second / 60
	for i := 0; i < 59; i++ {
		clock.advance(frame)
		assert.False(t, p.Tick())
	}
	clock.advance(time.Second - 59*frame - 1)
	assert.False(t, p.Tick(), "one nanosecond short of the interval")
	clock.advance(1)
	require.True(t, p.Tick())

	s := p.Last()
	assert.InDelta(t, 61, s.FPS, 0.01)
	assert.InDelta(t, 16.39, s.FrameTimeMS, 0.01)
	assert.Greater(t, s.SysMB, 0.0)
}

func TestTickResetsWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(100*time.Millisecond), WithLogging(false))

	clock.advance(200 * time.Millisecond)
	require.True(t, p.Tick())
	assert.InDelta(t, 5, p.Last().FPS, 0.01)

	clock.advance(50 * time.Millisecond)
	assert.False(t, p.Tick(), "new window just started")

	clock.advance(50 * time.Millisecond)
	require.True(t, p.Tick())
	assert.InDelta(t, 20, p.Last().FPS, 0.01)
}

func TestProfilerOptionsIgnoreInvalid(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithClock(nil))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotNil(t, p.now)
	assert.True(t, p.logging)
	assert.Equal(t, Stats{}, p.Last())
}
