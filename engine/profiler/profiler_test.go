package profiler_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfiler_SamplesOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })

	clock := &fakeClock{t: time.Unix(0, 0)}
	p := profiler.NewProfiler(profiler.WithUpdateInterval(time.Second), profiler.WithClock(clock.now))

	for range 59 {
		clock.advance(time.Second / 60)
		assert.False(t, p.Tick())
	}
	assert.Zero(t, p.Last().FPS)

	clock.advance(time.Second / 60)
	assert.True(t, p.Tick())

	s := p.Last()
	assert.InDelta(t, 60, s.FPS, 0.01)
	assert.InDelta(t, float64(time.Second/60), float64(s.FrameTime), float64(time.Microsecond))
	assert.Contains(t, buf.String(), "frame stats")
	assert.Contains(t, buf.String(), "fps=")

	clock.advance(time.Second / 60)
	assert.False(t, p.Tick())
}

func TestProfiler_IgnoresNonPositiveInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := profiler.NewProfiler(profiler.WithUpdateInterval(0), profiler.WithClock(clock.now))

	clock.advance(500 * time.Millisecond)
	assert.False(t, p.Tick())
	clock.advance(500 * time.Millisecond)
	assert.True(t, p.Tick())
}
