// ABOUTME: Drift-correcting playback cursor
// ABOUTME: Tracks wall-clock elapsed time against samples emitted and resyncs on drift
package player

import (
	"sync/atomic"
	"time"

	"github.com/Splitcast-Audio/splitcast-go/internal/audio"
)

// Cursor tracks the playback position of one channel buffer and keeps it
// aligned with wall-clock time. Each output callback invocation pulls the
// next block through it; if the position has drifted more than two callback
// periods from where the elapsed time says it should be, the cursor snaps to
// the expected position. Small drift is tolerated so scheduling jitter does
// not cause constant micro-jumps.
//
// A cursor has a single writer: only its own callback thread calls Pull.
// Position and stats are atomics so the control thread can observe them.
type Cursor struct {
	samples    []float32
	sampleRate int

	started   bool
	startTime time.Time

	position  atomic.Int64
	resyncs   atomic.Int64
	lastDrift atomic.Int64

	now func() time.Time
}

// CursorStats is a snapshot of cursor progress for the control thread.
type CursorStats struct {
	Position  int
	Length    int
	Resyncs   int64
	LastDrift int64
}

// NewCursor creates a cursor over a channel buffer.
func NewCursor(buf *audio.ChannelBuffer) *Cursor {
	return &Cursor{
		samples:    buf.Samples(),
		sampleRate: buf.SampleRate(),
		now:        time.Now,
	}
}

// Pull fills out with the next block of samples and reports whether the end
// of the buffer has been reached. It runs on the real-time callback thread:
// no allocation, no locks, no logging.
func (c *Cursor) Pull(out []float32) (done bool) {
	if !c.started {
		c.started = true
		c.startTime = c.now()
	}

	elapsed := c.now().Sub(c.startTime)
	expected := int(int64(elapsed) * int64(c.sampleRate) / int64(time.Second))

	pos := int(c.position.Load())
	drift := expected - pos
	c.lastDrift.Store(int64(drift))

	// Hard resync once drift exceeds two callback periods. This bounds the
	// worst-case phase error at the cost of one audible jump.
	if drift > 2*len(out) || drift < -2*len(out) {
		pos = expected
		if pos > len(c.samples) {
			pos = len(c.samples)
		}
		if pos < 0 {
			pos = 0
		}
		c.resyncs.Add(1)
	}

	if pos >= len(c.samples) {
		zeroFill(out)
		c.position.Store(int64(len(c.samples)))
		return true
	}

	n := copy(out, c.samples[pos:])
	zeroFill(out[n:])

	pos += len(out)
	if pos > len(c.samples) {
		pos = len(c.samples)
	}
	c.position.Store(int64(pos))
	return false
}

// Stats returns a snapshot of cursor progress.
func (c *Cursor) Stats() CursorStats {
	return CursorStats{
		Position:  int(c.position.Load()),
		Length:    len(c.samples),
		Resyncs:   c.resyncs.Load(),
		LastDrift: c.lastDrift.Load(),
	}
}

func zeroFill(out []float32) {
	for i := range out {
		out[i] = 0
	}
}
