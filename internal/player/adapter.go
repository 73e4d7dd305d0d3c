// ABOUTME: Output callback adapter
// ABOUTME: Binds a cursor to a host audio pull callback with sticky completion
package player

import "sync/atomic"

// Adapter satisfies the host audio subsystem's pull-callback contract for a
// single output device. It forwards each invocation to its cursor and
// latches the cursor's terminal state so the host sees a definitive
// end-of-stream: once done, every later invocation emits silence.
//
// Like Cursor.Pull, the Pull method runs on a real-time thread and must not
// allocate, lock, log, or block.
type Adapter struct {
	cursor *Cursor
	done   atomic.Bool
	pulls  atomic.Int64
}

// NewAdapter wraps a cursor in a callback adapter.
func NewAdapter(cursor *Cursor) *Adapter {
	return &Adapter{cursor: cursor}
}

// Pull fills out with the next sample block. The returned done signal tells
// the host stream to report itself inactive.
func (a *Adapter) Pull(out []float32) (done bool) {
	a.pulls.Add(1)

	if a.done.Load() {
		zeroFill(out)
		return true
	}
	if a.cursor.Pull(out) {
		a.done.Store(true)
		return true
	}
	return false
}

// Active reports whether the stream still has audio to emit.
func (a *Adapter) Active() bool {
	return !a.done.Load()
}

// Pulls returns the number of callback invocations seen so far.
func (a *Adapter) Pulls() int64 {
	return a.pulls.Load()
}

// Stats returns the underlying cursor's progress snapshot.
func (a *Adapter) Stats() CursorStats {
	return a.cursor.Stats()
}
