// ABOUTME: Audio type definitions
// ABOUTME: Defines decoded file data and per-channel playback buffers
package audio

import (
	"errors"
	"time"
)

// ErrNotStereo is returned when a source file does not carry exactly two channels.
var ErrNotStereo = errors.New("audio source must be stereo (exactly 2 channels)")

// Decoded holds the integer PCM output of a file decoder,
// one sample slice per channel.
type Decoded struct {
	SampleRate int
	BitDepth   int
	Channels   int
	Samples    [][]int32
}

// Duration returns the playback length of the decoded audio.
func (d *Decoded) Duration() time.Duration {
	if d.Channels == 0 || len(d.Samples) == 0 || d.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(d.Samples[0])) * time.Second / time.Duration(d.SampleRate)
}

// ChannelBuffer is an immutable, normalized single-channel sample sequence.
// Samples are float32 nominally in [-1.0, 1.0] and must not be mutated after
// construction.
type ChannelBuffer struct {
	samples    []float32
	sampleRate int
}

// Samples returns the normalized sample data. Callers must treat it as read-only.
func (b *ChannelBuffer) Samples() []float32 {
	return b.samples
}

// SampleRate returns the buffer's sample rate in Hz.
func (b *ChannelBuffer) SampleRate() int {
	return b.sampleRate
}

// Len returns the number of samples in the buffer.
func (b *ChannelBuffer) Len() int {
	return len(b.samples)
}

// Duration returns the playback length of the buffer.
func (b *ChannelBuffer) Duration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.sampleRate)
}
