// ABOUTME: Channel buffer construction from integer PCM
// ABOUTME: Normalizes samples and applies the inter-sink sync offset
package audio

// BuildChannelBuffer converts integer PCM samples to normalized float32.
// Samples are divided by 2^(bitDepth-1); the most negative PCM value maps to
// exactly -1.0 and no clamping is applied.
func BuildChannelBuffer(raw []int32, bitDepth, sampleRate int) *ChannelBuffer {
	scale := float32(int64(1) << (bitDepth - 1))
	samples := make([]float32, len(raw))
	for i, s := range raw {
		samples[i] = float32(s) / scale
	}
	return &ChannelBuffer{samples: samples, sampleRate: sampleRate}
}

// FromFloats wraps already-normalized samples in a ChannelBuffer.
// The slice is copied so later mutation of the input cannot leak in.
func FromFloats(samples []float32, sampleRate int) *ChannelBuffer {
	out := make([]float32, len(samples))
	copy(out, samples)
	return &ChannelBuffer{samples: out, sampleRate: sampleRate}
}

// SplitStereo builds the left/right channel buffer pair from decoded stereo
// audio. A positive offsetMs prepends that much silence to the left channel,
// a negative offsetMs to the right one; the other channel is then right-padded
// so both buffers end up the same length.
func SplitStereo(dec *Decoded, offsetMs int) (left, right *ChannelBuffer, err error) {
	if dec.Channels != 2 || len(dec.Samples) != 2 {
		return nil, nil, ErrNotStereo
	}

	left = BuildChannelBuffer(dec.Samples[0], dec.BitDepth, dec.SampleRate)
	right = BuildChannelBuffer(dec.Samples[1], dec.BitDepth, dec.SampleRate)

	offsetSamples := offsetMs * dec.SampleRate / 1000
	switch {
	case offsetSamples > 0:
		left.samples = prependSilence(left.samples, offsetSamples)
	case offsetSamples < 0:
		right.samples = prependSilence(right.samples, -offsetSamples)
	}

	left.samples, right.samples = equalizeLength(left.samples, right.samples)
	return left, right, nil
}

// EqualizePair pads the shorter of two buffers with trailing silence so both
// have the same length. Used when the channels come from independent sources
// (e.g. two stem mixes) rather than one stereo file.
func EqualizePair(left, right *ChannelBuffer) {
	left.samples, right.samples = equalizeLength(left.samples, right.samples)
}

// ApplyOffset prepends offsetMs of silence to one of the pair (positive:
// left, negative: right) and re-equalizes lengths.
func ApplyOffset(left, right *ChannelBuffer, offsetMs int) {
	offsetSamples := offsetMs * left.sampleRate / 1000
	switch {
	case offsetSamples > 0:
		left.samples = prependSilence(left.samples, offsetSamples)
	case offsetSamples < 0:
		right.samples = prependSilence(right.samples, -offsetSamples)
	}
	left.samples, right.samples = equalizeLength(left.samples, right.samples)
}

func prependSilence(samples []float32, n int) []float32 {
	out := make([]float32, n+len(samples))
	copy(out[n:], samples)
	return out
}

func equalizeLength(a, b []float32) ([]float32, []float32) {
	switch {
	case len(a) < len(b):
		a = append(a, make([]float32, len(b)-len(a))...)
	case len(b) < len(a):
		b = append(b, make([]float32, len(a)-len(b))...)
	}
	return a, b
}
