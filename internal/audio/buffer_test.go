// ABOUTME: Tests for channel buffer construction
// ABOUTME: Covers normalization, sync offset padding, and length equalization
package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChannelBufferNormalizes16Bit(t *testing.T) {
	buf := BuildChannelBuffer([]int32{0, 16384, 32767, -32768}, 16, 44100)

	require.Equal(t, 4, buf.Len())
	assert.Equal(t, float32(0), buf.Samples()[0])
	assert.Equal(t, float32(0.5), buf.Samples()[1])
	assert.InDelta(t, 0.99997, buf.Samples()[2], 1e-4)
	// Division by 2^(bitDepth-1) maps the most negative value to exactly -1.0.
	assert.Equal(t, float32(-1.0), buf.Samples()[3])
	assert.Equal(t, 44100, buf.SampleRate())
}

func TestBuildChannelBufferNormalizes24Bit(t *testing.T) {
	buf := BuildChannelBuffer([]int32{4194304, -8388608}, 24, 48000)

	assert.Equal(t, float32(0.5), buf.Samples()[0])
	assert.Equal(t, float32(-1.0), buf.Samples()[1])
}

func stereoDecoded(left, right []int32) *Decoded {
	return &Decoded{
		SampleRate: 1000,
		BitDepth:   16,
		Channels:   2,
		Samples:    [][]int32{left, right},
	}
}

func TestSplitStereoNoOffset(t *testing.T) {
	l, r, err := SplitStereo(stereoDecoded([]int32{100, 200}, []int32{-100, -200}), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, float32(100)/32768, l.Samples()[0])
	assert.Equal(t, float32(-100)/32768, r.Samples()[0])
}

func TestSplitStereoPositiveOffsetDelaysLeft(t *testing.T) {
	// 5ms at 1000Hz = 5 samples of leading silence on the left channel.
	l, r, err := SplitStereo(stereoDecoded([]int32{32767, 32767}, []int32{32767, 32767}), 5)
	require.NoError(t, err)

	require.Equal(t, 7, l.Len())
	require.Equal(t, 7, r.Len(), "right channel is right-padded to match")
	for _, s := range l.Samples()[:5] {
		assert.Zero(t, s)
	}
	assert.NotZero(t, l.Samples()[5])
	assert.NotZero(t, r.Samples()[0])
	for _, s := range r.Samples()[2:] {
		assert.Zero(t, s)
	}
}

func TestSplitStereoNegativeOffsetDelaysRight(t *testing.T) {
	l, r, err := SplitStereo(stereoDecoded([]int32{32767}, []int32{32767}), -3)
	require.NoError(t, err)

	require.Equal(t, 4, l.Len())
	require.Equal(t, 4, r.Len())
	for _, s := range r.Samples()[:3] {
		assert.Zero(t, s)
	}
	assert.NotZero(t, r.Samples()[3])
	assert.NotZero(t, l.Samples()[0])
}

func TestSplitStereoEqualizesUnequalChannels(t *testing.T) {
	for _, tc := range []struct {
		name        string
		left, right int
	}{
		{"left shorter", 10, 25},
		{"right shorter", 25, 10},
		{"equal", 10, 10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l, r, err := SplitStereo(stereoDecoded(make([]int32, tc.left), make([]int32, tc.right)), 0)
			require.NoError(t, err)
			assert.Equal(t, l.Len(), r.Len())
		})
	}
}

func TestSplitStereoRejectsNonStereo(t *testing.T) {
	dec := &Decoded{SampleRate: 1000, BitDepth: 16, Channels: 1, Samples: [][]int32{{1, 2}}}
	_, _, err := SplitStereo(dec, 0)
	require.ErrorIs(t, err, ErrNotStereo)
}

func TestEqualizePair(t *testing.T) {
	l := FromFloats(make([]float32, 5), 8000)
	r := FromFloats(make([]float32, 9), 8000)
	EqualizePair(l, r)
	assert.Equal(t, 9, l.Len())
	assert.Equal(t, 9, r.Len())
}

func TestApplyOffset(t *testing.T) {
	l := FromFloats([]float32{1}, 1000)
	r := FromFloats([]float32{1}, 1000)
	ApplyOffset(l, r, 2)

	require.Equal(t, 3, l.Len())
	require.Equal(t, 3, r.Len())
	assert.Zero(t, l.Samples()[0])
	assert.Equal(t, float32(1), l.Samples()[2])
	assert.Equal(t, float32(1), r.Samples()[0])
}
