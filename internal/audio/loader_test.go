// ABOUTME: Tests for audio file loading
// ABOUTME: Round-trips a generated WAV file and checks format dispatch
package audio

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestWAV writes a 16-bit stereo WAV with a ramp on the left channel
// and its negation on the right.
func writeTestWAV(t *testing.T, frames, sampleRate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	data := make([]int, frames*2)
	for i := 0; i < frames; i++ {
		data[i*2] = i % 32768
		data[i*2+1] = -(i % 32768)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           data,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	return path
}

func TestLoadWAVRoundTrip(t *testing.T) {
	const frames = 480
	path := writeTestWAV(t, frames, 8000)

	dec, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, dec.SampleRate)
	assert.Equal(t, 16, dec.BitDepth)
	assert.Equal(t, 2, dec.Channels)
	require.Len(t, dec.Samples, 2)
	require.Len(t, dec.Samples[0], frames)
	require.Len(t, dec.Samples[1], frames)

	for i := 0; i < frames; i++ {
		assert.Equal(t, int32(i), dec.Samples[0][i])
		assert.Equal(t, int32(-i), dec.Samples[1][i])
	}
}

func TestLoadWAVFeedsSplitStereo(t *testing.T) {
	path := writeTestWAV(t, 100, 8000)

	dec, err := LoadFile(path)
	require.NoError(t, err)

	l, r, err := SplitStereo(dec, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, l.Len())
	assert.Equal(t, 100, r.Len())
	assert.Equal(t, 8000, l.SampleRate())
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	_, err := LoadFile("song.aiff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
}

func TestDeinterleave(t *testing.T) {
	out := deinterleave([]int32{1, -1, 2, -2, 3, -3}, 2)
	require.Len(t, out, 2)
	assert.Equal(t, []int32{1, 2, 3}, out[0])
	assert.Equal(t, []int32{-1, -2, -3}, out[1])
}

func TestDeinterleaveDropsPartialFrame(t *testing.T) {
	out := deinterleave([]int32{1, -1, 2}, 2)
	assert.Equal(t, []int32{1}, out[0])
	assert.Equal(t, []int32{-1}, out[1])
}
