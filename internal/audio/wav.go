// ABOUTME: WAV file decoder
// ABOUTME: Decodes PCM WAV files via go-audio
package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// loadWAV decodes a PCM WAV file at its native bit depth.
func loadWAV(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}

	interleaved := make([]int32, len(buf.Data))
	for i, s := range buf.Data {
		interleaved[i] = int32(s)
	}

	channels := buf.Format.NumChannels
	return &Decoded{
		SampleRate: buf.Format.SampleRate,
		BitDepth:   int(dec.BitDepth),
		Channels:   channels,
		Samples:    deinterleave(interleaved, channels),
	}, nil
}
