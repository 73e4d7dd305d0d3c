// ABOUTME: Ogg Vorbis file decoder
// ABOUTME: Decodes Vorbis floats and requantizes to 16-bit PCM
package audio

import (
	"fmt"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// loadOgg decodes an Ogg Vorbis file. Vorbis decodes to floats, so the
// samples are requantized to 16-bit so that the shared normalization path
// sees integer PCM like every other format.
func loadOgg(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ogg file: %w", err)
	}
	defer func() { _ = f.Close() }()

	floats, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("ogg decode error: %w", err)
	}

	interleaved := make([]int32, len(floats))
	for i, s := range floats {
		v := int32(s * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		interleaved[i] = v
	}

	return &Decoded{
		SampleRate: format.SampleRate,
		BitDepth:   16,
		Channels:   format.Channels,
		Samples:    deinterleave(interleaved, format.Channels),
	}, nil
}
