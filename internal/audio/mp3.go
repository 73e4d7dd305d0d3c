// ABOUTME: MP3 file decoder
// ABOUTME: Decodes MP3 files to 16-bit stereo PCM
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// loadMP3 decodes an MP3 file. go-mp3 always produces 16-bit
// little-endian stereo output regardless of the source layout.
func loadMP3(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mp3 file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	interleaved := make([]int32, len(raw)/2)
	for i := range interleaved {
		interleaved[i] = int32(int16(binary.LittleEndian.Uint16(raw[i*2:])))
	}

	return &Decoded{
		SampleRate: dec.SampleRate(),
		BitDepth:   16,
		Channels:   2,
		Samples:    deinterleave(interleaved, 2),
	}, nil
}
