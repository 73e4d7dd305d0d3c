// ABOUTME: FLAC file decoder
// ABOUTME: Decodes FLAC frames to per-channel integer PCM via mewkiz/flac
package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// loadFLAC decodes a FLAC file frame by frame.
func loadFLAC(path string) (*Decoded, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flac file: %w", err)
	}
	defer func() { _ = stream.Close() }()

	channels := int(stream.Info.NChannels)
	samples := make([][]int32, channels)

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac decode error: %w", err)
		}
		for ch := 0; ch < channels && ch < len(frame.Subframes); ch++ {
			samples[ch] = append(samples[ch], frame.Subframes[ch].Samples...)
		}
	}

	return &Decoded{
		SampleRate: int(stream.Info.SampleRate),
		BitDepth:   int(stream.Info.BitsPerSample),
		Channels:   channels,
		Samples:    samples,
	}, nil
}
