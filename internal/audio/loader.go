// ABOUTME: Audio file loading dispatch
// ABOUTME: Decodes supported formats to per-channel integer PCM
package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LoadFile decodes an audio file into per-channel integer PCM.
// The format is chosen by file extension.
func LoadFile(path string) (*Decoded, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return loadMP3(path)
	case ".wav":
		return loadWAV(path)
	case ".flac":
		return loadFLAC(path)
	case ".ogg":
		return loadOgg(path)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
}

// deinterleave splits interleaved PCM into one slice per channel.
// A trailing partial frame is dropped.
func deinterleave(interleaved []int32, channels int) [][]int32 {
	frames := len(interleaved) / channels
	out := make([][]int32, channels)
	for ch := range out {
		out[ch] = make([]int32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out[ch][i] = interleaved[i*channels+ch]
		}
	}
	return out
}
