// ABOUTME: Stem separation collaborator
// ABOUTME: Runs an external separator and mixes named stems into channel buffers
package stems

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Splitcast-Audio/splitcast-go/internal/audio"
)

// DefaultCommand is the external separator tool.
const DefaultCommand = "spleeter"

// Stem is one separated instrument track, mono and normalized.
type Stem struct {
	Samples    []float32
	SampleRate int
}

// Names returns the stem names produced by an N-stem separation.
func Names(stemCount int) ([]string, error) {
	switch stemCount {
	case 2:
		return []string{"vocals", "accompaniment"}, nil
	case 4:
		return []string{"vocals", "drums", "bass", "other"}, nil
	case 5:
		return []string{"vocals", "drums", "bass", "piano", "other"}, nil
	default:
		return nil, fmt.Errorf("stem count must be 2, 4, or 5 (got %d)", stemCount)
	}
}

// Separator drives the external source-separation tool as an offline batch
// transform and holds the resulting stems.
type Separator struct {
	Stems   int
	Command string

	tempDir string
	stems   map[string]Stem
}

// NewSeparator creates a separator for the given stem count.
func NewSeparator(stemCount int) (*Separator, error) {
	if _, err := Names(stemCount); err != nil {
		return nil, err
	}
	return &Separator{Stems: stemCount, Command: DefaultCommand}, nil
}

// Separate runs the separator on the given file and loads each stem as a
// mono normalized track. The caller should Cleanup when done.
func (s *Separator) Separate(ctx context.Context, file string) (map[string]Stem, error) {
	names, err := Names(s.Stems)
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "splitcast-stems-")
	if err != nil {
		return nil, fmt.Errorf("failed to create stem workspace: %w", err)
	}
	s.tempDir = tempDir

	preset := fmt.Sprintf("spleeter:%dstems", s.Stems)
	cmd := exec.CommandContext(ctx, s.Command, "separate", "-p", preset, "-o", tempDir, file)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("stem separation failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	stemsDir := filepath.Join(tempDir, base)

	stems := make(map[string]Stem, len(names))
	for _, name := range names {
		dec, err := audio.LoadFile(filepath.Join(stemsDir, name+".wav"))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s stem: %w", name, err)
		}
		stems[name] = Stem{Samples: monoMix(dec), SampleRate: dec.SampleRate}
		log.Printf("Loaded %s stem: %d samples at %d Hz", name, len(stems[name].Samples), dec.SampleRate)
	}

	s.stems = stems
	return stems, nil
}

// SetStems injects already-separated stems, mainly for tests and callers
// that source stems elsewhere.
func (s *Separator) SetStems(stems map[string]Stem) {
	s.stems = stems
}

// Combine mixes the named stems into one channel buffer. The mix is
// peak-normalized only when it exceeds full scale.
func (s *Separator) Combine(names ...string) (*audio.ChannelBuffer, error) {
	if len(s.stems) == 0 {
		return nil, fmt.Errorf("no stems available (call Separate first)")
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no stem names given")
	}
	for _, name := range names {
		if _, ok := s.stems[name]; !ok {
			return nil, fmt.Errorf("stem %q not found (available: %s)", name, strings.Join(s.available(), ", "))
		}
	}

	first := s.stems[names[0]]
	combined := make([]float32, len(first.Samples))
	for _, name := range names {
		for i, v := range s.stems[name].Samples {
			if i >= len(combined) {
				break
			}
			combined[i] += v
		}
	}

	var peak float32
	for _, v := range combined {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak > 1.0 {
		for i := range combined {
			combined[i] /= peak
		}
	}

	return audio.FromFloats(combined, first.SampleRate), nil
}

// Cleanup removes the separator's temporary output directory.
func (s *Separator) Cleanup() {
	if s.tempDir == "" {
		return
	}
	if err := os.RemoveAll(s.tempDir); err != nil {
		log.Printf("Failed to remove stem workspace %s: %v", s.tempDir, err)
	}
	s.tempDir = ""
}

func (s *Separator) available() []string {
	names := make([]string, 0, len(s.stems))
	for name := range s.stems {
		names = append(names, name)
	}
	return names
}

// monoMix averages all channels of decoded audio into one normalized track.
func monoMix(dec *audio.Decoded) []float32 {
	if len(dec.Samples) == 0 {
		return nil
	}
	scale := float32(int64(1) << (dec.BitDepth - 1))
	n := len(dec.Samples[0])
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for ch := range dec.Samples {
			if i < len(dec.Samples[ch]) {
				sum += float32(dec.Samples[ch][i]) / scale
			}
		}
		out[i] = sum / float32(len(dec.Samples))
	}
	return out
}
