//go:build portaudio

// ABOUTME: PortAudio host audio backend
// ABOUTME: Alternative backend built with -tags portaudio
package host

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// PortAudioHost is an alternative backend using PortAudio.
type PortAudioHost struct {
	mu    sync.Mutex
	infos []*portaudio.DeviceInfo
}

// NewPortAudio initializes the PortAudio backend.
func NewPortAudio() (Host, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &PortAudioHost{}, nil
}

// OutputDevices enumerates devices with at least one output channel.
func (h *PortAudioHost) OutputDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	defaultOut, _ := portaudio.DefaultOutputDevice()

	h.mu.Lock()
	h.infos = h.infos[:0]
	var devices []Device
	for _, info := range infos {
		if info.MaxOutputChannels <= 0 {
			continue
		}
		devices = append(devices, Device{
			Index:             len(h.infos),
			Name:              info.Name,
			Default:           info == defaultOut,
			MaxOutputChannels: info.MaxOutputChannels,
		})
		h.infos = append(h.infos, info)
	}
	h.mu.Unlock()

	return devices, nil
}

// OpenStream opens a mono float32 callback stream on the given device.
func (h *PortAudioHost) OpenStream(device Device, sampleRate, frameCount int, pull PullFunc) (Stream, error) {
	h.mu.Lock()
	infos := h.infos
	h.mu.Unlock()

	if device.Index < 0 || device.Index >= len(infos) {
		return nil, fmt.Errorf("unknown device index %d (enumerate devices first)", device.Index)
	}
	info := infos[device.Index]

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: 1,
			Latency:  info.DefaultLowOutputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: frameCount,
	}

	s := &portAudioStream{}
	stream, err := portaudio.OpenStream(params, func(out []float32) {
		if pull(out) {
			s.done.Store(true)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open stream on %q: %w", device.Name, err)
	}

	s.stream = stream
	return s, nil
}

// Close terminates PortAudio.
func (h *PortAudioHost) Close() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("portaudio terminate: %w", err)
	}
	return nil
}

type portAudioStream struct {
	stream  *portaudio.Stream
	started atomic.Bool
	done    atomic.Bool
}

func (s *portAudioStream) Start() error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	s.started.Store(true)
	return nil
}

func (s *portAudioStream) Stop() error {
	s.started.Store(false)
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop stream: %w", err)
	}
	return nil
}

func (s *portAudioStream) Close() error {
	s.started.Store(false)
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

func (s *portAudioStream) Active() bool {
	return s.started.Load() && !s.done.Load()
}
