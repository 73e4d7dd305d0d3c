// ABOUTME: Malgo-based host audio backend
// ABOUTME: Default backend using miniaudio for device enumeration and callback streams
package host

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gen2brain/malgo"
)

// MalgoHost is the default audio backend, built on miniaudio via malgo.
type MalgoHost struct {
	ctx *malgo.AllocatedContext

	mu    sync.Mutex
	infos []malgo.DeviceInfo
}

// NewMalgo initializes the malgo backend.
func NewMalgo() (*MalgoHost, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	return &MalgoHost{ctx: ctx}, nil
}

// OutputDevices enumerates playback devices.
func (h *MalgoHost) OutputDevices() ([]Device, error) {
	infos, err := h.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate playback devices: %w", err)
	}

	h.mu.Lock()
	h.infos = infos
	h.mu.Unlock()

	devices := make([]Device, 0, len(infos))
	for i := range infos {
		devices = append(devices, Device{
			Index:   i,
			Name:    infos[i].Name(),
			Default: infos[i].IsDefault == 1,
		})
	}
	return devices, nil
}

// OpenStream opens a mono float32 callback stream on the given device.
func (h *MalgoHost) OpenStream(device Device, sampleRate, frameCount int, pull PullFunc) (Stream, error) {
	h.mu.Lock()
	infos := h.infos
	h.mu.Unlock()

	if device.Index < 0 || device.Index >= len(infos) {
		return nil, fmt.Errorf("unknown device index %d (enumerate devices first)", device.Index)
	}
	info := infos[device.Index]

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1
	deviceConfig.Playback.DeviceID = info.ID.Pointer()
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(frameCount)
	deviceConfig.Alsa.NoMMap = 1

	s := &malgoStream{}

	// The malgo buffer is reinterpreted as []float32 in place so the
	// real-time callback never allocates.
	onSamples := func(pOutput, pInput []byte, frames uint32) {
		if frames == 0 || len(pOutput) < int(frames)*4 {
			return
		}
		out := unsafe.Slice((*float32)(unsafe.Pointer(&pOutput[0])), frames)
		if pull(out) {
			s.done.Store(true)
		}
	}

	dev, err := malgo.InitDevice(h.ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback device %q: %w", device.Name, err)
	}

	s.device = dev
	return s, nil
}

// Close releases the malgo context.
func (h *MalgoHost) Close() error {
	if h.ctx == nil {
		return nil
	}
	err := h.ctx.Uninit()
	h.ctx.Free()
	h.ctx = nil
	if err != nil {
		return fmt.Errorf("malgo context uninit: %w", err)
	}
	return nil
}

type malgoStream struct {
	device  *malgo.Device
	started atomic.Bool
	done    atomic.Bool
}

func (s *malgoStream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	s.started.Store(true)
	return nil
}

func (s *malgoStream) Stop() error {
	s.started.Store(false)
	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}
	return nil
}

func (s *malgoStream) Close() error {
	s.started.Store(false)
	s.device.Uninit()
	return nil
}

func (s *malgoStream) Active() bool {
	return s.started.Load() && !s.done.Load()
}
