// ABOUTME: Host audio subsystem interface
// ABOUTME: Device enumeration plus pull-callback output streams
package host

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDeviceNotFound is returned when no output device matches a sink name.
var ErrDeviceNotFound = errors.New("no matching audio output device")

// PullFunc is the pull-callback contract: fill out with the next block of
// mono float32 samples and report completion. It is invoked on a real-time
// thread owned by the host backend.
type PullFunc func(out []float32) (done bool)

// Device describes one host output device.
type Device struct {
	Index             int
	Name              string
	Default           bool
	MaxOutputChannels int // 0 when the backend does not report it
}

// Stream is an open output stream bound to one device and one pull callback.
type Stream interface {
	// Start begins callback invocations.
	Start() error

	// Stop halts callback invocations; the stream may be started again.
	Stop() error

	// Close releases the stream's device resources.
	Close() error

	// Active reports whether the stream is started and its callback has not
	// yet signalled completion.
	Active() bool
}

// Host is an audio backend capable of enumerating output devices and
// opening pull-callback streams on them.
type Host interface {
	// OutputDevices lists the available output devices.
	OutputDevices() ([]Device, error)

	// OpenStream opens a mono float32 output stream on the given device.
	// The stream is created stopped; the caller starts it.
	OpenStream(device Device, sampleRate, frameCount int, pull PullFunc) (Stream, error)

	// Close releases the backend.
	Close() error
}

// FindOutputDevice returns the first device whose name contains the given
// substring, case-insensitively.
func FindOutputDevice(devices []Device, name string) (Device, error) {
	needle := strings.ToLower(name)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}
