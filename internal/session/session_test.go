// ABOUTME: Tests for the dual-stream session state machine
// ABOUTME: Uses fake host and connector to cover lifecycle and failure paths
package session

import (
	"context"
	"testing"
	"time"

	"github.com/Splitcast-Audio/splitcast-go/internal/audio"
	"github.com/Splitcast-Audio/splitcast-go/internal/host"
	"github.com/Splitcast-Audio/splitcast-go/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnector struct {
	failAddr    string
	connected   []string
	disconnects []string
}

func (c *fakeConnector) Connect(_ context.Context, dev sink.Device) error {
	if dev.Address == c.failAddr {
		return sink.ErrConnectFailed
	}
	c.connected = append(c.connected, dev.Address)
	return nil
}

func (c *fakeConnector) Disconnect(_ context.Context, dev sink.Device) error {
	c.disconnects = append(c.disconnects, dev.Address)
	return nil
}

type fakeStream struct {
	pull       host.PullFunc
	frameCount int
	drain      bool // pump the callback to completion on Start

	startedAt time.Time
	started   bool
	stopped   bool
	closed    bool
	done      bool
}

func (s *fakeStream) Start() error {
	s.started = true
	s.startedAt = time.Now()
	if s.drain {
		out := make([]float32, s.frameCount)
		for i := 0; i < 10000 && !s.done; i++ {
			s.done = s.pull(out)
		}
	}
	return nil
}

func (s *fakeStream) Stop() error  { s.stopped = true; return nil }
func (s *fakeStream) Close() error { s.closed = true; return nil }

func (s *fakeStream) Active() bool {
	return s.started && !s.stopped && !s.done
}

type fakeHost struct {
	devices []host.Device
	drain   bool
	streams []*fakeStream
}

func (h *fakeHost) OutputDevices() ([]host.Device, error) {
	return h.devices, nil
}

func (h *fakeHost) OpenStream(_ host.Device, _, frameCount int, pull host.PullFunc) (host.Stream, error) {
	s := &fakeStream{pull: pull, frameCount: frameCount, drain: h.drain}
	h.streams = append(h.streams, s)
	return s, nil
}

func (h *fakeHost) Close() error { return nil }

func silence(n, sampleRate int) *audio.ChannelBuffer {
	return audio.FromFloats(make([]float32, n), sampleRate)
}

func testConfig(h *fakeHost, c *fakeConnector) Config {
	return Config{
		Host:            h,
		Connector:       c,
		LeftSink:        sink.Device{Address: "aa", Name: "JBL Charge 5"},
		RightSink:       sink.Device{Address: "bb", Name: "JBL Charge 5 Wi-Fi"},
		LeftBuffer:      silence(512, 8000),
		RightBuffer:     silence(512, 8000),
		FrameCount:      256,
		InterStartDelay: time.Millisecond,
		PollInterval:    5 * time.Millisecond,
		SettleDelay:     0,
	}
}

func testDevices() []host.Device {
	return []host.Device{
		{Index: 0, Name: "Built-in Output", Default: true},
		{Index: 1, Name: "JBL Charge 5"},
		{Index: 2, Name: "JBL Charge 5 Wi-Fi"},
	}
}

func TestSessionPlaysToCompletion(t *testing.T) {
	h := &fakeHost{devices: testDevices(), drain: true}
	c := &fakeConnector{}

	s, err := New(testConfig(h, c))
	require.NoError(t, err)
	require.Equal(t, StateNotStarted, s.State())

	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Play(context.Background()))

	assert.Equal(t, StateClosed, s.State())
	require.Len(t, h.streams, 2)
	for _, st := range h.streams {
		assert.True(t, st.started)
		assert.True(t, st.stopped)
		assert.True(t, st.closed)
	}
	assert.ElementsMatch(t, []string{"aa", "bb"}, c.disconnects)
}

func TestSessionInterStartDelay(t *testing.T) {
	h := &fakeHost{devices: testDevices(), drain: true}
	c := &fakeConnector{}

	cfg := testConfig(h, c)
	cfg.InterStartDelay = 20 * time.Millisecond
	s, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Play(context.Background()))

	require.Len(t, h.streams, 2)
	gap := h.streams[1].startedAt.Sub(h.streams[0].startedAt)
	assert.GreaterOrEqual(t, gap, 20*time.Millisecond, "second start must wait out the inter-start delay")
}

func TestSessionAbortsWhenSecondSinkFailsToConnect(t *testing.T) {
	h := &fakeHost{devices: testDevices()}
	c := &fakeConnector{failAddr: "bb"}

	s, err := New(testConfig(h, c))
	require.NoError(t, err)

	err = s.Open(context.Background())
	require.ErrorIs(t, err, sink.ErrConnectFailed)

	assert.Equal(t, StateAborted, s.State())
	assert.Equal(t, []string{"aa"}, c.disconnects, "the connected sink must be released")
	assert.Empty(t, h.streams, "no stream may be opened after a connect failure")
}

func TestSessionAbortsWhenDeviceLookupFails(t *testing.T) {
	h := &fakeHost{devices: []host.Device{{Index: 0, Name: "Built-in Output"}}}
	c := &fakeConnector{}

	s, err := New(testConfig(h, c))
	require.NoError(t, err)

	err = s.Open(context.Background())
	require.ErrorIs(t, err, host.ErrDeviceNotFound)

	assert.Equal(t, StateAborted, s.State())
	assert.ElementsMatch(t, []string{"aa", "bb"}, c.disconnects)
}

func TestSessionInterruptStopsBothStreams(t *testing.T) {
	h := &fakeHost{devices: testDevices()} // streams stay active until stopped
	c := &fakeConnector{}

	s, err := New(testConfig(h, c))
	require.NoError(t, err)
	require.NoError(t, s.Open(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Play(ctx) }()

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StatePlaying, s.State())
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session did not stop after interrupt")
	}

	assert.Equal(t, StateClosed, s.State(), "interrupt is normal early termination")
	for _, st := range h.streams {
		assert.True(t, st.stopped)
		assert.True(t, st.closed)
	}
	assert.ElementsMatch(t, []string{"aa", "bb"}, c.disconnects)
}

func TestSessionRejectsMismatchedBuffers(t *testing.T) {
	h := &fakeHost{devices: testDevices()}
	c := &fakeConnector{}

	cfg := testConfig(h, c)
	cfg.RightBuffer = silence(400, 8000)
	_, err := New(cfg)
	require.Error(t, err)

	cfg = testConfig(h, c)
	cfg.RightBuffer = silence(512, 44100)
	_, err = New(cfg)
	require.Error(t, err)
}

func TestSessionPlayRequiresOpen(t *testing.T) {
	h := &fakeHost{devices: testDevices()}
	c := &fakeConnector{}

	s, err := New(testConfig(h, c))
	require.NoError(t, err)

	err = s.Play(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no open streams")
}
