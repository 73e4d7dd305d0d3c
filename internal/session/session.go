// ABOUTME: Dual-stream playback session
// ABOUTME: Lifecycle state machine for two sink-bound output streams
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Splitcast-Audio/splitcast-go/internal/audio"
	"github.com/Splitcast-Audio/splitcast-go/internal/host"
	"github.com/Splitcast-Audio/splitcast-go/internal/player"
	"github.com/Splitcast-Audio/splitcast-go/internal/sink"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// State is the session lifecycle state.
type State int32

const (
	StateNotStarted State = iota
	StatePlaying
	StateDraining
	StateClosed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StatePlaying:
		return "playing"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Config holds everything a session needs to route one channel to each sink.
type Config struct {
	Host      host.Host
	Connector sink.Connector

	LeftSink  sink.Device
	RightSink sink.Device

	LeftBuffer  *audio.ChannelBuffer
	RightBuffer *audio.ChannelBuffer

	// FrameCount is the callback granularity in samples. Default 1024.
	FrameCount int

	// InterStartDelay separates the two stream starts so they do not contend
	// on host-audio activation locking. Default 1ms.
	InterStartDelay time.Duration

	// PollInterval is the liveness poll cadence. Default 100ms.
	PollInterval time.Duration

	// SettleDelay is how long to wait after connecting the sinks before the
	// host re-enumerates them as output devices. Default 2s.
	SettleDelay time.Duration
}

const (
	defaultFrameCount      = 1024
	defaultInterStartDelay = time.Millisecond
	defaultPollInterval    = 100 * time.Millisecond
	defaultSettleDelay     = 2 * time.Second
)

// route is one (sink, buffer, cursor, adapter, stream) binding.
type route struct {
	tag       string
	sink      sink.Device
	buffer    *audio.ChannelBuffer
	adapter   *player.Adapter
	stream    host.Stream
	device    host.Device
	connected bool

	lastResyncs int64
}

// RouteStats is a control-thread snapshot of one route.
type RouteStats struct {
	Tag        string
	Sink       sink.Device
	DeviceName string
	Active     bool
	Cursor     player.CursorStats
}

// Stats is a control-thread snapshot of the whole session.
type Stats struct {
	State State
	Left  RouteStats
	Right RouteStats
}

// Session coordinates the lifecycle of two output streams, one per sink.
// Both channel buffers must be equal length at the same sample rate so the
// both-active liveness check is meaningful.
type Session struct {
	id    uuid.UUID
	cfg   Config
	state atomic.Int32

	// mu guards the mutable route fields; the control thread's poll loop and
	// the status snapshots run concurrently.
	mu    sync.RWMutex
	left  *route
	right *route
}

// New validates the configuration and creates a session in NotStarted.
func New(cfg Config) (*Session, error) {
	if cfg.Host == nil || cfg.Connector == nil {
		return nil, fmt.Errorf("session requires a host and a connector")
	}
	if cfg.LeftBuffer == nil || cfg.RightBuffer == nil {
		return nil, fmt.Errorf("session requires both channel buffers")
	}
	if cfg.LeftBuffer.Len() != cfg.RightBuffer.Len() {
		return nil, fmt.Errorf("channel buffers must be equal length (left %d, right %d)",
			cfg.LeftBuffer.Len(), cfg.RightBuffer.Len())
	}
	if cfg.LeftBuffer.SampleRate() != cfg.RightBuffer.SampleRate() {
		return nil, fmt.Errorf("channel buffers must share a sample rate (left %d, right %d)",
			cfg.LeftBuffer.SampleRate(), cfg.RightBuffer.SampleRate())
	}

	if cfg.FrameCount <= 0 {
		cfg.FrameCount = defaultFrameCount
	}
	if cfg.InterStartDelay <= 0 {
		cfg.InterStartDelay = defaultInterStartDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = defaultSettleDelay
	}

	return &Session{
		id:    uuid.New(),
		cfg:   cfg,
		left:  &route{tag: "left", sink: cfg.LeftSink, buffer: cfg.LeftBuffer},
		right: &route{tag: "right", sink: cfg.RightSink, buffer: cfg.RightBuffer},
	}, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Open connects both sinks, resolves their host output devices, and opens
// one stream per route. Any failure aborts the session: already-connected
// sinks are disconnected and the state becomes Aborted.
func (s *Session) Open(ctx context.Context) error {
	if st := s.State(); st != StateNotStarted {
		return fmt.Errorf("session %s cannot open in state %s", s.id, st)
	}

	for _, r := range []*route{s.left, s.right} {
		log.Printf("[%s] Connecting to %s (%s channel)", s.id, r.sink, r.tag)
		if err := s.cfg.Connector.Connect(ctx, r.sink); err != nil {
			s.abort(ctx)
			return fmt.Errorf("connect %s sink: %w", r.tag, err)
		}
		s.mu.Lock()
		r.connected = true
		s.mu.Unlock()
	}

	// Give the host a moment to register the sinks as output devices.
	if s.cfg.SettleDelay > 0 {
		select {
		case <-time.After(s.cfg.SettleDelay):
		case <-ctx.Done():
			s.abort(ctx)
			return ctx.Err()
		}
	}

	devices, err := s.cfg.Host.OutputDevices()
	if err != nil {
		s.abort(ctx)
		return fmt.Errorf("enumerate output devices: %w", err)
	}

	for _, r := range []*route{s.left, s.right} {
		device, err := host.FindOutputDevice(devices, r.sink.Name)
		if err != nil {
			s.abort(ctx)
			return fmt.Errorf("%s sink: %w", r.tag, err)
		}
		adapter := player.NewAdapter(player.NewCursor(r.buffer))
		s.mu.Lock()
		r.device = device
		r.adapter = adapter
		s.mu.Unlock()

		stream, err := s.cfg.Host.OpenStream(device, r.buffer.SampleRate(), s.cfg.FrameCount, adapter.Pull)
		if err != nil {
			s.abort(ctx)
			return fmt.Errorf("open %s stream: %w", r.tag, err)
		}
		s.mu.Lock()
		r.stream = stream
		s.mu.Unlock()
		log.Printf("[%s] Opened %s stream on %q (%d Hz, %d frames/callback)",
			s.id, r.tag, device.Name, r.buffer.SampleRate(), s.cfg.FrameCount)
	}

	return nil
}

// Play starts both streams with a bounded inter-start delay, then polls
// liveness until both streams report inactive or ctx is cancelled, and
// finally tears everything down. Returns any teardown errors.
func (s *Session) Play(ctx context.Context) error {
	if st := s.State(); st != StateNotStarted {
		return fmt.Errorf("session %s cannot play in state %s", s.id, st)
	}
	s.mu.RLock()
	leftStream, rightStream := s.left.stream, s.right.stream
	s.mu.RUnlock()
	if leftStream == nil || rightStream == nil {
		return fmt.Errorf("session %s has no open streams (call Open first)", s.id)
	}

	if err := leftStream.Start(); err != nil {
		s.abort(ctx)
		return fmt.Errorf("start left stream: %w", err)
	}
	time.Sleep(s.cfg.InterStartDelay)
	if err := rightStream.Start(); err != nil {
		s.abort(ctx)
		return fmt.Errorf("start right stream: %w", err)
	}

	s.state.Store(int32(StatePlaying))
	log.Printf("[%s] Playing (%s per channel)", s.id, s.left.buffer.Duration().Round(time.Millisecond))

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for s.State() == StatePlaying {
		select {
		case <-ctx.Done():
			log.Printf("[%s] Playback interrupted", s.id)
			s.state.Store(int32(StateDraining))
		case <-ticker.C:
			s.logResyncs()
			if !leftStream.Active() && !rightStream.Active() {
				s.state.Store(int32(StateDraining))
			}
		}
	}

	err := s.teardown(context.WithoutCancel(ctx))
	s.state.Store(int32(StateClosed))
	log.Printf("[%s] Session closed", s.id)
	return err
}

// Stats returns a snapshot for the control thread (poll loop, UI).
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		State: s.State(),
		Left:  s.left.stats(),
		Right: s.right.stats(),
	}
}

func (r *route) stats() RouteStats {
	rs := RouteStats{Tag: r.tag, Sink: r.sink, DeviceName: r.device.Name}
	if r.stream != nil {
		rs.Active = r.stream.Active()
	}
	if r.adapter != nil {
		rs.Cursor = r.adapter.Stats()
	}
	return rs
}

// logResyncs reports hard resyncs observed since the previous poll. The
// callback threads may not log, so drift corrections surface here.
func (s *Session) logResyncs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range []*route{s.left, s.right} {
		if r.adapter == nil {
			continue
		}
		st := r.adapter.Stats()
		if st.Resyncs > r.lastResyncs {
			log.Printf("[%s] Corrected drift of %d samples on %s channel (resync #%d)",
				s.id, st.LastDrift, r.tag, st.Resyncs)
			r.lastResyncs = st.Resyncs
		}
	}
}

// teardown stops and closes both streams, then disconnects both sinks.
// Stream errors are aggregated; disconnect failures are logged only.
func (s *Session) teardown(ctx context.Context) error {
	var errs *multierror.Error

	for _, r := range []*route{s.left, s.right} {
		s.mu.Lock()
		stream := r.stream
		r.stream = nil
		s.mu.Unlock()
		if stream == nil {
			continue
		}
		if err := stream.Stop(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("stop %s stream: %w", r.tag, err))
		}
		if err := stream.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close %s stream: %w", r.tag, err))
		}
	}

	s.disconnectAll(ctx)
	return errs.ErrorOrNil()
}

// abort is the failure path out of any pre-Playing state: release whatever
// was already acquired and mark the session Aborted.
func (s *Session) abort(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for _, r := range []*route{s.left, s.right} {
		s.mu.Lock()
		stream := r.stream
		r.stream = nil
		s.mu.Unlock()
		if stream == nil {
			continue
		}
		if err := stream.Stop(); err != nil {
			log.Printf("[%s] Stop %s stream during abort: %v", s.id, r.tag, err)
		}
		if err := stream.Close(); err != nil {
			log.Printf("[%s] Close %s stream during abort: %v", s.id, r.tag, err)
		}
	}
	s.disconnectAll(ctx)
	s.state.Store(int32(StateAborted))
}

func (s *Session) disconnectAll(ctx context.Context) {
	for _, r := range []*route{s.left, s.right} {
		s.mu.Lock()
		connected := r.connected
		r.connected = false
		s.mu.Unlock()
		if !connected {
			continue
		}
		if err := s.cfg.Connector.Disconnect(ctx, r.sink); err != nil {
			log.Printf("[%s] Disconnect %s sink: %v", s.id, r.tag, err)
		}
	}
}
