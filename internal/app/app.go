// ABOUTME: Main application orchestration
// ABOUTME: Loads audio, prepares channel buffers, and drives the dual-stream session
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Splitcast-Audio/splitcast-go/internal/audio"
	"github.com/Splitcast-Audio/splitcast-go/internal/host"
	"github.com/Splitcast-Audio/splitcast-go/internal/session"
	"github.com/Splitcast-Audio/splitcast-go/internal/sink"
	"github.com/Splitcast-Audio/splitcast-go/internal/stems"
	"github.com/Splitcast-Audio/splitcast-go/internal/ui"
)

// Config holds the application configuration.
type Config struct {
	File       string
	OffsetMs   int
	FrameCount int

	LeftSink  sink.Device
	RightSink sink.Device

	// Stem mode: when StemCount > 0, the file is separated into stems and
	// each channel plays a named mix instead of the file's own channels.
	StemCount  int
	LeftStems  []string
	RightStems []string

	// Backend selects the host audio backend ("malgo" or "portaudio").
	Backend string

	ConnectorCommand string
	StemsCommand     string

	SettleDelay     time.Duration
	PollInterval    time.Duration
	InterStartDelay time.Duration
	StatusInterval  time.Duration
}

// Run loads the source audio, prepares both channel buffers, and plays them
// through a dual-stream session. It returns nil on normal completion or
// graceful interrupt, and an error on load, connect, or device failures.
func Run(ctx context.Context, cfg Config, status func(ui.StatusMsg)) error {
	if status == nil {
		status = func(ui.StatusMsg) {}
	}
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = 500 * time.Millisecond
	}

	left, right, err := prepareBuffers(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load audio: %w", err)
	}
	log.Printf("Loaded %s: %d Hz, %s per channel",
		cfg.File, left.SampleRate(), left.Duration().Round(time.Millisecond))

	h, err := newHost(cfg.Backend)
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Close(); err != nil {
			log.Printf("Host close: %v", err)
		}
	}()

	connector := sink.NewCLIConnector()
	if cfg.ConnectorCommand != "" {
		connector.Command = cfg.ConnectorCommand
	}

	sess, err := session.New(session.Config{
		Host:            h,
		Connector:       connector,
		LeftSink:        cfg.LeftSink,
		RightSink:       cfg.RightSink,
		LeftBuffer:      left,
		RightBuffer:     right,
		FrameCount:      cfg.FrameCount,
		InterStartDelay: cfg.InterStartDelay,
		PollInterval:    cfg.PollInterval,
		SettleDelay:     cfg.SettleDelay,
	})
	if err != nil {
		return err
	}

	offset := cfg.OffsetMs
	status(ui.StatusMsg{
		State:      sess.State().String(),
		File:       cfg.File,
		SampleRate: left.SampleRate(),
		OffsetMs:   &offset,
	})

	stop := make(chan struct{})
	go pumpStatus(sess, cfg.StatusInterval, status, stop)
	defer close(stop)

	if err := sess.Open(ctx); err != nil {
		return err
	}
	return sess.Play(ctx)
}

// prepareBuffers builds the left/right channel buffer pair, either from the
// file's own stereo channels or from stem mixes.
func prepareBuffers(ctx context.Context, cfg Config) (left, right *audio.ChannelBuffer, err error) {
	if cfg.StemCount > 0 {
		return prepareStemBuffers(ctx, cfg)
	}

	dec, err := audio.LoadFile(cfg.File)
	if err != nil {
		return nil, nil, err
	}
	return audio.SplitStereo(dec, cfg.OffsetMs)
}

func prepareStemBuffers(ctx context.Context, cfg Config) (left, right *audio.ChannelBuffer, err error) {
	if len(cfg.LeftStems) == 0 || len(cfg.RightStems) == 0 {
		return nil, nil, fmt.Errorf("stem mode requires --left-stems and --right-stems")
	}

	sep, err := stems.NewSeparator(cfg.StemCount)
	if err != nil {
		return nil, nil, err
	}
	if cfg.StemsCommand != "" {
		sep.Command = cfg.StemsCommand
	}
	defer sep.Cleanup()

	log.Printf("Separating %s into %d stems...", cfg.File, cfg.StemCount)
	if _, err := sep.Separate(ctx, cfg.File); err != nil {
		return nil, nil, err
	}

	left, err = sep.Combine(cfg.LeftStems...)
	if err != nil {
		return nil, nil, fmt.Errorf("left stem mix: %w", err)
	}
	right, err = sep.Combine(cfg.RightStems...)
	if err != nil {
		return nil, nil, fmt.Errorf("right stem mix: %w", err)
	}

	audio.EqualizePair(left, right)
	audio.ApplyOffset(left, right, cfg.OffsetMs)
	return left, right, nil
}

func newHost(backend string) (host.Host, error) {
	switch backend {
	case "", "malgo":
		return host.NewMalgo()
	case "portaudio":
		return host.NewPortAudio()
	default:
		return nil, fmt.Errorf("unknown audio backend %q (want malgo or portaudio)", backend)
	}
}

// pumpStatus periodically forwards session stats to the UI.
func pumpStatus(sess *session.Session, interval time.Duration, status func(ui.StatusMsg), stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			// One final snapshot so the UI shows the terminal state.
			status(snapshot(sess))
			return
		case <-ticker.C:
			status(snapshot(sess))
		}
	}
}

func snapshot(sess *session.Session) ui.StatusMsg {
	stats := sess.Stats()
	return ui.StatusMsg{
		State: stats.State.String(),
		Left:  channelStatus(stats.Left),
		Right: channelStatus(stats.Right),
	}
}

func channelStatus(rs session.RouteStats) *ui.ChannelStatus {
	return &ui.ChannelStatus{
		Sink:     rs.Sink.String(),
		Device:   rs.DeviceName,
		Position: rs.Cursor.Position,
		Length:   rs.Cursor.Length,
		Resyncs:  rs.Cursor.Resyncs,
		Drift:    rs.Cursor.LastDrift,
		Active:   rs.Active,
	}
}
