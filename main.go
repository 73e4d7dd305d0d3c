// ABOUTME: Entry point for the Splitcast dual-sink player
// ABOUTME: Parses CLI flags and runs synchronized playback
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Splitcast-Audio/splitcast-go/internal/app"
	"github.com/Splitcast-Audio/splitcast-go/internal/sink"
	"github.com/Splitcast-Audio/splitcast-go/internal/ui"
	"github.com/Splitcast-Audio/splitcast-go/internal/version"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
)

var (
	syncOffset = pflag.Int("sync-offset", 0, "Sync offset in milliseconds. Positive values delay the left channel, negative values delay the right channel")
	frameCount = pflag.Int("frame-count", 1024, "Callback granularity in samples")
	leftSpec   = pflag.String("left", "", "Left sink as address=name (e.g. 28-fa-19-08-57-9f=JBL Charge 5)")
	rightSpec  = pflag.String("right", "", "Right sink as address=name")
	backend    = pflag.String("backend", "malgo", "Audio backend (malgo or portaudio)")
	stemCount  = pflag.Int("stems", 0, "Separate the file into N stems (2, 4, or 5) and play stem mixes instead of the raw channels")
	leftStems  = pflag.StringSlice("left-stems", nil, "Stem names mixed into the left channel (requires --stems)")
	rightStems = pflag.StringSlice("right-stems", nil, "Stem names mixed into the right channel (requires --stems)")
	logFile    = pflag.String("log-file", "splitcast.log", "Log file path")
	noTUI      = pflag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <audio-file>\n\nStreams one stereo channel to each of two wireless sinks, phase-aligned.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	audioFile := pflag.Arg(0)

	leftSink, err := parseSinkSpec(*leftSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --left: %v\n", err)
		os.Exit(2)
	}
	rightSink, err := parseSinkSpec(*rightSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --right: %v\n", err)
		os.Exit(2)
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s %s", version.Product, version.Version)
	log.Printf("Left channel -> %s, right channel -> %s", leftSink, rightSink)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// TUI setup
	var tuiProg *tea.Program
	if useTUI {
		control := ui.NewControl()
		tuiProg, err = ui.Run(control)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		go func() {
			select {
			case <-control.Quit:
				log.Printf("Stop requested from TUI")
				stop()
			case <-ctx.Done():
			}
		}()
	}

	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	cfg := app.Config{
		File:       audioFile,
		OffsetMs:   *syncOffset,
		FrameCount: *frameCount,
		LeftSink:   leftSink,
		RightSink:  rightSink,
		Backend:    *backend,
		StemCount:  *stemCount,
		LeftStems:  *leftStems,
		RightStems: *rightStems,
	}

	runErr := app.Run(ctx, cfg, updateTUI)

	if tuiProg != nil {
		tuiProg.Quit()
	}

	if runErr != nil {
		log.Printf("Playback failed: %v", runErr)
		fmt.Fprintf(os.Stderr, "splitcast: %v\n", runErr)
		os.Exit(1)
	}
	log.Printf("Playback finished")
}

// parseSinkSpec parses an "address=name" sink specification.
func parseSinkSpec(spec string) (sink.Device, error) {
	if spec == "" {
		return sink.Device{}, fmt.Errorf("sink specification required (address=name)")
	}
	addr, name, found := strings.Cut(spec, "=")
	addr = strings.TrimSpace(addr)
	name = strings.TrimSpace(name)
	if !found || addr == "" || name == "" {
		return sink.Device{}, fmt.Errorf("want address=name, got %q", spec)
	}
	return sink.Device{Address: addr, Name: name}, nil
}
