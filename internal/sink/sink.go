// ABOUTME: Wireless sink connection service
// ABOUTME: Connects and disconnects Bluetooth audio sinks via an external connector tool
package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// ErrConnectFailed is returned when the connector tool reports a failed connection.
var ErrConnectFailed = errors.New("sink connection failed")

// Device identifies one wireless audio sink.
type Device struct {
	Address string
	Name    string
}

func (d Device) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Address)
}

// Connector establishes and tears down connections to wireless sinks.
type Connector interface {
	// Connect establishes a connection to the sink.
	Connect(ctx context.Context, dev Device) error

	// Disconnect tears the connection down. Best-effort: callers treat a
	// returned error as log-only.
	Disconnect(ctx context.Context, dev Device) error
}

// DefaultCommand is the connector tool driven by CLIConnector.
const DefaultCommand = "bluetoothconnector"

// CLIConnector drives an external Bluetooth connector command.
type CLIConnector struct {
	Command string
}

// NewCLIConnector creates a connector using the default external command.
func NewCLIConnector() *CLIConnector {
	return &CLIConnector{Command: DefaultCommand}
}

// Connect runs `<command> --connect <address>`; a non-zero exit means failure.
func (c *CLIConnector) Connect(ctx context.Context, dev Device) error {
	out, err := exec.CommandContext(ctx, c.Command, "--connect", dev.Address).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s: %v (%s)", ErrConnectFailed, dev, err, strings.TrimSpace(string(out)))
	}
	log.Printf("Connected to %s", dev)
	return nil
}

// Disconnect runs `<command> --disconnect <address>`.
func (c *CLIConnector) Disconnect(ctx context.Context, dev Device) error {
	out, err := exec.CommandContext(ctx, c.Command, "--disconnect", dev.Address).CombinedOutput()
	if err != nil {
		return fmt.Errorf("disconnect %s: %v (%s)", dev, err, strings.TrimSpace(string(out)))
	}
	log.Printf("Disconnected from %s", dev)
	return nil
}

// Inquiry runs `<command> --inquiry` and parses the discovered sinks.
func (c *CLIConnector) Inquiry(ctx context.Context) ([]Device, error) {
	out, err := exec.CommandContext(ctx, c.Command, "--inquiry").Output()
	if err != nil {
		return nil, fmt.Errorf("sink inquiry: %w", err)
	}
	return parseInquiry(string(out)), nil
}

// parseInquiry extracts devices from "<address> - <name>" lines.
func parseInquiry(out string) []Device {
	var devices []Device
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		addr, name, found := strings.Cut(line, " - ")
		if !found {
			continue
		}
		addr = strings.TrimSpace(addr)
		name = strings.TrimSpace(name)
		if addr == "" || name == "" {
			continue
		}
		devices = append(devices, Device{Address: addr, Name: name})
	}
	return devices
}
