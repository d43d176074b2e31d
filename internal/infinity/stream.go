package infinity

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Stream is the byte stream a Bus consumes: a serial port or a TCP
// connection to an RS-485 bridge.
type Stream interface {
	io.Reader
	io.Closer
}

// Connection defaults.
const (
	// defaultBaudRate is the ABCD bus rate (fixed by the equipment).
	defaultBaudRate = 38400

	// dialTimeout bounds TCP connection attempts so a down bridge fails
	// fast enough for the supervisor's retry loop.
	dialTimeout = 10 * time.Second
)

// OpenStream opens the byte stream for a device connection path.
//
// Supported path forms:
//   - "/dev/ttyUSB0"                  local serial device, 38400 8N1
//   - "serial:/dev/ttyUSB0?baud=9600" serial device with explicit rate
//   - "tcp://host:4001"               TCP RS-485 bridge
//   - "host:4001"                     shorthand for the above
func OpenStream(path string) (Stream, error) {
	switch {
	case strings.HasPrefix(path, "serial:"):
		device, baud, err := parseSerialPath(path)
		if err != nil {
			return nil, err
		}
		return openSerial(device, baud)

	case strings.HasPrefix(path, "tcp://"):
		return openTCP(strings.TrimPrefix(path, "tcp://"))

	case strings.HasPrefix(path, "/"):
		return openSerial(path, defaultBaudRate)

	case strings.Contains(path, ":"):
		return openTCP(path)

	default:
		return nil, fmt.Errorf("unsupported connection path %q", path)
	}
}

// parseSerialPath splits "serial:<device>[?baud=<rate>]".
func parseSerialPath(path string) (device string, baud int, err error) {
	rest := strings.TrimPrefix(path, "serial:")
	rest = strings.TrimPrefix(rest, "//")

	baud = defaultBaudRate
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		query, parseErr := url.ParseQuery(rest[idx+1:])
		if parseErr != nil {
			return "", 0, fmt.Errorf("parsing serial path %q: %w", path, parseErr)
		}
		if v := query.Get("baud"); v != "" {
			baud, err = strconv.Atoi(v)
			if err != nil {
				return "", 0, fmt.Errorf("parsing serial path %q: invalid baud %q", path, v)
			}
		}
		rest = rest[:idx]
	}

	if rest == "" {
		return "", 0, fmt.Errorf("serial path %q has no device", path)
	}
	return rest, baud, nil
}

// openSerial opens a serial device at 8N1 with the given rate.
func openSerial(device string, baud int) (Stream, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", device, err)
	}
	return port, nil
}

// openTCP dials an RS-485-over-TCP bridge.
func openTCP(hostport string) (Stream, error) {
	conn, err := net.DialTimeout("tcp", hostport, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", hostport, err)
	}
	return conn, nil
}
