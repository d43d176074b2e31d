package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finitude/finitude/internal/infinity"
	"github.com/finitude/finitude/internal/infrastructure/logging"
	"github.com/finitude/finitude/internal/metrics"
)

// minReplyLength is the smallest data-report payload worth parsing: a
// register key is three bytes.
const minReplyLength = 3

// defaultBackoff is the fixed delay between reconnect attempts.
const defaultBackoff = time.Second

// StreamOpener opens the byte stream behind a connection path.
type StreamOpener func(path string) (infinity.Stream, error)

// Options adjusts optional Monitor behaviour. The zero value is valid.
type Options struct {
	// Publisher, when set, receives every retained register transition.
	Publisher StatePublisher

	// OpenStream overrides how the connection path is opened. Defaults
	// to infinity.OpenStream.
	OpenStream StreamOpener

	// Backoff overrides the fixed delay between reconnect attempts.
	Backoff time.Duration
}

// Monitor supervises one device connection: it keeps the stream open
// across transport failures, reads frames, and feeds them through the
// metric and transition pipelines.
//
// All state is owned by the single goroutine running Run.
type Monitor struct {
	name   string
	path   string
	reg    *metrics.Registry
	logger *logging.Logger

	publisher  StatePublisher
	openStream StreamOpener
	backoff    time.Duration

	sync SyncTracker
	log  TransitionLog

	stream infinity.Stream
	bus    *infinity.Bus
}

// New creates a monitor for the device at the given connection path.
func New(name, path string, reg *metrics.Registry, logger *logging.Logger, opts Options) *Monitor {
	m := &Monitor{
		name:       name,
		path:       path,
		reg:        reg,
		logger:     logger.With("device", name),
		publisher:  opts.Publisher,
		openStream: opts.OpenStream,
		backoff:    opts.Backoff,
		log:        NewStateLog(),
	}
	if m.openStream == nil {
		m.openStream = infinity.OpenStream
	}
	if m.backoff <= 0 {
		m.backoff = defaultBackoff
	}

	// Bind the state gauges now so a configured device that never hears
	// a frame still scrapes as zero rather than as a missing series.
	m.reg.SetSynchronized(m.name, false)
	m.reg.SetStoredFrames(m.name, 0)
	m.reg.SetSequenceLength(m.name, 0)

	return m
}

// Open establishes the connection and the frame reader over it. Every
// successful open, the first included, counts on the reconnects series.
//
// Callers use the first Open to fail fast at startup: a path that cannot
// be opened at all is misconfiguration, not a transient fault.
func (m *Monitor) Open() error {
	m.logger.Info("connecting", "path", m.path)

	stream, err := m.openStream(m.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", m.path, err)
	}

	m.stream = stream
	m.bus = infinity.NewBus(stream, m.onCRCError)
	m.reg.IncReconnects(m.name)
	return nil
}

// Run reads and processes frames until ctx is cancelled. Transport
// failures never end the loop: the connection is dropped, the fixed
// backoff elapses, and the stream is reopened.
func (m *Monitor) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if m.stream == nil {
			if err := m.Open(); err != nil {
				m.logger.Error("reconnect failed", "error", err)
				if !m.pause(ctx) {
					return
				}
				continue
			}
		}

		frame, err := m.bus.ReadFrame()
		if err != nil {
			m.logger.Error("read failed", "error", err)
			m.dropConnection()
			if !m.pause(ctx) {
				return
			}
			continue
		}

		m.reg.IncFrames(m.name)
		m.processFrame(frame)
	}
}

// processFrame runs one decoded frame through the pipeline: sync
// bookkeeping, gauge updates for numeric register items, and transition
// logging. Frames that are not data reports, or too short to carry a
// register, only count toward synchronisation.
func (m *Monitor) processFrame(frame *infinity.Frame) {
	if m.sync.MarkSynchronized() {
		m.reg.SetSynchronized(m.name, true)
	}

	if frame.Func != infinity.FuncReply || frame.Length() < minReplyLength {
		return
	}

	name, values, remainder := frame.ParseRegister()
	base, _, _ := strings.Cut(name, "(")

	if len(values) > 0 {
		if base == "DeviceInfo" {
			m.reg.SetDeviceInfo(m.name, infinity.PrintableAddress(frame.Source), infoLabels(values))
		} else {
			table := TableAlias(base)
			for item, v := range values {
				n, ok := numericValue(v)
				if !ok {
					// String-valued items are not exposed as metrics.
					continue
				}
				gauge, scaled := DeriveGauge(table, item, n)
				m.reg.Observe(gauge, m.name, scaled)
			}
		}
	}

	if m.log.Record(frame.Data, name, remainder) && m.publisher != nil {
		if err := m.publisher.PublishState(name, values, remainder); err != nil {
			m.logger.Warn("state publish failed", "register", name, "error", err)
		}
	}
	m.reg.SetStoredFrames(m.name, m.log.StoredFrames())
	m.reg.SetSequenceLength(m.name, m.log.SequenceLength())
}

// onCRCError is the bus callback for rejected frame candidates.
func (m *Monitor) onCRCError() {
	if m.sync.ReportCRCError() {
		m.reg.SetSynchronized(m.name, false)
		m.reg.IncDesyncs(m.name)
	}
}

// dropConnection discards the stream and bus so the next loop iteration
// reopens them.
func (m *Monitor) dropConnection() {
	if m.stream != nil {
		m.stream.Close()
	}
	m.stream = nil
	m.bus = nil
}

// pause waits out the reconnect backoff. Returns false when ctx was
// cancelled during the wait.
func (m *Monitor) pause(ctx context.Context) bool {
	timer := time.NewTimer(m.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// numericValue widens the decoded register value types to float64.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// infoLabels flattens a decoded DeviceInfo value map into label strings.
func infoLabels(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = fmt.Sprint(v)
	}
	return out
}
