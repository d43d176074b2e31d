package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// deviceInfoLabels is the fixed label schema of finitude_device.
// The decoded DeviceInfo register always carries these four fields;
// absent fields are exported as empty labels.
var deviceInfoLabels = []string{"name", "device", "module", "firmware", "model", "serial"}

// Registry owns every Prometheus instrument finitude exports.
//
// Thread Safety: all methods are safe for concurrent use from multiple
// device goroutines.
type Registry struct {
	prometheusRegistry *prometheus.Registry

	frames         *prometheus.CounterVec
	synchronized   *prometheus.GaugeVec
	desyncs        *prometheus.CounterVec
	reconnects     *prometheus.CounterVec
	storedFrames   *prometheus.GaugeVec
	sequenceLength *prometheus.GaugeVec
	deviceInfo     *prometheus.GaugeVec

	// mu guards creation of dynamic gauges only; updates to an existing
	// gauge go straight to the Prometheus primitive.
	mu     sync.Mutex
	gauges map[string]*prometheus.GaugeVec
}

// NewRegistry creates a registry with the fixed per-device instruments
// and the Go runtime collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),
		gauges:             make(map[string]*prometheus.GaugeVec),
	}

	byName := []string{"name"}

	r.frames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finitude_frames",
		Help: "number of frames received",
	}, byName)
	r.synchronized = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "finitude_synchronized",
		Help: "1 if reader is synchronized to bus",
	}, byName)
	r.desyncs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finitude_desyncs",
		Help: "number of desynchronizations",
	}, byName)
	r.reconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finitude_reconnects",
		Help: "number of stream reconnects",
	}, byName)
	r.storedFrames = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "finitude_stored_frames",
		Help: "number of frames stored",
	}, byName)
	r.sequenceLength = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "finitude_frame_sequence_length",
		Help: "length of sequence",
	}, byName)
	r.deviceInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "finitude_device",
		Help: "info table from each device on the bus",
	}, deviceInfoLabels)

	r.prometheusRegistry.MustRegister(
		r.frames,
		r.synchronized,
		r.desyncs,
		r.reconnects,
		r.storedFrames,
		r.sequenceLength,
		r.deviceInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry for the
// exposition handler.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// IncFrames counts one received frame for the device.
func (r *Registry) IncFrames(name string) {
	r.frames.WithLabelValues(name).Inc()
}

// SetSynchronized records whether the device's reader is synchronised.
func (r *Registry) SetSynchronized(name string, synchronized bool) {
	v := 0.0
	if synchronized {
		v = 1.0
	}
	r.synchronized.WithLabelValues(name).Set(v)
}

// IncDesyncs counts one loss-of-synchronisation episode for the device.
func (r *Registry) IncDesyncs(name string) {
	r.desyncs.WithLabelValues(name).Inc()
}

// IncReconnects counts one stream (re)connect for the device. The initial
// startup connection is counted too; the series therefore reads as
// "number of opens", matching the exporter's historical behaviour.
func (r *Registry) IncReconnects(name string) {
	r.reconnects.WithLabelValues(name).Inc()
}

// SetStoredFrames records the size of the device's distinct-payload index.
func (r *Registry) SetStoredFrames(name string, n int) {
	r.storedFrames.WithLabelValues(name).Set(float64(n))
}

// SetSequenceLength records the length of the device's transition log.
func (r *Registry) SetSequenceLength(name string, n int) {
	r.sequenceLength.WithLabelValues(name).Set(float64(n))
}

// SetDeviceInfo exports the decoded DeviceInfo register for a source
// device. Stale series for the same (name, device) pair are dropped so an
// equipment swap does not leave both identities exported.
func (r *Registry) SetDeviceInfo(name, device string, values map[string]string) {
	labels := prometheus.Labels{
		"name":     name,
		"device":   device,
		"module":   "",
		"firmware": "",
		"model":    "",
		"serial":   "",
	}
	for k, v := range values {
		k = strings.ToLower(k)
		if _, ok := labels[k]; ok && k != "name" && k != "device" {
			labels[k] = v
		}
	}

	r.deviceInfo.DeletePartialMatch(prometheus.Labels{"name": name, "device": device})
	r.deviceInfo.With(labels).Set(1)
}

// Observe sets the device's current value on a dynamically named gauge,
// creating the gauge on first use.
//
// Creation is check-then-create under a single lock so two device
// goroutines racing on a new gauge key never produce duplicate series.
func (r *Registry) Observe(gaugeName, name string, value float64) {
	r.mu.Lock()
	gauge, ok := r.gauges[gaugeName]
	if !ok {
		gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: gaugeName,
			Help: "register item reported on the bus",
		}, []string{"name"})
		r.prometheusRegistry.MustRegister(gauge)
		r.gauges[gaugeName] = gauge
	}
	r.mu.Unlock()

	gauge.WithLabelValues(name).Set(value)
}

// GaugeCount reports how many dynamic gauges exist. Used by tests.
func (r *Registry) GaugeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gauges)
}
