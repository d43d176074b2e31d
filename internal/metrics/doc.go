// Package metrics provides the Prometheus registry and exposition server
// for finitude.
//
// The package follows a two-layer design:
//
//  1. Fixed instruments: per-device counters and gauges that exist for
//     every monitored device (frames received, synchronisation state,
//     desyncs, reconnects, dedup store sizes, device info).
//  2. Dynamic gauges: register items discovered on the bus create gauges
//     lazily by derived name (finitude_<table>_<item>), shared across
//     devices with one series per device label.
//
// The Registry is an explicitly constructed object passed to every
// device's processing path; there is no package-level mutable state, so
// tests construct a fresh registry per test. Dynamic gauge creation is
// serialised by a single lock scoped to the check-and-create step; value
// updates on existing instruments are lock-free (safe on the Prometheus
// primitives).
package metrics
