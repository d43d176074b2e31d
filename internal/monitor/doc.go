// Package monitor is the per-device ingestion engine.
//
// A Monitor owns one bus connection for its process lifetime. It reopens
// the stream after transport failures with a fixed one second backoff,
// tracks reader synchronisation, folds decoded register items into the
// shared metrics registry under derived gauge names, and keeps a
// content-addressed log of register state transitions. Everything a
// Monitor touches except the metrics registry is owned by its single
// goroutine, so the package has no internal locking.
package monitor
