package monitor

// SyncTracker tracks whether a device's reader is aligned with the bus.
//
// Checksum failures on a noisy bus arrive in bursts; counting every
// rejected candidate would overstate how often alignment was actually
// lost. The tracker therefore reports a desync only on the transition
// from synchronised to unsynchronised.
//
// Not safe for concurrent use; owned by one device goroutine.
type SyncTracker struct {
	synchronized bool
}

// Synchronized reports the current alignment state.
func (t *SyncTracker) Synchronized() bool {
	return t.synchronized
}

// MarkSynchronized records successful frame processing. It returns true
// when this call changed the state from unsynchronised to synchronised.
func (t *SyncTracker) MarkSynchronized() bool {
	if t.synchronized {
		return false
	}
	t.synchronized = true
	return true
}

// ReportCRCError records a checksum failure. It returns true when this
// call is the falling edge of a loss-of-sync episode; repeated failures
// while already unsynchronised return false.
func (t *SyncTracker) ReportCRCError() bool {
	if !t.synchronized {
		return false
	}
	t.synchronized = false
	return true
}
