/*
coordinator.go - Per-batch action serialization

PURPOSE:
  Guarantees at most ONE mutating action in flight per batch id. Without
  it, a double-click sends two generate requests for the same batch to
  the remote system, which may or may not be idempotent against that.

POLICY:
  Reject, don't queue. A second dispatch while one is in flight fails
  immediately with "already processing"; it is never retried or delayed.
  Actions on DIFFERENT batch ids are fully independent.

USAGE:
  if !coord.TryStart(id) {
      return &AlreadyProcessingError{BatchID: id, Action: action}
  }
  defer coord.Finish(id) // must run on success AND failure paths
*/
package payroll

import "sync"

// ActionCoordinator tracks batch ids with an action currently executing.
// The zero value is not usable; call NewActionCoordinator.
type ActionCoordinator struct {
	mu       sync.Mutex
	inFlight map[BatchID]struct{}
}

// NewActionCoordinator returns an empty coordinator.
func NewActionCoordinator() *ActionCoordinator {
	return &ActionCoordinator{inFlight: make(map[BatchID]struct{})}
}

// TryStart atomically marks the batch as executing. Returns false if an
// action is already in flight for this id; the caller must refuse to
// dispatch and report "already processing".
func (ac *ActionCoordinator) TryStart(id BatchID) bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if _, busy := ac.inFlight[id]; busy {
		return false
	}
	ac.inFlight[id] = struct{}{}
	return true
}

// Finish unconditionally releases the batch. Safe to call for ids that
// were never started.
func (ac *ActionCoordinator) Finish(id BatchID) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	delete(ac.inFlight, id)
}

// Busy reports whether the batch currently has an action in flight.
func (ac *ActionCoordinator) Busy(id BatchID) bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	_, busy := ac.inFlight[id]
	return busy
}
