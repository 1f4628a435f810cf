/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (API layer, action runner) wrap these with transport context.

ERROR CATEGORIES:
  1. Config errors   - Bad rounding/pool configuration (normally clamped away)
  2. Lifecycle errors - State machine guard failures, locked batches
  3. Dispatch errors - Duplicate in-flight actions, remote call failures

POLICY:
  Invalid configuration input is recovered locally by clamping and is NOT
  surfaced as an error from the command surface. InvalidTransition and
  AlreadyProcessing ARE surfaced, and the remote endpoint is never called
  for either. Remote failures carry the remote message verbatim when one
  is available. Degenerate pool eligibility (zero members) is not an error.

USAGE:
  if errors.Is(err, payroll.ErrAlreadyProcessing) {
      // report "already in progress"; do not retry
  }
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfig is returned by RoundingConfig.Apply for a
	// non-positive step. The command surface clamps instead, so a stored
	// configuration never triggers it.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidTransition is returned when a lifecycle action is not
	// allowed from the batch's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyProcessing is returned when a mutating action is dispatched
	// while another action on the same batch is still in flight. This is a
	// reject, never a queue.
	ErrAlreadyProcessing = errors.New("batch action already processing")

	// ErrRemoteActionFailed is returned when the remote action endpoint
	// itself errors. No automatic retry.
	ErrRemoteActionFailed = errors.New("remote action failed")

	// ErrBatchLocked is returned when a configuration or status-changing
	// operation targets a locked batch.
	ErrBatchLocked = errors.New("batch is locked")

	// ErrBatchNotFound is returned when a referenced batch doesn't exist.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrNoEligibleEmployees is returned by the generate guard when the
	// configuration matches nobody.
	ErrNoEligibleEmployees = errors.New("configuration matches no employees")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTransitionError reports a rejected lifecycle action.
type InvalidTransitionError struct {
	BatchID BatchID
	From    Status
	Action  Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s batch %s from status %s", e.Action, e.BatchID, e.From)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// AlreadyProcessingError reports a rejected duplicate dispatch.
type AlreadyProcessingError struct {
	BatchID BatchID
	Action  Action
}

func (e *AlreadyProcessingError) Error() string {
	return fmt.Sprintf("batch %s already has an action in flight, %s rejected", e.BatchID, e.Action)
}

func (e *AlreadyProcessingError) Unwrap() error { return ErrAlreadyProcessing }

// RemoteActionError wraps a failure from the remote action endpoint.
// Message carries the remote text verbatim when available.
type RemoteActionError struct {
	BatchID BatchID
	Action  Action
	Message string
	Cause   error
}

func (e *RemoteActionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s on batch %s failed: %s", e.Action, e.BatchID, e.Message)
	}
	return fmt.Sprintf("%s on batch %s failed", e.Action, e.BatchID)
}

func (e *RemoteActionError) Unwrap() error { return ErrRemoteActionFailed }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is the caller's fault rather
// than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrBatchLocked) ||
		errors.Is(err, ErrNoEligibleEmployees) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsConflict returns true if the error indicates a concurrent-dispatch
// conflict that should surface as "already in progress".
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyProcessing)
}

// IsNotFound returns true if the error indicates a missing batch.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}
