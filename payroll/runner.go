/*
runner.go - Lifecycle action dispatch

PURPOSE:
  ActionRunner is the single entry point for mutating a batch's
  lifecycle. It composes the pieces in a fixed order:

    1. Load the batch
    2. Guard: locked / state machine / generate needs matching employees
    3. Coordinator: at most one action in flight per batch id
    4. Dispatch the remote call with the configuration as of NOW
    5. Persist the resulting status

  Steps 2-3 failing means the remote endpoint is never contacted. The
  coordinator slot is released on every path, success or failure.

ORDERING:
  Configuration edits after dispatch do not retroactively affect the
  in-flight call; the remote receives whatever existed at dispatch time.
  There is no cancellation: the coordinator prevents a SECOND dispatch,
  it never aborts the first.
*/
package payroll

import (
	"context"
	"log"
)

// ActionRequest carries the caller-supplied parameters of a dispatch.
type ActionRequest struct {
	BatchID    BatchID
	Action     Action
	ActorID    string // pay, post
	JournalRef string // post
}

// ActionRunner routes guarded lifecycle actions to the remote endpoints.
type ActionRunner struct {
	Batches     BatchStore
	Employees   EmployeeDirectory
	Remote      BatchActions
	Coordinator *ActionCoordinator
}

// NewActionRunner wires a runner with a fresh coordinator.
func NewActionRunner(batches BatchStore, employees EmployeeDirectory, remote BatchActions) *ActionRunner {
	return &ActionRunner{
		Batches:     batches,
		Employees:   employees,
		Remote:      remote,
		Coordinator: NewActionCoordinator(),
	}
}

// Run dispatches one lifecycle action. On success the batch's new status
// has been persisted and the remote result is returned.
func (r *ActionRunner) Run(ctx context.Context, req ActionRequest) (ActionResult, error) {
	batch, err := r.Batches.GetBatch(ctx, req.BatchID)
	if err != nil {
		return ActionResult{}, err
	}

	matching := 0
	if req.Action == ActionGenerate {
		roster, err := r.Employees.ListEmployees(ctx)
		if err != nil {
			return ActionResult{}, err
		}
		matching = batch.Config.MatchingCount(roster)
	}

	next, err := Transition(batch, req.Action, matching)
	if err != nil {
		return ActionResult{}, err
	}

	if !r.Coordinator.TryStart(req.BatchID) {
		return ActionResult{}, &AlreadyProcessingError{BatchID: req.BatchID, Action: req.Action}
	}
	defer r.Coordinator.Finish(req.BatchID)

	result, err := r.dispatch(ctx, req)
	if err != nil {
		if _, ok := err.(*RemoteActionError); ok {
			return ActionResult{}, err
		}
		return ActionResult{}, &RemoteActionError{
			BatchID: req.BatchID,
			Action:  req.Action,
			Message: err.Error(),
			Cause:   err,
		}
	}

	if err := r.Batches.UpdateStatus(ctx, req.BatchID, next); err != nil {
		// The remote action succeeded but the local record is stale.
		// Surface the persistence error; the next load resyncs status.
		log.Printf("[Runner] status update failed for batch %s: %v", req.BatchID, err)
		return result, err
	}
	return result, nil
}

func (r *ActionRunner) dispatch(ctx context.Context, req ActionRequest) (ActionResult, error) {
	switch req.Action {
	case ActionGenerate:
		return r.Remote.Generate(ctx, req.BatchID)
	case ActionVerify:
		return r.Remote.Verify(ctx, req.BatchID)
	case ActionPay:
		return r.Remote.Pay(ctx, req.BatchID, req.ActorID)
	case ActionPost:
		return r.Remote.Post(ctx, req.BatchID, req.ActorID, req.JournalRef)
	case ActionRollback:
		return r.Remote.Rollback(ctx, req.BatchID)
	default:
		return ActionResult{}, &InvalidTransitionError{BatchID: req.BatchID, Action: req.Action}
	}
}
