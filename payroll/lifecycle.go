/*
lifecycle.go - Batch status state machine

PURPOSE:
  Validates and applies lifecycle transitions for a payroll batch. The
  remote system of record owns the status; this machine decides whether
  an action may be dispatched at all, so a forgotten UI guard can never
  trigger a remote call from the wrong state.

STATES:
  Draft -> Generated -> Verified -> Paid -> Posted
                     \-> Done ----/
  Done and Posted are deliberately DISTINCT: one code path reports Done
  after verification, another reports Posted after payment. They are not
  unified here; see the decision log in DESIGN.md.

TRANSITIONS:
  generate  Draft               -> Generated   (needs >=1 matching employee)
  verify    Generated           -> Verified
  pay       Verified or Done    -> Paid
  post      Paid                -> Posted
  rollback  Generated           -> Draft

  rollback is the ONLY backward transition. It exists to undo an
  accidental generate before money moves and is rejected once the batch
  reaches Paid, irreversibly, by business rule.
*/
package payroll

// =============================================================================
// STATUS AND ACTIONS
// =============================================================================

// Status is a batch's lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusGenerated Status = "generated"
	StatusVerified  Status = "verified"
	StatusDone      Status = "done"
	StatusPaid      Status = "paid"
	StatusPosted    Status = "posted"
)

// Action is a lifecycle action dispatched to the remote service.
type Action string

const (
	ActionGenerate Action = "generate"
	ActionVerify   Action = "verify"
	ActionPay      Action = "pay"
	ActionPost     Action = "post"
	ActionRollback Action = "rollback"
)

// ValidAction reports whether s names a known lifecycle action.
func ValidAction(s string) bool {
	switch Action(s) {
	case ActionGenerate, ActionVerify, ActionPay, ActionPost, ActionRollback:
		return true
	}
	return false
}

// =============================================================================
// STATE MACHINE
// =============================================================================

// transitions maps action -> allowed source states -> resulting state.
var transitions = map[Action]struct {
	from   map[Status]struct{}
	result Status
}{
	ActionGenerate: {from: set(StatusDraft), result: StatusGenerated},
	ActionVerify:   {from: set(StatusGenerated), result: StatusVerified},
	ActionPay:      {from: set(StatusVerified, StatusDone), result: StatusPaid},
	ActionPost:     {from: set(StatusPaid), result: StatusPosted},
	ActionRollback: {from: set(StatusGenerated), result: StatusDraft},
}

func set(ss ...Status) map[Status]struct{} {
	m := make(map[Status]struct{}, len(ss))
	for _, s := range ss {
		m[s] = struct{}{}
	}
	return m
}

// CanTransition reports whether action is allowed from status. It checks
// the transition table only; batch-level guards (lock, employee count)
// live in Transition and the action runner.
func CanTransition(status Status, action Action) bool {
	t, ok := transitions[action]
	if !ok {
		return false
	}
	_, ok = t.from[status]
	return ok
}

// ResultStatus returns the status an action produces. The bool is false
// for unknown actions.
func ResultStatus(action Action) (Status, bool) {
	t, ok := transitions[action]
	if !ok {
		return "", false
	}
	return t.result, true
}

// Transition validates an action against a batch and returns the
// resulting status. It never mutates the batch and never calls out;
// failure means the remote endpoint must not be contacted.
//
// matchingEmployees is the current count for the batch's configuration;
// it gates generate only.
func Transition(b PayrollBatch, action Action, matchingEmployees int) (Status, error) {
	if b.Locked {
		return b.Status, ErrBatchLocked
	}
	if !CanTransition(b.Status, action) {
		return b.Status, &InvalidTransitionError{BatchID: b.ID, From: b.Status, Action: action}
	}
	if action == ActionGenerate && matchingEmployees < 1 {
		return b.Status, ErrNoEligibleEmployees
	}
	result, _ := ResultStatus(action)
	return result, nil
}
