/*
local.go - In-process payroll action simulator

PURPOSE:
  Stands in for the remote payroll service so the demo server and tests
  are self-contained. Generate runs the real matching and distribution
  engines to produce a plausible summary; the other actions acknowledge
  with a message. Behavior the engine relies on (status transitions,
  guards, serialization) lives OUTSIDE this type, in the payroll package,
  so nothing here affects correctness of the lifecycle.
*/
package remote

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// Local simulates the remote action endpoints against the local store
// and directories.
type Local struct {
	Batches   payroll.BatchStore
	Employees payroll.EmployeeDirectory
}

var _ payroll.BatchActions = (*Local)(nil)

// NewLocal returns a simulator over the given store and directory.
func NewLocal(batches payroll.BatchStore, employees payroll.EmployeeDirectory) *Local {
	return &Local{Batches: batches, Employees: employees}
}

// Generate computes the matching roster and per-pool distributions, and
// reports how many payslips the real service would have generated.
func (l *Local) Generate(ctx context.Context, id payroll.BatchID) (payroll.ActionResult, error) {
	batch, err := l.Batches.GetBatch(ctx, id)
	if err != nil {
		return payroll.ActionResult{}, err
	}
	roster, err := l.Employees.ListEmployees(ctx)
	if err != nil {
		return payroll.ActionResult{}, err
	}

	matched := payroll.MatchEmployees(roster, batch.Config.Filters)

	totalPools := decimal.Zero
	for _, pool := range batch.Config.Pools {
		eligible := payroll.ResolveEligibility(pool, batch.Config.Filters, roster)
		alloc, err := payroll.Distribute(pool, eligible, nil, nil, batch.Config.Rounding)
		if err != nil {
			return payroll.ActionResult{}, err
		}
		totalPools = totalPools.Add(alloc.Total)
	}

	batch.Summary = payroll.BatchSummary{
		EmployeeCount: len(matched),
		TotalPools:    totalPools,
	}
	if err := l.Batches.SaveBatch(ctx, batch); err != nil {
		return payroll.ActionResult{}, err
	}

	return payroll.ActionResult{
		GeneratedCount: len(matched),
		Message:        fmt.Sprintf("generated %d payslips", len(matched)),
	}, nil
}

func (l *Local) Verify(ctx context.Context, id payroll.BatchID) (payroll.ActionResult, error) {
	return l.ack(ctx, id, "batch verified")
}

func (l *Local) Pay(ctx context.Context, id payroll.BatchID, actorID string) (payroll.ActionResult, error) {
	return l.ack(ctx, id, fmt.Sprintf("batch paid by %s", actorID))
}

func (l *Local) Post(ctx context.Context, id payroll.BatchID, actorID, journalRef string) (payroll.ActionResult, error) {
	return l.ack(ctx, id, fmt.Sprintf("batch posted by %s (journal %s)", actorID, journalRef))
}

func (l *Local) Rollback(ctx context.Context, id payroll.BatchID) (payroll.ActionResult, error) {
	return l.ack(ctx, id, "batch rolled back to draft")
}

func (l *Local) ack(ctx context.Context, id payroll.BatchID, msg string) (payroll.ActionResult, error) {
	batch, err := l.Batches.GetBatch(ctx, id)
	if err != nil {
		return payroll.ActionResult{}, err
	}
	return payroll.ActionResult{
		GeneratedCount: batch.Summary.EmployeeCount,
		Message:        msg,
	}, nil
}
