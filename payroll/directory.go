/*
directory.go - Collaborator interfaces

PURPOSE:
  Defines the boundaries between the engine and its external
  collaborators: the master-data directories (read-only snapshots) and
  the remote action endpoints that actually execute payslip work.

CONTRACT:
  Directories return snapshots; the engine never writes them. BatchActions
  calls are idempotent-intent remote operations returning success or a
  typed failure; the engine decides WHEN they may be called (lifecycle.go)
  and serializes them per batch (coordinator.go), nothing more.

IMPLEMENTATIONS:
  - store/sqlite:   directories + batch store backed by SQLite
  - payroll/store:  in-memory fixtures for tests and dev
  - remote:         HTTP client and local simulator for BatchActions
*/
package payroll

import "context"

// =============================================================================
// MASTER-DATA DIRECTORIES (read-only snapshots)
// =============================================================================

// EmployeeDirectory supplies the employee roster snapshot.
type EmployeeDirectory interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// OrgNode is an organization tree node.
type OrgNode struct {
	ID   OrgNodeID
	Name string
}

// OrganizationDirectory supplies organization nodes.
type OrganizationDirectory interface {
	ListOrgNodes(ctx context.Context) ([]OrgNode, error)
}

// Position is a job position.
type Position struct {
	ID    PositionID
	Title string
}

// PositionDirectory supplies job positions.
type PositionDirectory interface {
	ListPositions(ctx context.Context) ([]Position, error)
}

// SalaryStructure is a named salary structure.
type SalaryStructure struct {
	ID   SalaryStructureID
	Name string
}

// SalaryStructureDirectory supplies salary structures.
type SalaryStructureDirectory interface {
	ListSalaryStructures(ctx context.Context) ([]SalaryStructure, error)
}

// =============================================================================
// REMOTE BATCH ACTIONS
// =============================================================================

// ActionResult is what a remote lifecycle endpoint reports back.
type ActionResult struct {
	GeneratedCount int
	Message        string
}

// BatchActions is the remote service that materializes lifecycle actions.
// Each call either succeeds or returns a typed failure; the engine
// performs no automatic retry and offers no cancellation once dispatched.
type BatchActions interface {
	Generate(ctx context.Context, id BatchID) (ActionResult, error)
	Verify(ctx context.Context, id BatchID) (ActionResult, error)
	Pay(ctx context.Context, id BatchID, actorID string) (ActionResult, error)
	Post(ctx context.Context, id BatchID, actorID, journalRef string) (ActionResult, error)
	Rollback(ctx context.Context, id BatchID) (ActionResult, error)
}
