/*
store.go - Persistence interface for payroll batches

PURPOSE:
  Defines the interface between the engine and batch persistence. The
  configuration travels as the committed filters blob (see factory
  package); status updates reflect what the remote system of record
  reported after an action.

OWNERSHIP:
  A batch's configuration is owned by exactly one editing session at a
  time; concurrent edits from two sessions last-writer-win at this layer.
  No optimistic-merge logic exists or is required.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - payroll/store/memory.go: In-memory for testing
*/
package payroll

import "context"

// BatchStore persists payroll batches.
type BatchStore interface {
	// SaveBatch inserts or fully replaces a batch record.
	SaveBatch(ctx context.Context, b PayrollBatch) error

	// GetBatch returns the batch or ErrBatchNotFound.
	GetBatch(ctx context.Context, id BatchID) (PayrollBatch, error)

	// ListBatches returns all batches ordered by creation time.
	ListBatches(ctx context.Context) ([]PayrollBatch, error)

	// UpdateStatus records the status the remote system reported.
	UpdateStatus(ctx context.Context, id BatchID, status Status) error

	// UpdateConfig commits an edited configuration. Fails with
	// ErrBatchLocked for locked batches.
	UpdateConfig(ctx context.Context, id BatchID, cfg BatchConfiguration) error

	// SetLocked flips the batch lock.
	SetLocked(ctx context.Context, id BatchID, locked bool) error
}
