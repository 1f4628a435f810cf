// Package store provides in-memory implementations of the payroll
// persistence and directory interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY BATCH STORE
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	batches map[payroll.BatchID]payroll.PayrollBatch
	order   []payroll.BatchID
}

func NewMemory() *Memory {
	return &Memory{batches: make(map[payroll.BatchID]payroll.PayrollBatch)}
}

func (m *Memory) SaveBatch(_ context.Context, b payroll.PayrollBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.Config = b.Config.Clone()
	if _, exists := m.batches[b.ID]; !exists {
		m.order = append(m.order, b.ID)
	}
	m.batches[b.ID] = b
	return nil
}

func (m *Memory) GetBatch(_ context.Context, id payroll.BatchID) (payroll.PayrollBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.batches[id]
	if !ok {
		return payroll.PayrollBatch{}, payroll.ErrBatchNotFound
	}
	b.Config = b.Config.Clone()
	return b, nil
}

func (m *Memory) ListBatches(_ context.Context) ([]payroll.PayrollBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.PayrollBatch, 0, len(m.order))
	for _, id := range m.order {
		b := m.batches[id]
		b.Config = b.Config.Clone()
		out = append(out, b)
	}
	return out, nil
}

func (m *Memory) UpdateStatus(_ context.Context, id payroll.BatchID, status payroll.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return payroll.ErrBatchNotFound
	}
	b.Status = status
	m.batches[id] = b
	return nil
}

func (m *Memory) UpdateConfig(_ context.Context, id payroll.BatchID, cfg payroll.BatchConfiguration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return payroll.ErrBatchNotFound
	}
	if b.Locked {
		return payroll.ErrBatchLocked
	}
	b.Config = cfg.Clone()
	m.batches[id] = b
	return nil
}

func (m *Memory) SetLocked(_ context.Context, id payroll.BatchID, locked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return payroll.ErrBatchNotFound
	}
	b.Locked = locked
	m.batches[id] = b
	return nil
}

// =============================================================================
// FIXTURE DIRECTORIES - Static snapshots for tests and dev
// =============================================================================

// Fixtures implements every directory interface over static slices.
type Fixtures struct {
	Employees        []payroll.Employee
	OrgNodes         []payroll.OrgNode
	Positions        []payroll.Position
	SalaryStructures []payroll.SalaryStructure
}

func (f *Fixtures) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	return append([]payroll.Employee(nil), f.Employees...), nil
}

func (f *Fixtures) ListOrgNodes(_ context.Context) ([]payroll.OrgNode, error) {
	nodes := append([]payroll.OrgNode(nil), f.OrgNodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}

func (f *Fixtures) ListPositions(_ context.Context) ([]payroll.Position, error) {
	return append([]payroll.Position(nil), f.Positions...), nil
}

func (f *Fixtures) ListSalaryStructures(_ context.Context) ([]payroll.SalaryStructure, error) {
	return append([]payroll.SalaryStructure(nil), f.SalaryStructures...), nil
}
