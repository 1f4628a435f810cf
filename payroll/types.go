/*
Package payroll provides the batch configuration and lifecycle engine.

PURPOSE:
  This package contains the domain types and algorithms that decide
  WHICH employees a payroll batch applies to, HOW supplemental payment
  pools are split among them, and WHEN a lifecycle action on a batch is
  permitted. The numeric payslip computation itself happens in a remote
  service; this engine only prepares configuration and guards actions.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: Immutable roster snapshot entry (position, term, org node, contracts)
  - Contract: Link from an employee to a salary structure
  - PayrollBatch: One payroll run with a status, lock flag, and configuration
  - BatchType: Monthly, bonus, off-cycle, termination, custom

DESIGN PRINCIPLES:
  1. Immutability: Roster snapshots and configurations are never mutated in place
  2. Precision: Uses decimal.Decimal to avoid floating-point errors with money
  3. Type Safety: Strong typing for IDs prevents mixing employee/batch/rule IDs
  4. Purity: Matching, distribution, and rounding are referentially transparent

SEE ALSO:
  - filter.go: Multi-category employee matching
  - pool.go: Supplemental pools and distribution strategies
  - lifecycle.go: Batch status state machine
  - coordinator.go: Per-batch action serialization
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type BatchID string
type PositionID string
type OrgNodeID string
type SalaryStructureID string
type SalaryRuleID string

// =============================================================================
// EMPLOYEE - Read-only roster snapshot entry
// =============================================================================

// EmploymentTerm classifies the employment relationship.
type EmploymentTerm string

const (
	TermPermanent  EmploymentTerm = "permanent"
	TermContract   EmploymentTerm = "contract"
	TermTemporary  EmploymentTerm = "temporary"
	TermInternship EmploymentTerm = "internship"
)

// Contract links an employee to a salary structure. An employee may hold
// several contracts over time; all of them count for structure matching.
type Contract struct {
	ID                string
	SalaryStructureID SalaryStructureID
	BaseSalary        decimal.Decimal
	GrossSalary       decimal.Decimal
}

// Employee is an immutable snapshot supplied by the employee directory.
// The engine never mutates it.
type Employee struct {
	ID         EmployeeID
	Name       string
	PositionID PositionID
	Term       EmploymentTerm
	OrgNodeID  OrgNodeID
	Contracts  []Contract
}

// HasStructure reports whether any of the employee's contracts references
// the given salary structure.
func (e Employee) HasStructure(id SalaryStructureID) bool {
	for _, c := range e.Contracts {
		if c.SalaryStructureID == id {
			return true
		}
	}
	return false
}

// BaseSalary returns the base salary of the employee's first contract, or
// zero when the employee has no contract on file.
func (e Employee) BaseSalary() decimal.Decimal {
	if len(e.Contracts) == 0 {
		return decimal.Zero
	}
	return e.Contracts[0].BaseSalary
}

// GrossSalary returns the gross salary of the employee's first contract,
// or zero when the employee has no contract on file.
func (e Employee) GrossSalary() decimal.Decimal {
	if len(e.Contracts) == 0 {
		return decimal.Zero
	}
	return e.Contracts[0].GrossSalary
}

// =============================================================================
// PAYROLL BATCH
// =============================================================================

// BatchType classifies a payroll run.
type BatchType string

const (
	BatchMonthly     BatchType = "monthly"
	BatchBonus       BatchType = "bonus"
	BatchOffCycle    BatchType = "off_cycle"
	BatchTermination BatchType = "termination"
	BatchCustom      BatchType = "custom"
)

// BatchSummary holds the totals produced by the remote computation.
// It is display-only: the engine never derives decisions from it.
type BatchSummary struct {
	EmployeeCount int
	TotalGross    decimal.Decimal
	TotalNet      decimal.Decimal
	TotalPools    decimal.Decimal
}

// PayrollBatch is one payroll run covering a period, a filtered employee
// set, and zero or more supplemental pools. Status and summary are owned
// by the remote system of record; the configuration is owned by this
// engine until committed.
type PayrollBatch struct {
	ID          BatchID
	Name        string
	Type        BatchType
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      Status
	Locked      bool
	Config      BatchConfiguration
	Summary     BatchSummary
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MustParseDecimal parses s, returning zero on malformed input. Used where
// the clamping error policy applies (bad input corrects to a safe value).
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
