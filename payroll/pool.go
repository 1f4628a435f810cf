/*
pool.go - Supplemental payment pools and distribution strategies

PURPOSE:
  A pool is a fixed amount of money split across an eligible subset of a
  batch's employees. Eligibility is either inherited from the batch's own
  filters or an explicit salary-structure list. The split is computed by
  one of three strategies, with every share passed through the batch's
  rounding policy.

STRATEGIES:
  EqualPerHead:        amount / |eligible| to each
  ProRataByBaseSalary: amount * base_i / sum(base)
  ProRataByGross:      amount * gross_i / sum(gross)

DEGENERATE CASES (legal, never errors):
  - Empty eligible set: empty allocation, full amount left as remainder.
  - Pro-rata with zero total weight: falls back to equal-per-head and the
    allocation is flagged degenerate.
  - Rounding residue: leftover cents are NOT redistributed; they are
    reported in Allocation.Remainder so callers can see unallocated money.
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// DISTRIBUTION STRATEGY
// =============================================================================

// Strategy is the closed set of pool distribution algorithms.
type Strategy string

const (
	EqualPerHead        Strategy = "equal_per_head"
	ProRataByBaseSalary Strategy = "pro_rata_base"
	ProRataByGross      Strategy = "pro_rata_gross"
)

// ValidStrategy reports whether s names a known strategy.
func ValidStrategy(s string) bool {
	switch Strategy(s) {
	case EqualPerHead, ProRataByBaseSalary, ProRataByGross:
		return true
	}
	return false
}

// =============================================================================
// ELIGIBILITY - Inherited | Explicit(salaryStructureIds)
// =============================================================================

// Eligibility determines which employees a pool applies to. Exactly one
// of the two variants is meaningful; Inherit takes precedence if both
// are somehow set, so the ambiguity can never change who gets paid.
type Eligibility struct {
	Inherit    bool
	Structures map[SalaryStructureID]struct{}
}

// InheritedEligibility follows the batch's own filter criteria.
func InheritedEligibility() Eligibility {
	return Eligibility{Inherit: true, Structures: map[SalaryStructureID]struct{}{}}
}

// ExplicitEligibility restricts the pool to employees holding a contract
// on one of the listed salary structures. An empty list yields a pool
// with no eligible members (legal, distributes nothing).
func ExplicitEligibility(ids ...SalaryStructureID) Eligibility {
	set := make(map[SalaryStructureID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Eligibility{Structures: set}
}

// Clone returns an independent deep copy.
func (el Eligibility) Clone() Eligibility {
	set := make(map[SalaryStructureID]struct{}, len(el.Structures))
	for id := range el.Structures {
		set[id] = struct{}{}
	}
	return Eligibility{Inherit: el.Inherit, Structures: set}
}

// =============================================================================
// POOL
// =============================================================================

// Pool is a fixed amount distributed among eligible employees under a
// strategy. SalaryRuleID references the remote rule that materializes
// the payment on the payslip.
type Pool struct {
	ID           string
	Name         string
	Amount       decimal.Decimal // always >= 0; commands clamp
	Strategy     Strategy
	Eligibility  Eligibility
	SalaryRuleID SalaryRuleID

	// Extra carries persisted fields this engine doesn't interpret.
	// They round-trip verbatim through the filters blob.
	Extra map[string]any
}

// Clone returns an independent deep copy of the pool.
func (p Pool) Clone() Pool {
	out := p
	out.Eligibility = p.Eligibility.Clone()
	if p.Extra != nil {
		out.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// ResolveEligibility computes the employees a pool applies to.
// Inherited pools follow the batch filters; explicit pools match any
// contract referencing a listed salary structure. Order-preserving.
func ResolveEligibility(p Pool, batchFilters FilterCriteria, roster []Employee) []Employee {
	if p.Eligibility.Inherit {
		return MatchEmployees(roster, batchFilters)
	}
	eligible := make([]Employee, 0, len(roster))
	for _, e := range roster {
		for _, c := range e.Contracts {
			if _, ok := p.Eligibility.Structures[c.SalaryStructureID]; ok {
				eligible = append(eligible, e)
				break
			}
		}
	}
	return eligible
}

// =============================================================================
// DISTRIBUTION ENGINE
// =============================================================================

// SalaryFunc extracts a weight (base or gross salary) from an employee.
type SalaryFunc func(Employee) decimal.Decimal

// Allocation is the result of distributing one pool.
type Allocation struct {
	// Shares maps each eligible employee to its rounded share.
	Shares map[EmployeeID]decimal.Decimal

	// Order lists eligible employee IDs in original roster order, for
	// deterministic iteration over Shares.
	Order []EmployeeID

	// Total is the sum of all rounded shares.
	Total decimal.Decimal

	// Remainder is pool amount minus Total: money the rounding left
	// unallocated. Never silently dropped; callers decide what to do.
	Remainder decimal.Decimal

	// Degenerate is set when a pro-rata strategy had zero total weight
	// and fell back to an equal split.
	Degenerate bool
}

// Distribute splits pool.Amount across the eligible employees. baseOf and
// grossOf default to the employee's first contract when nil. The empty
// eligible set is not an error: the allocation simply has zero shares and
// the full amount as remainder.
func Distribute(pool Pool, eligible []Employee, baseOf, grossOf SalaryFunc, rounding RoundingConfig) (Allocation, error) {
	if baseOf == nil {
		baseOf = Employee.BaseSalary
	}
	if grossOf == nil {
		grossOf = Employee.GrossSalary
	}

	alloc := Allocation{
		Shares:    make(map[EmployeeID]decimal.Decimal, len(eligible)),
		Order:     make([]EmployeeID, 0, len(eligible)),
		Total:     decimal.Zero,
		Remainder: pool.Amount,
	}
	if len(eligible) == 0 || pool.Amount.LessThanOrEqual(decimal.Zero) {
		alloc.Remainder = pool.Amount
		return alloc, nil
	}

	weights, total, degenerate := poolWeights(pool.Strategy, eligible, baseOf, grossOf)
	alloc.Degenerate = degenerate

	for i, e := range eligible {
		raw := pool.Amount.Mul(weights[i]).Div(total)
		share, err := rounding.Apply(raw)
		if err != nil {
			return Allocation{}, err
		}
		alloc.Shares[e.ID] = share
		alloc.Order = append(alloc.Order, e.ID)
		alloc.Total = alloc.Total.Add(share)
	}
	alloc.Remainder = pool.Amount.Sub(alloc.Total)
	return alloc, nil
}

// poolWeights computes per-employee weights and their sum. A pro-rata
// strategy whose weights sum to zero degrades to equal weights so the
// pool still distributes instead of dividing by zero.
func poolWeights(s Strategy, eligible []Employee, baseOf, grossOf SalaryFunc) (weights []decimal.Decimal, total decimal.Decimal, degenerate bool) {
	one := decimal.NewFromInt(1)
	weights = make([]decimal.Decimal, len(eligible))

	var weightOf SalaryFunc
	switch s {
	case ProRataByBaseSalary:
		weightOf = baseOf
	case ProRataByGross:
		weightOf = grossOf
	default: // EqualPerHead
		for i := range weights {
			weights[i] = one
		}
		return weights, decimal.NewFromInt(int64(len(eligible))), false
	}

	total = decimal.Zero
	for i, e := range eligible {
		w := weightOf(e)
		if w.IsNegative() {
			w = decimal.Zero
		}
		weights[i] = w
		total = total.Add(w)
	}
	if total.IsZero() {
		for i := range weights {
			weights[i] = one
		}
		return weights, decimal.NewFromInt(int64(len(eligible))), true
	}
	return weights, total, false
}
