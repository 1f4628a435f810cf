/*
config.go - Batch configuration value and its command surface

PURPOSE:
  BatchConfiguration aggregates the filter criteria, supplemental pools,
  and rounding policy for one batch, plus the last-computed matching
  employee count. It is edited only through explicit commands, each of
  which returns a NEW value (copy-on-write) so preview computation stays
  side-effect free and edits are trivially undoable.

COERCION POLICY:
  Invalid field input never surfaces as an error from a command; it is
  silently corrected instead:
    amount -> max(0, parsed-or-0)
    step   -> max(0.01, parsed-or-0.01)
  Unknown pool fields pass through verbatim and survive persistence
  round-trips.

COST:
  Every command is O(pools) or O(1) and never touches the network.
*/
package payroll

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CRITERIA CATEGORIES
// =============================================================================

// CriteriaCategory names one of the four filter categories.
type CriteriaCategory string

const (
	CategoryPositions       CriteriaCategory = "positions"
	CategoryEmploymentTerms CriteriaCategory = "employment_terms"
	CategoryOrgNodes        CriteriaCategory = "org_nodes"
	CategoryStructures      CriteriaCategory = "salary_structures"
)

// ValidCategory reports whether s names a known criteria category.
func ValidCategory(s string) bool {
	switch CriteriaCategory(s) {
	case CategoryPositions, CategoryEmploymentTerms, CategoryOrgNodes, CategoryStructures:
		return true
	}
	return false
}

// =============================================================================
// BATCH CONFIGURATION
// =============================================================================

// BatchConfiguration is the editable filter/pool/rounding aggregate for
// one batch. Matching and distribution read it; they never write it.
type BatchConfiguration struct {
	Filters        FilterCriteria
	Pools          []Pool
	Rounding       RoundingConfig
	FiltersApplied bool
	EmployeeCount  int // last-computed cache, refreshed by MatchingCount callers
}

// NewBatchConfiguration returns an empty configuration with default
// rounding, as created when a batch enters "create" mode.
func NewBatchConfiguration() BatchConfiguration {
	return BatchConfiguration{
		Filters:  NewFilterCriteria(),
		Pools:    []Pool{},
		Rounding: DefaultRounding(),
	}
}

// Clone returns an independent deep copy of the configuration.
func (c BatchConfiguration) Clone() BatchConfiguration {
	out := c
	out.Filters = c.Filters.Clone()
	out.Pools = make([]Pool, len(c.Pools))
	for i, p := range c.Pools {
		out.Pools[i] = p.Clone()
	}
	return out
}

// =============================================================================
// COMMANDS - Each returns a new configuration value
// =============================================================================

// SetCriteria replaces the id set of one category. Unknown categories are
// ignored (the configuration is returned unchanged).
func (c BatchConfiguration) SetCriteria(category CriteriaCategory, ids []string) BatchConfiguration {
	out := c.Clone()
	switch category {
	case CategoryPositions:
		out.Filters.PositionIDs = map[PositionID]struct{}{}
		for _, id := range ids {
			out.Filters.PositionIDs[PositionID(id)] = struct{}{}
		}
	case CategoryEmploymentTerms:
		out.Filters.EmploymentTerms = map[EmploymentTerm]struct{}{}
		for _, id := range ids {
			out.Filters.EmploymentTerms[EmploymentTerm(id)] = struct{}{}
		}
	case CategoryOrgNodes:
		out.Filters.OrgNodeIDs = map[OrgNodeID]struct{}{}
		for _, id := range ids {
			out.Filters.OrgNodeIDs[OrgNodeID(id)] = struct{}{}
		}
	case CategoryStructures:
		out.Filters.SalaryStructureIDs = map[SalaryStructureID]struct{}{}
		for _, id := range ids {
			out.Filters.SalaryStructureIDs[SalaryStructureID(id)] = struct{}{}
		}
	}
	out.FiltersApplied = true
	return out
}

// AddPool prepends a pool. The amount is clamped to be non-negative.
func (c BatchConfiguration) AddPool(p Pool) BatchConfiguration {
	out := c.Clone()
	p = p.Clone()
	if p.Amount.IsNegative() {
		p.Amount = decimal.Zero
	}
	if !ValidStrategy(string(p.Strategy)) {
		p.Strategy = EqualPerHead
	}
	out.Pools = append([]Pool{p}, out.Pools...)
	return out
}

// RemovePool deletes the pool at index. Out-of-range indexes are a no-op.
func (c BatchConfiguration) RemovePool(index int) BatchConfiguration {
	if index < 0 || index >= len(c.Pools) {
		return c
	}
	out := c.Clone()
	out.Pools = append(out.Pools[:index], out.Pools[index+1:]...)
	return out
}

// UpdatePool sets one field of the pool at index, applying the field
// coercion policy. Unknown fields are stored verbatim on the pool and
// survive persistence round-trips. Out-of-range indexes are a no-op.
// Rounding step is not a pool field; its clamp lives in SetRounding.
func (c BatchConfiguration) UpdatePool(index int, field string, value string) BatchConfiguration {
	if index < 0 || index >= len(c.Pools) {
		return c
	}
	out := c.Clone()
	p := &out.Pools[index]

	switch field {
	case "amount":
		amt := MustParseDecimal(value)
		if amt.IsNegative() {
			amt = decimal.Zero
		}
		p.Amount = amt
	case "name":
		p.Name = value
	case "strategy":
		if ValidStrategy(value) {
			p.Strategy = Strategy(value)
		}
	case "salaryRuleId":
		p.SalaryRuleID = SalaryRuleID(value)
	case "inheritBatchFilters":
		inherit, err := strconv.ParseBool(value)
		if err == nil {
			p.Eligibility.Inherit = inherit
		}
	default:
		if p.Extra == nil {
			p.Extra = map[string]any{}
		}
		p.Extra[field] = value
	}
	return out
}

// SetPoolStructures replaces the explicit salary-structure list of the
// pool at index. Out-of-range indexes are a no-op.
func (c BatchConfiguration) SetPoolStructures(index int, ids []SalaryStructureID) BatchConfiguration {
	if index < 0 || index >= len(c.Pools) {
		return c
	}
	out := c.Clone()
	inherit := out.Pools[index].Eligibility.Inherit
	out.Pools[index].Eligibility = ExplicitEligibility(ids...)
	out.Pools[index].Eligibility.Inherit = inherit
	return out
}

// SetRounding replaces the rounding policy. Unknown modes keep the
// current mode; the step is clamped to at least 0.01.
func (c BatchConfiguration) SetRounding(mode string, step decimal.Decimal) BatchConfiguration {
	out := c.Clone()
	if ValidMode(mode) {
		out.Rounding.Mode = RoundingMode(mode)
	}
	if step.LessThan(DefaultStep) {
		step = DefaultStep
	}
	out.Rounding.Step = step
	return out
}

// WithEmployeeCount returns the configuration with a refreshed count cache.
func (c BatchConfiguration) WithEmployeeCount(n int) BatchConfiguration {
	out := c.Clone()
	out.EmployeeCount = n
	return out
}

// MatchingCount recomputes how many roster employees the current filters
// select. Pure; does not update the cache (use WithEmployeeCount).
func (c BatchConfiguration) MatchingCount(roster []Employee) int {
	return MatchingCount(roster, c.Filters)
}
