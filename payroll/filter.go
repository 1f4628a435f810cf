/*
filter.go - Multi-category employee filtering

PURPOSE:
  Filters an employee roster against four independent criteria categories:
  positions, employment terms, organization nodes, and salary structures.

MATCHING RULES:
  - AND across categories, OR within a category.
  - An EMPTY category means "no constraint" (match-all), never "match none".
  - Salary structures match through contracts: an employee matches if ANY
    of its contracts references a listed structure.

PERFORMANCE:
  Match is O(|roster|) using hash-set membership per category. It is
  deterministic and side-effect free, so the UI can call it on every
  keystroke of a filter edit without memoization.
*/
package payroll

// =============================================================================
// FILTER CRITERIA
// =============================================================================

// FilterCriteria is the four-category selection rule determining a
// batch's employee roster. Each set may be empty.
type FilterCriteria struct {
	PositionIDs        map[PositionID]struct{}
	EmploymentTerms    map[EmploymentTerm]struct{}
	OrgNodeIDs         map[OrgNodeID]struct{}
	SalaryStructureIDs map[SalaryStructureID]struct{}
}

// NewFilterCriteria returns criteria with all categories unconstrained.
func NewFilterCriteria() FilterCriteria {
	return FilterCriteria{
		PositionIDs:        map[PositionID]struct{}{},
		EmploymentTerms:    map[EmploymentTerm]struct{}{},
		OrgNodeIDs:         map[OrgNodeID]struct{}{},
		SalaryStructureIDs: map[SalaryStructureID]struct{}{},
	}
}

// Clone returns an independent deep copy of the criteria.
func (fc FilterCriteria) Clone() FilterCriteria {
	out := NewFilterCriteria()
	for id := range fc.PositionIDs {
		out.PositionIDs[id] = struct{}{}
	}
	for t := range fc.EmploymentTerms {
		out.EmploymentTerms[t] = struct{}{}
	}
	for id := range fc.OrgNodeIDs {
		out.OrgNodeIDs[id] = struct{}{}
	}
	for id := range fc.SalaryStructureIDs {
		out.SalaryStructureIDs[id] = struct{}{}
	}
	return out
}

// IsEmpty reports whether every category is unconstrained.
func (fc FilterCriteria) IsEmpty() bool {
	return len(fc.PositionIDs) == 0 &&
		len(fc.EmploymentTerms) == 0 &&
		len(fc.OrgNodeIDs) == 0 &&
		len(fc.SalaryStructureIDs) == 0
}

// Matches evaluates all four category predicates against one employee.
func (fc FilterCriteria) Matches(e Employee) bool {
	if len(fc.PositionIDs) > 0 {
		if _, ok := fc.PositionIDs[e.PositionID]; !ok {
			return false
		}
	}
	if len(fc.EmploymentTerms) > 0 {
		if _, ok := fc.EmploymentTerms[e.Term]; !ok {
			return false
		}
	}
	if len(fc.OrgNodeIDs) > 0 {
		if _, ok := fc.OrgNodeIDs[e.OrgNodeID]; !ok {
			return false
		}
	}
	if len(fc.SalaryStructureIDs) > 0 {
		matched := false
		for _, c := range e.Contracts {
			if _, ok := fc.SalaryStructureIDs[c.SalaryStructureID]; ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// =============================================================================
// EMPLOYEE MATCHER
// =============================================================================

// MatchEmployees returns the order-preserving subsequence of roster that
// satisfies the criteria. With all-empty criteria the full roster is
// returned (copied, so callers never alias the input slice).
func MatchEmployees(roster []Employee, criteria FilterCriteria) []Employee {
	matched := make([]Employee, 0, len(roster))
	for _, e := range roster {
		if criteria.Matches(e) {
			matched = append(matched, e)
		}
	}
	return matched
}

// MatchingCount is a convenience wrapper for preview displays.
func MatchingCount(roster []Employee, criteria FilterCriteria) int {
	n := 0
	for _, e := range roster {
		if criteria.Matches(e) {
			n++
		}
	}
	return n
}
