package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// ROSTER FIXTURES
// =============================================================================

func emp(id, pos, term, org, structure string, base, gross float64) payroll.Employee {
	return payroll.Employee{
		ID:         payroll.EmployeeID(id),
		Name:       id,
		PositionID: payroll.PositionID(pos),
		Term:       payroll.EmploymentTerm(term),
		OrgNodeID:  payroll.OrgNodeID(org),
		Contracts: []payroll.Contract{{
			ID:                id + "-c1",
			SalaryStructureID: payroll.SalaryStructureID(structure),
			BaseSalary:        decimal.NewFromFloat(base),
			GrossSalary:       decimal.NewFromFloat(gross),
		}},
	}
}

func testRoster() []payroll.Employee {
	return []payroll.Employee{
		emp("e1", "engineer", "permanent", "product", "standard", 5000, 6000),
		emp("e2", "engineer", "contract", "product", "standard", 4500, 5200),
		emp("e3", "sales", "permanent", "sales", "commission", 3200, 5400),
		emp("e4", "sales", "temporary", "sales", "commission", 2800, 3500),
		emp("e5", "manager", "permanent", "product", "standard", 7800, 9100),
	}
}

func criteriaWith(set func(*payroll.FilterCriteria)) payroll.FilterCriteria {
	fc := payroll.NewFilterCriteria()
	set(&fc)
	return fc
}

func matchedIDs(roster []payroll.Employee, fc payroll.FilterCriteria) []string {
	var ids []string
	for _, e := range payroll.MatchEmployees(roster, fc) {
		ids = append(ids, string(e.ID))
	}
	return ids
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// MATCHING RULE TESTS
// =============================================================================

func TestFilter_EmptyCriteria_MatchesAll(t *testing.T) {
	// GIVEN: Criteria with every category empty
	// WHEN: Matching the roster
	// THEN: Every employee matches; empty means unconstrained, not match-none

	roster := testRoster()
	got := payroll.MatchEmployees(roster, payroll.NewFilterCriteria())
	if len(got) != len(roster) {
		t.Fatalf("expected %d matches, got %d", len(roster), len(got))
	}
}

func TestFilter_AndAcrossCategories_OrWithin(t *testing.T) {
	// GIVEN: Two positions listed and one employment term
	// WHEN: Matching
	// THEN: Position is an OR (engineer or sales), term is an AND on top

	fc := criteriaWith(func(fc *payroll.FilterCriteria) {
		fc.PositionIDs["engineer"] = struct{}{}
		fc.PositionIDs["sales"] = struct{}{}
		fc.EmploymentTerms["permanent"] = struct{}{}
	})

	got := matchedIDs(testRoster(), fc)
	if !equalIDs(got, []string{"e1", "e3"}) {
		t.Errorf("got %v, want [e1 e3]", got)
	}
}

func TestFilter_StructuresMatchThroughContracts(t *testing.T) {
	// GIVEN: An employee holding two contracts on different structures
	// WHEN: Filtering by the structure of the SECOND contract
	// THEN: The employee matches; any contract counts

	multi := emp("e9", "engineer", "permanent", "product", "standard", 5000, 6000)
	multi.Contracts = append(multi.Contracts, payroll.Contract{
		ID:                "e9-c2",
		SalaryStructureID: "commission",
		BaseSalary:        decimal.NewFromInt(1000),
		GrossSalary:       decimal.NewFromInt(1500),
	})
	roster := append(testRoster(), multi)

	fc := criteriaWith(func(fc *payroll.FilterCriteria) {
		fc.SalaryStructureIDs["commission"] = struct{}{}
	})

	got := matchedIDs(roster, fc)
	if !equalIDs(got, []string{"e3", "e4", "e9"}) {
		t.Errorf("got %v, want [e3 e4 e9]", got)
	}
}

func TestFilter_NoContracts_FailsStructureCriterion(t *testing.T) {
	// GIVEN: An employee with no contracts at all
	// WHEN: Any structure criterion is set
	// THEN: The employee does not match

	bare := payroll.Employee{ID: "e0", PositionID: "engineer", Term: "permanent", OrgNodeID: "product"}
	fc := criteriaWith(func(fc *payroll.FilterCriteria) {
		fc.SalaryStructureIDs["standard"] = struct{}{}
	})
	if fc.Matches(bare) {
		t.Error("contract-less employee should not match a structure criterion")
	}
	if !payroll.NewFilterCriteria().Matches(bare) {
		t.Error("contract-less employee should match empty criteria")
	}
}

func TestFilter_OrderPreserved(t *testing.T) {
	// GIVEN: A roster in a known order
	// WHEN: Matching a subset
	// THEN: The result keeps the original roster order

	fc := criteriaWith(func(fc *payroll.FilterCriteria) {
		fc.OrgNodeIDs["sales"] = struct{}{}
		fc.OrgNodeIDs["product"] = struct{}{}
	})
	got := matchedIDs(testRoster(), fc)
	if !equalIDs(got, []string{"e1", "e2", "e3", "e4", "e5"}) {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestFilter_ResultDoesNotAliasRoster(t *testing.T) {
	// GIVEN: Empty criteria (full roster returned)
	// WHEN: Mutating the returned slice
	// THEN: The input roster is untouched

	roster := testRoster()
	got := payroll.MatchEmployees(roster, payroll.NewFilterCriteria())
	got[0].Name = "mutated"
	if roster[0].Name == "mutated" {
		t.Error("matched slice aliases the input roster")
	}
}

func TestFilter_MatchingCount(t *testing.T) {
	fc := criteriaWith(func(fc *payroll.FilterCriteria) {
		fc.EmploymentTerms["permanent"] = struct{}{}
	})
	if n := payroll.MatchingCount(testRoster(), fc); n != 3 {
		t.Errorf("MatchingCount = %d, want 3", n)
	}
	if n := payroll.MatchingCount(nil, fc); n != 0 {
		t.Errorf("MatchingCount(nil) = %d, want 0", n)
	}
}

func TestFilter_CloneIsIndependent(t *testing.T) {
	// GIVEN: Criteria with one position
	// WHEN: Adding to the clone
	// THEN: The original is unchanged

	fc := criteriaWith(func(fc *payroll.FilterCriteria) {
		fc.PositionIDs["engineer"] = struct{}{}
	})
	clone := fc.Clone()
	clone.PositionIDs["sales"] = struct{}{}

	if len(fc.PositionIDs) != 1 {
		t.Errorf("original criteria mutated through clone: %v", fc.PositionIDs)
	}
}
