package payroll_test

import (
	"testing"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// COPY-ON-WRITE TESTS
// =============================================================================

func TestConfig_CommandsNeverMutateReceiver(t *testing.T) {
	// GIVEN: A configuration with one pool and one criterion
	// WHEN: Applying every command to it
	// THEN: The original value is bit-for-bit unchanged

	base := payroll.NewBatchConfiguration().
		SetCriteria(payroll.CategoryPositions, []string{"engineer"}).
		AddPool(pool("100", payroll.EqualPerHead))

	_ = base.SetCriteria(payroll.CategoryOrgNodes, []string{"sales"})
	_ = base.AddPool(pool("50", payroll.ProRataByGross))
	_ = base.RemovePool(0)
	_ = base.UpdatePool(0, "amount", "999")
	_ = base.UpdatePool(0, "name", "renamed")
	_ = base.SetPoolStructures(0, []payroll.SalaryStructureID{"commission"})
	_ = base.SetRounding("floor", dec("0.25"))
	_ = base.WithEmployeeCount(42)

	if len(base.Pools) != 1 {
		t.Fatalf("pool count changed: %d", len(base.Pools))
	}
	if !base.Pools[0].Amount.Equal(dec("100")) {
		t.Errorf("pool amount changed: %s", base.Pools[0].Amount)
	}
	if base.Pools[0].Name != "Test Pool" {
		t.Errorf("pool name changed: %s", base.Pools[0].Name)
	}
	if len(base.Filters.PositionIDs) != 1 || len(base.Filters.OrgNodeIDs) != 0 {
		t.Error("filters changed through a derived value")
	}
	if base.Rounding.Mode != payroll.RoundNearest {
		t.Errorf("rounding mode changed: %s", base.Rounding.Mode)
	}
	if base.EmployeeCount != 0 {
		t.Errorf("employee count changed: %d", base.EmployeeCount)
	}
}

// =============================================================================
// COMMAND SEMANTICS
// =============================================================================

func TestConfig_SetCriteria_ReplacesCategoryAndMarksApplied(t *testing.T) {
	// GIVEN: A fresh configuration
	// WHEN: Setting a category twice
	// THEN: The second call replaces (not merges) the set, and the
	//       filters-applied flag is raised from the first call on

	cfg := payroll.NewBatchConfiguration()
	if cfg.FiltersApplied {
		t.Fatal("fresh config should not be marked applied")
	}

	cfg = cfg.SetCriteria(payroll.CategoryEmploymentTerms, []string{"permanent", "contract"})
	if !cfg.FiltersApplied {
		t.Error("FiltersApplied not set")
	}
	if len(cfg.Filters.EmploymentTerms) != 2 {
		t.Fatalf("got %d terms, want 2", len(cfg.Filters.EmploymentTerms))
	}

	cfg = cfg.SetCriteria(payroll.CategoryEmploymentTerms, []string{"temporary"})
	if len(cfg.Filters.EmploymentTerms) != 1 {
		t.Errorf("replace semantics violated: %v", cfg.Filters.EmploymentTerms)
	}
	if _, ok := cfg.Filters.EmploymentTerms["temporary"]; !ok {
		t.Error("new term missing after replace")
	}
}

func TestConfig_AddPool_PrependsAndClamps(t *testing.T) {
	// GIVEN: A configuration with one pool
	// WHEN: Adding a pool with a negative amount and an unknown strategy
	// THEN: It lands FIRST, amount clamped to zero, strategy defaulted

	bad := pool("100", payroll.EqualPerHead)
	bad.ID = "bad"
	bad.Amount = dec("-50")
	bad.Strategy = "made_up"

	cfg := payroll.NewBatchConfiguration().
		AddPool(pool("100", payroll.EqualPerHead)).
		AddPool(bad)

	if len(cfg.Pools) != 2 {
		t.Fatalf("got %d pools, want 2", len(cfg.Pools))
	}
	if cfg.Pools[0].ID != "bad" {
		t.Errorf("new pool not prepended: first is %s", cfg.Pools[0].ID)
	}
	if !cfg.Pools[0].Amount.IsZero() {
		t.Errorf("negative amount not clamped: %s", cfg.Pools[0].Amount)
	}
	if cfg.Pools[0].Strategy != payroll.EqualPerHead {
		t.Errorf("unknown strategy not defaulted: %s", cfg.Pools[0].Strategy)
	}
}

func TestConfig_RemovePool_OutOfRangeIsNoop(t *testing.T) {
	cfg := payroll.NewBatchConfiguration().AddPool(pool("100", payroll.EqualPerHead))

	for _, idx := range []int{-1, 1, 99} {
		if got := cfg.RemovePool(idx); len(got.Pools) != 1 {
			t.Errorf("RemovePool(%d) removed a pool", idx)
		}
	}
	if got := cfg.RemovePool(0); len(got.Pools) != 0 {
		t.Error("RemovePool(0) did not remove the pool")
	}
}

func TestConfig_UpdatePool_FieldCoercion(t *testing.T) {
	// GIVEN: One pool
	// WHEN: Updating fields with valid, invalid, and unknown values
	// THEN: Clamping policy applies; unknown fields land in Extra verbatim

	cfg := payroll.NewBatchConfiguration().AddPool(pool("100", payroll.EqualPerHead))

	cfg = cfg.UpdatePool(0, "amount", "250.75")
	if !cfg.Pools[0].Amount.Equal(dec("250.75")) {
		t.Errorf("amount = %s, want 250.75", cfg.Pools[0].Amount)
	}

	cfg = cfg.UpdatePool(0, "amount", "not-a-number")
	if !cfg.Pools[0].Amount.IsZero() {
		t.Errorf("malformed amount should clamp to zero, got %s", cfg.Pools[0].Amount)
	}

	cfg = cfg.UpdatePool(0, "amount", "-10")
	if !cfg.Pools[0].Amount.IsZero() {
		t.Errorf("negative amount should clamp to zero, got %s", cfg.Pools[0].Amount)
	}

	cfg = cfg.UpdatePool(0, "strategy", "bogus")
	if cfg.Pools[0].Strategy != payroll.EqualPerHead {
		t.Errorf("invalid strategy should keep current, got %s", cfg.Pools[0].Strategy)
	}
	cfg = cfg.UpdatePool(0, "strategy", "pro_rata_gross")
	if cfg.Pools[0].Strategy != payroll.ProRataByGross {
		t.Errorf("valid strategy not applied, got %s", cfg.Pools[0].Strategy)
	}

	cfg = cfg.UpdatePool(0, "inheritBatchFilters", "false")
	if cfg.Pools[0].Eligibility.Inherit {
		t.Error("inheritBatchFilters=false not applied")
	}
	cfg = cfg.UpdatePool(0, "inheritBatchFilters", "maybe")
	if cfg.Pools[0].Eligibility.Inherit {
		t.Error("unparsable bool should keep current value")
	}

	cfg = cfg.UpdatePool(0, "costCenter", "CC-204")
	if got := cfg.Pools[0].Extra["costCenter"]; got != "CC-204" {
		t.Errorf("unknown field not stored verbatim: %v", got)
	}

	// Out of range: no-op, no panic
	if got := cfg.UpdatePool(5, "name", "x"); len(got.Pools) != 1 {
		t.Error("out-of-range UpdatePool changed the pool list")
	}
}

func TestConfig_SetPoolStructures_KeepsInheritFlag(t *testing.T) {
	// GIVEN: An inherited pool
	// WHEN: Setting its explicit structure list
	// THEN: The list is stored but inherit still takes precedence until
	//       the flag itself is flipped

	cfg := payroll.NewBatchConfiguration().AddPool(pool("100", payroll.EqualPerHead))
	cfg = cfg.SetPoolStructures(0, []payroll.SalaryStructureID{"standard", "commission"})

	if !cfg.Pools[0].Eligibility.Inherit {
		t.Error("setting structures must not clear the inherit flag")
	}
	if len(cfg.Pools[0].Eligibility.Structures) != 2 {
		t.Errorf("got %d structures, want 2", len(cfg.Pools[0].Eligibility.Structures))
	}
}

func TestConfig_SetRounding_Coercion(t *testing.T) {
	// GIVEN: Default rounding
	// WHEN: Setting invalid mode and sub-minimum step
	// THEN: Mode keeps its current value, step clamps to 0.01

	cfg := payroll.NewBatchConfiguration()

	cfg = cfg.SetRounding("sideways", dec("0.001"))
	if cfg.Rounding.Mode != payroll.RoundNearest {
		t.Errorf("invalid mode should keep current, got %s", cfg.Rounding.Mode)
	}
	if !cfg.Rounding.Step.Equal(dec("0.01")) {
		t.Errorf("step should clamp to 0.01, got %s", cfg.Rounding.Step)
	}

	cfg = cfg.SetRounding("floor", dec("0.25"))
	if cfg.Rounding.Mode != payroll.RoundFloor || !cfg.Rounding.Step.Equal(dec("0.25")) {
		t.Errorf("valid rounding not applied: %s/%s", cfg.Rounding.Mode, cfg.Rounding.Step)
	}
}

func TestConfig_UnknownCategory_Ignored(t *testing.T) {
	cfg := payroll.NewBatchConfiguration().SetCriteria("departments", []string{"x"})
	if !cfg.Filters.IsEmpty() {
		t.Error("unknown category should not change any filter set")
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range []string{"positions", "employment_terms", "org_nodes", "salary_structures"} {
		if !payroll.ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false", c)
		}
	}
	if payroll.ValidCategory("departments") {
		t.Error("ValidCategory(departments) = true")
	}
}
