package payroll_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func pool(amount string, strategy payroll.Strategy) payroll.Pool {
	return payroll.Pool{
		ID:          "pool-1",
		Name:        "Test Pool",
		Amount:      dec(amount),
		Strategy:    strategy,
		Eligibility: payroll.InheritedEligibility(),
	}
}

func centRounding() payroll.RoundingConfig {
	return payroll.DefaultRounding()
}

// =============================================================================
// DISTRIBUTION TESTS
// =============================================================================

func TestDistribute_EqualPerHead_ExactSplit(t *testing.T) {
	// GIVEN: 300.00 split equally across 3 employees
	// WHEN: Distributing
	// THEN: Each gets exactly 100.00, zero remainder

	eligible := testRoster()[:3]
	alloc, err := payroll.Distribute(pool("300", payroll.EqualPerHead), eligible, nil, nil, centRounding())
	require.NoError(t, err)

	assert.Len(t, alloc.Shares, 3)
	for _, e := range eligible {
		assert.True(t, alloc.Shares[e.ID].Equal(dec("100")), "share of %s = %s", e.ID, alloc.Shares[e.ID])
	}
	assert.True(t, alloc.Total.Equal(dec("300")))
	assert.True(t, alloc.Remainder.IsZero())
	assert.False(t, alloc.Degenerate)
}

func TestDistribute_EqualPerHead_ResidueReported(t *testing.T) {
	// GIVEN: 100.00 split across 3 with floor rounding to cents
	// WHEN: Distributing
	// THEN: Each gets 33.33 and the unallocated cent shows up as remainder

	eligible := testRoster()[:3]
	cfg := payroll.RoundingConfig{Mode: payroll.RoundFloor, Step: dec("0.01")}
	alloc, err := payroll.Distribute(pool("100", payroll.EqualPerHead), eligible, nil, nil, cfg)
	require.NoError(t, err)

	for _, id := range alloc.Order {
		assert.True(t, alloc.Shares[id].Equal(dec("33.33")), "share of %s = %s", id, alloc.Shares[id])
	}
	assert.True(t, alloc.Total.Equal(dec("99.99")))
	assert.True(t, alloc.Remainder.Equal(dec("0.01")), "remainder = %s", alloc.Remainder)
}

func TestDistribute_ProRataByBase(t *testing.T) {
	// GIVEN: Two employees with base salaries 6000 and 4000, pool of 1000
	// WHEN: Distributing pro-rata by base
	// THEN: Shares are 600 and 400

	eligible := []payroll.Employee{
		emp("a", "engineer", "permanent", "product", "standard", 6000, 7000),
		emp("b", "engineer", "permanent", "product", "standard", 4000, 4800),
	}
	alloc, err := payroll.Distribute(pool("1000", payroll.ProRataByBaseSalary), eligible, nil, nil, centRounding())
	require.NoError(t, err)

	assert.True(t, alloc.Shares["a"].Equal(dec("600")), "a = %s", alloc.Shares["a"])
	assert.True(t, alloc.Shares["b"].Equal(dec("400")), "b = %s", alloc.Shares["b"])
	assert.True(t, alloc.Remainder.IsZero())
}

func TestDistribute_ProRataByGross_UsesGrossNotBase(t *testing.T) {
	// GIVEN: Equal base salaries but different gross
	// WHEN: Distributing pro-rata by gross
	// THEN: The gross-heavy employee gets the larger share

	eligible := []payroll.Employee{
		emp("a", "sales", "permanent", "sales", "commission", 3000, 9000),
		emp("b", "sales", "permanent", "sales", "commission", 3000, 3000),
	}
	alloc, err := payroll.Distribute(pool("1200", payroll.ProRataByGross), eligible, nil, nil, centRounding())
	require.NoError(t, err)

	assert.True(t, alloc.Shares["a"].Equal(dec("900")), "a = %s", alloc.Shares["a"])
	assert.True(t, alloc.Shares["b"].Equal(dec("300")), "b = %s", alloc.Shares["b"])
}

func TestDistribute_EmptyEligibleSet_NoError(t *testing.T) {
	// GIVEN: A pool with no eligible employees
	// WHEN: Distributing
	// THEN: Empty allocation, full amount as remainder, no error

	alloc, err := payroll.Distribute(pool("500", payroll.EqualPerHead), nil, nil, nil, centRounding())
	require.NoError(t, err)
	assert.Empty(t, alloc.Shares)
	assert.True(t, alloc.Remainder.Equal(dec("500")))
}

func TestDistribute_ZeroAmount_NoError(t *testing.T) {
	// GIVEN: A zero-amount pool with eligible employees
	// WHEN: Distributing
	// THEN: No shares, no error

	alloc, err := payroll.Distribute(pool("0", payroll.EqualPerHead), testRoster(), nil, nil, centRounding())
	require.NoError(t, err)
	assert.Empty(t, alloc.Shares)
	assert.True(t, alloc.Remainder.IsZero())
}

func TestDistribute_ZeroWeights_FallsBackToEqual(t *testing.T) {
	// GIVEN: Pro-rata by base where every base salary is zero
	// WHEN: Distributing
	// THEN: Equal split, allocation flagged degenerate, no division by zero

	eligible := []payroll.Employee{
		emp("a", "intern", "internship", "product", "standard", 0, 0),
		emp("b", "intern", "internship", "product", "standard", 0, 0),
	}
	alloc, err := payroll.Distribute(pool("100", payroll.ProRataByBaseSalary), eligible, nil, nil, centRounding())
	require.NoError(t, err)

	assert.True(t, alloc.Degenerate)
	assert.True(t, alloc.Shares["a"].Equal(dec("50")))
	assert.True(t, alloc.Shares["b"].Equal(dec("50")))
}

func TestDistribute_NegativeWeightsTreatedAsZero(t *testing.T) {
	// GIVEN: One employee with a (corrupt) negative base salary
	// WHEN: Distributing pro-rata by base
	// THEN: That employee weighs zero; the other takes the full pool

	eligible := []payroll.Employee{
		emp("a", "engineer", "permanent", "product", "standard", -5000, 0),
		emp("b", "engineer", "permanent", "product", "standard", 4000, 4800),
	}
	alloc, err := payroll.Distribute(pool("1000", payroll.ProRataByBaseSalary), eligible, nil, nil, centRounding())
	require.NoError(t, err)

	assert.True(t, alloc.Shares["a"].IsZero(), "a = %s", alloc.Shares["a"])
	assert.True(t, alloc.Shares["b"].Equal(dec("1000")), "b = %s", alloc.Shares["b"])
}

func TestDistribute_OrderFollowsRoster(t *testing.T) {
	// GIVEN: Eligible employees in roster order
	// WHEN: Distributing
	// THEN: Allocation.Order preserves it for deterministic iteration

	eligible := testRoster()
	alloc, err := payroll.Distribute(pool("100", payroll.EqualPerHead), eligible, nil, nil, centRounding())
	require.NoError(t, err)

	require.Len(t, alloc.Order, len(eligible))
	for i, e := range eligible {
		assert.Equal(t, e.ID, alloc.Order[i])
	}
}

// TestDistribute_FloorMode_NeverExceedsPool exercises the conservation
// bound: under floor rounding the sum of shares can never exceed the pool
// amount, for any strategy, roster size, or amount. Nearest rounding does
// not carry this bound (two half-cent shares can each round up).
func TestDistribute_FloorMode_NeverExceedsPool(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cfg := payroll.RoundingConfig{Mode: payroll.RoundFloor, Step: dec("0.01")}
	strategies := []payroll.Strategy{payroll.EqualPerHead, payroll.ProRataByBaseSalary, payroll.ProRataByGross}

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(17)
		eligible := make([]payroll.Employee, n)
		for i := range eligible {
			base := float64(rng.Intn(900000)) / 100
			gross := base * (1 + rng.Float64())
			eligible[i] = emp(fmt.Sprintf("e%d", i), "p", "permanent", "o", "s", base, gross)
		}
		amount := decimal.NewFromInt(int64(rng.Intn(10000000))).Div(dec("100"))
		strategy := strategies[trial%len(strategies)]

		alloc, err := payroll.Distribute(pool(amount.String(), strategy), eligible, nil, nil, cfg)
		require.NoError(t, err)

		if alloc.Total.GreaterThan(amount) {
			t.Fatalf("trial %d (%s): total %s exceeds pool %s", trial, strategy, alloc.Total, amount)
		}
		if !alloc.Total.Add(alloc.Remainder).Equal(amount) {
			t.Fatalf("trial %d (%s): total %s + remainder %s != pool %s",
				trial, strategy, alloc.Total, alloc.Remainder, amount)
		}
	}
}

// =============================================================================
// ELIGIBILITY TESTS
// =============================================================================

func TestResolveEligibility_Inherited_FollowsBatchFilters(t *testing.T) {
	// GIVEN: A pool inheriting batch filters that select permanents only
	// WHEN: Resolving eligibility
	// THEN: The pool covers exactly the batch's matched set

	fc := criteriaWith(func(fc *payroll.FilterCriteria) {
		fc.EmploymentTerms["permanent"] = struct{}{}
	})
	p := pool("100", payroll.EqualPerHead)
	p.Eligibility = payroll.InheritedEligibility()

	got := payroll.ResolveEligibility(p, fc, testRoster())
	require.Len(t, got, 3)
	assert.Equal(t, payroll.EmployeeID("e1"), got[0].ID)
	assert.Equal(t, payroll.EmployeeID("e3"), got[1].ID)
	assert.Equal(t, payroll.EmployeeID("e5"), got[2].ID)
}

func TestResolveEligibility_Explicit_IgnoresBatchFilters(t *testing.T) {
	// GIVEN: Batch filters selecting nobody, pool with explicit structures
	// WHEN: Resolving eligibility
	// THEN: The explicit structure list wins; batch filters are irrelevant

	fc := criteriaWith(func(fc *payroll.FilterCriteria) {
		fc.PositionIDs["nonexistent"] = struct{}{}
	})
	p := pool("100", payroll.EqualPerHead)
	p.Eligibility = payroll.ExplicitEligibility("commission")

	got := payroll.ResolveEligibility(p, fc, testRoster())
	require.Len(t, got, 2)
	assert.Equal(t, payroll.EmployeeID("e3"), got[0].ID)
	assert.Equal(t, payroll.EmployeeID("e4"), got[1].ID)
}

func TestResolveEligibility_InheritTakesPrecedence(t *testing.T) {
	// GIVEN: An eligibility with BOTH inherit set and structures listed
	// WHEN: Resolving
	// THEN: Inherit wins; the structure list is ignored

	p := pool("100", payroll.EqualPerHead)
	p.Eligibility = payroll.ExplicitEligibility("commission")
	p.Eligibility.Inherit = true

	got := payroll.ResolveEligibility(p, payroll.NewFilterCriteria(), testRoster())
	assert.Len(t, got, len(testRoster()), "inherit should follow (empty) batch filters, not the structure list")
}

func TestResolveEligibility_ExplicitEmptyList_NobodyEligible(t *testing.T) {
	// GIVEN: Explicit eligibility with no structures listed
	// WHEN: Resolving
	// THEN: Empty set; legal, distributes nothing

	p := pool("100", payroll.EqualPerHead)
	p.Eligibility = payroll.ExplicitEligibility()

	got := payroll.ResolveEligibility(p, payroll.NewFilterCriteria(), testRoster())
	assert.Empty(t, got)
}

func TestValidStrategy(t *testing.T) {
	for _, s := range []string{"equal_per_head", "pro_rata_base", "pro_rata_gross"} {
		assert.True(t, payroll.ValidStrategy(s), s)
	}
	for _, s := range []string{"", "equal", "random", "EQUAL_PER_HEAD"} {
		assert.False(t, payroll.ValidStrategy(s), s)
	}
}
