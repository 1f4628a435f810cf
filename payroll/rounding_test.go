package payroll_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func rounding(mode payroll.RoundingMode, step string) payroll.RoundingConfig {
	return payroll.RoundingConfig{Mode: mode, Step: dec(step)}
}

// =============================================================================
// ROUNDING MODE TESTS
// =============================================================================

func TestRounding_Nearest_TiesAwayFromZero(t *testing.T) {
	// GIVEN: Nearest rounding with step 0.01
	// WHEN: Rounding amounts exactly halfway between steps
	// THEN: Ties go away from zero

	cfg := rounding(payroll.RoundNearest, "0.01")

	cases := []struct {
		in   string
		want string
	}{
		{"10.125", "10.13"},
		{"10.124", "10.12"},
		{"10.115", "10.12"},
		{"-10.125", "-10.13"},
		{"0.005", "0.01"},
		{"100", "100"},
	}
	for _, c := range cases {
		got, err := cfg.Apply(dec(c.in))
		if err != nil {
			t.Fatalf("Apply(%s): unexpected error: %v", c.in, err)
		}
		if !got.Equal(dec(c.want)) {
			t.Errorf("Apply(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestRounding_FloorAndCeil(t *testing.T) {
	// GIVEN: Floor and ceil modes with step 0.01
	// WHEN: Rounding a fractional amount
	// THEN: Floor truncates down, ceil rounds up

	amount := dec("10.129")

	got, err := rounding(payroll.RoundFloor, "0.01").Apply(amount)
	if err != nil {
		t.Fatalf("floor: unexpected error: %v", err)
	}
	if !got.Equal(dec("10.12")) {
		t.Errorf("floor(10.129) = %s, want 10.12", got)
	}

	got, err = rounding(payroll.RoundCeil, "0.01").Apply(amount)
	if err != nil {
		t.Fatalf("ceil: unexpected error: %v", err)
	}
	if !got.Equal(dec("10.13")) {
		t.Errorf("ceil(10.129) = %s, want 10.13", got)
	}
}

func TestRounding_CoarseSteps(t *testing.T) {
	// GIVEN: Step sizes of 1 and 0.25
	// WHEN: Rounding the same amount
	// THEN: The result snaps to the configured granularity

	if got, _ := rounding(payroll.RoundNearest, "1").Apply(dec("10.6")); !got.Equal(dec("11")) {
		t.Errorf("step 1: got %s, want 11", got)
	}
	if got, _ := rounding(payroll.RoundNearest, "0.25").Apply(dec("10.6")); !got.Equal(dec("10.5")) {
		t.Errorf("step 0.25: got %s, want 10.5", got)
	}
	if got, _ := rounding(payroll.RoundCeil, "0.25").Apply(dec("10.6")); !got.Equal(dec("10.75")) {
		t.Errorf("ceil step 0.25: got %s, want 10.75", got)
	}
}

func TestRounding_Idempotent(t *testing.T) {
	// GIVEN: An already-rounded amount
	// WHEN: Applying the same config again
	// THEN: The amount is unchanged, for every mode

	modes := []payroll.RoundingMode{payroll.RoundNearest, payroll.RoundFloor, payroll.RoundCeil}
	amounts := []string{"10.13", "0", "-3.75", "12345.00", "0.01"}

	for _, mode := range modes {
		cfg := rounding(mode, "0.01")
		for _, a := range amounts {
			once, err := cfg.Apply(dec(a))
			if err != nil {
				t.Fatalf("%s Apply(%s): %v", mode, a, err)
			}
			twice, err := cfg.Apply(once)
			if err != nil {
				t.Fatalf("%s re-Apply(%s): %v", mode, once, err)
			}
			if !once.Equal(twice) {
				t.Errorf("%s not idempotent on %s: %s then %s", mode, a, once, twice)
			}
		}
	}
}

func TestRounding_NonPositiveStep_Rejected(t *testing.T) {
	// GIVEN: A zero or negative step
	// WHEN: Applying the config
	// THEN: ErrInvalidConfig, never a division by zero

	for _, step := range []string{"0", "-0.01"} {
		_, err := rounding(payroll.RoundNearest, step).Apply(dec("10"))
		if !errors.Is(err, payroll.ErrInvalidConfig) {
			t.Errorf("step %s: got %v, want ErrInvalidConfig", step, err)
		}
	}
}

func TestValidMode(t *testing.T) {
	for _, mode := range []string{"round", "floor", "ceil"} {
		if !payroll.ValidMode(mode) {
			t.Errorf("ValidMode(%q) = false, want true", mode)
		}
	}
	for _, mode := range []string{"", "nearest", "truncate", "ROUND"} {
		if payroll.ValidMode(mode) {
			t.Errorf("ValidMode(%q) = true, want false", mode)
		}
	}
}
