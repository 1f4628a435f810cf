/*
rounding.go - Monetary rounding policy

PURPOSE:
  Applies a mode + step to a monetary amount. Every computed share in the
  engine passes through this policy so that a batch has ONE consistent
  rounding behavior, configured alongside its filters.

ALGORITHM:
  For step s: n = amount / s, then
    round -> nearest integer n, ties away from zero
    floor -> truncate toward negative infinity
    ceil  -> truncate toward positive infinity
  result = n' * s

  A step of 0.01 rounds to cents; 1 rounds to whole units; 0.25 to
  quarters. Idempotent: applying the same config twice is a no-op.
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// ROUNDING CONFIG
// =============================================================================

// RoundingMode selects how fractional steps are resolved.
type RoundingMode string

const (
	RoundNearest RoundingMode = "round" // ties away from zero
	RoundFloor   RoundingMode = "floor"
	RoundCeil    RoundingMode = "ceil"
)

// DefaultStep is the rounding granularity used when none is configured.
var DefaultStep = decimal.NewFromFloat(0.01)

// RoundingConfig is a mode plus a step. Step must be > 0.
type RoundingConfig struct {
	Mode RoundingMode
	Step decimal.Decimal
}

// DefaultRounding returns the engine default: round to the nearest cent.
func DefaultRounding() RoundingConfig {
	return RoundingConfig{Mode: RoundNearest, Step: DefaultStep}
}

// Apply rounds amount according to the config. Pure and total apart from
// the step validation: a non-positive step yields ErrInvalidConfig.
func (c RoundingConfig) Apply(amount decimal.Decimal) (decimal.Decimal, error) {
	if c.Step.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidConfig
	}

	n := amount.Div(c.Step)
	switch c.Mode {
	case RoundFloor:
		n = n.Floor()
	case RoundCeil:
		n = n.Ceil()
	default:
		// decimal.Round rounds half away from zero, which is exactly the
		// tie-breaking rule of RoundNearest.
		n = n.Round(0)
	}
	return n.Mul(c.Step), nil
}

// ValidMode reports whether s names a known rounding mode.
func ValidMode(s string) bool {
	switch RoundingMode(s) {
	case RoundNearest, RoundFloor, RoundCeil:
		return true
	}
	return false
}
