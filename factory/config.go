/*
Package factory converts the persisted filters blob to and from
BatchConfiguration values.

PURPOSE:
  The committed `filters` blob on a batch is the contract between this
  engine and the remote persistence API:

    {
      "positionIds":         ["P1", ...],
      "employmentTerms":     ["permanent", ...],
      "organizationNodeIds": ["N1", ...],
      "salaryStructureIds":  ["S1", ...],
      "rounding":            {"mode": "round", "step": "0.01"},
      "pools":               [{...}, ...]
    }

  load -> edit -> save -> reload must reproduce equivalent values, and
  re-serializing a decoded blob yields byte-for-shape identical output.

DETERMINISM:
  Id arrays are emitted sorted and pool objects are emitted as maps
  (Go's encoder sorts map keys), so encoding is stable across runs.

COERCION:
  Parsing applies the same clamping policy as the command surface:
  negative amounts become 0, steps below 0.01 become 0.01, unknown
  strategies become equal_per_head. Unknown pool fields are preserved
  verbatim in Pool.Extra.

SEE ALSO:
  - payroll/config.go: The command surface producing these values
  - store/sqlite: Persists the encoded blob in the batches table
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the wire shape of the persisted filters blob.
type ConfigJSON struct {
	PositionIDs         []string         `json:"positionIds"`
	EmploymentTerms     []string         `json:"employmentTerms"`
	OrganizationNodeIDs []string         `json:"organizationNodeIds"`
	SalaryStructureIDs  []string         `json:"salaryStructureIds"`
	Rounding            RoundingJSON     `json:"rounding"`
	Pools               []map[string]any `json:"pools"`
}

// RoundingJSON is the wire shape of the rounding policy.
type RoundingJSON struct {
	Mode string `json:"mode"`
	Step string `json:"step"`
}

// Known pool keys. Everything else rides along in Pool.Extra.
const (
	keyID         = "id"
	keyName       = "name"
	keyAmount     = "amount"
	keyStrategy   = "strategy"
	keyRuleID     = "salaryRuleId"
	keyInherit    = "inheritBatchFilters"
	keyStructures = "salaryStructureIds"
)

// =============================================================================
// DECODE
// =============================================================================

// ParseConfig decodes a persisted filters blob into a BatchConfiguration,
// applying the clamping policy for out-of-range values.
func ParseConfig(blob string) (payroll.BatchConfiguration, error) {
	var raw ConfigJSON
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return payroll.BatchConfiguration{}, fmt.Errorf("failed to parse filters blob: %w", err)
	}

	cfg := payroll.NewBatchConfiguration()
	cfg = cfg.SetCriteria(payroll.CategoryPositions, raw.PositionIDs)
	cfg = cfg.SetCriteria(payroll.CategoryEmploymentTerms, raw.EmploymentTerms)
	cfg = cfg.SetCriteria(payroll.CategoryOrgNodes, raw.OrganizationNodeIDs)
	cfg = cfg.SetCriteria(payroll.CategoryStructures, raw.SalaryStructureIDs)
	cfg.FiltersApplied = len(raw.PositionIDs)+len(raw.EmploymentTerms)+
		len(raw.OrganizationNodeIDs)+len(raw.SalaryStructureIDs) > 0

	step := clampStep(payroll.MustParseDecimal(raw.Rounding.Step))
	cfg = cfg.SetRounding(raw.Rounding.Mode, step)

	// Pools are stored first-to-last; rebuild by appending, not AddPool
	// (which prepends and would reverse the persisted order).
	pools := make([]payroll.Pool, 0, len(raw.Pools))
	for _, rawPool := range raw.Pools {
		pools = append(pools, decodePool(rawPool))
	}
	cfg.Pools = pools
	return cfg, nil
}

func decodePool(raw map[string]any) payroll.Pool {
	p := payroll.Pool{
		Strategy:    payroll.EqualPerHead,
		Eligibility: payroll.ExplicitEligibility(),
	}
	for k, v := range raw {
		switch k {
		case keyID:
			p.ID = asString(v)
		case keyName:
			p.Name = asString(v)
		case keyAmount:
			amt := asDecimal(v)
			if amt.IsNegative() {
				amt = decimal.Zero
			}
			p.Amount = amt
		case keyStrategy:
			if s := asString(v); payroll.ValidStrategy(s) {
				p.Strategy = payroll.Strategy(s)
			}
		case keyRuleID:
			p.SalaryRuleID = payroll.SalaryRuleID(asString(v))
		case keyInherit:
			b, _ := v.(bool)
			p.Eligibility.Inherit = b
		case keyStructures:
			if list, ok := v.([]any); ok {
				for _, item := range list {
					p.Eligibility.Structures[payroll.SalaryStructureID(asString(item))] = struct{}{}
				}
			}
		default:
			if p.Extra == nil {
				p.Extra = map[string]any{}
			}
			p.Extra[k] = v
		}
	}
	return p
}

// =============================================================================
// ENCODE
// =============================================================================

// EncodeConfig serializes a configuration to the persisted blob shape.
func EncodeConfig(cfg payroll.BatchConfiguration) (string, error) {
	raw := ConfigJSON{
		PositionIDs:         sortedKeys(cfg.Filters.PositionIDs),
		EmploymentTerms:     sortedKeys(cfg.Filters.EmploymentTerms),
		OrganizationNodeIDs: sortedKeys(cfg.Filters.OrgNodeIDs),
		SalaryStructureIDs:  sortedKeys(cfg.Filters.SalaryStructureIDs),
		Rounding: RoundingJSON{
			Mode: string(cfg.Rounding.Mode),
			Step: cfg.Rounding.Step.String(),
		},
		Pools: make([]map[string]any, 0, len(cfg.Pools)),
	}
	for _, p := range cfg.Pools {
		raw.Pools = append(raw.Pools, encodePool(p))
	}

	out, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("failed to encode filters blob: %w", err)
	}
	return string(out), nil
}

func encodePool(p payroll.Pool) map[string]any {
	out := map[string]any{
		keyAmount:     p.Amount.String(),
		keyStrategy:   string(p.Strategy),
		keyInherit:    p.Eligibility.Inherit,
		keyStructures: sortedKeys(p.Eligibility.Structures),
	}
	if p.ID != "" {
		out[keyID] = p.ID
	}
	if p.Name != "" {
		out[keyName] = p.Name
	}
	if p.SalaryRuleID != "" {
		out[keyRuleID] = string(p.SalaryRuleID)
	}
	for k, v := range p.Extra {
		out[k] = v
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

func sortedKeys[K ~string](set map[K]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

func clampStep(step decimal.Decimal) decimal.Decimal {
	if step.LessThan(payroll.DefaultStep) {
		return payroll.DefaultStep
	}
	return step
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case string:
		return payroll.MustParseDecimal(x)
	case float64:
		return decimal.NewFromFloat(x)
	case json.Number:
		return payroll.MustParseDecimal(x.String())
	}
	return decimal.Zero
}
