/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the database with self-contained demo datasets so the engine can
  be explored without a surrounding HR system. Each scenario wipes the
  database and loads master data (positions, org nodes, salary
  structures, employees with contracts) plus one ready-to-edit batch.

SCENARIOS:
  small-company:   12 employees across two departments, a monthly batch
                   with an equal-per-head transport allowance pool
  year-end-bonus:  same roster, a bonus batch with pro-rata pools and
                   floor rounding

SEE ALSO:
  - handlers.go: Route handlers delegating here
  - store/sqlite: The persistence being seeded
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO CATALOG
// =============================================================================

type scenario struct {
	ID          string
	Name        string
	Description string
	Load        func(ctx context.Context, h *Handler) error
}

var scenarios = []scenario{
	{
		ID:          "small-company",
		Name:        "Small Company Monthly Run",
		Description: "12 employees in two departments with a monthly batch and a transport allowance pool",
		Load:        loadSmallCompany,
	},
	{
		ID:          "year-end-bonus",
		Name:        "Year-End Bonus Pools",
		Description: "Bonus batch with pro-rata pools over the same roster, floor rounding",
		Load:        loadYearEndBonus,
	},
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the scenario catalog.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario reports which scenario was last loaded.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"id": h.currentScenario})
}

// LoadScenario wipes the database and loads the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for _, s := range scenarios {
		if s.ID != req.ID {
			continue
		}
		if err := h.Store.Reset(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
			return
		}
		if err := s.Load(r.Context(), h); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
			return
		}
		h.currentScenario = s.ID
		writeJSON(w, http.StatusOK, map[string]string{"loaded": s.ID})
		return
	}
	writeError(w, http.StatusNotFound, "Unknown scenario", nil)
}

// ResetDatabase wipes everything without loading a scenario.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SEED DATA
// =============================================================================

func seedMasterData(ctx context.Context, h *Handler) error {
	positions := []payroll.Position{
		{ID: "pos-eng", Title: "Engineer"},
		{ID: "pos-sales", Title: "Sales Representative"},
		{ID: "pos-mgr", Title: "Manager"},
	}
	for _, p := range positions {
		if err := h.Store.SavePosition(ctx, p); err != nil {
			return err
		}
	}

	nodes := []payroll.OrgNode{
		{ID: "org-product", Name: "Product"},
		{ID: "org-sales", Name: "Sales"},
	}
	for _, n := range nodes {
		if err := h.Store.SaveOrgNode(ctx, n); err != nil {
			return err
		}
	}

	structures := []payroll.SalaryStructure{
		{ID: "ss-standard", Name: "Standard Salary"},
		{ID: "ss-commission", Name: "Commission Salary"},
	}
	for _, s := range structures {
		if err := h.Store.SaveSalaryStructure(ctx, s); err != nil {
			return err
		}
	}

	type seed struct {
		id        string
		name      string
		position  payroll.PositionID
		term      payroll.EmploymentTerm
		org       payroll.OrgNodeID
		structure payroll.SalaryStructureID
		base      float64
		gross     float64
	}
	seeds := []seed{
		{"emp-01", "Ada Moraes", "pos-eng", payroll.TermPermanent, "org-product", "ss-standard", 5200, 6100},
		{"emp-02", "Bruno Silva", "pos-eng", payroll.TermPermanent, "org-product", "ss-standard", 4800, 5650},
		{"emp-03", "Carla Duarte", "pos-eng", payroll.TermContract, "org-product", "ss-standard", 4500, 5200},
		{"emp-04", "Diego Farias", "pos-eng", payroll.TermPermanent, "org-product", "ss-standard", 5600, 6550},
		{"emp-05", "Elena Costa", "pos-mgr", payroll.TermPermanent, "org-product", "ss-standard", 7800, 9100},
		{"emp-06", "Felipe Rocha", "pos-sales", payroll.TermPermanent, "org-sales", "ss-commission", 3200, 5400},
		{"emp-07", "Gabriela Lima", "pos-sales", payroll.TermPermanent, "org-sales", "ss-commission", 3200, 4900},
		{"emp-08", "Hugo Prado", "pos-sales", payroll.TermContract, "org-sales", "ss-commission", 3000, 4100},
		{"emp-09", "Iris Nunes", "pos-sales", payroll.TermTemporary, "org-sales", "ss-commission", 2800, 3500},
		{"emp-10", "Joao Alves", "pos-mgr", payroll.TermPermanent, "org-sales", "ss-standard", 7400, 8600},
		{"emp-11", "Karen Dias", "pos-eng", payroll.TermInternship, "org-product", "ss-standard", 1600, 1800},
		{"emp-12", "Luis Braga", "pos-eng", payroll.TermTemporary, "org-product", "ss-standard", 3900, 4500},
	}
	for _, s := range seeds {
		emp := payroll.Employee{
			ID:         payroll.EmployeeID(s.id),
			Name:       s.name,
			PositionID: s.position,
			Term:       s.term,
			OrgNodeID:  s.org,
			Contracts: []payroll.Contract{{
				ID:                s.id + "-c1",
				SalaryStructureID: s.structure,
				BaseSalary:        decimal.NewFromFloat(s.base),
				GrossSalary:       decimal.NewFromFloat(s.gross),
			}},
		}
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return err
		}
	}
	return nil
}

func loadSmallCompany(ctx context.Context, h *Handler) error {
	if err := seedMasterData(ctx, h); err != nil {
		return err
	}

	cfg := payroll.NewBatchConfiguration()
	cfg = cfg.SetCriteria(payroll.CategoryEmploymentTerms,
		[]string{string(payroll.TermPermanent), string(payroll.TermContract)})
	cfg = cfg.AddPool(payroll.Pool{
		ID:           "pool-transport",
		Name:         "Transport Allowance",
		Amount:       decimal.NewFromInt(2400),
		Strategy:     payroll.EqualPerHead,
		Eligibility:  payroll.InheritedEligibility(),
		SalaryRuleID: "rule-transport",
	})

	batch := payroll.PayrollBatch{
		ID:          "batch-demo-monthly",
		Name:        "Monthly Run " + time.Now().Format("2006-01"),
		Type:        payroll.BatchMonthly,
		PeriodStart: firstOfMonth(),
		PeriodEnd:   firstOfMonth().AddDate(0, 1, -1),
		Status:      payroll.StatusDraft,
		Config:      cfg,
	}
	return h.Store.SaveBatch(ctx, batch)
}

func loadYearEndBonus(ctx context.Context, h *Handler) error {
	if err := seedMasterData(ctx, h); err != nil {
		return err
	}

	cfg := payroll.NewBatchConfiguration()
	cfg = cfg.SetRounding(string(payroll.RoundFloor), decimal.NewFromFloat(0.01))
	cfg = cfg.AddPool(payroll.Pool{
		ID:           "pool-sales-bonus",
		Name:         "Sales Performance Bonus",
		Amount:       decimal.NewFromInt(15000),
		Strategy:     payroll.ProRataByGross,
		Eligibility:  payroll.ExplicitEligibility("ss-commission"),
		SalaryRuleID: "rule-bonus",
	})
	cfg = cfg.AddPool(payroll.Pool{
		ID:           "pool-company-bonus",
		Name:         "Company Bonus",
		Amount:       decimal.NewFromInt(30000),
		Strategy:     payroll.ProRataByBaseSalary,
		Eligibility:  payroll.InheritedEligibility(),
		SalaryRuleID: "rule-bonus",
	})

	year := time.Now().Year()
	batch := payroll.PayrollBatch{
		ID:          "batch-demo-bonus",
		Name:        fmt.Sprintf("Year-End Bonus %d", year),
		Type:        payroll.BatchBonus,
		PeriodStart: time.Date(year, time.December, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		Status:      payroll.StatusDraft,
		Config:      cfg,
	}
	return h.Store.SaveBatch(ctx, batch)
}

func firstOfMonth() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
