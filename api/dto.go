/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

NOTE ON CONFIG:
  Batch configuration crosses the API in the SAME shape as the persisted
  filters blob (factory.ConfigJSON), so the UI edits exactly what gets
  committed and round-trips are trivially shape-preserving.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: ConfigJSON definition
*/
package api

import (
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// BATCH TYPES
// =============================================================================

// BatchDTO represents a payroll batch in API responses.
type BatchDTO struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	BatchType      string             `json:"batch_type"`
	PeriodStart    string             `json:"period_start"`
	PeriodEnd      string             `json:"period_end"`
	Status         string             `json:"status"`
	Locked         bool               `json:"locked"`
	Config         factory.ConfigJSON `json:"config"`
	Summary        SummaryDTO         `json:"summary"`
	AllowedActions []string           `json:"allowed_actions"`
	CreatedAt      string             `json:"created_at,omitempty"`
	UpdatedAt      string             `json:"updated_at,omitempty"`
}

// SummaryDTO carries the read-only totals from the remote computation.
type SummaryDTO struct {
	EmployeeCount int    `json:"employee_count"`
	TotalGross    string `json:"total_gross"`
	TotalNet      string `json:"total_net"`
	TotalPools    string `json:"total_pools"`
}

// CreateBatchRequest is the request to create a batch.
type CreateBatchRequest struct {
	Name        string `json:"name"`
	BatchType   string `json:"batch_type"`
	PeriodStart string `json:"period_start"` // YYYY-MM-DD
	PeriodEnd   string `json:"period_end"`   // YYYY-MM-DD
}

// =============================================================================
// CONFIG COMMAND TYPES
// =============================================================================

// SetCriteriaRequest replaces one filter category's id set.
type SetCriteriaRequest struct {
	IDs []string `json:"ids"`
}

// AddPoolRequest creates a supplemental pool.
type AddPoolRequest struct {
	Name                string   `json:"name"`
	Amount              string   `json:"amount"`
	Strategy            string   `json:"strategy"`
	SalaryRuleID        string   `json:"salary_rule_id"`
	InheritBatchFilters bool     `json:"inherit_batch_filters"`
	SalaryStructureIDs  []string `json:"salary_structure_ids"`
}

// UpdatePoolRequest sets one field of a pool.
type UpdatePoolRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// SetRoundingRequest replaces the rounding policy.
type SetRoundingRequest struct {
	Mode string `json:"mode"`
	Step string `json:"step"`
}

// =============================================================================
// ACTION TYPES
// =============================================================================

// DispatchActionRequest carries the optional actor inputs of an action.
type DispatchActionRequest struct {
	ActorID    string `json:"actor_id,omitempty"`
	JournalRef string `json:"journal_ref,omitempty"`
}

// ActionResultDTO reports a completed lifecycle action.
type ActionResultDTO struct {
	GeneratedCount int    `json:"generated_count"`
	Message        string `json:"message"`
	Status         string `json:"status"`
}

// =============================================================================
// PREVIEW TYPES
// =============================================================================

// PreviewDTO shows what the current configuration would do, without
// dispatching anything.
type PreviewDTO struct {
	EmployeeCount int              `json:"employee_count"`
	Employees     []EmployeeDTO    `json:"employees"`
	Pools         []PoolPreviewDTO `json:"pools"`
}

// PoolPreviewDTO is the computed distribution of one pool.
type PoolPreviewDTO struct {
	Name          string     `json:"name"`
	Amount        string     `json:"amount"`
	Strategy      string     `json:"strategy"`
	EligibleCount int        `json:"eligible_count"`
	Total         string     `json:"total"`
	Remainder     string     `json:"remainder"`
	Degenerate    bool       `json:"degenerate"`
	Shares        []ShareDTO `json:"shares"`
}

// ShareDTO is one employee's computed share of a pool.
type ShareDTO struct {
	EmployeeID string `json:"employee_id"`
	Amount     string `json:"amount"`
}

// =============================================================================
// DIRECTORY TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	PositionID string        `json:"position_id"`
	Term       string        `json:"term"`
	OrgNodeID  string        `json:"org_node_id"`
	Contracts  []ContractDTO `json:"contracts"`
}

// ContractDTO represents an employee contract.
type ContractDTO struct {
	ID                string `json:"id"`
	SalaryStructureID string `json:"salary_structure_id"`
	BaseSalary        string `json:"base_salary"`
	GrossSalary       string `json:"gross_salary"`
}

// PositionDTO represents a job position.
type PositionDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// OrgNodeDTO represents an organization node.
type OrgNodeDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SalaryStructureDTO represents a salary structure.
type SalaryStructureDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		PositionID: string(e.PositionID),
		Term:       string(e.Term),
		OrgNodeID:  string(e.OrgNodeID),
		Contracts:  make([]ContractDTO, len(e.Contracts)),
	}
	for i, c := range e.Contracts {
		dto.Contracts[i] = ContractDTO{
			ID:                c.ID,
			SalaryStructureID: string(c.SalaryStructureID),
			BaseSalary:        c.BaseSalary.String(),
			GrossSalary:       c.GrossSalary.String(),
		}
	}
	return dto
}
