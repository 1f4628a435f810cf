/*
handlers.go - HTTP API handlers for the payroll batch engine

PURPOSE:
  Exposes the batch configuration and lifecycle engine via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Batches:
    GET    /api/batches                      List all batches
    POST   /api/batches                      Create batch (Draft, empty config)
    GET    /api/batches/{id}                 Get batch details
    GET    /api/batches/{id}/preview         Matching roster + pool distributions
    POST   /api/batches/{id}/actions/{name}  Dispatch lifecycle action
    POST   /api/batches/{id}/lock            Lock the batch
    POST   /api/batches/{id}/unlock          Unlock the batch

  Config commands:
    PUT    /api/batches/{id}/criteria/{category}
    PUT    /api/batches/{id}/rounding
    POST   /api/batches/{id}/pools
    DELETE /api/batches/{id}/pools/{index}
    PATCH  /api/batches/{id}/pools/{index}
    PUT    /api/batches/{id}/pools/{index}/structures

  Directories:
    GET    /api/employees | /api/positions | /api/org-nodes | /api/salary-structures

  Scenarios:
    GET    /api/scenarios, POST /api/scenarios/load, POST /api/scenarios/reset

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input
  - 404: Batch not found
  - 409: Locked batch, duplicate in-flight action
  - 422: Lifecycle guard rejected the action
  - 502: Remote action endpoint failed
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Runner *payroll.ActionRunner

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler. The store doubles as batch store and
// directory source; remote is the action service (HTTP client or local
// simulator).
func NewHandler(store *sqlite.Store, remote payroll.BatchActions) *Handler {
	return &Handler{
		Store:  store,
		Runner: payroll.NewActionRunner(store, store, remote),
	}
}

// =============================================================================
// BATCH HANDLERS
// =============================================================================

// ListBatches returns all batches.
func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.Store.ListBatches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list batches", err)
		return
	}

	dtos := make([]BatchDTO, len(batches))
	for i, b := range batches {
		dtos[i] = toBatchDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBatch creates a Draft batch with an empty configuration.
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Batch name is required", nil)
		return
	}

	start, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_start (want YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_end (want YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "Period end before start", nil)
		return
	}

	batchType := payroll.BatchType(req.BatchType)
	switch batchType {
	case payroll.BatchMonthly, payroll.BatchBonus, payroll.BatchOffCycle,
		payroll.BatchTermination, payroll.BatchCustom:
	case "":
		batchType = payroll.BatchMonthly
	default:
		writeError(w, http.StatusBadRequest, "Unknown batch_type", nil)
		return
	}

	batch := payroll.PayrollBatch{
		ID:          payroll.BatchID(uuid.NewString()),
		Name:        req.Name,
		Type:        batchType,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      payroll.StatusDraft,
		Config:      payroll.NewBatchConfiguration(),
	}
	if err := h.Store.SaveBatch(r.Context(), batch); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save batch", err)
		return
	}

	saved, err := h.Store.GetBatch(r.Context(), batch.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload batch", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBatchDTO(saved))
}

// GetBatch returns a single batch.
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.loadBatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toBatchDTO(batch))
}

// LockBatch marks the batch locked; every configuration and lifecycle
// operation is rejected until unlocked.
func (h *Handler) LockBatch(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, true)
}

// UnlockBatch releases the lock.
func (h *Handler) UnlockBatch(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, false)
}

func (h *Handler) setLocked(w http.ResponseWriter, r *http.Request, locked bool) {
	id := payroll.BatchID(chi.URLParam(r, "id"))
	if err := h.Store.SetLocked(r.Context(), id, locked); err != nil {
		writeDomainError(w, "Failed to update lock", err)
		return
	}
	batch, err := h.Store.GetBatch(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to reload batch", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchDTO(batch))
}

// =============================================================================
// CONFIG COMMAND HANDLERS
// =============================================================================

// SetCriteria replaces one filter category's id set.
// PUT /api/batches/{id}/criteria/{category}
func (h *Handler) SetCriteria(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if !payroll.ValidCategory(category) {
		writeError(w, http.StatusBadRequest, "Unknown criteria category", nil)
		return
	}

	var req SetCriteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.applyConfigCommand(w, r, func(cfg payroll.BatchConfiguration) payroll.BatchConfiguration {
		return cfg.SetCriteria(payroll.CriteriaCategory(category), req.IDs)
	})
}

// AddPool prepends a supplemental pool.
// POST /api/batches/{id}/pools
func (h *Handler) AddPool(w http.ResponseWriter, r *http.Request) {
	var req AddPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	eligibility := payroll.ExplicitEligibility()
	for _, id := range req.SalaryStructureIDs {
		eligibility.Structures[payroll.SalaryStructureID(id)] = struct{}{}
	}
	eligibility.Inherit = req.InheritBatchFilters

	pool := payroll.Pool{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Amount:       payroll.MustParseDecimal(req.Amount),
		Strategy:     payroll.Strategy(req.Strategy),
		Eligibility:  eligibility,
		SalaryRuleID: payroll.SalaryRuleID(req.SalaryRuleID),
	}

	h.applyConfigCommand(w, r, func(cfg payroll.BatchConfiguration) payroll.BatchConfiguration {
		return cfg.AddPool(pool)
	})
}

// RemovePool deletes the pool at index.
// DELETE /api/batches/{id}/pools/{index}
func (h *Handler) RemovePool(w http.ResponseWriter, r *http.Request) {
	index, ok := poolIndex(w, r)
	if !ok {
		return
	}
	h.applyConfigCommand(w, r, func(cfg payroll.BatchConfiguration) payroll.BatchConfiguration {
		return cfg.RemovePool(index)
	})
}

// UpdatePool sets one field of the pool at index, with field coercion.
// PATCH /api/batches/{id}/pools/{index}
func (h *Handler) UpdatePool(w http.ResponseWriter, r *http.Request) {
	index, ok := poolIndex(w, r)
	if !ok {
		return
	}

	var req UpdatePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Field == "" {
		writeError(w, http.StatusBadRequest, "Field is required", nil)
		return
	}

	h.applyConfigCommand(w, r, func(cfg payroll.BatchConfiguration) payroll.BatchConfiguration {
		return cfg.UpdatePool(index, req.Field, req.Value)
	})
}

// SetPoolStructures replaces the explicit structure list of a pool.
// PUT /api/batches/{id}/pools/{index}/structures
func (h *Handler) SetPoolStructures(w http.ResponseWriter, r *http.Request) {
	index, ok := poolIndex(w, r)
	if !ok {
		return
	}

	var req SetCriteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	ids := make([]payroll.SalaryStructureID, len(req.IDs))
	for i, id := range req.IDs {
		ids[i] = payroll.SalaryStructureID(id)
	}

	h.applyConfigCommand(w, r, func(cfg payroll.BatchConfiguration) payroll.BatchConfiguration {
		return cfg.SetPoolStructures(index, ids)
	})
}

// SetRounding replaces the rounding policy.
// PUT /api/batches/{id}/rounding
func (h *Handler) SetRounding(w http.ResponseWriter, r *http.Request) {
	var req SetRoundingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.applyConfigCommand(w, r, func(cfg payroll.BatchConfiguration) payroll.BatchConfiguration {
		return cfg.SetRounding(req.Mode, payroll.MustParseDecimal(req.Step))
	})
}

// applyConfigCommand loads the batch, applies a pure command to its
// configuration, refreshes the matching-count cache, and commits the
// result. Locked batches are rejected by the store.
func (h *Handler) applyConfigCommand(w http.ResponseWriter, r *http.Request, command func(payroll.BatchConfiguration) payroll.BatchConfiguration) {
	batch, ok := h.loadBatch(w, r)
	if !ok {
		return
	}
	if batch.Locked {
		writeDomainError(w, "Batch is locked", payroll.ErrBatchLocked)
		return
	}

	cfg := command(batch.Config)

	roster, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}
	cfg = cfg.WithEmployeeCount(cfg.MatchingCount(roster))

	if err := h.Store.UpdateConfig(r.Context(), batch.ID, cfg); err != nil {
		writeDomainError(w, "Failed to commit configuration", err)
		return
	}

	saved, err := h.Store.GetBatch(r.Context(), batch.ID)
	if err != nil {
		writeDomainError(w, "Failed to reload batch", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchDTO(saved))
}

// =============================================================================
// PREVIEW HANDLER
// =============================================================================

// Preview computes the matching roster and every pool's distribution for
// the current configuration. Pure: dispatches nothing, writes nothing.
// GET /api/batches/{id}/preview
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.loadBatch(w, r)
	if !ok {
		return
	}

	roster, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}

	matched := payroll.MatchEmployees(roster, batch.Config.Filters)
	preview := PreviewDTO{
		EmployeeCount: len(matched),
		Employees:     make([]EmployeeDTO, len(matched)),
		Pools:         make([]PoolPreviewDTO, 0, len(batch.Config.Pools)),
	}
	for i, e := range matched {
		preview.Employees[i] = toEmployeeDTO(e)
	}

	for _, pool := range batch.Config.Pools {
		eligible := payroll.ResolveEligibility(pool, batch.Config.Filters, roster)
		alloc, err := payroll.Distribute(pool, eligible, nil, nil, batch.Config.Rounding)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Distribution failed", err)
			return
		}

		poolPreview := PoolPreviewDTO{
			Name:          pool.Name,
			Amount:        pool.Amount.String(),
			Strategy:      string(pool.Strategy),
			EligibleCount: len(eligible),
			Total:         alloc.Total.String(),
			Remainder:     alloc.Remainder.String(),
			Degenerate:    alloc.Degenerate,
			Shares:        make([]ShareDTO, 0, len(alloc.Order)),
		}
		for _, id := range alloc.Order {
			poolPreview.Shares = append(poolPreview.Shares, ShareDTO{
				EmployeeID: string(id),
				Amount:     alloc.Shares[id].String(),
			})
		}
		preview.Pools = append(preview.Pools, poolPreview)
	}

	writeJSON(w, http.StatusOK, preview)
}

// =============================================================================
// ACTION HANDLER
// =============================================================================

// DispatchAction runs a guarded lifecycle action through the runner.
// POST /api/batches/{id}/actions/{name}
func (h *Handler) DispatchAction(w http.ResponseWriter, r *http.Request) {
	id := payroll.BatchID(chi.URLParam(r, "id"))
	name := chi.URLParam(r, "name")
	if !payroll.ValidAction(name) {
		writeError(w, http.StatusBadRequest, "Unknown action", nil)
		return
	}

	var req DispatchActionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	result, err := h.Runner.Run(r.Context(), payroll.ActionRequest{
		BatchID:    id,
		Action:     payroll.Action(name),
		ActorID:    req.ActorID,
		JournalRef: req.JournalRef,
	})
	if err != nil {
		writeDomainError(w, "Action failed", err)
		return
	}

	batch, err := h.Store.GetBatch(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to reload batch", err)
		return
	}

	writeJSON(w, http.StatusOK, ActionResultDTO{
		GeneratedCount: result.GeneratedCount,
		Message:        result.Message,
		Status:         string(batch.Status),
	})
}

// =============================================================================
// DIRECTORY HANDLERS
// =============================================================================

// ListEmployees returns the roster snapshot.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPositions returns all positions.
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Store.ListPositions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list positions", err)
		return
	}
	dtos := make([]PositionDTO, len(positions))
	for i, p := range positions {
		dtos[i] = PositionDTO{ID: string(p.ID), Title: p.Title}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListOrgNodes returns all organization nodes.
func (h *Handler) ListOrgNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.Store.ListOrgNodes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list org nodes", err)
		return
	}
	dtos := make([]OrgNodeDTO, len(nodes))
	for i, n := range nodes {
		dtos[i] = OrgNodeDTO{ID: string(n.ID), Name: n.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListSalaryStructures returns all salary structures.
func (h *Handler) ListSalaryStructures(w http.ResponseWriter, r *http.Request) {
	structures, err := h.Store.ListSalaryStructures(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list salary structures", err)
		return
	}
	dtos := make([]SalaryStructureDTO, len(structures))
	for i, s := range structures {
		dtos[i] = SalaryStructureDTO{ID: string(s.ID), Name: s.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadBatch(w http.ResponseWriter, r *http.Request) (payroll.PayrollBatch, bool) {
	id := payroll.BatchID(chi.URLParam(r, "id"))
	batch, err := h.Store.GetBatch(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load batch", err)
		return payroll.PayrollBatch{}, false
	}
	return batch, true
}

func poolIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "Invalid pool index", err)
		return 0, false
	}
	return index, true
}

func toBatchDTO(b payroll.PayrollBatch) BatchDTO {
	config, _ := configJSON(b.Config)

	var allowed []string
	if !b.Locked {
		for _, action := range []payroll.Action{
			payroll.ActionGenerate, payroll.ActionVerify, payroll.ActionPay,
			payroll.ActionPost, payroll.ActionRollback,
		} {
			if payroll.CanTransition(b.Status, action) {
				allowed = append(allowed, string(action))
			}
		}
	}

	return BatchDTO{
		ID:          string(b.ID),
		Name:        b.Name,
		BatchType:   string(b.Type),
		PeriodStart: b.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   b.PeriodEnd.Format("2006-01-02"),
		Status:      string(b.Status),
		Locked:      b.Locked,
		Config:      config,
		Summary: SummaryDTO{
			EmployeeCount: b.Summary.EmployeeCount,
			TotalGross:    b.Summary.TotalGross.String(),
			TotalNet:      b.Summary.TotalNet.String(),
			TotalPools:    b.Summary.TotalPools.String(),
		},
		AllowedActions: allowed,
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      b.UpdatedAt.Format(time.RFC3339),
	}
}

// configJSON re-encodes a configuration into the blob shape for responses.
func configJSON(cfg payroll.BatchConfiguration) (factory.ConfigJSON, error) {
	blob, err := factory.EncodeConfig(cfg)
	if err != nil {
		return factory.ConfigJSON{}, err
	}
	var out factory.ConfigJSON
	if err := json.Unmarshal([]byte(blob), &out); err != nil {
		return factory.ConfigJSON{}, err
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Batch not found", err)
	case payroll.IsConflict(err):
		writeError(w, http.StatusConflict, "Batch action already in progress", err)
	case errors.Is(err, payroll.ErrBatchLocked):
		writeError(w, http.StatusConflict, "Batch is locked", err)
	case errors.Is(err, payroll.ErrInvalidTransition), errors.Is(err, payroll.ErrNoEligibleEmployees):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	case errors.Is(err, payroll.ErrRemoteActionFailed):
		writeError(w, http.StatusBadGateway, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
