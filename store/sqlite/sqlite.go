/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements batch persistence (payroll.BatchStore) and all four master
  data directories using SQLite. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  batches:            Batch records; configuration travels as the
                      committed filters blob (config_json)
  employees:          Roster snapshot entries
  employee_contracts: Contract -> salary structure links with salaries
  positions:          Job positions
  org_nodes:          Organization tree nodes
  salary_structures:  Salary structure catalog

BLOB CONTRACT:
  config_json holds exactly the persisted filters shape produced by
  factory.EncodeConfig. The store never edits it; load -> edit -> save ->
  reload reproduces equivalent values.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block and crash recovery improves.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - payroll/store.go: BatchStore interface definition
  - payroll/store/memory.go: In-memory implementation for testing
  - factory/config.go: Filters blob codec
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.BatchStore and the directory interfaces.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Payroll batches; configuration as the committed filters blob
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		batch_type TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		status TEXT NOT NULL,
		locked INTEGER NOT NULL DEFAULT 0,
		config_json TEXT NOT NULL,
		config_employee_count INTEGER NOT NULL DEFAULT 0,
		employee_count INTEGER NOT NULL DEFAULT 0,
		total_gross TEXT NOT NULL DEFAULT '0',
		total_net TEXT NOT NULL DEFAULT '0',
		total_pools TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_batches_status ON batches(status);
	CREATE INDEX IF NOT EXISTS idx_batches_period ON batches(period_start, period_end);

	-- Employees (roster snapshot)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position_id TEXT NOT NULL,
		term TEXT NOT NULL,
		org_node_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_position ON employees(position_id);
	CREATE INDEX IF NOT EXISTS idx_employees_org_node ON employees(org_node_id);

	-- Contracts link employees to salary structures
	CREATE TABLE IF NOT EXISTS employee_contracts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		salary_structure_id TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		gross_salary TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_employee ON employee_contracts(employee_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_structure ON employee_contracts(salary_structure_id);

	-- Master data directories
	CREATE TABLE IF NOT EXISTS positions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS org_nodes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS salary_structures (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BATCH STORE
// =============================================================================

var _ payroll.BatchStore = (*Store)(nil)

// SaveBatch inserts or fully replaces a batch record.
func (s *Store) SaveBatch(ctx context.Context, b payroll.PayrollBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := factory.EncodeConfig(b.Config)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO batches
			(id, name, batch_type, period_start, period_end, status, locked,
			 config_json, config_employee_count, employee_count,
			 total_gross, total_net, total_pools, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			batch_type = excluded.batch_type,
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			status = excluded.status,
			locked = excluded.locked,
			config_json = excluded.config_json,
			config_employee_count = excluded.config_employee_count,
			employee_count = excluded.employee_count,
			total_gross = excluded.total_gross,
			total_net = excluded.total_net,
			total_pools = excluded.total_pools,
			updated_at = excluded.updated_at`,
		string(b.ID), b.Name, string(b.Type),
		b.PeriodStart.UTC().Format(time.RFC3339), b.PeriodEnd.UTC().Format(time.RFC3339),
		string(b.Status), boolToInt(b.Locked), blob,
		b.Config.EmployeeCount, b.Summary.EmployeeCount, b.Summary.TotalGross.String(),
		b.Summary.TotalNet.String(), b.Summary.TotalPools.String(),
		createdAt.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	return err
}

// GetBatch returns the batch or payroll.ErrBatchNotFound.
func (s *Store) GetBatch(ctx context.Context, id payroll.BatchID) (payroll.PayrollBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, batch_type, period_start, period_end, status, locked,
		       config_json, config_employee_count, employee_count,
		       total_gross, total_net, total_pools, created_at, updated_at
		FROM batches WHERE id = ?`, string(id))
	return scanBatch(row)
}

// ListBatches returns all batches ordered by creation time.
func (s *Store) ListBatches(ctx context.Context) ([]payroll.PayrollBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, batch_type, period_start, period_end, status, locked,
		       config_json, config_employee_count, employee_count,
		       total_gross, total_net, total_pools, created_at, updated_at
		FROM batches ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []payroll.PayrollBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// UpdateStatus records the status the remote system reported.
func (s *Store) UpdateStatus(ctx context.Context, id payroll.BatchID, status payroll.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE batches SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), string(id))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateConfig commits an edited configuration. Locked batches reject it.
func (s *Store) UpdateConfig(ctx context.Context, id payroll.BatchID, cfg payroll.BatchConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var locked int
	err := s.db.QueryRowContext(ctx,
		`SELECT locked FROM batches WHERE id = ?`, string(id)).Scan(&locked)
	if err == sql.ErrNoRows {
		return payroll.ErrBatchNotFound
	}
	if err != nil {
		return err
	}
	if locked != 0 {
		return payroll.ErrBatchLocked
	}

	blob, err := factory.EncodeConfig(cfg)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE batches SET config_json = ?, config_employee_count = ?, updated_at = ? WHERE id = ?`,
		blob, cfg.EmployeeCount, time.Now().UTC().Format(time.RFC3339), string(id))
	return err
}

// SetLocked flips the batch lock.
func (s *Store) SetLocked(ctx context.Context, id payroll.BatchID, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE batches SET locked = ?, updated_at = ? WHERE id = ?`,
		boolToInt(locked), time.Now().UTC().Format(time.RFC3339), string(id))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// scanner covers sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (payroll.PayrollBatch, error) {
	var (
		b                       payroll.PayrollBatch
		id, batchType, status   string
		periodStart, periodEnd  string
		createdAt, updatedAt    string
		locked, configCount     int
		summaryCount            int
		blob, gross, net, pools string
	)
	err := row.Scan(&id, &b.Name, &batchType, &periodStart, &periodEnd, &status,
		&locked, &blob, &configCount, &summaryCount, &gross, &net, &pools, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return payroll.PayrollBatch{}, payroll.ErrBatchNotFound
	}
	if err != nil {
		return payroll.PayrollBatch{}, err
	}

	cfg, err := factory.ParseConfig(blob)
	if err != nil {
		return payroll.PayrollBatch{}, fmt.Errorf("batch %s has a corrupt filters blob: %w", id, err)
	}

	b.ID = payroll.BatchID(id)
	b.Type = payroll.BatchType(batchType)
	b.Status = payroll.Status(status)
	b.Locked = locked != 0
	cfg.EmployeeCount = configCount
	b.Config = cfg
	b.Summary = payroll.BatchSummary{
		EmployeeCount: summaryCount,
		TotalGross:    payroll.MustParseDecimal(gross),
		TotalNet:      payroll.MustParseDecimal(net),
		TotalPools:    payroll.MustParseDecimal(pools),
	}
	b.PeriodStart, _ = time.Parse(time.RFC3339, periodStart)
	b.PeriodEnd, _ = time.Parse(time.RFC3339, periodEnd)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return b, nil
}

// =============================================================================
// DIRECTORIES
// =============================================================================

var (
	_ payroll.EmployeeDirectory        = (*Store)(nil)
	_ payroll.OrganizationDirectory    = (*Store)(nil)
	_ payroll.PositionDirectory        = (*Store)(nil)
	_ payroll.SalaryStructureDirectory = (*Store)(nil)
)

// SaveEmployee upserts an employee and replaces its contracts.
func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO employees (id, name, position_id, term, org_node_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			position_id = excluded.position_id,
			term = excluded.term,
			org_node_id = excluded.org_node_id`,
		string(e.ID), e.Name, string(e.PositionID), string(e.Term), string(e.OrgNodeID))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM employee_contracts WHERE employee_id = ?`, string(e.ID)); err != nil {
		return err
	}
	for _, c := range e.Contracts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO employee_contracts
				(id, employee_id, salary_structure_id, base_salary, gross_salary)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, string(e.ID), string(c.SalaryStructureID),
			c.BaseSalary.String(), c.GrossSalary.String())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListEmployees returns the roster snapshot with contracts attached.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, position_id, term, org_node_id FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payroll.Employee
	index := map[payroll.EmployeeID]int{}
	for rows.Next() {
		var e payroll.Employee
		var id, position, term, orgNode string
		if err := rows.Scan(&id, &e.Name, &position, &term, &orgNode); err != nil {
			return nil, err
		}
		e.ID = payroll.EmployeeID(id)
		e.PositionID = payroll.PositionID(position)
		e.Term = payroll.EmploymentTerm(term)
		e.OrgNodeID = payroll.OrgNodeID(orgNode)
		index[e.ID] = len(employees)
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	contracts, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, salary_structure_id, base_salary, gross_salary
		FROM employee_contracts ORDER BY employee_id, id`)
	if err != nil {
		return nil, err
	}
	defer contracts.Close()

	for contracts.Next() {
		var c payroll.Contract
		var employeeID, structureID, base, gross string
		if err := contracts.Scan(&c.ID, &employeeID, &structureID, &base, &gross); err != nil {
			return nil, err
		}
		c.SalaryStructureID = payroll.SalaryStructureID(structureID)
		c.BaseSalary = payroll.MustParseDecimal(base)
		c.GrossSalary = payroll.MustParseDecimal(gross)
		if i, ok := index[payroll.EmployeeID(employeeID)]; ok {
			employees[i].Contracts = append(employees[i].Contracts, c)
		}
	}
	return employees, contracts.Err()
}

// SavePosition upserts a position.
func (s *Store) SavePosition(ctx context.Context, p payroll.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (id, title) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title`,
		string(p.ID), p.Title)
	return err
}

// ListPositions returns all positions.
func (s *Store) ListPositions(ctx context.Context) ([]payroll.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM positions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []payroll.Position
	for rows.Next() {
		var p payroll.Position
		var id string
		if err := rows.Scan(&id, &p.Title); err != nil {
			return nil, err
		}
		p.ID = payroll.PositionID(id)
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// SaveOrgNode upserts an organization node.
func (s *Store) SaveOrgNode(ctx context.Context, n payroll.OrgNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO org_nodes (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		string(n.ID), n.Name)
	return err
}

// ListOrgNodes returns all organization nodes.
func (s *Store) ListOrgNodes(ctx context.Context) ([]payroll.OrgNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM org_nodes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []payroll.OrgNode
	for rows.Next() {
		var n payroll.OrgNode
		var id string
		if err := rows.Scan(&id, &n.Name); err != nil {
			return nil, err
		}
		n.ID = payroll.OrgNodeID(id)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// SaveSalaryStructure upserts a salary structure.
func (s *Store) SaveSalaryStructure(ctx context.Context, ss payroll.SalaryStructure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salary_structures (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		string(ss.ID), ss.Name)
	return err
}

// ListSalaryStructures returns all salary structures.
func (s *Store) ListSalaryStructures(ctx context.Context) ([]payroll.SalaryStructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM salary_structures ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var structures []payroll.SalaryStructure
	for rows.Next() {
		var ss payroll.SalaryStructure
		var id string
		if err := rows.Scan(&id, &ss.Name); err != nil {
			return nil, err
		}
		ss.ID = payroll.SalaryStructureID(id)
		structures = append(structures, ss)
	}
	return structures, rows.Err()
}

// Reset wipes every table. Used by the scenario loader.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"batches", "employee_contracts", "employees", "positions", "org_nodes", "salary_structures"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return payroll.ErrBatchNotFound
	}
	return nil
}
