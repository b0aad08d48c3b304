package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ repository.WorkOrderRepository = (*WorkOrderRepo)(nil)

// WorkOrderRepo implementación de WorkOrderRepository sobre PostgreSQL.
type WorkOrderRepo struct {
	q Querier
}

// NewWorkOrderRepository construye el adaptador de órdenes de trabajo.
func NewWorkOrderRepository(q Querier) *WorkOrderRepo {
	return &WorkOrderRepo{q: q}
}

const workOrderColumns = `id, company_id, code, status, kind, bom_id, bom_version_id,
	output_item_id, output_uom, quantity_planned, quantity_completed,
	wip_total_cost, wip_unit_cost, wip_quantity_canonical, wip_cost_method,
	notes, completed_at, created_by, created_at, updated_at`

// Create inserta una orden nueva.
func (r *WorkOrderRepo) Create(ctx context.Context, wo *entity.WorkOrder) error {
	query := `
		INSERT INTO work_orders (` + workOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		wo.ID, wo.CompanyID, wo.Code, wo.Status, wo.Kind, wo.BOMID, wo.BOMVersionID,
		wo.OutputItemID, wo.OutputUOM, wo.QuantityPlanned, wo.QuantityCompleted,
		wo.WIPTotalCost, wo.WIPUnitCost, wo.WIPQuantityCanonical, wo.WIPCostMethod,
		wo.Notes, wo.CompletedAt, wo.CreatedBy, wo.CreatedAt, wo.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("create work order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID. Devuelve nil si no existe.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1`
	return r.scanWorkOrder(r.q.QueryRow(ctx, query, id))
}

// GetForUpdate obtiene y bloquea la orden (SELECT FOR UPDATE): serializa los
// posteos concurrentes contra la misma orden.
func (r *WorkOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1 FOR UPDATE`
	return r.scanWorkOrder(r.q.QueryRow(ctx, query, id))
}

// UpdateProgress persiste status, progreso y agregados WIP de la orden.
func (r *WorkOrderRepo) UpdateProgress(ctx context.Context, wo *entity.WorkOrder) error {
	query := `
		UPDATE work_orders
		SET status = $2, quantity_completed = $3,
		    wip_total_cost = $4, wip_unit_cost = $5, wip_quantity_canonical = $6,
		    completed_at = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		wo.ID, wo.Status, wo.QuantityCompleted,
		wo.WIPTotalCost, wo.WIPUnitCost, wo.WIPQuantityCanonical,
		wo.CompletedAt, wo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update work order progress: %w", err)
	}
	return nil
}

// ListByCompany lista órdenes de la empresa, opcionalmente filtradas por estado.
func (r *WorkOrderRepo) ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.WorkOrder, error) {
	query := `
		SELECT ` + workOrderColumns + `
		FROM work_orders
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.WorkOrder
	for rows.Next() {
		wo, err := r.scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, wo)
	}
	return orders, rows.Err()
}

func (r *WorkOrderRepo) scanWorkOrder(row pgx.Row) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := row.Scan(
		&wo.ID, &wo.CompanyID, &wo.Code, &wo.Status, &wo.Kind, &wo.BOMID, &wo.BOMVersionID,
		&wo.OutputItemID, &wo.OutputUOM, &wo.QuantityPlanned, &wo.QuantityCompleted,
		&wo.WIPTotalCost, &wo.WIPUnitCost, &wo.WIPQuantityCanonical, &wo.WIPCostMethod,
		&wo.Notes, &wo.CompletedAt, &wo.CreatedBy, &wo.CreatedAt, &wo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return &wo, nil
}

// --- Emisiones de material ---

const issueColumns = `id, work_order_id, status, occurred_at, inventory_movement_id, notes, created_by, created_at, posted_at`

// CreateIssue inserta el documento de emisión con sus líneas.
func (r *WorkOrderRepo) CreateIssue(ctx context.Context, issue *entity.WorkOrderMaterialIssue) error {
	query := `
		INSERT INTO work_order_material_issues (` + issueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		issue.ID, issue.WorkOrderID, issue.Status, issue.OccurredAt,
		issue.InventoryMovementID, issue.Notes, issue.CreatedBy, issue.CreatedAt, issue.PostedAt,
	)
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	lineQuery := `
		INSERT INTO work_order_material_issue_lines
			(id, issue_id, component_item_id, uom, quantity_issued, from_location_id, reason_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, ln := range issue.Lines {
		if _, err := r.q.Exec(ctx, lineQuery,
			ln.ID, ln.IssueID, ln.ComponentItemID, ln.UOM, ln.QuantityIssued, ln.FromLocationID, ln.ReasonCode,
		); err != nil {
			return fmt.Errorf("create issue line: %w", err)
		}
	}
	return nil
}

// GetIssueByID obtiene una emisión con líneas. Devuelve nil si no existe.
func (r *WorkOrderRepo) GetIssueByID(ctx context.Context, id string) (*entity.WorkOrderMaterialIssue, error) {
	query := `SELECT ` + issueColumns + ` FROM work_order_material_issues WHERE id = $1`
	return r.scanIssueWithLines(ctx, r.q.QueryRow(ctx, query, id))
}

// GetIssueForUpdate obtiene y bloquea una emisión con líneas.
func (r *WorkOrderRepo) GetIssueForUpdate(ctx context.Context, id string) (*entity.WorkOrderMaterialIssue, error) {
	query := `SELECT ` + issueColumns + ` FROM work_order_material_issues WHERE id = $1 FOR UPDATE`
	return r.scanIssueWithLines(ctx, r.q.QueryRow(ctx, query, id))
}

// MarkIssuePosted fija status=posted, el movimiento vinculado y posted_at. El
// WHERE exige draft: postear dos veces no afecta filas.
func (r *WorkOrderRepo) MarkIssuePosted(ctx context.Context, issueID, movementID string, postedAt time.Time) error {
	query := `
		UPDATE work_order_material_issues
		SET status = 'posted', inventory_movement_id = $2, posted_at = $3
		WHERE id = $1 AND status = 'draft'`
	tag, err := r.q.Exec(ctx, query, issueID, movementID, postedAt)
	if err != nil {
		return fmt.Errorf("mark issue posted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark issue posted %s: %w", issueID, domain.ErrConflict)
	}
	return nil
}

// MarkIssueCanceled cancela una emisión draft.
func (r *WorkOrderRepo) MarkIssueCanceled(ctx context.Context, issueID string) error {
	query := `
		UPDATE work_order_material_issues
		SET status = 'canceled'
		WHERE id = $1 AND status = 'draft'`
	tag, err := r.q.Exec(ctx, query, issueID)
	if err != nil {
		return fmt.Errorf("mark issue canceled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark issue canceled %s: %w", issueID, domain.ErrConflict)
	}
	return nil
}

// ListIssuesByWorkOrder lista las emisiones de una orden con sus líneas.
func (r *WorkOrderRepo) ListIssuesByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.WorkOrderMaterialIssue, error) {
	query := `
		SELECT ` + issueColumns + `
		FROM work_order_material_issues
		WHERE work_order_id = $1
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var issues []*entity.WorkOrderMaterialIssue
	for rows.Next() {
		var is entity.WorkOrderMaterialIssue
		var movementID *string
		if err := rows.Scan(
			&is.ID, &is.WorkOrderID, &is.Status, &is.OccurredAt,
			&movementID, &is.Notes, &is.CreatedBy, &is.CreatedAt, &is.PostedAt,
		); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		if movementID != nil {
			is.InventoryMovementID = *movementID
		}
		issues = append(issues, &is)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, is := range issues {
		lines, err := r.issueLines(ctx, is.ID)
		if err != nil {
			return nil, err
		}
		is.Lines = lines
	}
	return issues, nil
}

func (r *WorkOrderRepo) scanIssueWithLines(ctx context.Context, row pgx.Row) (*entity.WorkOrderMaterialIssue, error) {
	var is entity.WorkOrderMaterialIssue
	var movementID *string
	err := row.Scan(
		&is.ID, &is.WorkOrderID, &is.Status, &is.OccurredAt,
		&movementID, &is.Notes, &is.CreatedBy, &is.CreatedAt, &is.PostedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get issue: %w", err)
	}
	if movementID != nil {
		is.InventoryMovementID = *movementID
	}
	lines, err := r.issueLines(ctx, is.ID)
	if err != nil {
		return nil, err
	}
	is.Lines = lines
	return &is, nil
}

func (r *WorkOrderRepo) issueLines(ctx context.Context, issueID string) ([]entity.WorkOrderMaterialIssueLine, error) {
	query := `
		SELECT id, issue_id, component_item_id, uom, quantity_issued, from_location_id, reason_code
		FROM work_order_material_issue_lines
		WHERE issue_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, issueID)
	if err != nil {
		return nil, fmt.Errorf("list issue lines: %w", err)
	}
	defer rows.Close()

	var lines []entity.WorkOrderMaterialIssueLine
	for rows.Next() {
		var ln entity.WorkOrderMaterialIssueLine
		if err := rows.Scan(&ln.ID, &ln.IssueID, &ln.ComponentItemID, &ln.UOM, &ln.QuantityIssued, &ln.FromLocationID, &ln.ReasonCode); err != nil {
			return nil, fmt.Errorf("scan issue line: %w", err)
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}

// --- Terminaciones ---

const executionColumns = `id, work_order_id, status, occurred_at, consumption_movement_id, production_movement_id,
	wip_total_cost, wip_unit_cost, wip_quantity_canonical, wip_cost_method, costed_at,
	notes, created_by, created_at, posted_at`

// CreateExecution inserta el documento de terminación con sus líneas.
func (r *WorkOrderRepo) CreateExecution(ctx context.Context, exec *entity.WorkOrderExecution) error {
	query := `
		INSERT INTO work_order_executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		exec.ID, exec.WorkOrderID, exec.Status, exec.OccurredAt,
		exec.ConsumptionMovementID, exec.ProductionMovementID,
		exec.WIPTotalCost, exec.WIPUnitCost, exec.WIPQuantityCanonical, exec.WIPCostMethod, exec.CostedAt,
		exec.Notes, exec.CreatedBy, exec.CreatedAt, exec.PostedAt,
	)
	if err != nil {
		return fmt.Errorf("create execution: %w", err)
	}
	lineQuery := `
		INSERT INTO work_order_execution_lines
			(id, execution_id, item_id, uom, quantity, pack_size, to_location_id, reason_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, ln := range exec.Lines {
		if _, err := r.q.Exec(ctx, lineQuery,
			ln.ID, ln.ExecutionID, ln.ItemID, ln.UOM, ln.Quantity, ln.PackSize, ln.ToLocationID, ln.ReasonCode,
		); err != nil {
			return fmt.Errorf("create execution line: %w", err)
		}
	}
	return nil
}

// GetExecutionByID obtiene una terminación con líneas. Devuelve nil si no existe.
func (r *WorkOrderRepo) GetExecutionByID(ctx context.Context, id string) (*entity.WorkOrderExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM work_order_executions WHERE id = $1`
	return r.scanExecutionWithLines(ctx, r.q.QueryRow(ctx, query, id))
}

// GetExecutionForUpdate obtiene y bloquea una terminación con líneas.
func (r *WorkOrderRepo) GetExecutionForUpdate(ctx context.Context, id string) (*entity.WorkOrderExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM work_order_executions WHERE id = $1 FOR UPDATE`
	return r.scanExecutionWithLines(ctx, r.q.QueryRow(ctx, query, id))
}

// MarkExecutionPosted fija status=posted, movimientos, agregados WIP y costed_at.
func (r *WorkOrderRepo) MarkExecutionPosted(ctx context.Context, exec *entity.WorkOrderExecution) error {
	query := `
		UPDATE work_order_executions
		SET status = 'posted', consumption_movement_id = $2, production_movement_id = $3,
		    wip_total_cost = $4, wip_unit_cost = $5, wip_quantity_canonical = $6,
		    wip_cost_method = $7, costed_at = $8, posted_at = $9
		WHERE id = $1 AND status = 'draft'`
	tag, err := r.q.Exec(ctx, query,
		exec.ID, exec.ConsumptionMovementID, exec.ProductionMovementID,
		exec.WIPTotalCost, exec.WIPUnitCost, exec.WIPQuantityCanonical,
		exec.WIPCostMethod, exec.CostedAt, exec.PostedAt,
	)
	if err != nil {
		return fmt.Errorf("mark execution posted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark execution posted %s: %w", exec.ID, domain.ErrConflict)
	}
	return nil
}

// MarkExecutionCanceled cancela una terminación draft.
func (r *WorkOrderRepo) MarkExecutionCanceled(ctx context.Context, executionID string) error {
	query := `
		UPDATE work_order_executions
		SET status = 'canceled'
		WHERE id = $1 AND status = 'draft'`
	tag, err := r.q.Exec(ctx, query, executionID)
	if err != nil {
		return fmt.Errorf("mark execution canceled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark execution canceled %s: %w", executionID, domain.ErrConflict)
	}
	return nil
}

// ListExecutionsByWorkOrder lista las terminaciones de una orden con sus líneas.
func (r *WorkOrderRepo) ListExecutionsByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.WorkOrderExecution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM work_order_executions
		WHERE work_order_id = $1
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var executions []*entity.WorkOrderExecution
	for rows.Next() {
		ex, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, ex := range executions {
		lines, err := r.executionLines(ctx, ex.ID)
		if err != nil {
			return nil, err
		}
		ex.Lines = lines
	}
	return executions, nil
}

func (r *WorkOrderRepo) scanExecutionWithLines(ctx context.Context, row pgx.Row) (*entity.WorkOrderExecution, error) {
	ex, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	lines, err := r.executionLines(ctx, ex.ID)
	if err != nil {
		return nil, err
	}
	ex.Lines = lines
	return ex, nil
}

func scanExecution(row pgx.Row) (*entity.WorkOrderExecution, error) {
	var ex entity.WorkOrderExecution
	var consumptionID, productionID *string
	err := row.Scan(
		&ex.ID, &ex.WorkOrderID, &ex.Status, &ex.OccurredAt,
		&consumptionID, &productionID,
		&ex.WIPTotalCost, &ex.WIPUnitCost, &ex.WIPQuantityCanonical, &ex.WIPCostMethod, &ex.CostedAt,
		&ex.Notes, &ex.CreatedBy, &ex.CreatedAt, &ex.PostedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan execution: %w", err)
	}
	if consumptionID != nil {
		ex.ConsumptionMovementID = *consumptionID
	}
	if productionID != nil {
		ex.ProductionMovementID = *productionID
	}
	return &ex, nil
}

func (r *WorkOrderRepo) executionLines(ctx context.Context, executionID string) ([]entity.WorkOrderExecutionLine, error) {
	query := `
		SELECT id, execution_id, item_id, uom, quantity, pack_size, to_location_id, reason_code
		FROM work_order_execution_lines
		WHERE execution_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, executionID)
	if err != nil {
		return nil, fmt.Errorf("list execution lines: %w", err)
	}
	defer rows.Close()

	var lines []entity.WorkOrderExecutionLine
	for rows.Next() {
		var ln entity.WorkOrderExecutionLine
		if err := rows.Scan(&ln.ID, &ln.ExecutionID, &ln.ItemID, &ln.UOM, &ln.Quantity, &ln.PackSize, &ln.ToLocationID, &ln.ReasonCode); err != nil {
			return nil, fmt.Errorf("scan execution line: %w", err)
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}
