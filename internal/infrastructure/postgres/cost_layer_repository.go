package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ repository.CostLayerRepository = (*CostLayerRepo)(nil)

// CostLayerRepo implementación del ledger de capas de costo y sus consumos.
type CostLayerRepo struct {
	q Querier
}

// NewCostLayerRepository construye el adaptador de capas.
func NewCostLayerRepository(q Querier) *CostLayerRepo {
	return &CostLayerRepo{q: q}
}

const layerColumns = `id, company_id, item_id, location_id, uom, unit_cost,
	quantity_original, quantity_remaining, source_type, source_document_id, movement_id, created_at`

// Create inserta una capa nueva con remaining = original.
func (r *CostLayerRepo) Create(ctx context.Context, layer *entity.CostLayer) error {
	query := `
		INSERT INTO cost_layers (` + layerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		layer.ID, layer.CompanyID, layer.ItemID, layer.LocationID, layer.UOM, layer.UnitCost,
		layer.QuantityOriginal, layer.QuantityRemaining, layer.SourceType,
		layer.SourceDocumentID, layer.MovementID, layer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create cost layer: %w", err)
	}
	return nil
}

// GetByID obtiene una capa por ID. Devuelve nil si no existe.
func (r *CostLayerRepo) GetByID(ctx context.Context, id string) (*entity.CostLayer, error) {
	query := `SELECT ` + layerColumns + ` FROM cost_layers WHERE id = $1`
	var l entity.CostLayer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.CompanyID, &l.ItemID, &l.LocationID, &l.UOM, &l.UnitCost,
		&l.QuantityOriginal, &l.QuantityRemaining, &l.SourceType,
		&l.SourceDocumentID, &l.MovementID, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cost layer: %w", err)
	}
	return &l, nil
}

// SelectForConsume devuelve las capas candidatas con remaining > 0 en orden FIFO
// (created_at ASC, id ASC) y las bloquea FOR UPDATE en ese mismo orden. El orden
// de bloqueo igual al orden de consumo evita ciclos de deadlock entre
// consumidores concurrentes del mismo (ítem, ubicación).
func (r *CostLayerRepo) SelectForConsume(ctx context.Context, companyID, itemID, locationID string, limit int) ([]*entity.CostLayer, error) {
	query := `
		SELECT ` + layerColumns + `
		FROM cost_layers
		WHERE company_id = $1 AND item_id = $2 AND location_id = $3 AND quantity_remaining > 0
		ORDER BY created_at ASC, id ASC
		LIMIT $4
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, companyID, itemID, locationID, limit)
	if err != nil {
		return nil, fmt.Errorf("select layers for consume: %w", err)
	}
	defer rows.Close()

	var layers []*entity.CostLayer
	for rows.Next() {
		var l entity.CostLayer
		if err := rows.Scan(
			&l.ID, &l.CompanyID, &l.ItemID, &l.LocationID, &l.UOM, &l.UnitCost,
			&l.QuantityOriginal, &l.QuantityRemaining, &l.SourceType,
			&l.SourceDocumentID, &l.MovementID, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cost layer: %w", err)
		}
		layers = append(layers, &l)
	}
	return layers, rows.Err()
}

// DecrementRemaining resta qty del remaining de la capa. El WHERE exige
// remaining >= qty: si no afecta filas, alguien violó el invariante y el posteo
// completo debe abortar.
func (r *CostLayerRepo) DecrementRemaining(ctx context.Context, layerID string, qty decimal.Decimal) error {
	query := `
		UPDATE cost_layers
		SET quantity_remaining = quantity_remaining - $2
		WHERE id = $1 AND quantity_remaining >= $2`
	tag, err := r.q.Exec(ctx, query, layerID, qty)
	if err != nil {
		return fmt.Errorf("decrement layer remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("decrement layer remaining %s: %w", layerID, domain.ErrConflict)
	}
	return nil
}

// OnHand suma el remaining de las capas de un (ítem, ubicación), en UOM canónica.
func (r *CostLayerRepo) OnHand(ctx context.Context, companyID, itemID, locationID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity_remaining), 0)
		FROM cost_layers
		WHERE company_id = $1 AND item_id = $2 AND location_id = $3`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, itemID, locationID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("on hand: %w", err)
	}
	return sum, nil
}

const consumptionColumns = `id, layer_id, consumption_type, consumption_document_id, movement_id,
	consumed_qty, extended_cost, wip_execution_id, wip_allocated_at, created_at`

// CreateConsumption inserta un registro de consumo FIFO contra una capa.
func (r *CostLayerRepo) CreateConsumption(ctx context.Context, c *entity.CostLayerConsumption) error {
	query := `
		INSERT INTO cost_layer_consumptions (` + consumptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.LayerID, c.ConsumptionType, c.ConsumptionDocumentID, c.MovementID,
		c.ConsumedQty, c.ExtendedCost, c.WIPExecutionID, c.WIPAllocatedAt, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create layer consumption: %w", err)
	}
	return nil
}

// ListConsumptionsByDocument lista los consumos generados por un documento.
func (r *CostLayerRepo) ListConsumptionsByDocument(ctx context.Context, consumptionDocumentID string) ([]*entity.CostLayerConsumption, error) {
	query := `
		SELECT ` + consumptionColumns + `
		FROM cost_layer_consumptions
		WHERE consumption_document_id = $1
		ORDER BY created_at, id`
	return r.listConsumptions(ctx, query, consumptionDocumentID)
}

// ListUnclaimedByWorkOrder versión de solo lectura del pool sin reclamar.
func (r *CostLayerRepo) ListUnclaimedByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.CostLayerConsumption, error) {
	query := unclaimedQuery
	return r.listConsumptions(ctx, query, workOrderID)
}

// UnclaimedForWorkOrder devuelve el pool WIP sin reclamar bloqueado FOR UPDATE:
// consumos de las emisiones posteadas de la orden con wip_execution_id NULL.
func (r *CostLayerRepo) UnclaimedForWorkOrder(ctx context.Context, workOrderID string) ([]*entity.CostLayerConsumption, error) {
	query := unclaimedQuery + `
		FOR UPDATE OF c`
	return r.listConsumptions(ctx, query, workOrderID)
}

const unclaimedQuery = `
		SELECT c.id, c.layer_id, c.consumption_type, c.consumption_document_id, c.movement_id,
		       c.consumed_qty, c.extended_cost, c.wip_execution_id, c.wip_allocated_at, c.created_at
		FROM cost_layer_consumptions c
		JOIN work_order_material_issues i ON i.id = c.consumption_document_id
		WHERE i.work_order_id = $1 AND i.status = 'posted' AND c.wip_execution_id IS NULL
		ORDER BY c.created_at, c.id`

// Claim marca atómicamente las filas como reclamadas por la ejecución. El WHERE
// exige wip_execution_id NULL: una fila ya reclamada jamás se reasigna.
func (r *CostLayerRepo) Claim(ctx context.Context, consumptionIDs []string, executionID string, at time.Time) (int64, error) {
	query := `
		UPDATE cost_layer_consumptions
		SET wip_execution_id = $2, wip_allocated_at = $3
		WHERE id = ANY($1) AND wip_execution_id IS NULL`
	tag, err := r.q.Exec(ctx, query, consumptionIDs, executionID, at)
	if err != nil {
		return 0, fmt.Errorf("claim consumptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CostLayerRepo) listConsumptions(ctx context.Context, query string, args ...any) ([]*entity.CostLayerConsumption, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list layer consumptions: %w", err)
	}
	defer rows.Close()

	var out []*entity.CostLayerConsumption
	for rows.Next() {
		var c entity.CostLayerConsumption
		if err := rows.Scan(
			&c.ID, &c.LayerID, &c.ConsumptionType, &c.ConsumptionDocumentID, &c.MovementID,
			&c.ConsumedQty, &c.ExtendedCost, &c.WIPExecutionID, &c.WIPAllocatedAt, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan layer consumption: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
