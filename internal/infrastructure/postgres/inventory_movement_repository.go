package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación del ledger inmutable de movimientos.
// No hay UPDATE ni DELETE aquí: los errores se corrigen con contra-asientos.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador de movimientos.
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create inserta el header de un movimiento posteado.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements
			(id, company_id, type, status, occurred_at, posted_at, external_ref, metadata, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.Type, m.Status, m.OccurredAt, m.PostedAt,
		m.ExternalRef, m.Metadata, m.Notes, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// CreateLine inserta una línea del ledger con su cantidad capturada y canónica.
func (r *InventoryMovementRepo) CreateLine(ctx context.Context, ln *entity.InventoryMovementLine) error {
	query := `
		INSERT INTO inventory_movement_lines
			(id, movement_id, item_id, location_id, qty_entered, uom_entered,
			 qty_canonical, canonical_uom, dimension, quantity_delta, unit_cost, extended_cost, reason_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		ln.ID, ln.MovementID, ln.ItemID, ln.LocationID, ln.QtyEntered, ln.UOMEntered,
		ln.QtyCanonical, ln.CanonicalUOM, ln.Dimension, ln.QuantityDelta, ln.UnitCost, ln.ExtendedCost, ln.ReasonCode,
	)
	if err != nil {
		return fmt.Errorf("create movement line: %w", err)
	}
	return nil
}

// GetByID obtiene el header de un movimiento. Devuelve nil si no existe.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	query := `
		SELECT id, company_id, type, status, occurred_at, posted_at, external_ref, metadata, notes, created_by
		FROM inventory_movements WHERE id = $1`
	var m entity.InventoryMovement
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.CompanyID, &m.Type, &m.Status, &m.OccurredAt, &m.PostedAt,
		&m.ExternalRef, &m.Metadata, &m.Notes, &m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// ListLines lista las líneas de un movimiento.
func (r *InventoryMovementRepo) ListLines(ctx context.Context, movementID string) ([]*entity.InventoryMovementLine, error) {
	query := `
		SELECT id, movement_id, item_id, location_id, qty_entered, uom_entered,
		       qty_canonical, canonical_uom, dimension, quantity_delta, unit_cost, extended_cost, reason_code
		FROM inventory_movement_lines
		WHERE movement_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.InventoryMovementLine
	for rows.Next() {
		var ln entity.InventoryMovementLine
		if err := rows.Scan(
			&ln.ID, &ln.MovementID, &ln.ItemID, &ln.LocationID, &ln.QtyEntered, &ln.UOMEntered,
			&ln.QtyCanonical, &ln.CanonicalUOM, &ln.Dimension, &ln.QuantityDelta, &ln.UnitCost, &ln.ExtendedCost, &ln.ReasonCode,
		); err != nil {
			return nil, fmt.Errorf("scan movement line: %w", err)
		}
		lines = append(lines, &ln)
	}
	return lines, rows.Err()
}

// ListByItem lista movimientos que tocan un ítem, opcionalmente acotados en fecha.
func (r *InventoryMovementRepo) ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT DISTINCT m.id, m.company_id, m.type, m.status, m.occurred_at, m.posted_at,
		       m.external_ref, m.metadata, m.notes, m.created_by
		FROM inventory_movements m
		JOIN inventory_movement_lines l ON l.movement_id = m.id
		WHERE l.item_id = $1
		  AND ($2::timestamptz IS NULL OR m.occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR m.occurred_at <= $3)
		ORDER BY m.occurred_at DESC, m.id DESC
		LIMIT $4 OFFSET $5`
	return r.list(ctx, query, itemID, from, to, limit, offset)
}

// ListByLocation lista movimientos que tocan una ubicación.
func (r *InventoryMovementRepo) ListByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT DISTINCT m.id, m.company_id, m.type, m.status, m.occurred_at, m.posted_at,
		       m.external_ref, m.metadata, m.notes, m.created_by
		FROM inventory_movements m
		JOIN inventory_movement_lines l ON l.movement_id = m.id
		WHERE l.location_id = $1
		  AND ($2::timestamptz IS NULL OR m.occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR m.occurred_at <= $3)
		ORDER BY m.occurred_at DESC, m.id DESC
		LIMIT $4 OFFSET $5`
	return r.list(ctx, query, locationID, from, to, limit, offset)
}

// SumDeltaAsOf suma quantity_delta canónico de un (ítem, ubicación) hasta asOf
// inclusive. Es la disponibilidad que evalúa el guard de suficiencia: al instante
// del documento, no al de la llamada.
func (r *InventoryMovementRepo) SumDeltaAsOf(ctx context.Context, companyID, itemID, locationID string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.quantity_delta), 0)
		FROM inventory_movement_lines l
		JOIN inventory_movements m ON m.id = l.movement_id
		WHERE m.company_id = $1 AND l.item_id = $2 AND l.location_id = $3
		  AND m.occurred_at <= $4`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, itemID, locationID, asOf).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum delta as of: %w", err)
	}
	return sum, nil
}

func (r *InventoryMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var movements []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(
			&m.ID, &m.CompanyID, &m.Type, &m.Status, &m.OccurredAt, &m.PostedAt,
			&m.ExternalRef, &m.Metadata, &m.Notes, &m.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}
