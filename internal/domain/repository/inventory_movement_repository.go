package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// InventoryMovementRepository puerto de persistencia del ledger inmutable de
// movimientos. Solo inserta y consulta: un movimiento posteado jamás se edita.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	CreateLine(ctx context.Context, line *entity.InventoryMovementLine) error
	GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error)
	ListLines(ctx context.Context, movementID string) ([]*entity.InventoryMovementLine, error)
	ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	// SumDeltaAsOf suma quantity_delta canónico de un (ítem, ubicación) para
	// movimientos con occurred_at <= asOf. Alimenta el guard de suficiencia,
	// que debe evaluar al instante del documento (los posteos pueden ser
	// retroactivos).
	SumDeltaAsOf(ctx context.Context, companyID, itemID, locationID string, asOf time.Time) (decimal.Decimal, error)
}
