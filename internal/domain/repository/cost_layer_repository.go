package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// CostLayerRepository puerto de persistencia del ledger de capas de costo.
//
// SelectForConsume devuelve las capas candidatas de un (ítem, ubicación) con
// remaining > 0, ordenadas por created_at ASC con desempate por id ASC, y las
// bloquea (SELECT FOR UPDATE) en ese mismo orden: el orden de bloqueo igual al
// orden de consumo evita ciclos de deadlock entre consumidores concurrentes.
// limit acota las capas inspeccionadas por llamada.
type CostLayerRepository interface {
	Create(ctx context.Context, layer *entity.CostLayer) error
	GetByID(ctx context.Context, id string) (*entity.CostLayer, error)
	SelectForConsume(ctx context.Context, companyID, itemID, locationID string, limit int) ([]*entity.CostLayer, error)
	// DecrementRemaining resta qty del remaining de la capa. El adaptador exige
	// remaining >= qty en el WHERE; 0 filas afectadas es violación de invariante.
	DecrementRemaining(ctx context.Context, layerID string, qty decimal.Decimal) error
	OnHand(ctx context.Context, companyID, itemID, locationID string) (decimal.Decimal, error)

	CreateConsumption(ctx context.Context, c *entity.CostLayerConsumption) error
	ListConsumptionsByDocument(ctx context.Context, consumptionDocumentID string) ([]*entity.CostLayerConsumption, error)
	// ListUnclaimedByWorkOrder versión de solo lectura del pool sin reclamar,
	// para consultas fuera del camino de posteo.
	ListUnclaimedByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.CostLayerConsumption, error)
	// UnclaimedForWorkOrder devuelve, bloqueadas FOR UPDATE, las filas de consumo
	// de las emisiones posteadas de la orden cuyo wip_execution_id es NULL:
	// el pool WIP sin reclamar.
	UnclaimedForWorkOrder(ctx context.Context, workOrderID string) ([]*entity.CostLayerConsumption, error)
	// Claim marca atómicamente las filas como reclamadas por la ejecución.
	// Solo toca filas aún sin reclamar; devuelve cuántas marcó.
	Claim(ctx context.Context, consumptionIDs []string, executionID string, at time.Time) (int64, error)
}
