package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// Filas de muestra que devuelve el verificador de conciliación.

// LayerBalanceRow capa con remaining negativo (violación dura).
type LayerBalanceRow struct {
	LayerID           string
	ItemID            string
	LocationID        string
	QuantityRemaining decimal.Decimal
}

// OverconsumedLayerRow capa cuyos consumos suman más que su cantidad original.
type OverconsumedLayerRow struct {
	LayerID          string
	QuantityOriginal decimal.Decimal
	ConsumedTotal    decimal.Decimal
}

// ExecutionCostRow agregados de costo recomputados para una ejecución posteada:
// costo de componentes reclamado vs costo de producto terminado creado.
type ExecutionCostRow struct {
	ExecutionID    string
	WorkOrderID    string
	ClaimedCost    decimal.Decimal // Σ extended_cost de consumos reclamados por la ejecución
	ProducedCost   decimal.Decimal // Σ unit_cost*qty de las capas creadas por su movimiento de producción
	StoredWIPTotal decimal.Decimal // wip_total_cost persistido en el documento
}

// OnHandRow saldo on-hand por (ítem, ubicación) recomputado desde capas.
type OnHandRow struct {
	ItemID     string
	LocationID string
	OnHand     decimal.Decimal
}

// ReconciliationRepository puerto de solo lectura del verificador. Corre fuera de
// banda contra las mismas tablas del motor; no toma locks ni muta nada.
type ReconciliationRepository interface {
	NegativeRemainingLayers(ctx context.Context, companyID string, limit int) ([]LayerBalanceRow, error)
	OverconsumedLayers(ctx context.Context, companyID string, limit int) ([]OverconsumedLayerRow, error)
	PostedExecutionCosts(ctx context.Context, companyID string, limit int) ([]ExecutionCostRow, error)
	NegativeOnHand(ctx context.Context, companyID string, limit int) ([]OnHandRow, error)
}
