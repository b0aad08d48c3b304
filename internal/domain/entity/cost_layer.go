package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Orígenes de una capa de costo.
const (
	LayerSourcePurchaseReceipt = "purchase_receipt"
	LayerSourceProduction      = "production_output"
	LayerSourceAdjustment      = "adjustment"
	LayerSourceOpeningBalance  = "opening_balance"
)

// CostLayer parcela de inventario valorizada y parcialmente consumible: la unidad
// del costeo FIFO. Solo QuantityRemaining muta después de creada; UnitCost jamás.
type CostLayer struct {
	ID                string
	CompanyID         string
	ItemID            string
	LocationID        string
	UOM               string // unidad canónica del ítem
	UnitCost          decimal.Decimal // >= 0
	QuantityOriginal  decimal.Decimal // > 0 al crear
	QuantityRemaining decimal.Decimal // 0 <= remaining <= original
	SourceType        string // ver constantes LayerSource*
	SourceDocumentID  string
	MovementID        string
	CreatedAt         time.Time
}

// Tipos de consumo de capa.
const (
	ConsumptionTypeProductionInput = "production_input"
	ConsumptionTypeSale            = "sale"
	ConsumptionTypeAdjustment      = "adjustment"
	ConsumptionTypeTransfer        = "transfer"
)

// CostLayerConsumption registro inmutable de un consumo FIFO contra una capa.
// WIPExecutionID permanece nil ("sin reclamar") hasta que una terminación reclama
// el costo del pool WIP del work order; el claim es atómico y definitivo.
type CostLayerConsumption struct {
	ID                    string
	LayerID               string
	ConsumptionType       string // ver constantes ConsumptionType*
	ConsumptionDocumentID string
	MovementID            string
	ConsumedQty           decimal.Decimal // > 0, en la UOM de la capa
	ExtendedCost          decimal.Decimal // ConsumedQty * layer.UnitCost
	WIPExecutionID        *string
	WIPAllocatedAt        *time.Time
	CreatedAt             time.Time
}

// IsClaimed indica si el consumo ya fue reclamado por una terminación.
func (c *CostLayerConsumption) IsClaimed() bool {
	return c.WIPExecutionID != nil
}
