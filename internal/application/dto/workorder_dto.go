package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWorkOrderRequest crea una orden de trabajo en draft.
type CreateWorkOrderRequest struct {
	Code            string          `json:"code" validate:"required,max=64"`
	Kind            string          `json:"kind" validate:"required,oneof=production disassembly"`
	BOMID           string          `json:"bom_id" validate:"omitempty,uuid"`
	BOMVersionID    string          `json:"bom_version_id" validate:"omitempty,uuid"`
	OutputItemID    string          `json:"output_item_id" validate:"required,uuid"`
	OutputUOM       string          `json:"output_uom" validate:"required,max=16"`
	QuantityPlanned decimal.Decimal `json:"quantity_planned" validate:"required"`
	Notes           string          `json:"notes" validate:"omitempty,max=1000"`
}

// WorkOrderResponse header de una orden con su progreso y agregados WIP.
type WorkOrderResponse struct {
	ID                   string          `json:"id"`
	CompanyID            string          `json:"company_id"`
	Code                 string          `json:"code"`
	Status               string          `json:"status"`
	Kind                 string          `json:"kind"`
	BOMID                string          `json:"bom_id,omitempty"`
	BOMVersionID         string          `json:"bom_version_id,omitempty"`
	OutputItemID         string          `json:"output_item_id"`
	OutputUOM            string          `json:"output_uom"`
	QuantityPlanned      decimal.Decimal `json:"quantity_planned"`
	QuantityCompleted    decimal.Decimal `json:"quantity_completed"`
	WIPTotalCost         decimal.Decimal `json:"wip_total_cost"`
	WIPUnitCost          decimal.Decimal `json:"wip_unit_cost"`
	WIPQuantityCanonical decimal.Decimal `json:"wip_quantity_canonical"`
	WIPCostMethod        string          `json:"wip_cost_method"`
	Notes                string          `json:"notes,omitempty"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// IssueLineRequest línea de componente para una emisión.
type IssueLineRequest struct {
	ComponentItemID string          `json:"component_item_id" validate:"required,uuid"`
	UOM             string          `json:"uom" validate:"required,max=16"`
	Quantity        decimal.Decimal `json:"quantity" validate:"required"`
	FromLocationID  string          `json:"from_location_id" validate:"required,uuid"`
	ReasonCode      string          `json:"reason_code" validate:"omitempty,max=32"`
}

// CreateIssueRequest crea un documento de emisión en draft.
type CreateIssueRequest struct {
	OccurredAt time.Time          `json:"occurred_at"`
	Notes      string             `json:"notes" validate:"omitempty,max=1000"`
	Lines      []IssueLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// IssueLineResponse línea de una emisión.
type IssueLineResponse struct {
	ID              string          `json:"id"`
	ComponentItemID string          `json:"component_item_id"`
	UOM             string          `json:"uom"`
	QuantityIssued  decimal.Decimal `json:"quantity_issued"`
	FromLocationID  string          `json:"from_location_id"`
	ReasonCode      string          `json:"reason_code,omitempty"`
}

// IssueResponse documento de emisión con sus líneas.
type IssueResponse struct {
	ID                  string              `json:"id"`
	WorkOrderID         string              `json:"work_order_id"`
	Status              string              `json:"status"`
	OccurredAt          time.Time           `json:"occurred_at"`
	InventoryMovementID string              `json:"inventory_movement_id,omitempty"`
	Notes               string              `json:"notes,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	PostedAt            *time.Time          `json:"posted_at,omitempty"`
	Lines               []IssueLineResponse `json:"lines"`
}

// ExecutionLineRequest línea de producto para una terminación.
type ExecutionLineRequest struct {
	ItemID       string          `json:"item_id" validate:"required,uuid"`
	UOM          string          `json:"uom" validate:"required,max=16"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
	PackSize     decimal.Decimal `json:"pack_size"`
	ToLocationID string          `json:"to_location_id" validate:"required,uuid"`
	ReasonCode   string          `json:"reason_code" validate:"omitempty,max=32"`
}

// CreateExecutionRequest crea un documento de terminación en draft.
type CreateExecutionRequest struct {
	OccurredAt time.Time              `json:"occurred_at"`
	Notes      string                 `json:"notes" validate:"omitempty,max=1000"`
	Lines      []ExecutionLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ExecutionLineResponse línea de una terminación.
type ExecutionLineResponse struct {
	ID           string          `json:"id"`
	ItemID       string          `json:"item_id"`
	UOM          string          `json:"uom"`
	Quantity     decimal.Decimal `json:"quantity"`
	PackSize     decimal.Decimal `json:"pack_size"`
	ToLocationID string          `json:"to_location_id"`
	ReasonCode   string          `json:"reason_code,omitempty"`
}

// ExecutionResponse documento de terminación con sus agregados de costo.
type ExecutionResponse struct {
	ID                    string                  `json:"id"`
	WorkOrderID           string                  `json:"work_order_id"`
	Status                string                  `json:"status"`
	OccurredAt            time.Time               `json:"occurred_at"`
	ConsumptionMovementID string                  `json:"consumption_movement_id,omitempty"`
	ProductionMovementID  string                  `json:"production_movement_id,omitempty"`
	WIPTotalCost          decimal.Decimal         `json:"wip_total_cost"`
	WIPUnitCost           decimal.Decimal         `json:"wip_unit_cost"`
	WIPQuantityCanonical  decimal.Decimal         `json:"wip_quantity_canonical"`
	WIPCostMethod         string                  `json:"wip_cost_method,omitempty"`
	CostedAt              *time.Time              `json:"costed_at,omitempty"`
	Notes                 string                  `json:"notes,omitempty"`
	CreatedAt             time.Time               `json:"created_at"`
	PostedAt              *time.Time              `json:"posted_at,omitempty"`
	Lines                 []ExecutionLineResponse `json:"lines"`
}

// WorkOrderDetailResponse orden con sus documentos.
type WorkOrderDetailResponse struct {
	WorkOrder  WorkOrderResponse   `json:"work_order"`
	Issues     []IssueResponse     `json:"issues"`
	Executions []ExecutionResponse `json:"executions"`
}

// StockOverrideRequest autorización para postear con stock insuficiente.
// Reason es obligatorio cuando Requested es true; el rol del actor se toma del token.
type StockOverrideRequest struct {
	Requested bool   `json:"requested"`
	Reason    string `json:"reason" validate:"required_if=Requested true,max=500"`
}

// PostIssueRequest postea una emisión draft.
type PostIssueRequest struct {
	Override StockOverrideRequest `json:"override"`
}

// BackflushRequest emisión y terminación en una sola llamada atómica.
type BackflushRequest struct {
	WorkOrderID string                 `json:"work_order_id" validate:"required,uuid"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Notes       string                 `json:"notes" validate:"omitempty,max=1000"`
	Issues      []IssueLineRequest     `json:"issues" validate:"required,min=1,dive"`
	Outputs     []ExecutionLineRequest `json:"outputs" validate:"required,min=1,dive"`
	Override    StockOverrideRequest   `json:"override"`
}

// BackflushResponse ids de los documentos y movimientos creados por un backflush.
type BackflushResponse struct {
	IssueID               string `json:"issue_id"`
	ExecutionID           string `json:"execution_id"`
	ConsumptionMovementID string `json:"consumption_movement_id"`
	ProductionMovementID  string `json:"production_movement_id"`
}

// ReceiptLineRequest línea de una recepción valorizada.
type ReceiptLineRequest struct {
	ItemID     string          `json:"item_id" validate:"required,uuid"`
	LocationID string          `json:"location_id" validate:"required,uuid"`
	UOM        string          `json:"uom" validate:"required,max=16"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ReasonCode string          `json:"reason_code" validate:"omitempty,max=32"`
}

// CreateReceiptRequest recepción de inventario: compra, saldo inicial o ajuste.
type CreateReceiptRequest struct {
	OccurredAt  time.Time            `json:"occurred_at"`
	ExternalRef string               `json:"external_ref" validate:"omitempty,max=64"`
	SourceType  string               `json:"source_type" validate:"omitempty,oneof=purchase_receipt production_receipt adjustment opening_balance"`
	Notes       string               `json:"notes" validate:"omitempty,max=1000"`
	Lines       []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceiptResponse id del movimiento creado por una recepción.
type ReceiptResponse struct {
	MovementID string `json:"movement_id"`
}

// OnHandResponse saldo disponible de un ítem en una ubicación, en UOM canónica.
type OnHandResponse struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	OnHand     decimal.Decimal `json:"on_hand"`
}

// WIPConsumptionResponse fila del pool WIP de una orden.
type WIPConsumptionResponse struct {
	ID           string          `json:"id"`
	CostLayerID  string          `json:"cost_layer_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	ExtendedCost decimal.Decimal `json:"extended_cost"`
	Claimed      bool            `json:"claimed"`
}

// UnclaimedWIPResponse pool WIP sin reclamar de una orden.
type UnclaimedWIPResponse struct {
	WorkOrderID  string                   `json:"work_order_id"`
	TotalCost    decimal.Decimal          `json:"total_cost"`
	Consumptions []WIPConsumptionResponse `json:"consumptions"`
}
