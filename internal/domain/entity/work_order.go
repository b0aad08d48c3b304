package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de trabajo.
const (
	WorkOrderStatusDraft      = "draft"
	WorkOrderStatusInProgress = "in_progress"
	WorkOrderStatusCompleted  = "completed"
	WorkOrderStatusCanceled   = "canceled"
)

// Clases de orden de trabajo.
const (
	WorkOrderKindProduction  = "production"  // consume componentes, produce el ítem de salida
	WorkOrderKindDisassembly = "disassembly" // consume el ítem de salida, recupera partes
)

// Método de costeo del pool WIP.
const WIPCostMethodFIFO = "fifo"

// WorkOrder orden de producción o desensamble. El header es mutable: cada posteo
// de emisión o terminación actualiza progreso y agregados de costo WIP. El estado
// agregado deriva de los posteos, no del estado de sus documentos individuales.
type WorkOrder struct {
	ID                   string
	CompanyID            string
	Code                 string
	Status               string // ver constantes WorkOrderStatus*
	Kind                 string // ver constantes WorkOrderKind*
	BOMID                string // solo production; referencia externa, no se resuelve aquí
	BOMVersionID         string
	OutputItemID         string
	OutputUOM            string
	QuantityPlanned      decimal.Decimal
	QuantityCompleted    decimal.Decimal
	WIPTotalCost         decimal.Decimal // acumulado de costo reclamado por terminaciones
	WIPUnitCost          decimal.Decimal
	WIPQuantityCanonical decimal.Decimal
	WIPCostMethod        string // siempre "fifo"
	Notes                string
	CompletedAt          *time.Time
	CreatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsTerminal indica si la orden ya no acepta posteos.
func (w *WorkOrder) IsTerminal() bool {
	return w.Status == WorkOrderStatusCompleted || w.Status == WorkOrderStatusCanceled
}

// Estados compartidos por los documentos de ejecución (emisión y terminación):
// draft → posted (terminal, inmutable) o draft → canceled (terminal).
const (
	DocStatusDraft    = "draft"
	DocStatusPosted   = "posted"
	DocStatusCanceled = "canceled"
)

// WorkOrderMaterialIssue documento de emisión de materiales a producción.
// Se crea en draft, se postea exactamente una vez y queda inmutable.
type WorkOrderMaterialIssue struct {
	ID                  string
	WorkOrderID         string
	Status              string // ver constantes DocStatus*
	OccurredAt          time.Time
	InventoryMovementID string // se fija al postear
	Notes               string
	CreatedBy           string
	CreatedAt           time.Time
	PostedAt            *time.Time
	Lines               []WorkOrderMaterialIssueLine
}

// WorkOrderMaterialIssueLine componente emitido desde una ubicación.
type WorkOrderMaterialIssueLine struct {
	ID              string
	IssueID         string
	ComponentItemID string
	UOM             string
	QuantityIssued  decimal.Decimal // > 0 en la UOM capturada
	FromLocationID  string
	ReasonCode      string
}

// WorkOrderExecution documento de terminación: reclama el pool WIP de la orden y
// lo asigna proporcionalmente entre sus líneas de producto.
type WorkOrderExecution struct {
	ID                    string
	WorkOrderID           string
	Status                string // ver constantes DocStatus*
	OccurredAt            time.Time
	ConsumptionMovementID string // movimiento de consumo (backflush); vacío en terminación pura
	ProductionMovementID  string // movimiento receive del producto terminado
	WIPTotalCost          decimal.Decimal
	WIPUnitCost           decimal.Decimal
	WIPQuantityCanonical  decimal.Decimal
	WIPCostMethod         string
	CostedAt              *time.Time
	Notes                 string
	CreatedBy             string
	CreatedAt             time.Time
	PostedAt              *time.Time
	Lines                 []WorkOrderExecutionLine
}

// WorkOrderExecutionLine línea de producto terminado (o parte recuperada en
// desensamble) recibida en una ubicación destino.
type WorkOrderExecutionLine struct {
	ID           string
	ExecutionID  string
	ItemID       string
	UOM          string
	Quantity     decimal.Decimal // > 0 en la UOM capturada
	PackSize     decimal.Decimal // unidades por empaque; 0 = sin empaque
	ToLocationID string
	ReasonCode   string
}
