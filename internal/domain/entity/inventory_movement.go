package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIssue      = "issue"      // salida a producción
	MovementTypeReceive    = "receive"    // entrada (recepción o producto terminado)
	MovementTypeTransfer   = "transfer"   // traslado entre ubicaciones
	MovementTypeAdjustment = "adjustment" // ajuste
)

// Estado único de un movimiento: el header nace posteado y nunca se edita.
const MovementStatusPosted = "posted"

// InventoryMovement encabezado inmutable de un evento de posteo. Un movimiento por
// evento; las correcciones son contra-asientos nuevos, nunca ediciones in-place.
type InventoryMovement struct {
	ID          string
	CompanyID   string
	Type        string // ver constantes MovementType*
	Status      string // siempre "posted"
	OccurredAt  time.Time
	PostedAt    time.Time
	ExternalRef string
	Metadata    json.RawMessage // ej. metadata de override del guard de stock
	Notes       string
	CreatedBy   string
}

// InventoryMovementLine línea inmutable del ledger. Siempre lleva la cantidad
// capturada y su forma canónica; QuantityDelta es canónica y con signo.
type InventoryMovementLine struct {
	ID            string
	MovementID    string
	ItemID        string
	LocationID    string
	QtyEntered    decimal.Decimal
	UOMEntered    string
	QtyCanonical  decimal.Decimal
	CanonicalUOM  string
	Dimension     string
	QuantityDelta decimal.Decimal // canónica, negativa en salidas
	UnitCost      decimal.Decimal
	ExtendedCost  decimal.Decimal
	ReasonCode    string
}
