package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementResponse encabezado de un movimiento del ledger.
type MovementResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
	PostedAt    time.Time `json:"posted_at"`
	ExternalRef string    `json:"external_ref,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedBy   string    `json:"created_by"`
}

// MovementLineResponse línea del ledger con cantidad capturada y canónica.
type MovementLineResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	LocationID    string          `json:"location_id"`
	QtyEntered    decimal.Decimal `json:"qty_entered"`
	UOMEntered    string          `json:"uom_entered"`
	QtyCanonical  decimal.Decimal `json:"qty_canonical"`
	CanonicalUOM  string          `json:"canonical_uom"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	ExtendedCost  decimal.Decimal `json:"extended_cost"`
	ReasonCode    string          `json:"reason_code,omitempty"`
}

// MovementDetailResponse movimiento con sus líneas.
type MovementDetailResponse struct {
	MovementResponse
	Lines []MovementLineResponse `json:"lines"`
}
