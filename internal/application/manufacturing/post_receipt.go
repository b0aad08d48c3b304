package manufacturing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// ReceiptLine entrada valorizada de inventario: crea una capa de costo nueva.
type ReceiptLine struct {
	ItemID     string
	LocationID string
	UOM        string
	Quantity   decimal.Decimal // > 0, en la UOM capturada
	UnitCost   decimal.Decimal // >= 0, por unidad capturada
	ReasonCode string
}

// ReceiptInput recepción de inventario (compra, saldo inicial o ajuste positivo).
type ReceiptInput struct {
	OccurredAt  time.Time
	ExternalRef string
	SourceType  string // ver constantes LayerSource*; vacío = purchase_receipt
	Notes       string
	Lines       []ReceiptLine
}

// PostReceipt postea una recepción: un movimiento receive y una capa de costo
// nueva por línea. Las capas nacen con remaining = qty y nunca se editan después.
func (uc *PostingUseCase) PostReceipt(ctx context.Context, companyID, userID string, input ReceiptInput) (string, error) {
	if len(input.Lines) == 0 {
		return "", &domain.PostingError{Code: domain.CodeNoLines, Detail: "recepción sin líneas"}
	}
	sourceType := input.SourceType
	if sourceType == "" {
		sourceType = entity.LayerSourcePurchaseReceipt
	}
	now := time.Now()
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	var movementID string
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		layerRepo repository.CostLayerRepository,
		woRepo repository.WorkOrderRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		movement := &entity.InventoryMovement{
			ID:          uuid.New().String(),
			CompanyID:   companyID,
			Type:        entity.MovementTypeReceive,
			Status:      entity.MovementStatusPosted,
			OccurredAt:  occurredAt,
			PostedAt:    now,
			ExternalRef: input.ExternalRef,
			Notes:       input.Notes,
			CreatedBy:   userID,
		}
		if err := movRepo.Create(ctx, movement); err != nil {
			return err
		}
		for _, ln := range input.Lines {
			if !ln.Quantity.GreaterThan(decimal.Zero) || ln.UnitCost.LessThan(decimal.Zero) || ln.LocationID == "" {
				return &domain.PostingError{
					Code:      domain.CodeInvalidQuantity,
					ItemID:    ln.ItemID,
					Requested: ln.Quantity,
					Detail:    "línea de recepción requiere qty > 0, unit_cost >= 0 y ubicación",
				}
			}
			cq, err := uc.normalizer.Normalize(ctx, companyID, ln.ItemID, ln.Quantity, ln.UOM)
			if err != nil {
				return err
			}
			extended := ln.Quantity.Mul(ln.UnitCost)
			// La capa vive en unidad canónica; su costo unitario se re-expresa
			// para que extienda al mismo valor recibido.
			layerUnitCost := extended.Div(cq.QtyCanonical)
			if _, err := createLayer(ctx, layerRepo,
				companyID, ln.ItemID, ln.LocationID, cq.CanonicalUOM,
				cq.QtyCanonical, layerUnitCost,
				sourceType, input.ExternalRef, movement.ID, now); err != nil {
				return err
			}
			line := &entity.InventoryMovementLine{
				ID:            uuid.New().String(),
				MovementID:    movement.ID,
				ItemID:        ln.ItemID,
				LocationID:    ln.LocationID,
				QtyEntered:    cq.QtyEntered,
				UOMEntered:    cq.UOMEntered,
				QtyCanonical:  cq.QtyCanonical,
				CanonicalUOM:  cq.CanonicalUOM,
				Dimension:     cq.Dimension,
				QuantityDelta: cq.QtyCanonical,
				UnitCost:      ln.UnitCost,
				ExtendedCost:  extended,
				ReasonCode:    ln.ReasonCode,
			}
			if err := movRepo.CreateLine(ctx, line); err != nil {
				return err
			}
		}
		movementID = movement.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return movementID, nil
}
