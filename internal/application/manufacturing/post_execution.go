package manufacturing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/costing"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// PostExecution postea una terminación en draft: reclama el pool WIP de la orden,
// asigna el costo proporcionalmente entre las líneas de producto por cantidad
// canónica, crea las capas de costo destino y actualiza progreso y agregados.
func (uc *PostingUseCase) PostExecution(ctx context.Context, companyID, userID, executionID string) error {
	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		layerRepo repository.CostLayerRepository,
		woRepo repository.WorkOrderRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		exec, err := woRepo.GetExecutionForUpdate(ctx, executionID)
		if err != nil {
			return err
		}
		if exec == nil {
			return &domain.PostingError{Code: domain.CodeNotFound, EntityID: executionID, Detail: "terminación no encontrada"}
		}
		wo, err := woRepo.GetForUpdate(ctx, exec.WorkOrderID)
		if err != nil {
			return err
		}
		if wo == nil || wo.CompanyID != companyID {
			return &domain.PostingError{Code: domain.CodeNotFound, EntityID: exec.WorkOrderID, Detail: "orden no encontrada"}
		}
		return uc.postExecutionLocked(ctx, movRepo, layerRepo, woRepo, wo, exec, userID, now, false)
	})
}

// postExecutionLocked ejecuta la terminación con documento y orden bloqueados.
// completedInCall permite la terminación de un backflush de desensamble cuya
// emisión, en esta misma transacción, acaba de cerrar la orden.
func (uc *PostingUseCase) postExecutionLocked(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	layerRepo repository.CostLayerRepository,
	woRepo repository.WorkOrderRepository,
	wo *entity.WorkOrder,
	exec *entity.WorkOrderExecution,
	userID string,
	now time.Time,
	completedInCall bool,
) error {
	switch exec.Status {
	case entity.DocStatusPosted:
		return &domain.PostingError{Code: domain.CodeAlreadyPosted, EntityID: exec.ID, Detail: "terminación ya posteada"}
	case entity.DocStatusCanceled:
		return &domain.PostingError{Code: domain.CodeInvalidState, EntityID: exec.ID, Detail: "terminación cancelada"}
	}
	if wo.IsTerminal() && !(completedInCall && wo.Status == entity.WorkOrderStatusCompleted) {
		return &domain.PostingError{Code: domain.CodeInvalidState, EntityID: wo.ID, Detail: "orden en estado terminal"}
	}
	if len(exec.Lines) == 0 {
		return &domain.PostingError{Code: domain.CodeNoLines, EntityID: exec.ID}
	}

	// Validación y normalización de todas las líneas de producto.
	canon := make([]*entity.CanonicalQuantity, len(exec.Lines))
	canonicalQtys := make([]decimal.Decimal, len(exec.Lines))
	totalCanonicalOut := decimal.Zero
	for i, ln := range exec.Lines {
		if !ln.Quantity.GreaterThan(decimal.Zero) || ln.ToLocationID == "" {
			return &domain.PostingError{
				Code:      domain.CodeInvalidQuantity,
				EntityID:  exec.ID,
				ItemID:    ln.ItemID,
				Requested: ln.Quantity,
				Detail:    "línea de producto requiere qty > 0 y ubicación destino",
			}
		}
		if wo.Kind == entity.WorkOrderKindProduction && ln.ItemID != wo.OutputItemID {
			return &domain.PostingError{
				Code:     domain.CodeItemMismatch,
				EntityID: exec.ID,
				ItemID:   ln.ItemID,
				Detail:   "la línea no corresponde al ítem de salida declarado",
			}
		}
		cq, err := uc.normalizer.Normalize(ctx, wo.CompanyID, ln.ItemID, ln.Quantity, ln.UOM)
		if err != nil {
			return err
		}
		canon[i] = cq
		canonicalQtys[i] = cq.QtyCanonical
		totalCanonicalOut = totalCanonicalOut.Add(cq.QtyCanonical)
	}
	if !totalCanonicalOut.GreaterThan(decimal.Zero) {
		return &domain.PostingError{
			Code:      domain.CodeInvalidOutputQty,
			EntityID:  exec.ID,
			Requested: totalCanonicalOut,
			Detail:    "cantidad canónica total producida no positiva",
		}
	}

	movement := &entity.InventoryMovement{
		ID:          uuid.New().String(),
		CompanyID:   wo.CompanyID,
		Type:        entity.MovementTypeReceive,
		Status:      entity.MovementStatusPosted,
		OccurredAt:  exec.OccurredAt,
		PostedAt:    now,
		ExternalRef: exec.ID,
		Notes:       exec.Notes,
		CreatedBy:   userID,
	}
	if err := movRepo.Create(ctx, movement); err != nil {
		return err
	}

	// Reclamo atómico del pool WIP: otra terminación concurrente no puede volver
	// a reclamar estas filas.
	claim, err := uc.pool.Claim(ctx, layerRepo, wo.ID, exec.ID, now)
	if err != nil {
		return err
	}
	totalIssueCost := claim.TotalCost

	allocated, err := costing.AllocateProportional(totalIssueCost, canonicalQtys)
	if err != nil {
		return err
	}

	for i, ln := range exec.Lines {
		cq := canon[i]
		allocatedCost := allocated[i]
		// Costo por unidad capturada (línea del ledger) y por unidad canónica
		// (capa nueva); ambos extienden al mismo costo asignado.
		lineUnitCost := allocatedCost.Div(ln.Quantity)
		layerUnitCost := allocatedCost.Div(cq.QtyCanonical)

		if _, err := createLayer(ctx, layerRepo,
			wo.CompanyID, ln.ItemID, ln.ToLocationID, cq.CanonicalUOM,
			cq.QtyCanonical, layerUnitCost,
			entity.LayerSourceProduction, exec.ID, movement.ID, now); err != nil {
			return err
		}
		line := &entity.InventoryMovementLine{
			ID:            uuid.New().String(),
			MovementID:    movement.ID,
			ItemID:        ln.ItemID,
			LocationID:    ln.ToLocationID,
			QtyEntered:    cq.QtyEntered,
			UOMEntered:    cq.UOMEntered,
			QtyCanonical:  cq.QtyCanonical,
			CanonicalUOM:  cq.CanonicalUOM,
			Dimension:     cq.Dimension,
			QuantityDelta: cq.QtyCanonical,
			UnitCost:      lineUnitCost,
			ExtendedCost:  allocatedCost,
			ReasonCode:    ln.ReasonCode,
		}
		if err := movRepo.CreateLine(ctx, line); err != nil {
			return err
		}
	}

	// Agregados de costeo del documento.
	exec.Status = entity.DocStatusPosted
	exec.ProductionMovementID = movement.ID
	exec.WIPTotalCost = totalIssueCost
	exec.WIPUnitCost = totalIssueCost.Div(totalCanonicalOut)
	exec.WIPQuantityCanonical = totalCanonicalOut
	exec.WIPCostMethod = entity.WIPCostMethodFIFO
	exec.CostedAt = &now
	exec.PostedAt = &now
	if err := woRepo.MarkExecutionPosted(ctx, exec); err != nil {
		return err
	}

	// Los mismos totales ruedan acumulativamente al header de la orden.
	wo.WIPTotalCost = wo.WIPTotalCost.Add(totalIssueCost)
	wo.WIPQuantityCanonical = wo.WIPQuantityCanonical.Add(totalCanonicalOut)
	if wo.WIPQuantityCanonical.GreaterThan(decimal.Zero) {
		wo.WIPUnitCost = wo.WIPTotalCost.Div(wo.WIPQuantityCanonical)
	}
	wo.WIPCostMethod = entity.WIPCostMethodFIFO

	// Progreso: producción avanza por cantidad producida; desensamble avanza por
	// emisiones, no por terminaciones.
	if wo.Kind == entity.WorkOrderKindProduction {
		wo.QuantityCompleted = wo.QuantityCompleted.Add(totalCanonicalOut)
		planned, err := uc.plannedCanonical(ctx, wo)
		if err != nil {
			return err
		}
		if wo.QuantityCompleted.GreaterThanOrEqual(planned) {
			wo.Status = entity.WorkOrderStatusCompleted
			wo.CompletedAt = &now
		}
	}
	if wo.Status == entity.WorkOrderStatusDraft {
		wo.Status = entity.WorkOrderStatusInProgress
	}
	wo.UpdatedAt = now
	return woRepo.UpdateProgress(ctx, wo)
}
