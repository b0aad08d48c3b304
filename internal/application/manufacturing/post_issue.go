package manufacturing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// PostingUseCase máquina de estados de posteo: emisiones, terminaciones y
// backflush. Orquesta normalizador, guard de stock, ledger de capas y pool WIP
// dentro de una transacción por posteo.
type PostingUseCase struct {
	txRunner   TxRunner
	normalizer QuantityNormalizer
	guard      StockGuard
	pool       WIPPool
}

// NewPostingUseCase construye el caso de uso de posteo.
func NewPostingUseCase(txRunner TxRunner, normalizer QuantityNormalizer) *PostingUseCase {
	return &PostingUseCase{txRunner: txRunner, normalizer: normalizer}
}

// PostMaterialIssue postea una emisión de material en draft: chequea suficiencia,
// consume capas FIFO por línea, escribe el movimiento issue y actualiza el
// progreso de la orden. Todo dentro de una transacción; si algo falla el
// documento queda en draft para reintento.
func (uc *PostingUseCase) PostMaterialIssue(ctx context.Context, companyID, userID, issueID string, override OverrideContext) error {
	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		layerRepo repository.CostLayerRepository,
		woRepo repository.WorkOrderRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		issue, wo, err := uc.lockIssue(ctx, woRepo, companyID, issueID)
		if err != nil {
			return err
		}
		_, err = uc.postIssueLocked(ctx, movRepo, layerRepo, woRepo, auditRepo, wo, issue, userID, override, now)
		return err
	})
}

// lockIssue carga y bloquea el documento y su orden, validando tenencia y estado.
func (uc *PostingUseCase) lockIssue(
	ctx context.Context,
	woRepo repository.WorkOrderRepository,
	companyID, issueID string,
) (*entity.WorkOrderMaterialIssue, *entity.WorkOrder, error) {
	issue, err := woRepo.GetIssueForUpdate(ctx, issueID)
	if err != nil {
		return nil, nil, err
	}
	if issue == nil {
		return nil, nil, &domain.PostingError{Code: domain.CodeNotFound, EntityID: issueID, Detail: "emisión no encontrada"}
	}
	wo, err := woRepo.GetForUpdate(ctx, issue.WorkOrderID)
	if err != nil {
		return nil, nil, err
	}
	if wo == nil || wo.CompanyID != companyID {
		return nil, nil, &domain.PostingError{Code: domain.CodeNotFound, EntityID: issue.WorkOrderID, Detail: "orden no encontrada"}
	}
	return issue, wo, nil
}

// postIssueLocked ejecuta el posteo con documento y orden ya bloqueados.
// Devuelve el id del movimiento creado (lo reutiliza el backflush).
func (uc *PostingUseCase) postIssueLocked(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	layerRepo repository.CostLayerRepository,
	woRepo repository.WorkOrderRepository,
	auditRepo repository.AuditLogRepository,
	wo *entity.WorkOrder,
	issue *entity.WorkOrderMaterialIssue,
	userID string,
	override OverrideContext,
	now time.Time,
) (string, error) {
	switch issue.Status {
	case entity.DocStatusPosted:
		return "", &domain.PostingError{Code: domain.CodeAlreadyPosted, EntityID: issue.ID, Detail: "emisión ya posteada"}
	case entity.DocStatusCanceled:
		return "", &domain.PostingError{Code: domain.CodeInvalidState, EntityID: issue.ID, Detail: "emisión cancelada"}
	}
	if wo.IsTerminal() {
		return "", &domain.PostingError{Code: domain.CodeInvalidState, EntityID: wo.ID, Detail: "orden en estado terminal"}
	}
	if len(issue.Lines) == 0 {
		return "", &domain.PostingError{Code: domain.CodeNoLines, EntityID: issue.ID}
	}

	// Normalizar todas las líneas antes de tocar el ledger.
	canon := make([]*entity.CanonicalQuantity, len(issue.Lines))
	guardLines := make([]GuardLine, len(issue.Lines))
	for i, ln := range issue.Lines {
		if !ln.QuantityIssued.GreaterThan(decimal.Zero) || ln.FromLocationID == "" {
			return "", &domain.PostingError{
				Code:      domain.CodeInvalidQuantity,
				EntityID:  issue.ID,
				ItemID:    ln.ComponentItemID,
				Requested: ln.QuantityIssued,
				Detail:    "línea de emisión requiere qty > 0 y ubicación origen",
			}
		}
		// En desensamble el "componente" emitido es el ítem de salida de la orden.
		if wo.Kind == entity.WorkOrderKindDisassembly && ln.ComponentItemID != wo.OutputItemID {
			return "", &domain.PostingError{
				Code:     domain.CodeDisassemblyInputMismatch,
				EntityID: issue.ID,
				ItemID:   ln.ComponentItemID,
				Detail:   "desensamble solo emite el ítem de salida de la orden",
			}
		}
		cq, err := uc.normalizer.Normalize(ctx, wo.CompanyID, ln.ComponentItemID, ln.QuantityIssued, ln.UOM)
		if err != nil {
			return "", err
		}
		canon[i] = cq
		guardLines[i] = GuardLine{
			ItemID:       ln.ComponentItemID,
			LocationID:   ln.FromLocationID,
			UOM:          cq.CanonicalUOM,
			QtyCanonical: cq.QtyCanonical,
		}
	}

	overrideMeta, err := uc.guard.Check(ctx, movRepo, wo.CompanyID, issue.OccurredAt, guardLines, override)
	if err != nil {
		return "", err
	}

	var metadata json.RawMessage
	if overrideMeta != nil {
		if metadata, err = overrideMeta.MarshalMetadata(); err != nil {
			return "", err
		}
	}

	movement := &entity.InventoryMovement{
		ID:          uuid.New().String(),
		CompanyID:   wo.CompanyID,
		Type:        entity.MovementTypeIssue,
		Status:      entity.MovementStatusPosted,
		OccurredAt:  issue.OccurredAt,
		PostedAt:    now,
		ExternalRef: issue.ID,
		Metadata:    metadata,
		Notes:       issue.Notes,
		CreatedBy:   userID,
	}
	if err := movRepo.Create(ctx, movement); err != nil {
		return "", err
	}

	disassemblyIssued := decimal.Zero
	for i, ln := range issue.Lines {
		cq := canon[i]
		result, err := consumeLayers(ctx, layerRepo,
			wo.CompanyID, ln.ComponentItemID, ln.FromLocationID,
			cq.QtyCanonical, entity.ConsumptionTypeProductionInput, issue.ID, movement.ID, now)
		if err != nil {
			return "", err
		}
		unitCost := decimal.Zero
		if cq.QtyCanonical.GreaterThan(decimal.Zero) {
			unitCost = result.TotalCost.Div(cq.QtyCanonical)
		}
		line := &entity.InventoryMovementLine{
			ID:            uuid.New().String(),
			MovementID:    movement.ID,
			ItemID:        ln.ComponentItemID,
			LocationID:    ln.FromLocationID,
			QtyEntered:    cq.QtyEntered,
			UOMEntered:    cq.UOMEntered,
			QtyCanonical:  cq.QtyCanonical,
			CanonicalUOM:  cq.CanonicalUOM,
			Dimension:     cq.Dimension,
			QuantityDelta: cq.QtyCanonical.Neg(),
			UnitCost:      unitCost,
			ExtendedCost:  result.TotalCost.Neg(),
			ReasonCode:    ln.ReasonCode,
		}
		if err := movRepo.CreateLine(ctx, line); err != nil {
			return "", err
		}
		if wo.Kind == entity.WorkOrderKindDisassembly {
			disassemblyIssued = disassemblyIssued.Add(cq.QtyCanonical)
		}
	}

	if err := woRepo.MarkIssuePosted(ctx, issue.ID, movement.ID, now); err != nil {
		return "", err
	}
	issue.Status = entity.DocStatusPosted
	issue.InventoryMovementID = movement.ID
	issue.PostedAt = &now

	if overrideMeta != nil {
		if err := uc.writeOverrideAudit(ctx, auditRepo, wo.CompanyID, issue.ID, overrideMeta, now); err != nil {
			return "", err
		}
	}

	// Progreso: en producción las emisiones no avanzan quantity_completed; en
	// desensamble el ítem emitido ES la salida de la orden, así que sí avanza y
	// puede cerrar la orden. Asimetría deliberada del comportamiento observado.
	if wo.Kind == entity.WorkOrderKindDisassembly {
		wo.QuantityCompleted = wo.QuantityCompleted.Add(disassemblyIssued)
		planned, err := uc.plannedCanonical(ctx, wo)
		if err != nil {
			return "", err
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
	if err := woRepo.UpdateProgress(ctx, wo); err != nil {
		return "", err
	}
	return movement.ID, nil
}

// plannedCanonical expresa quantity_planned (capturada en OutputUOM) en la unidad
// canónica del ítem de salida, para comparar progreso en una base homogénea.
func (uc *PostingUseCase) plannedCanonical(ctx context.Context, wo *entity.WorkOrder) (decimal.Decimal, error) {
	cq, err := uc.normalizer.Normalize(ctx, wo.CompanyID, wo.OutputItemID, wo.QuantityPlanned, wo.OutputUOM)
	if err != nil {
		return decimal.Zero, err
	}
	return cq.QtyCanonical, nil
}

// writeOverrideAudit deja la entrada de auditoría obligatoria de un override.
func (uc *PostingUseCase) writeOverrideAudit(
	ctx context.Context,
	auditRepo repository.AuditLogRepository,
	companyID, entityID string,
	meta *OverrideMetadata,
	now time.Time,
) error {
	detail, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return auditRepo.Create(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		ActorID:    meta.ActorID,
		ActorRole:  meta.ActorRole,
		Action:     entity.AuditActionStockOverride,
		EntityType: "work_order_material_issue",
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  now,
	})
}
