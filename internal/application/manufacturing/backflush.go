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

// BackflushIssueLine componente a consumir en un posteo backflush.
type BackflushIssueLine struct {
	ComponentItemID string
	UOM             string
	Quantity        decimal.Decimal
	FromLocationID  string
	ReasonCode      string
}

// BackflushOutputLine producto a recibir en un posteo backflush.
type BackflushOutputLine struct {
	ItemID       string
	UOM          string
	Quantity     decimal.Decimal
	PackSize     decimal.Decimal
	ToLocationID string
	ReasonCode   string
}

// BackflushInput emisión y terminación en una sola llamada atómica.
type BackflushInput struct {
	WorkOrderID string
	OccurredAt  time.Time
	Notes       string
	Issues      []BackflushIssueLine
	Outputs     []BackflushOutputLine
	Override    OverrideContext
}

// BackflushResult ids de los documentos y movimientos creados.
type BackflushResult struct {
	IssueID               string
	ExecutionID           string
	ConsumptionMovementID string
	ProductionMovementID  string
}

// PostBackflush registra consumo y producción juntos: dos movimientos, una
// transacción, sin documentos draft intermedios. Mismas reglas de asignación y
// conservación que el flujo de dos pasos; solo cambia la granularidad documental.
func (uc *PostingUseCase) PostBackflush(ctx context.Context, companyID, userID string, input BackflushInput) (*BackflushResult, error) {
	if len(input.Issues) == 0 || len(input.Outputs) == 0 {
		return nil, &domain.PostingError{Code: domain.CodeNoLines, EntityID: input.WorkOrderID, Detail: "backflush requiere líneas de consumo y de producto"}
	}
	now := time.Now()
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	result := &BackflushResult{}
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		layerRepo repository.CostLayerRepository,
		woRepo repository.WorkOrderRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		wo, err := woRepo.GetForUpdate(ctx, input.WorkOrderID)
		if err != nil {
			return err
		}
		if wo == nil || wo.CompanyID != companyID {
			return &domain.PostingError{Code: domain.CodeNotFound, EntityID: input.WorkOrderID, Detail: "orden no encontrada"}
		}
		if wo.IsTerminal() {
			return &domain.PostingError{Code: domain.CodeInvalidState, EntityID: wo.ID, Detail: "orden en estado terminal"}
		}

		issue := &entity.WorkOrderMaterialIssue{
			ID:          uuid.New().String(),
			WorkOrderID: wo.ID,
			Status:      entity.DocStatusDraft,
			OccurredAt:  occurredAt,
			Notes:       input.Notes,
			CreatedBy:   userID,
			CreatedAt:   now,
		}
		for _, ln := range input.Issues {
			issue.Lines = append(issue.Lines, entity.WorkOrderMaterialIssueLine{
				ID:              uuid.New().String(),
				IssueID:         issue.ID,
				ComponentItemID: ln.ComponentItemID,
				UOM:             ln.UOM,
				QuantityIssued:  ln.Quantity,
				FromLocationID:  ln.FromLocationID,
				ReasonCode:      ln.ReasonCode,
			})
		}
		if err := woRepo.CreateIssue(ctx, issue); err != nil {
			return err
		}
		consumptionMovID, err := uc.postIssueLocked(ctx, movRepo, layerRepo, woRepo, auditRepo, wo, issue, userID, input.Override, now)
		if err != nil {
			return err
		}
		// En desensamble la emisión puede cerrar la orden dentro de esta misma
		// llamada; la terminación del propio backflush sigue siendo válida.
		completedInCall := wo.Status == entity.WorkOrderStatusCompleted

		exec := &entity.WorkOrderExecution{
			ID:                    uuid.New().String(),
			WorkOrderID:           wo.ID,
			Status:                entity.DocStatusDraft,
			OccurredAt:            occurredAt,
			ConsumptionMovementID: consumptionMovID,
			Notes:                 input.Notes,
			CreatedBy:             userID,
			CreatedAt:             now,
		}
		for _, ln := range input.Outputs {
			exec.Lines = append(exec.Lines, entity.WorkOrderExecutionLine{
				ID:           uuid.New().String(),
				ExecutionID:  exec.ID,
				ItemID:       ln.ItemID,
				UOM:          ln.UOM,
				Quantity:     ln.Quantity,
				PackSize:     ln.PackSize,
				ToLocationID: ln.ToLocationID,
				ReasonCode:   ln.ReasonCode,
			})
		}
		if err := woRepo.CreateExecution(ctx, exec); err != nil {
			return err
		}
		if err := uc.postExecutionLocked(ctx, movRepo, layerRepo, woRepo, wo, exec, userID, now, completedInCall); err != nil {
			return err
		}

		result.IssueID = issue.ID
		result.ExecutionID = exec.ID
		result.ConsumptionMovementID = consumptionMovID
		result.ProductionMovementID = exec.ProductionMovementID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
