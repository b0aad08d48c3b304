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

// WorkOrderUseCase administra el ciclo de vida documental: creación de órdenes y
// de documentos draft, cancelación de drafts y consultas. El posteo es de
// PostingUseCase; aquí nada toca el ledger.
type WorkOrderUseCase struct {
	txRunner  TxRunner
	woRepo    repository.WorkOrderRepository
	itemRepo  repository.ItemRepository
	locRepo   repository.LocationRepository
	layerRepo repository.CostLayerRepository
}

// NewWorkOrderUseCase construye el caso de uso documental.
func NewWorkOrderUseCase(
	txRunner TxRunner,
	woRepo repository.WorkOrderRepository,
	itemRepo repository.ItemRepository,
	locRepo repository.LocationRepository,
	layerRepo repository.CostLayerRepository,
) *WorkOrderUseCase {
	return &WorkOrderUseCase{txRunner: txRunner, woRepo: woRepo, itemRepo: itemRepo, locRepo: locRepo, layerRepo: layerRepo}
}

// CreateWorkOrderInput datos para crear una orden en draft.
type CreateWorkOrderInput struct {
	Code            string
	Kind            string // production | disassembly
	BOMID           string // requerido en production
	BOMVersionID    string
	OutputItemID    string
	OutputUOM       string
	QuantityPlanned decimal.Decimal
	Notes           string
}

// CreateWorkOrder crea una orden en draft validando clase, ítem de salida y
// cantidad planificada. No resuelve BOM: este motor solo ejecuta lo que recibe.
func (uc *WorkOrderUseCase) CreateWorkOrder(ctx context.Context, companyID, userID string, in CreateWorkOrderInput) (*entity.WorkOrder, error) {
	if in.Kind != entity.WorkOrderKindProduction && in.Kind != entity.WorkOrderKindDisassembly {
		return nil, domain.ErrInvalidInput
	}
	if !in.QuantityPlanned.GreaterThan(decimal.Zero) || in.OutputItemID == "" || in.OutputUOM == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Kind == entity.WorkOrderKindProduction && in.BOMID == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(ctx, in.OutputItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	wo := &entity.WorkOrder{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		Code:            in.Code,
		Status:          entity.WorkOrderStatusDraft,
		Kind:            in.Kind,
		BOMID:           in.BOMID,
		BOMVersionID:    in.BOMVersionID,
		OutputItemID:    in.OutputItemID,
		OutputUOM:       in.OutputUOM,
		QuantityPlanned: in.QuantityPlanned,
		WIPCostMethod:   entity.WIPCostMethodFIFO,
		Notes:           in.Notes,
		CreatedBy:       userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.woRepo.Create(ctx, wo); err != nil {
		return nil, err
	}
	return wo, nil
}

// IssueLineInput línea para un documento de emisión draft.
type IssueLineInput struct {
	ComponentItemID string
	UOM             string
	Quantity        decimal.Decimal
	FromLocationID  string
	ReasonCode      string
}

// CreateIssue crea un documento de emisión en draft contra una orden viva.
func (uc *WorkOrderUseCase) CreateIssue(ctx context.Context, companyID, userID, workOrderID string, occurredAt time.Time, notes string, lines []IssueLineInput) (*entity.WorkOrderMaterialIssue, error) {
	if len(lines) == 0 {
		return nil, &domain.PostingError{Code: domain.CodeNoLines, EntityID: workOrderID}
	}
	wo, err := uc.ownedWorkOrder(ctx, companyID, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo.IsTerminal() {
		return nil, &domain.PostingError{Code: domain.CodeInvalidState, EntityID: wo.ID, Detail: "orden en estado terminal"}
	}

	now := time.Now()
	if occurredAt.IsZero() {
		occurredAt = now
	}
	issue := &entity.WorkOrderMaterialIssue{
		ID:          uuid.New().String(),
		WorkOrderID: wo.ID,
		Status:      entity.DocStatusDraft,
		OccurredAt:  occurredAt,
		Notes:       notes,
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	for _, ln := range lines {
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
	if err := uc.createIssueTx(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (uc *WorkOrderUseCase) createIssueTx(ctx context.Context, issue *entity.WorkOrderMaterialIssue) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.CostLayerRepository,
		woRepo repository.WorkOrderRepository,
		_ repository.AuditLogRepository,
	) error {
		return woRepo.CreateIssue(ctx, issue)
	})
}

// ExecutionLineInput línea de producto para una terminación draft.
type ExecutionLineInput struct {
	ItemID       string
	UOM          string
	Quantity     decimal.Decimal
	PackSize     decimal.Decimal
	ToLocationID string
	ReasonCode   string
}

// CreateExecution crea un documento de terminación en draft contra una orden viva.
func (uc *WorkOrderUseCase) CreateExecution(ctx context.Context, companyID, userID, workOrderID string, occurredAt time.Time, notes string, lines []ExecutionLineInput) (*entity.WorkOrderExecution, error) {
	if len(lines) == 0 {
		return nil, &domain.PostingError{Code: domain.CodeNoLines, EntityID: workOrderID}
	}
	wo, err := uc.ownedWorkOrder(ctx, companyID, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo.IsTerminal() {
		return nil, &domain.PostingError{Code: domain.CodeInvalidState, EntityID: wo.ID, Detail: "orden en estado terminal"}
	}

	now := time.Now()
	if occurredAt.IsZero() {
		occurredAt = now
	}
	exec := &entity.WorkOrderExecution{
		ID:          uuid.New().String(),
		WorkOrderID: wo.ID,
		Status:      entity.DocStatusDraft,
		OccurredAt:  occurredAt,
		Notes:       notes,
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	for _, ln := range lines {
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
	err = uc.txRunner.Run(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.CostLayerRepository,
		woRepo repository.WorkOrderRepository,
		_ repository.AuditLogRepository,
	) error {
		return woRepo.CreateExecution(ctx, exec)
	})
	if err != nil {
		return nil, err
	}
	return exec, nil
}

// CancelIssue cancela una emisión solo si sigue en draft; posteado es inmutable.
func (uc *WorkOrderUseCase) CancelIssue(ctx context.Context, companyID, issueID string) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.CostLayerRepository,
		woRepo repository.WorkOrderRepository,
		_ repository.AuditLogRepository,
	) error {
		issue, err := woRepo.GetIssueForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		if issue == nil {
			return &domain.PostingError{Code: domain.CodeNotFound, EntityID: issueID}
		}
		if _, err := uc.ownedWorkOrder(ctx, companyID, issue.WorkOrderID); err != nil {
			return err
		}
		if issue.Status != entity.DocStatusDraft {
			return &domain.PostingError{Code: domain.CodeInvalidState, EntityID: issueID, Detail: "solo drafts se cancelan; lo posteado se corrige con contra-asiento"}
		}
		return woRepo.MarkIssueCanceled(ctx, issueID)
	})
}

// CancelExecution cancela una terminación solo si sigue en draft.
func (uc *WorkOrderUseCase) CancelExecution(ctx context.Context, companyID, executionID string) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.CostLayerRepository,
		woRepo repository.WorkOrderRepository,
		_ repository.AuditLogRepository,
	) error {
		exec, err := woRepo.GetExecutionForUpdate(ctx, executionID)
		if err != nil {
			return err
		}
		if exec == nil {
			return &domain.PostingError{Code: domain.CodeNotFound, EntityID: executionID}
		}
		if _, err := uc.ownedWorkOrder(ctx, companyID, exec.WorkOrderID); err != nil {
			return err
		}
		if exec.Status != entity.DocStatusDraft {
			return &domain.PostingError{Code: domain.CodeInvalidState, EntityID: executionID, Detail: "solo drafts se cancelan"}
		}
		return woRepo.MarkExecutionCanceled(ctx, executionID)
	})
}

// WorkOrderDetail orden con sus documentos de ejecución.
type WorkOrderDetail struct {
	WorkOrder  *entity.WorkOrder
	Issues     []*entity.WorkOrderMaterialIssue
	Executions []*entity.WorkOrderExecution
}

// GetWorkOrder devuelve la orden con documentos, validando tenencia.
func (uc *WorkOrderUseCase) GetWorkOrder(ctx context.Context, companyID, id string) (*WorkOrderDetail, error) {
	wo, err := uc.ownedWorkOrder(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	issues, err := uc.woRepo.ListIssuesByWorkOrder(ctx, wo.ID)
	if err != nil {
		return nil, err
	}
	executions, err := uc.woRepo.ListExecutionsByWorkOrder(ctx, wo.ID)
	if err != nil {
		return nil, err
	}
	return &WorkOrderDetail{WorkOrder: wo, Issues: issues, Executions: executions}, nil
}

// ListWorkOrders lista órdenes de la empresa, opcionalmente por estado.
func (uc *WorkOrderUseCase) ListWorkOrders(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.WorkOrder, error) {
	return uc.woRepo.ListByCompany(ctx, companyID, status, limit, offset)
}

// OnHand saldo disponible (suma de remaining de capas) de un ítem en una ubicación.
func (uc *WorkOrderUseCase) OnHand(ctx context.Context, companyID, itemID, locationID string) (decimal.Decimal, error) {
	return uc.layerRepo.OnHand(ctx, companyID, itemID, locationID)
}

// UnclaimedWIP pool WIP sin reclamar de una orden: filas y costo total.
func (uc *WorkOrderUseCase) UnclaimedWIP(ctx context.Context, companyID, workOrderID string) ([]*entity.CostLayerConsumption, decimal.Decimal, error) {
	if _, err := uc.ownedWorkOrder(ctx, companyID, workOrderID); err != nil {
		return nil, decimal.Zero, err
	}
	rows, err := uc.layerRepo.ListUnclaimedByWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	for _, c := range rows {
		total = total.Add(c.ExtendedCost)
	}
	return rows, total, nil
}

// ownedWorkOrder carga la orden y valida que pertenezca a la empresa.
func (uc *WorkOrderUseCase) ownedWorkOrder(ctx context.Context, companyID, id string) (*entity.WorkOrder, error) {
	wo, err := uc.woRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil || wo.CompanyID != companyID {
		return nil, &domain.PostingError{Code: domain.CodeNotFound, EntityID: id, Detail: "orden no encontrada"}
	}
	return wo, nil
}
