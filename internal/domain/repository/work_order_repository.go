package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// WorkOrderRepository puerto de persistencia de órdenes de trabajo y sus
// documentos de ejecución. Los GetForUpdate bloquean el header del documento
// para serializar posteos concurrentes del mismo documento.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *entity.WorkOrder) error
	GetByID(ctx context.Context, id string) (*entity.WorkOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error)
	// UpdateProgress persiste status, quantity_completed, agregados WIP y completed_at.
	UpdateProgress(ctx context.Context, wo *entity.WorkOrder) error
	ListByCompany(ctx context.Context, companyID string, status string, limit, offset int) ([]*entity.WorkOrder, error)

	CreateIssue(ctx context.Context, issue *entity.WorkOrderMaterialIssue) error
	GetIssueByID(ctx context.Context, id string) (*entity.WorkOrderMaterialIssue, error)
	GetIssueForUpdate(ctx context.Context, id string) (*entity.WorkOrderMaterialIssue, error)
	// MarkIssuePosted fija status=posted, el movimiento vinculado y posted_at.
	MarkIssuePosted(ctx context.Context, issueID, movementID string, postedAt time.Time) error
	MarkIssueCanceled(ctx context.Context, issueID string) error
	ListIssuesByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.WorkOrderMaterialIssue, error)

	CreateExecution(ctx context.Context, exec *entity.WorkOrderExecution) error
	GetExecutionByID(ctx context.Context, id string) (*entity.WorkOrderExecution, error)
	GetExecutionForUpdate(ctx context.Context, id string) (*entity.WorkOrderExecution, error)
	// MarkExecutionPosted fija status=posted, movimientos, agregados WIP y costed_at.
	MarkExecutionPosted(ctx context.Context, exec *entity.WorkOrderExecution) error
	MarkExecutionCanceled(ctx context.Context, executionID string) error
	ListExecutionsByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.WorkOrderExecution, error)
}

// AuditLogRepository puerto append-only del registro de auditoría.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
}
