// Package manufacturing implementa la máquina de estados de ejecución de órdenes
// de trabajo: posteo de emisiones de material, terminaciones y backflush, sobre
// el ledger de capas de costo FIFO. Cada posteo corre dentro de una transacción
// de base de datos; cualquier falla revierte la unidad completa.
package manufacturing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Commit solo si fn retorna nil; Rollback garantizado en
// cualquier otra salida. Es la única vía de mutación del motor.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		layerRepo repository.CostLayerRepository,
		woRepo repository.WorkOrderRepository,
		auditRepo repository.AuditLogRepository,
	) error) error
}

// QuantityNormalizer puerto del normalizador canónico (implementado en uom).
type QuantityNormalizer interface {
	Normalize(ctx context.Context, companyID, itemID string, signedQty decimal.Decimal, enteredUOM string) (*entity.CanonicalQuantity, error)
}
