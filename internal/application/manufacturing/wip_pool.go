package manufacturing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// WIPPool abstracción explícita del pool de costo en proceso de una orden:
// consumos de capas emitidos a producción que ninguna terminación ha reclamado.
// El claim es un paso bloquear-y-marcar: dos terminaciones concurrentes jamás
// reclaman las mismas filas.
type WIPPool struct{}

// WIPClaim resultado de reclamar el pool completo de una orden.
type WIPClaim struct {
	Consumptions []*entity.CostLayerConsumption
	TotalCost    decimal.Decimal
}

// Claim selecciona FOR UPDATE los consumos sin reclamar de las emisiones
// posteadas de la orden, suma su extended_cost y los marca atómicamente con la
// ejecución. Pool vacío = NO_CONSUMPTIONS (no hay costo contra qué terminar).
func (WIPPool) Claim(
	ctx context.Context,
	layerRepo repository.CostLayerRepository,
	workOrderID, executionID string,
	now time.Time,
) (*WIPClaim, error) {
	unclaimed, err := layerRepo.UnclaimedForWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if len(unclaimed) == 0 {
		return nil, &domain.PostingError{
			Code:     domain.CodeNoConsumptions,
			EntityID: workOrderID,
			Detail:   "la orden no tiene consumos WIP sin reclamar",
		}
	}

	ids := make([]string, len(unclaimed))
	total := decimal.Zero
	for i, c := range unclaimed {
		ids[i] = c.ID
		total = total.Add(c.ExtendedCost)
	}

	marked, err := layerRepo.Claim(ctx, ids, executionID, now)
	if err != nil {
		return nil, err
	}
	// Las filas están bloqueadas desde la selección; un claim parcial solo puede
	// significar corrupción del pool.
	if marked != int64(len(ids)) {
		return nil, &domain.PostingError{
			Code:     domain.CodeNoConsumptions,
			EntityID: workOrderID,
			Detail:   "claim parcial del pool WIP",
		}
	}
	for _, c := range unclaimed {
		execID := executionID
		at := now
		c.WIPExecutionID = &execID
		c.WIPAllocatedAt = &at
	}
	return &WIPClaim{Consumptions: unclaimed, TotalCost: total}, nil
}
