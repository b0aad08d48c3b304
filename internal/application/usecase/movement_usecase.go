package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// MovementUseCase consultas de solo lectura sobre el ledger de movimientos.
// Los movimientos son inmutables: aquí no hay ninguna operación de escritura.
type MovementUseCase struct {
	movRepo  repository.InventoryMovementRepository
	itemRepo repository.ItemRepository
	locRepo  repository.LocationRepository
}

// NewMovementUseCase construye el caso de uso de consulta.
func NewMovementUseCase(
	movRepo repository.InventoryMovementRepository,
	itemRepo repository.ItemRepository,
	locRepo repository.LocationRepository,
) *MovementUseCase {
	return &MovementUseCase{movRepo: movRepo, itemRepo: itemRepo, locRepo: locRepo}
}

// GetByID devuelve un movimiento con sus líneas, validando tenencia.
func (uc *MovementUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.MovementDetailResponse, error) {
	mov, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil || mov.CompanyID != companyID {
		return nil, nil
	}
	lines, err := uc.movRepo.ListLines(ctx, mov.ID)
	if err != nil {
		return nil, err
	}
	detail := &dto.MovementDetailResponse{MovementResponse: *toMovementResponse(mov)}
	for _, ln := range lines {
		detail.Lines = append(detail.Lines, dto.MovementLineResponse{
			ID:            ln.ID,
			ItemID:        ln.ItemID,
			LocationID:    ln.LocationID,
			QtyEntered:    ln.QtyEntered,
			UOMEntered:    ln.UOMEntered,
			QtyCanonical:  ln.QtyCanonical,
			CanonicalUOM:  ln.CanonicalUOM,
			QuantityDelta: ln.QuantityDelta,
			UnitCost:      ln.UnitCost,
			ExtendedCost:  ln.ExtendedCost,
			ReasonCode:    ln.ReasonCode,
		})
	}
	return detail, nil
}

// ListByItem lista movimientos que tocan un ítem de la empresa, acotados en fecha.
func (uc *MovementUseCase) ListByItem(ctx context.Context, companyID, itemID string, from, to *time.Time, limit, offset int) ([]dto.MovementResponse, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.movRepo.ListByItem(ctx, itemID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

// ListByLocation lista movimientos que tocan una ubicación de la empresa.
func (uc *MovementUseCase) ListByLocation(ctx context.Context, companyID, locationID string, from, to *time.Time, limit, offset int) ([]dto.MovementResponse, error) {
	loc, err := uc.locRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.movRepo.ListByLocation(ctx, locationID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

func toMovementResponse(m *entity.InventoryMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:          m.ID,
		Type:        m.Type,
		Status:      m.Status,
		OccurredAt:  m.OccurredAt,
		PostedAt:    m.PostedAt,
		ExternalRef: m.ExternalRef,
		Notes:       m.Notes,
		CreatedBy:   m.CreatedBy,
	}
}

func toMovementResponses(list []*entity.InventoryMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, *toMovementResponse(m))
	}
	return out
}
