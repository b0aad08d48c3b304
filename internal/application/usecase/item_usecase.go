package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD para ítems manufacturables y consumibles.
type ItemUseCase struct {
	repo repository.ItemRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{repo: repo}
}

// Create crea un ítem nuevo. El SKU es único por empresa y la unidad canónica
// queda fijada aquí: todo posteo posterior se normaliza hacia ella.
func (uc *ItemUseCase) Create(ctx context.Context, companyID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if !validDimension(in.UOMDimension) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCompanyAndSKU(ctx, companyID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	defaultUOM := in.DefaultUOM
	if defaultUOM == "" {
		defaultUOM = in.CanonicalUOM
	}
	now := time.Now()
	item := &entity.Item{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		UOMDimension: in.UOMDimension,
		CanonicalUOM: in.CanonicalUOM,
		DefaultUOM:   defaultUOM,
		StandardCost: in.StandardCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem por ID validando tenencia.
func (uc *ItemUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CompanyID != companyID {
		return nil, nil
	}
	return toItemResponse(item), nil
}

// List lista ítems de la empresa con paginación.
func (uc *ItemUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]dto.ItemResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return items, nil
}

func validDimension(d string) bool {
	switch d {
	case entity.DimensionMass, entity.DimensionVolume, entity.DimensionCount, entity.DimensionLength:
		return true
	}
	return false
}

func toItemResponse(item *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:           item.ID,
		CompanyID:    item.CompanyID,
		SKU:          item.SKU,
		Name:         item.Name,
		Description:  item.Description,
		UOMDimension: item.UOMDimension,
		CanonicalUOM: item.CanonicalUOM,
		DefaultUOM:   item.DefaultUOM,
		StandardCost: item.StandardCost,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}
