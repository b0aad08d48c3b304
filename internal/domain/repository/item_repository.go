package repository

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// ItemRepository puerto de persistencia para ítems (DIP).
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Item, error)
}

// LocationRepository puerto de persistencia para ubicaciones.
type LocationRepository interface {
	Create(ctx context.Context, loc *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Location, error)
}
