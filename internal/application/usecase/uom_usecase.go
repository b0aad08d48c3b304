package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// UOMUseCase administra la tabla de factores de conversión. No hay factores
// implícitos: lo que no está registrado aquí hace fallar el posteo que lo necesite.
type UOMUseCase struct {
	repo repository.UOMConversionRepository
}

// NewUOMUseCase construye el caso de uso.
func NewUOMUseCase(repo repository.UOMConversionRepository) *UOMUseCase {
	return &UOMUseCase{repo: repo}
}

// Create registra un factor de conversión. Un factor de empresa sobreescribe al
// global de la misma tripleta (dimensión, from, to).
func (uc *UOMUseCase) Create(ctx context.Context, companyID string, in dto.CreateUOMConversionRequest) (*dto.UOMConversionResponse, error) {
	if !validDimension(in.Dimension) || in.FromUOM == "" || in.ToUOM == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Factor.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	owner := companyID
	if in.Global {
		owner = ""
	}
	conv := &entity.UOMConversion{
		ID:        uuid.New().String(),
		CompanyID: owner,
		Dimension: in.Dimension,
		FromUOM:   in.FromUOM,
		ToUOM:     in.ToUOM,
		Factor:    in.Factor,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return toUOMConversionResponse(conv), nil
}

// ListByDimension lista los factores visibles para la empresa en una dimensión
// (propios y globales).
func (uc *UOMUseCase) ListByDimension(ctx context.Context, companyID, dimension string) ([]dto.UOMConversionResponse, error) {
	if !validDimension(dimension) {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.repo.ListByDimension(ctx, companyID, dimension)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UOMConversionResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toUOMConversionResponse(c))
	}
	return out, nil
}

func toUOMConversionResponse(c *entity.UOMConversion) *dto.UOMConversionResponse {
	return &dto.UOMConversionResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Dimension: c.Dimension,
		FromUOM:   c.FromUOM,
		ToUOM:     c.ToUOM,
		Factor:    c.Factor,
	}
}
