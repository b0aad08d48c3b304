package repository

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// UOMConversionRepository puerto para la tabla de factores de conversión.
// GetFactor devuelve nil (sin error) cuando no hay factor registrado: la decisión
// de fallar duro es del normalizador, no del adaptador.
type UOMConversionRepository interface {
	Create(ctx context.Context, conv *entity.UOMConversion) error
	// GetFactor busca primero el factor de la empresa y luego el global.
	GetFactor(ctx context.Context, companyID, dimension, fromUOM, toUOM string) (*entity.UOMConversion, error)
	ListByDimension(ctx context.Context, companyID, dimension string) ([]*entity.UOMConversion, error)
}
