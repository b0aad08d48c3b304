// Package uom implementa el normalizador de cantidades canónicas: convierte la
// cantidad capturada en cualquier unidad a la unidad canónica del ítem para que
// la asignación de costos compare cantidades realmente homogéneas.
package uom

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// Normalizer resuelve factores de conversión contra la tabla registrada.
type Normalizer struct {
	itemRepo repository.ItemRepository
	convRepo repository.UOMConversionRepository
}

// NewNormalizer construye el normalizador.
func NewNormalizer(itemRepo repository.ItemRepository, convRepo repository.UOMConversionRepository) *Normalizer {
	return &Normalizer{itemRepo: itemRepo, convRepo: convRepo}
}

// Normalize convierte (signedQty, enteredUOM) a la unidad canónica del ítem,
// preservando el signo. Falla con UOM_CONVERSION_NOT_FOUND si no existe factor
// directo ni inverso: nunca degrada a 1:1 en silencio, porque la asignación de
// WIP aguas abajo depende de que las cantidades canónicas sean comparables.
func (n *Normalizer) Normalize(ctx context.Context, companyID, itemID string, signedQty decimal.Decimal, enteredUOM string) (*entity.CanonicalQuantity, error) {
	item, err := n.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CompanyID != companyID {
		return nil, &domain.PostingError{Code: domain.CodeNotFound, EntityID: itemID, Detail: "ítem no encontrado"}
	}

	factor, err := n.resolveFactor(ctx, companyID, item.UOMDimension, enteredUOM, item.CanonicalUOM)
	if err != nil {
		return nil, err
	}
	if factor == nil {
		return nil, &domain.PostingError{
			Code:   domain.CodeUOMConversionNotFound,
			ItemID: itemID,
			UOM:    enteredUOM,
			Detail: "sin ruta de conversión hacia " + item.CanonicalUOM,
		}
	}

	return &entity.CanonicalQuantity{
		QtyEntered:   signedQty,
		UOMEntered:   enteredUOM,
		QtyCanonical: signedQty.Mul(*factor),
		CanonicalUOM: item.CanonicalUOM,
		Dimension:    item.UOMDimension,
	}, nil
}

// resolveFactor busca el factor entered→canonical: identidad, factor directo o
// el inverso del factor canonical→entered. nil = sin ruta.
func (n *Normalizer) resolveFactor(ctx context.Context, companyID, dimension, from, to string) (*decimal.Decimal, error) {
	if from == to {
		one := decimal.NewFromInt(1)
		return &one, nil
	}
	conv, err := n.convRepo.GetFactor(ctx, companyID, dimension, from, to)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		f := conv.Factor
		return &f, nil
	}
	inverse, err := n.convRepo.GetFactor(ctx, companyID, dimension, to, from)
	if err != nil {
		return nil, err
	}
	if inverse != nil && inverse.Factor.GreaterThan(decimal.Zero) {
		f := decimal.NewFromInt(1).Div(inverse.Factor)
		return &f, nil
	}
	return nil, nil
}
