// Package costing contiene los servicios de dominio puros del costeo FIFO:
// el recorrido de capas y la asignación proporcional de costo WIP. No toca
// persistencia; opera sobre snapshots ya bloqueados por el caller.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// LayerDraw consumo planificado contra una capa: cuánto se toma y a qué costo.
type LayerDraw struct {
	Layer        *entity.CostLayer
	ConsumedQty  decimal.Decimal
	ExtendedCost decimal.Decimal // ConsumedQty * Layer.UnitCost
}

// PlanFIFO recorre las capas candidatas (ya ordenadas por created_at ASC, id ASC
// y bloqueadas por el caller) consumiendo min(remaining, faltante) de cada una
// hasta satisfacer requested.
//
// Si el total disponible es menor que requested devuelve INSUFFICIENT_COST_LAYERS
// sin draws parciales: el caller no debe persistir nada. Nunca planifica un
// remaining negativo.
func PlanFIFO(layers []*entity.CostLayer, requested decimal.Decimal) ([]LayerDraw, decimal.Decimal, error) {
	if !requested.GreaterThan(decimal.Zero) {
		return nil, decimal.Zero, &domain.PostingError{
			Code:      domain.CodeInvalidQuantity,
			Requested: requested,
			Detail:    "la cantidad a consumir debe ser positiva",
		}
	}

	draws := make([]LayerDraw, 0, len(layers))
	still := requested
	total := decimal.Zero

	for _, layer := range layers {
		if !still.GreaterThan(decimal.Zero) {
			break
		}
		if !layer.QuantityRemaining.GreaterThan(decimal.Zero) {
			continue
		}
		take := decimal.Min(layer.QuantityRemaining, still)
		cost := take.Mul(layer.UnitCost)
		draws = append(draws, LayerDraw{Layer: layer, ConsumedQty: take, ExtendedCost: cost})
		total = total.Add(cost)
		still = still.Sub(take)
	}

	if still.GreaterThan(decimal.Zero) {
		available := requested.Sub(still)
		return nil, decimal.Zero, &domain.PostingError{
			Code:      domain.CodeInsufficientCostLayers,
			Requested: requested,
			Available: available,
			Detail:    "capas de costo insuficientes para el consumo solicitado",
		}
	}
	return draws, total, nil
}
