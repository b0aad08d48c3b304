package manufacturing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/costing"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// maxConsumeLayers acota las capas candidatas bloqueadas por llamada, para
// acotar el tiempo de retención de locks. Superarlo es un error explícito,
// no una espera indefinida.
const maxConsumeLayers = 500

// consumeResult resultado de un consumo FIFO ya persistido.
type consumeResult struct {
	TotalCost    decimal.Decimal
	Consumptions []*entity.CostLayerConsumption
}

// consumeLayers consume requestedQty (canónica) de las capas del (ítem, ubicación)
// en orden FIFO estricto: selecciona y bloquea candidatas por created_at ASC con
// desempate por id, planifica el recorrido y persiste una fila de consumo más el
// decremento de remaining por cada capa tocada, todo en la tx del caller.
//
// Si lo disponible no alcanza, no persiste nada: el error revierte la tx completa.
func consumeLayers(
	ctx context.Context,
	layerRepo repository.CostLayerRepository,
	companyID, itemID, locationID string,
	requestedQty decimal.Decimal,
	consumptionType, consumptionDocumentID, movementID string,
	now time.Time,
) (*consumeResult, error) {
	layers, err := layerRepo.SelectForConsume(ctx, companyID, itemID, locationID, maxConsumeLayers+1)
	if err != nil {
		return nil, err
	}
	if len(layers) > maxConsumeLayers {
		return nil, &domain.PostingError{
			Code:       domain.CodeLayerScanLimit,
			ItemID:     itemID,
			LocationID: locationID,
			Requested:  requestedQty,
			Detail:     "demasiadas capas candidatas en una sola llamada",
		}
	}

	draws, total, err := costing.PlanFIFO(layers, requestedQty)
	if err != nil {
		if pe, ok := domain.AsPostingError(err); ok {
			pe.ItemID = itemID
			pe.LocationID = locationID
		}
		return nil, err
	}

	consumptions := make([]*entity.CostLayerConsumption, 0, len(draws))
	for _, draw := range draws {
		if err := layerRepo.DecrementRemaining(ctx, draw.Layer.ID, draw.ConsumedQty); err != nil {
			return nil, err
		}
		c := &entity.CostLayerConsumption{
			ID:                    uuid.New().String(),
			LayerID:               draw.Layer.ID,
			ConsumptionType:       consumptionType,
			ConsumptionDocumentID: consumptionDocumentID,
			MovementID:            movementID,
			ConsumedQty:           draw.ConsumedQty,
			ExtendedCost:          draw.ExtendedCost,
			CreatedAt:             now,
		}
		if err := layerRepo.CreateConsumption(ctx, c); err != nil {
			return nil, err
		}
		consumptions = append(consumptions, c)
	}
	return &consumeResult{TotalCost: total, Consumptions: consumptions}, nil
}

// createLayer agrega una capa nueva al ledger. Nunca muta capas existentes.
func createLayer(
	ctx context.Context,
	layerRepo repository.CostLayerRepository,
	companyID, itemID, locationID, uom string,
	qty, unitCost decimal.Decimal,
	sourceType, sourceDocumentID, movementID string,
	now time.Time,
) (*entity.CostLayer, error) {
	if !qty.GreaterThan(decimal.Zero) || unitCost.LessThan(decimal.Zero) {
		return nil, &domain.PostingError{
			Code:      domain.CodeInvalidQuantity,
			ItemID:    itemID,
			Requested: qty,
			Detail:    "capa requiere qty > 0 y unit_cost >= 0",
		}
	}
	layer := &entity.CostLayer{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		ItemID:            itemID,
		LocationID:        locationID,
		UOM:               uom,
		UnitCost:          unitCost,
		QuantityOriginal:  qty,
		QuantityRemaining: qty,
		SourceType:        sourceType,
		SourceDocumentID:  sourceDocumentID,
		MovementID:        movementID,
		CreatedAt:         now,
	}
	if err := layerRepo.Create(ctx, layer); err != nil {
		return nil, err
	}
	return layer, nil
}
