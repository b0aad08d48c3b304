package manufacturing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// GuardLine consumo solicitado en cantidad canónica, para el chequeo de suficiencia.
type GuardLine struct {
	ItemID       string
	LocationID   string
	UOM          string
	QtyCanonical decimal.Decimal
}

// OverrideContext autorización explícita para postear con stock insuficiente.
type OverrideContext struct {
	Requested bool
	Reason    string
	ActorID   string
	ActorRole string
}

// OverrideLine detalle por línea del override, para la metadata del movimiento.
type OverrideLine struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	UOM        string          `json:"uom"`
	Requested  decimal.Decimal `json:"requested"`
	Available  decimal.Decimal `json:"available"`
}

// OverrideMetadata rastro durable de un override: se adjunta a la metadata del
// movimiento resultante y se refleja en el audit log.
type OverrideMetadata struct {
	Reason    string         `json:"reason"`
	ActorID   string         `json:"actor_id"`
	ActorRole string         `json:"actor_role"`
	Lines     []OverrideLine `json:"lines"`
}

// StockGuard chequeo de suficiencia previo al posteo. La disponibilidad se evalúa
// al occurred_at del documento (los documentos pueden ser retroactivos), no al now.
type StockGuard struct{}

// Check compara lo solicitado contra lo disponible por (ítem, ubicación). Varias
// líneas del documento pueden apuntar a la misma clave y compiten por el mismo
// stock, así que lo solicitado se agrega por clave antes de comparar. Default:
// rechazar con INSUFFICIENT_STOCK listando todos los faltantes. Con override
// autorizado (rol habilitado + razón) permite el posteo y devuelve la metadata
// que el caller DEBE adjuntar al movimiento y registrar en el audit log: el
// guard nunca se salta sin rastro.
func (g StockGuard) Check(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	companyID string,
	asOf time.Time,
	lines []GuardLine,
	override OverrideContext,
) (*OverrideMetadata, error) {
	type stockKey struct{ itemID, locationID string }
	requested := make(map[stockKey]*OverrideLine, len(lines))
	var order []stockKey
	for _, ln := range lines {
		k := stockKey{ln.ItemID, ln.LocationID}
		if agg, ok := requested[k]; ok {
			agg.Requested = agg.Requested.Add(ln.QtyCanonical)
			continue
		}
		requested[k] = &OverrideLine{
			ItemID:     ln.ItemID,
			LocationID: ln.LocationID,
			UOM:        ln.UOM,
			Requested:  ln.QtyCanonical,
		}
		order = append(order, k)
	}

	var short []OverrideLine
	for _, k := range order {
		agg := requested[k]
		available, err := movRepo.SumDeltaAsOf(ctx, companyID, k.itemID, k.locationID, asOf)
		if err != nil {
			return nil, err
		}
		if available.LessThan(agg.Requested) {
			agg.Available = available
			short = append(short, *agg)
		}
	}
	if len(short) == 0 {
		return nil, nil
	}

	authorized := override.Requested &&
		override.Reason != "" &&
		entity.CanOverrideStock(override.ActorRole)
	if !authorized {
		shortfalls := make([]domain.StockShortfall, len(short))
		for i, s := range short {
			shortfalls[i] = domain.StockShortfall{
				ItemID:     s.ItemID,
				LocationID: s.LocationID,
				UOM:        s.UOM,
				Requested:  s.Requested,
				Available:  s.Available,
			}
		}
		first := short[0]
		return nil, &domain.PostingError{
			Code:       domain.CodeInsufficientStock,
			ItemID:     first.ItemID,
			LocationID: first.LocationID,
			UOM:        first.UOM,
			Requested:  first.Requested,
			Available:  first.Available,
			Shortfalls: shortfalls,
			Detail:     "stock insuficiente al occurred_at del documento",
		}
	}
	return &OverrideMetadata{
		Reason:    override.Reason,
		ActorID:   override.ActorID,
		ActorRole: override.ActorRole,
		Lines:     short,
	}, nil
}

// MarshalMetadata serializa la metadata de override para el movimiento.
func (m *OverrideMetadata) MarshalMetadata() (json.RawMessage, error) {
	raw, err := json.Marshal(map[string]any{"stock_override": m})
	if err != nil {
		return nil, err
	}
	return raw, nil
}
