package manufacturing_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/internal/application/manufacturing"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria: implementa los cuatro puertos que el TxRunner entrega al
// motor. Sin simulación de rollback; los tests de fallo verifican códigos y
// estados, no limpieza transaccional (eso lo garantiza el adaptador real).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	movements    map[string]*entity.InventoryMovement
	lines        []*entity.InventoryMovementLine
	layers       map[string]*entity.CostLayer
	consumptions map[string]*entity.CostLayerConsumption
	workOrders   map[string]*entity.WorkOrder
	issues       map[string]*entity.WorkOrderMaterialIssue
	executions   map[string]*entity.WorkOrderExecution
	audits       []*entity.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		movements:    map[string]*entity.InventoryMovement{},
		layers:       map[string]*entity.CostLayer{},
		consumptions: map[string]*entity.CostLayerConsumption{},
		workOrders:   map[string]*entity.WorkOrder{},
		issues:       map[string]*entity.WorkOrderMaterialIssue{},
		executions:   map[string]*entity.WorkOrderExecution{},
	}
}

// InventoryMovementRepository

func (s *memStore) Create(ctx context.Context, m *entity.InventoryMovement) error {
	s.movements[m.ID] = m
	return nil
}

func (s *memStore) CreateLine(ctx context.Context, ln *entity.InventoryMovementLine) error {
	s.lines = append(s.lines, ln)
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	return s.movements[id], nil
}

func (s *memStore) ListLines(ctx context.Context, movementID string) ([]*entity.InventoryMovementLine, error) {
	var out []*entity.InventoryMovementLine
	for _, ln := range s.lines {
		if ln.MovementID == movementID {
			out = append(out, ln)
		}
	}
	return out, nil
}

func (s *memStore) ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return nil, nil
}

func (s *memStore) ListByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return nil, nil
}

func (s *memStore) SumDeltaAsOf(ctx context.Context, companyID, itemID, locationID string, asOf time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, ln := range s.lines {
		mov := s.movements[ln.MovementID]
		if mov == nil || mov.CompanyID != companyID || mov.OccurredAt.After(asOf) {
			continue
		}
		if ln.ItemID == itemID && ln.LocationID == locationID {
			sum = sum.Add(ln.QuantityDelta)
		}
	}
	return sum, nil
}

// CostLayerRepository (Create de capas va por CreateLayer para no chocar con el
// Create de movimientos; el store expone ambos puertos mediante vistas tipadas)

type layerView struct{ *memStore }

func (v layerView) Create(ctx context.Context, layer *entity.CostLayer) error {
	v.layers[layer.ID] = layer
	return nil
}

func (v layerView) GetByID(ctx context.Context, id string) (*entity.CostLayer, error) {
	return v.layers[id], nil
}

func (v layerView) SelectForConsume(ctx context.Context, companyID, itemID, locationID string, limit int) ([]*entity.CostLayer, error) {
	var out []*entity.CostLayer
	for _, l := range v.layers {
		if l.CompanyID == companyID && l.ItemID == itemID && l.LocationID == locationID &&
			l.QuantityRemaining.GreaterThan(decimal.Zero) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v layerView) DecrementRemaining(ctx context.Context, layerID string, qty decimal.Decimal) error {
	l := v.layers[layerID]
	if l == nil || l.QuantityRemaining.LessThan(qty) {
		return domain.ErrConflict
	}
	l.QuantityRemaining = l.QuantityRemaining.Sub(qty)
	return nil
}

func (v layerView) OnHand(ctx context.Context, companyID, itemID, locationID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range v.layers {
		if l.CompanyID == companyID && l.ItemID == itemID && l.LocationID == locationID {
			sum = sum.Add(l.QuantityRemaining)
		}
	}
	return sum, nil
}

func (v layerView) CreateConsumption(ctx context.Context, c *entity.CostLayerConsumption) error {
	v.consumptions[c.ID] = c
	return nil
}

func (v layerView) ListConsumptionsByDocument(ctx context.Context, docID string) ([]*entity.CostLayerConsumption, error) {
	var out []*entity.CostLayerConsumption
	for _, c := range v.consumptions {
		if c.ConsumptionDocumentID == docID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (v layerView) ListUnclaimedByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.CostLayerConsumption, error) {
	return v.UnclaimedForWorkOrder(ctx, workOrderID)
}

func (v layerView) UnclaimedForWorkOrder(ctx context.Context, workOrderID string) ([]*entity.CostLayerConsumption, error) {
	var out []*entity.CostLayerConsumption
	for _, issue := range v.issues {
		if issue.WorkOrderID != workOrderID || issue.Status != entity.DocStatusPosted {
			continue
		}
		for _, c := range v.consumptions {
			if c.ConsumptionDocumentID == issue.ID && c.WIPExecutionID == nil {
				out = append(out, c)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (v layerView) Claim(ctx context.Context, ids []string, executionID string, at time.Time) (int64, error) {
	var marked int64
	for _, id := range ids {
		c := v.consumptions[id]
		if c == nil || c.WIPExecutionID != nil {
			continue
		}
		execID := executionID
		when := at
		c.WIPExecutionID = &execID
		c.WIPAllocatedAt = &when
		marked++
	}
	return marked, nil
}

// WorkOrderRepository

type woView struct{ *memStore }

func (v woView) Create(ctx context.Context, wo *entity.WorkOrder) error {
	v.workOrders[wo.ID] = wo
	return nil
}

func (v woView) GetByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return v.workOrders[id], nil
}

func (v woView) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return v.workOrders[id], nil
}

func (v woView) UpdateProgress(ctx context.Context, wo *entity.WorkOrder) error {
	v.workOrders[wo.ID] = wo
	return nil
}

func (v woView) ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.WorkOrder, error) {
	return nil, nil
}

func (v woView) CreateIssue(ctx context.Context, issue *entity.WorkOrderMaterialIssue) error {
	v.issues[issue.ID] = issue
	return nil
}

func (v woView) GetIssueByID(ctx context.Context, id string) (*entity.WorkOrderMaterialIssue, error) {
	return v.issues[id], nil
}

func (v woView) GetIssueForUpdate(ctx context.Context, id string) (*entity.WorkOrderMaterialIssue, error) {
	return v.issues[id], nil
}

func (v woView) MarkIssuePosted(ctx context.Context, issueID, movementID string, postedAt time.Time) error {
	issue := v.issues[issueID]
	if issue == nil || issue.Status != entity.DocStatusDraft {
		return domain.ErrConflict
	}
	issue.Status = entity.DocStatusPosted
	issue.InventoryMovementID = movementID
	issue.PostedAt = &postedAt
	return nil
}

func (v woView) MarkIssueCanceled(ctx context.Context, issueID string) error {
	issue := v.issues[issueID]
	if issue == nil || issue.Status != entity.DocStatusDraft {
		return domain.ErrConflict
	}
	issue.Status = entity.DocStatusCanceled
	return nil
}

func (v woView) ListIssuesByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.WorkOrderMaterialIssue, error) {
	var out []*entity.WorkOrderMaterialIssue
	for _, i := range v.issues {
		if i.WorkOrderID == workOrderID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (v woView) CreateExecution(ctx context.Context, exec *entity.WorkOrderExecution) error {
	v.executions[exec.ID] = exec
	return nil
}

func (v woView) GetExecutionByID(ctx context.Context, id string) (*entity.WorkOrderExecution, error) {
	return v.executions[id], nil
}

func (v woView) GetExecutionForUpdate(ctx context.Context, id string) (*entity.WorkOrderExecution, error) {
	return v.executions[id], nil
}

func (v woView) MarkExecutionPosted(ctx context.Context, exec *entity.WorkOrderExecution) error {
	v.executions[exec.ID] = exec
	return nil
}

func (v woView) MarkExecutionCanceled(ctx context.Context, executionID string) error {
	exec := v.executions[executionID]
	if exec == nil || exec.Status != entity.DocStatusDraft {
		return domain.ErrConflict
	}
	exec.Status = entity.DocStatusCanceled
	return nil
}

func (v woView) ListExecutionsByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.WorkOrderExecution, error) {
	var out []*entity.WorkOrderExecution
	for _, e := range v.executions {
		if e.WorkOrderID == workOrderID {
			out = append(out, e)
		}
	}
	return out, nil
}

// TxRunner de test: ejecuta fn directamente contra el store compartido.

type fakeTxRunner struct{ s *memStore }

func (r fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	layerRepo repository.CostLayerRepository,
	woRepo repository.WorkOrderRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	return fn(r.s, layerView{r.s}, woView{r.s}, &memAudit{r.s})
}

type memAudit struct{ s *memStore }

func (a *memAudit) Create(ctx context.Context, entry *entity.AuditLog) error {
	a.s.audits = append(a.s.audits, entry)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Normalizador de test: identidad hacia la canónica del ítem más una tabla fija
// de factores (kg→g).
// ──────────────────────────────────────────────────────────────────────────────

type fakeNormalizer struct {
	items   map[string]*entity.Item
	factors map[string]decimal.Decimal // "from->to"
}

func (n fakeNormalizer) Normalize(ctx context.Context, companyID, itemID string, signedQty decimal.Decimal, enteredUOM string) (*entity.CanonicalQuantity, error) {
	item := n.items[itemID]
	if item == nil || item.CompanyID != companyID {
		return nil, &domain.PostingError{Code: domain.CodeNotFound, EntityID: itemID}
	}
	factor := decimal.NewFromInt(1)
	if enteredUOM != item.CanonicalUOM {
		f, ok := n.factors[enteredUOM+"->"+item.CanonicalUOM]
		if !ok {
			return nil, &domain.PostingError{Code: domain.CodeUOMConversionNotFound, ItemID: itemID, UOM: enteredUOM}
		}
		factor = f
	}
	return &entity.CanonicalQuantity{
		QtyEntered:   signedQty,
		UOMEntered:   enteredUOM,
		QtyCanonical: signedQty.Mul(factor),
		CanonicalUOM: item.CanonicalUOM,
		Dimension:    item.UOMDimension,
	}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID = "00000000-0000-0000-0000-0000000000c1"
	userID    = "00000000-0000-0000-0000-0000000000u1"

	flourID = "00000000-0000-0000-0000-00000000f100"
	cakeID  = "00000000-0000-0000-0000-00000000ca0e"

	locRM = "00000000-0000-0000-0000-00000000loc1"
	locFG = "00000000-0000-0000-0000-00000000loc2"
)

var baseTime = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	store *memStore
	uc    *manufacturing.PostingUseCase
}

func newFixture() *fixture {
	store := newMemStore()
	normalizer := fakeNormalizer{
		items: map[string]*entity.Item{
			flourID: {ID: flourID, CompanyID: companyID, SKU: "HAR-001", UOMDimension: entity.DimensionMass, CanonicalUOM: "g"},
			cakeID:  {ID: cakeID, CompanyID: companyID, SKU: "TOR-001", UOMDimension: entity.DimensionCount, CanonicalUOM: "unit"},
		},
		factors: map[string]decimal.Decimal{"kg->g": dec("1000")},
	}
	return &fixture{
		store: store,
		uc:    manufacturing.NewPostingUseCase(fakeTxRunner{store}, normalizer),
	}
}

// seedStock siembra inventario consistente: una capa con created_at explícito
// (controla el orden FIFO) y su movimiento receive (alimenta el guard).
func (f *fixture) seedStock(itemID, locationID, uom, qty, unitCost string, at time.Time) *entity.CostLayer {
	movID := uuid.New().String()
	f.store.movements[movID] = &entity.InventoryMovement{
		ID: movID, CompanyID: companyID,
		Type: entity.MovementTypeReceive, Status: entity.MovementStatusPosted,
		OccurredAt: at, PostedAt: at, CreatedBy: userID,
	}
	f.store.lines = append(f.store.lines, &entity.InventoryMovementLine{
		ID: uuid.New().String(), MovementID: movID,
		ItemID: itemID, LocationID: locationID,
		QtyCanonical: dec(qty), CanonicalUOM: uom,
		QuantityDelta: dec(qty), UnitCost: dec(unitCost),
		ExtendedCost: dec(qty).Mul(dec(unitCost)),
	})
	layer := &entity.CostLayer{
		ID: uuid.New().String(), CompanyID: companyID,
		ItemID: itemID, LocationID: locationID, UOM: uom,
		UnitCost:         dec(unitCost),
		QuantityOriginal: dec(qty), QuantityRemaining: dec(qty),
		SourceType: entity.LayerSourcePurchaseReceipt,
		MovementID: movID, CreatedAt: at,
	}
	f.store.layers[layer.ID] = layer
	return layer
}

func (f *fixture) newWorkOrder(kind string, planned string) *entity.WorkOrder {
	wo := &entity.WorkOrder{
		ID: uuid.New().String(), CompanyID: companyID,
		Code: "OT-0001", Status: entity.WorkOrderStatusDraft, Kind: kind,
		OutputItemID: cakeID, OutputUOM: "unit",
		QuantityPlanned: dec(planned),
		CreatedBy:       userID, CreatedAt: baseTime, UpdatedAt: baseTime,
	}
	f.store.workOrders[wo.ID] = wo
	return wo
}

func (f *fixture) newIssue(woID string, occurredAt time.Time, lines ...entity.WorkOrderMaterialIssueLine) *entity.WorkOrderMaterialIssue {
	issue := &entity.WorkOrderMaterialIssue{
		ID: uuid.New().String(), WorkOrderID: woID,
		Status: entity.DocStatusDraft, OccurredAt: occurredAt,
		CreatedBy: userID, CreatedAt: occurredAt, Lines: lines,
	}
	f.store.issues[issue.ID] = issue
	return issue
}

func (f *fixture) newExecution(woID string, occurredAt time.Time, lines ...entity.WorkOrderExecutionLine) *entity.WorkOrderExecution {
	exec := &entity.WorkOrderExecution{
		ID: uuid.New().String(), WorkOrderID: woID,
		Status: entity.DocStatusDraft, OccurredAt: occurredAt,
		CreatedBy: userID, CreatedAt: occurredAt, Lines: lines,
	}
	f.store.executions[exec.ID] = exec
	return exec
}

func issueLine(itemID, uom, qty, fromLoc string) entity.WorkOrderMaterialIssueLine {
	return entity.WorkOrderMaterialIssueLine{
		ID: uuid.New().String(), ComponentItemID: itemID,
		UOM: uom, QuantityIssued: dec(qty), FromLocationID: fromLoc,
	}
}

func execLine(itemID, uom, qty, toLoc string) entity.WorkOrderExecutionLine {
	return entity.WorkOrderExecutionLine{
		ID: uuid.New().String(), ItemID: itemID,
		UOM: uom, Quantity: dec(qty), ToLocationID: toLoc,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión de materiales
// ──────────────────────────────────────────────────────────────────────────────

// Emisión de 12 g contra capas de 10 @ $2 y 5 @ $3: consume en orden, cruza
// capas y el costo del pool queda en $26.
func TestPostMaterialIssue_ConsumoFIFOCruzaCapas(t *testing.T) {
	f := newFixture()
	layerA := f.seedStock(flourID, locRM, "g", "10", "2.00", baseTime)
	layerB := f.seedStock(flourID, locRM, "g", "5", "3.00", baseTime.Add(10*time.Minute))
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(flourID, "g", "12", locRM))

	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{})
	require.NoError(t, err)

	assert.Equal(t, entity.DocStatusPosted, issue.Status)
	require.NotEmpty(t, issue.InventoryMovementID, "la emisión debe quedar vinculada a su movimiento")
	assert.True(t, layerA.QuantityRemaining.IsZero(), "la capa más antigua se agota")
	assert.True(t, layerB.QuantityRemaining.Equal(dec("3")), "la capa nueva conserva el sobrante")

	// Dos filas de consumo sin reclamar que suman $26.
	pool, err := layerView{f.store}.UnclaimedForWorkOrder(context.Background(), wo.ID)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	total := decimal.Zero
	for _, c := range pool {
		assert.Nil(t, c.WIPExecutionID, "los consumos nacen sin reclamar")
		total = total.Add(c.ExtendedCost)
	}
	assert.True(t, total.Equal(dec("26")), "pool WIP = 10*2 + 2*3")

	// La línea del ledger lleva delta canónico negativo y el costo extendido.
	lines, err := f.store.ListLines(context.Background(), issue.InventoryMovementID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].QuantityDelta.Equal(dec("-12")))
	assert.True(t, lines[0].ExtendedCost.Equal(dec("-26")))

	assert.Equal(t, entity.WorkOrderStatusInProgress, wo.Status, "el primer posteo saca la orden de draft")
	assert.True(t, wo.QuantityCompleted.IsZero(), "en producción las emisiones no avanzan progreso")
}

// Sin stock al occurred_at del documento el guard rechaza antes de tocar nada.
func TestPostMaterialIssue_StockInsuficiente(t *testing.T) {
	f := newFixture()
	f.seedStock(flourID, locRM, "g", "5", "2.00", baseTime)
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(flourID, "g", "12", locRM))

	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{})
	require.Error(t, err)

	pe, ok := domain.AsPostingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInsufficientStock, pe.Code)
	assert.Equal(t, flourID, pe.ItemID)
	assert.Equal(t, locRM, pe.LocationID)
	assert.True(t, pe.Requested.Equal(dec("12")))
	assert.True(t, pe.Available.Equal(dec("5")), "reporta lo disponible al occurred_at")

	assert.Equal(t, entity.DocStatusDraft, issue.Status, "el documento queda en draft para reintento")
	assert.Empty(t, f.store.consumptions, "el guard corta antes de consumir capas")
}

// La disponibilidad se evalúa al occurred_at del documento, no al momento del
// posteo: un documento retroactivo no ve stock recibido después.
func TestPostMaterialIssue_GuardEvaluaAlOccurredAt(t *testing.T) {
	f := newFixture()
	// Stock recibido una hora DESPUÉS del occurred_at de la emisión.
	f.seedStock(flourID, locRM, "g", "100", "2.00", baseTime.Add(2*time.Hour))
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(flourID, "g", "12", locRM))

	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{})
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeInsufficientStock))
}

// Varias líneas sobre el mismo (ítem, ubicación) compiten por el mismo stock:
// el guard agrega lo solicitado por clave antes de comparar. Un posteo
// retroactivo de 12 g contra 10 g disponibles al occurred_at se rechaza aunque
// cada línea de 6 g alcance por separado.
func TestPostMaterialIssue_GuardAgregaPorItemYUbicacion(t *testing.T) {
	f := newFixture()
	f.seedStock(flourID, locRM, "g", "10", "2.00", baseTime)
	// Stock recibido DESPUÉS del occurred_at: las capas cubren el total pero la
	// disponibilidad al occurred_at no.
	f.seedStock(flourID, locRM, "g", "10", "2.00", baseTime.Add(2*time.Hour))
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour),
		issueLine(flourID, "g", "6", locRM),
		issueLine(flourID, "g", "6", locRM))

	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{})
	require.Error(t, err)
	pe, ok := domain.AsPostingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInsufficientStock, pe.Code)
	assert.True(t, pe.Requested.Equal(dec("12")), "reporta el agregado del documento, no la línea suelta")
	assert.True(t, pe.Available.Equal(dec("10")))

	assert.Equal(t, entity.DocStatusDraft, issue.Status)
	assert.Empty(t, f.store.consumptions, "sin override autorizado no se consume nada")
	assert.Empty(t, f.store.audits, "un rechazo no deja auditoría de override")
}

// El rechazo lista todos los faltantes del documento, no solo el primero:
// el caller no debería tener que repostear para descubrir el siguiente.
func TestPostMaterialIssue_GuardReportaTodosLosFaltantes(t *testing.T) {
	f := newFixture()
	f.seedStock(flourID, locRM, "g", "5", "2.00", baseTime)
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour),
		issueLine(flourID, "g", "12", locRM),
		issueLine(flourID, "g", "8", locFG))

	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{})
	require.Error(t, err)
	pe, ok := domain.AsPostingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInsufficientStock, pe.Code)

	require.Len(t, pe.Shortfalls, 2)
	assert.Equal(t, locRM, pe.Shortfalls[0].LocationID)
	assert.True(t, pe.Shortfalls[0].Requested.Equal(dec("12")))
	assert.True(t, pe.Shortfalls[0].Available.Equal(dec("5")))
	assert.Equal(t, locFG, pe.Shortfalls[1].LocationID)
	assert.True(t, pe.Shortfalls[1].Requested.Equal(dec("8")))
	assert.True(t, pe.Shortfalls[1].Available.IsZero())
}

// Más de 500 capas candidatas para un mismo (ítem, ubicación) en una sola
// llamada es un error explícito, no un barrido sin límite.
func TestPostMaterialIssue_LimiteDeCapasCandidatas(t *testing.T) {
	f := newFixture()
	for i := 0; i < 501; i++ {
		f.seedStock(flourID, locRM, "g", "1", "2.00", baseTime.Add(time.Duration(i)*time.Second))
	}
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(flourID, "g", "400", locRM))

	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{})
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeLayerScanLimit))
	assert.Empty(t, f.store.consumptions, "el límite corta antes de consumir capas")
	assert.Equal(t, entity.DocStatusDraft, issue.Status)
}

// Un override autorizado (rol habilitado + razón) permite el posteo retroactivo
// y deja rastro doble: metadata en el movimiento y entrada de auditoría.
func TestPostMaterialIssue_OverrideAutorizado(t *testing.T) {
	f := newFixture()
	f.seedStock(flourID, locRM, "g", "100", "2.00", baseTime.Add(2*time.Hour))
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(flourID, "g", "12", locRM))

	override := manufacturing.OverrideContext{
		Requested: true,
		Reason:    "conteo físico confirmado en planta",
		ActorID:   userID,
		ActorRole: entity.RoleSupervisor,
	}
	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, override)
	require.NoError(t, err)

	assert.Equal(t, entity.DocStatusPosted, issue.Status)

	mov := f.store.movements[issue.InventoryMovementID]
	require.NotNil(t, mov)
	assert.Contains(t, string(mov.Metadata), "stock_override", "la metadata del movimiento registra el override")
	assert.Contains(t, string(mov.Metadata), "conteo físico confirmado en planta")

	require.Len(t, f.store.audits, 1, "exactamente una entrada de auditoría por override")
	entry := f.store.audits[0]
	assert.Equal(t, entity.AuditActionStockOverride, entry.Action)
	assert.Equal(t, entity.RoleSupervisor, entry.ActorRole)
	assert.Equal(t, issue.ID, entry.EntityID)
}

// Caso 1: rol sin permiso. Caso 2: sin razón. Ambos se rechazan igual.
func TestPostMaterialIssue_OverrideNoAutorizado(t *testing.T) {
	cases := []struct {
		name     string
		override manufacturing.OverrideContext
	}{
		{"rol operario", manufacturing.OverrideContext{Requested: true, Reason: "apuro", ActorID: userID, ActorRole: entity.RoleOperario}},
		{"sin razón", manufacturing.OverrideContext{Requested: true, ActorID: userID, ActorRole: entity.RoleAdmin}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
			issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(flourID, "g", "12", locRM))

			err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, tc.override)
			require.Error(t, err)
			assert.True(t, domain.IsPostingCode(err, domain.CodeInsufficientStock))
			assert.Empty(t, f.store.audits, "un override rechazado no audita nada")
		})
	}
}

// Postear dos veces el mismo documento falla con ALREADY_POSTED.
func TestPostMaterialIssue_YaPosteada(t *testing.T) {
	f := newFixture()
	f.seedStock(flourID, locRM, "g", "100", "2.00", baseTime)
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(flourID, "g", "12", locRM))

	require.NoError(t, f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{}))

	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{})
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeAlreadyPosted))
}

func TestPostMaterialIssue_TenenciaCruzada(t *testing.T) {
	f := newFixture()
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime, issueLine(flourID, "g", "1", locRM))

	err := f.uc.PostMaterialIssue(context.Background(), "otra-empresa", userID, issue.ID, manufacturing.OverrideContext{})
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeNotFound), "una orden de otra empresa es invisible")
}

// ──────────────────────────────────────────────────────────────────────────────
// Desensamble
// ──────────────────────────────────────────────────────────────────────────────

// En desensamble lo emitido ES el ítem de salida: la emisión avanza el progreso
// y puede cerrar la orden (asimetría con producción).
func TestPostMaterialIssue_DesensambleAvanzaProgreso(t *testing.T) {
	f := newFixture()
	f.seedStock(cakeID, locFG, "unit", "2", "13.00", baseTime)
	wo := f.newWorkOrder(entity.WorkOrderKindDisassembly, "2")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(cakeID, "unit", "2", locFG))

	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{})
	require.NoError(t, err)

	assert.True(t, wo.QuantityCompleted.Equal(dec("2")), "la emisión avanza quantity_completed")
	assert.Equal(t, entity.WorkOrderStatusCompleted, wo.Status, "alcanzar lo planificado cierra la orden")
	require.NotNil(t, wo.CompletedAt)
}

// Una orden de desensamble solo puede emitir su ítem de salida.
func TestPostMaterialIssue_DesensambleItemEquivocado(t *testing.T) {
	f := newFixture()
	f.seedStock(flourID, locRM, "g", "100", "2.00", baseTime)
	wo := f.newWorkOrder(entity.WorkOrderKindDisassembly, "2")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(flourID, "g", "12", locRM))

	err := f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{})
	require.Error(t, err)

	pe, ok := domain.AsPostingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeDisassemblyInputMismatch, pe.Code)
	assert.Equal(t, flourID, pe.ItemID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Terminación
// ──────────────────────────────────────────────────────────────────────────────

// postIssueAndPool deja una orden con un pool WIP de $26 listo para terminar.
func postIssueAndPool(t *testing.T, f *fixture) *entity.WorkOrder {
	t.Helper()
	f.seedStock(flourID, locRM, "g", "10", "2.00", baseTime)
	f.seedStock(flourID, locRM, "g", "5", "3.00", baseTime.Add(10*time.Minute))
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	issue := f.newIssue(wo.ID, baseTime.Add(time.Hour), issueLine(flourID, "g", "12", locRM))
	require.NoError(t, f.uc.PostMaterialIssue(context.Background(), companyID, userID, issue.ID, manufacturing.OverrideContext{}))
	return wo
}

// La terminación reclama el pool completo, crea la capa del producto y deja los
// agregados de costeo en documento y orden.
func TestPostExecution_ReclamaPoolYCosteaProducto(t *testing.T) {
	f := newFixture()
	wo := postIssueAndPool(t, f)
	exec := f.newExecution(wo.ID, baseTime.Add(2*time.Hour), execLine(cakeID, "unit", "10", locFG))

	err := f.uc.PostExecution(context.Background(), companyID, userID, exec.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.DocStatusPosted, exec.Status)
	assert.True(t, exec.WIPTotalCost.Equal(dec("26")), "el costo del documento es el pool reclamado")
	assert.True(t, exec.WIPUnitCost.Equal(dec("2.6")), "$26 / 10 unidades")
	assert.True(t, exec.WIPQuantityCanonical.Equal(dec("10")))
	assert.Equal(t, entity.WIPCostMethodFIFO, exec.WIPCostMethod)
	require.NotNil(t, exec.CostedAt)

	// El pool quedó reclamado por esta terminación.
	for _, c := range f.store.consumptions {
		require.NotNil(t, c.WIPExecutionID, "ningún consumo queda sin reclamar")
		assert.Equal(t, exec.ID, *c.WIPExecutionID)
	}

	// Nace la capa del producto terminado con el costo asignado.
	var produced *entity.CostLayer
	for _, l := range f.store.layers {
		if l.ItemID == cakeID {
			produced = l
		}
	}
	require.NotNil(t, produced, "la terminación crea una capa nueva para el producto")
	assert.Equal(t, locFG, produced.LocationID)
	assert.True(t, produced.QuantityOriginal.Equal(dec("10")))
	assert.True(t, produced.UnitCost.Equal(dec("2.6")))
	assert.Equal(t, entity.LayerSourceProduction, produced.SourceType)

	// La orden acumula y queda completa (producida = planificada).
	assert.True(t, wo.WIPTotalCost.Equal(dec("26")))
	assert.True(t, wo.QuantityCompleted.Equal(dec("10")))
	assert.Equal(t, entity.WorkOrderStatusCompleted, wo.Status)
}

// El costo asignado entre líneas conserva el pool exacto, residuo incluido.
func TestPostExecution_ConservacionEntreLineas(t *testing.T) {
	f := newFixture()
	wo := postIssueAndPool(t, f)
	exec := f.newExecution(wo.ID, baseTime.Add(2*time.Hour),
		execLine(cakeID, "unit", "3", locFG),
		execLine(cakeID, "unit", "1", locFG),
	)

	err := f.uc.PostExecution(context.Background(), companyID, userID, exec.ID)
	require.NoError(t, err)

	lines, err := f.store.ListLines(context.Background(), exec.ProductionMovementID)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	sum := decimal.Zero
	for _, ln := range lines {
		sum = sum.Add(ln.ExtendedCost)
	}
	assert.True(t, sum.Equal(dec("26")), "Σ costos asignados == pool reclamado")
	assert.True(t, lines[0].ExtendedCost.Equal(dec("19.5")), "3/4 del pool")
	assert.True(t, lines[1].ExtendedCost.Equal(dec("6.5")), "1/4 del pool más el residuo")
}

// Sin pool WIP no hay nada que terminar.
func TestPostExecution_PoolVacio(t *testing.T) {
	f := newFixture()
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")
	exec := f.newExecution(wo.ID, baseTime, execLine(cakeID, "unit", "10", locFG))

	err := f.uc.PostExecution(context.Background(), companyID, userID, exec.ID)
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeNoConsumptions))
	assert.Equal(t, entity.DocStatusDraft, exec.Status)
}

// Dos terminaciones sobre el mismo pool: la segunda encuentra el pool vacío
// (el claim es definitivo, nunca se reparte dos veces el mismo costo).
func TestPostExecution_PoolYaReclamado(t *testing.T) {
	f := newFixture()
	wo := postIssueAndPool(t, f)
	wo.QuantityPlanned = dec("100") // que la primera terminación no cierre la orden

	first := f.newExecution(wo.ID, baseTime.Add(2*time.Hour), execLine(cakeID, "unit", "5", locFG))
	require.NoError(t, f.uc.PostExecution(context.Background(), companyID, userID, first.ID))

	second := f.newExecution(wo.ID, baseTime.Add(3*time.Hour), execLine(cakeID, "unit", "5", locFG))
	err := f.uc.PostExecution(context.Background(), companyID, userID, second.ID)
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeNoConsumptions))
}

// En producción cada línea debe corresponder al ítem de salida declarado.
func TestPostExecution_ItemEquivocado(t *testing.T) {
	f := newFixture()
	wo := postIssueAndPool(t, f)
	exec := f.newExecution(wo.ID, baseTime.Add(2*time.Hour), execLine(flourID, "g", "10", locFG))

	err := f.uc.PostExecution(context.Background(), companyID, userID, exec.ID)
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeItemMismatch))
}

// Sobre una orden ya completa no se postea nada más.
func TestPostExecution_OrdenTerminal(t *testing.T) {
	f := newFixture()
	wo := postIssueAndPool(t, f)
	first := f.newExecution(wo.ID, baseTime.Add(2*time.Hour), execLine(cakeID, "unit", "10", locFG))
	require.NoError(t, f.uc.PostExecution(context.Background(), companyID, userID, first.ID))
	require.Equal(t, entity.WorkOrderStatusCompleted, wo.Status)

	late := f.newExecution(wo.ID, baseTime.Add(3*time.Hour), execLine(cakeID, "unit", "1", locFG))
	err := f.uc.PostExecution(context.Background(), companyID, userID, late.ID)
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeInvalidState))
}

// ──────────────────────────────────────────────────────────────────────────────
// Backflush
// ──────────────────────────────────────────────────────────────────────────────

// Consumo y producción en una sola llamada: dos movimientos, documentos creados
// y posteados, conservación de costo de punta a punta.
func TestPostBackflush_ConsumoYProduccionAtomicos(t *testing.T) {
	f := newFixture()
	f.seedStock(flourID, locRM, "g", "10", "2.00", baseTime)
	f.seedStock(flourID, locRM, "g", "5", "3.00", baseTime.Add(10*time.Minute))
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")

	result, err := f.uc.PostBackflush(context.Background(), companyID, userID, manufacturing.BackflushInput{
		WorkOrderID: wo.ID,
		OccurredAt:  baseTime.Add(time.Hour),
		Issues: []manufacturing.BackflushIssueLine{
			{ComponentItemID: flourID, UOM: "g", Quantity: dec("12"), FromLocationID: locRM},
		},
		Outputs: []manufacturing.BackflushOutputLine{
			{ItemID: cakeID, UOM: "unit", Quantity: dec("10"), ToLocationID: locFG},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.IssueID)
	assert.NotEmpty(t, result.ExecutionID)
	assert.NotEmpty(t, result.ConsumptionMovementID)
	assert.NotEmpty(t, result.ProductionMovementID)
	assert.NotEqual(t, result.ConsumptionMovementID, result.ProductionMovementID, "dos movimientos distintos")

	issue := f.store.issues[result.IssueID]
	require.NotNil(t, issue)
	assert.Equal(t, entity.DocStatusPosted, issue.Status)

	exec := f.store.executions[result.ExecutionID]
	require.NotNil(t, exec)
	assert.Equal(t, entity.DocStatusPosted, exec.Status)
	assert.Equal(t, result.ConsumptionMovementID, exec.ConsumptionMovementID)
	assert.True(t, exec.WIPTotalCost.Equal(dec("26")), "el pool emitido fluye completo al producto")

	assert.Equal(t, entity.WorkOrderStatusCompleted, wo.Status)
}

func TestPostBackflush_SinLineas(t *testing.T) {
	f := newFixture()
	wo := f.newWorkOrder(entity.WorkOrderKindProduction, "10")

	_, err := f.uc.PostBackflush(context.Background(), companyID, userID, manufacturing.BackflushInput{
		WorkOrderID: wo.ID,
		Outputs:     []manufacturing.BackflushOutputLine{{ItemID: cakeID, UOM: "unit", Quantity: dec("1"), ToLocationID: locFG}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeNoLines))
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

// La recepción crea la capa en unidad canónica con el costo re-expresado para
// extender al mismo valor recibido: 2 kg @ $5/kg ⇒ 2000 g @ $0.005/g = $10.
func TestPostReceipt_CapaEnUnidadCanonica(t *testing.T) {
	f := newFixture()

	movID, err := f.uc.PostReceipt(context.Background(), companyID, userID, manufacturing.ReceiptInput{
		OccurredAt: baseTime,
		Lines: []manufacturing.ReceiptLine{
			{ItemID: flourID, LocationID: locRM, UOM: "kg", Quantity: dec("2"), UnitCost: dec("5")},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, movID)

	require.Len(t, f.store.layers, 1)
	var layer *entity.CostLayer
	for _, l := range f.store.layers {
		layer = l
	}
	assert.Equal(t, "g", layer.UOM, "la capa vive en la unidad canónica del ítem")
	assert.True(t, layer.QuantityOriginal.Equal(dec("2000")))
	assert.True(t, layer.UnitCost.Equal(dec("0.005")))
	assert.True(t, layer.UnitCost.Mul(layer.QuantityOriginal).Equal(dec("10")), "extiende al valor recibido")

	onHand, err := layerView{f.store}.OnHand(context.Background(), companyID, flourID, locRM)
	require.NoError(t, err)
	assert.True(t, onHand.Equal(dec("2000")))
}

func TestPostReceipt_LineaInvalida(t *testing.T) {
	f := newFixture()

	_, err := f.uc.PostReceipt(context.Background(), companyID, userID, manufacturing.ReceiptInput{
		Lines: []manufacturing.ReceiptLine{
			{ItemID: flourID, LocationID: locRM, UOM: "g", Quantity: dec("0"), UnitCost: dec("5")},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeInvalidQuantity))
}
