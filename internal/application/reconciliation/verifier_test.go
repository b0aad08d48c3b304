package reconciliation_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/internal/application/reconciliation"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake del puerto de solo lectura
// ──────────────────────────────────────────────────────────────────────────────

type fakeReconRepo struct {
	negative []repository.LayerBalanceRow
	over     []repository.OverconsumedLayerRow
	execs    []repository.ExecutionCostRow
	onHand   []repository.OnHandRow
}

func (f *fakeReconRepo) NegativeRemainingLayers(ctx context.Context, companyID string, limit int) ([]repository.LayerBalanceRow, error) {
	return f.negative, nil
}

func (f *fakeReconRepo) OverconsumedLayers(ctx context.Context, companyID string, limit int) ([]repository.OverconsumedLayerRow, error) {
	return f.over, nil
}

func (f *fakeReconRepo) PostedExecutionCosts(ctx context.Context, companyID string, limit int) ([]repository.ExecutionCostRow, error) {
	return f.execs, nil
}

func (f *fakeReconRepo) NegativeOnHand(ctx context.Context, companyID string, limit int) ([]repository.OnHandRow, error) {
	return f.onHand, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

const companyID = "00000000-0000-0000-0000-0000000000c1"

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Una base sana produce un reporte limpio con todos los chequeos corridos.
func TestVerifier_BaseSana(t *testing.T) {
	v := reconciliation.NewVerifier(&fakeReconRepo{})

	report, err := v.Run(context.Background(), companyID)
	require.NoError(t, err)

	assert.True(t, report.Clean(), "sin filas ofensoras el reporte es limpio")
	assert.Equal(t, companyID, report.CompanyID)
	assert.Equal(t, 5, report.Checks, "los cinco chequeos corren siempre")
	assert.Empty(t, report.ByCheck)
}

func TestVerifier_RemainingNegativo(t *testing.T) {
	v := reconciliation.NewVerifier(&fakeReconRepo{
		negative: []repository.LayerBalanceRow{
			{LayerID: "capa-1", ItemID: "item-1", LocationID: "loc-1", QuantityRemaining: dec("-3")},
		},
	})

	report, err := v.Run(context.Background(), companyID)
	require.NoError(t, err)

	assert.False(t, report.Clean())
	assert.Equal(t, 1, report.ByCheck[reconciliation.CheckNegativeLayerRemaining])
	require.Len(t, report.Violations, 1)
	assert.Contains(t, report.Violations[0].Detail, "capa-1")
	assert.Contains(t, report.Violations[0].Detail, "-3")
}

func TestVerifier_Sobreconsumo(t *testing.T) {
	v := reconciliation.NewVerifier(&fakeReconRepo{
		over: []repository.OverconsumedLayerRow{
			{LayerID: "capa-2", QuantityOriginal: dec("10"), ConsumedTotal: dec("12")},
		},
	})

	report, err := v.Run(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ByCheck[reconciliation.CheckLayerOverconsumption])
}

// La conservación de costo tolera ruido numérico pero no drift real.
func TestVerifier_ConservacionDeCosto(t *testing.T) {
	// Caso 1: drift dentro de la tolerancia no viola nada.
	clean := reconciliation.NewVerifier(&fakeReconRepo{
		execs: []repository.ExecutionCostRow{
			{ExecutionID: "ej-1", ClaimedCost: dec("26"), ProducedCost: dec("26.0000005"), StoredWIPTotal: dec("26")},
		},
	})
	report, err := clean.Run(context.Background(), companyID)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "drift <= 1e-6 se considera ruido de redondeo")

	// Caso 2: drift real entre consumido y producido.
	dirty := reconciliation.NewVerifier(&fakeReconRepo{
		execs: []repository.ExecutionCostRow{
			{ExecutionID: "ej-2", ClaimedCost: dec("26"), ProducedCost: dec("20"), StoredWIPTotal: dec("26")},
		},
	})
	report, err = dirty.Run(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ByCheck[reconciliation.CheckCostConservation])
	assert.Zero(t, report.ByCheck[reconciliation.CheckStoredWIPAggregates], "el agregado almacenado sí coincide")

	// Caso 3: el agregado almacenado del documento no coincide con los consumos.
	stale := reconciliation.NewVerifier(&fakeReconRepo{
		execs: []repository.ExecutionCostRow{
			{ExecutionID: "ej-3", ClaimedCost: dec("26"), ProducedCost: dec("26"), StoredWIPTotal: dec("25")},
		},
	})
	report, err = stale.Run(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ByCheck[reconciliation.CheckStoredWIPAggregates])
}

func TestVerifier_OnHandNegativo(t *testing.T) {
	v := reconciliation.NewVerifier(&fakeReconRepo{
		onHand: []repository.OnHandRow{
			{ItemID: "item-9", LocationID: "loc-9", OnHand: dec("-1.5")},
		},
	})

	report, err := v.Run(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ByCheck[reconciliation.CheckNegativeOnHand])
}

// Violaciones de chequeos distintos se acumulan en un mismo reporte.
func TestVerifier_ReporteAgregado(t *testing.T) {
	v := reconciliation.NewVerifier(&fakeReconRepo{
		negative: []repository.LayerBalanceRow{
			{LayerID: "capa-1", QuantityRemaining: dec("-1")},
			{LayerID: "capa-2", QuantityRemaining: dec("-2")},
		},
		onHand: []repository.OnHandRow{
			{ItemID: "item-9", LocationID: "loc-9", OnHand: dec("-1")},
		},
	})

	report, err := v.Run(context.Background(), companyID)
	require.NoError(t, err)

	assert.Len(t, report.Violations, 3)
	assert.Equal(t, 2, report.ByCheck[reconciliation.CheckNegativeLayerRemaining])
	assert.Equal(t, 1, report.ByCheck[reconciliation.CheckNegativeOnHand])
}
