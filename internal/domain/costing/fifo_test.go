package costing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/costing"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// layer construye una capa con remaining = qty y created_at desplazado.
func layer(id string, qty, unitCost string, offsetMin int) *entity.CostLayer {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return &entity.CostLayer{
		ID:                id,
		UnitCost:          dec(unitCost),
		QuantityOriginal:  dec(qty),
		QuantityRemaining: dec(qty),
		CreatedAt:         base.Add(time.Duration(offsetMin) * time.Minute),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumo FIFO ordenado
// ──────────────────────────────────────────────────────────────────────────────

// Escenario clásico: capa A con 10 @ $2.00, capa B con 5 @ $3.00; se consumen 12.
// El costo total debe ser 10*2 + 2*3 = $26, A queda en 0 y B en 3.
func TestPlanFIFO_ConsumeEnOrdenYCruzaCapas(t *testing.T) {
	layers := []*entity.CostLayer{
		layer("A", "10", "2.00", 0),
		layer("B", "5", "3.00", 10),
	}

	draws, total, err := costing.PlanFIFO(layers, dec("12"))
	require.NoError(t, err)

	require.Len(t, draws, 2, "debe tomar de ambas capas")
	assert.Equal(t, "A", draws[0].Layer.ID, "la capa más antigua se consume primero")
	assert.True(t, draws[0].ConsumedQty.Equal(dec("10")), "la capa A se agota completa")
	assert.Equal(t, "B", draws[1].Layer.ID)
	assert.True(t, draws[1].ConsumedQty.Equal(dec("2")), "la capa B aporta el sobrante")
	assert.True(t, total.Equal(dec("26")), "costo total = 10*2 + 2*3")
}

func TestPlanFIFO_UnaCapasAlcanza(t *testing.T) {
	layers := []*entity.CostLayer{
		layer("A", "10", "1.50", 0),
		layer("B", "5", "9.00", 10),
	}

	draws, total, err := costing.PlanFIFO(layers, dec("4"))
	require.NoError(t, err)

	require.Len(t, draws, 1, "no debe tocar la segunda capa")
	assert.True(t, draws[0].ConsumedQty.Equal(dec("4")))
	assert.True(t, total.Equal(dec("6")), "4 * 1.50")
}

// El costo extendido de cada draw conserva qty * unit_cost de su capa.
func TestPlanFIFO_CostoExtendidoPorDraw(t *testing.T) {
	layers := []*entity.CostLayer{
		layer("A", "3", "0.3333", 0),
		layer("B", "7", "1.25", 5),
	}

	draws, total, err := costing.PlanFIFO(layers, dec("5"))
	require.NoError(t, err)
	require.Len(t, draws, 2)

	sum := decimal.Zero
	for _, d := range draws {
		assert.True(t, d.ExtendedCost.Equal(d.ConsumedQty.Mul(d.Layer.UnitCost)),
			"extended = qty * unit_cost de la capa")
		sum = sum.Add(d.ExtendedCost)
	}
	assert.True(t, total.Equal(sum), "el total es la suma exacta de los draws")
}

// ──────────────────────────────────────────────────────────────────────────────
// Todo-o-nada
// ──────────────────────────────────────────────────────────────────────────────

// Si las capas no alcanzan, no hay consumo parcial: error con el disponible real.
func TestPlanFIFO_InsuficienteNoConsumeNada(t *testing.T) {
	layers := []*entity.CostLayer{
		layer("A", "10", "2.00", 0),
		layer("B", "5", "3.00", 10),
	}

	draws, _, err := costing.PlanFIFO(layers, dec("20"))
	require.Error(t, err)
	assert.Nil(t, draws, "no se devuelven draws parciales")

	pe, ok := domain.AsPostingError(err)
	require.True(t, ok, "debe ser un PostingError")
	assert.Equal(t, domain.CodeInsufficientCostLayers, pe.Code)
	assert.True(t, pe.Requested.Equal(dec("20")))
	assert.True(t, pe.Available.Equal(dec("15")), "reporta el disponible agregado de las capas")
}

func TestPlanFIFO_SinCapas(t *testing.T) {
	_, _, err := costing.PlanFIFO(nil, dec("1"))
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeInsufficientCostLayers))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestPlanFIFO_CantidadNoPositiva(t *testing.T) {
	layers := []*entity.CostLayer{layer("A", "10", "2.00", 0)}

	for _, qty := range []string{"0", "-1"} {
		_, _, err := costing.PlanFIFO(layers, dec(qty))
		require.Error(t, err, "qty %s debe rechazarse", qty)
		assert.True(t, domain.IsPostingCode(err, domain.CodeInvalidQuantity))
	}
}

// Capas con remaining 0 no aportan; la planificación las salta sin contar su costo.
func TestPlanFIFO_IgnoraCapasAgotadas(t *testing.T) {
	empty := layer("A", "10", "2.00", 0)
	empty.QuantityRemaining = decimal.Zero
	layers := []*entity.CostLayer{
		empty,
		layer("B", "5", "3.00", 10),
	}

	draws, total, err := costing.PlanFIFO(layers, dec("5"))
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, "B", draws[0].Layer.ID)
	assert.True(t, total.Equal(dec("15")))
}
