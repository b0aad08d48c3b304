package uom_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/internal/application/uom"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeItemRepo struct {
	items map[string]*entity.Item
}

func (f *fakeItemRepo) Create(ctx context.Context, item *entity.Item) error { return nil }
func (f *fakeItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return f.items[id], nil
}
func (f *fakeItemRepo) GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Item, error) {
	return nil, nil
}
func (f *fakeItemRepo) Update(ctx context.Context, item *entity.Item) error { return nil }
func (f *fakeItemRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Item, error) {
	return nil, nil
}

type fakeConvRepo struct {
	convs []*entity.UOMConversion
}

func (f *fakeConvRepo) Create(ctx context.Context, conv *entity.UOMConversion) error { return nil }
func (f *fakeConvRepo) GetFactor(ctx context.Context, companyID, dimension, fromUOM, toUOM string) (*entity.UOMConversion, error) {
	// Primero el factor propio de la empresa, luego el global.
	var global *entity.UOMConversion
	for _, c := range f.convs {
		if c.Dimension != dimension || c.FromUOM != fromUOM || c.ToUOM != toUOM {
			continue
		}
		if c.CompanyID == companyID {
			return c, nil
		}
		if c.CompanyID == "" {
			global = c
		}
	}
	return global, nil
}
func (f *fakeConvRepo) ListByDimension(ctx context.Context, companyID, dimension string) ([]*entity.UOMConversion, error) {
	return nil, nil
}

const (
	testCompanyID = "00000000-0000-0000-0000-0000000000c1"
	testItemID    = "00000000-0000-0000-0000-0000000000a1"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func buildNormalizer(convs ...*entity.UOMConversion) *uom.Normalizer {
	items := &fakeItemRepo{items: map[string]*entity.Item{
		testItemID: {
			ID:           testItemID,
			CompanyID:    testCompanyID,
			SKU:          "HAR-001",
			Name:         "Harina de trigo",
			UOMDimension: entity.DimensionMass,
			CanonicalUOM: "g",
			DefaultUOM:   "kg",
		},
	}}
	return uom.NewNormalizer(items, &fakeConvRepo{convs: convs})
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: la unidad capturada ya es la canónica; el factor es identidad.
func TestNormalize_Identidad(t *testing.T) {
	n := buildNormalizer()

	cq, err := n.Normalize(context.Background(), testCompanyID, testItemID, dec("250"), "g")
	require.NoError(t, err)

	assert.True(t, cq.QtyCanonical.Equal(dec("250")))
	assert.Equal(t, "g", cq.CanonicalUOM)
	assert.Equal(t, "g", cq.UOMEntered)
	assert.Equal(t, entity.DimensionMass, cq.Dimension)
}

// Caso 2: factor directo kg→g registrado.
func TestNormalize_FactorDirecto(t *testing.T) {
	n := buildNormalizer(&entity.UOMConversion{
		CompanyID: "", Dimension: entity.DimensionMass,
		FromUOM: "kg", ToUOM: "g", Factor: dec("1000"),
	})

	cq, err := n.Normalize(context.Background(), testCompanyID, testItemID, dec("2.5"), "kg")
	require.NoError(t, err)

	assert.True(t, cq.QtyCanonical.Equal(dec("2500")), "2.5 kg = 2500 g")
	assert.True(t, cq.QtyEntered.Equal(dec("2.5")), "conserva lo capturado")
	assert.Equal(t, "kg", cq.UOMEntered)
}

// Caso 3: sin factor directo, se usa el inverso del factor canónica→capturada.
func TestNormalize_FactorInverso(t *testing.T) {
	n := buildNormalizer(&entity.UOMConversion{
		CompanyID: "", Dimension: entity.DimensionMass,
		FromUOM: "g", ToUOM: "kg", Factor: dec("0.001"),
	})

	cq, err := n.Normalize(context.Background(), testCompanyID, testItemID, dec("3"), "kg")
	require.NoError(t, err)

	assert.True(t, cq.QtyCanonical.Equal(dec("3000")), "3 kg via inverso de 0.001")
}

// Caso 4: el factor de la empresa pisa al global (packs distintos por planta).
func TestNormalize_FactorDeEmpresaSobreGlobal(t *testing.T) {
	n := buildNormalizer(
		&entity.UOMConversion{
			CompanyID: "", Dimension: entity.DimensionMass,
			FromUOM: "saco", ToUOM: "g", Factor: dec("25000"),
		},
		&entity.UOMConversion{
			CompanyID: testCompanyID, Dimension: entity.DimensionMass,
			FromUOM: "saco", ToUOM: "g", Factor: dec("50000"),
		},
	)

	cq, err := n.Normalize(context.Background(), testCompanyID, testItemID, dec("2"), "saco")
	require.NoError(t, err)
	assert.True(t, cq.QtyCanonical.Equal(dec("100000")), "usa el factor de la empresa, no el global")
}

// Caso 5: el signo se preserva (reversos / desensamble capturan negativos).
func TestNormalize_PreservaSigno(t *testing.T) {
	n := buildNormalizer(&entity.UOMConversion{
		CompanyID: "", Dimension: entity.DimensionMass,
		FromUOM: "kg", ToUOM: "g", Factor: dec("1000"),
	})

	cq, err := n.Normalize(context.Background(), testCompanyID, testItemID, dec("-1.5"), "kg")
	require.NoError(t, err)
	assert.True(t, cq.QtyCanonical.Equal(dec("-1500")))
}

// Caso 6: sin ruta de conversión falla duro, nunca asume 1:1.
func TestNormalize_SinRutaDeConversion(t *testing.T) {
	n := buildNormalizer()

	_, err := n.Normalize(context.Background(), testCompanyID, testItemID, dec("1"), "lb")
	require.Error(t, err)

	pe, ok := domain.AsPostingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeUOMConversionNotFound, pe.Code)
	assert.Equal(t, testItemID, pe.ItemID)
	assert.Equal(t, "lb", pe.UOM)
}

// Caso 7: ítem inexistente o de otra empresa ⇒ NOT_FOUND.
func TestNormalize_ItemNoEncontrado(t *testing.T) {
	n := buildNormalizer()

	_, err := n.Normalize(context.Background(), testCompanyID, "otro-item", dec("1"), "g")
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeNotFound))

	_, err = n.Normalize(context.Background(), "otra-empresa", testItemID, dec("1"), "g")
	require.Error(t, err)
	assert.True(t, domain.IsPostingCode(err, domain.CodeNotFound), "tenencia cruzada se trata como inexistente")
}
