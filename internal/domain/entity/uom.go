package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UOMConversion define el factor de conversión de una unidad hacia otra dentro de
// una misma dimensión: qty(to_uom) = qty(from_uom) * Factor.
// CompanyID vacío = conversión global; una fila por empresa la sobreescribe
// (ej. "case" de 12 para una planta y de 24 para otra).
type UOMConversion struct {
	ID        string
	CompanyID string // "" = global
	Dimension string // ver constantes Dimension* en item.go
	FromUOM   string
	ToUOM     string
	Factor    decimal.Decimal // > 0
	CreatedAt time.Time
}

// CanonicalQuantity resultado de normalizar una cantidad capturada a la unidad
// canónica del ítem. Conserva lo capturado para el registro contable.
type CanonicalQuantity struct {
	QtyEntered   decimal.Decimal
	UOMEntered   string
	QtyCanonical decimal.Decimal
	CanonicalUOM string
	Dimension    string
}
