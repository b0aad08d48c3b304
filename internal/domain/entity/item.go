package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dimensiones de unidad de medida soportadas.
const (
	DimensionMass   = "mass"
	DimensionVolume = "volume"
	DimensionCount  = "count"
	DimensionLength = "length"
)

// Item representa un ítem manufacturable o consumible (materia prima, semielaborado
// o producto terminado). Declara su dimensión de UOM y la unidad canónica en la que
// se agregan y asignan costos; toda cantidad posteada se normaliza a esa unidad.
type Item struct {
	ID           string
	CompanyID    string
	SKU          string // código único por empresa
	Name         string
	Description  string
	UOMDimension string // ver constantes Dimension*
	CanonicalUOM string // unidad canónica de la dimensión (ej. "g", "ml", "unit")
	DefaultUOM   string // unidad de captura por defecto
	StandardCost decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
