package entity

import "time"

// Tipos de ubicación.
const (
	LocationKindWarehouse  = "warehouse"  // almacén general
	LocationKindProduction = "production" // planta / línea de producción
	LocationKindScrap      = "scrap"      // merma y desperdicio
)

// Location representa una ubicación física donde se almacena o consume inventario
// (bodega, planta o zona de merma). Las capas de costo viven por (ítem, ubicación).
type Location struct {
	ID        string
	CompanyID string
	Code      string // código corto único por empresa
	Name      string
	Kind      string // ver constantes LocationKind*
	CreatedAt time.Time
	UpdatedAt time.Time
}
