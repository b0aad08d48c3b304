package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un ítem con su dimensión y unidad canónica.
type CreateItemRequest struct {
	SKU          string          `json:"sku" validate:"required,max=64"`
	Name         string          `json:"name" validate:"required,max=200"`
	Description  string          `json:"description" validate:"omitempty,max=1000"`
	UOMDimension string          `json:"uom_dimension" validate:"required,oneof=mass volume count length"`
	CanonicalUOM string          `json:"canonical_uom" validate:"required,max=16"`
	DefaultUOM   string          `json:"default_uom" validate:"omitempty,max=16"`
	StandardCost decimal.Decimal `json:"standard_cost"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	UOMDimension string          `json:"uom_dimension"`
	CanonicalUOM string          `json:"canonical_uom"`
	DefaultUOM   string          `json:"default_uom,omitempty"`
	StandardCost decimal.Decimal `json:"standard_cost"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	Code string `json:"code" validate:"required,max=32"`
	Name string `json:"name" validate:"required,max=200"`
	Kind string `json:"kind" validate:"required,oneof=warehouse production scrap"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUOMConversionRequest registra un factor de conversión dentro de una dimensión.
type CreateUOMConversionRequest struct {
	Dimension string          `json:"dimension" validate:"required,oneof=mass volume count length"`
	FromUOM   string          `json:"from_uom" validate:"required,max=16"`
	ToUOM     string          `json:"to_uom" validate:"required,max=16"`
	Factor    decimal.Decimal `json:"factor" validate:"required"`
	Global    bool            `json:"global"` // true = aplica a todas las empresas
}

// UOMConversionResponse salida de un factor registrado.
type UOMConversionResponse struct {
	ID        string          `json:"id"`
	CompanyID string          `json:"company_id,omitempty"`
	Dimension string          `json:"dimension"`
	FromUOM   string          `json:"from_uom"`
	ToUOM     string          `json:"to_uom"`
	Factor    decimal.Decimal `json:"factor"`
}

// CreateCompanyRequest alta de una empresa (tenant).
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	TaxID   string `json:"tax_id" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"omitempty,max=300"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
