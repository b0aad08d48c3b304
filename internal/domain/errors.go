package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio genéricos (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// PostingCode discriminante cerrado de los errores del motor de producción.
// Los callers ramifican por código, nunca por texto del error.
type PostingCode string

const (
	CodeNotFound                 PostingCode = "NOT_FOUND"
	CodeInvalidState             PostingCode = "INVALID_STATE"
	CodeAlreadyPosted            PostingCode = "ALREADY_POSTED"
	CodeNoLines                  PostingCode = "NO_LINES"
	CodeItemMismatch             PostingCode = "ITEM_MISMATCH"
	CodeInvalidQuantity          PostingCode = "INVALID_QUANTITY"
	CodeNoConsumptions           PostingCode = "NO_CONSUMPTIONS"
	CodeInvalidOutputQty         PostingCode = "INVALID_OUTPUT_QTY"
	CodeDisassemblyInputMismatch PostingCode = "DISASSEMBLY_INPUT_MISMATCH"
	CodeInsufficientStock        PostingCode = "INSUFFICIENT_STOCK"
	CodeInsufficientCostLayers   PostingCode = "INSUFFICIENT_COST_LAYERS"
	CodeUOMConversionNotFound    PostingCode = "UOM_CONVERSION_NOT_FOUND"
	CodeLayerScanLimit           PostingCode = "LAYER_SCAN_LIMIT"
)

// StockShortfall faltante agregado por (ítem, ubicación), en cantidad canónica.
type StockShortfall struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	UOM        string          `json:"uom"`
	Requested  decimal.Decimal `json:"requested"`
	Available  decimal.Decimal `json:"available"`
}

// PostingError error estructurado del motor: código estable más el payload
// (ids, cantidades) necesario para que el caller arme su respuesta.
type PostingError struct {
	Code       PostingCode
	EntityID   string // documento o entidad ofensora, según el código
	ItemID     string
	LocationID string
	UOM        string
	Requested  decimal.Decimal
	Available  decimal.Decimal
	Shortfalls []StockShortfall // INSUFFICIENT_STOCK: todos los faltantes del documento
	Detail     string
}

// Error implementa error.
func (e *PostingError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	return string(e.Code)
}

// NewPostingError construye un error de posteo con detalle opcional.
func NewPostingError(code PostingCode, detail string) *PostingError {
	return &PostingError{Code: code, Detail: detail}
}

// AsPostingError extrae el *PostingError de una cadena de errores, si existe.
func AsPostingError(err error) (*PostingError, bool) {
	var pe *PostingError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsPostingCode indica si err es un PostingError con el código dado.
func IsPostingCode(err error, code PostingCode) bool {
	pe, ok := AsPostingError(err)
	return ok && pe.Code == code
}
