package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/domain"
)

// respondError traduce errores de dominio a respuestas HTTP. Los PostingError
// conservan su código y payload estructurado: el cliente ramifica por Code,
// nunca por el texto.
func respondError(c *fiber.Ctx, err error) error {
	if pe, ok := domain.AsPostingError(err); ok {
		return c.Status(postingStatus(pe.Code)).JSON(toErrorResponse(pe))
	}
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// postingStatus mapea el código de posteo al status HTTP: 404 para no
// encontrado, 409 para conflictos de estado o de stock, 422 para cargas
// válidas en forma pero imposibles de postear, 400 para el resto.
func postingStatus(code domain.PostingCode) int {
	switch code {
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeInvalidState, domain.CodeAlreadyPosted,
		domain.CodeInsufficientStock, domain.CodeInsufficientCostLayers,
		domain.CodeNoConsumptions, domain.CodeLayerScanLimit:
		return fiber.StatusConflict
	case domain.CodeUOMConversionNotFound:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadRequest
	}
}

func toErrorResponse(pe *domain.PostingError) dto.ErrorResponse {
	resp := dto.ErrorResponse{
		Code:       string(pe.Code),
		Message:    pe.Error(),
		EntityID:   pe.EntityID,
		ItemID:     pe.ItemID,
		LocationID: pe.LocationID,
		UOM:        pe.UOM,
	}
	if !pe.Requested.Equal(decimal.Zero) {
		resp.Requested = pe.Requested.String()
	}
	if !pe.Available.Equal(decimal.Zero) || pe.Code == domain.CodeInsufficientStock || pe.Code == domain.CodeInsufficientCostLayers {
		resp.Available = pe.Available.String()
	}
	for _, s := range pe.Shortfalls {
		resp.Shortfalls = append(resp.Shortfalls, dto.ShortfallResponse{
			ItemID:     s.ItemID,
			LocationID: s.LocationID,
			UOM:        s.UOM,
			Requested:  s.Requested.String(),
			Available:  s.Available.String(),
		})
	}
	return resp
}
