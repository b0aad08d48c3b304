package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/manufacturing"
	"github.com/jhoicas/Manufactura-api/internal/application/usecase"
)

// InventoryHandler maneja recepciones valorizadas, saldos y consultas del ledger
// de movimientos (protegido).
type InventoryHandler struct {
	postingUC *manufacturing.PostingUseCase
	woUC      *manufacturing.WorkOrderUseCase
	movUC     *usecase.MovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(postingUC *manufacturing.PostingUseCase, woUC *manufacturing.WorkOrderUseCase, movUC *usecase.MovementUseCase) *InventoryHandler {
	return &InventoryHandler{postingUC: postingUC, woUC: woUC, movUC: movUC}
}

// PostReceipt godoc
// @Summary      Postear recepción de inventario
// @Description  Crea un movimiento receive y una capa de costo nueva por línea.
//               Las capas nacen con remaining = qty en la unidad canónica del
//               ítem y su costo unitario jamás se edita después.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "líneas con item, ubicación, qty y unit_cost"
// @Success      201   {object}  dto.ReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) PostReceipt(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := manufacturing.ReceiptInput{
		OccurredAt:  in.OccurredAt,
		ExternalRef: in.ExternalRef,
		SourceType:  in.SourceType,
		Notes:       in.Notes,
	}
	for _, ln := range in.Lines {
		input.Lines = append(input.Lines, manufacturing.ReceiptLine{
			ItemID:     ln.ItemID,
			LocationID: ln.LocationID,
			UOM:        ln.UOM,
			Quantity:   ln.Quantity,
			UnitCost:   ln.UnitCost,
			ReasonCode: ln.ReasonCode,
		})
	}
	movementID, err := h.postingUC.PostReceipt(c.Context(), companyID, userID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReceiptResponse{MovementID: movementID})
}

// OnHand godoc
// @Summary      Saldo disponible de un ítem en una ubicación
// @Description  Suma de remaining de las capas de costo, en la unidad canónica
//               del ítem.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true  "Item ID"
// @Param        location_id  query  string  true  "Location ID"
// @Success      200  {object}  dto.OnHandResponse
// @Router       /api/inventory/on-hand [get]
func (h *InventoryHandler) OnHand(c *fiber.Ctx) error {
	itemID, locationID := c.Query("item_id"), c.Query("location_id")
	if itemID == "" || locationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_id y location_id son requeridos"})
	}
	onHand, err := h.woUC.OnHand(c.Context(), GetCompanyID(c), itemID, locationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OnHandResponse{ItemID: itemID, LocationID: locationID, OnHand: onHand})
}

// ListMovements godoc
// @Summary      Listar movimientos del ledger
// @Description  Lista movimientos que tocan un ítem o una ubicación, con rango de
//               fechas opcional sobre occurred_at. Exactamente uno de item_id o
//               location_id es requerido.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Item ID"
// @Param        location_id  query  string  false  "Location ID"
// @Param        from         query  string  false  "RFC3339"
// @Param        to           query  string  false  "RFC3339"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	itemID, locationID := c.Query("item_id"), c.Query("location_id")
	if (itemID == "") == (locationID == "") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "exactamente uno de item_id o location_id es requerido"})
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	companyID := GetCompanyID(c)
	var list []dto.MovementResponse
	if itemID != "" {
		list, err = h.movUC.ListByItem(c.Context(), companyID, itemID, from, to, page.Limit, page.Offset)
	} else {
		list, err = h.movUC.ListByLocation(c.Context(), companyID, locationID, from, to, page.Limit, page.Offset)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetMovement godoc
// @Summary      Detalle de un movimiento
// @Description  Movimiento con sus líneas; los movimientos posteados son inmutables.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Movement ID"
// @Success      200  {object}  dto.MovementDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	detail, err := h.movUC.GetByID(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if detail == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	}
	return c.JSON(detail)
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
