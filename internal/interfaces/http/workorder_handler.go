package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/manufacturing"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// WorkOrderHandler maneja el ciclo de vida documental y los posteos de órdenes
// de trabajo (protegido).
type WorkOrderHandler struct {
	woUC      *manufacturing.WorkOrderUseCase
	postingUC *manufacturing.PostingUseCase
}

// NewWorkOrderHandler construye el handler.
func NewWorkOrderHandler(woUC *manufacturing.WorkOrderUseCase, postingUC *manufacturing.PostingUseCase) *WorkOrderHandler {
	return &WorkOrderHandler{woUC: woUC, postingUC: postingUC}
}

// Create godoc
// @Summary      Crear orden de trabajo en draft
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWorkOrderRequest  true  "kind, output_item_id, output_uom, quantity_planned"
// @Success      201   {object}  dto.WorkOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/work-orders [post]
func (h *WorkOrderHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateWorkOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	wo, err := h.woUC.CreateWorkOrder(c.Context(), companyID, userID, manufacturing.CreateWorkOrderInput{
		Code:            in.Code,
		Kind:            in.Kind,
		BOMID:           in.BOMID,
		BOMVersionID:    in.BOMVersionID,
		OutputItemID:    in.OutputItemID,
		OutputUOM:       in.OutputUOM,
		QuantityPlanned: in.QuantityPlanned,
		Notes:           in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toWorkOrderResponse(wo))
}

// GetByID godoc
// @Summary      Obtener orden con sus documentos
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Work Order ID"
// @Success      200  {object}  dto.WorkOrderDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id} [get]
func (h *WorkOrderHandler) GetByID(c *fiber.Ctx) error {
	detail, err := h.woUC.GetWorkOrder(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.WorkOrderDetailResponse{
		WorkOrder:  *toWorkOrderResponse(detail.WorkOrder),
		Issues:     make([]dto.IssueResponse, 0, len(detail.Issues)),
		Executions: make([]dto.ExecutionResponse, 0, len(detail.Executions)),
	}
	for _, issue := range detail.Issues {
		resp.Issues = append(resp.Issues, *toIssueResponse(issue))
	}
	for _, exec := range detail.Executions {
		resp.Executions = append(resp.Executions, *toExecutionResponse(exec))
	}
	return c.JSON(resp)
}

// List godoc
// @Summary      Listar órdenes de la empresa
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "draft | in_progress | completed | canceled"
// @Param        limit   query  int     false  "máximo de filas (default 20)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}  dto.WorkOrderResponse
// @Router       /api/work-orders [get]
func (h *WorkOrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	orders, err := h.woUC.ListWorkOrders(c.Context(), GetCompanyID(c), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.WorkOrderResponse, 0, len(orders))
	for _, wo := range orders {
		out = append(out, *toWorkOrderResponse(wo))
	}
	return c.JSON(out)
}

// CreateIssue godoc
// @Summary      Crear emisión de materiales en draft
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Work Order ID"
// @Param        body  body  dto.CreateIssueRequest  true  "líneas de componentes"
// @Success      201   {object}  dto.IssueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/issues [post]
func (h *WorkOrderHandler) CreateIssue(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	var in dto.CreateIssueRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]manufacturing.IssueLineInput, 0, len(in.Lines))
	for _, ln := range in.Lines {
		lines = append(lines, manufacturing.IssueLineInput{
			ComponentItemID: ln.ComponentItemID,
			UOM:             ln.UOM,
			Quantity:        ln.Quantity,
			FromLocationID:  ln.FromLocationID,
			ReasonCode:      ln.ReasonCode,
		})
	}
	issue, err := h.woUC.CreateIssue(c.Context(), companyID, userID, c.Params("id"), in.OccurredAt, in.Notes, lines)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toIssueResponse(issue))
}

// PostIssue godoc
// @Summary      Postear emisión draft
// @Description  Chequea suficiencia de stock, consume capas FIFO y deja las
//               filas de consumo en el pool WIP de la orden. Con stock corto el
//               posteo se rechaza salvo override autorizado por supervisor o
//               admin con razón; el override queda auditado.
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        issueID  path  string                true  "Issue ID"
// @Param        body     body  dto.PostIssueRequest  false "override opcional"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/issues/{issueID}/post [post]
func (h *WorkOrderHandler) PostIssue(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	var in dto.PostIssueRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	override := manufacturing.OverrideContext{
		Requested: in.Override.Requested,
		Reason:    in.Override.Reason,
		ActorID:   userID,
		ActorRole: GetRole(c),
	}
	if err := h.postingUC.PostMaterialIssue(c.Context(), companyID, userID, c.Params("issueID"), override); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "emisión posteada"})
}

// CancelIssue godoc
// @Summary      Cancelar emisión draft
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        issueID  path  string  true  "Issue ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/issues/{issueID}/cancel [post]
func (h *WorkOrderHandler) CancelIssue(c *fiber.Ctx) error {
	if err := h.woUC.CancelIssue(c.Context(), GetCompanyID(c), c.Params("issueID")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "emisión cancelada"})
}

// CreateExecution godoc
// @Summary      Crear terminación en draft
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "Work Order ID"
// @Param        body  body  dto.CreateExecutionRequest  true  "líneas de producto"
// @Success      201   {object}  dto.ExecutionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/executions [post]
func (h *WorkOrderHandler) CreateExecution(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	var in dto.CreateExecutionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]manufacturing.ExecutionLineInput, 0, len(in.Lines))
	for _, ln := range in.Lines {
		lines = append(lines, manufacturing.ExecutionLineInput{
			ItemID:       ln.ItemID,
			UOM:          ln.UOM,
			Quantity:     ln.Quantity,
			PackSize:     ln.PackSize,
			ToLocationID: ln.ToLocationID,
			ReasonCode:   ln.ReasonCode,
		})
	}
	exec, err := h.woUC.CreateExecution(c.Context(), companyID, userID, c.Params("id"), in.OccurredAt, in.Notes, lines)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toExecutionResponse(exec))
}

// PostExecution godoc
// @Summary      Postear terminación draft
// @Description  Reclama el pool WIP completo de la orden, lo asigna
//               proporcionalmente entre las líneas de producto y crea las capas
//               de costo del producto terminado.
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        executionID  path  string  true  "Execution ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/executions/{executionID}/post [post]
func (h *WorkOrderHandler) PostExecution(c *fiber.Ctx) error {
	if err := h.postingUC.PostExecution(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("executionID")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "terminación posteada"})
}

// CancelExecution godoc
// @Summary      Cancelar terminación draft
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        executionID  path  string  true  "Execution ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/executions/{executionID}/cancel [post]
func (h *WorkOrderHandler) CancelExecution(c *fiber.Ctx) error {
	if err := h.woUC.CancelExecution(c.Context(), GetCompanyID(c), c.Params("executionID")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "terminación cancelada"})
}

// Backflush godoc
// @Summary      Postear consumo y producción en una llamada atómica
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BackflushRequest  true  "work_order_id, issues, outputs"
// @Success      201   {object}  dto.BackflushResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/work-orders/backflush [post]
func (h *WorkOrderHandler) Backflush(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	var in dto.BackflushRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := manufacturing.BackflushInput{
		WorkOrderID: in.WorkOrderID,
		OccurredAt:  in.OccurredAt,
		Notes:       in.Notes,
		Override: manufacturing.OverrideContext{
			Requested: in.Override.Requested,
			Reason:    in.Override.Reason,
			ActorID:   userID,
			ActorRole: GetRole(c),
		},
	}
	for _, ln := range in.Issues {
		input.Issues = append(input.Issues, manufacturing.BackflushIssueLine{
			ComponentItemID: ln.ComponentItemID,
			UOM:             ln.UOM,
			Quantity:        ln.Quantity,
			FromLocationID:  ln.FromLocationID,
			ReasonCode:      ln.ReasonCode,
		})
	}
	for _, ln := range in.Outputs {
		input.Outputs = append(input.Outputs, manufacturing.BackflushOutputLine{
			ItemID:       ln.ItemID,
			UOM:          ln.UOM,
			Quantity:     ln.Quantity,
			PackSize:     ln.PackSize,
			ToLocationID: ln.ToLocationID,
			ReasonCode:   ln.ReasonCode,
		})
	}
	result, err := h.postingUC.PostBackflush(c.Context(), companyID, userID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BackflushResponse{
		IssueID:               result.IssueID,
		ExecutionID:           result.ExecutionID,
		ConsumptionMovementID: result.ConsumptionMovementID,
		ProductionMovementID:  result.ProductionMovementID,
	})
}

// UnclaimedWIP godoc
// @Summary      Pool WIP sin reclamar de una orden
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Work Order ID"
// @Success      200  {object}  dto.UnclaimedWIPResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/wip [get]
func (h *WorkOrderHandler) UnclaimedWIP(c *fiber.Ctx) error {
	workOrderID := c.Params("id")
	rows, total, err := h.woUC.UnclaimedWIP(c.Context(), GetCompanyID(c), workOrderID)
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.UnclaimedWIPResponse{
		WorkOrderID:  workOrderID,
		TotalCost:    total,
		Consumptions: make([]dto.WIPConsumptionResponse, 0, len(rows)),
	}
	for _, cons := range rows {
		resp.Consumptions = append(resp.Consumptions, dto.WIPConsumptionResponse{
			ID:           cons.ID,
			CostLayerID:  cons.LayerID,
			Quantity:     cons.ConsumedQty,
			ExtendedCost: cons.ExtendedCost,
			Claimed:      cons.IsClaimed(),
		})
	}
	return c.JSON(resp)
}

func toWorkOrderResponse(wo *entity.WorkOrder) *dto.WorkOrderResponse {
	return &dto.WorkOrderResponse{
		ID:                   wo.ID,
		CompanyID:            wo.CompanyID,
		Code:                 wo.Code,
		Status:               wo.Status,
		Kind:                 wo.Kind,
		BOMID:                wo.BOMID,
		BOMVersionID:         wo.BOMVersionID,
		OutputItemID:         wo.OutputItemID,
		OutputUOM:            wo.OutputUOM,
		QuantityPlanned:      wo.QuantityPlanned,
		QuantityCompleted:    wo.QuantityCompleted,
		WIPTotalCost:         wo.WIPTotalCost,
		WIPUnitCost:          wo.WIPUnitCost,
		WIPQuantityCanonical: wo.WIPQuantityCanonical,
		WIPCostMethod:        wo.WIPCostMethod,
		Notes:                wo.Notes,
		CompletedAt:          wo.CompletedAt,
		CreatedAt:            wo.CreatedAt,
		UpdatedAt:            wo.UpdatedAt,
	}
}

func toIssueResponse(issue *entity.WorkOrderMaterialIssue) *dto.IssueResponse {
	resp := &dto.IssueResponse{
		ID:                  issue.ID,
		WorkOrderID:         issue.WorkOrderID,
		Status:              issue.Status,
		OccurredAt:          issue.OccurredAt,
		InventoryMovementID: issue.InventoryMovementID,
		Notes:               issue.Notes,
		CreatedAt:           issue.CreatedAt,
		PostedAt:            issue.PostedAt,
		Lines:               make([]dto.IssueLineResponse, 0, len(issue.Lines)),
	}
	for _, ln := range issue.Lines {
		resp.Lines = append(resp.Lines, dto.IssueLineResponse{
			ID:              ln.ID,
			ComponentItemID: ln.ComponentItemID,
			UOM:             ln.UOM,
			QuantityIssued:  ln.QuantityIssued,
			FromLocationID:  ln.FromLocationID,
			ReasonCode:      ln.ReasonCode,
		})
	}
	return resp
}

func toExecutionResponse(exec *entity.WorkOrderExecution) *dto.ExecutionResponse {
	resp := &dto.ExecutionResponse{
		ID:                    exec.ID,
		WorkOrderID:           exec.WorkOrderID,
		Status:                exec.Status,
		OccurredAt:            exec.OccurredAt,
		ConsumptionMovementID: exec.ConsumptionMovementID,
		ProductionMovementID:  exec.ProductionMovementID,
		WIPTotalCost:          exec.WIPTotalCost,
		WIPUnitCost:           exec.WIPUnitCost,
		WIPQuantityCanonical:  exec.WIPQuantityCanonical,
		WIPCostMethod:         exec.WIPCostMethod,
		CostedAt:              exec.CostedAt,
		Notes:                 exec.Notes,
		CreatedAt:             exec.CreatedAt,
		PostedAt:              exec.PostedAt,
		Lines:                 make([]dto.ExecutionLineResponse, 0, len(exec.Lines)),
	}
	for _, ln := range exec.Lines {
		resp.Lines = append(resp.Lines, dto.ExecutionLineResponse{
			ID:           ln.ID,
			ItemID:       ln.ItemID,
			UOM:          ln.UOM,
			Quantity:     ln.Quantity,
			PackSize:     ln.PackSize,
			ToLocationID: ln.ToLocationID,
			ReasonCode:   ln.ReasonCode,
		})
	}
	return resp
}
