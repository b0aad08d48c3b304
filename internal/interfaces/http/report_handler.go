package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/manufacturing"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
	"github.com/jhoicas/Manufactura-api/internal/infrastructure/pdf"
)

// ReportHandler genera reportes PDF de órdenes de trabajo (protegido).
type ReportHandler struct {
	woUC        *manufacturing.WorkOrderUseCase
	companyRepo repository.CompanyRepository
	generator   *pdf.MarotoPDFGenerator
}

// NewReportHandler construye el handler.
func NewReportHandler(woUC *manufacturing.WorkOrderUseCase, companyRepo repository.CompanyRepository, generator *pdf.MarotoPDFGenerator) *ReportHandler {
	return &ReportHandler{woUC: woUC, companyRepo: companyRepo, generator: generator}
}

// CostReport godoc
// @Summary      Reporte PDF de costos de una orden
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "Work Order ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/cost-report [get]
func (h *ReportHandler) CostReport(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	detail, err := h.woUC.GetWorkOrder(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	_, unclaimed, err := h.woUC.UnclaimedWIP(c.Context(), companyID, detail.WorkOrder.ID)
	if err != nil {
		return respondError(c, err)
	}
	company, err := h.companyRepo.GetByID(c.Context(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	if company == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "empresa no encontrada"})
	}

	bytes, err := h.generator.GenerateCostReport(c.Context(), pdf.CostReportData{
		Company:      company,
		WorkOrder:    detail.WorkOrder,
		Issues:       detail.Issues,
		Executions:   detail.Executions,
		UnclaimedWIP: unclaimed,
	})
	if err != nil {
		return respondError(c, err)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="cost-report-`+detail.WorkOrder.Code+`.pdf"`)
	return c.Send(bytes)
}
