package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Manufactura-api/internal/application/reconciliation"
)

// ReconciliationHandler expone el verificador de conciliación (protegido, admin).
type ReconciliationHandler struct {
	verifier *reconciliation.Verifier
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(verifier *reconciliation.Verifier) *ReconciliationHandler {
	return &ReconciliationHandler{verifier: verifier}
}

// Run godoc
// @Summary      Correr la verificación de conciliación
// @Description  Recomputa los invariantes de conservación del ledger (remaining
//               de capas, sobre-consumo, conservación de costo WIP, on-hand) en
//               solo lectura y devuelve el reporte de violaciones.
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  reconciliation.Report
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/run [post]
func (h *ReconciliationHandler) Run(c *fiber.Ctx) error {
	report, err := h.verifier.Run(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
