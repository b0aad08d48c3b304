package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Manufactura-api/internal/application/auth"
	"github.com/jhoicas/Manufactura-api/internal/application/manufacturing"
	"github.com/jhoicas/Manufactura-api/internal/application/reconciliation"
	"github.com/jhoicas/Manufactura-api/internal/application/usecase"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
	"github.com/jhoicas/Manufactura-api/internal/infrastructure/pdf"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC   *usecase.CompanyUseCase
	ItemUC      *usecase.ItemUseCase
	LocationUC  *usecase.LocationUseCase
	UOMUC       *usecase.UOMUseCase
	MovementUC  *usecase.MovementUseCase
	WorkOrderUC *manufacturing.WorkOrderUseCase
	PostingUC   *manufacturing.PostingUseCase
	Verifier    *reconciliation.Verifier
	AuthUC      *auth.AuthUseCase
	CompanyRepo repository.CompanyRepository
	PDF         *pdf.MarotoPDFGenerator
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth: login público, registro requiere token (alta dentro de la empresa).
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Companies (público: bootstrap de tenant)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	api.Post("/companies", companyHandler.Create)
	api.Get("/companies/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protected.Post("/auth/register", RequireRole(entity.RoleAdmin), authHandler.Register)

	// Maestros
	itemHandler := NewItemHandler(deps.ItemUC)
	protected.Post("/items", itemHandler.Create)
	protected.Get("/items", itemHandler.List)
	protected.Get("/items/:id", itemHandler.GetByID)

	locationHandler := NewLocationHandler(deps.LocationUC)
	protected.Post("/locations", locationHandler.Create)
	protected.Get("/locations", locationHandler.List)

	uomHandler := NewUOMHandler(deps.UOMUC)
	protected.Post("/uom/conversions", uomHandler.Create)
	protected.Get("/uom/conversions", uomHandler.List)

	// Inventario: recepciones, saldos y ledger de movimientos
	inventoryHandler := NewInventoryHandler(deps.PostingUC, deps.WorkOrderUC, deps.MovementUC)
	protected.Post("/inventory/receipts", inventoryHandler.PostReceipt)
	protected.Get("/inventory/on-hand", inventoryHandler.OnHand)
	protected.Get("/inventory/movements", inventoryHandler.ListMovements)
	protected.Get("/inventory/movements/:id", inventoryHandler.GetMovement)

	// Órdenes de trabajo: documentos y posteo
	woHandler := NewWorkOrderHandler(deps.WorkOrderUC, deps.PostingUC)
	protected.Post("/work-orders", woHandler.Create)
	protected.Get("/work-orders", woHandler.List)
	protected.Post("/work-orders/backflush", woHandler.Backflush)
	protected.Get("/work-orders/:id", woHandler.GetByID)
	protected.Get("/work-orders/:id/wip", woHandler.UnclaimedWIP)
	protected.Post("/work-orders/:id/issues", woHandler.CreateIssue)
	protected.Post("/work-orders/:id/executions", woHandler.CreateExecution)
	protected.Post("/issues/:issueID/post", woHandler.PostIssue)
	protected.Post("/issues/:issueID/cancel", woHandler.CancelIssue)
	protected.Post("/executions/:executionID/post", woHandler.PostExecution)
	protected.Post("/executions/:executionID/cancel", woHandler.CancelExecution)

	// Reportes
	reportHandler := NewReportHandler(deps.WorkOrderUC, deps.CompanyRepo, deps.PDF)
	protected.Get("/work-orders/:id/cost-report", reportHandler.CostReport)

	// Conciliación (solo admin)
	reconHandler := NewReconciliationHandler(deps.Verifier)
	protected.Post("/reconciliation/run", RequireRole(entity.RoleAdmin, entity.RoleSupervisor), reconHandler.Run)
}
