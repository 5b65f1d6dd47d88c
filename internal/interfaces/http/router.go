package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordenes-api/internal/application/companies"
	"github.com/jhoicas/ordenes-api/internal/application/inventory"
	"github.com/jhoicas/ordenes-api/internal/application/orders"
	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/pkg/jwt"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

// adjustmentRoles pueden corregir stock a mano.
var adjustmentRoles = []string{"admin", "bodeguero"}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OrderUC      *orders.OrderUseCase
	AdjustmentUC *inventory.AdjustmentUseCase
	StockQueryUC *inventory.StockQueryUseCase
	CompanyUC    *companies.StatusUseCase // nil = sin verificar estado de la empresa
	Idempotency  ports.IdempotencyStore // nil = sin idempotencia
	Tokens       *jwt.Signer
	Log          *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.Tokens))
	if deps.CompanyUC != nil {
		api.Use(RequireActiveCompany(deps.CompanyUC, deps.Log))
	}

	// Orders
	ordersGroup := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Post("/", Idempotency(deps.Idempotency, deps.Log), orderHandler.Create)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id", orderHandler.Update)
	ordersGroup.Delete("/:id", orderHandler.Delete)
	ordersGroup.Post("/:id/restore", orderHandler.Restore)
	ordersGroup.Post("/:id/convert-to-sale", orderHandler.ConvertToSale)

	// Stock
	stockHandler := NewStockHandler(deps.AdjustmentUC, deps.StockQueryUC)
	adjustments := api.Group("/stock-adjustments")
	adjustments.Get("/", stockHandler.ListAdjustments)
	adjustments.Post("/", RequireRole(adjustmentRoles...), stockHandler.CreateAdjustment)
	adjustments.Get("/:id", stockHandler.GetAdjustment)
	adjustments.Put("/:id", RequireRole(adjustmentRoles...), stockHandler.UpdateAdjustment)
	adjustments.Delete("/:id", RequireRole(adjustmentRoles...), stockHandler.DeleteAdjustment)
	api.Get("/stock-history", stockHandler.History)
	api.Get("/stock", stockHandler.Levels)
}
