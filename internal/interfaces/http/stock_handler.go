package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/inventory"
)

// StockHandler ajustes manuales, historial de movimientos y stock actual (protegido).
type StockHandler struct {
	adjustments *inventory.AdjustmentUseCase
	queries     *inventory.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(adjustments *inventory.AdjustmentUseCase, queries *inventory.StockQueryUseCase) *StockHandler {
	return &StockHandler{adjustments: adjustments, queries: queries}
}

// ListAdjustments godoc
// @Summary      Listar ajustes de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto (UUID)"
// @Param        warehouse_id  query  string  false  "Bodega (UUID)"
// @Param        type          query  string  false  "add | subtract"
// @Param        limit         query  int     false  "Límite"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockAdjustmentListResponse
// @Router       /api/stock-adjustments [get]
func (h *StockHandler) ListAdjustments(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.StockAdjustmentListRequest
	if err := bindQuery(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.adjustments.List(c.UserContext(), companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateAdjustment godoc
// @Summary      Crear ajuste de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockAdjustmentRequest  true  "Ajuste"
// @Success      201  {object}  dto.StockAdjustmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-adjustments [post]
func (h *StockHandler) CreateAdjustment(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateStockAdjustmentRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.adjustments.Create(c.UserContext(), companyID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetAdjustment godoc
// @Summary      Obtener ajuste de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Adjustment ID"
// @Success      200  {object}  dto.StockAdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-adjustments/{id} [get]
func (h *StockHandler) GetAdjustment(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.adjustments.Get(c.UserContext(), companyID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateAdjustment godoc
// @Summary      Actualizar ajuste de stock
// @Description  Aplica solo la diferencia neta contra el ajuste anterior. Producto y bodega no cambian.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                            true  "Adjustment ID"
// @Param        body  body  dto.UpdateStockAdjustmentRequest  true  "Cambios"
// @Success      200  {object}  dto.StockAdjustmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-adjustments/{id} [put]
func (h *StockHandler) UpdateAdjustment(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateStockAdjustmentRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.adjustments.Update(c.UserContext(), companyID, userID, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteAdjustment godoc
// @Summary      Eliminar ajuste de stock
// @Description  Compensa el efecto del ajuste en el libro y lo elimina.
// @Tags         stock
// @Security     Bearer
// @Param        id   path  string  true  "Adjustment ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-adjustments/{id} [delete]
func (h *StockHandler) DeleteAdjustment(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.adjustments.Delete(c.UserContext(), companyID, userID, id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History godoc
// @Summary      Historial de movimientos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto (UUID)"
// @Param        warehouse_id  query  string  false  "Bodega (UUID)"
// @Param        kind          query  string  false  "Tipo de movimiento"
// @Param        reference_id  query  string  false  "Orden o ajuste que originó el movimiento"
// @Param        limit         query  int     false  "Límite"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockHistoryResponse
// @Router       /api/stock-history [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.StockHistoryRequest
	if err := bindQuery(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.queries.History(c.UserContext(), companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// stockQuery filtros de GET /api/stock.
type stockQuery struct {
	ProductID   string `query:"product_id" validate:"omitempty,uuid"`
	WarehouseID string `query:"warehouse_id" validate:"omitempty,uuid"`
	dto.PageRequest
}

// Levels godoc
// @Summary      Stock actual por producto y bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto (UUID)"
// @Param        warehouse_id  query  string  false  "Bodega (UUID)"
// @Param        limit         query  int     false  "Límite"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock [get]
func (h *StockHandler) Levels(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in stockQuery
	if err := bindQuery(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.queries.Levels(c.UserContext(), companyID, in.ProductID, in.WarehouseID, in.PageRequest)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
