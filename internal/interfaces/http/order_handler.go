package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/orders"
	"github.com/jhoicas/ordenes-api/internal/domain"
)

// OrderHandler maneja las peticiones HTTP de órdenes (protegido).
type OrderHandler struct {
	uc *orders.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id        query  string  false  "Bodega (UUID)"
// @Param        type                query  string  false  "sale, purchase, sale_return, purchase_return, stock_transfer, proforma"
// @Param        from                query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to                  query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        payment_status      query  string  false  "unpaid, partial, paid"
// @Param        status              query  string  false  "pending, ordered, completed, cancelled"
// @Param        product_id          query  string  false  "Órdenes que contienen el producto"
// @Param        transfer_direction  query  string  false  "in | out (requiere warehouse_id)"
// @Param        include_deleted     query  bool    false  "Incluir eliminadas"
// @Param        limit               query  int     false  "Límite (1-100, default 20)"
// @Param        offset              query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.OrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.OrderListRequest
	if err := bindQuery(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear orden
// @Description  Numera la orden, inserta líneas y pagos y aplica los movimientos de stock en una sola transacción.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Reintento seguro"
// @Param        body             body    dto.CreateOrderRequest  true   "Orden"
// @Success      201  {object}  dto.CreateOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateOrderRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), companyID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden con líneas y pagos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), companyID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar orden
// @Description  Edición completa (revierte y reaplica el stock), o solo pagos / solo estado con payment_only / status_only.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Order ID"
// @Param        body  body  dto.UpdateOrderRequest  true  "Cambios"
// @Success      200  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fmt.Errorf("%w: cuerpo JSON inválido", domain.ErrInvalidInput))
	}
	if err := validateUpdate(in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), companyID, userID, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// validateUpdate aplica solo las reglas del modo pedido: los pagos en payment_only, nada en status_only.
func validateUpdate(in dto.UpdateOrderRequest) error {
	switch {
	case in.PaymentOnly:
		if len(in.Payments) == 0 {
			return fmt.Errorf("%w: payments requerido con payment_only", domain.ErrInvalidInput)
		}
		for i := range in.Payments {
			if err := validateStruct(&in.Payments[i]); err != nil {
				return err
			}
		}
		return nil
	case in.StatusOnly:
		return nil
	default:
		return validateStruct(&in.CreateOrderRequest)
	}
}

// Delete godoc
// @Summary      Eliminar orden (borrado lógico)
// @Description  Revierte los movimientos de stock y marca la orden como eliminada.
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "Order ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), companyID, userID, id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Restore godoc
// @Summary      Restaurar orden eliminada
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "Order ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/restore [post]
func (h *OrderHandler) Restore(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Restore(c.UserContext(), companyID, userID, id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ConvertToSale godoc
// @Summary      Convertir proforma en venta
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Proforma ID"
// @Success      201  {object}  dto.CreateOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/convert-to-sale [post]
func (h *OrderHandler) ConvertToSale(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ConvertToSale(c.UserContext(), companyID, userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
