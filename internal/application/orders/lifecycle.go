package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/pricing"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

// OrderUseCase orquesta el ciclo de vida de las órdenes. Cada operación es una única transacción:
// cabecera, líneas, pagos y movimientos de stock se confirman juntos o no se confirma nada.
type OrderUseCase struct {
	tx      ports.TxRunner
	items   *ItemSet
	numbers *InvoiceNumberer
	log     *logger.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(tx ports.TxRunner, items *ItemSet, numbers *InvoiceNumberer, log *logger.Logger) *OrderUseCase {
	return &OrderUseCase{tx: tx, items: items, numbers: numbers, log: log.Component("orders")}
}

// Create valida, numera e inserta la orden con sus líneas, efectos de stock y pagos.
func (uc *OrderUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	o, err := buildOrder(companyID, userID, in)
	if err != nil {
		return nil, err
	}

	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := uc.checkReferences(ctx, repos, o); err != nil {
			return err
		}
		if err := uc.numbers.InsertOrder(ctx, repos, o); err != nil {
			return err
		}
		if err := uc.items.Insert(ctx, repos, o); err != nil {
			return err
		}
		if err := uc.items.Apply(ctx, repos, o, o.Items, entity.ReferenceOrder, userID); err != nil {
			return err
		}
		return savePayments(ctx, repos, o, o.Payments, userID)
	})
	if err != nil {
		uc.logAborted("create", o.ID, err)
		return nil, err
	}

	uc.log.Info().
		Str("order_id", o.ID).
		Str("invoice_number", o.InvoiceNumber).
		Str("type", string(o.Type)).
		Int("items", len(o.Items)).
		Msg("orden creada")
	return &dto.CreateOrderResponse{OrderID: o.ID, InvoiceNumber: o.InvoiceNumber}, nil
}

// Update aplica una edición completa, solo de pagos o solo de estado según los flags de la petición.
func (uc *OrderUseCase) Update(ctx context.Context, companyID, userID, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	switch {
	case in.PaymentOnly && in.StatusOnly:
		return nil, fmt.Errorf("%w: payment_only y status_only son excluyentes", domain.ErrInvalidInput)
	case in.PaymentOnly:
		return uc.updatePayments(ctx, companyID, userID, id, in.Payments)
	case in.StatusOnly:
		return uc.updateStatus(ctx, companyID, userID, id, in.Status)
	}

	updated, err := buildOrder(companyID, userID, in.CreateOrderRequest)
	if err != nil {
		return nil, err
	}

	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		current, err := loadForChange(ctx, repos, companyID, id)
		if err != nil {
			return err
		}
		if current.IsConverted {
			return fmt.Errorf("%w: la proforma ya fue convertida", domain.ErrInvalidState)
		}
		if current.IsConversion() && updated.Type != current.Type {
			return fmt.Errorf("%w: una venta convertida de proforma no cambia de tipo", domain.ErrInvalidState)
		}
		currentItems, err := repos.OrderItems.ListByOrder(ctx, current.ID)
		if err != nil {
			return err
		}

		updated.ID = current.ID
		updated.InvoiceNumber = current.InvoiceNumber
		updated.CreatedBy = current.CreatedBy
		updated.CreatedAt = current.CreatedAt
		if err := uc.checkReferences(ctx, repos, updated); err != nil {
			return err
		}
		if updated.ParentOrderID == nil && updated.Type == current.Type {
			updated.ParentOrderID = current.ParentOrderID
		}

		if err := uc.items.Replace(ctx, repos, current, currentItems, updated, userID); err != nil {
			return err
		}
		if err := repos.Payments.DeleteByOrder(ctx, current.ID); err != nil {
			return err
		}
		if err := savePayments(ctx, repos, updated, updated.Payments, userID); err != nil {
			return err
		}
		return repos.Orders.Update(ctx, updated)
	})
	if err != nil {
		uc.logAborted("update", id, err)
		return nil, err
	}
	uc.log.Info().Str("order_id", id).Str("type", string(updated.Type)).Msg("orden actualizada")
	return uc.Get(ctx, companyID, id)
}

// updatePayments agrega pagos sin tocar líneas ni stock y recalcula el resumen desde el libro de pagos.
func (uc *OrderUseCase) updatePayments(ctx context.Context, companyID, userID, id string, in []dto.PaymentRequest) (*dto.OrderResponse, error) {
	payments, err := buildPayments(in)
	if err != nil {
		return nil, err
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		o, err := loadForChange(ctx, repos, companyID, id)
		if err != nil {
			return err
		}
		if err := savePayments(ctx, repos, o, payments, userID); err != nil {
			return err
		}
		return refreshPaymentSummary(ctx, repos, o, userID)
	})
	if err != nil {
		uc.logAborted("update_payments", id, err)
		return nil, err
	}
	return uc.Get(ctx, companyID, id)
}

// updateStatus cambia solo el estado operativo; el resumen de pagos se recalcula igual.
func (uc *OrderUseCase) updateStatus(ctx context.Context, companyID, userID, id, status string) (*dto.OrderResponse, error) {
	newStatus, ok := entity.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		o, err := loadForChange(ctx, repos, companyID, id)
		if err != nil {
			return err
		}
		o.Status = newStatus
		return refreshPaymentSummary(ctx, repos, o, userID)
	})
	if err != nil {
		uc.logAborted("update_status", id, err)
		return nil, err
	}
	return uc.Get(ctx, companyID, id)
}

// Delete marca la orden como eliminada revirtiendo el efecto de stock de todas sus líneas.
func (uc *OrderUseCase) Delete(ctx context.Context, companyID, userID, id string) error {
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if o.IsDeleted {
			return fmt.Errorf("%w: la orden ya está eliminada", domain.ErrInvalidState)
		}
		if !o.IsDeletable {
			return fmt.Errorf("%w: la orden no se puede eliminar", domain.ErrInvalidState)
		}
		items, err := repos.OrderItems.ListByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		if err := uc.items.Reverse(ctx, repos, o, items, entity.ReferenceOrderDelete, userID); err != nil {
			return err
		}
		return repos.Orders.SetDeleted(ctx, o.ID, true, userID)
	})
	if err != nil {
		uc.logAborted("delete", id, err)
		return err
	}
	uc.log.Info().Str("order_id", id).Msg("orden eliminada")
	return nil
}

// Restore deshace el borrado lógico y vuelve a aplicar el efecto original de las líneas.
func (uc *OrderUseCase) Restore(ctx context.Context, companyID, userID, id string) error {
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.IsDeleted {
			return fmt.Errorf("%w: la orden no está eliminada", domain.ErrInvalidState)
		}
		items, err := repos.OrderItems.ListByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		if err := uc.items.Apply(ctx, repos, o, items, entity.ReferenceOrderRestore, userID); err != nil {
			return err
		}
		return repos.Orders.SetDeleted(ctx, o.ID, false, userID)
	})
	if err != nil {
		uc.logAborted("restore", id, err)
		return err
	}
	uc.log.Info().Str("order_id", id).Msg("orden restaurada")
	return nil
}

// ConvertToSale genera una venta a partir de una proforma y marca la proforma como convertida.
// La proforma nunca movió stock, así que solo se aplican los efectos de la venta nueva.
func (uc *OrderUseCase) ConvertToSale(ctx context.Context, companyID, userID, id string) (*dto.CreateOrderResponse, error) {
	var sale *entity.Order
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		pf, err := repos.Orders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if pf == nil {
			return domain.ErrNotFound
		}
		switch {
		case pf.Type != entity.OrderTypeProforma:
			return fmt.Errorf("%w: solo se convierten proformas", domain.ErrInvalidState)
		case pf.IsConverted:
			return fmt.Errorf("%w: la proforma ya fue convertida", domain.ErrInvalidState)
		case pf.IsDeleted:
			return fmt.Errorf("%w: la proforma está eliminada", domain.ErrInvalidState)
		case pf.CounterpartyID == nil:
			return fmt.Errorf("%w: la proforma no tiene cliente", domain.ErrInvalidInput)
		}
		items, err := repos.OrderItems.ListByOrder(ctx, pf.ID)
		if err != nil {
			return err
		}

		sale = saleFromProforma(pf, items, userID)
		if err := uc.numbers.InsertOrder(ctx, repos, sale); err != nil {
			return err
		}
		if err := uc.items.Insert(ctx, repos, sale); err != nil {
			return err
		}
		if err := uc.items.Apply(ctx, repos, sale, sale.Items, entity.ReferenceOrder, userID); err != nil {
			return err
		}
		return repos.Orders.MarkConverted(ctx, pf.ID, sale.ID, userID)
	})
	if err != nil {
		uc.logAborted("convert", id, err)
		return nil, err
	}
	uc.log.Info().
		Str("proforma_id", id).
		Str("order_id", sale.ID).
		Str("invoice_number", sale.InvoiceNumber).
		Msg("proforma convertida en venta")
	return &dto.CreateOrderResponse{OrderID: sale.ID, InvoiceNumber: sale.InvoiceNumber}, nil
}

// Get devuelve la orden con líneas y pagos.
func (uc *OrderUseCase) Get(ctx context.Context, companyID, id string) (*dto.OrderResponse, error) {
	var o *entity.Order
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		o, err = repos.Orders.GetByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if o.Items, err = repos.OrderItems.ListByOrder(ctx, o.ID); err != nil {
			return err
		}
		o.Payments, err = repos.Payments.ListByOrder(ctx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// List lista órdenes con filtros y paginación (sin líneas ni pagos).
func (uc *OrderUseCase) List(ctx context.Context, companyID string, in dto.OrderListRequest) (*dto.OrderListResponse, error) {
	filter, err := toOrderFilter(companyID, in)
	if err != nil {
		return nil, err
	}
	var list []*entity.Order
	var total int
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.Orders.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(list)),
		Page:  dto.NewPage(filter.Limit, filter.Offset, total),
	}
	for _, o := range list {
		out.Items = append(out.Items, *toOrderResponse(o))
	}
	return out, nil
}

// checkReferences valida bodegas y orden origen dentro de la transacción.
func (uc *OrderUseCase) checkReferences(ctx context.Context, repos repository.Repositories, o *entity.Order) error {
	if err := checkWarehouse(ctx, repos, o.CompanyID, o.WarehouseID); err != nil {
		return err
	}
	if o.SourceWarehouseID != nil {
		if err := checkWarehouse(ctx, repos, o.CompanyID, *o.SourceWarehouseID); err != nil {
			return err
		}
	}
	if o.ParentOrderID == nil {
		return nil
	}
	parent, err := repos.Orders.GetByID(ctx, o.CompanyID, *o.ParentOrderID)
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("%w: orden origen %s", domain.ErrNotFound, *o.ParentOrderID)
	}
	expected, _ := o.Type.ReturnOf()
	if parent.Type != expected || parent.IsDeleted {
		return fmt.Errorf("%w: la orden origen debe ser una %s activa", domain.ErrInvalidInput, expected)
	}
	return nil
}

func (uc *OrderUseCase) logAborted(op, orderID string, err error) {
	uc.log.Warn().Err(err).Str("op", op).Str("order_id", orderID).Msg("transacción de orden revertida")
}

// loadForChange bloquea la orden y exige que exista y no esté eliminada.
func loadForChange(ctx context.Context, repos repository.Repositories, companyID, id string) (*entity.Order, error) {
	o, err := repos.Orders.GetForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if o.IsDeleted {
		return nil, fmt.Errorf("%w: la orden está eliminada", domain.ErrInvalidState)
	}
	return o, nil
}

func checkWarehouse(ctx context.Context, repos repository.Repositories, companyID, warehouseID string) error {
	w, err := repos.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if w == nil || w.CompanyID != companyID {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	return nil
}

// savePayments registra cada pago y su aplicación a la orden.
func savePayments(ctx context.Context, repos repository.Repositories, o *entity.Order, payments []entity.OrderPayment, userID string) error {
	now := time.Now().UTC()
	for i := range payments {
		op := &payments[i]
		if op.Reference == "" {
			op.Reference = o.InvoiceNumber
		}
		p := &entity.Payment{
			ID:        uuid.New().String(),
			CompanyID: o.CompanyID,
			Method:    op.Method,
			Amount:    op.Amount,
			Reference: op.Reference,
			PaidAt:    op.PaidAt,
			CreatedBy: userID,
			CreatedAt: now,
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return err
		}
		op.ID = uuid.New().String()
		op.OrderID = o.ID
		op.PaymentID = p.ID
		op.CreatedAt = now
		if err := repos.Payments.Apply(ctx, op); err != nil {
			return err
		}
	}
	return nil
}

// refreshPaymentSummary recalcula pagado, saldo, estado de pago y flag de borrado desde los pagos aplicados.
func refreshPaymentSummary(ctx context.Context, repos repository.Repositories, o *entity.Order, userID string) error {
	applied, err := repos.Payments.ListByOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	paid := decimal.Zero
	for _, p := range applied {
		paid = paid.Add(p.Amount)
	}
	pricing.ApplyPayments(o, paid)
	o.UpdatedBy = userID
	o.UpdatedAt = time.Now().UTC()
	return repos.Orders.UpdatePaymentSummary(ctx, o)
}

// saleFromProforma copia importes y líneas de la proforma en una venta nueva sin pagos.
func saleFromProforma(pf *entity.Order, items []entity.OrderItem, userID string) *entity.Order {
	now := time.Now().UTC()
	parentID := pf.ID
	sale := &entity.Order{
		ID:             uuid.New().String(),
		CompanyID:      pf.CompanyID,
		WarehouseID:    pf.WarehouseID,
		CounterpartyID: pf.CounterpartyID,
		Type:           entity.OrderTypeSale,
		OrderDate:      now,
		Subtotal:       pf.Subtotal,
		DiscountAmount: pf.DiscountAmount,
		ShippingAmount: pf.ShippingAmount,
		TaxRate:        pf.TaxRate,
		TaxAmount:      pf.TaxAmount,
		Total:          pf.Total,
		Status:         entity.OrderStatusPending,
		Notes:          pf.Notes,
		ParentOrderID:  &parentID,
		CreatedBy:      userID,
		UpdatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	sale.Items = make([]entity.OrderItem, len(items))
	for i, it := range items {
		it.ID = ""
		it.OrderID = ""
		sale.Items[i] = it
	}
	pricing.ApplyPayments(sale, decimal.Zero)
	return sale
}
