package orders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/pricing"
)

const dateLayout = "2006-01-02"

// buildOrder valida los campos propios de cada tipo y arma la orden con líneas y totales calculados.
// No consulta la BD: bodegas y orden origen se validan dentro de la transacción.
func buildOrder(companyID, userID string, in dto.CreateOrderRequest) (*entity.Order, error) {
	orderType, ok := entity.ParseOrderType(in.Type)
	if !ok {
		return nil, fmt.Errorf("%w: tipo de orden %q", domain.ErrInvalidInput, in.Type)
	}
	if in.WarehouseID == "" {
		return nil, fmt.Errorf("%w: warehouse_id requerido", domain.ErrInvalidInput)
	}
	if orderType == entity.OrderTypeStockTransfer {
		if in.SourceWarehouseID == "" {
			return nil, fmt.Errorf("%w: source_warehouse_id requerido en traslados", domain.ErrInvalidInput)
		}
		if in.SourceWarehouseID == in.WarehouseID {
			return nil, fmt.Errorf("%w: bodega origen y destino deben ser distintas", domain.ErrInvalidInput)
		}
	} else if in.SourceWarehouseID != "" {
		return nil, fmt.Errorf("%w: source_warehouse_id solo aplica a traslados", domain.ErrInvalidInput)
	}
	if orderType.RequiresCounterparty() && in.CounterpartyID == "" {
		return nil, fmt.Errorf("%w: counterparty_id requerido para %s", domain.ErrInvalidInput, orderType)
	}
	if in.ParentOrderID != "" {
		if _, isReturn := orderType.ReturnOf(); !isReturn {
			return nil, fmt.Errorf("%w: parent_order_id solo aplica a devoluciones", domain.ErrInvalidInput)
		}
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden debe tener al menos una línea", domain.ErrInvalidInput)
	}

	status := entity.OrderStatusPending
	if in.Status != "" {
		s, ok := entity.ParseOrderStatus(in.Status)
		if !ok {
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
		}
		status = s
	}
	orderDate := time.Now().UTC()
	if in.OrderDate != "" {
		d, err := time.Parse(dateLayout, in.OrderDate)
		if err != nil {
			return nil, fmt.Errorf("%w: order_date", domain.ErrInvalidInput)
		}
		orderDate = d
	}
	if in.DiscountAmount.IsNegative() || in.ShippingAmount.IsNegative() || in.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: importes negativos", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	o := &entity.Order{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		WarehouseID:       in.WarehouseID,
		SourceWarehouseID: optional(in.SourceWarehouseID),
		CounterpartyID:    optional(in.CounterpartyID),
		ParentOrderID:     optional(in.ParentOrderID),
		Type:              orderType,
		OrderDate:         orderDate,
		DiscountAmount:    in.DiscountAmount,
		ShippingAmount:    in.ShippingAmount,
		TaxRate:           in.TaxRate,
		Status:            status,
		Notes:             in.Notes,
		CreatedBy:         userID,
		UpdatedBy:         userID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for i, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() || !entity.FitsQuantityScale(it.Quantity) || it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d", domain.ErrInvalidInput, i+1)
		}
		item := entity.OrderItem{
			ProductID:      it.ProductID,
			UnitID:         it.UnitID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountRate:   it.DiscountRate,
			DiscountAmount: it.DiscountAmount,
			TaxRate:        it.TaxRate,
		}
		pricing.ComputeItem(&item)
		o.Items = append(o.Items, item)
	}
	pricing.ComputeTotals(o)

	payments, err := buildPayments(in.Payments)
	if err != nil {
		return nil, err
	}
	o.Payments = payments
	pricing.ApplyPayments(o, sumPayments(payments))
	return o, nil
}

// buildPayments arma las aplicaciones de pago; el ID del pago se asigna al persistir.
func buildPayments(in []dto.PaymentRequest) ([]entity.OrderPayment, error) {
	out := make([]entity.OrderPayment, 0, len(in))
	for i, p := range in {
		if !p.Amount.IsPositive() || p.Method == "" {
			return nil, fmt.Errorf("%w: pago %d", domain.ErrInvalidInput, i+1)
		}
		paidAt := time.Now().UTC()
		if p.PaidAt != "" {
			d, err := time.Parse(dateLayout, p.PaidAt)
			if err != nil {
				return nil, fmt.Errorf("%w: paid_at del pago %d", domain.ErrInvalidInput, i+1)
			}
			paidAt = d
		}
		out = append(out, entity.OrderPayment{
			Amount:    p.Amount,
			Method:    p.Method,
			Reference: p.Reference,
			PaidAt:    paidAt,
		})
	}
	return out, nil
}

func sumPayments(list []entity.OrderPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range list {
		total = total.Add(p.Amount)
	}
	return total
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
