package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType es el tipo de orden. Conjunto cerrado: ver ParseOrderType.
type OrderType string

const (
	OrderTypeSale           OrderType = "sale"
	OrderTypePurchase       OrderType = "purchase"
	OrderTypeSaleReturn     OrderType = "sale_return"
	OrderTypePurchaseReturn OrderType = "purchase_return"
	OrderTypeStockTransfer  OrderType = "stock_transfer"
	OrderTypeProforma       OrderType = "proforma"
)

// OrderTypes lista todos los tipos de orden válidos.
var OrderTypes = []OrderType{
	OrderTypeSale, OrderTypePurchase, OrderTypeSaleReturn,
	OrderTypePurchaseReturn, OrderTypeStockTransfer, OrderTypeProforma,
}

// ParseOrderType convierte un string en OrderType; ok=false si no es un tipo conocido.
func ParseOrderType(s string) (OrderType, bool) {
	for _, t := range OrderTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// RequiresCounterparty indica si el tipo exige cliente/proveedor.
func (t OrderType) RequiresCounterparty() bool {
	switch t {
	case OrderTypeSale, OrderTypePurchase, OrderTypeSaleReturn, OrderTypePurchaseReturn:
		return true
	}
	return false
}

// ReturnOf devuelve el tipo de orden que una devolución puede referenciar.
func (t OrderType) ReturnOf() (OrderType, bool) {
	switch t {
	case OrderTypeSaleReturn:
		return OrderTypeSale, true
	case OrderTypePurchaseReturn:
		return OrderTypePurchase, true
	}
	return "", false
}

// PaymentStatus estado de pago derivado de los pagos aplicados.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// OrderStatus estado operativo de la orden (independiente del pago).
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusOrdered   OrderStatus = "ordered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus convierte un string en OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusOrdered, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// Order es la cabecera de una venta, compra, devolución, traslado o proforma.
// Nunca se borra físicamente: IsDeleted marca el borrado lógico.
type Order struct {
	ID                string
	CompanyID         string
	WarehouseID       string  // bodega principal (destino en traslados)
	SourceWarehouseID *string // solo traslados
	CounterpartyID    *string // cliente o proveedor
	Type              OrderType
	InvoiceNumber     string
	OrderDate         time.Time

	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	TaxRate        decimal.Decimal // porcentaje sobre (subtotal - descuento)
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	PaidAmount     decimal.Decimal
	DueAmount      decimal.Decimal
	PaymentStatus  PaymentStatus
	Status         OrderStatus
	Notes          string

	IsDeleted        bool
	IsDeletable      bool
	ParentOrderID    *string // orden origen (devoluciones y conversiones)
	IsConverted      bool
	ConvertedOrderID *string // venta generada desde la proforma

	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time

	Items    []OrderItem
	Payments []OrderPayment
}

// TransferSourceID devuelve la bodega origen o "" si no aplica.
func (o *Order) TransferSourceID() string {
	if o.SourceWarehouseID == nil {
		return ""
	}
	return *o.SourceWarehouseID
}

// IsConversion indica una venta generada desde una proforma.
func (o *Order) IsConversion() bool {
	return o.Type == OrderTypeSale && o.ParentOrderID != nil
}
