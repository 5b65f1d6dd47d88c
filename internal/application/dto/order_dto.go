package dto

import "github.com/shopspring/decimal"

// OrderItemRequest línea de una orden.
type OrderItemRequest struct {
	ProductID      string          `json:"product_id" validate:"required,uuid"`
	UnitID         *string         `json:"unit_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice      decimal.Decimal `json:"unit_price" validate:"gte=0"`
	DiscountRate   decimal.Decimal `json:"discount_rate" validate:"gte=0,lte=100"`
	DiscountAmount decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	TaxRate        decimal.Decimal `json:"tax_rate" validate:"gte=0,lte=100"`
}

// PaymentRequest pago aplicado a la orden.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Method    string          `json:"method" validate:"required,max=30"`
	Reference string          `json:"reference,omitempty" validate:"max=100"`
	PaidAt    string          `json:"paid_at,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CreateOrderRequest body para POST /api/orders.
// WarehouseID es la bodega principal (destino en traslados); SourceWarehouseID solo aplica a traslados.
type CreateOrderRequest struct {
	Type              string             `json:"type" validate:"required"`
	WarehouseID       string             `json:"warehouse_id" validate:"required,uuid"`
	SourceWarehouseID string             `json:"source_warehouse_id,omitempty" validate:"omitempty,uuid"`
	CounterpartyID    string             `json:"counterparty_id,omitempty" validate:"omitempty,uuid"`
	ParentOrderID     string             `json:"parent_order_id,omitempty" validate:"omitempty,uuid"`
	OrderDate         string             `json:"order_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status            string             `json:"status,omitempty"`
	DiscountAmount    decimal.Decimal    `json:"discount_amount" validate:"gte=0"`
	ShippingAmount    decimal.Decimal    `json:"shipping_amount" validate:"gte=0"`
	TaxRate           decimal.Decimal    `json:"tax_rate" validate:"gte=0,lte=100"`
	Notes             string             `json:"notes,omitempty" validate:"max=1000"`
	Items             []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Payments          []PaymentRequest   `json:"payments,omitempty" validate:"dive"`
}

// UpdateOrderRequest body para PUT /api/orders/:id.
// payment_only: solo agrega los pagos enviados y recalcula el estado de pago.
// status_only: solo cambia status. Sin flags: edición completa con los mismos campos que la creación.
type UpdateOrderRequest struct {
	PaymentOnly bool `json:"payment_only"`
	StatusOnly  bool `json:"status_only"`
	CreateOrderRequest
}

// CreateOrderResponse respuesta de POST /api/orders.
type CreateOrderResponse struct {
	OrderID       string `json:"orderId"`
	InvoiceNumber string `json:"invoice_number"`
}

// OrderItemResponse línea en respuestas.
type OrderItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	UnitID         *string         `json:"unit_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// OrderPaymentResponse pago aplicado en respuestas.
type OrderPaymentResponse struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	PaidAt    string          `json:"paid_at"`
}

// OrderResponse orden con líneas y pagos para GET /api/orders/:id.
type OrderResponse struct {
	ID                string                 `json:"id"`
	CompanyID         string                 `json:"company_id"`
	Type              string                 `json:"type"`
	InvoiceNumber     string                 `json:"invoice_number"`
	OrderDate         string                 `json:"order_date"`
	WarehouseID       string                 `json:"warehouse_id"`
	SourceWarehouseID *string                `json:"source_warehouse_id,omitempty"`
	CounterpartyID    *string                `json:"counterparty_id,omitempty"`
	Subtotal          decimal.Decimal        `json:"subtotal"`
	DiscountAmount    decimal.Decimal        `json:"discount_amount"`
	ShippingAmount    decimal.Decimal        `json:"shipping_amount"`
	TaxAmount         decimal.Decimal        `json:"tax_amount"`
	Total             decimal.Decimal        `json:"total"`
	PaidAmount        decimal.Decimal        `json:"paid_amount"`
	DueAmount         decimal.Decimal        `json:"due_amount"`
	PaymentStatus     string                 `json:"payment_status"`
	Status            string                 `json:"status"`
	Notes             string                 `json:"notes,omitempty"`
	IsDeleted         bool                   `json:"is_deleted"`
	IsDeletable       bool                   `json:"is_deletable"`
	ParentOrderID     *string                `json:"parent_order_id,omitempty"`
	IsConverted       bool                   `json:"is_converted"`
	ConvertedOrderID  *string                `json:"converted_order_id,omitempty"`
	Items             []OrderItemResponse    `json:"items,omitempty"`
	Payments          []OrderPaymentResponse `json:"payments,omitempty"`
}

// OrderListRequest filtros de GET /api/orders (query string).
type OrderListRequest struct {
	WarehouseID       string `query:"warehouse_id" validate:"omitempty,uuid"`
	Type              string `query:"type"`
	From              string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To                string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	PaymentStatus     string `query:"payment_status" validate:"omitempty,oneof=unpaid partial paid"`
	Status            string `query:"status"`
	ProductID         string `query:"product_id" validate:"omitempty,uuid"`
	TransferDirection string `query:"transfer_direction" validate:"omitempty,oneof=in out"`
	IncludeDeleted    bool   `query:"include_deleted"`
	PageRequest
}

// OrderListResponse listado paginado de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
