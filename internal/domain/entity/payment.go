package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment es un pago recibido o emitido; OrderPayment registra cuánto de él se aplicó a una orden.
type Payment struct {
	ID        string
	CompanyID string
	Method    string // cash, card, transfer, ...
	Amount    decimal.Decimal
	Reference string
	PaidAt    time.Time
	CreatedBy string
	CreatedAt time.Time
}

// OrderPayment aplicación de un pago a una orden.
type OrderPayment struct {
	ID        string
	OrderID   string
	PaymentID string
	Amount    decimal.Decimal
	Method    string
	Reference string
	PaidAt    time.Time
	CreatedAt time.Time
}
