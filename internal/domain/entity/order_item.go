package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem línea de una orden. Se reemplaza completa (delete + insert) en la edición total.
type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	UnitID         *string
	Quantity       decimal.Decimal // > 0
	UnitPrice      decimal.Decimal
	DiscountRate   decimal.Decimal // porcentaje
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal // porcentaje sobre el neto
	TaxAmount      decimal.Decimal
	Subtotal       decimal.Decimal
	CreatedAt      time.Time
}
