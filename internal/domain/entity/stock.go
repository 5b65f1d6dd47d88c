package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStock es el stock materializado de un producto en una bodega.
// Quantity siempre es igual a la suma con signo de los movimientos del par (producto, bodega).
type ProductStock struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	Opening     decimal.Decimal // se fija en la primera inserción: max(cantidad, 0)
	UpdatedAt   time.Time
}

// QuantityScale decimales que guardan las columnas de cantidad (NUMERIC(18,4)).
const QuantityScale int32 = 4

// FitsQuantityScale indica si q se guarda sin redondeo.
func FitsQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Round(QuantityScale))
}
