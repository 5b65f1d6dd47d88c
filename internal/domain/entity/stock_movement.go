package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind clasifica el efecto de un movimiento del libro de stock.
type MovementKind string

const (
	MovementKindSale           MovementKind = "sale"
	MovementKindPurchase       MovementKind = "purchase"
	MovementKindReturnIn       MovementKind = "return_in"
	MovementKindReturnOut      MovementKind = "return_out"
	MovementKindTransferIn     MovementKind = "transfer_in"
	MovementKindTransferOut    MovementKind = "transfer_out"
	MovementKindAdjustAdd      MovementKind = "adjustment_add"
	MovementKindAdjustSubtract MovementKind = "adjustment_subtract"
)

// ReferenceKind indica qué operación originó el movimiento.
type ReferenceKind string

const (
	ReferenceOrder                 ReferenceKind = "order"
	ReferenceOrderReversal         ReferenceKind = "order_reversal" // edición completa de la orden
	ReferenceOrderDelete           ReferenceKind = "order_delete"
	ReferenceOrderRestore          ReferenceKind = "order_restore"
	ReferenceStockAdjustment       ReferenceKind = "stock_adjustment"
	ReferenceStockAdjustmentUpdate ReferenceKind = "stock_adjustment_update"
	ReferenceStockAdjustmentDelete ReferenceKind = "stock_adjustment_delete"
)

// Compensates indica si un movimiento con esta referencia anula el efecto de un movimiento
// previo de la misma referencia (la restauración compensa a la eliminación).
func (r ReferenceKind) Compensates() bool {
	switch r {
	case ReferenceOrderReversal, ReferenceOrderDelete, ReferenceOrderRestore, ReferenceStockAdjustmentDelete:
		return true
	}
	return false
}

// StockMovement es una entrada inmutable del libro de stock. Nunca se actualiza ni se borra:
// las reversiones son filas nuevas que apuntan a la fila que compensan (ReversesMovementID).
type StockMovement struct {
	ID                 string
	Seq                int64
	CompanyID          string
	ProductID          string
	WarehouseID        string
	Quantity           decimal.Decimal // con signo
	Kind               MovementKind
	ReferenceKind      ReferenceKind
	ReferenceID        string
	RelatedWarehouseID *string
	ReversesMovementID *string
	Remark             string
	CreatedBy          string
	CreatedAt          time.Time
}
