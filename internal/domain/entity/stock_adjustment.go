package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentType tipo de ajuste manual de stock.
type AdjustmentType string

const (
	AdjustmentAdd      AdjustmentType = "add"
	AdjustmentSubtract AdjustmentType = "subtract"
)

// ParseAdjustmentType convierte un string en AdjustmentType.
func ParseAdjustmentType(s string) (AdjustmentType, bool) {
	switch AdjustmentType(s) {
	case AdjustmentAdd, AdjustmentSubtract:
		return AdjustmentType(s), true
	}
	return "", false
}

// StockAdjustment corrección manual de stock. Quantity es siempre positiva; el signo lo da Type.
type StockAdjustment struct {
	ID          string
	CompanyID   string
	ProductID   string
	WarehouseID string
	Type        AdjustmentType
	Quantity    decimal.Decimal
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SignedEffect devuelve el efecto con signo sobre el stock.
func (a *StockAdjustment) SignedEffect() decimal.Decimal {
	if a.Type == AdjustmentSubtract {
		return a.Quantity.Neg()
	}
	return a.Quantity
}

// MovementKind devuelve el tipo de movimiento que registra el ajuste.
func (a *StockAdjustment) MovementKind() MovementKind {
	if a.Type == AdjustmentSubtract {
		return MovementKindAdjustSubtract
	}
	return MovementKindAdjustAdd
}
