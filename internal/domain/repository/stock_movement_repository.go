package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// MovementFilter filtros del historial de stock.
type MovementFilter struct {
	CompanyID     string
	ProductID     string
	WarehouseID   string
	Kind          entity.MovementKind
	ReferenceKind entity.ReferenceKind
	ReferenceID   string
	From, To      *time.Time
	Limit         int
	Offset        int
}

// StockMismatch par (producto, bodega) cuyo stock materializado difiere de la suma del libro.
type StockMismatch struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
	Stock       decimal.Decimal
	LedgerSum   decimal.Decimal
}

// StockMovementRepository define el puerto del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	Append(ctx context.Context, m *entity.StockMovement) error
	// FindUnreversed busca el movimiento más reciente de la referencia con esa bodega, producto, tipo
	// y cantidad que aún no haya sido compensado por otro. Devuelve (nil, nil) si no hay.
	FindUnreversed(ctx context.Context, referenceID, productID, warehouseID string, kind entity.MovementKind, qty decimal.Decimal) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, int, error)
	// Mismatches verifica el invariante stock = suma del libro. companyID vacío = todas las empresas.
	Mismatches(ctx context.Context, companyID string) ([]StockMismatch, error)
}
