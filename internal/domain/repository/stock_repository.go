package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// StockFilter filtros de consulta de stock materializado.
type StockFilter struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
	Limit       int
	Offset      int
}

// StockRepository define el puerto del stock materializado por (producto, bodega).
type StockRepository interface {
	// AddQuantity suma delta a la cantidad actual en una sola sentencia atómica y devuelve la cantidad resultante.
	// Si la fila no existe la crea con quantity = delta y opening = max(delta, 0).
	AddQuantity(ctx context.Context, companyID, productID, warehouseID string, delta decimal.Decimal) (decimal.Decimal, error)
	// Get devuelve el stock del par; cantidad cero si no hay fila.
	Get(ctx context.Context, companyID, productID, warehouseID string) (*entity.ProductStock, error)
	List(ctx context.Context, filter StockFilter) ([]*entity.ProductStock, int, error)
}
