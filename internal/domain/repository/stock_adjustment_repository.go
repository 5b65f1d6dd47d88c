package repository

import (
	"context"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// AdjustmentFilter filtros del listado de ajustes.
type AdjustmentFilter struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
	Type        entity.AdjustmentType
	Limit       int
	Offset      int
}

// StockAdjustmentRepository define el puerto de ajustes manuales de stock.
// Las lecturas devuelven (nil, nil) si el ajuste no existe en la empresa.
type StockAdjustmentRepository interface {
	Create(ctx context.Context, a *entity.StockAdjustment) error
	GetByID(ctx context.Context, companyID, id string) (*entity.StockAdjustment, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockAdjustment, error)
	Update(ctx context.Context, a *entity.StockAdjustment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AdjustmentFilter) ([]*entity.StockAdjustment, int, error)
}
