package repository

import (
	"context"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de lectura de bodegas (datos de referencia).
// GetByID devuelve (nil, nil) si no existe.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}
