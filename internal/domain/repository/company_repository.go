package repository

import (
	"context"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// CompanyRepository define el puerto de lectura de empresas (datos de referencia).
// GetByID devuelve (nil, nil) si no existe.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}
