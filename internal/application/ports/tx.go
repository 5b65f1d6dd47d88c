package ports

import (
	"context"

	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD, con repositorios atados a esa tx.
// Si fn devuelve error la transacción se revierte; si no, se hace Commit.
// En ambos casos la conexión vuelve al pool antes de retornar.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}
