package companies

import (
	"context"

	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// StatusUseCase consulta si la empresa del token puede operar.
type StatusUseCase struct {
	tx ports.TxRunner
}

func NewStatusUseCase(tx ports.TxRunner) *StatusUseCase {
	return &StatusUseCase{tx: tx}
}

// IsActive devuelve false si la empresa no existe o no está activa.
func (uc *StatusUseCase) IsActive(ctx context.Context, companyID string) (bool, error) {
	var active bool
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := repos.Companies.GetByID(ctx, companyID)
		if err != nil {
			return err
		}
		active = c != nil && c.IsActive()
		return nil
	})
	if err != nil {
		return false, err
	}
	return active, nil
}
