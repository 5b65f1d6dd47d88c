package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// StockQueryUseCase consultas de solo lectura sobre el libro y el stock materializado.
type StockQueryUseCase struct {
	tx ports.TxRunner
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(tx ports.TxRunner) *StockQueryUseCase {
	return &StockQueryUseCase{tx: tx}
}

// History devuelve una página del libro de movimientos, del más reciente al más antiguo.
func (uc *StockQueryUseCase) History(ctx context.Context, companyID string, in dto.StockHistoryRequest) (*dto.StockHistoryResponse, error) {
	in.DefaultPage()
	filter := repository.MovementFilter{
		CompanyID:   companyID,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Kind:        entity.MovementKind(in.Kind),
		ReferenceID: in.ReferenceID,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	var list []*entity.StockMovement
	var total int
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.Movements.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &dto.StockHistoryResponse{
		Items: make([]dto.StockMovementResponse, 0, len(list)),
		Page:  dto.NewPage(in.Limit, in.Offset, total),
	}
	for _, m := range list {
		out.Items = append(out.Items, dto.StockMovementResponse{
			ID:                 m.ID,
			ProductID:          m.ProductID,
			WarehouseID:        m.WarehouseID,
			Quantity:           m.Quantity,
			Kind:               string(m.Kind),
			ReferenceKind:      string(m.ReferenceKind),
			ReferenceID:        m.ReferenceID,
			RelatedWarehouseID: m.RelatedWarehouseID,
			ReversesMovementID: m.ReversesMovementID,
			Remark:             m.Remark,
			CreatedBy:          m.CreatedBy,
			CreatedAt:          m.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// Levels lista el stock materializado (filtrable por producto y bodega).
func (uc *StockQueryUseCase) Levels(ctx context.Context, companyID, productID, warehouseID string, page dto.PageRequest) (*dto.StockListResponse, error) {
	page.DefaultPage()
	var list []*entity.ProductStock
	var total int
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.Stock.List(ctx, repository.StockFilter{
			CompanyID:   companyID,
			ProductID:   productID,
			WarehouseID: warehouseID,
			Limit:       page.Limit,
			Offset:      page.Offset,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.StockListResponse{
		Items: make([]dto.StockLevelResponse, 0, len(list)),
		Page:  dto.NewPage(page.Limit, page.Offset, total),
	}
	for _, s := range list {
		item := dto.StockLevelResponse{
			ProductID:   s.ProductID,
			WarehouseID: s.WarehouseID,
			Quantity:    s.Quantity,
			Opening:     s.Opening,
		}
		if !s.UpdatedAt.IsZero() {
			item.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// Verify devuelve los pares cuyo stock no coincide con la suma del libro (vacío = invariante cumplido).
func (uc *StockQueryUseCase) Verify(ctx context.Context, companyID string) ([]repository.StockMismatch, error) {
	var out []repository.StockMismatch
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		out, err = repos.Movements.Mismatches(ctx, companyID)
		return err
	})
	return out, err
}
