package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// AdjustmentUseCase ajustes manuales de stock (sumar/restar) sobre el mismo motor de stock que las órdenes.
type AdjustmentUseCase struct {
	tx      ports.TxRunner
	mutator *StockMutator
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(tx ports.TxRunner, mutator *StockMutator) *AdjustmentUseCase {
	return &AdjustmentUseCase{tx: tx, mutator: mutator}
}

// Create registra el ajuste y aplica su efecto con signo. Cualquier fallo revierte ambos.
func (uc *AdjustmentUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateStockAdjustmentRequest) (*dto.StockAdjustmentResponse, error) {
	adjType, ok := entity.ParseAdjustmentType(in.Type)
	if !ok || in.ProductID == "" || in.WarehouseID == "" || !in.Quantity.GreaterThan(decimal.Zero) || !entity.FitsQuantityScale(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	adj := &entity.StockAdjustment{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Type:        adjType,
		Quantity:    in.Quantity,
		Notes:       in.Notes,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := checkWarehouse(ctx, repos, companyID, adj.WarehouseID); err != nil {
			return err
		}
		if err := repos.Adjustments.Create(ctx, adj); err != nil {
			return err
		}
		_, err := uc.mutator.Apply(ctx, repos, Delta{
			CompanyID:     companyID,
			ProductID:     adj.ProductID,
			WarehouseID:   adj.WarehouseID,
			Quantity:      adj.SignedEffect(),
			Kind:          adj.MovementKind(),
			ReferenceKind: entity.ReferenceStockAdjustment,
			ReferenceID:   adj.ID,
			Remark:        adj.Notes,
			UserID:        userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponse(adj), nil
}

// Update cambia tipo, cantidad o notas y aplica solo el delta neto (nuevo efecto - efecto anterior).
func (uc *AdjustmentUseCase) Update(ctx context.Context, companyID, userID, id string, in dto.UpdateStockAdjustmentRequest) (*dto.StockAdjustmentResponse, error) {
	adjType, ok := entity.ParseAdjustmentType(in.Type)
	if !ok || !in.Quantity.GreaterThan(decimal.Zero) || !entity.FitsQuantityScale(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}

	var out *entity.StockAdjustment
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		adj, err := repos.Adjustments.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if adj == nil {
			return domain.ErrNotFound
		}
		if (in.ProductID != "" && in.ProductID != adj.ProductID) || (in.WarehouseID != "" && in.WarehouseID != adj.WarehouseID) {
			return fmt.Errorf("%w: producto y bodega de un ajuste no se pueden cambiar", domain.ErrInvalidInput)
		}

		oldEffect := adj.SignedEffect()
		adj.Type = adjType
		adj.Quantity = in.Quantity
		adj.Notes = in.Notes
		adj.UpdatedAt = time.Now().UTC()
		net := adj.SignedEffect().Sub(oldEffect)

		kind := entity.MovementKindAdjustAdd
		if net.IsNegative() {
			kind = entity.MovementKindAdjustSubtract
		}
		if _, err := uc.mutator.Apply(ctx, repos, Delta{
			CompanyID:     companyID,
			ProductID:     adj.ProductID,
			WarehouseID:   adj.WarehouseID,
			Quantity:      net,
			Kind:          kind,
			ReferenceKind: entity.ReferenceStockAdjustmentUpdate,
			ReferenceID:   adj.ID,
			Remark:        adj.Notes,
			UserID:        userID,
		}); err != nil {
			return err
		}
		if err := repos.Adjustments.Update(ctx, adj); err != nil {
			return err
		}
		out = adj
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponse(out), nil
}

// Delete revierte el efecto vigente del ajuste y luego borra el registro.
func (uc *AdjustmentUseCase) Delete(ctx context.Context, companyID, userID, id string) error {
	return uc.tx.Run(ctx, func(repos repository.Repositories) error {
		adj, err := repos.Adjustments.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if adj == nil {
			return domain.ErrNotFound
		}
		if _, err := uc.mutator.Apply(ctx, repos, Delta{
			CompanyID:     companyID,
			ProductID:     adj.ProductID,
			WarehouseID:   adj.WarehouseID,
			Quantity:      adj.SignedEffect().Neg(),
			Kind:          adj.MovementKind(),
			ReferenceKind: entity.ReferenceStockAdjustmentDelete,
			ReferenceID:   adj.ID,
			Remark:        "ajuste eliminado",
			UserID:        userID,
		}); err != nil {
			return err
		}
		return repos.Adjustments.Delete(ctx, adj.ID)
	})
}

// Get devuelve un ajuste de la empresa.
func (uc *AdjustmentUseCase) Get(ctx context.Context, companyID, id string) (*dto.StockAdjustmentResponse, error) {
	var out *entity.StockAdjustment
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		adj, err := repos.Adjustments.GetByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if adj == nil {
			return domain.ErrNotFound
		}
		out = adj
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponse(out), nil
}

// List lista ajustes con filtros y paginación.
func (uc *AdjustmentUseCase) List(ctx context.Context, companyID string, in dto.StockAdjustmentListRequest) (*dto.StockAdjustmentListResponse, error) {
	in.DefaultPage()
	filter := repository.AdjustmentFilter{
		CompanyID:   companyID,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.Type != "" {
		t, ok := entity.ParseAdjustmentType(in.Type)
		if !ok {
			return nil, domain.ErrInvalidInput
		}
		filter.Type = t
	}

	var list []*entity.StockAdjustment
	var total int
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.Adjustments.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.StockAdjustmentListResponse{
		Items: make([]dto.StockAdjustmentResponse, 0, len(list)),
		Page:  dto.NewPage(in.Limit, in.Offset, total),
	}
	for _, a := range list {
		out.Items = append(out.Items, *toAdjustmentResponse(a))
	}
	return out, nil
}

// checkWarehouse valida que la bodega exista y pertenezca a la empresa.
func checkWarehouse(ctx context.Context, repos repository.Repositories, companyID, warehouseID string) error {
	w, err := repos.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if w == nil || w.CompanyID != companyID {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	return nil
}

func toAdjustmentResponse(a *entity.StockAdjustment) *dto.StockAdjustmentResponse {
	return &dto.StockAdjustmentResponse{
		ID:          a.ID,
		ProductID:   a.ProductID,
		WarehouseID: a.WarehouseID,
		Type:        string(a.Type),
		Quantity:    a.Quantity,
		Notes:       a.Notes,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
	}
}
