package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/application/inventory"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	stockfx "github.com/jhoicas/ordenes-api/internal/domain/inventory"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// ItemSet administra las líneas de una orden y sus efectos de stock.
// Las líneas se procesan en orden y el primer error aborta la operación completa.
type ItemSet struct {
	mutator *inventory.StockMutator
}

// NewItemSet construye el administrador de líneas.
func NewItemSet(mutator *inventory.StockMutator) *ItemSet {
	return &ItemSet{mutator: mutator}
}

// Insert persiste o.Items asignando IDs y la orden.
func (s *ItemSet) Insert(ctx context.Context, repos repository.Repositories, o *entity.Order) error {
	now := time.Now().UTC()
	for i := range o.Items {
		it := &o.Items[i]
		if !it.Quantity.IsPositive() {
			return fmt.Errorf("%w: cantidad de la línea %d debe ser mayor que cero", domain.ErrInvalidInput, i+1)
		}
		it.ID = uuid.New().String()
		it.OrderID = o.ID
		it.CreatedAt = now
		if err := repos.OrderItems.Create(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

// Apply aplica el efecto original (creación o restauración) de las líneas según el tipo de la orden.
func (s *ItemSet) Apply(ctx context.Context, repos repository.Repositories, o *entity.Order, items []entity.OrderItem, ref entity.ReferenceKind, userID string) error {
	return s.applyEffects(ctx, repos, o, items, ref, 1, userID)
}

// Reverse aplica la inversa exacta del efecto de las líneas usando el tipo y bodegas de o.
func (s *ItemSet) Reverse(ctx context.Context, repos repository.Repositories, o *entity.Order, items []entity.OrderItem, ref entity.ReferenceKind, userID string) error {
	return s.applyEffects(ctx, repos, o, items, ref, -1, userID)
}

// Replace revierte las líneas actuales con la orden vigente, las borra e inserta y aplica las nuevas
// con la orden actualizada.
func (s *ItemSet) Replace(ctx context.Context, repos repository.Repositories, current *entity.Order, currentItems []entity.OrderItem, updated *entity.Order, userID string) error {
	if err := s.Reverse(ctx, repos, current, currentItems, entity.ReferenceOrderReversal, userID); err != nil {
		return err
	}
	if err := repos.OrderItems.DeleteByOrder(ctx, current.ID); err != nil {
		return err
	}
	if err := s.Insert(ctx, repos, updated); err != nil {
		return err
	}
	return s.Apply(ctx, repos, updated, updated.Items, entity.ReferenceOrder, userID)
}

func (s *ItemSet) applyEffects(ctx context.Context, repos repository.Repositories, o *entity.Order, items []entity.OrderItem, ref entity.ReferenceKind, sign int64, userID string) error {
	effects, err := stockfx.Effects(o.Type, o.WarehouseID, o.TransferSourceID())
	if err != nil {
		return err
	}
	if len(effects) == 0 {
		return nil
	}
	for _, it := range items {
		for _, e := range effects {
			qty := it.Quantity.Mul(decimal.NewFromInt(int64(e.Sign) * sign))
			if _, err := s.mutator.Apply(ctx, repos, inventory.Delta{
				CompanyID:          o.CompanyID,
				ProductID:          it.ProductID,
				WarehouseID:        e.WarehouseID,
				Quantity:           qty,
				Kind:               e.Kind,
				ReferenceKind:      ref,
				ReferenceID:        o.ID,
				RelatedWarehouseID: e.RelatedWarehouseID,
				Remark:             o.InvoiceNumber,
				UserID:             userID,
			}); err != nil {
				return fmt.Errorf("línea producto %s: %w", it.ProductID, err)
			}
		}
	}
	return nil
}
