package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

// Delta cambio de stock con signo sobre un par (producto, bodega) y su registro en el libro.
type Delta struct {
	CompanyID          string
	ProductID          string
	WarehouseID        string
	Quantity           decimal.Decimal // con signo
	Kind               entity.MovementKind
	ReferenceKind      entity.ReferenceKind
	ReferenceID        string
	RelatedWarehouseID string
	Remark             string
	UserID             string
}

// StockMutator aplica deltas de stock: incremento atómico del stock materializado
// y una fila en el libro de movimientos, siempre dentro de la transacción del caller.
type StockMutator struct {
	allowNegative bool
	log           *logger.Logger
}

// NewStockMutator construye el motor. Con allowNegative=false una salida que deja
// el stock en negativo devuelve domain.ErrInsufficientStock.
func NewStockMutator(allowNegative bool, log *logger.Logger) *StockMutator {
	return &StockMutator{allowNegative: allowNegative, log: log.Component("stock")}
}

// Apply aplica el delta con los repos de la transacción en curso. Un delta cero no hace nada
// y devuelve (nil, nil). Cualquier error obliga al caller a revertir la transacción.
func (m *StockMutator) Apply(ctx context.Context, repos repository.Repositories, d Delta) (*entity.StockMovement, error) {
	if d.Quantity.IsZero() {
		return nil, nil
	}
	if d.CompanyID == "" || d.ProductID == "" || d.WarehouseID == "" || d.Kind == "" || d.ReferenceKind == "" {
		return nil, fmt.Errorf("%w: delta de stock incompleto", domain.ErrInvalidInput)
	}
	if !entity.FitsQuantityScale(d.Quantity) {
		return nil, fmt.Errorf("%w: cantidad %s con más de %d decimales", domain.ErrInvalidInput, d.Quantity, entity.QuantityScale)
	}

	qty, err := repos.Stock.AddQuantity(ctx, d.CompanyID, d.ProductID, d.WarehouseID, d.Quantity)
	if err != nil {
		return nil, fmt.Errorf("actualizar stock: %w", err)
	}
	if !m.allowNegative && d.Quantity.IsNegative() && qty.IsNegative() {
		return nil, fmt.Errorf("%w: producto %s en bodega %s quedaría en %s",
			domain.ErrInsufficientStock, d.ProductID, d.WarehouseID, qty.String())
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		CompanyID:     d.CompanyID,
		ProductID:     d.ProductID,
		WarehouseID:   d.WarehouseID,
		Quantity:      d.Quantity,
		Kind:          d.Kind,
		ReferenceKind: d.ReferenceKind,
		ReferenceID:   d.ReferenceID,
		Remark:        d.Remark,
		CreatedBy:     d.UserID,
		CreatedAt:     time.Now().UTC(),
	}
	if d.RelatedWarehouseID != "" {
		related := d.RelatedWarehouseID
		mov.RelatedWarehouseID = &related
	}
	if d.ReferenceKind.Compensates() {
		orig, err := repos.Movements.FindUnreversed(ctx, d.ReferenceID, d.ProductID, d.WarehouseID, d.Kind, d.Quantity.Neg())
		if err != nil {
			return nil, fmt.Errorf("buscar movimiento a compensar: %w", err)
		}
		if orig != nil {
			mov.ReversesMovementID = &orig.ID
		}
	}
	if err := repos.Movements.Append(ctx, mov); err != nil {
		return nil, fmt.Errorf("registrar movimiento: %w", err)
	}

	m.log.Debug().
		Str("product_id", d.ProductID).
		Str("warehouse_id", d.WarehouseID).
		Str("delta", d.Quantity.String()).
		Str("stock", qty.String()).
		Str("kind", string(d.Kind)).
		Str("reference", string(d.ReferenceKind)).
		Msg("delta de stock aplicado")
	return mov, nil
}
