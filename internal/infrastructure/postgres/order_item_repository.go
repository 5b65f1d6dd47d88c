package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.OrderItemRepository = (*OrderItemRepo)(nil)

// OrderItemRepo líneas de orden sobre PostgreSQL (usable con pool o tx).
type OrderItemRepo struct {
	q Querier
}

// NewOrderItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderItemRepository(q Querier) *OrderItemRepo {
	return &OrderItemRepo{q: q}
}

// Create inserta una línea. Un producto inexistente devuelve domain.ErrNotFound.
func (r *OrderItemRepo) Create(ctx context.Context, it *entity.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, unit_id, quantity, unit_price, discount_rate,
			discount_amount, tax_rate, tax_amount, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.OrderID, it.ProductID, it.UnitID, it.Quantity, it.UnitPrice, it.DiscountRate,
		it.DiscountAmount, it.TaxRate, it.TaxAmount, it.Subtotal, it.CreatedAt,
	)
	if err != nil {
		return mapWriteError("insert order item", err)
	}
	return nil
}

// ListByOrder devuelve las líneas en el orden en que se insertaron.
func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, unit_id, quantity, unit_price, discount_rate,
			discount_amount, tax_rate, tax_amount, subtotal, created_at
		FROM order_items WHERE order_id = $1 ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var list []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.UnitID, &it.Quantity, &it.UnitPrice,
			&it.DiscountRate, &it.DiscountAmount, &it.TaxRate, &it.TaxAmount, &it.Subtotal, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// DeleteByOrder borra todas las líneas de la orden (edición completa).
func (r *OrderItemRepo) DeleteByOrder(ctx context.Context, orderID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return nil
}
