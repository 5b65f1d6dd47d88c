package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo pagos y su aplicación a órdenes sobre PostgreSQL.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create persiste un pago.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (id, company_id, method, amount, reference, paid_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.Method, p.Amount, p.Reference, p.PaidAt, p.CreatedBy, p.CreatedAt,
	)
	if err != nil {
		return mapWriteError("insert payment", err)
	}
	return nil
}

// Apply registra cuánto de un pago se aplica a la orden.
func (r *PaymentRepo) Apply(ctx context.Context, op *entity.OrderPayment) error {
	query := `
		INSERT INTO order_payments (id, order_id, payment_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, op.ID, op.OrderID, op.PaymentID, op.Amount, op.CreatedAt); err != nil {
		return mapWriteError("apply payment", err)
	}
	return nil
}

// ListByOrder devuelve los pagos aplicados a la orden con método, referencia y fecha del pago.
func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID string) ([]entity.OrderPayment, error) {
	query := `
		SELECT op.id, op.order_id, op.payment_id, op.amount, p.method, p.reference, p.paid_at, op.created_at
		FROM order_payments op
		JOIN payments p ON p.id = op.payment_id
		WHERE op.order_id = $1
		ORDER BY op.created_at, op.id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order payments: %w", err)
	}
	defer rows.Close()
	var list []entity.OrderPayment
	for rows.Next() {
		var op entity.OrderPayment
		if err := rows.Scan(&op.ID, &op.OrderID, &op.PaymentID, &op.Amount, &op.Method, &op.Reference, &op.PaidAt, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order payment: %w", err)
		}
		list = append(list, op)
	}
	return list, rows.Err()
}

// DeleteByOrder borra las aplicaciones de la orden y los pagos que no quedan aplicados a otra.
func (r *PaymentRepo) DeleteByOrder(ctx context.Context, orderID string) error {
	query := `
		WITH removed AS (
			DELETE FROM order_payments WHERE order_id = $1 RETURNING payment_id
		)
		DELETE FROM payments p
		WHERE p.id IN (SELECT payment_id FROM removed)
		  AND NOT EXISTS (
			SELECT 1 FROM order_payments op WHERE op.payment_id = p.id AND op.order_id <> $1
		  )`
	if _, err := r.q.Exec(ctx, query, orderID); err != nil {
		return fmt.Errorf("delete order payments: %w", err)
	}
	return nil
}
