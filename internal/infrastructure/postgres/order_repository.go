package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// invoiceNumberConstraint índice único (company_id, invoice_number).
const invoiceNumberConstraint = "orders_company_invoice_number_key"

const orderColumns = `
	o.id, o.company_id, o.warehouse_id, o.source_warehouse_id, o.counterparty_id, o.order_type,
	o.invoice_number, o.order_date, o.subtotal, o.discount_amount, o.shipping_amount, o.tax_rate,
	o.tax_amount, o.total, o.paid_amount, o.due_amount, o.payment_status, o.status, o.notes,
	o.is_deleted, o.is_deletable, o.parent_order_id, o.is_converted, o.converted_order_id,
	o.created_by, o.updated_by, o.created_at, o.updated_at`

// OrderRepo cabeceras de orden sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la cabecera dentro de un SAVEPOINT: si el número de factura ya existe se revierte
// solo el savepoint y la transacción del llamador sigue usable para reintentar con otro número.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	sp, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint order: %w", err)
	}
	defer func() { _ = sp.Rollback(ctx) }()

	query := `
		INSERT INTO orders (id, company_id, warehouse_id, source_warehouse_id, counterparty_id, order_type,
			invoice_number, order_date, subtotal, discount_amount, shipping_amount, tax_rate, tax_amount,
			total, paid_amount, due_amount, payment_status, status, notes, is_deleted, is_deletable,
			parent_order_id, is_converted, converted_order_id, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28)`
	_, err = sp.Exec(ctx, query,
		o.ID, o.CompanyID, o.WarehouseID, o.SourceWarehouseID, o.CounterpartyID, string(o.Type),
		o.InvoiceNumber, o.OrderDate, o.Subtotal, o.DiscountAmount, o.ShippingAmount, o.TaxRate, o.TaxAmount,
		o.Total, o.PaidAmount, o.DueAmount, string(o.PaymentStatus), string(o.Status), o.Notes, o.IsDeleted, o.IsDeletable,
		o.ParentOrderID, o.IsConverted, o.ConvertedOrderID, o.CreatedBy, o.UpdatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) == invoiceNumberConstraint {
			return domain.ErrDuplicateInvoice
		}
		return mapWriteError("insert order", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint order: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID dentro de la empresa.
func (r *OrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Order, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate obtiene la cabecera y bloquea la fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Order, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *OrderRepo) get(ctx context.Context, companyID, id, lock string) (*entity.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders o WHERE o.company_id = $1 AND o.id = $2` + lock
	o, err := scanOrder(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// Update reemplaza los campos editables de la cabecera. El número de factura no cambia.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET warehouse_id = $3, source_warehouse_id = $4, counterparty_id = $5, order_type = $6,
			order_date = $7, subtotal = $8, discount_amount = $9, shipping_amount = $10, tax_rate = $11,
			tax_amount = $12, total = $13, paid_amount = $14, due_amount = $15, payment_status = $16,
			status = $17, notes = $18, is_deletable = $19, parent_order_id = $20, updated_by = $21, updated_at = $22
		WHERE company_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		o.CompanyID, o.ID, o.WarehouseID, o.SourceWarehouseID, o.CounterpartyID, string(o.Type),
		o.OrderDate, o.Subtotal, o.DiscountAmount, o.ShippingAmount, o.TaxRate,
		o.TaxAmount, o.Total, o.PaidAmount, o.DueAmount, string(o.PaymentStatus),
		string(o.Status), o.Notes, o.IsDeletable, o.ParentOrderID, o.UpdatedBy, o.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update order", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePaymentSummary persiste pagado, saldo, estados y flag de borrado.
func (r *OrderRepo) UpdatePaymentSummary(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET paid_amount = $2, due_amount = $3, payment_status = $4, status = $5,
			is_deletable = $6, updated_by = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		o.ID, o.PaidAmount, o.DueAmount, string(o.PaymentStatus), string(o.Status),
		o.IsDeletable, o.UpdatedBy, o.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update order payments", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetDeleted marca o desmarca el borrado lógico.
func (r *OrderRepo) SetDeleted(ctx context.Context, id string, deleted bool, userID string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET is_deleted = $2, updated_by = $3, updated_at = now() WHERE id = $1`,
		id, deleted, userID,
	)
	if err != nil {
		return fmt.Errorf("set order deleted: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkConverted enlaza la proforma con la venta generada y la deja no eliminable.
func (r *OrderRepo) MarkConverted(ctx context.Context, id, convertedOrderID, userID string) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET is_converted = true, converted_order_id = $2, is_deletable = false,
			updated_by = $3, updated_at = now()
		WHERE id = $1`,
		id, convertedOrderID, userID,
	)
	if err != nil {
		return mapWriteError("mark order converted", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// InvoiceNumberExists informa si la empresa ya tiene una orden con ese número.
func (r *OrderRepo) InvoiceNumberExists(ctx context.Context, companyID, number string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE company_id = $1 AND invoice_number = $2)`,
		companyID, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	return exists, nil
}

// List lista cabeceras con filtros; devuelve también el total sin paginar.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var w filter
	w.add("o.company_id = $%d", f.CompanyID)
	if !f.IncludeDeleted {
		w.raw("NOT o.is_deleted")
	}
	if f.Type != "" {
		w.add("o.order_type = $%d", string(f.Type))
	}
	if f.PaymentStatus != "" {
		w.add("o.payment_status = $%d", string(f.PaymentStatus))
	}
	if f.Status != "" {
		w.add("o.status = $%d", string(f.Status))
	}
	if f.From != nil {
		w.add("o.order_date >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("o.order_date <= $%d", *f.To)
	}
	if f.WarehouseID != "" {
		switch f.TransferDirection {
		case repository.TransferIn:
			w.raw("o.order_type = 'stock_transfer'")
			w.add("o.warehouse_id = $%d", f.WarehouseID)
		case repository.TransferOut:
			w.add("o.source_warehouse_id = $%d", f.WarehouseID)
		default:
			w.add("(o.warehouse_id = $%d OR o.source_warehouse_id = $%d)", f.WarehouseID)
		}
	}
	if f.ProductID != "" {
		w.add("EXISTS (SELECT 1 FROM order_items i WHERE i.order_id = o.id AND i.product_id = $%d)", f.ProductID)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM orders o`+w.where(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	limit, args := w.page(f.Limit, f.Offset)
	query := `SELECT` + orderColumns + ` FROM orders o` + w.where() + ` ORDER BY o.order_date DESC, o.created_at DESC` + limit
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.WarehouseID, &o.SourceWarehouseID, &o.CounterpartyID, &o.Type,
		&o.InvoiceNumber, &o.OrderDate, &o.Subtotal, &o.DiscountAmount, &o.ShippingAmount, &o.TaxRate,
		&o.TaxAmount, &o.Total, &o.PaidAmount, &o.DueAmount, &o.PaymentStatus, &o.Status, &o.Notes,
		&o.IsDeleted, &o.IsDeletable, &o.ParentOrderID, &o.IsConverted, &o.ConvertedOrderID,
		&o.CreatedBy, &o.UpdatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
