package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `
	m.id, m.seq, m.company_id, m.product_id, m.warehouse_id, m.quantity, m.movement_kind,
	m.reference_kind, m.reference_id, m.related_warehouse_id, m.reverses_movement_id,
	m.remark, m.created_by, m.created_at`

// StockMovementRepo libro de movimientos de stock (solo inserción; un trigger rechaza UPDATE/DELETE).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append inserta el movimiento y completa su Seq.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, company_id, product_id, warehouse_id, quantity, movement_kind,
			reference_kind, reference_id, related_warehouse_id, reverses_movement_id, remark, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.CompanyID, m.ProductID, m.WarehouseID, m.Quantity, string(m.Kind),
		string(m.ReferenceKind), m.ReferenceID, m.RelatedWarehouseID, m.ReversesMovementID,
		m.Remark, m.CreatedBy, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return mapWriteError("append stock movement", err)
	}
	return nil
}

// FindUnreversed busca el movimiento más reciente de la referencia que ningún otro compensa todavía.
func (r *StockMovementRepo) FindUnreversed(ctx context.Context, referenceID, productID, warehouseID string, kind entity.MovementKind, qty decimal.Decimal) (*entity.StockMovement, error) {
	query := `SELECT` + movementColumns + `
		FROM stock_movements m
		WHERE m.reference_id = $1 AND m.product_id = $2 AND m.warehouse_id = $3
		  AND m.movement_kind = $4 AND m.quantity = $5
		  AND NOT EXISTS (SELECT 1 FROM stock_movements c WHERE c.reverses_movement_id = m.id)
		ORDER BY m.seq DESC
		LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, referenceID, productID, warehouseID, string(kind), qty))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find unreversed movement: %w", err)
	}
	return m, nil
}

// List devuelve movimientos del más reciente al más antiguo y el total que cumple el filtro.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	var w filter
	w.add("m.company_id = $%d", f.CompanyID)
	if f.ProductID != "" {
		w.add("m.product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		w.add("m.warehouse_id = $%d", f.WarehouseID)
	}
	if f.Kind != "" {
		w.add("m.movement_kind = $%d", string(f.Kind))
	}
	if f.ReferenceKind != "" {
		w.add("m.reference_kind = $%d", string(f.ReferenceKind))
	}
	if f.ReferenceID != "" {
		w.add("m.reference_id = $%d", f.ReferenceID)
	}
	if f.From != nil {
		w.add("m.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("m.created_at <= $%d", *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_movements m`+w.where(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock movements: %w", err)
	}
	limit, args := w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT`+movementColumns+` FROM stock_movements m`+w.where()+` ORDER BY m.seq DESC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// Mismatches compara el stock materializado con la suma del libro por par (producto, bodega).
func (r *StockMovementRepo) Mismatches(ctx context.Context, companyID string) ([]repository.StockMismatch, error) {
	query := `
		SELECT COALESCE(s.company_id, l.company_id), COALESCE(s.product_id, l.product_id),
		       COALESCE(s.warehouse_id, l.warehouse_id), COALESCE(s.quantity, 0), COALESCE(l.total, 0)
		FROM product_stocks s
		FULL OUTER JOIN (
			SELECT company_id, product_id, warehouse_id, SUM(quantity) AS total
			FROM stock_movements
			GROUP BY company_id, product_id, warehouse_id
		) l ON l.product_id = s.product_id AND l.warehouse_id = s.warehouse_id
		WHERE COALESCE(s.quantity, 0) <> COALESCE(l.total, 0)
		  AND ($1::text = '' OR COALESCE(s.company_id, l.company_id)::text = $1::text)
		ORDER BY 1, 2, 3`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("stock mismatches: %w", err)
	}
	defer rows.Close()
	var out []repository.StockMismatch
	for rows.Next() {
		var m repository.StockMismatch
		if err := rows.Scan(&m.CompanyID, &m.ProductID, &m.WarehouseID, &m.Stock, &m.LedgerSum); err != nil {
			return nil, fmt.Errorf("scan mismatch: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var remark, createdBy *string
	err := row.Scan(
		&m.ID, &m.Seq, &m.CompanyID, &m.ProductID, &m.WarehouseID, &m.Quantity, &m.Kind,
		&m.ReferenceKind, &m.ReferenceID, &m.RelatedWarehouseID, &m.ReversesMovementID,
		&remark, &createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if remark != nil {
		m.Remark = *remark
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}
