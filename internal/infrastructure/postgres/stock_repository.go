package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo stock materializado por (producto, bodega) sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// AddQuantity suma delta en una sola sentencia. El UPDATE del ON CONFLICT toma el lock de la fila,
// así que dos transacciones sobre el mismo par nunca pierden un incremento.
func (r *StockRepo) AddQuantity(ctx context.Context, companyID, productID, warehouseID string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		INSERT INTO product_stocks (company_id, product_id, warehouse_id, quantity, opening, updated_at)
		VALUES ($1, $2, $3, $4::numeric, GREATEST($4::numeric, 0), now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = product_stocks.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`
	var qty decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, productID, warehouseID, delta).Scan(&qty); err != nil {
		return decimal.Zero, mapWriteError("add stock", err)
	}
	return qty, nil
}

// Get obtiene el stock actual de un producto en una bodega (cero si no hay fila).
func (r *StockRepo) Get(ctx context.Context, companyID, productID, warehouseID string) (*entity.ProductStock, error) {
	query := `
		SELECT company_id, product_id, warehouse_id, quantity, opening, updated_at
		FROM product_stocks WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3`
	var s entity.ProductStock
	err := r.q.QueryRow(ctx, query, companyID, productID, warehouseID).Scan(
		&s.CompanyID, &s.ProductID, &s.WarehouseID, &s.Quantity, &s.Opening, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return &entity.ProductStock{CompanyID: companyID, ProductID: productID, WarehouseID: warehouseID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// List lista el stock de la empresa filtrando por producto y/o bodega.
func (r *StockRepo) List(ctx context.Context, f repository.StockFilter) ([]*entity.ProductStock, int, error) {
	var w filter
	w.add("company_id = $%d", f.CompanyID)
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		w.add("warehouse_id = $%d", f.WarehouseID)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM product_stocks`+w.where(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock: %w", err)
	}
	limit, args := w.page(f.Limit, f.Offset)
	query := `
		SELECT company_id, product_id, warehouse_id, quantity, opening, updated_at
		FROM product_stocks` + w.where() + ` ORDER BY warehouse_id, product_id` + limit
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductStock
	for rows.Next() {
		var s entity.ProductStock
		if err := rows.Scan(&s.CompanyID, &s.ProductID, &s.WarehouseID, &s.Quantity, &s.Opening, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, total, rows.Err()
}
