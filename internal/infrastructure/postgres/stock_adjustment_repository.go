package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

const adjustmentColumns = `
	id, company_id, product_id, warehouse_id, adjustment_type, quantity, notes, created_by, created_at, updated_at`

// StockAdjustmentRepo ajustes manuales de stock sobre PostgreSQL.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

// Create persiste el ajuste.
func (r *StockAdjustmentRepo) Create(ctx context.Context, a *entity.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustments (id, company_id, product_id, warehouse_id, adjustment_type, quantity,
			notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CompanyID, a.ProductID, a.WarehouseID, string(a.Type), a.Quantity,
		a.Notes, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert stock adjustment", err)
	}
	return nil
}

// GetByID obtiene un ajuste de la empresa.
func (r *StockAdjustmentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockAdjustment, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate obtiene el ajuste bloqueando la fila.
func (r *StockAdjustmentRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockAdjustment, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *StockAdjustmentRepo) get(ctx context.Context, companyID, id, lock string) (*entity.StockAdjustment, error) {
	query := `SELECT` + adjustmentColumns + ` FROM stock_adjustments WHERE company_id = $1 AND id = $2` + lock
	a, err := scanAdjustment(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock adjustment: %w", err)
	}
	return a, nil
}

// Update persiste tipo, cantidad y notas.
func (r *StockAdjustmentRepo) Update(ctx context.Context, a *entity.StockAdjustment) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_adjustments SET adjustment_type = $2, quantity = $3, notes = $4, updated_at = $5
		WHERE id = $1`,
		a.ID, string(a.Type), a.Quantity, a.Notes, a.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update stock adjustment", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el registro del ajuste; sus movimientos quedan en el libro.
func (r *StockAdjustmentRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_adjustments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete stock adjustment: %w", err)
	}
	return nil
}

// List lista ajustes del más reciente al más antiguo.
func (r *StockAdjustmentRepo) List(ctx context.Context, f repository.AdjustmentFilter) ([]*entity.StockAdjustment, int, error) {
	var w filter
	w.add("company_id = $%d", f.CompanyID)
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		w.add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.Type != "" {
		w.add("adjustment_type = $%d", string(f.Type))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_adjustments`+w.where(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock adjustments: %w", err)
	}
	limit, args := w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT`+adjustmentColumns+` FROM stock_adjustments`+w.where()+` ORDER BY created_at DESC, id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock adjustment: %w", err)
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}

func scanAdjustment(row pgx.Row) (*entity.StockAdjustment, error) {
	var a entity.StockAdjustment
	err := row.Scan(&a.ID, &a.CompanyID, &a.ProductID, &a.WarehouseID, &a.Type, &a.Quantity,
		&a.Notes, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
