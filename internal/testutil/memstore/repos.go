package memstore

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

type companyRepo struct{ s *Store }

func (r *companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	c, ok := r.s.st.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type warehouseRepo struct{ s *Store }

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.s.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	if r.s.ExistingInvoiceNumbers[o.InvoiceNumber] {
		return domain.ErrDuplicateInvoice
	}
	for _, other := range r.s.st.orders {
		if other.CompanyID == o.CompanyID && other.InvoiceNumber == o.InvoiceNumber {
			return domain.ErrDuplicateInvoice
		}
	}
	r.s.st.orders[o.ID] = header(o)
	r.s.st.orderIDs = append(r.s.st.orderIDs, o.ID)
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, companyID, id string) (*entity.Order, error) {
	o, ok := r.s.st.orders[id]
	if !ok || o.CompanyID != companyID {
		return nil, nil
	}
	return &o, nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Order, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *orderRepo) Update(_ context.Context, o *entity.Order) error {
	if _, ok := r.s.st.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.st.orders[o.ID] = header(o)
	return nil
}

func (r *orderRepo) UpdatePaymentSummary(_ context.Context, o *entity.Order) error {
	cur, ok := r.s.st.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.PaidAmount = o.PaidAmount
	cur.DueAmount = o.DueAmount
	cur.PaymentStatus = o.PaymentStatus
	cur.IsDeletable = o.IsDeletable
	cur.Status = o.Status
	cur.UpdatedBy = o.UpdatedBy
	cur.UpdatedAt = o.UpdatedAt
	r.s.st.orders[o.ID] = cur
	return nil
}

func (r *orderRepo) SetDeleted(_ context.Context, id string, deleted bool, userID string) error {
	cur, ok := r.s.st.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.IsDeleted = deleted
	cur.UpdatedBy = userID
	cur.UpdatedAt = time.Now().UTC()
	r.s.st.orders[id] = cur
	return nil
}

func (r *orderRepo) MarkConverted(_ context.Context, id, convertedOrderID, userID string) error {
	cur, ok := r.s.st.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.IsConverted = true
	cur.IsDeletable = false
	cur.ConvertedOrderID = &convertedOrderID
	cur.UpdatedBy = userID
	r.s.st.orders[id] = cur
	return nil
}

func (r *orderRepo) InvoiceNumberExists(_ context.Context, companyID, number string) (bool, error) {
	for _, o := range r.s.st.orders {
		if o.CompanyID == companyID && o.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *orderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var matched []*entity.Order
	for _, id := range r.s.st.orderIDs {
		o := r.s.st.orders[id]
		if !r.matches(&o, f) {
			continue
		}
		matched = append(matched, &o)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OrderDate.After(matched[j].OrderDate)
	})
	return page(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *orderRepo) matches(o *entity.Order, f repository.OrderFilter) bool {
	if o.CompanyID != f.CompanyID || (o.IsDeleted && !f.IncludeDeleted) {
		return false
	}
	if f.Type != "" && o.Type != f.Type {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.From != nil && o.OrderDate.Before(*f.From) {
		return false
	}
	if f.To != nil && o.OrderDate.After(*f.To) {
		return false
	}
	if f.WarehouseID != "" {
		switch f.TransferDirection {
		case repository.TransferIn:
			if o.Type != entity.OrderTypeStockTransfer || o.WarehouseID != f.WarehouseID {
				return false
			}
		case repository.TransferOut:
			if o.Type != entity.OrderTypeStockTransfer || o.TransferSourceID() != f.WarehouseID {
				return false
			}
		default:
			if o.WarehouseID != f.WarehouseID && o.TransferSourceID() != f.WarehouseID {
				return false
			}
		}
	}
	if f.ProductID != "" {
		found := false
		for _, it := range r.s.st.items[o.ID] {
			if it.ProductID == f.ProductID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type itemRepo struct{ s *Store }

func (r *itemRepo) Create(_ context.Context, it *entity.OrderItem) error {
	if _, ok := r.s.st.orders[it.OrderID]; !ok {
		return domain.ErrNotFound
	}
	r.s.st.items[it.OrderID] = append(r.s.st.items[it.OrderID], *it)
	return nil
}

func (r *itemRepo) ListByOrder(_ context.Context, orderID string) ([]entity.OrderItem, error) {
	return append([]entity.OrderItem(nil), r.s.st.items[orderID]...), nil
}

func (r *itemRepo) DeleteByOrder(_ context.Context, orderID string) error {
	delete(r.s.st.items, orderID)
	return nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.s.st.payments[p.ID] = *p
	return nil
}

func (r *paymentRepo) Apply(_ context.Context, op *entity.OrderPayment) error {
	if _, ok := r.s.st.payments[op.PaymentID]; !ok {
		return domain.ErrNotFound
	}
	r.s.st.orderPayments[op.OrderID] = append(r.s.st.orderPayments[op.OrderID], *op)
	return nil
}

func (r *paymentRepo) ListByOrder(_ context.Context, orderID string) ([]entity.OrderPayment, error) {
	return append([]entity.OrderPayment(nil), r.s.st.orderPayments[orderID]...), nil
}

func (r *paymentRepo) DeleteByOrder(_ context.Context, orderID string) error {
	for _, op := range r.s.st.orderPayments[orderID] {
		delete(r.s.st.payments, op.PaymentID)
	}
	delete(r.s.st.orderPayments, orderID)
	return nil
}

type stockRepo struct{ s *Store }

func (r *stockRepo) AddQuantity(_ context.Context, companyID, productID, warehouseID string, delta decimal.Decimal) (decimal.Decimal, error) {
	if r.s.FailStockAdd != nil {
		if err := r.s.FailStockAdd(productID, warehouseID, delta); err != nil {
			return decimal.Zero, err
		}
	}
	k := stockKey{productID, warehouseID}
	ps, ok := r.s.st.stock[k]
	if !ok {
		ps = entity.ProductStock{CompanyID: companyID, ProductID: productID, WarehouseID: warehouseID, Quantity: delta, Opening: decimal.Max(delta, decimal.Zero)}
	} else {
		ps.Quantity = ps.Quantity.Add(delta)
	}
	ps.UpdatedAt = time.Now().UTC()
	r.s.st.stock[k] = ps
	return ps.Quantity, nil
}

func (r *stockRepo) Get(_ context.Context, companyID, productID, warehouseID string) (*entity.ProductStock, error) {
	ps, ok := r.s.st.stock[stockKey{productID, warehouseID}]
	if !ok || ps.CompanyID != companyID {
		return &entity.ProductStock{CompanyID: companyID, ProductID: productID, WarehouseID: warehouseID}, nil
	}
	return &ps, nil
}

func (r *stockRepo) List(_ context.Context, f repository.StockFilter) ([]*entity.ProductStock, int, error) {
	var matched []*entity.ProductStock
	for _, ps := range r.s.st.stock {
		ps := ps
		if ps.CompanyID != f.CompanyID {
			continue
		}
		if (f.ProductID != "" && ps.ProductID != f.ProductID) || (f.WarehouseID != "" && ps.WarehouseID != f.WarehouseID) {
			continue
		}
		matched = append(matched, &ps)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].WarehouseID != matched[j].WarehouseID {
			return matched[i].WarehouseID < matched[j].WarehouseID
		}
		return matched[i].ProductID < matched[j].ProductID
	})
	return page(matched, f.Limit, f.Offset), len(matched), nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	r.s.st.nextSeq++
	m.Seq = r.s.st.nextSeq
	r.s.st.movements = append(r.s.st.movements, *m)
	return nil
}

func (r *movementRepo) FindUnreversed(_ context.Context, referenceID, productID, warehouseID string, kind entity.MovementKind, qty decimal.Decimal) (*entity.StockMovement, error) {
	reversed := map[string]bool{}
	for _, m := range r.s.st.movements {
		if m.ReversesMovementID != nil {
			reversed[*m.ReversesMovementID] = true
		}
	}
	for i := len(r.s.st.movements) - 1; i >= 0; i-- {
		m := r.s.st.movements[i]
		if m.ReferenceID == referenceID && m.ProductID == productID && m.WarehouseID == warehouseID &&
			m.Kind == kind && m.Quantity.Equal(qty) && !reversed[m.ID] {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	var matched []*entity.StockMovement
	for i := len(r.s.st.movements) - 1; i >= 0; i-- {
		m := r.s.st.movements[i]
		if m.CompanyID != f.CompanyID ||
			(f.ProductID != "" && m.ProductID != f.ProductID) ||
			(f.WarehouseID != "" && m.WarehouseID != f.WarehouseID) ||
			(f.Kind != "" && m.Kind != f.Kind) ||
			(f.ReferenceKind != "" && m.ReferenceKind != f.ReferenceKind) ||
			(f.ReferenceID != "" && m.ReferenceID != f.ReferenceID) {
			continue
		}
		matched = append(matched, &m)
	}
	return page(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *movementRepo) Mismatches(_ context.Context, companyID string) ([]repository.StockMismatch, error) {
	return mismatches(r.s.st, companyID), nil
}

type adjustmentRepo struct{ s *Store }

func (r *adjustmentRepo) Create(_ context.Context, a *entity.StockAdjustment) error {
	r.s.st.adjustments[a.ID] = *a
	return nil
}

func (r *adjustmentRepo) GetByID(_ context.Context, companyID, id string) (*entity.StockAdjustment, error) {
	a, ok := r.s.st.adjustments[id]
	if !ok || a.CompanyID != companyID {
		return nil, nil
	}
	return &a, nil
}

func (r *adjustmentRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockAdjustment, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *adjustmentRepo) Update(_ context.Context, a *entity.StockAdjustment) error {
	if _, ok := r.s.st.adjustments[a.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.st.adjustments[a.ID] = *a
	return nil
}

func (r *adjustmentRepo) Delete(_ context.Context, id string) error {
	delete(r.s.st.adjustments, id)
	return nil
}

func (r *adjustmentRepo) List(_ context.Context, f repository.AdjustmentFilter) ([]*entity.StockAdjustment, int, error) {
	var matched []*entity.StockAdjustment
	for _, a := range r.s.st.adjustments {
		a := a
		if a.CompanyID != f.CompanyID ||
			(f.ProductID != "" && a.ProductID != f.ProductID) ||
			(f.WarehouseID != "" && a.WarehouseID != f.WarehouseID) ||
			(f.Type != "" && a.Type != f.Type) {
			continue
		}
		matched = append(matched, &a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, f.Limit, f.Offset), len(matched), nil
}

type sequenceRepo struct{ s *Store }

func (r *sequenceRepo) Next(_ context.Context, companyID, prefix string, year int, pattern string) (int64, error) {
	k := seqKey{companyID, prefix, year}
	if cur, ok := r.s.st.sequences[k]; ok {
		r.s.st.sequences[k] = cur + 1
		return cur + 1, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}
	var highest int64
	for _, o := range r.s.st.orders {
		if o.CompanyID != companyID {
			continue
		}
		if m := re.FindStringSubmatch(o.InvoiceNumber); m != nil {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil && n > highest {
				highest = n
			}
		}
	}
	r.s.st.sequences[k] = highest + 1
	return highest + 1, nil
}

// header copia la cabecera sin líneas ni pagos.
func header(o *entity.Order) entity.Order {
	h := *o
	h.Items = nil
	h.Payments = nil
	return h
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
