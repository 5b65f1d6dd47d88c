// Package memstore implementa los puertos de repositorio en memoria para tests.
// Cada Run trabaja sobre el estado compartido con un único lock y restaura una copia
// si fn devuelve error, de modo que los tests pueden verificar rollback e invariantes.
package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// ErrInjected error devuelto por los hooks de falla.
var ErrInjected = errors.New("memstore: falla inyectada")

type stockKey struct{ product, warehouse string }

type seqKey struct {
	company, prefix string
	year            int
}

type state struct {
	companies     map[string]entity.Company
	warehouses    map[string]entity.Warehouse
	orders        map[string]entity.Order
	orderIDs      []string
	items         map[string][]entity.OrderItem
	payments      map[string]entity.Payment
	orderPayments map[string][]entity.OrderPayment
	stock         map[stockKey]entity.ProductStock
	movements     []entity.StockMovement
	adjustments   map[string]entity.StockAdjustment
	sequences     map[seqKey]int64
	nextSeq       int64
}

func newState() *state {
	return &state{
		companies:     map[string]entity.Company{},
		warehouses:    map[string]entity.Warehouse{},
		orders:        map[string]entity.Order{},
		items:         map[string][]entity.OrderItem{},
		payments:      map[string]entity.Payment{},
		orderPayments: map[string][]entity.OrderPayment{},
		stock:         map[stockKey]entity.ProductStock{},
		adjustments:   map[string]entity.StockAdjustment{},
		sequences:     map[seqKey]int64{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.companies {
		c.companies[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	c.orderIDs = append([]string(nil), s.orderIDs...)
	for k, v := range s.items {
		c.items[k] = append([]entity.OrderItem(nil), v...)
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.orderPayments {
		c.orderPayments[k] = append([]entity.OrderPayment(nil), v...)
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	for k, v := range s.adjustments {
		c.adjustments[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.nextSeq = s.nextSeq
	return c
}

// Store estado en memoria y TxRunner.
type Store struct {
	mu sync.Mutex
	st *state

	// FailStockAdd, si no es nil, se consulta antes de cada incremento de stock.
	FailStockAdd func(productID, warehouseID string, delta decimal.Decimal) error
	// ExistingInvoiceNumbers simula números tomados por escritores concurrentes:
	// el insert falla con número duplicado aunque el sondeo no lo vea.
	ExistingInvoiceNumbers map[string]bool
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState(), ExistingInvoiceNumbers: map[string]bool{}}
}

// Run ejecuta fn en exclusión mutua y revierte el estado si devuelve error.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.st.clone()
	if err := fn(s.repos()); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) repos() repository.Repositories {
	return repository.Repositories{
		Orders:      &orderRepo{s: s},
		OrderItems:  &itemRepo{s: s},
		Payments:    &paymentRepo{s: s},
		Stock:       &stockRepo{s: s},
		Movements:   &movementRepo{s: s},
		Adjustments: &adjustmentRepo{s: s},
		Sequences:   &sequenceRepo{s: s},
		Companies:   &companyRepo{s: s},
		Warehouses:  &warehouseRepo{s: s},
	}
}

// AddCompany registra una empresa de referencia.
func (s *Store) AddCompany(c entity.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.companies[c.ID] = c
}

// AddWarehouse registra una bodega de referencia.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.warehouses[w.ID] = w
}

// StockOf devuelve el stock materializado (cero si no hay fila).
func (s *Store) StockOf(productID, warehouseID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.stock[stockKey{productID, warehouseID}].Quantity
}

// OpeningOf devuelve el stock inicial registrado para el par.
func (s *Store) OpeningOf(productID, warehouseID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.stock[stockKey{productID, warehouseID}].Opening
}

// LedgerSum suma los movimientos del par.
func (s *Store) LedgerSum(productID, warehouseID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, m := range s.st.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum
}

// Movements devuelve una copia del libro en orden de inserción.
func (s *Store) Movements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.StockMovement(nil), s.st.movements...)
}

// Order devuelve la cabecera almacenada.
func (s *Store) Order(id string) (entity.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	return o, ok
}

// OrderCount cantidad de órdenes almacenadas (incluye eliminadas).
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.orders)
}

// Sequence valor actual del contador de numeración.
func (s *Store) Sequence(companyID, prefix string, year int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.sequences[seqKey{companyID, prefix, year}]
}

// CheckInvariant devuelve los pares cuyo stock difiere de la suma del libro.
func (s *Store) CheckInvariant() []repository.StockMismatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mismatches(s.st, "")
}

func mismatches(st *state, companyID string) []repository.StockMismatch {
	sums := map[stockKey]decimal.Decimal{}
	for _, m := range st.movements {
		if companyID != "" && m.CompanyID != companyID {
			continue
		}
		k := stockKey{m.ProductID, m.WarehouseID}
		sums[k] = sums[k].Add(m.Quantity)
	}
	var out []repository.StockMismatch
	for k, ps := range st.stock {
		if companyID != "" && ps.CompanyID != companyID {
			continue
		}
		if !ps.Quantity.Equal(sums[k]) {
			out = append(out, repository.StockMismatch{CompanyID: ps.CompanyID, ProductID: k.product, WarehouseID: k.warehouse, Stock: ps.Quantity, LedgerSum: sums[k]})
		}
	}
	for k, sum := range sums {
		if _, ok := st.stock[k]; !ok && !sum.IsZero() {
			out = append(out, repository.StockMismatch{ProductID: k.product, WarehouseID: k.warehouse, Stock: decimal.Zero, LedgerSum: sum})
		}
	}
	return out
}
