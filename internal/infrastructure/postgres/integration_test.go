//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/inventory"
	"github.com/jhoicas/ordenes-api/internal/application/orders"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
	"github.com/jhoicas/ordenes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ordenes-api/pkg/config"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

// ── Setup ────────────────────────────────────────────────────────────────────

type fixture struct {
	pool      *pgxpool.Pool
	tx        *postgres.TxRunner
	orders    *orders.OrderUseCase
	adjust    *inventory.AdjustmentUseCase
	queries   *inventory.StockQueryUseCase
	companyID string
	whA, whB  string
	productID string
	partyID   string
	userID    string
}

func setupDB(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("ordenes_test"),
		tcPostgres.WithUsername("ordenes"),
		tcPostgres.WithPassword("ordenes"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 30})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log := logger.Nop()
	applied, err := postgres.Migrate(ctx, pool, log)
	require.NoError(t, err)
	require.NotEmpty(t, applied)

	f := &fixture{
		pool:      pool,
		tx:        postgres.NewTxRunner(pool),
		companyID: uuid.NewString(),
		whA:       uuid.NewString(),
		whB:       uuid.NewString(),
		productID: uuid.NewString(),
		partyID:   uuid.NewString(),
		userID:    uuid.NewString(),
	}
	companies := postgres.NewCompanyRepository(pool)
	warehouses := postgres.NewWarehouseRepository(pool)
	require.NoError(t, companies.Create(ctx, &entity.Company{ID: f.companyID, Name: "Acme", InvoicePrefix: "ACME", Status: "active"}))
	require.NoError(t, warehouses.Create(ctx, &entity.Warehouse{ID: f.whA, CompanyID: f.companyID, Name: "Central"}))
	require.NoError(t, warehouses.Create(ctx, &entity.Warehouse{ID: f.whB, CompanyID: f.companyID, Name: "Norte"}))
	_, err = pool.Exec(ctx, `INSERT INTO products (id, company_id, name) VALUES ($1, $2, 'Tornillo')`, f.productID, f.companyID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO counterparties (id, company_id, name, kind) VALUES ($1, $2, 'Cliente', 'customer')`, f.partyID, f.companyID)
	require.NoError(t, err)

	mutator := inventory.NewStockMutator(true, log)
	f.orders = orders.NewOrderUseCase(f.tx, orders.NewItemSet(mutator), orders.NewInvoiceNumberer(10, "INV", log), log)
	f.adjust = inventory.NewAdjustmentUseCase(f.tx, mutator)
	f.queries = inventory.NewStockQueryUseCase(f.tx)
	return f
}

func (f *fixture) order(orderType, warehouseID, sourceID, qty string) dto.CreateOrderRequest {
	in := dto.CreateOrderRequest{
		Type:        orderType,
		WarehouseID: warehouseID,
		OrderDate:   "2026-03-14",
		Items: []dto.OrderItemRequest{
			{ProductID: f.productID, Quantity: decimal.RequireFromString(qty), UnitPrice: decimal.NewFromInt(10)},
		},
	}
	if orderType == "stock_transfer" {
		in.SourceWarehouseID = sourceID
	} else {
		in.CounterpartyID = f.partyID
	}
	return in
}

func (f *fixture) stock(t *testing.T, warehouseID string) decimal.Decimal {
	t.Helper()
	var qty decimal.Decimal
	err := f.tx.Run(context.Background(), func(repos repository.Repositories) error {
		s, err := repos.Stock.Get(context.Background(), f.companyID, f.productID, warehouseID)
		if err != nil {
			return err
		}
		qty = s.Quantity
		return nil
	})
	require.NoError(t, err)
	return qty
}

func (f *fixture) assertInvariant(t *testing.T) {
	t.Helper()
	mismatches, err := f.queries.Verify(context.Background(), f.companyID)
	require.NoError(t, err)
	assert.Empty(t, mismatches, "stock materializado debe igualar la suma del libro")
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestMigrate_Idempotente(t *testing.T) {
	f := setupDB(t)

	applied, err := postgres.Migrate(context.Background(), f.pool, logger.Nop())

	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestOrdenes_NumerosUnicosEnConcurrencia(t *testing.T) {
	f := setupDB(t)
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	numbers := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := f.orders.Create(ctx, f.companyID, f.userID, f.order("sale", f.whA, "", "1"))
			errs[i] = err
			if err == nil {
				numbers[i] = out.InvoiceNumber
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Strings(numbers)
	for i, num := range numbers {
		assert.Equal(t, fmt.Sprintf("ACME032026-%04d", i+1), num, "sin huecos ni duplicados")
	}
	assert.True(t, decimal.NewFromInt(-n).Equal(f.stock(t, f.whA)))
	f.assertInvariant(t)
}

func TestOrdenes_CicloCompletoMantieneInvariante(t *testing.T) {
	f := setupDB(t)
	ctx := context.Background()

	buy, err := f.orders.Create(ctx, f.companyID, f.userID, f.order("purchase", f.whA, "", "5"))
	require.NoError(t, err)
	assert.Equal(t, "PUR032026-0001", buy.InvoiceNumber)

	trf, err := f.orders.Create(ctx, f.companyID, f.userID, f.order("stock_transfer", f.whB, f.whA, "3"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(f.stock(t, f.whA)))
	assert.True(t, decimal.NewFromInt(3).Equal(f.stock(t, f.whB)))

	require.NoError(t, f.orders.Delete(ctx, f.companyID, f.userID, trf.OrderID))
	assert.True(t, decimal.NewFromInt(5).Equal(f.stock(t, f.whA)))
	assert.True(t, f.stock(t, f.whB).IsZero())

	require.NoError(t, f.orders.Restore(ctx, f.companyID, f.userID, trf.OrderID))
	assert.True(t, decimal.NewFromInt(2).Equal(f.stock(t, f.whA)))

	upd := dto.UpdateOrderRequest{CreateOrderRequest: f.order("purchase", f.whB, "", "4")}
	_, err = f.orders.Update(ctx, f.companyID, f.userID, buy.OrderID, upd)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-3).Equal(f.stock(t, f.whA)))
	assert.True(t, decimal.NewFromInt(7).Equal(f.stock(t, f.whB)))

	hist, err := f.queries.History(ctx, f.companyID, dto.StockHistoryRequest{ReferenceID: trf.OrderID})
	require.NoError(t, err)
	linked := 0
	for _, m := range hist.Items {
		if m.ReversesMovementID != nil {
			linked++
		}
	}
	assert.Equal(t, 4, linked, "borrado y restauración compensan las dos patas del traslado")
	f.assertInvariant(t)
}

func TestOrdenes_ContadorSeSiembraDesdeNumerosExistentes(t *testing.T) {
	f := setupDB(t)
	ctx := context.Background()
	_, err := f.pool.Exec(ctx, `
		INSERT INTO orders (id, company_id, warehouse_id, counterparty_id, order_type, invoice_number, order_date,
			payment_status, status)
		VALUES ($1, $2, $3, $4, 'purchase', 'PUR032026-0007', now(), 'unpaid', 'pending')`,
		uuid.NewString(), f.companyID, f.whA, f.partyID)
	require.NoError(t, err)

	out, err := f.orders.Create(ctx, f.companyID, f.userID, f.order("purchase", f.whA, "", "1"))

	require.NoError(t, err)
	assert.Equal(t, "PUR032026-0008", out.InvoiceNumber)
}

func TestOrderRepo_DuplicadoNoInvalidaLaTransaccion(t *testing.T) {
	f := setupDB(t)
	ctx := context.Background()
	newOrder := func(number string) *entity.Order {
		now := time.Now().UTC()
		return &entity.Order{
			ID: uuid.NewString(), CompanyID: f.companyID, WarehouseID: f.whA, CounterpartyID: &f.partyID,
			Type: entity.OrderTypePurchase, InvoiceNumber: number, OrderDate: now,
			PaymentStatus: entity.PaymentStatusUnpaid, Status: entity.OrderStatusPending, IsDeletable: true,
			CreatedAt: now, UpdatedAt: now,
		}
	}

	err := f.tx.Run(ctx, func(repos repository.Repositories) error {
		require.NoError(t, repos.Orders.Create(ctx, newOrder("DUP-0001")))
		err := repos.Orders.Create(ctx, newOrder("DUP-0001"))
		assert.ErrorIs(t, err, domain.ErrDuplicateInvoice)
		return repos.Orders.Create(ctx, newOrder("DUP-0002"))
	})
	require.NoError(t, err, "el savepoint deja la transacción usable")

	var count int
	require.NoError(t, f.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE company_id = $1`, f.companyID).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestStock_IncrementosConcurrentesNoSePierden(t *testing.T) {
	f := setupDB(t)
	ctx := context.Background()
	const n = 25

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.adjust.Create(ctx, f.companyID, f.userID, dto.CreateStockAdjustmentRequest{
				ProductID: f.productID, WarehouseID: f.whA, Type: "add", Quantity: decimal.NewFromInt(1),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, decimal.NewFromInt(n).Equal(f.stock(t, f.whA)))
	f.assertInvariant(t)
}

func TestLibro_SoloInsercion(t *testing.T) {
	f := setupDB(t)
	ctx := context.Background()
	_, err := f.orders.Create(ctx, f.companyID, f.userID, f.order("purchase", f.whA, "", "5"))
	require.NoError(t, err)

	_, err = f.pool.Exec(ctx, `UPDATE stock_movements SET quantity = 1`)
	assert.Error(t, err)
	_, err = f.pool.Exec(ctx, `DELETE FROM stock_movements`)
	assert.Error(t, err)
}

func TestVerify_DetectaDescuadre(t *testing.T) {
	f := setupDB(t)
	ctx := context.Background()
	_, err := f.orders.Create(ctx, f.companyID, f.userID, f.order("purchase", f.whA, "", "5"))
	require.NoError(t, err)

	_, err = f.pool.Exec(ctx, `UPDATE product_stocks SET quantity = quantity + 1 WHERE warehouse_id = $1`, f.whA)
	require.NoError(t, err)

	mismatches, err := f.queries.Verify(ctx, f.companyID)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.True(t, decimal.NewFromInt(6).Equal(mismatches[0].Stock))
	assert.True(t, decimal.NewFromInt(5).Equal(mismatches[0].LedgerSum))
}
