package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordenes-api/internal/application/companies"
	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/inventory"
	"github.com/jhoicas/ordenes-api/internal/application/orders"
	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	apphttp "github.com/jhoicas/ordenes-api/internal/interfaces/http"
	"github.com/jhoicas/ordenes-api/internal/testutil/memstore"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

const (
	bodegaCentral = "10000000-0000-0000-0000-000000000001"
	bodegaNorte   = "10000000-0000-0000-0000-000000000002"
	productoID    = "20000000-0000-0000-0000-000000000001"
	terceroID     = "30000000-0000-0000-0000-000000000001"
	inexistente   = "99999999-0000-0000-0000-000000000000"
)

type apiEnv struct {
	app   *fiber.App
	store *memstore.Store
	token string
}

func newAPI(t *testing.T, idem ports.IdempotencyStore) *apiEnv {
	t.Helper()
	store := memstore.New()
	store.AddCompany(entity.Company{ID: testCompanyID, Name: "Acme", InvoicePrefix: "ACME", Status: entity.CompanyStatusActive})
	store.AddWarehouse(entity.Warehouse{ID: bodegaCentral, CompanyID: testCompanyID, Name: "Central"})
	store.AddWarehouse(entity.Warehouse{ID: bodegaNorte, CompanyID: testCompanyID, Name: "Norte"})

	log := logger.Nop()
	mutator := inventory.NewStockMutator(true, log)
	app := fiber.New()
	app.Use(apphttp.AccessLog(log))
	apphttp.Router(app, apphttp.RouterDeps{
		OrderUC:      orders.NewOrderUseCase(store, orders.NewItemSet(mutator), orders.NewInvoiceNumberer(5, "INV", log), log),
		AdjustmentUC: inventory.NewAdjustmentUseCase(store, mutator),
		StockQueryUC: inventory.NewStockQueryUseCase(store),
		CompanyUC:    companies.NewStatusUseCase(store),
		Idempotency:  idem,
		Tokens:       testSigner(t, time.Hour),
		Log:          log,
	})
	return &apiEnv{app: app, store: store, token: tokenForRole(t, "admin")}
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", e.token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body dto.ErrorResponse
	decode(t, resp, &body)
	return body.Code
}

func compra(qty string) map[string]interface{} {
	return map[string]interface{}{
		"type":            "purchase",
		"warehouse_id":    bodegaCentral,
		"counterparty_id": terceroID,
		"order_date":      "2026-03-14",
		"items": []map[string]interface{}{
			{"product_id": productoID, "quantity": qty, "unit_price": "10"},
		},
	}
}

func (e *apiEnv) crearOrden(t *testing.T, body interface{}) dto.CreateOrderResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.CreateOrderResponse
	decode(t, resp, &out)
	return out
}

func stock(e *apiEnv, warehouseID string) decimal.Decimal {
	return e.store.StockOf(productoID, warehouseID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Orders
// ──────────────────────────────────────────────────────────────────────────────

func TestOrders_CrearCompra(t *testing.T) {
	e := newAPI(t, nil)

	out := e.crearOrden(t, compra("5"))

	assert.NotEmpty(t, out.OrderID)
	assert.Equal(t, "PUR032026-0001", out.InvoiceNumber)
	assert.True(t, decimal.NewFromInt(5).Equal(stock(e, bodegaCentral)))
	assert.Empty(t, e.store.CheckInvariant())
}

func TestOrders_CrearSinToken(t *testing.T) {
	e := newAPI(t, nil)
	e.token = ""

	resp := e.do(t, http.MethodPost, "/api/orders", compra("5"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, e.store.OrderCount())
}

func TestOrders_EmpresaSuspendidaRetorna403(t *testing.T) {
	env := newAPI(t, nil)
	env.store.AddCompany(entity.Company{ID: testCompanyID, Name: "Acme", Status: "suspended"})

	resp := env.do(t, http.MethodPost, "/api/orders", compra("5"))

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "COMPANY_INACTIVE", errorCode(t, resp))
	assert.Zero(t, env.store.OrderCount())
}

func TestOrders_CrearValidaciones(t *testing.T) {
	cases := map[string]func(b map[string]interface{}){
		"sin líneas":          func(b map[string]interface{}) { b["items"] = []interface{}{} },
		"sin tipo":            func(b map[string]interface{}) { delete(b, "type") },
		"bodega no uuid":      func(b map[string]interface{}) { b["warehouse_id"] = "central" },
		"cantidad cero":       func(b map[string]interface{}) { b["items"].([]map[string]interface{})[0]["quantity"] = "0" },
		"fecha mal formada":   func(b map[string]interface{}) { b["order_date"] = "14/03/2026" },
		"tipo desconocido":    func(b map[string]interface{}) { b["type"] = "gift" },
		"traslado sin origen": func(b map[string]interface{}) { b["type"] = "stock_transfer" },
		"compra sin tercero":  func(b map[string]interface{}) { delete(b, "counterparty_id") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := newAPI(t, nil)
			body := compra("5")
			mutate(body)

			resp := e.do(t, http.MethodPost, "/api/orders", body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION", errorCode(t, resp))
			assert.Equal(t, 0, e.store.OrderCount())
		})
	}
}

func TestOrders_CrearBodegaInexistente(t *testing.T) {
	e := newAPI(t, nil)
	body := compra("5")
	body["warehouse_id"] = inexistente

	resp := e.do(t, http.MethodPost, "/api/orders", body)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestOrders_ObtenerConLineas(t *testing.T) {
	e := newAPI(t, nil)
	created := e.crearOrden(t, compra("5"))

	resp := e.do(t, http.MethodGet, "/api/orders/"+created.OrderID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.OrderResponse
	decode(t, resp, &got)

	assert.Equal(t, created.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, "purchase", got.Type)
	require.Len(t, got.Items, 1)
	assert.True(t, decimal.NewFromInt(50).Equal(got.Total))
	assert.Equal(t, "unpaid", got.PaymentStatus)
}

func TestOrders_ObtenerErrores(t *testing.T) {
	e := newAPI(t, nil)

	resp := e.do(t, http.MethodGet, "/api/orders/"+inexistente, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = e.do(t, http.MethodGet, "/api/orders/no-es-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestOrders_EliminarYRestaurar(t *testing.T) {
	e := newAPI(t, nil)
	created := e.crearOrden(t, compra("5"))

	resp := e.do(t, http.MethodDelete, "/api/orders/"+created.OrderID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, stock(e, bodegaCentral).IsZero())

	resp = e.do(t, http.MethodDelete, "/api/orders/"+created.OrderID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "una orden ya eliminada no se vuelve a eliminar")
	assert.Equal(t, "INVALID_STATE", errorCode(t, resp))

	resp = e.do(t, http.MethodPost, "/api/orders/"+created.OrderID+"/restore", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, decimal.NewFromInt(5).Equal(stock(e, bodegaCentral)))
	assert.Empty(t, e.store.CheckInvariant())
}

func TestOrders_EliminarPagadaDevuelve400(t *testing.T) {
	e := newAPI(t, nil)
	body := compra("5")
	body["payments"] = []map[string]interface{}{{"amount": "50", "method": "cash"}}
	created := e.crearOrden(t, body)

	resp := e.do(t, http.MethodDelete, "/api/orders/"+created.OrderID, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", errorCode(t, resp))
	assert.True(t, decimal.NewFromInt(5).Equal(stock(e, bodegaCentral)), "el stock no cambia")
	o, ok := e.store.Order(created.OrderID)
	require.True(t, ok)
	assert.False(t, o.IsDeleted)
}

func TestOrders_ActualizarSoloPagos(t *testing.T) {
	e := newAPI(t, nil)
	created := e.crearOrden(t, compra("5"))

	resp := e.do(t, http.MethodPut, "/api/orders/"+created.OrderID, map[string]interface{}{
		"payment_only": true,
		"payments":     []map[string]interface{}{{"amount": "20", "method": "cash"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.OrderResponse
	decode(t, resp, &got)

	assert.Equal(t, "partial", got.PaymentStatus)
	assert.True(t, decimal.NewFromInt(30).Equal(got.DueAmount))
}

func TestOrders_ActualizarSoloPagosSinPagos(t *testing.T) {
	e := newAPI(t, nil)
	created := e.crearOrden(t, compra("5"))

	resp := e.do(t, http.MethodPut, "/api/orders/"+created.OrderID, map[string]interface{}{"payment_only": true})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestOrders_ActualizarCompletaMueveStock(t *testing.T) {
	e := newAPI(t, nil)
	created := e.crearOrden(t, compra("5"))

	body := compra("4")
	body["warehouse_id"] = bodegaNorte
	resp := e.do(t, http.MethodPut, "/api/orders/"+created.OrderID, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.True(t, stock(e, bodegaCentral).IsZero())
	assert.True(t, decimal.NewFromInt(4).Equal(stock(e, bodegaNorte)))
	assert.Empty(t, e.store.CheckInvariant())
}

func TestOrders_ConvertirProforma(t *testing.T) {
	e := newAPI(t, nil)
	body := compra("2")
	body["type"] = "proforma"
	pf := e.crearOrden(t, body)
	assert.True(t, stock(e, bodegaCentral).IsZero(), "la proforma no mueve stock")

	resp := e.do(t, http.MethodPost, "/api/orders/"+pf.OrderID+"/convert-to-sale", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale dto.CreateOrderResponse
	decode(t, resp, &sale)
	assert.NotEqual(t, pf.OrderID, sale.OrderID)
	assert.True(t, decimal.NewFromInt(-2).Equal(stock(e, bodegaCentral)))

	resp = e.do(t, http.MethodPost, "/api/orders/"+pf.OrderID+"/convert-to-sale", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "una proforma se convierte una sola vez")
	resp.Body.Close()
}

func TestOrders_Listar(t *testing.T) {
	e := newAPI(t, nil)
	e.crearOrden(t, compra("5"))
	e.crearOrden(t, compra("1"))

	resp := e.do(t, http.MethodGet, "/api/orders?type=purchase&limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.OrderListResponse
	decode(t, resp, &got)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Page.Total)
	assert.Equal(t, 1, got.Page.Limit)

	resp = e.do(t, http.MethodGet, "/api/orders?transfer_direction=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStockAdjustments_Ciclo(t *testing.T) {
	e := newAPI(t, nil)

	resp := e.do(t, http.MethodPost, "/api/stock-adjustments", map[string]interface{}{
		"product_id": productoID, "warehouse_id": bodegaCentral, "type": "add", "quantity": "10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var adj dto.StockAdjustmentResponse
	decode(t, resp, &adj)
	assert.True(t, decimal.NewFromInt(10).Equal(stock(e, bodegaCentral)))

	resp = e.do(t, http.MethodPut, "/api/stock-adjustments/"+adj.ID, map[string]interface{}{"type": "subtract", "quantity": "3"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, decimal.NewFromInt(-3).Equal(stock(e, bodegaCentral)))

	resp = e.do(t, http.MethodGet, "/api/stock-adjustments/"+adj.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.StockAdjustmentResponse
	decode(t, resp, &got)
	assert.Equal(t, "subtract", got.Type)

	resp = e.do(t, http.MethodGet, "/api/stock-adjustments", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.StockAdjustmentListResponse
	decode(t, resp, &list)
	assert.Len(t, list.Items, 1)

	resp = e.do(t, http.MethodDelete, "/api/stock-adjustments/"+adj.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, stock(e, bodegaCentral).IsZero())
	assert.Empty(t, e.store.CheckInvariant())

	resp = e.do(t, http.MethodGet, "/api/stock-adjustments/"+adj.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStockAdjustments_TipoInvalido(t *testing.T) {
	e := newAPI(t, nil)

	resp := e.do(t, http.MethodPost, "/api/stock-adjustments", map[string]interface{}{
		"product_id": productoID, "warehouse_id": bodegaCentral, "type": "multiply", "quantity": "10",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestStockAdjustments_VendedorNoAjusta(t *testing.T) {
	e := newAPI(t, nil)
	e.token = tokenForRole(t, "vendedor")

	resp := e.do(t, http.MethodPost, "/api/stock-adjustments", map[string]interface{}{
		"product_id": productoID, "warehouse_id": bodegaCentral, "type": "add", "quantity": "10",
	})

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
	assert.True(t, stock(e, bodegaCentral).IsZero())
}

func TestStock_HistorialYNiveles(t *testing.T) {
	e := newAPI(t, nil)
	created := e.crearOrden(t, compra("5"))
	e.crearOrden(t, map[string]interface{}{
		"type": "stock_transfer", "warehouse_id": bodegaNorte, "source_warehouse_id": bodegaCentral,
		"items": []map[string]interface{}{{"product_id": productoID, "quantity": "2"}},
	})

	resp := e.do(t, http.MethodGet, "/api/stock-history?product_id="+productoID+"&warehouse_id="+bodegaCentral, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist dto.StockHistoryResponse
	decode(t, resp, &hist)
	require.Len(t, hist.Items, 2)
	assert.Equal(t, "transfer_out", hist.Items[0].Kind, "más reciente primero")
	assert.Equal(t, created.OrderID, hist.Items[1].ReferenceID)

	resp = e.do(t, http.MethodGet, "/api/stock?product_id="+productoID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var levels dto.StockListResponse
	decode(t, resp, &levels)
	require.Len(t, levels.Items, 2)
	total := decimal.Zero
	for _, l := range levels.Items {
		total = total.Add(l.Quantity)
	}
	assert.True(t, decimal.NewFromInt(5).Equal(total), "el traslado conserva el total")
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotency-Key
// ──────────────────────────────────────────────────────────────────────────────

type memIdempotency struct {
	mu     sync.Mutex
	saved  map[string]ports.StoredResponse
	locked map[string]bool
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{saved: map[string]ports.StoredResponse{}, locked: map[string]bool{}}
}

func (m *memIdempotency) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.saved[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memIdempotency) Save(_ context.Context, key string, resp ports.StoredResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[key] = resp
	return nil
}

func (m *memIdempotency) Lock(_ context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked[key] {
		return nil, ports.ErrRequestInFlight
	}
	m.locked[key] = true
	return func() {
		m.mu.Lock()
		delete(m.locked, key)
		m.mu.Unlock()
	}, nil
}

func TestIdempotency_RepiteRespuestaSinDuplicar(t *testing.T) {
	idem := newMemIdempotency()
	e := newAPI(t, idem)

	first := e.do(t, http.MethodPost, "/api/orders", compra("5"), apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, first.StatusCode)
	var a dto.CreateOrderResponse
	decode(t, first, &a)

	second := e.do(t, http.MethodPost, "/api/orders", compra("5"), apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get(apphttp.HeaderReplayed))
	var b dto.CreateOrderResponse
	decode(t, second, &b)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, e.store.OrderCount())
	assert.True(t, decimal.NewFromInt(5).Equal(stock(e, bodegaCentral)))
}

func TestIdempotency_ClaveEnProcesoDevuelve409(t *testing.T) {
	idem := newMemIdempotency()
	e := newAPI(t, idem)
	idem.locked[testCompanyID+":POST:/api/orders:k-2"] = true

	resp := e.do(t, http.MethodPost, "/api/orders", compra("5"), apphttp.HeaderIdempotencyKey, "k-2")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, resp))
	assert.Equal(t, 0, e.store.OrderCount())
}

func TestIdempotency_NoGuardaErrores(t *testing.T) {
	idem := newMemIdempotency()
	e := newAPI(t, idem)
	body := compra("5")
	body["items"] = []interface{}{}

	resp := e.do(t, http.MethodPost, "/api/orders", body, apphttp.HeaderIdempotencyKey, "k-3")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = e.do(t, http.MethodPost, "/api/orders", compra("5"), apphttp.HeaderIdempotencyKey, "k-3")
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "un 400 no bloquea la clave")
	resp.Body.Close()
	assert.Empty(t, idem.locked)
}
