package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/invoice"
)

var fecha = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func TestPrefix(t *testing.T) {
	conBodega := invoice.Settings{WarehousePrefix: "BOG", CompanyPrefix: "ACME"}
	conEmpresa := invoice.Settings{CompanyPrefix: "ACME"}
	vacio := invoice.Settings{}

	assert.Equal(t, "PUR", invoice.Prefix(entity.OrderTypePurchase, conBodega))
	assert.Equal(t, "PRT", invoice.Prefix(entity.OrderTypePurchaseReturn, conBodega))
	assert.Equal(t, "TRF", invoice.Prefix(entity.OrderTypeStockTransfer, conBodega))

	assert.Equal(t, "BOG", invoice.Prefix(entity.OrderTypeSale, conBodega))
	assert.Equal(t, "ACME", invoice.Prefix(entity.OrderTypeSale, conEmpresa))
	assert.Equal(t, "INV", invoice.Prefix(entity.OrderTypeSale, vacio))
	assert.Equal(t, "FAC", invoice.Prefix(entity.OrderTypeSale, invoice.Settings{DefaultPrefix: "FAC"}))

	assert.Equal(t, "RACME", invoice.Prefix(entity.OrderTypeSaleReturn, conEmpresa))
	assert.Equal(t, "PFBOG", invoice.Prefix(entity.OrderTypeProforma, conBodega))
	assert.Equal(t, "PFINV", invoice.Prefix(entity.OrderTypeProforma, vacio))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "INV032026-0001", invoice.Format("INV", fecha, 1))
	assert.Equal(t, "PUR032026-0123", invoice.Format("PUR", fecha, 123))
	assert.Equal(t, "PUR032026-12345", invoice.Format("PUR", fecha, 12345))
}

func TestParseSequence(t *testing.T) {
	n, ok := invoice.ParseSequence("INV032026-0042", "INV", 2026)
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	// Otro mes del mismo año pertenece a la misma secuencia anual.
	n, ok = invoice.ParseSequence("INV112026-0007", "INV", 2026)
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	_, ok = invoice.ParseSequence("INV032025-0042", "INV", 2026)
	assert.False(t, ok, "otro año")
	_, ok = invoice.ParseSequence("RINV032026-0042", "INV", 2026)
	assert.False(t, ok, "otro prefijo")
	_, ok = invoice.ParseSequence("INVX032026-0042", "INV", 2026)
	assert.False(t, ok)
}

// El número de respaldo no debe contaminar la secuencia.
func TestFallback_NoCoincideConSecuencia(t *testing.T) {
	num := invoice.Fallback("INV", fecha, time.Unix(1700000000, 5))
	assert.Equal(t, "INV032026-T1700000000000000005", num)
	_, ok := invoice.ParseSequence(num, "INV", 2026)
	assert.False(t, ok)
}

func TestSequencePattern_EscapaPrefijo(t *testing.T) {
	_, ok := invoice.ParseSequence("A.B032026-0001", "A.B", 2026)
	assert.True(t, ok)
	_, ok = invoice.ParseSequence("AXB032026-0001", "A.B", 2026)
	assert.False(t, ok)
}
