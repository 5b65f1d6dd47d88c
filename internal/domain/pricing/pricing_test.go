package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/pricing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeItem(t *testing.T) {
	it := entity.OrderItem{Quantity: d("3"), UnitPrice: d("10"), DiscountRate: d("10"), TaxRate: d("19")}
	pricing.ComputeItem(&it)

	assert.True(t, d("3").Equal(it.DiscountAmount), "descuento %s", it.DiscountAmount)
	assert.True(t, d("5.13").Equal(it.TaxAmount), "impuesto %s", it.TaxAmount)
	assert.True(t, d("32.13").Equal(it.Subtotal), "subtotal %s", it.Subtotal)
}

func TestComputeTotals(t *testing.T) {
	o := entity.Order{
		DiscountAmount: d("10"),
		ShippingAmount: d("5"),
		TaxRate:        d("10"),
		Items: []entity.OrderItem{
			{Subtotal: d("60")},
			{Subtotal: d("50")},
		},
	}
	pricing.ComputeTotals(&o)

	assert.True(t, d("110").Equal(o.Subtotal))
	assert.True(t, d("10").Equal(o.TaxAmount))
	assert.True(t, d("115").Equal(o.Total))
}

func TestPaymentStatus(t *testing.T) {
	total := d("100")
	assert.Equal(t, entity.PaymentStatusUnpaid, pricing.PaymentStatus(decimal.Zero, total))
	assert.Equal(t, entity.PaymentStatusPartial, pricing.PaymentStatus(d("40"), total))
	assert.Equal(t, entity.PaymentStatusPartial, pricing.PaymentStatus(d("99.98"), total))
	assert.Equal(t, entity.PaymentStatusPaid, pricing.PaymentStatus(d("99.99"), total), "dentro de la tolerancia")
	assert.Equal(t, entity.PaymentStatusPaid, pricing.PaymentStatus(d("100"), total))
	assert.Equal(t, entity.PaymentStatusPaid, pricing.PaymentStatus(d("150"), total))
}

func TestApplyPayments(t *testing.T) {
	o := entity.Order{Total: d("100")}

	pricing.ApplyPayments(&o, d("30"))
	assert.True(t, d("70").Equal(o.DueAmount))
	assert.Equal(t, entity.PaymentStatusPartial, o.PaymentStatus)
	assert.True(t, o.IsDeletable)

	pricing.ApplyPayments(&o, d("120"))
	assert.True(t, o.DueAmount.IsZero(), "due nunca es negativo")
	assert.Equal(t, entity.PaymentStatusPaid, o.PaymentStatus)
	assert.False(t, o.IsDeletable, "una orden pagada no se puede eliminar")
}

func TestApplyPayments_ConvertidaNoEliminable(t *testing.T) {
	o := entity.Order{Total: d("100"), IsConverted: true}
	pricing.ApplyPayments(&o, decimal.Zero)
	assert.Equal(t, entity.PaymentStatusUnpaid, o.PaymentStatus)
	assert.False(t, o.IsDeletable)
}
