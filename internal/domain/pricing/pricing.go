// Package pricing calcula importes de líneas y órdenes y deriva el estado de pago.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// Epsilon tolerancia para comparar importes pagados contra el total.
var Epsilon = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// ComputeItem calcula descuento, impuesto y subtotal de la línea.
// Si DiscountAmount viene en cero se usa DiscountRate sobre el bruto.
func ComputeItem(it *entity.OrderItem) {
	gross := it.Quantity.Mul(it.UnitPrice)
	if it.DiscountAmount.IsZero() && !it.DiscountRate.IsZero() {
		it.DiscountAmount = gross.Mul(it.DiscountRate).Div(hundred)
	}
	it.DiscountAmount = it.DiscountAmount.Round(2)
	net := gross.Sub(it.DiscountAmount)
	it.TaxAmount = net.Mul(it.TaxRate).Div(hundred).Round(2)
	it.Subtotal = net.Add(it.TaxAmount).Round(2)
}

// ComputeTotals recalcula subtotal, impuesto y total de la orden a partir de sus líneas.
// total = (subtotal - descuento) + impuesto + envío; el impuesto se aplica sobre (subtotal - descuento).
func ComputeTotals(o *entity.Order) {
	subtotal := decimal.Zero
	for i := range o.Items {
		subtotal = subtotal.Add(o.Items[i].Subtotal)
	}
	o.Subtotal = subtotal.Round(2)
	taxable := o.Subtotal.Sub(o.DiscountAmount)
	o.TaxAmount = taxable.Mul(o.TaxRate).Div(hundred).Round(2)
	o.Total = taxable.Add(o.TaxAmount).Add(o.ShippingAmount).Round(2)
}

// PaymentStatus deriva el estado de pago: sin pagos → unpaid; pagado ≥ total-ε → paid; si no, partial.
func PaymentStatus(paid, total decimal.Decimal) entity.PaymentStatus {
	if paid.LessThan(Epsilon) {
		return entity.PaymentStatusUnpaid
	}
	if paid.GreaterThanOrEqual(total.Sub(Epsilon)) {
		return entity.PaymentStatusPaid
	}
	return entity.PaymentStatusPartial
}

// ApplyPayments fija paid, due, estado de pago y el flag de borrado a partir de lo pagado.
// Una orden pagada o ya convertida deja de ser eliminable.
func ApplyPayments(o *entity.Order, paid decimal.Decimal) {
	o.PaidAmount = paid.Round(2)
	due := o.Total.Sub(o.PaidAmount)
	if due.IsNegative() {
		due = decimal.Zero
	}
	o.DueAmount = due
	o.PaymentStatus = PaymentStatus(o.PaidAmount, o.Total)
	o.IsDeletable = o.PaymentStatus != entity.PaymentStatusPaid && !o.IsConverted
}
