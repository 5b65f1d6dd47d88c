package orders

import (
	"fmt"
	"time"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	out := &dto.OrderResponse{
		ID:                o.ID,
		CompanyID:         o.CompanyID,
		Type:              string(o.Type),
		InvoiceNumber:     o.InvoiceNumber,
		OrderDate:         o.OrderDate.Format(dateLayout),
		WarehouseID:       o.WarehouseID,
		SourceWarehouseID: o.SourceWarehouseID,
		CounterpartyID:    o.CounterpartyID,
		Subtotal:          o.Subtotal,
		DiscountAmount:    o.DiscountAmount,
		ShippingAmount:    o.ShippingAmount,
		TaxAmount:         o.TaxAmount,
		Total:             o.Total,
		PaidAmount:        o.PaidAmount,
		DueAmount:         o.DueAmount,
		PaymentStatus:     string(o.PaymentStatus),
		Status:            string(o.Status),
		Notes:             o.Notes,
		IsDeleted:         o.IsDeleted,
		IsDeletable:       o.IsDeletable,
		ParentOrderID:     o.ParentOrderID,
		IsConverted:       o.IsConverted,
		ConvertedOrderID:  o.ConvertedOrderID,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			UnitID:         it.UnitID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			TaxAmount:      it.TaxAmount,
			Subtotal:       it.Subtotal,
		})
	}
	for _, p := range o.Payments {
		out.Payments = append(out.Payments, dto.OrderPaymentResponse{
			ID:        p.ID,
			PaymentID: p.PaymentID,
			Amount:    p.Amount,
			Method:    p.Method,
			Reference: p.Reference,
			PaidAt:    p.PaidAt.Format(dateLayout),
		})
	}
	return out
}

func toOrderFilter(companyID string, in dto.OrderListRequest) (repository.OrderFilter, error) {
	in.DefaultPage()
	f := repository.OrderFilter{
		CompanyID:      companyID,
		WarehouseID:    in.WarehouseID,
		ProductID:      in.ProductID,
		IncludeDeleted: in.IncludeDeleted,
		Limit:          in.Limit,
		Offset:         in.Offset,
	}
	if in.Type != "" {
		t, ok := entity.ParseOrderType(in.Type)
		if !ok {
			return f, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, in.Type)
		}
		f.Type = t
	}
	if in.Status != "" {
		s, ok := entity.ParseOrderStatus(in.Status)
		if !ok {
			return f, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
		}
		f.Status = s
	}
	switch entity.PaymentStatus(in.PaymentStatus) {
	case "":
	case entity.PaymentStatusUnpaid, entity.PaymentStatusPartial, entity.PaymentStatusPaid:
		f.PaymentStatus = entity.PaymentStatus(in.PaymentStatus)
	default:
		return f, fmt.Errorf("%w: payment_status %q", domain.ErrInvalidInput, in.PaymentStatus)
	}
	switch in.TransferDirection {
	case "":
	case repository.TransferIn, repository.TransferOut:
		if in.WarehouseID == "" {
			return f, fmt.Errorf("%w: transfer_direction requiere warehouse_id", domain.ErrInvalidInput)
		}
		f.TransferDirection = in.TransferDirection
	default:
		return f, fmt.Errorf("%w: transfer_direction %q", domain.ErrInvalidInput, in.TransferDirection)
	}
	if in.From != "" {
		d, err := time.Parse(dateLayout, in.From)
		if err != nil {
			return f, fmt.Errorf("%w: from", domain.ErrInvalidInput)
		}
		f.From = &d
	}
	if in.To != "" {
		d, err := time.Parse(dateLayout, in.To)
		if err != nil {
			return f, fmt.Errorf("%w: to", domain.ErrInvalidInput)
		}
		// hasta el final del día
		end := d.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	return f, nil
}
