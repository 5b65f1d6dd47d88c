package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// Dirección de traslado para filtrar listados.
const (
	TransferIn  = "in"
	TransferOut = "out"
)

// OrderFilter filtros del listado de órdenes.
type OrderFilter struct {
	CompanyID         string
	WarehouseID       string
	Type              entity.OrderType
	From, To          *time.Time
	PaymentStatus     entity.PaymentStatus
	Status            entity.OrderStatus
	ProductID         string
	TransferDirection string // TransferIn, TransferOut o vacío
	IncludeDeleted    bool
	Limit             int
	Offset            int
}

// OrderRepository define el puerto de persistencia de cabeceras de orden.
// Los métodos de lectura devuelven (nil, nil) si la orden no existe en la empresa.
type OrderRepository interface {
	// Create inserta la cabecera. Devuelve domain.ErrDuplicateInvoice si el número ya existe en la
	// empresa, sin invalidar la transacción en curso.
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Order, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error
	UpdatePaymentSummary(ctx context.Context, o *entity.Order) error
	SetDeleted(ctx context.Context, id string, deleted bool, userID string) error
	MarkConverted(ctx context.Context, id, convertedOrderID, userID string) error
	InvoiceNumberExists(ctx context.Context, companyID, number string) (bool, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int, error)
}

// OrderItemRepository define el puerto de las líneas de orden.
type OrderItemRepository interface {
	Create(ctx context.Context, item *entity.OrderItem) error
	ListByOrder(ctx context.Context, orderID string) ([]entity.OrderItem, error)
	DeleteByOrder(ctx context.Context, orderID string) error
}

// PaymentRepository define el puerto de pagos y su aplicación a órdenes.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	Apply(ctx context.Context, op *entity.OrderPayment) error
	ListByOrder(ctx context.Context, orderID string) ([]entity.OrderPayment, error)
	// DeleteByOrder elimina las aplicaciones de la orden y los pagos que quedan sin aplicar.
	DeleteByOrder(ctx context.Context, orderID string) error
}

// InvoiceSequenceRepository contador atómico de numeración por (empresa, prefijo, año).
type InvoiceSequenceRepository interface {
	// Next incrementa y devuelve el contador. Si no existe lo siembra con la mayor secuencia
	// encontrada en las órdenes de la empresa que coinciden con pattern.
	Next(ctx context.Context, companyID, prefix string, year int, pattern string) (int64, error)
}
