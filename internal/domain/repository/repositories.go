package repository

// Repositories agrupa los puertos atados a una misma transacción (o al pool, fuera de ella).
type Repositories struct {
	Orders      OrderRepository
	OrderItems  OrderItemRepository
	Payments    PaymentRepository
	Stock       StockRepository
	Movements   StockMovementRepository
	Adjustments StockAdjustmentRepository
	Sequences   InvoiceSequenceRepository
	Companies   CompanyRepository
	Warehouses  WarehouseRepository
}
