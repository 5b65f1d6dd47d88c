package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
// Si InvoicePrefix no está vacío tiene prioridad sobre el de la empresa en las ventas.
type Warehouse struct {
	ID            string
	CompanyID     string
	Name          string
	Address       string
	InvoicePrefix string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
