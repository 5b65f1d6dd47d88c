package entity

import "time"

// CompanyStatusActive es el único estado que puede operar órdenes y stock.
const CompanyStatusActive = "active"

// Company representa una organización/tenant del sistema.
type Company struct {
	ID            string
	Name          string
	InvoicePrefix string // prefijo de facturas de venta; vacío = prefijo por defecto
	Status        string // active, suspended, inactive
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive indica si la empresa puede registrar operaciones.
func (c *Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}
