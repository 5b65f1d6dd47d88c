package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/invoice"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

// InvoiceNumberer asigna números de factura únicos dentro de la transacción de la orden.
//
// El contador por (empresa, prefijo, año) se incrementa atómicamente en la misma transacción,
// así que un rollback de la orden también devuelve el número. La unicidad la garantiza el índice
// único (company_id, invoice_number): si el insert choca se pide otro candidato.
type InvoiceNumberer struct {
	maxRetries    int
	defaultPrefix string
	log           *logger.Logger
	now           func() time.Time
}

// NewInvoiceNumberer construye el generador. maxRetries acota tanto los sondeos como los reintentos.
func NewInvoiceNumberer(maxRetries int, defaultPrefix string, log *logger.Logger) *InvoiceNumberer {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &InvoiceNumberer{maxRetries: maxRetries, defaultPrefix: defaultPrefix, log: log.Component("invoice_numbers"), now: time.Now}
}

// Prefix resuelve el prefijo de la orden según tipo, bodega y empresa.
func (g *InvoiceNumberer) Prefix(ctx context.Context, repos repository.Repositories, o *entity.Order) (string, error) {
	company, err := repos.Companies.GetByID(ctx, o.CompanyID)
	if err != nil {
		return "", err
	}
	if company == nil {
		return "", fmt.Errorf("%w: empresa %s", domain.ErrNotFound, o.CompanyID)
	}
	settings := invoice.Settings{CompanyPrefix: company.InvoicePrefix, DefaultPrefix: g.defaultPrefix}
	warehouse, err := repos.Warehouses.GetByID(ctx, o.WarehouseID)
	if err != nil {
		return "", err
	}
	if warehouse != nil {
		settings.WarehousePrefix = warehouse.InvoicePrefix
	}
	return invoice.Prefix(o.Type, settings), nil
}

// Next devuelve el siguiente número libre del alcance. Si tras maxRetries sondeos todos los
// candidatos existen, devuelve un número con sufijo de tiempo.
func (g *InvoiceNumberer) Next(ctx context.Context, repos repository.Repositories, companyID, prefix string, date time.Time) (string, error) {
	pattern := invoice.SequencePattern(prefix, date.Year())
	for i := 0; i < g.maxRetries; i++ {
		seq, err := repos.Sequences.Next(ctx, companyID, prefix, date.Year(), pattern)
		if err != nil {
			return "", fmt.Errorf("secuencia de factura: %w", err)
		}
		number := invoice.Format(prefix, date, seq)
		exists, err := repos.Orders.InvoiceNumberExists(ctx, companyID, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return invoice.Fallback(prefix, date, g.now()), nil
}

// InsertOrder numera e inserta la cabecera de la orden, reintentando ante número duplicado.
func (g *InvoiceNumberer) InsertOrder(ctx context.Context, repos repository.Repositories, o *entity.Order) error {
	prefix, err := g.Prefix(ctx, repos, o)
	if err != nil {
		return err
	}
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		number, err := g.Next(ctx, repos, o.CompanyID, prefix, o.OrderDate)
		if err != nil {
			return err
		}
		o.InvoiceNumber = number
		err = repos.Orders.Create(ctx, o)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateInvoice) {
			return err
		}
		g.log.Warn().
			Str("company_id", o.CompanyID).
			Str("invoice_number", number).
			Int("attempt", attempt).
			Msg("número de factura en uso, reintentando")
	}

	o.InvoiceNumber = invoice.Fallback(prefix, o.OrderDate, g.now())
	if err := repos.Orders.Create(ctx, o); err != nil {
		if errors.Is(err, domain.ErrDuplicateInvoice) {
			return fmt.Errorf("%w: no se pudo asignar número de factura", domain.ErrConflict)
		}
		return err
	}
	return nil
}
