package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.InvoiceSequenceRepository = (*InvoiceSequenceRepo)(nil)

// InvoiceSequenceRepo contador de numeración por (empresa, prefijo, año).
// El incremento ocurre en la transacción de la orden: la fila queda bloqueada hasta el commit,
// así que dos órdenes concurrentes del mismo alcance nunca reciben el mismo valor.
type InvoiceSequenceRepo struct {
	q Querier
}

// NewInvoiceSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceSequenceRepository(q Querier) *InvoiceSequenceRepo {
	return &InvoiceSequenceRepo{q: q}
}

// Next incrementa el contador y devuelve el nuevo valor. En el primer uso lo siembra con la mayor
// secuencia de las órdenes existentes que coinciden con pattern (regex con la secuencia en el grupo 1).
func (r *InvoiceSequenceRepo) Next(ctx context.Context, companyID, prefix string, year int, pattern string) (int64, error) {
	var next int64
	err := r.q.QueryRow(ctx, `
		UPDATE invoice_sequences SET last_value = last_value + 1, updated_at = now()
		WHERE company_id = $1 AND prefix = $2 AND year = $3
		RETURNING last_value`,
		companyID, prefix, year,
	).Scan(&next)
	if err == nil {
		return next, nil
	}
	if !isNoRows(err) {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}

	// Si otra transacción sembró la fila en paralelo, el ON CONFLICT espera su commit e incrementa.
	err = r.q.QueryRow(ctx, `
		INSERT INTO invoice_sequences (company_id, prefix, year, last_value, updated_at)
		SELECT $1::uuid, $2::text, $3::int,
			COALESCE(MAX((regexp_match(invoice_number, $4::text))[1]::bigint), 0) + 1, now()
		FROM orders
		WHERE company_id = $1::uuid AND invoice_number ~ $4::text
		ON CONFLICT (company_id, prefix, year)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1, updated_at = now()
		RETURNING last_value`,
		companyID, prefix, year, pattern,
	).Scan(&next)
	if err != nil {
		return 0, mapWriteError("seed invoice sequence", err)
	}
	return next, nil
}
