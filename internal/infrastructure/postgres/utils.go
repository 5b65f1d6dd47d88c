package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ordenes-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica si un error es una violación de clave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isCheckViolation verifica si un error es una violación de CHECK (23514).
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// isInvalidText detecta valores que PostgreSQL no puede convertir al tipo de la columna (22P02), ej. un uuid mal formado.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// mapWriteError traduce errores de constraints a errores de dominio; el resto se envuelve con op.
func mapWriteError(op string, err error) error {
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s (%s)", domain.ErrNotFound, op, constraintName(err))
	case isCheckViolation(err):
		return fmt.Errorf("%w: %s (%s)", domain.ErrInvalidInput, op, constraintName(err))
	case isInvalidText(err):
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, op)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s (%s)", domain.ErrDuplicate, op, constraintName(err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// nullIfEmpty convierte "" en NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// filter arma cláusulas WHERE con placeholders $n consecutivos.
type filter struct {
	conds []string
	args  []any
}

// add agrega una condición; cada %d de cond se reemplaza por el placeholder del valor.
func (f *filter) add(cond string, v any) {
	f.args = append(f.args, v)
	n := len(f.args)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "%d", fmt.Sprint(n)))
}

// raw agrega una condición sin argumentos.
func (f *filter) raw(cond string) {
	f.conds = append(f.conds, cond)
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// page agrega LIMIT/OFFSET y devuelve la cláusula con los argumentos completos.
func (f *filter) page(limit, offset int) (string, []any) {
	n := len(f.args)
	args := append(append([]any(nil), f.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}
