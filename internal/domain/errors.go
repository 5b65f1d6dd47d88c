package domain

import "errors"

// Entrada y datos de referencia.
var (
	ErrInvalidInput     = errors.New("datos inválidos")
	ErrNotFound         = errors.New("no encontrado")
	ErrDuplicate        = errors.New("registro duplicado")
	ErrDuplicateInvoice = errors.New("número de factura en uso")
)

// Estado de órdenes y stock. ErrInsufficientStock solo aparece con stock negativo deshabilitado.
var (
	ErrInvalidState      = errors.New("la orden no admite esta operación")
	ErrConflict          = errors.New("conflicto con otra operación")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// Acceso.
var (
	ErrUnauthorized = errors.New("no autenticado")
	ErrForbidden    = errors.New("sin permiso")
)
