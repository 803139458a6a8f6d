package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrUnresolvedWarehouse = errors.New("no se pudo resolver una bodega activa para la operación")
	ErrInvalidConversion   = errors.New("factor de conversión de unidad inválido (cero o ausente)")
	ErrLedgerAppend        = errors.New("el movimiento no pudo registrarse en el kardex")
)
