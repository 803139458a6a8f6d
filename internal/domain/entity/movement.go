package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementKindENTRY              = "ENTRY"               // entrada (compra, recepción)
	MovementKindEXIT               = "EXIT"                // salida (venta)
	MovementKindPositiveAdjustment = "POSITIVE_ADJUSTMENT" // ajuste manual a favor
	MovementKindNegativeAdjustment = "NEGATIVE_ADJUSTMENT" // ajuste manual en contra
	MovementKindRETURN             = "RETURN"              // devolución de venta
)

// Motivos de movimiento usados por los callers (venta, ajuste, devolución).
const (
	ReasonSale             = "venta"
	ReasonManualAdjustment = "ajuste_manual"
	ReasonSaleReturn       = "devolucion_venta"
	ReasonPurchaseEntry    = "entrada_compra"
	ReasonInitialLoad      = "carga_inicial"
)

// MovementKindIsValid verifica que el tipo sea uno de los soportados.
func MovementKindIsValid(kind string) bool {
	switch kind {
	case MovementKindENTRY, MovementKindEXIT, MovementKindPositiveAdjustment,
		MovementKindNegativeAdjustment, MovementKindRETURN:
		return true
	}
	return false
}

// MovementKindIsAdditive indica si el tipo suma stock (ENTRY, POSITIVE_ADJUSTMENT,
// RETURN) o lo resta (EXIT, NEGATIVE_ADJUSTMENT).
func MovementKindIsAdditive(kind string) bool {
	switch kind {
	case MovementKindENTRY, MovementKindPositiveAdjustment, MovementKindRETURN:
		return true
	}
	return false
}

// MovementRecord es una entrada inmutable del kardex (libro de movimientos).
// Captura el antes/después de la cantidad en la bodega afectada junto con una
// instantánea de producto, bodega y establecimiento al momento del movimiento.
// Nunca se actualiza ni se elimina: es la única pista de auditoría del stock.
type MovementRecord struct {
	ID          string
	ProductID   string
	ProductSKU  string
	ProductName string

	Kind           string          // ver constantes MovementKind*
	ReasonCode     string          // ver constantes Reason*
	Quantity       decimal.Decimal // en unidad mínima, siempre positiva
	QuantityBefore decimal.Decimal // stock en la bodega antes del movimiento
	QuantityAfter  decimal.Decimal // stock en la bodega después del movimiento
	Note           string
	ReferenceID    string // documento origen (venta, ajuste, sesión de caja)

	WarehouseID   string
	WarehouseCode string
	WarehouseName string

	EstablishmentID   string
	EstablishmentCode string
	EstablishmentName string

	CreatedBy string // UserID del actor
	CreatedAt time.Time
}
