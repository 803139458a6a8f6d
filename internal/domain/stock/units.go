// Package stock implementa el motor de inventario multi-bodega: conversión de
// unidades, resumen de disponibilidad y asignación FIFO entre bodegas.
// Todas las funciones son puras (sin I/O, sin estado); los datos de producto y
// bodega entran por referencia desde los repositorios y el paquete nunca los
// persiste.
package stock

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
)

// Conversion describe cómo se resuelve un código de unidad para un producto.
type Conversion struct {
	ResolvedUnit string
	Factor       decimal.Decimal // factor hacia la unidad mínima
}

// DescribeConversion resuelve el factor de conversión de unitCode hacia la
// unidad mínima del producto. Código vacío o igual a la unidad mínima → factor 1.
// Un código desconocido también resuelve a factor 1 (se trata como unidad
// mínima): es un fallback permisivo para unidades digitadas por el usuario,
// no un error. Comportamiento heredado del POS original.
func DescribeConversion(p *entity.Product, unitCode string) Conversion {
	if p == nil {
		return Conversion{ResolvedUnit: "", Factor: decimal.NewFromInt(1)}
	}
	code := strings.TrimSpace(unitCode)
	if code == "" || strings.EqualFold(code, p.MinimalUnit) {
		return Conversion{ResolvedUnit: p.MinimalUnit, Factor: decimal.NewFromInt(1)}
	}
	for _, uf := range p.AdditionalUnits {
		if strings.EqualFold(uf.UnitCode, code) {
			return Conversion{ResolvedUnit: uf.UnitCode, Factor: uf.Factor}
		}
	}
	return Conversion{ResolvedUnit: p.MinimalUnit, Factor: decimal.NewFromInt(1)}
}

// ToMinimalUnits convierte una cantidad expresada en unitCode a unidad mínima.
// Con factor cero el resultado es cero (sin convertibilidad).
func ToMinimalUnits(p *entity.Product, qty decimal.Decimal, unitCode string) decimal.Decimal {
	conv := DescribeConversion(p, unitCode)
	return qty.Mul(conv.Factor)
}

// FromMinimalUnits convierte una cantidad en unidad mínima hacia unitCode.
// Devuelve ErrInvalidConversion si el factor resuelto es cero: nunca se usa
// cero como divisor.
func FromMinimalUnits(p *entity.Product, qty decimal.Decimal, unitCode string) (decimal.Decimal, error) {
	conv := DescribeConversion(p, unitCode)
	if conv.Factor.IsZero() {
		return decimal.Zero, domain.ErrInvalidConversion
	}
	return qty.Div(conv.Factor), nil
}
