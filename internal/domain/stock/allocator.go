package stock

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
)

// Allocation asigna una porción de la cantidad requerida a una bodega.
// Las cantidades están en unidad mínima.
type Allocation struct {
	WarehouseID string
	Quantity    decimal.Decimal
}

// AllocationPlan es el resultado de distribuir una cantidad requerida entre
// bodegas. Se calcula completo antes de mutar nada: si FullyCovered es falso
// el caller decide entre rechazar la operación o forzar el faltante sobre una
// bodega designada (stock negativo, bajo bandera explícita).
type AllocationPlan struct {
	Allocations  []Allocation
	Remaining    decimal.Decimal // faltante tras recorrer todas las bodegas
	FullyCovered bool
}

// TotalAllocated suma las cantidades asignadas del plan.
func (p AllocationPlan) TotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Quantity)
	}
	return total
}

// OrderForSaleFIFO devuelve las bodegas activas del establecimiento en el
// orden determinista de agotamiento para ventas: la bodega principal primero,
// luego el resto según comparador estable (código, nombre, ID; sin distinguir
// mayúsculas). Mismo input → mismo orden, siempre.
func OrderForSaleFIFO(warehouses []*entity.Warehouse, establishmentID string) []*entity.Warehouse {
	var candidates []*entity.Warehouse
	for _, wh := range warehouses {
		if wh == nil || !wh.IsActive {
			continue
		}
		if establishmentID != "" && wh.EstablishmentID != establishmentID {
			continue
		}
		candidates = append(candidates, wh)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}
		return stableWarehouseLess(a, b)
	})
	return candidates
}

// stableWarehouseLess comparador estable de bodegas: código, luego nombre,
// luego ID, todos case-insensitive. Desempata el orden FIFO entre bodegas no
// principales (y entre principales, si hubiera más de una marcada).
func stableWarehouseLess(a, b *entity.Warehouse) bool {
	if c := strings.Compare(strings.ToLower(a.Code), strings.ToLower(b.Code)); c != 0 {
		return c < 0
	}
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c < 0
	}
	return strings.Compare(strings.ToLower(a.ID), strings.ToLower(b.ID)) < 0
}

// Allocate distribuye required (unidad mínima) entre las bodegas ya ordenadas,
// de forma voraz: para cada bodega toma min(remaining, disponible) y se detiene
// en cuanto remaining llega a cero. Nunca asigna más que required ni más que el
// disponible de cada bodega: no se inventa stock.
func Allocate(p *entity.Product, orderedWarehouses []*entity.Warehouse, required decimal.Decimal, respectReservations bool) AllocationPlan {
	plan := AllocationPlan{Remaining: required}
	if p == nil || required.LessThanOrEqual(decimal.Zero) {
		plan.FullyCovered = plan.Remaining.LessThanOrEqual(decimal.Zero)
		plan.Remaining = decimal.Max(decimal.Zero, plan.Remaining)
		return plan
	}
	for _, wh := range orderedWarehouses {
		if plan.Remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if wh == nil {
			continue
		}
		available := availableOf(p.WarehouseStockFor(wh.ID), respectReservations)
		take := decimal.Min(plan.Remaining, available)
		if take.GreaterThan(decimal.Zero) {
			plan.Allocations = append(plan.Allocations, Allocation{WarehouseID: wh.ID, Quantity: take})
			plan.Remaining = plan.Remaining.Sub(take)
		}
	}
	plan.FullyCovered = plan.Remaining.LessThanOrEqual(decimal.Zero)
	return plan
}
