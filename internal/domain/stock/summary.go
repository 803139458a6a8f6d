package stock

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
)

// WarehouseSummary es el detalle de stock de un producto en una bodega,
// dentro de un StockSummary. IsFallback marca el registro sintético generado
// para productos sin desglose por bodega (datos legados).
type WarehouseSummary struct {
	WarehouseID   string
	WarehouseCode string
	WarehouseName string
	Stock         decimal.Decimal
	Reserved      decimal.Decimal
	Available     decimal.Decimal
	IsFallback    bool
}

// StockSummary agrega el stock de un producto a través de sus bodegas.
// Se calcula bajo demanda y nunca se cachea entre mutaciones.
type StockSummary struct {
	MinimalUnit    string
	TotalStock     decimal.Decimal
	TotalReserved  decimal.Decimal
	TotalAvailable decimal.Decimal
	Breakdown      []WarehouseSummary
}

// Summarize calcula el resumen de stock de un producto sobre el conjunto de
// bodegas dado. Determinista y sin efectos secundarios.
//
//   - Con desglose por bodega: itera el desglose. Si establishmentID no es
//     vacío filtra a las bodegas de ese establecimiento; si el filtro deja el
//     conjunto vacío se ignora (el filtro es orientativo cuando falta metadata
//     de bodegas, no excluyente).
//   - Disponible por bodega: max(0, stock - reserved) si respectReservations,
//     si no max(0, stock).
//   - Sin desglose (producto legado): un único registro sintético con
//     IsFallback=true y reserved=0, tomado del agregado por establecimiento o
//     de la cantidad plana.
func Summarize(p *entity.Product, warehouses []*entity.Warehouse, establishmentID string, respectReservations bool) StockSummary {
	summary := StockSummary{
		TotalStock:     decimal.Zero,
		TotalReserved:  decimal.Zero,
		TotalAvailable: decimal.Zero,
	}
	if p == nil {
		return summary
	}
	summary.MinimalUnit = p.MinimalUnit

	if p.Stock.Kind == entity.StockKindPerWarehouse {
		byID := make(map[string]*entity.Warehouse, len(warehouses))
		for _, wh := range warehouses {
			if wh != nil {
				byID[wh.ID] = wh
			}
		}

		ids := includedWarehouseIDs(p.Stock.PerWarehouse, byID, establishmentID)
		for _, id := range ids {
			ws := p.Stock.PerWarehouse[id]
			row := WarehouseSummary{
				WarehouseID: id,
				Stock:       ws.Stock,
				Reserved:    ws.Reserved,
				Available:   availableOf(ws, respectReservations),
			}
			if wh, ok := byID[id]; ok {
				row.WarehouseCode = wh.Code
				row.WarehouseName = wh.Name
			}
			summary.Breakdown = append(summary.Breakdown, row)
			summary.TotalStock = summary.TotalStock.Add(row.Stock)
			summary.TotalReserved = summary.TotalReserved.Add(row.Reserved)
			summary.TotalAvailable = summary.TotalAvailable.Add(row.Available)
		}
		return summary
	}

	// Producto sin desglose: registro único sintético (compatibilidad).
	qty := fallbackQuantity(p, establishmentID)
	row := WarehouseSummary{
		Stock:      qty,
		Reserved:   decimal.Zero,
		Available:  decimal.Max(decimal.Zero, qty),
		IsFallback: true,
	}
	summary.Breakdown = []WarehouseSummary{row}
	summary.TotalStock = row.Stock
	summary.TotalAvailable = row.Available
	return summary
}

// includedWarehouseIDs devuelve los IDs del desglose a incluir, en orden
// estable. El filtro por establecimiento cede si dejaría el conjunto vacío.
func includedWarehouseIDs(breakdown map[string]entity.WarehouseStock, byID map[string]*entity.Warehouse, establishmentID string) []string {
	all := sortedKeys(breakdown)
	if establishmentID == "" {
		return all
	}
	var filtered []string
	for _, id := range all {
		if wh, ok := byID[id]; ok && wh.EstablishmentID == establishmentID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return all
	}
	return filtered
}

// fallbackQuantity resuelve la cantidad para productos sin desglose: agregado
// del establecimiento pedido, suma del agregado, o cantidad plana.
func fallbackQuantity(p *entity.Product, establishmentID string) decimal.Decimal {
	if p.Stock.Kind == entity.StockKindAggregate {
		if establishmentID != "" {
			if qty, ok := p.Stock.Aggregate[establishmentID]; ok {
				return qty
			}
		}
		total := decimal.Zero
		for _, qty := range p.Stock.Aggregate {
			total = total.Add(qty)
		}
		return total
	}
	return p.Stock.Flat
}

// sortedKeys devuelve las claves del desglose en orden lexicográfico, para que
// iterar el mapa produzca siempre el mismo resultado.
func sortedKeys(m map[string]entity.WarehouseStock) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// availableOf calcula el disponible de una bodega con clamp a cero.
func availableOf(ws entity.WarehouseStock, respectReservations bool) decimal.Decimal {
	available := ws.Stock
	if respectReservations {
		available = available.Sub(ws.Reserved)
	}
	return decimal.Max(decimal.Zero, available)
}
