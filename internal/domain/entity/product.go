package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitFactor describe una unidad de venta adicional de un producto y su factor
// de conversión hacia la unidad mínima (ej. CAJA x12 → factor 12).
type UnitFactor struct {
	UnitCode string
	Factor   decimal.Decimal // cantidad de unidades mínimas por 1 de esta unidad
}

// WarehouseStock cantidad almacenada y reservada de un producto en una bodega,
// siempre en unidad mínima. Reserved ≤ Stock NO está garantizado: el clamp a
// cero se hace en el punto de uso (disponible = max(0, stock - reserved)).
type WarehouseStock struct {
	Stock    decimal.Decimal
	Reserved decimal.Decimal
}

// Variantes de representación de stock de un producto. Se resuelven una sola
// vez al normalizar en la frontera de persistencia; el motor solo consulta Kind.
const (
	StockKindPerWarehouse = "PER_WAREHOUSE" // desglose por bodega (modelo actual)
	StockKindAggregate    = "AGGREGATE"     // agregado por establecimiento (compatibilidad)
	StockKindFlat         = "FLAT"          // cantidad plana sin desglose (datos legados)
)

// StockData es la variante etiquetada de stock de un producto. Solo el campo
// correspondiente a Kind es significativo.
type StockData struct {
	Kind         string
	PerWarehouse map[string]WarehouseStock  // bodega ID → stock/reserved
	Aggregate    map[string]decimal.Decimal // establecimiento ID → cantidad
	Flat         decimal.Decimal
}

// NormalizeStockData determina la variante según los datos presentes y devuelve
// una StockData estricta. Desglose por bodega tiene prioridad sobre agregado, y
// agregado sobre cantidad plana.
func NormalizeStockData(perWarehouse map[string]WarehouseStock, aggregate map[string]decimal.Decimal, flat decimal.Decimal) StockData {
	if len(perWarehouse) > 0 {
		return StockData{Kind: StockKindPerWarehouse, PerWarehouse: perWarehouse, Aggregate: aggregate}
	}
	if len(aggregate) > 0 {
		return StockData{Kind: StockKindAggregate, Aggregate: aggregate}
	}
	return StockData{Kind: StockKindFlat, Flat: flat}
}

// Product representa un producto o SKU del inventario (multi-bodega).
// Todo el stock se expresa en MinimalUnit; las conversiones a otras unidades
// ocurren solo en la frontera (ver paquete stock).
type Product struct {
	ID              string
	EstablishmentID string
	SKU             string // código único por establecimiento
	Name            string
	Description     string
	Price           decimal.Decimal
	MinimalUnit     string       // unidad en la que se almacena todo el stock (ej. "UND")
	AdditionalUnits []UnitFactor // unidades de venta adicionales con su factor
	Stock           StockData
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WarehouseStockFor devuelve el stock del producto en una bodega (cero si no hay registro).
func (p *Product) WarehouseStockFor(warehouseID string) WarehouseStock {
	if p.Stock.Kind != StockKindPerWarehouse {
		return WarehouseStock{Stock: decimal.Zero, Reserved: decimal.Zero}
	}
	ws, ok := p.Stock.PerWarehouse[warehouseID]
	if !ok {
		return WarehouseStock{Stock: decimal.Zero, Reserved: decimal.Zero}
	}
	return ws
}

// SetWarehouseStock fija el stock del producto en una bodega, promoviendo la
// variante a PER_WAREHOUSE si el producto aún no tenía desglose.
func (p *Product) SetWarehouseStock(warehouseID string, ws WarehouseStock) {
	if p.Stock.Kind != StockKindPerWarehouse || p.Stock.PerWarehouse == nil {
		p.Stock.Kind = StockKindPerWarehouse
		p.Stock.PerWarehouse = make(map[string]WarehouseStock)
	}
	p.Stock.PerWarehouse[warehouseID] = ws
}

// TotalStock suma el stock en unidades mínimas según la variante vigente.
func (p *Product) TotalStock() decimal.Decimal {
	switch p.Stock.Kind {
	case StockKindPerWarehouse:
		total := decimal.Zero
		for _, ws := range p.Stock.PerWarehouse {
			total = total.Add(ws.Stock)
		}
		return total
	case StockKindAggregate:
		total := decimal.Zero
		for _, qty := range p.Stock.Aggregate {
			total = total.Add(qty)
		}
		return total
	default:
		return p.Stock.Flat
	}
}
