package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest body para POST /api/inventory/movements.
// Si warehouse_id está vacío se usa la bodega principal del establecimiento.
type ApplyMovementRequest struct {
	ProductID          string          `json:"product_id"`
	WarehouseID        string          `json:"warehouse_id,omitempty"`
	Kind               string          `json:"kind"` // ENTRY, EXIT, POSITIVE_ADJUSTMENT, NEGATIVE_ADJUSTMENT, RETURN
	ReasonCode         string          `json:"reason_code"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitCode           string          `json:"unit_code,omitempty"` // vacío = unidad mínima
	ReferenceID        string          `json:"reference_id,omitempty"`
	Note               string          `json:"note,omitempty"`
	AllowNegativeStock bool            `json:"allow_negative_stock,omitempty"`
}

// RegisterSaleRequest body para POST /api/inventory/sales: salida multi-bodega
// con asignación FIFO automática.
type RegisterSaleRequest struct {
	ProductID           string          `json:"product_id"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitCode            string          `json:"unit_code,omitempty"`
	ReferenceID         string          `json:"reference_id,omitempty"`
	Note                string          `json:"note,omitempty"`
	RespectReservations *bool           `json:"respect_reservations,omitempty"` // default true
	AllowNegativeStock  bool            `json:"allow_negative_stock,omitempty"`
}

// AllocationDTO una porción de la cantidad asignada a una bodega.
type AllocationDTO struct {
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// AllocationPlanResponse resultado de la previsualización de asignación
// (pre-flight, sin mutación).
type AllocationPlanResponse struct {
	ProductID    string          `json:"product_id"`
	MinimalUnit  string          `json:"minimal_unit"`
	Required     decimal.Decimal `json:"required"`
	Allocations  []AllocationDTO `json:"allocations"`
	Remaining    decimal.Decimal `json:"remaining"`
	FullyCovered bool            `json:"fully_covered"`
}

// WarehouseSummaryDTO detalle de stock por bodega dentro del resumen.
type WarehouseSummaryDTO struct {
	WarehouseID   string          `json:"warehouse_id,omitempty"`
	WarehouseCode string          `json:"warehouse_code,omitempty"`
	WarehouseName string          `json:"warehouse_name,omitempty"`
	Stock         decimal.Decimal `json:"stock"`
	Reserved      decimal.Decimal `json:"reserved"`
	Available     decimal.Decimal `json:"available"`
	IsFallback    bool            `json:"is_fallback,omitempty"`
}

// StockSummaryResponse resumen agregado de stock de un producto.
type StockSummaryResponse struct {
	ProductID      string                `json:"product_id"`
	MinimalUnit    string                `json:"minimal_unit"`
	TotalStock     decimal.Decimal       `json:"total_stock"`
	TotalReserved  decimal.Decimal       `json:"total_reserved"`
	TotalAvailable decimal.Decimal       `json:"total_available"`
	Breakdown      []WarehouseSummaryDTO `json:"breakdown"`
}

// MovementRecordResponse entrada del kardex en respuestas HTTP.
type MovementRecordResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	ProductSKU        string          `json:"product_sku"`
	ProductName       string          `json:"product_name"`
	Kind              string          `json:"kind"`
	ReasonCode        string          `json:"reason_code"`
	Quantity          decimal.Decimal `json:"quantity"`
	QuantityBefore    decimal.Decimal `json:"quantity_before"`
	QuantityAfter     decimal.Decimal `json:"quantity_after"`
	Note              string          `json:"note,omitempty"`
	ReferenceID       string          `json:"reference_id,omitempty"`
	WarehouseID       string          `json:"warehouse_id"`
	WarehouseCode     string          `json:"warehouse_code"`
	WarehouseName     string          `json:"warehouse_name"`
	EstablishmentID   string          `json:"establishment_id"`
	EstablishmentCode string          `json:"establishment_code,omitempty"`
	EstablishmentName string          `json:"establishment_name,omitempty"`
	CreatedBy         string          `json:"created_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
