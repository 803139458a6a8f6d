package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitFactorDTO unidad de venta adicional de un producto.
type UnitFactorDTO struct {
	UnitCode string          `json:"unit_code"`
	Factor   decimal.Decimal `json:"factor"`
}

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	MinimalUnit     string          `json:"minimal_unit"` // ej. "UND"
	AdditionalUnits []UnitFactorDTO `json:"additional_units,omitempty"`
	InitialQuantity decimal.Decimal `json:"initial_quantity,omitempty"` // carga inicial en la bodega principal
}

// UpdateProductRequest body para PUT /api/products/:id (campos opcionales).
// El stock no se actualiza por aquí: se maneja vía movimientos.
type UpdateProductRequest struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	MinimalUnit     *string          `json:"minimal_unit,omitempty"`
	AdditionalUnits []UnitFactorDTO  `json:"additional_units,omitempty"`
}

// ProductResponse representación HTTP de un producto.
type ProductResponse struct {
	ID              string          `json:"id"`
	EstablishmentID string          `json:"establishment_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	MinimalUnit     string          `json:"minimal_unit"`
	AdditionalUnits []UnitFactorDTO `json:"additional_units,omitempty"`
	TotalStock      decimal.Decimal `json:"total_stock"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
