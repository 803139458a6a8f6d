package dto

import "time"

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

// UpdateWarehouseRequest body para PUT /api/warehouses/:id (campos opcionales).
type UpdateWarehouseRequest struct {
	Code      *string `json:"code,omitempty"`
	Name      *string `json:"name,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	IsPrimary *bool   `json:"is_primary,omitempty"`
}

// WarehouseResponse representación HTTP de una bodega.
type WarehouseResponse struct {
	ID              string    `json:"id"`
	EstablishmentID string    `json:"establishment_id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	IsActive        bool      `json:"is_active"`
	IsPrimary       bool      `json:"is_primary"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WarehouseListResponse listado paginado de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
