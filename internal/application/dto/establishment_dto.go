package dto

import "time"

// CreateEstablishmentRequest body para POST /api/establishments.
type CreateEstablishmentRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// EstablishmentResponse representación HTTP de un establecimiento.
type EstablishmentResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EstablishmentListResponse listado paginado de establecimientos.
type EstablishmentListResponse struct {
	Items []EstablishmentResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
