package entity

import "time"

// Warehouse representa una bodega física donde se almacena inventario.
// Pertenece a un establecimiento; una bodega por establecimiento puede estar
// marcada como principal (IsPrimary) y es la primera en agotarse en ventas.
type Warehouse struct {
	ID              string
	EstablishmentID string
	Code            string
	Name            string
	IsActive        bool
	IsPrimary       bool // bodega principal de su establecimiento
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
