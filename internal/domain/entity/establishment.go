package entity

import "time"

// Establishment representa un punto de negocio (local/sucursal) que agrupa
// una o más bodegas. Es el ámbito de los usuarios y de las operaciones de venta.
type Establishment struct {
	ID        string
	Code      string
	Name      string
	Address   string
	Phone     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
