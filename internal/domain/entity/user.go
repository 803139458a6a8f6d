package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// User representa un usuario del sistema (pertenece a un Establishment).
type User struct {
	ID              string
	EstablishmentID string
	Email           string
	PasswordHash    string // bcrypt hash, nunca plano en dominio después de persistir
	Name            string
	Role            string // admin, bodeguero, vendedor
	Status          string // active, inactive, suspended
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
