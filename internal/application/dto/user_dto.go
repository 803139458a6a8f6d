package dto

import "time"

// RegisterRequest body para POST /api/auth/register.
type RegisterRequest struct {
	EstablishmentID string `json:"establishment_id"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Name            string `json:"name,omitempty"`
	Role            string `json:"role,omitempty"` // default: vendedor
}

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse representación HTTP de un usuario (sin hash).
type UserResponse struct {
	ID              string    `json:"id"`
	EstablishmentID string    `json:"establishment_id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LoginResponse token JWT + usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
