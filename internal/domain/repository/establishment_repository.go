package repository

import "github.com/tu-usuario/retail-pro/internal/domain/entity"

// EstablishmentRepository define el puerto de persistencia para Establishment (DIP).
type EstablishmentRepository interface {
	Create(establishment *entity.Establishment) error
	GetByID(id string) (*entity.Establishment, error)
	List(limit, offset int) ([]*entity.Establishment, error)
}
