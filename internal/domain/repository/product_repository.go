package repository

import "github.com/tu-usuario/retail-pro/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// UpdateStock es el write-back que usa el motor de inventario para persistir
// la instantánea de stock después de aplicar un movimiento.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByEstablishmentAndSKU(establishmentID, sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	UpdateStock(product *entity.Product) error
	ListByEstablishment(establishmentID string, limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
