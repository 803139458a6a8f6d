package repository

import "github.com/tu-usuario/retail-pro/internal/domain/entity"

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(warehouse *entity.Warehouse) error
	GetByID(id string) (*entity.Warehouse, error)
	Update(warehouse *entity.Warehouse) error
	ListByEstablishment(establishmentID string) ([]*entity.Warehouse, error)
	Delete(id string) error
}
