package repository

import "github.com/tu-usuario/retail-pro/internal/domain/entity"

// MovementLedger define el puerto del kardex (libro de movimientos).
// Append es la única mutación: no existen operaciones de update ni delete.
// Los registros quedan consultables por producto y por documento de referencia
// para reportes y auditoría.
type MovementLedger interface {
	Append(record *entity.MovementRecord) error
	GetByID(id string) (*entity.MovementRecord, error)
	ListByProduct(productID string, limit, offset int) ([]*entity.MovementRecord, error)
	ListByReference(referenceID string) ([]*entity.MovementRecord, error)
}
