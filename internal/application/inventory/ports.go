package inventory

import (
	"context"

	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
)

// TxRunner ejecuta una función con el write-back de producto y el kardex
// atados a la misma transacción. Es la garantía todo-o-nada del motor de
// inventario cuando la persistencia es PostgreSQL; el store en memoria lo
// implementa ejecutando fn directamente (ver nota en Facade sobre el hueco
// conocido de kardex).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		ledger repository.MovementLedger,
	) error) error
}

// KardexPDFGenerator genera el reporte kardex de un producto en PDF.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, product *entity.Product, records []*entity.MovementRecord) ([]byte, error)
}
