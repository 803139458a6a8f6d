package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-pro/internal/application/dto"
	"github.com/tu-usuario/retail-pro/internal/application/inventory"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock no se edita por
// aquí: toda variación pasa por el motor de inventario para quedar en el kardex.
type ProductUseCase struct {
	repo repository.ProductRepository
	inv  *inventory.Facade
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, inv *inventory.Facade) *ProductUseCase {
	return &ProductUseCase{repo: repo, inv: inv}
}

// Create crea un nuevo producto. Si viene InitialQuantity > 0 registra la
// carga inicial como movimiento ENTRY sobre la bodega principal, para que el
// kardex arranque desde cero con trazabilidad completa.
func (uc *ProductUseCase) Create(ctx context.Context, establishmentID, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByEstablishmentAndSKU(establishmentID, in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.MinimalUnit == "" {
		in.MinimalUnit = "UND"
	}
	units := make([]entity.UnitFactor, 0, len(in.AdditionalUnits))
	for _, u := range in.AdditionalUnits {
		if u.UnitCode == "" || !u.Factor.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		units = append(units, entity.UnitFactor{UnitCode: u.UnitCode, Factor: u.Factor})
	}
	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		EstablishmentID: establishmentID,
		SKU:             in.SKU,
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price,
		MinimalUnit:     in.MinimalUnit,
		AdditionalUnits: units,
		Stock:           entity.NormalizeStockData(nil, nil, decimal.Zero),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}

	if in.InitialQuantity.GreaterThan(decimal.Zero) {
		result, err := uc.inv.ApplyMovement(ctx, inventory.ApplyMovementInput{
			EstablishmentID: establishmentID,
			ActorID:         actorID,
			ProductID:       product.ID,
			Kind:            entity.MovementKindENTRY,
			ReasonCode:      entity.ReasonInitialLoad,
			Quantity:        in.InitialQuantity,
		})
		if err != nil {
			return nil, err
		}
		product = result.Product
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza los datos maestros de un producto. No permite modificar el
// stock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.MinimalUnit != nil && *in.MinimalUnit != "" {
		product.MinimalUnit = *in.MinimalUnit
	}
	if len(in.AdditionalUnits) > 0 {
		units := make([]entity.UnitFactor, 0, len(in.AdditionalUnits))
		for _, u := range in.AdditionalUnits {
			if u.UnitCode == "" || !u.Factor.GreaterThan(decimal.Zero) {
				return nil, domain.ErrInvalidInput
			}
			units = append(units, entity.UnitFactor{UnitCode: u.UnitCode, Factor: u.Factor})
		}
		product.AdditionalUnits = units
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos por establecimiento con paginación.
func (uc *ProductUseCase) List(establishmentID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.ListByEstablishment(establishmentID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto por ID.
func (uc *ProductUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	units := make([]dto.UnitFactorDTO, 0, len(p.AdditionalUnits))
	for _, u := range p.AdditionalUnits {
		units = append(units, dto.UnitFactorDTO{UnitCode: u.UnitCode, Factor: u.Factor})
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		EstablishmentID: p.EstablishmentID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		MinimalUnit:     p.MinimalUnit,
		AdditionalUnits: units,
		TotalStock:      p.TotalStock(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
