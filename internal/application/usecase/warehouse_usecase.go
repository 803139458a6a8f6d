package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/retail-pro/internal/application/dto"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
)

// WarehouseUseCase casos de uso CRUD para bodegas.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// Create crea una nueva bodega, activa por defecto. Si se marca como principal
// se desmarca la principal anterior del establecimiento (a lo sumo una).
func (uc *WarehouseUseCase) Create(establishmentID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:              uuid.New().String(),
		EstablishmentID: establishmentID,
		Code:            in.Code,
		Name:            in.Name,
		IsActive:        true,
		IsPrimary:       in.IsPrimary,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if warehouse.IsPrimary {
		if err := uc.demoteCurrentPrimary(establishmentID, warehouse.ID); err != nil {
			return nil, err
		}
	}
	if err := uc.repo.Create(warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, nil
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza una bodega. Promover a principal desmarca la anterior.
func (uc *WarehouseUseCase) Update(id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, nil
	}
	if in.Code != nil && *in.Code != "" {
		warehouse.Code = *in.Code
	}
	if in.Name != nil {
		warehouse.Name = *in.Name
	}
	if in.IsActive != nil {
		warehouse.IsActive = *in.IsActive
	}
	if in.IsPrimary != nil && *in.IsPrimary && !warehouse.IsPrimary {
		if err := uc.demoteCurrentPrimary(warehouse.EstablishmentID, warehouse.ID); err != nil {
			return nil, err
		}
		warehouse.IsPrimary = true
	}
	warehouse.UpdatedAt = time.Now()
	if err := uc.repo.Update(warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas por establecimiento.
func (uc *WarehouseUseCase) List(establishmentID string) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.ListByEstablishment(establishmentID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: len(items), Total: len(items)},
	}, nil
}

// Delete elimina una bodega por ID.
func (uc *WarehouseUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func (uc *WarehouseUseCase) demoteCurrentPrimary(establishmentID, exceptID string) error {
	list, err := uc.repo.ListByEstablishment(establishmentID)
	if err != nil {
		return err
	}
	for _, w := range list {
		if w.IsPrimary && w.ID != exceptID {
			w.IsPrimary = false
			w.UpdatedAt = time.Now()
			if err := uc.repo.Update(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:              w.ID,
		EstablishmentID: w.EstablishmentID,
		Code:            w.Code,
		Name:            w.Name,
		IsActive:        w.IsActive,
		IsPrimary:       w.IsPrimary,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}
