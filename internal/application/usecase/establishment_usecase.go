package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/retail-pro/internal/application/dto"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
)

// EstablishmentUseCase aplica reglas de negocio para establecimientos.
type EstablishmentUseCase struct {
	repo repository.EstablishmentRepository
}

// NewEstablishmentUseCase construye el caso de uso con el puerto de persistencia.
func NewEstablishmentUseCase(repo repository.EstablishmentRepository) *EstablishmentUseCase {
	return &EstablishmentUseCase{repo: repo}
}

// Create crea un nuevo establecimiento. Genera ID y estado inicial.
func (uc *EstablishmentUseCase) Create(in dto.CreateEstablishmentRequest) (*dto.EstablishmentResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	establishment := &entity.Establishment{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Name:      in.Name,
		Address:   in.Address,
		Phone:     in.Phone,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(establishment); err != nil {
		return nil, err
	}
	return toEstablishmentResponse(establishment), nil
}

// GetByID obtiene un establecimiento por ID.
func (uc *EstablishmentUseCase) GetByID(id string) (*dto.EstablishmentResponse, error) {
	establishment, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if establishment == nil {
		return nil, nil
	}
	return toEstablishmentResponse(establishment), nil
}

// List lista establecimientos con paginación.
func (uc *EstablishmentUseCase) List(limit, offset int) (*dto.EstablishmentListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EstablishmentResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toEstablishmentResponse(e))
	}
	return &dto.EstablishmentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toEstablishmentResponse(e *entity.Establishment) *dto.EstablishmentResponse {
	if e == nil {
		return nil
	}
	return &dto.EstablishmentResponse{
		ID:        e.ID,
		Code:      e.Code,
		Name:      e.Name,
		Address:   e.Address,
		Phone:     e.Phone,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
