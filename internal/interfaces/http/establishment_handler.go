package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/retail-pro/internal/application/dto"
	"github.com/tu-usuario/retail-pro/internal/application/usecase"
	"github.com/tu-usuario/retail-pro/internal/domain"
)

// EstablishmentHandler maneja las peticiones HTTP para Establishment.
type EstablishmentHandler struct {
	uc *usecase.EstablishmentUseCase
}

// NewEstablishmentHandler construye el handler.
func NewEstablishmentHandler(uc *usecase.EstablishmentUseCase) *EstablishmentHandler {
	return &EstablishmentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear establecimiento
// @Tags         establishments
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEstablishmentRequest  true  "code, name"
// @Success      201   {object}  dto.EstablishmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/establishments [post]
func (h *EstablishmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEstablishmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code y name son requeridos"})
		}
		if err == domain.ErrDuplicate {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el establecimiento ya existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener establecimiento por ID
// @Tags         establishments
// @Produce      json
// @Param        id   path  string  true  "ID del establecimiento"
// @Success      200  {object}  dto.EstablishmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/establishments/{id} [get]
func (h *EstablishmentHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "establecimiento no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar establecimientos
// @Tags         establishments
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.EstablishmentListResponse
// @Router       /api/establishments [get]
func (h *EstablishmentHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	out, err := h.uc.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
