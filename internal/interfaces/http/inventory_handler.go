package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-pro/internal/application/dto"
	"github.com/tu-usuario/retail-pro/internal/application/inventory"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/stock"
)

// InventoryHandler maneja las peticiones HTTP del motor de inventario (protegido).
type InventoryHandler struct {
	inv                 *inventory.Facade
	pdf                 inventory.KardexPDFGenerator
	respectReservations bool
	allowNegative       bool
}

// NewInventoryHandler construye el handler. respectReservations y
// allowNegative son los defaults de configuración; cada petición puede
// sobreescribirlos en el body.
func NewInventoryHandler(inv *inventory.Facade, pdf inventory.KardexPDFGenerator, respectReservations, allowNegative bool) *InventoryHandler {
	return &InventoryHandler{inv: inv, pdf: pdf, respectReservations: respectReservations, allowNegative: allowNegative}
}

// inventoryError mapea los errores de dominio del motor a estados HTTP.
func inventoryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInvalidConversion):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CONVERSION", Message: "factor de conversión de unidad inválido"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrUnresolvedWarehouse):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "UNRESOLVED_WAREHOUSE", Message: "no hay bodega activa resoluble para la operación"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrLedgerAppend):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "LEDGER_APPEND", Message: "el movimiento no pudo registrarse en el kardex"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_id, kind, quantity; warehouse_id opcional (default: bodega principal)"
// @Success      201   {object}  dto.MovementRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) ApplyMovement(c *fiber.Ctx) error {
	establishmentID := GetEstablishmentID(c)
	userID := GetUserID(c)
	if establishmentID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.inv.ApplyMovement(c.Context(), inventory.ApplyMovementInput{
		EstablishmentID:    establishmentID,
		ActorID:            userID,
		ProductID:          in.ProductID,
		WarehouseID:        in.WarehouseID,
		Kind:               in.Kind,
		ReasonCode:         in.ReasonCode,
		Quantity:           in.Quantity,
		UnitCode:           in.UnitCode,
		ReferenceID:        in.ReferenceID,
		Note:               in.Note,
		AllowNegativeStock: in.AllowNegativeStock || h.allowNegative,
	})
	if err != nil {
		return inventoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementRecordResponse(result.Record))
}

// RegisterSale godoc
// @Summary      Registrar venta con asignación FIFO multi-bodega
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterSaleRequest  true  "product_id, quantity; unit_code opcional"
// @Success      201   {array}   dto.MovementRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *InventoryHandler) RegisterSale(c *fiber.Ctx) error {
	establishmentID := GetEstablishmentID(c)
	userID := GetUserID(c)
	if establishmentID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	records, err := h.inv.RegisterSale(c.Context(), inventory.SaleInput{
		EstablishmentID:     establishmentID,
		ActorID:             userID,
		ProductID:           in.ProductID,
		Quantity:            in.Quantity,
		UnitCode:            in.UnitCode,
		ReferenceID:         in.ReferenceID,
		Note:                in.Note,
		RespectReservations: h.respectReservationsFor(in.RespectReservations),
		AllowNegativeStock:  in.AllowNegativeStock || h.allowNegative,
	})
	if err != nil {
		return inventoryError(c, err)
	}
	out := make([]dto.MovementRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, *toMovementRecordResponse(rec))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Summary godoc
// @Summary      Resumen de stock de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        respect_reservations  query  bool  false  "Descontar reservas del disponible"
// @Success      200  {object}  dto.StockSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/summary/{product_id} [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	establishmentID := GetEstablishmentID(c)
	productID := c.Params("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "product_id es requerido"})
	}
	respect := c.QueryBool("respect_reservations", h.respectReservations)
	product, summary, err := h.inv.Summary(c.Context(), establishmentID, productID, respect)
	if err != nil {
		return inventoryError(c, err)
	}
	return c.JSON(toStockSummaryResponse(product.ID, summary))
}

// AllocationPreview godoc
// @Summary      Previsualizar asignación FIFO (sin mutar)
// @Description  Calcula cómo se repartiría una cantidad entre las bodegas del
//               establecimiento en orden FIFO, sin registrar movimientos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        quantity    query  string  true   "Cantidad requerida"
// @Param        unit_code   query  string  false  "Unidad (vacío = unidad mínima)"
// @Success      200  {object}  dto.AllocationPlanResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/allocation-preview/{product_id} [get]
func (h *InventoryHandler) AllocationPreview(c *fiber.Ctx) error {
	establishmentID := GetEstablishmentID(c)
	productID := c.Params("product_id")
	qty, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity inválida"})
	}
	plan, product, err := h.inv.PlanSale(c.Context(), inventory.SaleInput{
		EstablishmentID:     establishmentID,
		ProductID:           productID,
		Quantity:            qty,
		UnitCode:            c.Query("unit_code"),
		RespectReservations: c.QueryBool("respect_reservations", h.respectReservations),
	})
	if err != nil {
		return inventoryError(c, err)
	}
	allocations := make([]dto.AllocationDTO, 0, len(plan.Allocations))
	for _, a := range plan.Allocations {
		allocations = append(allocations, dto.AllocationDTO{WarehouseID: a.WarehouseID, Quantity: a.Quantity})
	}
	return c.JSON(dto.AllocationPlanResponse{
		ProductID:    product.ID,
		MinimalUnit:  product.MinimalUnit,
		Required:     plan.TotalAllocated().Add(plan.Remaining),
		Allocations:  allocations,
		Remaining:    plan.Remaining,
		FullyCovered: plan.FullyCovered,
	})
}

// Movements godoc
// @Summary      Consultar kardex
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Kardex de un producto (más reciente primero)"
// @Param        reference_id  query  string  false  "Movimientos de un documento de referencia"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.MovementRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	referenceID := c.Query("reference_id")

	var (
		records []*entity.MovementRecord
		err     error
	)
	switch {
	case productID != "":
		limit := c.QueryInt("limit", 20)
		offset := c.QueryInt("offset", 0)
		records, err = h.inv.MovementsByProduct(c.Context(), productID, limit, offset)
	case referenceID != "":
		records, err = h.inv.MovementsByReference(c.Context(), referenceID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id o reference_id es requerido"})
	}
	if err != nil {
		return inventoryError(c, err)
	}
	out := make([]dto.MovementRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, *toMovementRecordResponse(rec))
	}
	return c.JSON(out)
}

// KardexPDF godoc
// @Summary      Reporte kardex de un producto en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        product_id  path   string  true   "ID del producto"
// @Param        limit       query  int     false  "Movimientos incluidos"  default(100)
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/kardex/{product_id}/pdf [get]
func (h *InventoryHandler) KardexPDF(c *fiber.Ctx) error {
	establishmentID := GetEstablishmentID(c)
	productID := c.Params("product_id")
	limit := c.QueryInt("limit", 100)

	product, records, err := h.inv.Kardex(c.Context(), establishmentID, productID, limit, 0)
	if err != nil {
		return inventoryError(c, err)
	}
	pdfBytes, err := h.pdf.GenerateKardexPDF(c.Context(), product, records)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF_GENERATION", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="kardex-`+product.SKU+`.pdf"`)
	return c.Send(pdfBytes)
}

func (h *InventoryHandler) respectReservationsFor(override *bool) bool {
	if override != nil {
		return *override
	}
	return h.respectReservations
}

func toStockSummaryResponse(productID string, s stock.StockSummary) dto.StockSummaryResponse {
	breakdown := make([]dto.WarehouseSummaryDTO, 0, len(s.Breakdown))
	for _, w := range s.Breakdown {
		breakdown = append(breakdown, dto.WarehouseSummaryDTO{
			WarehouseID:   w.WarehouseID,
			WarehouseCode: w.WarehouseCode,
			WarehouseName: w.WarehouseName,
			Stock:         w.Stock,
			Reserved:      w.Reserved,
			Available:     w.Available,
			IsFallback:    w.IsFallback,
		})
	}
	return dto.StockSummaryResponse{
		ProductID:      productID,
		MinimalUnit:    s.MinimalUnit,
		TotalStock:     s.TotalStock,
		TotalReserved:  s.TotalReserved,
		TotalAvailable: s.TotalAvailable,
		Breakdown:      breakdown,
	}
}

func toMovementRecordResponse(rec *entity.MovementRecord) *dto.MovementRecordResponse {
	if rec == nil {
		return nil
	}
	return &dto.MovementRecordResponse{
		ID:                rec.ID,
		ProductID:         rec.ProductID,
		ProductSKU:        rec.ProductSKU,
		ProductName:       rec.ProductName,
		Kind:              rec.Kind,
		ReasonCode:        rec.ReasonCode,
		Quantity:          rec.Quantity,
		QuantityBefore:    rec.QuantityBefore,
		QuantityAfter:     rec.QuantityAfter,
		Note:              rec.Note,
		ReferenceID:       rec.ReferenceID,
		WarehouseID:       rec.WarehouseID,
		WarehouseCode:     rec.WarehouseCode,
		WarehouseName:     rec.WarehouseName,
		EstablishmentID:   rec.EstablishmentID,
		EstablishmentCode: rec.EstablishmentCode,
		EstablishmentName: rec.EstablishmentName,
		CreatedBy:         rec.CreatedBy,
		CreatedAt:         rec.CreatedAt,
	}
}
