package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
	"github.com/tu-usuario/retail-pro/internal/domain/stock"
	"github.com/tu-usuario/retail-pro/pkg/logger"
)

// Facade orquesta el motor de inventario: resuelve bodega(s), convierte la
// cantidad a unidad mínima, valida disponibilidad, muta el desglose de stock
// del producto y registra las entradas del kardex.
//
// Modelo de ejecución: síncrono y de escritor único. El plan de asignación se
// calcula completo antes de mutar nada; solo se muta si el plan cubre la
// cantidad pedida (o la bandera de stock negativo está activa). La mutación y
// los appends del kardex se persisten dentro de un TxRunner; en el store en
// memoria no hay rollback compensatorio si el append falla con el stock ya
// mutado (hueco conocido, se reporta como ErrLedgerAppend al caller).
type Facade struct {
	txRunner          TxRunner
	productRepo       repository.ProductRepository
	warehouseRepo     repository.WarehouseRepository
	establishmentRepo repository.EstablishmentRepository
	ledger            repository.MovementLedger
	log               *logger.Logger
}

// NewFacade construye el facade de inventario.
func NewFacade(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	establishmentRepo repository.EstablishmentRepository,
	ledger repository.MovementLedger,
	log *logger.Logger,
) *Facade {
	return &Facade{
		txRunner:          txRunner,
		productRepo:       productRepo,
		warehouseRepo:     warehouseRepo,
		establishmentRepo: establishmentRepo,
		ledger:            ledger,
		log:               log,
	}
}

// ApplyMovementInput entrada para aplicar un movimiento sobre una bodega.
// Si WarehouseID está vacío se resuelve la bodega principal activa del
// establecimiento. UnitCode vacío = unidad mínima del producto.
type ApplyMovementInput struct {
	EstablishmentID    string
	ActorID            string
	ProductID          string
	WarehouseID        string
	Kind               string
	ReasonCode         string
	Quantity           decimal.Decimal
	UnitCode           string
	ReferenceID        string
	Note               string
	AllowNegativeStock bool
}

// MovementResult producto actualizado + entrada del kardex generada.
type MovementResult struct {
	Product *entity.Product
	Record  *entity.MovementRecord
}

// ApplyMovement aplica un movimiento simple (una bodega) y registra la entrada
// del kardex. Sin bodega válida resoluble no se registra nada
// (ErrUnresolvedWarehouse): un kardex sin bodega sería una entrada huérfana.
//
// Para tipos que restan, el stock se fija en cero en lugar de quedar negativo,
// salvo que AllowNegativeStock esté activa; la cantidad del registro refleja
// lo efectivamente aplicado para que antes/después del kardex cuadren siempre.
func (f *Facade) ApplyMovement(ctx context.Context, input ApplyMovementInput) (*MovementResult, error) {
	if input.ProductID == "" || !entity.MovementKindIsValid(input.Kind) || !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	product, err := f.loadProduct(input.ProductID, input.EstablishmentID)
	if err != nil {
		return nil, err
	}
	warehouse, err := f.resolveWarehouse(input.WarehouseID, input.EstablishmentID)
	if err != nil {
		return nil, err
	}

	qty := f.toMinimalUnits(product, input.Quantity, input.UnitCode)
	if !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidConversion
	}

	now := time.Now()
	before, after := f.applyDelta(product, warehouse, input.Kind, qty, input.AllowNegativeStock, now)
	record := f.buildRecord(product, warehouse, input.Kind, input.ReasonCode, before, after, input.ReferenceID, input.Note, input.ActorID, now)

	if err := f.persist(ctx, product, record); err != nil {
		return nil, err
	}
	return &MovementResult{Product: product, Record: record}, nil
}

// ApplyAllocatedInput entrada para aplicar un conjunto de asignaciones ya
// calculadas (venta multi-bodega) como una sola operación.
type ApplyAllocatedInput struct {
	EstablishmentID    string
	ActorID            string
	ProductID          string
	Kind               string
	ReasonCode         string
	ReferenceID        string
	Note               string
	Allocations        []stock.Allocation
	AllowNegativeStock bool
}

// ApplyAllocatedMovements aplica todas las asignaciones de forma atómica desde
// el punto de vista del caller: primero valida el conjunto completo contra la
// disponibilidad vigente y solo después muta; si alguna asignación no puede
// satisfacerse y el stock negativo no está permitido, no se aplica ningún
// subconjunto parcial. Genera una entrada de kardex por bodega tocada, todas
// con el mismo documento de referencia.
func (f *Facade) ApplyAllocatedMovements(ctx context.Context, input ApplyAllocatedInput) ([]*entity.MovementRecord, error) {
	if input.ProductID == "" || !entity.MovementKindIsValid(input.Kind) || len(input.Allocations) == 0 {
		return nil, domain.ErrInvalidInput
	}

	product, err := f.loadProduct(input.ProductID, input.EstablishmentID)
	if err != nil {
		return nil, err
	}

	// Fase 1: validar y proyectar antes/después sin mutar (encadenando si una
	// bodega aparece más de una vez).
	type pending struct {
		warehouse     *entity.Warehouse
		before, after decimal.Decimal
	}
	additive := entity.MovementKindIsAdditive(input.Kind)
	projected := make(map[string]decimal.Decimal)
	var plan []pending
	for _, alloc := range input.Allocations {
		if !alloc.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		warehouse, err := f.resolveWarehouse(alloc.WarehouseID, input.EstablishmentID)
		if err != nil {
			return nil, err
		}
		before, ok := projected[warehouse.ID]
		if !ok {
			before = product.WarehouseStockFor(warehouse.ID).Stock
		}
		after := before.Add(alloc.Quantity)
		if !additive {
			after = before.Sub(alloc.Quantity)
			if after.IsNegative() && !input.AllowNegativeStock {
				return nil, domain.ErrInsufficientStock
			}
		}
		projected[warehouse.ID] = after
		plan = append(plan, pending{warehouse: warehouse, before: before, after: after})
	}

	// Fase 2: mutar el producto y construir los registros.
	now := time.Now()
	hadBreakdown := product.Stock.Kind == entity.StockKindPerWarehouse
	records := make([]*entity.MovementRecord, 0, len(plan))
	for _, p := range plan {
		ws := product.WarehouseStockFor(p.warehouse.ID)
		ws.Stock = p.after
		product.SetWarehouseStock(p.warehouse.ID, ws)
		f.adjustAggregate(product, p.warehouse.EstablishmentID, p.after.Sub(p.before), hadBreakdown)
		hadBreakdown = true
		records = append(records, f.buildRecord(product, p.warehouse, input.Kind, input.ReasonCode,
			p.before, p.after, input.ReferenceID, input.Note, input.ActorID, now))
	}
	product.UpdatedAt = now

	if err := f.persist(ctx, product, records...); err != nil {
		return nil, err
	}
	return records, nil
}

// SaleInput entrada para registrar una venta con asignación FIFO automática.
type SaleInput struct {
	EstablishmentID     string
	ActorID             string
	ProductID           string
	Quantity            decimal.Decimal
	UnitCode            string
	ReferenceID         string
	Note                string
	RespectReservations bool
	AllowNegativeStock  bool
}

// PlanSale calcula el plan de asignación FIFO para una venta sin mutar nada
// (pre-flight: "¿se puede surtir este carrito antes de cobrar?"). Con
// allowNegative activa, el faltante se fuerza sobre la primera bodega del
// orden FIFO.
func (f *Facade) PlanSale(ctx context.Context, input SaleInput) (stock.AllocationPlan, *entity.Product, error) {
	product, err := f.loadProduct(input.ProductID, input.EstablishmentID)
	if err != nil {
		return stock.AllocationPlan{}, nil, err
	}
	warehouses, err := f.warehouseRepo.ListByEstablishment(input.EstablishmentID)
	if err != nil {
		return stock.AllocationPlan{}, nil, err
	}
	ordered := stock.OrderForSaleFIFO(warehouses, input.EstablishmentID)
	if len(ordered) == 0 {
		return stock.AllocationPlan{}, nil, domain.ErrUnresolvedWarehouse
	}

	required := f.toMinimalUnits(product, input.Quantity, input.UnitCode)
	if !required.GreaterThan(decimal.Zero) {
		return stock.AllocationPlan{}, nil, domain.ErrInvalidInput
	}

	plan := stock.Allocate(product, ordered, required, input.RespectReservations)
	if !plan.FullyCovered && input.AllowNegativeStock {
		plan = forceShortfall(plan, ordered[0].ID)
	}
	return plan, product, nil
}

// RegisterSale ejecuta la ruta de venta completa: plan FIFO + aplicación
// atómica de todas las asignaciones como movimientos EXIT. Si el plan no
// cubre la cantidad y el stock negativo no está permitido, falla con
// ErrInsufficientStock sin registrar nada.
func (f *Facade) RegisterSale(ctx context.Context, input SaleInput) ([]*entity.MovementRecord, error) {
	plan, _, err := f.PlanSale(ctx, input)
	if err != nil {
		return nil, err
	}
	if !plan.FullyCovered {
		return nil, domain.ErrInsufficientStock
	}
	return f.ApplyAllocatedMovements(ctx, ApplyAllocatedInput{
		EstablishmentID:    input.EstablishmentID,
		ActorID:            input.ActorID,
		ProductID:          input.ProductID,
		Kind:               entity.MovementKindEXIT,
		ReasonCode:         entity.ReasonSale,
		ReferenceID:        input.ReferenceID,
		Note:               input.Note,
		Allocations:        plan.Allocations,
		AllowNegativeStock: input.AllowNegativeStock,
	})
}

// Summary calcula el resumen de stock de un producto (consulta pura).
func (f *Facade) Summary(ctx context.Context, establishmentID, productID string, respectReservations bool) (*entity.Product, stock.StockSummary, error) {
	product, err := f.loadProduct(productID, establishmentID)
	if err != nil {
		return nil, stock.StockSummary{}, err
	}
	warehouses, err := f.warehouseRepo.ListByEstablishment(establishmentID)
	if err != nil {
		return nil, stock.StockSummary{}, err
	}
	return product, stock.Summarize(product, warehouses, establishmentID, respectReservations), nil
}

// MovementsByProduct lee el kardex de un producto (paginado, más reciente primero).
func (f *Facade) MovementsByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.MovementRecord, error) {
	return f.ledger.ListByProduct(productID, limit, offset)
}

// Kardex devuelve el producto junto con sus movimientos, para reportes
// (ej. el PDF de kardex).
func (f *Facade) Kardex(ctx context.Context, establishmentID, productID string, limit, offset int) (*entity.Product, []*entity.MovementRecord, error) {
	product, err := f.loadProduct(productID, establishmentID)
	if err != nil {
		return nil, nil, err
	}
	records, err := f.ledger.ListByProduct(productID, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return product, records, nil
}

// MovementsByReference lee el kardex por documento de referencia.
func (f *Facade) MovementsByReference(ctx context.Context, referenceID string) ([]*entity.MovementRecord, error) {
	return f.ledger.ListByReference(referenceID)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// loadProduct obtiene el producto y valida el ámbito del establecimiento.
func (f *Facade) loadProduct(productID, establishmentID string) (*entity.Product, error) {
	product, err := f.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if establishmentID != "" && product.EstablishmentID != "" && product.EstablishmentID != establishmentID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

// resolveWarehouse resuelve la bodega actuante: la pedida si existe y está
// activa, o la principal activa del establecimiento. Sin bodega resoluble la
// operación completa falla: no se registra ningún movimiento sin bodega válida.
func (f *Facade) resolveWarehouse(warehouseID, establishmentID string) (*entity.Warehouse, error) {
	if warehouseID != "" {
		warehouse, err := f.warehouseRepo.GetByID(warehouseID)
		if err != nil {
			return nil, err
		}
		if warehouse == nil || !warehouse.IsActive {
			return nil, domain.ErrUnresolvedWarehouse
		}
		if establishmentID != "" && warehouse.EstablishmentID != establishmentID {
			return nil, domain.ErrUnresolvedWarehouse
		}
		return warehouse, nil
	}
	warehouses, err := f.warehouseRepo.ListByEstablishment(establishmentID)
	if err != nil {
		return nil, err
	}
	for _, warehouse := range stock.OrderForSaleFIFO(warehouses, establishmentID) {
		if warehouse.IsPrimary {
			return warehouse, nil
		}
	}
	return nil, domain.ErrUnresolvedWarehouse
}

// toMinimalUnits convierte a unidad mínima y deja traza cuando el código de
// unidad cae al fallback permisivo (factor 1), para no enmascarar del todo
// errores de configuración.
func (f *Facade) toMinimalUnits(product *entity.Product, qty decimal.Decimal, unitCode string) decimal.Decimal {
	conv := stock.DescribeConversion(product, unitCode)
	if unitCode != "" && !strings.EqualFold(conv.ResolvedUnit, unitCode) {
		f.log.Debug().
			Str("product_id", product.ID).
			Str("unit_code", unitCode).
			Msg("unidad desconocida para el producto, se asume unidad mínima (factor 1)")
	}
	return qty.Mul(conv.Factor)
}

// applyDelta muta el stock del producto en la bodega y devuelve antes/después.
// Clamp a cero para tipos que restan, salvo bandera de stock negativo.
func (f *Facade) applyDelta(product *entity.Product, warehouse *entity.Warehouse, kind string, qty decimal.Decimal, allowNegative bool, now time.Time) (before, after decimal.Decimal) {
	hadBreakdown := product.Stock.Kind == entity.StockKindPerWarehouse
	ws := product.WarehouseStockFor(warehouse.ID)
	before = ws.Stock
	if entity.MovementKindIsAdditive(kind) {
		after = before.Add(qty)
	} else {
		after = before.Sub(qty)
		if after.IsNegative() && !allowNegative {
			after = decimal.Zero
		}
	}
	ws.Stock = after
	product.SetWarehouseStock(warehouse.ID, ws)
	f.adjustAggregate(product, warehouse.EstablishmentID, after.Sub(before), hadBreakdown)
	product.UpdatedAt = now
	return before, after
}

// adjustAggregate mantiene el agregado por establecimiento: ajuste por delta
// cuando ya había desglose (para no pisar valores legados fijados a mano), y
// recomputo completo desde el desglose cuando el producto no tenía ninguno.
func (f *Facade) adjustAggregate(product *entity.Product, establishmentID string, delta decimal.Decimal, hadBreakdown bool) {
	if product.Stock.Aggregate == nil || establishmentID == "" {
		return
	}
	if hadBreakdown {
		product.Stock.Aggregate[establishmentID] = product.Stock.Aggregate[establishmentID].Add(delta)
		return
	}
	total := decimal.Zero
	for _, ws := range product.Stock.PerWarehouse {
		total = total.Add(ws.Stock)
	}
	product.Stock.Aggregate[establishmentID] = total
}

// buildRecord arma la entrada del kardex con las instantáneas de producto,
// bodega y establecimiento al momento del movimiento.
func (f *Facade) buildRecord(product *entity.Product, warehouse *entity.Warehouse, kind, reasonCode string, before, after decimal.Decimal, referenceID, note, actorID string, now time.Time) *entity.MovementRecord {
	record := &entity.MovementRecord{
		ID:              uuid.New().String(),
		ProductID:       product.ID,
		ProductSKU:      product.SKU,
		ProductName:     product.Name,
		Kind:            kind,
		ReasonCode:      reasonCode,
		Quantity:        after.Sub(before).Abs(),
		QuantityBefore:  before,
		QuantityAfter:   after,
		Note:            note,
		ReferenceID:     referenceID,
		WarehouseID:     warehouse.ID,
		WarehouseCode:   warehouse.Code,
		WarehouseName:   warehouse.Name,
		EstablishmentID: warehouse.EstablishmentID,
		CreatedBy:       actorID,
		CreatedAt:       now,
	}
	if establishment, err := f.establishmentRepo.GetByID(warehouse.EstablishmentID); err == nil && establishment != nil {
		record.EstablishmentCode = establishment.Code
		record.EstablishmentName = establishment.Name
	}
	return record
}

// persist escribe la instantánea del producto y los registros del kardex
// dentro del TxRunner. Un fallo del append se reporta como ErrLedgerAppend:
// con el store en memoria el stock ya quedó mutado y la entrada de auditoría
// falta; el caller debe enterarse (limitación conocida, sin rollback).
func (f *Facade) persist(ctx context.Context, product *entity.Product, records ...*entity.MovementRecord) error {
	return f.txRunner.Run(ctx, func(productRepo repository.ProductRepository, ledger repository.MovementLedger) error {
		if err := productRepo.UpdateStock(product); err != nil {
			return err
		}
		for _, record := range records {
			if err := ledger.Append(record); err != nil {
				f.log.Error().Err(err).
					Str("product_id", product.ID).
					Str("record_id", record.ID).
					Msg("append al kardex falló con stock ya mutado")
				return domain.ErrLedgerAppend
			}
		}
		return nil
	})
}

// forceShortfall agrega el faltante del plan a la bodega designada (la primera
// del orden FIFO), fusionándolo con su asignación existente si la hay.
func forceShortfall(plan stock.AllocationPlan, warehouseID string) stock.AllocationPlan {
	if plan.Remaining.LessThanOrEqual(decimal.Zero) {
		return plan
	}
	merged := false
	for i := range plan.Allocations {
		if plan.Allocations[i].WarehouseID == warehouseID {
			plan.Allocations[i].Quantity = plan.Allocations[i].Quantity.Add(plan.Remaining)
			merged = true
			break
		}
	}
	if !merged {
		plan.Allocations = append(plan.Allocations, stock.Allocation{WarehouseID: warehouseID, Quantity: plan.Remaining})
	}
	plan.Remaining = decimal.Zero
	plan.FullyCovered = true
	return plan
}
