package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/retail-pro/internal/application/inventory"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/infrastructure/memory"
	"github.com/tu-usuario/retail-pro/pkg/logger"
)

// ─────────────────────────────────────────────
// Fixture: establecimiento con dos bodegas.
// W1 (principal): stock 10, reservado 2 → disponible 8.
// W2: stock 5, sin reservas → disponible 5.
// ─────────────────────────────────────────────

const (
	estID  = "est-1"
	prodID = "prod-1"
	w1ID   = "wh-1"
	w2ID   = "wh-2"
)

func newFixture(t *testing.T) (*inventory.Facade, *memory.Store) {
	t.Helper()
	store := memory.NewStore()

	require.NoError(t, store.Establishments().Create(&entity.Establishment{
		ID: estID, Code: "EST01", Name: "Tienda Principal", Status: "active",
	}))
	require.NoError(t, store.Warehouses().Create(&entity.Warehouse{
		ID: w1ID, EstablishmentID: estID, Code: "BOD01", Name: "Bodega Principal",
		IsActive: true, IsPrimary: true,
	}))
	require.NoError(t, store.Warehouses().Create(&entity.Warehouse{
		ID: w2ID, EstablishmentID: estID, Code: "BOD02", Name: "Bodega Secundaria",
		IsActive: true,
	}))
	require.NoError(t, store.Products().Create(&entity.Product{
		ID: prodID, EstablishmentID: estID, SKU: "SKU-001", Name: "Gaseosa 350ml",
		MinimalUnit: "UND",
		AdditionalUnits: []entity.UnitFactor{
			{UnitCode: "CAJA", Factor: decimal.NewFromInt(12)},
		},
		Stock: entity.NormalizeStockData(map[string]entity.WarehouseStock{
			w1ID: {Stock: decimal.NewFromInt(10), Reserved: decimal.NewFromInt(2)},
			w2ID: {Stock: decimal.NewFromInt(5)},
		}, nil, decimal.Zero),
	}))

	facade := inventory.NewFacade(
		store, store.Products(), store.Warehouses(), store.Establishments(), store.Ledger(), logger.Nop(),
	)
	return facade, store
}

func stockIn(t *testing.T, store *memory.Store, warehouseID string) decimal.Decimal {
	t.Helper()
	product, err := store.Products().GetByID(prodID)
	require.NoError(t, err)
	require.NotNil(t, product)
	return product.Stock.PerWarehouse[warehouseID].Stock
}

func TestRegisterSale_AsignacionFIFOMultiBodega(t *testing.T) {
	facade, store := newFixture(t)

	// Venta de 12: W1 cubre 8 (10 - 2 reservadas) y W2 los 4 restantes.
	records, err := facade.RegisterSale(context.Background(), inventory.SaleInput{
		EstablishmentID:     estID,
		ProductID:           prodID,
		Quantity:            decimal.NewFromInt(12),
		ReferenceID:         "venta-001",
		RespectReservations: true,
	})
	require.NoError(t, err)
	require.Len(t, records, 2, "una entrada de kardex por bodega tocada")

	assert.Equal(t, w1ID, records[0].WarehouseID)
	assert.True(t, records[0].Quantity.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, w2ID, records[1].WarehouseID)
	assert.True(t, records[1].Quantity.Equal(decimal.NewFromInt(4)))

	for _, rec := range records {
		assert.Equal(t, entity.MovementKindEXIT, rec.Kind)
		assert.Equal(t, entity.ReasonSale, rec.ReasonCode)
		assert.Equal(t, "venta-001", rec.ReferenceID)
	}

	// El stock persistido refleja las salidas: W1 10→2, W2 5→1.
	assert.True(t, stockIn(t, store, w1ID).Equal(decimal.NewFromInt(2)))
	assert.True(t, stockIn(t, store, w2ID).Equal(decimal.NewFromInt(1)))

	// El kardex es consultable por documento de referencia.
	byRef, err := facade.MovementsByReference(context.Background(), "venta-001")
	require.NoError(t, err)
	assert.Len(t, byRef, 2)
}

func TestRegisterSale_StockInsuficienteNoMutaNada(t *testing.T) {
	facade, store := newFixture(t)

	// Disponible total 13 (8 + 5); pedir 20 debe fallar sin tocar nada.
	records, err := facade.RegisterSale(context.Background(), inventory.SaleInput{
		EstablishmentID:     estID,
		ProductID:           prodID,
		Quantity:            decimal.NewFromInt(20),
		ReferenceID:         "venta-002",
		RespectReservations: true,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, records)

	assert.True(t, stockIn(t, store, w1ID).Equal(decimal.NewFromInt(10)))
	assert.True(t, stockIn(t, store, w2ID).Equal(decimal.NewFromInt(5)))

	byRef, err := facade.MovementsByReference(context.Background(), "venta-002")
	require.NoError(t, err)
	assert.Empty(t, byRef, "un plan fallido no deja rastro en el kardex")
}

func TestRegisterSale_StockNegativoForzadoEnLaPrimeraBodega(t *testing.T) {
	facade, store := newFixture(t)

	// Con stock negativo permitido, el faltante (20 - 13 = 7) se fuerza sobre
	// la primera bodega del orden FIFO: W1 queda con 8+7=15 y W2 con 5.
	records, err := facade.RegisterSale(context.Background(), inventory.SaleInput{
		EstablishmentID:     estID,
		ProductID:           prodID,
		Quantity:            decimal.NewFromInt(20),
		ReferenceID:         "venta-003",
		RespectReservations: true,
		AllowNegativeStock:  true,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].Quantity.Equal(decimal.NewFromInt(15)))
	assert.True(t, records[1].Quantity.Equal(decimal.NewFromInt(5)))

	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Quantity)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(20)), "las entradas del kardex suman la cantidad vendida")

	// W1 queda negativa: 10 - 15 = -5.
	assert.True(t, stockIn(t, store, w1ID).Equal(decimal.NewFromInt(-5)))
	assert.True(t, stockIn(t, store, w2ID).Equal(decimal.Zero))
}

func TestRegisterSale_ConversionDeUnidadAdicional(t *testing.T) {
	facade, _ := newFixture(t)

	// 1 CAJA = 12 unidades mínimas; el plan y el kardex van en unidad mínima.
	records, err := facade.RegisterSale(context.Background(), inventory.SaleInput{
		EstablishmentID:     estID,
		ProductID:           prodID,
		Quantity:            decimal.NewFromInt(1),
		UnitCode:            "CAJA",
		ReferenceID:         "venta-004",
		RespectReservations: true,
	})
	require.NoError(t, err)

	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Quantity)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(12)))
}

func TestPlanSale_NoMutaNada(t *testing.T) {
	facade, store := newFixture(t)

	plan, _, err := facade.PlanSale(context.Background(), inventory.SaleInput{
		EstablishmentID:     estID,
		ProductID:           prodID,
		Quantity:            decimal.NewFromInt(12),
		RespectReservations: true,
	})
	require.NoError(t, err)
	assert.True(t, plan.FullyCovered)
	require.Len(t, plan.Allocations, 2)

	// Pre-flight puro: el stock persistido no cambia.
	assert.True(t, stockIn(t, store, w1ID).Equal(decimal.NewFromInt(10)))
	assert.True(t, stockIn(t, store, w2ID).Equal(decimal.NewFromInt(5)))
}

func TestPlanSale_SinBodegasResolubles(t *testing.T) {
	facade, store := newFixture(t)

	// Desactivar ambas bodegas: imposible resolver dónde operar.
	for _, id := range []string{w1ID, w2ID} {
		wh, err := store.Warehouses().GetByID(id)
		require.NoError(t, err)
		wh.IsActive = false
		require.NoError(t, store.Warehouses().Update(wh))
	}

	_, _, err := facade.PlanSale(context.Background(), inventory.SaleInput{
		EstablishmentID: estID,
		ProductID:       prodID,
		Quantity:        decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrUnresolvedWarehouse)
}

func TestApplyMovement_EntradaYSalidaRestauranElStock(t *testing.T) {
	facade, store := newFixture(t)
	ctx := context.Background()

	entry, err := facade.ApplyMovement(ctx, inventory.ApplyMovementInput{
		EstablishmentID: estID,
		ProductID:       prodID,
		WarehouseID:     w1ID,
		Kind:            entity.MovementKindENTRY,
		ReasonCode:      entity.ReasonPurchaseEntry,
		Quantity:        decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.True(t, entry.Record.QuantityBefore.Equal(decimal.NewFromInt(10)))
	assert.True(t, entry.Record.QuantityAfter.Equal(decimal.NewFromInt(15)))

	exit, err := facade.ApplyMovement(ctx, inventory.ApplyMovementInput{
		EstablishmentID: estID,
		ProductID:       prodID,
		WarehouseID:     w1ID,
		Kind:            entity.MovementKindEXIT,
		ReasonCode:      entity.ReasonManualAdjustment,
		Quantity:        decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	// Los registros encadenan: el "antes" de la salida es el "después" de la entrada.
	assert.True(t, exit.Record.QuantityBefore.Equal(entry.Record.QuantityAfter))
	assert.True(t, exit.Record.QuantityAfter.Equal(decimal.NewFromInt(10)))

	// Stock restaurado al valor inicial.
	assert.True(t, stockIn(t, store, w1ID).Equal(decimal.NewFromInt(10)))

	// El kardex conserva ambas entradas, más reciente primero.
	records, err := facade.MovementsByProduct(ctx, prodID, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, entity.MovementKindEXIT, records[0].Kind)
	assert.Equal(t, entity.MovementKindENTRY, records[1].Kind)
}

func TestApplyMovement_SalidaMayorQueStockSeFijaEnCero(t *testing.T) {
	facade, store := newFixture(t)

	result, err := facade.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		EstablishmentID: estID,
		ProductID:       prodID,
		WarehouseID:     w2ID,
		Kind:            entity.MovementKindNegativeAdjustment,
		ReasonCode:      entity.ReasonManualAdjustment,
		Quantity:        decimal.NewFromInt(99),
	})
	require.NoError(t, err)

	// Sin bandera de stock negativo el ajuste se fija en cero, y la cantidad
	// del registro refleja lo efectivamente restado (5, no 99).
	assert.True(t, result.Record.QuantityAfter.Equal(decimal.Zero))
	assert.True(t, result.Record.Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, stockIn(t, store, w2ID).Equal(decimal.Zero))
}

func TestApplyMovement_ResuelveBodegaPrincipalPorDefecto(t *testing.T) {
	facade, _ := newFixture(t)

	result, err := facade.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		EstablishmentID: estID,
		ProductID:       prodID,
		Kind:            entity.MovementKindENTRY,
		ReasonCode:      entity.ReasonPurchaseEntry,
		Quantity:        decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.Equal(t, w1ID, result.Record.WarehouseID, "sin bodega explícita se usa la principal activa")
	assert.Equal(t, "BOD01", result.Record.WarehouseCode)
	assert.Equal(t, "EST01", result.Record.EstablishmentCode)
}

func TestApplyMovement_BodegaDeOtroEstablecimiento(t *testing.T) {
	facade, store := newFixture(t)

	require.NoError(t, store.Warehouses().Create(&entity.Warehouse{
		ID: "wh-otro", EstablishmentID: "est-otro", Code: "BODX", Name: "Ajena", IsActive: true,
	}))

	_, err := facade.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		EstablishmentID: estID,
		ProductID:       prodID,
		WarehouseID:     "wh-otro",
		Kind:            entity.MovementKindENTRY,
		ReasonCode:      entity.ReasonPurchaseEntry,
		Quantity:        decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrUnresolvedWarehouse)
}

func TestApplyMovement_ProductoDeOtroEstablecimiento(t *testing.T) {
	facade, _ := newFixture(t)

	_, err := facade.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		EstablishmentID: "est-otro",
		ProductID:       prodID,
		Kind:            entity.MovementKindENTRY,
		ReasonCode:      entity.ReasonPurchaseEntry,
		Quantity:        decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApplyMovement_EntradaInvalida(t *testing.T) {
	facade, _ := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input inventory.ApplyMovementInput
	}{
		{"sin producto", inventory.ApplyMovementInput{
			EstablishmentID: estID, Kind: entity.MovementKindENTRY, Quantity: decimal.NewFromInt(1),
		}},
		{"tipo desconocido", inventory.ApplyMovementInput{
			EstablishmentID: estID, ProductID: prodID, Kind: "TELEPORT", Quantity: decimal.NewFromInt(1),
		}},
		{"cantidad cero", inventory.ApplyMovementInput{
			EstablishmentID: estID, ProductID: prodID, Kind: entity.MovementKindENTRY,
		}},
		{"cantidad negativa", inventory.ApplyMovementInput{
			EstablishmentID: estID, ProductID: prodID, Kind: entity.MovementKindENTRY,
			Quantity: decimal.NewFromInt(-3),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := facade.ApplyMovement(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestApplyMovement_ProductoConStockPlano(t *testing.T) {
	facade, store := newFixture(t)

	// Producto legado sin desglose: la primera salida opera sobre la bodega
	// principal con el desglose recién promovido (arranca en cero y se fija
	// ahí), y el kardex registra el movimiento igual.
	require.NoError(t, store.Products().Create(&entity.Product{
		ID: "prod-plano", EstablishmentID: estID, SKU: "SKU-PLANO", Name: "Legado",
		MinimalUnit: "UND",
		Stock:       entity.NormalizeStockData(nil, nil, decimal.NewFromInt(30)),
	}))

	result, err := facade.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		EstablishmentID: estID,
		ProductID:       "prod-plano",
		Kind:            entity.MovementKindENTRY,
		ReasonCode:      entity.ReasonInitialLoad,
		Quantity:        decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	assert.True(t, result.Record.QuantityBefore.Equal(decimal.Zero))
	assert.True(t, result.Record.QuantityAfter.Equal(decimal.NewFromInt(30)))

	persisted, err := store.Products().GetByID("prod-plano")
	require.NoError(t, err)
	assert.Equal(t, entity.StockKindPerWarehouse, persisted.Stock.Kind, "el movimiento promueve al desglose por bodega")
}

func TestPersist_FalloDelKardexSeReporta(t *testing.T) {
	facade, store := newFixture(t)

	store.FailLedgerAppend = true
	_, err := facade.ApplyMovement(context.Background(), inventory.ApplyMovementInput{
		EstablishmentID: estID,
		ProductID:       prodID,
		WarehouseID:     w1ID,
		Kind:            entity.MovementKindENTRY,
		ReasonCode:      entity.ReasonPurchaseEntry,
		Quantity:        decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrLedgerAppend)

	// Limitación conocida del store en memoria: el stock ya quedó mutado
	// aunque el kardex no registró la entrada. El caller se entera por el error.
	assert.True(t, stockIn(t, store, w1ID).Equal(decimal.NewFromInt(15)))
	records, err := facade.MovementsByProduct(context.Background(), prodID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSummary_ConsultaPura(t *testing.T) {
	facade, _ := newFixture(t)

	product, summary, err := facade.Summary(context.Background(), estID, prodID, true)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.True(t, summary.TotalAvailable.Equal(decimal.NewFromInt(13)), "8 disponibles en W1 + 5 en W2")
	assert.Len(t, summary.Breakdown, 2)
}
