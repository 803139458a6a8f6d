package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/stock"
)

// TestOrderForSaleFIFO_PrincipalPrimero verifica que la bodega principal
// activa siempre encabeza el orden de agotamiento.
func TestOrderForSaleFIFO_PrincipalPrimero(t *testing.T) {
	whs := []*entity.Warehouse{
		{ID: "w2", EstablishmentID: "e1", Code: "BOD-02", Name: "Trastienda", IsActive: true},
		{ID: "w1", EstablishmentID: "e1", Code: "BOD-01", Name: "Principal", IsActive: true, IsPrimary: true},
		{ID: "w9", EstablishmentID: "e1", Code: "BOD-00", Name: "Devoluciones", IsActive: true},
	}

	ordered := stock.OrderForSaleFIFO(whs, "e1")
	require.Len(t, ordered, 3)
	assert.Equal(t, "w1", ordered[0].ID, "la principal va primero aunque su código no sea el menor")
	assert.Equal(t, "w9", ordered[1].ID, "el resto por código, case-insensitive")
	assert.Equal(t, "w2", ordered[2].ID)
}

// TestOrderForSaleFIFO_FiltraInactivasYOtros verifica el filtro por
// establecimiento y por bandera de activa.
func TestOrderForSaleFIFO_FiltraInactivasYOtros(t *testing.T) {
	whs := []*entity.Warehouse{
		{ID: "w1", EstablishmentID: "e1", Code: "A", IsActive: true, IsPrimary: true},
		{ID: "w2", EstablishmentID: "e1", Code: "B", IsActive: false}, // inactiva
		{ID: "w3", EstablishmentID: "e2", Code: "C", IsActive: true},  // otro establecimiento
	}

	ordered := stock.OrderForSaleFIFO(whs, "e1")
	require.Len(t, ordered, 1)
	assert.Equal(t, "w1", ordered[0].ID)
}

// TestOrderForSaleFIFO_Determinista verifica que el orden es reproducible:
// misma entrada, mismo orden en cada llamada, con desempate por código,
// nombre e ID.
func TestOrderForSaleFIFO_Determinista(t *testing.T) {
	whs := []*entity.Warehouse{
		{ID: "wb", EstablishmentID: "e1", Code: "bod", Name: "Zulia", IsActive: true},
		{ID: "wa", EstablishmentID: "e1", Code: "BOD", Name: "Andes", IsActive: true},
		{ID: "wc", EstablishmentID: "e1", Code: "BOD", Name: "andes", IsActive: true},
	}

	first := stock.OrderForSaleFIFO(whs, "e1")
	for i := 0; i < 10; i++ {
		again := stock.OrderForSaleFIFO(whs, "e1")
		require.Equal(t, first, again, "el orden FIFO debe ser idéntico en cada llamada")
	}
	// Mismo código "BOD"/"bod": desempata nombre (andes < zulia), luego ID (wa < wc).
	assert.Equal(t, "wa", first[0].ID)
	assert.Equal(t, "wc", first[1].ID)
	assert.Equal(t, "wb", first[2].ID)
}

func productoDosBodegas() *entity.Product {
	// Disponibilidad base: W1(stock=10, reserved=2), W2(stock=5, reserved=0).
	return &entity.Product{
		ID:          "p1",
		MinimalUnit: "UND",
		Stock: entity.StockData{
			Kind: entity.StockKindPerWarehouse,
			PerWarehouse: map[string]entity.WarehouseStock{
				"w1": {Stock: decimal.NewFromInt(10), Reserved: decimal.NewFromInt(2)},
				"w2": {Stock: decimal.NewFromInt(5), Reserved: decimal.Zero},
			},
		},
	}
}

func dosBodegas() []*entity.Warehouse {
	return []*entity.Warehouse{
		{ID: "w1", EstablishmentID: "e1", Code: "BOD-01", Name: "Principal", IsActive: true, IsPrimary: true},
		{ID: "w2", EstablishmentID: "e1", Code: "BOD-02", Name: "Trastienda", IsActive: true},
	}
}

// TestAllocate_RepartoEntreBodegas: pedir 12 unidades con W1 disponible=8 y W2
// disponible=5 debe asignar [{w1,8},{w2,4}] sin faltante.
func TestAllocate_RepartoEntreBodegas(t *testing.T) {
	p := productoDosBodegas()
	ordered := stock.OrderForSaleFIFO(dosBodegas(), "e1")

	plan := stock.Allocate(p, ordered, decimal.NewFromInt(12), true)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "w1", plan.Allocations[0].WarehouseID)
	assert.True(t, plan.Allocations[0].Quantity.Equal(decimal.NewFromInt(8)), "w1 aporta su disponible completo")
	assert.Equal(t, "w2", plan.Allocations[1].WarehouseID)
	assert.True(t, plan.Allocations[1].Quantity.Equal(decimal.NewFromInt(4)), "w2 aporta el resto")
	assert.True(t, plan.Remaining.IsZero())
	assert.True(t, plan.FullyCovered)
}

// TestAllocate_Faltante: pedir 20 deja faltante 7 (disponible total 13) y el
// plan queda marcado como no cubierto; el caller decide rechazar o forzar.
func TestAllocate_Faltante(t *testing.T) {
	p := productoDosBodegas()
	ordered := stock.OrderForSaleFIFO(dosBodegas(), "e1")

	plan := stock.Allocate(p, ordered, decimal.NewFromInt(20), true)

	assert.False(t, plan.FullyCovered)
	assert.True(t, plan.Remaining.Equal(decimal.NewFromInt(7)))
	assert.True(t, plan.TotalAllocated().Equal(decimal.NewFromInt(13)), "nunca se inventa stock")
}

// TestAllocate_Propiedades verifica las cotas del plan para varios tamaños de
// pedido: Σ asignado ≤ requerido y Σ asignado ≤ Σ disponible.
func TestAllocate_Propiedades(t *testing.T) {
	p := productoDosBodegas()
	ordered := stock.OrderForSaleFIFO(dosBodegas(), "e1")
	disponibleTotal := decimal.NewFromInt(13)

	for req := int64(0); req <= 30; req++ {
		required := decimal.NewFromInt(req)
		plan := stock.Allocate(p, ordered, required, true)
		total := plan.TotalAllocated()

		assert.True(t, total.LessThanOrEqual(required), "req=%d: asignado %s > requerido", req, total)
		assert.True(t, total.LessThanOrEqual(disponibleTotal), "req=%d: asignado %s > disponible", req, total)
		assert.True(t, total.Add(plan.Remaining).Equal(decimal.Max(decimal.Zero, required)),
			"req=%d: asignado + faltante debe conservar la cantidad requerida", req)
	}
}

// TestAllocate_ParadaTemprana verifica que con la primera bodega alcanza, la
// segunda no aparece en el plan.
func TestAllocate_ParadaTemprana(t *testing.T) {
	p := productoDosBodegas()
	ordered := stock.OrderForSaleFIFO(dosBodegas(), "e1")

	plan := stock.Allocate(p, ordered, decimal.NewFromInt(5), true)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "w1", plan.Allocations[0].WarehouseID)
	assert.True(t, plan.FullyCovered)
}

// TestAllocate_SinReservas verifica que al ignorar reservas el disponible de
// w1 sube de 8 a 10.
func TestAllocate_SinReservas(t *testing.T) {
	p := productoDosBodegas()
	ordered := stock.OrderForSaleFIFO(dosBodegas(), "e1")

	plan := stock.Allocate(p, ordered, decimal.NewFromInt(12), false)
	require.Len(t, plan.Allocations, 2)
	assert.True(t, plan.Allocations[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, plan.Allocations[1].Quantity.Equal(decimal.NewFromInt(2)))
}

// TestAllocate_CantidadNoPositiva: requerido cero o negativo produce plan
// vacío cubierto, sin asignaciones.
func TestAllocate_CantidadNoPositiva(t *testing.T) {
	p := productoDosBodegas()
	ordered := stock.OrderForSaleFIFO(dosBodegas(), "e1")

	plan := stock.Allocate(p, ordered, decimal.Zero, true)
	assert.Empty(t, plan.Allocations)
	assert.True(t, plan.FullyCovered)
	assert.True(t, plan.Remaining.IsZero())
}
