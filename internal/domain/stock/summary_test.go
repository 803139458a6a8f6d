package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/stock"
)

func warehousesDosEstablecimientos() []*entity.Warehouse {
	return []*entity.Warehouse{
		{ID: "w1", EstablishmentID: "e1", Code: "BOD-01", Name: "Principal", IsActive: true, IsPrimary: true},
		{ID: "w2", EstablishmentID: "e1", Code: "BOD-02", Name: "Trastienda", IsActive: true},
		{ID: "w3", EstablishmentID: "e2", Code: "SUC-01", Name: "Sucursal Norte", IsActive: true, IsPrimary: true},
	}
}

func productoConDesglose() *entity.Product {
	return &entity.Product{
		ID:          "p1",
		MinimalUnit: "UND",
		Stock: entity.StockData{
			Kind: entity.StockKindPerWarehouse,
			PerWarehouse: map[string]entity.WarehouseStock{
				"w1": {Stock: decimal.NewFromInt(10), Reserved: decimal.NewFromInt(2)},
				"w2": {Stock: decimal.NewFromInt(5), Reserved: decimal.Zero},
				"w3": {Stock: decimal.NewFromInt(3), Reserved: decimal.NewFromInt(7)}, // reservado > stock
			},
		},
	}
}

// TestSummarize_TotalesPorBodega verifica la propiedad central: el total
// disponible es Σ max(0, stock - reserved) sobre las bodegas incluidas.
func TestSummarize_TotalesPorBodega(t *testing.T) {
	p := productoConDesglose()
	whs := warehousesDosEstablecimientos()

	s := stock.Summarize(p, whs, "", true)

	assert.Equal(t, "UND", s.MinimalUnit)
	assert.True(t, s.TotalStock.Equal(decimal.NewFromInt(18)), "stock total 10+5+3")
	assert.True(t, s.TotalReserved.Equal(decimal.NewFromInt(9)), "reservado total 2+0+7")
	// Disponible: max(0,10-2) + max(0,5-0) + max(0,3-7) = 8 + 5 + 0
	assert.True(t, s.TotalAvailable.Equal(decimal.NewFromInt(13)), "disponible con clamp a cero por bodega")
	assert.Len(t, s.Breakdown, 3)

	suma := decimal.Zero
	for _, row := range s.Breakdown {
		assert.False(t, row.Available.IsNegative(), "disponible nunca negativo (bodega %s)", row.WarehouseID)
		suma = suma.Add(row.Available)
	}
	assert.True(t, suma.Equal(s.TotalAvailable), "el total debe ser la suma del desglose")
}

// TestSummarize_SinReservas verifica respectReservations=false: el disponible
// ignora lo reservado.
func TestSummarize_SinReservas(t *testing.T) {
	p := productoConDesglose()
	s := stock.Summarize(p, warehousesDosEstablecimientos(), "", false)
	assert.True(t, s.TotalAvailable.Equal(decimal.NewFromInt(18)), "sin reservas el disponible es el stock")
}

// TestSummarize_FiltroEstablecimiento verifica el filtro por establecimiento.
func TestSummarize_FiltroEstablecimiento(t *testing.T) {
	p := productoConDesglose()
	s := stock.Summarize(p, warehousesDosEstablecimientos(), "e1", true)

	assert.Len(t, s.Breakdown, 2, "solo las bodegas de e1")
	assert.True(t, s.TotalAvailable.Equal(decimal.NewFromInt(13)), "8 de w1 + 5 de w2")
	assert.True(t, s.TotalStock.Equal(decimal.NewFromInt(15)))
}

// TestSummarize_FiltroSinMetadata verifica que el filtro cede cuando dejaría
// el conjunto vacío (metadata de bodegas ausente): es orientativo, no excluyente.
func TestSummarize_FiltroSinMetadata(t *testing.T) {
	p := productoConDesglose()

	// Sin lista de bodegas, ninguna casa con el establecimiento: se incluye todo.
	s := stock.Summarize(p, nil, "e1", true)
	assert.Len(t, s.Breakdown, 3, "filtro sin metadata debe caer al conjunto completo")
	assert.True(t, s.TotalStock.Equal(decimal.NewFromInt(18)))
}

// TestSummarize_FallbackPlano corresponde al Escenario D: producto sin
// desglose con cantidad plana 30 y filtro de establecimiento aplicado.
func TestSummarize_FallbackPlano(t *testing.T) {
	p := &entity.Product{
		ID:          "p-legado",
		MinimalUnit: "UND",
		Stock:       entity.StockData{Kind: entity.StockKindFlat, Flat: decimal.NewFromInt(30)},
	}

	s := stock.Summarize(p, warehousesDosEstablecimientos(), "e1", true)

	require.Len(t, s.Breakdown, 1, "un único registro sintético")
	assert.True(t, s.Breakdown[0].IsFallback)
	assert.True(t, s.Breakdown[0].Reserved.IsZero())
	assert.True(t, s.TotalAvailable.Equal(decimal.NewFromInt(30)))
}

// TestSummarize_FallbackAgregado verifica el fallback por agregado de
// establecimiento cuando no hay desglose por bodega.
func TestSummarize_FallbackAgregado(t *testing.T) {
	p := &entity.Product{
		ID:          "p-agregado",
		MinimalUnit: "UND",
		Stock: entity.StockData{
			Kind: entity.StockKindAggregate,
			Aggregate: map[string]decimal.Decimal{
				"e1": decimal.NewFromInt(12),
				"e2": decimal.NewFromInt(8),
			},
		},
	}

	s := stock.Summarize(p, nil, "e1", true)
	require.Len(t, s.Breakdown, 1)
	assert.True(t, s.TotalAvailable.Equal(decimal.NewFromInt(12)), "agregado del establecimiento pedido")

	// Sin establecimiento: suma del agregado completo.
	s = stock.Summarize(p, nil, "", true)
	assert.True(t, s.TotalAvailable.Equal(decimal.NewFromInt(20)))
}

// TestSummarize_Idempotente verifica que dos llamadas sin mutación intermedia
// devuelven resultados idénticos.
func TestSummarize_Idempotente(t *testing.T) {
	p := productoConDesglose()
	whs := warehousesDosEstablecimientos()

	s1 := stock.Summarize(p, whs, "e1", true)
	s2 := stock.Summarize(p, whs, "e1", true)
	assert.Equal(t, s1, s2, "summarize debe ser determinista y sin efectos secundarios")
}

// TestSummarize_ProductoNil no debe entrar en pánico.
func TestSummarize_ProductoNil(t *testing.T) {
	s := stock.Summarize(nil, nil, "", true)
	assert.True(t, s.TotalAvailable.IsZero())
	assert.Empty(t, s.Breakdown)
}
