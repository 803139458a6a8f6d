package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/stock"
)

func productWithUnits() *entity.Product {
	return &entity.Product{
		ID:          "p1",
		SKU:         "GASEOSA-350",
		Name:        "Gaseosa 350ml",
		MinimalUnit: "UND",
		AdditionalUnits: []entity.UnitFactor{
			{UnitCode: "SIXPACK", Factor: decimal.NewFromInt(6)},
			{UnitCode: "CAJA", Factor: decimal.NewFromInt(24)},
			{UnitCode: "ROTA", Factor: decimal.Zero}, // factor mal configurado
		},
	}
}

// TestToMinimalUnits_UnidadMinima verifica que código vacío o igual a la
// unidad mínima usan factor 1.
func TestToMinimalUnits_UnidadMinima(t *testing.T) {
	p := productWithUnits()

	got := stock.ToMinimalUnits(p, decimal.NewFromInt(7), "")
	assert.True(t, got.Equal(decimal.NewFromInt(7)), "código vacío debe usar factor 1")

	got = stock.ToMinimalUnits(p, decimal.NewFromInt(7), "und")
	assert.True(t, got.Equal(decimal.NewFromInt(7)), "la unidad mínima no distingue mayúsculas")
}

// TestToMinimalUnits_UnidadAdicional verifica la conversión con factor de la
// lista de unidades adicionales.
func TestToMinimalUnits_UnidadAdicional(t *testing.T) {
	p := productWithUnits()

	got := stock.ToMinimalUnits(p, decimal.NewFromInt(2), "CAJA")
	assert.True(t, got.Equal(decimal.NewFromInt(48)), "2 cajas x24 deben ser 48 unidades mínimas")

	got = stock.ToMinimalUnits(p, decimal.NewFromInt(3), "sixpack")
	assert.True(t, got.Equal(decimal.NewFromInt(18)), "la búsqueda de unidad no distingue mayúsculas")
}

// TestToMinimalUnits_UnidadDesconocida verifica el fallback permisivo: un
// código desconocido se trata como unidad mínima (factor 1), nunca error.
func TestToMinimalUnits_UnidadDesconocida(t *testing.T) {
	p := productWithUnits()

	got := stock.ToMinimalUnits(p, decimal.NewFromInt(5), "PALETA")
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "unidad desconocida debe tratarse como unidad mínima")

	conv := stock.DescribeConversion(p, "PALETA")
	assert.Equal(t, "UND", conv.ResolvedUnit)
	assert.True(t, conv.Factor.Equal(decimal.NewFromInt(1)))
}

// TestFromMinimalUnits_FactorCero verifica que un factor cero nunca se usa
// como divisor: la conversión inversa falla con ErrInvalidConversion.
func TestFromMinimalUnits_FactorCero(t *testing.T) {
	p := productWithUnits()

	_, err := stock.FromMinimalUnits(p, decimal.NewFromInt(10), "ROTA")
	assert.ErrorIs(t, err, domain.ErrInvalidConversion, "factor cero debe ser falta de configuración, no división por cero")

	// Con factor cero hacia unidad mínima el resultado es cero (sin convertibilidad).
	got := stock.ToMinimalUnits(p, decimal.NewFromInt(10), "ROTA")
	assert.True(t, got.IsZero())
}

// TestConversion_RoundTrip verifica que para cualquier unidad con factor
// distinto de cero, convertir ida y vuelta devuelve la cantidad original.
func TestConversion_RoundTrip(t *testing.T) {
	p := productWithUnits()

	for _, unitCode := range []string{"", "UND", "SIXPACK", "CAJA"} {
		q := decimal.NewFromFloat(3.5)
		enUnidad, err := stock.FromMinimalUnits(p, stock.ToMinimalUnits(p, q, unitCode), unitCode)
		require.NoError(t, err, "unidad %q", unitCode)
		assert.True(t, enUnidad.Equal(q), "round-trip en %q: esperado %s, obtenido %s", unitCode, q, enUnidad)
	}
}

// TestDescribeConversion_ProductoNil no debe entrar en pánico con producto nil.
func TestDescribeConversion_ProductoNil(t *testing.T) {
	conv := stock.DescribeConversion(nil, "CAJA")
	assert.True(t, conv.Factor.Equal(decimal.NewFromInt(1)))
}
