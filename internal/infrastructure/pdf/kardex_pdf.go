// Package pdf implementa la generación del reporte kardex de un producto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre + SKU del producto  │  Fecha del reporte    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: unidad mínima + stock total actual                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Motivo | Bodega | Cant | Antes | Desp │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: nota de auditoría                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/tu-usuario/retail-pro/internal/application/inventory"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.KardexPDFGenerator = (*MarotoKardexGenerator)(nil)

// MarotoKardexGenerator implementa inventory.KardexPDFGenerator usando Maroto v2.
type MarotoKardexGenerator struct{}

// NewMarotoKardexGenerator construye el generador.
func NewMarotoKardexGenerator() *MarotoKardexGenerator { return &MarotoKardexGenerator{} }

// GenerateKardexPDF genera el reporte y devuelve sus bytes. Los registros
// vienen como los entrega el kardex: más reciente primero.
func (g *MarotoKardexGenerator) GenerateKardexPDF(
	_ context.Context,
	product *entity.Product,
	records []*entity.MovementRecord,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+product.SKU, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(records) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(len(records)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: producto (izq) y fecha del reporte (der).
func headerRow(product *entity.Product) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(product.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("SKU: "+product.SKU, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// summaryRow: unidad mínima y stock total vigente.
func summaryRow(product *entity.Product) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Unidad mínima: %s   |   Stock total actual: %s",
				product.MinimalUnit,
				product.TotalStock().String(),
			), props.Text{Size: 9, Top: 2, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Motivo", 2, align.Left),
		h("Bodega", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Antes", 1, align.Right),
		h("Después", 2, align.Right),
	)
}

// tableRows: una fila por entrada del kardex.
func tableRows(records []*entity.MovementRecord) []core.Row {
	result := make([]core.Row, 0, len(records))
	for _, rec := range records {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				rec.CreatedAt.Format("02/01/2006 15:04"),
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				rec.Kind,
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				rec.ReasonCode,
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				rec.WarehouseCode,
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				rec.Quantity.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				rec.QuantityBefore.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				rec.QuantityAfter.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// footerRow: nota de auditoría.
func footerRow(count int) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			fmt.Sprintf("Reporte con los últimos %d movimientos del kardex. "+
				"El kardex es un libro de solo inserción: cada entrada conserva "+
				"las cantidades antes y después del movimiento.", count),
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}
