// Package pdf genera el reporte de caducidades en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Almacén + título    │  Horizonte + fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: caducados / críticos / advertencia / normales      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Lote | Producto | Cat. | Cant. | Caduca | Días | Rgo │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda FIFO                                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
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

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

var _ inventory.ExpirationReportGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorRed     = &props.Color{Red: 180, Green: 20, Blue: 20}
	colorOrange  = &props.Color{Red: 200, Green: 110, Blue: 0}
)

var riskLabels = map[string]string{
	"expired":  "Caducado",
	"critical": "Crítico",
	"warning":  "Advertencia",
	"normal":   "Normal",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.ExpirationReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	warehouseName string
}

// NewMarotoPDFGenerator construye el generador; warehouseName va en el encabezado.
func NewMarotoPDFGenerator(warehouseName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{warehouseName: warehouseName}
}

// GenerateExpirationReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateExpirationReport(rows []entity.ExpirationRow, days int, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de caducidades", true).
		WithAuthor(nonEmpty(g.warehouseName, "Almacén"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.warehouseName, days, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(rows))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(rows) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Sin lotes por caducar en los próximos %d días.", days), props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	m.AddRows(tableDetailRows(rows)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(warehouse string, days int, generatedAt time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(warehouse, "Almacén"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("REPORTE DE CADUCIDADES", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("Próximos %d días", days), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 2,
			}),
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

// summaryRow conteo de lotes por nivel de riesgo.
func summaryRow(rows []entity.ExpirationRow) core.Row {
	counts := map[string]int{}
	units := 0
	for _, r := range rows {
		counts[r.Risk]++
		units += r.Lot.Quantity
	}
	cell := func(label string, n int, c *props.Color) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(strconv.Itoa(n), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Color: c, Top: 5}),
		)
	}
	return row.New(14).Add(
		cell("Caducados", counts["expired"], colorRed),
		cell("Críticos", counts["critical"], colorRed),
		cell("Advertencia", counts["warning"], colorOrange),
		cell("Normales", counts["normal"], colorPrimary),
		cell("Lotes", len(rows), colorPrimary),
		cell("Unidades", units, colorPrimary),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Lote", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Categoría", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Caduca", 2, align.Center),
		h("Días", 1, align.Right),
		h("Riesgo", 1, align.Center),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows una fila por lote; el riesgo se colorea.
func tableDetailRows(rows []entity.ExpirationRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
		}
		expires := "—"
		if r.Lot.ExpirationDate != nil {
			expires = r.Lot.ExpirationDate.Format("02/01/2006")
		}
		result = append(result, row.New(7).Add(
			cell(r.Lot.LotNumber, 2, align.Left),
			cell(r.Lot.ProductName, 3, align.Left),
			cell(nonEmpty(r.Lot.Category, "—"), 2, align.Left),
			cell(strconv.Itoa(r.Lot.Quantity), 1, align.Right),
			cell(expires, 2, align.Center),
			cell(strconv.Itoa(r.DaysLeft), 1, align.Right),
			col.New(1).Add(text.New(riskLabel(r.Risk), props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Center, Top: 1.5, Color: riskColor(r.Risk),
			})),
		))
	}
	return result
}

func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Despache primero los lotes de caducidad más próxima (FIFO). "+
				"Los lotes caducados deben retirarse y reportarse como incidencia de calidad.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func riskLabel(risk string) string {
	if l, ok := riskLabels[risk]; ok {
		return l
	}
	return risk
}

func riskColor(risk string) *props.Color {
	switch risk {
	case "expired", "critical":
		return colorRed
	case "warning":
		return colorOrange
	}
	return colorGray
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
