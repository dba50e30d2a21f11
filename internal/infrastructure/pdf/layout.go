// Package pdf genera PDFs con Maroto v2: la exportación de cualquier reporte tabular y la
// representación imprimible de una factura.
package pdf

import (
	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 248}
)

const gridSize = 12

func newDocument(title, author string, landscape bool) core.Maroto {
	b := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true)
	if landscape {
		b = b.WithOrientation(orientation.Horizontal)
	}
	return maroto.New(b.Build())
}

func separator(thickness float64) core.Row {
	return line.NewRow(1, props.Line{Color: colorPrimary, Thickness: thickness})
}

// colSizes reparte la grilla de 12 entre n columnas; el sobrante va a la primera.
func colSizes(n int) []int {
	if n <= 0 {
		return nil
	}
	if n > gridSize {
		n = gridSize
	}
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = gridSize / n
	}
	sizes[0] += gridSize % n
	return sizes
}

// tableRow una fila de tabla; header pinta fondo primario y texto blanco.
func tableRow(cells []string, aligns []align.Type, header, striped bool) core.Row {
	sizes := colSizes(len(cells))
	cols := make([]core.Col, 0, len(sizes))
	for i, size := range sizes {
		p := props.Text{Size: 8, Top: 1.5, Left: 1, Right: 1, Align: aligns[i]}
		if header {
			p.Style = fontstyle.Bold
			p.Color = colorWhite
		}
		cols = append(cols, col.New(size).Add(text.New(cells[i], p)))
	}
	r := row.New(7).Add(cols...)
	switch {
	case header:
		r.WithStyle(&props.Cell{BackgroundColor: colorPrimary})
	case striped:
		r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
	}
	return r
}
