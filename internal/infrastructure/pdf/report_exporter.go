package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/intelliservice-api/internal/application/analytics"
	"github.com/jhoicas/intelliservice-api/internal/domain/report"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/format"
)

var _ analytics.Exporter = (*ReportExporter)(nil)

// ReportExporter exporta cualquier reporte tabular a PDF.
//
// Layout:
//
//	┌──────────────────────────────────────────────┐
//	│  Empresa                   │  Título reporte │
//	│  Período / generado                          │
//	│  ──────────────────────────────────────────  │
//	│  Tarjetas de resumen (2 por fila)            │
//	│  ──────────────────────────────────────────  │
//	│  Tabla                                       │
//	└──────────────────────────────────────────────┘
type ReportExporter struct{}

// NewReportExporter construye el exportador.
func NewReportExporter() *ReportExporter { return &ReportExporter{} }

func (e *ReportExporter) Format() string      { return "pdf" }
func (e *ReportExporter) ContentType() string { return "application/pdf" }

// Export genera el PDF. Con más de cinco columnas la página va en horizontal.
func (e *ReportExporter) Export(doc report.Document) ([]byte, error) {
	m := newDocument(doc.Title, doc.CompanyName, len(doc.Columns) > 5)

	m.AddRows(reportHeader(doc))
	m.AddRows(separator(0.5))
	if doc.Degraded {
		m.AddRows(text.NewRow(7, "No se pudieron cargar los datos; las cifras están vacías.", props.Text{
			Style: fontstyle.Italic, Size: 8, Color: colorGray, Top: 1,
		}))
	}
	m.AddRows(statRows(doc.Stats)...)
	m.AddRows(separator(0.3))

	if len(doc.Columns) > 0 {
		aligns := make([]align.Type, len(doc.Columns))
		headers := make([]string, len(doc.Columns))
		for i, c := range doc.Columns {
			headers[i] = c.Header
			aligns[i] = columnAlign(c.Kind)
		}
		m.AddRows(tableRow(headers, aligns, true, false))
		for i, cells := range doc.Rows {
			m.AddRows(tableRow(formatCells(doc.Columns, cells), aligns, false, i%2 == 1))
		}
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return out.GetBytes(), nil
}

func reportHeader(doc report.Document) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(doc.CompanyName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("Período: %s a %s", doc.Period.StartDate, doc.Period.EndDate), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(doc.Title, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1}),
			text.New("Generado: "+doc.GeneratedAt.Format("2006-01-02 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// statRows tarjetas de resumen, dos por fila.
func statRows(stats []report.Stat) []core.Row {
	var rows []core.Row
	for i := 0; i < len(stats); i += 2 {
		r := row.New(10)
		for _, s := range stats[i:min(i+2, len(stats))] {
			r.Add(col.New(6).Add(
				text.New(s.Label, props.Text{Size: 7, Color: colorGray, Top: 1}),
				text.New(format.Cell(s.Kind, s.Value), props.Text{Style: fontstyle.Bold, Size: 10, Top: 4.5}),
			))
		}
		rows = append(rows, r)
	}
	return rows
}

func formatCells(cols []report.Column, cells []any) []string {
	out := make([]string, len(cols))
	for i := range cols {
		var v any
		if i < len(cells) {
			v = cells[i]
		}
		out[i] = format.Cell(cols[i].Kind, v)
	}
	return out
}

func columnAlign(k report.ColumnKind) align.Type {
	switch k {
	case report.KindText, report.KindDate:
		return align.Left
	default:
		return align.Right
	}
}
