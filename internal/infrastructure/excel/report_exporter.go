// Package excel exporta reportes a XLSX con excelize.
package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/intelliservice-api/internal/application/analytics"
	"github.com/jhoicas/intelliservice-api/internal/domain/report"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/format"
)

var _ analytics.Exporter = (*ReportExporter)(nil)

const sheet = "Report"

// ReportExporter genera un libro con una hoja: encabezado, tarjetas de resumen y la tabla.
// Montos, porcentajes y fechas se escriben como valores numéricos con formato de celda
// para que se puedan sumar y ordenar en la hoja.
type ReportExporter struct{}

// NewReportExporter construye el exportador.
func NewReportExporter() *ReportExporter { return &ReportExporter{} }

func (e *ReportExporter) Format() string { return "xlsx" }

func (e *ReportExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type styles struct {
	title, bold, header, money, percent, number, date int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	moneyFmt := `"$"#,##0.00`
	numberFmt := `#,##0.##`
	dateFmt := "yyyy-mm-dd"
	percentFmt := "0.0%"
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Color: "00467F"}}},
		{&s.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&s.header, &excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00467F"}},
		}},
		{&s.money, &excelize.Style{CustomNumFmt: &moneyFmt}},
		{&s.percent, &excelize.Style{CustomNumFmt: &percentFmt}},
		{&s.number, &excelize.Style{CustomNumFmt: &numberFmt}},
		{&s.date, &excelize.Style{CustomNumFmt: &dateFmt}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, err
		}
		*d.dst = id
	}
	return s, nil
}

// Export escribe el documento y devuelve los bytes del XLSX.
func (e *ReportExporter) Export(doc report.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("excel: hoja: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("excel: estilos: %w", err)
	}
	w := &writer{f: f, st: st}

	w.set(1, 1, doc.Title, st.title)
	w.set(2, 1, doc.CompanyName, st.bold)
	w.set(3, 1, fmt.Sprintf("Period: %s to %s", doc.Period.StartDate, doc.Period.EndDate), 0)
	w.set(4, 1, "Generated: "+doc.GeneratedAt.Format(time.RFC3339), 0)
	row := 5
	if doc.Degraded {
		w.set(row, 1, "Data could not be loaded; figures are empty.", st.bold)
		row++
	}

	row++
	for _, s := range doc.Stats {
		w.set(row, 1, s.Label, st.bold)
		w.value(row, 2, s.Kind, s.Value)
		row++
	}

	row++
	for i, c := range doc.Columns {
		w.set(row, i+1, c.Header, st.header)
	}
	for _, cells := range doc.Rows {
		row++
		for i, v := range cells {
			kind := report.KindText
			if i < len(doc.Columns) {
				kind = doc.Columns[i].Kind
			}
			w.value(row, i+1, kind, v)
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("excel: celdas: %w", w.err)
	}

	if n := len(doc.Columns); n > 0 {
		last, _ := excelize.ColumnNumberToName(n)
		_ = f.SetColWidth(sheet, "A", last, 18)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

// writer acumula el primer error para no chequear cada celda.
type writer struct {
	f   *excelize.File
	st  styles
	err error
}

func (w *writer) set(row, col int, v any, style int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(sheet, cell, v); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(sheet, cell, cell, style)
	}
}

func (w *writer) value(row, col int, kind report.ColumnKind, v any) {
	switch x := v.(type) {
	case decimal.Decimal:
		f, _ := x.Float64()
		switch kind {
		case report.KindMoney:
			w.set(row, col, f, w.st.money)
		case report.KindPercent:
			w.set(row, col, f/100, w.st.percent)
		default:
			w.set(row, col, f, w.st.number)
		}
	case int:
		w.set(row, col, x, 0)
	case time.Time:
		w.set(row, col, x, w.st.date)
	case *time.Time:
		if x == nil {
			w.set(row, col, "-", 0)
			return
		}
		w.set(row, col, *x, w.st.date)
	default:
		w.set(row, col, format.Cell(kind, v), 0)
	}
}
