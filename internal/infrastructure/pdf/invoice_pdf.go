package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/jhoicas/intelliservice-api/internal/application/billing"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/format"
)

var _ appbilling.InvoicePDFGenerator = (*InvoiceGenerator)(nil)

// InvoiceGenerator representación imprimible de una factura.
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  [logo] Empresa              │  INVOICE N° + fechas         │
//	│  BILL TO: cliente                                           │
//	│  TABLA: Descripción | Tipo | Cant | P.Unit | Total          │
//	│  TOTALES: Subtotal / Tax / Total                            │
//	│  Notas                                                      │
//	└─────────────────────────────────────────────────────────────┘
type InvoiceGenerator struct{}

// NewInvoiceGenerator construye el generador.
func NewInvoiceGenerator() *InvoiceGenerator { return &InvoiceGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes. logo son los bytes PNG/JPG del logo
// de la empresa; puede ser nil.
func (g *InvoiceGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.Invoice,
	lines []entity.InvoiceLineItem,
	companyName string,
	logo []byte,
) ([]byte, error) {
	m := newDocument("Invoice "+invoice.InvoiceNumber, companyName, false)

	m.AddRows(invoiceHeader(invoice, companyName, logo))
	m.AddRows(separator(0.5))
	m.AddRows(billToRow(invoice))
	m.AddRows(separator(0.3))

	aligns := []align.Type{align.Left, align.Left, align.Right, align.Right, align.Right}
	m.AddRows(tableRow([]string{"Description", "Type", "Qty", "Unit Price", "Total"}, aligns, true, false))
	for i, l := range lines {
		m.AddRows(tableRow([]string{
			l.Description,
			format.Label(l.ItemType),
			format.Number(l.Quantity),
			format.Money(l.UnitPrice),
			format.Money(l.LineTotal),
		}, aligns, false, i%2 == 1))
	}

	m.AddRows(separator(0.3))
	m.AddRows(invoiceTotals(invoice))
	if invoice.Notes != "" {
		m.AddRows(row.New(12).Add(col.New(12).Add(
			text.New("Notes", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
			text.New(invoice.Notes, props.Text{Size: 8, Top: 7, Color: colorGray}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar factura: %w", err)
	}
	return doc.GetBytes(), nil
}

func invoiceHeader(inv *entity.Invoice, companyName string, logo []byte) core.Row {
	name := text.New(companyName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1})

	due := "-"
	if inv.DueDate != nil {
		due = inv.DueDate.Format(format.DateLayout)
	}
	right := col.New(5).Add(
		text.New("INVOICE", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
		text.New(inv.InvoiceNumber, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
		text.New("Date: "+inv.InvoiceDate.Format(format.DateLayout)+"   Due: "+due, props.Text{
			Size: 8, Align: align.Right, Top: 13, Color: colorGray,
		}),
	)

	if ext, ok := imageExtension(logo); ok {
		return row.New(20).Add(
			col.New(2).Add(image.NewFromBytes(logo, ext, props.Rect{Percent: 90, Center: true})),
			col.New(5).Add(name),
			right,
		)
	}
	return row.New(20).Add(col.New(7).Add(name), right)
}

func billToRow(inv *entity.Invoice) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("BILL TO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(inv.CustomerName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		),
		col.New(4).Add(
			text.New("Status: "+format.Label(inv.Status), props.Text{Size: 8, Align: align.Right, Top: 6, Color: colorGray}),
		),
	)
}

func invoiceTotals(inv *entity.Invoice) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64, bold bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}
		if bold {
			p.Style = fontstyle.Bold
			p.Color = colorPrimary
		}
		return text.New(s, p)
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(label("Subtotal:", 1), label("Tax:", 6), label("TOTAL:", 11)),
		col.New(3).Add(
			value(format.Money(inv.Subtotal), 1, false),
			value(format.Money(inv.TaxAmount), 6, false),
			value(format.Money(inv.TotalAmount), 11, true),
		),
	)
}

// imageExtension detecta PNG o JPG por la firma del archivo.
func imageExtension(b []byte) (extension.Type, bool) {
	switch {
	case len(b) > 8 && string(b[1:4]) == "PNG":
		return extension.Png, true
	case len(b) > 3 && b[0] == 0xFF && b[1] == 0xD8:
		return extension.Jpg, true
	}
	return "", false
}
