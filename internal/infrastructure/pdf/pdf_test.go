package pdf_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/report"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/pdf"
)

func TestReportExporter_GeneraPDF(t *testing.T) {
	doc := report.Document{
		Table: report.Table{
			Title: "Labor Efficiency",
			Columns: []report.Column{
				{Header: "Technician", Kind: report.KindText},
				{Header: "Billable Hours", Kind: report.KindNumber},
				{Header: "Non-Billable Hours", Kind: report.KindNumber},
				{Header: "Total Hours", Kind: report.KindNumber},
				{Header: "Utilization", Kind: report.KindPercent},
				{Header: "Billed", Kind: report.KindMoney},
			},
			Rows: [][]any{
				{"Luis", decimal.NewFromInt(35), decimal.NewFromInt(5), decimal.NewFromInt(40), decimal.RequireFromString("87.5"), decimal.NewFromInt(7000)},
			},
			Stats: []report.Stat{
				{Label: "Utilization", Value: decimal.RequireFromString("87.5"), Kind: report.KindPercent},
				{Label: "Labor Billed", Value: decimal.NewFromInt(7000), Kind: report.KindMoney},
				{Label: "Labor Cost", Value: decimal.NewFromInt(2400), Kind: report.KindMoney},
			},
		},
		CompanyName: "Frío Total",
		Period:      report.Period{StartDate: "2024-03-01", EndDate: "2024-03-31"},
		GeneratedAt: time.Now(),
	}

	out, err := pdf.NewReportExporter().Export(doc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestReportExporter_ReporteVacio(t *testing.T) {
	out, err := pdf.NewReportExporter().Export(report.Document{Table: report.Table{Title: "DSO"}, Degraded: true})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestInvoiceGenerator_GeneraPDF(t *testing.T) {
	due := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		InvoiceNumber: "INV-2401-0043",
		CustomerName:  "American Home Shield",
		InvoiceDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:       &due,
		Status:        entity.InvoiceStatusDraft,
		Subtotal:      decimal.NewFromInt(344),
		TotalAmount:   decimal.NewFromInt(344),
		Notes:         "AHS Warranty - Dispatch #D-77 - Ticket T-1001",
	}
	lines := []entity.InvoiceLineItem{
		{Description: "AHS Diagnosis Fee", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(94), LineTotal: decimal.NewFromInt(94), ItemType: entity.ItemTypeService},
		{Description: "Compressor", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(250), LineTotal: decimal.NewFromInt(250), ItemType: entity.ItemTypePart},
	}

	out, err := pdf.NewInvoiceGenerator().GenerateInvoicePDF(context.Background(), inv, lines, "Frío Total", nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
