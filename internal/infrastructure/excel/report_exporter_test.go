package excel_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/intelliservice-api/internal/domain/report"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/excel"
)

func TestExport_EscribeEncabezadoResumenYTabla(t *testing.T) {
	doc := report.Document{
		Table: report.Table{
			Title: "Days Sales Outstanding",
			Columns: []report.Column{
				{Header: "Aging Bucket", Kind: report.KindText},
				{Header: "Invoice Count", Kind: report.KindInt},
				{Header: "Amount", Kind: report.KindMoney},
				{Header: "% of Total", Kind: report.KindPercent},
			},
			Rows: [][]any{
				{"Current", 2, decimal.NewFromInt(1500), decimal.NewFromInt(75)},
				{"1-30 days", 1, decimal.NewFromInt(500), decimal.NewFromInt(25)},
			},
			Stats: []report.Stat{{Label: "DSO", Value: decimal.RequireFromString("8.16"), Kind: report.KindNumber}},
		},
		CompanyName: "Frío Total",
		Period:      report.Period{StartDate: "2024-03-01", EndDate: "2024-03-31"},
		GeneratedAt: time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC),
	}

	out, err := excel.NewReportExporter().Export(doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	cell := func(name string) string {
		v, err := f.GetCellValue("Report", name)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Days Sales Outstanding", cell("A1"))
	assert.Equal(t, "Frío Total", cell("A2"))
	assert.Equal(t, "Period: 2024-03-01 to 2024-03-31", cell("A3"))

	// fila 6: resumen; fila 8: encabezado; 9 y 10: datos
	assert.Equal(t, "DSO", cell("A6"))
	assert.Equal(t, "Aging Bucket", cell("A8"))
	assert.Equal(t, "% of Total", cell("D8"))
	assert.Equal(t, "Current", cell("A9"))
	assert.Equal(t, "1-30 days", cell("A10"))

	raw, err := f.GetCellValue("Report", "C9", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1500", raw, "los montos se guardan como número")
}

func TestExport_ReporteDegradadoLoIndica(t *testing.T) {
	out, err := excel.NewReportExporter().Export(report.Document{
		Table:    report.Table{Title: "Labor Efficiency"},
		Degraded: true,
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Report", "A5")
	require.NoError(t, err)
	assert.Contains(t, v, "could not be loaded")
}
