package format_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/intelliservice-api/internal/domain/report"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/format"
)

func TestMoney_SeparadorDeMiles(t *testing.T) {
	assert.Equal(t, "$1,234,567.50", format.Money(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "$0.00", format.Money(decimal.Zero))
	assert.Equal(t, "-$42.10", format.Money(decimal.RequireFromString("-42.1")))
}

func TestPercentYNumber(t *testing.T) {
	assert.Equal(t, "87.5%", format.Percent(decimal.RequireFromString("87.5")))
	assert.Equal(t, "1,200", format.Number(decimal.NewFromInt(1200)))
	assert.Equal(t, "3.25", format.Number(decimal.RequireFromString("3.25")))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "In Progress", format.Label("in_progress"))
	assert.Equal(t, "Paid", format.Label("paid"))
}

func TestCell_PorTipoDeColumna(t *testing.T) {
	var none *time.Time
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "$10.00", format.Cell(report.KindMoney, decimal.NewFromInt(10)))
	assert.Equal(t, "10.0%", format.Cell(report.KindPercent, decimal.NewFromInt(10)))
	assert.Equal(t, "1,500", format.Cell(report.KindInt, 1500))
	assert.Equal(t, "Mar 5, 2024", format.Cell(report.KindDate, d))
	assert.Equal(t, "Mar 5, 2024", format.Cell(report.KindDate, &d))
	assert.Equal(t, "-", format.Cell(report.KindDate, none))
	assert.Equal(t, "-", format.Cell(report.KindText, nil))
	assert.Equal(t, "N/A", format.Cell(report.KindText, "N/A"))
}
