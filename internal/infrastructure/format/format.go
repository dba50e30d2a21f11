// Package format formatea celdas de reportes para los exportadores (montos con separador de miles,
// porcentajes, fechas).
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/intelliservice-api/internal/domain/report"
)

// Los montos se expresan en USD.
var (
	printer = message.NewPrinter(language.AmericanEnglish)
	titler  = cases.Title(language.AmericanEnglish)
)

const DateLayout = "Jan 2, 2006"

// Money "$1,234.50"; negativos como "-$1,234.50".
func Money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	if f < 0 {
		return printer.Sprintf("-$%.2f", -f)
	}
	return printer.Sprintf("$%.2f", f)
}

// Percent "87.5%".
func Percent(d decimal.Decimal) string {
	f, _ := d.Round(1).Float64()
	return printer.Sprintf("%.1f%%", f)
}

// Number "1,234.5" con hasta dos decimales.
func Number(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	if d.Round(2).Equal(d.Truncate(0)) {
		return printer.Sprintf("%.0f", f)
	}
	return printer.Sprintf("%.2f", f)
}

// Label "in_progress" -> "In Progress".
func Label(s string) string {
	return titler.String(strings.ReplaceAll(s, "_", " "))
}

// Cell texto de una celda según el tipo de columna. Celdas nil o fechas vacías se muestran como "-".
func Cell(kind report.ColumnKind, v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case decimal.Decimal:
		switch kind {
		case report.KindMoney:
			return Money(x)
		case report.KindPercent:
			return Percent(x)
		default:
			return Number(x)
		}
	case int:
		return printer.Sprintf("%d", x)
	case time.Time:
		if x.IsZero() {
			return "-"
		}
		return x.Format(DateLayout)
	case *time.Time:
		if x == nil || x.IsZero() {
			return "-"
		}
		return x.Format(DateLayout)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
