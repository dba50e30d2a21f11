package report

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// percentOf part/whole×100 redondeado a 2 decimales; cero si whole no es positivo.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// safeDiv a/b; cero si b no es positivo.
func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if !b.IsPositive() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Utilization horas facturables sobre horas totales, en porcentaje.
func Utilization(billable, total decimal.Decimal) decimal.Decimal {
	return percentOf(billable, total)
}

// Margin (ingreso - costo) / ingreso, en porcentaje. Cero si no hay ingreso.
func Margin(revenue, cost decimal.Decimal) decimal.Decimal {
	return percentOf(revenue.Sub(cost), revenue)
}

// PercentChange variación porcentual de prior a current. Cero si prior no es positivo.
func PercentChange(current, prior decimal.Decimal) decimal.Decimal {
	return percentOf(current.Sub(prior), prior)
}

// DaysSalesOutstanding cuentas por cobrar / venta diaria promedio. Cero si no hubo ventas.
func DaysSalesOutstanding(totalAR, avgDailySales decimal.Decimal) decimal.Decimal {
	return safeDiv(totalAR, avgDailySales).Round(2)
}
