package report

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// DSOTarget meta de cobro mostrada junto al indicador.
const DSOTarget = "30 days"

// AgingRow monto y cantidad de facturas abiertas en un bucket.
type AgingRow struct {
	Bucket  string          `json:"bucket"`
	Count   int             `json:"count"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

// DSOSummary días de venta pendientes de cobro más la antigüedad de cartera.
type DSOSummary struct {
	DSO           decimal.Decimal `json:"dso"`
	Target        string          `json:"target"`
	TotalAR       decimal.Decimal `json:"total_ar"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	AvgDailySales decimal.Decimal `json:"avg_daily_sales"`
	PeriodDays    int             `json:"period_days"`
	Aging         []AgingRow      `json:"aging"`
}

// ReduceDSO recibe las facturas abiertas (cualquier fecha) y las del período.
// Cartera = facturas no pagadas ni anuladas; ventas = facturas no anuladas con fecha dentro del rango.
// Las facturas abiertas sin fecha de vencimiento cuentan en la cartera pero no en la antigüedad.
func ReduceDSO(invoices []entity.Invoice, r DateRange) DSOSummary {
	buckets := make(map[string]*AgingRow, len(AgingBuckets))
	aging := make([]AgingRow, len(AgingBuckets))
	for i, b := range AgingBuckets {
		aging[i] = AgingRow{Bucket: b}
		buckets[b] = &aging[i]
	}

	var totalAR, totalSales decimal.Decimal
	for _, inv := range invoices {
		if r.Contains(inv.InvoiceDate) {
			totalSales = totalSales.Add(inv.TotalAmount)
		}
		if !entity.IsOpenInvoiceStatus(inv.Status) {
			continue
		}
		totalAR = totalAR.Add(inv.TotalAmount)
		if inv.DueDate == nil {
			continue
		}
		row := buckets[ClassifyAging(DaysOverdue(*inv.DueDate, r.AsOf))]
		row.Count++
		row.Amount = row.Amount.Add(inv.TotalAmount)
	}

	for i := range aging {
		aging[i].Percent = percentOf(aging[i].Amount, totalAR)
		aging[i].Amount = aging[i].Amount.Round(2)
	}

	days := r.Days()
	avgDaily := decimal.Zero
	if days > 0 {
		avgDaily = totalSales.Div(decimal.NewFromInt(int64(days)))
	}

	return DSOSummary{
		DSO:           DaysSalesOutstanding(totalAR, avgDaily),
		Target:        DSOTarget,
		TotalAR:       totalAR.Round(2),
		TotalSales:    totalSales.Round(2),
		AvgDailySales: avgDaily.Round(2),
		PeriodDays:    days,
		Aging:         aging,
	}
}

// Table implementa Tabular.
func (s DSOSummary) Table() Table {
	t := Table{
		Title: "Days Sales Outstanding",
		Columns: []Column{
			{"Aging Bucket", KindText}, {"Invoice Count", KindInt}, {"Amount", KindMoney}, {"% of Total", KindPercent},
		},
		Stats: []Stat{
			{"DSO", s.DSO, KindNumber},
			{"DSO Target", s.Target, KindText},
			{"Total AR", s.TotalAR, KindMoney},
			{"Avg Daily Sales", s.AvgDailySales, KindMoney},
		},
	}
	for _, a := range s.Aging {
		t.Rows = append(t.Rows, []any{a.Bucket, a.Count, a.Amount, a.Percent})
	}
	return t
}
