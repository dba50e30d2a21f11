package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// RevenueTrendsData facturas del período actual y del período anterior de igual duración.
type RevenueTrendsData struct {
	Current []entity.Invoice
	Prior   []entity.Invoice
}

// MonthRevenue ingreso de un mes (YYYY-MM).
type MonthRevenue struct {
	Month        string          `json:"month"`
	Revenue      decimal.Decimal `json:"revenue"`
	InvoiceCount int             `json:"invoice_count"`
}

// RevenueTrendsSummary comparación contra el período anterior.
type RevenueTrendsSummary struct {
	CurrentRevenue      decimal.Decimal `json:"current_revenue"`
	PriorRevenue        decimal.Decimal `json:"prior_revenue"`
	ChangePercent       decimal.Decimal `json:"change_percent"`
	InvoiceCount        int             `json:"invoice_count"`
	AverageInvoiceValue decimal.Decimal `json:"average_invoice_value"`
	Months              []MonthRevenue  `json:"months"`
}

// ReduceRevenueTrends compara el ingreso del rango con el del rango anterior.
func ReduceRevenueTrends(d RevenueTrendsData, r DateRange) RevenueTrendsSummary {
	var out RevenueTrendsSummary
	months := map[string]*MonthRevenue{}

	for _, inv := range d.Current {
		if !r.Contains(inv.InvoiceDate) {
			continue
		}
		out.CurrentRevenue = out.CurrentRevenue.Add(inv.TotalAmount)
		out.InvoiceCount++

		key := inv.InvoiceDate.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &MonthRevenue{Month: key}
			months[key] = m
		}
		m.Revenue = m.Revenue.Add(inv.TotalAmount)
		m.InvoiceCount++
	}

	prior := r.Prior()
	for _, inv := range d.Prior {
		if inv.InvoiceDate.Before(prior.Start) || !inv.InvoiceDate.Before(prior.End) {
			continue
		}
		out.PriorRevenue = out.PriorRevenue.Add(inv.TotalAmount)
	}

	out.ChangePercent = PercentChange(out.CurrentRevenue, out.PriorRevenue)
	if out.InvoiceCount > 0 {
		out.AverageInvoiceValue = out.CurrentRevenue.Div(decimal.NewFromInt(int64(out.InvoiceCount))).Round(2)
	}
	out.CurrentRevenue = out.CurrentRevenue.Round(2)
	out.PriorRevenue = out.PriorRevenue.Round(2)

	out.Months = make([]MonthRevenue, 0, len(months))
	for _, m := range months {
		m.Revenue = m.Revenue.Round(2)
		out.Months = append(out.Months, *m)
	}
	sort.Slice(out.Months, func(i, j int) bool { return out.Months[i].Month < out.Months[j].Month })
	return out
}

// Table implementa Tabular.
func (s RevenueTrendsSummary) Table() Table {
	t := Table{
		Title:   "Revenue Trends",
		Columns: []Column{{"Month", KindText}, {"Invoices", KindInt}, {"Revenue", KindMoney}},
		Stats: []Stat{
			{"Current Revenue", s.CurrentRevenue, KindMoney},
			{"Prior Revenue", s.PriorRevenue, KindMoney},
			{"Change", s.ChangePercent, KindPercent},
			{"Average Invoice", s.AverageInvoiceValue, KindMoney},
		},
	}
	for _, m := range s.Months {
		t.Rows = append(t.Rows, []any{m.Month, m.InvoiceCount, m.Revenue})
	}
	return t
}
