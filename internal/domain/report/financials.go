package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// StatusRow totales por estado de factura.
type StatusRow struct {
	Status string          `json:"status"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// FinancialsSummary facturación, cobro, saldo pendiente y vencido del período.
type FinancialsSummary struct {
	InvoiceCount   int             `json:"invoice_count"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
	OverdueCount   int             `json:"overdue_count"`
	CollectionRate decimal.Decimal `json:"collection_rate"`
	ByStatus       []StatusRow     `json:"by_status"`
}

// ReduceFinancials resume las facturas emitidas dentro del rango.
func ReduceFinancials(invoices []entity.Invoice, r DateRange) FinancialsSummary {
	var out FinancialsSummary
	byStatus := map[string]*StatusRow{}

	for _, inv := range invoices {
		if !r.Contains(inv.InvoiceDate) {
			continue
		}
		out.InvoiceCount++
		out.TotalRevenue = out.TotalRevenue.Add(inv.TotalAmount)

		row, ok := byStatus[inv.Status]
		if !ok {
			row = &StatusRow{Status: inv.Status}
			byStatus[inv.Status] = row
		}
		row.Count++
		row.Amount = row.Amount.Add(inv.TotalAmount)

		if inv.Status == entity.InvoiceStatusPaid {
			out.PaidAmount = out.PaidAmount.Add(inv.TotalAmount)
			continue
		}
		if !entity.IsOpenInvoiceStatus(inv.Status) {
			continue
		}
		out.Outstanding = out.Outstanding.Add(inv.TotalAmount)
		if inv.DueDate != nil && inv.DueDate.Before(r.AsOf) {
			out.OverdueAmount = out.OverdueAmount.Add(inv.TotalAmount)
			out.OverdueCount++
		}
	}

	out.CollectionRate = percentOf(out.PaidAmount, out.TotalRevenue)
	out.TotalRevenue = out.TotalRevenue.Round(2)
	out.PaidAmount = out.PaidAmount.Round(2)
	out.Outstanding = out.Outstanding.Round(2)
	out.OverdueAmount = out.OverdueAmount.Round(2)

	out.ByStatus = make([]StatusRow, 0, len(byStatus))
	for _, row := range byStatus {
		row.Amount = row.Amount.Round(2)
		out.ByStatus = append(out.ByStatus, *row)
	}
	sort.Slice(out.ByStatus, func(i, j int) bool { return out.ByStatus[i].Status < out.ByStatus[j].Status })
	return out
}

// Table implementa Tabular.
func (s FinancialsSummary) Table() Table {
	t := Table{
		Title:   "Financial Summary",
		Columns: []Column{{"Status", KindText}, {"Invoices", KindInt}, {"Amount", KindMoney}},
		Stats: []Stat{
			{"Total Revenue", s.TotalRevenue, KindMoney},
			{"Paid", s.PaidAmount, KindMoney},
			{"Outstanding", s.Outstanding, KindMoney},
			{"Overdue", s.OverdueAmount, KindMoney},
			{"Overdue Invoices", s.OverdueCount, KindInt},
			{"Collection Rate", s.CollectionRate, KindPercent},
		},
	}
	for _, row := range s.ByStatus {
		t.Rows = append(t.Rows, []any{row.Status, row.Count, row.Amount})
	}
	return t
}
