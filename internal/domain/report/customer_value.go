package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

const customerValueTopN = 20

// CustomerValueData clientes, sus facturas desde el inicio del período y la última fecha de servicio
// completado por cliente.
type CustomerValueData struct {
	Customers   []entity.Customer
	Invoices    []entity.Invoice
	LastService map[string]time.Time
}

// CustomerValueRow valor de un cliente.
type CustomerValueRow struct {
	CustomerID      string          `json:"customer_id"`
	Name            string          `json:"name"`
	LifetimeRevenue decimal.Decimal `json:"lifetime_revenue"`
	OpenAR          decimal.Decimal `json:"open_ar"`
	InvoiceCount    int             `json:"invoice_count"`
	LastService     *time.Time      `json:"last_service,omitempty"`
}

// CustomerValueSummary resumen del reporte de valor de clientes.
type CustomerValueSummary struct {
	TotalCustomers     int                `json:"total_customers"`
	TopCustomerName    string             `json:"top_customer_name"`
	TopCustomerRevenue decimal.Decimal    `json:"top_customer_revenue"`
	AverageRevenue     decimal.Decimal    `json:"average_revenue"`
	TotalRevenue       decimal.Decimal    `json:"total_revenue"`
	TotalOpenAR        decimal.Decimal    `json:"total_open_ar"`
	Customers          []CustomerValueRow `json:"customers"`
}

// ReduceCustomerValue calcula ingreso acumulado y cartera abierta por cliente, ordena por ingreso
// descendente y conserva los 20 primeros.
func ReduceCustomerValue(d CustomerValueData, r DateRange) CustomerValueSummary {
	byCustomer := make(map[string]*CustomerValueRow, len(d.Customers))
	rows := make([]*CustomerValueRow, 0, len(d.Customers))
	for _, c := range d.Customers {
		row := &CustomerValueRow{CustomerID: c.ID, Name: c.Name}
		if last, ok := d.LastService[c.ID]; ok {
			t := last
			row.LastService = &t
		}
		byCustomer[c.ID] = row
		rows = append(rows, row)
	}

	for _, inv := range d.Invoices {
		if inv.InvoiceDate.Before(r.Start) {
			continue
		}
		row, ok := byCustomer[inv.CustomerID]
		if !ok {
			continue
		}
		row.LifetimeRevenue = row.LifetimeRevenue.Add(inv.TotalAmount)
		row.InvoiceCount++
		if entity.IsOpenInvoiceStatus(inv.Status) {
			row.OpenAR = row.OpenAR.Add(inv.TotalAmount)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LifetimeRevenue.GreaterThan(rows[j].LifetimeRevenue)
	})

	out := CustomerValueSummary{
		TotalCustomers:  len(rows),
		TopCustomerName: "N/A",
		Customers:       make([]CustomerValueRow, 0, min(len(rows), customerValueTopN)),
	}
	for _, row := range rows {
		out.TotalRevenue = out.TotalRevenue.Add(row.LifetimeRevenue)
		out.TotalOpenAR = out.TotalOpenAR.Add(row.OpenAR)
	}
	if len(rows) > 0 {
		out.TopCustomerName = rows[0].Name
		out.TopCustomerRevenue = rows[0].LifetimeRevenue.Round(2)
		out.AverageRevenue = out.TotalRevenue.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
	}
	for i, row := range rows {
		if i == customerValueTopN {
			break
		}
		row.LifetimeRevenue = row.LifetimeRevenue.Round(2)
		row.OpenAR = row.OpenAR.Round(2)
		out.Customers = append(out.Customers, *row)
	}
	out.TotalRevenue = out.TotalRevenue.Round(2)
	out.TotalOpenAR = out.TotalOpenAR.Round(2)
	return out
}

// Table implementa Tabular.
func (s CustomerValueSummary) Table() Table {
	t := Table{
		Title: "Customer Value",
		Columns: []Column{
			{"Customer", KindText}, {"Lifetime Revenue", KindMoney}, {"Last Service", KindDate}, {"Open AR", KindMoney},
		},
		Stats: []Stat{
			{"Total Customers", s.TotalCustomers, KindInt},
			{"Top Customer", s.TopCustomerName, KindText},
			{"Top Customer Revenue", s.TopCustomerRevenue, KindMoney},
			{"Average Revenue", s.AverageRevenue, KindMoney},
		},
	}
	for _, c := range s.Customers {
		t.Rows = append(t.Rows, []any{c.Name, c.LifetimeRevenue, c.LastService, c.OpenAR})
	}
	return t
}
