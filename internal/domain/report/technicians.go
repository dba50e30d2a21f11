package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

const technicianTopN = 10

// FirstTimeFixRate valor fijo hasta que el backend registre visitas de retorno.
var FirstTimeFixRate = decimal.NewFromInt(85)

// TechnicianMetricsData tickets asignados creados en el rango, nombres de técnicos e ingreso
// facturado por ticket.
type TechnicianMetricsData struct {
	Tickets         []entity.Ticket
	TechnicianNames map[string]string
	RevenueByTicket map[string]decimal.Decimal
}

// TechnicianRow desempeño de un técnico.
type TechnicianRow struct {
	TechnicianID string          `json:"technician_id"`
	Name         string          `json:"name"`
	Tickets      int             `json:"tickets"`
	Completed    int             `json:"completed"`
	HoursOnsite  decimal.Decimal `json:"hours_onsite"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// TechnicianMetricsSummary métricas del equipo técnico.
type TechnicianMetricsSummary struct {
	TotalTickets     int             `json:"total_tickets"`
	CompletedTickets int             `json:"completed_tickets"`
	TechnicianCount  int             `json:"technician_count"`
	AvgOnsiteHours   decimal.Decimal `json:"avg_onsite_hours"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	RevenuePerTech   decimal.Decimal `json:"revenue_per_tech"`
	FirstTimeFixRate decimal.Decimal `json:"first_time_fix_rate"`
	Technicians      []TechnicianRow `json:"technicians"`
}

// ReduceTechnicianMetrics agrupa tickets por técnico asignado y ordena por cantidad de tickets.
func ReduceTechnicianMetrics(d TechnicianMetricsData, r DateRange) TechnicianMetricsSummary {
	out := TechnicianMetricsSummary{FirstTimeFixRate: FirstTimeFixRate}
	byTech := map[string]*TechnicianRow{}
	var order []*TechnicianRow
	var onsiteSum decimal.Decimal

	for _, t := range d.Tickets {
		if t.AssignedTo == nil || !r.Contains(t.CreatedAt) {
			continue
		}
		techID := *t.AssignedTo
		row, ok := byTech[techID]
		if !ok {
			name := d.TechnicianNames[techID]
			if name == "" {
				name = "Unknown"
			}
			row = &TechnicianRow{TechnicianID: techID, Name: name}
			byTech[techID] = row
			order = append(order, row)
		}

		out.TotalTickets++
		row.Tickets++
		if t.HoursOnsite != nil {
			row.HoursOnsite = row.HoursOnsite.Add(*t.HoursOnsite)
		}
		if t.Status == entity.TicketStatusCompleted {
			out.CompletedTickets++
			row.Completed++
			if t.HoursOnsite != nil {
				onsiteSum = onsiteSum.Add(*t.HoursOnsite)
			}
		}
		if rev, ok := d.RevenueByTicket[t.ID]; ok {
			row.Revenue = row.Revenue.Add(rev)
			out.TotalRevenue = out.TotalRevenue.Add(rev)
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].Tickets > order[j].Tickets })

	out.TechnicianCount = len(order)
	// completados sin horas registradas cuentan como 0
	if out.CompletedTickets > 0 {
		out.AvgOnsiteHours = onsiteSum.Div(decimal.NewFromInt(int64(out.CompletedTickets))).Round(2)
	}
	out.RevenuePerTech = out.TotalRevenue.Div(decimal.NewFromInt(int64(max(len(order), 1)))).Round(2)
	out.TotalRevenue = out.TotalRevenue.Round(2)

	out.Technicians = make([]TechnicianRow, 0, min(len(order), technicianTopN))
	for i, row := range order {
		if i == technicianTopN {
			break
		}
		row.HoursOnsite = row.HoursOnsite.Round(2)
		row.Revenue = row.Revenue.Round(2)
		out.Technicians = append(out.Technicians, *row)
	}
	return out
}

// Table implementa Tabular.
func (s TechnicianMetricsSummary) Table() Table {
	t := Table{
		Title: "Technician Metrics",
		Columns: []Column{
			{"Technician", KindText}, {"Tickets", KindInt}, {"Completed", KindInt},
			{"Hours Onsite", KindNumber}, {"Revenue", KindMoney},
		},
		Stats: []Stat{
			{"Total Tickets", s.TotalTickets, KindInt},
			{"Avg Onsite Hours", s.AvgOnsiteHours, KindNumber},
			{"Revenue per Tech", s.RevenuePerTech, KindMoney},
			{"First-Time Fix", s.FirstTimeFixRate, KindPercent},
		},
	}
	for _, row := range s.Technicians {
		t.Rows = append(t.Rows, []any{row.Name, row.Tickets, row.Completed, row.HoursOnsite, row.Revenue})
	}
	return t
}
