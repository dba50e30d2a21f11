package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

const laborTopN = 10

// TechnicianLaborRow horas por técnico.
type TechnicianLaborRow struct {
	TechnicianID     string          `json:"technician_id"`
	Name             string          `json:"name"`
	BillableHours    decimal.Decimal `json:"billable_hours"`
	NonBillableHours decimal.Decimal `json:"non_billable_hours"`
	TotalHours       decimal.Decimal `json:"total_hours"`
	Utilization      decimal.Decimal `json:"utilization"`
}

// LaborSummary eficiencia de mano de obra.
type LaborSummary struct {
	TotalHours       decimal.Decimal      `json:"total_hours"`
	BillableHours    decimal.Decimal      `json:"billable_hours"`
	NonBillableHours decimal.Decimal      `json:"non_billable_hours"`
	Utilization      decimal.Decimal      `json:"utilization"`
	LaborBilled      decimal.Decimal      `json:"labor_billed"`
	LaborCost        decimal.Decimal      `json:"labor_cost"`
	LaborMargin      decimal.Decimal      `json:"labor_margin"`
	Technicians      []TechnicianLaborRow `json:"technicians"`
}

// ReduceLabor agrega registros de horas con entrada dentro del rango. Los registros sin salida
// se ignoran. Solo los facturables suman a lo facturado; todos suman al costo.
func ReduceLabor(logs []entity.TimeLog, r DateRange) LaborSummary {
	var out LaborSummary
	byTech := map[string]*TechnicianLaborRow{}
	var order []*TechnicianLaborRow

	for _, tl := range logs {
		if tl.ClockOut == nil || !r.Contains(tl.ClockIn) {
			continue
		}
		row, ok := byTech[tl.TechnicianID]
		if !ok {
			name := tl.TechnicianName
			if name == "" {
				name = "Unknown"
			}
			row = &TechnicianLaborRow{TechnicianID: tl.TechnicianID, Name: name}
			byTech[tl.TechnicianID] = row
			order = append(order, row)
		}

		hours := tl.Hours()
		if tl.Billable() {
			row.BillableHours = row.BillableHours.Add(hours)
			out.BillableHours = out.BillableHours.Add(hours)
			out.LaborBilled = out.LaborBilled.Add(tl.BillingAmount)
		} else {
			row.NonBillableHours = row.NonBillableHours.Add(hours)
			out.NonBillableHours = out.NonBillableHours.Add(hours)
		}
		out.LaborCost = out.LaborCost.Add(tl.CostAmount)
	}

	for _, row := range order {
		row.TotalHours = row.BillableHours.Add(row.NonBillableHours)
		row.Utilization = Utilization(row.BillableHours, row.TotalHours)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].BillableHours.GreaterThan(order[j].BillableHours)
	})

	out.TotalHours = out.BillableHours.Add(out.NonBillableHours)
	out.Utilization = Utilization(out.BillableHours, out.TotalHours)
	out.LaborMargin = out.LaborBilled.Sub(out.LaborCost).Round(2)
	out.TotalHours = out.TotalHours.Round(2)
	out.BillableHours = out.BillableHours.Round(2)
	out.NonBillableHours = out.NonBillableHours.Round(2)
	out.LaborBilled = out.LaborBilled.Round(2)
	out.LaborCost = out.LaborCost.Round(2)

	out.Technicians = make([]TechnicianLaborRow, 0, min(len(order), laborTopN))
	for i, row := range order {
		if i == laborTopN {
			break
		}
		row.BillableHours = row.BillableHours.Round(2)
		row.NonBillableHours = row.NonBillableHours.Round(2)
		row.TotalHours = row.TotalHours.Round(2)
		out.Technicians = append(out.Technicians, *row)
	}
	return out
}

// Table implementa Tabular.
func (s LaborSummary) Table() Table {
	t := Table{
		Title: "Labor Efficiency",
		Columns: []Column{
			{"Technician", KindText}, {"Billable Hours", KindNumber}, {"Non-Billable Hours", KindNumber},
			{"Total Hours", KindNumber}, {"Utilization", KindPercent},
		},
		Stats: []Stat{
			{"Total Hours", s.TotalHours, KindNumber},
			{"Utilization", s.Utilization, KindPercent},
			{"Labor Billed", s.LaborBilled, KindMoney},
			{"Labor Cost", s.LaborCost, KindMoney},
			{"Labor Margin", s.LaborMargin, KindMoney},
		},
	}
	for _, row := range s.Technicians {
		t.Rows = append(t.Rows, []any{row.Name, row.BillableHours, row.NonBillableHours, row.TotalHours, row.Utilization})
	}
	return t
}
