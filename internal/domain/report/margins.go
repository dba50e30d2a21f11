package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// ProjectMarginRow rentabilidad de un proyecto (ingreso = presupuesto, costo = costo real).
type ProjectMarginRow struct {
	ProjectID string          `json:"project_id"`
	Name      string          `json:"name"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
	Margin    decimal.Decimal `json:"margin"`
}

// ProjectMarginsSummary resumen de márgenes por proyecto.
type ProjectMarginsSummary struct {
	ProjectCount   int                `json:"project_count"`
	TotalRevenue   decimal.Decimal    `json:"total_revenue"`
	TotalCost      decimal.Decimal    `json:"total_cost"`
	TotalProfit    decimal.Decimal    `json:"total_profit"`
	AverageMargin  decimal.Decimal    `json:"average_margin"`
	HighestProject string             `json:"highest_margin_project"`
	LowestProject  string             `json:"lowest_margin_project"`
	Projects       []ProjectMarginRow `json:"projects"`
}

// ReduceProjectMargins calcula margen por proyecto creado dentro del rango y ordena de mayor a menor.
// El margen promedio es la media simple de los márgenes, no el margen ponderado.
func ReduceProjectMargins(projects []entity.Project, r DateRange) ProjectMarginsSummary {
	out := ProjectMarginsSummary{HighestProject: "N/A", LowestProject: "N/A"}
	rows := make([]ProjectMarginRow, 0, len(projects))
	var marginSum decimal.Decimal

	for _, p := range projects {
		if !r.Contains(p.CreatedAt) {
			continue
		}
		row := ProjectMarginRow{
			ProjectID: p.ID,
			Name:      p.Name,
			Revenue:   p.Budget.Round(2),
			Cost:      p.ActualCost.Round(2),
			Profit:    p.Budget.Sub(p.ActualCost).Round(2),
			Margin:    Margin(p.Budget, p.ActualCost),
		}
		marginSum = marginSum.Add(row.Margin)
		out.TotalRevenue = out.TotalRevenue.Add(row.Revenue)
		out.TotalCost = out.TotalCost.Add(row.Cost)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Margin.GreaterThan(rows[j].Margin) })

	out.ProjectCount = len(rows)
	out.TotalProfit = out.TotalRevenue.Sub(out.TotalCost)
	out.Projects = rows
	if len(rows) > 0 {
		out.AverageMargin = marginSum.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
		out.HighestProject = rows[0].Name
		out.LowestProject = rows[len(rows)-1].Name
	}
	return out
}

// Table implementa Tabular.
func (s ProjectMarginsSummary) Table() Table {
	t := Table{
		Title: "Project Margins",
		Columns: []Column{
			{"Project", KindText}, {"Revenue", KindMoney}, {"Cost", KindMoney}, {"Profit", KindMoney}, {"Margin", KindPercent},
		},
		Stats: []Stat{
			{"Projects", s.ProjectCount, KindInt},
			{"Total Profit", s.TotalProfit, KindMoney},
			{"Average Margin", s.AverageMargin, KindPercent},
			{"Highest Margin", s.HighestProject, KindText},
			{"Lowest Margin", s.LowestProject, KindText},
		},
	}
	for _, p := range s.Projects {
		t.Rows = append(t.Rows, []any{p.Name, p.Revenue, p.Cost, p.Profit, p.Margin})
	}
	return t
}
