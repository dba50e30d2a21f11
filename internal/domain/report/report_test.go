package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/report"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var (
	jan1  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan31 = time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	asOf  = time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)
)

func january() report.DateRange { return report.NewRange(jan1, jan31, asOf) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: esperado %s, obtenido %s", msg, want, got)
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrStr(s string) *string        { return &s }
func ptrBool(b bool) *bool           { return &b }

func invoice(customer, status, total string, date time.Time, due *time.Time) entity.Invoice {
	return entity.Invoice{
		ID: customer + date.String(), CustomerID: customer, Status: status,
		TotalAmount: dec(total), InvoiceDate: date, DueDate: due,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Fórmulas
// ──────────────────────────────────────────────────────────────────────────────

func TestClassifyAging_Limites(t *testing.T) {
	cases := map[int]string{
		-1: report.BucketCurrent,
		0:  report.BucketCurrent,
		30: report.Bucket1To30,
		31: report.Bucket31To60,
		60: report.Bucket31To60,
		61: report.Bucket61To90,
		90: report.Bucket61To90,
		91: report.Bucket90Plus,
	}
	for days, want := range cases {
		assert.Equal(t, want, report.ClassifyAging(days), "días vencidos = %d", days)
	}
}

func TestDaysOverdue_DiasCompletos(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, report.DaysOverdue(due, due.Add(23*time.Hour)))
	assert.Equal(t, 1, report.DaysOverdue(due, due.Add(25*time.Hour)))
	assert.Equal(t, -1, report.DaysOverdue(due, due.Add(-time.Hour)))
}

func TestDaysSalesOutstanding(t *testing.T) {
	assertDec(t, "50", report.DaysSalesOutstanding(dec("10000"), dec("200")), "DSO")
	assertDec(t, "0", report.DaysSalesOutstanding(dec("10000"), decimal.Zero), "DSO sin ventas")
}

func TestUtilization(t *testing.T) {
	assertDec(t, "75", report.Utilization(dec("30"), dec("40")), "30h de 40h")
	assertDec(t, "0", report.Utilization(decimal.Zero, decimal.Zero), "sin horas")
}

func TestMargin(t *testing.T) {
	assertDec(t, "20", report.Margin(dec("1000"), dec("800")), "margen")
	assertDec(t, "0", report.Margin(decimal.Zero, dec("800")), "sin ingreso")
}

func TestPercentChange(t *testing.T) {
	assertDec(t, "20", report.PercentChange(dec("120"), dec("100")), "crecimiento")
	assertDec(t, "-50", report.PercentChange(dec("50"), dec("100")), "caída")
	assertDec(t, "0", report.PercentChange(dec("120"), decimal.Zero), "sin período anterior")
}

// ──────────────────────────────────────────────────────────────────────────────
// DateRange
// ──────────────────────────────────────────────────────────────────────────────

func TestParseRange_PorDefectoMesActual(t *testing.T) {
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	r, err := report.ParseRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, now, r.End)
	assert.Equal(t, now, r.AsOf)
}

func TestParseRange_FinInclusivo(t *testing.T) {
	r, err := report.ParseRange("2024-01-01", "2024-01-31", asOf)
	require.NoError(t, err)
	assert.Equal(t, jan31, r.End)
	assert.Equal(t, 31, r.Days())
	assert.Equal(t, report.Period{StartDate: "2024-01-01", EndDate: "2024-01-31"}, r.Period())
}

func TestParseRange_Invalido(t *testing.T) {
	_, err := report.ParseRange("2024-02-01", "2024-01-01", asOf)
	assert.Error(t, err)
	_, err = report.ParseRange("01/01/2024", "", asOf)
	assert.Error(t, err)
}

func TestDateRange_Prior(t *testing.T) {
	r := report.NewRange(jan1, jan1.AddDate(0, 0, 10), asOf)
	p := r.Prior()
	assert.Equal(t, jan1.AddDate(0, 0, -10), p.Start)
	assert.Equal(t, jan1, p.End)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reductores
// ──────────────────────────────────────────────────────────────────────────────

func TestReduceDSO_CarteraYAntiguedad(t *testing.T) {
	invs := []entity.Invoice{
		invoice("a", "paid", "3100", jan1.AddDate(0, 0, 5), nil),
		// abiertas, vencimiento relativo a asOf (15-feb)
		invoice("a", "sent", "100", jan1.AddDate(0, 0, 10), ptrTime(asOf.AddDate(0, 0, 3))),
		invoice("b", "overdue", "200", jan1.AddDate(0, 0, 12), ptrTime(asOf.AddDate(0, 0, -10))),
		invoice("c", "sent", "300", jan1.AddDate(-1, 0, 0), ptrTime(asOf.AddDate(0, 0, -100))),
		invoice("d", "draft", "400", jan1.AddDate(0, 0, 20), nil),
		invoice("e", "void", "999", jan1.AddDate(0, 0, 21), ptrTime(asOf.AddDate(0, 0, -45))),
	}

	s := report.ReduceDSO(invs, january())

	assertDec(t, "1000", s.TotalAR, "cartera: 100+200+300+400")
	assertDec(t, "4799", s.TotalSales, "ventas de enero: todas las fechadas en el rango, incluida la anulada")
	assert.Equal(t, 31, s.PeriodDays)
	assertDec(t, "6.46", s.DSO, "1000 / (4799/31)")
	assert.Equal(t, report.DSOTarget, s.Target)

	require.Len(t, s.Aging, 5)
	assert.Equal(t, report.BucketCurrent, s.Aging[0].Bucket)
	assert.Equal(t, 1, s.Aging[0].Count)
	assert.Equal(t, 1, s.Aging[1].Count)
	assert.Equal(t, 0, s.Aging[2].Count, "la anulada no cuenta")
	assert.Equal(t, 1, s.Aging[4].Count)
	assertDec(t, "30", s.Aging[4].Percent, "300 de 1000")
}

func TestReduceDSO_SinDatosDevuelveBucketsEnCero(t *testing.T) {
	s := report.ReduceDSO(nil, january())
	require.Len(t, s.Aging, 5)
	assertDec(t, "0", s.DSO, "dso")
	assertDec(t, "0", s.TotalAR, "cartera")
}

func TestReduceCustomerValue_OrdenaYTrunca(t *testing.T) {
	var data report.CustomerValueData
	data.LastService = map[string]time.Time{"c0": jan1.AddDate(0, 0, 3)}
	for i := 0; i < 25; i++ {
		id := "c" + string(rune('A'+i))
		if i == 0 {
			id = "c0"
		}
		data.Customers = append(data.Customers, entity.Customer{ID: id, Name: "Cliente " + id})
		data.Invoices = append(data.Invoices, invoice(id, "paid", decimal.NewFromInt(int64(100*(i+1))).String(), jan1.AddDate(0, 0, 1), nil))
	}
	data.Invoices = append(data.Invoices,
		invoice("c0", "sent", "50", jan1.AddDate(0, 0, 2), nil),
		invoice("c0", "paid", "9999", jan1.AddDate(0, 0, -5), nil), // antes del inicio
	)

	s := report.ReduceCustomerValue(data, january())

	assert.Equal(t, 25, s.TotalCustomers)
	require.Len(t, s.Customers, 20)
	assert.Equal(t, "Cliente cY", s.TopCustomerName)
	assertDec(t, "2500", s.TopCustomerRevenue, "top")
	assertDec(t, "32550", s.TotalRevenue, "Σ100..2500 + 50")
	assertDec(t, "1302", s.AverageRevenue, "32550/25")

	last := s.Customers[len(s.Customers)-1]
	assertDec(t, "600", last.LifetimeRevenue, "vigésimo lugar")
}

func TestReduceCustomerValue_OpenARYUltimoServicio(t *testing.T) {
	data := report.CustomerValueData{
		Customers: []entity.Customer{{ID: "x", Name: "X"}},
		Invoices: []entity.Invoice{
			invoice("x", "paid", "100", jan1, nil),
			invoice("x", "sent", "40", jan1.AddDate(0, 0, 1), nil),
			invoice("x", "void", "10", jan1.AddDate(0, 0, 2), nil),
		},
		LastService: map[string]time.Time{"x": jan31},
	}
	s := report.ReduceCustomerValue(data, january())
	require.Len(t, s.Customers, 1)
	assertDec(t, "150", s.Customers[0].LifetimeRevenue, "ingreso")
	assertDec(t, "40", s.Customers[0].OpenAR, "cartera abierta")
	require.NotNil(t, s.Customers[0].LastService)
	assert.Equal(t, jan31, *s.Customers[0].LastService)
}

func TestReduceCustomerValue_SinClientes(t *testing.T) {
	s := report.ReduceCustomerValue(report.CustomerValueData{}, january())
	assert.Equal(t, "N/A", s.TopCustomerName)
	assert.Empty(t, s.Customers)
	assertDec(t, "0", s.AverageRevenue, "promedio")
}

func TestReduceFinancials(t *testing.T) {
	invs := []entity.Invoice{
		invoice("a", "paid", "500", jan1.AddDate(0, 0, 1), nil),
		invoice("a", "sent", "300", jan1.AddDate(0, 0, 2), ptrTime(asOf.AddDate(0, 0, -1))),
		invoice("a", "sent", "200", jan1.AddDate(0, 0, 3), ptrTime(asOf.AddDate(0, 0, 5))),
		invoice("a", "void", "100", jan1.AddDate(0, 0, 4), ptrTime(asOf.AddDate(0, 0, -9))),
		invoice("a", "paid", "700", jan1.AddDate(0, 1, 1), nil), // fuera del rango
	}
	s := report.ReduceFinancials(invs, january())

	assert.Equal(t, 4, s.InvoiceCount)
	assertDec(t, "1100", s.TotalRevenue, "total")
	assertDec(t, "500", s.PaidAmount, "pagado")
	assertDec(t, "500", s.Outstanding, "pendiente")
	assertDec(t, "300", s.OverdueAmount, "vencido")
	assert.Equal(t, 1, s.OverdueCount)
	assertDec(t, "45.45", s.CollectionRate, "500/1100")
	require.Len(t, s.ByStatus, 3)
	assert.Equal(t, "paid", s.ByStatus[0].Status)
}

func TestReduceLabor(t *testing.T) {
	in := jan1.Add(8 * time.Hour)
	logs := []entity.TimeLog{
		{TechnicianID: "t1", TechnicianName: "Ana", ClockIn: in, ClockOut: ptrTime(in.Add(30 * time.Hour)), BillingAmount: dec("3000"), CostAmount: dec("900")},
		{TechnicianID: "t1", TechnicianName: "Ana", ClockIn: in, ClockOut: ptrTime(in.Add(10 * time.Hour)), IsBillable: ptrBool(false), BillingAmount: dec("999"), CostAmount: dec("300")},
		{TechnicianID: "t2", ClockIn: in, ClockOut: ptrTime(in.Add(40 * time.Hour)), IsBillable: ptrBool(true), BillingAmount: dec("4000"), CostAmount: dec("1200")},
		{TechnicianID: "t3", TechnicianName: "Abierto", ClockIn: in},                                                        // sin salida
		{TechnicianID: "t4", TechnicianName: "Fuera", ClockIn: in.AddDate(0, 2, 0), ClockOut: ptrTime(in.AddDate(0, 2, 1))}, // fuera del rango
	}

	s := report.ReduceLabor(logs, january())

	assertDec(t, "80", s.TotalHours, "horas")
	assertDec(t, "70", s.BillableHours, "facturables")
	assertDec(t, "87.5", s.Utilization, "70/80")
	assertDec(t, "7000", s.LaborBilled, "solo facturables")
	assertDec(t, "2400", s.LaborCost, "todo suma al costo")
	assertDec(t, "4600", s.LaborMargin, "margen")

	require.Len(t, s.Technicians, 2)
	assert.Equal(t, "Unknown", s.Technicians[0].Name, "t2 tiene más horas facturables")
	assertDec(t, "100", s.Technicians[0].Utilization, "t2")
	assert.Equal(t, "Ana", s.Technicians[1].Name)
	assertDec(t, "75", s.Technicians[1].Utilization, "30 de 40")
}

func TestReduceProjectMargins(t *testing.T) {
	projects := []entity.Project{
		{ID: "p1", Name: "Chiller", Budget: dec("1000"), ActualCost: dec("800"), CreatedAt: jan1.AddDate(0, 0, 1)},
		{ID: "p2", Name: "Ductos", Budget: dec("2000"), ActualCost: dec("1000"), CreatedAt: jan1.AddDate(0, 0, 2)},
		{ID: "p3", Name: "Sin presupuesto", Budget: decimal.Zero, ActualCost: dec("100"), CreatedAt: jan1.AddDate(0, 0, 3)},
		{ID: "p4", Name: "Viejo", Budget: dec("10"), ActualCost: dec("1"), CreatedAt: jan1.AddDate(-1, 0, 0)},
	}
	s := report.ReduceProjectMargins(projects, january())

	assert.Equal(t, 3, s.ProjectCount)
	require.Len(t, s.Projects, 3)
	assert.Equal(t, "Ductos", s.HighestProject)
	assert.Equal(t, "Sin presupuesto", s.LowestProject)
	assertDec(t, "20", s.Projects[1].Margin, "chiller")
	assertDec(t, "23.33", s.AverageMargin, "(50+20+0)/3")
	assertDec(t, "1100", s.TotalProfit, "3000-1900")
}

func TestReduceProjectMargins_SinProyectos(t *testing.T) {
	s := report.ReduceProjectMargins(nil, january())
	assert.Equal(t, "N/A", s.HighestProject)
	assert.Equal(t, "N/A", s.LowestProject)
}

func TestReduceRevenueTrends(t *testing.T) {
	r := january()
	prior := r.Prior()
	d := report.RevenueTrendsData{
		Current: []entity.Invoice{
			invoice("a", "paid", "70", jan1.AddDate(0, 0, 1), nil),
			invoice("a", "sent", "50", jan1.AddDate(0, 0, 20), nil),
		},
		Prior: []entity.Invoice{
			invoice("a", "paid", "100", prior.Start.Add(time.Hour), nil),
			invoice("a", "paid", "999", r.Start, nil), // pertenece al período actual
		},
	}
	s := report.ReduceRevenueTrends(d, r)

	assertDec(t, "120", s.CurrentRevenue, "actual")
	assertDec(t, "100", s.PriorRevenue, "anterior")
	assertDec(t, "20", s.ChangePercent, "variación")
	assertDec(t, "60", s.AverageInvoiceValue, "promedio")
	require.Len(t, s.Months, 1)
	assert.Equal(t, "2024-01", s.Months[0].Month)
}

func TestReduceTechnicianMetrics(t *testing.T) {
	h := func(s string) *decimal.Decimal { d := dec(s); return &d }
	tickets := []entity.Ticket{
		{ID: "k1", AssignedTo: ptrStr("t1"), Status: "completed", HoursOnsite: h("2"), CreatedAt: jan1.AddDate(0, 0, 1)},
		{ID: "k2", AssignedTo: ptrStr("t1"), Status: "completed", HoursOnsite: h("4"), CreatedAt: jan1.AddDate(0, 0, 2)},
		{ID: "k3", AssignedTo: ptrStr("t2"), Status: "in_progress", HoursOnsite: h("1"), CreatedAt: jan1.AddDate(0, 0, 3)},
		{ID: "k4", Status: "open", CreatedAt: jan1.AddDate(0, 0, 3)}, // sin asignar
		{ID: "k5", AssignedTo: ptrStr("t2"), Status: "completed", CreatedAt: jan1.AddDate(0, 0, 4)},
	}
	d := report.TechnicianMetricsData{
		Tickets:         tickets,
		TechnicianNames: map[string]string{"t1": "Ana", "t2": "Luis"},
		RevenueByTicket: map[string]decimal.Decimal{"k1": dec("300"), "k2": dec("500")},
	}
	s := report.ReduceTechnicianMetrics(d, january())

	assert.Equal(t, 4, s.TotalTickets)
	assert.Equal(t, 3, s.CompletedTickets)
	assert.Equal(t, 2, s.TechnicianCount)
	assertDec(t, "2", s.AvgOnsiteHours, "(2+4) / 3 completados; sin horas cuenta como 0")
	assertDec(t, "800", s.TotalRevenue, "ingreso")
	assertDec(t, "400", s.RevenuePerTech, "800/2")
	assertDec(t, "85", s.FirstTimeFixRate, "fijo")
	require.Len(t, s.Technicians, 2)
	assert.Equal(t, "Ana", s.Technicians[0].Name)
}

func TestReduceTechnicianMetrics_SinTicketsNoDivideEntreCero(t *testing.T) {
	s := report.ReduceTechnicianMetrics(report.TechnicianMetricsData{}, january())
	assertDec(t, "0", s.RevenuePerTech, "ingreso por técnico")
	assert.Empty(t, s.Technicians)
}

func TestTabular_ColumnasDeExportacion(t *testing.T) {
	tbl := report.ReduceDSO(nil, january()).Table()
	headers := make([]string, 0, len(tbl.Columns))
	for _, c := range tbl.Columns {
		headers = append(headers, c.Header)
	}
	assert.Equal(t, []string{"Aging Bucket", "Invoice Count", "Amount", "% of Total"}, headers)
	assert.Len(t, tbl.Rows, 5)

	cv := report.ReduceCustomerValue(report.CustomerValueData{}, january()).Table()
	assert.Equal(t, "Customer", cv.Columns[0].Header)
	assert.Equal(t, "Open AR", cv.Columns[3].Header)
}
