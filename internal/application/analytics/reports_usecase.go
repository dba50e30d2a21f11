package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/report"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

type runner func(ctx context.Context, companyID string, r report.DateRange) Result[report.Tabular]

// ReportsUseCase registro de los reportes de BI.
//
// Fuente de datos: AnalyticsRepository (consultas read-only, una por dataset).
// Los datasets de un mismo reporte se leen en paralelo.
type ReportsUseCase struct {
	repo    repository.AnalyticsRepository
	log     zerolog.Logger
	rec     Recorder
	runners map[string]runner
}

// NewReportsUseCase construye el caso de uso. rec puede ser nil.
func NewReportsUseCase(repo repository.AnalyticsRepository, rec Recorder, log zerolog.Logger) *ReportsUseCase {
	if rec == nil {
		rec = nopRecorder{}
	}
	uc := &ReportsUseCase{repo: repo, log: log, rec: rec}
	uc.runners = map[string]runner{
		report.NameCustomerValue:     register(uc, Query[report.CustomerValueData, report.CustomerValueSummary]{Name: report.NameCustomerValue, Fetch: uc.fetchCustomerValue, Reduce: report.ReduceCustomerValue}),
		report.NameDSO:               register(uc, Query[[]entity.Invoice, report.DSOSummary]{Name: report.NameDSO, Fetch: uc.fetchDSO, Reduce: report.ReduceDSO}),
		report.NameFinancials:        register(uc, Query[[]entity.Invoice, report.FinancialsSummary]{Name: report.NameFinancials, Fetch: uc.fetchInvoicesInRange, Reduce: report.ReduceFinancials}),
		report.NameLaborEfficiency:   register(uc, Query[[]entity.TimeLog, report.LaborSummary]{Name: report.NameLaborEfficiency, Fetch: uc.fetchTimeLogs, Reduce: report.ReduceLabor}),
		report.NameProjectMargins:    register(uc, Query[[]entity.Project, report.ProjectMarginsSummary]{Name: report.NameProjectMargins, Fetch: uc.fetchProjects, Reduce: report.ReduceProjectMargins}),
		report.NameRevenueTrends:     register(uc, Query[report.RevenueTrendsData, report.RevenueTrendsSummary]{Name: report.NameRevenueTrends, Fetch: uc.fetchRevenueTrends, Reduce: report.ReduceRevenueTrends}),
		report.NameTechnicianMetrics: register(uc, Query[report.TechnicianMetricsData, report.TechnicianMetricsSummary]{Name: report.NameTechnicianMetrics, Fetch: uc.fetchTechnicianMetrics, Reduce: report.ReduceTechnicianMetrics}),
	}
	return uc
}

func register[D any, S report.Tabular](uc *ReportsUseCase, q Query[D, S]) runner {
	return func(ctx context.Context, companyID string, r report.DateRange) Result[report.Tabular] {
		return erase(q.Run(ctx, uc.log, uc.rec, companyID, r))
	}
}

// Generate ejecuta el reporte name. Devuelve domain.ErrNotFound si el reporte no existe.
// Un fallo de lectura no es error: el resultado llega con Degraded = true.
func (uc *ReportsUseCase) Generate(ctx context.Context, companyID, name string, r report.DateRange) (Result[report.Tabular], error) {
	run, ok := uc.runners[name]
	if !ok {
		return Result[report.Tabular]{}, fmt.Errorf("reporte %q: %w", name, domain.ErrNotFound)
	}
	return run(ctx, companyID, r), nil
}

func (uc *ReportsUseCase) fetchCustomerValue(ctx context.Context, companyID string, r report.DateRange) (report.CustomerValueData, error) {
	var d report.CustomerValueData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Customers, err = uc.repo.ListCustomers(ctx, companyID)
		return err
	})
	g.Go(func() (err error) {
		d.Invoices, err = uc.repo.ListInvoicesSince(ctx, companyID, r.Start)
		return err
	})
	g.Go(func() (err error) {
		d.LastService, err = uc.repo.LastServiceDates(ctx, companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.CustomerValueData{}, fmt.Errorf("analytics.CustomerValue: %w", err)
	}
	return d, nil
}

func (uc *ReportsUseCase) fetchDSO(ctx context.Context, companyID string, r report.DateRange) ([]entity.Invoice, error) {
	invoices, err := uc.repo.ListInvoicesForDSO(ctx, companyID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("analytics.DSO: %w", err)
	}
	return invoices, nil
}

func (uc *ReportsUseCase) fetchInvoicesInRange(ctx context.Context, companyID string, r report.DateRange) ([]entity.Invoice, error) {
	invoices, err := uc.repo.ListInvoicesBetween(ctx, companyID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("analytics.Financials: %w", err)
	}
	return invoices, nil
}

func (uc *ReportsUseCase) fetchTimeLogs(ctx context.Context, companyID string, r report.DateRange) ([]entity.TimeLog, error) {
	logs, err := uc.repo.ListTimeLogs(ctx, companyID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("analytics.LaborEfficiency: %w", err)
	}
	return logs, nil
}

func (uc *ReportsUseCase) fetchProjects(ctx context.Context, companyID string, r report.DateRange) ([]entity.Project, error) {
	projects, err := uc.repo.ListProjects(ctx, companyID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("analytics.ProjectMargins: %w", err)
	}
	return projects, nil
}

func (uc *ReportsUseCase) fetchRevenueTrends(ctx context.Context, companyID string, r report.DateRange) (report.RevenueTrendsData, error) {
	var d report.RevenueTrendsData
	prior := r.Prior()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Current, err = uc.repo.ListInvoicesBetween(ctx, companyID, r.Start, r.End)
		return err
	})
	g.Go(func() (err error) {
		d.Prior, err = uc.repo.ListInvoicesBetween(ctx, companyID, prior.Start, prior.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.RevenueTrendsData{}, fmt.Errorf("analytics.RevenueTrends: %w", err)
	}
	return d, nil
}

// fetchTechnicianMetrics lee tickets y nombres en paralelo; los totales facturados dependen de
// los ids de tickets y se leen después en una sola consulta.
func (uc *ReportsUseCase) fetchTechnicianMetrics(ctx context.Context, companyID string, r report.DateRange) (report.TechnicianMetricsData, error) {
	var d report.TechnicianMetricsData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Tickets, err = uc.repo.ListAssignedTickets(gctx, companyID, r.Start, r.End)
		return err
	})
	g.Go(func() (err error) {
		d.TechnicianNames, err = uc.repo.TechnicianNames(gctx, companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.TechnicianMetricsData{}, fmt.Errorf("analytics.TechnicianMetrics: %w", err)
	}

	ids := make([]string, 0, len(d.Tickets))
	for _, t := range d.Tickets {
		ids = append(ids, t.ID)
	}
	d.RevenueByTicket = map[string]decimal.Decimal{}
	if len(ids) > 0 {
		totals, err := uc.repo.InvoiceTotalsByTicket(ctx, companyID, ids)
		if err != nil {
			return report.TechnicianMetricsData{}, fmt.Errorf("analytics.TechnicianMetrics totals: %w", err)
		}
		d.RevenueByTicket = totals
	}
	return d, nil
}

// now permite fijar el reloj en tests.
var now = time.Now
