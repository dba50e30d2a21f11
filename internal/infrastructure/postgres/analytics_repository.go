package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para los reportes de BI.
// Cada lectura es una sola consulta plana; no hay joins por fila desde Go.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// ListCustomers clientes no archivados (los leads no cuentan como clientes).
func (r *AnalyticsRepo) ListCustomers(ctx context.Context, companyID string) ([]entity.Customer, error) {
	rows, err := r.q.Query(ctx, customerSelect+` WHERE company_id = $1 AND status <> 'lead' ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("analytics.ListCustomers: %w", err)
	}
	return collect(rows, scanCustomer)
}

// ListInvoicesSince facturas desde una fecha.
func (r *AnalyticsRepo) ListInvoicesSince(ctx context.Context, companyID string, since time.Time) ([]entity.Invoice, error) {
	rows, err := r.q.Query(ctx, invoiceSelect+` WHERE i.company_id = $1 AND i.invoice_date >= $2`, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("analytics.ListInvoicesSince: %w", err)
	}
	return collect(rows, scanInvoice)
}

// ListInvoicesBetween facturas en [start, end).
func (r *AnalyticsRepo) ListInvoicesBetween(ctx context.Context, companyID string, start, end time.Time) ([]entity.Invoice, error) {
	rows, err := r.q.Query(ctx, invoiceSelect+` WHERE i.company_id = $1 AND i.invoice_date >= $2 AND i.invoice_date < $3`,
		companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("analytics.ListInvoicesBetween: %w", err)
	}
	return collect(rows, scanInvoice)
}

// ListInvoicesForDSO facturas abiertas (cualquier fecha) más las emitidas en el período.
func (r *AnalyticsRepo) ListInvoicesForDSO(ctx context.Context, companyID string, start, end time.Time) ([]entity.Invoice, error) {
	rows, err := r.q.Query(ctx, invoiceSelect+`
		WHERE i.company_id = $1
		  AND (i.status NOT IN ('paid', 'void') OR i.invoice_date BETWEEN $2 AND $3)`,
		companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("analytics.ListInvoicesForDSO: %w", err)
	}
	return collect(rows, scanInvoice)
}

// LastServiceDates última completed_date por cliente.
func (r *AnalyticsRepo) LastServiceDates(ctx context.Context, companyID string) (map[string]time.Time, error) {
	const query = `
		SELECT customer_id, MAX(completed_date)
		FROM tickets
		WHERE company_id = $1 AND completed_date IS NOT NULL
		GROUP BY customer_id`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("analytics.LastServiceDates: %w", err)
	}
	defer rows.Close()

	out := map[string]time.Time{}
	for rows.Next() {
		var id string
		var last time.Time
		if err := rows.Scan(&id, &last); err != nil {
			return nil, fmt.Errorf("analytics.LastServiceDates scan: %w", err)
		}
		out[id] = last
	}
	return out, rows.Err()
}

// ListTimeLogs registros con clock_in en el período.
func (r *AnalyticsRepo) ListTimeLogs(ctx context.Context, companyID string, start, end time.Time) ([]entity.TimeLog, error) {
	rows, err := r.q.Query(ctx, timeLogSelect+` WHERE tl.company_id = $1 AND tl.clock_in_time BETWEEN $2 AND $3`,
		companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("analytics.ListTimeLogs: %w", err)
	}
	return collect(rows, scanTimeLog)
}

// ListProjects proyectos creados en el período.
func (r *AnalyticsRepo) ListProjects(ctx context.Context, companyID string, start, end time.Time) ([]entity.Project, error) {
	const query = `
		SELECT id, company_id, name, COALESCE(customer_id::TEXT, ''), COALESCE(status, ''),
		       COALESCE(budget, 0), COALESCE(actual_cost, 0), created_at
		FROM projects
		WHERE company_id = $1 AND created_at BETWEEN $2 AND $3`
	rows, err := r.q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("analytics.ListProjects: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.Project, error) {
		var p entity.Project
		err := s.Scan(&p.ID, &p.CompanyID, &p.Name, &p.CustomerID, &p.Status, &p.Budget, &p.ActualCost, &p.CreatedAt)
		return p, err
	})
}

// ListAssignedTickets tickets con técnico creados en el período.
func (r *AnalyticsRepo) ListAssignedTickets(ctx context.Context, companyID string, start, end time.Time) ([]entity.Ticket, error) {
	rows, err := r.q.Query(ctx, ticketSelect+`
		WHERE t.company_id = $1 AND t.assigned_to IS NOT NULL AND t.created_at BETWEEN $2 AND $3`,
		companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("analytics.ListAssignedTickets: %w", err)
	}
	return collect(rows, scanTicket)
}

// TechnicianNames nombre completo por profile.
func (r *AnalyticsRepo) TechnicianNames(ctx context.Context, companyID string) (map[string]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id, COALESCE(full_name, '') FROM profiles WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, fmt.Errorf("analytics.TechnicianNames: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("analytics.TechnicianNames scan: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// InvoiceTotalsByTicket suma de total_amount por ticket (excluye anuladas).
func (r *AnalyticsRepo) InvoiceTotalsByTicket(ctx context.Context, companyID string, ticketIDs []string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	if len(ticketIDs) == 0 {
		return out, nil
	}
	const query = `
		SELECT ticket_id, SUM(total_amount)
		FROM invoices
		WHERE company_id = $1 AND ticket_id = ANY($2::UUID[]) AND status <> 'void'
		GROUP BY ticket_id`
	rows, err := r.q.Query(ctx, query, companyID, ticketIDs)
	if err != nil {
		return nil, fmt.Errorf("analytics.InvoiceTotalsByTicket: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var total decimal.Decimal
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("analytics.InvoiceTotalsByTicket scan: %w", err)
		}
		out[id] = total
	}
	return out, rows.Err()
}
