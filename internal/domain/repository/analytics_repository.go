package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// AnalyticsRepository lecturas planas para los reportes de BI.
// Cada método es una sola consulta; la agregación la hacen los reductores de domain/report.
type AnalyticsRepository interface {
	// ListCustomers clientes activos de la empresa.
	ListCustomers(ctx context.Context, companyID string) ([]entity.Customer, error)
	// ListInvoicesSince facturas con invoice_date >= since (incluye nombre del cliente).
	ListInvoicesSince(ctx context.Context, companyID string, since time.Time) ([]entity.Invoice, error)
	// ListInvoicesBetween facturas con invoice_date en [start, end).
	ListInvoicesBetween(ctx context.Context, companyID string, start, end time.Time) ([]entity.Invoice, error)
	// ListInvoicesForDSO facturas abiertas de cualquier fecha más todas las del período.
	ListInvoicesForDSO(ctx context.Context, companyID string, start, end time.Time) ([]entity.Invoice, error)
	// LastServiceDates fecha de servicio completado más reciente por cliente.
	LastServiceDates(ctx context.Context, companyID string) (map[string]time.Time, error)
	// ListTimeLogs registros de horas con clock_in en el período, con nombre del técnico.
	ListTimeLogs(ctx context.Context, companyID string, start, end time.Time) ([]entity.TimeLog, error)
	// ListProjects proyectos creados en el período.
	ListProjects(ctx context.Context, companyID string, start, end time.Time) ([]entity.Project, error)
	// ListAssignedTickets tickets con técnico asignado creados en el período.
	ListAssignedTickets(ctx context.Context, companyID string, start, end time.Time) ([]entity.Ticket, error)
	// TechnicianNames nombre por id de profile.
	TechnicianNames(ctx context.Context, companyID string) (map[string]string, error)
	// InvoiceTotalsByTicket suma facturada por ticket para los tickets dados.
	InvoiceTotalsByTicket(ctx context.Context, companyID string, ticketIDs []string) (map[string]decimal.Decimal, error)
}
