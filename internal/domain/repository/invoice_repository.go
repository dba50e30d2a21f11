package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia para facturas y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateLineItems(ctx context.Context, items []entity.InvoiceLineItem) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error)
	GetLineItems(ctx context.Context, invoiceID string) ([]entity.InvoiceLineItem, error)
	ListByTicket(ctx context.Context, companyID, ticketID string) ([]entity.Invoice, error)
	ListByCustomer(ctx context.Context, companyID, customerID string, limit int) ([]entity.Invoice, error)
}

// SequenceRepository contador monotónico en el servidor. Next incrementa y devuelve el nuevo valor
// de forma atómica; la primera vez se siembra con el máximo ya usado en invoices.
type SequenceRepository interface {
	Next(ctx context.Context, companyID, key string) (int64, error)
}

// BillingBreakdown reparto de montos de un ticket de garantía (fn_get_ahs_billing_breakdown).
type BillingBreakdown struct {
	AHSTotal      decimal.Decimal
	CustomerTotal decimal.Decimal
	DiagnosisFee  decimal.Decimal
	AHSLabor      decimal.Decimal
	AHSParts      decimal.Decimal
	CustomerLabor decimal.Decimal
	CustomerParts decimal.Decimal
}

// AHSRepository lecturas y auditoría de garantías AHS.
type AHSRepository interface {
	// BillingBreakdown invoca la función del servidor para el ticket.
	BillingBreakdown(ctx context.Context, companyID, ticketID string) (*BillingBreakdown, error)
	CreateAudit(ctx context.Context, entry *entity.AHSAuditEntry) error
	ListAudit(ctx context.Context, companyID string, limit int) ([]entity.AHSAuditEntry, error)
}
