package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceSelect = `
	SELECT i.id, i.company_id, COALESCE(i.invoice_number, ''), i.customer_id, COALESCE(c.name, ''),
	       i.ticket_id, i.invoice_date, i.due_date, i.status,
	       COALESCE(i.subtotal, 0), COALESCE(i.tax_amount, 0), COALESCE(i.total_amount, 0),
	       COALESCE(i.notes, ''), COALESCE(i.created_by::TEXT, ''), i.created_at, i.updated_at
	FROM invoices i
	LEFT JOIN customers c ON c.id = i.customer_id`

func scanInvoice(row rowScanner) (entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.InvoiceNumber, &inv.CustomerID, &inv.CustomerName,
		&inv.TicketID, &inv.InvoiceDate, &inv.DueDate, &inv.Status,
		&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount,
		&inv.Notes, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	return inv, err
}

// Create persiste la cabecera. Un número de factura repetido devuelve domain.ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	now := time.Now()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now

	const query = `
		INSERT INTO invoices (id, company_id, invoice_number, customer_id, ticket_id, invoice_date, due_date,
		                      status, subtotal, tax_amount, total_amount, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.CompanyID, invoice.InvoiceNumber, invoice.CustomerID, invoice.TicketID,
		invoice.InvoiceDate, invoice.DueDate, invoice.Status,
		invoice.Subtotal, invoice.TaxAmount, invoice.TotalAmount,
		nullIfEmpty(invoice.Notes), nullIfEmpty(invoice.CreatedBy), invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number %s: %w", invoice.InvoiceNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLineItems inserta las líneas en un solo batch.
func (r *InvoiceRepo) CreateLineItems(ctx context.Context, items []entity.InvoiceLineItem) error {
	if len(items) == 0 {
		return nil
	}
	const query = `
		INSERT INTO invoice_line_items (id, invoice_id, description, quantity, unit_price, line_total, item_type, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	batch := &pgx.Batch{}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		it := items[i]
		batch.Queue(query, it.ID, it.InvoiceID, it.Description, it.Quantity, it.UnitPrice, it.LineTotal,
			nullIfEmpty(it.ItemType), it.SortOrder)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert invoice line items: %w", err)
	}
	return nil
}

// GetByID obtiene una factura de la empresa. Devuelve nil, nil si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, invoiceSelect+` WHERE i.company_id = $1 AND i.id = $2`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// GetLineItems líneas ordenadas.
func (r *InvoiceRepo) GetLineItems(ctx context.Context, invoiceID string) ([]entity.InvoiceLineItem, error) {
	const query = `
		SELECT id, invoice_id, description, quantity, unit_price, line_total, COALESCE(item_type, ''), sort_order
		FROM invoice_line_items WHERE invoice_id = $1 ORDER BY sort_order, id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice line items: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.InvoiceLineItem, error) {
		var it entity.InvoiceLineItem
		err := s.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPrice, &it.LineTotal, &it.ItemType, &it.SortOrder)
		return it, err
	})
}

// ListByTicket facturas generadas desde un ticket.
func (r *InvoiceRepo) ListByTicket(ctx context.Context, companyID, ticketID string) ([]entity.Invoice, error) {
	rows, err := r.q.Query(ctx, invoiceSelect+` WHERE i.company_id = $1 AND i.ticket_id = $2 ORDER BY i.created_at`, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list invoices by ticket: %w", err)
	}
	return collect(rows, scanInvoice)
}

// ListByCustomer últimas facturas del cliente.
func (r *InvoiceRepo) ListByCustomer(ctx context.Context, companyID, customerID string, limit int) ([]entity.Invoice, error) {
	rows, err := r.q.Query(ctx, invoiceSelect+` WHERE i.company_id = $1 AND i.customer_id = $2 ORDER BY i.invoice_date DESC LIMIT $3`,
		companyID, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoices by customer: %w", err)
	}
	return collect(rows, scanInvoice)
}
