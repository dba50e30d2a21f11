package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

// InvoiceResponse factura con sus líneas.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerID    string                `json:"customer_id"`
	CustomerName  string                `json:"customer_name,omitempty"`
	TicketID      *string               `json:"ticket_id,omitempty"`
	InvoiceDate   string                `json:"invoice_date"`
	DueDate       *string               `json:"due_date,omitempty"`
	Status        string                `json:"status"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Notes         string                `json:"notes,omitempty"`
	Lines         []InvoiceLineResponse `json:"lines,omitempty"`
}

// InvoiceLineResponse línea de factura.
type InvoiceLineResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	ItemType    string          `json:"item_type"`
}

// InvoiceFromEntity mapea cabecera y líneas.
func InvoiceFromEntity(inv *entity.Invoice, lines []entity.InvoiceLineItem) InvoiceResponse {
	out := InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		TicketID:      inv.TicketID,
		InvoiceDate:   inv.InvoiceDate.Format(DateLayout),
		DueDate:       formatDate(inv.DueDate),
		Status:        inv.Status,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		Notes:         inv.Notes,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, InvoiceLineResponse{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
			ItemType:    l.ItemType,
		})
	}
	return out
}

// TicketInvoicesResponse facturas de un ticket de garantía separadas por destinatario.
type TicketInvoicesResponse struct {
	AHS      []InvoiceResponse `json:"ahs"`
	Customer []InvoiceResponse `json:"customer"`
}

// BillingBreakdownResponse reparto de montos de un ticket de garantía.
type BillingBreakdownResponse struct {
	AHSTotal      decimal.Decimal `json:"ahs_total"`
	CustomerTotal decimal.Decimal `json:"customer_total"`
	DiagnosisFee  decimal.Decimal `json:"diagnosis_fee"`
	AHSLabor      decimal.Decimal `json:"ahs_labor"`
	AHSParts      decimal.Decimal `json:"ahs_parts"`
	CustomerLabor decimal.Decimal `json:"customer_labor"`
	CustomerParts decimal.Decimal `json:"customer_parts"`
}

// BreakdownFromRepository mapea la proyección del servidor.
func BreakdownFromRepository(b *repository.BillingBreakdown) BillingBreakdownResponse {
	return BillingBreakdownResponse{
		AHSTotal:      b.AHSTotal,
		CustomerTotal: b.CustomerTotal,
		DiagnosisFee:  b.DiagnosisFee,
		AHSLabor:      b.AHSLabor,
		AHSParts:      b.AHSParts,
		CustomerLabor: b.CustomerLabor,
		CustomerParts: b.CustomerParts,
	}
}

// UpdateAHSSettingRequest body para PUT /api/ahs/settings.
type UpdateAHSSettingRequest struct {
	Key    string `json:"key" validate:"required,oneof=ahs_default_diagnosis_fee ahs_default_labor_rate ahs_bill_to_customer_id"`
	Value  string `json:"value" validate:"required,max=200"`
	Reason string `json:"reason" validate:"max=500"`
}

// AHSAuditResponse entrada del historial de cambios.
type AHSAuditResponse struct {
	ID          string    `json:"id"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	DisplayName string    `json:"display_name"`
	Action      string    `json:"action"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	ChangedBy   string    `json:"changed_by"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
