package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura.
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusVoid    = "void"
)

// IsOpenInvoiceStatus informa si una factura con ese estado suma a cuentas por cobrar.
func IsOpenInvoiceStatus(status string) bool {
	return status != InvoiceStatusPaid && status != InvoiceStatusVoid
}

// Invoice cabecera de factura.
type Invoice struct {
	ID            string
	CompanyID     string
	InvoiceNumber string
	CustomerID    string
	CustomerName  string // proyección: join con customers
	TicketID      *string
	InvoiceDate   time.Time
	DueDate       *time.Time
	Status        string
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
