package entity

import "github.com/shopspring/decimal"

// Tipos de ítem en una línea de factura o presupuesto.
const (
	ItemTypeLabor   = "labor"
	ItemTypePart    = "part"
	ItemTypeService = "service"
)

// InvoiceLineItem línea de factura.
type InvoiceLineItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	ItemType    string
	SortOrder   int
}
