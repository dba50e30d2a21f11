package invoicing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// DiagnosisFeeDescription descripción de la línea de diagnóstico.
const DiagnosisFeeDescription = "AHS Diagnosis Fee"

// Draft borrador de factura: líneas y subtotal.
type Draft struct {
	Lines    []entity.InvoiceLineItem
	Subtotal decimal.Decimal
}

// Empty sin líneas.
func (d Draft) Empty() bool { return len(d.Lines) == 0 }

// add agrega una línea ya calculada; total es el line_total del presupuesto.
func (d *Draft) add(description string, qty, unitPrice, total decimal.Decimal, itemType string) {
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}
	d.Lines = append(d.Lines, entity.InvoiceLineItem{
		Description: description,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		LineTotal:   total,
		ItemType:    itemType,
		SortOrder:   len(d.Lines),
	})
	d.Subtotal = d.Subtotal.Add(total)
}

// SplitByPayer reparte las líneas del presupuesto: payer_type AHS a la factura de la aseguradora,
// CUSTOMER a la del cliente. Si diagnosisFee > 0 va como primera línea de la factura AHS.
// Los montos salen de line_total tal como quedó en el presupuesto (descuentos incluidos);
// una cantidad vacía se factura como 1.
func SplitByPayer(lines []entity.EstimateLineItem, diagnosisFee decimal.Decimal) (ahs, customer Draft) {
	if diagnosisFee.IsPositive() {
		ahs.add(DiagnosisFeeDescription, decimal.NewFromInt(1), diagnosisFee, diagnosisFee, entity.ItemTypeService)
	}
	for _, l := range lines {
		switch strings.ToUpper(l.PayerType) {
		case entity.PayerAHS:
			ahs.add(l.Description, l.Quantity, l.UnitPrice, l.LineTotal, l.ItemType)
		case entity.PayerCustomer:
			customer.add(l.Description, l.Quantity, l.UnitPrice, l.LineTotal, l.ItemType)
		}
	}
	return ahs, customer
}

// AHSNotes nota de la factura a la aseguradora.
func AHSNotes(dispatchNumber *string, ticketNumber string) string {
	dispatch := "N/A"
	if dispatchNumber != nil && *dispatchNumber != "" {
		dispatch = *dispatchNumber
	}
	return fmt.Sprintf("AHS Warranty - Dispatch #%s - Ticket %s", dispatch, ticketNumber)
}

// CustomerNotes nota de la factura al cliente por la parte no cubierta.
func CustomerNotes(ticketNumber string) string {
	return "Customer responsibility - AHS Warranty Ticket " + ticketNumber
}
