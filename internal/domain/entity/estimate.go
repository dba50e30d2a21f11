package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de presupuesto.
const (
	EstimateStatusDraft    = "draft"
	EstimateStatusSent     = "sent"
	EstimateStatusAccepted = "accepted"
	EstimateStatusRejected = "rejected"
)

// Pagador de una línea de presupuesto en tickets de garantía.
const (
	PayerAHS      = "AHS"
	PayerCustomer = "CUSTOMER"
)

// Estimate presupuesto; los de garantía AHS se asocian a un ticket.
type Estimate struct {
	ID             string
	CompanyID      string
	EstimateNumber string
	CustomerID     string
	CustomerName   string
	TicketID       *string
	Title          string
	Status         string
	TotalAmount    decimal.Decimal
	PipelineID     *string
	StageID        *string
	LostReason     string
	ExpectedClose  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EstimateLineItem línea de presupuesto con su pagador.
type EstimateLineItem struct {
	ID          string
	EstimateID  string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	ItemType    string
	PayerType   string
	SortOrder   int
}
