package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de ticket.
const (
	TicketStatusOpen       = "open"
	TicketStatusScheduled  = "scheduled"
	TicketStatusInProgress = "in_progress"
	TicketStatusCompleted  = "completed"
	TicketStatusCancelled  = "cancelled"
)

// IsClosedTicketStatus completado o cancelado.
func IsClosedTicketStatus(status string) bool {
	return status == TicketStatusCompleted || status == TicketStatusCancelled
}

// Ticket unidad de trabajo despachada (llamada de servicio u orden de proyecto).
type Ticket struct {
	ID                     string
	CompanyID              string
	TicketNumber           string
	CustomerID             string
	CustomerName           string
	AssignedTo             *string
	Title                  string
	Description            string
	Status                 string
	Priority               string
	ServiceType            string // service | installation | warranty_ahs | ...
	AHSDispatchNumber      *string
	ScheduledDate          *time.Time
	CompletedDate          *time.Time
	HoursOnsite            *decimal.Decimal
	BilledAmount           *decimal.Decimal
	EstimatedOnsiteMinutes *int
	WorkStartedAt          *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Tipos de actualización de ticket.
const (
	UpdateTypeArrived   = "arrived"
	UpdateTypeProgress  = "progress"
	UpdateTypeNote      = "note"
	UpdateTypeCompleted = "completed"
	UpdateTypeStatus    = "status_change"
)

// TicketUpdate entrada en la bitácora de un ticket.
type TicketUpdate struct {
	ID         string
	TicketID   string
	UpdatedBy  string
	UpdateType string
	Message    string
	NewStatus  *string
	CreatedAt  time.Time
}

// TicketPartUsed repuesto consumido en un ticket.
type TicketPartUsed struct {
	ID        string
	TicketID  string
	PartID    string
	PartName  string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	AddedBy   string
	CreatedAt time.Time
}

// Tipos de foto válidos.
const (
	PhotoTypeBefore    = "before"
	PhotoTypeDuring    = "during"
	PhotoTypeAfter     = "after"
	PhotoTypeIssue     = "issue"
	PhotoTypeEquipment = "equipment"
	PhotoTypeOther     = "other"
)

// ValidPhotoType informa si t es un tipo de foto reconocido.
func ValidPhotoType(t string) bool {
	switch t {
	case PhotoTypeBefore, PhotoTypeDuring, PhotoTypeAfter, PhotoTypeIssue, PhotoTypeEquipment, PhotoTypeOther:
		return true
	}
	return false
}

// TicketPhoto foto subida al bucket de tickets.
type TicketPhoto struct {
	ID         string
	TicketID   string
	PhotoURL   string
	StorageKey string
	PhotoType  string
	Caption    string
	UploadedBy string
	CreatedAt  time.Time
}

// ActiveTimer temporizador de trabajo en curso devuelto por fn_get_active_timer.
type ActiveTimer struct {
	TimeLogID string
	TicketID  string
	ClockIn   time.Time
}

// Part repuesto del catálogo; Quantity es el stock en el camión (o global si no hay stock de camión).
type Part struct {
	ID         string
	PartNumber string
	Name       string
	UnitCost   decimal.Decimal
	UnitPrice  decimal.Decimal
	Quantity   decimal.Decimal
}
