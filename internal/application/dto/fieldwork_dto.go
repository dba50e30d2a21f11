package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// TicketResponse ticket en listados.
type TicketResponse struct {
	ID                     string           `json:"id"`
	TicketNumber           string           `json:"ticket_number"`
	CustomerID             string           `json:"customer_id"`
	CustomerName           string           `json:"customer_name,omitempty"`
	AssignedTo             *string          `json:"assigned_to,omitempty"`
	Title                  string           `json:"title"`
	Description            string           `json:"description,omitempty"`
	Status                 string           `json:"status"`
	Priority               string           `json:"priority,omitempty"`
	ServiceType            string           `json:"service_type,omitempty"`
	AHSDispatchNumber      *string          `json:"ahs_dispatch_number,omitempty"`
	ScheduledDate          *time.Time       `json:"scheduled_date,omitempty"`
	CompletedDate          *time.Time       `json:"completed_date,omitempty"`
	HoursOnsite            *decimal.Decimal `json:"hours_onsite,omitempty"`
	BilledAmount           *decimal.Decimal `json:"billed_amount,omitempty"`
	EstimatedOnsiteMinutes *int             `json:"estimated_onsite_minutes,omitempty"`
	WorkStartedAt          *time.Time       `json:"work_started_at,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
}

// TicketFromEntity mapea el ticket.
func TicketFromEntity(t *entity.Ticket) TicketResponse {
	return TicketResponse{
		ID:                     t.ID,
		TicketNumber:           t.TicketNumber,
		CustomerID:             t.CustomerID,
		CustomerName:           t.CustomerName,
		AssignedTo:             t.AssignedTo,
		Title:                  t.Title,
		Description:            t.Description,
		Status:                 t.Status,
		Priority:               t.Priority,
		ServiceType:            t.ServiceType,
		AHSDispatchNumber:      t.AHSDispatchNumber,
		ScheduledDate:          t.ScheduledDate,
		CompletedDate:          t.CompletedDate,
		HoursOnsite:            t.HoursOnsite,
		BilledAmount:           t.BilledAmount,
		EstimatedOnsiteMinutes: t.EstimatedOnsiteMinutes,
		WorkStartedAt:          t.WorkStartedAt,
		CreatedAt:              t.CreatedAt,
	}
}

// TicketsFromEntities mapea un listado.
func TicketsFromEntities(ts []entity.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(ts))
	for i := range ts {
		out = append(out, TicketFromEntity(&ts[i]))
	}
	return out
}

// TicketUpdateResponse entrada de la bitácora.
type TicketUpdateResponse struct {
	ID         string    `json:"id"`
	UpdatedBy  string    `json:"updated_by"`
	UpdateType string    `json:"update_type"`
	Message    string    `json:"message,omitempty"`
	NewStatus  *string   `json:"new_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PartUsedResponse repuesto consumido.
type PartUsedResponse struct {
	ID        string          `json:"id"`
	PartID    string          `json:"part_id"`
	PartName  string          `json:"part_name,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	CreatedAt time.Time       `json:"created_at"`
}

// PhotoResponse foto del ticket.
type PhotoResponse struct {
	ID        string    `json:"id"`
	PhotoURL  string    `json:"photo_url"`
	PhotoType string    `json:"photo_type"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PhotoFromEntity mapea la foto.
func PhotoFromEntity(p *entity.TicketPhoto) PhotoResponse {
	return PhotoResponse{ID: p.ID, PhotoURL: p.PhotoURL, PhotoType: p.PhotoType, Caption: p.Caption, CreatedAt: p.CreatedAt}
}

// TicketDetailResponse ticket con bitácora, repuestos y fotos.
type TicketDetailResponse struct {
	Ticket    TicketResponse         `json:"ticket"`
	Updates   []TicketUpdateResponse `json:"updates"`
	PartsUsed []PartUsedResponse     `json:"parts_used"`
	Photos    []PhotoResponse        `json:"photos"`
}

// AddUpdateRequest body para POST /api/tickets/:id/updates.
type AddUpdateRequest struct {
	UpdateType string  `json:"update_type" validate:"required,oneof=arrived progress note completed status_change"`
	Message    string  `json:"message" validate:"max=4000"`
	NewStatus  *string `json:"new_status" validate:"omitempty,oneof=open scheduled in_progress completed cancelled"`
}

// AddPartRequest body para POST /api/tickets/:id/parts.
type AddPartRequest struct {
	PartID   string          `json:"part_id" validate:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity"`
}

// EndWorkRequest body para POST /api/tickets/:id/work/end.
type EndWorkRequest struct {
	Complete bool `json:"complete"`
}

// EndWorkResponse horas registradas al cerrar el temporizador.
type EndWorkResponse struct {
	TicketID    string          `json:"ticket_id"`
	HoursLogged decimal.Decimal `json:"hours_logged"`
	Completed   bool            `json:"completed"`
}

// ActiveTimerResponse temporizador en curso; vacío si no hay.
type ActiveTimerResponse struct {
	Active    bool       `json:"active"`
	TimeLogID string     `json:"time_log_id,omitempty"`
	TicketID  string     `json:"ticket_id,omitempty"`
	ClockIn   *time.Time `json:"clock_in,omitempty"`
}

// PartResponse repuesto del inventario del camión o del catálogo.
type PartResponse struct {
	ID         string          `json:"id"`
	PartNumber string          `json:"part_number,omitempty"`
	Name       string          `json:"name"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// TruckInventoryResponse inventario con el origen de los datos.
type TruckInventoryResponse struct {
	Source string         `json:"source"` // truck | catalog
	Parts  []PartResponse `json:"parts"`
}

// RefreshResponse resultado de forzar una lectura del tópico. Refreshed es false si nadie
// estaba suscrito.
type RefreshResponse struct {
	Topic     string `json:"topic"`
	Refreshed bool   `json:"refreshed"`
}

// TechnicianStatusResponse técnico en el mapa de seguimiento.
type TechnicianStatusResponse struct {
	TechnicianID      string           `json:"technician_id"`
	FullName          string           `json:"full_name"`
	Latitude          *float64         `json:"latitude,omitempty"`
	Longitude         *float64         `json:"longitude,omitempty"`
	Accuracy          *float64         `json:"accuracy,omitempty"`
	LocationAt        *time.Time       `json:"location_at,omitempty"`
	ActiveTicketCount int              `json:"active_ticket_count"`
	ActiveTickets     []TicketResponse `json:"active_tickets"`
}

// TechnicianStatusFromEntity mapea la proyección de seguimiento.
func TechnicianStatusFromEntity(s entity.TechnicianStatus) TechnicianStatusResponse {
	out := TechnicianStatusResponse{
		TechnicianID:      s.TechnicianID,
		FullName:          s.FullName,
		ActiveTicketCount: len(s.ActiveTickets),
		ActiveTickets:     TicketsFromEntities(s.ActiveTickets),
	}
	if loc := s.Location; loc != nil {
		lat, lng := loc.Latitude, loc.Longitude
		at := loc.RecordedAt
		out.Latitude, out.Longitude, out.Accuracy, out.LocationAt = &lat, &lng, loc.Accuracy, &at
	}
	return out
}
