package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// CustomerSummary cliente en listados del CRM.
type CustomerSummary struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	Email                   string     `json:"email,omitempty"`
	Phone                   string     `json:"phone,omitempty"`
	Address                 string     `json:"address,omitempty"`
	CustomerType            string     `json:"customer_type,omitempty"`
	Status                  string     `json:"status"`
	LeadSource              string     `json:"lead_source,omitempty"`
	ProspectReplacementFlag bool       `json:"prospect_replacement_flag"`
	ConvertedAt             *time.Time `json:"converted_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}

// CustomerFromEntity mapea el cliente.
func CustomerFromEntity(c *entity.Customer) CustomerSummary {
	return CustomerSummary{
		ID:                      c.ID,
		Name:                    c.Name,
		Email:                   c.Email,
		Phone:                   c.Phone,
		Address:                 c.Address,
		CustomerType:            c.CustomerType,
		Status:                  c.Status,
		LeadSource:              c.LeadSource,
		ProspectReplacementFlag: c.ProspectReplacementFlag,
		ConvertedAt:             c.ConvertedAt,
		CreatedAt:               c.CreatedAt,
	}
}

// CustomerStats métricas de la vista 360.
type CustomerStats struct {
	TotalTickets     int             `json:"total_tickets"`
	OpenTickets      int             `json:"open_tickets"`
	TotalEstimates   int             `json:"total_estimates"`
	PendingEstimates int             `json:"pending_estimates"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	AvgTicketValue   decimal.Decimal `json:"avg_ticket_value"`
	LastServiceDate  *string         `json:"last_service_date,omitempty"`
	ActiveEquipment  int             `json:"active_equipment"`
}

// EquipmentResponse equipo instalado del cliente.
type EquipmentResponse struct {
	ID               string  `json:"id"`
	EquipmentType    string  `json:"equipment_type,omitempty"`
	Manufacturer     string  `json:"manufacturer,omitempty"`
	ModelNumber      string  `json:"model_number,omitempty"`
	SerialNumber     string  `json:"serial_number,omitempty"`
	InstallationDate *string `json:"installation_date,omitempty"`
}

// EquipmentFromEntity mapea el equipo.
func EquipmentFromEntity(e *entity.Equipment) EquipmentResponse {
	return EquipmentResponse{
		ID:               e.ID,
		EquipmentType:    e.EquipmentType,
		Manufacturer:     e.Manufacturer,
		ModelNumber:      e.ModelNumber,
		SerialNumber:     e.SerialNumber,
		InstallationDate: formatDate(e.InstallationDate),
	}
}

// Customer360Response cliente con estadísticas y actividad reciente.
type Customer360Response struct {
	Customer  CustomerSummary     `json:"customer"`
	Stats     CustomerStats       `json:"stats"`
	Tickets   []TicketResponse    `json:"recent_tickets"`
	Estimates []EstimateResponse  `json:"recent_estimates"`
	Invoices  []InvoiceResponse   `json:"recent_invoices"`
	Equipment []EquipmentResponse `json:"equipment"`
}

// TimelineEventResponse evento de la línea de tiempo.
type TimelineEventResponse struct {
	EventType   string    `json:"event_type"`
	ReferenceID string    `json:"reference_id"`
	Title       string    `json:"title"`
	Status      string    `json:"status,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EstimateResponse presupuesto en listados y embudo.
type EstimateResponse struct {
	ID             string          `json:"id"`
	EstimateNumber string          `json:"estimate_number"`
	CustomerID     string          `json:"customer_id"`
	CustomerName   string          `json:"customer_name,omitempty"`
	TicketID       *string         `json:"ticket_id,omitempty"`
	Title          string          `json:"title"`
	Status         string          `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PipelineID     *string         `json:"pipeline_id,omitempty"`
	StageID        *string         `json:"stage_id,omitempty"`
	LostReason     string          `json:"lost_reason,omitempty"`
	ExpectedClose  *string         `json:"expected_close,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// EstimateFromEntity mapea el presupuesto.
func EstimateFromEntity(e *entity.Estimate) EstimateResponse {
	return EstimateResponse{
		ID:             e.ID,
		EstimateNumber: e.EstimateNumber,
		CustomerID:     e.CustomerID,
		CustomerName:   e.CustomerName,
		TicketID:       e.TicketID,
		Title:          e.Title,
		Status:         e.Status,
		TotalAmount:    e.TotalAmount,
		PipelineID:     e.PipelineID,
		StageID:        e.StageID,
		LostReason:     e.LostReason,
		ExpectedClose:  formatDate(e.ExpectedClose),
		CreatedAt:      e.CreatedAt,
	}
}

// PipelineStageResponse etapa con sus presupuestos y el valor acumulado.
type PipelineStageResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	SortOrder   int                `json:"sort_order"`
	Probability int                `json:"probability"`
	IsWon       bool               `json:"is_won"`
	IsLost      bool               `json:"is_lost"`
	TotalValue  decimal.Decimal    `json:"total_value"`
	Estimates   []EstimateResponse `json:"estimates"`
}

// PipelineResponse embudo con sus etapas ordenadas.
type PipelineResponse struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	IsDefault bool                    `json:"is_default"`
	Stages    []PipelineStageResponse `json:"stages"`
}

// MoveEstimateRequest body para PUT /api/crm/estimates/:id/stage.
type MoveEstimateRequest struct {
	StageID string `json:"stage_id" validate:"required,uuid"`
}

// AddToPipelineRequest body para POST /api/crm/estimates/:id/pipeline.
type AddToPipelineRequest struct {
	PipelineID string `json:"pipeline_id" validate:"required,uuid"`
	StageID    string `json:"stage_id" validate:"omitempty,uuid"`
}

// MarkLostRequest body para POST /api/crm/estimates/:id/lost.
type MarkLostRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// LogInteractionRequest body para POST /api/crm/interactions.
type LogInteractionRequest struct {
	CustomerID      string  `json:"customer_id" validate:"required,uuid"`
	InteractionType string  `json:"interaction_type" validate:"required,oneof=call email sms meeting note site_visit"`
	Direction       string  `json:"direction" validate:"omitempty,oneof=inbound outbound"`
	Subject         string  `json:"subject" validate:"max=200"`
	Notes           string  `json:"notes" validate:"max=4000"`
	FollowUpDate    *string `json:"follow_up_date" validate:"omitempty,datetime=2006-01-02"`
}

// InteractionResponse interacción registrada.
type InteractionResponse struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customer_id"`
	CustomerName      string    `json:"customer_name,omitempty"`
	InteractionType   string    `json:"interaction_type"`
	Direction         string    `json:"direction,omitempty"`
	Subject           string    `json:"subject,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	FollowUpDate      *string   `json:"follow_up_date,omitempty"`
	FollowUpCompleted bool      `json:"follow_up_completed"`
	CreatedAt         time.Time `json:"created_at"`
}

// InteractionFromEntity mapea la interacción.
func InteractionFromEntity(i *entity.CustomerInteraction) InteractionResponse {
	return InteractionResponse{
		ID:                i.ID,
		CustomerID:        i.CustomerID,
		CustomerName:      i.CustomerName,
		InteractionType:   i.InteractionType,
		Direction:         i.Direction,
		Subject:           i.Subject,
		Notes:             i.Notes,
		FollowUpDate:      formatDate(i.FollowUpDate),
		FollowUpCompleted: i.FollowUpCompleted,
		CreatedAt:         i.CreatedAt,
	}
}

// CreateLeadRequest body para POST /api/crm/leads.
type CreateLeadRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=40"`
	Address      string `json:"address" validate:"max=300"`
	CustomerType string `json:"customer_type" validate:"omitempty,oneof=residential commercial"`
	LeadSource   string `json:"lead_source" validate:"max=80"`
}
