package entity

import "time"

// DealPipeline embudo de ventas con etapas ordenadas.
type DealPipeline struct {
	ID        string
	CompanyID string
	Name      string
	IsDefault bool
	Stages    []DealStage
}

// DealStage etapa de un embudo.
type DealStage struct {
	ID          string
	PipelineID  string
	Name        string
	SortOrder   int
	Probability int
	IsWon       bool
	IsLost      bool
}

// Tipos y direcciones de interacción con clientes.
const (
	InteractionCall      = "call"
	InteractionEmail     = "email"
	InteractionSMS       = "sms"
	InteractionMeeting   = "meeting"
	InteractionNote      = "note"
	InteractionSiteVisit = "site_visit"

	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// CustomerInteraction contacto registrado con un cliente.
type CustomerInteraction struct {
	ID                string
	CompanyID         string
	CustomerID        string
	CustomerName      string
	InteractionType   string
	Direction         string
	Subject           string
	Notes             string
	FollowUpDate      *time.Time
	FollowUpCompleted bool
	CreatedBy         string
	CreatedAt         time.Time
}

// TimelineEvent evento unificado en la línea de tiempo del cliente.
type TimelineEvent struct {
	EventType   string // ticket | estimate | invoice | interaction
	ReferenceID string
	Title       string
	Status      string
	OccurredAt  time.Time
}
