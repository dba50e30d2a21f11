package repository

import (
	"context"
	"time"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// EstimateRepository presupuestos y su posición en el embudo de ventas.
type EstimateRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Estimate, error)
	// ListLinesForTicket líneas del presupuesto aceptado (o el más reciente) del ticket.
	ListLinesForTicket(ctx context.Context, companyID, ticketID string) ([]entity.EstimateLineItem, error)
	ListByPipeline(ctx context.Context, companyID, pipelineID string) ([]entity.Estimate, error)
	ListByStatus(ctx context.Context, companyID, status string, limit int) ([]entity.Estimate, error)
	ListByCustomer(ctx context.Context, companyID, customerID string, limit int) ([]entity.Estimate, error)
	SetStage(ctx context.Context, companyID, id string, pipelineID, stageID string) error
	// MarkLost rechaza el presupuesto y, con lostStageID, lo mueve a la etapa de perdidos en la misma sentencia.
	MarkLost(ctx context.Context, companyID, id, reason string, lostStageID *string) error
}

// PipelineRepository embudos y etapas.
type PipelineRepository interface {
	// List embudos con sus etapas ordenadas por sort_order.
	List(ctx context.Context, companyID string) ([]entity.DealPipeline, error)
	GetStage(ctx context.Context, companyID, stageID string) (*entity.DealStage, error)
}

// InteractionRepository interacciones con clientes.
type InteractionRepository interface {
	Create(ctx context.Context, i *entity.CustomerInteraction) error
	ListByCustomer(ctx context.Context, companyID, customerID string, limit int) ([]entity.CustomerInteraction, error)
	// ListFollowUpsBetween seguimientos pendientes con fecha en [from, to].
	ListFollowUpsBetween(ctx context.Context, companyID string, from, to time.Time) ([]entity.CustomerInteraction, error)
}
