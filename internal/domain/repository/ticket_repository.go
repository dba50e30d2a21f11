package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// TicketRepository tickets y su trabajo en sitio.
type TicketRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Ticket, error)
	// ListOpenByTechnician tickets asignados que no están completados ni cancelados.
	ListOpenByTechnician(ctx context.Context, companyID, technicianID string) ([]entity.Ticket, error)
	ListCompletedByTechnician(ctx context.Context, companyID, technicianID string, limit int) ([]entity.Ticket, error)
	ListByCustomer(ctx context.Context, companyID, customerID string, limit int) ([]entity.Ticket, error)
	UpdateStatus(ctx context.Context, companyID, id, status string) error

	ListUpdates(ctx context.Context, ticketID string) ([]entity.TicketUpdate, error)
	CreateUpdate(ctx context.Context, u *entity.TicketUpdate) error
	ListPartsUsed(ctx context.Context, ticketID string) ([]entity.TicketPartUsed, error)
	AddPartUsed(ctx context.Context, p *entity.TicketPartUsed) error
	ListPhotos(ctx context.Context, ticketID string) ([]entity.TicketPhoto, error)
	CreatePhoto(ctx context.Context, p *entity.TicketPhoto) error

	// StartWork / EndWork / ActiveTimer envuelven las funciones del servidor fn_start_ticket_work,
	// fn_end_ticket_work y fn_get_active_timer.
	StartWork(ctx context.Context, ticketID, technicianID string) (string, error)
	EndWork(ctx context.Context, ticketID, technicianID string, complete bool) (decimal.Decimal, error)
	ActiveTimer(ctx context.Context, technicianID string) (*entity.ActiveTimer, error)

	TruckInventory(ctx context.Context, companyID, technicianID string) ([]entity.Part, error)
	PartsCatalog(ctx context.Context, companyID string) ([]entity.Part, error)
}

// TrackingRepository proyección del mapa de técnicos en una sola consulta.
type TrackingRepository interface {
	ActiveTechnicians(ctx context.Context, companyID string) ([]entity.TechnicianStatus, error)
}
