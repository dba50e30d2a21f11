package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// CustomerStats agregados sobre toda la historia del cliente.
type CustomerStats struct {
	TotalTickets     int
	OpenTickets      int
	TotalEstimates   int
	PendingEstimates int
	// TotalRevenue suma de facturas pagadas.
	TotalRevenue decimal.Decimal
	// AvgTicketValue promedio de billed_amount de los tickets completados con monto positivo.
	AvgTicketValue  decimal.Decimal
	LastServiceDate *time.Time
	ActiveEquipment int
}

// CustomerRepository puerto de persistencia para clientes (CRM).
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Customer, error)
	// ListByStatus clientes en un estado (ej. lead para la bandeja de leads), más recientes primero.
	ListByStatus(ctx context.Context, companyID, status string, limit int) ([]entity.Customer, error)
	// ListProspects clientes marcados como candidatos a reemplazo de equipo.
	ListProspects(ctx context.Context, companyID string, limit int) ([]entity.Customer, error)
	// Convert pasa un lead a activo y fija converted_at. Devuelve false si no estaba en estado lead.
	Convert(ctx context.Context, companyID, id string) (bool, error)
	// Stats agrega tickets, presupuestos, facturas y equipos del cliente en una sola consulta.
	Stats(ctx context.Context, companyID, customerID string) (*CustomerStats, error)
	// ListActiveEquipment equipos con is_active del cliente.
	ListActiveEquipment(ctx context.Context, companyID, customerID string) ([]entity.Equipment, error)
}
