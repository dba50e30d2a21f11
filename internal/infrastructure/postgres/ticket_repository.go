package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo tickets, bitácora, repuestos, fotos y temporizador de trabajo.
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador.
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

const ticketSelect = `
	SELECT t.id, t.company_id, COALESCE(t.ticket_number, ''), t.customer_id, COALESCE(c.name, ''), t.assigned_to,
	       COALESCE(t.title, ''), COALESCE(t.description, ''), t.status, COALESCE(t.priority, ''),
	       COALESCE(t.service_type, ''), t.ahs_dispatch_number, t.scheduled_date, t.completed_date,
	       t.hours_onsite, t.billed_amount, t.estimated_onsite_minutes, t.work_started_at,
	       t.created_at, t.updated_at
	FROM tickets t
	LEFT JOIN customers c ON c.id = t.customer_id`

func scanTicket(row rowScanner) (entity.Ticket, error) {
	var t entity.Ticket
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.TicketNumber, &t.CustomerID, &t.CustomerName, &t.AssignedTo,
		&t.Title, &t.Description, &t.Status, &t.Priority,
		&t.ServiceType, &t.AHSDispatchNumber, &t.ScheduledDate, &t.CompletedDate,
		&t.HoursOnsite, &t.BilledAmount, &t.EstimatedOnsiteMinutes, &t.WorkStartedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// GetByID devuelve nil, nil si no existe en la empresa.
func (r *TicketRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Ticket, error) {
	t, err := scanTicket(r.q.QueryRow(ctx, ticketSelect+` WHERE t.company_id = $1 AND t.id = $2`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

// ListOpenByTechnician tickets pendientes del técnico, por fecha programada.
func (r *TicketRepo) ListOpenByTechnician(ctx context.Context, companyID, technicianID string) ([]entity.Ticket, error) {
	rows, err := r.q.Query(ctx, ticketSelect+`
		WHERE t.company_id = $1 AND t.assigned_to = $2 AND t.status NOT IN ('completed', 'cancelled')
		ORDER BY t.scheduled_date NULLS LAST, t.created_at`, companyID, technicianID)
	if err != nil {
		return nil, fmt.Errorf("list open tickets: %w", err)
	}
	return collect(rows, scanTicket)
}

// ListCompletedByTechnician últimos tickets completados.
func (r *TicketRepo) ListCompletedByTechnician(ctx context.Context, companyID, technicianID string, limit int) ([]entity.Ticket, error) {
	rows, err := r.q.Query(ctx, ticketSelect+`
		WHERE t.company_id = $1 AND t.assigned_to = $2 AND t.status = 'completed'
		ORDER BY t.completed_date DESC NULLS LAST
		LIMIT $3`, companyID, technicianID, limit)
	if err != nil {
		return nil, fmt.Errorf("list completed tickets: %w", err)
	}
	return collect(rows, scanTicket)
}

// ListByCustomer últimos tickets de un cliente.
func (r *TicketRepo) ListByCustomer(ctx context.Context, companyID, customerID string, limit int) ([]entity.Ticket, error) {
	rows, err := r.q.Query(ctx, ticketSelect+`
		WHERE t.company_id = $1 AND t.customer_id = $2
		ORDER BY t.created_at DESC
		LIMIT $3`, companyID, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list tickets by customer: %w", err)
	}
	return collect(rows, scanTicket)
}

// UpdateStatus cambia el estado; completed fija completed_date.
func (r *TicketRepo) UpdateStatus(ctx context.Context, companyID, id, status string) error {
	const query = `
		UPDATE tickets
		SET status = $3,
		    completed_date = CASE WHEN $3 = 'completed' THEN COALESCE(completed_date, NOW()) ELSE completed_date END,
		    updated_at = NOW()
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, companyID, id, status)
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListUpdates bitácora, más reciente primero.
func (r *TicketRepo) ListUpdates(ctx context.Context, ticketID string) ([]entity.TicketUpdate, error) {
	const query = `
		SELECT id, ticket_id, COALESCE(updated_by::TEXT, ''), update_type, COALESCE(message, ''), new_status, created_at
		FROM ticket_updates WHERE ticket_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list ticket updates: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.TicketUpdate, error) {
		var u entity.TicketUpdate
		err := s.Scan(&u.ID, &u.TicketID, &u.UpdatedBy, &u.UpdateType, &u.Message, &u.NewStatus, &u.CreatedAt)
		return u, err
	})
}

// CreateUpdate inserta una entrada de bitácora.
func (r *TicketRepo) CreateUpdate(ctx context.Context, u *entity.TicketUpdate) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()
	const query = `
		INSERT INTO ticket_updates (id, ticket_id, updated_by, update_type, message, new_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query, u.ID, u.TicketID, u.UpdatedBy, u.UpdateType, nullIfEmpty(u.Message), u.NewStatus, u.CreatedAt); err != nil {
		return fmt.Errorf("insert ticket update: %w", err)
	}
	return nil
}

// ListPartsUsed repuestos consumidos con nombre del catálogo.
func (r *TicketRepo) ListPartsUsed(ctx context.Context, ticketID string) ([]entity.TicketPartUsed, error) {
	const query = `
		SELECT tp.id, tp.ticket_id, tp.part_id, COALESCE(p.name, ''), tp.quantity, COALESCE(tp.unit_cost, p.unit_cost, 0),
		       COALESCE(tp.added_by::TEXT, ''), tp.created_at
		FROM ticket_parts_used tp
		LEFT JOIN parts p ON p.id = tp.part_id
		WHERE tp.ticket_id = $1
		ORDER BY tp.created_at`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list parts used: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.TicketPartUsed, error) {
		var p entity.TicketPartUsed
		err := s.Scan(&p.ID, &p.TicketID, &p.PartID, &p.PartName, &p.Quantity, &p.UnitCost, &p.AddedBy, &p.CreatedAt)
		return p, err
	})
}

// AddPartUsed registra un repuesto; el costo unitario se toma del catálogo.
func (r *TicketRepo) AddPartUsed(ctx context.Context, p *entity.TicketPartUsed) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()
	const query = `
		INSERT INTO ticket_parts_used (id, ticket_id, part_id, quantity, unit_cost, added_by, created_at)
		SELECT $1, $2, $3, $4, p.unit_cost, $5, $6 FROM parts p WHERE p.id = $3
		RETURNING unit_cost`
	err := r.q.QueryRow(ctx, query, p.ID, p.TicketID, p.PartID, p.Quantity, p.AddedBy, p.CreatedAt).Scan(&p.UnitCost)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert part used: %w", err)
	}
	return nil
}

// ListPhotos fotos del ticket.
func (r *TicketRepo) ListPhotos(ctx context.Context, ticketID string) ([]entity.TicketPhoto, error) {
	const query = `
		SELECT id, ticket_id, photo_url, COALESCE(storage_key, ''), photo_type, COALESCE(caption, ''),
		       COALESCE(uploaded_by::TEXT, ''), created_at
		FROM ticket_photos WHERE ticket_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list ticket photos: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.TicketPhoto, error) {
		var p entity.TicketPhoto
		err := s.Scan(&p.ID, &p.TicketID, &p.PhotoURL, &p.StorageKey, &p.PhotoType, &p.Caption, &p.UploadedBy, &p.CreatedAt)
		return p, err
	})
}

// CreatePhoto registra una foto ya subida al bucket.
func (r *TicketRepo) CreatePhoto(ctx context.Context, p *entity.TicketPhoto) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()
	const query = `
		INSERT INTO ticket_photos (id, ticket_id, photo_url, storage_key, photo_type, caption, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.TicketID, p.PhotoURL, p.StorageKey, p.PhotoType, nullIfEmpty(p.Caption), p.UploadedBy, p.CreatedAt); err != nil {
		return fmt.Errorf("insert ticket photo: %w", err)
	}
	return nil
}

// StartWork abre un registro de horas vía fn_start_ticket_work y devuelve su id.
// La función del servidor lanza una excepción si el técnico ya tiene un temporizador abierto.
func (r *TicketRepo) StartWork(ctx context.Context, ticketID, technicianID string) (string, error) {
	var timeLogID string
	err := r.q.QueryRow(ctx, `SELECT fn_start_ticket_work($1, $2)::TEXT`, ticketID, technicianID).Scan(&timeLogID)
	if err != nil {
		if msg, ok := isRaisedException(err); ok {
			return "", fmt.Errorf("%s: %w", msg, domain.ErrTimerActive)
		}
		return "", fmt.Errorf("fn_start_ticket_work: %w", err)
	}
	return timeLogID, nil
}

// EndWork cierra el registro abierto y devuelve las horas trabajadas.
func (r *TicketRepo) EndWork(ctx context.Context, ticketID, technicianID string, complete bool) (decimal.Decimal, error) {
	var hours decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(fn_end_ticket_work($1, $2, $3), 0)`, ticketID, technicianID, complete).Scan(&hours)
	if err != nil {
		if msg, ok := isRaisedException(err); ok {
			return decimal.Zero, fmt.Errorf("%s: %w", msg, domain.ErrConflict)
		}
		return decimal.Zero, fmt.Errorf("fn_end_ticket_work: %w", err)
	}
	return hours, nil
}

// ActiveTimer devuelve nil, nil si el técnico no tiene temporizador abierto.
func (r *TicketRepo) ActiveTimer(ctx context.Context, technicianID string) (*entity.ActiveTimer, error) {
	var t entity.ActiveTimer
	err := r.q.QueryRow(ctx, `SELECT time_log_id::TEXT, ticket_id::TEXT, clock_in_time FROM fn_get_active_timer($1)`, technicianID).
		Scan(&t.TimeLogID, &t.TicketID, &t.ClockIn)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fn_get_active_timer: %w", err)
	}
	return &t, nil
}

// TruckInventory repuestos con stock en el camión del técnico.
func (r *TicketRepo) TruckInventory(ctx context.Context, companyID, technicianID string) ([]entity.Part, error) {
	const query = `
		SELECT p.id, COALESCE(p.part_number, ''), p.name, COALESCE(p.unit_cost, 0), COALESCE(p.unit_price, 0), ti.quantity
		FROM truck_inventory ti
		JOIN parts p ON p.id = ti.part_id
		WHERE p.company_id = $1 AND ti.technician_id = $2 AND ti.quantity > 0
		ORDER BY p.name`
	rows, err := r.q.Query(ctx, query, companyID, technicianID)
	if err != nil {
		return nil, fmt.Errorf("truck inventory: %w", err)
	}
	return collect(rows, scanPart)
}

// PartsCatalog catálogo completo con stock global.
func (r *TicketRepo) PartsCatalog(ctx context.Context, companyID string) ([]entity.Part, error) {
	const query = `
		SELECT id, COALESCE(part_number, ''), name, COALESCE(unit_cost, 0), COALESCE(unit_price, 0), COALESCE(quantity_on_hand, 0)
		FROM parts WHERE company_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("parts catalog: %w", err)
	}
	return collect(rows, scanPart)
}

func scanPart(s rowScanner) (entity.Part, error) {
	var p entity.Part
	err := s.Scan(&p.ID, &p.PartNumber, &p.Name, &p.UnitCost, &p.UnitPrice, &p.Quantity)
	return p, err
}
