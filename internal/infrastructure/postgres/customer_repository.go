package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerSelect = `
	SELECT id, company_id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''),
	       COALESCE(customer_type, ''), status, COALESCE(lead_source, ''),
	       COALESCE(prospect_replacement_flag, FALSE), converted_at, created_at, updated_at
	FROM customers`

func scanCustomer(row rowScanner) (entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.CustomerType, &c.Status, &c.LeadSource, &c.ProspectReplacementFlag, &c.ConvertedAt,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create persiste un cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	const query = `
		INSERT INTO customers (id, company_id, name, email, phone, address, customer_type, status, lead_source,
		                       prospect_replacement_flag, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.CompanyID, c.Name, nullIfEmpty(c.Email), nullIfEmpty(c.Phone), nullIfEmpty(c.Address),
		nullIfEmpty(c.CustomerType), c.Status, nullIfEmpty(c.LeadSource), c.ProspectReplacementFlag,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID devuelve nil, nil si no existe en la empresa.
func (r *CustomerRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, customerSelect+` WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// ListByStatus clientes por estado.
func (r *CustomerRepo) ListByStatus(ctx context.Context, companyID, status string, limit int) ([]entity.Customer, error) {
	rows, err := r.q.Query(ctx, customerSelect+` WHERE company_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT $3`,
		companyID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list customers by status: %w", err)
	}
	return collect(rows, scanCustomer)
}

// ListProspects candidatos a reemplazo de equipo.
func (r *CustomerRepo) ListProspects(ctx context.Context, companyID string, limit int) ([]entity.Customer, error) {
	rows, err := r.q.Query(ctx, customerSelect+` WHERE company_id = $1 AND prospect_replacement_flag ORDER BY updated_at DESC LIMIT $2`,
		companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}
	return collect(rows, scanCustomer)
}

// Convert lead → active.
func (r *CustomerRepo) Convert(ctx context.Context, companyID, id string) (bool, error) {
	const query = `
		UPDATE customers
		SET status = 'active', converted_at = NOW(), updated_at = NOW()
		WHERE company_id = $1 AND id = $2 AND status = 'lead'`
	tag, err := r.q.Exec(ctx, query, companyID, id)
	if err != nil {
		return false, fmt.Errorf("convert lead: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Stats agregados del cliente sin límite de filas.
func (r *CustomerRepo) Stats(ctx context.Context, companyID, customerID string) (*repository.CustomerStats, error) {
	const query = `
		SELECT
		    (SELECT COUNT(*) FROM tickets WHERE company_id = $1 AND customer_id = $2),
		    (SELECT COUNT(*) FROM tickets WHERE company_id = $1 AND customer_id = $2
		        AND status NOT IN ('completed', 'cancelled')),
		    (SELECT COUNT(*) FROM estimates WHERE company_id = $1 AND customer_id = $2),
		    (SELECT COUNT(*) FROM estimates WHERE company_id = $1 AND customer_id = $2 AND status = 'sent'),
		    (SELECT COALESCE(SUM(total_amount), 0) FROM invoices
		        WHERE company_id = $1 AND customer_id = $2 AND status = 'paid'),
		    (SELECT COALESCE(ROUND(AVG(billed_amount), 2), 0) FROM tickets
		        WHERE company_id = $1 AND customer_id = $2 AND status = 'completed' AND billed_amount > 0),
		    (SELECT MAX(completed_date) FROM tickets
		        WHERE company_id = $1 AND customer_id = $2 AND status = 'completed'),
		    (SELECT COUNT(*) FROM equipment eq JOIN customers c ON c.id = eq.customer_id
		        WHERE c.company_id = $1 AND eq.customer_id = $2 AND eq.is_active)`
	var s repository.CustomerStats
	err := r.q.QueryRow(ctx, query, companyID, customerID).Scan(
		&s.TotalTickets, &s.OpenTickets, &s.TotalEstimates, &s.PendingEstimates,
		&s.TotalRevenue, &s.AvgTicketValue, &s.LastServiceDate, &s.ActiveEquipment,
	)
	if err != nil {
		return nil, fmt.Errorf("customer stats: %w", err)
	}
	return &s, nil
}

// ListActiveEquipment equipos activos del cliente.
func (r *CustomerRepo) ListActiveEquipment(ctx context.Context, companyID, customerID string) ([]entity.Equipment, error) {
	const query = `
		SELECT eq.id, eq.customer_id, COALESCE(eq.equipment_type, ''), COALESCE(eq.manufacturer, ''),
		       COALESCE(eq.model_number, ''), COALESCE(eq.serial_number, ''), eq.installation_date, eq.is_active
		FROM equipment eq
		JOIN customers c ON c.id = eq.customer_id
		WHERE c.company_id = $1 AND eq.customer_id = $2 AND eq.is_active
		ORDER BY eq.installation_date DESC NULLS LAST`
	rows, err := r.q.Query(ctx, query, companyID, customerID)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.Equipment, error) {
		var e entity.Equipment
		err := s.Scan(&e.ID, &e.CustomerID, &e.EquipmentType, &e.Manufacturer,
			&e.ModelNumber, &e.SerialNumber, &e.InstallationDate, &e.IsActive)
		return e, err
	})
}
