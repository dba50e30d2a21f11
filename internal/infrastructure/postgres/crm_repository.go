package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var (
	_ repository.EstimateRepository    = (*EstimateRepo)(nil)
	_ repository.PipelineRepository    = (*PipelineRepo)(nil)
	_ repository.InteractionRepository = (*InteractionRepo)(nil)
)

// EstimateRepo presupuestos.
type EstimateRepo struct {
	q Querier
}

// NewEstimateRepository construye el adaptador.
func NewEstimateRepository(q Querier) *EstimateRepo {
	return &EstimateRepo{q: q}
}

const estimateSelect = `
	SELECT e.id, e.company_id, COALESCE(e.estimate_number, ''), e.customer_id, COALESCE(c.name, ''), e.ticket_id,
	       COALESCE(e.title, ''), e.status, COALESCE(e.total_amount, 0), ds.pipeline_id, e.deal_stage_id,
	       COALESCE(e.lost_reason, ''), e.expected_close_date, e.created_at, e.updated_at
	FROM estimates e
	LEFT JOIN customers c ON c.id = e.customer_id
	LEFT JOIN deal_stages ds ON ds.id = e.deal_stage_id`

func scanEstimate(s rowScanner) (entity.Estimate, error) {
	var e entity.Estimate
	err := s.Scan(&e.ID, &e.CompanyID, &e.EstimateNumber, &e.CustomerID, &e.CustomerName, &e.TicketID,
		&e.Title, &e.Status, &e.TotalAmount, &e.PipelineID, &e.StageID,
		&e.LostReason, &e.ExpectedClose, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// GetByID devuelve nil, nil si no existe.
func (r *EstimateRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Estimate, error) {
	e, err := scanEstimate(r.q.QueryRow(ctx, estimateSelect+` WHERE e.company_id = $1 AND e.id = $2`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get estimate: %w", err)
	}
	return &e, nil
}

// ListLinesForTicket prioriza el presupuesto aceptado; si no hay, el más reciente.
func (r *EstimateRepo) ListLinesForTicket(ctx context.Context, companyID, ticketID string) ([]entity.EstimateLineItem, error) {
	const query = `
		WITH chosen AS (
		    SELECT id FROM estimates
		    WHERE company_id = $1 AND ticket_id = $2
		    ORDER BY (status = 'accepted') DESC, created_at DESC
		    LIMIT 1
		)
		SELECT li.id, li.estimate_id, li.description, li.quantity, li.unit_price,
		       COALESCE(li.line_total, li.quantity * li.unit_price), COALESCE(li.item_type, 'service'),
		       COALESCE(li.payer_type, 'CUSTOMER'), COALESCE(li.sort_order, 0)
		FROM estimate_line_items li
		JOIN chosen ON chosen.id = li.estimate_id
		ORDER BY li.sort_order`
	rows, err := r.q.Query(ctx, query, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list estimate lines: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.EstimateLineItem, error) {
		var li entity.EstimateLineItem
		err := s.Scan(&li.ID, &li.EstimateID, &li.Description, &li.Quantity, &li.UnitPrice,
			&li.LineTotal, &li.ItemType, &li.PayerType, &li.SortOrder)
		return li, err
	})
}

// ListByPipeline presupuestos del embudo. Los rechazados solo aparecen si están en la etapa de perdidos.
func (r *EstimateRepo) ListByPipeline(ctx context.Context, companyID, pipelineID string) ([]entity.Estimate, error) {
	rows, err := r.q.Query(ctx, estimateSelect+`
		WHERE e.company_id = $1 AND ds.pipeline_id = $2 AND (e.status <> 'rejected' OR ds.is_lost)
		ORDER BY e.updated_at DESC`, companyID, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("list estimates by pipeline: %w", err)
	}
	return collect(rows, scanEstimate)
}

// ListByStatus presupuestos por estado, recientes primero.
func (r *EstimateRepo) ListByStatus(ctx context.Context, companyID, status string, limit int) ([]entity.Estimate, error) {
	rows, err := r.q.Query(ctx, estimateSelect+`
		WHERE e.company_id = $1 AND e.status = $2
		ORDER BY e.created_at DESC LIMIT $3`, companyID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list estimates by status: %w", err)
	}
	return collect(rows, scanEstimate)
}

// ListByCustomer presupuestos del cliente.
func (r *EstimateRepo) ListByCustomer(ctx context.Context, companyID, customerID string, limit int) ([]entity.Estimate, error) {
	rows, err := r.q.Query(ctx, estimateSelect+`
		WHERE e.company_id = $1 AND e.customer_id = $2
		ORDER BY e.created_at DESC LIMIT $3`, companyID, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list estimates by customer: %w", err)
	}
	return collect(rows, scanEstimate)
}

// SetStage mueve el presupuesto a otra etapa. La etapa debe pertenecer a pipelineID.
func (r *EstimateRepo) SetStage(ctx context.Context, companyID, id string, pipelineID, stageID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE estimates SET deal_stage_id = $4, stage_entered_at = NOW(), updated_at = NOW()
		WHERE company_id = $1 AND id = $2
		  AND EXISTS (SELECT 1 FROM deal_stages WHERE id = $4 AND pipeline_id = $3)`, companyID, id, pipelineID, stageID)
	if err != nil {
		return fmt.Errorf("set estimate stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkLost rechaza el presupuesto con motivo y, si lostStageID no es nil, lo mueve a esa etapa.
func (r *EstimateRepo) MarkLost(ctx context.Context, companyID, id, reason string, lostStageID *string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE estimates
		SET status = 'rejected', lost_reason = $3,
		    deal_stage_id = COALESCE($4, deal_stage_id),
		    stage_entered_at = CASE WHEN $4::UUID IS NULL THEN stage_entered_at ELSE NOW() END,
		    updated_at = NOW()
		WHERE company_id = $1 AND id = $2`, companyID, id, reason, lostStageID)
	if err != nil {
		return fmt.Errorf("mark estimate lost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PipelineRepo embudos de venta.
type PipelineRepo struct {
	q Querier
}

// NewPipelineRepository construye el adaptador.
func NewPipelineRepository(q Querier) *PipelineRepo {
	return &PipelineRepo{q: q}
}

// List embudos con etapas; una sola consulta ordenada y agrupación en memoria.
func (r *PipelineRepo) List(ctx context.Context, companyID string) ([]entity.DealPipeline, error) {
	const query = `
		SELECT p.id, p.name, COALESCE(p.is_default, FALSE),
		       s.id, s.name, COALESCE(s.sort_order, 0), COALESCE(s.probability, 0),
		       COALESCE(s.is_won, FALSE), COALESCE(s.is_lost, FALSE)
		FROM deal_pipelines p
		LEFT JOIN deal_stages s ON s.pipeline_id = p.id
		WHERE p.company_id = $1
		ORDER BY p.is_default DESC, p.name, s.sort_order`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	var out []entity.DealPipeline
	index := map[string]int{}
	for rows.Next() {
		var (
			pID, pName             string
			isDefault              bool
			sID, sName             *string
			sortOrder, probability int
			isWon, isLost          bool
		)
		if err := rows.Scan(&pID, &pName, &isDefault, &sID, &sName, &sortOrder, &probability, &isWon, &isLost); err != nil {
			return nil, fmt.Errorf("list pipelines scan: %w", err)
		}
		i, ok := index[pID]
		if !ok {
			i = len(out)
			index[pID] = i
			out = append(out, entity.DealPipeline{ID: pID, CompanyID: companyID, Name: pName, IsDefault: isDefault, Stages: []entity.DealStage{}})
		}
		if sID != nil {
			out[i].Stages = append(out[i].Stages, entity.DealStage{
				ID: *sID, PipelineID: pID, Name: derefStr(sName), SortOrder: sortOrder,
				Probability: probability, IsWon: isWon, IsLost: isLost,
			})
		}
	}
	return out, rows.Err()
}

// GetStage devuelve nil, nil si la etapa no pertenece a un embudo de la empresa.
func (r *PipelineRepo) GetStage(ctx context.Context, companyID, stageID string) (*entity.DealStage, error) {
	const query = `
		SELECT s.id, s.pipeline_id, s.name, COALESCE(s.sort_order, 0), COALESCE(s.probability, 0),
		       COALESCE(s.is_won, FALSE), COALESCE(s.is_lost, FALSE)
		FROM deal_stages s
		JOIN deal_pipelines p ON p.id = s.pipeline_id
		WHERE p.company_id = $1 AND s.id = $2`
	var s entity.DealStage
	err := r.q.QueryRow(ctx, query, companyID, stageID).Scan(&s.ID, &s.PipelineID, &s.Name, &s.SortOrder, &s.Probability, &s.IsWon, &s.IsLost)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stage: %w", err)
	}
	return &s, nil
}

// InteractionRepo interacciones con clientes.
type InteractionRepo struct {
	q Querier
}

// NewInteractionRepository construye el adaptador.
func NewInteractionRepository(q Querier) *InteractionRepo {
	return &InteractionRepo{q: q}
}

const interactionSelect = `
	SELECT i.id, i.company_id, i.customer_id, COALESCE(c.name, ''), i.interaction_type, COALESCE(i.direction, ''),
	       COALESCE(i.subject, ''), COALESCE(i.notes, ''), i.follow_up_date, COALESCE(i.follow_up_completed, FALSE),
	       COALESCE(i.created_by::TEXT, ''), i.created_at
	FROM customer_interactions i
	LEFT JOIN customers c ON c.id = i.customer_id`

func scanInteraction(s rowScanner) (entity.CustomerInteraction, error) {
	var i entity.CustomerInteraction
	err := s.Scan(&i.ID, &i.CompanyID, &i.CustomerID, &i.CustomerName, &i.InteractionType, &i.Direction,
		&i.Subject, &i.Notes, &i.FollowUpDate, &i.FollowUpCompleted, &i.CreatedBy, &i.CreatedAt)
	return i, err
}

// Create registra una interacción.
func (r *InteractionRepo) Create(ctx context.Context, i *entity.CustomerInteraction) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	i.CreatedAt = time.Now()
	const query = `
		INSERT INTO customer_interactions
		    (id, company_id, customer_id, interaction_type, direction, subject, notes, follow_up_date, follow_up_completed, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9, $10)`
	_, err := r.q.Exec(ctx, query, i.ID, i.CompanyID, i.CustomerID, i.InteractionType, nullIfEmpty(i.Direction),
		nullIfEmpty(i.Subject), nullIfEmpty(i.Notes), i.FollowUpDate, i.CreatedBy, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// ListByCustomer interacciones recientes del cliente.
func (r *InteractionRepo) ListByCustomer(ctx context.Context, companyID, customerID string, limit int) ([]entity.CustomerInteraction, error) {
	rows, err := r.q.Query(ctx, interactionSelect+`
		WHERE i.company_id = $1 AND i.customer_id = $2
		ORDER BY i.created_at DESC LIMIT $3`, companyID, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return collect(rows, scanInteraction)
}

// ListFollowUpsBetween seguimientos no completados en la ventana.
func (r *InteractionRepo) ListFollowUpsBetween(ctx context.Context, companyID string, from, to time.Time) ([]entity.CustomerInteraction, error) {
	rows, err := r.q.Query(ctx, interactionSelect+`
		WHERE i.company_id = $1 AND NOT COALESCE(i.follow_up_completed, FALSE)
		  AND i.follow_up_date BETWEEN $2 AND $3
		ORDER BY i.follow_up_date`, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list follow ups: %w", err)
	}
	return collect(rows, scanInteraction)
}
