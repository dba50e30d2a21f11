package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var _ repository.AHSRepository = (*AHSRepo)(nil)

// AHSRepo desglose de facturación y auditoría de garantías.
type AHSRepo struct {
	q Querier
}

// NewAHSRepository construye el adaptador.
func NewAHSRepository(q Querier) *AHSRepo {
	return &AHSRepo{q: q}
}

// BillingBreakdown llama a fn_get_ahs_billing_breakdown(ticket_id).
func (r *AHSRepo) BillingBreakdown(ctx context.Context, companyID, ticketID string) (*repository.BillingBreakdown, error) {
	const query = `
		SELECT COALESCE(ahs_total, 0), COALESCE(customer_total, 0), COALESCE(diagnosis_fee, 0),
		       COALESCE(ahs_labor, 0), COALESCE(ahs_parts, 0),
		       COALESCE(customer_labor, 0), COALESCE(customer_parts, 0)
		FROM fn_get_ahs_billing_breakdown($2)
		WHERE EXISTS (SELECT 1 FROM tickets WHERE id = $2 AND company_id = $1)`
	var b repository.BillingBreakdown
	err := r.q.QueryRow(ctx, query, companyID, ticketID).Scan(
		&b.AHSTotal, &b.CustomerTotal, &b.DiagnosisFee,
		&b.AHSLabor, &b.AHSParts, &b.CustomerLabor, &b.CustomerParts,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ahs.BillingBreakdown: %w", err)
	}
	return &b, nil
}

// CreateAudit inserta una entrada en ahs_audit_log.
func (r *AHSRepo) CreateAudit(ctx context.Context, e *entity.AHSAuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	const query = `
		INSERT INTO ahs_audit_log (id, company_id, entity_type, entity_id, action, old_value, new_value, changed_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.CompanyID, e.EntityType, e.EntityID, e.Action,
		nullIfEmpty(e.OldValue), nullIfEmpty(e.NewValue), nullIfEmpty(e.ChangedBy), nullIfEmpty(e.Reason), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ahs audit: %w", err)
	}
	return nil
}

// ListAudit historial más reciente primero.
func (r *AHSRepo) ListAudit(ctx context.Context, companyID string, limit int) ([]entity.AHSAuditEntry, error) {
	const query = `
		SELECT id, company_id, entity_type, entity_id, action,
		       COALESCE(old_value, ''), COALESCE(new_value, ''), COALESCE(changed_by::TEXT, ''), COALESCE(reason, ''), created_at
		FROM ahs_audit_log
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ahs audit: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.AHSAuditEntry, error) {
		var e entity.AHSAuditEntry
		err := s.Scan(&e.ID, &e.CompanyID, &e.EntityType, &e.EntityID, &e.Action,
			&e.OldValue, &e.NewValue, &e.ChangedBy, &e.Reason, &e.CreatedAt)
		return e, err
	})
}
