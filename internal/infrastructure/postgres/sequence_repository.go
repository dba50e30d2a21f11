package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador atómico por (empresa, clave) en la tabla document_sequences.
// La clave es el prefijo completo del documento, ej. "INV-2401" o "PR-2024".
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador y devuelve el valor asignado. El UPSERT toma un lock de fila,
// así que dos llamadas concurrentes nunca obtienen el mismo número.
// Si la fila no existe se siembra con el mayor consecutivo ya usado en invoices / payroll_runs
// para continuar la numeración existente.
func (r *SequenceRepo) Next(ctx context.Context, companyID, key string) (int64, error) {
	const query = `
	INSERT INTO document_sequences (company_id, sequence_key, last_value)
	VALUES ($1, $2, 1 + GREATEST(
	    (SELECT COALESCE(MAX(SUBSTRING(invoice_number FROM LENGTH($2) + 2)::BIGINT), 0)
	       FROM invoices
	      WHERE company_id = $1 AND invoice_number ~ ('^' || $2 || '-[0-9]+$')),
	    (SELECT COALESCE(MAX(SUBSTRING(run_number FROM LENGTH($2) + 2)::BIGINT), 0)
	       FROM payroll_runs
	      WHERE company_id = $1 AND run_number ~ ('^' || $2 || '-[0-9]+$'))
	))
	ON CONFLICT (company_id, sequence_key)
	DO UPDATE SET last_value = document_sequences.last_value + 1
	RETURNING last_value`

	var next int64
	if err := r.q.QueryRow(ctx, query, companyID, key).Scan(&next); err != nil {
		return 0, fmt.Errorf("sequence.Next %s: %w", key, err)
	}
	return next, nil
}
