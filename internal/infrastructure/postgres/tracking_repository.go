package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var _ repository.TrackingRepository = (*TrackingRepo)(nil)

// TrackingRepo proyección del mapa de técnicos.
type TrackingRepo struct {
	q Querier
}

// NewTrackingRepository construye el adaptador.
func NewTrackingRepository(q Querier) *TrackingRepo {
	return &TrackingRepo{q: q}
}

// ActiveTechnicians técnicos activos con su última ubicación y tickets programados/en curso.
// Se resuelve en dos consultas (técnicos + ubicación con LATERAL, luego tickets activos) en vez
// de una consulta por técnico.
func (r *TrackingRepo) ActiveTechnicians(ctx context.Context, companyID string) ([]entity.TechnicianStatus, error) {
	const techQuery = `
		SELECT p.id, COALESCE(p.full_name, ''), loc.latitude, loc.longitude, loc.accuracy, loc.recorded_at
		FROM profiles p
		LEFT JOIN LATERAL (
		    SELECT latitude, longitude, accuracy, recorded_at
		    FROM technician_locations tl
		    WHERE tl.technician_id = p.id
		    ORDER BY recorded_at DESC
		    LIMIT 1
		) loc ON TRUE
		WHERE p.company_id = $1 AND p.role = 'technician' AND p.is_active
		ORDER BY p.full_name`

	rows, err := r.q.Query(ctx, techQuery, companyID)
	if err != nil {
		return nil, fmt.Errorf("tracking.ActiveTechnicians: %w", err)
	}
	var out []entity.TechnicianStatus
	index := map[string]int{}
	for rows.Next() {
		var st entity.TechnicianStatus
		var lat, lng, acc *float64
		var recordedAt *time.Time
		if err := rows.Scan(&st.TechnicianID, &st.FullName, &lat, &lng, &acc, &recordedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("tracking.ActiveTechnicians scan: %w", err)
		}
		if lat != nil && lng != nil && recordedAt != nil {
			st.Location = &entity.TechnicianLocation{
				TechnicianID: st.TechnicianID, Latitude: *lat, Longitude: *lng, Accuracy: acc, RecordedAt: *recordedAt,
			}
		}
		st.ActiveTickets = []entity.Ticket{}
		index[st.TechnicianID] = len(out)
		out = append(out, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tracking.ActiveTechnicians rows: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ticketRows, err := r.q.Query(ctx, ticketSelect+`
		WHERE t.company_id = $1 AND t.assigned_to IS NOT NULL AND t.status IN ('scheduled', 'in_progress')
		ORDER BY t.scheduled_date NULLS LAST`, companyID)
	if err != nil {
		return nil, fmt.Errorf("tracking.ActiveTickets: %w", err)
	}
	tickets, err := collect(ticketRows, scanTicket)
	if err != nil {
		return nil, fmt.Errorf("tracking.ActiveTickets scan: %w", err)
	}
	for _, t := range tickets {
		if i, ok := index[*t.AssignedTo]; ok {
			out[i].ActiveTickets = append(out[i].ActiveTickets, t)
		}
	}
	return out, nil
}
