// Package fieldwork reglas del trabajo en sitio del técnico.
package fieldwork

import "time"

// Progress avance del trabajo en sitio frente a la estimación del ticket.
type Progress struct {
	TicketID         string     `json:"ticket_id"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	ElapsedMinutes   int        `json:"elapsed_minutes"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Percent          int        `json:"percent"`
	IsOverrun        bool       `json:"is_overrun"`
}

// ComputeProgress minutos transcurridos desde el inicio del trabajo y porcentaje sobre lo estimado
// (tope 100 para mostrar). Sin inicio no hay avance; sin estimación el porcentaje queda en cero.
func ComputeProgress(ticketID string, startedAt *time.Time, estimatedMinutes *int, now time.Time) Progress {
	p := Progress{TicketID: ticketID, StartedAt: startedAt}
	if estimatedMinutes != nil && *estimatedMinutes > 0 {
		p.EstimatedMinutes = *estimatedMinutes
	}
	if startedAt == nil || now.Before(*startedAt) {
		return p
	}
	p.ElapsedMinutes = int(now.Sub(*startedAt).Minutes())
	if p.EstimatedMinutes == 0 {
		return p
	}
	p.IsOverrun = p.ElapsedMinutes > p.EstimatedMinutes
	p.Percent = min(p.ElapsedMinutes*100/p.EstimatedMinutes, 100)
	return p
}
