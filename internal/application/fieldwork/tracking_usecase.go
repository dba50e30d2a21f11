package fieldwork

import (
	"context"
	"fmt"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/application/polling"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

// TrackingUseCase mapa de técnicos activos.
type TrackingUseCase struct {
	tracking repository.TrackingRepository
}

// NewTrackingUseCase construye el caso de uso.
func NewTrackingUseCase(tracking repository.TrackingRepository) *TrackingUseCase {
	return &TrackingUseCase{tracking: tracking}
}

// ActiveTechnicians técnicos con su última ubicación y tickets activos.
func (uc *TrackingUseCase) ActiveTechnicians(ctx context.Context, companyID string) ([]dto.TechnicianStatusResponse, error) {
	list, err := uc.tracking.ActiveTechnicians(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("fieldwork.ActiveTechnicians: %w", err)
	}
	out := make([]dto.TechnicianStatusResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.TechnicianStatusFromEntity(s))
	}
	return out, nil
}

// TrackingFetch lectura del tópico de seguimiento de la empresa.
func (uc *TrackingUseCase) TrackingFetch(companyID string) polling.Fetch {
	return func(ctx context.Context) (any, error) {
		return uc.ActiveTechnicians(ctx, companyID)
	}
}

// ProgressFetch lectura del tópico de progreso de un ticket.
func (uc *TicketsUseCase) ProgressFetch(companyID, ticketID string) polling.Fetch {
	return func(ctx context.Context) (any, error) {
		return uc.OnsiteProgress(ctx, companyID, ticketID)
	}
}
