package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// Pipelines embudos con los presupuestos agrupados por etapa. El embudo por defecto va primero.
func (uc *UseCase) Pipelines(ctx context.Context, companyID string) ([]dto.PipelineResponse, error) {
	pipelines, err := uc.pipelines.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("crm.Pipelines: %w", err)
	}
	out := make([]dto.PipelineResponse, 0, len(pipelines))
	for _, p := range pipelines {
		estimates, err := uc.estimates.ListByPipeline(ctx, companyID, p.ID)
		if err != nil {
			return nil, fmt.Errorf("crm.Pipelines: %w", err)
		}
		res := groupByStage(p, estimates)
		if p.IsDefault {
			out = append([]dto.PipelineResponse{res}, out...)
		} else {
			out = append(out, res)
		}
	}
	return out, nil
}

// groupByStage reparte los presupuestos en las etapas del embudo. Los que apuntan a una etapa
// que no existe se ignoran.
func groupByStage(p entity.DealPipeline, estimates []entity.Estimate) dto.PipelineResponse {
	res := dto.PipelineResponse{ID: p.ID, Name: p.Name, IsDefault: p.IsDefault, Stages: make([]dto.PipelineStageResponse, 0, len(p.Stages))}
	index := make(map[string]int, len(p.Stages))
	for i, s := range p.Stages {
		index[s.ID] = i
		res.Stages = append(res.Stages, dto.PipelineStageResponse{
			ID:          s.ID,
			Name:        s.Name,
			SortOrder:   s.SortOrder,
			Probability: s.Probability,
			IsWon:       s.IsWon,
			IsLost:      s.IsLost,
			TotalValue:  decimal.Zero,
			Estimates:   []dto.EstimateResponse{},
		})
	}
	for i := range estimates {
		e := &estimates[i]
		if e.StageID == nil {
			continue
		}
		pos, ok := index[*e.StageID]
		if !ok {
			continue
		}
		st := &res.Stages[pos]
		st.Estimates = append(st.Estimates, dto.EstimateFromEntity(e))
		st.TotalValue = st.TotalValue.Add(e.TotalAmount)
	}
	return res
}

// MoveEstimateToStage mueve el presupuesto a otra etapa (y a su embudo).
func (uc *UseCase) MoveEstimateToStage(ctx context.Context, companyID, estimateID, stageID string) error {
	stage, err := uc.pipelines.GetStage(ctx, companyID, stageID)
	if err != nil {
		return fmt.Errorf("crm.MoveEstimateToStage: %w", err)
	}
	if stage == nil {
		return fmt.Errorf("etapa %s: %w", stageID, domain.ErrNotFound)
	}
	if err := uc.estimates.SetStage(ctx, companyID, estimateID, stage.PipelineID, stage.ID); err != nil {
		return fmt.Errorf("crm.MoveEstimateToStage: %w", err)
	}
	return nil
}

// AddEstimateToPipeline agrega el presupuesto a un embudo. Sin etapa se usa la primera por sort_order.
func (uc *UseCase) AddEstimateToPipeline(ctx context.Context, companyID, estimateID, pipelineID, stageID string) error {
	pipelines, err := uc.pipelines.List(ctx, companyID)
	if err != nil {
		return fmt.Errorf("crm.AddEstimateToPipeline: %w", err)
	}
	var target *entity.DealPipeline
	for i := range pipelines {
		if pipelines[i].ID == pipelineID {
			target = &pipelines[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("embudo %s: %w", pipelineID, domain.ErrNotFound)
	}
	if len(target.Stages) == 0 {
		return fmt.Errorf("embudo sin etapas: %w", domain.ErrConflict)
	}

	stage := target.Stages[0]
	if stageID != "" {
		found := false
		for _, s := range target.Stages {
			if s.ID == stageID {
				stage, found = s, true
				break
			}
		}
		if !found {
			return fmt.Errorf("la etapa no pertenece al embudo: %w", domain.ErrInvalidInput)
		}
	}
	if err := uc.estimates.SetStage(ctx, companyID, estimateID, target.ID, stage.ID); err != nil {
		return fmt.Errorf("crm.AddEstimateToPipeline: %w", err)
	}
	return nil
}

// MarkEstimateLost rechaza el presupuesto, guarda el motivo y lo mueve a la etapa de perdidos de su
// embudo (o del embudo por defecto si no está en ninguno).
func (uc *UseCase) MarkEstimateLost(ctx context.Context, companyID, estimateID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("motivo requerido: %w", domain.ErrInvalidInput)
	}
	est, err := uc.estimates.GetByID(ctx, companyID, estimateID)
	if err != nil {
		return fmt.Errorf("crm.MarkEstimateLost: %w", err)
	}
	if est == nil {
		return fmt.Errorf("presupuesto %s: %w", estimateID, domain.ErrNotFound)
	}
	pipelines, err := uc.pipelines.List(ctx, companyID)
	if err != nil {
		return fmt.Errorf("crm.MarkEstimateLost: %w", err)
	}
	lostStageID := lostStage(pipelines, est.PipelineID)
	if lostStageID == nil {
		uc.log.Warn().Str("company_id", companyID).Str("estimate_id", estimateID).Msg("embudo sin etapa de perdidos")
	}
	if err := uc.estimates.MarkLost(ctx, companyID, estimateID, reason, lostStageID); err != nil {
		return fmt.Errorf("crm.MarkEstimateLost: %w", err)
	}
	return nil
}

// lostStage primera etapa is_lost del embudo indicado, o del embudo por defecto si pipelineID es nil.
func lostStage(pipelines []entity.DealPipeline, pipelineID *string) *string {
	for _, p := range pipelines {
		match := p.IsDefault
		if pipelineID != nil {
			match = p.ID == *pipelineID
		}
		if !match {
			continue
		}
		for _, s := range p.Stages {
			if s.IsLost {
				id := s.ID
				return &id
			}
		}
		return nil
	}
	return nil
}

// SalesOpportunities presupuestos enviados pendientes de respuesta.
func (uc *UseCase) SalesOpportunities(ctx context.Context, companyID string) ([]dto.EstimateResponse, error) {
	list, err := uc.estimates.ListByStatus(ctx, companyID, entity.EstimateStatusSent, listLimit)
	if err != nil {
		return nil, fmt.Errorf("crm.SalesOpportunities: %w", err)
	}
	out := make([]dto.EstimateResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.EstimateFromEntity(&list[i]))
	}
	return out, nil
}
