package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/application/polling"
)

type trackingService interface {
	ActiveTechnicians(ctx context.Context, companyID string) ([]dto.TechnicianStatusResponse, error)
	TrackingFetch(companyID string) polling.Fetch
}

// TrackingHandler mapa de técnicos del despachador.
type TrackingHandler struct {
	uc  trackingService
	hub topicHub
}

// NewTrackingHandler construye el handler.
func NewTrackingHandler(uc trackingService, hub topicHub) *TrackingHandler {
	return &TrackingHandler{uc: uc, hub: hub}
}

// Snapshot godoc
// @Summary      Técnicos activos con su última ubicación
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TechnicianStatusResponse
// @Router       /api/tracking [get]
func (h *TrackingHandler) Snapshot(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ActiveTechnicians(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Stream GET /api/tracking/stream (Server-Sent Events). Todos los despachadores de la empresa
// comparten una sola lectura por intervalo.
func (h *TrackingHandler) Stream(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	return streamTopic(c, h.hub, polling.TrackingTopic(companyID), h.uc.TrackingFetch(companyID))
}

// Refresh godoc
// @Summary      Fuerza una lectura inmediata del mapa para los streams abiertos
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RefreshResponse
// @Router       /api/tracking/refresh [post]
func (h *TrackingHandler) Refresh(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	key := polling.TrackingTopic(companyID)
	return c.JSON(dto.RefreshResponse{Topic: key, Refreshed: h.hub.Refresh(c.UserContext(), key)})
}
