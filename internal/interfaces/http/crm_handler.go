package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
)

type crmService interface {
	Customer360(ctx context.Context, companyID, customerID string) (*dto.Customer360Response, error)
	CustomerTimeline(ctx context.Context, companyID, customerID string, limit int) ([]dto.TimelineEventResponse, error)
	LogInteraction(ctx context.Context, companyID, actorID string, in dto.LogInteractionRequest) (*dto.InteractionResponse, error)
	UpcomingFollowUps(ctx context.Context, companyID string, days int) ([]dto.InteractionResponse, error)
	LeadsInbox(ctx context.Context, companyID string) ([]dto.CustomerSummary, error)
	Prospects(ctx context.Context, companyID string) ([]dto.CustomerSummary, error)
	CreateLead(ctx context.Context, companyID string, in dto.CreateLeadRequest) (*dto.CustomerSummary, error)
	ConvertLead(ctx context.Context, companyID, customerID string) error
	Pipelines(ctx context.Context, companyID string) ([]dto.PipelineResponse, error)
	MoveEstimateToStage(ctx context.Context, companyID, estimateID, stageID string) error
	AddEstimateToPipeline(ctx context.Context, companyID, estimateID, pipelineID, stageID string) error
	MarkEstimateLost(ctx context.Context, companyID, estimateID, reason string) error
	SalesOpportunities(ctx context.Context, companyID string) ([]dto.EstimateResponse, error)
}

// CRMHandler vista 360 del cliente, interacciones, leads y embudo de ventas.
type CRMHandler struct {
	uc crmService
}

// NewCRMHandler construye el handler.
func NewCRMHandler(uc crmService) *CRMHandler {
	return &CRMHandler{uc: uc}
}

// Customer360 godoc
// @Summary      Cliente con estadísticas y actividad reciente
// @Tags         crm
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del cliente"
// @Success      200  {object}  dto.Customer360Response
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/crm/customers/{id} [get]
func (h *CRMHandler) Customer360(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Customer360(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Timeline GET /api/crm/customers/:id/timeline?limit=50
func (h *CRMHandler) Timeline(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var q dto.LimitQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	if err := validate.Struct(q); err != nil {
		return badRequest(c, err)
	}
	out, err := h.uc.CustomerTimeline(c.UserContext(), companyID, c.Params("id"), q.Or(50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LogInteraction POST /api/crm/interactions
func (h *CRMHandler) LogInteraction(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.LogInteractionRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	out, err := h.uc.LogInteraction(c.UserContext(), companyID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// FollowUps GET /api/crm/follow-ups?days=7
func (h *CRMHandler) FollowUps(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.UpcomingFollowUps(c.UserContext(), companyID, c.QueryInt("days", 7))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Leads GET /api/crm/leads
func (h *CRMHandler) Leads(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.LeadsInbox(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateLead POST /api/crm/leads
func (h *CRMHandler) CreateLead(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.CreateLeadRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	out, err := h.uc.CreateLead(c.UserContext(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ConvertLead POST /api/crm/leads/:id/convert
func (h *CRMHandler) ConvertLead(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	if err := h.uc.ConvertLead(c.UserContext(), companyID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Prospects GET /api/crm/prospects
func (h *CRMHandler) Prospects(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Prospects(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Pipelines godoc
// @Summary      Embudos de venta con sus presupuestos agrupados por etapa
// @Tags         crm
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PipelineResponse
// @Router       /api/crm/pipelines [get]
func (h *CRMHandler) Pipelines(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Pipelines(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Opportunities GET /api/crm/opportunities
func (h *CRMHandler) Opportunities(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.SalesOpportunities(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MoveEstimate PATCH /api/crm/estimates/:id/stage
func (h *CRMHandler) MoveEstimate(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.MoveEstimateRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	if err := h.uc.MoveEstimateToStage(c.UserContext(), companyID, c.Params("id"), in.StageID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddToPipeline POST /api/crm/estimates/:id/pipeline
func (h *CRMHandler) AddToPipeline(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.AddToPipelineRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	if err := h.uc.AddEstimateToPipeline(c.UserContext(), companyID, c.Params("id"), in.PipelineID, in.StageID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkLost POST /api/crm/estimates/:id/lost
func (h *CRMHandler) MarkLost(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.MarkLostRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	if err := h.uc.MarkEstimateLost(c.UserContext(), companyID, c.Params("id"), in.Reason); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
