package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
)

type payrollService interface {
	CreatePeriod(ctx context.Context, companyID, actorID string, in dto.CreatePayrollPeriodRequest) (*dto.PayrollRunResponse, error)
	Generate(ctx context.Context, companyID, runID string) (*dto.PayrollRunResponse, error)
	Process(ctx context.Context, companyID, runID, approverID string) (*dto.PayrollRunResponse, error)
	ListRuns(ctx context.Context, companyID string) ([]dto.PayrollRunResponse, error)
	GetRun(ctx context.Context, companyID, runID string) (*dto.PayrollRunResponse, error)
	ListDeductions(ctx context.Context, companyID string) ([]dto.DeductionResponse, error)
	CreateDeduction(ctx context.Context, companyID string, in dto.CreateDeductionRequest) (*dto.DeductionResponse, error)
	SetDeductionActive(ctx context.Context, companyID, id string, active bool) error
}

// PayrollHandler corridas de nómina y reglas de deducción.
type PayrollHandler struct {
	uc payrollService
}

// NewPayrollHandler construye el handler.
func NewPayrollHandler(uc payrollService) *PayrollHandler {
	return &PayrollHandler{uc: uc}
}

// CreatePeriod godoc
// @Summary      Abre un período de nómina (corrida en borrador)
// @Tags         payroll
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreatePayrollPeriodRequest  true  "Período"
// @Success      201   {object}  dto.PayrollRunResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Router       /api/payroll/runs [post]
func (h *PayrollHandler) CreatePeriod(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.CreatePayrollPeriodRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	run, err := h.uc.CreatePeriod(c.UserContext(), companyID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(run)
}

// ListRuns GET /api/payroll/runs
func (h *PayrollHandler) ListRuns(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	runs, err := h.uc.ListRuns(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(runs)
}

// GetRun GET /api/payroll/runs/:id
func (h *PayrollHandler) GetRun(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	run, err := h.uc.GetRun(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(run)
}

// Generate godoc
// @Summary      Calcula los detalles de la corrida a partir de las horas aprobadas
// @Tags         payroll
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la corrida"
// @Success      200  {object}  dto.PayrollRunResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/payroll/runs/{id}/generate [post]
func (h *PayrollHandler) Generate(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	run, err := h.uc.Generate(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(run)
}

// Process marca la corrida como pagada.
// POST /api/payroll/runs/:id/process
func (h *PayrollHandler) Process(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	run, err := h.uc.Process(c.UserContext(), companyID, c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(run)
}

// ListDeductions GET /api/payroll/deductions
func (h *PayrollHandler) ListDeductions(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	list, err := h.uc.ListDeductions(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// CreateDeduction POST /api/payroll/deductions
func (h *PayrollHandler) CreateDeduction(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.CreateDeductionRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	d, err := h.uc.CreateDeduction(c.UserContext(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

// SetDeductionActive PATCH /api/payroll/deductions/:id
func (h *PayrollHandler) SetDeductionActive(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.SetDeductionActiveRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	if err := h.uc.SetDeductionActive(c.UserContext(), companyID, c.Params("id"), in.IsActive); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
