package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/application/usecase"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

type profileService interface {
	Current(ctx context.Context, companyID string) usecase.Profile
	Refresh(ctx context.Context, companyID string) (usecase.Profile, error)
}

type featureAdmin interface {
	SetFlag(ctx context.Context, companyID, featureKey string, enabled bool, expiresAt *time.Time) (*entity.FeatureFlag, error)
}

// CompanyHandler perfil de la empresa (nombre y logo) y activación de módulos.
type CompanyHandler struct {
	profiles profileService
	features featureAdmin
}

// NewCompanyHandler construye el handler.
func NewCompanyHandler(profiles profileService, features featureAdmin) *CompanyHandler {
	return &CompanyHandler{profiles: profiles, features: features}
}

// Profile GET /api/company/profile
func (h *CompanyHandler) Profile(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	return c.JSON(h.profiles.Current(c.UserContext(), companyID))
}

// RefreshProfile relee los settings y reemplaza la instantánea cacheada.
// POST /api/company/profile/refresh
func (h *CompanyHandler) RefreshProfile(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	p, err := h.profiles.Refresh(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// SetFeature activa o desactiva un módulo de la empresa; el cambio rige de inmediato.
// @Summary      Activar o desactivar un módulo
// @Tags         company
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        key   path  string                 true  "bi_reports | payroll | ahs_warranty | crm | tracking"
// @Param        body  body  dto.SetFeatureRequest  true  "Estado"
// @Success      200  {object}  dto.FeatureFlagResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/company/features/{key} [put]
func (h *CompanyHandler) SetFeature(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.SetFeatureRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	f, err := h.features.SetFlag(c.UserContext(), companyID, c.Params("key"), *in.Enabled, in.ExpiresAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FeatureFlagFromEntity(f))
}
