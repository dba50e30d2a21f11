package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
)

// Features que habilitan grupos de rutas.
const (
	FeatureBIReports   = "bi_reports"
	FeaturePayroll     = "payroll"
	FeatureAHSWarranty = "ahs_warranty"
	FeatureCRM         = "crm"
)

// featureChecker lo implementa *usecase.FeatureService.
type featureChecker interface {
	IsEnabled(ctx context.Context, companyID, featureKey string) (bool, error)
}

// RequireFeature verifica que la empresa del token tenga la feature activa.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalCompanyID).
//
// Comportamiento:
//   - 403 Forbidden → feature no contratada o vencida.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
//   - Si no hay company_id en el contexto, responde 401.
func RequireFeature(featureKey string, checker featureChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "company_id no encontrado en el token",
			})
		}

		enabled, err := checker.IsEnabled(c.UserContext(), companyID, featureKey)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}

		if !enabled {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + featureKey + "' no está activo para esta empresa",
			})
		}

		return c.Next()
	}
}
