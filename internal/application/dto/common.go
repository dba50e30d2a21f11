package dto

import (
	"time"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// DateLayout formato de fechas en query params y cuerpos (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// LimitQuery límite opcional para listados.
type LimitQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=200"`
}

// Or devuelve el límite pedido o def si no vino.
func (q LimitQuery) Or(def int) int {
	if q.Limit <= 0 {
		return def
	}
	return q.Limit
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse error 400 con el detalle por campo.
type ValidationErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// SetFeatureRequest body para PUT /api/company/features/:key.
type SetFeatureRequest struct {
	Enabled   *bool      `json:"enabled" validate:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// FeatureFlagResponse estado de una feature de la empresa.
type FeatureFlagResponse struct {
	FeatureKey string     `json:"feature_key"`
	Enabled    bool       `json:"enabled"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FeatureFlagFromEntity mapea el flag.
func FeatureFlagFromEntity(f *entity.FeatureFlag) FeatureFlagResponse {
	return FeatureFlagResponse{FeatureKey: f.FeatureKey, Enabled: f.Enabled, ExpiresAt: f.ExpiresAt, UpdatedAt: f.UpdatedAt}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
