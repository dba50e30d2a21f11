package repository

import (
	"context"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// SettingsRepository configuración clave/valor por empresa. Hay dos tablas: settings (perfil,
// preferencias) y accounting_settings (tarifas y cuentas contables).
type SettingsRepository interface {
	GetSettings(ctx context.Context, companyID string, keys []string) (map[string]string, error)
	GetAccountingSettings(ctx context.Context, companyID string, keys []string) (map[string]string, error)
	UpsertAccountingSetting(ctx context.Context, s entity.Setting) error
}

// FeatureFlagRepository activación de features por empresa.
type FeatureFlagRepository interface {
	// Get devuelve nil, nil si la empresa no tiene fila para la feature.
	Get(ctx context.Context, companyID, featureKey string) (*entity.FeatureFlag, error)
	// Set crea o reemplaza la fila de la feature.
	Set(ctx context.Context, f entity.FeatureFlag) error
}
