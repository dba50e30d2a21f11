package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var (
	_ repository.SettingsRepository    = (*SettingsRepo)(nil)
	_ repository.FeatureFlagRepository = (*FeatureFlagRepo)(nil)
)

// SettingsRepo lectura de settings y accounting_settings.
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// GetSettings valores de la tabla settings para las claves pedidas. Las claves sin fila no aparecen en el mapa.
func (r *SettingsRepo) GetSettings(ctx context.Context, companyID string, keys []string) (map[string]string, error) {
	return r.keyValues(ctx, `SELECT key, COALESCE(value, '') FROM settings WHERE company_id = $1 AND key = ANY($2)`, companyID, keys)
}

// GetAccountingSettings igual que GetSettings sobre accounting_settings.
func (r *SettingsRepo) GetAccountingSettings(ctx context.Context, companyID string, keys []string) (map[string]string, error) {
	return r.keyValues(ctx, `SELECT setting_key, COALESCE(setting_value, '') FROM accounting_settings WHERE company_id = $1 AND setting_key = ANY($2)`, companyID, keys)
}

func (r *SettingsRepo) keyValues(ctx context.Context, query, companyID string, keys []string) (map[string]string, error) {
	rows, err := r.q.Query(ctx, query, companyID, keys)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("settings scan: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// UpsertAccountingSetting inserta o actualiza una clave contable.
func (r *SettingsRepo) UpsertAccountingSetting(ctx context.Context, s entity.Setting) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	const query = `
		INSERT INTO accounting_settings (company_id, setting_key, setting_value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, setting_key)
		DO UPDATE SET setting_value = EXCLUDED.setting_value, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, s.CompanyID, s.Key, s.Value, s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert accounting setting: %w", err)
	}
	return nil
}

// FeatureFlagRepo activación de features por empresa.
type FeatureFlagRepo struct {
	q Querier
}

// NewFeatureFlagRepository construye el adaptador.
func NewFeatureFlagRepository(q Querier) *FeatureFlagRepo {
	return &FeatureFlagRepo{q: q}
}

// Get devuelve nil, nil si no hay fila.
func (r *FeatureFlagRepo) Get(ctx context.Context, companyID, featureKey string) (*entity.FeatureFlag, error) {
	const query = `
		SELECT company_id, feature_key, enabled, expires_at, updated_at
		FROM feature_flags WHERE company_id = $1 AND feature_key = $2`
	var f entity.FeatureFlag
	err := r.q.QueryRow(ctx, query, companyID, featureKey).Scan(&f.CompanyID, &f.FeatureKey, &f.Enabled, &f.ExpiresAt, &f.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get feature flag: %w", err)
	}
	return &f, nil
}

// Set UPSERT por (company_id, feature_key).
func (r *FeatureFlagRepo) Set(ctx context.Context, f entity.FeatureFlag) error {
	const query = `
		INSERT INTO feature_flags (company_id, feature_key, enabled, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, feature_key)
		DO UPDATE SET enabled = EXCLUDED.enabled, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, f.CompanyID, f.FeatureKey, f.Enabled, f.ExpiresAt, f.UpdatedAt); err != nil {
		return fmt.Errorf("upsert feature flag: %w", err)
	}
	return nil
}
