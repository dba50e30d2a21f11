package usecase

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

// FeatureService verifica qué features tiene activas una empresa.
// Es el único punto de la aplicación que conoce la lógica de activación.
type FeatureService struct {
	flags repository.FeatureFlagRepository
	cache *gocache.Cache
	now   func() time.Time
}

// NewFeatureService construye el servicio; los resultados se cachean ttl.
func NewFeatureService(flags repository.FeatureFlagRepository, ttl time.Duration) *FeatureService {
	return &FeatureService{flags: flags, cache: gocache.New(ttl, 2*ttl), now: time.Now}
}

// IsEnabled informa si la empresa tiene la feature activa y sin vencer.
// Devuelve false (sin error) si no hay fila; error solo ante fallos de infraestructura,
// que no se cachean.
func (s *FeatureService) IsEnabled(ctx context.Context, companyID, featureKey string) (bool, error) {
	if companyID == "" || featureKey == "" {
		return false, fmt.Errorf("feature: companyID y featureKey son obligatorios")
	}
	key := companyID + "/" + featureKey
	if v, ok := s.cache.Get(key); ok {
		return v.(bool), nil
	}
	flag, err := s.flags.Get(ctx, companyID, featureKey)
	if err != nil {
		return false, fmt.Errorf("feature.IsEnabled: %w", err)
	}
	enabled := flag != nil && flag.Active(s.now())
	s.cache.Set(key, enabled, gocache.DefaultExpiration)
	return enabled, nil
}

// SetFlag activa o desactiva la feature de la empresa y descarta el valor cacheado, así el
// cambio rige desde la siguiente petición.
func (s *FeatureService) SetFlag(ctx context.Context, companyID, featureKey string, enabled bool, expiresAt *time.Time) (*entity.FeatureFlag, error) {
	if !entity.IsKnownFeature(featureKey) {
		return nil, fmt.Errorf("feature %q: %w", featureKey, domain.ErrInvalidInput)
	}
	f := entity.FeatureFlag{
		CompanyID:  companyID,
		FeatureKey: featureKey,
		Enabled:    enabled,
		ExpiresAt:  expiresAt,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.flags.Set(ctx, f); err != nil {
		return nil, fmt.Errorf("feature.SetFlag: %w", err)
	}
	s.Invalidate(companyID, featureKey)
	return &f, nil
}

// Invalidate descarta el valor cacheado (tras cambiar el flag desde administración).
func (s *FeatureService) Invalidate(companyID, featureKey string) {
	s.cache.Delete(companyID + "/" + featureKey)
}
