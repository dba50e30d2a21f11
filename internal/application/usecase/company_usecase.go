package usecase

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

// Profile nombre y logo de la empresa. Es un valor inmutable: Refresh produce uno nuevo.
type Profile struct {
	name    string
	logoURL string
}

// NewProfile aplica el nombre por defecto si name está vacío.
func NewProfile(name, logoURL string) Profile {
	if name == "" {
		name = entity.DefaultCompanyName
	}
	return Profile{name: name, logoURL: logoURL}
}

// DefaultProfile perfil usado cuando la empresa no configuró nada o la lectura falla.
func DefaultProfile() Profile { return NewProfile("", "") }

func (p Profile) Name() string    { return p.name }
func (p Profile) LogoURL() string { return p.logoURL }

// MarshalJSON {"name": ..., "logo_url": ...}.
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name    string `json:"name"`
		LogoURL string `json:"logo_url"`
	}{p.name, p.logoURL})
}

// ProfileProvider instantánea del perfil por empresa, cacheada.
type ProfileProvider struct {
	settings repository.SettingsRepository
	cache    *gocache.Cache
	log      zerolog.Logger
}

// NewProfileProvider construye el proveedor con el TTL de caché indicado.
func NewProfileProvider(settings repository.SettingsRepository, ttl time.Duration, log zerolog.Logger) *ProfileProvider {
	return &ProfileProvider{
		settings: settings,
		cache:    gocache.New(ttl, 2*ttl),
		log:      log,
	}
}

// Current devuelve la instantánea cacheada o la carga. Nunca falla: si la lectura falla
// se devuelve el perfil por defecto sin cachearlo.
func (p *ProfileProvider) Current(ctx context.Context, companyID string) Profile {
	if v, ok := p.cache.Get(companyID); ok {
		return v.(Profile)
	}
	profile, err := p.Refresh(ctx, companyID)
	if err != nil {
		p.log.Warn().Err(err).Str("company_id", companyID).Msg("perfil de empresa no disponible, usando valores por defecto")
		return DefaultProfile()
	}
	return profile
}

// Refresh relee settings y reemplaza la instantánea cacheada.
func (p *ProfileProvider) Refresh(ctx context.Context, companyID string) (Profile, error) {
	values, err := p.settings.GetSettings(ctx, companyID, []string{entity.SettingCompanyName, entity.SettingCompanyLogoURL})
	if err != nil {
		return Profile{}, err
	}
	profile := NewProfile(values[entity.SettingCompanyName], values[entity.SettingCompanyLogoURL])
	p.cache.Set(companyID, profile, gocache.DefaultExpiration)
	return profile, nil
}
