package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/intelliservice-api/internal/application/usecase"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

type fakeSettings struct {
	values map[string]string
	err    error
	calls  int
}

func (f *fakeSettings) GetSettings(_ context.Context, _ string, keys []string) (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := f.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeSettings) GetAccountingSettings(context.Context, string, []string) (map[string]string, error) {
	return nil, nil
}

func (f *fakeSettings) UpsertAccountingSetting(context.Context, entity.Setting) error { return nil }

func TestProfileProvider_SinSettingsUsaNombrePorDefecto(t *testing.T) {
	p := usecase.NewProfileProvider(&fakeSettings{values: map[string]string{}}, time.Minute, zerolog.Nop())

	got := p.Current(context.Background(), "c-1")
	assert.Equal(t, "IntelliService", got.Name())
	assert.Empty(t, got.LogoURL())
}

func TestProfileProvider_CacheaHastaRefresh(t *testing.T) {
	repo := &fakeSettings{values: map[string]string{"company_name": "Frío Total", "company_logo_url": "https://x/logo.png"}}
	p := usecase.NewProfileProvider(repo, time.Minute, zerolog.Nop())

	first := p.Current(context.Background(), "c-1")
	repo.values["company_name"] = "Frío Total SAS"
	second := p.Current(context.Background(), "c-1")
	assert.Equal(t, "Frío Total", second.Name(), "la instantánea cacheada no cambia")
	assert.Equal(t, 1, repo.calls)

	refreshed, err := p.Refresh(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Frío Total SAS", refreshed.Name())
	assert.Equal(t, "Frío Total", first.Name(), "la instantánea anterior es inmutable")
	assert.Equal(t, "Frío Total SAS", p.Current(context.Background(), "c-1").Name())
}

func TestProfileProvider_ErrorDevuelveDefaultSinCachear(t *testing.T) {
	repo := &fakeSettings{err: errors.New("db caída")}
	p := usecase.NewProfileProvider(repo, time.Minute, zerolog.Nop())

	assert.Equal(t, "IntelliService", p.Current(context.Background(), "c-1").Name())
	repo.err = nil
	repo.values = map[string]string{"company_name": "Acme"}
	assert.Equal(t, "Acme", p.Current(context.Background(), "c-1").Name())
}

func TestProfile_JSON(t *testing.T) {
	b, err := json.Marshal(usecase.NewProfile("Acme", "https://x/l.png"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Acme","logo_url":"https://x/l.png"}`, string(b))
}

type fakeFlags struct {
	flag  *entity.FeatureFlag
	err   error
	calls int
}

func (f *fakeFlags) Get(context.Context, string, string) (*entity.FeatureFlag, error) {
	f.calls++
	return f.flag, f.err
}

func (f *fakeFlags) Set(_ context.Context, flag entity.FeatureFlag) error {
	if f.err != nil {
		return f.err
	}
	f.flag = &flag
	return nil
}

func TestFeatureService_FlagActivoSeCachea(t *testing.T) {
	repo := &fakeFlags{flag: &entity.FeatureFlag{Enabled: true}}
	s := usecase.NewFeatureService(repo, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := s.IsEnabled(context.Background(), "c-1", entity.FeatureReports)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, repo.calls)
}

func TestFeatureService_VencidoOSinFilaEsFalse(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	s := usecase.NewFeatureService(&fakeFlags{flag: &entity.FeatureFlag{Enabled: true, ExpiresAt: &past}}, time.Minute)
	ok, err := s.IsEnabled(context.Background(), "c-1", entity.FeaturePayroll)
	require.NoError(t, err)
	assert.False(t, ok)

	s = usecase.NewFeatureService(&fakeFlags{}, time.Minute)
	ok, err = s.IsEnabled(context.Background(), "c-1", entity.FeaturePayroll)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFeatureService_ErrorNoSeCachea(t *testing.T) {
	repo := &fakeFlags{err: errors.New("timeout")}
	s := usecase.NewFeatureService(repo, time.Minute)

	_, err := s.IsEnabled(context.Background(), "c-1", entity.FeatureCRM)
	require.Error(t, err)

	repo.err = nil
	repo.flag = &entity.FeatureFlag{Enabled: true}
	ok, err := s.IsEnabled(context.Background(), "c-1", entity.FeatureCRM)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFeatureService_ParametrosVacios(t *testing.T) {
	s := usecase.NewFeatureService(&fakeFlags{}, time.Minute)
	_, err := s.IsEnabled(context.Background(), "", entity.FeatureCRM)
	assert.Error(t, err)
}

func TestFeatureService_SetFlagInvalidaCache(t *testing.T) {
	repo := &fakeFlags{flag: &entity.FeatureFlag{Enabled: true}}
	s := usecase.NewFeatureService(repo, time.Hour)

	ok, err := s.IsEnabled(context.Background(), "c-1", entity.FeatureCRM)
	require.NoError(t, err)
	require.True(t, ok)

	f, err := s.SetFlag(context.Background(), "c-1", entity.FeatureCRM, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "c-1", f.CompanyID)
	assert.False(t, f.Enabled)

	ok, err = s.IsEnabled(context.Background(), "c-1", entity.FeatureCRM)
	require.NoError(t, err)
	assert.False(t, ok, "el cambio rige sin esperar el TTL")
	assert.Equal(t, 2, repo.calls)
}

func TestFeatureService_SetFlagFeatureDesconocida(t *testing.T) {
	repo := &fakeFlags{}
	s := usecase.NewFeatureService(repo, time.Minute)
	_, err := s.SetFlag(context.Background(), "c-1", "inventario", true, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, repo.flag)
}
