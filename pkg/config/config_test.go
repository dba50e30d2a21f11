package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/intelliservice-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "intelliservice-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "ticket-photos", cfg.Storage.Bucket)
	assert.Equal(t, 30*time.Second, cfg.Polling.TrackingInterval)
	assert.Equal(t, 25.0, cfg.Payroll.HourlyRate)
	assert.Equal(t, 1.5, cfg.Payroll.OvertimeMultiplier)
}

func TestLoad_EnvSobrescribe(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("POLL_TRACKING_INTERVAL", "10s")
	t.Setenv("POLL_PROGRESS_INTERVAL", "45")
	t.Setenv("PAYROLL_HOURLY_RATE", "31.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.Polling.TrackingInterval)
	assert.Equal(t, 45*time.Second, cfg.Polling.ProgressInterval)
	assert.Equal(t, 31.5, cfg.Payroll.HourlyRate)
}

func TestLoad_TarifaNoPositivaEsError(t *testing.T) {
	t.Setenv("PAYROLL_HOURLY_RATE", "0")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "is", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/is?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
