package fieldwork_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/intelliservice-api/internal/domain/fieldwork"
)

func TestComputeProgress(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	est := 120

	p := fieldwork.ComputeProgress("t1", &start, &est, start.Add(30*time.Minute))
	assert.Equal(t, 30, p.ElapsedMinutes)
	assert.Equal(t, 25, p.Percent)
	assert.False(t, p.IsOverrun)

	p = fieldwork.ComputeProgress("t1", &start, &est, start.Add(150*time.Minute))
	assert.Equal(t, 100, p.Percent, "tope de 100")
	assert.True(t, p.IsOverrun)
}

func TestComputeProgress_SinInicioNiEstimacion(t *testing.T) {
	now := time.Now()
	p := fieldwork.ComputeProgress("t1", nil, nil, now)
	assert.Zero(t, p.ElapsedMinutes)
	assert.Zero(t, p.Percent)

	start := now.Add(-10 * time.Minute)
	p = fieldwork.ComputeProgress("t1", &start, nil, now)
	assert.Equal(t, 10, p.ElapsedMinutes)
	assert.Zero(t, p.Percent)
	assert.False(t, p.IsOverrun)
}
