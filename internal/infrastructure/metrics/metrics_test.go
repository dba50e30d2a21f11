package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/intelliservice-api/internal/infrastructure/metrics"
)

func TestMetrics_TopicosPorTicketSeAgrupan(t *testing.T) {
	m := metrics.New()
	m.PollTick("ticket-progress:abc")
	m.PollTick("ticket-progress:def")
	m.PollTick("tracking")

	n, err := testutil.GatherAndCount(m.Registry(), "intelliservice_poll_ticks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "una serie por tipo de tópico")
}

func TestMetrics_ReportesYFallbacks(t *testing.T) {
	m := metrics.New()
	m.ReportDuration("dso", 20*time.Millisecond)
	m.ReportFallback("dso")
	m.ReportFallback("dso")
	m.DocumentNumber("invoice")

	n, err := testutil.GatherAndCount(m.Registry(),
		"intelliservice_report_duration_seconds", "intelliservice_report_fallbacks_total", "intelliservice_invoice_numbers_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
