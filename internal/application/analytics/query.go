// Package analytics casos de uso de los reportes de BI: carga de datos, reducción pura y exportación.
package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/intelliservice-api/internal/domain/report"
)

// Recorder métricas de reportes. Lo implementa infrastructure/metrics.
type Recorder interface {
	ReportDuration(report string, d time.Duration)
	ReportFallback(report string)
}

type nopRecorder struct{}

func (nopRecorder) ReportDuration(string, time.Duration) {}
func (nopRecorder) ReportFallback(string)                {}

// Query consulta de reporte genérica: Fetch lee el dataset plano y Reduce lo resume.
// Reduce es pura; toda la E/S queda en Fetch.
type Query[D any, S report.Tabular] struct {
	Name   string
	Fetch  func(ctx context.Context, companyID string, r report.DateRange) (D, error)
	Reduce func(d D, r report.DateRange) S
}

// Result resumen de un reporte. Degraded indica que el dataset no se pudo leer y el
// resumen corresponde a un dataset vacío.
type Result[S any] struct {
	Report   string        `json:"report"`
	Period   report.Period `json:"period"`
	Summary  S             `json:"summary"`
	Degraded bool          `json:"degraded"`
}

// Run ejecuta Fetch y Reduce. Un fallo de Fetch no se propaga: se registra, se cuenta y se
// devuelve el resumen de un dataset vacío. No hay reintento.
func (q Query[D, S]) Run(ctx context.Context, log zerolog.Logger, rec Recorder, companyID string, r report.DateRange) Result[S] {
	started := time.Now()
	defer func() { rec.ReportDuration(q.Name, time.Since(started)) }()

	res := Result[S]{Report: q.Name, Period: r.Period()}
	data, err := q.Fetch(ctx, companyID, r)
	if err != nil {
		log.Warn().Err(err).Str("company_id", companyID).Str("report", q.Name).Msg("reporte degradado: no se pudieron leer los datos")
		rec.ReportFallback(q.Name)
		var zero D
		data = zero
		res.Degraded = true
	}
	res.Summary = q.Reduce(data, r)
	return res
}

// erase pasa un resultado tipado a uno con Summary como report.Tabular, para el registro de reportes.
func erase[S report.Tabular](r Result[S]) Result[report.Tabular] {
	return Result[report.Tabular]{Report: r.Report, Period: r.Period, Summary: r.Summary, Degraded: r.Degraded}
}
