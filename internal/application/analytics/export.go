package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/intelliservice-api/internal/application/usecase"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/report"
)

// Exporter serializa un reporte tabular. Lo implementan los exportadores XLSX y PDF.
type Exporter interface {
	Format() string
	ContentType() string
	Export(doc report.Document) ([]byte, error)
}

// ProfileSource perfil de la empresa para el encabezado del archivo.
type ProfileSource interface {
	Current(ctx context.Context, companyID string) usecase.Profile
}

// ExportFile archivo generado.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
	Degraded    bool
}

// ExportUseCase genera el archivo de cualquier reporte en los formatos registrados.
type ExportUseCase struct {
	reports   *ReportsUseCase
	profiles  ProfileSource
	exporters map[string]Exporter
}

// NewExportUseCase registra los exportadores por formato.
func NewExportUseCase(reports *ReportsUseCase, profiles ProfileSource, exporters ...Exporter) *ExportUseCase {
	m := make(map[string]Exporter, len(exporters))
	for _, e := range exporters {
		m[e.Format()] = e
	}
	return &ExportUseCase{reports: reports, profiles: profiles, exporters: m}
}

// Export genera el reporte y lo serializa. Formato desconocido: domain.ErrInvalidInput.
func (uc *ExportUseCase) Export(ctx context.Context, companyID, name, format string, r report.DateRange) (*ExportFile, error) {
	exp, ok := uc.exporters[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("formato %q: %w", format, domain.ErrInvalidInput)
	}
	res, err := uc.reports.Generate(ctx, companyID, name, r)
	if err != nil {
		return nil, err
	}
	profile := uc.profiles.Current(ctx, companyID)
	doc := report.Document{
		Table:       res.Summary.Table(),
		CompanyName: profile.Name(),
		LogoURL:     profile.LogoURL(),
		Period:      res.Period,
		GeneratedAt: now(),
		Degraded:    res.Degraded,
	}
	content, err := exp.Export(doc)
	if err != nil {
		return nil, fmt.Errorf("analytics.Export %s: %w", exp.Format(), err)
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s_%s_%s.%s", name, res.Period.StartDate, res.Period.EndDate, exp.Format()),
		ContentType: exp.ContentType(),
		Content:     content,
		Degraded:    res.Degraded,
	}, nil
}
