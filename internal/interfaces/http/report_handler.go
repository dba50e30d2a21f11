package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/intelliservice-api/internal/application/analytics"
	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/domain/report"
)

type reportGenerator interface {
	Generate(ctx context.Context, companyID, name string, r report.DateRange) (analytics.Result[report.Tabular], error)
}

type reportExporter interface {
	Export(ctx context.Context, companyID, name, format string, r report.DateRange) (*analytics.ExportFile, error)
}

// ReportHandler expone los reportes de BI en JSON y como archivo.
type ReportHandler struct {
	reports reportGenerator
	export  reportExporter
	now     func() time.Time
}

// NewReportHandler construye el handler.
func NewReportHandler(reports reportGenerator, export reportExporter) *ReportHandler {
	return &ReportHandler{reports: reports, export: export, now: time.Now}
}

func (h *ReportHandler) dateRange(c *fiber.Ctx) (report.DateRange, error) {
	return report.ParseRange(c.Query("start_date"), c.Query("end_date"), h.now())
}

// List nombres de reportes disponibles.
// GET /api/reports
func (h *ReportHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"reports": report.Names()})
}

// Get godoc
// @Summary      Resumen de un reporte de BI
// @Description  Si el dataset no se pudo leer, degraded=true y el resumen corresponde a un dataset vacío.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        name        path   string  true   "customer-value | dso | financials | labor-efficiency | project-margins | revenue-trends | technician-metrics"
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD). Default: primer día del mes."
// @Param        end_date    query  string  false  "Fin del período (YYYY-MM-DD). Default: hoy."
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/{name} [get]
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	r, err := h.dateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: err.Error()})
	}
	res, err := h.reports.Generate(c.UserContext(), companyID, c.Params("name"), r)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// Export godoc
// @Summary      Exporta un reporte de BI
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/pdf
// @Param        name        path   string  true   "Nombre del reporte"
// @Param        format      query  string  false  "xlsx | pdf (default xlsx)"
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Fin del período (YYYY-MM-DD)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/{name}/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	r, err := h.dateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: err.Error()})
	}
	file, err := h.export.Export(c.UserContext(), companyID, c.Params("name"), c.Query("format", "xlsx"), r)
	if err != nil {
		return respondError(c, err)
	}
	if file.Degraded {
		c.Set("X-Report-Degraded", "true")
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	return c.Send(file.Content)
}
