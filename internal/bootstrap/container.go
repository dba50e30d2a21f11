// Package bootstrap arma el grafo de dependencias compartido por la API y la CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/intelliservice-api/internal/application/analytics"
	"github.com/jhoicas/intelliservice-api/internal/application/billing"
	"github.com/jhoicas/intelliservice-api/internal/application/crm"
	"github.com/jhoicas/intelliservice-api/internal/application/fieldwork"
	"github.com/jhoicas/intelliservice-api/internal/application/payroll"
	"github.com/jhoicas/intelliservice-api/internal/application/polling"
	"github.com/jhoicas/intelliservice-api/internal/application/usecase"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/excel"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/metrics"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/pdf"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/intelliservice-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/intelliservice-api/internal/interfaces/http"
	"github.com/jhoicas/intelliservice-api/pkg/config"
	"github.com/jhoicas/intelliservice-api/pkg/logger"
)

// Container casos de uso listos para usar. Close libera el pool y detiene el polling.
type Container struct {
	Config   *config.Config
	Metrics  *metrics.Metrics
	Hub      *polling.Hub
	Reports  *analytics.ReportsUseCase
	Export   *analytics.ExportUseCase
	AHS      *billing.AHSUseCase
	PDF      *billing.PDFUseCase
	Payroll  *payroll.UseCase
	CRM      *crm.UseCase
	Tickets  *fieldwork.TicketsUseCase
	Tracking *fieldwork.TrackingUseCase
	Profiles *usecase.ProfileProvider
	Features *usecase.FeatureService

	pool *pgxpool.Pool
}

// New conecta a PostgreSQL y al bucket y construye todos los casos de uso.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	photos, err := storage.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage S3: %w", err)
	}

	m := metrics.New()

	settingsRepo := postgres.NewSettingsRepository(pool)
	flagRepo := postgres.NewFeatureFlagRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	ahsRepo := postgres.NewAHSRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	estimateRepo := postgres.NewEstimateRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	interactionRepo := postgres.NewInteractionRepository(pool)
	pipelineRepo := postgres.NewPipelineRepository(pool)
	payrollRepo := postgres.NewPayrollRepository(pool)
	trackingRepo := postgres.NewTrackingRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	profiles := usecase.NewProfileProvider(settingsRepo, cfg.Cache.SettingsTTL, log.Component("profile"))
	reports := analytics.NewReportsUseCase(analyticsRepo, m, log.Component("reports"))

	c := &Container{
		Config:  cfg,
		Metrics: m,
		Hub: polling.NewHub(polling.Intervals{
			Default: cfg.Polling.TrackingInterval,
			ByKind: map[string]time.Duration{
				polling.TopicTracking:       cfg.Polling.TrackingInterval,
				polling.TopicTicketProgress: cfg.Polling.ProgressInterval,
			},
		}, m, log.Component("polling")),
		Reports: reports,
		Export:  analytics.NewExportUseCase(reports, profiles, excel.NewReportExporter(), pdf.NewReportExporter()),
		AHS: billing.NewAHSUseCase(txRunner, sequenceRepo, ticketRepo, estimateRepo, invoiceRepo, ahsRepo, settingsRepo,
			m, log.Component("ahs")),
		PDF:     billing.NewPDFUseCase(invoiceRepo, profiles, photos, pdf.NewInvoiceGenerator(), log.Component("invoice-pdf")),
		Payroll: payroll.NewUseCase(txRunner, sequenceRepo, payrollRepo, cfg.Payroll.HourlyRate, cfg.Payroll.OvertimeMultiplier, m, log.Component("payroll")),
		CRM: crm.NewUseCase(customerRepo, ticketRepo, estimateRepo, invoiceRepo, interactionRepo, pipelineRepo,
			log.Component("crm")),
		Tickets:  fieldwork.NewTicketsUseCase(ticketRepo, photos, log.Component("tickets")),
		Tracking: fieldwork.NewTrackingUseCase(trackingRepo),
		Profiles: profiles,
		Features: usecase.NewFeatureService(flagRepo, cfg.Cache.FlagsTTL),
		pool:     pool,
	}
	return c, nil
}

// Close detiene los ciclos de polling y cierra el pool.
func (c *Container) Close() {
	c.Hub.Close()
	c.pool.Close()
}

// NewServer crea la app Fiber con recover, Swagger, /health, /metrics y las rutas de la API.
func NewServer(c *Container) *fiber.App {
	cfg := c.Config
	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// Sin WriteTimeout: los streams SSE quedan abiertos mientras el cliente escuche.
		IdleTimeout: time.Second * 60,
		BodyLimit:   12 << 20,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "IntelliService API",
	}))

	app.Get("/health", func(fc *fiber.Ctx) error {
		if err := c.pool.Ping(fc.UserContext()); err != nil {
			return fc.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return fc.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Reports:   c.Reports,
		Export:    c.Export,
		AHS:       c.AHS,
		PDF:       c.PDF,
		Payroll:   c.Payroll,
		CRM:       c.CRM,
		Tickets:   c.Tickets,
		Tracking:  c.Tracking,
		Profiles:  c.Profiles,
		Features:  c.Features,
		Hub:       c.Hub,
		Metrics:   c.Metrics.Handler(),
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
	})
	return app
}
