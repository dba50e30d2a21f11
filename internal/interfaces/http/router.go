package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/intelliservice-api/internal/application/analytics"
	"github.com/jhoicas/intelliservice-api/internal/application/billing"
	"github.com/jhoicas/intelliservice-api/internal/application/crm"
	"github.com/jhoicas/intelliservice-api/internal/application/fieldwork"
	"github.com/jhoicas/intelliservice-api/internal/application/payroll"
	"github.com/jhoicas/intelliservice-api/internal/application/polling"
	"github.com/jhoicas/intelliservice-api/internal/application/usecase"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reports   *analytics.ReportsUseCase
	Export    *analytics.ExportUseCase
	AHS       *billing.AHSUseCase
	PDF       *billing.PDFUseCase
	Payroll   *payroll.UseCase
	CRM       *crm.UseCase
	Tickets   *fieldwork.TicketsUseCase
	Tracking  *fieldwork.TrackingUseCase
	Profiles  *usecase.ProfileProvider
	Features  *usecase.FeatureService
	Hub       *polling.Hub
	Metrics   http.Handler // nil = sin /metrics
	JWTSecret string
	JWTIssuer string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Todo lo de /api requiere Bearer Token del backend
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Company profile
	companyHandler := NewCompanyHandler(deps.Profiles, deps.Features)
	protected.Get("/company/profile", companyHandler.Profile)
	protected.Post("/company/profile/refresh", RequireRole(entity.RoleAdmin), companyHandler.RefreshProfile)
	protected.Put("/company/features/:key", RequireRole(entity.RoleAdmin), companyHandler.SetFeature)

	// Reports (BI)
	reports := protected.Group("/reports",
		RequireFeature(FeatureBIReports, deps.Features),
		RequireRole(entity.RoleAdmin, entity.RoleAccountant, entity.RoleDispatcher),
	)
	reportHandler := NewReportHandler(deps.Reports, deps.Export)
	reports.Get("/", reportHandler.List)
	reports.Get("/:name/export", reportHandler.Export)
	reports.Get("/:name", reportHandler.Get)

	// Payroll
	payrollGroup := protected.Group("/payroll",
		RequireFeature(FeaturePayroll, deps.Features),
		RequireRole(entity.RoleAdmin, entity.RoleAccountant),
	)
	payrollHandler := NewPayrollHandler(deps.Payroll)
	payrollGroup.Get("/runs", payrollHandler.ListRuns)
	payrollGroup.Post("/runs", payrollHandler.CreatePeriod)
	payrollGroup.Get("/runs/:id", payrollHandler.GetRun)
	payrollGroup.Post("/runs/:id/generate", payrollHandler.Generate)
	payrollGroup.Post("/runs/:id/process", payrollHandler.Process)
	payrollGroup.Get("/deductions", payrollHandler.ListDeductions)
	payrollGroup.Post("/deductions", payrollHandler.CreateDeduction)
	payrollGroup.Patch("/deductions/:id", payrollHandler.SetDeductionActive)

	// Invoices / AHS warranty
	invoiceHandler := NewInvoiceHandler(deps.AHS, deps.PDF)
	protected.Get("/invoices/:id/pdf",
		RequireRole(entity.RoleAdmin, entity.RoleAccountant, entity.RoleDispatcher),
		invoiceHandler.DownloadPDF,
	)
	ahs := protected.Group("/ahs",
		RequireFeature(FeatureAHSWarranty, deps.Features),
		RequireRole(entity.RoleAdmin, entity.RoleAccountant, entity.RoleDispatcher),
	)
	ahs.Get("/settings", invoiceHandler.Settings)
	ahs.Put("/settings", RequireRole(entity.RoleAdmin), invoiceHandler.UpdateSetting)
	ahs.Get("/settings/history", invoiceHandler.SettingsHistory)
	ahs.Get("/tickets/:id/invoices", invoiceHandler.TicketInvoices)
	ahs.Get("/tickets/:id/breakdown", invoiceHandler.BillingBreakdown)
	ahs.Post("/tickets/:id/invoices/ahs", invoiceHandler.CreateAHSInvoice)
	ahs.Post("/tickets/:id/invoices/customer", invoiceHandler.CreateCustomerInvoice)

	// CRM
	crmGroup := protected.Group("/crm",
		RequireFeature(FeatureCRM, deps.Features),
		RequireRole(entity.RoleAdmin, entity.RoleDispatcher),
	)
	crmHandler := NewCRMHandler(deps.CRM)
	crmGroup.Get("/customers/:id", crmHandler.Customer360)
	crmGroup.Get("/customers/:id/timeline", crmHandler.Timeline)
	crmGroup.Post("/interactions", crmHandler.LogInteraction)
	crmGroup.Get("/follow-ups", crmHandler.FollowUps)
	crmGroup.Get("/leads", crmHandler.Leads)
	crmGroup.Post("/leads", crmHandler.CreateLead)
	crmGroup.Post("/leads/:id/convert", crmHandler.ConvertLead)
	crmGroup.Get("/prospects", crmHandler.Prospects)
	crmGroup.Get("/pipelines", crmHandler.Pipelines)
	crmGroup.Get("/opportunities", crmHandler.Opportunities)
	crmGroup.Patch("/estimates/:id/stage", crmHandler.MoveEstimate)
	crmGroup.Post("/estimates/:id/pipeline", crmHandler.AddToPipeline)
	crmGroup.Post("/estimates/:id/lost", crmHandler.MarkLost)

	// Tickets (técnico en campo). Las rutas fijas van antes de /:id.
	tickets := protected.Group("/tickets")
	ticketHandler := NewTicketHandler(deps.Tickets, deps.Hub)
	techOnly := RequireRole(entity.RoleTechnician)
	tickets.Get("/mine", techOnly, ticketHandler.MyTickets)
	tickets.Get("/completed", techOnly, ticketHandler.Completed)
	tickets.Get("/timer", techOnly, ticketHandler.ActiveTimer)
	tickets.Get("/inventory", techOnly, ticketHandler.TruckInventory)
	tickets.Get("/:id", ticketHandler.Detail)
	tickets.Get("/:id/progress", ticketHandler.Progress)
	tickets.Get("/:id/progress/stream", ticketHandler.ProgressStream)
	tickets.Post("/:id/work/start", techOnly, ticketHandler.StartWork)
	tickets.Post("/:id/work/end", techOnly, ticketHandler.EndWork)
	tickets.Post("/:id/updates", ticketHandler.AddUpdate)
	tickets.Post("/:id/parts", techOnly, ticketHandler.AddPart)
	tickets.Post("/:id/photos", ticketHandler.UploadPhoto)

	// Tracking (despacho)
	tracking := protected.Group("/tracking", RequireRole(entity.RoleAdmin, entity.RoleDispatcher))
	trackingHandler := NewTrackingHandler(deps.Tracking, deps.Hub)
	tracking.Get("/", trackingHandler.Snapshot)
	tracking.Get("/stream", trackingHandler.Stream)
	tracking.Post("/refresh", trackingHandler.Refresh)
}
