package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/intelliservice-api/internal/application/analytics"
	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/application/fieldwork"
	"github.com/jhoicas/intelliservice-api/internal/application/polling"
	"github.com/jhoicas/intelliservice-api/internal/application/usecase"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	work "github.com/jhoicas/intelliservice-api/internal/domain/fieldwork"
	"github.com/jhoicas/intelliservice-api/internal/domain/report"
	apphttp "github.com/jhoicas/intelliservice-api/internal/interfaces/http"
)

// withIdentity simula lo que deja AuthMiddleware en locals.
func withIdentity(c *fiber.Ctx) error {
	c.Locals(apphttp.LocalUserID, testUserID)
	c.Locals(apphttp.LocalCompanyID, testCompanyID)
	c.Locals(apphttp.LocalRole, "admin")
	return c.Next()
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireFeature
// ──────────────────────────────────────────────────────────────────────────────

type fakeChecker struct {
	enabled bool
	err     error
}

func (f fakeChecker) IsEnabled(context.Context, string, string) (bool, error) {
	return f.enabled, f.err
}

func featureApp(checker fakeChecker) *fiber.App {
	app := fiber.New()
	app.Get("/gated", withIdentity, apphttp.RequireFeature(apphttp.FeaturePayroll, checker), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireFeature(t *testing.T) {
	cases := []struct {
		name    string
		checker fakeChecker
		status  int
		code    string
	}{
		{"activa", fakeChecker{enabled: true}, http.StatusOK, ""},
		{"inactiva", fakeChecker{}, http.StatusForbidden, "MODULE_DISABLED"},
		{"fallo de verificación", fakeChecker{err: errors.New("db caída")}, http.StatusServiceUnavailable, "MODULE_CHECK_FAILED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := send(t, featureApp(tc.checker), httptest.NewRequest(http.MethodGet, "/gated", nil))
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.code != "" {
				assert.Contains(t, body, tc.code)
			}
		})
	}
}

func TestRequireFeature_SinEmpresaEs401(t *testing.T) {
	app := fiber.New()
	app.Get("/gated", apphttp.RequireFeature(apphttp.FeatureCRM, fakeChecker{enabled: true}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	resp, _ := send(t, app, httptest.NewRequest(http.MethodGet, "/gated", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Payroll
// ──────────────────────────────────────────────────────────────────────────────

type fakePayroll struct {
	created    *dto.CreatePayrollPeriodRequest
	processErr error
	approver   string
	active     *bool
}

func (f *fakePayroll) CreatePeriod(_ context.Context, _, _ string, in dto.CreatePayrollPeriodRequest) (*dto.PayrollRunResponse, error) {
	f.created = &in
	return &dto.PayrollRunResponse{ID: "run-1", RunNumber: "PR-2024-0001", Status: "draft"}, nil
}

func (f *fakePayroll) Generate(context.Context, string, string) (*dto.PayrollRunResponse, error) {
	return &dto.PayrollRunResponse{ID: "run-1"}, nil
}

func (f *fakePayroll) Process(_ context.Context, _, _, approverID string) (*dto.PayrollRunResponse, error) {
	f.approver = approverID
	if f.processErr != nil {
		return nil, f.processErr
	}
	return &dto.PayrollRunResponse{ID: "run-1", Status: "paid"}, nil
}

func (f *fakePayroll) ListRuns(context.Context, string) ([]dto.PayrollRunResponse, error) {
	return []dto.PayrollRunResponse{}, nil
}

func (f *fakePayroll) GetRun(context.Context, string, string) (*dto.PayrollRunResponse, error) {
	return nil, domain.ErrNotFound
}

func (f *fakePayroll) ListDeductions(context.Context, string) ([]dto.DeductionResponse, error) {
	return nil, errors.New("conexión perdida")
}

func (f *fakePayroll) CreateDeduction(context.Context, string, dto.CreateDeductionRequest) (*dto.DeductionResponse, error) {
	return nil, domain.ErrInvalidInput
}

func (f *fakePayroll) SetDeductionActive(_ context.Context, _, _ string, active bool) error {
	f.active = &active
	return nil
}

func payrollApp(uc *fakePayroll) *fiber.App {
	app := fiber.New()
	h := apphttp.NewPayrollHandler(uc)
	g := app.Group("/api/payroll", withIdentity)
	g.Post("/runs", h.CreatePeriod)
	g.Get("/runs/:id", h.GetRun)
	g.Post("/runs/:id/process", h.Process)
	g.Get("/deductions", h.ListDeductions)
	g.Post("/deductions", h.CreateDeduction)
	g.Patch("/deductions/:id", h.SetDeductionActive)
	return app
}

func TestPayrollHandler_CreatePeriodValidaFechas(t *testing.T) {
	uc := &fakePayroll{}
	resp, body := send(t, payrollApp(uc), jsonRequest(http.MethodPost, "/api/payroll/runs",
		`{"period_start":"01/01/2024","period_end":"2024-01-15"}`))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out dto.ValidationErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Fields, "period_start")
	assert.Contains(t, out.Fields, "pay_date")
	assert.NotContains(t, out.Fields, "period_end")
	assert.Nil(t, uc.created, "no debe llegar al caso de uso")
}

func TestPayrollHandler_CreatePeriodCuerpoInvalido(t *testing.T) {
	resp, body := send(t, payrollApp(&fakePayroll{}), jsonRequest(http.MethodPost, "/api/payroll/runs", `{"period_start":`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "INVALID_BODY")
}

func TestPayrollHandler_CreatePeriodCrea(t *testing.T) {
	uc := &fakePayroll{}
	resp, body := send(t, payrollApp(uc), jsonRequest(http.MethodPost, "/api/payroll/runs",
		`{"period_start":"2024-01-01","period_end":"2024-01-15","pay_date":"2024-01-20"}`))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, "PR-2024-0001")
	require.NotNil(t, uc.created)
	assert.Equal(t, "2024-01-20", uc.created.PayDate)
}

func TestPayrollHandler_ProcessConflictoEs409(t *testing.T) {
	uc := &fakePayroll{processErr: domain.ErrConflict}
	resp, body := send(t, payrollApp(uc), httptest.NewRequest(http.MethodPost, "/api/payroll/runs/run-1/process", nil))

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "CONFLICT")
	assert.Equal(t, testUserID, uc.approver, "el aprobador es el usuario del token")
}

func TestPayrollHandler_MapeoDeErrores(t *testing.T) {
	app := payrollApp(&fakePayroll{})

	resp, _ := send(t, app, httptest.NewRequest(http.MethodGet, "/api/payroll/runs/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/payroll/deductions", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body, "conexión perdida", "el detalle interno no se expone")

	resp, _ = send(t, app, jsonRequest(http.MethodPost, "/api/payroll/deductions",
		`{"name":"IMSS","deduction_type":"tax","calculation_method":"percentage","amount":"150"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPayrollHandler_DesactivarDeduccion(t *testing.T) {
	uc := &fakePayroll{}
	resp, _ := send(t, payrollApp(uc), jsonRequest(http.MethodPatch, "/api/payroll/deductions/d-1", `{"is_active":false}`))

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.NotNil(t, uc.active)
	assert.False(t, *uc.active)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tickets
// ──────────────────────────────────────────────────────────────────────────────

type fakeTickets struct {
	startErr    error
	progressErr error
	photo       *fieldwork.PhotoUpload
	photoRaw    []byte
	complete    *bool
}

func (f *fakeTickets) MyTickets(context.Context, string, string) ([]dto.TicketResponse, error) {
	return []dto.TicketResponse{}, nil
}

func (f *fakeTickets) CompletedTickets(context.Context, string, string) ([]dto.TicketResponse, error) {
	return []dto.TicketResponse{}, nil
}

func (f *fakeTickets) TicketDetail(context.Context, string, string) (*dto.TicketDetailResponse, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeTickets) StartWork(context.Context, string, string, string) (*dto.ActiveTimerResponse, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &dto.ActiveTimerResponse{Active: true, TicketID: "t-1"}, nil
}

func (f *fakeTickets) EndWork(_ context.Context, _, _, ticketID string, complete bool) (*dto.EndWorkResponse, error) {
	f.complete = &complete
	return &dto.EndWorkResponse{TicketID: ticketID, Completed: complete}, nil
}

func (f *fakeTickets) ActiveTimer(context.Context, string) (*dto.ActiveTimerResponse, error) {
	return &dto.ActiveTimerResponse{}, nil
}

func (f *fakeTickets) AddUpdate(context.Context, string, string, string, dto.AddUpdateRequest) (*dto.TicketUpdateResponse, error) {
	return &dto.TicketUpdateResponse{}, nil
}

func (f *fakeTickets) AddPartUsed(context.Context, string, string, string, dto.AddPartRequest) (*dto.PartUsedResponse, error) {
	return &dto.PartUsedResponse{}, nil
}

func (f *fakeTickets) UploadPhoto(_ context.Context, _, _, _ string, in fieldwork.PhotoUpload) (*dto.PhotoResponse, error) {
	raw, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.photo = &in
	f.photoRaw = raw
	return &dto.PhotoResponse{ID: "p-1", PhotoURL: "https://cdn/x.jpg", PhotoType: in.PhotoType}, nil
}

func (f *fakeTickets) TruckInventory(context.Context, string, string) (*dto.TruckInventoryResponse, error) {
	return &dto.TruckInventoryResponse{Source: fieldwork.InventorySourceCatalog}, nil
}

func (f *fakeTickets) OnsiteProgress(_ context.Context, _, ticketID string) (work.Progress, error) {
	if f.progressErr != nil {
		return work.Progress{}, f.progressErr
	}
	return work.Progress{TicketID: ticketID, ElapsedMinutes: 30, EstimatedMinutes: 60, Percent: 50}, nil
}

func (f *fakeTickets) ProgressFetch(_, ticketID string) polling.Fetch {
	return func(ctx context.Context) (any, error) { return f.OnsiteProgress(ctx, "", ticketID) }
}

// fakeHub entrega las instantáneas dadas y cierra el canal.
type fakeHub struct {
	snaps     []polling.Snapshot
	key       string
	unsub     bool
	active    bool
	refreshed string
}

func (f *fakeHub) Refresh(_ context.Context, key string) bool {
	f.refreshed = key
	return f.active
}

func (f *fakeHub) Subscribe(_ context.Context, key string, _ polling.Fetch) (<-chan polling.Snapshot, func()) {
	f.key = key
	ch := make(chan polling.Snapshot, len(f.snaps))
	for _, s := range f.snaps {
		ch <- s
	}
	close(ch)
	return ch, func() { f.unsub = true }
}

func ticketsApp(uc *fakeTickets, hub *fakeHub) *fiber.App {
	app := fiber.New()
	h := apphttp.NewTicketHandler(uc, hub)
	g := app.Group("/api/tickets", withIdentity)
	g.Get("/inventory", h.TruckInventory)
	g.Get("/:id", h.Detail)
	g.Get("/:id/progress", h.Progress)
	g.Get("/:id/progress/stream", h.ProgressStream)
	g.Post("/:id/work/start", h.StartWork)
	g.Post("/:id/work/end", h.EndWork)
	g.Post("/:id/photos", h.UploadPhoto)
	return app
}

func TestTicketHandler_StartWorkConTemporizadorActivoEs409(t *testing.T) {
	app := ticketsApp(&fakeTickets{startErr: domain.ErrTimerActive}, &fakeHub{})
	resp, body := send(t, app, httptest.NewRequest(http.MethodPost, "/api/tickets/t-1/work/start", nil))

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "TIMER_ACTIVE")
}

func TestTicketHandler_EndWorkSinCuerpoNoCompleta(t *testing.T) {
	uc := &fakeTickets{}
	app := ticketsApp(uc, &fakeHub{})

	resp, _ := send(t, app, httptest.NewRequest(http.MethodPost, "/api/tickets/t-1/work/end", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, uc.complete)
	assert.False(t, *uc.complete)

	resp, body := send(t, app, jsonRequest(http.MethodPost, "/api/tickets/t-1/work/end", `{"complete":true}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, *uc.complete)
	assert.Contains(t, body, `"completed":true`)
}

func TestTicketHandler_DetalleInexistenteEs404(t *testing.T) {
	resp, _ := send(t, ticketsApp(&fakeTickets{}, &fakeHub{}), httptest.NewRequest(http.MethodGet, "/api/tickets/t-9", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTicketHandler_RutaFijaAntesQueID(t *testing.T) {
	resp, body := send(t, ticketsApp(&fakeTickets{}, &fakeHub{}), httptest.NewRequest(http.MethodGet, "/api/tickets/inventory", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "catalog")
}

func TestTicketHandler_SubeFotoMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("photo_type", "before"))
	require.NoError(t, mw.WriteField("caption", "Unidad exterior"))
	fw, err := mw.CreateFormFile("file", "condensador.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tickets/t-1/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	uc := &fakeTickets{}
	resp, body := send(t, ticketsApp(uc, &fakeHub{}), req)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, "https://cdn/x.jpg")
	require.NotNil(t, uc.photo)
	assert.Equal(t, "before", uc.photo.PhotoType)
	assert.Equal(t, "Unidad exterior", uc.photo.Caption)
	assert.Equal(t, "condensador.png", uc.photo.Filename)
	assert.Equal(t, int64(len("png-bytes")), uc.photo.Size)
	assert.Equal(t, []byte("png-bytes"), uc.photoRaw)
}

func TestTicketHandler_FotoSinArchivoEs400(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("photo_type", "before"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tickets/t-1/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, body := send(t, ticketsApp(&fakeTickets{}, &fakeHub{}), req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "INVALID_BODY")
}

func TestTicketHandler_ProgresoUnaVez(t *testing.T) {
	resp, body := send(t, ticketsApp(&fakeTickets{}, &fakeHub{}), httptest.NewRequest(http.MethodGet, "/api/tickets/t-1/progress", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var p work.Progress
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Equal(t, 50, p.Percent)
	assert.Equal(t, "t-1", p.TicketID)
}

func TestTicketHandler_ProgresoSSE(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	hub := &fakeHub{snaps: []polling.Snapshot{
		{Topic: "ticket-progress", Seq: 1, Data: work.Progress{TicketID: "t-1", Percent: 10}, FetchedAt: at},
		{Topic: "ticket-progress", Seq: 2, Data: work.Progress{TicketID: "t-1", Percent: 20}, FetchedAt: at},
	}}
	resp, body := send(t, ticketsApp(&fakeTickets{}, hub), httptest.NewRequest(http.MethodGet, "/api/tickets/t-1/progress/stream", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))
	assert.Equal(t, polling.TicketProgressTopic(testCompanyID, "t-1"), hub.key, "el tópico es por empresa y ticket")
	assert.Contains(t, body, "id: 1\nevent: snapshot\n")
	assert.Contains(t, body, "id: 2\nevent: snapshot\n")
	assert.Contains(t, body, `"percent":20`)
	assert.True(t, hub.unsub, "al cerrar el canal se libera la suscripción")
}

func TestTicketHandler_ProgresoSSETicketInexistenteEs404(t *testing.T) {
	hub := &fakeHub{}
	uc := &fakeTickets{progressErr: domain.ErrNotFound}
	resp, body := send(t, ticketsApp(uc, hub), httptest.NewRequest(http.MethodGet, "/api/tickets/t-9/progress/stream", nil))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "NOT_FOUND")
	assert.False(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))
	assert.Empty(t, hub.key, "no se abre la suscripción")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tracking
// ──────────────────────────────────────────────────────────────────────────────

type fakeTracking struct{}

func (fakeTracking) ActiveTechnicians(context.Context, string) ([]dto.TechnicianStatusResponse, error) {
	return []dto.TechnicianStatusResponse{}, nil
}

func (fakeTracking) TrackingFetch(string) polling.Fetch {
	return func(context.Context) (any, error) { return []dto.TechnicianStatusResponse{}, nil }
}

func TestTrackingHandler_RefreshFuerzaLecturaDelTopicoDeLaEmpresa(t *testing.T) {
	hub := &fakeHub{active: true}
	app := fiber.New()
	h := apphttp.NewTrackingHandler(fakeTracking{}, hub)
	app.Post("/api/tracking/refresh", withIdentity, h.Refresh)

	resp, body := send(t, app, httptest.NewRequest(http.MethodPost, "/api/tracking/refresh", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, polling.TrackingTopic(testCompanyID), hub.refreshed)
	assert.Contains(t, body, `"refreshed":true`)

	hub.active = false
	_, body = send(t, app, httptest.NewRequest(http.MethodPost, "/api/tracking/refresh", nil))
	assert.Contains(t, body, `"refreshed":false`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Company
// ──────────────────────────────────────────────────────────────────────────────

type fakeProfiles struct{}

func (fakeProfiles) Current(context.Context, string) usecase.Profile { return usecase.DefaultProfile() }
func (fakeProfiles) Refresh(context.Context, string) (usecase.Profile, error) {
	return usecase.DefaultProfile(), nil
}

type fakeFeatureAdmin struct {
	key     string
	enabled bool
}

func (f *fakeFeatureAdmin) SetFlag(_ context.Context, companyID, key string, enabled bool, expiresAt *time.Time) (*entity.FeatureFlag, error) {
	if !entity.IsKnownFeature(key) {
		return nil, domain.ErrInvalidInput
	}
	f.key, f.enabled = key, enabled
	return &entity.FeatureFlag{CompanyID: companyID, FeatureKey: key, Enabled: enabled, ExpiresAt: expiresAt}, nil
}

func companyApp(features *fakeFeatureAdmin) *fiber.App {
	app := fiber.New()
	h := apphttp.NewCompanyHandler(fakeProfiles{}, features)
	app.Put("/api/company/features/:key", withIdentity, h.SetFeature)
	return app
}

func TestCompanyHandler_SetFeature(t *testing.T) {
	features := &fakeFeatureAdmin{}
	app := companyApp(features)

	resp, body := send(t, app, jsonRequest(http.MethodPut, "/api/company/features/crm", `{"enabled":false}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "crm", features.key)
	assert.False(t, features.enabled)
	assert.Contains(t, body, `"feature_key":"crm"`)

	resp, body = send(t, app, jsonRequest(http.MethodPut, "/api/company/features/crm", `{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "enabled")

	resp, _ = send(t, app, jsonRequest(http.MethodPut, "/api/company/features/inventario", `{"enabled":true}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reports
// ──────────────────────────────────────────────────────────────────────────────

type fakeReports struct {
	gotRange report.DateRange
}

func (f *fakeReports) Generate(_ context.Context, _, name string, r report.DateRange) (analytics.Result[report.Tabular], error) {
	f.gotRange = r
	if name != report.NameDSO {
		return analytics.Result[report.Tabular]{}, domain.ErrNotFound
	}
	return analytics.Result[report.Tabular]{Report: name, Period: r.Period(), Degraded: true}, nil
}

type fakeExport struct {
	format string
}

func (f *fakeExport) Export(_ context.Context, _, name, format string, _ report.DateRange) (*analytics.ExportFile, error) {
	f.format = format
	if format != "xlsx" && format != "pdf" {
		return nil, domain.ErrInvalidInput
	}
	return &analytics.ExportFile{
		Filename:    name + "_2024-01-01_2024-01-31." + format,
		ContentType: "application/pdf",
		Content:     []byte("%PDF"),
		Degraded:    true,
	}, nil
}

func reportsApp(r *fakeReports, e *fakeExport) *fiber.App {
	app := fiber.New()
	h := apphttp.NewReportHandler(r, e)
	g := app.Group("/api/reports", withIdentity)
	g.Get("/", h.List)
	g.Get("/:name/export", h.Export)
	g.Get("/:name", h.Get)
	return app
}

func TestReportHandler_Get(t *testing.T) {
	rep := &fakeReports{}
	app := reportsApp(rep, &fakeExport{})

	resp, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/reports/dso?start_date=2024-01-01&end_date=2024-01-31", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"degraded":true`)
	assert.Equal(t, 2024, rep.gotRange.Start.Year())
	assert.Equal(t, 31, rep.gotRange.End.Day())

	resp, _ = send(t, app, httptest.NewRequest(http.MethodGet, "/api/reports/inexistente", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = send(t, app, httptest.NewRequest(http.MethodGet, "/api/reports/dso?start_date=2024-02-01&end_date=2024-01-01", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "INVALID_PARAMS")
}

func TestReportHandler_ListaNombres(t *testing.T) {
	resp, body := send(t, reportsApp(&fakeReports{}, &fakeExport{}), httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, report.NameTechnicianMetrics)
}

func TestReportHandler_ExportDescargaArchivo(t *testing.T) {
	exp := &fakeExport{}
	app := reportsApp(&fakeReports{}, exp)

	resp, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/reports/dso/export?format=pdf", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="dso_2024-01-01_2024-01-31.pdf"`)
	assert.Equal(t, "true", resp.Header.Get("X-Report-Degraded"))
	assert.Equal(t, "%PDF", body)

	_, _ = send(t, app, httptest.NewRequest(http.MethodGet, "/api/reports/dso/export", nil))
	assert.Equal(t, "xlsx", exp.format, "xlsx es el formato por defecto")

	resp, _ = send(t, app, httptest.NewRequest(http.MethodGet, "/api/reports/dso/export?format=csv", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
