package analytics_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/intelliservice-api/internal/application/analytics"
	"github.com/jhoicas/intelliservice-api/internal/application/usecase"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/report"
)

type fakeAnalytics struct {
	invoices []entity.Invoice
	err      error
}

func (f *fakeAnalytics) ListCustomers(context.Context, string) ([]entity.Customer, error) {
	return []entity.Customer{{ID: "cu-1", Name: "Ana"}}, f.err
}
func (f *fakeAnalytics) ListInvoicesSince(context.Context, string, time.Time) ([]entity.Invoice, error) {
	return f.invoices, f.err
}
func (f *fakeAnalytics) ListInvoicesBetween(context.Context, string, time.Time, time.Time) ([]entity.Invoice, error) {
	return f.invoices, f.err
}
func (f *fakeAnalytics) ListInvoicesForDSO(context.Context, string, time.Time, time.Time) ([]entity.Invoice, error) {
	return f.invoices, f.err
}
func (f *fakeAnalytics) LastServiceDates(context.Context, string) (map[string]time.Time, error) {
	return map[string]time.Time{}, f.err
}
func (f *fakeAnalytics) ListTimeLogs(context.Context, string, time.Time, time.Time) ([]entity.TimeLog, error) {
	return nil, f.err
}
func (f *fakeAnalytics) ListProjects(context.Context, string, time.Time, time.Time) ([]entity.Project, error) {
	return nil, f.err
}
func (f *fakeAnalytics) ListAssignedTickets(context.Context, string, time.Time, time.Time) ([]entity.Ticket, error) {
	return nil, f.err
}
func (f *fakeAnalytics) TechnicianNames(context.Context, string) (map[string]string, error) {
	return map[string]string{}, f.err
}
func (f *fakeAnalytics) InvoiceTotalsByTicket(context.Context, string, []string) (map[string]decimal.Decimal, error) {
	return map[string]decimal.Decimal{}, f.err
}

type fakeRecorder struct {
	mu        sync.Mutex
	fallbacks map[string]int
	observed  int
}

func (r *fakeRecorder) ReportDuration(string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed++
}

func (r *fakeRecorder) ReportFallback(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallbacks == nil {
		r.fallbacks = map[string]int{}
	}
	r.fallbacks[name]++
}

func testRange() report.DateRange {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	return report.NewRange(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), now, now)
}

func TestGenerate_FinancialsConDatos(t *testing.T) {
	repo := &fakeAnalytics{invoices: []entity.Invoice{
		{ID: "i1", Status: entity.InvoiceStatusPaid, TotalAmount: decimal.NewFromInt(300), InvoiceDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{ID: "i2", Status: entity.InvoiceStatusSent, TotalAmount: decimal.NewFromInt(200), InvoiceDate: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)},
	}}
	uc := analytics.NewReportsUseCase(repo, nil, zerolog.Nop())

	res, err := uc.Generate(context.Background(), "c-1", report.NameFinancials, testRange())
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, "2024-03-01", res.Period.StartDate)

	s, ok := res.Summary.(report.FinancialsSummary)
	require.True(t, ok)
	assert.True(t, s.TotalRevenue.Equal(decimal.NewFromInt(500)))
	assert.True(t, s.PaidAmount.Equal(decimal.NewFromInt(300)))
}

func TestGenerate_FalloDeLecturaDevuelveResumenVacio(t *testing.T) {
	rec := &fakeRecorder{}
	uc := analytics.NewReportsUseCase(&fakeAnalytics{err: errors.New("conexión rechazada")}, rec, zerolog.Nop())

	for _, name := range report.Names() {
		res, err := uc.Generate(context.Background(), "c-1", name, testRange())
		require.NoError(t, err, name)
		assert.True(t, res.Degraded, name)
		assert.NotNil(t, res.Summary, name)
	}
	assert.Equal(t, 1, rec.fallbacks[report.NameDSO])
	assert.Equal(t, len(report.Names()), rec.observed)

	res, _ := uc.Generate(context.Background(), "c-1", report.NameCustomerValue, testRange())
	cv := res.Summary.(report.CustomerValueSummary)
	assert.Equal(t, "N/A", cv.TopCustomerName)
	assert.Equal(t, 0, cv.TotalCustomers)
}

func TestGenerate_ReporteDesconocido(t *testing.T) {
	uc := analytics.NewReportsUseCase(&fakeAnalytics{}, nil, zerolog.Nop())
	_, err := uc.Generate(context.Background(), "c-1", "ventas-por-zona", testRange())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type fakeExporter struct{ got report.Document }

func (e *fakeExporter) Format() string      { return "csv" }
func (e *fakeExporter) ContentType() string { return "text/csv" }
func (e *fakeExporter) Export(doc report.Document) ([]byte, error) {
	e.got = doc
	return []byte("ok"), nil
}

type fixedProfile struct{}

func (fixedProfile) Current(context.Context, string) usecase.Profile {
	return usecase.NewProfile("Frío Total", "")
}

func TestExport_UsaPerfilYNombreDeArchivo(t *testing.T) {
	exp := &fakeExporter{}
	reports := analytics.NewReportsUseCase(&fakeAnalytics{}, nil, zerolog.Nop())
	uc := analytics.NewExportUseCase(reports, fixedProfile{}, exp)

	f, err := uc.Export(context.Background(), "c-1", report.NameDSO, "CSV", testRange())
	require.NoError(t, err)
	assert.Equal(t, "dso_2024-03-01_2024-03-31.csv", f.Filename)
	assert.Equal(t, "text/csv", f.ContentType)
	assert.Equal(t, "Frío Total", exp.got.CompanyName)
	assert.Equal(t, "Days Sales Outstanding", exp.got.Title)
}

func TestExport_FormatoDesconocido(t *testing.T) {
	reports := analytics.NewReportsUseCase(&fakeAnalytics{}, nil, zerolog.Nop())
	uc := analytics.NewExportUseCase(reports, fixedProfile{})

	_, err := uc.Export(context.Background(), "c-1", report.NameDSO, "docx", testRange())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
