package crm_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/intelliservice-api/internal/application/crm"
	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

const companyID = "c-1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func ptr[T any](v T) *T            { return &v }

type fakeCustomers struct {
	repository.CustomerRepository
	byID      map[string]*entity.Customer
	created   []*entity.Customer
	stats     repository.CustomerStats
	equipment []entity.Equipment
	err       error
}

func (f *fakeCustomers) Stats(context.Context, string, string) (*repository.CustomerStats, error) {
	s := f.stats
	return &s, nil
}

func (f *fakeCustomers) ListActiveEquipment(context.Context, string, string) ([]entity.Equipment, error) {
	return f.equipment, nil
}

func (f *fakeCustomers) GetByID(_ context.Context, _, id string) (*entity.Customer, error) {
	return f.byID[id], f.err
}

func (f *fakeCustomers) Create(_ context.Context, c *entity.Customer) error {
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCustomers) Convert(_ context.Context, _, id string) (bool, error) {
	c := f.byID[id]
	if c == nil || c.Status != entity.CustomerStatusLead {
		return false, nil
	}
	c.Status = entity.CustomerStatusActive
	return true, nil
}

type fakeTickets struct {
	repository.TicketRepository
	list  []entity.Ticket
	limit int
}

func (f *fakeTickets) ListByCustomer(_ context.Context, _, _ string, limit int) ([]entity.Ticket, error) {
	f.limit = limit
	return f.list[:min(limit, len(f.list))], nil
}

type fakeEstimates struct {
	repository.EstimateRepository
	list      []entity.Estimate
	setStage  [3]string
	lost      string
	lostStage *string
}

func (f *fakeEstimates) GetByID(_ context.Context, _, id string) (*entity.Estimate, error) {
	for i := range f.list {
		if f.list[i].ID == id {
			e := f.list[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeEstimates) ListByCustomer(context.Context, string, string, int) ([]entity.Estimate, error) {
	return f.list, nil
}

func (f *fakeEstimates) ListByPipeline(_ context.Context, _, pipelineID string) ([]entity.Estimate, error) {
	var out []entity.Estimate
	for _, e := range f.list {
		if e.PipelineID != nil && *e.PipelineID == pipelineID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEstimates) SetStage(_ context.Context, _, id, pipelineID, stageID string) error {
	f.setStage = [3]string{id, pipelineID, stageID}
	return nil
}

func (f *fakeEstimates) MarkLost(_ context.Context, _, _, reason string, lostStageID *string) error {
	f.lost, f.lostStage = reason, lostStageID
	return nil
}

type fakeInvoices struct {
	repository.InvoiceRepository
	list []entity.Invoice
}

func (f *fakeInvoices) ListByCustomer(context.Context, string, string, int) ([]entity.Invoice, error) {
	return f.list, nil
}

type fakeInteractions struct {
	created  []*entity.CustomerInteraction
	list     []entity.CustomerInteraction
	from, to time.Time
}

func (f *fakeInteractions) Create(_ context.Context, i *entity.CustomerInteraction) error {
	f.created = append(f.created, i)
	return nil
}

func (f *fakeInteractions) ListByCustomer(context.Context, string, string, int) ([]entity.CustomerInteraction, error) {
	return f.list, nil
}

func (f *fakeInteractions) ListFollowUpsBetween(_ context.Context, _ string, from, to time.Time) ([]entity.CustomerInteraction, error) {
	f.from, f.to = from, to
	return nil, nil
}

type fakePipelines struct {
	list []entity.DealPipeline
}

func (f *fakePipelines) List(context.Context, string) ([]entity.DealPipeline, error) {
	return f.list, nil
}

func (f *fakePipelines) GetStage(_ context.Context, _, stageID string) (*entity.DealStage, error) {
	for _, p := range f.list {
		for _, s := range p.Stages {
			if s.ID == stageID {
				return &s, nil
			}
		}
	}
	return nil, nil
}

type env struct {
	uc           *crm.UseCase
	customers    *fakeCustomers
	tickets      *fakeTickets
	estimates    *fakeEstimates
	invoices     *fakeInvoices
	interactions *fakeInteractions
	pipelines    *fakePipelines
}

func newEnv() *env {
	e := &env{
		customers: &fakeCustomers{byID: map[string]*entity.Customer{
			"cust-1": {ID: "cust-1", Name: "Ana Pérez", Status: entity.CustomerStatusActive},
			"lead-1": {ID: "lead-1", Name: "Nuevo", Status: entity.CustomerStatusLead},
		}},
		tickets:      &fakeTickets{},
		estimates:    &fakeEstimates{},
		invoices:     &fakeInvoices{},
		interactions: &fakeInteractions{},
		pipelines: &fakePipelines{list: []entity.DealPipeline{
			{ID: "p-2", Name: "Instalaciones", Stages: []entity.DealStage{
				{ID: "s-21", PipelineID: "p-2", SortOrder: 1},
				{ID: "s-29", PipelineID: "p-2", Name: "Perdido", SortOrder: 9, IsLost: true},
			}},
			{ID: "p-1", Name: "Ventas", IsDefault: true, Stages: []entity.DealStage{
				{ID: "s-11", PipelineID: "p-1", Name: "Nuevo", SortOrder: 1},
				{ID: "s-12", PipelineID: "p-1", Name: "Propuesta", SortOrder: 2},
				{ID: "s-19", PipelineID: "p-1", Name: "Perdido", SortOrder: 9, IsLost: true},
			}},
		}},
	}
	e.uc = crm.NewUseCase(e.customers, e.tickets, e.estimates, e.invoices, e.interactions, e.pipelines, zerolog.Nop())
	return e
}

func TestCustomer360_EstadisticasAgregadas(t *testing.T) {
	e := newEnv()
	last := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	e.customers.stats = repository.CustomerStats{
		TotalTickets: 250, OpenTickets: 12, TotalEstimates: 40, PendingEstimates: 3,
		TotalRevenue: dec("81250.50"), AvgTicketValue: dec("412.345"), LastServiceDate: &last, ActiveEquipment: 2,
	}
	e.customers.equipment = []entity.Equipment{
		{ID: "eq-1", EquipmentType: "furnace", Manufacturer: "Carrier", IsActive: true},
		{ID: "eq-2", EquipmentType: "condenser", Manufacturer: "Trane", IsActive: true},
	}
	for i := 0; i < 250; i++ {
		e.tickets.list = append(e.tickets.list, entity.Ticket{ID: fmt.Sprintf("t-%d", i), Status: entity.TicketStatusCompleted})
	}

	res, err := e.uc.Customer360(context.Background(), companyID, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", res.Customer.Name)
	s := res.Stats
	assert.Equal(t, 250, s.TotalTickets)
	assert.Equal(t, 12, s.OpenTickets)
	assert.Equal(t, 40, s.TotalEstimates)
	assert.Equal(t, 3, s.PendingEstimates)
	assert.True(t, dec("81250.50").Equal(s.TotalRevenue))
	assert.True(t, dec("412.35").Equal(s.AvgTicketValue))
	assert.Equal(t, 2, s.ActiveEquipment)
	require.NotNil(t, s.LastServiceDate)
	assert.Equal(t, "2024-03-05", *s.LastServiceDate)

	assert.Equal(t, 5, e.tickets.limit)
	assert.Len(t, res.Tickets, 5)
	require.Len(t, res.Equipment, 2)
	assert.Equal(t, "Carrier", res.Equipment[0].Manufacturer)
}

func TestCustomer360_ClienteInexistenteOFallo(t *testing.T) {
	e := newEnv()
	_, err := e.uc.Customer360(context.Background(), companyID, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	e.customers.err = errors.New("db caída")
	_, err = e.uc.Customer360(context.Background(), companyID, "cust-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerTimeline_OrdenDescendenteYLimite(t *testing.T) {
	e := newEnv()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.tickets.list = []entity.Ticket{{ID: "t-1", TicketNumber: "T-1", Title: "Revisión", CreatedAt: base.Add(48 * time.Hour)}}
	e.invoices.list = []entity.Invoice{{ID: "i-1", InvoiceNumber: "INV-2401-0001", InvoiceDate: base.Add(72 * time.Hour)}}
	e.interactions.list = []entity.CustomerInteraction{{ID: "x-1", InteractionType: entity.InteractionCall, CreatedAt: base}}

	events, err := e.uc.CustomerTimeline(context.Background(), companyID, "cust-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "invoice", events[0].EventType)
	assert.Equal(t, "T-1 Revisión", events[1].Title)
	assert.Equal(t, "call", events[2].Title)

	events, err = e.uc.CustomerTimeline(context.Background(), companyID, "cust-1", 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestPipelines_AgrupaPorEtapaYDefaultPrimero(t *testing.T) {
	e := newEnv()
	e.estimates.list = []entity.Estimate{
		{ID: "e-1", PipelineID: ptr("p-1"), StageID: ptr("s-11"), TotalAmount: dec("1000")},
		{ID: "e-2", PipelineID: ptr("p-1"), StageID: ptr("s-11"), TotalAmount: dec("250")},
		{ID: "e-3", PipelineID: ptr("p-1"), StageID: ptr("s-12"), TotalAmount: dec("90")},
		{ID: "e-4", PipelineID: ptr("p-1"), StageID: ptr("borrada"), TotalAmount: dec("5")},
	}
	res, err := e.uc.Pipelines(context.Background(), companyID)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "p-1", res[0].ID)
	require.Len(t, res[0].Stages, 3)
	assert.Len(t, res[0].Stages[0].Estimates, 2)
	assert.True(t, dec("1250").Equal(res[0].Stages[0].TotalValue))
	assert.Len(t, res[0].Stages[1].Estimates, 1)
	assert.Empty(t, res[1].Stages[0].Estimates)
}

func TestAddEstimateToPipeline_PrimeraEtapaPorDefecto(t *testing.T) {
	e := newEnv()
	require.NoError(t, e.uc.AddEstimateToPipeline(context.Background(), companyID, "e-1", "p-1", ""))
	assert.Equal(t, [3]string{"e-1", "p-1", "s-11"}, e.estimates.setStage)

	err := e.uc.AddEstimateToPipeline(context.Background(), companyID, "e-1", "p-1", "s-21")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = e.uc.AddEstimateToPipeline(context.Background(), companyID, "e-1", "p-x", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMoveEstimateToStage(t *testing.T) {
	e := newEnv()
	require.NoError(t, e.uc.MoveEstimateToStage(context.Background(), companyID, "e-1", "s-21"))
	assert.Equal(t, [3]string{"e-1", "p-2", "s-21"}, e.estimates.setStage)
	assert.ErrorIs(t, e.uc.MoveEstimateToStage(context.Background(), companyID, "e-1", "s-x"), domain.ErrNotFound)
}

func TestMarkEstimateLost_RequiereMotivo(t *testing.T) {
	e := newEnv()
	e.estimates.list = []entity.Estimate{{ID: "e-1", PipelineID: ptr("p-1"), StageID: ptr("s-12")}}
	assert.ErrorIs(t, e.uc.MarkEstimateLost(context.Background(), companyID, "e-1", "  "), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.uc.MarkEstimateLost(context.Background(), companyID, "nope", "precio"), domain.ErrNotFound)
	require.NoError(t, e.uc.MarkEstimateLost(context.Background(), companyID, "e-1", " precio "))
	assert.Equal(t, "precio", e.estimates.lost)
}

func TestMarkEstimateLost_MueveAEtapaDePerdidos(t *testing.T) {
	e := newEnv()
	e.estimates.list = []entity.Estimate{
		{ID: "e-1", PipelineID: ptr("p-2"), StageID: ptr("s-21")},
		{ID: "e-2"},
	}

	require.NoError(t, e.uc.MarkEstimateLost(context.Background(), companyID, "e-1", "competencia"))
	require.NotNil(t, e.estimates.lostStage)
	assert.Equal(t, "s-29", *e.estimates.lostStage)

	require.NoError(t, e.uc.MarkEstimateLost(context.Background(), companyID, "e-2", "sin respuesta"))
	require.NotNil(t, e.estimates.lostStage)
	assert.Equal(t, "s-19", *e.estimates.lostStage, "sin embudo usa el embudo por defecto")

	e.pipelines.list[0].Stages = e.pipelines.list[0].Stages[:1]
	require.NoError(t, e.uc.MarkEstimateLost(context.Background(), companyID, "e-1", "precio"))
	assert.Nil(t, e.estimates.lostStage)
}

func TestPipelines_PerdidoApareceEnEtapaDePerdidos(t *testing.T) {
	e := newEnv()
	e.estimates.list = []entity.Estimate{
		{ID: "e-1", PipelineID: ptr("p-1"), StageID: ptr("s-19"), Status: entity.EstimateStatusRejected, TotalAmount: dec("700")},
	}
	res, err := e.uc.Pipelines(context.Background(), companyID)
	require.NoError(t, err)
	lost := res[0].Stages[2]
	assert.True(t, lost.IsLost)
	require.Len(t, lost.Estimates, 1)
	assert.Equal(t, "e-1", lost.Estimates[0].ID)
}

func TestLogInteraction_Validaciones(t *testing.T) {
	e := newEnv()
	_, err := e.uc.LogInteraction(context.Background(), companyID, "u-1", dto.LogInteractionRequest{CustomerID: "cust-1", InteractionType: "fax"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.uc.LogInteraction(context.Background(), companyID, "u-1", dto.LogInteractionRequest{CustomerID: "cust-1", InteractionType: "call", Direction: "lateral"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	res, err := e.uc.LogInteraction(context.Background(), companyID, "u-1", dto.LogInteractionRequest{
		CustomerID: "cust-1", InteractionType: entity.InteractionSiteVisit, Direction: entity.DirectionOutbound,
		Subject: "Visita", FollowUpDate: ptr("2024-04-01"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.FollowUpDate)
	assert.Equal(t, "2024-04-01", *res.FollowUpDate)
	require.Len(t, e.interactions.created, 1)
	assert.Equal(t, "u-1", e.interactions.created[0].CreatedBy)
}

func TestUpcomingFollowUps_VentanaPorDefecto(t *testing.T) {
	e := newEnv()
	_, err := e.uc.UpcomingFollowUps(context.Background(), companyID, 0)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, e.interactions.to.Sub(e.interactions.from))
}

func TestLeads_CrearYConvertir(t *testing.T) {
	e := newEnv()
	lead, err := e.uc.CreateLead(context.Background(), companyID, dto.CreateLeadRequest{Name: " Casa Norte ", LeadSource: "web"})
	require.NoError(t, err)
	assert.Equal(t, "Casa Norte", lead.Name)
	assert.Equal(t, entity.CustomerStatusLead, lead.Status)

	require.NoError(t, e.uc.ConvertLead(context.Background(), companyID, "lead-1"))
	assert.ErrorIs(t, e.uc.ConvertLead(context.Background(), companyID, "lead-1"), domain.ErrConflict)
	assert.ErrorIs(t, e.uc.ConvertLead(context.Background(), companyID, "nope"), domain.ErrNotFound)
}
